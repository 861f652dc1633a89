package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type Payability int

const (
	NotPayable Payability = iota
	PayableNative
	PayableAny
)

type Handler func(rt *Runtime, args [][]byte) ([][]byte, error)

type Endpoint struct {
	Payable Payability
	Handler Handler
}

// Contract is deployable code. Implementations keep no state of their own,
// everything lives in the storage reached through the Runtime.
type Contract interface {
	Endpoints() map[string]*Endpoint
	Callback(rt *Runtime, name string, result *AsyncResult) error
}

// Actor is a privileged system account, it accepts any payment.
type Actor interface {
	Execute(rt *Runtime, function string, args [][]byte) ([][]byte, error)
}

type Tx struct {
	Id        string
	From      Address
	To        Address
	Function  string
	Args      [][]byte
	Value     decimal.Decimal
	Transfers []Payment
}

type Receipt struct {
	TxId    string
	Results [][]byte
	Calls   []string
}

// Ledger executes contract invocations one at a time against a Store.
type Ledger struct {
	mutex   sync.Mutex
	store   Store
	clock   *Clock
	codes   map[string]func() Contract
	systems map[Address]Actor
}

func New(store Store) (*Ledger, error) {
	clock, err := NewClock(store)
	if err != nil {
		return nil, err
	}
	return &Ledger{
		store:   store,
		clock:   clock,
		codes:   make(map[string]func() Contract),
		systems: make(map[Address]Actor),
	}, nil
}

func (l *Ledger) RegisterCode(name string, code func() Contract) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.codes[name] = code
}

func (l *Ledger) RegisterSystem(addr Address, actor Actor) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.systems[addr] = actor
}

// Fund credits native value to an account out of thin air, it is the
// genesis allocation of a local ledger.
func (l *Ledger) Fund(ctx context.Context, addr Address, amount decimal.Decimal) error {
	if !addr.Valid() {
		return ErrInvalidReceiver
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w %s", ErrInvalidPayment, amount)
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()

	return l.store.Update(func(s State) error {
		rt := l.root(s, uuid.Must(uuid.NewV4()).String(), time.Now(), false)
		return rt.credit(addr, NativePayment(amount))
	})
}

// Deploy creates a contract account running code and calls its init
// endpoint when it has one.
func (l *Ledger) Deploy(ctx context.Context, owner Address, code string, args [][]byte) (Address, error) {
	if !owner.Valid() {
		return "", ErrInvalidReceiver
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.codes[code] == nil {
		return "", fmt.Errorf("%w %s", ErrUnknownCode, code)
	}
	txId := uuid.Must(uuid.NewV4()).String()
	now := l.clock.Now()

	var addr Address
	err := l.store.Update(func(s State) error {
		rt := l.root(s, txId, now, false)
		acc, err := rt.account(owner)
		if err != nil {
			return err
		}
		addr = NewContractAddress(owner, acc.Nonce)
		acc.Nonce++
		err = s.WriteAccount(acc)
		if err != nil {
			return err
		}
		contract, err := rt.account(addr)
		if err != nil {
			return err
		}
		contract.Code, contract.Owner = code, owner
		err = s.WriteAccount(contract)
		if err != nil {
			return err
		}
		if l.codes[code]().Endpoints()["init"] == nil {
			return nil
		}
		_, err = l.execute(rt.frame(owner, addr, decimal.Zero, nil), "init", args)
		return err
	})
	if err != nil {
		return "", err
	}
	logger.Verbosef("Ledger.Deploy(%s, %s) => %s\n", owner, code, addr)
	return addr, nil
}

// Invoke runs one entry point. The attached value and transfers move from
// tx.From to tx.To before the handler runs, and everything is discarded if
// any step fails.
func (l *Ledger) Invoke(ctx context.Context, tx *Tx) (*Receipt, error) {
	if !tx.From.Valid() {
		return nil, fmt.Errorf("%w %q", ErrInvalidReceiver, tx.From)
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if tx.Id == "" {
		tx.Id = uuid.Must(uuid.NewV4()).String()
	}
	now := l.clock.Now()

	receipt := &Receipt{TxId: tx.Id}
	err := l.store.Update(func(s State) error {
		rt := l.root(s, tx.Id, now, false)
		acc, err := rt.account(tx.From)
		if err != nil {
			return err
		}
		acc.Nonce++
		err = s.WriteAccount(acc)
		if err != nil {
			return err
		}

		rt.self = tx.From
		payments := tx.Transfers
		if !tx.Value.IsZero() {
			payments = append([]Payment{NativePayment(tx.Value)}, payments...)
		}
		if tx.Function == "" && !tx.To.IsContract() && l.systems[tx.To] == nil {
			return rt.Transfer(tx.To, payments...)
		}
		res, err := rt.call(tx.To, tx.Function, tx.Args, payments)
		if err != nil {
			return err
		}
		receipt.Results = res
		receipt.Calls = rt.exec.calls
		return nil
	})
	logger.Verbosef("Ledger.Invoke(%s, %s, %s, %s) => %v\n", tx.Id, tx.From, tx.To, tx.Function, err)
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// Query runs a view. Any state write from the handler fails.
func (l *Ledger) Query(ctx context.Context, to Address, function string, args [][]byte) ([][]byte, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	var res [][]byte
	err := l.store.View(func(s State) error {
		rt := l.root(s, "", time.Now(), true)
		out, err := l.execute(rt.frame(to, to, decimal.Zero, nil), function, args)
		res = out
		return err
	})
	return res, err
}

func (l *Ledger) root(s State, txId string, now time.Time, readOnly bool) *Runtime {
	return &Runtime{
		ledger: l,
		state:  s,
		exec:   &execution{txId: txId, timestamp: now, readOnly: readOnly},
		value:  decimal.Zero,
	}
}

// execute moves the frame payments from its caller and dispatches function.
func (l *Ledger) execute(rt *Runtime, function string, args [][]byte) ([][]byte, error) {
	if actor, ok := l.systems[rt.self]; ok {
		err := l.acceptPayments(rt)
		if err != nil {
			return nil, err
		}
		return actor.Execute(rt, function, args)
	}

	contract, err := l.loadContract(rt.state, rt.self)
	if err != nil {
		return nil, err
	}
	ep := contract.Endpoints()[function]
	if ep == nil {
		return nil, fmt.Errorf("%w %s", ErrUnknownFunction, function)
	}
	switch ep.Payable {
	case NotPayable:
		if !rt.value.IsZero() || len(rt.transfers) > 0 {
			return nil, fmt.Errorf("%w %s", ErrNotPayable, function)
		}
	case PayableNative:
		if len(rt.transfers) > 0 {
			return nil, fmt.Errorf("%w %s", ErrNativeOnly, function)
		}
	}
	err = l.acceptPayments(rt)
	if err != nil {
		return nil, err
	}
	return ep.Handler(rt, args)
}

func (l *Ledger) acceptPayments(rt *Runtime) error {
	if rt.value.IsNegative() {
		return fmt.Errorf("%w %s", ErrInvalidPayment, rt.value)
	}
	if !rt.value.IsZero() {
		err := rt.move(rt.caller, rt.self, NativePayment(rt.value))
		if err != nil {
			return err
		}
	}
	for _, p := range rt.transfers {
		if p.IsNative() || !p.Amount.IsPositive() {
			return fmt.Errorf("%w %s", ErrInvalidPayment, p)
		}
		err := rt.move(rt.caller, rt.self, p)
		if err != nil {
			return err
		}
	}
	return nil
}

func (l *Ledger) loadContract(s State, addr Address) (Contract, error) {
	acc, err := s.ReadAccount(addr)
	if err != nil {
		return nil, err
	}
	if acc == nil || acc.Code == "" {
		return nil, fmt.Errorf("%w %s", ErrNotContract, addr)
	}
	code := l.codes[acc.Code]
	if code == nil {
		return nil, fmt.Errorf("%w %s", ErrUnknownCode, acc.Code)
	}
	return code(), nil
}

// Settle drains the asynchronous call queue in creation order and returns
// the number of calls completed. Calls registered by callbacks are drained
// in the same run.
func (l *Ledger) Settle(ctx context.Context) (int, error) {
	var done int
	for {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		calls, err := l.ListCalls(ctx, CallStateReturned, 16)
		if err != nil {
			return done, err
		}
		if len(calls) == 0 {
			calls, err = l.ListCalls(ctx, CallStateInitial, 16)
			if err != nil {
				return done, err
			}
		}
		if len(calls) == 0 {
			return done, nil
		}
		for _, call := range calls {
			settled, err := l.settleCall(ctx, call.Id)
			if err != nil {
				return done, err
			}
			if settled {
				done++
			}
		}
	}
}

// settleCall re-reads the call under the lock, a call already advanced by a
// concurrent Settle is skipped. It reports whether this run completed it.
func (l *Ledger) settleCall(ctx context.Context, id string) (bool, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	var call *Call
	err := l.store.View(func(s State) error {
		var err error
		call, err = s.ReadCall(id)
		return err
	})
	if err != nil || call == nil || call.State == CallStateDone {
		return false, err
	}

	if call.State == CallStateInitial {
		err := l.dispatch(call)
		if err != nil {
			return false, err
		}
	}
	err = l.callback(call)
	if err != nil {
		return false, err
	}
	return call.State == CallStateDone, nil
}

// dispatch runs the destination of an initial call. The destination effects
// and the state change commit together, a failed destination is discarded
// and the escrowed value goes back to the calling contract.
func (l *Ledger) dispatch(call *Call) error {
	now := l.clock.Now()

	var failure error
	err := l.store.Update(func(s State) error {
		rt := l.root(s, call.TxId, now, false)
		rt.self = call.From
		// the escrowed value is already out of call.From
		err := rt.credit(call.From, NativePayment(call.Value))
		if err != nil {
			return err
		}
		data, err := rt.call(call.To, call.Function, call.Args, []Payment{NativePayment(call.Value)})
		if err != nil {
			failure = err
			return err
		}
		call.State = CallStateReturned
		call.Result = &AsyncResult{Ok: true, Data: data, Returned: decimal.Zero}
		call.UpdatedAt = now
		return s.WriteCall(call)
	})
	if err == nil {
		logger.Verbosef("Ledger.dispatch(%s, %s, %s) => OK\n", call.Id, call.To, call.Function)
		return nil
	}
	if failure == nil {
		return err
	}

	logger.Printf("Ledger.dispatch(%s, %s, %s) => %v\n", call.Id, call.To, call.Function, failure)
	return l.store.Update(func(s State) error {
		rt := l.root(s, call.TxId, now, false)
		err := rt.credit(call.From, NativePayment(call.Value))
		if err != nil {
			return err
		}
		call.State = CallStateReturned
		call.Result = &AsyncResult{Ok: false, Message: failure.Error(), Returned: call.Value}
		call.UpdatedAt = now
		return s.WriteCall(call)
	})
}

// callback delivers the result to the calling contract as the original
// caller. A failed callback only discards its own changes.
func (l *Ledger) callback(call *Call) error {
	now := l.clock.Now()

	var failure error
	err := l.store.Update(func(s State) error {
		call.State = CallStateDone
		call.UpdatedAt = now
		if call.Callback != "" {
			contract, err := l.loadContract(s, call.From)
			if err != nil {
				failure = err
				return err
			}
			rt := l.root(s, call.TxId, now, false)
			rt = rt.frame(call.Caller, call.From, call.Result.Returned, nil)
			err = contract.Callback(rt, call.Callback, call.Result)
			if err != nil {
				failure = err
				return err
			}
		}
		return s.WriteCall(call)
	})
	if err == nil {
		return nil
	}
	if failure == nil {
		call.State = CallStateReturned
		return err
	}

	logger.Printf("Ledger.callback(%s, %s, %s) => %v\n", call.Id, call.From, call.Callback, failure)
	call.Error = failure.Error()
	return l.store.Update(func(s State) error {
		return s.WriteCall(call)
	})
}

func (l *Ledger) Balance(ctx context.Context, addr Address) (decimal.Decimal, error) {
	var bal decimal.Decimal
	err := l.store.View(func(s State) error {
		acc, err := s.ReadAccount(addr)
		if err != nil || acc == nil {
			bal = decimal.Zero
			return err
		}
		bal = acc.Balance
		return nil
	})
	return bal, err
}

func (l *Ledger) ReadAccount(ctx context.Context, addr Address) (*Account, error) {
	var acc *Account
	err := l.store.View(func(s State) error {
		var err error
		acc, err = s.ReadAccount(addr)
		return err
	})
	return acc, err
}

func (l *Ledger) TokenBalance(ctx context.Context, holder Address, collection string, serial uint64) (decimal.Decimal, error) {
	var bal decimal.Decimal
	err := l.store.View(func(s State) error {
		var err error
		bal, err = s.ReadTokenBalance(holder, collection, serial)
		return err
	})
	return bal, err
}

func (l *Ledger) ListTokenBalances(ctx context.Context, holder Address) ([]*TokenBalance, error) {
	var tbs []*TokenBalance
	err := l.store.View(func(s State) error {
		var err error
		tbs, err = s.ListTokenBalances(holder)
		return err
	})
	return tbs, err
}

func (l *Ledger) ReadUnit(ctx context.Context, collection string, serial uint64) (*Unit, error) {
	var u *Unit
	err := l.store.View(func(s State) error {
		var err error
		u, err = s.ReadUnit(collection, serial)
		return err
	})
	return u, err
}

func (l *Ledger) ReadCollection(ctx context.Context, id string) (*Collection, error) {
	var c *Collection
	err := l.store.View(func(s State) error {
		var err error
		c, err = s.ReadCollection(id)
		return err
	})
	return c, err
}

func (l *Ledger) ReadCall(ctx context.Context, id string) (*Call, error) {
	var call *Call
	err := l.store.View(func(s State) error {
		var err error
		call, err = s.ReadCall(id)
		return err
	})
	return call, err
}

func (l *Ledger) ListCalls(ctx context.Context, state int, limit int) ([]*Call, error) {
	var calls []*Call
	err := l.store.View(func(s State) error {
		var err error
		calls, err = s.ListCalls(state, limit)
		return err
	})
	return calls, err
}
