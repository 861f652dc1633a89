package ledger

import (
	"fmt"
	"time"

	"github.com/fox-one/mixin-sdk-go"
	"github.com/shopspring/decimal"
)

const maxCallDepth = 8

// execution is shared by every frame of one ledger invocation.
type execution struct {
	txId      string
	timestamp time.Time
	readOnly  bool
	calls     []string
}

// Runtime is the execution context of one contract frame. It is only valid
// for the duration of the handler it is passed to.
type Runtime struct {
	ledger *Ledger
	state  State
	exec   *execution

	caller    Address
	self      Address
	value     decimal.Decimal
	transfers []Payment
	depth     int
	asyncs    int
}

func (rt *Runtime) Caller() Address {
	return rt.caller
}

func (rt *Runtime) Self() Address {
	return rt.self
}

func (rt *Runtime) TxId() string {
	return rt.exec.txId
}

func (rt *Runtime) Timestamp() time.Time {
	return rt.exec.timestamp
}

// CallValue is the native value attached to this frame.
func (rt *Runtime) CallValue() decimal.Decimal {
	return rt.value
}

func (rt *Runtime) Transfers() []Payment {
	return rt.transfers
}

func (rt *Runtime) SingleTransfer() (Payment, error) {
	if len(rt.transfers) != 1 {
		return Payment{}, ErrSingleTransferExpected
	}
	return rt.transfers[0], nil
}

func (rt *Runtime) StorageGet(key []byte) ([]byte, error) {
	return rt.state.ReadStorage(rt.self, key)
}

// StorageSet writes a storage value of the executing account, an empty
// value clears the key.
func (rt *Runtime) StorageSet(key, val []byte) error {
	if rt.exec.readOnly {
		return ErrReadOnly
	}
	return rt.state.WriteStorage(rt.self, key, val)
}

func (rt *Runtime) Balance(addr Address) (decimal.Decimal, error) {
	acc, err := rt.state.ReadAccount(addr)
	if err != nil || acc == nil {
		return decimal.Zero, err
	}
	return acc.Balance, nil
}

// Transfer moves payments out of the executing account without running any
// code on the receiver.
func (rt *Runtime) Transfer(to Address, payments ...Payment) error {
	for _, p := range payments {
		err := rt.move(rt.self, to, p)
		if err != nil {
			return err
		}
	}
	return nil
}

// TransferExecute moves payments like Transfer, then runs function on the
// receiver when it is a contract and function is not empty. A failing
// receiver aborts the whole invocation.
func (rt *Runtime) TransferExecute(to Address, function string, args [][]byte, payments ...Payment) error {
	if !to.Valid() {
		return fmt.Errorf("%w %q", ErrInvalidReceiver, to)
	}
	if function == "" || !to.IsContract() {
		return rt.Transfer(to, payments...)
	}
	_, err := rt.call(to, function, args, payments)
	return err
}

// AsyncCall escrows value and registers an asynchronous call to another
// actor. The handler should return right after, the result is delivered to
// the callback of this contract in a later invocation. It returns the call id.
func (rt *Runtime) AsyncCall(to Address, function string, args [][]byte, value decimal.Decimal, callback string) (string, error) {
	if rt.exec.readOnly {
		return "", ErrReadOnly
	}
	if rt.asyncs > 0 {
		return "", ErrAsyncCallLimit
	}
	if !to.Valid() {
		return "", ErrInvalidReceiver
	}
	if value.IsNegative() {
		return "", ErrInvalidPayment
	}

	hint := fmt.Sprintf("async:%d", len(rt.exec.calls))
	id := mixin.UniqueConversationID(rt.exec.txId, hint)
	old, err := rt.state.ReadCall(id)
	if err != nil {
		return "", err
	} else if old != nil {
		return "", fmt.Errorf("async call %s already registered by %s", id, old.TxId)
	}
	err = rt.debit(rt.self, NativePayment(value))
	if err != nil {
		return "", err
	}
	rt.asyncs++

	call := &Call{
		Id:        id,
		TxId:      rt.exec.txId,
		Caller:    rt.caller,
		From:      rt.self,
		To:        to,
		Function:  function,
		Args:      args,
		Value:     value,
		Callback:  callback,
		State:     CallStateInitial,
		CreatedAt: rt.exec.timestamp,
		UpdatedAt: rt.exec.timestamp,
	}
	rt.exec.calls = append(rt.exec.calls, call.Id)
	return call.Id, rt.state.WriteCall(call)
}

// CallState returns the state of an asynchronous call registered by the
// executing account, or zero when there is no such call.
func (rt *Runtime) CallState(id string) (int, error) {
	call, err := rt.state.ReadCall(id)
	if err != nil || call == nil || call.From != rt.self {
		return 0, err
	}
	return call.State, nil
}

// System returns the raw state to privileged system actors.
func (rt *Runtime) System() (State, error) {
	if _, ok := rt.ledger.systems[rt.self]; !ok {
		return nil, ErrNotPrivileged
	}
	if rt.exec.readOnly {
		return nil, ErrReadOnly
	}
	return rt.state, nil
}

func (rt *Runtime) frame(caller, self Address, value decimal.Decimal, transfers []Payment) *Runtime {
	return &Runtime{
		ledger:    rt.ledger,
		state:     rt.state,
		exec:      rt.exec,
		caller:    caller,
		self:      self,
		value:     value,
		transfers: transfers,
		depth:     rt.depth + 1,
	}
}

// call runs function on to with the executing account as caller, moving
// payments into it first.
func (rt *Runtime) call(to Address, function string, args [][]byte, payments []Payment) ([][]byte, error) {
	if rt.depth >= maxCallDepth {
		return nil, ErrCallDepth
	}
	value := decimal.Zero
	var transfers []Payment
	for _, p := range payments {
		if p.IsNative() {
			value = value.Add(p.Amount)
		} else {
			transfers = append(transfers, p)
		}
	}
	return rt.ledger.execute(rt.frame(rt.self, to, value, transfers), function, args)
}

func (rt *Runtime) move(from, to Address, p Payment) error {
	if rt.exec.readOnly {
		return ErrReadOnly
	}
	if !to.Valid() {
		return fmt.Errorf("%w %q", ErrInvalidReceiver, to)
	}
	err := rt.debit(from, p)
	if err != nil {
		return err
	}
	return rt.credit(to, p)
}

func (rt *Runtime) debit(addr Address, p Payment) error {
	if p.Amount.IsNegative() {
		return fmt.Errorf("%w %s", ErrInvalidPayment, p)
	}
	if p.Amount.IsZero() {
		return nil
	}
	if p.IsNative() {
		acc, err := rt.account(addr)
		if err != nil {
			return err
		}
		if acc.Balance.LessThan(p.Amount) {
			return fmt.Errorf("%w %s %s", ErrInsufficientFunds, addr, p)
		}
		acc.Balance = acc.Balance.Sub(p.Amount)
		return rt.state.WriteAccount(acc)
	}

	unit, err := rt.state.ReadUnit(p.Token, p.Serial)
	if err != nil {
		return err
	} else if unit == nil {
		return fmt.Errorf("%w %s#%d", ErrUnitNotFound, p.Token, p.Serial)
	}
	bal, err := rt.state.ReadTokenBalance(addr, p.Token, p.Serial)
	if err != nil {
		return err
	}
	if bal.LessThan(p.Amount) {
		return fmt.Errorf("%w %s %s", ErrInsufficientFunds, addr, p)
	}
	return rt.state.WriteTokenBalance(&TokenBalance{
		Holder:     addr,
		Collection: p.Token,
		Serial:     p.Serial,
		Amount:     bal.Sub(p.Amount),
	})
}

func (rt *Runtime) credit(addr Address, p Payment) error {
	if p.Amount.IsZero() {
		return nil
	}
	if p.IsNative() {
		acc, err := rt.account(addr)
		if err != nil {
			return err
		}
		acc.Balance = acc.Balance.Add(p.Amount)
		return rt.state.WriteAccount(acc)
	}
	bal, err := rt.state.ReadTokenBalance(addr, p.Token, p.Serial)
	if err != nil {
		return err
	}
	return rt.state.WriteTokenBalance(&TokenBalance{
		Holder:     addr,
		Collection: p.Token,
		Serial:     p.Serial,
		Amount:     bal.Add(p.Amount),
	})
}

func (rt *Runtime) account(addr Address) (*Account, error) {
	acc, err := rt.state.ReadAccount(addr)
	if err != nil || acc != nil {
		return acc, err
	}
	return &Account{Address: addr, Balance: decimal.Zero}, nil
}
