package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/MixinNetwork/nftattr/ledger"
	"github.com/MixinNetwork/nftattr/store"
	"github.com/shopspring/decimal"
)

const (
	testCode = "test-contract"

	alice ledger.Address = "erd1alice"
	bob   ledger.Address = "erd1bob"
	actor ledger.Address = "erd1actor"
)

var errTest = errors.New("test failure")

type testContract struct{}

func (testContract) Endpoints() map[string]*ledger.Endpoint {
	return map[string]*ledger.Endpoint{
		"init": {Handler: func(rt *ledger.Runtime, args [][]byte) ([][]byte, error) {
			return nil, rt.StorageSet([]byte("owner"), []byte(rt.Caller()))
		}},
		"store": {Payable: ledger.PayableNative, Handler: func(rt *ledger.Runtime, args [][]byte) ([][]byte, error) {
			err := ledger.CheckArguments(args, 2)
			if err != nil {
				return nil, err
			}
			return nil, rt.StorageSet(args[0], args[1])
		}},
		"read": {Handler: func(rt *ledger.Runtime, args [][]byte) ([][]byte, error) {
			val, err := rt.StorageGet(args[0])
			return [][]byte{val}, err
		}},
		"fail": {Payable: ledger.PayableAny, Handler: func(rt *ledger.Runtime, args [][]byte) ([][]byte, error) {
			err := rt.StorageSet([]byte("fail"), []byte("written"))
			if err != nil {
				return nil, err
			}
			return nil, errTest
		}},
		"async": {Payable: ledger.PayableNative, Handler: func(rt *ledger.Runtime, args [][]byte) ([][]byte, error) {
			_, err := rt.AsyncCall(actor, string(args[0]), nil, rt.CallValue(), string(args[1]))
			return nil, err
		}},
		"double": {Payable: ledger.PayableNative, Handler: func(rt *ledger.Runtime, args [][]byte) ([][]byte, error) {
			_, err := rt.AsyncCall(actor, "accept", nil, decimal.Zero, "done")
			if err != nil {
				return nil, err
			}
			_, err = rt.AsyncCall(actor, "accept", nil, decimal.Zero, "done")
			return nil, err
		}},
		"forward": {Handler: func(rt *ledger.Runtime, args [][]byte) ([][]byte, error) {
			return nil, rt.TransferExecute(ledger.Address(args[0]), string(args[1]), nil)
		}},
	}
}

func (testContract) Callback(rt *ledger.Runtime, name string, result *ledger.AsyncResult) error {
	val, err := rt.StorageGet([]byte("callbacks"))
	if err != nil {
		return err
	}
	n, _ := ledger.DecodeUint64(val)
	err = rt.StorageSet([]byte("callbacks"), ledger.EncodeUint64(n+1))
	if err != nil {
		return err
	}
	if name == "broken" {
		return errTest
	}
	if !result.Ok && rt.CallValue().IsPositive() {
		return rt.Transfer(rt.Caller(), ledger.NativePayment(rt.CallValue()))
	}
	if result.Ok {
		return rt.StorageSet([]byte("result"), result.Data[0])
	}
	return nil
}

type testActor struct{}

func (testActor) Execute(rt *ledger.Runtime, function string, args [][]byte) ([][]byte, error) {
	switch function {
	case "accept":
		return [][]byte{[]byte("accepted")}, nil
	case "reject":
		return nil, errTest
	}
	return nil, ledger.ErrUnknownFunction
}

func eth(n int64) decimal.Decimal {
	return decimal.New(n, ledger.NativeDecimals)
}

func newTestLedger(t *testing.T) (*ledger.Ledger, ledger.Address) {
	t.Helper()
	ctx := context.Background()
	db, err := store.OpenBadger(ctx, "")
	if err != nil {
		t.Fatalf("OpenBadger() = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	l, err := ledger.New(db)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	l.RegisterCode(testCode, func() ledger.Contract { return testContract{} })
	l.RegisterSystem(actor, testActor{})
	if err := l.Fund(ctx, alice, eth(10)); err != nil {
		t.Fatalf("Fund() = %v", err)
	}
	addr, err := l.Deploy(ctx, alice, testCode, nil)
	if err != nil {
		t.Fatalf("Deploy() = %v", err)
	}
	return l, addr
}

func query(t *testing.T, l *ledger.Ledger, addr ledger.Address, key string) string {
	t.Helper()
	res, err := l.Query(context.Background(), addr, "read", [][]byte{[]byte(key)})
	if err != nil {
		t.Fatalf("Query(%s) = %v", key, err)
	}
	return string(res[0])
}

func balance(t *testing.T, l *ledger.Ledger, addr ledger.Address) decimal.Decimal {
	t.Helper()
	bal, err := l.Balance(context.Background(), addr)
	if err != nil {
		t.Fatalf("Balance(%s) = %v", addr, err)
	}
	return bal
}

func TestDeploy(t *testing.T) {
	ctx := context.Background()
	l, addr := newTestLedger(t)

	if !addr.IsContract() {
		t.Fatalf("contract address %s has no contract prefix", addr)
	}
	if want := ledger.NewContractAddress(alice, 0); addr != want {
		t.Fatalf("address = %s, want %s", addr, want)
	}
	if owner := query(t, l, addr, "owner"); owner != alice.String() {
		t.Fatalf("owner = %s, want %s", owner, alice)
	}
	second, err := l.Deploy(ctx, alice, testCode, nil)
	if err != nil {
		t.Fatalf("Deploy() = %v", err)
	}
	if second == addr {
		t.Fatalf("second deploy reused %s", addr)
	}
	_, err = l.Deploy(ctx, alice, "missing", nil)
	if !errors.Is(err, ledger.ErrUnknownCode) {
		t.Fatalf("Deploy(missing) = %v", err)
	}
}

func TestInvokeRevertsOnFailure(t *testing.T) {
	ctx := context.Background()
	l, addr := newTestLedger(t)

	_, err := l.Invoke(ctx, &ledger.Tx{From: alice, To: addr, Function: "fail", Value: eth(1)})
	if !errors.Is(err, errTest) {
		t.Fatalf("Invoke(fail) = %v", err)
	}
	if got := balance(t, l, alice); !got.Equal(eth(10)) {
		t.Fatalf("alice balance = %s, want %s", got, eth(10))
	}
	if got := balance(t, l, addr); !got.IsZero() {
		t.Fatalf("contract balance = %s, want 0", got)
	}
	if got := query(t, l, addr, "fail"); got != "" {
		t.Fatalf("storage survived revert: %q", got)
	}
	acc, err := l.ReadAccount(ctx, alice)
	if err != nil {
		t.Fatalf("ReadAccount() = %v", err)
	}
	if acc.Nonce != 1 {
		t.Fatalf("nonce = %d, want 1 from the deploy only", acc.Nonce)
	}
}

func TestInvokePayments(t *testing.T) {
	ctx := context.Background()
	l, addr := newTestLedger(t)

	tests := []struct {
		name string
		tx   *ledger.Tx
		err  error
	}{
		{"not payable", &ledger.Tx{From: alice, To: addr, Function: "read", Args: [][]byte{[]byte("k")}, Value: eth(1)}, ledger.ErrNotPayable},
		{"native only", &ledger.Tx{From: alice, To: addr, Function: "store", Transfers: []ledger.Payment{ledger.TokenPayment("TEST-000000", 1, 1)}}, ledger.ErrNativeOnly},
		{"insufficient", &ledger.Tx{From: bob, To: addr, Function: "store", Args: [][]byte{[]byte("k"), []byte("v")}, Value: eth(1)}, ledger.ErrInsufficientFunds},
		{"negative", &ledger.Tx{From: alice, To: addr, Function: "store", Args: [][]byte{[]byte("k"), []byte("v")}, Value: eth(-1)}, ledger.ErrInvalidPayment},
		{"unknown function", &ledger.Tx{From: alice, To: addr, Function: "missing"}, ledger.ErrUnknownFunction},
		{"not contract", &ledger.Tx{From: alice, To: bob, Function: "store"}, ledger.ErrNotContract},
		{"arguments", &ledger.Tx{From: alice, To: addr, Function: "store"}, ledger.ErrArgumentCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Invoke(ctx, tt.tx)
			if !errors.Is(err, tt.err) {
				t.Fatalf("Invoke() = %v, want %v", err, tt.err)
			}
		})
	}

	_, err := l.Invoke(ctx, &ledger.Tx{From: alice, To: addr, Function: "store", Args: [][]byte{[]byte("k"), []byte("v")}, Value: eth(2)})
	if err != nil {
		t.Fatalf("Invoke(store) = %v", err)
	}
	if got := balance(t, l, addr); !got.Equal(eth(2)) {
		t.Fatalf("contract balance = %s, want %s", got, eth(2))
	}
	if got := query(t, l, addr, "k"); got != "v" {
		t.Fatalf("storage k = %q", got)
	}

	_, err = l.Invoke(ctx, &ledger.Tx{From: alice, To: bob, Value: eth(3)})
	if err != nil {
		t.Fatalf("Invoke(transfer) = %v", err)
	}
	if got := balance(t, l, bob); !got.Equal(eth(3)) {
		t.Fatalf("bob balance = %s, want %s", got, eth(3))
	}
}

func TestQueryIsReadOnly(t *testing.T) {
	l, addr := newTestLedger(t)

	_, err := l.Query(context.Background(), addr, "store", [][]byte{[]byte("k"), []byte("v")})
	if !errors.Is(err, ledger.ErrReadOnly) {
		t.Fatalf("Query(store) = %v", err)
	}
}

func TestTransferExecuteFailureReverts(t *testing.T) {
	ctx := context.Background()
	l, addr := newTestLedger(t)
	other, err := l.Deploy(ctx, alice, testCode, nil)
	if err != nil {
		t.Fatalf("Deploy() = %v", err)
	}

	_, err = l.Invoke(ctx, &ledger.Tx{From: alice, To: addr, Function: "forward", Args: [][]byte{[]byte(other), []byte("fail")}})
	if !errors.Is(err, errTest) {
		t.Fatalf("Invoke(forward) = %v", err)
	}
	if got := query(t, l, other, "fail"); got != "" {
		t.Fatalf("nested storage survived revert: %q", got)
	}

	_, err = l.Invoke(ctx, &ledger.Tx{From: alice, To: addr, Function: "forward", Args: [][]byte{[]byte(""), []byte("")}})
	if !errors.Is(err, ledger.ErrInvalidReceiver) {
		t.Fatalf("Invoke(forward empty) = %v", err)
	}
}

func TestSettleAsyncCalls(t *testing.T) {
	ctx := context.Background()
	l, addr := newTestLedger(t)

	accepted, err := l.Invoke(ctx, &ledger.Tx{From: alice, To: addr, Function: "async", Args: [][]byte{[]byte("accept"), []byte("done")}, Value: eth(1)})
	if err != nil {
		t.Fatalf("Invoke(accept) = %v", err)
	}
	rejected, err := l.Invoke(ctx, &ledger.Tx{From: alice, To: addr, Function: "async", Args: [][]byte{[]byte("reject"), []byte("done")}, Value: eth(2)})
	if err != nil {
		t.Fatalf("Invoke(reject) = %v", err)
	}
	if len(accepted.Calls) != 1 || len(rejected.Calls) != 1 {
		t.Fatalf("calls = %v %v", accepted.Calls, rejected.Calls)
	}
	if got := balance(t, l, addr); !got.IsZero() {
		t.Fatalf("escrow left on contract balance: %s", got)
	}
	if got := balance(t, l, alice); !got.Equal(eth(7)) {
		t.Fatalf("alice balance before settle = %s", got)
	}

	n, err := l.Settle(ctx)
	if err != nil || n != 2 {
		t.Fatalf("Settle() = %d %v", n, err)
	}
	if got := balance(t, l, actor); !got.Equal(eth(1)) {
		t.Fatalf("actor balance = %s, want %s", got, eth(1))
	}
	if got := balance(t, l, alice); !got.Equal(eth(9)) {
		t.Fatalf("alice balance after refund = %s, want %s", got, eth(9))
	}
	if got := query(t, l, addr, "result"); got != "accepted" {
		t.Fatalf("callback result = %q", got)
	}

	call, err := l.ReadCall(ctx, rejected.Calls[0])
	if err != nil {
		t.Fatalf("ReadCall() = %v", err)
	}
	if call.State != ledger.CallStateDone || call.Result.Ok || !call.Result.Returned.Equal(eth(2)) {
		t.Fatalf("rejected call = %s %v %s", call.StateName(), call.Result.Ok, call.Result.Returned)
	}
	if call.Caller != alice || call.From != addr {
		t.Fatalf("call context = %s %s", call.Caller, call.From)
	}

	n, err = l.Settle(ctx)
	if err != nil || n != 0 {
		t.Fatalf("second Settle() = %d %v", n, err)
	}
	val, _ := ledger.DecodeUint64([]byte(query(t, l, addr, "callbacks")))
	if val != 2 {
		t.Fatalf("callbacks = %d, want 2", val)
	}
}

func TestSettleFailedCallback(t *testing.T) {
	ctx := context.Background()
	l, addr := newTestLedger(t)

	receipt, err := l.Invoke(ctx, &ledger.Tx{From: alice, To: addr, Function: "async", Args: [][]byte{[]byte("reject"), []byte("broken")}, Value: eth(1)})
	if err != nil {
		t.Fatalf("Invoke() = %v", err)
	}
	n, err := l.Settle(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Settle() = %d %v", n, err)
	}
	call, err := l.ReadCall(ctx, receipt.Calls[0])
	if err != nil {
		t.Fatalf("ReadCall() = %v", err)
	}
	if call.State != ledger.CallStateDone || call.Error == "" {
		t.Fatalf("call = %s %q", call.StateName(), call.Error)
	}
	if got := query(t, l, addr, "callbacks"); got != "" {
		t.Fatalf("failed callback storage survived: %x", got)
	}
	if got := balance(t, l, addr); !got.Equal(eth(1)) {
		t.Fatalf("returned value = %s, want it kept by the contract", got)
	}
}

func TestAsyncCallLimit(t *testing.T) {
	l, addr := newTestLedger(t)

	_, err := l.Invoke(context.Background(), &ledger.Tx{From: alice, To: addr, Function: "double"})
	if !errors.Is(err, ledger.ErrAsyncCallLimit) {
		t.Fatalf("Invoke(double) = %v", err)
	}
	calls, err := l.ListCalls(context.Background(), ledger.CallStateInitial, 0)
	if err != nil || len(calls) != 0 {
		t.Fatalf("ListCalls() = %d %v", len(calls), err)
	}
}

func TestCodec(t *testing.T) {
	tests := []struct {
		v   uint64
		enc []byte
	}{
		{0, nil},
		{1, []byte{1}},
		{255, []byte{0xff}},
		{256, []byte{1, 0}},
		{1<<64 - 1, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}
	for _, tt := range tests {
		enc := ledger.EncodeUint64(tt.v)
		if len(enc) != len(tt.enc) || string(enc) != string(tt.enc) {
			t.Errorf("EncodeUint64(%d) = %x, want %x", tt.v, enc, tt.enc)
		}
		v, err := ledger.DecodeUint64(enc)
		if err != nil || v != tt.v {
			t.Errorf("DecodeUint64(%x) = %d %v", enc, v, err)
		}
	}
	if _, err := ledger.DecodeUint64(make([]byte, 9)); err == nil {
		t.Errorf("DecodeUint64 accepted 9 bytes")
	}
}

func TestSettleConcurrent(t *testing.T) {
	ctx := context.Background()
	l, addr := newTestLedger(t)

	for i := 0; i < 3; i++ {
		_, err := l.Invoke(ctx, &ledger.Tx{From: alice, To: addr, Function: "async", Args: [][]byte{[]byte("accept"), []byte("done")}, Value: eth(1)})
		if err != nil {
			t.Fatalf("Invoke(accept) = %v", err)
		}
	}
	_, err := l.Invoke(ctx, &ledger.Tx{From: alice, To: addr, Function: "async", Args: [][]byte{[]byte("reject"), []byte("done")}, Value: eth(2)})
	if err != nil {
		t.Fatalf("Invoke(reject) = %v", err)
	}

	var wg sync.WaitGroup
	results := make(chan error, 4)
	counts := make(chan int, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results <- fmt.Errorf("panic %v", r)
				}
			}()
			n, err := l.Settle(ctx)
			counts <- n
			results <- err
		}()
	}
	wg.Wait()
	close(results)
	close(counts)
	for err := range results {
		if err != nil {
			t.Fatalf("Settle() = %v", err)
		}
	}
	var total int
	for n := range counts {
		total += n
	}
	if total != 4 {
		t.Fatalf("settled %d calls, want 4", total)
	}

	val, _ := ledger.DecodeUint64([]byte(query(t, l, addr, "callbacks")))
	if val != 4 {
		t.Fatalf("callbacks = %d, want 4", val)
	}
	if got := balance(t, l, actor); !got.Equal(eth(3)) {
		t.Fatalf("actor balance = %s, want %s", got, eth(3))
	}
	if got := balance(t, l, alice); !got.Equal(eth(7)) {
		t.Fatalf("alice balance = %s, want %s", got, eth(7))
	}
	if got := balance(t, l, addr); !got.IsZero() {
		t.Fatalf("contract balance = %s, want 0", got)
	}
	calls, err := l.ListCalls(ctx, ledger.CallStateDone, 0)
	if err != nil || len(calls) != 4 {
		t.Fatalf("done calls = %d %v", len(calls), err)
	}
}

func TestAddressValid(t *testing.T) {
	tests := []struct {
		addr  ledger.Address
		valid bool
	}{
		{alice, true},
		{ledger.NewContractAddress(alice, 3), true},
		{"", false},
		{"erd1" + ledger.KeySeparator + "bob", false},
	}
	for _, tt := range tests {
		if tt.addr.Valid() != tt.valid {
			t.Errorf("Valid(%q) = %v", tt.addr, !tt.valid)
		}
	}
}
