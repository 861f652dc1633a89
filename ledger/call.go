package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CallStateInitial  = 10
	CallStateReturned = 11
	CallStateDone     = 12
)

// Call is an asynchronous cross-actor call. The escrowed Value belongs to the
// call until the destination consumes it or it is returned to From.
type Call struct {
	Id        string
	TxId      string
	Caller    Address
	From      Address
	To        Address
	Function  string
	Args      [][]byte
	Value     decimal.Decimal
	Callback  string
	State     int
	Result    *AsyncResult
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AsyncResult is what a callback observes. Returned is the native value sent
// back to the calling contract, it is also the callback's call value.
type AsyncResult struct {
	Ok       bool
	Data     [][]byte
	Message  string
	Returned decimal.Decimal
}

func (call *Call) StateName() string {
	switch call.State {
	case CallStateInitial:
		return "initial"
	case CallStateReturned:
		return "returned"
	case CallStateDone:
		return "done"
	}
	panic(call.State)
}
