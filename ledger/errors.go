package ledger

import "errors"

var (
	ErrArgumentCount          = errors.New("wrong number of arguments")
	ErrUnknownFunction        = errors.New("invalid function")
	ErrUnknownCode            = errors.New("unknown contract code")
	ErrNotContract            = errors.New("account has no code")
	ErrNotPayable             = errors.New("function does not accept payment")
	ErrNativeOnly             = errors.New("function only accepts native payment")
	ErrInvalidPayment         = errors.New("invalid payment")
	ErrSingleTransferExpected = errors.New("incorrect number of token transfers")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrInvalidReceiver        = errors.New("invalid receiver address")
	ErrReadOnly               = errors.New("state write in read only context")
	ErrNotPrivileged          = errors.New("caller is not a system actor")
	ErrCollectionNotFound     = errors.New("token collection not found")
	ErrUnitNotFound           = errors.New("token unit not found")
	ErrRoleMissing            = errors.New("action is not allowed")
	ErrInvalidQuantity        = errors.New("invalid token quantity")
	ErrInvalidRoyalties       = errors.New("invalid royalties value")
	ErrAsyncCallLimit         = errors.New("only one async call per execution")
	ErrCallDepth              = errors.New("max call depth exceeded")
)
