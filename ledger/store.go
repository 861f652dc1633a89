package ledger

import "github.com/shopspring/decimal"

// Store is the persistent backend of a ledger. Update runs fn in a single
// read-write transaction that is discarded when fn returns an error, View
// runs it in a read only one.
type Store interface {
	WriteProperty(key, val []byte) error
	ReadProperty(key []byte) ([]byte, error)

	Update(fn func(State) error) error
	View(fn func(State) error) error
}

// State is the transactional view handed to one execution.
type State interface {
	ReadAccount(addr Address) (*Account, error)
	WriteAccount(acc *Account) error

	ReadStorage(addr Address, key []byte) ([]byte, error)
	WriteStorage(addr Address, key, val []byte) error

	ReadCollection(id string) (*Collection, error)
	WriteCollection(c *Collection) error

	ReadUnit(collection string, serial uint64) (*Unit, error)
	WriteUnit(u *Unit) error

	ReadTokenBalance(holder Address, collection string, serial uint64) (decimal.Decimal, error)
	WriteTokenBalance(tb *TokenBalance) error
	ListTokenBalances(holder Address) ([]*TokenBalance, error)

	WriteCall(call *Call) error
	ReadCall(id string) (*Call, error)
	ListCalls(state int, limit int) ([]*Call, error)
}
