package store

import (
	"github.com/MixinNetwork/mixin/common"
	"github.com/MixinNetwork/nftattr/ledger"
	"github.com/dgraph-io/badger/v3"
	"github.com/shopspring/decimal"
)

const (
	prefixCollectionPayload = "TOKEN:COLLECTION:"
	prefixUnitPayload       = "TOKEN:UNIT:"
	prefixTokenBalance      = "TOKEN:BALANCE:"
)

func (s *badgerState) ReadCollection(id string) (*ledger.Collection, error) {
	val, err := readValue(s.txn, []byte(prefixCollectionPayload+id))
	if err != nil || val == nil {
		return nil, err
	}
	var c ledger.Collection
	err = common.MsgpackUnmarshal(val, &c)
	return &c, err
}

func (s *badgerState) WriteCollection(c *ledger.Collection) error {
	old, err := s.ReadCollection(c.Identifier)
	if err != nil {
		return err
	}
	if old != nil && old.Nonce > c.Nonce {
		panic(c.Identifier)
	}
	key := []byte(prefixCollectionPayload + c.Identifier)
	return s.txn.Set(key, common.MsgpackMarshalPanic(c))
}

func (s *badgerState) ReadUnit(collection string, serial uint64) (*ledger.Unit, error) {
	val, err := readValue(s.txn, buildUnitKey(collection, serial))
	if err != nil || val == nil {
		return nil, err
	}
	var u ledger.Unit
	err = common.MsgpackUnmarshal(val, &u)
	return &u, err
}

func (s *badgerState) WriteUnit(u *ledger.Unit) error {
	if u.Serial == 0 {
		panic(u.Collection)
	}
	return s.txn.Set(buildUnitKey(u.Collection, u.Serial), common.MsgpackMarshalPanic(u))
}

func (s *badgerState) ReadTokenBalance(holder ledger.Address, collection string, serial uint64) (decimal.Decimal, error) {
	tb, err := s.readTokenBalance(holder, collection, serial)
	if err != nil || tb == nil {
		return decimal.Zero, err
	}
	return tb.Amount, nil
}

// WriteTokenBalance drops the record once the holder has nothing left, so
// listings only show current custody.
func (s *badgerState) WriteTokenBalance(tb *ledger.TokenBalance) error {
	if tb.Amount.IsNegative() {
		panic(tb.Amount)
	}
	key := buildTokenBalanceKey(tb.Holder, tb.Collection, tb.Serial)
	if tb.Amount.IsZero() {
		return s.txn.Delete(key)
	}
	return s.txn.Set(key, common.MsgpackMarshalPanic(tb))
}

func (s *badgerState) ListTokenBalances(holder ledger.Address) ([]*ledger.TokenBalance, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefixTokenBalance + holder.String() + ledger.KeySeparator)
	it := s.txn.NewIterator(opts)
	defer it.Close()

	var tbs []*ledger.TokenBalance
	for it.Seek(opts.Prefix); it.Valid(); it.Next() {
		val, err := it.Item().ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		var tb ledger.TokenBalance
		err = common.MsgpackUnmarshal(val, &tb)
		if err != nil {
			return nil, err
		}
		tbs = append(tbs, &tb)
	}
	return tbs, nil
}

func (s *badgerState) readTokenBalance(holder ledger.Address, collection string, serial uint64) (*ledger.TokenBalance, error) {
	val, err := readValue(s.txn, buildTokenBalanceKey(holder, collection, serial))
	if err != nil || val == nil {
		return nil, err
	}
	var tb ledger.TokenBalance
	err = common.MsgpackUnmarshal(val, &tb)
	return &tb, err
}

func buildUnitKey(collection string, serial uint64) []byte {
	key := append([]byte(prefixUnitPayload+collection), ledger.KeySeparator...)
	return append(key, serialToBytes(serial)...)
}

func buildTokenBalanceKey(holder ledger.Address, collection string, serial uint64) []byte {
	prefix := prefixTokenBalance + holder.String() + ledger.KeySeparator + collection + ledger.KeySeparator
	return append([]byte(prefix), serialToBytes(serial)...)
}
