package store

import (
	"github.com/MixinNetwork/mixin/common"
	"github.com/MixinNetwork/nftattr/ledger"
)

const (
	prefixAccountPayload = "ACCOUNT:PAYLOAD:"
	prefixStorageValue   = "STORAGE:VALUE:"
)

func (s *badgerState) ReadAccount(addr ledger.Address) (*ledger.Account, error) {
	key := []byte(prefixAccountPayload + addr.String())
	val, err := readValue(s.txn, key)
	if err != nil || val == nil {
		return nil, err
	}
	var acc ledger.Account
	err = common.MsgpackUnmarshal(val, &acc)
	return &acc, err
}

func (s *badgerState) WriteAccount(acc *ledger.Account) error {
	if !acc.Address.Valid() {
		panic(acc.Address)
	}
	if acc.Balance.IsNegative() {
		panic(acc.Balance)
	}
	old, err := s.ReadAccount(acc.Address)
	if err != nil {
		return err
	}
	if old != nil && old.Code != "" && old.Code != acc.Code {
		panic(old.Code)
	}
	key := []byte(prefixAccountPayload + acc.Address.String())
	return s.txn.Set(key, common.MsgpackMarshalPanic(acc))
}

func (s *badgerState) ReadStorage(addr ledger.Address, key []byte) ([]byte, error) {
	return readValue(s.txn, buildStorageKey(addr, key))
}

func (s *badgerState) WriteStorage(addr ledger.Address, key, val []byte) error {
	if len(val) == 0 {
		return s.txn.Delete(buildStorageKey(addr, key))
	}
	return s.txn.Set(buildStorageKey(addr, key), val)
}

func buildStorageKey(addr ledger.Address, key []byte) []byte {
	prefix := prefixStorageValue + addr.String() + ledger.KeySeparator
	return append([]byte(prefix), key...)
}
