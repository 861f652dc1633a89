package store

import (
	"github.com/MixinNetwork/mixin/common"
	"github.com/MixinNetwork/nftattr/ledger"
	"github.com/dgraph-io/badger/v3"
)

const (
	prefixCallPayload = "CALL:PAYLOAD:"
	prefixCallState   = "CALL:STATE:"
)

func (s *badgerState) WriteCall(call *ledger.Call) error {
	old, err := s.resetOldCall(call)
	if err != nil {
		return err
	}
	key := []byte(prefixCallPayload + call.Id)
	err = s.txn.Set(key, common.MsgpackMarshalPanic(call))
	if err != nil || old != nil {
		return err
	}

	key = buildCallTimedKey(call)
	return s.txn.Set(key, []byte{1})
}

func (s *badgerState) ReadCall(id string) (*ledger.Call, error) {
	val, err := readValue(s.txn, []byte(prefixCallPayload+id))
	if err != nil || val == nil {
		return nil, err
	}
	var call ledger.Call
	err = common.MsgpackUnmarshal(val, &call)
	return &call, err
}

// ListCalls returns calls in state ordered by creation time.
func (s *badgerState) ListCalls(state int, limit int) ([]*ledger.Call, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(callStatePrefix(state))
	it := s.txn.NewIterator(opts)
	defer it.Close()

	var calls []*ledger.Call
	for it.Seek(opts.Prefix); it.Valid(); it.Next() {
		key := it.Item().Key()
		id := string(key[len(opts.Prefix)+8:])
		call, err := s.ReadCall(id)
		if err != nil {
			return nil, err
		}
		calls = append(calls, call)
		if len(calls) == limit {
			break
		}
	}
	return calls, nil
}

// resetOldCall returns the stored call when its state index is unchanged,
// otherwise it drops the old index key.
func (s *badgerState) resetOldCall(call *ledger.Call) (*ledger.Call, error) {
	old, err := s.ReadCall(call.Id)
	if err != nil || old == nil {
		return nil, err
	}
	if old.State > call.State {
		panic(old.State)
	}
	if old.State == call.State {
		return old, nil
	}
	key := buildCallTimedKey(old)
	return nil, s.txn.Delete(key)
}

func buildCallTimedKey(call *ledger.Call) []byte {
	buf := tsToBytes(call.CreatedAt)
	prefix := callStatePrefix(call.State)
	key := append([]byte(prefix), buf...)
	return append(key, []byte(call.Id)...)
}

func callStatePrefix(state int) string {
	prefix := prefixCallState
	switch state {
	case ledger.CallStateInitial:
		return prefix + "initiall"
	case ledger.CallStateReturned:
		return prefix + "returned"
	case ledger.CallStateDone:
		return prefix + "doneeeee"
	}
	panic(state)
}
