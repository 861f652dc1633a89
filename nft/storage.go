package nft

import "github.com/MixinNetwork/nftattr/ledger"

const (
	storageKeyTokenId  = "nftTokenId"
	storageKeyIssuance = "issuanceCall"
)

func readTokenId(rt *ledger.Runtime) (string, error) {
	val, err := rt.StorageGet([]byte(storageKeyTokenId))
	return string(val), err
}

// requireTokenId returns the issued collection or ErrNotIssued.
func requireTokenId(rt *ledger.Runtime) (string, error) {
	id, err := readTokenId(rt)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", ErrNotIssued
	}
	return id, nil
}

// writeTokenId sets the slot once, it is never overwritten nor cleared.
func writeTokenId(rt *ledger.Runtime, id string) error {
	old, err := readTokenId(rt)
	if err != nil {
		return err
	}
	if old != "" {
		return ErrAlreadyIssued
	}
	if id == "" {
		return ErrNotIssued
	}
	return rt.StorageSet([]byte(storageKeyTokenId), []byte(id))
}

// issuanceIsPending reports whether the registry call recorded by Issue is
// still outstanding. A marker left behind by a failed callback points at a
// call that is already done and no longer blocks a new issue.
func issuanceIsPending(rt *ledger.Runtime) (bool, error) {
	val, err := rt.StorageGet([]byte(storageKeyIssuance))
	if err != nil || len(val) == 0 {
		return false, err
	}
	state, err := rt.CallState(string(val))
	if err != nil {
		return false, err
	}
	return state == ledger.CallStateInitial || state == ledger.CallStateReturned, nil
}

func setIssuancePending(rt *ledger.Runtime, callId string) error {
	return rt.StorageSet([]byte(storageKeyIssuance), []byte(callId))
}

func clearIssuancePending(rt *ledger.Runtime) error {
	return rt.StorageSet([]byte(storageKeyIssuance), nil)
}
