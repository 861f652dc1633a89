package nft

import (
	"fmt"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/MixinNetwork/nftattr/ledger"
	"github.com/MixinNetwork/nftattr/system"
)

// Issue sends the attached payment to the registry to create the collection.
// Execution ends at the call boundary, the outcome is handled by
// IssueCallback.
func (c *UpdateAttributes) Issue(rt *ledger.Runtime, name, ticker string) error {
	id, err := readTokenId(rt)
	if err != nil {
		return err
	}
	if id != "" {
		return ErrAlreadyIssued
	}
	pending, err := issuanceIsPending(rt)
	if err != nil {
		return err
	}
	if pending {
		return ErrIssuancePending
	}
	amount := rt.CallValue()
	if !amount.IsPositive() {
		return fmt.Errorf("%w %s", ledger.ErrInvalidPayment, amount)
	}

	args := system.RegisterArguments(name, ticker, system.TypeNFT, 0)
	callId, err := rt.AsyncCall(system.RegistryAddress, system.FunctionRegisterAndSetAllRoles, args, amount, CallbackIssue)
	if err != nil {
		return err
	}
	return setIssuancePending(rt, callId)
}

// IssueCallback stores the new identifier, or refunds whatever the registry
// returned to the caller of Issue.
func (c *UpdateAttributes) IssueCallback(rt *ledger.Runtime, result *ledger.AsyncResult) error {
	err := clearIssuancePending(rt)
	if err != nil {
		return err
	}

	if result.Ok {
		if len(result.Data) == 0 {
			return ErrNotIssued
		}
		id := string(result.Data[0])
		logger.Printf("UpdateAttributes.IssueCallback(%s) => %s\n", rt.Self(), id)
		return writeTokenId(rt, id)
	}

	returned := rt.CallValue()
	logger.Printf("UpdateAttributes.IssueCallback(%s) => %s refund %s to %s\n", rt.Self(), result.Message, returned, rt.Caller())
	if !returned.IsPositive() {
		return nil
	}
	return rt.Transfer(rt.Caller(), ledger.NativePayment(returned))
}
