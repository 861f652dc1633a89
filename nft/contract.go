package nft

import (
	"fmt"

	"github.com/MixinNetwork/nftattr/ledger"
)

const CodeName = "update-attributes"

const (
	FunctionIssue      = "issue"
	FunctionCreate     = "create"
	FunctionUpdate     = "update"
	FunctionSendNFT    = "send_nft"
	FunctionNFTTokenId = "nft_token_id"

	CallbackIssue = "issue_callback"
)

// UpdateAttributes issues one non-fungible collection, mints into it and
// updates attributes of units sent back to it by their holders.
type UpdateAttributes struct{}

func New() ledger.Contract {
	return &UpdateAttributes{}
}

func (c *UpdateAttributes) Endpoints() map[string]*ledger.Endpoint {
	return map[string]*ledger.Endpoint{
		"init": {Handler: func(rt *ledger.Runtime, args [][]byte) ([][]byte, error) {
			return nil, ledger.CheckArguments(args, 0)
		}},
		FunctionIssue: {Payable: ledger.PayableNative, Handler: func(rt *ledger.Runtime, args [][]byte) ([][]byte, error) {
			err := ledger.CheckArguments(args, 2)
			if err != nil {
				return nil, err
			}
			return nil, c.Issue(rt, string(args[0]), string(args[1]))
		}},
		FunctionCreate: {Handler: func(rt *ledger.Runtime, args [][]byte) ([][]byte, error) {
			err := ledger.CheckArguments(args, 1)
			if err != nil {
				return nil, err
			}
			serial, err := c.Create(rt, ledger.Address(args[0]))
			if err != nil {
				return nil, err
			}
			return [][]byte{ledger.EncodeUint64(serial)}, nil
		}},
		FunctionUpdate: {Payable: ledger.PayableAny, Handler: func(rt *ledger.Runtime, args [][]byte) ([][]byte, error) {
			err := ledger.CheckArguments(args, 1)
			if err != nil {
				return nil, err
			}
			return nil, c.Update(rt, args[0])
		}},
		FunctionSendNFT: {Handler: func(rt *ledger.Runtime, args [][]byte) ([][]byte, error) {
			err := ledger.CheckArguments(args, 2)
			if err != nil {
				return nil, err
			}
			serial, err := ledger.DecodeUint64(args[1])
			if err != nil {
				return nil, err
			}
			return nil, c.SendNFT(rt, ledger.Address(args[0]), serial)
		}},
		FunctionNFTTokenId: {Handler: func(rt *ledger.Runtime, args [][]byte) ([][]byte, error) {
			err := ledger.CheckArguments(args, 0)
			if err != nil {
				return nil, err
			}
			id, err := c.NFTTokenId(rt)
			if err != nil {
				return nil, err
			}
			return [][]byte{[]byte(id)}, nil
		}},
	}
}

func (c *UpdateAttributes) Callback(rt *ledger.Runtime, name string, result *ledger.AsyncResult) error {
	switch name {
	case CallbackIssue:
		return c.IssueCallback(rt, result)
	}
	return fmt.Errorf("%w %s", ErrUnknownCallback, name)
}

// NFTTokenId is the view of the registry slot.
func (c *UpdateAttributes) NFTTokenId(rt *ledger.Runtime) (string, error) {
	return requireTokenId(rt)
}
