package nft

import (
	"github.com/MixinNetwork/nftattr/ledger"
)

// Update rewrites the attributes of the attached unit and returns it to the
// caller. Both steps and the payment run in one invocation, so a failed
// mutation leaves the unit with its holder.
func (c *UpdateAttributes) Update(rt *ledger.Runtime, attributes []byte) error {
	_, err := requireTokenId(rt)
	if err != nil {
		return err
	}
	token, err := rt.SingleTransfer()
	if err != nil {
		return err
	}
	err = rt.NFTUpdateAttributes(token.Token, token.Serial, attributes)
	if err != nil {
		return err
	}
	return rt.Transfer(rt.Caller(), ledger.TokenPayment(token.Token, token.Serial, 1))
}
