package nft

import (
	"github.com/MixinNetwork/nftattr/ledger"
	"github.com/shopspring/decimal"
)

// MintAttributes is the tag every unit carries until its holder updates it.
var MintAttributes = []byte("common")

// Create mints one unit of the collection and transfers it to to.
func (c *UpdateAttributes) Create(rt *ledger.Runtime, to ledger.Address) (uint64, error) {
	id, err := requireTokenId(rt)
	if err != nil {
		return 0, err
	}
	if !to.Valid() {
		return 0, ErrInvalidRecipient
	}
	one := decimal.NewFromInt(1)
	serial, err := rt.NFTCreate(id, one, "", 0, nil, MintAttributes, nil)
	if err != nil {
		return 0, err
	}
	err = rt.TransferExecute(to, "", nil, ledger.Payment{Token: id, Serial: serial, Amount: one})
	return serial, err
}

// SendNFT moves a serial of the collection out of the contract. Any caller
// may move any serial the contract holds.
func (c *UpdateAttributes) SendNFT(rt *ledger.Runtime, to ledger.Address, serial uint64) error {
	id, err := requireTokenId(rt)
	if err != nil {
		return err
	}
	if !to.Valid() {
		return ErrInvalidRecipient
	}
	return rt.Transfer(to, ledger.TokenPayment(id, serial, 1))
}
