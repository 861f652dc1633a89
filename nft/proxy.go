package nft

import (
	"context"
	"fmt"

	"github.com/MixinNetwork/nftattr/ledger"
	"github.com/shopspring/decimal"
)

// Proxy builds transactions for a deployed UpdateAttributes contract.
type Proxy struct {
	Contract ledger.Address
}

func (p Proxy) Issue(from ledger.Address, name, ticker string, amount decimal.Decimal) *ledger.Tx {
	return &ledger.Tx{
		From:     from,
		To:       p.Contract,
		Function: FunctionIssue,
		Args:     [][]byte{[]byte(name), []byte(ticker)},
		Value:    amount,
	}
}

func (p Proxy) Create(from, to ledger.Address) *ledger.Tx {
	return &ledger.Tx{
		From:     from,
		To:       p.Contract,
		Function: FunctionCreate,
		Args:     [][]byte{[]byte(to)},
	}
}

func (p Proxy) Update(from ledger.Address, attributes []byte, token ledger.Payment) *ledger.Tx {
	return &ledger.Tx{
		From:      from,
		To:        p.Contract,
		Function:  FunctionUpdate,
		Args:      [][]byte{attributes},
		Transfers: []ledger.Payment{token},
	}
}

func (p Proxy) SendNFT(from, to ledger.Address, serial uint64) *ledger.Tx {
	return &ledger.Tx{
		From:     from,
		To:       p.Contract,
		Function: FunctionSendNFT,
		Args:     [][]byte{[]byte(to), ledger.EncodeUint64(serial)},
	}
}

func (p Proxy) NFTTokenId(ctx context.Context, l *ledger.Ledger) (string, error) {
	res, err := l.Query(ctx, p.Contract, FunctionNFTTokenId, nil)
	if err != nil || len(res) == 0 {
		return "", err
	}
	return string(res[0]), nil
}

// CreatedSerial decodes the result of a create transaction.
func CreatedSerial(receipt *ledger.Receipt) (uint64, error) {
	if len(receipt.Results) == 0 {
		return 0, fmt.Errorf("empty create receipt %s", receipt.TxId)
	}
	return ledger.DecodeUint64(receipt.Results[0])
}
