package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/MixinNetwork/nftattr/ledger"
	"github.com/MixinNetwork/nftattr/nft"
	"github.com/MixinNetwork/nftattr/store"
	"github.com/MixinNetwork/nftattr/system"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

type interactor struct {
	conf      *Configuration
	db        *store.BadgerStore
	ledger    *ledger.Ledger
	state     *State
	statePath string
}

func newInteractor(c *cli.Context) (*interactor, error) {
	conf, err := Setup(expandPath(c.String("config")))
	if err != nil {
		return nil, err
	}
	logger.SetLevel(conf.Ledger.LogLevel)

	dir := conf.Ledger.DataDir
	if d := c.String("dir"); d != "" {
		dir = d
	}
	dir = expandPath(dir)
	err = os.MkdirAll(filepath.Dir(dir), 0755)
	if err != nil {
		return nil, err
	}
	db, err := store.OpenBadger(c.Context, dir)
	if err != nil {
		return nil, err
	}
	l, err := buildLedger(db, conf)
	if err != nil {
		db.Close()
		return nil, err
	}

	statePath := expandPath(c.String("state"))
	state, err := LoadState(statePath)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &interactor{
		conf:      conf,
		db:        db,
		ledger:    l,
		state:     state,
		statePath: statePath,
	}, nil
}

func buildLedger(db ledger.Store, conf *Configuration) (*ledger.Ledger, error) {
	cost, err := conf.IssueCost()
	if err != nil {
		return nil, err
	}
	l, err := ledger.New(db)
	if err != nil {
		return nil, err
	}
	l.RegisterCode(nft.CodeName, nft.New)
	l.RegisterSystem(system.RegistryAddress, system.NewRegistry(cost))
	return l, nil
}

func (ia *interactor) Close() error {
	err := ia.state.Save(ia.statePath)
	if err != nil {
		ia.db.Close()
		return err
	}
	return ia.db.Close()
}

func (ia *interactor) proxy() (nft.Proxy, error) {
	addr, err := ia.state.CurrentAddress()
	return nft.Proxy{Contract: addr}, err
}

func (ia *interactor) wallet(v string, fallback ledger.Address) ledger.Address {
	if v == "" {
		return fallback
	}
	return ledger.Address(v)
}

func withInteractor(fn func(c *cli.Context, ia *interactor) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		ia, err := newInteractor(c)
		if err != nil {
			return err
		}
		err = fn(c, ia)
		cerr := ia.Close()
		if err != nil {
			return err
		}
		return cerr
	}
}

var deployCmd = withInteractor(func(c *cli.Context, ia *interactor) error {
	addr, err := ia.ledger.Deploy(c.Context, ia.conf.OwnerAddress(), nft.CodeName, nil)
	if err != nil {
		return err
	}
	ia.state.SetAddress(addr)
	fmt.Printf("new address: %s\n", addr)
	return nil
})

var fundCmd = withInteractor(func(c *cli.Context, ia *interactor) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("usage: fund ADDRESS AMOUNT")
	}
	amount, err := decimal.NewFromString(c.Args().Get(1))
	if err != nil {
		return err
	}
	addr := ledger.Address(c.Args().Get(0))
	err = ia.ledger.Fund(c.Context, addr, amount)
	if err != nil {
		return err
	}
	bal, err := ia.ledger.Balance(c.Context, addr)
	fmt.Printf("balance: %s %s\n", bal, ledger.NativeToken)
	return err
})

var issueCmd = withInteractor(func(c *cli.Context, ia *interactor) error {
	p, err := ia.proxy()
	if err != nil {
		return err
	}
	amount, err := decimal.NewFromString(c.String("amount"))
	if err != nil {
		return err
	}
	tx := p.Issue(ia.conf.OwnerAddress(), c.String("name"), c.String("ticker"), amount)
	receipt, err := ia.ledger.Invoke(c.Context, tx)
	if err != nil {
		return err
	}
	fmt.Printf("Result: tx %s calls %v\n", receipt.TxId, receipt.Calls)

	_, err = ia.ledger.Settle(c.Context)
	if err != nil {
		return err
	}
	msg, err := reportIssue(c.Context, ia.ledger, p, receipt)
	if err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
})

// reportIssue describes the outcome of a settled issue transaction. A
// refunded issuance is reported, not returned as an error.
func reportIssue(ctx context.Context, l *ledger.Ledger, p nft.Proxy, receipt *ledger.Receipt) (string, error) {
	for _, id := range receipt.Calls {
		call, err := l.ReadCall(ctx, id)
		if err != nil {
			return "", err
		}
		if call == nil || call.Result == nil {
			return fmt.Sprintf("issue pending: call %s", id), nil
		}
		if !call.Result.Ok {
			return fmt.Sprintf("issue failed: %s, refunded %s", call.Result.Message, call.Result.Returned), nil
		}
	}
	id, err := p.NFTTokenId(ctx, l)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("token: %s", id), nil
}

var createCmd = withInteractor(func(c *cli.Context, ia *interactor) error {
	p, err := ia.proxy()
	if err != nil {
		return err
	}
	to := ia.wallet(c.String("to"), ia.conf.HolderAddress())
	receipt, err := ia.ledger.Invoke(c.Context, p.Create(ia.conf.OwnerAddress(), to))
	if err != nil {
		return err
	}
	serial, err := nft.CreatedSerial(receipt)
	if err != nil {
		return err
	}
	fmt.Printf("Result: tx %s serial %d to %s\n", receipt.TxId, serial, to)
	return nil
})

var updateCmd = withInteractor(func(c *cli.Context, ia *interactor) error {
	p, err := ia.proxy()
	if err != nil {
		return err
	}
	id, err := p.NFTTokenId(c.Context, ia.ledger)
	if err != nil {
		return err
	}
	from := ia.wallet(c.String("from"), ia.conf.HolderAddress())
	token := ledger.TokenPayment(id, c.Uint64("serial"), 1)
	receipt, err := ia.ledger.Invoke(c.Context, p.Update(from, []byte(c.String("attributes")), token))
	if err != nil {
		return err
	}
	unit, err := ia.ledger.ReadUnit(c.Context, id, token.Serial)
	if err != nil {
		return err
	}
	fmt.Printf("Result: tx %s %s attributes %q\n", receipt.TxId, unit.Identifier(), unit.Attributes)
	return nil
})

var sendNFTCmd = withInteractor(func(c *cli.Context, ia *interactor) error {
	p, err := ia.proxy()
	if err != nil {
		return err
	}
	to := ia.wallet(c.String("to"), ia.conf.HolderAddress())
	receipt, err := ia.ledger.Invoke(c.Context, p.SendNFT(ia.conf.OwnerAddress(), to, c.Uint64("serial")))
	if err != nil {
		return err
	}
	fmt.Printf("Result: tx %s\n", receipt.TxId)
	return nil
})

var tokenIdCmd = withInteractor(func(c *cli.Context, ia *interactor) error {
	p, err := ia.proxy()
	if err != nil {
		return err
	}
	id, err := p.NFTTokenId(c.Context, ia.ledger)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
})

var balanceCmd = withInteractor(func(c *cli.Context, ia *interactor) error {
	addr := ia.wallet(c.Args().First(), ia.conf.OwnerAddress())
	bal, err := ia.ledger.Balance(c.Context, addr)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", bal, ledger.NativeToken)
	tbs, err := ia.ledger.ListTokenBalances(c.Context, addr)
	if err != nil {
		return err
	}
	for _, tb := range tbs {
		fmt.Printf("%s %s#%d\n", tb.Amount, tb.Collection, tb.Serial)
	}
	return nil
})

var settleCmd = withInteractor(func(c *cli.Context, ia *interactor) error {
	n, err := ia.ledger.Settle(c.Context)
	if err != nil {
		return err
	}
	fmt.Printf("settled %d calls\n", n)
	return nil
})
