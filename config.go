package main

import (
	"fmt"
	"os"

	"github.com/MixinNetwork/nftattr/ledger"
	"github.com/MixinNetwork/nftattr/system"
	"github.com/pelletier/go-toml"
	"github.com/shopspring/decimal"
)

type Configuration struct {
	Ledger struct {
		DataDir   string `toml:"data-dir"`
		IssueCost string `toml:"issue-cost"`
		LogLevel  int    `toml:"log-level"`
	} `toml:"ledger"`
	Wallet struct {
		Owner  string `toml:"owner"`
		Holder string `toml:"holder"`
	} `toml:"wallet"`
}

func DefaultConfiguration() *Configuration {
	conf := &Configuration{}
	conf.Ledger.DataDir = "~/.mixin/nftattr/data"
	conf.Ledger.IssueCost = system.DefaultIssueCost.String()
	conf.Ledger.LogLevel = 2
	conf.Wallet.Owner = "erd1qyu5wthldzr8wx5c9ucg8kjagg0jfs53s8nr3zpz3hypefsdd8ssycr6th"
	conf.Wallet.Holder = "erd1fs0p347knaqdl8xgy0ya9ygpuegddatl0g45sekwwgzndw8za7pqskjf64"
	return conf
}

// Setup reads the configuration file at path, a missing file leaves the
// defaults in place.
func Setup(path string) (*Configuration, error) {
	conf := DefaultConfiguration()
	f, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return conf, nil
	} else if err != nil {
		return nil, err
	}
	err = toml.Unmarshal(f, conf)
	if err != nil {
		return nil, err
	}
	_, err = conf.IssueCost()
	if err != nil {
		return nil, err
	}
	if !conf.OwnerAddress().Valid() || !conf.HolderAddress().Valid() {
		return nil, fmt.Errorf("invalid wallet addresses %q %q", conf.Wallet.Owner, conf.Wallet.Holder)
	}
	return conf, nil
}

func (conf *Configuration) IssueCost() (decimal.Decimal, error) {
	cost, err := decimal.NewFromString(conf.Ledger.IssueCost)
	if err != nil || !cost.IsPositive() || !cost.IsInteger() {
		return decimal.Zero, fmt.Errorf("invalid issue cost %q", conf.Ledger.IssueCost)
	}
	return cost, nil
}

func (conf *Configuration) OwnerAddress() ledger.Address {
	return ledger.Address(conf.Wallet.Owner)
}

func (conf *Configuration) HolderAddress() ledger.Address {
	return ledger.Address(conf.Wallet.Holder)
}
