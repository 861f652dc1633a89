package main

import (
	"errors"
	"os"

	"github.com/MixinNetwork/nftattr/ledger"
	"github.com/pelletier/go-toml"
)

// State is what the interactor remembers between runs.
type State struct {
	ContractAddress string `toml:"contract_address"`
}

func LoadState(path string) (*State, error) {
	var s State
	f, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &s, nil
	} else if err != nil {
		return nil, err
	}
	err = toml.Unmarshal(f, &s)
	return &s, err
}

func (s *State) Save(path string) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (s *State) SetAddress(addr ledger.Address) {
	s.ContractAddress = addr.String()
}

func (s *State) CurrentAddress() (ledger.Address, error) {
	if s.ContractAddress == "" {
		return "", errors.New("no known contract, deploy first")
	}
	return ledger.Address(s.ContractAddress), nil
}
