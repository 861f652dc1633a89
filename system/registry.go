package system

import (
	"encoding/binary"
	"fmt"

	"github.com/MixinNetwork/mixin/crypto"
	"github.com/MixinNetwork/mixin/logger"
	"github.com/MixinNetwork/nftattr/ledger"
	"github.com/shopspring/decimal"
)

const (
	RegistryAddress ledger.Address = "erd1qqqqqqqqqqqqqqqpqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqzllls8a5w6u"

	FunctionRegisterAndSetAllRoles = "registerAndSetAllRoles"

	TypeNFT = "NFT"
	TypeSFT = "SFT"

	minNameLength   = 3
	maxNameLength   = 20
	minTickerLength = 3
	maxTickerLength = 10
	suffixLength    = 6
)

// DefaultIssueCost is 0.05 of the native token.
var DefaultIssueCost = decimal.New(5, 16)

// Registry is the asset registry actor. It creates token collections and
// hands every role to the issuer.
type Registry struct {
	cost decimal.Decimal
}

func NewRegistry(cost decimal.Decimal) *Registry {
	return &Registry{cost: cost}
}

func (r *Registry) Execute(rt *ledger.Runtime, function string, args [][]byte) ([][]byte, error) {
	switch function {
	case FunctionRegisterAndSetAllRoles:
		return r.registerAndSetAllRoles(rt, args)
	}
	return nil, fmt.Errorf("%w %s", ledger.ErrUnknownFunction, function)
}

// registerAndSetAllRoles takes name, ticker, type and decimals and returns
// the new collection identifier.
func (r *Registry) registerAndSetAllRoles(rt *ledger.Runtime, args [][]byte) ([][]byte, error) {
	err := ledger.CheckArguments(args, 4)
	if err != nil {
		return nil, err
	}
	name, ticker, typ := string(args[0]), string(args[1]), string(args[2])
	decimals, err := ledger.DecodeUint64(args[3])
	if err != nil {
		return nil, err
	}

	if !rt.CallValue().Equal(r.cost) {
		return nil, fmt.Errorf("%w %s", ErrIssueCost, rt.CallValue())
	}
	if !validName(name) {
		return nil, fmt.Errorf("%w %q", ErrInvalidName, name)
	}
	if !validTicker(ticker) {
		return nil, fmt.Errorf("%w %q", ErrInvalidTicker, ticker)
	}
	var tokenType ledger.TokenType
	switch typ {
	case TypeNFT:
		tokenType = ledger.TokenTypeNonFungible
	case TypeSFT:
		tokenType = ledger.TokenTypeSemiFungible
	default:
		return nil, fmt.Errorf("%w %q", ErrInvalidType, typ)
	}
	if decimals != 0 {
		return nil, fmt.Errorf("%w %d", ErrInvalidDecimals, decimals)
	}

	s, err := rt.System()
	if err != nil {
		return nil, err
	}
	id, err := allocateIdentifier(s, ticker, rt.Caller(), rt.TxId())
	if err != nil {
		return nil, err
	}
	c := &ledger.Collection{
		Identifier: id,
		Name:       name,
		Ticker:     ticker,
		Type:       tokenType,
		Decimals:   0,
		Owner:      rt.Caller(),
	}
	c.SetRoles(rt.Caller(), ledger.AllNFTRoles...)
	err = s.WriteCollection(c)
	if err != nil {
		return nil, err
	}
	logger.Verbosef("Registry.registerAndSetAllRoles(%s, %s, %s) => %s\n", rt.Caller(), name, ticker, id)
	return [][]byte{[]byte(id)}, nil
}

func allocateIdentifier(s ledger.State, ticker string, caller ledger.Address, txId string) (string, error) {
	for i := uint64(0); ; i++ {
		seed := []byte(ticker + ":" + caller.String() + ":" + txId + ":")
		seed = binary.BigEndian.AppendUint64(seed, i)
		h := crypto.NewHash(seed)
		id := ticker + "-" + h.String()[:suffixLength]
		old, err := s.ReadCollection(id)
		if err != nil {
			return "", err
		}
		if old == nil {
			return id, nil
		}
	}
}

func validName(name string) bool {
	if len(name) < minNameLength || len(name) > maxNameLength {
		return false
	}
	for _, c := range name {
		if !isAlphanumeric(c) {
			return false
		}
	}
	return true
}

func validTicker(ticker string) bool {
	if len(ticker) < minTickerLength || len(ticker) > maxTickerLength {
		return false
	}
	for _, c := range ticker {
		if !isAlphanumeric(c) || (c >= 'a' && c <= 'z') {
			return false
		}
	}
	return true
}

func isAlphanumeric(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// RegisterArguments encodes the argument list of registerAndSetAllRoles.
func RegisterArguments(name, ticker, typ string, decimals uint64) [][]byte {
	return [][]byte{[]byte(name), []byte(ticker), []byte(typ), ledger.EncodeUint64(decimals)}
}
