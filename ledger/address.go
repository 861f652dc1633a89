package ledger

import (
	"encoding/binary"
	"strings"

	"github.com/MixinNetwork/mixin/crypto"
)

const contractAddressPrefix = "erd1qqqqqqqqqqqqqpgq"

type Address string

func (a Address) String() string {
	return string(a)
}

func (a Address) IsZero() bool {
	return a == ""
}

// Valid reports whether the address can hold an account. The separator
// is reserved by the store key layout.
func (a Address) Valid() bool {
	return a != "" && !strings.Contains(string(a), KeySeparator)
}

func (a Address) IsContract() bool {
	return strings.HasPrefix(string(a), contractAddressPrefix)
}

// NewContractAddress derives the address of the contract deployed by owner
// with its current account nonce.
func NewContractAddress(owner Address, nonce uint64) Address {
	seed := append([]byte(owner), binary.BigEndian.AppendUint64(nil, nonce)...)
	h := crypto.NewHash(seed)
	return Address(contractAddressPrefix + h.String()[:40])
}
