package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	NativeToken    = "EGLD"
	NativeDecimals = 18

	// KeySeparator joins store key parts, addresses must not contain it.
	KeySeparator = "/"
)

type TokenType string

const (
	TokenTypeNonFungible  TokenType = "NonFungibleESDT"
	TokenTypeSemiFungible TokenType = "SemiFungibleESDT"
)

type Role string

const (
	RoleNFTCreate           Role = "ESDTRoleNFTCreate"
	RoleNFTBurn             Role = "ESDTRoleNFTBurn"
	RoleNFTUpdateAttributes Role = "ESDTRoleNFTUpdateAttributes"
	RoleNFTAddURI           Role = "ESDTRoleNFTAddURI"
)

// AllNFTRoles are the roles granted by a register-and-set-all-roles issuance.
var AllNFTRoles = []Role{RoleNFTCreate, RoleNFTBurn, RoleNFTUpdateAttributes, RoleNFTAddURI}

type Account struct {
	Address Address
	Balance decimal.Decimal
	Nonce   uint64
	Code    string
	Owner   Address
}

type Collection struct {
	Identifier string
	Name       string
	Ticker     string
	Type       TokenType
	Decimals   int
	Owner      Address
	Nonce      uint64
	Roles      map[string][]Role
}

func (c *Collection) HasRole(addr Address, role Role) bool {
	for _, r := range c.Roles[addr.String()] {
		if r == role {
			return true
		}
	}
	return false
}

func (c *Collection) SetRoles(addr Address, roles ...Role) {
	if c.Roles == nil {
		c.Roles = make(map[string][]Role)
	}
	for _, r := range roles {
		if !c.HasRole(addr, r) {
			c.Roles[addr.String()] = append(c.Roles[addr.String()], r)
		}
	}
}

// Unit is one minted serial of a collection. Quantities are tracked per
// holder in TokenBalance records.
type Unit struct {
	Collection string
	Serial     uint64
	Name       string
	Royalties  int
	Hash       []byte
	Attributes []byte
	URIs       []string
	Creator    Address
}

func (u *Unit) Identifier() string {
	return fmt.Sprintf("%s-%02x", u.Collection, EncodeUint64(u.Serial))
}

type TokenBalance struct {
	Holder     Address
	Collection string
	Serial     uint64
	Amount     decimal.Decimal
}

// Payment is either native value (empty Token or NativeToken) or a quantity
// of one token serial.
type Payment struct {
	Token  string
	Serial uint64
	Amount decimal.Decimal
}

func NativePayment(amount decimal.Decimal) Payment {
	return Payment{Token: NativeToken, Amount: amount}
}

func TokenPayment(token string, serial uint64, amount int64) Payment {
	return Payment{Token: token, Serial: serial, Amount: decimal.NewFromInt(amount)}
}

func (p Payment) IsNative() bool {
	return p.Token == "" || p.Token == NativeToken
}

func (p Payment) String() string {
	if p.IsNative() {
		return p.Amount.String() + " " + NativeToken
	}
	return fmt.Sprintf("%s %s#%d", p.Amount, p.Token, p.Serial)
}
