package ledger

import (
	"fmt"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/shopspring/decimal"
)

const maxRoyalties = 10000

// NFTCreate mints a new serial of collection into the executing account. The
// account needs the create role, it returns the new serial.
func (rt *Runtime) NFTCreate(collection string, quantity decimal.Decimal, name string, royalties int, hash, attributes []byte, uris []string) (uint64, error) {
	if rt.exec.readOnly {
		return 0, ErrReadOnly
	}
	c, err := rt.readCollection(collection, RoleNFTCreate)
	if err != nil {
		return 0, err
	}
	if !quantity.IsPositive() || !quantity.IsInteger() {
		return 0, fmt.Errorf("%w %s", ErrInvalidQuantity, quantity)
	}
	if c.Type == TokenTypeNonFungible && !quantity.Equal(decimal.NewFromInt(1)) {
		return 0, fmt.Errorf("%w %s for %s", ErrInvalidQuantity, quantity, c.Type)
	}
	if royalties < 0 || royalties > maxRoyalties {
		return 0, fmt.Errorf("%w %d", ErrInvalidRoyalties, royalties)
	}

	c.Nonce++
	u := &Unit{
		Collection: c.Identifier,
		Serial:     c.Nonce,
		Name:       name,
		Royalties:  royalties,
		Hash:       hash,
		Attributes: attributes,
		URIs:       uris,
		Creator:    rt.self,
	}
	old, err := rt.state.ReadUnit(u.Collection, u.Serial)
	if err != nil {
		return 0, err
	} else if old != nil {
		panic(u.Identifier())
	}
	err = rt.state.WriteCollection(c)
	if err != nil {
		return 0, err
	}
	err = rt.state.WriteUnit(u)
	if err != nil {
		return 0, err
	}
	err = rt.credit(rt.self, Payment{Token: u.Collection, Serial: u.Serial, Amount: quantity})
	if err != nil {
		return 0, err
	}
	logger.Verbosef("Runtime.NFTCreate(%s, %s) => %s\n", rt.self, quantity, u.Identifier())
	return u.Serial, nil
}

// NFTUpdateAttributes replaces the attributes of a serial held by the
// executing account. The account needs the update attributes role.
func (rt *Runtime) NFTUpdateAttributes(collection string, serial uint64, attributes []byte) error {
	if rt.exec.readOnly {
		return ErrReadOnly
	}
	_, err := rt.readCollection(collection, RoleNFTUpdateAttributes)
	if err != nil {
		return err
	}
	u, err := rt.state.ReadUnit(collection, serial)
	if err != nil {
		return err
	} else if u == nil {
		return fmt.Errorf("%w %s#%d", ErrUnitNotFound, collection, serial)
	}
	bal, err := rt.state.ReadTokenBalance(rt.self, collection, serial)
	if err != nil {
		return err
	}
	if !bal.IsPositive() {
		return fmt.Errorf("%w %s does not hold %s", ErrInsufficientFunds, rt.self, u.Identifier())
	}
	u.Attributes = attributes
	logger.Verbosef("Runtime.NFTUpdateAttributes(%s, %s, %x)\n", rt.self, u.Identifier(), attributes)
	return rt.state.WriteUnit(u)
}

func (rt *Runtime) readCollection(id string, role Role) (*Collection, error) {
	c, err := rt.state.ReadCollection(id)
	if err != nil {
		return nil, err
	} else if c == nil {
		return nil, fmt.Errorf("%w %s", ErrCollectionNotFound, id)
	}
	if !c.HasRole(rt.self, role) {
		return nil, fmt.Errorf("%w: %s lacks %s on %s", ErrRoleMissing, rt.self, role, id)
	}
	return c, nil
}
