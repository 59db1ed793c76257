package horde

import "github.com/google/uuid"

// Address identifies an owner. Addresses are opaque strings; equality is
// the only operation the engine performs on them.
type Address string

// BurnAddress is the zero sentinel. It is a valid but terminal owner:
// creatures transferred to it persist but are permanently unreachable,
// because no caller identity can ever equal the sentinel.
const BurnAddress Address = "0"

// NewAddress mints a fresh random Address.
//
// Postcondition: The returned Address is non-empty and never equals BurnAddress.
func NewAddress() Address {
	return Address(uuid.NewString())
}

// IsBurn reports whether a is the burn sentinel.
func (a Address) IsBurn() bool {
	return a == BurnAddress
}
