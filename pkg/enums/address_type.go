package enums

// AddressType distinguishes billing from shipping order addresses.
type AddressType string

const (
	AddressTypeBilling  AddressType = "billing"
	AddressTypeShipping AddressType = "shipping"
)

// String implements fmt.Stringer.
func (t AddressType) String() string {
	return string(t)
}
