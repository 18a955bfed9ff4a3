package ant

import (
	"fmt"
	"net/netip"
)

// Address identifies a node. It is carried on the wire as four bytes in
// network order, the same way an IPv4 address is.
type Address uint32

// AddressFrom4 builds an address from its four octets.
func AddressFrom4(a, b, c, d byte) Address {
	return Address(uint32(a)<<24 | uint32(b)<<16 | uint32(c)<<8 | uint32(d))
}

// ParseAddress parses a dotted-quad address such as "10.1.1.3".
func ParseAddress(s string) (Address, error) {
	ip, err := netip.ParseAddr(s)
	if err != nil || !ip.Is4() {
		return 0, fmt.Errorf("invalid node address %q", s)
	}

	b := ip.As4()

	return AddressFrom4(b[0], b[1], b[2], b[3]), nil
}

func (a Address) String() string {
	return fmt.Sprintf("%d.%d.%d.%d",
		byte(a>>24), byte(a>>16), byte(a>>8), byte(a))
}
