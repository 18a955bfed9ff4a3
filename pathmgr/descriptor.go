package pathmgr

import (
	"fmt"
	"strings"

	"github.com/sarchlab/arap/ant"
)

// Kind names a path manager variant.
type Kind string

// Supported kinds.
const (
	KindUniform      Kind = "uniform"
	KindSmart        Kind = "smart"
	KindSmartDefault Kind = "smart-default"
)

var kindAliases = map[string]Kind{
	"uniform":                 KindUniform,
	"smart":                   KindSmart,
	"smart-default":           KindSmartDefault,
	"smartpathmanager":        KindSmart,
	"smartpathmanagerdefault": KindSmartDefault,
}

// A Descriptor is the immutable recipe shared by every node. Each node gets
// its own manager from Clone.
type Descriptor struct {
	Kind      Kind
	Smart     SmartParams
	Hops      int
	Addresses []ant.Address

	// NewRand returns the random stream used by the manager of a node.
	NewRand func(local ant.Address) Rand
}

// Parse builds the kind-specific part of a Descriptor. The smart kind takes
// c1, c2, zeta, wMax and varsigma, in this order.
func Parse(kind string, params []float64) (Descriptor, error) {
	k, ok := kindAliases[strings.ToLower(kind)]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	d := Descriptor{Kind: k, Smart: DefaultSmartParams()}

	switch k {
	case KindUniform, KindSmartDefault:
		if len(params) != 0 {
			return d, fmt.Errorf("%w: %s takes no parameters, got %d",
				ErrUnknownKind, k, len(params))
		}
	case KindSmart:
		if len(params) != 5 {
			return d, fmt.Errorf("%w: %s takes c1 c2 zeta wMax varsigma, got %d values",
				ErrUnknownKind, k, len(params))
		}

		if params[3] < 1 || params[3] != float64(uint32(params[3])) {
			return d, fmt.Errorf("%w: wMax must be a positive integer, got %v",
				ErrUnknownKind, params[3])
		}

		d.Smart = SmartParams{
			C1:        params[0],
			C2:        params[1],
			Zeta:      params[2],
			WindowMax: uint32(params[3]),
			Varsigma:  params[4],
		}
	}

	return d, nil
}

// Clone creates the manager of local.
func (d Descriptor) Clone(local ant.Address) (Manager, error) {
	if d.NewRand == nil {
		return nil, fmt.Errorf("path manager descriptor has no random source")
	}

	rng := d.NewRand(local)

	switch d.Kind {
	case KindUniform:
		m, err := NewUniform(local, d.Addresses, d.Hops, rng)
		if err != nil {
			return nil, err
		}

		return m, nil
	case KindSmart, KindSmartDefault:
		m, err := NewSmart(local, d.Addresses, d.Hops, rng, d.Smart)
		if err != nil {
			return nil, err
		}

		return m, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, d.Kind)
	}
}
