// Package dist provides the named random distributions used to drive a
// simulation, and reproducible random streams to sample them.
package dist

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidParams is returned for a malformed or out-of-range distribution.
var ErrInvalidParams = errors.New("invalid distribution parameters")

// A Distribution draws values.
type Distribution interface {
	// Sample returns a real value.
	Sample() float64

	// SampleInt returns an integer value.
	SampleInt() int
}

// Kind names a distribution family.
type Kind string

// Supported families.
const (
	KindConstant    Kind = "constant"
	KindUniform     Kind = "uniform"
	KindTriangular  Kind = "triangular"
	KindExponential Kind = "exponential"
	KindNormal      Kind = "normal"
)

var kindArity = map[Kind]int{
	KindConstant:    1,
	KindUniform:     2,
	KindTriangular:  3,
	KindExponential: 2,
	KindNormal:      3,
}

var kindAliases = map[string]Kind{
	"constant":                  KindConstant,
	"uniform":                   KindUniform,
	"triangular":                KindTriangular,
	"exponential":               KindExponential,
	"normal":                    KindNormal,
	"constantrandomvariable":    KindConstant,
	"uniformrandomvariable":     KindUniform,
	"triangularrandomvariable":  KindTriangular,
	"exponentialrandomvariable": KindExponential,
	"normalrandomvariable":      KindNormal,
}

// Spec describes a distribution: its family and parameters.
//
//	constant    value
//	uniform     min max
//	triangular  min max mode
//	exponential mean bound
//	normal      mean variance bound
type Spec struct {
	Kind   Kind
	Params []float64
}

// Parse reads a spec written as the family name followed by its parameters,
// separated by blanks, e.g. "uniform 2 10".
func Parse(s string) (Spec, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Spec{}, fmt.Errorf("%w: empty distribution", ErrInvalidParams)
	}

	kind, ok := kindAliases[strings.ToLower(fields[0])]
	if !ok {
		return Spec{}, fmt.Errorf("%w: unknown distribution %q",
			ErrInvalidParams, fields[0])
	}

	spec := Spec{Kind: kind}

	for _, f := range fields[1:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: %q is not a number", ErrInvalidParams, f)
		}

		spec.Params = append(spec.Params, v)
	}

	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}

	return spec, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Spec {
	spec, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return spec
}

// UnmarshalYAML reads a spec from a scalar such as "normal 10 4 5".
func (s *Spec) UnmarshalYAML(value *yaml.Node) error {
	var text string
	if err := value.Decode(&text); err != nil {
		return err
	}

	parsed, err := Parse(text)
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}

// MarshalYAML writes the spec back in its textual form.
func (s Spec) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

func (s Spec) String() string {
	parts := []string{string(s.Kind)}
	for _, p := range s.Params {
		parts = append(parts, strconv.FormatFloat(p, 'g', -1, 64))
	}

	return strings.Join(parts, " ")
}

func (s Spec) param(i int) float64 {
	if i >= len(s.Params) {
		return 0
	}

	return s.Params[i]
}

// Validate checks the parameters. No family accepts negative values, and the
// bounds of a family must enclose its central value.
func (s Spec) Validate() error {
	arity, ok := kindArity[s.Kind]
	if !ok {
		return fmt.Errorf("%w: unknown distribution %q", ErrInvalidParams, s.Kind)
	}

	if len(s.Params) != arity {
		return fmt.Errorf("%w: %s takes %d parameters, got %d",
			ErrInvalidParams, s.Kind, arity, len(s.Params))
	}

	for _, p := range s.Params {
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("%w: %s", ErrInvalidParams, s)
		}
	}

	a, b, c := s.param(0), s.param(1), s.param(2)

	var valid bool

	switch s.Kind {
	case KindConstant:
		valid = true
	case KindUniform:
		valid = a <= b
	case KindTriangular:
		valid = a <= b && c >= a && c <= b
	case KindExponential:
		valid = b >= a
	case KindNormal:
		valid = c <= a
	}

	if !valid {
		return fmt.Errorf("%w: %s", ErrInvalidParams, s)
	}

	return nil
}

// New creates a distribution that draws from rng.
func (s Spec) New(rng *rand.Rand) (Distribution, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	a, b, c := s.param(0), s.param(1), s.param(2)

	switch s.Kind {
	case KindConstant:
		return constant{value: a}, nil
	case KindUniform:
		return uniform{rng: rng, min: a, max: b}, nil
	case KindTriangular:
		return triangular{rng: rng, min: a, max: b, mode: c}, nil
	case KindExponential:
		return exponential{rng: rng, mean: a, bound: b}, nil
	default:
		return normal{rng: rng, mean: a, stddev: math.Sqrt(b), bound: c}, nil
	}
}

// Constant returns a distribution that always yields v.
func Constant(v float64) Distribution {
	return constant{value: v}
}

type constant struct {
	value float64
}

func (d constant) Sample() float64 { return d.value }
func (d constant) SampleInt() int  { return int(d.value) }

type uniform struct {
	rng      *rand.Rand
	min, max float64
}

func (d uniform) Sample() float64 {
	return d.min + d.rng.Float64()*(d.max-d.min)
}

// SampleInt returns an integer in [min, max], both ends included.
func (d uniform) SampleInt() int {
	return int(d.min + d.rng.Float64()*(d.max-d.min+1))
}

type triangular struct {
	rng            *rand.Rand
	min, max, mode float64
}

func (d triangular) Sample() float64 {
	width := d.max - d.min
	if width == 0 {
		return d.min
	}

	u := d.rng.Float64()
	if u <= (d.mode-d.min)/width {
		return d.min + math.Sqrt(u*width*(d.mode-d.min))
	}

	return d.max - math.Sqrt((1-u)*width*(d.max-d.mode))
}

func (d triangular) SampleInt() int { return int(d.Sample()) }

// exponential discards the draws above bound. A zero bound only occurs with a
// zero mean.
type exponential struct {
	rng         *rand.Rand
	mean, bound float64
}

func (d exponential) Sample() float64 {
	if d.mean == 0 {
		return 0
	}

	for {
		v := d.rng.ExpFloat64() * d.mean
		if v <= d.bound {
			return v
		}
	}
}

func (d exponential) SampleInt() int { return int(d.Sample()) }

// normal discards the draws farther than bound from the mean. A zero bound
// always yields the mean.
type normal struct {
	rng                 *rand.Rand
	mean, stddev, bound float64
}

func (d normal) Sample() float64 {
	if d.bound == 0 || d.stddev == 0 {
		return d.mean
	}

	for {
		v := d.mean + d.rng.NormFloat64()*d.stddev
		if math.Abs(v-d.mean) <= d.bound {
			return v
		}
	}
}

func (d normal) SampleInt() int { return int(d.Sample()) }
