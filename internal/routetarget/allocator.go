package routetarget

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/imamik/rtctl/internal/platform/contrail"
)

// Offset is added to the number of the existing key. It places derived keys
// above the range operators usually assign by hand.
const Offset = 10000

// JitterSource returns the random component added to a derived number.
type JitterSource func() uint64

// RandomJitter draws 16 random bits.
func RandomJitter() uint64 {
	return uint64(rand.N(1 << 16))
}

// NoJitter disables jitter, making derivation deterministic.
func NoJitter() uint64 {
	return 0
}

// Allocator derives new route-target keys from existing ones.
type Allocator struct {
	jitter JitterSource
}

// NewAllocator returns an allocator using the given jitter source. A nil
// source means RandomJitter.
func NewAllocator(jitter JitterSource) *Allocator {
	if jitter == nil {
		jitter = RandomJitter
	}
	return &Allocator{jitter: jitter}
}

// DeriveNext returns a key with the same asn as existing and a number of
// existing.Number + Offset + jitter.
func (a *Allocator) DeriveNext(existing string) (string, error) {
	key, err := Parse(existing)
	if err != nil {
		return "", err
	}
	bump := Offset + a.jitter()
	if key.Number > math.MaxUint64-bump {
		return "", fmt.Errorf("%w: route target %q leaves no room for a derived number",
			contrail.ErrInvalidArgument, existing)
	}
	key.Number += bump
	return key.String(), nil
}
