package routetarget

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/imamik/rtctl/internal/platform/contrail"
)

// Scheme is the first component of every route-target key.
const Scheme = "target"

// Key is a parsed route-target key.
type Key struct {
	ASN    string
	Number uint64
}

// Parse splits a key of the form target:<asn>:<number>.
func Parse(s string) (Key, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || parts[0] != Scheme {
		return Key{}, fmt.Errorf("%w: route target %q must look like %s:<asn>:<number>",
			contrail.ErrInvalidArgument, s, Scheme)
	}
	if parts[1] == "" {
		return Key{}, fmt.Errorf("%w: route target %q has an empty asn", contrail.ErrInvalidArgument, s)
	}
	n, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return Key{}, fmt.Errorf("%w: route target %q has a non-numeric number part",
			contrail.ErrInvalidArgument, s)
	}
	return Key{ASN: parts[1], Number: n}, nil
}

// Normalize turns user input into a canonical key. "64512:500" becomes
// "target:64512:500"; input already carrying the scheme is kept as is.
// The result is validated with Parse.
func Normalize(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, Scheme) {
		s = Scheme + ":" + s
	}
	if _, err := Parse(s); err != nil {
		return "", err
	}
	return s, nil
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%d", Scheme, k.ASN, k.Number)
}
