package expand

import (
	"fmt"
	"math"
	"strconv"
)

// Bound caps a dimension of an expansion. The zero value is Unbounded,
// which is distinct from Cap(0).
type Bound struct {
	n      int
	capped bool
}

// Unbounded places no cap on a dimension.
var Unbounded = Bound{}

// Cap returns a bound of n. A negative n is a bound of 0.
func Cap(n int) Bound {
	return Bound{n: max(n, 0), capped: true}
}

// Capped reports whether b is a numeric cap.
func (b Bound) Capped() bool {
	return b.capped
}

// Value returns the cap, or math.MaxInt when unbounded.
func (b Bound) Value() int {
	if !b.capped {
		return math.MaxInt
	}
	return b.n
}

// Ptr returns the cap as a pointer, nil when unbounded.
func (b Bound) Ptr() *int {
	if !b.capped {
		return nil
	}
	n := b.n
	return &n
}

func (b Bound) String() string {
	if !b.capped {
		return "unbounded"
	}
	return strconv.Itoa(b.n)
}

// ParseBound parses a non-negative integer. The empty string is Unbounded.
func ParseBound(s string) (Bound, error) {
	if s == "" {
		return Unbounded, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Unbounded, fmt.Errorf("invalid bound %q: %w", s, err)
	}
	if n < 0 {
		return Unbounded, fmt.Errorf("invalid bound %q: must not be negative", s)
	}
	return Cap(n), nil
}

// Options is the expansion budget of a single ExpandReplies call. The zero
// value expands everything.
type Options struct {
	// Limit caps how many children of each node are expanded further.
	// Children past the cap are kept but not recursed into.
	Limit Bound
	// Depth caps how many levels below the root are expanded. Cap(0)
	// returns the already loaded tree.
	Depth Bound
}
