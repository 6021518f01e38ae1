package ebmcore

import "math"

// MultiplyOverflows reports whether a*b would overflow a uint64, without ever
// computing the overflowing product. This is the explicit safe-multiply guard
// called out for size-driven allocations: tensor volumes, histogram byte
// sizes, and packed-word counts are all checked with it before anything is
// allocated, rather than allowed to wrap silently or panic deep in a malloc
// equivalent.
func MultiplyOverflows(a, b uint64) bool {
	if a == 0 || b == 0 {
		return false
	}
	return a > math.MaxUint64/b
}

// SafeMultiply multiplies a and b, returning a ResourceError tagged with op
// instead of a wrapped result if the product would overflow.
func SafeMultiply(op string, a, b uint64) (uint64, error) {
	if MultiplyOverflows(a, b) {
		return 0, &ResourceError{Op: op, Size: a}
	}
	return a * b, nil
}
