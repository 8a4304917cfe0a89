package archive

import "netgen.dev/ngcore/libversion"

// Slice transfers an ordered sequence: a length prefix followed by
// elements in index order (spec.md §4.1). elem transfers one element in
// either direction; callers pass a closure bound to the element kind
// (archive.Float64, a nested Shared/Raw call, a nested container, ...).
func Slice[T any](a *Archive, s *[]T, elem func(a *Archive, v *T) error) error {
	n := int64(len(*s))
	if err := a.Int64(&n); err != nil {
		return err
	}
	if a.dir == Reading {
		*s = make([]T, n)
	}
	for i := int64(0); i < n; i++ {
		if err := elem(a, &(*s)[i]); err != nil {
			return err
		}
	}
	return nil
}

// Map transfers an associative mapping: a length prefix followed by
// entries in the writer's iteration order, which the reader reconstructs
// by inserting in that same order (spec.md §4.1). The format does not
// preserve hash ordering across encoders — equality is by key-set and
// values, never by iteration order.
func Map[K comparable, V any](a *Archive, m *map[K]V, key func(a *Archive, k *K) error, val func(a *Archive, v *V) error) error {
	if a.dir == Writing {
		n := int64(len(*m))
		if err := a.Int64(&n); err != nil {
			return err
		}
		for k, v := range *m {
			kCopy, vCopy := k, v
			if err := key(a, &kCopy); err != nil {
				return err
			}
			if err := val(a, &vCopy); err != nil {
				return err
			}
		}
		return nil
	}

	var n int64
	if err := a.Int64(&n); err != nil {
		return err
	}
	out := make(map[K]V, n)
	for i := int64(0); i < n; i++ {
		var k K
		var v V
		if err := key(a, &k); err != nil {
			return err
		}
		if err := val(a, &v); err != nil {
			return err
		}
		out[k] = v
	}
	*m = out
	return nil
}

// Complex transfers a complex128 as its real part followed by its
// imaginary part (spec.md §4.1).
func Complex(a *Archive, c *complex128) error {
	re, im := real(*c), imag(*c)
	if err := a.Float64(&re); err != nil {
		return err
	}
	if err := a.Float64(&im); err != nil {
		return err
	}
	if a.dir == Reading {
		*c = complex(re, im)
	}
	return nil
}

// VersionTuple transfers a libversion.Version as its decimal string form
// ("major.minor.patch"), matching spec.md §4.1's "Version tuple:
// transferred as its decimal string form."
func VersionTuple(a *Archive, v *libversion.Version) error {
	if a.dir == Writing {
		s := v.String()
		return a.String(&s)
	}
	var s string
	if err := a.String(&s); err != nil {
		return err
	}
	parsed, err := libversion.Parse(s)
	if err != nil {
		return &FormatMismatchError{Encoding: "version-tuple", Detail: err.Error()}
	}
	*v = parsed
	return nil
}
