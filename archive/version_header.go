package archive

import "netgen.dev/ngcore/libversion"

// writeVersionHeader transfers the library-version mapping at stream
// start: a length-prefixed sequence of (name, version-string) pairs, in
// whatever order the process table's Snapshot returned it (spec.md §6:
// "entries as string,string"). The map iteration order is not stable
// across runs, but that is fine — the header's meaning is a set of
// name->version facts, not an ordered log.
func writeVersionHeader(a *Archive, versions map[string]libversion.Version) error {
	n := int32(len(versions))
	if err := a.Int32(&n); err != nil {
		return err
	}
	for name, v := range versions {
		nameCopy, verStr := name, v.String()
		if err := a.String(&nameCopy); err != nil {
			return err
		}
		if err := a.String(&verStr); err != nil {
			return err
		}
	}
	return nil
}

// readVersionHeader reads back what writeVersionHeader wrote.
func readVersionHeader(a *Archive) (map[string]libversion.Version, error) {
	var n int32
	if err := a.Int32(&n); err != nil {
		return nil, err
	}
	out := make(map[string]libversion.Version, n)
	for i := int32(0); i < n; i++ {
		var name, verStr string
		if err := a.String(&name); err != nil {
			return nil, err
		}
		if err := a.String(&verStr); err != nil {
			return nil, err
		}
		v, err := libversion.Parse(verStr)
		if err != nil {
			return nil, &FormatMismatchError{Encoding: "version-header", Detail: err.Error()}
		}
		out[name] = v
	}
	return out, nil
}
