package archive

import (
	"fmt"
	"reflect"

	"netgen.dev/ngcore/typeregistry"
)

// Shared transfers a reference that may be aliased by other Shared
// references elsewhere in the graph: two Shared references that pointed
// at the same object before saving resolve to one object after loading
// (spec.md §4.2, §8 "universal round-trip").
func Shared[T Serializable](a *Archive, ref *T) error {
	return transferRef(a, a.sharedAddr, &a.sharedByID, &a.nextSharedID, ref)
}

// Raw transfers a reference with no aliasing guarantee beyond what the
// graph shape itself implies — it uses its own identity table and ID
// space, independent of Shared's, exactly as spec.md §3 describes ("four
// maps... raw_addr -> id... independent of the shared tables").
func Raw[T Serializable](a *Archive, ref *T) error {
	return transferRef(a, a.rawAddr, &a.rawByID, &a.nextRawID, ref)
}

// staticInfo returns the reflect.Type of the static reference type T
// itself (not of whatever value happens to be stored in it), using the
// standard generics trick of taking the element type of *T — this gives
// an interface Kind for an interface static type and a Ptr Kind for a
// concrete pointer static type, which is exactly the distinction
// spec.md's "-1 sub-case" draws between exact-type and polymorphic
// references.
func staticInfo[T Serializable]() (t reflect.Type, name string, registered bool) {
	t = reflect.TypeOf((*T)(nil)).Elem()
	name, registered = typeregistry.NameOf(t)
	return t, name, registered
}

func transferRef[T Serializable](a *Archive, addrTable map[uintptr]int64, byID *[]any, nextID *int64, ref *T) error {
	if a.dir == Writing {
		return writeRef(a, addrTable, byID, nextID, *ref)
	}
	v, err := readRef[T](a, byID, nextID)
	if err != nil {
		return err
	}
	*ref = v
	return nil
}

func writeRef[T Serializable](a *Archive, addrTable map[uintptr]int64, byID *[]any, nextID *int64, v T) error {
	addr := addrOf(v)
	if addr == 0 {
		id := sentinelNull
		return a.Int64(&id)
	}

	staticType, staticName, staticRegistered := staticInfo[T]()
	dynamicType := reflect.TypeOf(v)
	dynamicName, dynamicRegistered := typeregistry.NameOf(dynamicType)

	exact := dynamicType == staticType

	if id, ok := addrTable[addr]; ok {
		// Back-reference: the body was already emitted under id. Tell the
		// reader whether it must resolve through the type registry to get
		// the reference's requested static type back.
		needed := !exact
		if err := a.Int64(&id); err != nil {
			return err
		}
		if err := a.Bool(&needed); err != nil {
			return err
		}
		if needed {
			if !dynamicRegistered {
				return &UnregisteredPolymorphicError{TypeName: dynamicType.String()}
			}
			if staticRegistered {
				if err := typeregistry.Upcast(dynamicName, staticName); err != nil {
					return err
				}
			}
			nameCopy := dynamicName
			return a.String(&nameCopy)
		}
		return nil
	}

	id := *nextID
	*nextID++
	addrTable[addr] = id

	if exact {
		sentinel := sentinelNewInline
		if err := a.Int64(&sentinel); err != nil {
			return err
		}
	} else {
		if !dynamicRegistered {
			return &UnregisteredPolymorphicError{TypeName: dynamicType.String()}
		}
		if staticRegistered {
			if err := typeregistry.Upcast(dynamicName, staticName); err != nil {
				return err
			}
		}
		sentinel := sentinelNewPoly
		if err := a.Int64(&sentinel); err != nil {
			return err
		}
		nameCopy := dynamicName
		if err := a.String(&nameCopy); err != nil {
			return err
		}
	}

	*byID = append(*byID, v)
	return v.Serialize(a)
}

func readRef[T Serializable](a *Archive, byID *[]any, nextID *int64) (T, error) {
	var zero T
	var id int64
	if err := a.Int64(&id); err != nil {
		return zero, err
	}

	switch id {
	case sentinelNull:
		return zero, nil

	case sentinelNewInline:
		v, err := constructExact[T]()
		if err != nil {
			return zero, err
		}
		assignID(byID, nextID, v)
		if err := v.Serialize(a); err != nil {
			return zero, err
		}
		return v, nil

	case sentinelNewPoly:
		var name string
		if err := a.String(&name); err != nil {
			return zero, err
		}
		v, err := constructPolymorphic[T](name)
		if err != nil {
			return zero, err
		}
		assignID(byID, nextID, v)
		if err := v.Serialize(a); err != nil {
			return zero, err
		}
		return v, nil

	default:
		if id < 0 || int(id) >= len(*byID) {
			return zero, &FormatMismatchError{Encoding: "reference", Detail: fmt.Sprintf("back-reference id %d out of range", id)}
		}
		stored := (*byID)[id]
		var needed bool
		if err := a.Bool(&needed); err != nil {
			return zero, err
		}
		if needed {
			var name string
			if err := a.String(&name); err != nil {
				return zero, err
			}
			_, _, staticRegistered := staticInfo[T]()
			if staticRegistered {
				if err := typeregistry.Upcast(name, mustStaticName[T]()); err != nil {
					return zero, err
				}
			}
		}
		t, ok := stored.(T)
		if !ok {
			return zero, &FormatMismatchError{Encoding: "reference", Detail: fmt.Sprintf("stored reference %T does not satisfy requested static type", stored)}
		}
		return t, nil
	}
}

func mustStaticName[T Serializable]() string {
	_, name, _ := staticInfo[T]()
	return name
}

func assignID(byID *[]any, nextID *int64, v any) {
	id := *nextID
	*nextID++
	if int(id) != len(*byID) {
		// Should never happen: read-side IDs are assigned in the exact
		// encounter order the writer used them in.
		panic("archive: reference id assigned out of order")
	}
	*byID = append(*byID, v)
}

// constructExact builds a zero-valued instance of the static type T
// itself, for the sentinelNewInline case where the wire carries no
// dynamic type name because the writer observed dynamic == static.
func constructExact[T Serializable]() (T, error) {
	var zero T
	staticType, staticName, staticRegistered := staticInfo[T]()

	if staticRegistered {
		if d, _ := typeregistry.Lookup(staticName); d.Constructible() {
			v, ok := d.New().(T)
			if !ok {
				return zero, &NotDefaultConstructibleError{TypeName: staticName}
			}
			return v, nil
		}
	}

	if staticType.Kind() != reflect.Ptr {
		return zero, &NotDefaultConstructibleError{TypeName: staticType.String()}
	}
	v, ok := reflect.New(staticType.Elem()).Interface().(T)
	if !ok {
		return zero, &NotDefaultConstructibleError{TypeName: staticType.String()}
	}
	return v, nil
}

// constructPolymorphic builds a new most-derived instance named by a
// sentinelNewPoly wire type name, then verifies the declared-bases chain
// back to the static type T exists before handing it back.
func constructPolymorphic[T Serializable](dynamicName string) (T, error) {
	var zero T
	d, ok := typeregistry.Lookup(dynamicName)
	if !ok {
		return zero, &UnregisteredPolymorphicError{TypeName: dynamicName}
	}
	if !d.Constructible() {
		return zero, &NotDefaultConstructibleError{TypeName: dynamicName}
	}
	_, staticName, staticRegistered := staticInfo[T]()
	if staticRegistered {
		if err := typeregistry.Upcast(dynamicName, staticName); err != nil {
			return zero, err
		}
	}
	v, ok := d.New().(T)
	if !ok {
		return zero, &UnregisteredPolymorphicError{TypeName: dynamicName}
	}
	return v, nil
}
