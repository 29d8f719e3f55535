package mempool

import (
	"fmt"
	"reflect"
	"strings"
)

// containsNoPointers reports whether values of type T are safe to
// place in a slot. Slots live outside the Go heap, so any pointer
// stored in one is invisible to the garbage collector. The returned
// error names every pointer-bearing field found.
func containsNoPointers[T any]() error {
	offenders := []string{}
	findPointers(reflect.TypeFor[T](), "", &offenders)

	if len(offenders) != 0 {
		return fmt.Errorf("found pointer(s): %s", strings.Join(offenders, ", "))
	}
	return nil
}

func findPointers(t reflect.Type, path string, offenders *[]string) {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		// Pointer free

	case reflect.Array:
		findPointers(t.Elem(), fmt.Sprintf("%s[%d]", path, t.Len()), offenders)

	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			findPointers(field.Type, path+"."+field.Name, offenders)
		}

	default:
		// Chan, func, interface, map, pointer, slice, string and
		// unsafe.Pointer all carry pointers
		*offenders = append(*offenders, fmt.Sprintf("%s<%s>", path, t))
	}
}
