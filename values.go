package rowmap

import (
	"bytes"
	"reflect"
	"time"
	"unicode/utf8"
)

// valueOf returns value of the field ptr points to
func valueOf(ptr interface{}) interface{} {
	return reflect.ValueOf(ptr).Elem().Interface()
}

// assign stores v into the field ptr points to, nil means zero value
func assign(ptr interface{}, v interface{}) {
	fv := reflect.ValueOf(ptr).Elem()
	if v == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return
	}

	rv := reflect.ValueOf(v)
	switch t := fv.Type(); {
	case rv.Type().AssignableTo(t):
		fv.Set(rv)
	case rv.Type().ConvertibleTo(t):
		fv.Set(rv.Convert(t))
	}
}

// sameValue compares values read from database with in-memory ones
func sameValue(a, b interface{}) bool {
	switch x := a.(type) {
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Equal(y)
		}
	case []byte:
		if y, ok := b.([]byte); ok {
			return bytes.Equal(x, y)
		}
	}

	return reflect.DeepEqual(a, b)
}

// clip cuts s to max runes, returns false if s is short enough
func clip(s string, max int) (string, bool) {
	if utf8.RuneCountInString(s) <= max {
		return s, false
	}

	n := 0
	for idx := range s {
		if n == max {
			return s[:idx], true
		}
		n++
	}
	return s, false
}

// truncate cuts string (or *string) value to col.MaxLength runes
func truncate[T any](col *Column, value T) T {
	if col.MaxLength <= 0 {
		return value
	}

	v := reflect.ValueOf(&value).Elem()
	switch v.Kind() {
	case reflect.String:
		if s, ok := clip(v.String(), col.MaxLength); ok {
			v.SetString(s)
		}
	case reflect.Ptr:
		if v.IsNil() || v.Elem().Kind() != reflect.String {
			break
		}
		if s, ok := clip(v.Elem().String(), col.MaxLength); ok {
			p := reflect.New(v.Type().Elem())
			p.Elem().SetString(s)
			v.Set(p)
		}
	}

	return value
}
