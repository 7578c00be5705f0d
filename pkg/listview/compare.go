package listview

import (
	"cmp"
	"reflect"
	"time"

	"golang.org/x/text/collate"
)

// Direction is the sort order of a list.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts "asc" or "desc".
func ParseDirection(raw string) (Direction, bool) {
	switch Direction(raw) {
	case Asc:
		return Asc, true
	case Desc:
		return Desc, true
	}
	return "", false
}

// Opposite returns the other direction. Anything that is not Asc flips to Asc.
func (d Direction) Opposite() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Compare orders a and b by field. The result is negative, zero or positive;
// Desc negates it. Unknown fields, nil values and incompatible types compare equal.
func (s *Schema[T]) Compare(a, b T, field string, dir Direction) int {
	return s.compare(s.collator(), a, b, field, dir)
}

func (s *Schema[T]) compare(col *collate.Collator, a, b T, field string, dir Direction) int {
	f, ok := s.fields[field]
	if !ok || f.Get == nil {
		return 0
	}
	c := compareValues(col, f.Kind, f.Get(a), f.Get(b))
	if dir == Desc {
		return -c
	}
	return c
}

func compareValues(col *collate.Collator, kind Kind, a, b any) int {
	a, b = deref(a), deref(b)

	switch kind {
	case KindPhone:
		sa, _ := asString(a)
		sb, _ := asString(b)
		return col.CompareString(sa, sb)
	case KindDate:
		ta, okA := asTime(a)
		tb, okB := asTime(b)
		if !okA || !okB {
			return 0
		}
		return ta.Compare(tb)
	}

	if sa, ok := asString(a); ok && a != nil {
		if sb, ok := asString(b); ok && b != nil {
			return col.CompareString(sa, sb)
		}
		return 0
	}
	if na, ok := asNumber(a); ok {
		if nb, ok := asNumber(b); ok {
			return cmp.Compare(na, nb)
		}
	}
	return 0
}

// deref unwraps pointers; a nil pointer becomes a nil interface.
func deref(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}

// asString reports a string value; nil reads as "" with ok true.
func asString(v any) (string, bool) {
	if v == nil {
		return "", true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

func asNumber(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case string:
		if t == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}
