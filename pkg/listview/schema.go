// Package listview turns an in-memory collection into the slice a dashboard table
// renders: a case-folded substring filter, a stable locale-aware sort and a page window.
// Every operation is pure and total; unknown fields and mismatched values degrade to
// "equal" or "no match" instead of failing.
package listview

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Kind tells the comparator how to treat a field.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	// KindDate fields compare chronologically whatever their Go representation.
	KindDate
	// KindPhone fields always compare as strings, nil being "".
	KindPhone
)

// Field reads one named value from a record. Get may return nil for absent values.
type Field[T any] struct {
	Kind Kind
	Get  func(T) any
}

// Schema declares the fields of one entity type and which of them the text filter
// searches. Build it once per entity and share it; it is read-only after setup.
type Schema[T any] struct {
	lang       language.Tag
	fields     map[string]Field[T]
	order      []string
	searchable []string
}

// NewSchema returns an empty schema whose string collation follows lang.
func NewSchema[T any](lang language.Tag) *Schema[T] {
	return &Schema[T]{
		lang:   lang,
		fields: make(map[string]Field[T]),
	}
}

// Field registers a named field. Registering a name twice replaces the accessor.
func (s *Schema[T]) Field(name string, kind Kind, get func(T) any) *Schema[T] {
	if _, exists := s.fields[name]; !exists {
		s.order = append(s.order, name)
	}
	s.fields[name] = Field[T]{Kind: kind, Get: get}
	return s
}

func (s *Schema[T]) String(name string, get func(T) any) *Schema[T] {
	return s.Field(name, KindString, get)
}

func (s *Schema[T]) Number(name string, get func(T) any) *Schema[T] {
	return s.Field(name, KindNumber, get)
}

func (s *Schema[T]) Date(name string, get func(T) any) *Schema[T] {
	return s.Field(name, KindDate, get)
}

func (s *Schema[T]) Phone(name string, get func(T) any) *Schema[T] {
	return s.Field(name, KindPhone, get)
}

func (s *Schema[T]) Bool(name string, get func(T) any) *Schema[T] {
	return s.Field(name, KindBool, get)
}

// Searchable sets the allow-list of fields matched by FilterByText.
// Names that are not registered fields simply never match.
func (s *Schema[T]) Searchable(names ...string) *Schema[T] {
	s.searchable = append([]string(nil), names...)
	return s
}

// Has reports whether name is a registered field.
func (s *Schema[T]) Has(name string) bool {
	_, ok := s.fields[name]
	return ok
}

// Fields returns the registered field names in registration order.
func (s *Schema[T]) Fields() []string {
	return append([]string(nil), s.order...)
}

// SearchableFields returns the filter allow-list.
func (s *Schema[T]) SearchableFields() []string {
	return append([]string(nil), s.searchable...)
}

// Collators keep internal buffers and are not safe for concurrent use,
// so every top-level operation builds its own.
func (s *Schema[T]) collator() *collate.Collator {
	return collate.New(s.lang)
}
