package listview

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// SortStable returns records ordered by field. Records that compare equal keep their
// original relative order in both directions. The input slice is not modified.
func (s *Schema[T]) SortStable(records []T, field string, dir Direction) []T {
	type indexed struct {
		rec T
		idx int
	}
	decorated := make([]indexed, len(records))
	for i, r := range records {
		decorated[i] = indexed{rec: r, idx: i}
	}

	col := s.collator()
	slices.SortFunc(decorated, func(x, y indexed) int {
		if c := s.compare(col, x.rec, y.rec, field, dir); c != 0 {
			return c
		}
		return cmp.Compare(x.idx, y.idx)
	})

	out := make([]T, len(decorated))
	for i, d := range decorated {
		out[i] = d.rec
	}
	return out
}

// FilterByText keeps records where any searchable field contains text, both sides
// case-folded. Empty text returns records unchanged.
func (s *Schema[T]) FilterByText(records []T, text string) []T {
	if text == "" {
		return records
	}
	fold := cases.Fold()
	needle := fold.String(text)

	out := make([]T, 0, len(records))
	for _, r := range records {
		for _, name := range s.searchable {
			if strings.Contains(fold.String(s.text(r, name)), needle) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// text renders a field for matching; anything missing is "".
func (s *Schema[T]) text(r T, name string) string {
	f, ok := s.fields[name]
	if !ok || f.Get == nil {
		return ""
	}
	switch v := deref(f.Get(r)).(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	default:
		if str, ok := asString(v); ok {
			return str
		}
		return fmt.Sprint(v)
	}
}

// Paginate returns the page at pageIndex (zero-based) of size pageSize, clipped to the
// collection. Out-of-range or invalid windows yield an empty slice.
func Paginate[T any](records []T, pageIndex, pageSize int) []T {
	if pageIndex < 0 || pageSize <= 0 {
		return []T{}
	}
	pages := (len(records) + pageSize - 1) / pageSize
	if pageIndex >= pages {
		return []T{}
	}
	start := pageIndex * pageSize
	end := min(start+pageSize, len(records))
	return records[start:end:end]
}

// EmptyRowCount is the number of filler rows a paginated grid pads with.
// Only pages after the first are padded.
func EmptyRowCount(pageIndex, pageSize, totalCount int) int {
	if pageIndex <= 0 {
		return 0
	}
	return max(0, pageSize-totalCount)
}

// Result is the render-ready view of a list.
type Result[T any] struct {
	Rows      []T  `json:"rows"`
	Total     int  `json:"total"`
	EmptyRows int  `json:"emptyRows"`
	NotFound  bool `json:"notFound"`
}

// Ordered filters and sorts records without slicing a page.
func (s *Schema[T]) Ordered(records []T, state ListState) []T {
	filtered := s.FilterByText(records, state.Filter)
	return s.SortStable(filtered, state.Sort.Field, state.Sort.Direction)
}

// Apply produces the page described by state. The page is cut only from the fully
// filtered and sorted collection. Padding is computed against the unfiltered size,
// the way the dashboard grid lays rows out.
func (s *Schema[T]) Apply(records []T, state ListState) Result[T] {
	ordered := s.Ordered(records, state)
	return Result[T]{
		Rows:      Paginate(ordered, state.Page.Index, state.Page.Size),
		Total:     len(ordered),
		EmptyRows: EmptyRowCount(state.Page.Index, state.Page.Size, len(records)),
		NotFound:  state.Filter != "" && len(ordered) == 0,
	}
}
