package listview

// SortSpec is the active sort field and direction.
type SortSpec struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// Toggle returns the spec after the user clicks field: the same field flips direction,
// a different field starts ascending.
func (s SortSpec) Toggle(field string) SortSpec {
	if s.Field == field {
		return SortSpec{Field: field, Direction: s.Direction.Opposite()}
	}
	return SortSpec{Field: field, Direction: Asc}
}

// PageWindow selects a contiguous page; Index is zero-based.
type PageWindow struct {
	Index int `json:"index"`
	Size  int `json:"size"`
}

// ListState is the complete user-facing state of one list view.
type ListState struct {
	Sort   SortSpec   `json:"sort"`
	Filter string     `json:"filter"`
	Page   PageWindow `json:"page"`
}

// SetFilter changes the filter text and returns to the first page when it differs.
func (s *ListState) SetFilter(text string) {
	if s.Filter == text {
		return
	}
	s.Filter = text
	s.Page.Index = 0
}

// SetPageSize changes the page size and returns to the first page when it differs.
func (s *ListState) SetPageSize(size int) {
	if s.Page.Size == size {
		return
	}
	s.Page.Size = size
	s.Page.Index = 0
}

func (s *ListState) SetPage(index int) {
	if index < 0 {
		index = 0
	}
	s.Page.Index = index
}

func (s *ListState) ToggleSort(field string) {
	s.Sort = s.Sort.Toggle(field)
}
