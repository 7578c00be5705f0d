package types

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"azv-admin-api/pkg/listview"

	"github.com/gin-gonic/gin"
)

// AllowedPageSizes are the rows-per-page options of every dashboard list.
var AllowedPageSizes = []int{5, 10, 25}

// ListQuery is what a list request asked for. Only parameters that were present
// override the starting state.
type ListQuery struct {
	Filter   *string
	OrderBy  string
	Order    listview.Direction
	Page     *int // 1-based
	PageSize *int
	ViewID   int
}

// ParseListQuery reads filter, orderBy, order, page, pageSize and view.
func ParseListQuery(c *gin.Context) (ListQuery, error) {
	var q ListQuery
	if v, ok := c.GetQuery("filter"); ok {
		v = strings.TrimSpace(v)
		q.Filter = &v
	}
	q.OrderBy = strings.TrimSpace(c.Query("orderBy"))
	if raw := c.Query("order"); raw != "" {
		dir, ok := listview.ParseDirection(raw)
		if !ok {
			return q, fmt.Errorf("order must be asc or desc")
		}
		q.Order = dir
	}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Errorf("page must be a number")
		}
		if page < 1 {
			page = 1
		}
		q.Page = &page
	}
	if raw := c.Query("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Errorf("pageSize must be a number")
		}
		if err := ValidatePageSize(size); err != nil {
			return q, err
		}
		q.PageSize = &size
	}
	if raw := c.Query("view"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return q, fmt.Errorf("view must be a positive id")
		}
		q.ViewID = id
	}
	return q, nil
}

// Over applies the query on top of base. A changed filter or page size returns to
// the first page unless a page was requested explicitly.
func (q ListQuery) Over(base listview.ListState) listview.ListState {
	state := base
	if q.Filter != nil {
		state.SetFilter(*q.Filter)
	}
	if q.PageSize != nil {
		state.SetPageSize(*q.PageSize)
	}
	if q.Page != nil {
		state.SetPage(*q.Page - 1)
	}
	if q.OrderBy != "" {
		dir := q.Order
		if dir == "" {
			dir = listview.Asc
		}
		state.Sort = listview.SortSpec{Field: q.OrderBy, Direction: dir}
	} else if q.Order != "" {
		state.Sort.Direction = q.Order
	}
	return state
}

// ListPage is the body of every list endpoint.
type ListPage[T any] struct {
	Rows       []T               `json:"rows"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
	EmptyRows  int               `json:"emptyRows"`
	NotFound   bool              `json:"notFound"`
	Sort       listview.SortSpec `json:"sort"`
	Filter     string            `json:"filter"`
	Seq        uint64            `json:"seq"`
}

func NewListPage[T any](res listview.Result[T], state listview.ListState, seq uint64) ListPage[T] {
	totalPages := 0
	if state.Page.Size > 0 {
		totalPages = (res.Total + state.Page.Size - 1) / state.Page.Size
	}
	return ListPage[T]{
		Rows:       res.Rows,
		Total:      res.Total,
		Page:       state.Page.Index + 1,
		PageSize:   state.Page.Size,
		TotalPages: totalPages,
		EmptyRows:  res.EmptyRows,
		NotFound:   res.NotFound,
		Sort:       state.Sort,
		Filter:     state.Filter,
		Seq:        seq,
	}
}

// PaginatedResponse contains data with pagination metadata
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination struct {
		Page       int `json:"page"`
		PageSize   int `json:"pageSize"`
		Total      int `json:"total"`
		TotalPages int `json:"totalPages"`
	} `json:"pagination"`
}

// PaginationHelper pages server-side collections such as saved views.
type PaginationHelper struct {
	Page     int
	PageSize int
	Offset   int
}

func NewPaginationHelper(page, pageSize int) *PaginationHelper {
	if page < 1 {
		page = 1
	}
	if !slices.Contains(AllowedPageSizes, pageSize) {
		pageSize = AllowedPageSizes[len(AllowedPageSizes)-1]
	}
	return &PaginationHelper{
		Page:     page,
		PageSize: pageSize,
		Offset:   (page - 1) * pageSize,
	}
}

func (p *PaginationHelper) BuildResponse(data interface{}, total int) PaginatedResponse {
	var resp PaginatedResponse
	resp.Data = data
	resp.Pagination.Page = p.Page
	resp.Pagination.PageSize = p.PageSize
	resp.Pagination.Total = total
	resp.Pagination.TotalPages = (total + p.PageSize - 1) / p.PageSize
	return resp
}

func ParsePaginationParams(c *gin.Context) *PaginationHelper {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "25"))
	return NewPaginationHelper(page, pageSize)
}

func ValidatePageSize(pageSize int) error {
	if slices.Contains(AllowedPageSizes, pageSize) {
		return nil
	}
	return fmt.Errorf("pageSize must be one of: %v", AllowedPageSizes)
}
