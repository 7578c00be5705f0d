package handlers

import (
	"net/http"
	"time"

	"azv-admin-api/pkg/listview"

	"github.com/DATA-DOG/go-sqlmock"
)

var viewColumns = []string{"id", "manager", "section", "name", "state", "extra", "is_deleted", "created_at", "modified_at"}

const getViewQuery = "SELECT .+ FROM saved_views WHERE id = \\$1"

type viewFixture struct {
	id      int
	manager string
	section string
	state   string
	extra   any
	deleted bool
}

func (s *HandlersSuite) expectView(v viewFixture) {
	if v.manager == "" {
		v.manager = testManager
	}
	now := time.Now()
	s.mock.ExpectQuery(getViewQuery).
		WithArgs(v.id).
		WillReturnRows(sqlmock.NewRows(viewColumns).
			AddRow(v.id, v.manager, v.section, "Вид", []byte(v.state), v.extra, v.deleted, now, now))
}

func (s *HandlersSuite) TestCreateView() {
	token := s.login()
	state := `{"sort":{"field":"bonuses","direction":"desc"},"filter":"","page":{"index":0,"size":5}}`
	s.mock.ExpectQuery("INSERT INTO saved_views").
		WithArgs(testManager, "branches", "Бонусы", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	s.expectView(viewFixture{id: 7, section: "branches", state: state})

	resp := s.call(http.MethodPost, "/api/views", token, `{"section": "branches", "name": "Бонусы", "state": `+state+`}`)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	view := decodeBody[struct {
		ID    int                `json:"id"`
		State listview.ListState `json:"state"`
	}](s, resp).Data
	s.Equal(7, view.ID)
	s.Equal(listview.SortSpec{Field: "bonuses", Direction: listview.Desc}, view.State.Sort)
}

func (s *HandlersSuite) TestCreateViewValidation() {
	token := s.login()
	bodies := []string{
		`{"section": "orders", "name": "x"}`,
		`{"section": "branches"}`,
		`{"section": "branches", "name": "x", "state": {"sort": {"field": "salary"}}}`,
		`{"section": "guests", "name": "x", "state": {"sort": {"field": "name", "direction": "up"}}}`,
		`{"section": "guests", "name": "x", "state": {"page": {"index": 0, "size": 7}}}`,
		`{"section": "guests", "name": "x", "extra": [1, 2]}`,
	}
	for _, b := range bodies {
		resp := s.call(http.MethodPost, "/api/views", token, b)
		s.Equal(http.StatusBadRequest, resp.StatusCode, b)
	}
}

func (s *HandlersSuite) TestToggleSortFlipsStoredDirection() {
	token := s.login()
	s.expectView(viewFixture{id: 7, section: "branches", state: `{"sort":{"field":"name","direction":"asc"},"page":{"index":2,"size":5}}`})
	s.mock.ExpectExec("UPDATE saved_views SET").
		WithArgs(7, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	resp := s.call(http.MethodPost, "/api/views/7/sort", token, map[string]string{"field": "name"})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	state := decodeBody[listview.ListState](s, resp).Data
	s.Equal(listview.SortSpec{Field: "name", Direction: listview.Desc}, state.Sort)
	s.Equal(2, state.Page.Index, "sorting keeps the page")

	s.expectView(viewFixture{id: 7, section: "branches", state: `{"sort":{"field":"name","direction":"asc"}}`})
	resp = s.call(http.MethodPost, "/api/views/7/sort", token, map[string]string{"field": "salary"})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *HandlersSuite) TestViewsOfOtherManagersAreHidden() {
	token := s.login()
	s.expectView(viewFixture{id: 7, manager: "79995550000", section: "branches", state: `{}`})
	resp := s.call(http.MethodPatch, "/api/views/7", token, map[string]string{"name": "Чужой"})
	s.Equal(http.StatusNotFound, resp.StatusCode)

	s.expectView(viewFixture{id: 7, manager: "79995550000", section: "branches", state: `{}`})
	s.Equal(http.StatusNotFound, s.get("/api/branches?view=7", token).StatusCode)
	s.Empty(s.backend.seen("/api/coffeeshops/"))
}

func (s *HandlersSuite) TestDeleteAndRestoreView() {
	token := s.login()
	s.expectView(viewFixture{id: 7, section: "branches", state: `{}`})
	s.mock.ExpectExec("UPDATE saved_views SET is_deleted").
		WithArgs(7, true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.Equal(http.StatusOK, s.call(http.MethodPatch, "/api/views/7/delete", token, nil).StatusCode)

	s.expectView(viewFixture{id: 7, section: "branches", state: `{}`, deleted: true})
	s.Equal(http.StatusNotFound, s.get("/api/branches?view=7", token).StatusCode, "deleted views are not applied")

	s.expectView(viewFixture{id: 7, section: "branches", state: `{}`, deleted: true})
	s.mock.ExpectExec("UPDATE saved_views SET is_deleted").
		WithArgs(7, false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.Equal(http.StatusOK, s.call(http.MethodPatch, "/api/views/7/restore", token, nil).StatusCode)
}

func (s *HandlersSuite) TestListViews() {
	token := s.login()
	now := time.Now()
	s.mock.ExpectQuery("SELECT .+ FROM saved_views\\s+WHERE manager").
		WithArgs(testManager, "guests", 10, 0).
		WillReturnRows(sqlmock.NewRows(viewColumns).
			AddRow(3, testManager, "guests", "Постоянные", []byte(`{"sort":{"field":"points","direction":"desc"}}`), []byte(`{"minCoffee":10}`), false, now, now).
			AddRow(2, testManager, "guests", "Новые", []byte(`{}`), nil, false, now, now))
	s.mock.ExpectQuery("SELECT COUNT").
		WithArgs(testManager, "guests").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	resp := s.get("/api/views?section=guests&pageSize=10", token)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	body := decodeBody[struct {
		Data []struct {
			ID    int            `json:"id"`
			Name  string         `json:"name"`
			Extra map[string]any `json:"extra"`
		} `json:"data"`
		Pagination struct {
			Total      int `json:"total"`
			TotalPages int `json:"totalPages"`
		} `json:"pagination"`
	}](s, resp).Data
	s.Require().Len(body.Data, 2)
	s.Equal("Постоянные", body.Data[0].Name)
	s.Equal(float64(10), body.Data[0].Extra["minCoffee"])
	s.Nil(body.Data[1].Extra)
	s.Equal(12, body.Pagination.Total)
	s.Equal(2, body.Pagination.TotalPages)

	s.Equal(http.StatusBadRequest, s.get("/api/views?section=orders", token).StatusCode)
}

func (s *HandlersSuite) TestListAppliesSavedView() {
	token := s.login()
	s.expectView(viewFixture{id: 5, section: "branches", state: `{"sort":{"field":"bonuses","direction":"desc"},"page":{"index":0,"size":0}}`})

	page := s.list("/api/branches?view=5", token)
	s.Equal([]any{"Арбат", "Центральная", "Белая"}, page.column("name"))
	s.Equal(5, page.PageSize)

	s.expectView(viewFixture{id: 5, section: "branches", state: `{"sort":{"field":"bonuses","direction":"desc"}}`})
	page = s.list("/api/branches?view=5&filter=арбат", token)
	s.Equal([]any{"Арбат"}, page.column("name"))
	s.Equal(listview.SortSpec{Field: "bonuses", Direction: listview.Desc}, page.Sort)

	s.expectView(viewFixture{id: 5, section: "guests", state: `{}`})
	s.Equal(http.StatusNotFound, s.get("/api/branches?view=5", token).StatusCode, "view of another section")
}

func (s *HandlersSuite) TestGuestViewExtraIsForwarded() {
	token := s.login()
	s.expectView(viewFixture{id: 9, section: "guests", state: `{}`, extra: []byte(`{"minSpent": 100}`)})
	s.list("/api/guests?view=9", token)
	calls := s.backend.seen("/api/clients/")
	s.Require().NotEmpty(calls)
	s.Contains(calls[0].Query, "min_spent=100")

	s.expectView(viewFixture{id: 9, section: "guests", state: `{}`, extra: []byte(`{"minSpent": 100}`)})
	s.list("/api/guests?view=9&minSpent=250", token)
	calls = s.backend.seen("/api/clients/")
	s.Contains(calls[len(calls)-1].Query, "min_spent=250", "query overrides the saved filter")
}
