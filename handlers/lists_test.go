package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"azv-admin-api/pkg/listview"

	"github.com/xuri/excelize/v2"
)

func (s *HandlersSuite) TestBranchesDefaultState() {
	token := s.login()
	page := s.list("/api/branches", token)

	s.Equal([]any{"Арбат", "Белая", "Центральная"}, page.column("name"))
	s.Equal(3, page.Total)
	s.Equal(1, page.Page)
	s.Equal(5, page.PageSize)
	s.Equal(1, page.TotalPages)
	s.Equal(0, page.EmptyRows)
	s.False(page.NotFound)
	s.Equal(listview.SortSpec{Field: "name", Direction: listview.Asc}, page.Sort)
	s.Equal([]any{"-", "-", "Анна"}, page.column("contactPerson"))
}

func (s *HandlersSuite) TestBranchesSortFilterAndPage() {
	token := s.login()

	page := s.list("/api/branches?orderBy=bonuses&order=desc", token)
	s.Equal([]any{"Арбат", "Центральная", "Белая"}, page.column("name"))

	page = s.list("/api/branches?filter=ЛЕНИНА", token)
	s.Equal([]any{"Центральная"}, page.column("name"))
	s.Equal(1, page.Total)

	page = s.list("/api/branches?filter=1112233", token)
	s.Equal([]any{"Центральная"}, page.column("name"), "phone is searchable")

	page = s.list("/api/branches?filter=нет+такой", token)
	s.Empty(page.Rows)
	s.True(page.NotFound)

	page = s.list("/api/branches?page=2&pageSize=5", token)
	s.Empty(page.Rows)
	s.Equal(2, page.Page)
	s.Equal(2, page.EmptyRows)

	page = s.list("/api/branches?orderBy=nope", token)
	s.Equal([]any{"Центральная", "Арбат", "Белая"}, page.column("name"), "unknown field keeps backend order")
}

func (s *HandlersSuite) TestListQueryValidation() {
	token := s.login()
	for _, q := range []string{"pageSize=7", "order=up", "page=x", "view=-1"} {
		resp := s.get("/api/branches?"+q, token)
		s.Equal(http.StatusBadRequest, resp.StatusCode, q)
	}
}

func (s *HandlersSuite) TestEmployeesRoleLabelAndSort() {
	token := s.login()
	page := s.list("/api/employees?orderBy=role&order=desc", token)
	s.Equal([]any{"старший", "бариста"}, page.column("roleLabel"))
	s.Equal([]any{"Анна Смирнова", "Иван Петров"}, page.column("name"))
}

func (s *HandlersSuite) TestSupersededListRequestIsDropped() {
	token := s.login()
	hold := s.backend.holdBaristas()

	type result struct {
		resp *http.Response
		err  error
	}
	first := make(chan result, 1)
	go func() {
		resp, err := s.send(http.MethodGet, "/api/employees", token, "", nil)
		first <- result{resp, err}
	}()
	s.Require().Eventually(func() bool {
		return len(s.backend.seen("/api/baristas/")) == 1
	}, 2*time.Second, 10*time.Millisecond)

	second := make(chan result, 1)
	go func() {
		resp, err := s.send(http.MethodGet, "/api/employees", token, "", nil)
		second <- result{resp, err}
	}()

	r1 := <-first
	s.Require().NoError(r1.err)
	defer r1.resp.Body.Close()
	s.Equal(http.StatusConflict, r1.resp.StatusCode)
	s.Equal("SUPERSEDED", decodeBody[any](s, r1.resp).Error.Code)

	close(hold)
	r2 := <-second
	s.Require().NoError(r2.err)
	defer r2.resp.Body.Close()
	s.Require().Equal(http.StatusOK, r2.resp.StatusCode)
	page := decodeBody[listBody](s, r2.resp).Data
	s.Equal(uint64(2), page.Seq)
	s.Len(page.Rows, 2)
}

func (s *HandlersSuite) TestBackendFailureIsBadGateway() {
	token := s.login()
	s.backend.failOn("/api/baristas/", http.StatusInternalServerError, `{"error": "boom"}`)

	resp := s.get("/api/employees", token)
	s.Equal(http.StatusBadGateway, resp.StatusCode)
	body := decodeBody[any](s, resp)
	s.Equal("UPSTREAM_ERROR", body.Error.Code)
	s.Equal("boom", body.Error.Message)
	s.Equal(float64(500), body.Error.Details["status"])
}

func (s *HandlersSuite) TestGuestsWalkAllPagesWithFilters() {
	token := s.login()
	page := s.list("/api/guests?minSpent=100&minCoffee=1", token)

	s.Equal([]any{"Алла", "Борис", "Вера"}, page.column("first_name"))
	s.Equal(10, page.PageSize)
	s.Equal([]any{"2024-03-05T10:00:00Z", "2024-01-02T10:00:00Z", "2023-12-30T10:00:00Z"}, page.column("lastVisit"))

	calls := s.backend.seen("/api/clients/")
	s.Require().Len(calls, 2)
	for _, c := range calls {
		s.Contains(c.Query, "min_spent=100")
		s.Contains(c.Query, "min_coffee=1")
	}

	page = s.list("/api/guests?orderBy=lastVisit&order=desc", token)
	s.Equal([]any{"Алла", "Борис", "Вера"}, page.column("first_name"))

	page = s.list("/api/guests?filter=вера+лис", token)
	s.Equal([]any{"Вера"}, page.column("first_name"), "full name is searchable")
}

func (s *HandlersSuite) TestGuestsRejectBadFilters() {
	token := s.login()
	s.Equal(http.StatusBadRequest, s.get("/api/guests?minSpent=abc", token).StatusCode)
	s.Equal(http.StatusBadRequest, s.get("/api/guests?minCoffee=-1", token).StatusCode)
	s.Empty(s.backend.seen("/api/clients/"))
}

func (s *HandlersSuite) TestFeedbacksNewestFirst() {
	token := s.login()
	page := s.list("/api/feedbacks?type=idea&coffeeShopId=2", token)
	s.Equal([]any{float64(2), float64(1)}, page.column("id"))
	s.Equal(listview.SortSpec{Field: "created_at", Direction: listview.Desc}, page.Sort)

	calls := s.backend.seen("/api/feedbacks/")
	s.Require().Len(calls, 1)
	s.Contains(calls[0].Query, "type=idea")
	s.Contains(calls[0].Query, "coffee_shop_id=2")

	page = s.list("/api/feedbacks?filter=гость", token)
	s.Equal([]any{float64(2)}, page.column("id"), "anonymous authors match their display name")

	s.Equal(http.StatusBadRequest, s.get("/api/feedbacks?type=complaint", token).StatusCode)
}

func (s *HandlersSuite) TestBranchMutationsReachBackend() {
	token := s.login()

	resp := s.call(http.MethodPost, "/api/branches", token, map[string]any{"name": "Новая", "address": "Тверская, 1"})
	s.Equal(http.StatusCreated, resp.StatusCode)

	resp = s.call(http.MethodPut, "/api/branches/1/hours", token, `{"opening_hours": {"0": {"open": "08:00", "close": "20:00"}}}`)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	hours := decodeBody[struct {
		OpeningHours map[string]map[string]string `json:"opening_hours"`
	}](s, resp).Data.OpeningHours
	s.Len(hours, 7)
	s.Equal("08:00", hours["0"]["open"])
	s.Equal("09:00", hours["6"]["open"])

	edits := s.backend.seen("/api/edit-coffeeshop/")
	s.Require().Len(edits, 1)
	var sent map[string]any
	s.Require().NoError(json.Unmarshal(edits[0].Body, &sent))
	s.Equal(float64(1), sent["coffee_shop_id"])
	s.NotContains(sent, "name")

	resp = s.call(http.MethodPut, "/api/branches/1/hours", token, `{"opening_hours": {"0": {"open": "20:00", "close": "08:00"}}}`)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	resp = s.call(http.MethodPatch, "/api/branches/abc", token, map[string]any{"name": "x", "address": "y"})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *HandlersSuite) TestBackendValidationMessageIsKept() {
	token := s.login()
	s.backend.failOn("/api/manager/register-coffeeshop/", http.StatusBadRequest, `{"detail": "Адрес уже занят"}`)

	resp := s.call(http.MethodPost, "/api/branches", token, map[string]any{"name": "Новая", "address": "Арбат, 10"})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	body := decodeBody[any](s, resp)
	s.Equal("VALIDATION_ERROR", body.Error.Code)
	s.Equal("Адрес уже занят", body.Error.Message)
}

func (s *HandlersSuite) TestMutationInvalidatesManagerDashboards() {
	token := s.login()
	conn := s.dialWS(token)

	resp := s.call(http.MethodPost, "/api/employees/1/assign", token, map[string]any{"coffeeShopId": 2, "isResponsible": true})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var sections []string
	for i := 0; i < 2; i++ {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		s.Require().NoError(err)
		var event struct {
			Type    string `json:"type"`
			Section string `json:"section"`
		}
		s.Require().NoError(json.Unmarshal(msg, &event))
		s.Equal("list.invalidated", event.Type)
		sections = append(sections, event.Section)
	}
	s.ElementsMatch([]string{"employees", "branches"}, sections)
}

func (s *HandlersSuite) TestExportWritesOrderedWorkbook() {
	token := s.login()
	resp := s.get("/api/branches/export?orderBy=bonuses&order=desc&page=3", token)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal(xlsxContentType, resp.Header.Get("Content-Type"))
	s.Contains(resp.Header.Get("Content-Disposition"), "branches-")

	f, err := excelize.OpenReader(resp.Body)
	s.Require().NoError(err)
	defer f.Close()
	rows, err := f.GetRows("branches")
	s.Require().NoError(err)
	s.Require().Len(rows, 4, "export ignores paging")
	s.Equal("Название", rows[0][0])
	s.Equal("Арбат", rows[1][0])
	s.Equal("Центральная", rows[2][0])
	s.Equal("Белая", rows[3][0])
}

func (s *HandlersSuite) TestReadiness() {
	resp := s.get("/ready", "")
	s.Equal(http.StatusOK, resp.StatusCode)
}
