package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"azv-admin-api/models"
	"azv-admin-api/pkg/latest"
	"azv-admin-api/pkg/listview"
	"azv-admin-api/repository"
	"azv-admin-api/types"

	"github.com/gin-gonic/gin"
)

// Lists resolves list state for a request and guards list loads so that only the
// latest request of a session for a section gets an answer.
type Lists struct {
	guard *latest.Group
	views *repository.SavedViewsRepository
}

func NewLists(guard *latest.Group, views *repository.SavedViewsRepository) *Lists {
	return &Lists{guard: guard, views: views}
}

// listDefaults is the state a section opens with.
type listDefaults struct {
	Sort     listview.SortSpec
	PageSize int
}

func (d listDefaults) state() listview.ListState {
	return listview.ListState{Sort: d.Sort, Page: listview.PageWindow{Size: d.PageSize}}
}

type listRequest struct {
	Section models.Section
	State   listview.ListState
	extra   map[string]string
}

// Param returns a section-specific filter: the query parameter when present,
// otherwise what the saved view stored.
func (r listRequest) Param(key string) string {
	return r.extra[key]
}

// resolve builds the list request from defaults, an optional saved view and the query.
// It answers the request itself and returns false on bad input.
func (l *Lists) resolve(c *gin.Context, section models.Section, defaults listDefaults, extraKeys ...string) (listRequest, bool) {
	q, err := types.ParseListQuery(c)
	if err != nil {
		badRequest(c, err.Error())
		return listRequest{}, false
	}

	req := listRequest{Section: section, State: defaults.state(), extra: map[string]string{}}
	if q.ViewID != 0 {
		view, err := l.ownedView(c, q.ViewID)
		if err != nil {
			respondError(c, err)
			return listRequest{}, false
		}
		if view.Section != section {
			respondError(c, repository.ErrNotFound)
			return listRequest{}, false
		}
		req.State = view.State
		if req.State.Page.Size <= 0 {
			req.State.Page.Size = defaults.PageSize
		}
		if err := decodeExtra(view.Extra, req.extra); err != nil {
			respondError(c, fmt.Errorf("decode view %d extra: %w", view.ID, err))
			return listRequest{}, false
		}
	}
	for _, key := range extraKeys {
		if v, ok := c.GetQuery(key); ok {
			req.extra[key] = v
		}
	}
	req.State = q.Over(req.State)
	return req, true
}

// ownedView loads a live view of the current manager. Views of others read as missing.
func (l *Lists) ownedView(c *gin.Context, id int) (*models.SavedView, error) {
	if l.views == nil {
		return nil, repository.ErrNotFound
	}
	view, err := l.views.GetByID(id)
	if err != nil {
		return nil, err
	}
	if view == nil || view.IsDeleted || view.Manager != currentSession(c).Manager {
		return nil, repository.ErrNotFound
	}
	return view, nil
}

func decodeExtra(raw json.RawMessage, into map[string]string) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return err
	}
	for k, v := range values {
		if v == nil {
			continue
		}
		into[k] = fmt.Sprint(v)
	}
	return nil
}

// fetchFunc loads a whole collection from the backend with the caller's credential.
type fetchFunc[T any] func(ctx context.Context, cred models.Credential) ([]T, error)

// serveList loads the collection under the latest-request guard and answers with the
// page req asks for. A load that was overtaken by a newer one for the same session and
// section answers 409 and its data is dropped.
func serveList[T any](c *gin.Context, l *Lists, req listRequest, schema *listview.Schema[T], fetch fetchFunc[T]) {
	session := currentSession(c)
	ticket, ctx, release := l.guard.Begin(c.Request.Context(), session.ID+":"+string(req.Section))
	defer release()

	records, err := fetch(ctx, session.Credential)
	if !l.guard.IsLatest(ticket) {
		c.JSON(http.StatusConflict, types.NewErrorResponse(types.ErrorCodeSuperseded, "A newer request for this list is in progress"))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	res := schema.Apply(records, req.State)
	c.JSON(http.StatusOK, types.NewSuccessResponse(types.NewListPage(res, req.State, ticket.Seq)))
}
