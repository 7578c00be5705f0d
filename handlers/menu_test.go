package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

var mediaColumns = []string{"id", "menu_item_id", "manager", "file_name", "content_type", "size", "created_at"}

func (s *HandlersSuite) TestMenuCategories() {
	token := s.login()
	resp := s.get("/api/menu/categories", token)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	body := decodeBody[[]map[string]any](s, resp)
	s.Require().Len(body.Data, 2)
	s.Equal("Кофе", body.Data[0]["name"])
	s.Equal(float64(3), body.Data[0]["itemCount"])
	s.Equal(float64(0), body.Data[1]["itemCount"])
}

func (s *HandlersSuite) TestCategoryItemsAsCardGrid() {
	token := s.login()

	page := s.list("/api/menu/categories/1/items?orderBy=price", token)
	s.Equal([]any{"Эспрессо", "Латте", "Раф"}, page.column("name"))
	s.Equal(25, page.PageSize)

	latte := page.Rows[1]
	offer := latte["offer"].(map[string]any)
	s.Equal("variants", offer["kind"])
	variants := offer["variants"].([]any)
	s.Require().Len(variants, 2)
	s.Equal(true, variants[1].(map[string]any)["isDefault"])

	espresso := page.Rows[0]["offer"].(map[string]any)
	s.Equal("flat", espresso["kind"])
	s.Equal(float64(120), espresso["price"])
	s.Equal("40 мл", espresso["volume"])

	page = s.list("/api/menu/categories/1/items?orderBy=is_active&order=desc", token)
	s.Equal([]any{"Латте", "Эспрессо", "Раф"}, page.column("name"), "flags do not reorder")
	s.Equal(false, page.Rows[2]["isActive"])

	page = s.list("/api/menu/categories/1/items?filter=МОЛОКОМ", token)
	s.Equal([]any{"Латте"}, page.column("name"))

	s.Equal(http.StatusNotFound, s.get("/api/menu/categories/99/items", token).StatusCode)
}

func (s *HandlersSuite) TestPortions() {
	token := s.login()
	resp := s.get("/api/menu/portions", token)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	body := decodeBody[[]map[string]any](s, resp)
	s.Require().Len(body.Data, 2)
	s.Equal(float64(350), body.Data[1]["volume"])
}

func (s *HandlersSuite) lastMenuPost() map[string]any {
	posts := s.backend.seen("/api/menu-items/")
	s.Require().NotEmpty(posts)
	var sent map[string]any
	s.Require().NoError(json.Unmarshal(posts[len(posts)-1].Body, &sent))
	return sent
}

func (s *HandlersSuite) TestCreateFlatItem() {
	token := s.login()
	resp := s.call(http.MethodPost, "/api/menu/items", token,
		`{"categoryId": 1, "name": " Американо ", "offer": {"kind": "flat", "price": 150, "volume": "200 мл"}}`)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	s.Equal(float64(42), decodeBody[map[string]any](s, resp).Data["id"])

	sent := s.lastMenuPost()
	s.Equal("Американо", sent["name"])
	s.Equal("150", sent["price"])
	s.Equal("200 мл", sent["volume"])
	s.Equal(float64(1), sent["category_id"])
	s.Equal(true, sent["is_active"])
	s.NotContains(sent, "variants")
	s.Empty(s.archive.keys())
}

func (s *HandlersSuite) TestCreateVariantItemPromotesFirstDefault() {
	token := s.login()
	resp := s.call(http.MethodPost, "/api/menu/items", token,
		`{"categoryId": 1, "name": "Капучино", "offer": {"kind": "variants", "variants": [{"portionId": 1, "price": "190"}, {"portionId": 2, "price": "230"}]}}`)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	variants := s.lastMenuPost()["variants"].([]any)
	s.Require().Len(variants, 2)
	s.Equal(true, variants[0].(map[string]any)["is_default"])
	s.Equal(false, variants[1].(map[string]any)["is_default"])
	s.NotContains(s.lastMenuPost(), "price")
}

func (s *HandlersSuite) TestCreateItemRejectsBadOffers() {
	token := s.login()
	bodies := []string{
		`{"categoryId": 1, "name": "X", "offer": {"kind": "variants", "variants": [{"portionId": 1, "price": "1"}], "price": 5}}`,
		`{"categoryId": 1, "name": "X", "offer": {"kind": "flat"}}`,
		`{"categoryId": 1, "name": "X", "offer": {"kind": "variants", "variants": [{"portionId": 0, "price": "1"}]}}`,
		`{"name": "X"}`,
		`{"categoryId": 1, "name": ""}`,
	}
	for _, b := range bodies {
		resp := s.call(http.MethodPost, "/api/menu/items", token, b)
		s.Equal(http.StatusBadRequest, resp.StatusCode, b)
	}
	s.Empty(s.backend.seen("/api/menu-items/"))
}

func (s *HandlersSuite) TestCreateItemWithImageArchivesCopy() {
	token := s.login()
	s.mock.ExpectExec("INSERT INTO menu_media").
		WithArgs(sqlmock.AnyArg(), 42, testManager, "flat.png", "image/png", int64(len(pngBytes))).
		WillReturnResult(sqlmock.NewResult(0, 1))

	contentType, body := multipartBody(s, map[string]string{
		"item": `{"categoryId": 1, "name": "Флэт уайт", "offer": {"kind": "flat", "price": 210}}`,
	}, "flat.png", pngBytes)
	resp, err := s.send(http.MethodPost, "/api/menu/items", token, contentType, body)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	posts := s.backend.seen("/api/menu-items/")
	s.Require().Len(posts, 1)
	s.True(strings.HasPrefix(posts[0].ContentType, "multipart/form-data"))
	s.Contains(string(posts[0].Body), "Флэт уайт")

	keys := s.archive.keys()
	s.Require().Len(keys, 1)
	s.True(strings.HasPrefix(keys[0], "menu/42/"))
}

func (s *HandlersSuite) TestUploadRejectsSniffedType() {
	token := s.login()
	contentType, body := multipartBody(s, map[string]string{
		"item": `{"categoryId": 1, "name": "Флэт уайт"}`,
	}, "fake.png", []byte("just some text pretending to be an image"))
	resp, err := s.send(http.MethodPost, "/api/menu/items", token, contentType, body)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("FILE_REJECTED", decodeBody[any](s, resp).Error.Code)
	s.Empty(s.backend.seen("/api/menu-items/"))
}

func (s *HandlersSuite) TestUploadRejectsOversizedImage() {
	token := s.login()
	big := append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{1}, 1<<20)...)
	contentType, body := multipartBody(s, nil, "big.png", big)
	resp, err := s.send(http.MethodPut, "/api/menu/items/10/image", token, contentType, body)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusRequestEntityTooLarge, resp.StatusCode)
	s.Empty(s.backend.seen("/api/menu-items/10/image/"))
}

func (s *HandlersSuite) TestReplaceImage() {
	token := s.login()
	s.mock.ExpectExec("INSERT INTO menu_media").
		WithArgs(sqlmock.AnyArg(), 10, testManager, "latte.png", "image/png", int64(len(pngBytes))).
		WillReturnResult(sqlmock.NewResult(0, 1))

	contentType, body := multipartBody(s, nil, "latte.png", pngBytes)
	resp, err := s.send(http.MethodPut, "/api/menu/items/10/image", token, contentType, body)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	patches := s.backend.seen("/api/menu-items/10/image/")
	s.Require().Len(patches, 1)
	s.Equal(http.MethodPatch, patches[0].Method)
	s.Len(s.archive.keys(), 1)
}

func (s *HandlersSuite) TestReplaceImageRequiresFile() {
	token := s.login()
	contentType, body := multipartBody(s, map[string]string{"note": "no file"}, "", nil)
	resp, err := s.send(http.MethodPut, "/api/menu/items/10/image", token, contentType, body)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *HandlersSuite) TestItemImagesArePresigned() {
	token := s.login()
	s.mock.ExpectQuery("SELECT .+ FROM menu_media").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(mediaColumns).
			AddRow("a1", 10, testManager, "latte.png", "image/png", 120, time.Now()))

	resp := s.get("/api/menu/items/10/images", token)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	items := decodeBody[[]map[string]any](s, resp).Data
	s.Require().Len(items, 1)
	s.Equal("https://media.test/menu/10/a1", items[0]["url"])
}

func (s *HandlersSuite) TestDeleteItemDropsArchivedImages() {
	token := s.login()
	s.archive.objects["menu/10/a1"] = pngBytes
	s.mock.ExpectQuery("SELECT .+ FROM menu_media").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(mediaColumns).
			AddRow("a1", 10, testManager, "latte.png", "image/png", 120, time.Now()))
	s.mock.ExpectExec("DELETE FROM menu_media").
		WithArgs("a1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	resp := s.call(http.MethodDelete, "/api/menu/items/10", token, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	deletes := s.backend.seen("/api/menu-items/10/")
	s.Require().Len(deletes, 1)
	s.Equal(http.MethodDelete, deletes[0].Method)
	s.Empty(s.archive.keys())
}

func (s *HandlersSuite) TestUpdateItemSendsPatch() {
	token := s.login()
	resp := s.call(http.MethodPatch, "/api/menu/items/11", token,
		`{"name": "Эспрессо", "isActive": false, "offer": {"kind": "flat", "price": 130, "volume": "40 мл"}}`)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	patches := s.backend.seen("/api/menu-items/11/")
	s.Require().Len(patches, 1)
	s.Equal(http.MethodPatch, patches[0].Method)
	var sent map[string]any
	s.Require().NoError(json.Unmarshal(patches[0].Body, &sent))
	s.Equal(false, sent["is_active"])
	s.Equal("130", sent["price"])
	s.NotContains(sent, "category_id")
}
