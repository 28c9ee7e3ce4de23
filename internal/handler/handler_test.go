package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/wine-dine/internal/auth"
	"github.com/iliyamo/wine-dine/internal/config"
	"github.com/iliyamo/wine-dine/internal/handler"
	"github.com/iliyamo/wine-dine/internal/imagehost"
	"github.com/iliyamo/wine-dine/internal/model"
	"github.com/iliyamo/wine-dine/internal/moderation"
	"github.com/iliyamo/wine-dine/internal/router"
	"github.com/iliyamo/wine-dine/internal/storetest"
	"github.com/iliyamo/wine-dine/internal/utils"
)

const testSecret = "test-secret"

type site struct {
	e        *echo.Echo
	menu     *storetest.MenuStore
	reviews  *storetest.ReviewStore
	messages *storetest.MessageStore
	users    *storetest.UserStore
	tokens   *storetest.TokenStore
	events   *storetest.Events
	images   *fakeUploader
	cfg      config.Config
	admin    model.User
}

type fakeUploader struct {
	calls int
	url   string
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, _, _ string, r io.Reader) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	_, _ = io.Copy(io.Discard, r)
	return f.url, nil
}

func newSite(t *testing.T, resets handler.ResetStore) *site {
	t.Helper()
	s := &site{
		e:        echo.New(),
		menu:     storetest.NewMenuStore(),
		reviews:  storetest.NewReviewStore(),
		messages: storetest.NewMessageStore(),
		users:    storetest.NewUserStore(),
		tokens:   storetest.NewTokenStore(),
		events:   &storetest.Events{},
		images:   &fakeUploader{url: "https://res.cloudinary.com/demo/x.png"},
		cfg: config.Config{
			Env:            "dev",
			JWTSecret:      testSecret,
			AccessTTLMin:   15,
			RefreshTTLDays: 7,
			BcryptCost:     4,
			ResetTTL:       30 * time.Minute,
			PublicBaseURL:  "https://winedine.example",
			Images:         config.ImageConfig{MaxUploadMB: 1},
		},
	}
	s.admin = s.users.AddAdmin("owner@winedine.example", "correct-horse")

	log := zap.NewNop()
	gate := auth.NewGate(testSecret)
	mod := moderation.NewModerator(s.reviews, s.messages)
	router.RegisterRoutes(s.e)
	router.RegisterPublic(s.e, handler.NewPublicHandler(s.menu, mod, s.events, log))
	router.RegisterAuth(s.e, handler.NewAuthHandler(s.cfg, s.users, s.tokens, resets, s.events, log), gate)
	router.RegisterAdmin(s.e, handler.NewAdminHandler(s.menu, mod, s.images, s.cfg.Images.MaxBytes(), log), gate)
	return s
}

func (s *site) adminToken(t *testing.T) string {
	t.Helper()
	tok, err := utils.NewAccessToken(testSecret, s.admin.ID, model.RoleAdmin, 15)
	require.NoError(t, err)
	return tok.Token
}

func (s *site) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (s *site) addItem(t *testing.T, name, desc, category string, price float64) {
	t.Helper()
	it, err := model.MenuItemInput{Name: name, Description: desc, Category: category, Price: price}.Validate()
	require.NoError(t, err)
	require.NoError(t, s.menu.Create(context.Background(), &it))
}

type groupsResp struct {
	Groups []struct {
		Category string `json:"category"`
		Items    []struct {
			Name  string  `json:"name"`
			Price float64 `json:"price"`
		} `json:"items"`
	} `json:"groups"`
	Count int `json:"count"`
}

func (g groupsResp) keys() []string {
	out := make([]string, 0, len(g.Groups))
	for _, grp := range g.Groups {
		out = append(out, grp.Category)
	}
	return out
}

// ----- public -----

func TestHealthAndCategories(t *testing.T) {
	s := newSite(t, nil)

	rec := s.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = s.do(t, http.MethodGet, "/v1/categories", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct{ Items []string }
	decode(t, rec, &out)
	assert.Equal(t, model.Categories, out.Items)
}

func TestBrowseMenu(t *testing.T) {
	s := newSite(t, nil)
	s.addItem(t, "Margherita", "Tomato and basil", "Pizza", 9.5)
	s.addItem(t, "Pepperoni", "Spicy salami", "Pizza", 11)
	s.addItem(t, "Caesar", "Romaine and parmesan", "Salads", 7)

	rec := s.do(t, http.MethodGet, "/v1/menu", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all groupsResp
	decode(t, rec, &all)
	assert.Equal(t, []string{"Pizza", "Salads"}, all.keys())
	assert.Equal(t, 3, all.Count)
	assert.Equal(t, 9.5, all.Groups[0].Items[0].Price)

	rec = s.do(t, http.MethodGet, "/v1/menu?q=pizza", nil, "")
	var none groupsResp
	decode(t, rec, &none)
	assert.Empty(t, none.Groups)
	assert.Equal(t, 0, none.Count)

	rec = s.do(t, http.MethodGet, "/v1/menu?category=Pizza", nil, "")
	var pizza groupsResp
	decode(t, rec, &pizza)
	require.Equal(t, []string{"Pizza"}, pizza.keys())
	assert.Equal(t, "Margherita", pizza.Groups[0].Items[0].Name)
	assert.Equal(t, "Pepperoni", pizza.Groups[0].Items[1].Name)

	rec = s.do(t, http.MethodGet, "/v1/menu?q=ROMAINE&category=Pizza,Salads&category=Burgers", nil, "")
	var both groupsResp
	decode(t, rec, &both)
	assert.Equal(t, []string{"Salads"}, both.keys())
}

func TestBrowseMenu_StoreFailure(t *testing.T) {
	s := newSite(t, nil)
	s.menu.Fail = true

	rec := s.do(t, http.MethodGet, "/v1/menu", nil, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"operation failed"}`, rec.Body.String())
}

func TestSubmitReview(t *testing.T) {
	s := newSite(t, nil)

	rec := s.do(t, http.MethodPost, "/v1/reviews", map[string]any{"name": "Ann", "rating": 4.5, "comment": "Great pasta"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct{ ID string }
	decode(t, rec, &created)
	require.NotEmpty(t, created.ID)

	r, ok := s.reviews.Get(created.ID)
	require.True(t, ok)
	assert.False(t, r.Approved)

	evs := s.events.Recorded()
	require.Len(t, evs, 1)
	assert.Equal(t, "review.submitted", evs[0].Type)

	rec = s.do(t, http.MethodGet, "/v1/reviews", nil, "")
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
}

func TestSubmitReview_Validation(t *testing.T) {
	s := newSite(t, nil)

	rec := s.do(t, http.MethodPost, "/v1/reviews", map[string]any{"name": " ", "rating": 4.3}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var out struct {
		Error  string
		Fields map[string]string
	}
	decode(t, rec, &out)
	assert.Equal(t, "validation failed", out.Error)
	assert.Contains(t, out.Fields, "name")
	assert.Contains(t, out.Fields, "rating")
	assert.Contains(t, out.Fields, "comment")
	assert.Zero(t, s.reviews.Calls["create"])
	assert.Empty(t, s.events.Recorded())
}

func TestSubmitContact(t *testing.T) {
	s := newSite(t, nil)

	rec := s.do(t, http.MethodPost, "/v1/contact", map[string]string{"name": "Bob", "email": "not-an-email", "message": "hi"}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please enter a valid email address")

	rec = s.do(t, http.MethodPost, "/v1/contact", map[string]string{"name": "Bob", "email": "bob@example.com", "message": "Table for 4?"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	s.messages.Fail = true
	rec = s.do(t, http.MethodPost, "/v1/contact", map[string]string{"name": "Bob", "email": "bob@example.com", "message": "again"}, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Len(t, s.events.Recorded(), 1)
}

// ----- admin -----

func TestAdminPanel_SessionGate(t *testing.T) {
	s := newSite(t, nil)

	rec := s.do(t, http.MethodGet, "/admin", nil, "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin-login", rec.Header().Get(echo.HeaderLocation))

	rec = s.do(t, http.MethodGet, "/admin-login", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: s.adminToken(t)})
	rec = httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var dash struct {
		PendingReviews []model.Review `json:"pending_reviews"`
		Unread         int            `json:"unread"`
	}
	decode(t, rec, &dash)
	assert.Empty(t, dash.PendingReviews)
	assert.Zero(t, dash.Unread)
}

func TestAdminAPI_RequiresToken(t *testing.T) {
	s := newSite(t, nil)
	rec := s.do(t, http.MethodGet, "/v1/admin/reviews/pending", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other, err := utils.NewAccessToken(testSecret, 99, "CUSTOMER", 15)
	require.NoError(t, err)
	rec = s.do(t, http.MethodGet, "/v1/admin/reviews/pending", nil, other.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReviewModeration(t *testing.T) {
	s := newSite(t, nil)
	tok := s.adminToken(t)

	for _, name := range []string{"Ann", "Bob"} {
		rec := s.do(t, http.MethodPost, "/v1/reviews", map[string]any{"name": name, "rating": 5, "comment": "yum"}, "")
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := s.do(t, http.MethodGet, "/v1/admin/reviews/pending", nil, tok)
	require.Equal(t, http.StatusOK, rec.Code)
	var pending struct{ Items []model.Review }
	decode(t, rec, &pending)
	require.Len(t, pending.Items, 2)
	assert.Equal(t, "Bob", pending.Items[0].Name)
	bob, ann := pending.Items[0].ID, pending.Items[1].ID

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodPost, "/v1/admin/reviews/"+ann+"/approve", nil, tok).Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodPost, "/v1/admin/reviews/"+ann+"/approve", nil, tok).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/v1/admin/reviews/missing/approve", nil, tok).Code)

	rec = s.do(t, http.MethodGet, "/v1/reviews", nil, "")
	var public struct{ Items []model.Review }
	decode(t, rec, &public)
	require.Len(t, public.Items, 1)
	assert.Equal(t, ann, public.Items[0].ID)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/v1/admin/reviews/"+bob, nil, tok).Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/v1/admin/reviews/"+ann, nil, tok).Code)

	rec = s.do(t, http.MethodGet, "/v1/reviews", nil, "")
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
	rec = s.do(t, http.MethodGet, "/v1/admin/reviews/pending", nil, tok)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
}

func TestMessageInbox(t *testing.T) {
	s := newSite(t, nil)
	tok := s.adminToken(t)

	rec := s.do(t, http.MethodPost, "/v1/contact", map[string]string{"name": "Bob", "email": "bob@example.com", "message": "Hello"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct{ ID string }
	decode(t, rec, &created)

	var inbox struct {
		Items  []model.ContactMessage
		Unread int
	}
	decode(t, s.do(t, http.MethodGet, "/v1/admin/messages", nil, tok), &inbox)
	require.Len(t, inbox.Items, 1)
	assert.Equal(t, 1, inbox.Unread)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodPost, "/v1/admin/messages/"+created.ID+"/read", nil, tok).Code)
		m, ok := s.messages.Get(created.ID)
		require.True(t, ok)
		assert.True(t, m.Read)
	}
	decode(t, s.do(t, http.MethodGet, "/v1/admin/messages", nil, tok), &inbox)
	assert.Equal(t, 0, inbox.Unread)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/v1/admin/messages/"+created.ID, nil, tok).Code)
	_, ok := s.messages.Get(created.ID)
	assert.False(t, ok)
}

func TestCreateMenuItem(t *testing.T) {
	s := newSite(t, nil)
	tok := s.adminToken(t)

	for _, price := range []any{-1, "abc", 0, nil} {
		rec := s.do(t, http.MethodPost, "/v1/admin/menu", map[string]any{
			"name": "Bad", "description": "x", "category": "Pizza", "price": price,
		}, tok)
		require.Equal(t, http.StatusBadRequest, rec.Code, "price %v", price)
		assert.Contains(t, rec.Body.String(), "Please enter a valid price")
	}
	assert.Zero(t, s.menu.Calls["create"])

	rec := s.do(t, http.MethodPost, "/v1/admin/menu", map[string]any{
		"name": "Margherita", "description": "Classic", "category": "Pizza", "price": "9.50",
	}, tok)
	require.Equal(t, http.StatusCreated, rec.Code)
	var it struct {
		ID    string
		Price float64
	}
	decode(t, rec, &it)
	assert.NotEmpty(t, it.ID)
	assert.Equal(t, 9.5, it.Price)

	var grouped groupsResp
	decode(t, s.do(t, http.MethodGet, "/v1/admin/menu", nil, tok), &grouped)
	assert.Equal(t, []string{"Pizza"}, grouped.keys())

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/v1/admin/menu/"+it.ID, nil, tok).Code)
	decode(t, s.do(t, http.MethodGet, "/v1/admin/menu", nil, tok), &grouped)
	assert.Empty(t, grouped.Groups)
}

func uploadRequest(t *testing.T, token, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/uploads", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	return req
}

func TestUploadImage(t *testing.T) {
	s := newSite(t, nil)
	tok := s.adminToken(t)

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, uploadRequest(t, tok, "menu.pdf", "application/pdf", []byte("%PDF")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	s.e.ServeHTTP(rec, uploadRequest(t, tok, "huge.png", "image/png", bytes.Repeat([]byte("a"), (1<<20)+1)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, s.images.calls)

	rec = httptest.NewRecorder()
	s.e.ServeHTTP(rec, uploadRequest(t, tok, "pizza.png", "image/png", []byte("PNG")))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"url":"https://res.cloudinary.com/demo/x.png"}`, rec.Body.String())

	s.images.err = imagehost.ErrUploadFailed
	rec = httptest.NewRecorder()
	s.e.ServeHTTP(rec, uploadRequest(t, tok, "pizza.png", "image/png", []byte("PNG")))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "upload failed"))
}
