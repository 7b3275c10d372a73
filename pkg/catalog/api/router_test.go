package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-catalog/pkg/catalog"
	"github.com/tendant/simple-catalog/pkg/catalog/auth"
	"github.com/tendant/simple-catalog/pkg/catalog/objectkey"
	"github.com/tendant/simple-catalog/pkg/catalog/repo/memory"
	memorystorage "github.com/tendant/simple-catalog/pkg/catalog/storage/memory"
)

const testSecret = "test-secret"

type testServer struct {
	handler   http.Handler
	service   catalog.Service
	tokenAuth *jwtauth.JWTAuth
}

// setupRouterTest builds the full router over in-memory stores
func setupRouterTest(t *testing.T) *testServer {
	t.Helper()
	store := memory.New()

	service, err := catalog.New(
		catalog.WithStore(store),
		catalog.WithEventSink(catalog.NewNoopEventSink()),
	)
	require.NoError(t, err)

	uploads, err := catalog.NewUploads(memorystorage.New(),
		catalog.WithPhotoRegistry(store),
		catalog.WithMaxSize(64),
	)
	require.NoError(t, err)

	tokenAuth := auth.NewJWTAuth(testSecret)
	handler := NewRouter(RouterConfig{
		Service:   service,
		Uploads:   uploads,
		Pinger:    store,
		TokenAuth: tokenAuth,
		Revoker:   auth.NewMemoryRevoker(),
	})
	return &testServer{handler: handler, service: service, tokenAuth: tokenAuth}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// seed creates the math/integer/algebra/eq1 catalog
func (s *testServer) seed(t *testing.T) {
	t.Helper()
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/categories",
		map[string]string{"id": "math", "title": "Math"}).Code)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/lessons",
		map[string]string{"id": "integer", "categoryId": "math", "title": "Integers", "content": "# Integers"}).Code)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/series",
		map[string]string{"id": "algebra", "categoryId": "math", "title": "Algebra"}).Code)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/seriesLessons",
		map[string]string{"id": "eq1", "categoryId": "math", "seriesId": "algebra", "title": "Equations", "content": "x=1"}).Code)
}

func TestCategoryLifecycle(t *testing.T) {
	s := setupRouterTest(t)

	w := s.do(t, http.MethodPost, "/api/categories", map[string]string{"id": "math", "title": "Math", "cover": "c.png"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/categories/math", w.Header().Get("Location"))

	var category catalog.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &category))
	assert.Equal(t, "math", category.ID)
	assert.Equal(t, "c.png", category.Cover)
	assert.False(t, category.CreatedAt.IsZero())

	w = s.do(t, http.MethodPost, "/api/categories", map[string]string{"id": "math", "title": "Again"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", decodeError(t, w).Error)

	w = s.do(t, http.MethodPatch, "/api/categories/math", map[string]string{"id": "math", "title": "Mathematics"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/categories/math", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &category))
	assert.Equal(t, "Mathematics", category.Title)
	assert.True(t, category.UpdatedAt.After(category.CreatedAt))

	w = s.do(t, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var categories []catalog.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
	assert.Len(t, categories, 1)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/categories/math", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/categories/math", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/categories/math", nil).Code)
}

func TestUpdateStatusMapping(t *testing.T) {
	s := setupRouterTest(t)
	s.seed(t)

	tests := []struct {
		name     string
		path     string
		body     interface{}
		wantCode int
		wantErr  string
	}{
		{"category id mismatch", "/api/categories/math", map[string]string{"id": "physics", "title": "X"}, http.StatusBadRequest, "id_mismatch"},
		{"category missing", "/api/categories/physics", map[string]string{"id": "physics", "title": "X"}, http.StatusNotFound, "not_found"},
		{"lesson category mismatch", "/api/lessons/math/integer", map[string]string{"id": "integer", "categoryId": "physics", "title": "X"}, http.StatusBadRequest, "id_mismatch"},
		{"lesson under other category", "/api/lessons/physics/integer", map[string]string{"id": "integer", "categoryId": "physics", "title": "X"}, http.StatusNotFound, "not_found"},
		{"lesson ok", "/api/lessons/math/integer", map[string]string{"id": "integer", "categoryId": "math", "title": "Whole numbers"}, http.StatusNoContent, ""},
		{"lesson content ok", "/api/lessons/math/integer/content", map[string]string{"id": "integer", "categoryId": "math", "content": "new"}, http.StatusNoContent, ""},
		{"lesson content missing", "/api/lessons/math/integer/content", map[string]string{"id": "integer", "categoryId": "math"}, http.StatusBadRequest, "invalid_input"},
		{"series ok", "/api/series/math/algebra", map[string]string{"id": "algebra", "categoryId": "math", "title": "Linear algebra"}, http.StatusNoContent, ""},
		{"series mismatch", "/api/series/math/algebra", map[string]string{"id": "geometry", "categoryId": "math"}, http.StatusBadRequest, "id_mismatch"},
		{"series lesson series mismatch", "/api/seriesLessons/math/algebra/eq1", map[string]string{"id": "eq1", "categoryId": "math", "seriesId": "geometry"}, http.StatusBadRequest, "id_mismatch"},
		{"series lesson ok", "/api/seriesLessons/math/algebra/eq1", map[string]string{"id": "eq1", "categoryId": "math", "seriesId": "algebra", "cover": "eq.png"}, http.StatusNoContent, ""},
		{"series lesson content ok", "/api/seriesLessons/math/algebra/eq1/content", map[string]string{"id": "eq1", "categoryId": "math", "seriesId": "algebra", "content": "y=2"}, http.StatusNoContent, ""},
		{"malformed json", "/api/categories/math", "{", http.StatusBadRequest, "invalid_input"},
		{"title too long", "/api/categories/math", map[string]string{"id": "math", "title": strings.Repeat("t", 101)}, http.StatusBadRequest, "invalid_input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPatch, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, decodeError(t, w).Error)
			}
		})
	}

	lesson, err := s.service.GetLesson(context.Background(), "math", "integer")
	require.NoError(t, err)
	assert.Equal(t, "Whole numbers", lesson.Title)
	assert.Equal(t, "new", lesson.Content)

	sl, err := s.service.GetSeriesLesson(context.Background(), "math", "algebra", "eq1")
	require.NoError(t, err)
	assert.Equal(t, "Equations", sl.Title)
	assert.Equal(t, "eq.png", sl.Cover)
	assert.Equal(t, "y=2", sl.Content)
}

func TestCreateValidation(t *testing.T) {
	s := setupRouterTest(t)

	w := s.do(t, http.MethodPost, "/api/categories", map[string]string{"id": strings.Repeat("x", 51), "title": "Long"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "invalid_input", resp.Error)
	assert.Equal(t, "max", resp.Fields["id"])

	w = s.do(t, http.MethodPost, "/api/categories", map[string]string{"id": "math"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "required", decodeError(t, w).Fields["title"])

	w = s.do(t, http.MethodPost, "/api/lessons", map[string]string{"id": "integer", "categoryId": "math", "title": "Integers"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_parent", decodeError(t, w).Error)
}

func TestCreateLocations(t *testing.T) {
	s := setupRouterTest(t)
	s.do(t, http.MethodPost, "/api/categories", map[string]string{"id": "math", "title": "Math"})

	w := s.do(t, http.MethodPost, "/api/lessons", map[string]string{"id": "integer", "categoryId": "math", "title": "Integers"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/lessons/math/integer", w.Header().Get("Location"))

	w = s.do(t, http.MethodPost, "/api/series", map[string]string{"id": "algebra", "categoryId": "math", "title": "Algebra"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/series/math/algebra", w.Header().Get("Location"))

	w = s.do(t, http.MethodPost, "/api/seriesLessons", map[string]string{"id": "eq 1", "categoryId": "math", "seriesId": "algebra", "title": "Eq"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/seriesLessons/math/algebra/eq%201", w.Header().Get("Location"))
}

func TestReadsAndMap(t *testing.T) {
	s := setupRouterTest(t)
	s.seed(t)

	w := s.do(t, http.MethodGet, "/api/lessons/math", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "# Integers")
	assert.Contains(t, w.Body.String(), `"id":"integer"`)

	w = s.do(t, http.MethodGet, "/api/lessons/math/integer", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# Integers")

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/lessons/physics/integer", nil).Code)

	w = s.do(t, http.MethodGet, "/api/seriesLessons/math/algebra", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "x=1")

	w = s.do(t, http.MethodGet, "/api/seriesLessons/math/algebra/eq1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "x=1")

	w = s.do(t, http.MethodGet, "/api/series/math", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"algebra"`)

	w = s.do(t, http.MethodGet, "/api/categories/utils/map", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var m []catalog.MapCategory
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	require.Len(t, m, 1)
	assert.Equal(t, "math", m[0].ID)
	require.Len(t, m[0].Lessons, 1)
	require.Len(t, m[0].Series, 1)
	require.Len(t, m[0].Series[0].SeriesLessons, 1)
	assert.Equal(t, "eq1", m[0].Series[0].SeriesLessons[0].ID)
	assert.NotContains(t, w.Body.String(), "x=1")
}

func TestDeleteCascades(t *testing.T) {
	s := setupRouterTest(t)
	s.seed(t)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/lessons/integer", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/lessons/integer", nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/seriesLessons/eq1", nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/series/algebra", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/series/algebra", nil).Code)

	s.seed2(t)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/categories/math", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/series/math/geometry", nil).Code)
}

// seed2 adds a second series to the seeded category
func (s *testServer) seed2(t *testing.T) {
	t.Helper()
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/series",
		map[string]string{"id": "geometry", "categoryId": "math", "title": "Geometry"}).Code)
}

func multipartImage(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func (s *testServer) upload(t *testing.T, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartImage(t, filename, contentType, data)
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func TestUploads(t *testing.T) {
	s := setupRouterTest(t)
	data := []byte("\x89PNG fake image")
	want := objectkey.Name(data, "cover.png")

	w := s.upload(t, "cover.png", "image/png", data)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.IsSuccess)
	assert.Equal(t, want, resp.FileName)
	assert.Equal(t, "/api/uploads/"+want, w.Header().Get("Location"))

	// same bytes, same name
	w = s.upload(t, "other.png", "image/png", data)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, want, resp.FileName)

	w = s.do(t, http.MethodGet, "/api/uploads/"+want, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, data, w.Body.Bytes())

	w = s.do(t, http.MethodGet, "/api/uploads", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var photos []catalog.Photo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &photos))
	require.Len(t, photos, 1)
	assert.Equal(t, want, photos[0].Name)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/uploads/"+want, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/uploads/"+want, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/uploads/"+want, nil).Code)
}

func TestUploadRejections(t *testing.T) {
	s := setupRouterTest(t)

	w := s.upload(t, "notes.txt", "text/plain", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_content_type", decodeError(t, w).Error)

	w = s.upload(t, "big.png", "image/png", bytes.Repeat([]byte("x"), 65))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "too_large", decodeError(t, w).Error)

	w = s.do(t, http.MethodPost, "/api/uploads", "not multipart")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/uploads/..secret", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/uploads/missing.png", nil).Code)
}

func (s *testServer) token(t *testing.T, claims map[string]interface{}) string {
	t.Helper()
	_, raw, err := s.tokenAuth.Encode(claims)
	require.NoError(t, err)
	return raw
}

func (s *testServer) logout(token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", strings.NewReader("{}"))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func TestLogout(t *testing.T) {
	s := setupRouterTest(t)

	assert.Equal(t, http.StatusUnauthorized, s.logout("").Code)
	assert.Equal(t, http.StatusUnauthorized, s.logout("garbage").Code)

	other := jwtauth.New("HS256", []byte("other-secret"), nil)
	_, forged, err := other.Encode(map[string]interface{}{"sub": "user-1"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, s.logout(forged).Code)

	token := s.token(t, map[string]interface{}{
		"sub": "user-1",
		"jti": "token-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	assert.Equal(t, http.StatusNoContent, s.logout(token).Code)

	w := s.logout(token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", decodeError(t, w).Error)

	// tokens without jti are revoked by digest
	bare := s.token(t, map[string]interface{}{"sub": "user-2"})
	assert.Equal(t, http.StatusNoContent, s.logout(bare).Code)
	assert.Equal(t, http.StatusUnauthorized, s.logout(bare).Code)
}

func (s *testServer) logoutWithCookie(token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", strings.NewReader("{}"))
	req.AddCookie(&http.Cookie{Name: "jwt", Value: token})
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func TestLogoutCookieSessionsAreIndependent(t *testing.T) {
	s := setupRouterTest(t)

	alice := s.token(t, map[string]interface{}{"sub": "alice"})
	bob := s.token(t, map[string]interface{}{"sub": "bob"})
	require.NotEqual(t, alice, bob)

	assert.Equal(t, http.StatusNoContent, s.logoutWithCookie(alice).Code)
	assert.Equal(t, http.StatusUnauthorized, s.logoutWithCookie(alice).Code)

	assert.Equal(t, http.StatusNoContent, s.logoutWithCookie(bob).Code)
	assert.Equal(t, http.StatusUnauthorized, s.logoutWithCookie(bob).Code)

	// a header token revoked earlier is still revoked when sent as a cookie
	carol := s.token(t, map[string]interface{}{"sub": "carol"})
	assert.Equal(t, http.StatusNoContent, s.logout(carol).Code)
	assert.Equal(t, http.StatusUnauthorized, s.logoutWithCookie(carol).Code)
}

func TestLogoutWithoutTokenAuth(t *testing.T) {
	handler := NewRouter(RouterConfig{Service: setupRouterTest(t).service})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer anything")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealth(t *testing.T) {
	s := setupRouterTest(t)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/readyz", nil).Code)

	handler := NewRouter(RouterConfig{Service: s.service, Pinger: failingPinger{}})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{catalog.ErrConflict, http.StatusConflict},
		{&catalog.EntityError{Entity: catalog.KindLesson, ID: "x", Op: "get", Err: catalog.ErrNotFound}, http.StatusNotFound},
		{catalog.ErrInvalidParent, http.StatusBadRequest},
		{catalog.ErrIDMismatch, http.StatusBadRequest},
		{catalog.ErrInvalidContentType, http.StatusBadRequest},
		{catalog.ErrInvalidInput, http.StatusBadRequest},
		{catalog.ErrTooLarge, http.StatusRequestEntityTooLarge},
		{auth.ErrRevoked, http.StatusUnauthorized},
		{catalog.NewStorageError("postgres", "insert", errors.New("boom")), http.StatusInternalServerError},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			got, _ := statusFor(tt.err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestServerErrorsHideDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	writeError(w, req, catalog.NewStorageError("postgres", "insert", errors.New("password authentication failed")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRecovererAndCORS(t *testing.T) {
	h := CORS("https://app.example")(Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
