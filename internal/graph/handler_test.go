package graph

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"bookgraph/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) handler() http.Handler {
	return NewHandler(h.schema, CookieConfig{Name: "token"}, nil)
}

func serve(handler http.Handler, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	return nil
}

func TestHandlerPost(t *testing.T) {
	h := newHarness(t)
	seedCatalog(h)

	req := testutil.NewRequest(http.MethodPost, "/graphql", map[string]interface{}{
		"query":     `query Book($id: ID!) { book(id: $id) { title } }`,
		"variables": map[string]interface{}{"id": "2"},
	})
	w := serve(h.handler(), req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data": {"book": {"title": "Kindred"}}}`, w.Body.String())
	assert.Nil(t, sessionCookie(w))
}

func TestHandlerGet(t *testing.T) {
	h := newHarness(t)
	seedCatalog(h)

	q := url.Values{}
	q.Set("query", `query Author($id: ID!) { author(id: $id) { name } }`)
	q.Set("operationName", "Author")
	q.Set("variables", `{"id": "2"}`)
	w := serve(h.handler(), httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data": {"author": {"name": "Octavia E. Butler"}}}`, w.Body.String())
}

func TestHandlerRejectsBadRequests(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name   string
		req    *http.Request
		status int
	}{
		{"malformed body", httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader("{")), http.StatusBadRequest},
		{"missing query", testutil.NewRequest(http.MethodPost, "/graphql", map[string]string{}), http.StatusBadRequest},
		{"bad variables", httptest.NewRequest(http.MethodGet, "/graphql?query=%7Bviewer%7Bid%7D%7D&variables=nope", nil), http.StatusBadRequest},
		{"wrong method", httptest.NewRequest(http.MethodPut, "/graphql", nil), http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(h.handler(), tt.req)
			assert.Equal(t, tt.status, w.Code)
			resp := testutil.RecordHTTPResponse(w)
			assert.Contains(t, resp.Body, "errors")
		})
	}
	assert.Empty(t, h.store.Requests())
}

func TestHandlerGetRejectsMutations(t *testing.T) {
	h := newHarness(t)
	seedCatalog(h)
	doc := `query Book { book(id: "2") { title } } mutation Create { createAuthor(name: "N. K. Jemisin") { id } }`

	q := url.Values{}
	q.Set("query", doc)
	q.Set("operationName", "Create")
	req := httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil)
	w := serve(h.handler(), req.WithContext(asUser(1, "testuser")))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, http.MethodPost, w.Header().Get("Allow"))
	assert.Contains(t, w.Body.String(), "METHOD_NOT_ALLOWED")
	assert.Zero(t, h.store.Count("POST", "/authors"))

	q.Set("operationName", "Book")
	w = serve(h.handler(), httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data": {"book": {"title": "Kindred"}}}`, w.Body.String())
}

func TestHandlerLoginSetsCookie(t *testing.T) {
	h := newHarness(t)
	seedLoginUser(t, h)

	req := testutil.NewRequest(http.MethodPost, "/graphql", map[string]string{
		"query": `mutation { login(username: "testuser", password: "Secret#123") { token } }`,
	})
	w := serve(h.handler(), req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Login struct{ Token string }
		}
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.Equal(t, body.Data.Login.Token, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Positive(t, cookie.MaxAge)
}

func TestHandlerFailedLoginLeavesCookie(t *testing.T) {
	h := newHarness(t)
	seedLoginUser(t, h)

	req := testutil.NewRequest(http.MethodPost, "/graphql", map[string]string{
		"query": `mutation { login(username: "testuser", password: "Wrong#1234") { token } }`,
	})
	w := serve(h.handler(), req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, sessionCookie(w))
	assert.Contains(t, w.Body.String(), "AUTHENTICATION_FAILED")
}

func TestHandlerLogoutClearsCookie(t *testing.T) {
	h := newHarness(t)

	req := testutil.NewRequest(http.MethodPost, "/graphql", map[string]string{"query": `mutation { logout }`})
	req = req.WithContext(asUser(1, "testuser"))
	w := serve(h.handler(), req)

	assert.JSONEq(t, `{"data": {"logout": true}}`, w.Body.String())
	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
}
