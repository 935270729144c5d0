package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"bookgraph/internal/auth"
	"bookgraph/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(token string) (*auth.Identity, error) {
	args := m.Called(token)
	id, _ := args.Get(0).(*auth.Identity)
	return id, args.Error(1)
}

// identityProbe records the identity the wrapped handler saw.
type identityProbe struct {
	called bool
	id     *auth.Identity
}

func (p *identityProbe) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.called = true
	p.id = auth.IdentityFrom(r.Context())
	w.WriteHeader(http.StatusOK)
}

func TestSessionMiddleware_NoToken(t *testing.T) {
	verifier := new(mockVerifier)
	probe := &identityProbe{}

	w := httptest.NewRecorder()
	SessionMiddleware(verifier, "token")(probe).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/graphql", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, probe.called)
	assert.Nil(t, probe.id)
	verifier.AssertNotCalled(t, "Verify", mock.Anything)
}

func TestSessionMiddleware_BearerToken(t *testing.T) {
	verifier := new(mockVerifier)
	want := &auth.Identity{UserID: 3, Username: "reader"}
	verifier.On("Verify", "good").Return(want, nil).Once()
	probe := &identityProbe{}

	req := testutil.NewRequestWithAuth(http.MethodPost, "/graphql", nil, "good")
	req.AddCookie(&http.Cookie{Name: "token", Value: "ignored"})
	w := httptest.NewRecorder()
	SessionMiddleware(verifier, "token")(probe).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, want, probe.id)
	verifier.AssertExpectations(t)
}

func TestSessionMiddleware_CookieFallback(t *testing.T) {
	verifier := new(mockVerifier)
	want := &auth.Identity{UserID: 4, Username: "cookie"}
	verifier.On("Verify", "from-cookie").Return(want, nil).Once()
	probe := &identityProbe{}

	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "from-cookie"})
	w := httptest.NewRecorder()
	SessionMiddleware(verifier, "session")(probe).ServeHTTP(w, req)

	assert.Equal(t, want, probe.id)
	verifier.AssertExpectations(t)
}

func TestSessionMiddleware_ExpiredIsAnonymous(t *testing.T) {
	verifier := new(mockVerifier)
	verifier.On("Verify", "stale").Return(nil, auth.ErrTokenExpired).Once()
	probe := &identityProbe{}

	w := httptest.NewRecorder()
	req := testutil.NewRequestWithAuth(http.MethodPost, "/graphql", nil, "stale")
	SessionMiddleware(verifier, "token")(probe).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, probe.called)
	assert.Nil(t, probe.id)
}

func TestSessionMiddleware_InvalidIsRejected(t *testing.T) {
	verifier := new(mockVerifier)
	verifier.On("Verify", "forged").Return(nil, auth.ErrTokenInvalid).Once()
	probe := &identityProbe{}

	w := httptest.NewRecorder()
	req := testutil.NewRequestWithAuth(http.MethodPost, "/graphql", nil, "forged")
	SessionMiddleware(verifier, "token")(probe).ServeHTTP(w, req)

	resp := testutil.RecordHTTPResponse(w)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.False(t, probe.called)
	assert.Contains(t, resp.Body, "errors")
}

func TestSessionMiddleware_RealTokens(t *testing.T) {
	tokens := auth.NewTokens(testutil.TestSecret)
	handler := func(probe *identityProbe) http.Handler {
		return SessionMiddleware(tokens, "token")(probe)
	}

	t.Run("valid", func(t *testing.T) {
		probe := &identityProbe{}
		w := httptest.NewRecorder()
		token := testutil.GenerateTestToken(testutil.TestSecret, 1, "testuser")
		handler(probe).ServeHTTP(w, testutil.NewRequestWithAuth(http.MethodPost, "/graphql", nil, token))
		assert.Equal(t, &auth.Identity{UserID: 1, Username: "testuser"}, probe.id)
	})

	t.Run("expired", func(t *testing.T) {
		probe := &identityProbe{}
		w := httptest.NewRecorder()
		token := testutil.GenerateExpiredToken(testutil.TestSecret, 1, "testuser")
		handler(probe).ServeHTTP(w, testutil.NewRequestWithAuth(http.MethodPost, "/graphql", nil, token))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, probe.id)
	})

	t.Run("signed with another secret", func(t *testing.T) {
		probe := &identityProbe{}
		w := httptest.NewRecorder()
		token := testutil.GenerateTestToken("someone-else", 1, "testuser")
		handler(probe).ServeHTTP(w, testutil.NewRequestWithAuth(http.MethodPost, "/graphql", nil, token))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, probe.called)
	})
}
