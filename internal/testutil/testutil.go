package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"time"

	"bookgraph/internal/auth"
	"bookgraph/internal/entity"

	"github.com/golang-jwt/jwt/v5"
)

const TestSecret = "test-secret"

// TestUser is a stored user fixture. Tests that log in seed it with a hash
// of TestPassword.
var TestUser = entity.User{
	ID:       1,
	Username: "testuser",
	Email:    "test@example.com",
	Name:     "Test User",
}

const TestPassword = "Secret#123"

var TestAuthor = entity.Author{ID: 1, Name: "Ursula K. Le Guin"}

var TestBook = entity.Book{ID: 1, Title: "The Dispossessed", Genre: strPtr("SCIENCE_FICTION")}

func strPtr(s string) *string { return &s }

// GenerateTestToken issues a valid session token for the given user.
func GenerateTestToken(secret string, userID int, username string) string {
	token, _, _ := auth.NewTokens(secret).Issue(userID, username)
	return token
}

// GenerateExpiredToken returns a correctly signed token that expired an hour
// ago.
func GenerateExpiredToken(secret string, userID int, username string) string {
	c := auth.Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-25 * time.Hour)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	token, _ := t.SignedString([]byte(secret))
	return token
}

// NewRequest creates a new HTTP request for testing
func NewRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	var r *http.Request
	if bodyBytes != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	return r
}

// NewRequestWithAuth creates a new HTTP request carrying a bearer token
func NewRequestWithAuth(method, path string, body interface{}, token string) *http.Request {
	r := NewRequest(method, path, body)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

// RecordResponse records the HTTP response for testing
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]interface{}
}

// RecordHTTPResponse records the HTTP response
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]interface{}
	if len(bodyBytes) > 0 {
		_ = json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
	}
}
