package auth

import (
	"errors"
	"strconv"
	"time"

	"bookgraph/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed lifetime of a session token.
const TokenTTL = 24 * time.Hour

var signingMethod = jwt.SigningMethodHS256

// ErrTokenExpired is returned by Verify for a correctly signed token past its
// expiry. Callers treat it as "no identity" rather than a rejection.
var ErrTokenExpired = errors.New("token expired")

// ErrTokenInvalid is returned by Verify for malformed or tampered tokens and
// tokens signed with any algorithm other than HS256.
var ErrTokenInvalid = apperr.AuthenticationFailed("invalid token")

type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Identity is the decoded subject of a valid token.
type Identity struct {
	UserID   int
	Username string
}

// Tokens issues and verifies session tokens with a single shared secret.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), now: time.Now}
}

// Issue signs a token binding userID and username, valid for TokenTTL.
func (t *Tokens) Issue(userID int, username string) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(TokenTTL)
	c := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(signingMethod, c).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify checks the signature, algorithm and expiry of tokenStr.
func (t *Tokens) Verify(tokenStr string) (*Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid.WithCause(err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil || claims.Username == "" {
		return nil, ErrTokenInvalid.WithCause(jwt.ErrTokenInvalidClaims)
	}
	return &Identity{UserID: userID, Username: claims.Username}, nil
}
