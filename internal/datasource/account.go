package datasource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bookgraph/internal/apperr"
	"bookgraph/internal/auth"
	"bookgraph/internal/entity"
)

var (
	ErrEmailTaken         = apperr.InvalidArgument("email already in use")
	ErrUsernameTaken      = apperr.InvalidArgument("username already in use")
	ErrInvalidCredentials = apperr.AuthenticationFailed("Username or password is incorrect")
)

type SignUpInput struct {
	Email    string
	Name     string
	Password string
	Username string
}

// Session is the result of signing up or logging in: a signed token and the
// user it identifies.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Viewer    *entity.User
}

// SignUp stores a new user with a hashed password and opens a session for
// it. Email and username must both be unused; the email is checked first.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := auth.ValidatePasswordStrength(in.Password); err != nil {
		return nil, apperr.InvalidArgument(err.Error())
	}

	for _, unique := range []struct {
		field, value string
		taken        error
	}{
		{"email", in.Email, ErrEmailTaken},
		{"username", in.Username, ErrUsernameTaken},
	} {
		u, err := s.findUser(ctx, unique.field, unique.value)
		if err != nil {
			return nil, err
		}
		if u != nil {
			return nil, unique.taken
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	var created entity.User
	payload := newUser{Email: in.Email, Name: in.Name, Password: hash, Username: in.Username}
	if _, err := s.client.Post(ctx, "/users", payload, &created); err != nil {
		return nil, err
	}
	return s.session(created)
}

// Login opens a session for username. An unknown username and a wrong
// password fail identically.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.findUser(ctx, "username", username)
	if err != nil {
		return nil, err
	}
	if u == nil || u.Password == "" || !auth.VerifyPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return s.session(*u)
}

func (s *Service) session(u entity.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(u.ID, u.Username)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	viewer := u.Public()
	return &Session{Token: token, ExpiresAt: expiresAt, Viewer: &viewer}, nil
}

type newUser struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Username string `json:"username"`
}
