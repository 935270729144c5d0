package graph

import (
	"encoding/json"
	"math"
	"time"

	"bookgraph/internal/apperr"
	"bookgraph/internal/auth"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("password_strength", func(fl validator.FieldLevel) bool {
		return auth.ValidatePasswordStrength(fl.Field().String()) == nil
	})
	return v
}

var (
	errRating   = apperr.InvalidArgument("Rating must be an integer from 1 and 5")
	errPassword = apperr.InvalidArgument("Password must be a minimum of 8 characters in length and contain 1 lowercase letter, 1 uppercase letter, 1 number, and 1 special character")
)

// Rating is an integer from 1 to 5 inclusive.
type Rating int32

func (Rating) ImplementsGraphQLType(name string) bool {
	return name == "Rating"
}

func (r *Rating) UnmarshalGraphQL(input interface{}) error {
	var n int64
	switch v := input.(type) {
	case int32:
		n = int64(v)
	case int:
		n = int64(v)
	case int64:
		n = v
	case float64:
		if v != math.Trunc(v) {
			return errRating
		}
		n = int64(v)
	default:
		return errRating
	}
	if err := validate.Var(n, "gte=1,lte=5"); err != nil {
		return errRating
	}
	*r = Rating(n)
	return nil
}

// Password is a plaintext password that passed the strength check. It is
// accepted as input only.
type Password string

func (Password) ImplementsGraphQLType(name string) bool {
	return name == "Password"
}

func (p *Password) UnmarshalGraphQL(input interface{}) error {
	s, ok := input.(string)
	if !ok {
		return errPassword
	}
	if err := validate.Var(s, "password_strength"); err != nil {
		return errPassword
	}
	*p = Password(s)
	return nil
}

// DateTime is an RFC 3339 timestamp, always rendered in UTC.
type DateTime struct {
	time.Time
}

func (DateTime) ImplementsGraphQLType(name string) bool {
	return name == "DateTime"
}

func (t *DateTime) UnmarshalGraphQL(input interface{}) error {
	s, ok := input.(string)
	if !ok {
		return apperr.InvalidArgumentf("DateTime must be a string, got %T", input)
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return apperr.InvalidArgumentf("invalid DateTime %q", s)
	}
	t.Time = parsed
	return nil
}

func (t DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

var (
	errInvalidEmail    = apperr.InvalidArgument("email must be a valid email address")
	errInvalidUsername = apperr.InvalidArgument("username is required")
)
