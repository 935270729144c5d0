// Package config reads the server configuration from the environment,
// after loading .env.local when one exists.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

var defaultDevOrigins = []string{"https://studio.apollographql.com", "http://localhost:3000"}

type Config struct {
	Env      string
	Addr     string
	LogLevel string

	RESTBaseURL string
	RESTTimeout time.Duration
	RESTRPS     int

	JWTSecret    string
	CookieName   string
	CookieSecure bool
	EnableHSTS   bool

	CORSOrigins  []string
	InboundRPS   float64
	InboundBurst int
	MaxBodyBytes int64
	MaxDepth     int
}

// IsDevelopment reports whether the development conveniences (CORS for
// local tooling, console logs) are on.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// Load reads .env.local, without overriding variables already set, and
// then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	e := env{getenv: getenv}

	cfg := &Config{
		Env:          e.get("APP_ENV", EnvDevelopment),
		Addr:         e.get("APP_ADDR", ":4000"),
		LogLevel:     e.get("LOG_LEVEL", "info"),
		RESTBaseURL:  strings.TrimRight(e.must("REST_API_BASE_URL"), "/"),
		JWTSecret:    e.must("JWT_SECRET"),
		CookieName:   e.get("TOKEN_COOKIE_NAME", "token"),
		CookieSecure: e.getBool("COOKIE_SECURE", false),
		EnableHSTS:   e.getBool("ENABLE_HSTS", false),
		RESTTimeout:  e.getDuration("REST_TIMEOUT", 10*time.Second),
		RESTRPS:      e.getInt("REST_RPS", 50),
		InboundRPS:   float64(e.getInt("INBOUND_RPS", 20)),
		InboundBurst: e.getInt("INBOUND_BURST", 40),
		MaxBodyBytes: int64(e.getInt("MAX_BODY_BYTES", 1<<20)),
		MaxDepth:     e.getInt("GRAPHQL_MAX_DEPTH", 10),
	}
	if port := getenv("GRAPHQL_API_PORT"); port != "" {
		cfg.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	if origins := getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	} else if cfg.IsDevelopment() {
		cfg.CORSOrigins = append([]string(nil), defaultDevOrigins...)
	}

	if len(e.errs) > 0 {
		return nil, errors.Join(e.errs...)
	}
	return cfg, nil
}

// env collects every lookup failure so one Load reports all of them.
type env struct {
	getenv func(string) string
	errs   []error
}

func (e *env) get(key, def string) string {
	if v := e.getenv(key); v != "" {
		return v
	}
	return def
}

func (e *env) must(key string) string {
	v := e.getenv(key)
	if v == "" {
		e.errs = append(e.errs, fmt.Errorf("missing required environment variable: %s", key))
	}
	return v
}

func (e *env) getInt(key string, def int) int {
	v := e.getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		e.errs = append(e.errs, fmt.Errorf("%s: expected a positive integer, got %q", key, v))
		return def
	}
	return n
}

func (e *env) getBool(key string, def bool) bool {
	v := e.getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func (e *env) getDuration(key string, def time.Duration) time.Duration {
	v := e.getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
