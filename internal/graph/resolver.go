// Package graph binds the GraphQL schema to the mediation operations. Every
// root field passes the authorization gate before its operation runs.
package graph

import (
	"context"
	_ "embed"

	"bookgraph/internal/apperr"
	"bookgraph/internal/auth"
	"bookgraph/internal/authz"
	"bookgraph/internal/datasource"

	graphql "github.com/graph-gophers/graphql-go"
	"go.uber.org/zap"
)

//go:embed schema.graphql
var schemaSDL string

// DefaultMaxDepth bounds query nesting when no limit is configured.
const DefaultMaxDepth = 10

// Resolver is the root resolver for both Query and Mutation fields.
type Resolver struct {
	svc    *datasource.Service
	gate   *authz.Gate
	logger *zap.Logger
}

func NewResolver(svc *datasource.Service, gate *authz.Gate, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{svc: svc, gate: gate, logger: logger}
}

// NewSchema parses the embedded SDL against r.
func NewSchema(r *Resolver, maxDepth int) (*graphql.Schema, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return graphql.ParseSchema(schemaSDL, r,
		graphql.UseStringDescriptions(),
		graphql.MaxDepth(maxDepth),
	)
}

// authorize runs the gate for op against the caller in ctx.
func (r *Resolver) authorize(ctx context.Context, op string, target authz.Target) error {
	err := r.gate.Check(ctx, authz.Request{
		Operation: op,
		Identity:  auth.IdentityFrom(ctx),
		Target:    target,
	})
	if err != nil {
		return r.fail(op, err)
	}
	return nil
}

// fail logs unexpected errors and returns what the client may see.
func (r *Resolver) fail(op string, err error) error {
	if err == nil {
		return nil
	}
	if code := apperr.CodeOf(err); code == "" || code == apperr.CodeUpstreamFailure {
		r.logger.Warn("resolver failed", zap.String("field", op), zap.Error(err))
	}
	return publicError(err)
}
