package graph

import (
	"encoding/json"
	"net/http"

	"bookgraph/internal/httpx"

	"github.com/dgraph-io/gqlparser/v2/ast"
	"github.com/dgraph-io/gqlparser/v2/parser"
	graphql "github.com/graph-gophers/graphql-go"
	"go.uber.org/zap"
)

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Handler serves GraphQL over HTTP: POST with a JSON body, or GET with
// query, operationName and variables in the URL. GET only runs queries.
type Handler struct {
	schema *graphql.Schema
	cookie CookieConfig
	logger *zap.Logger
}

func NewHandler(schema *graphql.Schema, cookie CookieConfig, logger *zap.Logger) *Handler {
	if cookie.Name == "" {
		cookie.Name = "token"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{schema: schema, cookie: cookie, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	switch r.Method {
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
			return
		}
	case http.MethodGet:
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if raw := q.Get("variables"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
				httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid variables")
				return
			}
		}
	default:
		w.Header().Set("Allow", "GET, POST")
		httpx.JSONError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}
	if req.Query == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Missing query")
		return
	}
	if r.Method == http.MethodGet && operationType(req.Query, req.OperationName) == ast.Mutation {
		w.Header().Set("Allow", http.MethodPost)
		httpx.JSONError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Mutations must be sent with POST")
		return
	}

	cookies := &sessionCookies{}
	ctx := withSessionCookies(r.Context(), cookies)
	resp := h.schema.Exec(ctx, req.Query, req.OperationName, req.Variables)

	if len(resp.Errors) > 0 {
		h.logger.Debug("graphql errors",
			zap.String("request_id", httpx.RequestIDFromContext(r.Context())),
			zap.String("operation", req.OperationName),
			zap.Int("user_id", httpx.UserIDFrom(r)),
			zap.Int("count", len(resp.Errors)),
		)
	}

	body, err := json.Marshal(resp)
	if err != nil {
		h.logger.Error("encode graphql response", zap.Error(err))
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL", "Internal server error")
		return
	}
	cookies.write(w, h.cookie)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

// operationType returns the type of the operation named name in query. An
// unparseable document yields "" and is left to the executor to reject.
func operationType(query, name string) ast.Operation {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		return ""
	}
	if op := doc.Operations.ForName(name); op != nil {
		return op.Operation
	}
	return ""
}
