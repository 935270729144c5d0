package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"bookgraph/internal/apperr"
)

// ErrorResponse mirrors the GraphQL error envelope so clients handle
// transport-level rejections the same way as resolver errors.
type ErrorResponse struct {
	Errors []ErrorBody `json:"errors"`
}

type ErrorBody struct {
	Message    string         `json:"message"`
	Extensions ErrorExtension `json:"extensions"`
}

type ErrorExtension struct {
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

func JSONSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(data)
}

func JSONError(w http.ResponseWriter, r *http.Request, statusCode int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Errors: []ErrorBody{{
			Message: message,
			Extensions: ErrorExtension{
				Code:      code,
				RequestID: RequestIDFrom(r),
			},
		}},
	})
}

// WriteError renders err with the status and code of its apperr.Code.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		JSONError(w, r, http.StatusInternalServerError, "INTERNAL", "An internal error occurred")
		return
	}
	JSONError(w, r, e.HTTPStatus(), string(e.Code), e.Message)
}
