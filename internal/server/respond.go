package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/pipegraph/pkg/graph"
	perrors "github.com/matzehuels/pipegraph/pkg/errors"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    perrors.Code `json:"code"`
	Message string       `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	status := perrors.HTTPStatus(apiErr.Code)
	if status >= 500 {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "code", apiErr.Code, "error", err)
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: apiErr.Code, Message: apiErr.Message}})
}

// toAPIError maps package sentinels to coded errors. Errors that are
// already coded pass through.
func toAPIError(err error) *perrors.Error {
	var coded *perrors.Error
	if errors.As(err, &coded) {
		return coded
	}
	code := perrors.ErrCodeInternal
	switch {
	case errors.Is(err, graph.ErrInvalidEdge):
		code = perrors.ErrCodeInvalidEdge
	case errors.Is(err, graph.ErrInvalidNodeID):
		code = perrors.ErrCodeInvalidNode
	case errors.Is(err, graph.ErrUnknownKind):
		code = perrors.ErrCodeUnknownKind
	case errors.Is(err, graph.ErrDuplicateNodeID):
		code = perrors.ErrCodeDuplicateID
	case errors.Is(err, graph.ErrNodeNotFound),
		errors.Is(err, graph.ErrEdgeNotFound),
		errors.Is(err, ErrWorkspaceNotFound),
		errors.Is(err, ErrRouteNotFound):
		code = perrors.ErrCodeNotFound
	case errors.Is(err, ErrWorkspaceLimit):
		code = perrors.ErrCodeRateLimited
	case errors.Is(err, context.DeadlineExceeded):
		code = perrors.ErrCodeTimeout
	}
	msg := err.Error()
	if code == perrors.ErrCodeInternal {
		msg = "internal error"
	}
	return &perrors.Error{Code: code, Message: msg, Cause: err}
}

// decode reads a JSON body of at most limit bytes into v and validates it.
func decode(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	body := http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return perrors.Wrap(perrors.ErrCodeInvalidInput, err, "request body exceeds %d bytes", limit)
		}
		return perrors.Wrap(perrors.ErrCodeInvalidSnapshot, err, "malformed JSON body")
	}
	if err := validate.Struct(v); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return nil
		}
		return perrors.New(perrors.ErrCodeInvalidInput, "%s", formatValidationError(err))
	}
	return nil
}

func formatValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		field := e.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, e.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, e.Param()))
		case "url", "http_url":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid URL", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}
