package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/tendant/simple-catalog/pkg/catalog"
	"github.com/tendant/simple-catalog/pkg/catalog/auth"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// errUnauthenticated marks a request without a valid, unrevoked bearer token.
var errUnauthenticated = errors.New("unauthenticated")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json field names in validation errors
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and validates it.
func decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", catalog.ErrInvalidInput, err)
	}
	return validate.Struct(dst)
}

// statusFor maps an error to its HTTP status and error code.
func statusFor(err error) (int, string) {
	var ve validator.ValidationErrors
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, catalog.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, catalog.ErrInvalidParent):
		return http.StatusBadRequest, "invalid_parent"
	case errors.Is(err, catalog.ErrIDMismatch):
		return http.StatusBadRequest, "id_mismatch"
	case errors.Is(err, catalog.ErrInvalidContentType):
		return http.StatusBadRequest, "invalid_content_type"
	case errors.Is(err, catalog.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, catalog.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, catalog.ErrStorage):
		return http.StatusInternalServerError, "internal_error"
	case errors.Is(err, errUnauthenticated), errors.Is(err, auth.ErrRevoked):
		return http.StatusUnauthorized, "unauthorized"
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeError renders err as an ErrorResponse. Server errors are logged and
// their details withheld from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	resp := ErrorResponse{Error: code, Message: err.Error()}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		resp.Message = "validation failed"
		resp.Fields = make(map[string]string, len(ve))
		for _, fe := range ve {
			resp.Fields[fe.Field()] = fe.Tag()
		}
	}

	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		resp.Message = http.StatusText(status)
	}

	render.Status(r, status)
	render.JSON(w, r, resp)
}

// created renders v with 201 and a Location header.
func created(w http.ResponseWriter, r *http.Request, location string, v interface{}) {
	w.Header().Set("Location", location)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, v)
}
