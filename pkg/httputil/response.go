package httputil

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/matzehuels/jsontree/pkg/errors"
)

// DefaultMaxBodySize bounds request bodies when DecodeJSON gets max <= 0.
const DefaultMaxBodySize = errors.DefaultMaxInputSize + 64<<10

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// StatusFor returns the HTTP status for an error code.
func StatusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidTheme,
		errors.ErrCodeInvalidQuery, errors.ErrCodeInvalidPath, errors.ErrCodeEmptyQuery,
		errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound, errors.ErrCodeSessionNotFound,
		errors.ErrCodeSessionExpired, errors.ErrCodeNoMatch:
		return http.StatusNotFound
	case errors.ErrCodeInvalidJSON, errors.ErrCodeTooDeep:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// WriteError writes err as an ErrorBody and returns the status used.
func WriteError(w http.ResponseWriter, err error) int {
	code := errors.GetCode(err)
	status := StatusFor(code)
	body := ErrorBody{Code: code, Message: errors.UserMessage(err)}
	if status >= http.StatusInternalServerError {
		body = ErrorBody{Code: errors.ErrCodeInternal, Message: "internal server error"}
	}
	WriteJSON(w, status, body)
	return status
}

// DecodeJSON decodes the request body into v. Bodies larger than max bytes,
// malformed bodies and unknown fields are INVALID_INPUT errors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any, max int64) error {
	if max <= 0 {
		max = DefaultMaxBodySize
	}
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return errors.New(errors.ErrCodeInvalidInput, "unsupported content type %q", ct)
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, max))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.As(err, &tooLarge):
			return errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", max)
		case stderrors.Is(err, io.EOF):
			return errors.New(errors.ErrCodeInvalidInput, "request body is empty")
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body: %s", strings.TrimPrefix(err.Error(), "json: "))
	}
	return nil
}

// Query returns the trimmed query parameter name, or def when it is empty.
func Query(r *http.Request, name, def string) string {
	if v := strings.TrimSpace(r.URL.Query().Get(name)); v != "" {
		return v
	}
	return def
}

// Attachment sets Content-Type and Content-Disposition for a download.
func Attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
