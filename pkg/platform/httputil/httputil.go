// Package httputil centralizes JSON encoding and domain-error translation
// for HTTP handlers so every endpoint returns the same envelope.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "regula/pkg/domain-errors"
)

var validate = validator.New()

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// WriteError translates a domain error into the standard error envelope:
//
//	{"error": "<code>", "error_description": "<message>"}
//
// Internal errors omit the description so store and infrastructure details
// never leak to callers.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := map[string]string{
		"error": string(code),
	}
	if code != dErrors.CodeInternal {
		body["error_description"] = dErrors.MessageOf(err)
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), body)
}

// DecodeJSON decodes a request body, rejecting unknown fields. Returns a
// coded bad-request error suitable for WriteError.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}

// DecodeValid decodes a request body into T and runs struct-tag validation.
func DecodeValid[T any](r *http.Request) (T, error) {
	var dst T
	if err := DecodeJSON(r, &dst); err != nil {
		return dst, err
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return dst, dErrors.Wrap(err, dErrors.CodeValidation, "request validation failed")
		}
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return dst, dErrors.Newf(dErrors.CodeValidation,
			"invalid request fields: %s", strings.Join(fields, ", "))
	}
	return dst, nil
}
