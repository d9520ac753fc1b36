// Package shared holds the request/response helpers used by every API
// handler.
package shared

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Shared validator instance; validator.Validate is safe for concurrent
// use.
var validate = validator.New()

// DecodeJSON decodes the request body into v.
func DecodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// ValidateRequest validates v. Types implementing their own
// Validate() error take precedence over struct tags.
func ValidateRequest(v interface{}) error {
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}
	return validate.Struct(v)
}
