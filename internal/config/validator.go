// internal/config/validator.go
//
// go-playground/validator wiring plus the informer's custom tags.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` immediately after it
// unmarshals the merged Koanf tree into a `Config` instance.  Any tag
// mismatch aborts startup, so the host never runs with a malformed
// dashboard URL, unit path, or listen address.
//
// Custom tags
// -----------
//   - httpurl   absolute http or https URL with a host and no query
//   - urlpath   absolute path without a trailing slash ("/" itself is fine)
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	_ = val.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		u, err := url.Parse(fl.Field().String())
		return err == nil && (u.Scheme == "http" || u.Scheme == "https") &&
			u.Host != "" && u.RawQuery == ""
	})
	_ = val.RegisterValidation("urlpath", func(fl validator.FieldLevel) bool {
		p := fl.Field().String()
		return strings.HasPrefix(p, "/") && (p == "/" || !strings.HasSuffix(p, "/"))
	})
	return val
}

// validateStruct returns a readable summary of every failing field, or nil.
func validateStruct(c *Config) error {
	err := v.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(parts, "; "))
}
