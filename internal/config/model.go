// internal/config/model.go
//
// Typed configuration model for the informer host.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                            – dotenv values,
//   • `conf/informer.yaml`                       – primary static file,
//   • `INFORMER_`-prefixed environment overrides – highest precedence.
//
// Defaults() seeds every field first, so the YAML file only needs the
// values an operator wants to change.  Validation happens immediately
// after unmarshal; the process fails fast on a malformed tree.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • Durations accept Go syntax ("15s", "2m").
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.

package config

import "time"

//
// HTTP section
//

// HTTP holds control-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Dashboard section
//

// Dashboard points at the backend that serves the page and the widget data
// endpoints.
type Dashboard struct {
	BaseURL        string        `koanf:"base_url"        validate:"required,httpurl"`
	PagePath       string        `koanf:"page_path"       validate:"required,startswith=/"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"gt=0"`
}

//
// Registry section
//

// Registry configures where widget units come from.
type Registry struct {
	BasePath    string        `koanf:"base_path"    validate:"required,urlpath"`
	Suffix      string        `koanf:"suffix"       validate:"required,startswith=."`
	Manifests   bool          `koanf:"manifests"`
	LoadTimeout time.Duration `koanf:"load_timeout" validate:"gt=0"`
}

//
// Vault section
//

// Vault toggles `vault:` parameter resolution.  Connection details come from
// the usual VAULT_ADDR and VAULT_TOKEN environment variables.
type Vault struct {
	Enabled  bool          `koanf:"enabled"`
	CacheTTL time.Duration `koanf:"cache_ttl" validate:"gte=0"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // INFORMER_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the process lifetime.
type Config struct {
	HTTP      HTTP      `koanf:"http"`
	Dashboard Dashboard `koanf:"dashboard"`
	Registry  Registry  `koanf:"registry"`
	Vault     Vault     `koanf:"vault"`
	Paths     Paths     `koanf:"-"`
}

// Defaults returns the baseline every layer overlays.
func Defaults() Config {
	return Config{
		HTTP: HTTP{ListenAddr: "127.0.0.1:8484"},
		Dashboard: Dashboard{
			BaseURL:        "http://127.0.0.1:8080",
			PagePath:       "/",
			RequestTimeout: 15 * time.Second,
		},
		Registry: Registry{
			BasePath:    "/static/widgets",
			Suffix:      ".js",
			LoadTimeout: 30 * time.Second,
		},
		Vault: Vault{CacheTTL: 5 * time.Minute},
	}
}
