// internal/vault/vault.go
//
// Vault client wrapper for the informer host.
//
// Context
// -------
// Widget parameters may reference secrets as `vault:<mount>/<path>#<key>`
// (API tokens for the GitHub or Gitea widgets, for instance).
// ResolveParams swaps those references for plain strings before discovery,
// so no widget and no data request body ever carries a Vault URI.
//
// The Client reads KV-v2 secrets through the HashiCorp SDK, memoizes each
// `path#key` for a caller-chosen TTL, and keeps its token alive in the
// background until the boot context ends.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(ctx, log)                        // during boot.
//  2. err = vault.ResolveParams(ctx, cli, params, ttl)       // per wid.
//
// Notes
// -----
// • VAULT_ADDR and VAULT_TOKEN come from the environment (SDK defaults).
// • Oxford commas, two spaces after periods.
package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

// ErrKeyNotFound is returned when the secret exists but lacks the key.
var ErrKeyNotFound = errors.New("key not found in secret")

//
// SECTION 1.  Client
//

// Client is safe for concurrent use.  Create once at startup.
type Client struct {
	api *vault.Client
	log *zap.SugaredLogger

	mu    sync.Mutex
	cache map[string]cached // path#key → value + expiry.
}

type cached struct {
	val string
	exp time.Time
}

// New builds a client from the environment and starts token renewal, which
// runs until ctx ends.
func New(ctx context.Context, log *zap.SugaredLogger) (*Client, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}
	api, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		api.SetToken(tok)
	}

	c := &Client{api: api, log: log.Named("vault"), cache: make(map[string]cached)}
	go c.renew(ctx)
	return c, nil
}

// GetKV returns one key of a KV-v2 secret as a string.  Scalar non-string
// values are rendered in their JSON form.  With ttl > 0 the value is reused
// until it expires.
func (c *Client) GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error) {
	if secretPath == "" || key == "" {
		return "", ErrBadRef
	}
	ref := secretPath + "#" + key

	if ttl > 0 {
		if v, ok := c.lookup(ref); ok {
			return v, nil
		}
	}

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}
	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, ref)
	}
	val, err := stringify(raw)
	if err != nil {
		return "", fmt.Errorf("vault %s: %w", ref, err)
	}

	if ttl > 0 {
		c.mu.Lock()
		c.cache[ref] = cached{val: val, exp: time.Now().Add(ttl)}
		c.mu.Unlock()
	}
	c.log.Debugw("secret resolved", "ref", ref)
	return val, nil
}

func (c *Client) lookup(ref string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cv, ok := c.cache[ref]
	if !ok || time.Now().After(cv.exp) {
		delete(c.cache, ref)
		return "", false
	}
	return cv.val, true
}

//
// SECTION 2.  Token renewal
//

// renew keeps the token alive.  Non-renewable tokens are re-checked hourly;
// transient failures back off for thirty seconds.
func (c *Client) renew(ctx context.Context) {
	for ctx.Err() == nil {
		sec, err := c.api.Auth().Token().RenewSelfWithContext(ctx, 0)
		switch {
		case err != nil:
			c.log.Warnw("token renew failed", "err", err)
			sleep(ctx, 30*time.Second)
			continue
		case sec == nil || sec.Auth == nil || !sec.Auth.Renewable:
			c.log.Infow("token is not renewable")
			sleep(ctx, time.Hour)
			continue
		}

		watcher, err := c.api.NewLifetimeWatcher(&vault.LifetimeWatcherInput{Secret: sec})
		if err != nil {
			c.log.Warnw("lifetime watcher init failed", "err", err)
			sleep(ctx, 30*time.Second)
			continue
		}
		c.watch(ctx, watcher)
	}
}

func (c *Client) watch(ctx context.Context, w *vault.LifetimeWatcher) {
	go w.Start()
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-w.DoneCh():
			if err != nil {
				c.log.Warnw("token renewal stopped", "err", err)
			}
			sleep(ctx, 15*time.Second)
			return
		case ev := <-w.RenewCh():
			if ev != nil && ev.Secret != nil && ev.Secret.Auth != nil {
				c.log.Infow("token renewed", "ttl_seconds", ev.Secret.Auth.LeaseDuration)
			}
		}
	}
}

//
// SECTION 3.  Helpers
//

// splitMount turns "kv/app/github" into ("kv", "app/github").
func splitMount(p string) (mount, rel string) {
	mount, rel, _ = strings.Cut(strings.Trim(p, "/"), "/")
	return mount, rel
}

func stringify(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool, float64, int, int64:
		return fmt.Sprint(t), nil
	}
	return "", fmt.Errorf("value of type %T is not a scalar", v)
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

//
// SECTION 4.  Parameter references
//

// RefPrefix marks a parameter value that names a Vault secret.
const RefPrefix = "vault:"

// ErrBadRef is returned for a reference without a `#key` part.
var ErrBadRef = errors.New("vault reference must be vault:<path>#<key>")

// Getter is the part of Client ResolveParams needs.
type Getter interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

// ParseRef splits "vault:kv/app#token" into ("kv/app", "token").
func ParseRef(s string) (secretPath, key string, ok bool, err error) {
	rest, found := strings.CutPrefix(s, RefPrefix)
	if !found {
		return "", "", false, nil
	}
	secretPath, key, found = strings.Cut(rest, "#")
	if !found || secretPath == "" || key == "" {
		return "", "", true, fmt.Errorf("%w: %q", ErrBadRef, s)
	}
	return secretPath, key, true, nil
}

// ResolveParams replaces every `vault:` string in params, descending into
// nested objects and lists.  The first failure aborts and is returned.
func ResolveParams(ctx context.Context, g Getter, params map[string]any, ttl time.Duration) error {
	for k, v := range params {
		nv, err := resolveValue(ctx, g, v, ttl)
		if err != nil {
			return fmt.Errorf("param %s: %w", k, err)
		}
		params[k] = nv
	}
	return nil
}

func resolveValue(ctx context.Context, g Getter, v any, ttl time.Duration) (any, error) {
	switch t := v.(type) {
	case string:
		p, key, ok, err := ParseRef(t)
		if !ok || err != nil {
			return t, err
		}
		return g.GetKV(ctx, p, key, ttl)
	case map[string]any:
		return t, ResolveParams(ctx, g, t, ttl)
	case []any:
		for i := range t {
			nv, err := resolveValue(ctx, g, t[i], ttl)
			if err != nil {
				return nil, err
			}
			t[i] = nv
		}
		return t, nil
	}
	return v, nil
}
