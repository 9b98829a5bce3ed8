package credentials

import (
	"context"
	"fmt"
	"os"
	"sync"

	"borgtool/internal/repo"
)

const (
	// EnvPassphrase is the engine's native passphrase variable.
	EnvPassphrase = "BORG_PASSPHRASE"
	// EnvPassCommand names a command the engine runs to obtain the passphrase.
	EnvPassCommand = "BORG_PASSCOMMAND"
)

// Passphrase is an optional secret. The zero value means "not provided": the
// engine is left to source its own secret. An empty but set value is a valid
// answer for unencrypted repositories.
type Passphrase struct {
	value string
	set   bool
}

// None returns an unset passphrase.
func None() Passphrase { return Passphrase{} }

// New wraps a secret value.
func New(value string) Passphrase { return Passphrase{value: value, set: true} }

// Value returns the secret and whether one was provided.
func (p Passphrase) Value() (string, bool) { return p.value, p.set }

// Env returns the environment assignment passed to the engine, or nil.
func (p Passphrase) Env() []string {
	if !p.set {
		return nil
	}
	return []string{EnvPassphrase + "=" + p.value}
}

func (p Passphrase) String() string {
	if !p.set {
		return "<none>"
	}
	return "<redacted>"
}

func (p Passphrase) GoString() string { return "credentials.Passphrase(" + p.String() + ")" }

// PromptFunc asks the operator for a masked secret.
type PromptFunc func(ctx context.Context, prompt string) (string, error)

// Option configures a Cache.
type Option func(*Cache)

// WithEnvLookup replaces os.LookupEnv (primarily for tests).
func WithEnvLookup(lookup func(string) (string, bool)) Option {
	return func(c *Cache) {
		if lookup != nil {
			c.lookupEnv = lookup
		}
	}
}

// Cache holds the passphrase for the lifetime of the process. It prompts at
// most once and never persists the secret.
type Cache struct {
	mu        sync.Mutex
	prompt    PromptFunc
	lookupEnv func(string) (string, bool)
	resolved  bool
	value     Passphrase
	prompts   int
}

// NewCache returns an empty cache backed by prompt.
func NewCache(prompt PromptFunc, opts ...Option) *Cache {
	c := &Cache{prompt: prompt, lookupEnv: os.LookupEnv}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Prefilled returns a cache that already holds p and never prompts.
func Prefilled(p Passphrase) *Cache {
	return &Cache{lookupEnv: os.LookupEnv, resolved: true, value: p}
}

// Ensure returns the passphrase to hand to the engine for rc. When the
// environment already carries a passphrase or passphrase command it returns
// None without prompting.
func (c *Cache) Ensure(ctx context.Context, rc repo.Context) (Passphrase, error) {
	if c == nil {
		return None(), nil
	}
	if c.envProvided() {
		return None(), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resolved {
		return c.value, nil
	}
	if c.prompt == nil {
		return None(), nil
	}
	c.prompts++
	answer, err := c.prompt(ctx, fmt.Sprintf("Enter passphrase for repo %s (leave empty if none): ", rc.Locator))
	if err != nil {
		return None(), fmt.Errorf("read passphrase: %w", err)
	}
	c.value = New(answer)
	c.resolved = true
	return c.value, nil
}

// Prompts reports how many times the operator was asked.
func (c *Cache) Prompts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prompts
}

func (c *Cache) envProvided() bool {
	if _, ok := c.lookupEnv(EnvPassCommand); ok {
		return true
	}
	_, ok := c.lookupEnv(EnvPassphrase)
	return ok
}
