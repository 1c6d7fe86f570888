package shuffle

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-repository-shuffle/cache"
)

// Config tunes request clamping and key layout for a Pager.
type Config struct {
	// DefaultPageSize replaces a missing or non-positive page size.
	DefaultPageSize int
	// MaxPageSize caps the page size.
	MaxPageSize int
	// Namespace is the first segment of every cache key the pager writes.
	Namespace string
}

// DefaultConfig returns page sizes of 10 by default and 100 at most.
func DefaultConfig() Config {
	return Config{
		DefaultPageSize: DefaultPageSize,
		MaxPageSize:     MaxPageSize,
		Namespace:       "shuffle",
	}
}

// Validate checks the page size bounds and the namespace.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.MaxPageSize, validation.Required, validation.Min(1)),
		validation.Field(&c.DefaultPageSize, validation.Required, validation.Min(1), validation.Max(c.MaxPageSize)),
		validation.Field(&c.Namespace, validation.Required, validation.By(noSeparator)),
	)
}

func noSeparator(value any) error {
	if s, _ := value.(string); strings.Contains(s, cache.KeySeparator) {
		return errors.New("must not contain " + cache.KeySeparator)
	}
	return nil
}
