package shuffle

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/goliatone/go-repository-shuffle/cache"
)

// Scope identifies one logical listing, e.g. "all posts" or "posts in community 7".
// It is part of every cache key, so a session id reused across listings never
// serves one listing's permutation to another.
type Scope struct {
	Name string
	Args []any
}

// NewScope builds a Scope from a name and the arguments that select the listing.
func NewScope(name string, args ...any) Scope {
	return Scope{Name: name, Args: args}
}

// ScopeFor builds a Scope named after T, e.g. ScopeFor[*Post]() is named "post".
func ScopeFor[T any](args ...any) Scope {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return Scope{Name: toSnake(t.Name()), Args: args}
}

func (s Scope) validate() error {
	if s.Name == "" {
		return fmt.Errorf("shuffle: scope name is required")
	}
	if strings.Contains(s.Name, cache.KeySeparator) {
		return fmt.Errorf("shuffle: scope name %q must not contain %q", s.Name, cache.KeySeparator)
	}
	return nil
}

// Fingerprint returns a stable digest of the scope's name and arguments.
func (s Scope) Fingerprint(serializer cache.KeySerializer) string {
	return cache.Fingerprint(serializer.SerializeKey(s.Name, s.Args...))
}

func (s Scope) String() string {
	if len(s.Args) == 0 {
		return s.Name
	}
	return fmt.Sprintf("%s%v", s.Name, s.Args)
}
