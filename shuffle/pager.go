package shuffle

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/goliatone/go-repository-shuffle/cache"
	"github.com/sirupsen/logrus"
)

// Pager serves shuffled listings page by page. One Pager is shared by every
// listing of a process; it owns the permutation cache and the per-key locks.
type Pager struct {
	cfg        Config
	cache      cache.CacheService
	serializer cache.KeySerializer
	locks      *keyedMutex
	gens       *generations
	shuffle    Shuffler
	newSession func() string
	logger     logrus.FieldLogger
}

// Option configures a Pager.
type Option func(*Pager)

// WithConfig replaces the default Config.
func WithConfig(cfg Config) Option {
	return func(p *Pager) { p.cfg = cfg }
}

// WithKeySerializer replaces the serializer used to fingerprint scopes.
func WithKeySerializer(serializer cache.KeySerializer) Option {
	return func(p *Pager) { p.serializer = serializer }
}

// WithShuffler replaces the shuffle used for new permutations.
func WithShuffler(shuffle Shuffler) Option {
	return func(p *Pager) { p.shuffle = shuffle }
}

// WithSessionIDGenerator replaces NewSessionID.
func WithSessionIDGenerator(fn func() string) Option {
	return func(p *Pager) { p.newSession = fn }
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(p *Pager) { p.logger = logger }
}

// NewPager creates a Pager storing permutations in cacheService.
func NewPager(cacheService cache.CacheService, opts ...Option) (*Pager, error) {
	if cacheService == nil {
		return nil, errors.New("shuffle: cache service is required")
	}

	p := &Pager{
		cfg:        DefaultConfig(),
		cache:      cacheService,
		serializer: cache.NewDefaultKeySerializer(),
		locks:      newKeyedMutex(),
		gens:       newGenerations(),
		shuffle:    DefaultShuffler,
		newSession: NewSessionID,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		p.logger = discard
	}
	if p.serializer == nil || p.shuffle == nil || p.newSession == nil {
		return nil, errors.New("shuffle: serializer, shuffler and session generator must not be nil")
	}
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Config returns the pager configuration.
func (p *Pager) Config() Config {
	return p.cfg
}

// KeySerializer returns the serializer used to fingerprint scopes.
func (p *Pager) KeySerializer() cache.KeySerializer {
	return p.serializer
}

// Normalize clamps req with the pager's page size bounds.
func (p *Pager) Normalize(req PageRequest) PageRequest {
	return req.normalize(p.cfg.DefaultPageSize, p.cfg.MaxPageSize)
}

// scopePrefix is shared by every session of one scope, arguments included.
func (p *Pager) scopePrefix(scope Scope) string {
	return strings.Join([]string{p.cfg.Namespace, scope.Name, scope.Fingerprint(p.serializer), ""}, cache.KeySeparator)
}

// SessionKey returns the cache key of a session's permutation for scope.
func (p *Pager) SessionKey(scope Scope, sessionID string) string {
	return p.scopePrefix(scope) + sessionID
}

// InvalidateSession drops one session's permutation for scope. It waits for a
// page request of that session in flight to finish.
func (p *Pager) InvalidateSession(ctx context.Context, scope Scope, sessionID string) error {
	key := p.SessionKey(scope, sessionID)
	unlock := p.locks.Lock(key)
	defer unlock()
	return p.cache.Delete(ctx, key)
}

// InvalidateScope drops every session's permutation for scope.
func (p *Pager) InvalidateScope(ctx context.Context, scope Scope) error {
	if err := scope.validate(); err != nil {
		return err
	}
	return p.gens.bump(scope.Name, func() error {
		return p.cache.DeleteByPrefix(ctx, p.scopePrefix(scope))
	})
}

// InvalidateScopeName drops every permutation of every scope called name,
// whatever its arguments.
func (p *Pager) InvalidateScopeName(ctx context.Context, name string) error {
	if err := (Scope{Name: name}).validate(); err != nil {
		return err
	}
	prefix := strings.Join([]string{p.cfg.Namespace, name, ""}, cache.KeySeparator)
	return p.gens.bump(name, func() error {
		return p.cache.DeleteByPrefix(ctx, prefix)
	})
}

// Paginate returns one page of the shuffled listing q together with the
// session id the client must send back to keep paging the same order.
//
// The request is clamped, never rejected. A missing or malformed session id
// is replaced by a new one, as is a session whose permutation expired. Rows
// deleted since the permutation was built are left out of the page while
// TotalCount keeps counting them. Only data source failures are returned as
// errors.
func Paginate[T any, ID comparable, R any](ctx context.Context, p *Pager, q Query[T, ID], req PageRequest, project func(T) R) (Page[R], string, error) {
	if err := q.validate(); err != nil {
		return Page[R]{}, "", err
	}
	if project == nil {
		return Page[R]{}, "", errMissingProjector
	}

	req = p.Normalize(req)

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = SessionIDFromContext(ctx)
	}
	if !validSessionID(sessionID) {
		sessionID = p.newSession()
	}

	key := p.SessionKey(q.Scope, sessionID)
	log := p.logger.WithFields(logrus.Fields{
		"scope":   q.Scope.Name,
		"session": sessionID,
		"page":    req.Page,
	})

	perm, created, err := storeFor[ID](p, q.Scope.Name).ResolveOrCreate(ctx, key, q.Source.FetchIDs)
	if err != nil {
		return Page[R]{}, "", dataAccessError(err, "shuffle: fetch identifiers for "+q.Scope.String())
	}
	if created {
		log.WithField("total", len(perm)).Debug("shuffle: permutation created")
	}

	window := SlicePage(perm, req.Page, req.PageSize)

	items, missing, err := Materialize(ctx, q.Source, window, project)
	if err != nil {
		return Page[R]{}, "", dataAccessError(err, "shuffle: fetch rows for "+q.Scope.String())
	}
	if missing > 0 {
		log.WithField("missing", missing).Warn("shuffle: rows vanished since permutation was built")
	}

	return NewPage(items, req.Page, req.PageSize, len(perm)), sessionID, nil
}
