package snapshot

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/receivables/internal/logger"
)

// Source fetches the raw JSON payload of a collection.
type Source interface {
	Name() string
	Fetch(ctx context.Context, c Collection) ([]byte, error)
}

// Loader fetches every collection from a Source in parallel.
type Loader struct {
	source      Source
	concurrency int
	log         zerolog.Logger
	now         func() time.Time
}

// Option configures a Loader.
type Option func(*Loader)

// WithConcurrency bounds the number of in-flight fetches.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// WithClock sets the clock used for Snapshot.FetchedAt.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) { l.now = now }
}

// NewLoader creates a Loader for src.
func NewLoader(src Source, opts ...Option) *Loader {
	l := &Loader{
		source:      src,
		concurrency: 4,
		log:         logger.WithComponent("snapshot"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches all collections and returns the normalized Snapshot. A
// failed fetch degrades that collection to empty and is recorded in
// Snapshot.Failures; it never fails the load. Load only returns an error
// when ctx is already done before fetching starts.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payloads := make([][]byte, len(Collections))
	errs := make([]error, len(Collections))

	var g errgroup.Group
	g.SetLimit(l.concurrency)
	for i, c := range Collections {
		i, c := i, c
		g.Go(func() error {
			start := time.Now()
			raw, err := l.source.Fetch(ctx, c)
			if err != nil {
				errs[i] = err
				l.log.Warn().
					Err(err).
					Str("source", l.source.Name()).
					Str("collection", string(c)).
					Msg("fetch failed, using empty collection")
				return nil
			}
			payloads[i] = raw
			l.log.Debug().
				Str("source", l.source.Name()).
				Str("collection", string(c)).
				Int("bytes", len(raw)).
				Dur("elapsed", time.Since(start)).
				Msg("fetched collection")
			return nil
		})
	}
	_ = g.Wait()

	raw := make(map[Collection][]byte, len(Collections))
	for i, c := range Collections {
		if errs[i] == nil {
			raw[c] = payloads[i]
		}
	}

	snap := FromRaw(raw)
	snap.FetchedAt = l.now()
	for i, c := range Collections {
		if errs[i] != nil {
			snap.Failures[c] = errs[i].Error()
		}
	}

	l.log.Info().
		Str("source", l.source.Name()).
		Int("invoices", len(snap.Invoices)).
		Int("payments", len(snap.Payments)).
		Int("clients", len(snap.Clients)).
		Int("failed", len(snap.Failures)).
		Msg("snapshot loaded")

	return snap, nil
}
