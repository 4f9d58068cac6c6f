package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-resourceforms/pkg/resource"
	"github.com/goliatone/go-resourceforms/pkg/schema"
)

// Fetcher retrieves schema and records for a resource type. *api.Client
// satisfies it.
type Fetcher interface {
	Schema(ctx context.Context, typ resource.Type) (schema.Schema, error)
	List(ctx context.Context, typ resource.Type) ([]resource.Record, error)
}

// Status summarises one type's outcome.
type Status string

const (
	StatusReady  Status = "ready"
	StatusFailed Status = "failed"
)

// Result holds what was loaded for one resource type.
type Result struct {
	Type       resource.Type
	Schema     schema.Schema
	Records    []resource.Record
	SchemaErr  error
	RecordsErr error
}

// Ready reports whether both schema and records loaded.
func (r Result) Ready() bool {
	return r.SchemaErr == nil && r.RecordsErr == nil
}

// Status returns StatusReady or StatusFailed.
func (r Result) Status() Status {
	if r.Ready() {
		return StatusReady
	}
	return StatusFailed
}

// Err joins the schema and records errors.
func (r Result) Err() error {
	return errors.Join(r.SchemaErr, r.RecordsErr)
}

// Snapshot is the settled outcome of one Load call.
type Snapshot struct {
	order   []resource.Type
	results map[resource.Type]Result
}

// Result returns the outcome for typ.
func (s Snapshot) Result(typ resource.Type) (Result, bool) {
	result, ok := s.results[typ]
	return result, ok
}

// Results returns every outcome in request order.
func (s Snapshot) Results() []Result {
	out := make([]Result, 0, len(s.order))
	for _, typ := range s.order {
		out = append(out, s.results[typ])
	}
	return out
}

// Failed lists the types whose schema or records could not be loaded.
func (s Snapshot) Failed() []resource.Type {
	var failed []resource.Type
	for _, typ := range s.order {
		if !s.results[typ].Ready() {
			failed = append(failed, typ)
		}
	}
	return failed
}

// Err joins every per-type error, or returns nil when all types are ready.
func (s Snapshot) Err() error {
	var errs []error
	for _, typ := range s.order {
		if err := s.results[typ].Err(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", typ, err))
		}
	}
	return errors.Join(errs...)
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithConcurrency caps how many resource types load at once. Zero or less
// means unlimited.
func WithConcurrency(limit int) Option {
	return func(l *Loader) {
		l.limit = limit
	}
}

// Loader fans out schema and record requests for several resource types and
// waits for all of them to settle.
type Loader struct {
	fetcher Fetcher
	logger  *zap.Logger
	limit   int
}

// New constructs a Loader around fetcher.
func New(fetcher Fetcher, options ...Option) (*Loader, error) {
	if fetcher == nil {
		return nil, errors.New("loader: fetcher is required")
	}
	l := &Loader{
		fetcher: fetcher,
		logger:  zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(l)
	}
	return l, nil
}

// Load requests the schema and records of every type concurrently. A failure
// for one type is recorded in its Result and never cancels the others; the
// returned error is non-nil only when the request itself is invalid or ctx is
// already done.
func (l *Loader) Load(ctx context.Context, types ...resource.Type) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	order, err := dedupe(types)
	if err != nil {
		return Snapshot{}, err
	}

	started := time.Now()
	results := make([]Result, len(order))

	var group errgroup.Group
	if l.limit > 0 {
		group.SetLimit(l.limit)
	}
	for idx, typ := range order {
		group.Go(func() error {
			results[idx] = l.loadOne(ctx, typ)
			return nil
		})
	}
	_ = group.Wait()

	snapshot := Snapshot{
		order:   order,
		results: make(map[resource.Type]Result, len(order)),
	}
	for _, result := range results {
		snapshot.results[result.Type] = result
	}

	fields := []zap.Field{
		zap.Int("types", len(order)),
		zap.Duration("elapsed", time.Since(started)),
	}
	if err := snapshot.Err(); err != nil {
		l.logger.Warn("resources settled with failures", append(fields, zap.Error(err))...)
	} else {
		l.logger.Debug("resources settled", fields...)
	}
	return snapshot, nil
}

func (l *Loader) loadOne(ctx context.Context, typ resource.Type) Result {
	result := Result{Type: typ}

	var pair errgroup.Group
	pair.Go(func() error {
		result.Schema, result.SchemaErr = l.fetcher.Schema(ctx, typ)
		return nil
	})
	pair.Go(func() error {
		result.Records, result.RecordsErr = l.fetcher.List(ctx, typ)
		return nil
	})
	_ = pair.Wait()

	if !result.Ready() {
		l.logger.Debug("resource failed", zap.Stringer("type", typ), zap.Error(result.Err()))
	}
	return result
}

func dedupe(types []resource.Type) ([]resource.Type, error) {
	if len(types) == 0 {
		return nil, errors.New("loader: at least one resource type is required")
	}
	seen := make(map[resource.Type]struct{}, len(types))
	out := make([]resource.Type, 0, len(types))
	for _, typ := range types {
		if !typ.Valid() {
			return nil, fmt.Errorf("loader: %w: %q", resource.ErrUnknownType, typ)
		}
		if _, dup := seen[typ]; dup {
			continue
		}
		seen[typ] = struct{}{}
		out = append(out, typ)
	}
	return out, nil
}
