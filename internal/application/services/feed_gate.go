package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wildlander/launcher/internal/core/domain/feed"
	"github.com/wildlander/launcher/internal/core/ports"
)

// FetchFunc loads the current content of one feed.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

type FeedGateConfig[T any] struct {
	Kind      feed.Kind
	Cache     ports.FeedCache[T]
	Freshness ports.FreshnessSource
	Fetch     FetchFunc[T]
	Metrics   ports.GateMetrics
	Logger    *logrus.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// FeedGate decides, per load cycle, whether cached feed content is shown as
// is, shown and then replaced, or fetched directly.
type FeedGate[T any] struct {
	kind      feed.Kind
	cache     ports.FeedCache[T]
	freshness ports.FreshnessSource
	fetch     FetchFunc[T]
	metrics   ports.GateMetrics
	logger    *logrus.Logger
	tracer    trace.Tracer
	now       func() time.Time

	// mu guards cycle and serialises cache writes against it.
	mu    sync.Mutex
	cycle uint64
}

func NewFeedGate[T any](cfg FeedGateConfig[T]) *FeedGate[T] {
	g := &FeedGate[T]{
		kind:      cfg.Kind,
		cache:     cfg.Cache,
		freshness: cfg.Freshness,
		fetch:     cfg.Fetch,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		tracer:    otel.Tracer("github.com/wildlander/launcher/feedgate"),
		now:       cfg.Clock,
	}
	if g.metrics == nil {
		g.metrics = ports.NoopGateMetrics{}
	}
	if g.logger == nil {
		g.logger = logrus.New()
		g.logger.SetOutput(io.Discard)
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g
}

// LoadResult describes how one load cycle ended.
type LoadResult[T any] struct {
	Cycle    uint64
	Decision feed.Decision
	State    feed.State
	// Items is what the renderer shows once the cycle is over.
	Items []T
	// Err wraps feed.ErrFetch when the content fetch failed.
	Err error
	// FreshnessErr wraps feed.ErrFreshnessUnavailable. It never reaches the user.
	FreshnessErr error
	// CacheErr is set when the refreshed content could not be persisted.
	CacheErr error
	// Superseded means a newer cycle started before this one's fetch resolved;
	// its result was dropped.
	Superseded bool
}

func (r *LoadResult[T]) enter(s feed.State) {
	next, err := r.State.Next(s)
	if err != nil {
		panic(err)
	}
	r.State = next
}

type freshnessResult struct {
	freshness feed.Freshness
	err       error
}

// Cycle returns the id of the most recent load cycle.
func (g *FeedGate[T]) Cycle() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cycle
}

func (g *FeedGate[T]) begin() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cycle++
	return g.cycle
}

// Load runs one load cycle and reports every view to r. The returned error is
// non-nil only when the cycle ended in the error state.
func (g *FeedGate[T]) Load(ctx context.Context, r feed.Renderer[T]) (*LoadResult[T], error) {
	if r == nil {
		r = feed.RenderFunc[T](func(feed.View[T]) {})
	}
	cycle := g.begin()
	ctx, span := g.tracer.Start(ctx, "feedgate.Load", trace.WithAttributes(
		attribute.String("feed.kind", string(g.kind)),
		attribute.Int64("feed.cycle", int64(cycle)),
	))
	defer span.End()

	res := &LoadResult[T]{Cycle: cycle, State: feed.StateIdle}
	log := g.logger.WithFields(logrus.Fields{"feed": g.kind, "cycle": cycle})
	res.enter(feed.StateLoading)

	// The freshness lookup overlaps the cache read; it only gates the decision.
	freshCtx, cancelFresh := context.WithCancel(ctx)
	defer cancelFresh()
	freshCh := make(chan freshnessResult, 1)
	go func() {
		f, err := g.freshness.LastUpdated(freshCtx)
		freshCh <- freshnessResult{freshness: f, err: err}
	}()

	cached, ok, err := g.cache.Get(ctx, g.kind)
	if err != nil {
		log.WithError(err).Warn("feed cache read failed, treating as empty")
		ok = false
	}
	if !ok || cached == nil {
		res.Decision = feed.DecisionFetchDirect
		g.metrics.Decision(g.kind, res.Decision)
		span.SetAttributes(attribute.String("feed.decision", string(res.Decision)))
		log.Debug("no cached feed, fetching directly")
		res.enter(feed.StateFetching)
		return g.fetchAndCommit(ctx, span, log, res, nil, r)
	}

	res.enter(feed.StateCached)
	res.Items = cached.Content
	r.Render(feed.View[T]{Kind: g.kind, Items: cached.Content, Source: feed.SourceCache})

	var fr freshnessResult
	select {
	case fr = <-freshCh:
	case <-ctx.Done():
		fr = freshnessResult{err: ctx.Err()}
	}
	var freshness *feed.Freshness
	if fr.err != nil {
		res.FreshnessErr = fmt.Errorf("%w: %w", feed.ErrFreshnessUnavailable, fr.err)
		log.WithError(fr.err).Info("feed freshness unavailable, using cache")
	} else {
		freshness = &fr.freshness
	}

	age := cached.Age
	res.Decision = feed.Decide(&age, freshness)
	g.metrics.Decision(g.kind, res.Decision)
	span.SetAttributes(attribute.String("feed.decision", string(res.Decision)))

	if res.Decision == feed.DecisionUseCacheOnly {
		res.enter(feed.StateRendered)
		log.WithFields(logrus.Fields{"age": cached.Age, "items": len(cached.Content)}).Debug("serving cached feed")
		return res, nil
	}

	log.WithFields(logrus.Fields{
		"age":          cached.Age,
		"last_updated": freshness.LastUpdatedMillis(),
	}).Debug("cached feed is stale, refreshing")
	res.enter(feed.StateFetching)
	return g.fetchAndCommit(ctx, span, log, res, cached, r)
}

// fetchAndCommit performs the content fetch and, if this cycle is still the
// latest, persists and renders the result. prev is the cache entry already on
// screen, if any.
func (g *FeedGate[T]) fetchAndCommit(ctx context.Context, span trace.Span, log *logrus.Entry, res *LoadResult[T], prev *feed.CachedFeed[T], r feed.Renderer[T]) (*LoadResult[T], error) {
	items, fetchErr := g.fetch(ctx)

	g.mu.Lock()
	if g.cycle != res.Cycle {
		g.mu.Unlock()
		res.Superseded = true
		g.metrics.Superseded(g.kind)
		span.SetAttributes(attribute.Bool("feed.superseded", true))
		log.Debug("load cycle superseded, discarding fetch result")
		return res, nil
	}

	if fetchErr != nil {
		g.mu.Unlock()
		res.Err = fmt.Errorf("%w: %w", feed.ErrFetch, fetchErr)
		res.enter(feed.StateError)
		g.metrics.FetchFailed(g.kind)
		span.RecordError(fetchErr)
		span.SetStatus(codes.Error, "feed fetch failed")
		if prev == nil {
			res.Items = nil
			r.Render(feed.View[T]{Kind: g.kind, Source: feed.SourceNetwork, Err: res.Err})
			log.WithError(fetchErr).Warn("feed fetch failed with no cache to fall back on")
		} else {
			// The cached view stays on screen.
			log.WithError(fetchErr).Warn("feed refresh failed, keeping cached content")
		}
		return res, res.Err
	}

	if items == nil {
		items = []T{}
	}
	age := g.now().UnixMilli()
	if prev != nil && prev.Age > age {
		age = prev.Age
	}
	res.CacheErr = g.cache.Set(ctx, g.kind, &feed.CachedFeed[T]{Age: age, Content: items})
	g.mu.Unlock()

	if res.CacheErr != nil {
		log.WithError(res.CacheErr).Warn("failed to persist refreshed feed")
	}
	res.Items = items
	res.enter(feed.StateRendered)
	r.Render(feed.View[T]{Kind: g.kind, Items: items, Source: feed.SourceNetwork})
	log.WithFields(logrus.Fields{"items": len(items), "age": age}).Debug("feed refreshed")
	return res, nil
}
