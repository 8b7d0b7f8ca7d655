package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/user/lens-lookup-service/internal/entity"
	"github.com/user/lens-lookup-service/internal/repository"
	"github.com/user/lens-lookup-service/pkg/metrics"
	"github.com/user/lens-lookup-service/pkg/utils"
)

// cacheKeyLength is how many leading characters of the payload form the cache key.
const cacheKeyLength = 100

// Searcher is the entry point of a reverse-image lookup.
type Searcher interface {
	Search(ctx context.Context, req entity.SearchRequest) (*entity.SearchResult, error)
	// ReleaseSession closes the shared browser session, if any.
	ReleaseSession(ctx context.Context) (bool, error)
}

// SearchDeps groups the collaborators of the search use case.
type SearchDeps struct {
	Cache          repository.ResultCacheRepository
	Sessions       *SessionProvider
	Pipeline       *NavigationPipeline
	Extraction     *ExtractionLoop
	Profile        entity.SiteProfile
	CacheTTL       time.Duration
	MaxConcurrency int
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
}

type searchUseCase struct {
	cache      repository.ResultCacheRepository
	sessions   *SessionProvider
	pipeline   *NavigationPipeline
	extraction *ExtractionLoop
	profile    entity.SiteProfile
	cacheTTL   time.Duration
	slots      *semaphore.Weighted
	inflight   singleflight.Group
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewSearchUseCase creates the search use case.
func NewSearchUseCase(deps SearchDeps) Searcher {
	concurrency := deps.MaxConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &searchUseCase{
		cache:      deps.Cache,
		sessions:   deps.Sessions,
		pipeline:   deps.Pipeline,
		extraction: deps.Extraction,
		profile:    deps.Profile,
		cacheTTL:   deps.CacheTTL,
		slots:      semaphore.NewWeighted(int64(concurrency)),
		logger:     deps.Logger,
		metrics:    deps.Metrics,
	}
}

// CacheKey derives the result cache key from a raw image payload.
func CacheKey(image string) string {
	return utils.Prefix(image, cacheKeyLength)
}

func (uc *searchUseCase) Search(ctx context.Context, req entity.SearchRequest) (*entity.SearchResult, error) {
	if err := ValidateImage(req.Image); err != nil {
		uc.metrics.SearchesTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	if !req.UseCache {
		return uc.runAndRecord(ctx, req.Image)
	}

	key := CacheKey(req.Image)
	if cached, ok := uc.lookup(ctx, key); ok {
		uc.metrics.SearchesTotal.WithLabelValues("cached").Inc()
		uc.logger.Info("serving cached search result", zap.Int("labels", len(cached.ExtractedLabels)))
		return cached, nil
	}

	// Identical cached requests arriving together share one pipeline run.
	// The run itself carries the first caller's context; every caller still
	// stops waiting when its own context ends.
	ch := uc.inflight.DoChan(key, func() (interface{}, error) {
		result, err := uc.runAndRecord(ctx, req.Image)
		if err != nil {
			return nil, err
		}
		if err := uc.cache.Set(ctx, key, result, uc.cacheTTL); err != nil {
			uc.logger.Warn("failed to cache search result", zap.Error(err))
		}
		return result, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			uc.logger.Debug("joined in-flight search for the same image")
		}
		return res.Val.(*entity.SearchResult).Clone(), nil
	}
}

func (uc *searchUseCase) ReleaseSession(ctx context.Context) (bool, error) {
	return uc.sessions.Release(ctx)
}

func (uc *searchUseCase) lookup(ctx context.Context, key string) (*entity.SearchResult, bool) {
	cached, ok, err := uc.cache.Get(ctx, key)
	switch {
	case err != nil:
		uc.metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		uc.logger.Warn("result cache lookup failed, treating as miss", zap.Error(err))
		return nil, false
	case !ok:
		uc.metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		return nil, false
	default:
		uc.metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
		return cached, true
	}
}

func (uc *searchUseCase) runAndRecord(ctx context.Context, image string) (*entity.SearchResult, error) {
	start := time.Now()
	result, err := uc.run(ctx, image)
	uc.metrics.SearchDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		uc.metrics.SearchesTotal.WithLabelValues("failed").Inc()
		uc.logger.Error("image search failed", zap.Duration("took", time.Since(start)), zap.Error(err))
		return nil, err
	case result.Found():
		uc.metrics.SearchesTotal.WithLabelValues("found").Inc()
	default:
		uc.metrics.SearchesTotal.WithLabelValues("not_found").Inc()
	}
	uc.logger.Info("image search finished",
		zap.String("result_url", result.ResultURL),
		zap.Int("labels", len(result.ExtractedLabels)),
		zap.Duration("took", time.Since(start)),
	)
	return result, nil
}

func (uc *searchUseCase) run(ctx context.Context, image string) (*entity.SearchResult, error) {
	if err := uc.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("wait for a free browser slot: %w", err)
	}
	defer uc.slots.Release(1)

	page, release, err := uc.sessions.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	out, err := uc.pipeline.Run(ctx, page, image)
	if err != nil {
		return nil, err
	}

	links, err := RankCandidateLinks(out.HTML, out.FinalURL, uc.profile)
	if err != nil {
		return nil, fmt.Errorf("rank candidate links: %w", err)
	}
	uc.logger.Info("catalog candidates ranked", zap.Int("count", len(links)))
	if len(links) == 0 {
		return &entity.SearchResult{ResultURL: out.ResultURL, ExtractedLabels: []string{}}, nil
	}

	labels, err := uc.extraction.Run(ctx, page, links)
	if err != nil {
		return nil, err
	}
	return &entity.SearchResult{ResultURL: out.ResultURL, ExtractedLabels: labels}, nil
}

// IsClientError reports whether err was caused by the request rather than the service.
func IsClientError(err error) bool {
	return errors.Is(err, entity.ErrInvalidInput)
}
