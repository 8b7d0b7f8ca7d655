package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/user/lens-lookup-service/internal/entity"
	"github.com/user/lens-lookup-service/internal/repository"
	"github.com/user/lens-lookup-service/pkg/metrics"
)

const (
	injectSettleDelay  = 500 * time.Millisecond
	resultsSettleDelay = 2 * time.Second
)

// PipelineOutput is the state handed from the navigation pipeline to the
// link ranker.
type PipelineOutput struct {
	ResultURL string // results page right after the image query
	FinalURL  string // page the links were read from
	HTML      string
}

// NavigationPipeline drives a page from the search engine home page to the
// keyword-refined image results.
type NavigationPipeline struct {
	profile   entity.SiteProfile
	humanizer *Humanizer
	pacer     Pacer
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

func NewNavigationPipeline(profile entity.SiteProfile, humanizer *Humanizer, pacer Pacer, logger *zap.Logger, m *metrics.Metrics) *NavigationPipeline {
	return &NavigationPipeline{
		profile:   profile,
		humanizer: humanizer,
		pacer:     pacer,
		logger:    logger,
		metrics:   m,
	}
}

// Run executes every step in order. The first failing required step aborts
// the run; the caller owns the page and its cleanup.
func (p *NavigationPipeline) Run(ctx context.Context, page repository.Page, image string) (*PipelineOutput, error) {
	prof := p.profile
	out := &PipelineOutput{}

	if err := p.step(ctx, "open_engine", entity.ErrNavigation, func() error {
		return page.Navigate(ctx, prof.EngineURL, prof.NavigationTimeout)
	}); err != nil {
		return nil, err
	}
	if err := p.humanizer.Simulate(ctx, page); err != nil {
		return nil, err
	}

	p.dismissConsent(ctx, page)

	if err := p.step(ctx, "wait_image_search_trigger", entity.ErrElementNotFound, func() error {
		return page.WaitVisible(ctx, prof.ImageSearchTrigger, prof.ElementTimeout)
	}); err != nil {
		return nil, err
	}
	if err := p.humanizer.Simulate(ctx, page); err != nil {
		return nil, err
	}
	if err := page.Click(ctx, prof.ImageSearchTrigger, prof.ElementTimeout); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// The next wait reports the real failure if the click didn't land.
		p.logger.Debug("image search trigger click failed", zap.Error(err))
	}

	if err := p.step(ctx, "wait_image_input", entity.ErrElementNotFound, func() error {
		return page.WaitVisible(ctx, prof.ImageInput, prof.ElementTimeout)
	}); err != nil {
		return nil, err
	}
	if err := p.humanizer.Simulate(ctx, page); err != nil {
		return nil, err
	}

	if err := p.step(ctx, "inject_image", entity.ErrInputInjection, func() error {
		return page.InjectValue(ctx, prof.ImageInput, image,
			repository.EventInput, repository.EventChange, repository.EventEnterDown, repository.EventEnterUp)
	}); err != nil {
		return nil, err
	}
	if err := p.pacer.Sleep(ctx, injectSettleDelay); err != nil {
		return nil, err
	}

	if err := p.step(ctx, "wait_image_submit", entity.ErrElementNotFound, func() error {
		return page.WaitVisible(ctx, prof.ImageSubmit, prof.ElementTimeout)
	}); err != nil {
		return nil, err
	}
	if err := p.step(ctx, "submit_image", entity.ErrNavigation, func() error {
		return page.ClickAndWaitNavigation(ctx, prof.ImageSubmit, prof.NavigationTimeout)
	}); err != nil {
		return nil, err
	}

	resultURL, err := page.URL(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: read results url: %w", entity.ErrNavigation, err)
	}
	out.ResultURL = resultURL
	p.logger.Info("image results loaded", zap.String("result_url", resultURL))

	if err := p.settle(ctx, page); err != nil {
		return nil, err
	}

	if err := p.step(ctx, "wait_results_search_input", entity.ErrElementNotFound, func() error {
		return page.WaitVisible(ctx, prof.ResultsSearchInput, prof.ElementTimeout)
	}); err != nil {
		return nil, err
	}
	if err := p.step(ctx, "inject_refinement_keyword", entity.ErrInputInjection, func() error {
		return page.InjectValue(ctx, prof.ResultsSearchInput, prof.RefinementKeyword, repository.EventInput)
	}); err != nil {
		return nil, err
	}

	if err := p.step(ctx, "wait_refined_submit", entity.ErrElementNotFound, func() error {
		return page.WaitVisible(ctx, prof.RefinedSearchSubmit, prof.ElementTimeout)
	}); err != nil {
		return nil, err
	}
	if err := p.step(ctx, "submit_refined_search", entity.ErrNavigation, func() error {
		return page.ClickAndWaitNavigation(ctx, prof.RefinedSearchSubmit, prof.NavigationTimeout)
	}); err != nil {
		return nil, err
	}

	if err := p.settle(ctx, page); err != nil {
		return nil, err
	}

	finalURL, err := page.URL(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: read refined results url: %w", entity.ErrNavigation, err)
	}
	html, err := page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: read refined results page: %w", entity.ErrNavigation, err)
	}
	out.FinalURL = finalURL
	out.HTML = html
	return out, nil
}

// step runs a required action, records its duration and tags its error with
// the failure kind and step name.
func (p *NavigationPipeline) step(ctx context.Context, name string, kind error, fn func() error) error {
	start := time.Now()
	err := fn()
	p.metrics.PipelineStepDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("step %s: %w", name, ctxErr)
		}
		p.logger.Warn("pipeline step failed", zap.String("step", name), zap.Error(err))
		return fmt.Errorf("%w: step %s: %w", kind, name, err)
	}
	p.logger.Debug("pipeline step done", zap.String("step", name), zap.Duration("took", time.Since(start)))
	return nil
}

// dismissConsent clicks the cookie banner away when it is shown. Any failure
// is ignored.
func (p *NavigationPipeline) dismissConsent(ctx context.Context, page repository.Page) {
	clicked, err := page.ClickIfDisplayed(ctx, p.profile.ConsentButton)
	if err != nil {
		p.logger.Debug("cookie consent check failed", zap.Error(err))
		return
	}
	if clicked {
		_ = pauseBetween(ctx, p.pacer, 500, 1200)
	}
}

func (p *NavigationPipeline) settle(ctx context.Context, page repository.Page) error {
	if err := p.pacer.Sleep(ctx, resultsSettleDelay); err != nil {
		return err
	}
	return p.humanizer.Simulate(ctx, page)
}
