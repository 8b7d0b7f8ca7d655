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

const candidateSettleDelay = time.Second

// LabelOutcome is the result of visiting one candidate link.
type LabelOutcome struct {
	Link  entity.CandidateLink
	Label string
	Err   error
}

// CollectLabels keeps the non-empty labels of successful outcomes, in order,
// without duplicates.
func CollectLabels(outcomes []LabelOutcome) []string {
	labels := make([]string, 0, len(outcomes))
	seen := make(map[string]struct{}, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil || o.Label == "" {
			continue
		}
		if _, dup := seen[o.Label]; dup {
			continue
		}
		seen[o.Label] = struct{}{}
		labels = append(labels, o.Label)
	}
	return labels
}

// ExtractionLoop visits ranked candidates one by one and turns their page
// titles into labels.
type ExtractionLoop struct {
	profile entity.SiteProfile
	pacer   Pacer
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewExtractionLoop(profile entity.SiteProfile, pacer Pacer, logger *zap.Logger, m *metrics.Metrics) *ExtractionLoop {
	return &ExtractionLoop{profile: profile, pacer: pacer, logger: logger, metrics: m}
}

// Run never fails because of a single candidate; such failures are logged
// and skipped. Only a cancelled context aborts the loop.
func (l *ExtractionLoop) Run(ctx context.Context, page repository.Page, candidates []entity.CandidateLink) ([]string, error) {
	if len(candidates) > l.profile.MaxCandidates && l.profile.MaxCandidates > 0 {
		candidates = candidates[:l.profile.MaxCandidates]
	}

	outcomes := make([]LabelOutcome, 0, len(candidates))
	for i, link := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		label, reason, err := l.extract(ctx, page, link)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			l.logger.Warn("skipping candidate link",
				zap.Int("position", i+1),
				zap.String("url", link.URL),
				zap.String("reason", reason),
				zap.Error(err),
			)
			l.metrics.ExtractionSkipped.WithLabelValues(reason).Inc()
		}
		outcomes = append(outcomes, LabelOutcome{Link: link, Label: label, Err: err})
	}

	labels := CollectLabels(outcomes)
	l.logger.Info("extracted labels", zap.Int("candidates", len(candidates)), zap.Strings("labels", labels))
	return labels, nil
}

func (l *ExtractionLoop) extract(ctx context.Context, page repository.Page, link entity.CandidateLink) (label, reason string, err error) {
	if err := page.Navigate(ctx, link.URL, l.profile.CandidateTimeout); err != nil {
		return "", "navigation", fmt.Errorf("open candidate: %w", err)
	}
	if err := l.pacer.Sleep(ctx, candidateSettleDelay); err != nil {
		return "", "cancelled", err
	}
	title, err := page.Title(ctx)
	if err != nil {
		return "", "title", fmt.Errorf("read title: %w", err)
	}
	return FormatExtractedText(TrimTitleSuffix(title, l.profile.TitleSuffix)), "", nil
}
