package clearance

import (
	"context"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/merchplan/internal/domain"
	"github.com/andresuchdata/merchplan/internal/kpi"
	"github.com/andresuchdata/merchplan/pkg/numeric"
)

// OptimalMarkdown computes the recommended markdown percentage for sku.
func (r Rules) OptimalMarkdown(sku domain.SKUSnapshot, urgencyScore, elasticity float64, cfg domain.OptimizationConfig) float64 {
	// 1. Base markdown scales with urgency
	markdown := urgencyScore * r.MarkdownPerUrgency

	// 2. Strategy
	switch cfg.Strategy {
	case domain.StrategyMaximizeRecovery:
		markdown *= r.RecoveryMultiplier
	case domain.StrategyMaximizeSellThrough:
		markdown *= r.SellThroughMultiplier
	}

	// 3. Sell-through adjustment
	if sku.SellThroughRate < r.VerySlowSellThrough {
		markdown += r.VerySlowBoost
	} else if sku.SellThroughRate > r.HealthySellThrough {
		markdown -= r.HealthyReduction
	}

	// 4. Time pressure, first matching band only
	if sku.WeeksToSeasonEnd < r.SeasonEndingWeeks {
		markdown += r.SeasonEndingBoost
	} else if sku.WeeksToSeasonEnd < r.SeasonApproachingWeeks {
		markdown += r.SeasonApproachingBoost
	}

	// 5. Configured cap
	limit := math.Max(0, cfg.MaxMarkdownPct)

	// 6. Margin floor
	if cfg.MinMarginPct > -100 {
		marginRoom := kpi.MarginPct(sku.CurrentPrice, sku.UnitCost) - cfg.MinMarginPct
		limit = math.Min(limit, math.Max(0, marginRoom))
	}

	markdown = numeric.Clamp(markdown, 0, limit)

	// 7. Round, without letting the rounding cross the limit
	rounded := numeric.Round(markdown, 1)
	if rounded > limit {
		rounded = numeric.Truncate(markdown, 1)
	}
	return rounded
}

// DetermineAction walks the decision table and returns the first matching action.
func (r Rules) DetermineAction(sku domain.SKUSnapshot, urgencyScore, markdown float64) domain.ClearanceAction {
	st := sku.SellThroughRate
	switch {
	case sku.CurrentStock < r.HoldMaxStock:
		return domain.ActionHold
	case st < r.DiscontinueMaxSellThrough && markdown > r.DiscontinueMinMarkdown:
		return domain.ActionDiscontinue
	case st >= r.PromoteMinSellThrough && st <= r.PromoteMaxSellThrough && markdown < r.PromoteMaxMarkdown:
		return domain.ActionPromote
	case sku.CurrentStock < r.BundleMaxStock && sku.StockValue > r.BundleMinValue && st < r.BundleMaxSellThrough:
		return domain.ActionBundle
	default:
		return domain.ActionMarkdown
	}
}

// Optimizer turns SKU snapshots into clearance recommendations.
type Optimizer struct {
	rules   Rules
	workers int
}

// OptimizerOption configures an Optimizer.
type OptimizerOption func(*Optimizer)

// WithRules replaces the default scoring model.
func WithRules(rules Rules) OptimizerOption {
	return func(o *Optimizer) { o.rules = rules }
}

// WithWorkers bounds the number of SKUs scored concurrently by OptimizeBatch.
func WithWorkers(n int) OptimizerOption {
	return func(o *Optimizer) {
		if n > 0 {
			o.workers = n
		}
	}
}

// NewOptimizer creates an optimizer using DefaultRules and one worker per CPU.
func NewOptimizer(opts ...OptimizerOption) *Optimizer {
	o := &Optimizer{
		rules:   DefaultRules(),
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Rules returns the scoring model in use.
func (o *Optimizer) Rules() Rules {
	return o.rules
}

// Optimize scores one SKU and builds its recommendation.
func (o *Optimizer) Optimize(sku domain.SKUSnapshot, cfg domain.OptimizationConfig) domain.SKURecommendation {
	r := o.rules

	urgency := r.UrgencyScore(sku)
	level := r.UrgencyLevel(urgency)

	elasticity := r.BaseElasticity
	if cfg.AnalyzeElasticity {
		elasticity = r.EstimateElasticity(sku)
	}

	markdown := r.OptimalMarkdown(sku, urgency, elasticity, cfg)
	action := r.DetermineAction(sku, urgency, markdown)
	projection := r.ProjectSales(sku, markdown, elasticity, math.Max(sku.WeeksToSeasonEnd, 1))

	return domain.SKURecommendation{
		SKUCode:         sku.SKUCode,
		ProductName:     sku.ProductName,
		CurrentStock:    sku.CurrentStock,
		CurrentPrice:    sku.CurrentPrice,
		UrgencyScore:    urgency,
		UrgencyLevel:    level,
		Elasticity:      elasticity,
		Action:          action,
		MarkdownPct:     markdown,
		SalesProjection: projection,
		Reasoning:       buildReasoning(sku, level, action, markdown),
	}
}

// OptimizeBatch scores every SKU in parallel. Results are ordered by urgency score descending,
// then SKU code ascending. It stops early and returns the context error when ctx is cancelled.
func (o *Optimizer) OptimizeBatch(ctx context.Context, skus []domain.SKUSnapshot, cfg domain.OptimizationConfig) ([]domain.SKURecommendation, error) {
	recs := make([]domain.SKURecommendation, len(skus))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for i := range skus {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			recs[i] = o.Optimize(skus[i], cfg)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	SortByUrgency(recs)
	return recs, nil
}

// SortByUrgency orders recommendations by urgency score descending, then SKU code.
func SortByUrgency(recs []domain.SKURecommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].UrgencyScore != recs[j].UrgencyScore {
			return recs[i].UrgencyScore > recs[j].UrgencyScore
		}
		return recs[i].SKUCode < recs[j].SKUCode
	})
}
