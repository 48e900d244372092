package service

import (
	"context"
	"math"

	"github.com/okian/gridelo/internal/domain/rating"
	"github.com/okian/gridelo/pkg/logger"
	"github.com/okian/gridelo/pkg/metrics"
)

// diagnostics turns engine events into structured log records and metrics.
type diagnostics struct {
	log       logger.Logger
	component string
}

func (d diagnostics) Observe(ctx context.Context, ev rating.Event) {
	fields := []logger.Field{
		logger.String("kind", string(ev.Kind)),
		logger.String("run_id", ev.RunID),
	}
	if ev.Ref.ID != "" || ev.Ref.Period != 0 {
		fields = append(fields,
			logger.String("match", ev.Ref.ID),
			logger.Int("period", ev.Ref.Period),
			logger.Int("sub_period", ev.Ref.SubPeriod),
		)
	}
	if ev.Competitor != "" {
		fields = append(fields, logger.String("competitor", ev.Competitor))
	}
	if ev.Opponent != "" {
		fields = append(fields, logger.String("opponent", ev.Opponent))
	}
	if ev.Detail != "" {
		fields = append(fields, logger.String("detail", ev.Detail))
	}

	switch ev.Kind {
	case rating.KindGame:
		metrics.RecordGameProcessed(math.Abs(ev.Value))
		d.log.Debug(ctx, "rating updated", append(fields, logger.Float64("delta", ev.Value))...)
	case rating.KindRegression:
		metrics.RecordRegression()
		d.log.Debug(ctx, "rating regressed", append(fields,
			logger.Float64("before", ev.Raw), logger.Float64("after", ev.Value))...)
	case rating.KindClamp:
		metrics.RecordProbabilityClamp()
		d.log.Info(ctx, "win probability clamped", append(fields,
			logger.Float64("raw", ev.Raw), logger.Float64("clamped", ev.Value))...)
	case rating.KindCap:
		metrics.RecordSwingCap()
		d.log.Info(ctx, "rating swing capped", append(fields,
			logger.Float64("raw", ev.Raw), logger.Float64("capped", ev.Value))...)
	case rating.KindValidation:
		metrics.RecordValidationError(d.component)
		d.log.Warn(ctx, "invalid input", append(fields, logger.Error(ev.Err))...)
	case rating.KindLookupMiss:
		metrics.RecordLookupMiss(d.component)
		d.log.Warn(ctx, "matchup skipped", append(fields, logger.Error(ev.Err))...)
	case rating.KindDuplicate:
		metrics.RecordDuplicateUpdate()
		d.log.Warn(ctx, "result already applied", append(fields, logger.Error(ev.Err))...)
	case rating.KindDegenerate:
		metrics.RecordDegenerateFeature(ev.Detail)
		d.log.Error(ctx, "feature has no variance", append(fields, logger.Error(ev.Err))...)
	case rating.KindZeroIdentity:
		d.log.Info(ctx, "identity ratio undefined, treated as balanced", fields...)
	default:
		d.log.Debug(ctx, "engine event", fields...)
	}
}
