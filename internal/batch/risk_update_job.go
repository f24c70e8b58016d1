package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"loan-origination/internal/domain/application"
	"loan-origination/internal/pkg/apperrors"
)

// RiskUpdateJob recomputes the risk category of every application that is
// still in the review pipeline. It runs nightly; a category change on an
// application that was concurrently edited is skipped and picked up on the
// next run.
type RiskUpdateJob struct {
	repo   application.Repository
	logger *slog.Logger
}

func NewRiskUpdateJob(repo application.Repository, logger *slog.Logger) *RiskUpdateJob {
	if repo == nil || logger == nil {
		panic("RiskUpdateJob dependencies cannot be nil")
	}
	return &RiskUpdateJob{
		repo:   repo,
		logger: logger.With("job", "RiskUpdate"),
	}
}

func (j *RiskUpdateJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting nightly risk category update job.")

	pending := make([]*application.Application, 0)
	for _, status := range []application.Status{application.StatusSubmitted, application.StatusUnderReview} {
		apps, err := j.repo.List(ctx, application.ListFilter{Status: status, Limit: 1000})
		if err != nil {
			j.logger.ErrorContext(ctx, "Failed to list applications, aborting job.", slog.Any("error", err))
			return fmt.Errorf("cannot run job, failed to list applications: %w", err)
		}
		pending = append(pending, apps...)
	}
	j.logger.InfoContext(ctx, "Fetched applications for risk refresh.", slog.Int("count", len(pending)))

	if len(pending) == 0 {
		j.logger.InfoContext(ctx, "No pending applications to process.", slog.Duration("duration", time.Since(startTime)))
		return nil
	}

	var wg sync.WaitGroup
	var updatedCount, skippedCount, errorCount int32

	for _, app := range pending {
		wg.Add(1)
		go func(app *application.Application) {
			defer wg.Done()

			logCtx := j.logger.With(slog.String("applicationID", app.ID))

			newCategory := ClassifyRisk(app)
			if app.RiskCategory != nil && *app.RiskCategory == newCategory {
				logCtx.DebugContext(ctx, "Risk category already correct.", slog.String("category", string(newCategory)))
				return
			}

			app.RiskCategory = &newCategory
			app.UpdatedAt = time.Now()
			_, err := j.repo.Update(ctx, app, app.Version)
			if err != nil {
				if errors.Is(err, apperrors.ErrVersionConflict) || errors.Is(err, apperrors.ErrNotFound) {
					logCtx.WarnContext(ctx, "Application changed during risk refresh, skipping.", slog.Any("error", err))
					atomic.AddInt32(&skippedCount, 1)
				} else {
					logCtx.ErrorContext(ctx, "Failed to update risk category", slog.Any("error", err))
					atomic.AddInt32(&errorCount, 1)
				}
				return
			}

			logCtx.InfoContext(ctx, "Risk category updated.", slog.String("category", string(newCategory)))
			atomic.AddInt32(&updatedCount, 1)
		}(app)
	}

	wg.Wait()
	duration := time.Since(startTime)
	j.logger.InfoContext(ctx, "Risk category update job finished.",
		slog.Duration("duration", duration),
		slog.Int("applications_checked", len(pending)),
		slog.Int("categories_updated", int(atomic.LoadInt32(&updatedCount))),
		slog.Int("applications_skipped", int(atomic.LoadInt32(&skippedCount))),
		slog.Int("errors_encountered", int(atomic.LoadInt32(&errorCount))),
	)

	if errorCount > 0 {
		return fmt.Errorf("risk update job completed with %d errors", errorCount)
	}
	return nil
}

// ClassifyRisk buckets an application by its debt-to-income ratio and credit
// score. A missing credit score falls back to the ratio alone.
func ClassifyRisk(app *application.Application) application.RiskCategory {
	dti := application.DebtToIncome(app.LoanAmount, app.LoanTenureMonths, app.MonthlyIncome)
	if app.DebtToIncomeRatio != nil {
		dti = *app.DebtToIncomeRatio
	}

	if app.CreditScore != nil {
		switch {
		case *app.CreditScore < 550 || dti > 80:
			return application.RiskHigh
		case *app.CreditScore >= 700 && dti < 40:
			return application.RiskLow
		default:
			return application.RiskMedium
		}
	}

	switch {
	case dti > 80:
		return application.RiskHigh
	case dti < 40:
		return application.RiskLow
	default:
		return application.RiskMedium
	}
}
