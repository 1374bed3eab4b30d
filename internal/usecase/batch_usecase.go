package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/infrastructure/metrics"
)

var errItemAlreadyRecorded = errors.New("batch item already recorded")

// BatchConfig tunes how batch jobs walk their targets.
type BatchConfig struct {
	PageSize    int
	Concurrency int
}

// BatchUseCase runs bulk operations as resumable jobs. Targets are visited
// in ascending id order one page at a time; every item is applied in its own
// transaction together with its batch_items row, and the cursor is
// checkpointed after each page.
type BatchUseCase struct {
	jobRepo     BatchJobRepository
	accountRepo AccountRepository
	eventRepo   LedgerEventRepository
	ledger      *LedgerUseCase
	cfg         BatchConfig
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

// NewBatchUseCase creates a new BatchUseCase.
func NewBatchUseCase(
	jobRepo BatchJobRepository,
	accountRepo AccountRepository,
	eventRepo LedgerEventRepository,
	ledger *LedgerUseCase,
	cfg BatchConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *BatchUseCase {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultBatchPageSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultBatchConcurrency
	}

	return &BatchUseCase{
		jobRepo:     jobRepo,
		accountRepo: accountRepo,
		eventRepo:   eventRepo,
		ledger:      ledger,
		cfg:         cfg,
		logger:      logger.With().Str("component", "batch").Logger(),
		metrics:     m,
	}
}

// StartJobInput represents input for starting a batch job.
type StartJobInput struct {
	Kind    domain.BatchKind
	Amount  decimal.Decimal
	Confirm bool
}

// StartJob creates a job and runs it to the end. When some items failed the
// finished job is returned together with a *domain.PartialFailureError.
func (uc *BatchUseCase) StartJob(ctx context.Context, input StartJobInput) (*domain.BatchJob, error) {
	kind, err := domain.ParseBatchKind(string(input.Kind))
	if err != nil {
		return nil, err
	}
	if !input.Confirm {
		return nil, domain.ErrConfirmationRequired
	}
	if kind.NeedsAmount() {
		if input.Amount.IsZero() {
			return nil, fmt.Errorf("%w: %s needs a non-zero amount", domain.ErrInvalidAmount, kind)
		}
		if err := domain.ValidateAmount(input.Amount); err != nil {
			return nil, err
		}
	}

	now := uc.ledger.now()
	job := &domain.BatchJob{
		ID:        uc.ledger.idGen.Generate(),
		Kind:      kind,
		Amount:    input.Amount,
		Status:    domain.BatchStatusRunning,
		CreatedBy: domain.ActorID(ctx),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = runInTx(ctx, uc.ledger.txManager, nil, func(ctx context.Context, tx Transaction) error {
		if err := uc.jobRepo.Create(ctx, tx, job); err != nil {
			return err
		}
		return uc.ledger.audit.record(ctx, tx, domain.AuditActionBatchStart, domain.AggregateTypeBatchJob, job.ID, nil, job)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("job_id", job.ID).
		Str("kind", string(job.Kind)).
		Str("amount", job.Amount.String()).
		Msg("batch job started")

	return uc.run(ctx, job)
}

// ResumeJob continues a running or failed job from its last checkpoint.
// Targets recorded after the checkpoint are skipped, not applied again.
func (uc *BatchUseCase) ResumeJob(ctx context.Context, id string) (*domain.BatchJob, error) {
	job, err := uc.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !job.Resumable() {
		return nil, fmt.Errorf("%w: job %s is %s", domain.ErrBatchJobNotResumable, job.ID, job.Status)
	}

	counts, err := uc.jobRepo.CountItems(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	job.Succeeded = counts[domain.BatchOutcomeSucceeded]
	job.Failed = counts[domain.BatchOutcomeFailed]
	job.Skipped = counts[domain.BatchOutcomeSkipped]
	job.Processed = job.Succeeded + job.Failed + job.Skipped
	job.Status = domain.BatchStatusRunning
	job.LastError = ""
	job.UpdatedAt = uc.ledger.now()

	if err := uc.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}

	err = runInTx(ctx, uc.ledger.txManager, nil, func(ctx context.Context, tx Transaction) error {
		return uc.ledger.audit.record(ctx, tx, domain.AuditActionBatchResume, domain.AggregateTypeBatchJob, job.ID, nil, job)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info().Str("job_id", job.ID).Str("cursor", job.Cursor).Msg("batch job resumed")

	return uc.run(ctx, job)
}

// GetJob retrieves a batch job by ID.
func (uc *BatchUseCase) GetJob(ctx context.Context, id string) (*domain.BatchJob, error) {
	return uc.jobRepo.GetByID(ctx, id)
}

// ListJobs lists batch jobs, newest first.
func (uc *BatchUseCase) ListJobs(ctx context.Context, limit, offset int) ([]*domain.BatchJob, error) {
	limit, offset, err := domain.ValidatePagination(limit, offset)
	if err != nil {
		return nil, err
	}
	return uc.jobRepo.List(ctx, limit, offset)
}

// ListItems lists the per-target outcomes of a job.
func (uc *BatchUseCase) ListItems(ctx context.Context, jobID string, limit, offset int) ([]*domain.BatchItem, error) {
	if _, err := uc.jobRepo.GetByID(ctx, jobID); err != nil {
		return nil, err
	}

	limit, offset, err := domain.ValidatePagination(limit, offset)
	if err != nil {
		return nil, err
	}
	return uc.jobRepo.ListItems(ctx, jobID, limit, offset)
}

// PurgeLedger deletes every ledger event and returns how many were removed.
func (uc *BatchUseCase) PurgeLedger(ctx context.Context, confirm bool) (int64, error) {
	if !confirm {
		return 0, domain.ErrConfirmationRequired
	}

	var deleted int64
	err := runInTx(ctx, uc.ledger.txManager, uc.ledger.retrier, func(ctx context.Context, tx Transaction) error {
		var err error
		deleted, err = uc.eventRepo.DeleteAll(ctx, tx)
		if err != nil {
			return err
		}

		now := uc.ledger.now()
		payload := map[string]any{"deleted": deleted}
		if err := uc.ledger.outbox.emit(ctx, tx, domain.AggregateTypeLedgerEvent, "*",
			domain.EventTypeLedgerPurged, "", payload, now); err != nil {
			return err
		}

		return uc.ledger.audit.record(ctx, tx, domain.AuditActionLedgerPurge, domain.AggregateTypeLedgerEvent, "*", nil, payload)
	})
	if err != nil {
		return 0, err
	}

	uc.logger.Warn().Int64("deleted", deleted).Str("actor", domain.ActorID(ctx)).Msg("ledger purged")

	return deleted, nil
}

type itemResult struct {
	outcome  domain.BatchOutcome
	err      error
	recorded bool
}

func (uc *BatchUseCase) run(ctx context.Context, job *domain.BatchJob) (*domain.BatchJob, error) {
	start := time.Now()

	for {
		ids, err := uc.listTargets(ctx, job)
		if err != nil {
			return job, uc.fail(ctx, job, err)
		}
		if len(ids) == 0 {
			break
		}

		results := make([]itemResult, len(ids))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(uc.cfg.Concurrency)
		for i, id := range ids {
			g.Go(func() error {
				results[i] = uc.applyItem(gctx, job, id)
				return nil
			})
		}
		_ = g.Wait()

		for i, res := range results {
			if !res.recorded {
				continue
			}
			job.Record(res.outcome)
			if res.outcome == domain.BatchOutcomeFailed {
				job.LastError = fmt.Sprintf("%s: %v", ids[i], res.err)
			}
			if uc.metrics != nil {
				uc.metrics.BatchItems.WithLabelValues(string(job.Kind), string(res.outcome)).Inc()
			}
		}

		if err := ctx.Err(); err != nil {
			return job, uc.fail(ctx, job, err)
		}

		job.Cursor = ids[len(ids)-1]
		job.UpdatedAt = uc.ledger.now()
		if err := uc.jobRepo.Update(ctx, job); err != nil {
			return job, uc.fail(ctx, job, err)
		}

		if len(ids) < uc.cfg.PageSize {
			break
		}
	}

	job.Finish(uc.ledger.now())
	if err := uc.jobRepo.Update(ctx, job); err != nil {
		return job, uc.fail(ctx, job, err)
	}

	uc.publishFinished(ctx, job)

	if uc.metrics != nil {
		uc.metrics.BatchJobs.WithLabelValues(string(job.Kind), string(job.Status)).Inc()
		uc.metrics.BatchDuration.WithLabelValues(string(job.Kind)).Observe(time.Since(start).Seconds())
	}

	uc.logger.Info().
		Str("job_id", job.ID).
		Str("status", string(job.Status)).
		Int("processed", job.Processed).
		Int("succeeded", job.Succeeded).
		Int("failed", job.Failed).
		Int("skipped", job.Skipped).
		Msg("batch job finished")

	if job.Status == domain.BatchStatusPartial {
		return job, &domain.PartialFailureError{Job: job}
	}
	return job, nil
}

func (uc *BatchUseCase) listTargets(ctx context.Context, job *domain.BatchJob) ([]string, error) {
	switch job.Kind {
	case domain.BatchKindBulkApprove, domain.BatchKindBulkReject:
		return uc.eventRepo.ListPendingIDsAfter(ctx, job.Cursor, uc.cfg.PageSize)
	case domain.BatchKindResetTest:
		return uc.accountRepo.ListIDsAfter(ctx, job.Cursor, true, uc.cfg.PageSize)
	default:
		return uc.accountRepo.ListIDsAfter(ctx, job.Cursor, false, uc.cfg.PageSize)
	}
}

// applyItem applies the job to one target. A failed mutation is rolled back
// and its failure is recorded in a second transaction.
func (uc *BatchUseCase) applyItem(ctx context.Context, job *domain.BatchJob, targetID string) itemResult {
	var outcome domain.BatchOutcome

	err := runInTx(ctx, uc.ledger.txManager, uc.ledger.retrier, func(ctx context.Context, tx Transaction) error {
		done, err := uc.jobRepo.HasItem(ctx, tx, job.ID, targetID)
		if err != nil {
			return err
		}
		if done {
			return errItemAlreadyRecorded
		}

		outcome, err = uc.applyTarget(ctx, tx, job, targetID)
		if err != nil {
			return err
		}

		return uc.recordItem(ctx, tx, job.ID, targetID, outcome, nil)
	})
	if err == nil {
		return itemResult{outcome: outcome, recorded: true}
	}
	if errors.Is(err, errItemAlreadyRecorded) {
		return itemResult{}
	}

	outcome = domain.BatchOutcomeFailed
	if isSkippable(err) {
		outcome = domain.BatchOutcomeSkipped
	}

	recordErr := runInTx(ctx, uc.ledger.txManager, uc.ledger.retrier, func(ctx context.Context, tx Transaction) error {
		return uc.recordItem(ctx, tx, job.ID, targetID, outcome, err)
	})
	if recordErr != nil && !errors.Is(recordErr, errItemAlreadyRecorded) {
		uc.logger.Error().Err(recordErr).Str("job_id", job.ID).Str("target_id", targetID).Msg("failed to record batch item")
	}
	if errors.Is(recordErr, errItemAlreadyRecorded) {
		return itemResult{}
	}

	if outcome == domain.BatchOutcomeFailed {
		uc.logger.Warn().Err(err).Str("job_id", job.ID).Str("target_id", targetID).Msg("batch item failed")
	}

	return itemResult{outcome: outcome, err: err, recorded: true}
}

func (uc *BatchUseCase) applyTarget(ctx context.Context, tx Transaction, job *domain.BatchJob, targetID string) (domain.BatchOutcome, error) {
	var (
		changed = true
		err     error
	)

	switch job.Kind {
	case domain.BatchKindGlobalProfit:
		_, err = uc.ledger.adjustTx(ctx, tx, targetID, job.Amount, domain.EventKindProfit)
	case domain.BatchKindGlobalFee:
		_, err = uc.ledger.feeTx(ctx, tx, targetID, job.Amount)
	case domain.BatchKindResetTest:
		_, changed, err = uc.ledger.resetTx(ctx, tx, targetID, true)
	case domain.BatchKindResetAll:
		_, changed, err = uc.ledger.resetTx(ctx, tx, targetID, false)
	case domain.BatchKindBulkApprove:
		_, err = uc.ledger.approveTx(ctx, tx, targetID)
	case domain.BatchKindBulkReject:
		_, changed, err = uc.ledger.rejectTx(ctx, tx, targetID)
	default:
		err = fmt.Errorf("%w: %q", domain.ErrUnsupportedBatchKind, job.Kind)
	}

	if err != nil {
		return "", err
	}
	if !changed {
		return domain.BatchOutcomeSkipped, nil
	}
	return domain.BatchOutcomeSucceeded, nil
}

func (uc *BatchUseCase) recordItem(ctx context.Context, tx Transaction, jobID, targetID string, outcome domain.BatchOutcome, cause error) error {
	item := &domain.BatchItem{
		JobID:     jobID,
		TargetID:  targetID,
		Outcome:   outcome,
		CreatedAt: uc.ledger.now(),
	}
	if cause != nil {
		item.Error = cause.Error()
	}

	inserted, err := uc.jobRepo.RecordItem(ctx, tx, item)
	if err != nil {
		return err
	}
	if !inserted {
		return errItemAlreadyRecorded
	}
	return nil
}

// fail marks the job failed at its last checkpoint so it can be resumed.
func (uc *BatchUseCase) fail(ctx context.Context, job *domain.BatchJob, cause error) error {
	ctx = context.WithoutCancel(ctx)

	job.Status = domain.BatchStatusFailed
	job.LastError = cause.Error()
	job.UpdatedAt = uc.ledger.now()

	if err := uc.jobRepo.Update(ctx, job); err != nil {
		uc.logger.Error().Err(err).Str("job_id", job.ID).Msg("failed to checkpoint failed batch job")
	}

	if uc.metrics != nil {
		uc.metrics.BatchJobs.WithLabelValues(string(job.Kind), string(job.Status)).Inc()
	}

	uc.logger.Error().Err(cause).Str("job_id", job.ID).Str("cursor", job.Cursor).Msg("batch job failed")

	return fmt.Errorf("batch job %s failed: %w", job.ID, cause)
}

func (uc *BatchUseCase) publishFinished(ctx context.Context, job *domain.BatchJob) {
	payload := map[string]any{
		"job_id":    job.ID,
		"kind":      string(job.Kind),
		"status":    string(job.Status),
		"processed": job.Processed,
		"succeeded": job.Succeeded,
		"failed":    job.Failed,
		"skipped":   job.Skipped,
	}

	err := runInTx(ctx, uc.ledger.txManager, nil, func(ctx context.Context, tx Transaction) error {
		return uc.ledger.outbox.emit(ctx, tx, domain.AggregateTypeBatchJob, job.ID,
			domain.EventTypeBatchJobFinished, "", payload, uc.ledger.now())
	})
	if err != nil {
		uc.logger.Warn().Err(err).Str("job_id", job.ID).Msg("failed to publish batch job result")
	}
}
