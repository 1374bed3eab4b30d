package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/infrastructure/postgres/generated"
	"github.com/iho/coinledger/internal/usecase"
)

// BatchJobRepository implements usecase.BatchJobRepository.
type BatchJobRepository struct {
	queries *generated.Queries
}

// NewBatchJobRepository creates a new BatchJobRepository.
func NewBatchJobRepository(db generated.DBTX) *BatchJobRepository {
	return &BatchJobRepository{queries: generated.New(db)}
}

// Create inserts a job within a transaction.
func (r *BatchJobRepository) Create(ctx context.Context, tx usecase.Transaction, job *domain.BatchJob) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	return queries.CreateBatchJob(ctx, generated.CreateBatchJobParams{
		ID:          job.ID,
		Kind:        string(job.Kind),
		Amount:      decimalToNumeric(job.Amount),
		Status:      string(job.Status),
		Cursor:      job.Cursor,
		Processed:   int32(job.Processed),
		Succeeded:   int32(job.Succeeded),
		Failed:      int32(job.Failed),
		Skipped:     int32(job.Skipped),
		LastError:   job.LastError,
		CreatedBy:   job.CreatedBy,
		CreatedAt:   timeToPgTimestamptz(job.CreatedAt),
		UpdatedAt:   timeToPgTimestamptz(job.UpdatedAt),
		CompletedAt: optionalTimestamptz(job.CompletedAt),
	})
}

// GetByID retrieves a job by ID.
func (r *BatchJobRepository) GetByID(ctx context.Context, id string) (*domain.BatchJob, error) {
	row, err := r.queries.GetBatchJobByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBatchJobNotFound
		}

		return nil, err
	}

	return rowToBatchJob(row), nil
}

// Update checkpoints a job outside any item transaction.
func (r *BatchJobRepository) Update(ctx context.Context, job *domain.BatchJob) error {
	affected, err := r.queries.UpdateBatchJob(ctx, generated.UpdateBatchJobParams{
		ID:          job.ID,
		Status:      string(job.Status),
		Cursor:      job.Cursor,
		Processed:   int32(job.Processed),
		Succeeded:   int32(job.Succeeded),
		Failed:      int32(job.Failed),
		Skipped:     int32(job.Skipped),
		LastError:   job.LastError,
		UpdatedAt:   timeToPgTimestamptz(job.UpdatedAt),
		CompletedAt: optionalTimestamptz(job.CompletedAt),
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrBatchJobNotFound
	}

	return nil
}

// List lists jobs, newest first.
func (r *BatchJobRepository) List(ctx context.Context, limit, offset int) ([]*domain.BatchJob, error) {
	rows, err := r.queries.ListBatchJobs(ctx, generated.ListBatchJobsParams{
		Limit:  rowLimit(limit),
		Offset: rowOffset(offset),
	})
	if err != nil {
		return nil, err
	}

	jobs := make([]*domain.BatchJob, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, rowToBatchJob(row))
	}

	return jobs, nil
}

// RecordItem stores the item outcome. A second record for the same target
// is ignored and reported as false.
func (r *BatchJobRepository) RecordItem(ctx context.Context, tx usecase.Transaction, item *domain.BatchItem) (bool, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	affected, err := queries.CreateBatchItem(ctx, generated.CreateBatchItemParams{
		JobID:     item.JobID,
		TargetID:  item.TargetID,
		Outcome:   string(item.Outcome),
		Error:     item.Error,
		CreatedAt: timeToPgTimestamptz(item.CreatedAt),
	})
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

// HasItem reports whether the target was already handled by the job.
func (r *BatchJobRepository) HasItem(ctx context.Context, tx usecase.Transaction, jobID, targetID string) (bool, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	return queries.HasBatchItem(ctx, generated.HasBatchItemParams{JobID: jobID, TargetID: targetID})
}

// CountItems tallies item outcomes for a job.
func (r *BatchJobRepository) CountItems(ctx context.Context, jobID string) (map[domain.BatchOutcome]int, error) {
	rows, err := r.queries.CountBatchItems(ctx, jobID)
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.BatchOutcome]int, len(rows))
	for _, row := range rows {
		counts[domain.BatchOutcome(row.Outcome)] = int(row.Total)
	}

	return counts, nil
}

// ListItems pages a job's items by target ID.
func (r *BatchJobRepository) ListItems(ctx context.Context, jobID string, limit, offset int) ([]*domain.BatchItem, error) {
	rows, err := r.queries.ListBatchItems(ctx, generated.ListBatchItemsParams{
		JobID:  jobID,
		Limit:  rowLimit(limit),
		Offset: rowOffset(offset),
	})
	if err != nil {
		return nil, err
	}

	items := make([]*domain.BatchItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, &domain.BatchItem{
			JobID:     row.JobID,
			TargetID:  row.TargetID,
			Outcome:   domain.BatchOutcome(row.Outcome),
			Error:     row.Error,
			CreatedAt: row.CreatedAt.Time,
		})
	}

	return items, nil
}

func rowToBatchJob(row generated.BatchJob) *domain.BatchJob {
	return &domain.BatchJob{
		ID:          row.ID,
		Kind:        domain.BatchKind(row.Kind),
		Amount:      numericToDecimal(row.Amount),
		Status:      domain.BatchStatus(row.Status),
		Cursor:      row.Cursor,
		Processed:   int(row.Processed),
		Succeeded:   int(row.Succeeded),
		Failed:      int(row.Failed),
		Skipped:     int(row.Skipped),
		LastError:   row.LastError,
		CreatedBy:   row.CreatedBy,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
		CompletedAt: pgTimestamptzToPtr(row.CompletedAt),
	}
}
