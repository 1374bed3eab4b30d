package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/infrastructure/postgres/generated"
	"github.com/iho/coinledger/internal/usecase"
)

// MessageRepository implements usecase.MessageRepository.
type MessageRepository struct {
	queries *generated.Queries
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(db generated.DBTX) *MessageRepository {
	return &MessageRepository{queries: generated.New(db)}
}

// Create stores a message within a transaction.
func (r *MessageRepository) Create(ctx context.Context, tx usecase.Transaction, message *domain.SupportMessage) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	return queries.CreateSupportMessage(ctx, generated.CreateSupportMessageParams{
		ID:        message.ID,
		UserID:    message.UserID,
		UserEmail: message.UserEmail,
		Sender:    string(message.Sender),
		Text:      message.Text,
		CreatedAt: timeToPgTimestamptz(message.CreatedAt),
	})
}

// GetByID retrieves a message by ID.
func (r *MessageRepository) GetByID(ctx context.Context, id string) (*domain.SupportMessage, error) {
	row, err := r.queries.GetSupportMessageByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}

		return nil, err
	}

	return rowToMessage(row), nil
}

// ListByUser returns one conversation, oldest first.
func (r *MessageRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.SupportMessage, error) {
	rows, err := r.queries.ListSupportMessagesByUser(ctx, generated.ListSupportMessagesByUserParams{
		UserID: userID,
		Limit:  rowLimit(limit),
		Offset: rowOffset(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToMessages(rows), nil
}

// List returns messages across all users, newest first.
func (r *MessageRepository) List(ctx context.Context, limit, offset int) ([]*domain.SupportMessage, error) {
	rows, err := r.queries.ListSupportMessages(ctx, generated.ListSupportMessagesParams{
		Limit:  rowLimit(limit),
		Offset: rowOffset(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToMessages(rows), nil
}

// Delete removes a message.
func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	affected, err := r.queries.DeleteSupportMessage(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrMessageNotFound
	}

	return nil
}

func rowsToMessages(rows []generated.SupportMessage) []*domain.SupportMessage {
	messages := make([]*domain.SupportMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, rowToMessage(row))
	}
	return messages
}

func rowToMessage(row generated.SupportMessage) *domain.SupportMessage {
	return &domain.SupportMessage{
		ID:        row.ID,
		UserID:    row.UserID,
		UserEmail: row.UserEmail,
		Sender:    domain.Sender(row.Sender),
		Text:      row.Text,
		CreatedAt: row.CreatedAt.Time,
	}
}
