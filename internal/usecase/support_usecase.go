package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/iho/coinledger/internal/domain"
)

// SupportUseCase handles the support chat between users and admins.
type SupportUseCase struct {
	txManager   TransactionManager
	messageRepo MessageRepository
	accountRepo AccountRepository
	outbox      outboxWriter
	idGen       IDGenerator
}

// NewSupportUseCase creates a new SupportUseCase.
func NewSupportUseCase(
	txManager TransactionManager,
	messageRepo MessageRepository,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
) *SupportUseCase {
	return &SupportUseCase{
		txManager:   txManager,
		messageRepo: messageRepo,
		accountRepo: accountRepo,
		outbox:      outboxWriter{repo: outboxRepo, idGen: idGen},
		idGen:       idGen,
	}
}

// Send posts a message from the user to support.
func (uc *SupportUseCase) Send(ctx context.Context, userID, text string) (*domain.SupportMessage, error) {
	if err := checkOwner(ctx, userID); err != nil {
		return nil, err
	}
	return uc.post(ctx, userID, domain.SenderUser, text)
}

// Reply posts an admin message into a user's conversation.
func (uc *SupportUseCase) Reply(ctx context.Context, userID, text string) (*domain.SupportMessage, error) {
	if err := domain.ValidateID(userID); err != nil {
		return nil, err
	}
	return uc.post(ctx, userID, domain.SenderAdmin, text)
}

// ListConversation returns one user's messages, oldest first.
func (uc *SupportUseCase) ListConversation(ctx context.Context, userID string, limit, offset int) ([]*domain.SupportMessage, error) {
	if err := checkOwner(ctx, userID); err != nil {
		return nil, err
	}

	limit, offset, err := domain.ValidatePagination(limit, offset)
	if err != nil {
		return nil, err
	}
	return uc.messageRepo.ListByUser(ctx, userID, limit, offset)
}

// ListAll returns messages across all users, newest first.
func (uc *SupportUseCase) ListAll(ctx context.Context, limit, offset int) ([]*domain.SupportMessage, error) {
	limit, offset, err := domain.ValidatePagination(limit, offset)
	if err != nil {
		return nil, err
	}
	return uc.messageRepo.List(ctx, limit, offset)
}

// Delete removes a message.
func (uc *SupportUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.messageRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return uc.messageRepo.Delete(ctx, id)
}

func (uc *SupportUseCase) post(ctx context.Context, userID string, sender domain.Sender, text string) (*domain.SupportMessage, error) {
	message := &domain.SupportMessage{
		UserID:    userID,
		Sender:    sender,
		Text:      strings.TrimSpace(text),
		CreatedAt: time.Now().UTC(),
	}
	if err := message.Validate(); err != nil {
		return nil, err
	}

	if account, err := uc.accountRepo.GetByID(ctx, userID); err == nil {
		message.UserEmail = account.Email
	}

	err := runInTx(ctx, uc.txManager, nil, func(ctx context.Context, tx Transaction) error {
		message.ID = uc.idGen.Generate()
		if err := uc.messageRepo.Create(ctx, tx, message); err != nil {
			return err
		}

		payload := map[string]any{
			"message_id": message.ID,
			"user_id":    message.UserID,
			"sender":     string(message.Sender),
			"text":       message.Text,
		}
		return uc.outbox.emit(ctx, tx, domain.AggregateTypeMessage, message.ID,
			domain.EventTypeMessageCreated, message.UserID, payload, message.CreatedAt)
	})
	if err != nil {
		return nil, err
	}

	return message, nil
}
