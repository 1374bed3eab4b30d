package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/coinledger/internal/adapter/http/dto"
	"github.com/iho/coinledger/internal/domain"
)

// SupportService defines the behavior needed by MessageHandler.
type SupportService interface {
	Send(ctx context.Context, userID, text string) (*domain.SupportMessage, error)
	Reply(ctx context.Context, userID, text string) (*domain.SupportMessage, error)
	ListConversation(ctx context.Context, userID string, limit, offset int) ([]*domain.SupportMessage, error)
	ListAll(ctx context.Context, limit, offset int) ([]*domain.SupportMessage, error)
	Delete(ctx context.Context, id string) error
}

// MessageHandler handles the support chat.
type MessageHandler struct {
	supportUC SupportService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(supportUC SupportService) *MessageHandler {
	return &MessageHandler{supportUC: supportUC}
}

// Send posts a message from the account owner.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	h.post(w, r, h.supportUC.Send)
}

// Reply posts an admin message into the user's conversation.
func (h *MessageHandler) Reply(w http.ResponseWriter, r *http.Request) {
	h.post(w, r, h.supportUC.Reply)
}

func (h *MessageHandler) post(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, userID, text string) (*domain.SupportMessage, error)) {
	var req dto.MessageRequest
	if !decodeBody(w, r, &req) {
		return
	}

	msg, err := fn(r.Context(), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		writeDomainError(w, "failed to send message", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.MessageFromDomain(msg))
}

// Conversation lists one user's thread, oldest first.
func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageQuery(r)

	messages, err := h.supportUC.ListConversation(r.Context(), chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		writeDomainError(w, "failed to list messages", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages": dto.MessagesFromDomain(messages)})
}

// ListAll lists messages across every user.
func (h *MessageHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageQuery(r)

	messages, err := h.supportUC.ListAll(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, "failed to list messages", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages": dto.MessagesFromDomain(messages)})
}

// Delete removes a message.
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.supportUC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "failed to delete message", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
