package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/coinledger/internal/adapter/http/dto"
	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/usecase"
)

// AddressService defines the behavior needed by AddressHandler.
type AddressService interface {
	Link(ctx context.Context, input usecase.LinkAddressInput) (*domain.LinkedAddress, error)
	List(ctx context.Context, userID string) ([]*domain.LinkedAddress, error)
	Unlink(ctx context.Context, userID, addressID string) error
	UnlinkAll(ctx context.Context, userID string) (int64, error)
	Refresh(ctx context.Context, userID, addressID string) (*domain.LinkedAddress, error)
}

// AddressHandler handles linked blockchain addresses of an account.
type AddressHandler struct {
	addressUC AddressService
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(addressUC AddressService) *AddressHandler {
	return &AddressHandler{addressUC: addressUC}
}

// Link validates and stores an address for the account.
func (h *AddressHandler) Link(w http.ResponseWriter, r *http.Request) {
	var req dto.LinkAddressRequest
	if !decodeBody(w, r, &req) {
		return
	}

	address, err := h.addressUC.Link(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, "failed to link address", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.LinkedAddressFromDomain(address))
}

// List lists the addresses linked to the account.
func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.addressUC.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to list addresses", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"addresses": dto.LinkedAddressesFromDomain(addresses)})
}

// Unlink removes one address.
func (h *AddressHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	if err := h.addressUC.Unlink(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "addressId")); err != nil {
		writeDomainError(w, "failed to unlink address", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UnlinkAll removes every address of the account.
func (h *AddressHandler) UnlinkAll(w http.ResponseWriter, r *http.Request) {
	removed, err := h.addressUC.UnlinkAll(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to unlink addresses", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PurgeResponse{Deleted: removed})
}

// Refresh refetches the on-chain balance and its USD value.
func (h *AddressHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	address, err := h.addressUC.Refresh(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "addressId"))
	if err != nil {
		writeDomainError(w, "failed to refresh address", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LinkedAddressFromDomain(address))
}
