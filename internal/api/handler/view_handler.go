package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"customer-store/internal/api/handler/dto"
	"customer-store/internal/domain/customer"
	"customer-store/internal/pkg/apperrors"
	"customer-store/internal/state"
)

// StoreView is the part of the store the view API needs.
type StoreView interface {
	State() state.CustomerState
	Dispatch(action state.Action)
}

// ViewHandler exposes the store over HTTP. Reads come from selectors on the
// current snapshot; writes only dispatch intents and answer 202.
type ViewHandler struct {
	store  StoreView
	logger *slog.Logger
}

func NewViewHandler(store StoreView, l *slog.Logger) *ViewHandler {
	if store == nil {
		panic("store cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &ViewHandler{
		store:  store,
		logger: l.With("component", "ViewHandler"),
	}
}

func (h *ViewHandler) dispatch(w http.ResponseWriter, r *http.Request, intent state.Intent) {
	h.logger.InfoContext(r.Context(), "Dispatching intent", slog.String("type", string(intent.Type())))
	h.store.Dispatch(intent)
	respondJSON(w, http.StatusAccepted, dto.NewDispatchResponse(intent))
}

// ListCustomers handles GET /store/customers
func (h *ViewHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers := state.SelectAll(h.store.State())
	h.logger.DebugContext(r.Context(), "Customers selected", slog.Int("count", len(customers)))
	respondJSON(w, http.StatusOK, customers)
}

// CurrentCustomer handles GET /store/customers/current
func (h *ViewHandler) CurrentCustomer(w http.ResponseWriter, r *http.Request) {
	cust, ok := state.SelectCurrentCustomer(h.store.State())
	if !ok {
		h.logger.DebugContext(r.Context(), "No current customer")
		respondError(w, fmt.Errorf("no current customer: %w", apperrors.ErrNotFound))
		return
	}
	respondJSON(w, http.StatusOK, cust)
}

// Status handles GET /store/status
func (h *ViewHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.NewStatusResponse(state.SelectStatus(h.store.State())))
}

// LoadCustomers handles POST /store/customers/load
func (h *ViewHandler) LoadCustomers(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, state.LoadCustomers{})
}

// LoadCustomer handles POST /store/customers/{customerID}/load
func (h *ViewHandler) LoadCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}
	h.dispatch(w, r, state.LoadCustomer{ID: customerID})
}

// CreateCustomer handles POST /store/customers
func (h *ViewHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	attrs, err := decodeObject(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	delete(attrs, "id")
	h.dispatch(w, r, state.CreateCustomer{Customer: customer.New(0, attrs)})
}

// UpdateCustomer handles PATCH /store/customers/{customerID}
func (h *ViewHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	attrs, err := decodeObject(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if raw, ok := attrs["id"]; ok && raw != nil && fmt.Sprint(raw) != fmt.Sprint(customerID) {
		h.logger.WarnContext(r.Context(), "Validation failed: body id does not match path id", slog.Any("bodyID", raw))
		respondError(w, apperrors.NewValidationError("id", "does not match the customer in the path"))
		return
	}
	delete(attrs, "id")

	h.dispatch(w, r, state.UpdateCustomer{Customer: customer.New(customerID, attrs)})
}

// DeleteCustomer handles DELETE /store/customers/{customerID}
func (h *ViewHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}
	h.dispatch(w, r, state.DeleteCustomer{ID: customerID})
}
