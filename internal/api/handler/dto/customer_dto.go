package dto

import (
	"customer-store/internal/state"
)

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type TokenRequest struct {
	Username string `json:"username"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// DispatchResponse acknowledges an intent handed to the store. The outcome
// arrives later and is visible through the status and customers views.
type DispatchResponse struct {
	Type   string `json:"type"`
	Family string `json:"family"`
}

func NewDispatchResponse(intent state.Intent) DispatchResponse {
	return DispatchResponse{
		Type:   string(intent.Type()),
		Family: string(intent.Family()),
	}
}

type StatusResponse struct {
	Loading            bool   `json:"loading"`
	Loaded             bool   `json:"loaded"`
	Error              string `json:"error,omitempty"`
	SelectedCustomerID *int64 `json:"selectedCustomerId"`
	Total              int    `json:"total"`
}

func NewStatusResponse(st state.Status) StatusResponse {
	return StatusResponse{
		Loading:            st.Loading,
		Loaded:             st.Loaded,
		Error:              st.Error,
		SelectedCustomerID: st.SelectedCustomerID,
		Total:              st.Total,
	}
}
