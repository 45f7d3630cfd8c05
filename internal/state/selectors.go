package state

import (
	"customer-store/internal/domain/customer"
)

// Selector derives a read-only view from the state.
type Selector[T any] func(CustomerState) T

func SelectAll(s CustomerState) []customer.Customer {
	return s.Entities.All()
}

func SelectTotal(s CustomerState) int {
	return s.Entities.Len()
}

func SelectLoading(s CustomerState) bool {
	return s.Loading
}

func SelectLoaded(s CustomerState) bool {
	return s.Loaded
}

func SelectError(s CustomerState) string {
	return s.Error
}

func SelectCurrentCustomerID(s CustomerState) (int64, bool) {
	if s.SelectedCustomerID == nil {
		return 0, false
	}
	return *s.SelectedCustomerID, true
}

// SelectCurrentCustomer reports false when nothing is selected or the
// selected id is not in the collection.
func SelectCurrentCustomer(s CustomerState) (customer.Customer, bool) {
	id, ok := SelectCurrentCustomerID(s)
	if !ok {
		return customer.Customer{}, false
	}
	return s.Entities.Get(id)
}

func SelectByID(id int64) Selector[*customer.Customer] {
	return func(s CustomerState) *customer.Customer {
		cust, ok := s.Entities.Get(id)
		if !ok {
			return nil
		}
		return &cust
	}
}

// Status is the flag summary of the state.
type Status struct {
	Loading            bool   `json:"loading"`
	Loaded             bool   `json:"loaded"`
	Error              string `json:"error"`
	SelectedCustomerID *int64 `json:"selectedCustomerId"`
	Total              int    `json:"total"`
}

func SelectStatus(s CustomerState) Status {
	st := Status{
		Loading: s.Loading,
		Loaded:  s.Loaded,
		Error:   s.Error,
		Total:   s.Entities.Len(),
	}
	if id, ok := SelectCurrentCustomerID(s); ok {
		st.SelectedCustomerID = ptr(id)
	}
	return st
}

// Select applies sel to the current state of store.
func Select[T any](store *Store, sel Selector[T]) T {
	return sel(store.State())
}
