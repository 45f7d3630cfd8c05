package state

// CustomerState is the whole customers feature state.
type CustomerState struct {
	Entities EntityCollection

	// SelectedCustomerID refers to an entry of Entities; it does not own it.
	SelectedCustomerID *int64

	Loading bool
	Loaded  bool
	Error   string
}

func InitialState() CustomerState {
	return CustomerState{
		Entities: emptyCollection(),
	}
}

// snapshot returns a copy sharing no memory with s.
func (s CustomerState) snapshot() CustomerState {
	out := s
	out.Entities = s.Entities.snapshot()
	if s.SelectedCustomerID != nil {
		out.SelectedCustomerID = ptr(*s.SelectedCustomerID)
	}
	return out
}

func ptr(id int64) *int64 {
	return &id
}
