package state

// Reducer folds one action into a state.
type Reducer func(CustomerState, Action) CustomerState

var _ Reducer = Reduce

// Reduce is the customers reducer. It never mutates s; fields a transition
// does not mention are carried over. Intents and unknown actions return s.
func Reduce(s CustomerState, action Action) CustomerState {
	switch a := action.(type) {
	case LoadCustomersSuccess:
		s.Entities = s.Entities.SetAll(a.Customers)
		s.Loading = false
		s.Loaded = true
		return s

	case LoadCustomersFail:
		s.Entities = emptyCollection()
		s.Loading = false
		s.Loaded = false
		s.Error = errorText(a.Err)
		return s

	case LoadCustomerSuccess:
		s.Entities = s.Entities.UpsertOne(a.Customer)
		s.SelectedCustomerID = ptr(a.Customer.ID)
		return s

	case LoadCustomerFail:
		s.Error = errorText(a.Err)
		return s

	case CreateCustomerSuccess:
		s.Entities = s.Entities.AddOne(a.Customer)
		return s

	case CreateCustomerFail:
		s.Error = errorText(a.Err)
		return s

	case UpdateCustomerSuccess:
		s.Entities = s.Entities.UpdateOne(a.Update)
		return s

	case UpdateCustomerFail:
		s.Error = errorText(a.Err)
		return s

	case DeleteCustomerSuccess:
		s.Entities = s.Entities.RemoveOne(a.ID)
		if s.SelectedCustomerID != nil && *s.SelectedCustomerID == a.ID {
			s.SelectedCustomerID = nil
		}
		return s

	case DeleteCustomerFail:
		s.Error = errorText(a.Err)
		return s

	default:
		return s
	}
}
