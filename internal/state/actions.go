package state

import (
	"customer-store/internal/domain/customer"
)

// ActionType is the tag every action reports for logging and the action log.
type ActionType string

const (
	TypeLoadCustomers        ActionType = "[Customer] Load Customers"
	TypeLoadCustomersSuccess ActionType = "[Customer] Load Customers Success"
	TypeLoadCustomersFail    ActionType = "[Customer] Load Customers Fail"

	TypeLoadCustomer        ActionType = "[Customer] Load Customer"
	TypeLoadCustomerSuccess ActionType = "[Customer] Load Customer Success"
	TypeLoadCustomerFail    ActionType = "[Customer] Load Customer Fail"

	TypeCreateCustomer        ActionType = "[Customer] Create Customer"
	TypeCreateCustomerSuccess ActionType = "[Customer] Create Customer Success"
	TypeCreateCustomerFail    ActionType = "[Customer] Create Customer Fail"

	TypeUpdateCustomer        ActionType = "[Customer] Update Customer"
	TypeUpdateCustomerSuccess ActionType = "[Customer] Update Customer Success"
	TypeUpdateCustomerFail    ActionType = "[Customer] Update Customer Fail"

	TypeDeleteCustomer        ActionType = "[Customer] Delete Customer"
	TypeDeleteCustomerSuccess ActionType = "[Customer] Delete Customer Success"
	TypeDeleteCustomerFail    ActionType = "[Customer] Delete Customer Fail"
)

// Family groups the intent of an operation with its two outcomes.
type Family string

const (
	FamilyLoadAll Family = "load_all"
	FamilyLoadOne Family = "load_one"
	FamilyCreate  Family = "create"
	FamilyUpdate  Family = "update"
	FamilyDelete  Family = "delete"
)

// Action is the closed set of messages the store accepts. The unexported
// method keeps implementations inside this package.
type Action interface {
	Type() ActionType
	Family() Family
	sealed()
}

// Intent is an action asking for a remote operation.
type Intent interface {
	Action
	intent()
}

// Failure is an outcome reporting a failed remote operation.
type Failure interface {
	Action
	Cause() error
}

// Update pairs an id with the changes to apply to that entity.
type Update struct {
	ID      int64
	Changes customer.Customer
}

type (
	LoadCustomers        struct{}
	LoadCustomersSuccess struct{ Customers []customer.Customer }
	LoadCustomersFail    struct{ Err error }

	LoadCustomer        struct{ ID int64 }
	LoadCustomerSuccess struct{ Customer customer.Customer }
	LoadCustomerFail    struct{ Err error }

	CreateCustomer        struct{ Customer customer.Customer }
	CreateCustomerSuccess struct{ Customer customer.Customer }
	CreateCustomerFail    struct{ Err error }

	UpdateCustomer        struct{ Customer customer.Customer }
	UpdateCustomerSuccess struct{ Update Update }
	UpdateCustomerFail    struct{ Err error }

	DeleteCustomer        struct{ ID int64 }
	DeleteCustomerSuccess struct{ ID int64 }
	DeleteCustomerFail    struct{ Err error }
)

func (LoadCustomers) Type() ActionType        { return TypeLoadCustomers }
func (LoadCustomersSuccess) Type() ActionType { return TypeLoadCustomersSuccess }
func (LoadCustomersFail) Type() ActionType    { return TypeLoadCustomersFail }

func (LoadCustomer) Type() ActionType        { return TypeLoadCustomer }
func (LoadCustomerSuccess) Type() ActionType { return TypeLoadCustomerSuccess }
func (LoadCustomerFail) Type() ActionType    { return TypeLoadCustomerFail }

func (CreateCustomer) Type() ActionType        { return TypeCreateCustomer }
func (CreateCustomerSuccess) Type() ActionType { return TypeCreateCustomerSuccess }
func (CreateCustomerFail) Type() ActionType    { return TypeCreateCustomerFail }

func (UpdateCustomer) Type() ActionType        { return TypeUpdateCustomer }
func (UpdateCustomerSuccess) Type() ActionType { return TypeUpdateCustomerSuccess }
func (UpdateCustomerFail) Type() ActionType    { return TypeUpdateCustomerFail }

func (DeleteCustomer) Type() ActionType        { return TypeDeleteCustomer }
func (DeleteCustomerSuccess) Type() ActionType { return TypeDeleteCustomerSuccess }
func (DeleteCustomerFail) Type() ActionType    { return TypeDeleteCustomerFail }

func (LoadCustomers) Family() Family        { return FamilyLoadAll }
func (LoadCustomersSuccess) Family() Family { return FamilyLoadAll }
func (LoadCustomersFail) Family() Family    { return FamilyLoadAll }

func (LoadCustomer) Family() Family        { return FamilyLoadOne }
func (LoadCustomerSuccess) Family() Family { return FamilyLoadOne }
func (LoadCustomerFail) Family() Family    { return FamilyLoadOne }

func (CreateCustomer) Family() Family        { return FamilyCreate }
func (CreateCustomerSuccess) Family() Family { return FamilyCreate }
func (CreateCustomerFail) Family() Family    { return FamilyCreate }

func (UpdateCustomer) Family() Family        { return FamilyUpdate }
func (UpdateCustomerSuccess) Family() Family { return FamilyUpdate }
func (UpdateCustomerFail) Family() Family    { return FamilyUpdate }

func (DeleteCustomer) Family() Family        { return FamilyDelete }
func (DeleteCustomerSuccess) Family() Family { return FamilyDelete }
func (DeleteCustomerFail) Family() Family    { return FamilyDelete }

func (LoadCustomers) sealed()         {}
func (LoadCustomersSuccess) sealed()  {}
func (LoadCustomersFail) sealed()     {}
func (LoadCustomer) sealed()          {}
func (LoadCustomerSuccess) sealed()   {}
func (LoadCustomerFail) sealed()      {}
func (CreateCustomer) sealed()        {}
func (CreateCustomerSuccess) sealed() {}
func (CreateCustomerFail) sealed()    {}
func (UpdateCustomer) sealed()        {}
func (UpdateCustomerSuccess) sealed() {}
func (UpdateCustomerFail) sealed()    {}
func (DeleteCustomer) sealed()        {}
func (DeleteCustomerSuccess) sealed() {}
func (DeleteCustomerFail) sealed()    {}

func (LoadCustomers) intent()  {}
func (LoadCustomer) intent()   {}
func (CreateCustomer) intent() {}
func (UpdateCustomer) intent() {}
func (DeleteCustomer) intent() {}

func (a LoadCustomersFail) Cause() error  { return a.Err }
func (a LoadCustomerFail) Cause() error   { return a.Err }
func (a CreateCustomerFail) Cause() error { return a.Err }
func (a UpdateCustomerFail) Cause() error { return a.Err }
func (a DeleteCustomerFail) Cause() error { return a.Err }

// IsIntent reports whether a asks for a remote operation.
func IsIntent(a Action) bool {
	_, ok := a.(Intent)
	return ok
}

// errorText is the string the reducer stores for a failure.
func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
