package customer

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

var _ Repository = (*MockRepository)(nil)

func (_m *MockRepository) FindAll(ctx context.Context) ([]Customer, error) {
	ret := _m.Called(ctx)

	var r0 []Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) FindByID(ctx context.Context, customerID int64) (Customer, error) {
	ret := _m.Called(ctx, customerID)

	var r0 Customer
	if rf, ok := ret.Get(0).(func(context.Context, int64) Customer); ok {
		r0 = rf(ctx, customerID)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) Insert(ctx context.Context, c Customer) (Customer, error) {
	ret := _m.Called(ctx, c)

	var r0 Customer
	if rf, ok := ret.Get(0).(func(context.Context, Customer) Customer); ok {
		r0 = rf(ctx, c)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) Patch(ctx context.Context, c Customer) (Customer, error) {
	ret := _m.Called(ctx, c)

	var r0 Customer
	if rf, ok := ret.Get(0).(func(context.Context, Customer) Customer); ok {
		r0 = rf(ctx, c)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) Delete(ctx context.Context, customerID int64) error {
	ret := _m.Called(ctx, customerID)
	return ret.Error(0)
}
