package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockConsumerChannel struct {
	mock.Mock
}

func (_m *MockConsumerChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	return _m.Called(name, kind, durable, autoDelete, internal, noWait, args).Error(0)
}

func (_m *MockConsumerChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	ret := _m.Called(name, durable, autoDelete, exclusive, noWait, args)
	return ret.Get(0).(amqp.Queue), ret.Error(1)
}

func (_m *MockConsumerChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	return _m.Called(name, key, exchange, noWait, args).Error(0)
}

func (_m *MockConsumerChannel) Qos(prefetchCount, prefetchSize int, global bool) error {
	return _m.Called(prefetchCount, prefetchSize, global).Error(0)
}

func (_m *MockConsumerChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	ret := _m.Called(queue, consumer, autoAck, exclusive, noLocal, noWait, args)
	var r0 <-chan amqp.Delivery
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(<-chan amqp.Delivery)
	}
	return r0, ret.Error(1)
}

func (_m *MockConsumerChannel) Cancel(consumer string, noWait bool) error {
	return _m.Called(consumer, noWait).Error(0)
}

func (_m *MockConsumerChannel) Close() error {
	return _m.Called().Error(0)
}

func expectTopology(ch *MockConsumerChannel, queueName string, private bool) {
	ch.On("ExchangeDeclare", "customer-store", amqp.ExchangeTopic, true, false, false, false, amqp.Table(nil)).Return(nil).Once()
	ch.On("QueueDeclare", queueName, !private, private, private, false, amqp.Table(nil)).Return(amqp.Queue{Name: "q-1"}, nil).Once()
	for _, key := range CustomerRoutingKeys {
		ch.On("QueueBind", "q-1", key, "customer-store", false, amqp.Table(nil)).Return(nil).Once()
	}
	ch.On("Qos", 1, 0, false).Return(nil).Once()
}

func noopHandler(context.Context, amqp.Delivery) {}

func TestNewConsumer_DeclaresTopology(t *testing.T) {
	t.Run("Private queue when no name is configured", func(t *testing.T) {
		ch := new(MockConsumerChannel)
		expectTopology(ch, "", true)

		c, err := newConsumer(ch, "customer-store", "", "tag", CustomerRoutingKeys, noopHandler, discardLogger())

		require.NoError(t, err)
		assert.Equal(t, "q-1", c.queueName)
		ch.AssertExpectations(t)
	})

	t.Run("Durable named queue", func(t *testing.T) {
		ch := new(MockConsumerChannel)
		expectTopology(ch, "changes", false)

		_, err := newConsumer(ch, "customer-store", "changes", "tag", CustomerRoutingKeys, noopHandler, discardLogger())

		require.NoError(t, err)
		ch.AssertExpectations(t)
	})
}

func TestNewConsumer_ClosesChannelOnFailure(t *testing.T) {
	ch := new(MockConsumerChannel)
	ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ch.On("QueueDeclare", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(amqp.Queue{Name: "q-1"}, nil)
	ch.On("QueueBind", "q-1", RoutingKeyCustomerCreated, "customer-store", false, amqp.Table(nil)).Return(errors.New("access refused")).Once()
	ch.On("Close").Return(nil).Once()

	c, err := newConsumer(ch, "customer-store", "", "tag", CustomerRoutingKeys, noopHandler, discardLogger())

	assert.Nil(t, c)
	assert.ErrorContains(t, err, "access refused")
	ch.AssertExpectations(t)
}

func TestNewConsumer_PanicsOnNilHandler(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = newConsumer(new(MockConsumerChannel), "x", "", "tag", nil, nil, discardLogger())
	})
}

func TestNewConsumer_NilConnection(t *testing.T) {
	_, err := NewConsumer(nil, "x", "", "tag", nil, noopHandler, discardLogger())

	assert.Error(t, err)
}

func TestConsumer_DeliversUntilStopped(t *testing.T) {
	ch := new(MockConsumerChannel)
	expectTopology(ch, "", true)
	deliveries := make(chan amqp.Delivery, 2)
	ch.On("Consume", "q-1", "tag", false, false, false, false, amqp.Table(nil)).Return((<-chan amqp.Delivery)(deliveries), nil).Once()
	ch.On("Cancel", "tag", false).Return(nil).Once()
	ch.On("Close").Return(nil).Once()

	var mu sync.Mutex
	var keys []string
	handler := func(_ context.Context, d amqp.Delivery) {
		mu.Lock()
		defer mu.Unlock()
		keys = append(keys, d.RoutingKey)
	}

	c, err := newConsumer(ch, "customer-store", "", "tag", CustomerRoutingKeys, handler, discardLogger())
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))

	deliveries <- amqp.Delivery{RoutingKey: RoutingKeyCustomerCreated}
	deliveries <- amqp.Delivery{RoutingKey: RoutingKeyCustomerDeleted}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(keys) == 2
	}, time.Second, 5*time.Millisecond)

	c.Stop()
	assert.Equal(t, []string{RoutingKeyCustomerCreated, RoutingKeyCustomerDeleted}, keys)
	ch.AssertExpectations(t)
}

func TestConsumer_StartFailure(t *testing.T) {
	ch := new(MockConsumerChannel)
	expectTopology(ch, "", true)
	ch.On("Consume", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("channel closed")).Once()
	ch.On("Close").Return(nil).Once()

	c, err := newConsumer(ch, "customer-store", "", "tag", CustomerRoutingKeys, noopHandler, discardLogger())
	require.NoError(t, err)

	assert.ErrorContains(t, c.Start(context.Background()), "channel closed")
	ch.AssertExpectations(t)
}

func TestConsumer_StopBeforeStart(t *testing.T) {
	ch := new(MockConsumerChannel)
	expectTopology(ch, "", true)
	c, err := newConsumer(ch, "customer-store", "", "tag", CustomerRoutingKeys, noopHandler, discardLogger())
	require.NoError(t, err)

	assert.NotPanics(t, c.Stop)
	ch.AssertNotCalled(t, "Close")
}
