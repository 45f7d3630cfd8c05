package monitoring

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAction(t *testing.T) {
	Store.ActionsTotal.Reset()

	RecordAction("[Customer] Load Customers")
	RecordAction("[Customer] Load Customers")

	expected := `
		# HELP customer_store_actions_total Total number of actions reduced by the customer store.
		# TYPE customer_store_actions_total counter
		customer_store_actions_total{type="[Customer] Load Customers"} 2
	`
	assert.NoError(t, testutil.CollectAndCompare(Store.ActionsTotal, strings.NewReader(expected)))
}

func TestEffectInFlightGauge(t *testing.T) {
	before := testutil.ToFloat64(Store.EffectsInFlight)

	EffectStarted()
	assert.Equal(t, before+1, testutil.ToFloat64(Store.EffectsInFlight))

	EffectFinished("load_all", "success", 10*time.Millisecond)
	assert.Equal(t, before, testutil.ToFloat64(Store.EffectsInFlight))
	assert.Equal(t, 1, testutil.CollectAndCount(Store.EffectDuration))
}
