package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector(reg)

	c.RecordSubmission("deposit")
	c.RecordSubmission("deposit")
	c.RecordBalanceChange("INR", -250)
	c.RecordExternalRefCollision()
	c.RecordSweep(3, 2, 1)
	c.RecordCacheHit("wallet_config")
	c.RecordOperationDuration("approve", 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.submissions.WithLabelValues("deposit")))
	assert.Equal(t, 250.0, testutil.ToFloat64(c.balanceDelta.WithLabelValues("INR")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.refCollisions))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.sweepRepaired))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cacheLookups.WithLabelValues("wallet_config", "hit")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.opDuration))
}

func TestOrNoop(t *testing.T) {
	assert.IsType(t, NoopCollector{}, OrNoop(nil))

	c := NewPrometheusCollector(prometheus.NewRegistry())
	assert.Same(t, c, OrNoop(c))
}
