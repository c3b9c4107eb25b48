package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/warehouse-api/internal/domain/entity"
)

func TestObserveOperation(t *testing.T) {
	m := New("warehouse")

	m.ObserveOperation("create", entity.KindOrder, "ok")
	m.ObserveOperation("create", entity.KindOrder, "ok")
	m.ObserveOperation("create", entity.KindOrder, "insufficient_stock")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LedgerOperations.WithLabelValues("create", "ORDER", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LedgerOperations.WithLabelValues("create", "ORDER", "insufficient_stock")))
}

func TestRecordHTTPRequest(t *testing.T) {
	m := New("warehouse")

	m.RecordHTTPRequest("GET", "/api/products", 200, 15*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/products", "200")))
}
