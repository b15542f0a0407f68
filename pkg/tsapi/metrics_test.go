package tsapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, families map[string]*dto.MetricFamily, name string) float64 {
	t.Helper()
	fam, ok := families[name]
	require.True(t, ok, "metric %s not registered", name)
	require.Len(t, fam.Metric, 1)
	return fam.Metric[0].GetCounter().GetValue()
}

func gatherByName(t *testing.T, m *Metrics) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		byName[f.GetName()] = f
	}
	return byName
}

func TestEachMetricsInstanceHasIndependentRegistry(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.RecordEncode(2)
	b.RecordEncode(2)
	b.RecordEncode(2)

	aFamilies := gatherByName(t, a)
	bFamilies := gatherByName(t, b)

	assert.Equal(t, float64(1), counterValue(t, aFamilies, "tokenstream_records_encoded_total"))
	assert.Equal(t, float64(2), counterValue(t, bFamilies, "tokenstream_records_encoded_total"))
}

func TestRecordBadStreamTripIncrements(t *testing.T) {
	m := NewMetrics()
	m.RecordBadStreamTrip()
	m.RecordBadStreamTrip()

	families := gatherByName(t, m)
	assert.Equal(t, float64(2), counterValue(t, families, "tokenstream_bad_stream_trips_total"))
}

func TestInstrumentHandlerRecordsStatusCode(t *testing.T) {
	m := NewMetrics()
	handler := m.InstrumentHandler("GET", "/api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	families := gatherByName(t, m)
	fam := families["tokenstream_http_requests_total"]
	require.NotNil(t, fam)
	require.Len(t, fam.Metric, 1)

	var sawStatus bool
	for _, label := range fam.Metric[0].Label {
		if label.GetName() == "status_code" && label.GetValue() == "418" {
			sawStatus = true
		}
	}
	assert.True(t, sawStatus)
}
