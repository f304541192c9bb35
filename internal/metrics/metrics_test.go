package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cropcare-service/internal/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordBookkeeping(t *testing.T) {
	m := New()
	m.RecordBookkeeping("report", models.OutcomeApplied)
	m.RecordBookkeeping("report", models.OutcomeApplied)
	m.RecordBookkeeping("crop", models.OutcomeFailed)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookkeeping.WithLabelValues("report", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookkeeping.WithLabelValues("crop", "failed")))
}

func TestRecordEvent(t *testing.T) {
	m := New()
	m.RecordEvent("disease_detected", nil)
	m.RecordEvent("disease_detected", errors.New("broker down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("disease_detected", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("disease_detected", "error")))
}

func TestHandlerExposesSeries(t *testing.T) {
	m := New()
	m.ObserveClassifier(1500*time.Millisecond, nil)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, _ := io.ReadAll(w.Body)
	assert.Contains(t, string(body), "cropcare_classifier_duration_seconds")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordBookkeeping("report", models.OutcomeApplied)
		m.ObserveClassifier(time.Second, nil)
		m.RecordEvent("x", nil)
	})
}
