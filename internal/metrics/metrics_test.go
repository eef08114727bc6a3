package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	req := require.New(t)
	m := New()

	m.ParticipantRegistered()
	m.MessagePosted()
	m.MessagePosted()
	m.ParticipantsSwept(3)
	m.ParticipantsSwept(0)
	m.SweepFailed()
	m.ConnectionOpened()
	m.ConnectionOpened()
	m.ConnectionClosed()

	req.Equal(1.0, testutil.ToFloat64(m.registered))
	req.Equal(2.0, testutil.ToFloat64(m.posted))
	req.Equal(3.0, testutil.ToFloat64(m.swept))
	req.Equal(1.0, testutil.ToFloat64(m.sweepFailures))
	req.Equal(1.0, testutil.ToFloat64(m.connections))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.ParticipantRegistered()
		m.MessagePosted()
		m.ParticipantsSwept(1)
		m.SweepFailed()
		m.ConnectionOpened()
		m.ConnectionClosed()
	})
}

func TestMetrics_Handler(t *testing.T) {
	req := require.New(t)
	m := New()
	m.ParticipantRegistered()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	req.NoError(err)
	req.Equal(200, rec.Code)
	req.Contains(string(body), "chatroom_participants_registered_total 1")
}
