package service

import (
	"sync"
	"testing"
	"time"

	"github.com/edirooss/flowplan/internal/domain/flow"
	"github.com/edirooss/flowplan/internal/domain/workspace"
	"github.com/edirooss/flowplan/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testWorkspace(t *testing.T) workspace.Workspace {
	t.Helper()
	now := time.Now()
	ws := workspace.New("w1", now)
	ws, err := ws.Replace(
		[]flow.Device{{ID: "tx", TxCapacity: 1, RxCapacity: 0}, {ID: "rx1", RxCapacity: 2}, {ID: "rx2", RxCapacity: 2}},
		[]flow.Connection{{ID: "c", Transmitter: "tx", Receivers: []string{"rx1", "rx2"}, Channels: 4, Mode: flow.Unicast}},
		now,
	)
	require.NoError(t, err)
	return ws
}

func TestReportService_CachesPerRevision(t *testing.T) {
	m := metrics.NewRegistry()
	s := NewReportService(zap.NewNop(), m, ReportOptions{})
	ws := testWorkspace(t)

	first := s.Get(ws)
	assert.False(t, first.CacheHit)
	assert.Equal(t, ws.Revision, first.Data.Revision)
	assert.Equal(t, 1, first.Data.OverCapacity) // tx uses 2 of 1

	second := s.Get(ws)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Data, second.Data)

	next, err := ws.RemoveConnection("c", time.Now())
	require.NoError(t, err)
	third := s.Get(next)
	assert.False(t, third.CacheHit)
	assert.Equal(t, 0, third.Data.OverCapacity)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReportsComputed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportCacheLookups.WithLabelValues("hit")))
}

func TestReportService_ResultIsACopy(t *testing.T) {
	s := NewReportService(zap.NewNop(), nil, ReportOptions{})
	ws := testWorkspace(t)

	res := s.Get(ws)
	res.Data.Devices[0].TxUsed = 99

	again := s.Get(ws)
	assert.Equal(t, 2, again.Data.Devices[0].TxUsed)
}

func TestReportService_OlderRevisionDoesNotEvictNewer(t *testing.T) {
	s := NewReportService(zap.NewNop(), nil, ReportOptions{})
	ws := testWorkspace(t)
	next, err := ws.RemoveConnection("c", time.Now())
	require.NoError(t, err)

	s.Get(next)
	s.Get(ws) // stale reader

	assert.True(t, s.Get(next).CacheHit)
}

func TestReportService_Concurrent(t *testing.T) {
	s := NewReportService(zap.NewNop(), nil, ReportOptions{})
	ws := testWorkspace(t)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := s.Get(ws)
			assert.Equal(t, 2, r.Data.TotalTx)
			assert.Equal(t, 2, r.Data.TotalRx)
		}()
	}
	wg.Wait()

	s.Invalidate(ws.ID)
	assert.False(t, s.Get(ws).CacheHit)
}
