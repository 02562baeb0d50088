package observability

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("GET", "/api/clans/:id/weekly", "200", 20*time.Millisecond)
	m.AddIngestRecords("new", 3)
	m.AddIngestRecords("new", 0)
	m.ObserveIngestTask("COMPLETED", time.Second)
	m.AddLedgerWrites("stage", 2)

	if got := testutil.ToFloat64(m.ingestRecords.WithLabelValues("new")); got != 3 {
		t.Fatalf("ingest records: want=3 got=%v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		"clanhub_api_requests_total",
		"clanhub_ingest_tasks_total",
		"clanhub_ledger_rows_written_total",
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("exposition: missing %s", want)
		}
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.ApiInflightInc()
	m.ApiInflightDec()
	m.IncOverride()
	m.IncSchedulerRun("weekly_context", "ok")
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Fatalf("nil handler: want=404 got=%d", rec.Code)
	}
}
