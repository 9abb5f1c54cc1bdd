package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCompletion(t *testing.T) {
	before := testutil.ToFloat64(habitsCompleted)
	okBefore := testutil.ToFloat64(completions.WithLabelValues("ok"))

	RecordCompletion("ok", false)
	RecordCompletion("ok", true)

	if got := testutil.ToFloat64(completions.WithLabelValues("ok")) - okBefore; got != 2 {
		t.Errorf("ok completions delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(habitsCompleted) - before; got != 1 {
		t.Errorf("completed delta = %v, want 1", got)
	}
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Middleware)
	r.HandleFunc("/api/habits/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/habits/{id}", "418"))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/habits/abc", nil))

	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/habits/{id}", "418"))
	if after-before != 1 {
		t.Errorf("request counter delta = %v, want 1", after-before)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordInterestMutation("select", "ok")

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "habitd_interests_mutations_total") {
		t.Error("interest mutation counter missing from exposition")
	}
}
