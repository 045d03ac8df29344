package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"satang/internal/rate"
	"satang/internal/scan"
	"satang/internal/services"
	"satang/internal/storage"
	"satang/internal/store"
)

type fakeRateSource struct {
	rates map[string]float64
	err   error
}

func (f *fakeRateSource) Latest(context.Context, string) (map[string]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rates, nil
}

type failingScanner struct{}

func (failingScanner) Scan(context.Context, string, string) (*scan.Result, error) {
	return nil, errors.New("api down")
}

func newTestServer(t *testing.T, src rate.Source) (*Server, *services.ExpenseService) {
	return newTestServerWithScanner(t, src, nil)
}

func newTestServerWithScanner(t *testing.T, src rate.Source, scanner scan.Scanner) (*Server, *services.ExpenseService) {
	t.Helper()
	if src == nil {
		src = &fakeRateSource{err: errors.New("offline")}
	}
	kv := storage.NewMemoryKV()
	st := store.New(kv)
	st.Load(context.Background())
	svc := services.NewExpenseService(st, rate.NewHolder(kv, src), scanner, time.UTC)
	return NewServer(":0", svc), svc
}

func postForm(t *testing.T, srv *Server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestIndexAndHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("index status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Log expense") {
		t.Fatalf("index body missing form button")
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		srv.Handler.ServeHTTP(rr, req)
		if rr.Code != 200 {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestCreateExpenseValidationAndSuccess(t *testing.T) {
	srv, svc := newTestServer(t, nil)

	// Wrong method
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/expenses", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}

	// Invalid amounts create nothing
	for _, amount := range []string{"", "abc", "0", "-10"} {
		rr := postForm(t, srv, "/expenses", url.Values{"amount": {amount}, "category": {"Food"}})
		if rr.Code != 422 {
			t.Fatalf("amount %q: expected 422, got %d", amount, rr.Code)
		}
	}
	if len(svc.Expenses()) != 0 {
		t.Fatalf("records created by invalid submissions: %d", len(svc.Expenses()))
	}

	// Success: 100 THB split by 2 at the default rate 0.225
	rr = postForm(t, srv, "/expenses", url.Values{
		"amount":      {"100"},
		"description": {"dinner"},
		"category":    {"Food"},
		"payment":     {"Cash"},
		"split":       {"on"},
		"split_count": {"2"},
	})
	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), "expense:created") {
		t.Fatalf("missing expense:created trigger: %s", rr.Header().Get("HX-Trigger"))
	}

	items := svc.Expenses()
	if len(items) != 1 {
		t.Fatalf("expected 1 record, got %d", len(items))
	}
	e := items[0]
	if e.SplitTHB != 50 || e.AmountHKD != 22.5 || e.SplitCount != 2 {
		t.Fatalf("unexpected record: %+v", e)
	}
	if sum := svc.Summarize(); sum.TotalTHB != 50 {
		t.Fatalf("totalSpend = %v, want 50", sum.TotalTHB)
	}
}

func TestCreateExpenseInvalidSplitCount(t *testing.T) {
	srv, svc := newTestServer(t, nil)

	for _, count := range []string{"1", "0", "-3"} {
		rr := postForm(t, srv, "/expenses", url.Values{
			"amount":      {"100"},
			"category":    {"Food"},
			"split":       {"on"},
			"split_count": {count},
		})
		if rr.Code != 422 {
			t.Fatalf("split_count %q: expected 422, got %d", count, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "Invalid split count") {
			t.Fatalf("split_count %q: expected split-count message, got %s", count, rr.Body.String())
		}
	}
	if len(svc.Expenses()) != 0 {
		t.Fatalf("records created by invalid splits: %d", len(svc.Expenses()))
	}
}

func TestDeleteExpense(t *testing.T) {
	srv, svc := newTestServer(t, nil)

	postForm(t, srv, "/expenses", url.Values{"amount": {"10"}, "category": {"Food"}})
	items := svc.Expenses()
	if len(items) != 1 {
		t.Fatalf("setup: %d records", len(items))
	}

	// Unknown id is a no-op
	rr := postForm(t, srv, "/expenses/delete", url.Values{"id": {"nope"}})
	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if len(svc.Expenses()) != 1 {
		t.Fatal("no-op delete changed the store")
	}

	rr = postForm(t, srv, "/expenses/delete", url.Values{"id": {items[0].ID}})
	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), "expense:deleted") {
		t.Fatal("missing expense:deleted trigger")
	}
	if len(svc.Expenses()) != 0 {
		t.Fatal("record not deleted")
	}
}

func TestSetRate(t *testing.T) {
	srv, svc := newTestServer(t, nil)

	for _, v := range []string{"abc", "0", "-1"} {
		rr := postForm(t, srv, "/rate", url.Values{"rate": {v}})
		if rr.Code != 422 {
			t.Fatalf("rate %q: expected 422, got %d", v, rr.Code)
		}
	}

	rr := postForm(t, srv, "/rate", url.Values{"rate": {"0.31"}})
	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := svc.Rate(); got != 0.31 {
		t.Fatalf("rate = %v, want 0.31", got)
	}
}

func TestRefreshRate(t *testing.T) {
	// Failing collaborator keeps the previous value
	srv, svc := newTestServer(t, &fakeRateSource{err: errors.New("offline")})
	before := svc.Rate()
	rr := postForm(t, srv, "/rate/refresh", nil)
	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "unavailable") {
		t.Fatalf("expected failure message, got %s", rr.Body.String())
	}
	if svc.Rate() != before {
		t.Fatal("failed fetch changed the rate")
	}

	// Working collaborator updates it
	srv, svc = newTestServer(t, &fakeRateSource{rates: map[string]float64{"HKD": 0.24}})
	rr = postForm(t, srv, "/rate/refresh", nil)
	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := svc.Rate(); got != 0.24 {
		t.Fatalf("rate = %v, want 0.24", got)
	}
}

func TestHistoryPartial(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ui/history", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "No records yet") {
		t.Fatal("empty history placeholder missing")
	}

	postForm(t, srv, "/expenses", url.Values{"amount": {"60"}, "description": {"khao soi"}, "category": {"Food"}})
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ui/history", nil))
	if !strings.Contains(rr.Body.String(), "khao soi") {
		t.Fatalf("record missing from history: %s", rr.Body.String())
	}
}

func TestStatsPartial(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	postForm(t, srv, "/expenses", url.Values{"amount": {"60"}, "category": {"Food"}})
	postForm(t, srv, "/expenses", url.Values{"amount": {"40"}, "category": {"Drink"}})

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ui/stats", nil))
	if rr.Code != 200 {
		t.Fatalf("status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "฿100") {
		t.Fatalf("total missing: %s", body)
	}
	// Food before Drink, sorted by spend descending
	if strings.Index(body, "Food") > strings.Index(body, "Drink") {
		t.Fatal("category ordering wrong")
	}
	if !strings.Contains(body, "<svg") {
		t.Fatal("pie chart missing")
	}
}

func TestScanDisabled(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	// Multipart body with a tiny fake image
	body := strings.NewReader("--b\r\nContent-Disposition: form-data; name=\"receipt\"; filename=\"r.jpg\"\r\nContent-Type: image/jpeg\r\n\r\nxx\r\n--b--\r\n")
	req := httptest.NewRequest(http.MethodPost, "/scan", body)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=b")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("status=%d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), "Could not read receipt") {
		t.Fatalf("expected warning notification, got %s", rr.Header().Get("HX-Trigger"))
	}
}

func TestScanCollaboratorFailure(t *testing.T) {
	srv, _ := newTestServerWithScanner(t, nil, failingScanner{})

	body := strings.NewReader("--b\r\nContent-Disposition: form-data; name=\"receipt\"; filename=\"r.jpg\"\r\nContent-Type: image/jpeg\r\n\r\nxx\r\n--b--\r\n")
	req := httptest.NewRequest(http.MethodPost, "/scan", body)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=b")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("status=%d", rr.Code)
	}
	trigger := rr.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, "Receipt scan failed") || !strings.Contains(trigger, `"type":"error"`) {
		t.Fatalf("expected error notification, got %s", trigger)
	}
}
