package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"salone/internal/amqp"
	"salone/internal/auth"
	"salone/internal/core"
	"salone/internal/gateway/memory"
	"salone/internal/store"
)

const testSecret = "test-secret-for-http-tests"

type fakePublisher struct {
	messages []*amqp.ChangeMessage
}

func (f *fakePublisher) PublishChange(_ context.Context, msg *amqp.ChangeMessage) error {
	f.messages = append(f.messages, msg)
	return nil
}

func newTestServer(t *testing.T) (*Server, *memory.Store, *fakePublisher) {
	t.Helper()
	g := memory.New()
	pub := &fakePublisher{}
	s := NewServer(":0", store.NewManager(g), Options{
		JWTSecret:         testSecret,
		Publisher:         pub,
		Formatter:         core.Formatter{Symbol: "€", DecimalComma: true},
		Location:          time.UTC,
		LowStockThreshold: 5,
	})
	t.Cleanup(func() { s.rateLimiter.stop() })
	s.now = func() time.Time { return time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC) }
	return s, g, pub
}

func bearer(t *testing.T, owner string) string {
	t.Helper()
	token, err := auth.NewToken(testSecret, owner, time.Hour)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	return "Bearer " + token
}

func doRequest(t *testing.T, s *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func TestHealthEndpointsNeedNoAuth(t *testing.T) {
	s, _, _ := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		if rec := doRequest(t, s, http.MethodGet, path, "", ""); rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestAPIRejectsMissingToken(t *testing.T) {
	s, _, _ := newTestServer(t)
	if rec := doRequest(t, s, http.MethodGet, "/api/clients", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestClientLifecycleAndOwnerScoping(t *testing.T) {
	s, _, _ := newTestServer(t)
	anna := bearer(t, "anna")
	marco := bearer(t, "marco")

	rec := doRequest(t, s, http.MethodPost, "/api/clients", anna,
		`{"name":"Pia","phone":"333","email":"pia@example.com","notes":""}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decode[clientResponse](t, rec)
	if created.ID == 0 || created.Name != "Pia" {
		t.Fatalf("created = %+v", created)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/clients", anna, "")
	if got := decode[[]clientResponse](t, rec); len(got) != 1 {
		t.Fatalf("anna sees %d clients, want 1", len(got))
	}

	rec = doRequest(t, s, http.MethodGet, "/api/clients", marco, "")
	if got := decode[[]clientResponse](t, rec); len(got) != 0 {
		t.Fatalf("marco sees %d clients, want 0", len(got))
	}

	path := fmt.Sprintf("/api/clients/%d", created.ID)
	rec = doRequest(t, s, http.MethodPut, path, anna,
		`{"name":"Pia Rossi","phone":"333","email":"pia@example.com","notes":"vip"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}

	if rec = doRequest(t, s, http.MethodDelete, path, anna, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
}

func TestCreateClientValidation(t *testing.T) {
	s, _, _ := newTestServer(t)
	anna := bearer(t, "anna")

	rec := doRequest(t, s, http.MethodPost, "/api/clients", anna, `{"name":""}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty name status = %d, want 422", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/clients", anna, `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d, want 400", rec.Code)
	}
}

func TestUpdateUnknownClientNotFound(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodPut, "/api/clients/999", bearer(t, "anna"),
		`{"name":"Ghost"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestProductPriceParsingAndLowStock(t *testing.T) {
	s, _, _ := newTestServer(t)
	anna := bearer(t, "anna")

	rec := doRequest(t, s, http.MethodPost, "/api/products", anna,
		`{"name":"Shampoo","price":"12,50","quantity":3}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	p := decode[productResponse](t, rec)
	if p.PriceCents != 1250 || p.Price != "€12,50" {
		t.Fatalf("price = %d / %s, want 1250 / €12,50", p.PriceCents, p.Price)
	}
	if !p.LowStock {
		t.Fatal("quantity 3 with threshold 5 should flag low stock")
	}

	rec = doRequest(t, s, http.MethodPost, "/api/products", anna,
		`{"name":"Conditioner","price":"-4.00","quantity":1}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("negative price status = %d, want 422", rec.Code)
	}
}

func TestAppointmentRequiresExistingReferences(t *testing.T) {
	s, _, _ := newTestServer(t)
	anna := bearer(t, "anna")

	rec := doRequest(t, s, http.MethodPost, "/api/appointments", anna,
		`{"client_id":1,"professional_id":1,"service":"cut","price":"35.00","starts_at":"2026-09-01T09:00:00Z"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("dangling refs status = %d, want 422", rec.Code)
	}

	doRequest(t, s, http.MethodPost, "/api/clients", anna, `{"name":"Pia"}`)
	doRequest(t, s, http.MethodPost, "/api/professionals", anna, `{"name":"Sara"}`)

	rec = doRequest(t, s, http.MethodGet, "/api/clients", anna, "")
	clientID := decode[[]clientResponse](t, rec)[0].ID
	rec = doRequest(t, s, http.MethodGet, "/api/professionals", anna, "")
	proID := decode[[]professionalResponse](t, rec)[0].ID

	body := fmt.Sprintf(
		`{"client_id":%d,"professional_id":%d,"service":"cut","price":"35.00","starts_at":"2026-09-01T09:00:00Z"}`,
		clientID, proID)
	rec = doRequest(t, s, http.MethodPost, "/api/appointments", anna, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestFinanceMutationsPublishChanges(t *testing.T) {
	s, _, pub := newTestServer(t)
	anna := bearer(t, "anna")

	rec := doRequest(t, s, http.MethodPost, "/api/financial-entries", anna,
		`{"description":"rent","amount":"800.00","type":"expense","recurrence":"fixed","date":"2026-09-01"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	entry := decode[financeResponse](t, rec)

	rec = doRequest(t, s, http.MethodDelete, fmt.Sprintf("/api/financial-entries/%d", entry.ID), anna, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	if len(pub.messages) != 2 {
		t.Fatalf("published %d messages, want 2", len(pub.messages))
	}
	if pub.messages[0].Action != "insert" || pub.messages[1].Action != "delete" {
		t.Fatalf("actions = [%s %s], want [insert delete]", pub.messages[0].Action, pub.messages[1].Action)
	}
	if pub.messages[0].Collection != "financial_entries" || pub.messages[0].OwnerID != "anna" {
		t.Fatalf("message = %+v", pub.messages[0])
	}
}

func TestGatewayFailureIsBadGateway(t *testing.T) {
	s, g, _ := newTestServer(t)
	anna := bearer(t, "anna")

	// First request loads the store; arm the failure afterwards.
	doRequest(t, s, http.MethodGet, "/api/clients", anna, "")
	g.FailNext("connection refused")

	rec := doRequest(t, s, http.MethodPost, "/api/clients", anna, `{"name":"Pia"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestScheduleRoundTrip(t *testing.T) {
	s, _, _ := newTestServer(t)
	anna := bearer(t, "anna")

	rec := doRequest(t, s, http.MethodPut, "/api/schedule/hours", anna,
		`{"weekday":2,"opens":"09:00","closes":"18:00"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("put hours status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, s, http.MethodPut, "/api/schedule/hours", anna,
		`{"weekday":2,"opens":"18:00","closes":"09:00"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("inverted range status = %d, want 422", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/schedule/exceptions", anna,
		`{"date":"2026-12-25","description":"holidays"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create exception status = %d, body %s", rec.Code, rec.Body.String())
	}
	exc := decode[exceptionResponse](t, rec)
	if !exc.ClosedAll {
		t.Fatal("exception without times should read closed all day")
	}

	rec = doRequest(t, s, http.MethodGet, "/api/schedule/hours", anna, "")
	hours := decode[[]hoursResponse](t, rec)
	if len(hours) != 1 || hours[0].Weekday != 2 {
		t.Fatalf("hours = %+v", hours)
	}
}

func TestDashboardSummary(t *testing.T) {
	s, _, _ := newTestServer(t)
	anna := bearer(t, "anna")

	doRequest(t, s, http.MethodPost, "/api/clients", anna, `{"name":"Pia"}`)
	doRequest(t, s, http.MethodPost, "/api/professionals", anna, `{"name":"Sara"}`)

	rec := doRequest(t, s, http.MethodGet, "/api/clients", anna, "")
	clientID := decode[[]clientResponse](t, rec)[0].ID
	rec = doRequest(t, s, http.MethodGet, "/api/professionals", anna, "")
	proID := decode[[]professionalResponse](t, rec)[0].ID

	for _, a := range []struct {
		service string
		price   string
		at      string
	}{
		{"cut", "33.30", "2026-09-01T09:00:00Z"},
		{"cut", "33.40", "2026-09-01T11:00:00Z"},
		{"color", "60.00", "2026-08-20T11:00:00Z"},
	} {
		body := fmt.Sprintf(
			`{"client_id":%d,"professional_id":%d,"service":"%s","price":"%s","starts_at":"%s"}`,
			clientID, proID, a.service, a.price, a.at)
		if rec := doRequest(t, s, http.MethodPost, "/api/appointments", anna, body); rec.Code != http.StatusCreated {
			t.Fatalf("seed appointment: %d %s", rec.Code, rec.Body.String())
		}
	}

	doRequest(t, s, http.MethodPost, "/api/financial-entries", anna,
		`{"description":"day takings","amount":"66.70","type":"revenue","recurrence":"one_off","date":"2026-09-01"}`)
	doRequest(t, s, http.MethodPost, "/api/financial-entries", anna,
		`{"description":"rent","amount":"800.00","type":"expense","recurrence":"fixed","date":"2026-09-01"}`)

	rec = doRequest(t, s, http.MethodGet, "/api/dashboard/summary", anna, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d, body %s", rec.Code, rec.Body.String())
	}
	sum := decode[dashboardSummaryResponse](t, rec)

	if sum.Daily.EarningsCents != 6670 || sum.Daily.AppointmentCount != 2 {
		t.Fatalf("daily = %+v, want 6670 cents over 2 appointments", sum.Daily)
	}
	// (3330+3340+1)/2 rounds half-up to 3335
	if sum.Daily.AvgTicketCents != 3335 {
		t.Fatalf("avg ticket = %d, want 3335", sum.Daily.AvgTicketCents)
	}
	if sum.Monthly.NetProfitCents != 6670-80000 {
		t.Fatalf("net profit = %d, want %d", sum.Monthly.NetProfitCents, 6670-80000)
	}
	if sum.Monthly.NetProfit != "-€733,30" {
		t.Fatalf("formatted net profit = %s, want -€733,30", sum.Monthly.NetProfit)
	}
	if len(sum.TopServices) == 0 || sum.TopServices[0].Service != "cut" {
		t.Fatalf("top services = %+v, want cut first", sum.TopServices)
	}
	if len(sum.Performance) != 1 || sum.Performance[0].Name != "Sara" {
		t.Fatalf("performance = %+v, want Sara", sum.Performance)
	}
}

func TestDashboardWeeklyOmitsEmptyDays(t *testing.T) {
	s, _, _ := newTestServer(t)
	anna := bearer(t, "anna")

	doRequest(t, s, http.MethodPost, "/api/financial-entries", anna,
		`{"description":"takings","amount":"50.00","type":"revenue","recurrence":"one_off","date":"2026-08-28"}`)
	doRequest(t, s, http.MethodPost, "/api/financial-entries", anna,
		`{"description":"takings","amount":"70.00","type":"revenue","recurrence":"one_off","date":"2026-09-01"}`)
	// Expenses never show up in earnings.
	doRequest(t, s, http.MethodPost, "/api/financial-entries", anna,
		`{"description":"supplies","amount":"20.00","type":"expense","recurrence":"one_off","date":"2026-08-30"}`)

	rec := doRequest(t, s, http.MethodGet, "/api/dashboard/weekly", anna, "")
	rows := decode[[]dayEarningsResponse](t, rec)
	if len(rows) != 2 {
		t.Fatalf("weekly rows = %+v, want exactly 2 non-empty days", rows)
	}
	if rows[0].Date != "2026-08-28" || rows[1].Date != "2026-09-01" {
		t.Fatalf("dates = [%s %s], want ascending", rows[0].Date, rows[1].Date)
	}
}
