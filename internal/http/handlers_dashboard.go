package http

import (
	"net/http"
	"strconv"
	"time"

	"salone/internal/core"
	"salone/internal/store"
)

// Dashboard handlers compute everything from the owner's snapshots; no
// gateway round-trips. Reference day defaults to "today" in the business
// timezone, overridable per request for daily figures.

type dayKPIsResponse struct {
	Date             string `json:"date"`
	EarningsCents    int64  `json:"earnings_cents"`
	Earnings         string `json:"earnings"`
	AppointmentCount int    `json:"appointment_count"`
	AvgTicketCents   int64  `json:"avg_ticket_cents"`
	AvgTicket        string `json:"avg_ticket"`
}

type dayEarningsResponse struct {
	Date          string `json:"date"`
	EarningsCents int64  `json:"earnings_cents"`
	Earnings      string `json:"earnings"`
}

type monthKPIsResponse struct {
	Year           int    `json:"year"`
	Month          int    `json:"month"`
	RevenueCents   int64  `json:"revenue_cents"`
	Revenue        string `json:"revenue"`
	ExpensesCents  int64  `json:"expenses_cents"`
	Expenses       string `json:"expenses"`
	NetProfitCents int64  `json:"net_profit_cents"`
	NetProfit      string `json:"net_profit"`
}

type serviceCountResponse struct {
	Service string `json:"service"`
	Count   int    `json:"count"`
}

type professionalCountResponse struct {
	ProfessionalID int64  `json:"professional_id"`
	Name           string `json:"name"`
	Count          int    `json:"count"`
}

// refTime resolves the optional date query parameter in the business
// timezone; midday avoids any edge from DST transitions at midnight.
func (s *Server) refTime(r *http.Request) (time.Time, error) {
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := core.ParseDate(raw)
		if err != nil {
			return time.Time{}, err
		}
		return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, s.loc), nil
	}
	return s.now().In(s.loc), nil
}

func queryInt(r *http.Request, key string, def int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func (s *Server) dailyKPIs(st *store.Store, ref time.Time) dayKPIsResponse {
	k := core.DailyKPIs(st.Appointments.Snapshot(), ref, s.loc)
	y, m, d := ref.In(s.loc).Date()
	return dayKPIsResponse{
		Date:             core.NewDate(y, int(m), d).Key(),
		EarningsCents:    k.EarningsCents,
		Earnings:         s.formatter.Format(k.EarningsCents),
		AppointmentCount: k.AppointmentCount,
		AvgTicketCents:   k.AvgTicketCents,
		AvgTicket:        s.formatter.Format(k.AvgTicketCents),
	}
}

func (s *Server) weeklyEarnings(st *store.Store, ref time.Time, days int) []dayEarningsResponse {
	y, m, d := ref.In(s.loc).Date()
	rows := core.WeeklyEarnings(st.Finances.Snapshot(), core.NewDate(y, int(m), d), days)
	out := make([]dayEarningsResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, dayEarningsResponse{
			Date:          row.Date.Key(),
			EarningsCents: row.EarningsCents,
			Earnings:      s.formatter.Format(row.EarningsCents),
		})
	}
	return out
}

func (s *Server) monthlyKPIs(st *store.Store, year, month int) monthKPIsResponse {
	k := core.MonthlyFinancialKPIs(st.Finances.Snapshot(), year, month)
	return monthKPIsResponse{
		Year:           year,
		Month:          month,
		RevenueCents:   k.RevenueCents,
		Revenue:        s.formatter.Format(k.RevenueCents),
		ExpensesCents:  k.ExpensesCents,
		Expenses:       s.formatter.Format(k.ExpensesCents),
		NetProfitCents: k.NetProfitCents,
		NetProfit:      s.formatter.Format(k.NetProfitCents),
	}
}

func (s *Server) popularServices(st *store.Store, ref time.Time, days, top int) []serviceCountResponse {
	rows := core.PopularServices(st.Appointments.Snapshot(), ref, s.loc, days, top)
	out := make([]serviceCountResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, serviceCountResponse{Service: row.Service, Count: row.Count})
	}
	return out
}

func (s *Server) professionalPerformance(st *store.Store, ref time.Time, days int) []professionalCountResponse {
	rows := core.ProfessionalPerformance(st.Appointments.Snapshot(), ref, s.loc, days)
	out := make([]professionalCountResponse, 0, len(rows))
	for _, row := range rows {
		name := ""
		if p, ok := st.Professionals.Get(row.ProfessionalID); ok {
			name = p.Name
		}
		out = append(out, professionalCountResponse{
			ProfessionalID: row.ProfessionalID,
			Name:           name,
			Count:          row.Count,
		})
	}
	return out
}

func (s *Server) handleDashboardDaily(w http.ResponseWriter, r *http.Request) {
	st, err := s.storeFor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ref, err := s.refTime(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.dailyKPIs(st, ref))
}

func (s *Server) handleDashboardWeekly(w http.ResponseWriter, r *http.Request) {
	st, err := s.storeFor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ref, err := s.refTime(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.weeklyEarnings(st, ref, queryInt(r, "days", 7)))
}

func (s *Server) handleDashboardMonthly(w http.ResponseWriter, r *http.Request) {
	st, err := s.storeFor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	now := s.now().In(s.loc)
	year := queryInt(r, "year", now.Year())
	month := queryInt(r, "month", int(now.Month()))
	if month < 1 || month > 12 {
		badRequest(w, "invalid month")
		return
	}
	writeJSON(w, http.StatusOK, s.monthlyKPIs(st, year, month))
}

func (s *Server) handleDashboardPopularServices(w http.ResponseWriter, r *http.Request) {
	st, err := s.storeFor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ref, err := s.refTime(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	days := queryInt(r, "days", 30)
	top := queryInt(r, "top", 5)
	writeJSON(w, http.StatusOK, s.popularServices(st, ref, days, top))
}

func (s *Server) handleDashboardPerformance(w http.ResponseWriter, r *http.Request) {
	st, err := s.storeFor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ref, err := s.refTime(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.professionalPerformance(st, ref, queryInt(r, "days", 30)))
}

type dashboardSummaryResponse struct {
	Daily        dayKPIsResponse             `json:"daily"`
	Weekly       []dayEarningsResponse       `json:"weekly"`
	Monthly      monthKPIsResponse           `json:"monthly"`
	TopServices  []serviceCountResponse      `json:"top_services"`
	Performance  []professionalCountResponse `json:"professional_performance"`
	LowStock     []productResponse           `json:"low_stock_products"`
	Appointments int                         `json:"appointments_total"`
}

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	st, err := s.storeFor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ref, err := s.refTime(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	now := ref.In(s.loc)

	var low []productResponse
	for _, p := range st.Products.Snapshot() {
		if p.LowStock(s.lowStock) {
			low = append(low, s.toProductResponse(p))
		}
	}

	writeJSON(w, http.StatusOK, dashboardSummaryResponse{
		Daily:        s.dailyKPIs(st, ref),
		Weekly:       s.weeklyEarnings(st, ref, 7),
		Monthly:      s.monthlyKPIs(st, now.Year(), int(now.Month())),
		TopServices:  s.popularServices(st, ref, 30, 5),
		Performance:  s.professionalPerformance(st, ref, 30),
		LowStock:     low,
		Appointments: len(st.Appointments.Snapshot()),
	})
}
