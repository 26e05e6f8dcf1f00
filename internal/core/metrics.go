package core

import (
	"sort"
	"time"
)

// Derived business metrics. Every function here is pure and synchronous:
// it takes an entry-store snapshot plus an explicit reference instant and
// location, performs integer arithmetic only, and never does I/O. Outputs
// stay in minor units; formatting is the caller's job.

type (
	// DayKPIs summarizes one calendar day of appointments.
	DayKPIs struct {
		EarningsCents    int64
		AppointmentCount int
		AvgTicketCents   int64
	}

	// DayEarnings is one grouped day of revenue.
	DayEarnings struct {
		Date          Date
		EarningsCents int64
	}

	// MonthKPIs summarizes one calendar month of financial entries.
	// NetProfitCents is signed and may be negative.
	MonthKPIs struct {
		RevenueCents   int64
		ExpensesCents  int64
		NetProfitCents int64
	}

	ServiceCount struct {
		Service string
		Count   int
	}

	ProfessionalCount struct {
		ProfessionalID int64
		Count          int
	}
)

func dayIn(t time.Time, loc *time.Location) (int, time.Month, int) {
	return t.In(loc).Date()
}

// DailyKPIs sums the appointments whose start falls on the reference day in
// the given location. The average ticket rounds half-up to the nearest cent.
func DailyKPIs(appointments []Appointment, ref time.Time, loc *time.Location) DayKPIs {
	if loc == nil {
		loc = time.UTC
	}
	ry, rm, rd := dayIn(ref, loc)
	var k DayKPIs
	for _, a := range appointments {
		y, m, d := dayIn(a.StartsAt, loc)
		if y == ry && m == rm && d == rd {
			k.EarningsCents += a.Price.Cents
			k.AppointmentCount++
		}
	}
	if k.AppointmentCount > 0 {
		n := int64(k.AppointmentCount)
		k.AvgTicketCents = (k.EarningsCents + n/2) / n
	}
	return k
}

// WeeklyEarnings groups revenue entries by date over the trailing window
// [ref-(windowDays-1), ref], inclusive, ordered by date ascending. Days with
// no revenue are omitted, not zero-filled; that is the chosen policy, so a
// seven-day window can legitimately return fewer than seven rows.
func WeeklyEarnings(entries []FinancialEntry, ref Date, windowDays int) []DayEarnings {
	if windowDays < 1 {
		windowDays = 7
	}
	start := Date{Time: ref.AddDate(0, 0, -(windowDays - 1))}
	sums := make(map[string]int64)
	dates := make(map[string]Date)
	for _, e := range entries {
		if e.Type != Revenue {
			continue
		}
		if e.Date.Before(start.Time) || e.Date.After(ref.Time) {
			continue
		}
		key := e.Date.Key()
		sums[key] += e.Amount.Cents
		dates[key] = e.Date
	}
	out := make([]DayEarnings, 0, len(sums))
	for key, cents := range sums {
		out = append(out, DayEarnings{Date: dates[key], EarningsCents: cents})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date.Time)
	})
	return out
}

// MonthlyFinancialKPIs sums revenue and expense amounts independently for
// the entries whose date falls in the given calendar year+month.
func MonthlyFinancialKPIs(entries []FinancialEntry, year int, month int) MonthKPIs {
	var k MonthKPIs
	for _, e := range entries {
		if e.Date.Year() != year || int(e.Date.Month()) != month {
			continue
		}
		switch e.Type {
		case Revenue:
			k.RevenueCents += e.Amount.Cents
		case Expense:
			k.ExpensesCents += e.Amount.Cents
		}
	}
	k.NetProfitCents = k.RevenueCents - k.ExpensesCents
	return k
}

// PopularServices ranks service labels by appointment count over the
// trailing window, descending; ties break by label ascending so the ranking
// is deterministic. The result is truncated to topN (topN <= 0 means all).
func PopularServices(appointments []Appointment, ref time.Time, loc *time.Location, windowDays, topN int) []ServiceCount {
	counts := windowServiceCounts(appointments, ref, loc, windowDays)
	out := make([]ServiceCount, 0, len(counts))
	for svc, n := range counts {
		out = append(out, ServiceCount{Service: svc, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Service < out[j].Service
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// ProfessionalPerformance counts appointments per professional over the
// trailing window. The full list is returned, count descending, ties by
// professional ID ascending.
func ProfessionalPerformance(appointments []Appointment, ref time.Time, loc *time.Location, windowDays int) []ProfessionalCount {
	if loc == nil {
		loc = time.UTC
	}
	if windowDays < 1 {
		windowDays = 30
	}
	counts := make(map[int64]int)
	for _, a := range appointments {
		if inTrailingWindow(a.StartsAt, ref, loc, windowDays) {
			counts[a.ProfessionalID]++
		}
	}
	out := make([]ProfessionalCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, ProfessionalCount{ProfessionalID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ProfessionalID < out[j].ProfessionalID
	})
	return out
}

func windowServiceCounts(appointments []Appointment, ref time.Time, loc *time.Location, windowDays int) map[string]int {
	if loc == nil {
		loc = time.UTC
	}
	if windowDays < 1 {
		windowDays = 30
	}
	counts := make(map[string]int)
	for _, a := range appointments {
		if inTrailingWindow(a.StartsAt, ref, loc, windowDays) {
			counts[a.Service]++
		}
	}
	return counts
}

// inTrailingWindow compares calendar days in loc: the window is the
// windowDays days ending on the reference day, inclusive.
func inTrailingWindow(t, ref time.Time, loc *time.Location, windowDays int) bool {
	ry, rm, rd := dayIn(ref, loc)
	refDay := time.Date(ry, rm, rd, 0, 0, 0, 0, time.UTC)
	y, m, d := dayIn(t, loc)
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	start := refDay.AddDate(0, 0, -(windowDays - 1))
	return !day.Before(start) && !day.After(refDay)
}
