package core

import (
	"testing"
	"time"
)

func appt(prof int64, service string, cents int64, at time.Time) Appointment {
	return Appointment{
		ClientID:       1,
		ProfessionalID: prof,
		Service:        service,
		Price:          Money{Cents: cents},
		StartsAt:       at,
	}
}

func TestDailyKPIsAverageRounding(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	appts := []Appointment{
		appt(1, "Taglio", 333, day.Add(10*time.Hour)),
		appt(1, "Piega", 334, day.Add(15*time.Hour)),
		appt(1, "Colore", 9999, day.AddDate(0, 0, 1)), // next day, excluded
	}

	k := DailyKPIs(appts, day, time.UTC)
	if k.AppointmentCount != 2 {
		t.Fatalf("count = %d, want 2", k.AppointmentCount)
	}
	if k.EarningsCents != 667 {
		t.Fatalf("earnings = %d, want 667", k.EarningsCents)
	}
	if k.AvgTicketCents != 334 { // half-up of 333.5
		t.Fatalf("avg ticket = %d, want 334", k.AvgTicketCents)
	}
}

func TestDailyKPIsEmptyDay(t *testing.T) {
	k := DailyKPIs(nil, time.Now(), time.UTC)
	if k.AppointmentCount != 0 || k.EarningsCents != 0 || k.AvgTicketCents != 0 {
		t.Fatalf("empty day: %+v", k)
	}
}

// An appointment just before midnight UTC lands on the previous business day
// when the configured location is west of UTC.
func TestDailyKPIsTimezoneBoundary(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*60*60)
	late := appt(1, "Barba", 500, time.Date(2026, 3, 11, 1, 30, 0, 0, time.UTC))

	if k := DailyKPIs([]Appointment{late}, time.Date(2026, 3, 10, 12, 0, 0, 0, loc), loc); k.AppointmentCount != 1 {
		t.Fatalf("expected appointment on March 10 in UTC-3, got %+v", k)
	}
	if k := DailyKPIs([]Appointment{late}, time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC), time.UTC); k.AppointmentCount != 1 {
		t.Fatalf("expected appointment on March 11 in UTC, got %+v", k)
	}
}

func entry(typ EntryType, cents int64, d Date) FinancialEntry {
	return FinancialEntry{
		Description: "e",
		Amount:      Money{Cents: cents},
		Type:        typ,
		Recurrence:  OneOff,
		Date:        d,
	}
}

func TestWeeklyEarningsOmitsEmptyDays(t *testing.T) {
	ref := NewDate(2026, 3, 10)
	entries := []FinancialEntry{
		entry(Revenue, 1000, NewDate(2026, 3, 4)),
		entry(Revenue, 500, NewDate(2026, 3, 6)),
		entry(Revenue, 700, NewDate(2026, 3, 6)),
		entry(Expense, 400, NewDate(2026, 3, 5)),  // expenses never count
		entry(Revenue, 9000, NewDate(2026, 3, 3)), // before the window
		entry(Revenue, 9000, NewDate(2026, 3, 11)),
	}

	got := WeeklyEarnings(entries, ref, 7)
	if len(got) != 2 {
		t.Fatalf("expected 2 grouped days, got %d: %+v", len(got), got)
	}
	if got[0].Date.Key() != "2026-03-04" || got[0].EarningsCents != 1000 {
		t.Fatalf("day 0 = %+v", got[0])
	}
	if got[1].Date.Key() != "2026-03-06" || got[1].EarningsCents != 1200 {
		t.Fatalf("day 1 = %+v", got[1])
	}
}

func TestWeeklyEarningsWindowInclusive(t *testing.T) {
	ref := NewDate(2026, 3, 10)
	entries := []FinancialEntry{
		entry(Revenue, 100, NewDate(2026, 3, 4)),  // first day of the window
		entry(Revenue, 200, NewDate(2026, 3, 10)), // reference day itself
	}
	if got := WeeklyEarnings(entries, ref, 7); len(got) != 2 {
		t.Fatalf("window edges must be inclusive, got %+v", got)
	}
}

func TestMonthlyFinancialKPIsNegativeNet(t *testing.T) {
	entries := []FinancialEntry{
		entry(Revenue, 500, NewDate(2026, 3, 5)),
		entry(Expense, 700, NewDate(2026, 3, 20)),
		entry(Revenue, 9999, NewDate(2026, 4, 1)), // other month
	}
	k := MonthlyFinancialKPIs(entries, 2026, 3)
	if k.RevenueCents != 500 || k.ExpensesCents != 700 {
		t.Fatalf("sums = %+v", k)
	}
	if k.NetProfitCents != -200 {
		t.Fatalf("net profit = %d, want -200 (not clamped)", k.NetProfitCents)
	}
}

func TestPopularServices(t *testing.T) {
	ref := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	day := func(offset int) time.Time { return ref.AddDate(0, 0, -offset) }
	appts := []Appointment{
		appt(1, "Taglio", 100, day(1)),
		appt(1, "Taglio", 100, day(2)),
		appt(1, "Taglio", 100, day(3)),
		appt(2, "Piega", 100, day(1)),
		appt(2, "Piega", 100, day(2)),
		appt(1, "Colore", 100, day(4)),
		appt(1, "Colore", 100, day(5)),
		appt(1, "Barba", 100, day(0)),
		appt(1, "Vecchio", 100, day(31)), // outside the 30-day window
	}

	got := PopularServices(appts, ref, time.UTC, 30, 3)
	if len(got) != 3 {
		t.Fatalf("topN truncation failed: %+v", got)
	}
	if got[0].Service != "Taglio" || got[0].Count != 3 {
		t.Fatalf("rank 0 = %+v", got[0])
	}
	// Colore and Piega tie at 2; alphabetical order breaks the tie.
	if got[1].Service != "Colore" || got[2].Service != "Piega" {
		t.Fatalf("tie-break order wrong: %+v", got)
	}
}

func TestProfessionalPerformanceFullList(t *testing.T) {
	ref := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	appts := []Appointment{
		appt(7, "Taglio", 100, ref),
		appt(7, "Piega", 100, ref.AddDate(0, 0, -1)),
		appt(3, "Taglio", 100, ref),
		appt(9, "Barba", 100, ref),
	}

	got := ProfessionalPerformance(appts, ref, time.UTC, 30)
	if len(got) != 3 {
		t.Fatalf("expected full list of 3, got %+v", got)
	}
	if got[0].ProfessionalID != 7 || got[0].Count != 2 {
		t.Fatalf("rank 0 = %+v", got[0])
	}
	// 3 and 9 tie at 1; lower ID first.
	if got[1].ProfessionalID != 3 || got[2].ProfessionalID != 9 {
		t.Fatalf("tie-break order wrong: %+v", got)
	}
}
