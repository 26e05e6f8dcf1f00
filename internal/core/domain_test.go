package core

import (
	"errors"
	"testing"
	"time"
)

func TestClientValidate(t *testing.T) {
	cases := []struct {
		name   string
		client Client
		want   error
	}{
		{"valid", Client{Name: "Anna Rossi", Email: "anna@example.com"}, nil},
		{"valid without email", Client{Name: "Anna"}, nil},
		{"empty name", Client{Name: "  "}, ErrEmptyName},
		{"bad email", Client{Name: "Anna", Email: "not-an-email"}, ErrInvalidEmail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.client.Validate(); !errors.Is(err, tc.want) && err != tc.want {
				t.Fatalf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestProductValidateAndLowStock(t *testing.T) {
	p := Product{Name: "Shampoo", Price: Money{Cents: 1500}, Quantity: 5}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if !p.LowStock(5) {
		t.Fatal("quantity=5 must be flagged low stock")
	}
	p.Quantity = 6
	if p.LowStock(5) {
		t.Fatal("quantity=6 must not be flagged low stock")
	}

	if err := (Product{Name: "x", Price: Money{Cents: 0}}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero price: got %v, want ErrInvalidAmount", err)
	}
	if err := (Product{Name: "x", Price: Money{Cents: 100}, Quantity: -1}).Validate(); !errors.Is(err, ErrNegativeQuantity) {
		t.Fatalf("negative quantity: got %v, want ErrNegativeQuantity", err)
	}
}

func TestAppointmentValidate(t *testing.T) {
	valid := Appointment{
		ClientID:       1,
		ProfessionalID: 2,
		Service:        "Taglio",
		Price:          Money{Cents: 2500},
		StartsAt:       time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	cases := []struct {
		name   string
		mutate func(a Appointment) Appointment
		want   error
	}{
		{"no client", func(a Appointment) Appointment { a.ClientID = 0; return a }, ErrMissingClient},
		{"no professional", func(a Appointment) Appointment { a.ProfessionalID = 0; return a }, ErrMissingProfessional},
		{"no service", func(a Appointment) Appointment { a.Service = ""; return a }, ErrEmptyService},
		{"zero price", func(a Appointment) Appointment { a.Price = Money{}; return a }, ErrInvalidAmount},
		{"zero time", func(a Appointment) Appointment { a.StartsAt = time.Time{}; return a }, ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.mutate(valid).Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestFinancialEntryValidate(t *testing.T) {
	valid := FinancialEntry{
		Description: "Affitto",
		Amount:      Money{Cents: 70000},
		Type:        Expense,
		Recurrence:  Fixed,
		Date:        NewDate(2026, 3, 1),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	cases := []struct {
		name   string
		mutate func(e FinancialEntry) FinancialEntry
		want   error
	}{
		{"empty description", func(e FinancialEntry) FinancialEntry { e.Description = " "; return e }, ErrEmptyDescription},
		{"zero amount", func(e FinancialEntry) FinancialEntry { e.Amount = Money{}; return e }, ErrInvalidAmount},
		{"bad type", func(e FinancialEntry) FinancialEntry { e.Type = "profit"; return e }, ErrInvalidEntryType},
		{"bad recurrence", func(e FinancialEntry) FinancialEntry { e.Recurrence = "weekly"; return e }, ErrInvalidRecurrence},
		{"zero date", func(e FinancialEntry) FinancialEntry { e.Date = Date{}; return e }, ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.mutate(valid).Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestBusinessHoursValidate(t *testing.T) {
	cases := []struct {
		name  string
		hours BusinessHours
		ok    bool
	}{
		{"open day", BusinessHours{Weekday: 1, Opens: "09:00", Closes: "18:00"}, true},
		{"closed day", BusinessHours{Weekday: 0}, true},
		{"bad weekday", BusinessHours{Weekday: 7, Opens: "09:00", Closes: "18:00"}, false},
		{"half interval", BusinessHours{Weekday: 2, Opens: "09:00"}, false},
		{"inverted", BusinessHours{Weekday: 2, Opens: "18:00", Closes: "09:00"}, false},
		{"bad clock", BusinessHours{Weekday: 2, Opens: "9am", Closes: "18:00"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.hours.Validate()
			if tc.ok && err != nil {
				t.Fatalf("Validate() = %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected error")
			}
		})
	}

	if !(BusinessHours{Weekday: 0}).Closed() {
		t.Fatal("empty interval must read as closed")
	}
}

func TestBusinessExceptionValidate(t *testing.T) {
	holiday := BusinessException{Date: NewDate(2026, 12, 25), Description: "Natale"}
	if err := holiday.Validate(); err != nil {
		t.Fatalf("closed-all-day exception: %v", err)
	}
	if !holiday.ClosedAllDay() {
		t.Fatal("no times must read as closed all day")
	}

	short := BusinessException{Date: NewDate(2026, 12, 24), Opens: "09:00", Closes: "13:00"}
	if err := short.Validate(); err != nil {
		t.Fatalf("short day exception: %v", err)
	}

	bad := BusinessException{Date: NewDate(2026, 12, 24), Opens: "13:00", Closes: "09:00"}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("inverted interval: got %v", err)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-10")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Key() != "2026-03-10" {
		t.Fatalf("Key() = %q", d.Key())
	}
	if _, err := ParseDate("10/03/2026"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}
