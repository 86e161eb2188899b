package store

import (
	"strings"
	"time"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// RegistrationFilter narrows the admin registration listing.
type RegistrationFilter struct {
	Search          string // first name, last name, email or confirmation code
	PaymentStatus   string
	ParticipantType string
	DateRange       string // today, last7days, last30days, thisMonth, lastMonth
	Sort            string
	Direction       string // asc or desc
	Page            int
	Limit           int
}

// RegistrationPage is one page of a filtered listing.
type RegistrationPage struct {
	Total       int64
	TotalPages  int
	CurrentPage int
}

func (f RegistrationFilter) normalized() RegistrationFilter {
	f.Search = strings.TrimSpace(f.Search)
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	return f
}

func (f RegistrationFilter) skip() int64 {
	return int64((f.Page - 1) * f.Limit)
}

// sortField maps a requested sort key to a stored field. Unknown keys sort by
// creation time.
func (f RegistrationFilter) sortField() string {
	switch f.Sort {
	case "amount":
		return "amount"
	case "lastName", "last_name":
		return "last_name"
	case "firstName", "first_name":
		return "first_name"
	case "paymentStatus", "payment_status":
		return "payment_status"
	case "totalPaid", "total_paid":
		return "total_paid"
	case "updatedAt", "updated_at":
		return "updated_at"
	default:
		return "created_at"
	}
}

func (f RegistrationFilter) ascending() bool {
	return strings.EqualFold(f.Direction, "asc")
}

func newPage(total int64, f RegistrationFilter) RegistrationPage {
	pages := int((total + int64(f.Limit) - 1) / int64(f.Limit))
	return RegistrationPage{Total: total, TotalPages: pages, CurrentPage: f.Page}
}

// DateRange resolves a named range to [from, to) in now's location.
func DateRange(name string, now time.Time) (from, to time.Time, ok bool) {
	loc := now.Location()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	switch name {
	case "today":
		return startOfDay, startOfDay.AddDate(0, 0, 1), true
	case "last7days":
		return now.AddDate(0, 0, -7), now, true
	case "last30days":
		return now.AddDate(0, 0, -30), now, true
	case "thisMonth":
		return startOfMonth, startOfMonth.AddDate(0, 1, 0), true
	case "lastMonth":
		return startOfMonth.AddDate(0, -1, 0), startOfMonth, true
	}
	return time.Time{}, time.Time{}, false
}
