package model

import "github.com/shopspring/decimal"

const (
	StatusNotStarted = "not_started"
	StatusReading    = "reading"
	StatusCompleted  = "completed"
)

var (
	hundred = decimal.NewFromInt(100)
	// highest percent a book short of its last page can show
	almostDone = decimal.RequireFromString("99.99")
)

// Progress holds the fields derived from a page position.
type Progress struct {
	Percent decimal.Decimal
	Status  string
}

// ComputeProgress derives percent and status from the current page and the
// optional page count. Percent is 0 when the page count is unknown and is
// capped at 100; status only moves forward as currentPage grows. A book is
// completed on its last page, never by rounding.
func ComputeProgress(currentPage int, totalPages *int) (Progress, error) {
	if currentPage < 0 {
		return Progress{}, ErrNegativePage
	}
	if totalPages != nil && *totalPages < 0 {
		return Progress{}, ErrInvalidTotalPages
	}

	known := totalPages != nil && *totalPages > 0
	completed := known && currentPage >= *totalPages

	percent := decimal.Zero
	if known {
		percent = decimal.NewFromInt(int64(currentPage)).
			Mul(hundred).
			Div(decimal.NewFromInt(int64(*totalPages))).
			Round(2)
		switch {
		case completed:
			percent = hundred
		case percent.GreaterThan(almostDone):
			percent = almostDone
		}
	}

	status := StatusNotStarted
	switch {
	case completed:
		status = StatusCompleted
	case currentPage > 0:
		status = StatusReading
	}
	return Progress{Percent: percent, Status: status}, nil
}

// Rank orders statuses so callers can compare them.
func Rank(status string) int {
	switch status {
	case StatusReading:
		return 1
	case StatusCompleted:
		return 2
	default:
		return 0
	}
}
