package model

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pages(n int) *int { return &n }

func TestComputeProgress(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   *int
		percent string
		status  string
	}{
		{"unknown total", 40, nil, "0", StatusReading},
		{"zero total", 40, pages(0), "0", StatusReading},
		{"not started", 0, pages(200), "0", StatusNotStarted},
		{"reading", 50, pages(200), "25", StatusReading},
		{"rounded", 1, pages(3), "33.33", StatusReading},
		{"one page short of a long book", 199999, pages(200000), "99.99", StatusReading},
		{"last page", 200, pages(200), "100", StatusCompleted},
		{"past the end", 250, pages(200), "100", StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeProgress(tt.current, tt.total)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.percent).Equal(got.Percent), "percent %s", got.Percent)
			assert.Equal(t, tt.status, got.Status)
		})
	}
}

func TestComputeProgressRejectsNegative(t *testing.T) {
	_, err := ComputeProgress(-1, pages(10))
	assert.ErrorIs(t, err, ErrNegativePage)

	_, err = ComputeProgress(1, pages(-10))
	assert.ErrorIs(t, err, ErrInvalidTotalPages)
}

func TestStatusIsMonotonic(t *testing.T) {
	for _, total := range []int{1, 7, 100, 613} {
		prevRank := -1
		prevPercent := decimal.NewFromInt(-1)
		for page := 0; page <= total+5; page++ {
			got, err := ComputeProgress(page, &total)
			require.NoError(t, err)
			require.GreaterOrEqual(t, Rank(got.Status), prevRank, "total %d page %d", total, page)
			require.True(t, got.Percent.GreaterThanOrEqual(prevPercent), "total %d page %d", total, page)
			require.True(t, got.Percent.LessThanOrEqual(hundred))
			prevRank, prevPercent = Rank(got.Status), got.Percent
		}
		assert.Equal(t, StatusCompleted, statusAt(t, total, total))
	}
}

func statusAt(t *testing.T, page, total int) string {
	t.Helper()
	got, err := ComputeProgress(page, &total)
	require.NoError(t, err)
	return got.Status
}

func TestBulkResultErr(t *testing.T) {
	assert.NoError(t, BulkResult{Succeeded: []uuid.UUID{uuid.New()}}.Err())

	boom := errors.New("boom")
	id := uuid.New()
	res := BulkResult{Failed: []BulkFailure{NewBulkFailure(id, boom)}}
	err := res.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), id.String())
}
