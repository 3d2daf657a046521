package model

import (
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// placeholders for a missing publication year, chosen so the book is
// excluded by a lower bound and kept by an upper bound
const (
	missingYearFrom = 0
	missingYearTo   = 9999
)

// Apply filters and sorts search results in memory. The input is not
// modified. Relevance keeps the order the search returned.
func Apply(results []Result, f Filters) []Result {
	out := make([]Result, 0, len(results))
	minRating := decimal.NewFromFloat(f.MinRating)

	for _, r := range results {
		if f.CategoryID != "" && (r.CategoryID == nil || r.CategoryID.String() != f.CategoryID) {
			continue
		}
		if f.MinRating > 0 && r.AverageRating.LessThan(minRating) {
			continue
		}
		if f.YearFrom > 0 && yearOr(r.PublicationYear, missingYearFrom) < f.YearFrom {
			continue
		}
		if f.YearTo > 0 && yearOr(r.PublicationYear, missingYearTo) > f.YearTo {
			continue
		}
		out = append(out, r)
	}

	switch f.SortBy {
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].AverageRating.GreaterThan(out[j].AverageRating)
		})
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool {
			return yearOr(out[i].PublicationYear, 0) > yearOr(out[j].PublicationYear, 0)
		})
	case SortTitle:
		c := collate.New(language.Und, collate.IgnoreCase)
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[i].Title, out[j].Title) < 0
		})
	case SortDownloads:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].DownloadCount > out[j].DownloadCount
		})
	}
	return out
}

func yearOr(year *int, fallback int) int {
	if year == nil {
		return fallback
	}
	return *year
}
