package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func year(y int) *int { return &y }

func titles(rs []Result) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Title
	}
	return out
}

func sample() ([]Result, uuid.UUID) {
	tasawuf := uuid.New()
	fiqh := uuid.New()
	return []Result{
		{Title: "Ihya Ulumiddin", CategoryID: &tasawuf, AverageRating: decimal.RequireFromString("4.8"), DownloadCount: 90, PublicationYear: year(1100)},
		{Title: "al-Munqidh", CategoryID: &tasawuf, AverageRating: decimal.RequireFromString("4.1"), DownloadCount: 300},
		{Title: "Bidayatul Hidayah", CategoryID: &fiqh, AverageRating: decimal.RequireFromString("3.2"), DownloadCount: 10, PublicationYear: year(1990)},
		{Title: "Minhajul Abidin", AverageRating: decimal.Zero, DownloadCount: 45, PublicationYear: year(2005)},
	}, tasawuf
}

func TestApplyRelevanceKeepsOrder(t *testing.T) {
	rs, _ := sample()
	got := Apply(rs, Filters{})
	assert.Equal(t, titles(rs), titles(got))

	got = Apply(rs, Filters{SortBy: SortRelevance})
	assert.Equal(t, titles(rs), titles(got))
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	rs, _ := sample()
	before := titles(rs)
	Apply(rs, Filters{SortBy: SortDownloads, MinRating: 4})
	assert.Equal(t, before, titles(rs))
}

func TestApplyFilters(t *testing.T) {
	rs, tasawuf := sample()

	got := Apply(rs, Filters{CategoryID: tasawuf.String()})
	assert.Equal(t, []string{"Ihya Ulumiddin", "al-Munqidh"}, titles(got))

	got = Apply(rs, Filters{MinRating: 4.1})
	assert.Equal(t, []string{"Ihya Ulumiddin", "al-Munqidh"}, titles(got))

	// a missing year fails a lower bound
	got = Apply(rs, Filters{YearFrom: 1500})
	assert.Equal(t, []string{"Bidayatul Hidayah", "Minhajul Abidin"}, titles(got))

	// and passes an upper bound only when the bound is 9999 or more
	got = Apply(rs, Filters{YearTo: 2000})
	assert.Equal(t, []string{"Ihya Ulumiddin", "Bidayatul Hidayah"}, titles(got))
	got = Apply(rs, Filters{YearTo: 9999})
	assert.Len(t, got, 4)
}

func TestApplySorts(t *testing.T) {
	rs, _ := sample()

	assert.Equal(t,
		[]string{"Ihya Ulumiddin", "al-Munqidh", "Bidayatul Hidayah", "Minhajul Abidin"},
		titles(Apply(rs, Filters{SortBy: SortRating})))
	assert.Equal(t,
		[]string{"Minhajul Abidin", "Bidayatul Hidayah", "Ihya Ulumiddin", "al-Munqidh"},
		titles(Apply(rs, Filters{SortBy: SortNewest})))
	assert.Equal(t,
		[]string{"al-Munqidh", "Bidayatul Hidayah", "Ihya Ulumiddin", "Minhajul Abidin"},
		titles(Apply(rs, Filters{SortBy: SortTitle})))
	assert.Equal(t,
		[]string{"al-Munqidh", "Ihya Ulumiddin", "Minhajul Abidin", "Bidayatul Hidayah"},
		titles(Apply(rs, Filters{SortBy: SortDownloads})))
}

func TestApplyTitleSortIgnoresCaseAndAccents(t *testing.T) {
	rs := []Result{{Title: "Zad al-Ma'ad"}, {Title: "Étude des hadiths"}, {Title: "ebook of duas"}}

	assert.Equal(t,
		[]string{"ebook of duas", "Étude des hadiths", "Zad al-Ma'ad"},
		titles(Apply(rs, Filters{SortBy: SortTitle})))
}

func TestPopularTerms(t *testing.T) {
	authors := []string{"Imam Al-Ghazali", "Imam Nawawi", "Ibnu Athaillah", " ", "Syekh Abdul Qadir", "Hamka", "Buya Hamka", "Quraish Shihab"}
	assert.Equal(t, []string{"Imam", "Ibnu", "Syekh", "Hamka", "Buya", "Quraish"}, PopularTerms(authors, 6))
	assert.Equal(t, []string{"Imam"}, PopularTerms(authors, 1))
	assert.Empty(t, PopularTerms(nil, 6))
}

func TestFiltersValidate(t *testing.T) {
	assert.NoError(t, Filters{SortBy: SortTitle, MinRating: 4.5}.Validate())
	assert.Error(t, Filters{SortBy: "price"}.Validate())
	assert.Error(t, Filters{MinRating: 6}.Validate())
}
