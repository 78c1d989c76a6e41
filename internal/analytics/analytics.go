// Package analytics summarizes the catalog into chart-ready figures.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"bookscanner/internal/catalog"

	"github.com/kljensen/snowball"
)

const DefaultTopWords = 50

type Source interface {
	Stats(ctx context.Context) (catalog.Stats, error)
	YearCounts(ctx context.Context) ([]catalog.YearCount, error)
	KeywordRows(ctx context.Context) ([]string, error)
}

type Summary struct {
	TotalBooks    int  `json:"total_books"`
	EnrichedBooks int  `json:"enriched_books"`
	UniqueAuthors int  `json:"unique_authors"`
	AverageYear   *int `json:"average_year"`
}

type EnrichmentSplit struct {
	Enriched    int `json:"enriched"`
	NotEnriched int `json:"not_enriched"`
}

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

type Report struct {
	Summary          Summary             `json:"summary"`
	YearDistribution []catalog.YearCount `json:"year_distribution"`
	Enrichment       EnrichmentSplit     `json:"enrichment"`
	WordCloud        []WordCount         `json:"word_cloud"`
}

type Service struct {
	src Source
}

func NewService(src Source) *Service {
	return &Service{src: src}
}

func (s *Service) Report(ctx context.Context, topWords int) (Report, error) {
	stats, err := s.src.Stats(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("stats: %w", err)
	}
	years, err := s.src.YearCounts(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("year counts: %w", err)
	}
	rows, err := s.src.KeywordRows(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("keywords: %w", err)
	}

	if years == nil {
		years = []catalog.YearCount{}
	}
	return Report{
		Summary:          Summarize(stats),
		YearDistribution: years,
		Enrichment:       Split(stats),
		WordCloud:        WordCloud(rows, topWords),
	}, nil
}

// Summarize truncates the average year to a whole year.
func Summarize(st catalog.Stats) Summary {
	s := Summary{
		TotalBooks:    st.TotalBooks,
		EnrichedBooks: st.EnrichedBooks,
		UniqueAuthors: st.UniqueAuthors,
	}
	if st.AverageYear != nil {
		avg := int(*st.AverageYear)
		s.AverageYear = &avg
	}
	return s
}

func Split(st catalog.Stats) EnrichmentSplit {
	return EnrichmentSplit{
		Enriched:    st.EnrichedBooks,
		NotEnriched: st.TotalBooks - st.EnrichedBooks,
	}
}

type stemBucket struct {
	count int
	forms map[string]int
	first string
}

// WordCloud counts keywords across rows of ", "-joined keyword lists.
// Inflections sharing an English stem are counted together and shown
// under their most frequent spelling. At most n words are returned,
// most frequent first.
func WordCloud(rows []string, n int) []WordCount {
	buckets := map[string]*stemBucket{}
	for _, row := range rows {
		for _, w := range strings.Split(row, ",") {
			w = strings.ToLower(strings.TrimSpace(w))
			if w == "" {
				continue
			}
			stem, err := snowball.Stem(w, "english", true)
			if err != nil || stem == "" {
				stem = w
			}
			b, ok := buckets[stem]
			if !ok {
				b = &stemBucket{forms: map[string]int{}, first: w}
				buckets[stem] = b
			}
			b.count++
			b.forms[w]++
		}
	}

	out := make([]WordCount, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, WordCount{Word: b.label(), Count: b.count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func (b *stemBucket) label() string {
	best, bestCount := b.first, b.forms[b.first]
	for form, c := range b.forms {
		if c > bestCount || (c == bestCount && form < best) {
			best, bestCount = form, c
		}
	}
	return best
}
