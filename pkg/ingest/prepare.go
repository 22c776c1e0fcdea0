package ingest

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/coolbeans/tramita/pkg/types"
)

// DefaultMinYear is the earliest proposal year kept by FilterFromYear.
const DefaultMinYear = 2009

// DedupOrder selects whether duplicates are removed before or after the
// descending sort, which decides which duplicate survives.
type DedupOrder string

const (
	// DedupBeforeSort keeps the first duplicate in input order.
	DedupBeforeSort DedupOrder = "before-sort"

	// DedupAfterSort keeps the first duplicate in descending project order.
	DedupAfterSort DedupOrder = "after-sort"
)

// ParseDedupOrder validates a dedup order name.
func ParseDedupOrder(value string) (DedupOrder, error) {
	switch order := DedupOrder(value); order {
	case DedupBeforeSort, DedupAfterSort:
		return order, nil
	default:
		return "", fmt.Errorf("unknown dedup order %q (want %q or %q)", value, DedupBeforeSort, DedupAfterSort)
	}
}

// PrepareOptions configures Prepare.
type PrepareOptions struct {
	// MinYear drops proposals older than this year; 0 disables the filter.
	MinYear int

	DedupOrder DedupOrder
}

// PrepareReport counts the rows removed by each preparation step.
type PrepareReport struct {
	Loaded     int `json:"loaded"`
	Incomplete int `json:"incomplete"`
	Duplicates int `json:"duplicates"`
	BeforeYear int `json:"before_year"`
	BadYear    int `json:"bad_year"`
	Kept       int `json:"kept"`
}

// Prepare validates, deduplicates, filters and sorts proposals, in the
// configured order. The input slice is not modified.
func Prepare(proposals []types.Proposal, options PrepareOptions) ([]types.Proposal, PrepareReport) {
	report := PrepareReport{Loaded: len(proposals)}

	prepared, incomplete := DropIncomplete(proposals)
	report.Incomplete = incomplete

	var duplicates int
	if options.DedupOrder != DedupAfterSort {
		prepared, duplicates = Deduplicate(prepared)
	}

	filter := FilterFromYear(prepared, options.MinYear)
	prepared = filter.Kept
	report.BeforeYear = filter.BeforeYear
	report.BadYear = len(filter.BadYear)

	SortByProjectDescending(prepared)

	if options.DedupOrder == DedupAfterSort {
		prepared, duplicates = Deduplicate(prepared)
	}
	report.Duplicates = duplicates
	report.Kept = len(prepared)

	return prepared, report
}

// DropIncomplete removes proposals missing ementa or autor and returns the
// remaining rows with the number removed.
func DropIncomplete(proposals []types.Proposal) ([]types.Proposal, int) {
	kept := make([]types.Proposal, 0, len(proposals))
	for _, proposal := range proposals {
		if !proposal.HasEmenta || !proposal.HasAutor {
			continue
		}
		kept = append(kept, proposal)
	}
	return kept, len(proposals) - len(kept)
}

// Deduplicate keeps the first proposal of every (projeto, data_publicacao)
// pair. projeto is compared as written.
func Deduplicate(proposals []types.Proposal) ([]types.Proposal, int) {
	type dedupKey struct {
		projeto        string
		dataPublicacao string
	}

	seen := make(map[dedupKey]struct{}, len(proposals))
	kept := make([]types.Proposal, 0, len(proposals))
	for _, proposal := range proposals {
		key := dedupKey{projeto: proposal.Projeto, dataPublicacao: proposal.DataPublicacao}
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, proposal)
	}
	return kept, len(proposals) - len(kept)
}

// YearFilter is the outcome of FilterFromYear.
type YearFilter struct {
	Kept       []types.Proposal
	BeforeYear int

	// BadYear holds the projeto values whose year part is not a number.
	BadYear []string
}

// FilterFromYear keeps proposals whose projeto year is at least minYear.
// A minYear of 0 or less keeps every row, including unparseable ones.
func FilterFromYear(proposals []types.Proposal, minYear int) YearFilter {
	if minYear <= 0 {
		kept := make([]types.Proposal, len(proposals))
		copy(kept, proposals)
		return YearFilter{Kept: kept}
	}

	filter := YearFilter{Kept: make([]types.Proposal, 0, len(proposals))}
	for _, proposal := range proposals {
		year, err := strconv.Atoi(proposal.ProjectYear())
		if err != nil {
			filter.BadYear = append(filter.BadYear, proposal.Projeto)
			continue
		}
		if year < minYear {
			filter.BeforeYear++
			continue
		}
		filter.Kept = append(filter.Kept, proposal)
	}
	return filter
}

// SortByProjectDescending orders proposals by year, then number, both
// descending and compared as strings. Equal keys keep their relative order.
func SortByProjectDescending(proposals []types.Proposal) {
	sort.SliceStable(proposals, func(i, j int) bool {
		yearI, yearJ := proposals[i].ProjectYear(), proposals[j].ProjectYear()
		if yearI != yearJ {
			return yearI > yearJ
		}
		return proposals[i].ProjectNumber() > proposals[j].ProjectNumber()
	})
}
