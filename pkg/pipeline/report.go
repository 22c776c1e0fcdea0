package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coolbeans/tramita/pkg/ingest"
	"github.com/coolbeans/tramita/pkg/linker"
	"github.com/coolbeans/tramita/pkg/types"
)

// Report summarizes one run.
type Report struct {
	RunID        string             `json:"run_id"`
	DocumentType types.DocumentType `json:"document_type"`
	Destination  string             `json:"destination"`
	DryRun       bool               `json:"dry_run"`

	ProposalsLoaded int                  `json:"proposals_loaded"`
	LawsLoaded      int                  `json:"laws_loaded"`
	Prepare         ingest.PrepareReport `json:"prepare"`
	KeyedLaws       int                  `json:"keyed_laws"`
	Link            linker.LinkReport    `json:"link"`

	LookupEntries     int `json:"lookup_entries"`
	AuthorsResolved   int `json:"authors_resolved"`
	AuthorsUnresolved int `json:"authors_unresolved"`

	Persisted int `json:"persisted"`

	// Merged holds the rows produced by the run.
	Merged []types.Merged `json:"-"`
}

// Summary formats the report as a short table for terminal output.
func (r *Report) Summary() string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Run %s (%s)\n", r.RunID, r.DocumentType))
	builder.WriteString(strings.Repeat("─", 48) + "\n")
	builder.WriteString(fmt.Sprintf("  %-28s %d\n", "Proposals loaded:", r.ProposalsLoaded))
	builder.WriteString(fmt.Sprintf("  %-28s %d\n", "  missing ementa/autor:", r.Prepare.Incomplete))
	builder.WriteString(fmt.Sprintf("  %-28s %d\n", "  duplicates:", r.Prepare.Duplicates))
	builder.WriteString(fmt.Sprintf("  %-28s %d\n", "  before cutoff year:", r.Prepare.BeforeYear+r.Prepare.BadYear))
	builder.WriteString(fmt.Sprintf("  %-28s %d\n", "Proposals kept:", r.Prepare.Kept))
	builder.WriteString(fmt.Sprintf("  %-28s %d\n", "Laws loaded:", r.LawsLoaded))
	builder.WriteString(fmt.Sprintf("  %-28s %d\n", "  with proposal citation:", r.KeyedLaws))
	builder.WriteString(fmt.Sprintf("  %-28s %d\n", "Matched proposals:", r.Link.Matched))
	builder.WriteString(fmt.Sprintf("  %-28s %d\n", "Unmatched proposals:", r.Link.Unmatched))
	builder.WriteString(fmt.Sprintf("  %-28s %d\n", "Ambiguous citations:", len(r.Link.Ambiguities)))
	builder.WriteString(fmt.Sprintf("  %-28s %d\n", "Authors resolved:", r.AuthorsResolved))
	builder.WriteString(fmt.Sprintf("  %-28s %d\n", "Authors unresolved:", r.AuthorsUnresolved))
	if r.DryRun {
		builder.WriteString(fmt.Sprintf("  %-28s %s\n", "Persisted:", "dry run"))
	} else {
		builder.WriteString(fmt.Sprintf("  %-28s %d → %s\n", "Persisted:", r.Persisted, r.Destination))
	}

	return builder.String()
}

// IsConfigurationError reports whether err was caused by bad arguments or settings.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func errMissing(component string) error {
	return fmt.Errorf("no %s configured", component)
}
