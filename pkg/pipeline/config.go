package pipeline

import (
	"fmt"

	"github.com/coolbeans/tramita/pkg/ingest"
	"github.com/coolbeans/tramita/pkg/store"
	"github.com/coolbeans/tramita/pkg/types"
)

// Config describes one run. It is built once at start-up and passed to Run;
// components never read settings from the environment themselves.
type Config struct {
	DocumentType  types.DocumentType
	ProposalFiles []string
	LawFiles      []string

	// MinYear drops proposals older than this year; 0 keeps every year.
	MinYear int

	DedupOrder ingest.DedupOrder
	WriteMode  store.WriteMode

	// Schema holds the lookup table and the destination tables.
	Schema string

	// DryRun runs every stage except persistence.
	DryRun bool

	// SkipLookup leaves cpfs empty instead of reading the lookup table.
	SkipLookup bool
}

// DefaultConfig returns a configuration with the standard cutoff year,
// dedup order, write mode and schema.
func DefaultConfig() Config {
	return Config{
		MinYear:    ingest.DefaultMinYear,
		DedupOrder: ingest.DedupBeforeSort,
		WriteMode:  store.WriteAppend,
		Schema:     types.DestinationSchema,
	}
}

// Validate checks the configuration. Run reports its errors as ErrConfiguration.
func (c Config) Validate() error {
	switch {
	case !c.DocumentType.Valid():
		return fmt.Errorf("unsupported document type %q", c.DocumentType)
	case len(c.ProposalFiles) == 0:
		return fmt.Errorf("no proposal files")
	case len(c.LawFiles) == 0:
		return fmt.Errorf("no law files")
	case c.MinYear < 0:
		return fmt.Errorf("negative minimum year %d", c.MinYear)
	case c.Schema == "":
		return fmt.Errorf("empty schema")
	}
	if _, err := ingest.ParseDedupOrder(string(c.DedupOrder)); err != nil {
		return err
	}
	if c.WriteMode != store.WriteAppend && c.WriteMode != store.WriteReplace {
		return fmt.Errorf("unknown write mode %q", c.WriteMode)
	}
	return nil
}

// Destination returns the table the run writes to.
func (c Config) Destination() store.Table {
	return store.Table{Schema: c.Schema, Name: c.DocumentType.DestinationTable()}
}
