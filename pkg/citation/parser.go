package citation

import "github.com/coolbeans/tramita/pkg/types"

// CitationParser extracts proposal citations for a single document type.
// Implementations must be safe for concurrent use.
type CitationParser interface {
	// Name returns the human-readable parser name.
	Name() string

	// DocumentType returns the document type this parser recognizes.
	DocumentType() types.DocumentType

	// Parse returns every citation found in text, in text order.
	// Returns an empty slice (not nil) if no citations are found.
	Parse(text string) []*Citation

	// Extract returns the key of the first citation in text, or an empty
	// string when text cites no proposal of this type.
	Extract(text string) string
}
