// Package citation extracts originating-proposal citations from the full text
// of enacted laws. Each document type is described by a declarative Grammar;
// a compiled grammar yields a normalized "NNNN/YYYY" proposal key.
package citation

import (
	"github.com/coolbeans/tramita/pkg/types"
)

// Citation represents one proposal citation found in a law's text.
type Citation struct {
	// Raw text of the match, taken from the normalized input.
	RawText string `json:"raw_text"`

	// Document type whose grammar produced the match.
	Type types.DocumentType `json:"type"`

	// Normalized proposal key, e.g. "0123/2009".
	Key string `json:"key"`

	// Which parser produced this citation.
	Parser string `json:"parser"`

	// Position of the match in the normalized text.
	TextOffset int `json:"text_offset"`
	TextLength int `json:"text_length"`

	// Parsed components for structured access.
	Components CitationComponents `json:"components"`
}

// CitationComponents holds the captured parts of a proposal citation.
type CitationComponents struct {
	// Number as written, before zero padding.
	Number string `json:"number"`
	Year   string `json:"year"`
}
