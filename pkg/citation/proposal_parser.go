package citation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/coolbeans/tramita/pkg/types"
)

// keyNumberWidth is the minimum width of the number part of a proposal key.
const keyNumberWidth = 4

// ProposalParser finds proposal citations of one document type.
type ProposalParser struct {
	grammar Grammar
	pattern *regexp.Regexp
}

// NewProposalParser compiles a parser for the given grammar.
func NewProposalParser(grammar Grammar) (*ProposalParser, error) {
	pattern, err := grammar.Compile()
	if err != nil {
		return nil, err
	}
	return &ProposalParser{grammar: grammar, pattern: pattern}, nil
}

// Name returns the parser name.
func (p *ProposalParser) Name() string {
	return fmt.Sprintf("Proposal Citation Parser (%s)", p.grammar.Type)
}

// DocumentType returns the document type of the parser's grammar.
func (p *ProposalParser) DocumentType() types.DocumentType {
	return p.grammar.Type
}

// Grammar returns the grammar the parser was compiled from.
func (p *ProposalParser) Grammar() Grammar {
	return p.grammar
}

// Parse returns every non-overlapping citation in text, leftmost first.
// Offsets refer to the normalized text.
func (p *ProposalParser) Parse(text string) []*Citation {
	normalized := Normalize(text)
	citations := []*Citation{}

	for _, matchIndices := range p.pattern.FindAllStringSubmatchIndex(normalized, -1) {
		number := normalized[matchIndices[2]:matchIndices[3]]
		year := normalized[matchIndices[4]:matchIndices[5]]
		citations = append(citations, &Citation{
			RawText:    normalized[matchIndices[0]:matchIndices[1]],
			Type:       p.grammar.Type,
			Key:        FormatKey(number, year),
			Parser:     p.Name(),
			TextOffset: matchIndices[0],
			TextLength: matchIndices[1] - matchIndices[0],
			Components: CitationComponents{
				Number: number,
				Year:   year,
			},
		})
	}

	return citations
}

// Extract returns the key of the leftmost citation in text, or "" if none.
func (p *ProposalParser) Extract(text string) string {
	match := p.pattern.FindStringSubmatch(Normalize(text))
	if match == nil {
		return ""
	}
	return FormatKey(match[1], match[2])
}

// Normalize prepares citation text for matching: periods are removed, a
// doubled slash is collapsed and then every whitespace rune is dropped.
func Normalize(text string) string {
	cleaned := strings.ReplaceAll(text, ".", "")
	cleaned = strings.ReplaceAll(cleaned, "//", "/")
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, cleaned)
}

// FormatKey builds the "NNNN/YYYY" key, left-padding the number with zeros
// to four digits. Longer numbers are kept as they are.
func FormatKey(number, year string) string {
	if padding := keyNumberWidth - len(number); padding > 0 {
		number = strings.Repeat("0", padding) + number
	}
	return number + "/" + year
}
