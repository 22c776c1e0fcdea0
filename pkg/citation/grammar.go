package citation

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coolbeans/tramita/pkg/types"
)

//go:embed grammars.yaml
var defaultGrammarsYAML []byte

// Grammar declares how one document type cites its originating proposal.
//
// A citation is one of Prefixes, an optional Marker, the proposal number, an
// optional single-letter suffix with optional hyphen, one of Separators and
// the year. Literals are compared against normalized text (see Normalize).
type Grammar struct {
	Type       types.DocumentType `yaml:"type" json:"type"`
	Prefixes   []string           `yaml:"prefixes" json:"prefixes"`
	Marker     string             `yaml:"marker,omitempty" json:"marker,omitempty"`
	Separators []string           `yaml:"separators" json:"separators"`

	// OptionalSeparator allows the number and year to be adjacent.
	OptionalSeparator bool `yaml:"optional_separator,omitempty" json:"optional_separator,omitempty"`
}

// GrammarSet is the document form of a grammar file.
type GrammarSet struct {
	Grammars []Grammar `yaml:"grammars" json:"grammars"`
}

// DefaultGrammars returns the built-in grammars for every supported type.
func DefaultGrammars() ([]Grammar, error) {
	return ParseGrammars(defaultGrammarsYAML)
}

// LoadGrammars reads and validates a grammar file.
func LoadGrammars(path string) ([]Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read grammar file: %w", err)
	}
	return ParseGrammars(data)
}

// ParseGrammars decodes and validates grammars from YAML.
func ParseGrammars(data []byte) ([]Grammar, error) {
	var grammarSet GrammarSet
	if err := yaml.Unmarshal(data, &grammarSet); err != nil {
		return nil, fmt.Errorf("failed to parse grammars: %w", err)
	}
	if len(grammarSet.Grammars) == 0 {
		return nil, fmt.Errorf("grammar file defines no grammars")
	}

	seen := make(map[types.DocumentType]bool, len(grammarSet.Grammars))
	for i, grammar := range grammarSet.Grammars {
		if err := grammar.Validate(); err != nil {
			return nil, fmt.Errorf("grammar %d: %w", i, err)
		}
		if seen[grammar.Type] {
			return nil, fmt.Errorf("grammar %s: defined more than once", grammar.Type)
		}
		seen[grammar.Type] = true
	}
	return grammarSet.Grammars, nil
}

// Validate checks that the grammar names a supported type and has at least one
// non-empty prefix and separator.
func (g Grammar) Validate() error {
	if !g.Type.Valid() {
		return fmt.Errorf("unsupported document type %q", g.Type)
	}
	if len(g.Prefixes) == 0 {
		return fmt.Errorf("grammar %s: at least one prefix is required", g.Type)
	}
	for _, prefix := range g.Prefixes {
		if prefix == "" {
			return fmt.Errorf("grammar %s: empty prefix", g.Type)
		}
	}
	if len(g.Separators) == 0 && !g.OptionalSeparator {
		return fmt.Errorf("grammar %s: separators are required unless optional_separator is set", g.Type)
	}
	return nil
}

// Compile builds the search pattern for the grammar. The pattern has exactly
// two capture groups: the number and the year.
func (g Grammar) Compile() (*regexp.Regexp, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	var builder strings.Builder
	builder.WriteString("(?:")
	builder.WriteString(quoteAlternatives(g.Prefixes))
	builder.WriteString(")")
	if g.Marker != "" {
		builder.WriteString("(?:")
		builder.WriteString(regexp.QuoteMeta(g.Marker))
		builder.WriteString(")?")
	}
	builder.WriteString(`(\d+)-?\w?`)
	if len(g.Separators) > 0 {
		builder.WriteString("(?:")
		builder.WriteString(quoteAlternatives(g.Separators))
		builder.WriteString(")")
		if g.OptionalSeparator {
			builder.WriteString("?")
		}
	}
	builder.WriteString(`(\d+)`)

	pattern, err := regexp.Compile(builder.String())
	if err != nil {
		return nil, fmt.Errorf("grammar %s: failed to compile pattern: %w", g.Type, err)
	}
	return pattern, nil
}

func quoteAlternatives(literals []string) string {
	quoted := make([]string, len(literals))
	for i, literal := range literals {
		quoted[i] = regexp.QuoteMeta(literal)
	}
	return strings.Join(quoted, "|")
}
