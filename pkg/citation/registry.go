package citation

import (
	"fmt"
	"sort"
	"sync"

	"github.com/coolbeans/tramita/pkg/types"
)

// CitationRegistry holds one citation parser per document type and
// dispatches extraction to it. Thread-safe for concurrent use.
type CitationRegistry struct {
	mu      sync.RWMutex
	parsers map[types.DocumentType]CitationParser
}

// NewCitationRegistry creates an empty citation registry.
func NewCitationRegistry() *CitationRegistry {
	return &CitationRegistry{
		parsers: make(map[types.DocumentType]CitationParser),
	}
}

// NewRegistryFromGrammars compiles a parser for each grammar and registers it.
func NewRegistryFromGrammars(grammars []Grammar) (*CitationRegistry, error) {
	registry := NewCitationRegistry()
	for _, grammar := range grammars {
		parser, err := NewProposalParser(grammar)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(parser); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// NewDefaultRegistry returns a registry built from the embedded grammars.
func NewDefaultRegistry() (*CitationRegistry, error) {
	grammars, err := DefaultGrammars()
	if err != nil {
		return nil, err
	}
	return NewRegistryFromGrammars(grammars)
}

// Register adds a parser to the registry.
// Returns an error if the parser is nil, names an unsupported document type,
// or a parser for the same type is already registered.
func (r *CitationRegistry) Register(parser CitationParser) error {
	if parser == nil {
		return fmt.Errorf("citation parser cannot be nil")
	}
	documentType := parser.DocumentType()
	if !documentType.Valid() {
		return fmt.Errorf("citation parser %q has unsupported document type %q", parser.Name(), documentType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.parsers[documentType]; exists {
		return fmt.Errorf("citation parser for %q already registered", documentType)
	}
	r.parsers[documentType] = parser
	return nil
}

// Get returns the parser for a document type.
func (r *CitationRegistry) Get(documentType types.DocumentType) (CitationParser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	parser, ok := r.parsers[documentType]
	return parser, ok
}

// List returns the registered document types in sorted order.
func (r *CitationRegistry) List() []types.DocumentType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	documentTypes := make([]types.DocumentType, 0, len(r.parsers))
	for documentType := range r.parsers {
		documentTypes = append(documentTypes, documentType)
	}
	sort.Slice(documentTypes, func(i, j int) bool {
		return documentTypes[i] < documentTypes[j]
	})
	return documentTypes
}

// Extract returns the proposal key cited in text for the given document type.
// An unregistered type yields an empty key, as does text without a citation.
func (r *CitationRegistry) Extract(documentType types.DocumentType, text string) string {
	parser, ok := r.Get(documentType)
	if !ok {
		return ""
	}
	return parser.Extract(text)
}

// Count returns the number of registered parsers.
func (r *CitationRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.parsers)
}
