package citation

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolbeans/tramita/pkg/types"
)

// stubCitationParser is a test double implementing CitationParser.
type stubCitationParser struct {
	name         string
	documentType types.DocumentType
	key          string
}

func (s *stubCitationParser) Name() string                     { return s.name }
func (s *stubCitationParser) DocumentType() types.DocumentType { return s.documentType }
func (s *stubCitationParser) Parse(text string) []*Citation    { return []*Citation{} }
func (s *stubCitationParser) Extract(text string) string       { return s.key }

func TestNewCitationRegistry(t *testing.T) {
	registry := NewCitationRegistry()
	require.NotNil(t, registry)
	assert.Equal(t, 0, registry.Count())
	assert.Empty(t, registry.List())
}

func TestCitationRegistryRegister(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		registry := NewCitationRegistry()
		err := registry.Register(&stubCitationParser{name: "stub", documentType: types.DocumentLei})
		require.NoError(t, err)
		assert.Equal(t, 1, registry.Count())
	})

	t.Run("duplicate_rejected", func(t *testing.T) {
		registry := NewCitationRegistry()
		parser := &stubCitationParser{name: "stub", documentType: types.DocumentLei}
		require.NoError(t, registry.Register(parser))
		assert.Error(t, registry.Register(parser))
	})

	t.Run("nil_rejected", func(t *testing.T) {
		registry := NewCitationRegistry()
		assert.Error(t, registry.Register(nil))
	})

	t.Run("unsupported_type_rejected", func(t *testing.T) {
		registry := NewCitationRegistry()
		err := registry.Register(&stubCitationParser{name: "stub", documentType: "portaria"})
		assert.Error(t, err)
	})
}

func TestCitationRegistryExtract(t *testing.T) {
	registry := NewCitationRegistry()
	require.NoError(t, registry.Register(&stubCitationParser{
		name:         "stub",
		documentType: types.DocumentDecreto,
		key:          "0001/2020",
	}))

	assert.Equal(t, "0001/2020", registry.Extract(types.DocumentDecreto, "anything"))
	assert.Equal(t, "", registry.Extract(types.DocumentLei, "Projeto de Lei 1/2020"))
	assert.Equal(t, "", registry.Extract("portaria", "Projeto de Lei 1/2020"))
}

func TestDefaultRegistry(t *testing.T) {
	registry, err := NewDefaultRegistry()
	require.NoError(t, err)

	assert.Equal(t, []types.DocumentType{
		types.DocumentDecreto,
		types.DocumentEmenda,
		types.DocumentLei,
		types.DocumentLeiComp,
	}, registry.List())
	assert.Equal(t, "0123/2009", registry.Extract(types.DocumentLei, "Projeto de Lei nº 123/2009"))
}

func TestCitationRegistryConcurrentExtract(t *testing.T) {
	registry, err := NewDefaultRegistry()
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			results[index] = registry.Extract(types.DocumentLei, "Projeto de Lei 45/2010")
		}(i)
	}
	wg.Wait()

	for _, result := range results {
		assert.Equal(t, "0045/2010", result)
	}
}
