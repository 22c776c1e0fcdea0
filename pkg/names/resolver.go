package names

import (
	"strings"

	"github.com/coolbeans/tramita/pkg/types"
)

// Resolver maps normalized council-member names to CPFs.
// It is an immutable snapshot of the lookup table and safe for concurrent use.
type Resolver struct {
	cpfByName map[string]string
	entries   int
}

// Resolution is the outcome of resolving an author field.
type Resolution struct {
	// Cpfs is the comma-joined list of resolved identifiers, in author order.
	Cpfs string

	// Resolved counts names that produced an identifier.
	Resolved int

	// Unresolved lists the names that had no match, as written.
	Unresolved []string
}

// NewResolver builds a resolver from lookup rows. Table names are normalized
// once here; when two rows share a normalized name the first row wins.
func NewResolver(entries []types.LookupEntry) *Resolver {
	cpfByName := make(map[string]string, len(entries))
	for _, entry := range entries {
		normalizedName := Normalize(entry.NomeCamara)
		if normalizedName == "" {
			continue
		}
		if _, exists := cpfByName[normalizedName]; exists {
			continue
		}
		cpfByName[normalizedName] = entry.Cpf
	}
	return &Resolver{cpfByName: cpfByName, entries: len(entries)}
}

// Resolve returns the CPF for a single name. ok is false when the name has no
// exact match after normalization, or when the first matching row carries no
// CPF; absence is an expected outcome.
func (r *Resolver) Resolve(name string) (cpf string, ok bool) {
	normalizedName := Normalize(name)
	if normalizedName == "" {
		return "", false
	}
	cpf, ok = r.cpfByName[normalizedName]
	if !ok || cpf == "" {
		return "", false
	}
	return cpf, true
}

// ResolveAuthors resolves every comma-separated name of an author field
// independently and joins the hits with commas, dropping misses. A field in
// which no name resolves yields an empty Cpfs.
func (r *Resolver) ResolveAuthors(field string) Resolution {
	var resolution Resolution
	cpfs := make([]string, 0, 1)
	for _, name := range SplitAuthors(field) {
		cpf, ok := r.Resolve(name)
		if !ok {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				resolution.Unresolved = append(resolution.Unresolved, trimmed)
			}
			continue
		}
		cpfs = append(cpfs, cpf)
		resolution.Resolved++
	}
	resolution.Cpfs = strings.Join(cpfs, ",")
	return resolution
}

// Size returns the number of distinct normalized names in the snapshot.
func (r *Resolver) Size() int {
	return len(r.cpfByName)
}

// Entries returns the number of lookup rows the snapshot was built from.
func (r *Resolver) Entries() int {
	return r.entries
}
