// Package linker joins proposals to the enacted laws that cite them.
package linker

import (
	"strconv"

	"github.com/coolbeans/tramita/pkg/types"
)

// KeyExtractor extracts the cited proposal key from a law's full text.
// *citation.CitationRegistry satisfies it.
type KeyExtractor interface {
	Extract(documentType types.DocumentType, text string) string
}

// Ambiguity records a key cited by more than one law. Only Chosen is joined.
type Ambiguity struct {
	Key        string      `json:"key"`
	Candidates []types.Law `json:"candidates"`
	Chosen     types.Law   `json:"chosen"`
}

// LinkReport summarizes one join.
type LinkReport struct {
	// Proposals is the number of proposals joined, equal to len(Merged).
	Proposals int `json:"proposals"`

	// Matched counts proposals that found a citing law.
	Matched int `json:"matched"`

	// Unmatched counts proposals given StatusNotApplicable.
	Unmatched int `json:"unmatched"`

	// UnusedLaws counts laws with a key that no proposal carries.
	UnusedLaws int `json:"unused_laws"`

	// KeylessLaws counts laws whose citation could not be extracted.
	KeylessLaws int `json:"keyless_laws"`

	Ambiguities []Ambiguity `json:"ambiguities,omitempty"`
}

// Result is the merged table and its report.
type Result struct {
	Merged []types.Merged
	Report LinkReport
}

// AssignKeys returns a copy of laws with NrProjeto set from each law's
// InteiroTeor. A law without a recognizable citation gets an empty key.
func AssignKeys(laws []types.Law, extractor KeyExtractor, documentType types.DocumentType) []types.Law {
	keyed := make([]types.Law, len(laws))
	for i, law := range laws {
		law.NrProjeto = extractor.Extract(documentType, law.InteiroTeor)
		keyed[i] = law
	}
	return keyed
}

// Link left-joins proposals to laws on projeto == NrProjeto.
//
// Every proposal yields exactly one merged row, in input order. A proposal no
// law cites gets StatusNotApplicable and empty lei and ano. Laws with an empty
// key never match. When several laws share a key the one with the greatest
// numeric ano wins; ties, and years that are not numbers, fall back to the
// first law in input order. Each such key is reported as an Ambiguity.
func Link(proposals []types.Proposal, laws []types.Law) Result {
	chosenByKey, candidatesByKey, keyOrder, keyless := indexLaws(laws)

	result := Result{
		Merged: make([]types.Merged, 0, len(proposals)),
		Report: LinkReport{Proposals: len(proposals), KeylessLaws: keyless},
	}

	usedKeys := make(map[string]bool, len(chosenByKey))
	for _, proposal := range proposals {
		merged := types.Merged{
			Projeto:        proposal.Projeto,
			Ementa:         proposal.Ementa,
			Autor:          proposal.Autor,
			DataPublicacao: proposal.DataPublicacao,
			Status:         types.StatusNotApplicable,
		}
		if law, ok := chosenByKey[proposal.Projeto]; ok {
			merged.Lei = law.Lei
			merged.Ano = law.Ano
			merged.Status = law.Status
			usedKeys[proposal.Projeto] = true
			result.Report.Matched++
		} else {
			result.Report.Unmatched++
		}
		result.Merged = append(result.Merged, merged)
	}

	for _, key := range keyOrder {
		if !usedKeys[key] {
			result.Report.UnusedLaws += len(candidatesByKey[key])
			continue
		}
		if candidates := candidatesByKey[key]; len(candidates) > 1 {
			result.Report.Ambiguities = append(result.Report.Ambiguities, Ambiguity{
				Key:        key,
				Candidates: candidates,
				Chosen:     chosenByKey[key],
			})
		}
	}

	return result
}

// indexLaws groups laws by key and picks the law each key joins to.
func indexLaws(laws []types.Law) (map[string]types.Law, map[string][]types.Law, []string, int) {
	chosenByKey := make(map[string]types.Law)
	candidatesByKey := make(map[string][]types.Law)
	var keyOrder []string
	keyless := 0

	for _, law := range laws {
		key := law.NrProjeto
		if key == "" {
			keyless++
			continue
		}
		current, exists := chosenByKey[key]
		if !exists {
			keyOrder = append(keyOrder, key)
			chosenByKey[key] = law
		} else if laterYear(law.Ano, current.Ano) {
			chosenByKey[key] = law
		}
		candidatesByKey[key] = append(candidatesByKey[key], law)
	}
	return chosenByKey, candidatesByKey, keyOrder, keyless
}

// laterYear reports whether candidate is a strictly later year than current.
// A numeric year beats a non-numeric one; two non-numeric years never do.
func laterYear(candidate, current string) bool {
	candidateYear, candidateErr := strconv.Atoi(candidate)
	currentYear, currentErr := strconv.Atoi(current)
	switch {
	case candidateErr != nil:
		return false
	case currentErr != nil:
		return true
	default:
		return candidateYear > currentYear
	}
}
