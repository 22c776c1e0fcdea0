package ingest

import (
	"io"

	"github.com/coolbeans/tramita/pkg/types"
)

// Proposal exports name the proposal identifier "lei"; "projeto" is accepted too.
var proposalColumns = []column{
	{name: "projeto", aliases: []string{"lei"}},
	{name: "ementa"},
	{name: "autor"},
	{name: "data_publicacao"},
}

var lawColumns = []column{
	{name: "lei"},
	{name: "ano"},
	{name: "status"},
	{name: "inteiro_teor"},
}

// LoadProposals reads and concatenates proposal exports in the given order.
func LoadProposals(paths []string) ([]types.Proposal, error) {
	var proposals []types.Proposal
	err := loadFiles(paths, func(source string, input io.Reader) error {
		loaded, err := ReadProposals(source, input)
		proposals = append(proposals, loaded...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return proposals, nil
}

// ReadProposals reads one proposal export. source names the input in errors.
func ReadProposals(source string, input io.Reader) ([]types.Proposal, error) {
	tbl, err := openTable(source, input, proposalColumns)
	if err != nil {
		return nil, err
	}

	var proposals []types.Proposal
	err = tbl.each(func(get func(string) cell) {
		ementa := get("ementa")
		autor := get("autor")
		proposals = append(proposals, types.Proposal{
			Projeto:        get("projeto").value,
			Ementa:         ementa.value,
			Autor:          autor.value,
			DataPublicacao: get("data_publicacao").value,
			HasEmenta:      ementa.present,
			HasAutor:       autor.present,
		})
	})
	if err != nil {
		return nil, err
	}
	return proposals, nil
}

// LoadLaws reads and concatenates law exports in the given order.
func LoadLaws(paths []string) ([]types.Law, error) {
	var laws []types.Law
	err := loadFiles(paths, func(source string, input io.Reader) error {
		loaded, err := ReadLaws(source, input)
		laws = append(laws, loaded...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return laws, nil
}

// ReadLaws reads one law export. source names the input in errors.
func ReadLaws(source string, input io.Reader) ([]types.Law, error) {
	tbl, err := openTable(source, input, lawColumns)
	if err != nil {
		return nil, err
	}

	var laws []types.Law
	err = tbl.each(func(get func(string) cell) {
		laws = append(laws, types.Law{
			Lei:         get("lei").value,
			Ano:         get("ano").value,
			Status:      get("status").value,
			InteiroTeor: get("inteiro_teor").value,
		})
	})
	if err != nil {
		return nil, err
	}
	return laws, nil
}
