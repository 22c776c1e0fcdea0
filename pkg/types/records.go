package types

import "strings"

// StatusNotApplicable is the status given to a proposal no enacted law cites.
const StatusNotApplicable = "Não se aplica"

// Proposal is one legislative proposal row from a proposal export.
//
// Projeto has the form "NNNN/YYYY". Ementa and Autor are required; the Has*
// flags distinguish an absent cell from a present one, so an empty export
// cell is treated as null exactly like a missing one.
type Proposal struct {
	Projeto        string
	Ementa         string
	Autor          string
	DataPublicacao string

	HasEmenta bool
	HasAutor  bool
}

// ProjectNumber returns the part of Projeto before the first slash.
func (p Proposal) ProjectNumber() string {
	number, _, _ := strings.Cut(p.Projeto, "/")
	return number
}

// ProjectYear returns the part of Projeto after the first slash, or an empty
// string when Projeto has no slash.
func (p Proposal) ProjectYear() string {
	_, year, found := strings.Cut(p.Projeto, "/")
	if !found {
		return ""
	}
	return year
}

// Law is one enacted-law row from a law export. NrProjeto is derived from
// InteiroTeor by citation extraction and is empty when extraction failed.
type Law struct {
	Lei         string
	Ano         string
	Status      string
	InteiroTeor string
	NrProjeto   string
}

// Merged is a proposal left-joined with the law that cites it.
// Lei and Ano are empty and Status is StatusNotApplicable when no law matched.
type Merged struct {
	Projeto        string
	Ementa         string
	Autor          string
	DataPublicacao string
	Lei            string
	Ano            string
	Status         string
	Cpfs           string
}

// MergedColumns returns the persisted column names in insertion order.
func MergedColumns() []string {
	return []string{
		"projeto",
		"ementa",
		"autor",
		"data_publicacao",
		"lei",
		"ano",
		"status",
		"cpfs",
	}
}

// Values returns the row values in MergedColumns order.
func (m Merged) Values() []any {
	return []any{
		m.Projeto,
		m.Ementa,
		m.Autor,
		m.DataPublicacao,
		m.Lei,
		m.Ano,
		m.Status,
		m.Cpfs,
	}
}

// LookupEntry maps a council member's registered name to their CPF.
type LookupEntry struct {
	NomeCamara string
	Cpf        string
}
