package types

import (
	"fmt"
	"strings"
)

// DocumentType identifies the kind of legislative proposal a run links.
// Each type has its own citation grammar and its own destination table.
type DocumentType string

const (
	DocumentLei     DocumentType = "lei"
	DocumentLeiComp DocumentType = "lei_comp"
	DocumentDecreto DocumentType = "decreto"
	DocumentEmenda  DocumentType = "emenda"
)

// DestinationSchema is the schema that holds both the lookup table and the
// merged output tables.
const DestinationSchema = "eleitoral"

var destinationTables = map[DocumentType]string{
	DocumentLei:     "projetos_lei_ordinaria",
	DocumentLeiComp: "projetos_lei_complementar",
	DocumentDecreto: "projetos_decreto",
	DocumentEmenda:  "projetos_emenda_lei_organica",
}

// DocumentTypes returns the supported document types in their canonical order.
func DocumentTypes() []DocumentType {
	return []DocumentType{DocumentLei, DocumentLeiComp, DocumentDecreto, DocumentEmenda}
}

// ParseDocumentType converts a command-line selector into a DocumentType.
// Matching is exact: the selectors are lower-case identifiers.
func ParseDocumentType(value string) (DocumentType, error) {
	documentType := DocumentType(value)
	if _, ok := destinationTables[documentType]; !ok {
		return "", fmt.Errorf("unsupported document type %q (want one of %s)",
			value, strings.Join(documentTypeNames(), ", "))
	}
	return documentType, nil
}

// Valid reports whether the document type is one of the supported types.
func (d DocumentType) Valid() bool {
	_, ok := destinationTables[d]
	return ok
}

// DestinationTable returns the unqualified output table for the document type,
// or an empty string for an unsupported type.
func (d DocumentType) DestinationTable() string {
	return destinationTables[d]
}

func (d DocumentType) String() string {
	return string(d)
}

func documentTypeNames() []string {
	documentTypes := DocumentTypes()
	names := make([]string, len(documentTypes))
	for i, documentType := range documentTypes {
		names[i] = string(documentType)
	}
	return names
}
