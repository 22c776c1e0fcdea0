package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const proposalExport = "lei;ementa;autor;data_publicacao;situacao\n" +
	"0123/2009;Dispõe sobre calçadas;Alice Silva, Bruno Araujo;2009-03-01;arquivado\n" +
	"0045/2010;\"Denomina praça; e dá outras providências\";Bruno Araujo;2010-05-02;\n" +
	"0046/2010;;Bruno Araujo;2010-05-03;\n" +
	"0047/2010;Institui programa;  ;2010-05-04;\n"

const lawExport = "\ufefflei;ano;status;inteiro_teor\n" +
	"15000;2010;Vigente;\"Lei 15.000 (Projeto de Lei nº 123/2009, do Vereador Alice Silva)\"\n" +
	"15001;2011;Revogada;Sem referência\n"

func TestReadProposals(t *testing.T) {
	proposals, err := ReadProposals("proposals.csv", strings.NewReader(proposalExport))
	require.NoError(t, err)
	require.Len(t, proposals, 4)

	first := proposals[0]
	assert.Equal(t, "0123/2009", first.Projeto)
	assert.Equal(t, "Dispõe sobre calçadas", first.Ementa)
	assert.Equal(t, "Alice Silva, Bruno Araujo", first.Autor)
	assert.Equal(t, "2009-03-01", first.DataPublicacao)
	assert.True(t, first.HasEmenta)
	assert.True(t, first.HasAutor)

	assert.Equal(t, "Denomina praça; e dá outras providências", proposals[1].Ementa)
	assert.False(t, proposals[2].HasEmenta)
	assert.False(t, proposals[3].HasAutor)
}

func TestReadProposalsAcceptsProjetoHeader(t *testing.T) {
	export := "projeto;ementa;autor;data_publicacao\n0001/2015;Ementa;Autor;2015-01-01\n"
	proposals, err := ReadProposals("proposals.csv", strings.NewReader(export))
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	assert.Equal(t, "0001/2015", proposals[0].Projeto)
}

func TestReadProposalsShortRow(t *testing.T) {
	export := "lei;ementa;autor;data_publicacao\n0001/2015;Ementa\n"
	proposals, err := ReadProposals("proposals.csv", strings.NewReader(export))
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	assert.False(t, proposals[0].HasAutor)
	assert.Equal(t, "", proposals[0].DataPublicacao)
}

func TestReadMissingColumn(t *testing.T) {
	cases := []struct {
		name string
		read func() error
	}{
		{
			name: "proposal_without_autor",
			read: func() error {
				_, err := ReadProposals("p.csv", strings.NewReader("lei;ementa;data_publicacao\n"))
				return err
			},
		},
		{
			name: "law_without_inteiro_teor",
			read: func() error {
				_, err := ReadLaws("l.csv", strings.NewReader("lei;ano;status\n"))
				return err
			},
		},
		{
			name: "empty_file",
			read: func() error {
				_, err := ReadLaws("l.csv", strings.NewReader(""))
				return err
			},
		},
		{
			name: "comma_delimited_export",
			read: func() error {
				_, err := ReadLaws("l.csv", strings.NewReader("lei,ano,status,inteiro_teor\n"))
				return err
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.read()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingColumn), "got %v", err)
		})
	}
}

func TestReadLaws(t *testing.T) {
	laws, err := ReadLaws("laws.csv", strings.NewReader(lawExport))
	require.NoError(t, err)
	require.Len(t, laws, 2)

	assert.Equal(t, "15000", laws[0].Lei)
	assert.Equal(t, "2010", laws[0].Ano)
	assert.Equal(t, "Vigente", laws[0].Status)
	assert.Contains(t, laws[0].InteiroTeor, "Projeto de Lei nº 123/2009")
	assert.Equal(t, "", laws[0].NrProjeto)
	assert.Equal(t, "Revogada", laws[1].Status)
}

func TestLoadConcatenatesInArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	firstPath := filepath.Join(dir, "first.csv")
	secondPath := filepath.Join(dir, "second.csv")
	header := "lei;ementa;autor;data_publicacao\n"
	require.NoError(t, os.WriteFile(firstPath, []byte(header+"0002/2012;B;X;2012-01-01\n"), 0644))
	require.NoError(t, os.WriteFile(secondPath, []byte(header+"0001/2011;A;Y;2011-01-01\n0003/2013;C;Z;2013-01-01\n"), 0644))

	proposals, err := LoadProposals([]string{firstPath, secondPath})
	require.NoError(t, err)
	require.Len(t, proposals, 3)
	assert.Equal(t, "0002/2012", proposals[0].Projeto)
	assert.Equal(t, "0001/2011", proposals[1].Projeto)
	assert.Equal(t, "0003/2013", proposals[2].Projeto)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadLaws([]string{filepath.Join(t.TempDir(), "absent.csv")})
	assert.Error(t, err)

	_, err = LoadLaws(nil)
	assert.Error(t, err)
}
