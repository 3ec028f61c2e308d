package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yumyai/genemerge/pkg/hits"
)

func TestDedupECs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"Duplicates", []string{"1.1.1.1", "1.1.1.1", "2.2.2.2"}, []string{"1.1.1.1", "2.2.2.2"}},
		{"Unsorted", []string{"3.1.1.1", "1.2.3.4", "3.1.1.1", "1.2.3.4"}, []string{"1.2.3.4", "3.1.1.1"}},
		{"Lexicographic", []string{"1.10.1.1", "1.9.1.1"}, []string{"1.10.1.1", "1.9.1.1"}},
		{"Empty", []string{}, []string{}},
		{"Nil", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupECs(tt.in))
		})
	}
}

func TestDedupECsDoesNotModifyInput(t *testing.T) {
	in := []string{"b", "a", "b"}
	DedupECs(in)
	assert.Equal(t, []string{"b", "a", "b"}, in)
}

func TestGeneRecordRoundTrip(t *testing.T) {
	line := `{"zeta":1, "geneid" : "g1","ecs":["1.1.1.1"],"nested":{"b":2,"a":[1,2]},"s":"é\"q"}`
	rec, err := DecodeGeneRecord([]byte(line + "\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "geneid", "ecs", "nested", "s"}, rec.Keys())

	id, err := rec.GeneID()
	require.NoError(t, err)
	assert.Equal(t, "g1", id)

	out, err := rec.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, line, string(out))
	assert.NotContains(t, string(out), " ", "output is compact")
}

func TestGeneRecordEscapesHTMLCharacters(t *testing.T) {
	rec, err := DecodeGeneRecord([]byte(`{"geneid":"g","ecs":[],"note":"vé<&>"}`))
	require.NoError(t, err)

	out, err := rec.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"geneid":"g","ecs":[],"note":"vé\u003c\u0026\u003e"}`, string(out))
}

func TestGeneRecordSet(t *testing.T) {
	rec, err := DecodeGeneRecord([]byte(`{"geneid":"g","ecs":["b","a"],"tail":true}`))
	require.NoError(t, err)

	require.NoError(t, rec.Set(FieldECs, []string{"a", "b"}))
	require.NoError(t, rec.Set(FieldPDB, []PDBAnnotation{{Hit: hits.Hit{ID: "1ABC"}, Label: "x"}}))

	assert.Equal(t, []string{"geneid", "ecs", "tail", FieldPDB}, rec.Keys())
	assert.True(t, rec.Has(FieldPDB))
	assert.False(t, rec.Has(Field3DM))

	out, err := rec.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t,
		`{"geneid":"g","ecs":["a","b"],"tail":true,"x_pdb":[{"id":"1ABC","ident":0,"alength":0,"mismatch":0,"gapopen":0,"qstart":0,"qend":0,"sstart":0,"send":0,"evalue":0,"bitscore":0,"label":"x"}]}`,
		string(out))
}

func TestGeneRecordFieldErrors(t *testing.T) {
	rec, err := DecodeGeneRecord([]byte(`{"geneid":42,"ecs":null}`))
	require.NoError(t, err)

	_, err = rec.GeneID()
	assert.Error(t, err)

	ecs, err := rec.ECs()
	require.NoError(t, err)
	assert.Empty(t, ecs)

	rec, err = DecodeGeneRecord([]byte(`{}`))
	require.NoError(t, err)
	_, err = rec.GeneID()
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestDecodeGeneRecordRejectsNonObjects(t *testing.T) {
	for _, line := range []string{"", "[1,2]", "\"x\"", "{broken"} {
		_, err := DecodeGeneRecord([]byte(line))
		assert.Error(t, err, line)
	}
}
