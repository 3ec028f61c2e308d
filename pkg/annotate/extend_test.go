package annotate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yumyai/genemerge/pkg/hits"
	"github.com/yumyai/genemerge/pkg/model"
	"github.com/yumyai/genemerge/pkg/refindex"
)

const nucleoKinases = `[{"nice_name":"Nucleotide kinases","seq_count":100,"structure_count":50,` +
	`"ec_numbers":{"2.7.4.8":"100.000"},"taxonomyids":{},"gene_names":{},"go_terms":{},` +
	`"superfamily":{"taxonomyids":{"9606":"50.000"}}}]`

func testIndexes(t *testing.T) Indexes {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nucleo_kinases_virusx_2016.json"), []byte(nucleoKinases), 0o644))
	families, err := refindex.LoadFamilies(dir)
	require.NoError(t, err)

	structures, _, err := refindex.ReadStructures(strings.NewReader("h1\nh2\nh3\nh4\n1ABC\tHemoglobin alpha chain\n"))
	require.NoError(t, err)

	return Indexes{
		Families:   families,
		Structures: structures,
		TDMHits: hits.NewHitMap(map[string][]hits.Hit{
			"gene3dm":  {{ID: "nucleo_kinases_2016", Ident: 80, ALength: 200, EValue: 1e-30, BitScore: 300}},
			"geneboth": {{ID: "nucleo_kinases_2016", ALength: 40}},
			"genebad":  {{ID: "unknown_family", ALength: 40}},
			"geneseen": {},
		}),
		PDBHits: hits.NewHitMap(map[string][]hits.Hit{
			"genepdb":  {{ID: "1ABCD", ALength: 50}, {ID: "9XYZA", ALength: 30}},
			"geneboth": {{ID: "1ABCA", ALength: 60}},
		}),
	}
}

func decode(t *testing.T, line string) *model.GeneRecord {
	t.Helper()
	rec, err := model.DecodeGeneRecord([]byte(line))
	require.NoError(t, err)
	return rec
}

func encode(t *testing.T, rec *model.GeneRecord) map[string]any {
	t.Helper()
	b, err := rec.MarshalJSON()
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	return m
}

func TestExtendPDB(t *testing.T) {
	ext := NewExtender(testIndexes(t))
	rec := decode(t, `{"geneid":"genepdb","ecs":[]}`)
	require.NoError(t, ext.Extend(rec))

	out := encode(t, rec)
	assert.NotContains(t, out, model.Field3DM)

	pdb := out[model.FieldPDB].([]any)
	require.Len(t, pdb, 2)
	first := pdb[0].(map[string]any)
	assert.Equal(t, "1ABCD", first["id"])
	assert.Equal(t, "Hemoglobin alpha chain", first["label"])

	second := pdb[1].(map[string]any)
	assert.NotContains(t, second, "label", "unknown ids keep no label")

	assert.Equal(t, Stats{Records: 1, WithPDB: 1, PDBUnlabeled: 1}, ext.Stats())
}

func TestExtend3DM(t *testing.T) {
	ext := NewExtender(testIndexes(t))
	rec := decode(t, `{"geneid":"gene3dm","ecs":["2.7.4.8"]}`)
	require.NoError(t, ext.Extend(rec))

	out := encode(t, rec)
	tdm := out[model.Field3DM].([]any)
	require.Len(t, tdm, 1)
	hit := tdm[0].(map[string]any)

	assert.Equal(t, "nucleo_kinases_2016", hit["id"])
	assert.Equal(t, "Nucleotide kinases", hit["label"])
	assert.Equal(t, float64(100), hit["seq_count"])
	assert.Equal(t, float64(50), hit["structure_count"])
	assert.Equal(t, float64(200), hit["alength"])

	// Family-level group is used when non-empty.
	assert.Equal(t, []any{map[string]any{"id": "2.7.4.8", "perc": 100.0}}, hit["ec"])
	// Empty family-level group falls back to the superfamily.
	assert.Equal(t, []any{map[string]any{"id": "9606", "perc": 50.0}}, hit["tax"])
	// Empty everywhere: an empty list.
	assert.Equal(t, []any{}, hit["gene"])
	assert.Equal(t, []any{}, hit["go"])
}

func TestExtendBothKeepsOrder(t *testing.T) {
	ext := NewExtender(testIndexes(t))
	rec := decode(t, `{"geneid":"geneboth","ecs":["b","a","b"],"name":"x"}`)
	require.NoError(t, ext.Extend(rec))

	assert.Equal(t, []string{"geneid", "ecs", "name", model.FieldPDB, model.Field3DM}, rec.Keys())
	ecs, err := rec.ECs()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ecs)
}

func TestExtendMissingFamilyIsFatal(t *testing.T) {
	ext := NewExtender(testIndexes(t))
	rec := decode(t, `{"geneid":"genebad","ecs":[]}`)
	assert.ErrorIs(t, ext.Extend(rec), ErrMissingFamilyReference)
}

func TestExtendSeenWithoutHits(t *testing.T) {
	ext := NewExtender(testIndexes(t))
	rec := decode(t, `{"geneid":"geneseen","ecs":[]}`)
	require.NoError(t, ext.Extend(rec))

	out := encode(t, rec)
	assert.Equal(t, []any{}, out[model.Field3DM])
}

func TestExtendNoMatchOnlyNormalizesECs(t *testing.T) {
	ext := NewExtender(testIndexes(t))
	in := `{"geneid":"nohits","ecs":["2.2.2.2","1.1.1.1","1.1.1.1"],"meta":{"len":12,"tags":["<a>"]},"score":1.5}`
	rec := decode(t, in)
	require.NoError(t, ext.Extend(rec))

	var want map[string]any
	require.NoError(t, json.Unmarshal([]byte(in), &want))
	want["ecs"] = []any{"1.1.1.1", "2.2.2.2"}

	assert.Equal(t, want, encode(t, rec))
	assert.Equal(t, []string{"geneid", "ecs", "meta", "score"}, rec.Keys())
	assert.Equal(t, Stats{Records: 1}, ext.Stats())
}

func TestExtendMissingFields(t *testing.T) {
	ext := NewExtender(testIndexes(t))

	err := ext.Extend(decode(t, `{"ecs":[]}`))
	assert.ErrorIs(t, err, model.ErrMissingField)

	err = ext.Extend(decode(t, `{"geneid":"nohits"}`))
	assert.ErrorIs(t, err, model.ErrMissingField)
}

func TestExtendDoesNotMutateIndexes(t *testing.T) {
	idx := testIndexes(t)
	ext := NewExtender(idx)
	require.NoError(t, ext.Extend(decode(t, `{"geneid":"genepdb","ecs":[]}`)))

	list, ok := idx.PDBHits.Get("genepdb")
	require.True(t, ok)
	assert.Equal(t, hits.Hit{ID: "1ABCD", ALength: 50}, list[0])
}

func TestFamilyAnnotationMissingSingleField(t *testing.T) {
	_, err := familyAnnotation(hits.Hit{ID: "f"}, &refindex.Family{})
	assert.ErrorIs(t, err, refindex.ErrMalformedReferenceFile)
}

func TestXrefsBadPercentage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"nice_name":"n","seq_count":1,"structure_count":1,"ec_numbers":{"1.1.1.1":"lots"}}]`), 0o644))
	fam, err := refindex.ParseFamilyFile(path)
	require.NoError(t, err)

	_, err = familyAnnotation(hits.Hit{ID: "bad"}, fam)
	assert.ErrorIs(t, err, refindex.ErrMalformedReferenceFile)
}
