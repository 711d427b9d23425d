package diffutil

import (
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TanaroSch/copynaut/internal/rules"
)

func TestTrace_ExportEdits(t *testing.T) {
	edits := []rules.Named{
		{Key: "02_slashes_to_underscore", Rule: rules.Rule{Pattern: "/+", Replacement: "_"}},
		{Key: "00_remove_doublebracketed_expressions", Rule: rules.Rule{Pattern: `\[\[(.+)\]\]`}},
		{Key: "01_remove_trailing_spaces", Rule: rules.Rule{Pattern: " +$"}},
		{Key: "03_unused", Rule: rules.Rule{Pattern: "zzz"}},
	}
	final, steps, err := Trace("photo:Group/Sky [[800x600+0,0]]", edits)
	require.NoError(t, err)
	assert.Equal(t, "photo:Group_Sky", final)

	require.Len(t, steps, 3)
	assert.Equal(t, "00_remove_doublebracketed_expressions", steps[0].Key)
	assert.Equal(t, "photo:Group/Sky [-[[800x600+0,0]]-]", steps[0].Inline())
	assert.Equal(t, "photo:Group/Sky ", steps[0].After)
	assert.Equal(t, "01_remove_trailing_spaces", steps[1].Key)
	assert.Equal(t, "photo:Group/Sky[- -]", steps[1].Inline())
	assert.Equal(t, "photo:Group[-/-]{+_+}Sky", steps[2].Inline())
	assert.Equal(t, "3 rule(s) changed the name: 17 character(s) removed, 1 added", Summary(steps))
}

func TestTrace_NoChange(t *testing.T) {
	final, steps, err := Trace("clean", []rules.Named{{Key: "a", Rule: rules.Rule{Pattern: "x"}}})
	require.NoError(t, err)
	assert.Equal(t, "clean", final)
	assert.Empty(t, steps)
}

func TestTrace_BadRule(t *testing.T) {
	_, _, err := Trace("x", []rules.Named{{Key: "bad", Rule: rules.Rule{Pattern: "("}}})
	assert.ErrorContains(t, err, "rule bad")
}

func TestInline(t *testing.T) {
	diffs := []diffmatchpatch.Diff{
		{Type: diffmatchpatch.DiffEqual, Text: "a"},
		{Type: diffmatchpatch.DiffDelete, Text: "b"},
		{Type: diffmatchpatch.DiffInsert, Text: "c"},
	}
	assert.Equal(t, "a[-b-]{+c+}", Inline(diffs))
}

func TestMergeRuns(t *testing.T) {
	got := mergeRuns([]diffmatchpatch.Diff{
		{Type: diffmatchpatch.DiffDelete, Text: "a"},
		{Type: diffmatchpatch.DiffDelete, Text: "b"},
		{Type: diffmatchpatch.DiffEqual, Text: ""},
		{Type: diffmatchpatch.DiffInsert, Text: "c"},
	})
	assert.Equal(t, []diffmatchpatch.Diff{
		{Type: diffmatchpatch.DiffDelete, Text: "ab"},
		{Type: diffmatchpatch.DiffInsert, Text: "c"},
	}, got)
}
