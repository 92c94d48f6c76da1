package deduplicator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		input string
		want  Selection
	}{
		{"", Selection{Mode: SelectNone}},
		{"n", Selection{Mode: SelectNone}},
		{" NONE ", Selection{Mode: SelectNone}},
		{"a", Selection{Mode: SelectAllButOldest}},
		{"All", Selection{Mode: SelectAllButOldest}},
		{"2", Selection{Mode: SelectIndices, Indices: []int{2}}},
		{"3,2", Selection{Mode: SelectIndices, Indices: []int{2, 3}}},
		{"1 3", Selection{Mode: SelectIndices, Indices: []int{1, 3}}},
		{"2, 2 ,3", Selection{Mode: SelectIndices, Indices: []int{2, 3}}},
	}

	for _, tt := range tests {
		got, err := ParseSelection(tt.input, 4)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestParseSelection_Invalid(t *testing.T) {
	for _, input := range []string{"0", "5", "x", "1,b", "-1"} {
		_, err := ParseSelection(input, 4)
		assert.ErrorIs(t, err, ErrInvalidSelection, "input %q", input)
	}

	_, err := ParseSelection("1,2,3,4", 4)
	assert.ErrorIs(t, err, ErrWouldDeleteAll)
}

func TestSelect(t *testing.T) {
	newest := rec("/d/newest.txt", base.Add(2*time.Hour))
	oldest := rec("/d/oldest.txt", base)
	middle := rec("/d/middle.txt", base.Add(time.Hour))
	g := group(t, newest, oldest, middle)

	d, err := Select(g, Selection{Mode: SelectNone})
	require.NoError(t, err)
	assert.Empty(t, d.Deletions)
	assert.Len(t, d.Kept, 3)

	d, err = Select(g, Selection{Mode: SelectAllButOldest})
	require.NoError(t, err)
	assert.Equal(t, []string{"/d/middle.txt", "/d/newest.txt"}, deletedPaths(d))
	assert.Equal(t, "/d/oldest.txt", d.RetainedFor()["/d/newest.txt"].Path)

	// 序号对应按时间排序后的展示顺序：1=oldest 2=middle 3=newest
	d, err = Select(g, Selection{Mode: SelectIndices, Indices: []int{1}})
	require.NoError(t, err)
	assert.Equal(t, []string{"/d/oldest.txt"}, deletedPaths(d))
	assert.Equal(t, "/d/middle.txt", d.RetainedFor()["/d/oldest.txt"].Path)

	_, err = Select(g, Selection{Mode: SelectIndices, Indices: []int{1, 2, 3}})
	assert.ErrorIs(t, err, ErrWouldDeleteAll)

	_, err = Select(g, Selection{Mode: SelectIndices, Indices: []int{4}})
	assert.ErrorIs(t, err, ErrInvalidSelection)
}
