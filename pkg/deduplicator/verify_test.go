package deduplicator

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	fs := afero.NewMemMapFs()
	big := make([]byte, 3*4096)
	bigOther := make([]byte, 3*4096)
	bigOther[len(bigOther)-1] = 1

	files := map[string][]byte{
		"/a":     []byte("same content"),
		"/b":     []byte("same content"),
		"/c":     []byte("other content"),
		"/d":     []byte("same content plus"),
		"/big1":  big,
		"/big2":  big,
		"/big3":  bigOther,
		"/big4":  append(append([]byte{}, big...), 'x'),
		"/empty": nil,
		"/null":  nil,
	}
	for path, data := range files {
		require.NoError(t, afero.WriteFile(fs, path, data, 0644))
	}

	tests := []struct {
		a, b string
		want bool
	}{
		{"/a", "/b", true},
		{"/a", "/c", false},
		{"/a", "/d", false},
		{"/d", "/a", false},
		{"/big1", "/big2", true},
		{"/big1", "/big3", false},
		{"/big1", "/big4", false},
		{"/big4", "/big1", false},
		{"/empty", "/null", true},
		{"/empty", "/a", false},
	}

	for _, tt := range tests {
		got, err := Verify(fs, tt.a, tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "Verify(%s, %s)", tt.a, tt.b)
	}
}

func TestVerify_Missing(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/a", []byte("x"), 0644))

	_, err := Verify(fs, "/a", "/missing")
	assert.Error(t, err)
	_, err = Verify(fs, "/missing", "/a")
	assert.Error(t, err)
}
