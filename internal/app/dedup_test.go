package app

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyu-x/rmdup/pkg/deduplicator"
	"github.com/moyu-x/rmdup/tui"
)

func init() {
	color.NoColor = true
}

func fixture(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/d/report.txt":     "same content",
		"/d/report (1).txt": "same content",
		"/d/unique.txt":     "something else",
	}
	for p, c := range files {
		require.NoError(t, afero.WriteFile(fs, p, []byte(c), 0o644))
	}
	return fs
}

func options(fs afero.Fs, answer string, out io.Writer) *DedupOptions {
	return &DedupOptions{
		Root:      "/d",
		Workers:   2,
		Prefilter: true,
		Fs:        fs,
		In:        strings.NewReader(answer),
		Out:       out,
	}
}

func exists(t *testing.T, fs afero.Fs, path string) bool {
	t.Helper()
	ok, err := afero.Exists(fs, path)
	require.NoError(t, err)
	return ok
}

func TestRunDedupConfirmed(t *testing.T) {
	fs := fixture(t)
	var out bytes.Buffer

	stats, err := RunDedup(context.Background(), options(fs, "y\n", &out))
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Groups)
	assert.Equal(t, 1, stats.Proposed)
	assert.Equal(t, 1, stats.Deleted)
	assert.Equal(t, uint64(len("same content")), stats.FreedSpace)
	assert.False(t, exists(t, fs, "/d/report (1).txt"))
	assert.True(t, exists(t, fs, "/d/report.txt"))
	assert.True(t, exists(t, fs, "/d/unique.txt"))

	text := out.String()
	assert.Contains(t, text, "删除 /d/report (1).txt")
	assert.Contains(t, text, "确认删除以上文件？")
	assert.Contains(t, text, "已删除: /d/report (1).txt")
	assert.Contains(t, text, "处理完成")
}

func TestRunDedupDeclined(t *testing.T) {
	for _, answer := range []string{"n\n", "\n", "", "maybe\n"} {
		fs := fixture(t)
		var out bytes.Buffer

		stats, err := RunDedup(context.Background(), options(fs, answer, &out))
		require.NoError(t, err)

		assert.Equal(t, 0, stats.Deleted, "answer %q", answer)
		assert.True(t, exists(t, fs, "/d/report (1).txt"), "answer %q", answer)
		assert.Contains(t, out.String(), "未删除任何文件")
	}
}

func TestRunDedupDryRun(t *testing.T) {
	fs := fixture(t)
	var out bytes.Buffer

	opts := options(fs, "", &out)
	opts.DryRun = true
	stats, err := RunDedup(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Deleted)
	assert.True(t, exists(t, fs, "/d/report (1).txt"))
	assert.NotContains(t, out.String(), "确认删除")
	assert.Contains(t, out.String(), "将删除: /d/report (1).txt")
	assert.Contains(t, out.String(), "演练模式")
}

func TestRunDedupNoDuplicates(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/d/a", []byte("a"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/d/b", []byte("bb"), 0o644))
	var out bytes.Buffer

	stats, err := RunDedup(context.Background(), options(fs, "", &out))
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Groups)
	assert.Equal(t, 2, stats.TotalFiles)
	assert.Contains(t, out.String(), "未发现重复文件")
	assert.NotContains(t, out.String(), "确认删除")
}

func TestRunDedupMinSize(t *testing.T) {
	fs := fixture(t)
	var out bytes.Buffer

	opts := options(fs, "y\n", &out)
	opts.MinSize = 1024
	stats, err := RunDedup(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.SkippedSmall)
	assert.Equal(t, 0, stats.Groups)
	assert.True(t, exists(t, fs, "/d/report (1).txt"))
}

func TestRunDedupInteractive(t *testing.T) {
	fs := afero.NewMemMapFs()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range []string{"/d/c", "/d/b", "/d/a"} {
		require.NoError(t, afero.WriteFile(fs, p, []byte("dup"), 0o644))
		mod := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, fs.Chtimes(p, mod, mod))
	}

	var reviewed int
	var out bytes.Buffer
	opts := options(fs, "", &out)
	opts.Interactive = true
	opts.Review = func(ctx context.Context, groups []*deduplicator.DuplicateGroup, in io.Reader, out io.Writer) ([]deduplicator.Decision, error) {
		var decisions []deduplicator.Decision
		for _, g := range groups {
			reviewed++
			d, err := deduplicator.Select(g, deduplicator.Selection{Mode: deduplicator.SelectIndices, Indices: []int{3}})
			if err != nil {
				return nil, err
			}
			decisions = append(decisions, d)
		}
		return decisions, nil
	}

	stats, err := RunDedup(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 1, reviewed)
	assert.Equal(t, 1, stats.Deleted)
	// 第 3 个是最新的 /d/a
	assert.False(t, exists(t, fs, "/d/a"))
	assert.True(t, exists(t, fs, "/d/b"))
	assert.True(t, exists(t, fs, "/d/c"))
	assert.NotContains(t, out.String(), "确认删除")
}

func TestRunDedupInteractiveCancelled(t *testing.T) {
	fs := fixture(t)
	var out bytes.Buffer

	opts := options(fs, "", &out)
	opts.Interactive = true
	opts.Review = func(context.Context, []*deduplicator.DuplicateGroup, io.Reader, io.Writer) ([]deduplicator.Decision, error) {
		return nil, tui.ErrCancelled
	}

	_, err := RunDedup(context.Background(), opts)
	assert.ErrorIs(t, err, tui.ErrCancelled)
	assert.True(t, exists(t, fs, "/d/report (1).txt"))
}

func TestRunDedupCancelled(t *testing.T) {
	fs := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunDedup(ctx, options(fs, "y\n", io.Discard))
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, exists(t, fs, "/d/report (1).txt"))
}

func TestRunDedupMissingRoot(t *testing.T) {
	opts := options(afero.NewMemMapFs(), "", io.Discard)
	opts.Root = "/nope"

	_, err := RunDedup(context.Background(), opts)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, context.Canceled))
}

func TestConfirm(t *testing.T) {
	cases := map[string]bool{
		"y\n":   true,
		"YES\n": true,
		" y \n": true,
		"y":     true,
		"n\n":   false,
		"\n":    false,
		"":      false,
		"yep\n": false,
	}
	for input, want := range cases {
		var out bytes.Buffer
		got, err := Confirm(context.Background(), strings.NewReader(input), &out, "继续？")
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
		assert.Equal(t, "继续？", out.String())
	}
}

func TestConfirmSharedReader(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("y\nn\nyes\n"))
	var out bytes.Buffer

	for i, want := range []bool{true, false, true} {
		got, err := Confirm(context.Background(), in, &out, "继续？")
		require.NoError(t, err, "question %d", i)
		assert.Equal(t, want, got, "question %d", i)
	}
	assert.Equal(t, strings.Repeat("继续？", 3), out.String())
}

func TestConfirmCancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	ok, err := Confirm(ctx, r, io.Discard, "继续？")
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}
