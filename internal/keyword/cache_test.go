package keyword

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStoreFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "keywords.txt")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestParse_Rules(t *testing.T) {
	in := "" +
		"\n" +
		"no equals sign here\n" +
		"Steam, STEAMY =C:\\Games\\Steam\\steam.exe\n" +
		" , wiki = https://zelda.wiki.fandom.com/{}\n" +
		"steamy=D:\\Other\\steam.exe\n"

	m, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"steam":  `C:\Games\Steam\steam.exe`,
		"steamy": `D:\Other\steam.exe`,
		"wiki":   "https://zelda.wiki.fandom.com/{}",
	}, m)
}

func TestLoad_MissingStoreIsWarning(t *testing.T) {
	p := filepath.Join(t.TempDir(), "missing.txt")
	c, err := Load(p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	require.NotNil(t, c)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, p, c.Path())
}

func TestPersist_RoundTripGroupsByTarget(t *testing.T) {
	p := writeStoreFile(t, ""+
		"halo=/games/halo/halo.exe\n"+
		"mc=/games/minecraft/launcher.exe\n"+
		"minecraft=/games/minecraft/launcher.exe\n"+
		"h=/games/halo/halo.exe\n")

	c, err := Load(p)
	require.NoError(t, err)
	require.NoError(t, c.Persist())

	assert.Equal(t, ""+
		"h,halo=/games/halo/halo.exe\n"+
		"mc,minecraft=/games/minecraft/launcher.exe\n", readFile(t, p))

	reloaded, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, c.Records(), reloaded.Records())
	for _, alias := range []string{"h", "halo", "mc", "minecraft"} {
		want, _ := c.Lookup(alias)
		got, ok := reloaded.Lookup(alias)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "keywords.txt"))

	changed, err := c.Merge("Halo", "/games/halo.exe")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = c.Merge("halo", "/games/halo.exe")
	require.NoError(t, err)
	assert.False(t, changed)

	recs := c.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"halo"}, recs[0].Aliases)
}

func TestMerge_Rejects(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "keywords.txt"))
	_, err := c.Merge("wiki", "https://zelda.wiki.fandom.com/{}")
	require.NoError(t, err)

	_, err = c.Merge("wiki zelda", "https://zelda.wiki.fandom.com/Zelda")
	assert.ErrorIs(t, err, ErrAliasHasSpace)
	_, err = c.Merge("", "/x")
	assert.ErrorIs(t, err, ErrEmptyAlias)
	_, err = c.Merge("x", "  ")
	assert.ErrorIs(t, err, ErrEmptyTarget)
	for _, bad := range []struct{ alias, target string }{
		{"x=y", `C:\Games\x.exe`},
		{"a,b", `C:\Games\ab.exe`},
		{"a\rb", `C:\Games\ab.exe`},
		{"a\nb", `C:\Games\ab.exe`},
		{"ab", "C:\\Games\\a\rb.exe"},
		{"ab", "C:\\Games\\a\nb.exe"},
	} {
		_, err = c.Merge(bad.alias, bad.target)
		assert.ErrorIs(t, err, ErrAliasHasSeparator, "alias %q target %q", bad.alias, bad.target)
	}

	target, ok := c.Lookup("wiki")
	assert.True(t, ok)
	assert.Equal(t, "https://zelda.wiki.fandom.com/{}", target)
	assert.Equal(t, 1, c.Len())
	_, ok = c.Lookup("wiki zelda")
	assert.False(t, ok)
}

func TestMergeAndPersist_SeparatorsNeverReachTheStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.txt")
	c := New(path)
	_, err := c.MergeAndPersist("x=y", `C:\Games\x.exe`)
	require.ErrorIs(t, err, ErrAliasHasSeparator)
	_, err = c.MergeAndPersist("a,b", `C:\Games\ab.exe`)
	require.ErrorIs(t, err, ErrAliasHasSeparator)
	_, err = c.MergeAndPersist("g", "https://www.google.com/search?q={}")
	require.NoError(t, err)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
	_, ok := loaded.Lookup("x")
	assert.False(t, ok)
	target, ok := loaded.Lookup("g")
	assert.True(t, ok)
	assert.Equal(t, "https://www.google.com/search?q={}", target)
}

func TestMerge_MovesAliasBetweenRecords(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "keywords.txt"))
	_, _ = c.Merge("g", "/a.exe")
	_, _ = c.Merge("a", "/a.exe")
	_, _ = c.Merge("g", "/b.exe")

	assert.Equal(t, []Record{
		{Aliases: []string{"a"}, Target: "/a.exe"},
		{Aliases: []string{"g"}, Target: "/b.exe"},
	}, c.Records())
	assert.Equal(t, []string{"a"}, c.AliasesOf("/a.exe"))
}

func TestMergeAndPersist_SingleLine(t *testing.T) {
	p := filepath.Join(t.TempDir(), "sub", "keywords.txt")
	c := New(p)

	changed, err := c.MergeAndPersist("halo", "/mnt/d/Games/Halo/halo.exe")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "halo=/mnt/d/Games/Halo/halo.exe\n", readFile(t, p))

	// Unchanged association does not rewrite the store.
	require.NoError(t, os.Remove(p))
	changed, err = c.MergeAndPersist("HALO", "/mnt/d/Games/Halo/halo.exe")
	require.NoError(t, err)
	assert.False(t, changed)
	_, statErr := os.Stat(p)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRemoveAndPersist(t *testing.T) {
	p := writeStoreFile(t, "halo,h=/games/halo.exe\n")
	c, err := Load(p)
	require.NoError(t, err)

	removed, err := c.RemoveAndPersist("HALO")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, "h=/games/halo.exe\n", readFile(t, p))

	removed, err = c.RemoveAndPersist("halo")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRemoveAllAndPersist_WritesOnce(t *testing.T) {
	p := writeStoreFile(t, "halo,h=/games/halo.exe\nsteam=/games/steam.exe\ng=https://google.com/search?q={}\n")
	c, err := Load(p)
	require.NoError(t, err)

	removed, err := c.RemoveAllAndPersist("HALO", "h", "unknown", "steam")
	require.NoError(t, err)
	assert.Equal(t, []string{"HALO", "h", "steam"}, removed)
	assert.Equal(t, "g=https://google.com/search?q={}\n", readFile(t, p))

	// Nothing present: the store is not touched.
	require.NoError(t, os.Remove(p))
	removed, err = c.RemoveAllAndPersist("halo", "steam")
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.NoFileExists(t, p)
}

func TestMergeAndPersist_WriteFailureKeepsMemory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// The store's parent is a regular file, so the write must fail.
	c := New(filepath.Join(blocker, "keywords.txt"))
	changed, err := c.MergeAndPersist("halo", "/games/halo.exe")
	require.Error(t, err)
	assert.True(t, changed)

	got, ok := c.Lookup("halo")
	assert.True(t, ok)
	assert.Equal(t, "/games/halo.exe", got)
}

func TestMergeAndPersist_ConcurrentWriters(t *testing.T) {
	p := filepath.Join(t.TempDir(), "keywords.txt")
	c := New(p)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := c.MergeAndPersist(fmt.Sprintf("game%02d", i), fmt.Sprintf("/games/%d.exe", i%4))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	reloaded, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 16, reloaded.Len())
	assert.Len(t, reloaded.Records(), 4)
}
