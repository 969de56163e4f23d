package potfile_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lovelyhashcat/internal/potfile"
	"lovelyhashcat/internal/services"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReconcileExactMatch(t *testing.T) {
	dir := t.TempDir()
	hashes := writeFile(t, dir, "hashes.txt", "5f4dcc3b5aa765d61d8327deb882cf99\n")
	pot := writeFile(t, dir, "hashcat.potfile", "5f4dcc3b5aa765d61d8327deb882cf99:password\n")

	out, err := potfile.Reconcile(hashes, pot, potfile.NewProcessedSet())
	require.NoError(t, err)
	assert.True(t, out.PotfileAvailable)
	assert.Equal(t, 1, out.TargetCount)
	assert.Equal(t, []potfile.Entry{{Hash: "5f4dcc3b5aa765d61d8327deb882cf99", Password: "password"}}, out.Found)
}

func TestReconcileSubstringContainment(t *testing.T) {
	dir := t.TempDir()
	hashes := writeFile(t, dir, "hashes.txt", "abc123\n")
	pot := writeFile(t, dir, "hashcat.potfile", "abc123extra:secret\n")

	out, err := potfile.Reconcile(hashes, pot, potfile.NewProcessedSet())
	require.NoError(t, err)
	require.Len(t, out.Found, 1)
	assert.Equal(t, "abc123extra", out.Found[0].Hash)
	assert.Equal(t, "secret", out.Found[0].Password)
}

func TestReconcileTargetContainsPotfileHash(t *testing.T) {
	dir := t.TempDir()
	hashes := writeFile(t, dir, "hashes.txt", "$salted$abc123$meta:somesalt\n")
	pot := writeFile(t, dir, "hashcat.potfile", "abc123:pw:with:colons\n")

	out, err := potfile.Reconcile(hashes, pot, potfile.NewProcessedSet())
	require.NoError(t, err)
	require.Len(t, out.Found, 1)
	assert.Equal(t, "pw:with:colons", out.Found[0].Password)
}

func TestReconcileIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	hashes := writeFile(t, dir, "hashes.txt", "# comment\naaa\nbbb:salt\n\nccc\n")
	pot := writeFile(t, dir, "hashcat.potfile",
		"aaa:one\n# note\nmalformed\nbbb:two\nzzz:unrelated\nbbb:again\n")

	processed := potfile.NewProcessedSet()
	first, err := potfile.Reconcile(hashes, pot, processed)
	require.NoError(t, err)
	assert.Equal(t, []potfile.Entry{{Hash: "aaa", Password: "one"}, {Hash: "bbb", Password: "two"}}, first.Found)
	assert.Equal(t, 3, first.TargetCount)

	for range 3 {
		again, err := potfile.Reconcile(hashes, pot, processed)
		require.NoError(t, err)
		assert.Empty(t, again.Found)
	}
	assert.Equal(t, 2, processed.Len())
}

func TestReconcilePicksUpAppendedEntries(t *testing.T) {
	dir := t.TempDir()
	hashes := writeFile(t, dir, "hashes.txt", "aaa\nbbb\n")
	pot := writeFile(t, dir, "hashcat.potfile", "aaa:one\n")

	processed := potfile.NewProcessedSet()
	first, err := potfile.Reconcile(hashes, pot, processed)
	require.NoError(t, err)
	require.Len(t, first.Found, 1)

	f, err := os.OpenFile(pot, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("bbb:two\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	second, err := potfile.Reconcile(hashes, pot, processed)
	require.NoError(t, err)
	assert.Equal(t, []potfile.Entry{{Hash: "bbb", Password: "two"}}, second.Found)
}

func TestReconcileMissingPotfileIsSoft(t *testing.T) {
	dir := t.TempDir()
	hashes := writeFile(t, dir, "hashes.txt", "aaa\n")

	out, err := potfile.Reconcile(hashes, filepath.Join(dir, "missing.potfile"), potfile.NewProcessedSet())
	require.NoError(t, err)
	assert.Empty(t, out.Found)
	assert.False(t, out.PotfileAvailable)
	assert.Contains(t, out.Notice, "does not exist")

	out, err = potfile.Reconcile(hashes, "", potfile.NewProcessedSet())
	require.NoError(t, err)
	assert.Empty(t, out.Found)
	assert.NotEmpty(t, out.Notice)
}

func TestReconcileUnreadableHashFileIsError(t *testing.T) {
	dir := t.TempDir()
	pot := writeFile(t, dir, "hashcat.potfile", "aaa:one\n")

	_, err := potfile.Reconcile(filepath.Join(dir, "missing.txt"), pot, potfile.NewProcessedSet())
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrIO))
}

func TestParseLine(t *testing.T) {
	cases := []struct {
		line string
		want potfile.Entry
		ok   bool
	}{
		{line: "hash:pass\r\n", want: potfile.Entry{Hash: "hash", Password: "pass"}, ok: true},
		{line: "hash: spaced pass ", want: potfile.Entry{Hash: "hash", Password: " spaced pass "}, ok: true},
		{line: "hash:", want: potfile.Entry{Hash: "hash", Password: ""}, ok: true},
		{line: ":pass"},
		{line: "no colon"},
		{line: "   "},
		{line: "# hash:pass"},
	}
	for _, tc := range cases {
		got, ok := potfile.ParseLine(tc.line)
		assert.Equal(t, tc.ok, ok, tc.line)
		if tc.ok {
			assert.Equal(t, tc.want, got, tc.line)
		}
	}
}

func TestHashKey(t *testing.T) {
	key, ok := potfile.HashKey("  hash:salt:more ")
	assert.True(t, ok)
	assert.Equal(t, "hash", key)

	key, ok = potfile.HashKey("plainhash")
	assert.True(t, ok)
	assert.Equal(t, "plainhash", key)

	_, ok = potfile.HashKey("#comment")
	assert.False(t, ok)
	_, ok = potfile.HashKey(":salt")
	assert.False(t, ok)
}

func TestEntryPlainDecodesHex(t *testing.T) {
	assert.Equal(t, "pass:word", potfile.Entry{Password: "$HEX[706173733a776f7264]"}.Plain())
	assert.Equal(t, "$HEX[zz]", potfile.Entry{Password: "$HEX[zz]"}.Plain())
	assert.Equal(t, "plain", potfile.Entry{Password: "plain"}.Plain())
}

func TestProcessedSet(t *testing.T) {
	set := potfile.NewProcessedSet()
	assert.True(t, set.Add("a"))
	assert.False(t, set.Add("a"))
	assert.True(t, set.Has("a"))
	assert.False(t, set.Has("b"))
	assert.Equal(t, 1, set.Len())
}

func TestLoadCrackedUsesExactLines(t *testing.T) {
	dir := t.TempDir()
	hashes := writeFile(t, dir, "hashes.txt", "aaa\nbbb\n# skip\n")
	pot := writeFile(t, dir, "hashcat.potfile", "aaa:first\naaaextra:nope\nbbb:two\naaa:latest\n")

	got, err := potfile.LoadCracked(hashes, pot)
	require.NoError(t, err)
	assert.Equal(t, []potfile.Entry{{Hash: "aaa", Password: "latest"}, {Hash: "bbb", Password: "two"}}, got)

	got, err = potfile.LoadCracked(hashes, filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExportWritesLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.txt")
	require.NoError(t, potfile.Export(path, []potfile.Entry{{Hash: "a", Password: "1"}, {Hash: "b", Password: "2"}}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a:1\nb:2\n", string(data))
}
