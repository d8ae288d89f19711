package zipcrack

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/redactyl/zipcrack/internal/archive/archivetest"
	"github.com/redactyl/zipcrack/internal/history"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sandbox runs the test from an empty working directory with private
// config and state homes.
func sandbox(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, ".state"))
	t.Chdir(dir)
	return dir
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--no-color"}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_DefaultsFindPassword(t *testing.T) {
	dir := sandbox(t)
	archivetest.WriteZip(t, dir, "your_file.zip", "42", archivetest.ZipCrypto, archivetest.Fixtures...)

	out, err := runCLI(t)
	require.NoError(t, err)
	assert.Equal(t, "Trying passwords of length 1...\n"+
		"Trying passwords of length 2...\n"+
		"\n"+
		"Password found: 42\n"+
		"Files extracted to 'uncompressed_content' directory.\n", out)
	assert.Equal(t, archivetest.AsMap(archivetest.Fixtures), archivetest.ReadTree(t, filepath.Join(dir, "uncompressed_content")))
}

func TestCLI_MissingArchive(t *testing.T) {
	sandbox(t)
	out, err := runCLI(t)
	require.NoError(t, err, "a missing archive is reported, not returned")
	assert.Equal(t, "Error: The file 'your_file.zip' was not found\n", out)
}

func TestCLI_Exhausted(t *testing.T) {
	dir := sandbox(t)
	p := archivetest.WriteZip(t, dir, "locked.zip", "secret", archivetest.AES256, archivetest.Fixtures...)

	out, err := runCLI(t, p, "--max-length", "2")
	require.NoError(t, err)
	assert.Equal(t, "Trying passwords of length 1...\n"+
		"Trying passwords of length 2...\n"+
		"Password not found within the specified character set and length range.\n", out)
	assert.NoDirExists(t, filepath.Join(dir, "uncompressed_content"))
}

func TestCLI_CorruptArchive(t *testing.T) {
	dir := sandbox(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "your_file.zip"), []byte("not a zip"), 0o644))
	out, err := runCLI(t)
	require.NoError(t, err)
	assert.Contains(t, out, "An unexpected error occurred:")
	assert.Contains(t, out, "corrupt archive")
}

func TestCLI_InvalidBounds(t *testing.T) {
	sandbox(t)
	_, err := runCLI(t, "--min-length", "3", "--max-length", "2")
	assert.Error(t, err)
}

func TestCLI_CustomOutputAndAlphabet(t *testing.T) {
	dir := sandbox(t)
	p := archivetest.WriteZip(t, dir, "abc.zip", "cab", archivetest.ZipCrypto, archivetest.Fixtures...)
	out, err := runCLI(t, p, "--alphabet", "abc", "--min-length", "3", "--max-length", "3", "-o", "restored", "--members", "readme.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "Password found: cab")
	assert.Contains(t, out, "Files extracted to 'restored' directory.")
	assert.Equal(t, map[string]string{"readme.txt": archivetest.Fixtures[0].Body}, archivetest.ReadTree(t, filepath.Join(dir, "restored")))
}

func TestCLI_LocalConfigAndFlagPrecedence(t *testing.T) {
	dir := sandbox(t)
	archivetest.WriteZip(t, dir, "vault.zip", "123", archivetest.ZipCrypto, archivetest.Fixtures...)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".zipcrack.yml"), []byte("archive: vault.zip\nmax_length: 2\noutput: from-config\n"), 0o644))

	out, err := runCLI(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Password not found")

	out, err = runCLI(t, "--max-length", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Password found: 123")
	assert.DirExists(t, filepath.Join(dir, "from-config"))
}

func TestCLI_HistoryRecordsRuns(t *testing.T) {
	dir := sandbox(t)
	archivetest.WriteZip(t, dir, "your_file.zip", "7", archivetest.ZipCrypto, archivetest.Fixtures...)

	_, err := runCLI(t, "--history")
	require.NoError(t, err)
	_, err = runCLI(t, "missing.zip", "--history")
	require.NoError(t, err)
	_, err = runCLI(t)
	require.NoError(t, err)

	out, err := runCLI(t, "history", "--json")
	require.NoError(t, err)
	var records []history.RunRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "not_found", records[0].Outcome)
	assert.Equal(t, "found", records[1].Outcome)
	assert.Equal(t, "*", records[1].Password)
	assert.Equal(t, 8, records[1].Attempts)
	assert.Len(t, records[1].Fingerprint, 16)

	out, err = runCLI(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "your_file.zip")
	assert.Contains(t, out, "not_found")

	out, err = runCLI(t, "history", "--clear")
	require.NoError(t, err)
	assert.Equal(t, "History cleared.\n", out)
	out, err = runCLI(t, "history")
	require.NoError(t, err)
	assert.Equal(t, "No runs recorded yet.\n", out)
}

func TestCLI_DefaultRunWritesOnlyOutput(t *testing.T) {
	dir := sandbox(t)
	archivetest.WriteZip(t, dir, "your_file.zip", "42", archivetest.ZipCrypto, archivetest.Fixtures...)

	_, err := runCLI(t)
	require.NoError(t, err)
	_, err = runCLI(t, "missing.zip")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"your_file.zip", "uncompressed_content"}, names)
	assert.NoFileExists(t, history.DefaultPath())
}

func TestCLI_HistoryEnabledByConfig(t *testing.T) {
	dir := sandbox(t)
	archivetest.WriteZip(t, dir, "your_file.zip", "3", archivetest.ZipCrypto, archivetest.Fixtures...)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".zipcrack.yml"), []byte("history:\n  enabled: true\n"), 0o644))

	_, err := runCLI(t)
	require.NoError(t, err)
	require.FileExists(t, history.DefaultPath())

	_, err = runCLI(t, "--history=false")
	require.NoError(t, err)

	records, err := history.New("").Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "found", records[0].Outcome)
}

func TestCLI_ConfigInitAndShow(t *testing.T) {
	dir := sandbox(t)
	out, err := runCLI(t, "config", "init", "secrets.zip", "--max-length", "6", "--members", "*.txt")
	require.NoError(t, err)
	assert.Equal(t, "Wrote .zipcrack.yml\n", out)
	assert.FileExists(t, filepath.Join(dir, ".zipcrack.yml"))

	_, err = runCLI(t, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	out, err = runCLI(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "archive: secrets.zip")
	assert.Contains(t, out, "max_length: 6")
	assert.Contains(t, out, "*.txt")
}

func TestCLI_Version(t *testing.T) {
	sandbox(t)
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "zipcrack "+version+"\n", out)
}
