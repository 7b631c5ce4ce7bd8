package gitinfo_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/portcore/internal/adapters/outbound/gitinfo"
)

func TestGitInfo_IsGitRepo_True(t *testing.T) {
	dir := t.TempDir()
	runGit(t, dir, "init")

	gi := gitinfo.New()
	assert.True(t, gi.IsGitRepo(dir))
}

func TestGitInfo_IsGitRepo_False(t *testing.T) {
	dir := t.TempDir()
	gi := gitinfo.New()
	assert.False(t, gi.IsGitRepo(dir))
}

func TestGitInfo_CommitHash_FromSubdirectory(t *testing.T) {
	dir := committedRepo(t)

	hash, err := gitinfo.New().CommitHash(filepath.Join(dir, "src"))
	require.NoError(t, err)
	assert.Len(t, hash, 40, "should be a full SHA-1 hash")
}

func TestGitInfo_CommitHash_NotGitRepo(t *testing.T) {
	_, err := gitinfo.New().CommitHash(t.TempDir())
	assert.Error(t, err)
}

func TestGitInfo_ChangedFiles(t *testing.T) {
	dir := committedRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "Home.cs"), []byte("changed"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "New.cs"), []byte("new"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("outside"), 0644))

	files, err := gitinfo.New().ChangedFiles(filepath.Join(dir, "src"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Home.cs", "New.cs"}, files)
}

func TestGitInfo_ChangedFiles_Clean(t *testing.T) {
	dir := committedRepo(t)
	files, err := gitinfo.New().ChangedFiles(dir)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func committedRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.email", "test@test.com")
	runGit(t, dir, "config", "user.name", "Test")

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "Home.cs"), []byte("hello"), 0644))
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "init")
	return dir
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, string(out))
}
