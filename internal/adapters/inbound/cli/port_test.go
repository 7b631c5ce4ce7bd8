package cli_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/portcore/internal/adapters/inbound/cli"
	"github.com/openkraft/portcore/internal/domain"
)

const analysisDump = `{"projects": [
  {"project_path": "Api/Api.csproj", "features": {"webapi": true},
   "files": [{"path": "Api/ValuesController.cs", "usings": ["System.Web.Http"]}]},
  {"project_path": "Client/Client.csproj", "features": {"wcf_client": true},
   "files": [{"path": "Client/Proxy.cs", "usings": ["System.ServiceModel"]}]}
]}`

var remoteRules = map[string]string{
	"system.web.http.json": `{"namespace":"System.Web.Http","recommendations":[{"name":"use-aspnetcore","type":"package"}]}`,
	"project.all.json":     `{"namespace":"project.all","recommendations":[{"name":"retarget","type":"project"}]}`,
}

// newSolutionDir writes a configured solution whose remote store is a local
// test server.
func newSolutionDir(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := remoteRules[strings.TrimPrefix(r.URL.Path, "/")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Method == http.MethodGet {
			_, _ = io.WriteString(w, body)
		}
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := "analysis: analysis.json\n" +
		"cache:\n  dir: cache\n" +
		"resources:\n  dir: templates\n" +
		"remote:\n  base_url: " + srv.URL + "\n  templates_url: " + srv.URL + "\n" +
		"logging:\n  level: error\n"
	writeFile(t, filepath.Join(dir, ".portcore.yaml"), cfg)
	writeFile(t, filepath.Join(dir, "analysis.json"), analysisDump)
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestClassifyCommand_PrintsTypes(t *testing.T) {
	dir := newSolutionDir(t)

	out, err := execute(t, "classify", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Web Api")
	assert.Contains(t, out, "WCF Client")
	assert.NoDirExists(t, filepath.Join(dir, "cache"), "classify must not touch the rule cache")
}

func TestClassifyCommand_JSON(t *testing.T) {
	out, err := execute(t, "classify", newSolutionDir(t), "--json")
	require.NoError(t, err)

	var types map[string]domain.ProjectType
	require.NoError(t, json.Unmarshal([]byte(out), &types), "output should be valid JSON")
	assert.Equal(t, domain.ProjectTypeWebApi, types["Api/Api.csproj"])
	assert.Equal(t, domain.ProjectTypeWCFClient, types["Client/Client.csproj"])
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	dir := newSolutionDir(t)

	out, err := execute(t, "analyze", dir, "--json")
	require.NoError(t, err)

	var result domain.SolutionResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.AnalysisResults, 2)
	assert.Empty(t, result.RunResults)
	assert.True(t, result.DownloadedFiles.Has("system.web.http.json"))
	assert.FileExists(t, filepath.Join(dir, "cache", "project.all.json"))
	assert.FileExists(t, filepath.Join(dir, ".portcore", "reports", "analysis.json"))
}

func TestRunCommand_RecordsHistory(t *testing.T) {
	dir := newSolutionDir(t)

	out, err := execute(t, "run", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Run")
	assert.Contains(t, out, "Totals")

	out, err = execute(t, "history", dir, "--json")
	require.NoError(t, err)
	var entries []domain.RunEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].Projects)
}

func TestIncrementalCommand_UsesCachedRules(t *testing.T) {
	dir := newSolutionDir(t)
	_, err := execute(t, "analyze", dir)
	require.NoError(t, err)

	out, err := execute(t, "incremental", "--path", dir, "--json", "Api/ValuesController.cs", "Unknown.cs")
	require.NoError(t, err)

	var files []domain.FileActions
	require.NoError(t, json.Unmarshal([]byte(out), &files))
	require.Len(t, files, 2)
	assert.Equal(t, "Api/ValuesController.cs", files[0].FilePath)
	require.Len(t, files[0].Actions, 1)
	assert.Equal(t, "use-aspnetcore", files[0].Actions[0].Name)
	assert.Empty(t, files[1].Actions)
}

func TestIncrementalCommand_RequiresFiles(t *testing.T) {
	_, err := execute(t, "incremental", "--path", newSolutionDir(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no changed files")
}

func TestCacheCommands(t *testing.T) {
	dir := newSolutionDir(t)

	out, err := execute(t, "cache", "status", "--path", dir, "--json")
	require.NoError(t, err)
	var st domain.CacheStatus
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.False(t, st.Exists)

	_, err = execute(t, "cache", "reset", "--path", dir)
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(dir, "cache"))
}

func TestMetricsTextfile(t *testing.T) {
	dir := newSolutionDir(t)
	metrics := filepath.Join(t.TempDir(), "portcore.prom")

	_, err := execute(t, "analyze", dir, "--metrics-textfile", metrics)
	require.NoError(t, err)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "portcore_rule_fetches_total")
}

func TestRootFlags_InvalidLogFormat(t *testing.T) {
	_, err := execute(t, "classify", newSolutionDir(t), "--log-format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log-format")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "portcore dev")
}
