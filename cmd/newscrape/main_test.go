package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("NEWSCRAPE_LOG_LEVEL", "error")
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeConfig(t *testing.T, dir, siteURL, extra string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`output_path: %s
news_sites:
  local:
    url: %s
    parser: homepage
    queries:
      homepage_article_links: "a.story"
      news_title: ".headline"
      news_summary: ".summary"
      news_body: ".body p"
storage:
  dsn: %s
%s`, filepath.Join(dir, "news"), siteURL, filepath.Join(dir, "news.db"), extra)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// TestRootCommand_Subcommands verifies the pipeline stages are registered
func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()

	for _, name := range []string{"extract", "transform", "load", "run"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

// TestExtract_MissingConfigFile verifies a missing file is an error
func TestExtract_MissingConfigFile(t *testing.T) {
	_, err := execute(t, "extract", "--config_file", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// TestTransform_RequiresInputs verifies the required flag
func TestTransform_RequiresInputs(t *testing.T) {
	_, err := execute(t, "transform")
	assert.Error(t, err)
}

// TestRun_ConfigurationError verifies invalid sites fail before any request
func TestRun_ConfigurationError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`news_sites:
  broken:
    url: https://example.test/
    parser: NotAParser
    queries: {}
`), 0o600))

	_, err := execute(t, "run", "--config_file", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown parser")
}

// TestRun_EndToEnd verifies the run command against a local site and the
// db_dsn environment override
func TestRun_EndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<a class="story" href="/a">a</a><a class="story" href="/b">b</a>`)
	})
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<h1 class="headline">Primera</h1><div class="body"><p>Texto</p></div>`)
	})
	mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<h1 class="headline">Segunda</h1>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	envDSN := filepath.Join(dir, "env.db")
	t.Setenv("NEWSCRAPE_DB_DSN", envDSN)

	path := writeConfig(t, dir, srv.URL+"/", "write_text_files: true\n")
	out, err := execute(t, "run", "--config_file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "local")

	_, err = os.Stat(envDSN)
	assert.NoError(t, err, "NEWSCRAPE_DB_DSN should override storage.dsn")
	_, err = os.Stat(filepath.Join(dir, "news", "transform_news.json"))
	assert.NoError(t, err)
}

// TestStages_Separately verifies extract, transform and load as separate
// commands
func TestStages_Separately(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<a class="story" href="/a">a</a>`)
	})
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<h1 class="headline">Única</h1>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	path := writeConfig(t, dir, srv.URL+"/", "")
	news := filepath.Join(dir, "news")
	dsn := filepath.Join(dir, "stages.db")
	t.Setenv("NEWSCRAPE_DB_DSN", dsn)

	_, err := execute(t, "extract", "--config_file", path)
	require.NoError(t, err)
	_, err = execute(t, "transform", "--inputs", news)
	require.NoError(t, err)
	_, err = execute(t, "load", "--inputs", news)
	require.NoError(t, err)

	_, err = os.Stat(dsn)
	assert.NoError(t, err)
}

// TestCommands_OnlyStageFlags verifies no stage takes flags beyond its input
func TestCommands_OnlyStageFlags(t *testing.T) {
	root := newRootCommand()
	assert.False(t, root.PersistentFlags().HasFlags())

	want := map[string]string{
		"extract":   "config_file",
		"transform": "inputs",
		"load":      "inputs",
		"run":       "config_file",
	}
	for name, flag := range want {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)

		var names []string
		cmd.LocalNonPersistentFlags().VisitAll(func(f *pflag.Flag) {
			names = append(names, f.Name)
		})
		assert.Equal(t, []string{flag}, names, name)
	}
}

// TestExtract_AllSitesFail verifies a non-zero exit when nothing succeeds
func TestExtract_AllSitesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	path := writeConfig(t, t.TempDir(), srv.URL+"/", "")
	_, err := execute(t, "extract", "--config_file", path)
	assert.Error(t, err)
}
