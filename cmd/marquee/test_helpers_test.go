package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"marquee/internal/config"
	"marquee/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	imdb       *testsupport.FixtureServer
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("FANART_API_KEY", "")
	t.Setenv("MDBLIST_API_KEY", "")

	cinemeta := testsupport.ServeFixtures(t, map[string]string{
		"/meta/movie/tt0111161.json": "../../internal/sources/cinemeta/testdata/meta_movie.json",
	})
	imdb := testsupport.ServeFixtures(t, map[string]string{
		"/titles/tt0111161":         "../../internal/sources/imdbapi/testdata/title.json",
		"/titles/tt0111161/credits": "../../internal/sources/imdbapi/testdata/credits.json",
		"/search/titles":            "../../internal/sources/imdbapi/testdata/search.json",
	})
	cfg := testsupport.NewConfig(t,
		testsupport.WithSource(config.SourceCinemeta, cinemeta.URL),
		testsupport.WithSource(config.SourceIMDbAPI, imdb.URL),
	)

	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	testsupport.WriteConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, imdb: imdb}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected output to contain %q, got:\n%s", substr, output)
	}
}

func writeConfig(t *testing.T, env *cliTestEnv) {
	t.Helper()
	testsupport.WriteConfig(t, env.configPath, env.cfg)
}

func containsString(output, substr string) bool {
	return strings.Contains(output, substr)
}
