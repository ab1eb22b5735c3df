package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"gencatalog/internal/config"
	"gencatalog/internal/testsupport"
)

// fixtureIndexes mirrors a GENCODE mirror served as Apache index pages.
var fixtureIndexes = map[string][]string{
	"/gencode/":                           {"Gencode_human/", "Gencode_mouse/", "README"},
	"/gencode/Gencode_human/":             {"release_21/", "release_44/", "latest_release/"},
	"/gencode/Gencode_human/release_44/":  {"GRCh38.primary_assembly.genome.fa.gz", "gencode.v44.annotation.gtf.gz", "GRCh37_mapping/"},
	"/gencode/Gencode_mouse/":             {"release_M33/"},
	"/gencode/Gencode_mouse/release_M33/": {"GRCm39.primary_assembly.genome.fa.gz", "gencode.vM33.annotation.gtf.gz"},
}

const fixtureGenomes = `{"ucscGenomes":{
  "hg38":{"description":"Dec. 2013 (GRCh38/hg38)","organism":"Human","scientificName":"Homo sapiens","sourceName":"GRCh38 Genome Reference Consortium Human Reference 38 (GCA_000001405.15)","taxId":9606,"active":1},
  "hg19":{"description":"Feb. 2009 (GRCh37/hg19)","organism":"Human","scientificName":"Homo sapiens","sourceName":"GRCh37 Genome Reference Consortium Human Reference 37 (GCA_000001405.1)","taxId":9606,"active":1},
  "mm39":{"description":"Jun. 2020 (GRCm39/mm39)","organism":"Mouse","scientificName":"Mus musculus","sourceName":"GRCm39 Genome Reference Consortium Mouse Reference 39 (GCA_000001635.9)","taxId":10090,"active":1}
}}`

type cliTestEnv struct {
	cfg        *config.Config
	server     *httptest.Server
	configPath string
	listings   atomic.Int32
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	env := &cliTestEnv{}
	mux := http.NewServeMux()
	mux.HandleFunc("/gencode/", func(w http.ResponseWriter, r *http.Request) {
		entries, ok := fixtureIndexes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		env.listings.Add(1)
		var page strings.Builder
		page.WriteString(`<html><body><a href="?C=N;O=D">Name</a> <a href="/gencode/">Parent Directory</a>`)
		for _, entry := range entries {
			fmt.Fprintf(&page, `<a href="%s">%s</a>`, entry, entry)
		}
		page.WriteString("</body></html>")
		_, _ = w.Write([]byte(page.String()))
	})
	mux.HandleFunc("/list/ucscGenomes", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fixtureGenomes))
	})
	mux.HandleFunc("/goldenPath/hg38/bigZips/hg38.fa.gz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(">chr1\nACGT\n"))
	})
	env.server = httptest.NewServer(mux)
	t.Cleanup(env.server.Close)

	env.cfg = testsupport.NewConfig(t,
		testsupport.WithBaseURL(env.server.URL+"/gencode"),
		testsupport.WithUCSC(env.server.URL+"/list/ucscGenomes", env.server.URL+"/goldenPath"),
		testsupport.WithMetricsTextfile("gencatalog.prom"),
	)
	env.configPath = filepath.Join(t.TempDir(), "config.toml")
	writeTestConfig(t, env.configPath, env.cfg)
	return env
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--log-level", "error"}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got %q", needle, haystack)
	}
}

func TestCLIGenomesJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"genomes", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("genomes --json: %v", err)
	}
	var records []struct {
		Name        string   `json:"name"`
		TaxonomyID  int      `json:"taxonomy_id"`
		Annotations []string `json:"annotations"`
		Accession   string   `json:"assembly_accession"`
		OtherInfo   string   `json:"other_info"`
	}
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("decode output: %v (%q)", err, out)
	}
	got := map[string]string{}
	for _, record := range records {
		got[record.Name] = record.Accession
	}
	want := map[string]string{
		"GRCh38": "GCA_000001405.15",
		"GRCh37": "GCA_000001405.1",
		"GRCm39": "GCA_000001635.9",
	}
	if len(got) != len(want) {
		t.Fatalf("unexpected assemblies: %v", got)
	}
	for name, accession := range want {
		if got[name] != accession {
			t.Fatalf("%s accession = %q, want %q", name, got[name], accession)
		}
	}
	for _, record := range records {
		if record.Name == "GRCh38" && record.OtherInfo != "GENCODE annotation + UCSC hg38 genome" {
			t.Fatalf("unexpected other_info %q", record.OtherInfo)
		}
	}
}

func TestCLIGenomesTableAndSearch(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"genomes"}, env.configPath)
	if err != nil {
		t.Fatalf("genomes: %v", err)
	}
	requireContains(t, out, "GRCm39")
	requireContains(t, out, "Mus musculus")

	out, _, err = runCLI(t, []string{"search", "10090"}, env.configPath)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	requireContains(t, out, "GRCm39")
	if strings.Contains(out, "GRCh38") {
		t.Fatalf("taxonomy search matched human assembly: %q", out)
	}

	out, _, err = runCLI(t, []string{"search", "zebrafish"}, env.configPath)
	if err != nil {
		t.Fatalf("search miss: %v", err)
	}
	requireContains(t, out, "No matching assemblies")
}

func TestCLIDiscoveryIsCachedAcrossCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"genomes"}, env.configPath); err != nil {
		t.Fatalf("first genomes: %v", err)
	}
	afterFirst := env.listings.Load()
	if _, _, err := runCLI(t, []string{"genomes"}, env.configPath); err != nil {
		t.Fatalf("second genomes: %v", err)
	}
	if env.listings.Load() != afterFirst {
		t.Fatalf("expected cached discovery, listings went from %d to %d", afterFirst, env.listings.Load())
	}

	out, _, err := runCLI(t, []string{"cache", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "gencode.discover")
	requireContains(t, out, "ucsc.genomes")

	out, _, err = runCLI(t, []string{"cache", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Removed 3 cache entries")

	out, _, err = runCLI(t, []string{"cache", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("cache list after clear: %v", err)
	}
	requireContains(t, out, "Cache is empty")

	if _, err := os.Stat(env.cfg.Metrics.Textfile); err != nil {
		t.Fatalf("expected metrics textfile: %v", err)
	}
}

func TestCLIInfoAndAnnotations(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"info", "GRCh37"}, env.configPath)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	requireContains(t, out, "hg19")
	requireContains(t, out, "GCA_000001405.1")

	out, _, err = runCLI(t, []string{"annotations", "GRCh37"}, env.configPath)
	if err != nil {
		t.Fatalf("annotations: %v", err)
	}
	requireContains(t, out, "/gencode/Gencode_human/release_44/GRCh37_mapping/gencode.v44lift37.annotation.gtf.gz")

	if _, _, err := runCLI(t, []string{"annotations", "GRCz11"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown assembly")
	}
}

func TestCLILinkAndDownload(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"link", "GRCh38", "--skip-probe"}, env.configPath)
	if err != nil {
		t.Fatalf("link --skip-probe: %v", err)
	}
	requireContains(t, out, "/goldenPath/hg38/bigZips/chromFa.tar.gz")

	out, _, err = runCLI(t, []string{"link", "GRCh38"}, env.configPath)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	requireContains(t, out, "/goldenPath/hg38/bigZips/hg38.fa.gz")

	if _, _, err := runCLI(t, []string{"link", "GRCh38", "--mask", "partial"}, env.configPath); err == nil {
		t.Fatal("expected error for invalid mask")
	}

	out, _, err = runCLI(t, []string{"download", "GRCh38", "--localname", "human"}, env.configPath)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	target := filepath.Join(env.cfg.Paths.GenomesDir, "human", "hg38.fa.gz")
	requireContains(t, out, target)
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read download: %v", err)
	}
	if string(data) != ">chr1\nACGT\n" {
		t.Fatalf("unexpected download content %q", data)
	}
}

func TestCLIPingAndStatus(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"ping"}, env.configPath)
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	requireContains(t, out, "GENCODE reachable")

	out, _, err = runCLI(t, []string{"status", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("status --json: %v", err)
	}
	var report struct {
		Healthy bool `json:"healthy"`
		Checks  []struct {
			Name   string `json:"name"`
			Passed bool   `json:"passed"`
		} `json:"checks"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode status: %v (%q)", err, out)
	}
	if !report.Healthy || len(report.Checks) != 4 {
		t.Fatalf("unexpected status report: %+v", report)
	}

	out, _, err = runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Dependencies ==")
	requireContains(t, out, "[OK]")
}

func TestCLIPingFailsWhenUnreachable(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Gencode.BaseURL = env.server.URL + "/missing"
	writeTestConfig(t, env.configPath, env.cfg)

	if _, _, err := runCLI(t, []string{"ping"}, env.configPath); err == nil {
		t.Fatal("expected ping to fail for missing root")
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config already exists")
	}
}
