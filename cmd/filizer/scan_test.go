package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/filizer/internal/model"
	"github.com/nao1215/filizer/internal/registry"
	"github.com/nao1215/filizer/internal/report"
)

// registryServer answers validation queries from a map of file name to
// matches and records submissions.
type registryServer struct {
	mu           sync.Mutex
	matches      map[string][]model.RegistryMatch
	unauthorized bool
	posted       []model.FileRecord
	authHeaders  []string
}

func (s *registryServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.authHeaders = append(s.authHeaders, r.Header.Get("Authorization"))
	if s.unauthorized {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		matches := s.matches[r.URL.Query().Get("name_eq")]
		if matches == nil {
			matches = []model.RegistryMatch{}
		}
		_ = json.NewEncoder(w).Encode(matches)
	case http.MethodPost:
		var record model.FileRecord
		if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.posted = append(s.posted, record)
		w.WriteHeader(http.StatusCreated)
	}
}

func (s *registryServer) submissions() []model.FileRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.FileRecord(nil), s.posted...)
}

// scanEnv is a scan directory, an isolated config file and a history
// directory.
type scanEnv struct {
	root   string
	config string
	dbDir  string
	url    string
	server *registryServer
}

func newScanEnv(t *testing.T, server *registryServer) *scanEnv {
	t.Helper()

	srv := httptest.NewServer(server)
	t.Cleanup(srv.Close)

	base := t.TempDir()
	env := &scanEnv{
		root:   filepath.Join(base, "photos"),
		config: filepath.Join(base, "config.yaml"),
		dbDir:  filepath.Join(base, "db"),
		url:    srv.URL + "/api/files",
		server: server,
	}
	if err := os.MkdirAll(env.root, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(env.config, []byte("level: ERROR\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return env
}

func (e *scanEnv) writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(e.root, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the root command with the environment's config and history
// directory and returns stdout and stderr.
func (e *scanEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (e *scanEnv) scanArgs(extra ...string) []string {
	args := []string{"scan", e.root, "--url", e.url, "--config", e.config, "--db-dir", e.dbDir}
	return append(args, extra...)
}

func decodeJSONReport(t *testing.T, data string) *model.ScanReport {
	t.Helper()

	var wrapped report.JSONReport
	if err := json.Unmarshal([]byte(data), &wrapped); err != nil {
		t.Fatalf("invalid JSON report: %v\n%s", err, data)
	}
	if wrapped.Report == nil {
		t.Fatalf("JSON report has no report: %s", data)
	}
	return wrapped.Report
}

func TestScanCmd(t *testing.T) {
	t.Parallel()

	t.Run("text summary for new and duplicate files", func(t *testing.T) {
		t.Parallel()

		server := &registryServer{matches: map[string][]model.RegistryMatch{
			"dup.txt": {{FullPath: "/elsewhere/dup.txt"}},
		}}
		env := newScanEnv(t, server)
		env.writeFile(t, "new.txt", "fresh")
		env.writeFile(t, "dup.txt", "seen")

		stdout, _, err := env.run(t, "", env.scanArgs("--token", "s3cret")...)
		if err != nil {
			t.Fatalf("scan failed: %v", err)
		}

		for _, want := range []string{
			"SCAN SUMMARY REPORT",
			"New Files Posted:      1",
			"Duplicates Found:      1",
			" - photos",
		} {
			if !strings.Contains(stdout, want) {
				t.Errorf("summary missing %q:\n%s", want, stdout)
			}
		}
		if got := len(server.submissions()); got != 2 {
			t.Errorf("expected 2 submissions, got %d", got)
		}
		for _, h := range server.authHeaders {
			if h != "Bearer s3cret" {
				t.Errorf("Authorization = %q", h)
			}
		}
	})

	t.Run("forced delete with json report file", func(t *testing.T) {
		t.Parallel()

		server := &registryServer{matches: map[string][]model.RegistryMatch{
			"dup.txt": {{FullPath: "/elsewhere/dup.txt", Action: "rm"}},
		}}
		env := newScanEnv(t, server)
		dup := env.writeFile(t, "dup.txt", "seen")
		out := filepath.Join(t.TempDir(), "reports", "scan.json")

		if _, _, err := env.run(t, "", env.scanArgs("--force", "-f", "json", "-o", out)...); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		if _, err := os.Stat(dup); !os.IsNotExist(err) {
			t.Errorf("expected %s to be deleted, stat error %v", dup, err)
		}

		data, err := os.ReadFile(out) //nolint:gosec // test file
		if err != nil {
			t.Fatalf("report file missing: %v", err)
		}
		got := decodeJSONReport(t, string(data))
		if got.Stats.Duplicate != 1 || got.Stats.ActionsTaken != 1 {
			t.Errorf("unexpected stats: %+v", got.Stats)
		}
	})

	t.Run("delete declined on piped input", func(t *testing.T) {
		t.Parallel()

		server := &registryServer{matches: map[string][]model.RegistryMatch{
			"dup.txt": {{FullPath: "/elsewhere/dup.txt", Action: "rm"}},
		}}
		env := newScanEnv(t, server)
		dup := env.writeFile(t, "dup.txt", "seen")

		_, stderr, err := env.run(t, "n\n", env.scanArgs("--level", "WARNING", "-f", "json")...)
		if err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		if _, err := os.Stat(dup); err != nil {
			t.Errorf("declined file was removed: %v", err)
		}
		if !strings.Contains(stderr, "CONFIRM: Delete") {
			t.Errorf("expected a confirmation prompt, got stderr:\n%s", stderr)
		}
		if !strings.Contains(stderr, "not a terminal") {
			t.Errorf("expected a non-terminal warning, got stderr:\n%s", stderr)
		}
	})

	t.Run("dry run changes nothing", func(t *testing.T) {
		t.Parallel()

		server := &registryServer{matches: map[string][]model.RegistryMatch{
			"dup.txt": {{FullPath: "/elsewhere/dup.txt", Action: "rm"}},
		}}
		env := newScanEnv(t, server)
		dup := env.writeFile(t, "dup.txt", "seen")
		env.writeFile(t, "new.txt", "fresh")

		stdout, _, err := env.run(t, "", env.scanArgs("--dry-run", "--force", "-f", "json")...)
		if err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		if _, err := os.Stat(dup); err != nil {
			t.Errorf("dry run removed a file: %v", err)
		}
		if got := len(server.submissions()); got != 0 {
			t.Errorf("dry run submitted %d records", got)
		}
		if got := decodeJSONReport(t, stdout); !got.Preview {
			t.Error("expected a preview report")
		}
	})

	t.Run("rejected credentials abort the scan", func(t *testing.T) {
		t.Parallel()

		env := newScanEnv(t, &registryServer{unauthorized: true})
		env.writeFile(t, "a.txt", "a")

		stdout, _, err := env.run(t, "", env.scanArgs("--token", "bad")...)
		if !errors.Is(err, registry.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		if exitCode(err) != 1 {
			t.Errorf("exit code = %d, want 1", exitCode(err))
		}
		if !strings.Contains(stdout, "Scan aborted: registry rejected credentials") {
			t.Errorf("expected the partial summary, got:\n%s", stdout)
		}
	})

	t.Run("token never reaches the log", func(t *testing.T) {
		t.Parallel()

		env := newScanEnv(t, &registryServer{})
		env.writeFile(t, "a.txt", "a")
		logFile := filepath.Join(t.TempDir(), "filizer.log")

		_, stderr, err := env.run(t, "", env.scanArgs("--token", "tok-XYZ", "-v", "--log", logFile)...)
		if err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		data, err := os.ReadFile(logFile) //nolint:gosec // test file
		if err != nil {
			t.Fatalf("log file missing: %v", err)
		}
		if len(data) == 0 {
			t.Error("expected debug output in the log file")
		}
		if strings.Contains(stderr, "tok-XYZ") || strings.Contains(string(data), "tok-XYZ") {
			t.Error("token leaked to the log")
		}
	})

	t.Run("invalid configuration", func(t *testing.T) {
		t.Parallel()

		env := newScanEnv(t, &registryServer{})
		tests := []struct {
			name string
			args []string
			want string
		}{
			{name: "bad url", args: []string{"scan", env.root, "--config", env.config, "--url", "ftp://x"}, want: "configuration error"},
			{name: "bad format", args: env.scanArgs("-f", "html"), want: "configuration error"},
			{name: "missing root", args: []string{"scan", filepath.Join(env.root, "nope"), "--url", env.url, "--config", env.config}, want: "scan failed"},
			{name: "missing config file", args: []string{"scan", env.root, "--url", env.url, "--config", filepath.Join(env.root, "none.yaml")}, want: "config"},
		}
		for _, tt := range tests {
			_, _, err := env.run(t, "", tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("%s: expected error containing %q, got %v", tt.name, tt.want, err)
			}
		}
	})
}

func TestHistoryAndCompareCmd(t *testing.T) {
	t.Parallel()

	server := &registryServer{matches: map[string][]model.RegistryMatch{
		"dup.txt": {{FullPath: "/elsewhere/dup.txt"}},
	}}
	env := newScanEnv(t, server)
	env.writeFile(t, "new.txt", "fresh")

	if _, _, err := env.run(t, "", env.scanArgs()...); err != nil {
		t.Fatalf("first scan failed: %v", err)
	}

	_, _, err := env.run(t, "", "compare", env.root, "--db-dir", env.dbDir)
	if err == nil || !strings.Contains(err.Error(), "only one scan") {
		t.Errorf("expected 'only one scan' error, got %v", err)
	}

	env.writeFile(t, "dup.txt", "seen")
	if _, _, err := env.run(t, "", env.scanArgs()...); err != nil {
		t.Fatalf("second scan failed: %v", err)
	}

	stdout, _, err := env.run(t, "", "history", "--db-dir", env.dbDir)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(stdout, "Scan history (2 scans)") {
		t.Errorf("unexpected history listing:\n%s", stdout)
	}

	stdout, _, err = env.run(t, "", "history", "--db-dir", env.dbDir, "--id", "2", "-f", "yaml")
	if err != nil {
		t.Fatalf("history --id failed: %v", err)
	}
	if !strings.Contains(stdout, "duplicate: 1") {
		t.Errorf("expected the second scan as YAML:\n%s", stdout)
	}

	if _, _, err := env.run(t, "", "history", "--db-dir", env.dbDir, "--id", "99"); err == nil {
		t.Error("expected an error for an unknown scan ID")
	}

	stdout, _, err = env.run(t, "", "compare", env.root, "--db-dir", env.dbDir, "--json")
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	var result CompareResult
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("invalid compare JSON: %v\n%s", err, stdout)
	}
	if result.Previous.ID != 1 || result.Current.ID != 2 {
		t.Errorf("unexpected scans compared: %+v %+v", result.Previous, result.Current)
	}
	for _, ch := range result.Changes {
		if ch.Name == "duplicate" && (ch.Delta != 1 || ch.Direction != directionUp) {
			t.Errorf("unexpected duplicate change: %+v", ch)
		}
	}

	stdout, _, err = env.run(t, "", "compare", env.root, "--db-dir", env.dbDir, "--with-scan-id", "1")
	if err != nil {
		t.Fatalf("compare --with-scan-id failed: %v", err)
	}
	if !strings.Contains(stdout, "Scan Comparison:") {
		t.Errorf("unexpected comparison output:\n%s", stdout)
	}
}

func TestHistoryCmd_NoDatabase(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"history", "--db-dir", t.TempDir()})
	if err := cmd.Execute(); !errors.Is(err, errNoHistory) {
		t.Errorf("expected errNoHistory, got %v", err)
	}
}

func TestDirection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		delta int
		want  string
	}{
		{delta: 2, want: directionUp},
		{delta: -1, want: directionDown},
		{delta: 0, want: directionUnchanged},
	}
	for _, tt := range tests {
		if got := direction(tt.delta); got != tt.want {
			t.Errorf("direction(%d) = %q, want %q", tt.delta, got, tt.want)
		}
	}
}
