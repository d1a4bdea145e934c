package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"expertstats/internal/config"
	"expertstats/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	api        *fakeAPI
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("EXPERTSTATS_API_TOKEN", "")
	t.Setenv("EXPERTSTATS_PASSWORD", "")

	api := newFakeAPI(t)
	cfg := testsupport.NewConfig(t, testsupport.WithAPI(api.server.URL, "cli-token"))

	configPath := filepath.Join(homeDir, ".config", "expertstats", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		api:        api,
		configPath: configPath,
		baseDir:    base,
	}
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

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ndata_dir = %q\nlog_dir = %q\ncache_dir = %q\n\n[api]\nbase_url = %q\ntoken = %q\n\n[sync]\ncancel_after_days = %d\n\n[logging]\nlevel = \"error\"\n",
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Paths.CacheDir,
		cfg.API.BaseURL,
		cfg.API.Token,
		cfg.Sync.CancelAfterDays,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// fakeAPI serves one transaction and one paid task from the pending list.
type fakeAPI struct {
	server *httptest.Server

	mu       sync.Mutex
	requests []string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{}
	activity := time.Now().Add(-time.Hour).Unix()

	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		api.record(r)
		writeBody(w, `{"id": 1, "full_name": "Test Expert"}`)
	})
	mux.HandleFunc("/users/me/transactions", func(w http.ResponseWriter, r *http.Request) {
		api.record(r)
		switch r.URL.Query().Get("page") {
		case "1":
			writeBody(w, `{"transactions": [{
				"id": 501,
				"description": "task_completion",
				"timestamp": 1700000000,
				"fee_percentage": 10,
				"fee_amount": 20,
				"task": {"id": 42, "kind": "task", "title": "Speed up checkout"},
				"task_client": {"id": 7, "full_name": "Acme Client", "timezone_offset": 3600},
				"credit_amounts": [{"id": 1, "amount": 200}, {"id": 2, "amount": 20}, {"id": 3, "amount": 180}],
				"debit_amounts": [{"id": 4, "amount": 220}, {"id": 5, "amount": 220}]
			}]}`)
		case "2":
			writeBody(w, `{"transactions": [], "average_task_size": "410.00", "balance": "180", "revenue": "1800.50"}`)
		default:
			writeBody(w, `{"transactions": []}`)
		}
	})
	mux.HandleFunc("/users/me/tasks/", func(w http.ResponseWriter, r *http.Request) {
		api.record(r)
		if r.URL.Path == "/users/me/tasks/pending" && r.URL.Query().Get("page") == "1" {
			writeBody(w, fmt.Sprintf(`[{
				"id": 42,
				"title": "Speed up checkout",
				"state": "paid",
				"kind": "task",
				"prices": {"client_fee_percentage": 17.5, "contractor_earnings": 180, "client_price_after_discounts": 235},
				"client": {"id": 7, "full_name": "Acme Client"},
				"last_event": {"object": {"timestamp": %d}, "user": {"full_name": "Acme Client"}}
			}]`, activity))
			return
		}
		writeBody(w, `[]`)
	})
	mux.HandleFunc("/users/login", func(w http.ResponseWriter, r *http.Request) {
		api.record(r)
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("auth-token", "fresh-token")
		writeBody(w, `{}`)
	})

	api.server = httptest.NewServer(mux)
	t.Cleanup(api.server.Close)
	return api
}

func (a *fakeAPI) record(r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	entry := r.Method + " " + r.URL.Path
	if r.URL.RawQuery != "" {
		entry += "?" + r.URL.RawQuery
	}
	a.requests = append(a.requests, entry)
}

func (a *fakeAPI) Requests() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.requests...)
}

func writeBody(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}
