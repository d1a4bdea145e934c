package main

import (
	"context"
	"testing"

	"expertstats/internal/store"
	"expertstats/internal/testsupport"
)

func TestLoginStoresToken(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.API.Token = ""
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"login", "--email", "me@example.com", "--password", "pw"}, env.configPath)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	requireContains(t, out, "Signed in as me@example.com")

	st := testsupport.MustOpenStore(t, env.cfg)
	var token string
	if _, err := st.GetSetting(context.Background(), store.SettingAuthToken, &token); err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if token != "fresh-token" {
		t.Fatalf("expected stored token, got %q", token)
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"login", "--email", "me@example.com"}, env.configPath)
	if err == nil {
		t.Fatal("expected missing password error")
	}
}

func TestSyncWithoutSessionFails(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.API.Token = ""
	writeTestConfig(t, env.configPath, env.cfg)

	_, stderr, err := runCLI(t, []string{"sync"}, env.configPath)
	if err == nil {
		t.Fatal("expected sync to fail without a session")
	}
	requireContains(t, err.Error(), "login required")
	requireContains(t, stderr, "--resume")
}
