package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"shotrouter/internal/api"
)

func TestStatusCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, stderr, err := runCLI(t, env, "status", "--json")
	if err != nil {
		t.Fatalf("status: %v (stderr %s)", err, stderr)
	}

	var status api.DaemonStatus
	if err := json.Unmarshal([]byte(stdout), &status); err != nil {
		t.Fatalf("decode status: %v\n%s", err, stdout)
	}
	if !status.Running {
		t.Fatal("daemon should report running")
	}
	if status.Counts["inbox"] != 0 {
		t.Fatalf("counts = %v", status.Counts)
	}
}

func TestStatusCommandText(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, env, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, stdout, "Daemon:")
	requireContains(t, stdout, "running")
	requireContains(t, stdout, "inbox")
}

func TestListAndShowCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	id := seedScreenshot(t, env)

	stdout, _, err := runCLI(t, env, "list", "--status", "inbox", "--json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var resp api.ScreenshotListResponse
	if err := json.Unmarshal([]byte(stdout), &resp); err != nil {
		t.Fatalf("decode list: %v\n%s", err, stdout)
	}
	if len(resp.Items) != 1 || resp.Items[0].ID != id {
		t.Fatalf("items = %+v", resp.Items)
	}

	stdout, _, err = runCLI(t, env, "show", id)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, stdout, id)
	requireContains(t, stdout, `"status": "inbox"`)

	if _, _, err := runCLI(t, env, "show", "sr_missing"); err == nil {
		t.Fatal("show of unknown id should fail")
	}
}

func TestRouteQuarantineRemoveCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	id := seedScreenshot(t, env)
	destRoot := t.TempDir()

	stdout, _, err := runCLI(t, env, "route", id, destRoot, "--target-dir", "shots")
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	requireContains(t, stdout, "routed "+id)
	requireContains(t, stdout, destRoot)

	// Already routed; quarantine still parks it.
	stdout, _, err = runCLI(t, env, "quarantine", id)
	if err != nil {
		t.Fatalf("quarantine: %v", err)
	}
	requireContains(t, stdout, "quarantined "+id)

	stdout, _, err = runCLI(t, env, "rm", id, "--remove-file")
	if err != nil {
		t.Fatalf("rm: %v", err)
	}
	requireContains(t, stdout, "deleted "+id)

	record, err := env.store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record != nil {
		t.Fatal("record should be deleted")
	}
}

func TestRoutesCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	source := t.TempDir()
	dest := t.TempDir()

	stdout, _, err := runCLI(t, env, "routes", "add", source, dest, "--priority", "2")
	if err != nil {
		t.Fatalf("routes add: %v", err)
	}
	requireContains(t, stdout, "added route ")

	routes, err := env.store.ListRoutes(context.Background(), source)
	if err != nil || len(routes) != 1 {
		t.Fatalf("ListRoutes = %v, %v", routes, err)
	}
	id := routes[0].ID

	stdout, _, err = runCLI(t, env, "routes", "list", "--source", source)
	if err != nil {
		t.Fatalf("routes list: %v", err)
	}
	requireContains(t, stdout, id)
	requireContains(t, stdout, "yes")

	if _, _, err := runCLI(t, env, "routes", "set", id); err == nil {
		t.Fatal("set without flags should fail")
	}
	if _, _, err := runCLI(t, env, "routes", "set", id, "--active", "--inactive"); err == nil {
		t.Fatal("conflicting flags should fail")
	}

	if _, _, err := runCLI(t, env, "routes", "set", id, "--inactive", "--priority", "9"); err != nil {
		t.Fatalf("routes set: %v", err)
	}
	routes, err = env.store.ListRoutes(context.Background(), source)
	if err != nil || len(routes) != 1 {
		t.Fatalf("ListRoutes = %v, %v", routes, err)
	}
	if routes[0].Active || routes[0].Priority != 9 {
		t.Fatalf("route = %+v", routes[0])
	}

	if _, _, err := runCLI(t, env, "routes", "rm", id); err != nil {
		t.Fatalf("routes rm: %v", err)
	}
	if _, _, err := runCLI(t, env, "routes", "rm", id); err == nil {
		t.Fatal("removing a removed route should fail")
	}
}

func TestDestinationsCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	dest := t.TempDir()

	stdout, _, err := runCLI(t, env, "destinations", "add", dest, "--target-dir", "shots", "--name", "Work")
	if err != nil {
		t.Fatalf("destinations add: %v", err)
	}
	requireContains(t, stdout, dest)

	stdout, _, err = runCLI(t, env, "destinations", "list")
	if err != nil {
		t.Fatalf("destinations list: %v", err)
	}
	requireContains(t, stdout, "shots")
	requireContains(t, stdout, "Work")

	if _, _, err := runCLI(t, env, "destinations", "rm", dest); err != nil {
		t.Fatalf("destinations rm: %v", err)
	}
	if _, _, err := runCLI(t, env, "destinations", "rm", dest); err == nil {
		t.Fatal("removing a removed destination should fail")
	}
}

func TestSourcesCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := t.TempDir()

	stdout, _, err := runCLI(t, env, "sources", "watch", dir, "--debounce", "80")
	if err != nil {
		t.Fatalf("sources watch: %v", err)
	}
	requireContains(t, stdout, "watching "+dir)

	stdout, _, err = runCLI(t, env, "sources", "list")
	if err != nil {
		t.Fatalf("sources list: %v", err)
	}
	requireContains(t, stdout, dir)
	requireContains(t, stdout, "80")

	stdout, _, err = runCLI(t, env, "sources", "unwatch", dir)
	if err != nil {
		t.Fatalf("sources unwatch: %v", err)
	}
	requireContains(t, stdout, "stopped watching "+dir)

	if _, _, err := runCLI(t, env, "sources", "unwatch", dir); err == nil {
		t.Fatal("unwatching an unwatched path should fail")
	}
}

func TestUnreachableDaemonError(t *testing.T) {
	env := setupCLITestEnv(t)

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--api", "http://127.0.0.1:1", "--config", env.configPath, "status"})
	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected connection error")
	}
	requireContains(t, err.Error(), "daemon")
}

func TestEventsCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, env, "events")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	requireContains(t, stdout, `"next"`)
}

func TestMainVersionFlag(t *testing.T) {
	cmd := newRootCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetArgs([]string{"--version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, stdout.String(), version)
}
