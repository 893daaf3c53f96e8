package arena

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("arena", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "arena.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.Seed != "" {
		t.Fatalf("expected empty seed, got %q", cfg.Seed)
	}
}

func TestParseConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("EMBERARENA_ARENA_DB", "env.db")
	t.Setenv("EMBERARENA_ARENA_ADMINS", "root")

	fs := flag.NewFlagSet("arena", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-db", "flag.db", "-seed", "abc"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "flag.db" {
		t.Fatalf("expected flag to win, got %q", cfg.DBPath)
	}
	if cfg.Seed != "abc" {
		t.Fatalf("expected seed abc, got %q", cfg.Seed)
	}
	if cfg.Admins != "root" {
		t.Fatalf("expected admins from env, got %q", cfg.Admins)
	}
}

func TestSplitAdmins(t *testing.T) {
	got := splitAdmins(" root , ops ,, ")
	if len(got) != 2 || got[0] != "root" || got[1] != "ops" {
		t.Fatalf("unexpected admins %v", got)
	}
	if got := splitAdmins(""); len(got) != 0 {
		t.Fatalf("expected no admins, got %v", got)
	}
}
