package discord

import (
	"context"
	"flag"
	"strings"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("discord", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "data/shadowsprite.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("SHADOWSPRITE_DISCORD_TOKEN", "env-token")
	t.Setenv("SHADOWSPRITE_DISCORD_LOG_CHANNEL_ID", "42")

	fs := flag.NewFlagSet("discord", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-token", "flag-token", "-db-path", "flag/shadow.db"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Token != "flag-token" {
		t.Fatalf("token = %q, want flag override", cfg.Token)
	}
	if cfg.DBPath != "flag/shadow.db" {
		t.Fatalf("db path = %q, want flag override", cfg.DBPath)
	}
	if cfg.ErrorChannelID != "42" {
		t.Fatalf("error channel = %q, want %q", cfg.ErrorChannelID, "42")
	}
}

func TestRunRequiresToken(t *testing.T) {
	err := Run(context.Background(), Config{})
	if err == nil || !strings.Contains(err.Error(), "discord token is required") {
		t.Fatalf("expected token error, got: %v", err)
	}
}
