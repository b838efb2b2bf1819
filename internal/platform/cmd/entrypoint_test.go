package cmd

import (
	"context"
	"flag"
	"testing"
)

type testConfig struct {
	DBPath  string `env:"CMD_TEST_DB_PATH" envDefault:"data/bot.db"`
	MaxDice int    `env:"CMD_TEST_MAX_DICE" envDefault:"99"`
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("CMD_TEST_DB_PATH", "env/bot.db")
	t.Setenv("CMD_TEST_MAX_DICE", "50")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfgRef := testConfig{}
	if err := ParseConfig(&cfgRef); err != nil {
		t.Fatalf("load config defaults: %v", err)
	}
	fs.StringVar(&cfgRef.DBPath, "db-path", cfgRef.DBPath, "db path")
	fs.IntVar(&cfgRef.MaxDice, "max-dice", cfgRef.MaxDice, "max dice")

	if err := ParseArgs(fs, []string{"-db-path", "flag/bot.db"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if cfgRef.DBPath != "flag/bot.db" {
		t.Fatalf("expected flag value for db path, got %q", cfgRef.DBPath)
	}
	if cfgRef.MaxDice != 50 {
		t.Fatalf("expected env value for max dice, got %d", cfgRef.MaxDice)
	}
}

func TestParseConfigFromArgsReadsEnvAndFlags(t *testing.T) {
	t.Setenv("CMD_TEST_DB_PATH", "configarg/bot.db")
	t.Setenv("CMD_TEST_MAX_DICE", "75")

	cfgRef := testConfig{}
	fs := flag.NewFlagSet("configargs", flag.ContinueOnError)
	fs.StringVar(&cfgRef.DBPath, "db-path", "", "db path")
	fs.IntVar(&cfgRef.MaxDice, "max-dice", 0, "max dice")
	if err := ParseConfigFromArgs(&cfgRef, fs, []string{"-db-path", "flag2/bot.db"}); err != nil {
		t.Fatalf("parse config and args: %v", err)
	}
	if cfgRef.DBPath != "flag2/bot.db" {
		t.Fatalf("expected parsed flag db path, got %q", cfgRef.DBPath)
	}
	if cfgRef.MaxDice != 75 {
		t.Fatalf("expected env default max dice, got %d", cfgRef.MaxDice)
	}
}

func TestParseArgsRejectsNilParser(t *testing.T) {
	if err := ParseArgs(nil, []string{}); err == nil {
		t.Fatal("expected parse args to reject nil parser")
	}
}

func TestRunWithTelemetryRejectsMissingInputs(t *testing.T) {
	if err := RunWithTelemetry(nil, "", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing service error")
	}
	if err := RunWithTelemetry(nil, ServiceTelegram, nil); err == nil {
		t.Fatal("expected missing run function error")
	}
}
