// Package discord parses Discord daemon flags and launches the bot.
package discord

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bwmarrin/discordgo"
	discordbot "github.com/scarglamour/ShadowSprite/internal/bot/discord"
	entrypoint "github.com/scarglamour/ShadowSprite/internal/platform/cmd"
	"github.com/scarglamour/ShadowSprite/internal/services/roller"
	settingsdomain "github.com/scarglamour/ShadowSprite/internal/services/settings/domain"
	settingssqlite "github.com/scarglamour/ShadowSprite/internal/services/settings/storage/sqlite"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const defaultDBPath = "data/shadowsprite.db"

// Config holds Discord daemon configuration.
type Config struct {
	Token          string `env:"SHADOWSPRITE_DISCORD_TOKEN"`
	DBPath         string `env:"SHADOWSPRITE_DB_PATH" envDefault:"data/shadowsprite.db"`
	ErrorChannelID string `env:"SHADOWSPRITE_DISCORD_LOG_CHANNEL_ID"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Token, "token", cfg.Token, "The Discord bot token")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The SQLite database path shared by the chat daemons")
	fs.StringVar(&cfg.ErrorChannelID, "error-channel", cfg.ErrorChannelID, "The Discord channel ID receiving error reports")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the Discord daemon.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceDiscord, func(context.Context) error {
		return run(ctx, cfg)
	})
}

func run(ctx context.Context, cfg Config) error {
	if strings.TrimSpace(cfg.Token) == "" {
		return fmt.Errorf("discord token is required")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = defaultDBPath
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create storage dir: %w", err)
		}
	}

	settingsStore, err := settingssqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open settings sqlite store: %w", err)
	}
	defer func() {
		if closeErr := settingsStore.Close(); closeErr != nil {
			log.Printf("close settings sqlite store: %v", closeErr)
		}
	}()

	settings := settingsdomain.NewService(settingsStore, nil)
	rolls := roller.NewService(settings, nil, 0)
	printer := message.NewPrinter(language.AmericanEnglish)

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return fmt.Errorf("create discord session: %w", err)
	}
	reporter := discordbot.NewReporter(session, cfg.ErrorChannelID, entrypoint.ServiceDiscord)

	bot, err := discordbot.New(session, rolls, settings, printer, reporter)
	if err != nil {
		return fmt.Errorf("build discord bot: %w", err)
	}
	return bot.Run(ctx)
}
