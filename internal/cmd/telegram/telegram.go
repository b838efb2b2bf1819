// Package telegram parses Telegram daemon flags and launches the bot.
package telegram

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bwmarrin/discordgo"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	discordbot "github.com/scarglamour/ShadowSprite/internal/bot/discord"
	telegrambot "github.com/scarglamour/ShadowSprite/internal/bot/telegram"
	entrypoint "github.com/scarglamour/ShadowSprite/internal/platform/cmd"
	npcdomain "github.com/scarglamour/ShadowSprite/internal/services/npc/domain"
	npcsqlite "github.com/scarglamour/ShadowSprite/internal/services/npc/storage/sqlite"
	"github.com/scarglamour/ShadowSprite/internal/services/roller"
	settingsdomain "github.com/scarglamour/ShadowSprite/internal/services/settings/domain"
	settingssqlite "github.com/scarglamour/ShadowSprite/internal/services/settings/storage/sqlite"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const defaultDBPath = "data/shadowsprite.db"

// Config holds Telegram daemon configuration.
type Config struct {
	Token          string `env:"SHADOWSPRITE_TELEGRAM_TOKEN"`
	DBPath         string `env:"SHADOWSPRITE_DB_PATH" envDefault:"data/shadowsprite.db"`
	DiscordToken   string `env:"SHADOWSPRITE_DISCORD_TOKEN"`
	ErrorChannelID string `env:"SHADOWSPRITE_DISCORD_LOG_CHANNEL_ID"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Token, "token", cfg.Token, "The Telegram bot API token")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The SQLite database path shared by the chat daemons")
	fs.StringVar(&cfg.DiscordToken, "discord-token", cfg.DiscordToken, "The Discord bot token used to post error reports")
	fs.StringVar(&cfg.ErrorChannelID, "error-channel", cfg.ErrorChannelID, "The Discord channel ID receiving error reports")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the Telegram daemon.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceTelegram, func(context.Context) error {
		return run(ctx, cfg)
	})
}

func run(ctx context.Context, cfg Config) error {
	if strings.TrimSpace(cfg.Token) == "" {
		return fmt.Errorf("telegram token is required")
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

	npcStore, err := npcsqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open npc sqlite store: %w", err)
	}
	defer func() {
		if closeErr := npcStore.Close(); closeErr != nil {
			log.Printf("close npc sqlite store: %v", closeErr)
		}
	}()

	settings := settingsdomain.NewService(settingsStore, nil)
	npcs := npcdomain.NewService(npcStore, nil, nil)
	rolls := roller.NewService(settings, nil, 0)
	printer := message.NewPrinter(language.AmericanEnglish)

	// Error reports post to Discord even from this daemon; the REST-only
	// session never opens a gateway. Without a token they stay local.
	reporter := discordbot.NewReporter(nil, cfg.ErrorChannelID, entrypoint.ServiceTelegram)
	if token := strings.TrimSpace(cfg.DiscordToken); token != "" {
		session, err := discordgo.New("Bot " + token)
		if err != nil {
			return fmt.Errorf("create discord reporter session: %w", err)
		}
		reporter = discordbot.NewReporter(session, cfg.ErrorChannelID, entrypoint.ServiceTelegram)
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return fmt.Errorf("connect to telegram: %w", err)
	}
	bot, err := telegrambot.New(api, rolls, settings, npcs, printer, reporter)
	if err != nil {
		return fmt.Errorf("build telegram bot: %w", err)
	}
	return bot.Run(ctx)
}
