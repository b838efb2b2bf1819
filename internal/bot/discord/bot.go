// Package discord runs the Discord transport: slash commands for rolling
// and settings registered globally on startup, plus a greeting when the
// bot joins a new guild. The package also houses the error reporter both
// chat transports share.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/scarglamour/ShadowSprite/internal/core/dice"
	"github.com/scarglamour/ShadowSprite/internal/services/render"
	"github.com/scarglamour/ShadowSprite/internal/services/roller"
	settingsdomain "github.com/scarglamour/ShadowSprite/internal/services/settings/domain"
)

// responder covers the session calls the handlers make. *discordgo.Session
// satisfies it.
type responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Roller executes roll commands for the transport.
type Roller interface {
	RollCommand(ctx context.Context, params roller.RollParams) (roller.RollReply, error)
	MaxDice() int
}

// Settings reads and writes edition preferences. Reads initialize a
// missing record to the default edition.
type Settings interface {
	Edition(ctx context.Context, scope settingsdomain.Scope, ownerID string) (dice.Edition, error)
	SetEdition(ctx context.Context, scope settingsdomain.Scope, ownerID string, edition dice.Edition) error
}

// Bot dispatches Discord interactions to the chat command handlers.
type Bot struct {
	session   *discordgo.Session
	responder responder
	roller    Roller
	settings  Settings
	loc       render.Localizer
	reporter  *Reporter

	// knownGuilds separates genuine guild joins from the guild stream
	// Discord replays on every connect.
	mu          sync.Mutex
	knownGuilds map[string]bool
}

// New wires a bot around an unopened session. The reporter may be nil,
// which degrades failure reporting to local logging.
func New(session *discordgo.Session, roller Roller, settings Settings, loc render.Localizer, reporter *Reporter) (*Bot, error) {
	if session == nil {
		return nil, errors.New("discord session is required")
	}
	if roller == nil {
		return nil, errors.New("roller service is required")
	}
	if settings == nil {
		return nil, errors.New("settings service is required")
	}
	return &Bot{
		session:     session,
		responder:   session,
		roller:      roller,
		settings:    settings,
		loc:         loc,
		reporter:    reporter,
		knownGuilds: make(map[string]bool),
	}, nil
}

// Run opens the gateway, publishes the slash command set and serves
// events until ctx is canceled. Cancellation is a clean shutdown.
func (b *Bot) Run(ctx context.Context) error {
	b.session.Identify.Intents = discordgo.IntentsGuilds
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onInteraction)
	b.session.AddHandler(b.onGuildCreate)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	defer func() {
		if err := b.session.Close(); err != nil {
			log.Printf("close discord gateway: %v", err)
		}
	}()

	if _, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, "", commands()); err != nil {
		return fmt.Errorf("register slash commands: %w", err)
	}

	<-ctx.Done()
	return nil
}

// commands returns the slash command set published on startup.
func commands() []*discordgo.ApplicationCommand {
	expression := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "expression",
		Description: "Dice expression and options, e.g. '10 5 Comment'",
		Required:    true,
	}
	return []*discordgo.ApplicationCommand{
		{
			Name:        "r",
			Description: "Roll Shadowrun dice",
			Options:     []*discordgo.ApplicationCommandOption{expression},
		},
		{
			Name:        "roll",
			Description: "Roll Shadowrun dice (alias for /r)",
			Options:     []*discordgo.ApplicationCommandOption{expression},
		},
		{
			Name:        "ed",
			Description: "Set or view Shadowrun edition for this context",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "edition",
				Description: "New edition (e.g., SR5)",
			}},
		},
		{
			Name:        "help",
			Description: "Show help information for ShadowSprite",
		},
		{
			Name:        "start",
			Description: "Initialize your personal settings",
		},
	}
}

func (b *Bot) onReady(_ *discordgo.Session, ready *discordgo.Ready) {
	b.mu.Lock()
	for _, guild := range ready.Guilds {
		b.knownGuilds[guild.ID] = true
	}
	b.mu.Unlock()
	log.Printf("discord bot ready as %s", ready.User.Username)
}

func (b *Bot) onInteraction(_ *discordgo.Session, event *discordgo.InteractionCreate) {
	if event.Type != discordgo.InteractionApplicationCommand {
		return
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			log.Printf("discord interaction panic=%v stack=%s", recovered, strings.TrimSpace(string(debug.Stack())))
		}
	}()

	ctx := context.Background()
	data := event.ApplicationCommandData()
	var err error
	switch data.Name {
	case "r", "roll":
		err = b.handleRoll(ctx, event.Interaction, data)
	case "ed":
		err = b.handleEdition(ctx, event.Interaction, data)
	case "start":
		err = b.handleStart(ctx, event.Interaction)
	case "help":
		err = b.respondEphemeral(event.Interaction, render.Help(b.loc))
	default:
		return
	}
	if err != nil {
		b.fail(ctx, "/"+data.Name, event.Interaction, err)
	}
}

func (b *Bot) handleRoll(ctx context.Context, interaction *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) error {
	user := interactionUser(interaction)
	if user == nil {
		return errors.New("interaction carries no user")
	}

	params := roller.RollParams{
		UserID:  user.ID,
		ChatID:  interaction.GuildID,
		Private: interaction.GuildID == "",
		Tokens:  strings.Fields(optionValue(data, "expression")),
	}
	if params.Private {
		params.ChatID = user.ID
	}

	reply, err := b.roller.RollCommand(ctx, params)
	switch {
	case errors.Is(err, roller.ErrUsage):
		return b.respondEphemeral(interaction, render.Usage(b.loc))
	case errors.Is(err, roller.ErrDiceCount):
		return b.respondEphemeral(interaction, render.DiceBoundsError(b.loc, b.roller.MaxDice()))
	case err != nil:
		return fmt.Errorf("roll command: %w", err)
	}
	return b.respond(interaction, render.FormatRoll(b.loc, render.ChannelDiscord, reply))
}

func (b *Bot) handleEdition(ctx context.Context, interaction *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) error {
	user := interactionUser(interaction)
	if user == nil {
		return errors.New("interaction carries no user")
	}

	raw := strings.TrimSpace(optionValue(data, "edition"))
	if raw == "" {
		return b.respondEphemeral(interaction, render.EditionUsage(b.loc, render.ChannelDiscord))
	}
	edition, err := settingsdomain.ParseEdition(raw)
	if err != nil {
		return b.respondEphemeral(interaction, render.EditionInvalid(b.loc))
	}

	private := interaction.GuildID == ""
	scope := settingsdomain.ScopeUser
	ownerID := user.ID
	if !private {
		if interaction.Member == nil || interaction.Member.Permissions&discordgo.PermissionAdministrator == 0 {
			return b.respondEphemeral(interaction, render.EditionAdminOnly(b.loc, render.ChannelDiscord))
		}
		scope = settingsdomain.ScopeChat
		ownerID = interaction.GuildID
	}

	if err := b.settings.SetEdition(ctx, scope, ownerID, edition); err != nil {
		return fmt.Errorf("set %s edition: %w", scope, err)
	}
	return b.respond(interaction, render.EditionUpdated(b.loc, render.ChannelDiscord, private, edition))
}

func (b *Bot) handleStart(ctx context.Context, interaction *discordgo.Interaction) error {
	user := interactionUser(interaction)
	if user == nil {
		return errors.New("interaction carries no user")
	}
	if interaction.GuildID != "" {
		return b.respondEphemeral(interaction, render.StartPrivateOnly(b.loc, render.ChannelDiscord))
	}

	edition, err := b.settings.Edition(ctx, settingsdomain.ScopeUser, user.ID)
	if err != nil {
		return fmt.Errorf("initialize user settings: %w", err)
	}
	return b.respondEphemeral(interaction, render.StartWelcome(b.loc, render.ChannelDiscord, edition))
}

func (b *Bot) onGuildCreate(_ *discordgo.Session, event *discordgo.GuildCreate) {
	if event.Guild == nil || event.Unavailable {
		return
	}

	b.mu.Lock()
	known := b.knownGuilds[event.ID]
	b.knownGuilds[event.ID] = true
	b.mu.Unlock()
	if known {
		return
	}

	b.greetGuild(context.Background(), event.Guild)
}

// greetGuild announces the bot in a freshly joined guild and seeds the
// guild's edition record. The system channel is preferred; otherwise the
// first text channel that accepts the message gets it.
func (b *Bot) greetGuild(ctx context.Context, guild *discordgo.Guild) {
	edition, err := b.settings.Edition(ctx, settingsdomain.ScopeChat, guild.ID)
	if err != nil {
		log.Printf("discord guild join: %v", err)
		if b.reporter != nil {
			b.reporter.Report(ctx, "guild_join", "", guild.ID, err)
		}
		return
	}

	greeting := render.JoinGreeting(b.loc, render.ChannelDiscord, edition)
	channels := make([]string, 0, len(guild.Channels)+1)
	if guild.SystemChannelID != "" {
		channels = append(channels, guild.SystemChannelID)
	}
	for _, channel := range guild.Channels {
		if channel.Type == discordgo.ChannelTypeGuildText && channel.ID != guild.SystemChannelID {
			channels = append(channels, channel.ID)
		}
	}
	for _, channelID := range channels {
		if _, err := b.responder.ChannelMessageSend(channelID, greeting); err == nil {
			return
		}
	}
	log.Printf("discord guild join: greeting undelivered in guild %s", guild.ID)
}

// interactionUser returns the invoking user for both guild and DM
// interactions.
func interactionUser(interaction *discordgo.Interaction) *discordgo.User {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User
	}
	return interaction.User
}

// optionValue returns the named string option, or "" when absent.
func optionValue(data discordgo.ApplicationCommandInteractionData, name string) string {
	for _, option := range data.Options {
		if option.Name == name && option.Type == discordgo.ApplicationCommandOptionString {
			return option.StringValue()
		}
	}
	return ""
}

// fail logs the handler error, forwards it to the reporter and tells the
// user something went wrong.
func (b *Bot) fail(ctx context.Context, source string, interaction *discordgo.Interaction, err error) {
	log.Printf("discord %s: %v", source, err)
	if b.reporter != nil {
		userID := ""
		if user := interactionUser(interaction); user != nil {
			userID = user.ID
		}
		chatID := interaction.GuildID
		if chatID == "" {
			chatID = userID
		}
		b.reporter.Report(ctx, source, userID, chatID, err)
	}
	if respondErr := b.respondEphemeral(interaction, render.InternalError(b.loc)); respondErr != nil {
		log.Printf("discord %s: send failure notice: %v", source, respondErr)
	}
}

func (b *Bot) respond(interaction *discordgo.Interaction, content string) error {
	return b.respondWith(interaction, content, 0)
}

// respondEphemeral sends a reply only the invoking user sees.
func (b *Bot) respondEphemeral(interaction *discordgo.Interaction, content string) error {
	return b.respondWith(interaction, content, discordgo.MessageFlagsEphemeral)
}

func (b *Bot) respondWith(interaction *discordgo.Interaction, content string, flags discordgo.MessageFlags) error {
	err := b.responder.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
	if err != nil {
		return fmt.Errorf("respond to interaction: %w", err)
	}
	return nil
}
