// Package telegram runs the Telegram transport: a long-poll update loop
// that dispatches bot commands to the roller, settings and NPC services
// and sends the rendered replies back through the Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/scarglamour/ShadowSprite/internal/core/dice"
	npcdomain "github.com/scarglamour/ShadowSprite/internal/services/npc/domain"
	"github.com/scarglamour/ShadowSprite/internal/services/render"
	"github.com/scarglamour/ShadowSprite/internal/services/roller"
	settingsdomain "github.com/scarglamour/ShadowSprite/internal/services/settings/domain"
)

// updateTimeout is the long-poll window Telegram holds a GetUpdates
// request open for, in seconds.
const updateTimeout = 60

// sender covers the Bot API calls the handlers make. *tgbotapi.BotAPI
// satisfies it.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
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

// NPCs creates registry NPCs and lists the templates they clone from.
type NPCs interface {
	Create(ctx context.Context, params npcdomain.CreateParams) (npcdomain.NPC, error)
	ListTemplates(ctx context.Context) ([]npcdomain.NPC, error)
}

// Reporter forwards handler failures to the error log channel.
type Reporter interface {
	Report(ctx context.Context, source, userID, chatID string, err error)
}

// Bot dispatches Telegram updates to the chat command handlers.
type Bot struct {
	api      *tgbotapi.BotAPI
	sender   sender
	selfID   int64
	roller   Roller
	settings Settings
	npcs     NPCs
	loc      render.Localizer
	reporter Reporter
}

// New wires a bot around an authorized Bot API client. The reporter may
// be nil, which degrades failure reporting to local logging.
func New(api *tgbotapi.BotAPI, roller Roller, settings Settings, npcs NPCs, loc render.Localizer, reporter Reporter) (*Bot, error) {
	if api == nil {
		return nil, errors.New("telegram api client is required")
	}
	if roller == nil {
		return nil, errors.New("roller service is required")
	}
	if settings == nil {
		return nil, errors.New("settings service is required")
	}
	if npcs == nil {
		return nil, errors.New("npc service is required")
	}
	return &Bot{
		api:      api,
		sender:   api,
		selfID:   api.Self.ID,
		roller:   roller,
		settings: settings,
		npcs:     npcs,
		loc:      loc,
		reporter: reporter,
	}, nil
}

// Run consumes the update stream until ctx is canceled. Cancellation is
// a clean shutdown, not an error.
func (b *Bot) Run(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = updateTimeout
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Printf("telegram bot authorized as @%s", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if recovered := recover(); recovered != nil {
			log.Printf("telegram update panic=%v stack=%s", recovered, strings.TrimSpace(string(debug.Stack())))
		}
	}()

	switch {
	case update.MyChatMember != nil:
		b.handleChatJoin(ctx, *update.MyChatMember)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil || !msg.IsCommand() {
		return
	}

	var err error
	command := msg.Command()
	switch command {
	case "r", "roll":
		err = b.handleRoll(ctx, msg)
	case "ed":
		err = b.handleEdition(ctx, msg)
	case "start":
		err = b.handleStart(ctx, msg)
	case "help":
		err = b.handleHelp(msg)
	case "npc_create":
		err = b.handleNPCCreate(ctx, msg)
	case "npc_list_templates":
		err = b.handleNPCTemplates(ctx, msg)
	default:
		return
	}
	if err != nil {
		b.fail(ctx, "/"+command, msg, err)
	}
}

func (b *Bot) handleRoll(ctx context.Context, msg *tgbotapi.Message) error {
	params := roller.RollParams{
		UserID:  strconv.FormatInt(msg.From.ID, 10),
		ChatID:  strconv.FormatInt(msg.Chat.ID, 10),
		Private: msg.Chat.IsPrivate(),
		Tokens:  strings.Fields(msg.CommandArguments()),
	}

	reply, err := b.roller.RollCommand(ctx, params)
	switch {
	case errors.Is(err, roller.ErrUsage):
		return b.reply(msg, render.Usage(b.loc))
	case errors.Is(err, roller.ErrDiceCount):
		return b.reply(msg, render.DiceBoundsError(b.loc, b.roller.MaxDice()))
	case err != nil:
		return fmt.Errorf("roll command: %w", err)
	}
	return b.replyMarkdown(msg, render.FormatRoll(b.loc, render.ChannelTelegram, reply))
}

func (b *Bot) handleEdition(ctx context.Context, msg *tgbotapi.Message) error {
	raw := strings.TrimSpace(msg.CommandArguments())
	if raw == "" {
		return b.reply(msg, render.EditionUsage(b.loc, render.ChannelTelegram))
	}
	edition, err := settingsdomain.ParseEdition(raw)
	if err != nil {
		return b.reply(msg, render.EditionInvalid(b.loc))
	}

	private := msg.Chat.IsPrivate()
	scope := settingsdomain.ScopeUser
	ownerID := strconv.FormatInt(msg.From.ID, 10)
	if !private {
		admin, err := b.isChatAdmin(msg.Chat.ID, msg.From.ID)
		if err != nil {
			return fmt.Errorf("check chat admin: %w", err)
		}
		if !admin {
			return b.reply(msg, render.EditionAdminOnly(b.loc, render.ChannelTelegram))
		}
		scope = settingsdomain.ScopeChat
		ownerID = strconv.FormatInt(msg.Chat.ID, 10)
	}

	if err := b.settings.SetEdition(ctx, scope, ownerID, edition); err != nil {
		return fmt.Errorf("set %s edition: %w", scope, err)
	}
	return b.reply(msg, render.EditionUpdated(b.loc, render.ChannelTelegram, private, edition))
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if !msg.Chat.IsPrivate() {
		return b.reply(msg, render.StartPrivateOnly(b.loc, render.ChannelTelegram))
	}
	userID := strconv.FormatInt(msg.From.ID, 10)
	edition, err := b.settings.Edition(ctx, settingsdomain.ScopeUser, userID)
	if err != nil {
		return fmt.Errorf("initialize user settings: %w", err)
	}
	return b.reply(msg, render.StartWelcome(b.loc, render.ChannelTelegram, edition))
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	return b.reply(msg, render.Help(b.loc))
}

func (b *Bot) handleNPCCreate(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		return b.reply(msg, render.NPCUsage(b.loc))
	}
	params, err := npcdomain.ParseCreateArgs(args)
	if err != nil {
		return b.reply(msg, render.NPCMissingName(b.loc))
	}

	params.OwnerUserID = strconv.FormatInt(msg.From.ID, 10)
	private := msg.Chat.IsPrivate()
	if !private {
		params.OwnerChatID = strconv.FormatInt(msg.Chat.ID, 10)
	}

	// Aliases only resolve inside group chats, so a private creation
	// silently loses one. Tell the user instead of storing it.
	var droppedAlias string
	if private && params.Alias != "" {
		droppedAlias = params.Alias
		params.Alias = ""
	}

	created, err := b.npcs.Create(ctx, params)
	if errors.Is(err, npcdomain.ErrTemplateNotFound) {
		return b.replyMarkdown(msg, render.NPCTemplateNotFound(b.loc, params.Template))
	}
	if err != nil {
		return fmt.Errorf("create npc: %w", err)
	}

	summary := render.NPCSummary{
		ID:           created.ID,
		Name:         created.Name,
		Alias:        created.Alias,
		Template:     params.Template,
		Unique:       created.Unique,
		Shared:       created.Shared,
		DroppedAlias: droppedAlias,
	}
	return b.replyMarkdown(msg, render.NPCCreated(b.loc, summary))
}

func (b *Bot) handleNPCTemplates(ctx context.Context, msg *tgbotapi.Message) error {
	templates, err := b.npcs.ListTemplates(ctx)
	if err != nil {
		return fmt.Errorf("list npc templates: %w", err)
	}
	if len(templates) == 0 {
		return b.reply(msg, render.NPCTemplatesEmpty(b.loc))
	}

	entries := make([]render.TemplateEntry, 0, len(templates))
	for _, template := range templates {
		entries = append(entries, render.TemplateEntry{Name: template.Name, Alias: template.Alias})
	}
	return b.replyMarkdown(msg, render.NPCTemplateList(b.loc, entries))
}

// handleChatJoin greets a chat the bot was just added to and seeds the
// chat's edition record.
func (b *Bot) handleChatJoin(ctx context.Context, change tgbotapi.ChatMemberUpdated) {
	member := change.NewChatMember
	if member.User == nil || member.User.ID != b.selfID {
		return
	}
	if !joinTransition(change.OldChatMember.Status, member.Status) {
		return
	}

	chatID := strconv.FormatInt(change.Chat.ID, 10)
	edition, err := b.settings.Edition(ctx, settingsdomain.ScopeChat, chatID)
	if err != nil {
		log.Printf("telegram chat join: %v", err)
		if b.reporter != nil {
			b.reporter.Report(ctx, "chat_join", "", chatID, err)
		}
		return
	}

	if err := b.send(change.Chat.ID, render.JoinGreeting(b.loc, render.ChannelTelegram, edition), ""); err != nil {
		log.Printf("telegram chat join: %v", err)
	}
}

// joinTransition reports a move from outside the chat to member or
// administrator, the only change that triggers a greeting.
func joinTransition(oldStatus, newStatus string) bool {
	wasOut := oldStatus == "left" || oldStatus == "kicked"
	isIn := newStatus == "member" || newStatus == "administrator"
	return wasOut && isIn
}

// isChatAdmin reports whether the user may change group-wide settings.
func (b *Bot) isChatAdmin(chatID, userID int64) (bool, error) {
	member, err := b.sender.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		return false, fmt.Errorf("get chat member: %w", err)
	}
	return member.Status == "administrator" || member.Status == "creator", nil
}

// fail logs the handler error, forwards it to the reporter and tells the
// user something went wrong.
func (b *Bot) fail(ctx context.Context, source string, msg *tgbotapi.Message, err error) {
	log.Printf("telegram %s: %v", source, err)
	if b.reporter != nil {
		b.reporter.Report(ctx, source, strconv.FormatInt(msg.From.ID, 10), strconv.FormatInt(msg.Chat.ID, 10), err)
	}
	if sendErr := b.reply(msg, render.InternalError(b.loc)); sendErr != nil {
		log.Printf("telegram %s: send failure notice: %v", source, sendErr)
	}
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) error {
	return b.send(msg.Chat.ID, text, "")
}

// replyMarkdown sends text with the MarkdownV2 parse mode. Callers must
// escape user-supplied fragments first.
func (b *Bot) replyMarkdown(msg *tgbotapi.Message, text string) error {
	return b.send(msg.Chat.ID, text, tgbotapi.ModeMarkdownV2)
}

func (b *Bot) send(chatID int64, text, parseMode string) error {
	out := tgbotapi.NewMessage(chatID, text)
	out.ParseMode = parseMode
	if _, err := b.sender.Send(out); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
