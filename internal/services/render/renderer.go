// Package render builds the user-facing copy for both chat transports:
// roll result bodies, command prompts and confirmations, localized through
// golang.org/x/text message catalogs.
package render

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/message"

	"github.com/scarglamour/ShadowSprite/internal/core/dice"
	"github.com/scarglamour/ShadowSprite/internal/services/roller"
)

// Channel identifies the chat platform a message is rendered for.
type Channel string

const (
	// ChannelTelegram renders Telegram MarkdownV2.
	ChannelTelegram Channel = "telegram"
	// ChannelDiscord renders Discord Markdown.
	ChannelDiscord Channel = "discord"
)

const (
	dicePerLine     = 10
	diceSpacerEvery = 5
)

// telegramEscapeChars lists every character EscapeTelegram prefixes with a
// backslash. The set covers all MarkdownV2 reserved characters plus the
// space, so escaped fragments survive any surrounding markup.
const telegramEscapeChars = "\\_*[]()~`>#+-=|{}.! "

// Localizer is the minimal message-printer contract required by the renderer.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// NPCSummary carries the fields of a freshly created NPC that the
// confirmation message shows. Template is the alias the NPC was cloned
// from; DroppedAlias is set when a private chat discarded the alias.
type NPCSummary struct {
	ID           string
	Name         string
	Alias        string
	Template     string
	Unique       bool
	Shared       bool
	DroppedAlias string
}

// TemplateEntry is one row of the template listing.
type TemplateEntry struct {
	Name  string
	Alias string
}

// FormatRoll renders one roll result as a message body for channel.
// Telegram bodies are MarkdownV2 and must be sent with that parse mode;
// Discord bodies are plain Markdown.
func FormatRoll(loc Localizer, channel Channel, reply roller.RollReply) string {
	if channel == ChannelTelegram {
		return formatRollTelegram(loc, reply)
	}
	return formatRollDiscord(loc, reply)
}

func formatRollDiscord(loc Localizer, reply roller.RollReply) string {
	var parts []string

	if reply.Request.Comment != "" {
		parts = append(parts, localize(loc, "roll.comment", reply.Request.Comment)+"\n")
	}

	header := "🎲 " + localize(loc, "roll.header", string(reply.Edition))
	if reply.Request.Edge {
		header += " *" + localize(loc, "roll.edge_tag") + "*"
	}
	parts = append(parts, header)

	parts = append(parts, strings.Join(waveBlocks(reply.Result.Waves, formatDieDiscord), "\n\n")+"\n")

	hits := localize(loc, "roll.hits", reply.Result.Hits)
	if raw, capped := cappedFrom(reply); capped {
		parts = append(parts, "🏹 **"+hits+"** "+localize(loc, "roll.capped", raw)+"\n")
	} else {
		parts = append(parts, "🏹 **"+hits+"**\n")
	}

	if reply.Result.NetHits != nil {
		parts = append(parts, "🎯 "+localize(loc, "roll.net_hits", *reply.Result.NetHits)+"\n")
		parts = append(parts, "**"+localize(loc, "roll.outcome", reply.Result.Outcome.String())+"**\n")
	}

	if glitch := reply.Result.Glitch; glitch != dice.GlitchNone {
		emoji := glitchEmoji(glitch)
		parts = append(parts, emoji+"  "+localize(loc, "roll.glitch", glitch.String())+"  "+emoji)
	}

	return strings.Join(parts, "\n")
}

func formatRollTelegram(loc Localizer, reply roller.RollReply) string {
	var parts []string

	if reply.Request.Comment != "" {
		parts = append(parts, "*"+localize(loc, "roll.comment", EscapeTelegram(reply.Request.Comment))+"*\n")
	}

	header := "🎲 *" + localize(loc, "roll.header", string(reply.Edition)) + "*"
	if reply.Request.Edge {
		header += " " + EscapeTelegram(localize(loc, "roll.edge_tag"))
	}
	parts = append(parts, header)

	parts = append(parts, strings.Join(waveBlocks(reply.Result.Waves, formatDieTelegram), "\n\n"))

	hits := "🏹 __*" + localize(loc, "roll.hits", reply.Result.Hits) + "*__"
	if raw, capped := cappedFrom(reply); capped {
		hits += "\n _" + EscapeTelegram(localize(loc, "roll.capped.telegram", raw)) + "_"
	}
	parts = append(parts, hits)

	if reply.Result.NetHits != nil {
		parts = append(parts, "🎯"+EscapeTelegram(localize(loc, "roll.net_hits", *reply.Result.NetHits)))
		parts = append(parts, "*"+EscapeTelegram(localize(loc, "roll.outcome", reply.Result.Outcome.String()))+"*")
	}

	if glitch := reply.Result.Glitch; glitch != dice.GlitchNone {
		emoji := glitchEmoji(glitch)
		parts = append(parts, EscapeTelegram(emoji+" "+localize(loc, "roll.glitch", glitch.String())+" "+emoji))
	}

	return strings.Join(parts, "\n\n")
}

// waveBlocks formats every wave with formatDie, dice sorted descending,
// grouped into readable lines. The input waves are left untouched.
func waveBlocks(waves [][]int, formatDie func(int) string) []string {
	blocks := make([]string, 0, len(waves))
	for _, wave := range waves {
		faces := make([]int, len(wave))
		copy(faces, wave)
		sort.Sort(sort.Reverse(sort.IntSlice(faces)))

		tokens := make([]string, len(faces))
		for i, face := range faces {
			tokens[i] = formatDie(face)
		}
		blocks = append(blocks, strings.Join(groupIntoLines(tokens, dicePerLine, diceSpacerEvery), "\n"))
	}
	return blocks
}

// groupIntoLines lays out die tokens up to perLine per line, with a wider
// gap after every spacerEvery tokens.
func groupIntoLines(tokens []string, perLine int, spacerEvery int) []string {
	var lines []string
	line := ""
	for i, token := range tokens {
		if i > 0 && i%spacerEvery == 0 {
			line += "   "
		}
		line += token + " "
		if (i+1)%perLine == 0 {
			lines = append(lines, strings.TrimSpace(line))
			line = ""
		}
	}
	if line != "" {
		lines = append(lines, strings.TrimSpace(line))
	}
	return lines
}

func formatDieDiscord(face int) string {
	if face >= 5 {
		return "__" + strconv.Itoa(face) + "__"
	}
	if face == 1 {
		return "~~" + strconv.Itoa(face) + "~~"
	}
	return strconv.Itoa(face)
}

func formatDieTelegram(face int) string {
	if face >= 5 {
		return "__" + strconv.Itoa(face) + "__"
	}
	if face == 1 {
		return "~" + strconv.Itoa(face) + "~"
	}
	return strconv.Itoa(face)
}

// cappedFrom reports whether the limit trimmed any hits, and the raw count
// to show when it did.
func cappedFrom(reply roller.RollReply) (int, bool) {
	limit := reply.Request.Limit
	if limit == nil || *limit == 0 {
		return 0, false
	}
	if reply.Result.RawHits <= reply.Result.Hits {
		return 0, false
	}
	return reply.Result.RawHits, true
}

func glitchEmoji(glitch dice.Glitch) string {
	if glitch == dice.GlitchCritical {
		return "💀"
	}
	return "😵"
}

// EscapeTelegram backslash-escapes text for Telegram MarkdownV2.
func EscapeTelegram(text string) string {
	var b strings.Builder
	b.Grow(len(text) * 2)
	for _, r := range text {
		if strings.ContainsRune(telegramEscapeChars, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Usage returns the roll command usage prompt.
func Usage(loc Localizer) string {
	return localize(loc, "roll.usage")
}

// Help returns the full command reference shown by /help.
func Help(loc Localizer) string {
	return localize(loc, "roll.help")
}

// DiceBoundsError returns the out-of-range dice message for maxDice.
func DiceBoundsError(loc Localizer, maxDice int) string {
	return localize(loc, "roll.dice_bounds", maxDice)
}

// InternalError returns the generic failure reply shown when a command
// blows up.
func InternalError(loc Localizer) string {
	return localize(loc, "bot.internal_error")
}

// EditionUsage returns the /ed usage prompt with the accepted editions.
func EditionUsage(loc Localizer, channel Channel) string {
	key := "edition.usage"
	if channel == ChannelDiscord {
		key = "edition.usage.discord"
	}
	return localize(loc, key, localize(loc, "edition.allowed"))
}

// EditionInvalid returns the unknown-edition reply.
func EditionInvalid(loc Localizer) string {
	return localize(loc, "edition.invalid", localize(loc, "edition.allowed"))
}

// EditionAdminOnly returns the refusal shown to non-admins changing a
// group edition.
func EditionAdminOnly(loc Localizer, channel Channel) string {
	key := "edition.admin_only"
	if channel == ChannelDiscord {
		key = "edition.admin_only.discord"
	}
	return localize(loc, key)
}

// EditionUpdated confirms a persisted edition change. Telegram wording
// differs between private chats and groups; Discord uses one form.
func EditionUpdated(loc Localizer, channel Channel, private bool, edition dice.Edition) string {
	if channel == ChannelDiscord {
		return localize(loc, "edition.updated.discord", string(edition))
	}
	key := "edition.updated.chat"
	if private {
		key = "edition.updated.user"
	}
	return localize(loc, key, string(edition))
}

// StartWelcome greets a user whose settings were just initialized.
func StartWelcome(loc Localizer, channel Channel, edition dice.Edition) string {
	key := "start.welcome"
	if channel == ChannelDiscord {
		key = "start.welcome.discord"
	}
	return localize(loc, key, string(edition))
}

// StartPrivateOnly nudges /start callers out of group contexts.
func StartPrivateOnly(loc Localizer, channel Channel) string {
	key := "start.private_only"
	if channel == ChannelDiscord {
		key = "start.private_only.discord"
	}
	return localize(loc, key)
}

// JoinGreeting greets a chat or guild the bot was just added to.
func JoinGreeting(loc Localizer, channel Channel, edition dice.Edition) string {
	key := "greeting.joined"
	if channel == ChannelDiscord {
		key = "greeting.joined.discord"
	}
	return localize(loc, key, string(edition))
}

// NPCUsage returns the /npc_create usage prompt.
func NPCUsage(loc Localizer) string {
	return localize(loc, "npc.usage")
}

// NPCMissingName returns the reply for a nameless /npc_create.
func NPCMissingName(loc Localizer) string {
	return localize(loc, "npc.missing_name")
}

// NPCTemplateNotFound renders the unknown-template reply as MarkdownV2.
func NPCTemplateNotFound(loc Localizer, alias string) string {
	return localize(loc, "npc.template_not_found", alias)
}

// NPCCreated renders the creation confirmation as MarkdownV2.
func NPCCreated(loc Localizer, npc NPCSummary) string {
	lines := []string{
		localize(loc, "npc.created", EscapeTelegram(npc.ID)),
		localize(loc, "npc.created.name", EscapeTelegram(npc.Name)),
		localize(loc, "npc.created.alias", EscapeTelegram(orNone(loc, npc.Alias))),
		localize(loc, "npc.created.template", EscapeTelegram(orNone(loc, npc.Template))),
		localize(loc, "npc.created.unique", yesNo(loc, npc.Unique)),
		localize(loc, "npc.created.shared", yesNo(loc, npc.Shared)),
	}
	if npc.DroppedAlias != "" {
		lines = append(lines, localize(loc, "npc.alias_dropped", EscapeTelegram(npc.DroppedAlias)))
	}
	return strings.Join(lines, "\n")
}

// NPCTemplatesEmpty is the plain-text reply when no templates exist.
func NPCTemplatesEmpty(loc Localizer) string {
	return localize(loc, "npc.templates_empty")
}

// NPCTemplateList renders the template listing as MarkdownV2. Callers
// should check for the empty case first and send NPCTemplatesEmpty.
func NPCTemplateList(loc Localizer, entries []TemplateEntry) string {
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, localize(loc, "npc.templates_header"))
	for _, entry := range entries {
		alias := entry.Alias
		if alias == "" {
			alias = localize(loc, "npc.value_no_alias")
		}
		lines = append(lines, EscapeTelegram(localize(loc, "npc.templates_entry", entry.Name, alias)))
	}
	return strings.Join(lines, "\n")
}

func orNone(loc Localizer, value string) string {
	if value == "" {
		return localize(loc, "npc.value_none")
	}
	return value
}

func yesNo(loc Localizer, value bool) string {
	if value {
		return localize(loc, "npc.value_yes")
	}
	return localize(loc, "npc.value_no")
}

func localize(loc Localizer, key message.Reference, args ...any) string {
	if loc == nil {
		if asString, ok := key.(string); ok {
			return asString
		}
		return ""
	}
	return loc.Sprintf(key, args...)
}
