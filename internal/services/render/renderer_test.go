package render

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/scarglamour/ShadowSprite/internal/core/dice"
	"github.com/scarglamour/ShadowSprite/internal/services/roller"
)

func TestFormatRollTelegramFullBody(t *testing.T) {
	t.Parallel()

	limit := 3
	threshold := 2
	net := 1
	reply := roller.RollReply{
		Edition: dice.EditionSR5,
		Request: dice.Request{Pool: 8, Edge: true, Limit: &limit, Threshold: &threshold, Comment: "Sneaking in"},
		Result: dice.Result{
			Waves:   [][]int{{6, 1, 5, 3, 6, 2, 4, 1}, {5, 2}},
			RawHits: 4,
			Hits:    3,
			NetHits: &net,
			Outcome: dice.OutcomeSuccess,
		},
	}

	got := FormatRoll(message.NewPrinter(language.AmericanEnglish), ChannelTelegram, reply)
	want := "*📝 \"Sneaking\\ in\"*\n\n\n" +
		"🎲 *SR5 Rolls:* \\(Using\\ edge\\!\\)\n\n" +
		"__6__ __6__ __5__ 4 3    2 ~1~ ~1~\n\n" +
		"__5__ 2\n\n" +
		"🏹 __*Hits: 3*__\n _\\(capped\\ from\\ 4\\!\\)_\n\n" +
		"🎯Net\\ Hits:\\ 1\n\n" +
		"*Success\\!*"
	if got != want {
		t.Errorf("FormatRoll() = %q, want %q", got, want)
	}
}

func TestFormatRollDiscordFullBody(t *testing.T) {
	t.Parallel()

	limit := 3
	threshold := 2
	net := 1
	reply := roller.RollReply{
		Edition: dice.EditionSR5,
		Request: dice.Request{Pool: 8, Edge: true, Limit: &limit, Threshold: &threshold, Comment: "Sneaking in"},
		Result: dice.Result{
			Waves:   [][]int{{6, 1, 5, 3, 6, 2, 4, 1}, {5, 2}},
			RawHits: 4,
			Hits:    3,
			NetHits: &net,
			Outcome: dice.OutcomeSuccess,
		},
	}

	got := FormatRoll(message.NewPrinter(language.AmericanEnglish), ChannelDiscord, reply)
	want := "📝 \"Sneaking in\"\n\n" +
		"🎲 SR5 Rolls: *(Using edge!)*\n" +
		"__6__ __6__ __5__ 4 3    2 ~~1~~ ~~1~~\n\n" +
		"__5__ 2\n\n" +
		"🏹 **Hits: 3** (capped from 4)\n\n" +
		"🎯 Net Hits: 1\n\n" +
		"**Success!**\n"
	if got != want {
		t.Errorf("FormatRoll() = %q, want %q", got, want)
	}
}

func TestFormatRollGlitchLines(t *testing.T) {
	t.Parallel()

	printer := message.NewPrinter(language.AmericanEnglish)

	tests := []struct {
		name    string
		channel Channel
		reply   roller.RollReply
		want    string
	}{
		{
			name:    "telegram critical glitch",
			channel: ChannelTelegram,
			reply: roller.RollReply{
				Edition: dice.EditionSR6,
				Request: dice.Request{Pool: 2},
				Result: dice.Result{
					Waves:  [][]int{{1, 1}},
					Glitch: dice.GlitchCritical,
				},
			},
			want: "🎲 *SR6 Rolls:*\n\n" +
				"~1~ ~1~\n\n" +
				"🏹 __*Hits: 0*__\n\n" +
				"💀\\ Critical\\ Glitch\\!\\ 💀",
		},
		{
			name:    "discord normal glitch",
			channel: ChannelDiscord,
			reply: roller.RollReply{
				Edition: dice.EditionSR6,
				Request: dice.Request{Pool: 4},
				Result: dice.Result{
					Waves:   [][]int{{1, 1, 5, 2}},
					RawHits: 1,
					Hits:    1,
					Glitch:  dice.GlitchNormal,
				},
			},
			want: "🎲 SR6 Rolls:\n" +
				"__5__ 2 ~~1~~ ~~1~~\n\n" +
				"🏹 **Hits: 1**\n\n" +
				"😵  Glitch!  😵",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := FormatRoll(printer, tt.channel, tt.reply); got != tt.want {
				t.Errorf("FormatRoll() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatRollDoesNotMutateWaves(t *testing.T) {
	t.Parallel()

	waves := [][]int{{3, 6, 1}}
	reply := roller.RollReply{
		Edition: dice.EditionSR5,
		Request: dice.Request{Pool: 3},
		Result:  dice.Result{Waves: waves, RawHits: 1, Hits: 1},
	}

	FormatRoll(message.NewPrinter(language.AmericanEnglish), ChannelDiscord, reply)

	if !reflect.DeepEqual(waves, [][]int{{3, 6, 1}}) {
		t.Errorf("waves = %v, want original order preserved", waves)
	}
}

func TestFormatRollUsesLocalizedAtoms(t *testing.T) {
	t.Parallel()

	loc := fakeLocalizer{values: map[string]string{
		"roll.header": "%s Würfe:",
		"roll.hits":   "Treffer: %d",
	}}
	reply := roller.RollReply{
		Edition: dice.EditionSR5,
		Request: dice.Request{Pool: 2},
		Result:  dice.Result{Waves: [][]int{{4, 2}}},
	}

	body := FormatRoll(loc, ChannelDiscord, reply)
	if !strings.Contains(body, "🎲 SR5 Würfe:") {
		t.Errorf("FormatRoll() = %q, want localized header", body)
	}
	if !strings.Contains(body, "**Treffer: 0**") {
		t.Errorf("FormatRoll() = %q, want localized hits label", body)
	}
}

func TestGroupIntoLines(t *testing.T) {
	t.Parallel()

	tokens := make([]string, 23)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("d%d", i)
	}

	got := groupIntoLines(tokens, 10, 5)
	want := []string{
		"d0 d1 d2 d3 d4    d5 d6 d7 d8 d9",
		"d10 d11 d12 d13 d14    d15 d16 d17 d18 d19",
		"d20 d21 d22",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("groupIntoLines() = %q, want %q", got, want)
	}
}

func TestEscapeTelegram(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"spaces and bang", "Sneaking in!", `Sneaking\ in\!`},
		{"reserved punctuation", "a-b.c(d)", `a\-b\.c\(d\)`},
		{"markup characters", "_*~`", "\\_\\*\\~\\`"},
		{"backslash", `a\b`, `a\\b`},
		{"emoji untouched", "💀 x", `💀\ x`},
		{"plain word", "Shadowrun", "Shadowrun"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := EscapeTelegram(tt.in); got != tt.want {
				t.Errorf("EscapeTelegram(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMessageCatalog(t *testing.T) {
	t.Parallel()

	printer := message.NewPrinter(language.AmericanEnglish)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"roll usage", Usage(printer), "Usage: /r <dice>[e] [limit] [threshold] [comment]"},
		{"dice bounds", DiceBoundsError(printer, 99), "Number of dice must be between 1 and 99."},
		{"internal error", InternalError(printer), "⚠️ Something went wrong, the Maker has been notified."},
		{"edition usage", EditionUsage(printer, ChannelTelegram), "Usage: /ed <edition>\nAllowed: SR4, SR5, SR6 (or drop the SR prefix)"},
		{"edition usage discord", EditionUsage(printer, ChannelDiscord), "Usage: `/ed <edition>`\nAllowed: SR4, SR5, SR6 (or drop the SR prefix)"},
		{"edition invalid", EditionInvalid(printer), "Invalid edition. Choose from: SR4, SR5, SR6 (or drop the SR prefix)"},
		{"admin only telegram", EditionAdminOnly(printer, ChannelTelegram), "❌ Only group admins can change the edition here."},
		{"admin only discord", EditionAdminOnly(printer, ChannelDiscord), "❌ Only server admins can change the edition here."},
		{"edition updated private", EditionUpdated(printer, ChannelTelegram, true, dice.EditionSR4), "✅ Your edition is now set to SR4."},
		{"edition updated chat", EditionUpdated(printer, ChannelTelegram, false, dice.EditionSR6), "✅ This chat’s edition is now set to SR6."},
		{"edition updated discord", EditionUpdated(printer, ChannelDiscord, false, dice.EditionSR5), "✅ Edition set to **SR5**."},
		{"start welcome telegram", StartWelcome(printer, ChannelTelegram, dice.EditionSR5), "Welcome! Your user settings have been initialized to SR5 edition.\nUse /ed <edition> to change this setting."},
		{"start welcome discord", StartWelcome(printer, ChannelDiscord, dice.EditionSR5), "Welcome! Your settings are initialized to **SR5** edition.\nUse `/ed <edition>` to change."},
		{"start redirect telegram", StartPrivateOnly(printer, ChannelTelegram), "Use me in a private chat with /start!"},
		{"start redirect discord", StartPrivateOnly(printer, ChannelDiscord), "Use me in DMs to initialize your settings with `/start`."},
		{"join greeting telegram", JoinGreeting(printer, ChannelTelegram, dice.EditionSR5), "Hello! I’ve initialized this chat’s settings to SR5 edition.\nUse /ed <edition> to change this setting."},
		{"join greeting discord", JoinGreeting(printer, ChannelDiscord, dice.EditionSR5), "Hello! I’ve initialized this server’s edition to **SR5**.\nUse `/ed <edition>` to change it."},
		{"npc usage", NPCUsage(printer), "Usage: /npc_create <name> [-a alias] [-t template] [-u] [-s]"},
		{"npc missing name", NPCMissingName(printer), "Please specify the NPC name."},
		{"npc templates empty", NPCTemplatesEmpty(printer), "📜 You have no NPC templates available."},
		{"npc template not found", NPCTemplateNotFound(printer, "ganger"), "❌ Template alias `ganger` not found\\. Use `/npc_list_templates` to see the available templates\\."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if tt.got != tt.want {
				t.Errorf("message = %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestHelpListsKeywordTables(t *testing.T) {
	t.Parallel()

	got := Help(message.NewPrinter(language.AmericanEnglish))

	if !strings.HasPrefix(got, "Usage: /r <dice>[e] [limit] [threshold] [comment]") {
		t.Errorf("Help() = %q, want usage line first", got)
	}
	for _, fragment := range []string{
		"SR 4 Threshold keywords:",
		"- Extreme (ex) - 6",
		"SR 5 Threshold keywords:",
		"- Very Hard (vh) - 6",
		"- Extreme (ex) - 8",
		"/r 8e 4 t2 Sneaking in (with Edge!)",
	} {
		if !strings.Contains(got, fragment) {
			t.Errorf("Help() missing %q", fragment)
		}
	}
}

func TestNPCCreatedRendersSummary(t *testing.T) {
	t.Parallel()

	printer := message.NewPrinter(language.AmericanEnglish)

	got := NPCCreated(printer, NPCSummary{
		ID:       "01ABC",
		Name:     "Big Bob",
		Template: "bob_template",
		Shared:   true,
	})

	want := "✅ Created NPC \\#01ABC:\n" +
		"• Name: Big\\ Bob\n" +
		"• Alias: none\n" +
		"• Template: bob\\_template\n" +
		"• Unique: no\n" +
		"• Shared: yes"
	if got != want {
		t.Errorf("NPCCreated() = %q, want %q", got, want)
	}
}

func TestNPCCreatedAppendsDroppedAliasWarning(t *testing.T) {
	t.Parallel()

	printer := message.NewPrinter(language.AmericanEnglish)

	got := NPCCreated(printer, NPCSummary{
		ID:           "01DEF",
		Name:         "Whisper",
		DroppedAlias: "whispr",
	})

	wantSuffix := "⚠️  I dropped alias `whispr` because aliases only work in group/supergroup chats\\."
	if !strings.HasSuffix(got, wantSuffix) {
		t.Errorf("NPCCreated() = %q, want dropped-alias warning last", got)
	}
}

func TestNPCTemplateListEscapesEntries(t *testing.T) {
	t.Parallel()

	printer := message.NewPrinter(language.AmericanEnglish)

	got := NPCTemplateList(printer, []TemplateEntry{
		{Name: "Razor Ganger", Alias: "razor"},
		{Name: "Face"},
	})

	want := "📜 *Available NPC Templates:*\n" +
		"•\\ Razor\\ Ganger\\ \\(alias:\\ razor\\)\n" +
		"•\\ Face\\ \\(alias:\\ \\(none\\)\\)"
	if got != want {
		t.Errorf("NPCTemplateList() = %q, want %q", got, want)
	}
}

type fakeLocalizer struct {
	values map[string]string
}

func (f fakeLocalizer) Sprintf(key message.Reference, args ...any) string {
	asString, ok := key.(string)
	if !ok {
		return ""
	}
	template := f.values[asString]
	if template == "" {
		return asString
	}
	if len(args) == 0 {
		return template
	}
	return fmt.Sprintf(template, args...)
}
