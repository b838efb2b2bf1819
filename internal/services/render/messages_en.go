package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, "roll.usage", "Usage: /r <dice>[e] [limit] [threshold] [comment]")
	message.SetString(lang, "roll.dice_bounds", "Number of dice must be between 1 and %d.")
	message.SetString(lang, "roll.help", "Usage: /r <dice>[e] [limit] [threshold] [comment]\n\n"+
		"- <dice>: Number of dice to roll\n"+
		"- [e]: Roll with edge (exploding dice) flag\n"+
		"- [limit]: (SR5 only) Optional limit on hits\n"+
		"- [threshold]: Optional threshold as number (with 't' prefix for SR5) or keyword (SR4/SR5 only)\n"+
		"- [comment]: Optional description\n\n"+
		"SR 4 Threshold keywords:\n"+
		"- Easy (ea) - 1\n"+
		"- Average (av) - 2\n"+
		"- Hard (ha) - 4\n"+
		"- Extreme (ex) - 6\n\n"+
		"SR 5 Threshold keywords:\n"+
		"- Easy (ea) - 1\n"+
		"- Average (av) - 2\n"+
		"- Hard (ha) - 4\n"+
		"- Very Hard (vh) - 6\n"+
		"- Extreme (ex) - 8\n\n"+
		"Examples:\n"+
		"/r 10\n"+
		"/r 10 5\n"+
		"/r 12 6 Hard\n"+
		"/r 8e 4 t2 Sneaking in (with Edge!)")
	message.SetString(lang, "roll.comment", "📝 \"%s\"")
	message.SetString(lang, "roll.header", "%s Rolls:")
	message.SetString(lang, "roll.edge_tag", "(Using edge!)")
	message.SetString(lang, "roll.hits", "Hits: %d")
	message.SetString(lang, "roll.capped", "(capped from %d)")
	message.SetString(lang, "roll.capped.telegram", "(capped from %d!)")
	message.SetString(lang, "roll.net_hits", "Net Hits: %d")
	message.SetString(lang, "roll.outcome", "%s!")
	message.SetString(lang, "roll.glitch", "%s!")
	message.SetString(lang, "bot.internal_error", "⚠️ Something went wrong, the Maker has been notified.")

	message.SetString(lang, "edition.allowed", "SR4, SR5, SR6 (or drop the SR prefix)")
	message.SetString(lang, "edition.usage", "Usage: /ed <edition>\nAllowed: %s")
	message.SetString(lang, "edition.usage.discord", "Usage: `/ed <edition>`\nAllowed: %s")
	message.SetString(lang, "edition.invalid", "Invalid edition. Choose from: %s")
	message.SetString(lang, "edition.admin_only", "❌ Only group admins can change the edition here.")
	message.SetString(lang, "edition.admin_only.discord", "❌ Only server admins can change the edition here.")
	message.SetString(lang, "edition.updated.user", "✅ Your edition is now set to %s.")
	message.SetString(lang, "edition.updated.chat", "✅ This chat’s edition is now set to %s.")
	message.SetString(lang, "edition.updated.discord", "✅ Edition set to **%s**.")

	message.SetString(lang, "start.welcome", "Welcome! Your user settings have been initialized to %s edition.\nUse /ed <edition> to change this setting.")
	message.SetString(lang, "start.welcome.discord", "Welcome! Your settings are initialized to **%s** edition.\nUse `/ed <edition>` to change.")
	message.SetString(lang, "start.private_only", "Use me in a private chat with /start!")
	message.SetString(lang, "start.private_only.discord", "Use me in DMs to initialize your settings with `/start`.")

	message.SetString(lang, "greeting.joined", "Hello! I’ve initialized this chat’s settings to %s edition.\nUse /ed <edition> to change this setting.")
	message.SetString(lang, "greeting.joined.discord", "Hello! I’ve initialized this server’s edition to **%s**.\nUse `/ed <edition>` to change it.")

	message.SetString(lang, "npc.usage", "Usage: /npc_create <name> [-a alias] [-t template] [-u] [-s]")
	message.SetString(lang, "npc.missing_name", "Please specify the NPC name.")
	message.SetString(lang, "npc.template_not_found", "❌ Template alias `%s` not found\\. Use `/npc_list_templates` to see the available templates\\.")
	message.SetString(lang, "npc.created", "✅ Created NPC \\#%s:")
	message.SetString(lang, "npc.created.name", "• Name: %s")
	message.SetString(lang, "npc.created.alias", "• Alias: %s")
	message.SetString(lang, "npc.created.template", "• Template: %s")
	message.SetString(lang, "npc.created.unique", "• Unique: %s")
	message.SetString(lang, "npc.created.shared", "• Shared: %s")
	message.SetString(lang, "npc.alias_dropped", "⚠️  I dropped alias `%s` because aliases only work in group/supergroup chats\\.")
	message.SetString(lang, "npc.value_yes", "yes")
	message.SetString(lang, "npc.value_no", "no")
	message.SetString(lang, "npc.value_none", "none")
	message.SetString(lang, "npc.value_no_alias", "(none)")
	message.SetString(lang, "npc.templates_empty", "📜 You have no NPC templates available.")
	message.SetString(lang, "npc.templates_header", "📜 *Available NPC Templates:*")
	message.SetString(lang, "npc.templates_entry", "• %s (alias: %s)")
}
