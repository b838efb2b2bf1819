package discord

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel/trace"
)

const (
	errorEmbedColor = 0xE74C3C
	// maxFieldLength is Discord's per-field value cap.
	maxFieldLength  = 1024
	maxStackFields  = 4
	stackFenceOpen  = "```\n"
	stackFenceClose = "\n```"
)

// poster is the REST surface the reporter posts through.
// *discordgo.Session satisfies it without an open gateway, so the
// Telegram daemon can report with a session it never opens.
type poster interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Reporter relays handler failures to a Discord log channel as embeds
// and mirrors every failure to the local log.
type Reporter struct {
	poster    poster
	channelID string
	platform  string
}

// NewReporter wires a reporter for one transport daemon. A nil poster or
// blank channel ID keeps reports local.
func NewReporter(poster poster, channelID, platform string) *Reporter {
	return &Reporter{
		poster:    poster,
		channelID: strings.TrimSpace(channelID),
		platform:  platform,
	}
}

// Report logs the failure and, when a log channel is configured, posts an
// embed carrying the caller identity, the error and the handler stack.
func (r *Reporter) Report(ctx context.Context, source, userID, chatID string, err error) {
	if r == nil {
		return
	}
	log.Printf("%s %s error (user=%s chat=%s): %v", r.platform, source, userID, chatID, err)
	if r.poster == nil || r.channelID == "" {
		return
	}

	description := fmt.Sprintf("**User:** %s\n**Chat:** %s\n**Error:** `%v`",
		orUnknown(userID), orUnknown(chatID), err)
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		description += fmt.Sprintf("\n**Trace:** `%s`", sc.TraceID())
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Error in %s %s", r.platform, source),
		Description: description,
		Color:       errorEmbedColor,
		Fields:      stackFields(debug.Stack()),
	}
	if _, sendErr := r.poster.ChannelMessageSendEmbed(r.channelID, embed, discordgo.WithContext(ctx)); sendErr != nil {
		log.Printf("post error report to channel %s: %v", r.channelID, sendErr)
	}
}

// stackFields fences the stack into embed fields under the per-field
// cap. Go stacks lead with the innermost frames, so the head survives
// when the stack is too long for the embed.
func stackFields(stack []byte) []*discordgo.MessageEmbedField {
	chunkSize := maxFieldLength - len(stackFenceOpen) - len(stackFenceClose)
	text := strings.TrimSpace(string(stack))
	if limit := chunkSize * maxStackFields; len(text) > limit {
		text = text[:limit]
	}

	var fields []*discordgo.MessageEmbedField
	for start := 0; start < len(text); start += chunkSize {
		end := start + chunkSize
		if end > len(text) {
			end = len(text)
		}
		name := "Stack trace"
		if start > 0 {
			name = fmt.Sprintf("Stack trace (cont. %d)", start/chunkSize)
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  name,
			Value: stackFenceOpen + text[start:end] + stackFenceClose,
		})
	}
	return fields
}

func orUnknown(id string) string {
	if id == "" {
		return "unknown"
	}
	return id
}
