package discord

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"fantamorto/internal/application"
	domainerrors "fantamorto/internal/errors"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "~", `\~`, "`", "\\`", "|", `\|`, ">", `\>`,
)

func escape(s string) string {
	return markdownEscaper.Replace(s)
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	suffix := []rune(truncationSuffix)
	return string(r[:limit-len(suffix)]) + truncationSuffix
}

func getMedalEmoji(position int) string {
	switch position {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("%d.", position)
	}
}

func valueOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

func (b *Bot) respondMessage(s *discordgo.Session, i *discordgo.Interaction, msg string, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msg,
			Flags:   flags,
		},
	})
	if err != nil {
		b.logger.Error("failed to respond to interaction: %v", err)
	}
}

// deferResponse acknowledges a command whose answer may take longer than Discord waits.
func (b *Bot) deferResponse(s *discordgo.Session, i *discordgo.Interaction) {
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		b.logger.Error("failed to defer interaction: %v", err)
	}
}

func (b *Bot) editText(s *discordgo.Session, i *discordgo.Interaction, msg string) {
	msg = truncate(msg, 2000)
	b.edit(s, i, &discordgo.WebhookEdit{Content: &msg})
}

func (b *Bot) editEmbed(s *discordgo.Session, i *discordgo.Interaction, embeds ...*discordgo.MessageEmbed) {
	b.edit(s, i, &discordgo.WebhookEdit{Embeds: &embeds})
}

func (b *Bot) editFile(s *discordgo.Session, i *discordgo.Interaction, msg, name string, data []byte) {
	b.edit(s, i, &discordgo.WebhookEdit{
		Content: &msg,
		Files:   []*discordgo.File{{Name: name, Reader: bytes.NewReader(data)}},
	})
}

func (b *Bot) edit(s *discordgo.Session, i *discordgo.Interaction, edit *discordgo.WebhookEdit) {
	if _, err := s.InteractionResponseEdit(i, edit); err != nil {
		b.logger.Error("failed to edit interaction response: %v", err)
	}
}

func (b *Bot) editError(s *discordgo.Session, i *discordgo.Interaction, err error) {
	var ambiguous *application.AmbiguousLookupError
	if errors.As(err, &ambiguous) {
		b.editEmbed(s, i, candidatesEmbed(ambiguous.Query, ambiguous.Candidates, b.clock.Now()))
		return
	}
	b.editText(s, i, b.errorText(err))
}

func (b *Bot) errorText(err error) string {
	if errors.Is(err, application.ErrSheetsNotConfigured) {
		return "Google Sheets export is not available on this bot."
	}
	if domainerrors.IsDomain(err) {
		return escape(err.Error())
	}
	if domainerrors.KindOf(err) == domainerrors.KindUpstreamUnavailable {
		b.logger.Warn("wikidata unavailable: %v", err)
		return "Wikidata is not answering right now, try again later."
	}
	b.logger.Error("command failed: %v", err)
	return "Something went wrong, try again later."
}

func options(i *discordgo.Interaction) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

func stringOption(i *discordgo.Interaction, name string) string {
	if o, ok := options(i)[name]; ok {
		return strings.TrimSpace(o.StringValue())
	}
	return ""
}

func intOption(i *discordgo.Interaction, name string) int {
	if o, ok := options(i)[name]; ok {
		return int(o.IntValue())
	}
	return -1
}
