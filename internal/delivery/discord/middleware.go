package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) isAdmin(userID string) bool {
	_, ok := b.adminIDs[userID]
	return ok
}

func (b *Bot) ensureAdmin(handler handlerFunc) handlerFunc {
	return func(ctx context.Context, s *discordgo.Session, i *discordgo.Interaction) {
		if !b.isAdmin(userOf(i).ID) {
			b.respondMessage(s, i, "This command is for admins only.", true)
			return
		}
		handler(ctx, s, i)
	}
}
