package components

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	giveawaybot "github.com/disgoorg/giveaway-bot/giveawaybot"
	"github.com/disgoorg/giveaway-bot/giveawaybot/database/models"
)

// EnterHandler records a press of the giveaway enter button. Entries are
// idempotent per user; pressing again just tells them they are already in.
func EnterHandler(b *giveawaybot.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		giveawayID := e.Message.ID
		if _, err := b.GiveawayRepo.GetByID(ctx, giveawayID); err != nil {
			return reply(e, "This giveaway has already ended.")
		}

		// Snapshot first so the summary has a name even if the user never
		// interacts again.
		if err := b.UserRepo.Upsert(ctx, models.NewCachedUser(e.User())); err != nil {
			slog.Warn("Failed to snapshot entrant",
				slog.String("user_id", e.User().ID.String()),
				slog.Any("error", err))
		}

		added, err := b.GiveawayRepo.AddEntry(ctx, giveawayID, e.User().ID)
		if err != nil {
			slog.Error("Failed to record giveaway entry",
				slog.String("message_id", giveawayID.String()),
				slog.String("user_id", e.User().ID.String()),
				slog.Any("error", err))
			return reply(e, "Your entry could not be recorded, try again.")
		}
		if !added {
			return reply(e, "You have already entered this giveaway!")
		}

		count, err := b.GiveawayRepo.CountEntries(ctx, giveawayID)
		if err != nil {
			return reply(e, "🎉 Your entry has been recorded!")
		}
		return reply(e, fmt.Sprintf("🎉 Your entry has been recorded! You are entry **%d**.", count))
	}
}

func reply(e *handler.ComponentEvent, content string) error {
	return e.CreateMessage(discord.MessageCreate{
		Content: content,
		Flags:   discord.MessageFlagEphemeral,
	})
}
