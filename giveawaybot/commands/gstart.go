package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	giveawaybot "github.com/disgoorg/giveaway-bot/giveawaybot"
	"github.com/disgoorg/giveaway-bot/giveawaybot/database/models"
)

var GStart = discord.SlashCommandCreate{
	Name:        "gstart",
	Description: "🎉 Start a giveaway in this channel!",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "time",
			Description: "How long the giveaway runs, e.g. 30m, 1h or 2 days",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "winners",
			Description: "How many winners to draw",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "prize",
			Description: "What is being given away",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "description",
			Description: "Extra text shown on the giveaway",
		},
	},
}

func GStartHandler(b *giveawaybot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if e.GuildID() == nil {
			return replyError(e, "Giveaways can only be started in a server.")
		}
		guildID := *e.GuildID()
		channelID := e.ChannelID()

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		level := b.Cfg.Giveaway.DefaultLevel.PremiumLevel()
		if err := b.GiveawayManager.CheckAvailability(ctx, guildID, channelID, level); err != nil {
			return replyGiveawayError(e, err)
		}

		data := e.SlashCommandInteractionData()
		description, _ := data.OptString("description")
		g, err := b.GiveawayManager.Construct(
			e.User().ID,
			data.String("time"),
			data.String("winners"),
			data.String("prize"),
			description,
			level,
		)
		if err != nil {
			return replyGiveawayError(e, err)
		}

		// Keep the host snapshot fresh so the eventual summary has a name.
		if err := b.UserRepo.Upsert(ctx, models.NewCachedUser(e.User())); err != nil {
			slog.Warn("Failed to refresh host snapshot",
				slog.String("user_id", e.User().ID.String()),
				slog.Any("error", err))
		}

		if _, err := b.GiveawayManager.Send(ctx, g, guildID, channelID); err != nil {
			return replyGiveawayError(e, err)
		}
		return replySuccess(e, "Giveaway started! Good luck everyone 🎉")
	}
}
