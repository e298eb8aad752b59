package commands

import (
	"context"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	giveawaybot "github.com/disgoorg/giveaway-bot/giveawaybot"
	"github.com/disgoorg/snowflake/v2"
)

var GEnd = discord.SlashCommandCreate{
	Name:        "gend",
	Description: "🏁 End one of this server's giveaways right now",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "message_id",
			Description: "The message id of the giveaway to end",
			Required:    true,
		},
	},
}

func GEndHandler(b *giveawaybot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if e.GuildID() == nil {
			return replyError(e, "Giveaways only exist in servers.")
		}

		data := e.SlashCommandInteractionData()
		messageID, err := snowflake.Parse(data.String("message_id"))
		if err != nil {
			return replyError(e, "That does not look like a message id.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		g, err := b.GiveawayRepo.GetByID(ctx, messageID)
		if err != nil || g.GuildID != *e.GuildID() {
			return replyError(e, "No active giveaway with that id in this server.")
		}

		if !b.GiveawayManager.End(ctx, g) {
			return replyError(e, "The giveaway could not be fully ended, check the logs.")
		}
		return replySuccess(e, "Giveaway ended and winners drawn.")
	}
}
