package commands

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	giveawaybot "github.com/disgoorg/giveaway-bot/giveawaybot"
	"github.com/disgoorg/giveaway-bot/giveawaybot/database/models"
	"github.com/disgoorg/paginator"
	"github.com/sahilm/fuzzy"
)

const giveawaysPerPage = 10

var GList = discord.SlashCommandCreate{
	Name:        "glist",
	Description: "📋 List this server's active giveaways",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "filter",
			Description: "Only show giveaways whose prize matches this",
		},
	},
}

func GListHandler(b *giveawaybot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if e.GuildID() == nil {
			return replyError(e, "Giveaways only exist in servers.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		giveaways, err := b.GiveawayRepo.GetActiveByGuild(ctx, *e.GuildID())
		if err != nil {
			return replyError(e, "Failed to look up the active giveaways.")
		}

		query, _ := e.SlashCommandInteractionData().OptString("filter")
		query = strings.TrimSpace(query)
		if query != "" {
			giveaways = filterByPrize(giveaways, query)
		}
		if len(giveaways) == 0 {
			return replyError(e, "No active giveaways found.")
		}

		totalPages := int(math.Ceil(float64(len(giveaways)) / float64(giveawaysPerPage)))

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				startIdx := page * giveawaysPerPage
				endIdx := min(startIdx+giveawaysPerPage, len(giveaways))

				var description strings.Builder
				if query != "" {
					description.WriteString(fmt.Sprintf("🔍 `%s`\n\n", query))
				}
				for _, g := range giveaways[startIdx:endIdx] {
					fmt.Fprintf(&description, "**%s** — %d winner(s), ends <t:%d:R>\nhttps://discord.com/channels/%s/%s/%s\n",
						g.Prize, g.NumWinners, g.EndTime.Unix(),
						g.GuildID, g.ChannelID, g.MessageID)
				}

				embed.
					SetTitle("Active Giveaways").
					SetDescription(description.String()).
					SetColor(models.DefaultColor).
					SetFooter(fmt.Sprintf("Page %d/%d • Total: %d", page+1, totalPages, len(giveaways)), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}

func filterByPrize(giveaways []*models.Giveaway, query string) []*models.Giveaway {
	prizes := make([]string, len(giveaways))
	for i, g := range giveaways {
		prizes[i] = g.Prize
	}
	matches := fuzzy.Find(query, prizes)

	filtered := make([]*models.Giveaway, 0, len(matches))
	for _, match := range matches {
		filtered = append(filtered, giveaways[match.Index])
	}
	return filtered
}
