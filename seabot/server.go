package seabot

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/botshop/go-seabot/service/logger"
	"github.com/botshop/go-seabot/service/metric"
	"github.com/botshop/go-seabot/service/opensea"
	"github.com/botshop/go-seabot/service/pager"
	sentryutil "github.com/botshop/go-seabot/service/sentry"
	"github.com/botshop/go-seabot/util"
)

const (
	outcomeOK     = "ok"
	outcomeNotice = "notice"
	outcomeError  = "error"
)

type errUnknownInteraction struct {
	kind string
	name string
}

func (e errUnknownInteraction) Error() string {
	return fmt.Sprintf("unknown %s: %q", e.kind, e.name)
}

func (errUnknownInteraction) ClientError() {}

type errMalformedInteraction struct {
	err error
}

func (e errMalformedInteraction) Error() string {
	return fmt.Sprintf("malformed interaction: %s", e.err)
}

func (e errMalformedInteraction) Unwrap() error { return e.err }

func (errMalformedInteraction) ClientError() {}

// CollectionFetcher loads a collection and its stats.
type CollectionFetcher interface {
	GetCollection(ctx context.Context, slug string) (opensea.Collection, error)
}

// Bot answers Discord interactions.
type Bot struct {
	collections CollectionFetcher
	pager       *pager.Controller
	store       pager.Store
	renderer    *EmbedRenderer
}

func NewBot(collections CollectionFetcher, controller *pager.Controller, store pager.Store, renderer *EmbedRenderer) *Bot {
	return &Bot{collections: collections, pager: controller, store: store, renderer: renderer}
}

func handleInteraction(bot *Bot) gin.HandlerFunc {
	return func(c *gin.Context) {
		var interaction discordgo.Interaction
		if err := c.ShouldBindJSON(&interaction); err != nil {
			util.ErrResponse(c, http.StatusBadRequest, errMalformedInteraction{err})
			return
		}

		ctx := logger.NewContextWithFields(c.Request.Context(), logrus.Fields{
			"interactionId":   interaction.ID,
			"interactionType": interaction.Type.String(),
			"guildId":         interaction.GuildID,
		})

		resp, err := bot.Respond(ctx, &interaction)
		if err != nil {
			if errors.As(err, &errUnknownInteraction{}) {
				util.ErrResponse(c, http.StatusBadRequest, err)
				return
			}
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

// Respond builds the response to a single interaction. Failures talking to OpenSea are answered
// with an error card; only malformed interactions return an error.
func (b *Bot) Respond(ctx context.Context, i *discordgo.Interaction) (*discordgo.InteractionResponse, error) {
	switch i.Type {
	case discordgo.InteractionPing:
		return &discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong}, nil
	case discordgo.InteractionApplicationCommand:
		return b.command(ctx, i.ApplicationCommandData())
	case discordgo.InteractionMessageComponent:
		return b.component(ctx, i.MessageComponentData())
	}
	return nil, errUnknownInteraction{kind: "interaction type", name: i.Type.String()}
}

func (b *Bot) command(ctx context.Context, data discordgo.ApplicationCommandInteractionData) (*discordgo.InteractionResponse, error) {
	if data.Name != commandStats && data.Name != commandSales {
		metric.ObserveInteraction("command", "unknown", outcomeError)
		return nil, errUnknownInteraction{kind: "command", name: data.Name}
	}

	slug, ok := collectionOption(data)
	if !ok {
		metric.ObserveInteraction("command", data.Name, outcomeError)
		return nil, errUnknownInteraction{kind: "command option", name: data.Name + "." + optionCollection}
	}

	ctx = logger.NewContextWithFields(ctx, logrus.Fields{"command": data.Name, "collection": slug})

	if data.Name == commandStats {
		return b.stats(ctx, slug), nil
	}
	return b.sales(ctx, slug), nil
}

func (b *Bot) stats(ctx context.Context, slug string) *discordgo.InteractionResponse {
	coll, err := b.collections.GetCollection(ctx, slug)
	if err != nil {
		metric.ObserveInteraction("command", commandStats, outcomeError)
		return message(b.renderer.Error(b.failureMessage(ctx, err)))
	}

	metric.ObserveInteraction("command", commandStats, outcomeOK)
	return message(b.renderer.Stats(coll))
}

func (b *Bot) sales(ctx context.Context, slug string) *discordgo.InteractionResponse {
	r, err := b.pager.Start(ctx, slug)
	if errors.Is(err, pager.ErrNoSales) {
		metric.ObserveInteraction("command", commandSales, outcomeNotice)
		return message(b.renderer.Error(fmt.Sprintf("No sales found for %s", slug)))
	}
	if err != nil {
		metric.ObserveInteraction("command", commandSales, outcomeError)
		return message(b.renderer.Error(b.failureMessage(ctx, err)))
	}

	b.store.Put(r.State)
	metric.ObserveInteraction("command", commandSales, outcomeOK)

	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{r.Embed},
			Components: salesControls(r.State.ID),
		},
	}
}

func (b *Bot) component(ctx context.Context, data discordgo.MessageComponentInteractionData) (*discordgo.InteractionResponse, error) {
	action, stateID, err := parseCustomID(data.CustomID)
	if err != nil {
		metric.ObserveInteraction("component", "unknown", outcomeError)
		return nil, err
	}

	name := string(action)
	ctx = logger.NewContextWithFields(ctx, logrus.Fields{"action": name, "stateId": stateID})

	state, ok := b.store.Get(stateID)
	if !ok {
		metric.ObserveInteraction("component", name, outcomeNotice)
		return notice(pager.NoticeExpired), nil
	}

	var r pager.Render
	switch action {
	case actionBack:
		r, err = b.pager.Back(ctx, state)
	case actionNext:
		r, err = b.pager.Forward(ctx, state)
	case actionInfo:
		r = b.pager.Toggle(state)
	}

	if err != nil {
		metric.ObserveInteraction("component", name, outcomeError)
		return message(b.renderer.Error(b.failureMessage(ctx, err))), nil
	}

	if !r.Committed() {
		metric.ObserveInteraction("component", name, outcomeNotice)
		return notice(r.Notice), nil
	}

	b.store.Put(r.State)
	metric.ObserveInteraction("component", name, outcomeOK)

	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{r.Embed},
			Components: salesControls(r.State.ID),
		},
	}, nil
}

// failureMessage logs a failed OpenSea request and returns the text shown to the user. A request
// that got a response shows its status code; anything else is reported to sentry.
func (b *Bot) failureMessage(ctx context.Context, err error) string {
	if status, ok := opensea.StatusCode(err); ok {
		logger.For(ctx).WithError(err).Warn("opensea returned an error")
		return fmt.Sprintf("Please check the collection name/slug and try again.\n **Error code %d**", status)
	}

	logger.For(ctx).WithError(err).Error("opensea request failed")
	sentryutil.ReportError(ctx, err)

	if errors.As(err, &opensea.ErrTransport{}) {
		return "Could not reach OpenSea, please try again later."
	}
	return "OpenSea sent an unexpected response, please try again later."
}

func message(embed *discordgo.MessageEmbed) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}},
	}
}

func notice(text string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: text},
	}
}
