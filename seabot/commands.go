package seabot

import (
	"context"
	"fmt"

	"github.com/botshop/go-seabot/env"
	"github.com/botshop/go-seabot/service/logger"
	"github.com/bwmarrin/discordgo"
)

const (
	commandStats = "stats"
	commandSales = "sales"

	optionCollection = "collection"
)

// Commands are the slash commands published to Discord.
var Commands = []*discordgo.ApplicationCommand{
	{
		Name:        commandStats,
		Description: "View the statistics for a collection!",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        optionCollection,
				Description: "Enter the collection to view the stats for",
				Required:    true,
			},
		},
	},
	{
		Name:        commandSales,
		Description: "Browse the most recent sales of a collection!",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        optionCollection,
				Description: "Enter the collection you wish to view the activity of",
				Required:    true,
			},
		},
	},
}

// CommandRegistrar publishes application commands.
type CommandRegistrar interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// RegisterCommands replaces the application's commands with Commands. An empty guildID publishes
// them globally.
func RegisterCommands(ctx context.Context, registrar CommandRegistrar, appID, guildID string) error {
	created, err := registrar.ApplicationCommandBulkOverwrite(appID, guildID, Commands, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	for _, cmd := range created {
		logger.For(ctx).Infof("registered /%s (id=%s, guild=%q)", cmd.Name, cmd.ID, guildID)
	}

	return nil
}

// RegisterFromEnv publishes Commands with the bot credentials from the environment. Commands are
// scoped to DISCORD_GUILD_ID when it is set, which makes them available immediately.
func RegisterFromEnv(ctx context.Context) error {
	env.RegisterValidation("BOT_TOKEN", "required")
	env.RegisterValidation("DISCORD_APPLICATION_ID", "required", "numeric")
	if err := env.Validate("BOT_TOKEN", "DISCORD_APPLICATION_ID"); err != nil {
		return err
	}

	session, err := discordgo.New("Bot " + env.GetString(ctx, "BOT_TOKEN"))
	if err != nil {
		return fmt.Errorf("failed to create discord session: %w", err)
	}

	return RegisterCommands(ctx, session, env.GetString(ctx, "DISCORD_APPLICATION_ID"), env.GetString(ctx, "DISCORD_GUILD_ID"))
}

// collectionOption returns the collection argument of a command.
func collectionOption(data discordgo.ApplicationCommandInteractionData) (string, bool) {
	for _, opt := range data.Options {
		if opt.Name == optionCollection && opt.Type == discordgo.ApplicationCommandOptionString {
			if slug := opt.StringValue(); slug != "" {
				return slug, true
			}
		}
	}
	return "", false
}
