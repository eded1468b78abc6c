package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/appengine"

	"github.com/botshop/go-seabot/seabot"
	"github.com/botshop/go-seabot/service/logger"
	sentryutil "github.com/botshop/go-seabot/service/sentry"
)

func init() {
	cobra.OnInitialize(seabot.SetDefaults)

	rootCmd.AddCommand(registerCmd)
}

var rootCmd = &cobra.Command{
	Use:   "seabot",
	Short: "Serve the OpenSea stats and sales Discord bot",
	Long: `A Discord bot answering /stats and /sales with OpenSea collection data.
Interactions are received over HTTP at /interactions; configuration is read from the environment.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		defer sentryutil.RecoverAndRaise(nil)

		seabot.Init()
		if appengine.IsAppEngine() {
			appengine.Main()
		} else {
			port := viper.GetInt("PORT")
			logger.For(nil).Infof("Running in Default Mode with port :%d", port)
			if err := http.ListenAndServe(fmt.Sprintf(":%d", port), nil); err != nil {
				logger.For(nil).Fatal(err)
			}
		}
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Publish the bot's slash commands to Discord",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		seabot.LoadConfigFile()
		return seabot.RegisterFromEnv(context.Background())
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
