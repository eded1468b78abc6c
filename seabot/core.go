package seabot

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/botshop/go-seabot/env"
	"github.com/botshop/go-seabot/middleware"
	"github.com/botshop/go-seabot/service/logger"
	"github.com/botshop/go-seabot/service/opensea"
	"github.com/botshop/go-seabot/service/pager"
	sentryutil "github.com/botshop/go-seabot/service/sentry"
	"github.com/botshop/go-seabot/util"
)

const (
	defaultLogoURL = "https://cdn.discordapp.com/attachments/985963144973258804/1012639908218818620/logo.png"
	serviceName    = "seabot"
)

func init() {
	env.RegisterValidation("DISCORD_PUBLIC_KEY", "required", "hexadecimal", "len=64")
	env.RegisterValidation("SALES_PAGE_LIMIT", "required", "numeric")
	env.RegisterValidation("PAGER_CACHE_SIZE", "required", "numeric")
}

// Init configures the bot from the environment and mounts its routes on http.DefaultServeMux.
func Init() {
	SetDefaults()
	LoadConfigFile()
	initLogger()
	initSentry()

	if err := env.Validate(); err != nil {
		panic(fmt.Sprintf("invalid configuration: %s", err))
	}

	ctx := context.Background()
	publicKey, err := ParsePublicKey(env.GetString(ctx, "DISCORD_PUBLIC_KEY"))
	if err != nil {
		panic(err)
	}

	bot, err := NewBotFromEnv(ctx)
	if err != nil {
		panic(err)
	}

	router := coreInit(bot, publicKey)
	http.Handle("/", router)
}

func coreInit(bot *Bot, publicKey ed25519.PublicKey) *gin.Engine {
	logger.For(nil).Info("initializing seabot...")

	if viper.GetString("ENV") != "production" {
		gin.SetMode(gin.DebugMode)
		logger.SetLoggerOptions(func(l *logrus.Logger) { l.SetLevel(logrus.DebugLevel) })
	}

	router := gin.Default()
	router.Use(middleware.Sentry(true), middleware.Tracing(), middleware.ErrLogger())

	return handlersInit(router, bot, publicKey)
}

// newOpenseaClient creates the OpenSea client shared by every interaction.
func newOpenseaClient(ctx context.Context, httpClient *http.Client) (*opensea.Client, error) {
	return opensea.NewClient(httpClient, env.GetString(ctx, "OPENSEA_API_URL"), env.GetString(ctx, "OPENSEA_API_KEY"))
}

func newEmbedRenderer(ctx context.Context) *EmbedRenderer {
	return NewEmbedRenderer(env.GetString(ctx, "BRAND_NAME"), env.GetString(ctx, "BRAND_LOGO_URL"), env.GetString(ctx, "EXPLORER_URL"))
}

func newPagerOptions(ctx context.Context) pager.Options {
	return pager.Options{
		Limit:        env.Get[int](ctx, "SALES_PAGE_LIMIT"),
		GuardForward: env.Get[bool](ctx, "PAGER_GUARD_FORWARD"),
	}
}

func newPagerStore(ctx context.Context) *pager.MemoryStore {
	return pager.NewMemoryStore(env.Get[int](ctx, "PAGER_CACHE_SIZE"), env.Get[time.Duration](ctx, "PAGER_SESSION_TTL"))
}

// SetDefaults registers the configuration defaults and binds the environment.
func SetDefaults() {
	viper.SetDefault("ENV", "local")
	viper.SetDefault("PORT", 4123)
	viper.SetDefault("SENTRY_DSN", "")
	viper.SetDefault("SENTRY_TRACES_SAMPLE_RATE", 0.2)
	viper.SetDefault("BOT_TOKEN", "")
	viper.SetDefault("DISCORD_APPLICATION_ID", "")
	viper.SetDefault("DISCORD_PUBLIC_KEY", "")
	viper.SetDefault("DISCORD_GUILD_ID", "")
	viper.SetDefault("OPENSEA_API_URL", opensea.DefaultBaseURL)
	viper.SetDefault("OPENSEA_API_KEY", "")
	viper.SetDefault("SALES_PAGE_LIMIT", 1)
	viper.SetDefault("PAGER_GUARD_FORWARD", true)
	viper.SetDefault("PAGER_CACHE_SIZE", 4096)
	viper.SetDefault("PAGER_SESSION_TTL", 24*time.Hour)
	viper.SetDefault("BRAND_NAME", "BotShop")
	viper.SetDefault("BRAND_LOGO_URL", defaultLogoURL)
	viper.SetDefault("EXPLORER_URL", "https://etherscan.io")
	viper.AutomaticEnv()
}

// LoadConfigFile merges the local settings file for the current environment, if there is one.
func LoadConfigFile() {
	util.LoadEnvFile(util.ResolveEnvFile(serviceName, viper.GetString("ENV")))
}

// ParsePublicKey decodes the hex encoded ed25519 key shown on the application's Discord page.
func ParsePublicKey(s string) (ed25519.PublicKey, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid discord public key: %w", err)
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid discord public key: expected %d bytes, got %d", ed25519.PublicKeySize, len(key))
	}
	return ed25519.PublicKey(key), nil
}

func initLogger() {
	logger.SetLoggerOptions(func(l *logrus.Logger) {
		if viper.GetString("ENV") == "local" {
			l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			return
		}
		l.SetFormatter(&logrus.JSONFormatter{})
	})
}

func initSentry() {
	if viper.GetString("ENV") == "local" {
		logger.For(nil).Info("skipping sentry init")
		return
	}

	logger.For(nil).Info("initializing sentry...")

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              viper.GetString("SENTRY_DSN"),
		Environment:      viper.GetString("ENV"),
		TracesSampleRate: env.Get[float64](context.Background(), "SENTRY_TRACES_SAMPLE_RATE"),
		Release:          viper.GetString("GAE_VERSION"),
		AttachStacktrace: true,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			event = sentryutil.ScrubEventHeaders(event, hint)
			event = sentryutil.UpdateErrorFingerprints(event, hint)
			return event
		},
	})

	if err != nil {
		logger.For(nil).Fatalf("failed to start sentry: %s", err)
	}
}
