//go:build wireinject
// +build wireinject

package seabot

import (
	"context"

	"github.com/google/wire"

	"github.com/botshop/go-seabot/service/opensea"
	"github.com/botshop/go-seabot/service/pager"
)

// NewBotFromEnv is a wire injector that builds the bot from configuration. The OpenSea client is
// created once and shared by every interaction.
func NewBotFromEnv(ctx context.Context) (*Bot, error) {
	panic(wire.Build(
		opensea.NewHTTPClient,
		newOpenseaClient,
		newEmbedRenderer,
		newPagerOptions,
		newPagerStore,
		pager.NewController,
		NewBot,
		wire.Bind(new(CollectionFetcher), new(*opensea.Client)),
		wire.Bind(new(pager.Fetcher), new(*opensea.Client)),
		wire.Bind(new(pager.SaleRenderer), new(*EmbedRenderer)),
		wire.Bind(new(pager.Store), new(*pager.MemoryStore)),
	))
}
