package seabot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/botshop/go-seabot/service/opensea"
	"github.com/botshop/go-seabot/service/pager"
	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"
)

const (
	colorBlue = 0x3498db
	colorRed  = 0xe74c3c

	errorTitle = "An error has occurred"

	// weiPerEther is the exponent that converts a minor-unit price to ether.
	weiPerEther = 18
)

var hundred = decimal.NewFromInt(100)

// EmbedRenderer builds the cards sent back to Discord. Every card is a function of its input and
// the renderer's clock.
type EmbedRenderer struct {
	BrandName   string
	LogoURL     string
	ExplorerURL string
	Now         func() time.Time
}

func NewEmbedRenderer(brandName, logoURL, explorerURL string) *EmbedRenderer {
	return &EmbedRenderer{
		BrandName:   brandName,
		LogoURL:     logoURL,
		ExplorerURL: strings.TrimSuffix(explorerURL, "/"),
		Now:         time.Now,
	}
}

// Stats renders the statistics card of a collection.
func (r *EmbedRenderer) Stats(coll opensea.Collection) *discordgo.MessageEmbed {
	author, description := statsAuthor(coll)
	stats := coll.Stats

	return &discordgo.MessageEmbed{
		Author:      author,
		Description: description,
		Color:       colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			windowField("__One Day Metrics__", stats.OneDay()),
			windowField("__Seven Day Metrics__", stats.SevenDay()),
			windowField("__Thirty Day Metrics__", stats.ThirtyDay()),
			{Name: "__Total Volume__", Value: ether(stats.TotalVolume), Inline: true},
			{Name: "__Total Sales__", Value: count(stats.TotalSales), Inline: true},
			{Name: "__Total Supply__", Value: count(stats.TotalSupply), Inline: true},
			{Name: "__Average Price__", Value: ether(stats.AveragePrice), Inline: true},
			{Name: "__Market Cap__", Value: ether(stats.MarketCap), Inline: true},
			{Name: "__Unique Owners__", Value: strconv.FormatInt(stats.NumOwners, 10), Inline: true},
		},
		Thumbnail: r.thumbnail(),
		Footer:    r.footer(),
	}
}

// RenderSale renders one sale in the given view.
func (r *EmbedRenderer) RenderSale(event opensea.SaleEvent, view pager.DetailView) *discordgo.MessageEmbed {
	var fields []*discordgo.MessageEmbedField
	switch view {
	case pager.Secondary:
		blockNumber := event.Transaction.BlockNumber.String()
		fields = []*discordgo.MessageEmbedField{
			{Name: "Transaction Hash", Value: event.Transaction.TransactionHash},
			{Name: "Block Hash", Value: event.Transaction.BlockHash},
			{Name: "Block Number", Value: blockNumber},
			{Name: "Etherscan", Value: fmt.Sprintf("%s/block/%s", r.ExplorerURL, blockNumber), Inline: true},
		}
	default:
		fields = []*discordgo.MessageEmbedField{
			{Name: "Price", Value: Price(event.TotalPrice)},
			{Name: "Time of Sale", Value: event.EventTimestamp},
			{Name: "Seller", Value: event.Seller.Address, Inline: true},
			{Name: "Buyer", Value: event.WinnerAccount.Address, Inline: true},
		}
	}

	return &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name: fmt.Sprintf("%s #%s Was Sold", event.Asset.Collection.Name, event.Asset.TokenID),
			URL:  event.Asset.Permalink,
		},
		Fields:    fields,
		Image:     &discordgo.MessageEmbedImage{URL: event.Asset.ImageURL},
		Thumbnail: r.thumbnail(),
		Footer:    r.footer(),
	}
}

// Error renders a failure card.
func (r *EmbedRenderer) Error(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       errorTitle,
		Description: message,
		Color:       colorRed,
	}
}

// Price converts a price in wei to ether, e.g. "2.5E".
func Price(wei decimal.Decimal) string {
	return wei.Shift(-weiPerEther).String() + "E"
}

func (r *EmbedRenderer) thumbnail() *discordgo.MessageEmbedThumbnail {
	return &discordgo.MessageEmbedThumbnail{URL: r.LogoURL}
}

func (r *EmbedRenderer) footer() *discordgo.MessageEmbedFooter {
	return &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("%s | %s", r.BrandName, r.Now().UTC().Format(time.TimeOnly)),
	}
}

// statsAuthor picks the author line from the first primary contract, or from the collection itself
// when it has none.
func statsAuthor(coll opensea.Collection) (*discordgo.MessageEmbedAuthor, string) {
	if len(coll.PrimaryAssetContracts) == 0 {
		return &discordgo.MessageEmbedAuthor{
			Name:    coll.Name,
			URL:     deref(coll.ExternalURL),
			IconURL: coll.ImageURL,
		}, coll.Description
	}

	contract := coll.PrimaryAssetContracts[0]
	return &discordgo.MessageEmbedAuthor{
		Name:    contract.Name,
		URL:     deref(contract.ExternalLink),
		IconURL: contract.ImageURL,
	}, contract.Description
}

func windowField(name string, w opensea.Window) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{
		Name: name,
		Value: fmt.Sprintf("**Volume:** %s\n**Sales:** %s\n**Change:** %s\n**Avg. Price:** %s",
			fixed(w.Volume, 2), count(w.Sales), percent(w.Change), fixed(w.AveragePrice, 2)),
		Inline: true,
	}
}

func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

func count(v float64) string {
	return fixed(v, 0)
}

func ether(v float64) string {
	return fixed(v, 2) + "E"
}

func percent(ratio float64) string {
	return decimal.NewFromFloat(ratio).Mul(hundred).StringFixed(2) + "%"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
