package opensea

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/botshop/go-seabot/env"
	"github.com/botshop/go-seabot/service/logger"
	"github.com/botshop/go-seabot/service/metric"
	"github.com/botshop/go-seabot/service/tracing"
	"github.com/botshop/go-seabot/util"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func init() {
	env.RegisterValidation("OPENSEA_API_KEY", "required")
	env.RegisterValidation("OPENSEA_API_URL", "required,url")
}

// DefaultBaseURL is the root of the OpenSea v1 REST API.
const DefaultBaseURL = "https://api.opensea.io/api/v1"

// CollectionResponse is the body of GET /collection/{slug}
type CollectionResponse struct {
	Collection Collection `json:"collection"`
}

// Collection is a collection from OpenSea
type Collection struct {
	Name                  string     `json:"name"`
	Slug                  string     `json:"slug"`
	Description           string     `json:"description"`
	ImageURL              string     `json:"image_url"`
	ExternalURL           *string    `json:"external_url"`
	PrimaryAssetContracts []Contract `json:"primary_asset_contracts"`
	Stats                 Stats      `json:"stats"`
}

// Contract represents an NFT contract from Opensea
type Contract struct {
	Address      string  `json:"address"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	ImageURL     string  `json:"image_url"`
	ExternalLink *string `json:"external_link"`
}

// Stats are the aggregated trading metrics of a collection
type Stats struct {
	OneDayVolume       float64 `json:"one_day_volume"`
	OneDayChange       float64 `json:"one_day_change"`
	OneDaySales        float64 `json:"one_day_sales"`
	OneDayAveragePrice float64 `json:"one_day_average_price"`

	SevenDayVolume       float64 `json:"seven_day_volume"`
	SevenDayChange       float64 `json:"seven_day_change"`
	SevenDaySales        float64 `json:"seven_day_sales"`
	SevenDayAveragePrice float64 `json:"seven_day_average_price"`

	ThirtyDayVolume       float64 `json:"thirty_day_volume"`
	ThirtyDayChange       float64 `json:"thirty_day_change"`
	ThirtyDaySales        float64 `json:"thirty_day_sales"`
	ThirtyDayAveragePrice float64 `json:"thirty_day_average_price"`

	TotalVolume  float64 `json:"total_volume"`
	TotalSales   float64 `json:"total_sales"`
	TotalSupply  float64 `json:"total_supply"`
	NumOwners    int64   `json:"num_owners"`
	AveragePrice float64 `json:"average_price"`
	MarketCap    float64 `json:"market_cap"`
}

// Window is the metric group of one rolling window
type Window struct {
	Volume       float64
	Change       float64
	Sales        float64
	AveragePrice float64
}

func (s Stats) OneDay() Window {
	return Window{Volume: s.OneDayVolume, Change: s.OneDayChange, Sales: s.OneDaySales, AveragePrice: s.OneDayAveragePrice}
}

func (s Stats) SevenDay() Window {
	return Window{Volume: s.SevenDayVolume, Change: s.SevenDayChange, Sales: s.SevenDaySales, AveragePrice: s.SevenDayAveragePrice}
}

func (s Stats) ThirtyDay() Window {
	return Window{Volume: s.ThirtyDayVolume, Change: s.ThirtyDayChange, Sales: s.ThirtyDaySales, AveragePrice: s.ThirtyDayAveragePrice}
}

// Cursor holds the opaque paging tokens returned with a page of events. An empty token means there
// is no page in that direction.
type Cursor struct {
	Next     string `json:"next"`
	Previous string `json:"previous"`
}

func (c Cursor) HasNext() bool {
	return c.Next != ""
}

func (c Cursor) HasPrevious() bool {
	return c.Previous != ""
}

// EventPage is one page of GET /events
type EventPage struct {
	Cursor
	Events []SaleEvent `json:"asset_events"`
}

// SaleEvent is a successful sale from OpenSea
type SaleEvent struct {
	Asset          Asset           `json:"asset"`
	EventTimestamp string          `json:"event_timestamp"`
	TotalPrice     decimal.Decimal `json:"total_price"` // in wei
	Seller         Account         `json:"seller"`
	WinnerAccount  Account         `json:"winner_account"`
	Transaction    Transaction     `json:"transaction"`
}

// Asset is an NFT from OpenSea
type Asset struct {
	Name       string          `json:"name"`
	TokenID    string          `json:"token_id"`
	ImageURL   string          `json:"image_url"`
	Permalink  string          `json:"permalink"`
	Collection AssetCollection `json:"collection"`
}

// AssetCollection is the collection summary embedded in an asset
type AssetCollection struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Account is a user account from OpenSea
type Account struct {
	Address string `json:"address"`
}

// Transaction is the on-chain transaction that settled a sale
type Transaction struct {
	TransactionHash string      `json:"transaction_hash"`
	BlockHash       string      `json:"block_hash"`
	BlockNumber     json.Number `json:"block_number"`
}

// SalesQuery selects a page of successful sale events for a collection
type SalesQuery struct {
	Collection string
	Limit      int
	Cursor     string
}

// ErrTransport is returned when a request to OpenSea never produced a response
type ErrTransport struct {
	URL string
	Err error
}

func (e ErrTransport) Error() string {
	return fmt.Sprintf("failed to reach opensea at %s: %s", e.URL, e.Err)
}

func (e ErrTransport) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status of a failed fetch, if err carries one
func StatusCode(err error) (int, bool) {
	var httpErr util.ErrHTTP
	if errors.As(err, &httpErr) {
		return httpErr.Status, true
	}
	return 0, false
}

// Client issues authenticated requests against the OpenSea API. The underlying http.Client is
// shared by every request for the life of the process.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	apiKey     string
}

// NewHTTPClient returns the http.Client used for OpenSea requests; requests are traced when a
// sentry transaction is in progress.
func NewHTTPClient() *http.Client {
	return &http.Client{Transport: tracing.NewTracingTransport(http.DefaultTransport, true)}
}

// NewClient creates a new client for the API rooted at baseURL
func NewClient(httpClient *http.Client, baseURL, apiKey string) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid opensea base url %q: %w", baseURL, err)
	}
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	return &Client{httpClient: httpClient, baseURL: u, apiKey: apiKey}, nil
}

// GetCollection fetches a collection and its stats by slug
func (c *Client) GetCollection(ctx context.Context, slug string) (Collection, error) {
	u := c.baseURL.JoinPath("collection", slug)

	var resp CollectionResponse
	if err := c.Fetch(ctx, u.String(), &resp); err != nil {
		return Collection{}, err
	}

	return resp.Collection, nil
}

// GetSaleEvents fetches a page of successful sales for a collection, starting at q.Cursor if set
func (c *Client) GetSaleEvents(ctx context.Context, q SalesQuery) (EventPage, error) {
	u := c.baseURL.JoinPath("events")
	query := u.Query()
	query.Set("only_opensea", "false")
	query.Set("collection_slug", q.Collection)
	query.Set("event_type", "successful")
	query.Set("limit", strconv.Itoa(q.Limit))
	if q.Cursor != "" {
		query.Set("cursor", q.Cursor)
	}
	u.RawQuery = query.Encode()

	var page EventPage
	if err := c.Fetch(ctx, u.String(), &page); err != nil {
		return EventPage{}, err
	}

	return page, nil
}

// Fetch GETs rawURL and decodes the JSON body into into. A non-200 response is returned as a
// util.ErrHTTP carrying the status code; it is never retried.
func (c *Client) Fetch(ctx context.Context, rawURL string, into any) error {
	req, err := c.authRequest(ctx, rawURL)
	if err != nil {
		return err
	}

	endpoint := c.endpointOf(req.URL)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metric.ObserveOpenseaRequest(endpoint, 0, time.Since(start))
		return ErrTransport{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	metric.ObserveOpenseaRequest(endpoint, resp.StatusCode, time.Since(start))
	logger.For(ctx).WithFields(logrus.Fields{
		"endpoint": endpoint,
		"status":   resp.StatusCode,
		"took":     time.Since(start),
	}).Debug("opensea request complete")

	if resp.StatusCode != http.StatusOK {
		return util.BodyAsError(resp)
	}

	if err := util.UnmarshallBody(into, resp.Body); err != nil {
		return fmt.Errorf("failed to decode opensea response from %s: %w", endpoint, err)
	}

	return nil
}

// authRequest returns a http.Request with authorization headers
func (c *Client) authRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create opensea request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)
	return req, nil
}

// endpointOf names the API resource of u for metrics, e.g. "collection" or "events".
func (c *Client) endpointOf(u *url.URL) string {
	rest := strings.TrimPrefix(u.Path, c.baseURL.Path)
	rest = strings.TrimPrefix(rest, "/")
	if rest == "" {
		return "other"
	}
	return strings.SplitN(rest, "/", 2)[0]
}
