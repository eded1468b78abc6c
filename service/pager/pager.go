// Package pager walks the cursor-paged sale events of a collection and switches between the two
// detail views of the loaded sale.
package pager

import (
	"context"
	"errors"
	"fmt"

	"github.com/botshop/go-seabot/service/logger"
	"github.com/botshop/go-seabot/service/opensea"
	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

const (
	NoticeNoPrevious = "No previous page"
	NoticeNoNext     = "No next page"
	NoticeEmptyPage  = "No sales on that page"
	NoticeExpired    = "This pager has expired, run /sales again"
)

// ErrNoSales is returned by Start when the collection has no sales to show.
var ErrNoSales = errors.New("collection has no sales")

// DetailView selects which fields of a sale are rendered.
type DetailView int

const (
	Primary   DetailView = 1
	Secondary DetailView = 2
)

// Next returns the view after v, wrapping back to Primary.
func (v DetailView) Next() DetailView {
	if v == Primary {
		return Secondary
	}
	return Primary
}

func (v DetailView) String() string {
	switch v {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	}
	return fmt.Sprintf("DetailView(%d)", int(v))
}

// Fetcher loads a page of sale events.
type Fetcher interface {
	GetSaleEvents(ctx context.Context, q opensea.SalesQuery) (opensea.EventPage, error)
}

// SaleRenderer turns one sale into a card for the given view.
type SaleRenderer interface {
	RenderSale(event opensea.SaleEvent, view DetailView) *discordgo.MessageEmbed
}

// ViewState is a snapshot of one pager. A transition never changes a ViewState; it produces a new
// one with a new ID.
type ViewState struct {
	ID         string
	Collection string
	Limit      int
	View       DetailView
	Page       opensea.EventPage
}

// Event is the sale currently shown.
func (s ViewState) Event() opensea.SaleEvent {
	return s.Page.Events[0]
}

// Render is the outcome of a transition. When Notice is set nothing was committed: State is the
// input state and Embed is nil.
type Render struct {
	State  ViewState
	Embed  *discordgo.MessageEmbed
	Notice string
}

// Committed reports whether the transition produced a new snapshot.
func (r Render) Committed() bool {
	return r.Notice == ""
}

type Options struct {
	// Limit is the number of events requested per page.
	Limit int
	// GuardForward refuses Forward when the page has no next cursor. Without it the request is sent
	// with an empty cursor and the API answers with the first page.
	GuardForward bool
}

type Controller struct {
	fetcher  Fetcher
	renderer SaleRenderer
	opts     Options
	newID    func() string
}

func NewController(fetcher Fetcher, renderer SaleRenderer, opts Options) *Controller {
	if opts.Limit < 1 {
		opts.Limit = 1
	}
	return &Controller{fetcher: fetcher, renderer: renderer, opts: opts, newID: NewID}
}

// Start loads the first page of sales for a collection and shows it in the Primary view.
func (c *Controller) Start(ctx context.Context, collection string) (Render, error) {
	page, err := c.fetcher.GetSaleEvents(ctx, opensea.SalesQuery{Collection: collection, Limit: c.opts.Limit})
	if err != nil {
		return Render{}, err
	}

	if len(page.Events) == 0 {
		return Render{}, ErrNoSales
	}

	return c.commit(ViewState{Collection: collection, Limit: c.opts.Limit, View: Primary, Page: page}), nil
}

// Back loads the page before the current one.
func (c *Controller) Back(ctx context.Context, state ViewState) (Render, error) {
	if !state.Page.HasPrevious() {
		return notice(state, NoticeNoPrevious), nil
	}
	return c.move(ctx, state, state.Page.Previous)
}

// Forward loads the page after the current one.
func (c *Controller) Forward(ctx context.Context, state ViewState) (Render, error) {
	if c.opts.GuardForward && !state.Page.HasNext() {
		return notice(state, NoticeNoNext), nil
	}
	return c.move(ctx, state, state.Page.Next)
}

// Toggle switches the detail view of the loaded sale without fetching.
func (c *Controller) Toggle(state ViewState) Render {
	next := state
	next.View = state.View.Next()
	return c.commit(next)
}

func (c *Controller) move(ctx context.Context, state ViewState, cursor string) (Render, error) {
	page, err := c.fetcher.GetSaleEvents(ctx, opensea.SalesQuery{
		Collection: state.Collection,
		Limit:      state.Limit,
		Cursor:     cursor,
	})
	if err != nil {
		return Render{State: state}, err
	}

	if len(page.Events) == 0 {
		logger.For(ctx).WithFields(logrus.Fields{
			"collection": state.Collection,
			"cursor":     cursor,
		}).Debug("cursor led to an empty page")
		return notice(state, NoticeEmptyPage), nil
	}

	next := state
	next.Page = page
	return c.commit(next), nil
}

func (c *Controller) commit(state ViewState) Render {
	state.ID = c.newID()
	return Render{State: state, Embed: c.renderer.RenderSale(state.Event(), state.View)}
}

func notice(state ViewState, msg string) Render {
	return Render{State: state, Notice: msg}
}
