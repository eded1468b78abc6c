package pager

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/botshop/go-seabot/service/opensea"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves pages keyed by cursor and records every query it receives.
type fakeFetcher struct {
	pages   map[string]opensea.EventPage
	err     error
	queries []opensea.SalesQuery
}

func (f *fakeFetcher) GetSaleEvents(ctx context.Context, q opensea.SalesQuery) (opensea.EventPage, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return opensea.EventPage{}, f.err
	}
	return f.pages[q.Cursor], nil
}

type fakeRenderer struct{}

func (fakeRenderer) RenderSale(event opensea.SaleEvent, view DetailView) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: fmt.Sprintf("%s #%s", view, event.Asset.TokenID)}
}

func sale(tokenID string) opensea.SaleEvent {
	return opensea.SaleEvent{Asset: opensea.Asset{TokenID: tokenID}}
}

func page(next, previous string, events ...opensea.SaleEvent) opensea.EventPage {
	return opensea.EventPage{Cursor: opensea.Cursor{Next: next, Previous: previous}, Events: events}
}

// stablePages is a three page history: "" -> abc123 -> def456, each page linking both ways.
func stablePages() map[string]opensea.EventPage {
	return map[string]opensea.EventPage{
		"":         page("abc123", "", sale("3")),
		"abc123":   page("def456", "prev-abc", sale("2")),
		"def456":   page("", "prev-def", sale("1")),
		"prev-abc": page("abc123", "", sale("3")),
	}
}

func newTestController(f *fakeFetcher, guard bool) *Controller {
	c := NewController(f, fakeRenderer{}, Options{Limit: 1, GuardForward: guard})
	n := 0
	c.newID = func() string {
		n++
		return fmt.Sprintf("snap-%d", n)
	}
	return c
}

func TestDetailView(t *testing.T) {
	assert.Equal(t, Secondary, Primary.Next())
	assert.Equal(t, Primary, Secondary.Next())
	assert.Equal(t, "primary", Primary.String())
	assert.Equal(t, "secondary", Secondary.String())
}

func TestStart(t *testing.T) {
	t.Run("loads the first page in the primary view", func(t *testing.T) {
		f := &fakeFetcher{pages: stablePages()}
		c := newTestController(f, true)

		r, err := c.Start(context.Background(), "doodles-official")
		require.NoError(t, err)

		assert.True(t, r.Committed())
		assert.Equal(t, "snap-1", r.State.ID)
		assert.Equal(t, Primary, r.State.View)
		assert.Equal(t, "primary #3", r.Embed.Title)
		assert.Equal(t, []opensea.SalesQuery{{Collection: "doodles-official", Limit: 1}}, f.queries)
	})

	t.Run("empty collection", func(t *testing.T) {
		f := &fakeFetcher{pages: map[string]opensea.EventPage{}}
		_, err := newTestController(f, true).Start(context.Background(), "empty")
		assert.ErrorIs(t, err, ErrNoSales)
	})

	t.Run("fetch error is returned", func(t *testing.T) {
		boom := errors.New("boom")
		f := &fakeFetcher{err: boom}
		_, err := newTestController(f, true).Start(context.Background(), "doodles-official")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("limit defaults to one", func(t *testing.T) {
		c := NewController(&fakeFetcher{}, fakeRenderer{}, Options{})
		assert.Equal(t, 1, c.opts.Limit)
	})
}

func TestToggle(t *testing.T) {
	f := &fakeFetcher{pages: stablePages()}
	c := newTestController(f, true)

	start, err := c.Start(context.Background(), "doodles-official")
	require.NoError(t, err)

	once := c.Toggle(start.State)
	assert.Equal(t, Secondary, once.State.View)
	assert.Equal(t, "secondary #3", once.Embed.Title)
	assert.NotEqual(t, start.State.ID, once.State.ID)

	twice := c.Toggle(once.State)
	assert.Equal(t, Primary, twice.State.View)
	assert.Equal(t, start.State.Event(), twice.State.Event())
	assert.Equal(t, start.State.Page, twice.State.Page)

	assert.Len(t, f.queries, 1, "toggling must not fetch")
	assert.Equal(t, Primary, start.State.View, "input snapshot is unchanged")
}

func TestBack(t *testing.T) {
	t.Run("no previous page is a notice", func(t *testing.T) {
		f := &fakeFetcher{pages: stablePages()}
		c := newTestController(f, true)

		start, err := c.Start(context.Background(), "doodles-official")
		require.NoError(t, err)

		r, err := c.Back(context.Background(), start.State)
		require.NoError(t, err)

		assert.False(t, r.Committed())
		assert.Equal(t, NoticeNoPrevious, r.Notice)
		assert.Equal(t, start.State, r.State)
		assert.Nil(t, r.Embed)
		assert.Len(t, f.queries, 1)
	})

	t.Run("fetch error keeps the state", func(t *testing.T) {
		f := &fakeFetcher{pages: stablePages()}
		c := newTestController(f, true)
		state := ViewState{ID: "x", Collection: "doodles-official", Limit: 1, View: Secondary, Page: page("", "prev", sale("1"))}

		boom := errors.New("boom")
		f.err = boom
		r, err := c.Back(context.Background(), state)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, state, r.State)
	})
}

func TestForward(t *testing.T) {
	t.Run("uses the next cursor and rebinds to the response tokens", func(t *testing.T) {
		f := &fakeFetcher{pages: stablePages()}
		c := newTestController(f, true)

		start, err := c.Start(context.Background(), "doodles-official")
		require.NoError(t, err)
		toggled := c.Toggle(start.State)

		r, err := c.Forward(context.Background(), toggled.State)
		require.NoError(t, err)

		require.Len(t, f.queries, 2)
		assert.Equal(t, "abc123", f.queries[1].Cursor)
		assert.Equal(t, "def456", r.State.Page.Next)
		assert.Equal(t, "prev-abc", r.State.Page.Previous)
		assert.Equal(t, Secondary, r.State.View, "view is kept across pages")
		assert.Equal(t, "secondary #2", r.Embed.Title)
	})

	t.Run("guard refuses a missing next cursor", func(t *testing.T) {
		f := &fakeFetcher{pages: stablePages()}
		c := newTestController(f, true)
		state := ViewState{ID: "x", Collection: "doodles-official", Limit: 1, View: Primary, Page: page("", "prev-def", sale("1"))}

		r, err := c.Forward(context.Background(), state)
		require.NoError(t, err)
		assert.Equal(t, NoticeNoNext, r.Notice)
		assert.Equal(t, state, r.State)
		assert.Empty(t, f.queries)
	})

	t.Run("without the guard a missing cursor restarts from the first page", func(t *testing.T) {
		f := &fakeFetcher{pages: stablePages()}
		c := newTestController(f, false)
		state := ViewState{ID: "x", Collection: "doodles-official", Limit: 1, View: Primary, Page: page("", "prev-def", sale("1"))}

		r, err := c.Forward(context.Background(), state)
		require.NoError(t, err)
		require.Len(t, f.queries, 1)
		assert.Equal(t, "", f.queries[0].Cursor)
		assert.Equal(t, "primary #3", r.Embed.Title)
	})

	t.Run("empty page is a notice", func(t *testing.T) {
		f := &fakeFetcher{pages: map[string]opensea.EventPage{"abc123": page("", "")}}
		c := newTestController(f, true)
		state := ViewState{ID: "x", Collection: "doodles-official", Limit: 1, View: Primary, Page: page("abc123", "", sale("3"))}

		r, err := c.Forward(context.Background(), state)
		require.NoError(t, err)
		assert.Equal(t, NoticeEmptyPage, r.Notice)
		assert.Equal(t, state, r.State)
	})
}

func TestForwardThenBack(t *testing.T) {
	f := &fakeFetcher{pages: stablePages()}
	c := newTestController(f, true)

	start, err := c.Start(context.Background(), "doodles-official")
	require.NoError(t, err)

	fwd, err := c.Forward(context.Background(), start.State)
	require.NoError(t, err)

	back, err := c.Back(context.Background(), fwd.State)
	require.NoError(t, err)

	assert.Equal(t, start.State.Page.Cursor, back.State.Page.Cursor)
	assert.Equal(t, start.State.Event(), back.State.Event())
	assert.Equal(t, []string{"", "abc123", "prev-abc"}, []string{f.queries[0].Cursor, f.queries[1].Cursor, f.queries[2].Cursor})
}

func TestMemoryStore(t *testing.T) {
	t.Run("put and get", func(t *testing.T) {
		s := NewMemoryStore(8, time.Hour)
		state := ViewState{ID: NewID(), Collection: "doodles-official", View: Primary}
		s.Put(state)

		got, ok := s.Get(state.ID)
		assert.True(t, ok)
		assert.Equal(t, state, got)

		_, ok = s.Get("unknown")
		assert.False(t, ok)
	})

	t.Run("oldest snapshot is evicted when full", func(t *testing.T) {
		s := NewMemoryStore(2, time.Hour)
		s.Put(ViewState{ID: "a"})
		s.Put(ViewState{ID: "b"})
		s.Put(ViewState{ID: "c"})

		_, ok := s.Get("a")
		assert.False(t, ok)
		assert.Equal(t, 2, s.Len())
	})

	t.Run("snapshots expire", func(t *testing.T) {
		s := NewMemoryStore(8, 10*time.Millisecond)
		s.Put(ViewState{ID: "a"})

		assert.Eventually(t, func() bool {
			_, ok := s.Get("a")
			return !ok
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("ids are unique", func(t *testing.T) {
		assert.NotEqual(t, NewID(), NewID())
	})
}
