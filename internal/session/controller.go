package session

import (
	"context"
	"io"
	"log"
	"strings"

	"github.com/adamavenir/amelie/internal/guideclient"
	"github.com/adamavenir/amelie/internal/types"
)

// Backend is the guide service as seen by a session.
type Backend interface {
	RequestGuide(ctx context.Context, city string) (guideclient.GuideResponse, error)
	SendChatTurn(ctx context.Context, transcript []types.ChatMessage, cityContext string) (string, error)
}

// Favorites runs favorites mutations followed by a refresh.
type Favorites interface {
	Save(ctx context.Context, city, place string) (string, error)
	Clear(ctx context.Context) error
	Refresh(ctx context.Context) error
}

// Recorder persists applied guides. Failures are logged and ignored.
type Recorder interface {
	RecordGuide(ctx context.Context, guide types.Guide) (string, error)
}

// Controller drives a Store against the guide service. Its methods block
// for one round trip and are safe to call from several goroutines; the
// Store decides which results are applied.
type Controller struct {
	Store     *Store
	Backend   Backend
	Favorites Favorites
	History   Recorder
	Logger    *log.Logger
}

// NewController wires a controller around store.
func NewController(store *Store, backend Backend, favorites Favorites, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Controller{
		Store:     store,
		Backend:   backend,
		Favorites: favorites,
		Logger:    logger,
	}
}

// GuideResult describes the outcome of GenerateGuide. Stale is set when the
// request had already been superseded by the time it finished.
type GuideResult struct {
	Applied bool
	Stale   bool
	Guide   *types.Guide
}

// GenerateGuide requests a guide for city. A response that was superseded by
// a later request is dropped and reported with Applied=false.
func (c *Controller) GenerateGuide(ctx context.Context, city string) (GuideResult, error) {
	ticket, err := c.Store.StartGuide(city)
	if err != nil {
		return GuideResult{}, err
	}
	return c.FinishGuide(ctx, ticket)
}

// FinishGuide performs the round trip for a ticket taken from
// Store.StartGuide. Callers that must order requests take the ticket
// synchronously and finish it elsewhere.
func (c *Controller) FinishGuide(ctx context.Context, ticket GuideTicket) (GuideResult, error) {
	resp, err := c.Backend.RequestGuide(ctx, ticket.City)
	if err != nil {
		current := c.Store.FailGuide(ticket)
		c.logf("guide for %s failed: %v", ticket.City, err)
		return GuideResult{Stale: !current}, err
	}

	if !c.Store.CompleteGuide(ticket, resp.RawText, resp.Timestamp, resp.GeneratedAt) {
		c.logf("dropping superseded guide for %s", ticket.City)
		return GuideResult{Stale: true}, nil
	}

	guide := c.Store.Guide()
	if guide != nil && len(guide.Places) == 0 {
		c.logf("guide for %s has no structured places, keeping raw text", ticket.City)
	}
	c.record(ctx, guide)
	return GuideResult{Applied: true, Guide: guide}, nil
}

// ChatResult describes the outcome of SendChat.
type ChatResult struct {
	Applied bool
	Reply   string
}

// SendChat sends one chat turn in the context of the loaded guide's city.
func (c *Controller) SendChat(ctx context.Context, content string) (ChatResult, error) {
	ticket, err := c.Store.StartChat(content)
	if err != nil {
		return ChatResult{}, err
	}
	return c.FinishChat(ctx, ticket)
}

// FinishChat performs the round trip for a ticket taken from Store.StartChat.
func (c *Controller) FinishChat(ctx context.Context, ticket ChatTicket) (ChatResult, error) {
	reply, err := c.Backend.SendChatTurn(ctx, ticket.Messages, ticket.City)
	if err != nil {
		c.Store.FailChat(ticket)
		c.logf("chat turn for %s failed: %v", ticket.City, err)
		return ChatResult{}, err
	}

	if !c.Store.CompleteChat(ticket, reply) {
		c.logf("dropping chat reply for %s: guide changed", ticket.City)
		return ChatResult{Reply: reply}, nil
	}
	return ChatResult{Applied: true, Reply: reply}, nil
}

// SaveFavorite saves place. An empty city means the loaded guide's city.
func (c *Controller) SaveFavorite(ctx context.Context, city, place string) (string, error) {
	if strings.TrimSpace(place) == "" {
		return "", ErrEmptyInput
	}
	if strings.TrimSpace(city) == "" {
		guide := c.Store.Guide()
		if guide == nil {
			return "", ErrNoGuide
		}
		city = guide.City
	}
	return c.Favorites.Save(ctx, city, place)
}

// ClearFavorites deletes all favorites.
func (c *Controller) ClearFavorites(ctx context.Context) error {
	return c.Favorites.Clear(ctx)
}

// RefreshFavorites reloads the favorites view. Failures are logged and the
// previous list stays in place.
func (c *Controller) RefreshFavorites(ctx context.Context) error {
	err := c.Favorites.Refresh(ctx)
	if err != nil {
		c.logf("refresh favorites failed: %v", err)
	}
	return err
}

func (c *Controller) record(ctx context.Context, guide *types.Guide) {
	if c.History == nil || guide == nil {
		return
	}
	if _, err := c.History.RecordGuide(ctx, *guide); err != nil {
		c.logf("record guide history for %s: %v", guide.City, err)
	}
}

func (c *Controller) logf(format string, args ...any) {
	if c.Logger == nil {
		return
	}
	c.Logger.Printf(format, args...)
}
