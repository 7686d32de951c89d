// Package favorites keeps the local favorites view in line with the
// service. The view only ever shows what the service returned from a list
// call; mutations are never applied locally.
package favorites

import (
	"context"
	"io"
	"log"
	"strings"

	"github.com/adamavenir/amelie/internal/session"
	"github.com/adamavenir/amelie/internal/types"
)

// Backend is the subset of the guide service used for favorites.
type Backend interface {
	SaveFavorite(ctx context.Context, city, place string) (string, error)
	ClearFavorites(ctx context.Context) error
	ListFavorites(ctx context.Context) ([]types.Favorite, error)
}

// View receives confirmed favorites lists. *session.Store implements it.
type View interface {
	BeginFavoritesRefresh() uint64
	ApplyFavorites(seq uint64, favorites []types.Favorite) bool
}

// Sync runs favorites mutations and the refresh that follows each one.
type Sync struct {
	backend Backend
	view    View
	logger  *log.Logger
}

// New returns a Sync. A nil logger discards log output.
func New(backend Backend, view View, logger *log.Logger) *Sync {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Sync{backend: backend, view: view, logger: logger}
}

// Save stores a favorite, then refreshes the view whether or not the save
// succeeded. The save error is returned; refresh errors are only logged.
func (s *Sync) Save(ctx context.Context, city, place string) (string, error) {
	city = strings.TrimSpace(city)
	place = strings.TrimSpace(place)
	if city == "" || place == "" {
		return "", session.ErrEmptyInput
	}

	message, err := s.backend.SaveFavorite(ctx, city, place)
	if err != nil {
		s.logger.Printf("save favorite %q in %s failed: %v", place, city, err)
	}
	s.refreshQuietly(ctx)
	return message, err
}

// Clear deletes every favorite, then refreshes the view.
func (s *Sync) Clear(ctx context.Context) error {
	err := s.backend.ClearFavorites(ctx)
	if err != nil {
		s.logger.Printf("clear favorites failed: %v", err)
	}
	s.refreshQuietly(ctx)
	return err
}

// Refresh reads the favorites list and applies it to the view. On failure
// the view keeps the previous list.
func (s *Sync) Refresh(ctx context.Context) error {
	seq := s.view.BeginFavoritesRefresh()
	favorites, err := s.backend.ListFavorites(ctx)
	if err != nil {
		return err
	}
	if !s.view.ApplyFavorites(seq, favorites) {
		s.logger.Printf("favorites refresh #%d superseded by a newer read", seq)
	}
	return nil
}

func (s *Sync) refreshQuietly(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		s.logger.Printf("refresh favorites failed: %v", err)
	}
}
