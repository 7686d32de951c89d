package favorites

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"

	"github.com/adamavenir/amelie/internal/guideclient"
	"github.com/adamavenir/amelie/internal/session"
	"github.com/adamavenir/amelie/internal/types"
)

// fakeService keeps favorites server-side. listOverride, when set, is what
// the service reports regardless of what was saved.
type fakeService struct {
	mu           sync.Mutex
	stored       []types.Favorite
	listOverride []types.Favorite
	saveErr      error
	clearErr     error
	listErr      error
	saves        int
	lists        int
}

func (f *fakeService) SaveFavorite(ctx context.Context, city, place string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.stored = append(f.stored, types.Favorite{City: city, Place: place})
	return "Saved " + place, nil
}

func (f *fakeService) ClearFavorites(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clearErr != nil {
		return f.clearErr
	}
	f.stored = nil
	return nil
}

func (f *fakeService) ListFavorites(ctx context.Context) ([]types.Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.listOverride != nil {
		return append([]types.Favorite{}, f.listOverride...), nil
	}
	return append([]types.Favorite{}, f.stored...), nil
}

func TestSaveShowsServerListNotLocalGuess(t *testing.T) {
	service := &fakeService{listOverride: []types.Favorite{
		{City: "Rome", Place: "Pantheon"},
	}}
	store := session.NewStore()
	syncer := New(service, store, nil)

	msg, err := syncer.Save(context.Background(), "Paris", "Louvre")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if msg != "Saved Louvre" {
		t.Fatalf("message: got %q", msg)
	}

	got := store.Favorites()
	if len(got) != 1 || got[0] != (types.Favorite{City: "Rome", Place: "Pantheon"}) {
		t.Fatalf("view should mirror the server list, got %+v", got)
	}
}

func TestSaveThenListRoundTrip(t *testing.T) {
	service := &fakeService{}
	store := session.NewStore()
	syncer := New(service, store, nil)

	for _, place := range []string{"Louvre", "Musée d'Orsay"} {
		if _, err := syncer.Save(context.Background(), " Paris ", place); err != nil {
			t.Fatalf("save %s: %v", place, err)
		}
	}
	got := store.Favorites()
	want := []types.Favorite{{City: "Paris", Place: "Louvre"}, {City: "Paris", Place: "Musée d'Orsay"}}
	if len(got) != len(want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("favorite %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestClearTwiceLeavesEmptyList(t *testing.T) {
	service := &fakeService{stored: []types.Favorite{{City: "Paris", Place: "Louvre"}}}
	store := session.NewStore()
	syncer := New(service, store, nil)

	for i := 0; i < 2; i++ {
		if err := syncer.Clear(context.Background()); err != nil {
			t.Fatalf("clear #%d: %v", i+1, err)
		}
		snap := store.Snapshot()
		if len(snap.Favorites) != 0 || !snap.FavoritesLoaded {
			t.Fatalf("clear #%d: expected loaded empty list, got %+v", i+1, snap)
		}
	}
}

func TestFailedSaveStillRefreshes(t *testing.T) {
	service := &fakeService{
		stored:  []types.Favorite{{City: "Rome", Place: "Pantheon"}},
		saveErr: guideclient.ErrNetworkFailure,
	}
	var logs bytes.Buffer
	store := session.NewStore()
	syncer := New(service, store, log.New(&logs, "", 0))

	_, err := syncer.Save(context.Background(), "Paris", "Louvre")
	if !errors.Is(err, guideclient.ErrNetworkFailure) {
		t.Fatalf("expected network failure, got %v", err)
	}
	if service.lists != 1 {
		t.Fatalf("expected a refresh after failed save, got %d lists", service.lists)
	}
	if got := store.Favorites(); len(got) != 1 || got[0].Place != "Pantheon" {
		t.Fatalf("view should show the server list, got %+v", got)
	}
	if !strings.Contains(logs.String(), "save favorite") {
		t.Fatalf("expected failure logged, got %q", logs.String())
	}
}

func TestFailedRefreshKeepsPreviousList(t *testing.T) {
	service := &fakeService{stored: []types.Favorite{{City: "Paris", Place: "Louvre"}}}
	store := session.NewStore()
	syncer := New(service, store, nil)

	if err := syncer.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	service.listErr = guideclient.ErrNetworkFailure
	if err := syncer.Refresh(context.Background()); !errors.Is(err, guideclient.ErrNetworkFailure) {
		t.Fatalf("expected network failure, got %v", err)
	}
	if got := store.Favorites(); len(got) != 1 || got[0].Place != "Louvre" {
		t.Fatalf("previous list should remain, got %+v", got)
	}
}

func TestSaveRejectsBlankInput(t *testing.T) {
	service := &fakeService{}
	syncer := New(service, session.NewStore(), nil)

	tests := []struct {
		city  string
		place string
	}{
		{city: "", place: "Louvre"},
		{city: "Paris", place: "   "},
	}
	for _, tt := range tests {
		if _, err := syncer.Save(context.Background(), tt.city, tt.place); !errors.Is(err, session.ErrEmptyInput) {
			t.Fatalf("save(%q, %q): expected ErrEmptyInput, got %v", tt.city, tt.place, err)
		}
	}
	if service.saves != 0 || service.lists != 0 {
		t.Fatalf("no requests expected, got %d saves %d lists", service.saves, service.lists)
	}
}

func TestOlderRefreshDoesNotOverwriteNewer(t *testing.T) {
	store := session.NewStore()

	// a slow first read finishing after a later one
	first := store.BeginFavoritesRefresh()
	second := store.BeginFavoritesRefresh()
	store.ApplyFavorites(second, []types.Favorite{})
	if store.ApplyFavorites(first, []types.Favorite{{City: "Paris", Place: "Louvre"}}) {
		t.Fatal("older read must not be applied")
	}
	if got := store.Favorites(); len(got) != 0 {
		t.Fatalf("expected empty list, got %+v", got)
	}
}
