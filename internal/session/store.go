// Package session holds the state of one guide session and the rules for
// changing it.
//
// Store is a plain state object: every transition is a method and every
// method leaves the store in a valid state. Responses from the guide
// service are applied through tickets handed out when a request starts; a
// ticket that is no longer current is discarded on arrival, so only the
// most recent guide request and the current chat turn can ever mutate
// state.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/adamavenir/amelie/internal/extract"
	"github.com/adamavenir/amelie/internal/types"
)

// GuideTicket identifies one guide request.
type GuideTicket struct {
	City string
	gen  uint64
}

// ChatTicket identifies one chat turn. Messages is the transcript to send,
// ending with the user's message, and City is the guide city at the time
// the turn started.
type ChatTicket struct {
	City     string
	Messages []types.ChatMessage
	gen      uint64
}

// Snapshot is a copy of the store's observable state.
type Snapshot struct {
	RequestedCity   string              `json:"requested_city,omitempty"`
	Guide           *types.Guide        `json:"guide,omitempty"`
	Transcript      []types.ChatMessage `json:"transcript"`
	Flags           types.Flags         `json:"flags"`
	Favorites       []types.Favorite    `json:"favorites"`
	FavoritesLoaded bool                `json:"favorites_loaded"`
}

// NoStructuredData reports whether a guide is loaded but yielded no places.
func (s Snapshot) NoStructuredData() bool {
	return s.Guide != nil && len(s.Guide.Places) == 0
}

// Store holds the guide, chat transcript, favorites view and loading flags.
type Store struct {
	mu      sync.Mutex
	extract func(string) []types.Place

	requestedCity string
	guideGen      uint64
	guide         *types.Guide

	transcript []types.ChatMessage
	chatGen    uint64

	flags types.Flags

	favorites       []types.Favorite
	favoritesLoaded bool
	favoritesIssued uint64
	favoritesShown  uint64

	subscribers map[int]chan Snapshot
	nextSubID   int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		extract:     extract.Extract,
		subscribers: make(map[int]chan Snapshot),
	}
}

// StartGuide marks a guide request for city as in flight.
//
// A request for the city already being fetched is rejected with
// ErrConcurrentOperation. A request for a different city supersedes the
// one in flight. If the loaded guide is for another city the transcript is
// cleared right away.
func (s *Store) StartGuide(city string) (GuideTicket, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return GuideTicket{}, ErrEmptyInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.flags.GuideLoading && sameCity(s.requestedCity, city) {
		return GuideTicket{}, ErrConcurrentOperation
	}

	s.guideGen++
	s.requestedCity = city
	s.flags.GuideLoading = true
	if s.guide != nil && !sameCity(s.guide.City, city) {
		s.resetTranscriptLocked()
	}
	s.notifyLocked()
	return GuideTicket{City: city, gen: s.guideGen}, nil
}

// CompleteGuide applies a guide response. It returns false, leaving the
// store untouched, when ticket has been superseded.
func (s *Store) CompleteGuide(ticket GuideTicket, raw, timestamp string, generatedAt time.Time) bool {
	places := s.extract(raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.guideCurrentLocked(ticket) {
		return false
	}
	s.guide = &types.Guide{
		City:        ticket.City,
		Places:      places,
		GeneratedAt: generatedAt,
		Timestamp:   timestamp,
		RawText:     raw,
	}
	s.resetTranscriptLocked()
	s.flags.GuideLoading = false
	s.notifyLocked()
	return true
}

// FailGuide ends a failed guide request. The previous guide stays visible.
func (s *Store) FailGuide(ticket GuideTicket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.guideCurrentLocked(ticket) {
		return false
	}
	s.flags.GuideLoading = false
	s.notifyLocked()
	return true
}

// AppendChat appends msg to the transcript.
func (s *Store) AppendChat(msg types.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transcript = append(s.transcript, msg)
	s.notifyLocked()
}

// StartChat appends the user's message and marks a chat turn in flight.
func (s *Store) StartChat(content string) (ChatTicket, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return ChatTicket{}, ErrEmptyInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.flags.ChatLoading {
		return ChatTicket{}, ErrConcurrentOperation
	}
	if s.guide == nil {
		return ChatTicket{}, ErrNoGuide
	}

	s.transcript = append(s.transcript, types.ChatMessage{Role: types.RoleUser, Content: content})
	s.chatGen++
	s.flags.ChatLoading = true
	ticket := ChatTicket{
		City:     s.guide.City,
		Messages: cloneMessages(s.transcript),
		gen:      s.chatGen,
	}
	s.notifyLocked()
	return ticket, nil
}

// CompleteChat appends the assistant's reply for ticket. Replies for a turn
// that was invalidated by a guide change are dropped.
func (s *Store) CompleteChat(ticket ChatTicket, reply string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.chatCurrentLocked(ticket) {
		return false
	}
	s.transcript = append(s.transcript, types.ChatMessage{Role: types.RoleAssistant, Content: reply})
	s.flags.ChatLoading = false
	s.notifyLocked()
	return true
}

// FailChat ends a failed chat turn. The user's message stays in the
// transcript unanswered; transcript entries are only ever appended.
func (s *Store) FailChat(ticket ChatTicket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.chatCurrentLocked(ticket) {
		return false
	}
	s.flags.ChatLoading = false
	s.notifyLocked()
	return true
}

// BeginFavoritesRefresh returns the sequence number for a new favorites read.
func (s *Store) BeginFavoritesRefresh() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.favoritesIssued++
	return s.favoritesIssued
}

// ApplyFavorites replaces the favorites view with a server read. A read
// that started before the one currently shown is ignored.
func (s *Store) ApplyFavorites(seq uint64, favorites []types.Favorite) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.favoritesShown {
		return false
	}
	s.favoritesShown = seq
	s.favorites = cloneFavorites(favorites)
	s.favoritesLoaded = true
	s.notifyLocked()
	return true
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Guide returns a copy of the loaded guide, or nil.
func (s *Store) Guide() *types.Guide {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneGuide(s.guide)
}

// Transcript returns a copy of the chat transcript.
func (s *Store) Transcript() []types.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneMessages(s.transcript)
}

// Flags returns the loading flags.
func (s *Store) Flags() types.Flags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags
}

// Favorites returns the last applied favorites list.
func (s *Store) Favorites() []types.Favorite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneFavorites(s.favorites)
}

// Subscribe returns a channel that receives the latest snapshot after every
// change. Slow readers only ever see the newest snapshot. The returned
// function unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan Snapshot, 1)
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}
}

func (s *Store) guideCurrentLocked(ticket GuideTicket) bool {
	return ticket.gen != 0 && ticket.gen == s.guideGen && s.flags.GuideLoading
}

func (s *Store) chatCurrentLocked(ticket ChatTicket) bool {
	return ticket.gen != 0 && ticket.gen == s.chatGen && s.flags.ChatLoading
}

// resetTranscriptLocked clears the transcript and invalidates any chat turn
// in flight.
func (s *Store) resetTranscriptLocked() {
	s.transcript = nil
	s.chatGen++
	s.flags.ChatLoading = false
}

func (s *Store) notifyLocked() {
	if len(s.subscribers) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		RequestedCity:   s.requestedCity,
		Guide:           cloneGuide(s.guide),
		Transcript:      cloneMessages(s.transcript),
		Flags:           s.flags,
		Favorites:       cloneFavorites(s.favorites),
		FavoritesLoaded: s.favoritesLoaded,
	}
}

func sameCity(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func cloneGuide(g *types.Guide) *types.Guide {
	if g == nil {
		return nil
	}
	copied := *g
	copied.Places = append([]types.Place{}, g.Places...)
	return &copied
}

func cloneMessages(msgs []types.ChatMessage) []types.ChatMessage {
	return append([]types.ChatMessage{}, msgs...)
}

func cloneFavorites(favs []types.Favorite) []types.Favorite {
	return append([]types.Favorite{}, favs...)
}
