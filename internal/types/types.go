package types

import "time"

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Place is one point of interest extracted from a guide.
type Place struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Tip         string `json:"tip"`
}

// Guide is the current guide for a session. Places is empty when the
// response had no recognizable numbered items; RawText is always kept.
type Guide struct {
	City        string    `json:"city"`
	Places      []Place   `json:"places"`
	GeneratedAt time.Time `json:"generated_at"`
	Timestamp   string    `json:"timestamp,omitempty"` // as sent by the server
	RawText     string    `json:"raw_text"`
}

// HasPlaces reports whether structured places were extracted.
func (g *Guide) HasPlaces() bool {
	return g != nil && len(g.Places) > 0
}

// ChatMessage is one entry of a chat transcript.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Favorite is a (city, place) pair persisted by the guide service.
type Favorite struct {
	City  string `json:"city"`
	Place string `json:"place"`
}

// Flags are the transient loading flags of a session.
type Flags struct {
	GuideLoading bool `json:"guide_loading"`
	ChatLoading  bool `json:"chat_loading"`
}

// GuideRecord is a guide persisted in local history.
type GuideRecord struct {
	ID          string    `json:"id"`
	City        string    `json:"city"`
	RawText     string    `json:"raw_text,omitempty"`
	Timestamp   string    `json:"timestamp,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	RecordedAt  time.Time `json:"recorded_at"`
	PlaceCount  int       `json:"place_count"`
	Places      []Place   `json:"places,omitempty"`
}

// ConfigEntry is a key/value config pair.
type ConfigEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
