package guideclient

import (
	"strings"

	"github.com/adamavenir/amelie/internal/types"
)

type guideRequest struct {
	City string `json:"city"`
}

type guideResponse struct {
	GuideContent string `json:"guide_content"`
	Timestamp    string `json:"timestamp"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []wireMessage `json:"messages"`
	CityContext string        `json:"city_context"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type saveFavoriteRequest struct {
	City      string `json:"city"`
	PlaceName string `json:"place_name"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// wireFavorite uses the server's field names.
type wireFavorite struct {
	City  string `json:"City"`
	Place string `json:"Favorite Place"`
}

type favoritesResponse struct {
	Favorites []wireFavorite `json:"favorites"`
	Count     int            `json:"count"`
}

func (r favoritesResponse) toFavorites() []types.Favorite {
	favorites := make([]types.Favorite, 0, len(r.Favorites))
	for _, f := range r.Favorites {
		favorites = append(favorites, types.Favorite{
			City:  strings.TrimSpace(f.City),
			Place: strings.TrimSpace(f.Place),
		})
	}
	return favorites
}

func toWireMessages(msgs []types.ChatMessage) []wireMessage {
	out := make([]wireMessage, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, wireMessage{Role: string(msg.Role), Content: msg.Content})
	}
	return out
}
