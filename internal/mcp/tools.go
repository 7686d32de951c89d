package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/adamavenir/amelie/internal/core"
	"github.com/adamavenir/amelie/internal/favorites"
	"github.com/adamavenir/amelie/internal/session"
	"github.com/adamavenir/amelie/internal/types"
	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type ToolContext struct {
	Controller *session.Controller
}

type generateArgs struct {
	City string `json:"city" jsonschema:"City to generate a travel guide for, e.g. Lisbon"`
}

type chatArgs struct {
	Message string `json:"message" jsonschema:"Question about the city of the current guide"`
}

type listArgs struct {
	Match string `json:"match,omitempty" jsonschema:"Optional glob on place or city, e.g. *museum*"`
}

type saveArgs struct {
	Place string `json:"place" jsonschema:"Place name to save"`
	City  string `json:"city,omitempty" jsonschema:"City of the place (default: city of the current guide)"`
}

type emptyArgs struct{}

// RegisterTools registers the guide session tools.
func RegisterTools(server *mcp.Server, tc *ToolContext) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "guide_generate",
		Description: "Generate a travel guide for a city. Replaces the current guide and clears the chat.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args generateArgs) (*mcp.CallToolResult, any, error) {
		return handleGenerate(ctx, tc, args.City), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "guide_current",
		Description: "Show the current guide and chat transcript.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ emptyArgs) (*mcp.CallToolResult, any, error) {
		return handleCurrent(tc), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "guide_chat",
		Description: "Ask a follow-up question about the current guide's city. Requires guide_generate first.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args chatArgs) (*mcp.CallToolResult, any, error) {
		return handleChat(ctx, tc, args.Message), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "favorites_list",
		Description: "List saved favorite places.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args listArgs) (*mcp.CallToolResult, any, error) {
		return handleListFavorites(ctx, tc, args.Match), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "favorites_save",
		Description: "Save a place to favorites.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args saveArgs) (*mcp.CallToolResult, any, error) {
		return handleSaveFavorite(ctx, tc, args.City, args.Place), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "favorites_clear",
		Description: "Delete all saved favorites.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ emptyArgs) (*mcp.CallToolResult, any, error) {
		return handleClearFavorites(ctx, tc), nil, nil
	})
}

func handleGenerate(ctx context.Context, tc *ToolContext, city string) *mcp.CallToolResult {
	result, err := tc.Controller.GenerateGuide(ctx, city)
	if err != nil {
		return toolError(describeError(err))
	}
	if !result.Applied || result.Guide == nil {
		return toolText(fmt.Sprintf("The guide for %s was superseded by a newer request.", core.DisplayCity(city)))
	}
	return toolText(formatGuide(*result.Guide))
}

func handleCurrent(tc *ToolContext) *mcp.CallToolResult {
	snap := tc.Controller.Store.Snapshot()
	if snap.Guide == nil {
		if snap.Flags.GuideLoading {
			return toolText(fmt.Sprintf("Loading a guide for %s.", core.DisplayCity(snap.RequestedCity)))
		}
		return toolText("No guide loaded. Use guide_generate first.")
	}

	var b strings.Builder
	b.WriteString(formatGuide(*snap.Guide))
	if len(snap.Transcript) > 0 {
		b.WriteString("\n\nConversation:\n")
		b.WriteString(formatTranscript(snap.Transcript))
	}
	return toolText(b.String())
}

func handleChat(ctx context.Context, tc *ToolContext, message string) *mcp.CallToolResult {
	result, err := tc.Controller.SendChat(ctx, message)
	if err != nil {
		return toolError(describeError(err))
	}
	if !result.Applied {
		return toolText("The guide changed before the reply arrived; the reply was discarded.")
	}
	return toolText(result.Reply)
}

func handleListFavorites(ctx context.Context, tc *ToolContext, match string) *mcp.CallToolResult {
	matcher, err := favorites.CompileMatch(match)
	if err != nil {
		return toolError(err.Error())
	}
	if err := tc.Controller.RefreshFavorites(ctx); err != nil {
		return toolError(describeError(err))
	}
	return toolText(formatFavorites(matcher.Filter(tc.Controller.Store.Favorites())))
}

func handleSaveFavorite(ctx context.Context, tc *ToolContext, city, place string) *mcp.CallToolResult {
	message, err := tc.Controller.SaveFavorite(ctx, city, place)
	if err != nil {
		return toolError(describeError(err))
	}
	if message == "" {
		message = "Saved " + strings.TrimSpace(place)
	}
	return toolText(message + "\n\n" + formatFavorites(tc.Controller.Store.Favorites()))
}

func handleClearFavorites(ctx context.Context, tc *ToolContext) *mcp.CallToolResult {
	if err := tc.Controller.ClearFavorites(ctx); err != nil {
		return toolError(describeError(err))
	}
	return toolText("Cleared favorites")
}

func describeError(err error) string {
	switch {
	case errors.Is(err, session.ErrNoGuide):
		return "Error: No guide loaded. Use guide_generate first, or pass a city."
	case errors.Is(err, session.ErrEmptyInput):
		return "Error: Input cannot be empty"
	case errors.Is(err, session.ErrConcurrentOperation):
		return "Error: A request of this kind is already running. Try again when it finishes."
	}
	return "Error: " + err.Error()
}

func formatGuide(guide types.Guide) string {
	var b strings.Builder
	b.WriteString(core.GuideHeader(guide.City, guide.Timestamp))
	b.WriteString("\n\n")
	if !guide.HasPlaces() {
		b.WriteString("No structured places found; full response:\n\n")
		b.WriteString(strings.TrimSpace(guide.RawText))
		return b.String()
	}
	for i, place := range guide.Places {
		fmt.Fprintf(&b, "%d. %s", i+1, place.Name)
		if place.Location != "" {
			fmt.Fprintf(&b, " · %s", place.Location)
		}
		b.WriteString("\n")
		if place.Description != "" {
			fmt.Fprintf(&b, "   %s\n", place.Description)
		}
		if place.Tip != "" {
			fmt.Fprintf(&b, "   Pro tip: %s\n", place.Tip)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatTranscript(transcript []types.ChatMessage) string {
	lines := make([]string, 0, len(transcript))
	for _, msg := range transcript {
		lines = append(lines, fmt.Sprintf("[%s] %s", msg.Role, msg.Content))
	}
	return strings.Join(lines, "\n")
}

func formatFavorites(list []types.Favorite) string {
	if len(list) == 0 {
		return "No favorites saved"
	}
	lines := make([]string, 0, len(list))
	for _, fav := range list {
		lines = append(lines, fmt.Sprintf("★ %s (%s)", fav.Place, fav.City))
	}
	return strings.Join(lines, "\n")
}

func toolResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: isError,
	}
}

func toolText(text string) *mcp.CallToolResult {
	return toolResult(text, false)
}

func toolError(text string) *mcp.CallToolResult {
	return toolResult(text, true)
}
