package command

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/adamavenir/amelie/internal/core"
	"github.com/adamavenir/amelie/internal/types"
	"github.com/dustin/go-humanize"
)

var (
	noColor = os.Getenv("NO_COLOR") != ""

	dim   = ansiCode("\x1b[2m")
	bold  = ansiCode("\x1b[1m")
	cyan  = ansiCode("\x1b[36m")
	reset = ansiCode("\x1b[0m")
)

func ansiCode(code string) string {
	if noColor {
		return ""
	}
	return code
}

// styler returns the ANSI codes to use for out; plain writers get none.
func styler(out io.Writer) (dimCode, boldCode, accent, resetCode string) {
	if !core.ColorEnabled(out) {
		return "", "", "", ""
	}
	return dim, bold, cyan, reset
}

// FormatPlaces renders extracted places as a numbered list.
func FormatPlaces(out io.Writer, places []types.Place) string {
	dimCode, boldCode, accent, resetCode := styler(out)
	var b strings.Builder
	for i, place := range places {
		fmt.Fprintf(&b, "%s%d.%s %s%s%s", dimCode, i+1, resetCode, boldCode, place.Name, resetCode)
		if place.Location != "" {
			fmt.Fprintf(&b, " %s· %s%s", dimCode, place.Location, resetCode)
		}
		b.WriteString("\n")
		if place.Description != "" {
			fmt.Fprintf(&b, "   %s\n", place.Description)
		}
		if place.Tip != "" {
			fmt.Fprintf(&b, "   %sPro tip:%s %s\n", accent, resetCode, place.Tip)
		}
	}
	return b.String()
}

// FormatGuide renders a guide with its header. When no places were
// extracted, or raw is set, the response text is rendered as markdown.
func FormatGuide(out io.Writer, guide types.Guide, raw bool) string {
	_, boldCode, _, resetCode := styler(out)
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s%s\n\n", boldCode, core.GuideHeader(guide.City, guide.Timestamp), resetCode)
	if raw || len(guide.Places) == 0 {
		if !raw {
			b.WriteString("No structured places found; showing the full response.\n")
		}
		text := core.RenderMarkdown(guide.RawText, core.TerminalWidth(out), core.ColorEnabled(out))
		b.WriteString(strings.TrimRight(text, "\n"))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(FormatPlaces(out, guide.Places))
	return b.String()
}

// FormatFavorites renders favorites in server order.
func FormatFavorites(out io.Writer, favorites []types.Favorite) string {
	if len(favorites) == 0 {
		return "No favorites saved\n"
	}
	dimCode, _, _, resetCode := styler(out)
	var b strings.Builder
	for _, fav := range favorites {
		fmt.Fprintf(&b, "★ %s %s(%s)%s\n", fav.Place, dimCode, fav.City, resetCode)
	}
	return b.String()
}

// FormatHistoryRow renders one recorded guide as a single line.
func FormatHistoryRow(out io.Writer, record types.GuideRecord, prefixLen int, now time.Time) string {
	dimCode, boldCode, _, resetCode := styler(out)
	places := fmt.Sprintf("%d places", record.PlaceCount)
	if record.PlaceCount == 1 {
		places = "1 place"
	} else if record.PlaceCount == 0 {
		places = "raw text"
	}
	return fmt.Sprintf("%s#%s%s %s%s%s %s· %s · %s%s\n",
		dimCode, core.GetGUIDPrefix(record.ID, prefixLen), resetCode,
		boldCode, core.DisplayCity(record.City), resetCode,
		dimCode, places, humanize.RelTime(record.RecordedAt, now, "ago", "from now"), resetCode)
}
