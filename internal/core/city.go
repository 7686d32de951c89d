package core

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayCity title-cases a city for headers when the user typed it all
// lower or all upper case. Mixed-case input ("São Paulo", "McAllen") is
// kept as typed.
func DisplayCity(city string) string {
	city = strings.Join(strings.Fields(city), " ")
	if city == "" {
		return ""
	}
	if city != strings.ToLower(city) && city != strings.ToUpper(city) {
		return city
	}
	return cases.Title(language.Und).String(city)
}

// GuideHeader formats the heading shown above a guide.
func GuideHeader(city, timestamp string) string {
	header := "Guide for " + DisplayCity(city)
	if ts := strings.TrimSpace(timestamp); ts != "" {
		header += " (" + ts + ")"
	}
	return header
}
