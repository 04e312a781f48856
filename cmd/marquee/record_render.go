package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"marquee/internal/metadata"
)

const creditPreview = 6

func recordHeading(rec metadata.Record) string {
	title := rec.Title
	if title == "" {
		title = rec.ID
	}
	if title == "" {
		title = "(untitled)"
	}
	if rec.Year > 0 {
		title = fmt.Sprintf("%s (%d)", title, rec.Year)
	}
	return title
}

func renderRecord(rec metadata.Record, colorize bool) []string {
	lines := renderSectionHeader(recordHeading(rec), colorize)

	sourcesText := strings.Join(rec.Sources, ", ")
	if sourcesText == "" {
		sourcesText = "none"
	}
	lines = append(lines, renderStatusLine("Stage", stageStatus(rec.Stage), fmt.Sprintf("%s via %s", rec.Stage, sourcesText), colorize))

	add := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			lines = append(lines, renderField(label, value))
		}
	}
	add("IMDb", rec.ID)
	if len(rec.SecondaryIDs) > 0 {
		ids := make([]string, 0, len(rec.SecondaryIDs))
		for _, key := range slices.Sorted(maps.Keys(rec.SecondaryIDs)) {
			ids = append(ids, key+"="+rec.SecondaryIDs[key])
		}
		add("Other IDs", strings.Join(ids, " "))
	}
	add("Kind", string(rec.Kind))
	add("Runtime", rec.Runtime.String())
	add("Status", rec.Status)
	if rec.EpisodeCount > 0 {
		add("Episodes", strconv.Itoa(rec.EpisodeCount))
	}
	add("Genres", strings.Join(rec.Genres, ", "))
	add("Interests", strings.Join(rec.Interests, ", "))
	add("Audience", strings.Join(rec.Demographics, ", "))
	add("Directors", personNames(rec.Directors, creditPreview))
	add("Writers", personNames(rec.Writers, creditPreview))
	add("Cast", personNames(rec.Cast, creditPreview))
	add("Ratings", formatRatings(rec.Ratings))
	add("Poster", rec.Images.Poster)
	add("Tagline", rec.Tagline)
	if rec.Plot != "" {
		add("Plot", fmt.Sprintf("%s [%s]", rec.Plot, rec.PlotSource))
	}
	return lines
}

func printRecord(out io.Writer, rec metadata.Record, colorize bool) {
	for _, line := range renderRecord(rec, colorize) {
		fmt.Fprintln(out, line)
	}
}

func personNames(people []metadata.Person, limit int) string {
	if len(people) == 0 {
		return ""
	}
	names := make([]string, 0, min(limit, len(people)))
	for _, p := range people[:min(limit, len(people))] {
		if p.Role != "" {
			names = append(names, fmt.Sprintf("%s (%s)", p.Name, p.Role))
		} else {
			names = append(names, p.Name)
		}
	}
	text := strings.Join(names, ", ")
	if extra := len(people) - limit; extra > 0 {
		text += fmt.Sprintf(" +%d more", extra)
	}
	return text
}

func formatRatings(ratings map[string]metadata.Rating) string {
	if len(ratings) == 0 {
		return ""
	}
	parts := make([]string, 0, len(ratings))
	for _, provider := range slices.Sorted(maps.Keys(ratings)) {
		r := ratings[provider]
		part := fmt.Sprintf("%s %s", provider, strconv.FormatFloat(r.Score, 'f', -1, 64))
		if r.Votes > 0 {
			part += fmt.Sprintf(" (%d votes)", r.Votes)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}
