package composer

import (
	"errors"
	"fmt"

	"github.com/cbegin/composer-go/internal/library"
	"github.com/cbegin/composer-go/internal/nbs"
)

var ErrNoTracks = errors.New("composer: there are no tracks currently loaded")

const DefaultPerPage = 10

// TrackLabel is "<name> by <author>", preferring the original author and
// using Unknown for empty fields.
func TrackLabel(song *nbs.Song) string {
	return song.Label()
}

// Page is one page of a numbered track listing.
type Page struct {
	Number int // 1-based
	Total  int
	Lines  []string
}

// TrackPage lists tracks as "N. <label>" lines, perPage at a time. Page
// numbers are 1-based and clamped to the available range.
func TrackPage(tracks []library.Track, page, perPage int) (Page, error) {
	if len(tracks) == 0 {
		return Page{}, ErrNoTracks
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	total := (len(tracks) + perPage - 1) / perPage
	page = max(1, min(page, total))
	start := (page - 1) * perPage
	end := min(start+perPage, len(tracks))
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, TrackLabel(tracks[i].Song)))
	}
	return Page{Number: page, Total: total, Lines: lines}, nil
}
