package composer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cbegin/composer-go/internal/library"
	"github.com/cbegin/composer-go/internal/nbs"
)

func TestTrackLabel(t *testing.T) {
	tests := []struct {
		song nbs.Song
		want string
	}{
		{nbs.Song{Name: "Tune", Author: "me"}, "Tune by me"},
		{nbs.Song{Name: "Tune", Author: "me", OriginalAuthor: "them"}, "Tune by them"},
		{nbs.Song{}, "Unknown by Unknown"},
	}
	for _, tt := range tests {
		if got := TrackLabel(&tt.song); got != tt.want {
			t.Fatalf("label = %q, want %q", got, tt.want)
		}
	}
}

func TestTrackPage(t *testing.T) {
	var tracks []library.Track
	for i := 1; i <= 12; i++ {
		tracks = append(tracks, library.Track{Song: &nbs.Song{Name: fmt.Sprintf("song%d", i)}})
	}

	page, err := TrackPage(tracks, 2, 5)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if page.Number != 2 || page.Total != 3 || len(page.Lines) != 5 {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Lines[0] != "6. song6 by Unknown" {
		t.Fatalf("first line = %q", page.Lines[0])
	}

	last, _ := TrackPage(tracks, 99, 5)
	if last.Number != 3 || len(last.Lines) != 2 || last.Lines[1] != "12. song12 by Unknown" {
		t.Fatalf("out-of-range page should clamp to the last, got %+v", last)
	}
	first, _ := TrackPage(tracks, 0, 0)
	if first.Number != 1 || len(first.Lines) != DefaultPerPage {
		t.Fatalf("defaults not applied: %+v", first)
	}

	if _, err := TrackPage(nil, 1, 5); !errors.Is(err, ErrNoTracks) {
		t.Fatalf("expected ErrNoTracks, got %v", err)
	}
}
