package score

import (
	"github.com/cbegin/composer-go/internal/nbs"
	"github.com/cbegin/composer-go/internal/pitch"
)

// FromSong lays each grid row out as one layer of quarter notes, one per tick,
// grouped into measures of the song's time signature. Empty cells become rests.
func FromSong(song *nbs.Song) *Score {
	beats := song.TimeSignature
	if beats <= 0 {
		beats = 4
	}
	time := TimeSignature{BeatsPerMeasure: beats, BeatUnit: Quarter}

	artist := song.OriginalAuthor
	if artist == "" {
		artist = song.Author
	}
	// Ticks per second is truncated before scaling, so 2.5 t/s plays at 120 bpm.
	tempo := int(song.TempoTicksPerSecond) * 60

	s := &Score{
		Title:  song.Name,
		Artist: artist,
		Tempo:  tempo,
		Time:   time,
		Layers: make([]Layer, 0, song.Height+1),
	}
	for i := 0; i <= song.Height; i++ {
		s.Layers = append(s.Layers, Layer{Time: time, Measures: layerMeasures(song, i, beats)})
	}
	return s
}

func layerMeasures(song *nbs.Song, layer int, beats int) []Measure {
	volume := 1.0
	if layer < len(song.LayerInfo) {
		volume = float64(song.LayerInfo[layer].Volume) / 100
	}
	ticks := song.LengthTicks + 1
	measures := make([]Measure, 0, (ticks+beats-1)/beats)
	current := make([]Note, 0, beats)
	for tick := 0; tick < ticks; tick++ {
		current = append(current, noteFor(song, song.At(layer, tick), volume))
		if len(current) == beats {
			measures = append(measures, Measure{Notes: current})
			current = make([]Note, 0, beats)
		}
	}
	if len(current) > 0 {
		measures = append(measures, Measure{Notes: current})
	}
	return measures
}

func noteFor(song *nbs.Song, nb *nbs.NoteBlock, layerVolume float64) Note {
	if nb == nil {
		return Rest(Quarter)
	}
	return Note{
		Instrument: song.Sound(nb),
		Pitch:      pitch.ForKey(nb.Key),
		Duration:   Quarter,
		Volume:     layerVolume * float64(nb.Velocity) / 100,
	}
}
