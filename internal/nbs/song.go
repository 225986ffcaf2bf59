package nbs

import (
	"cmp"
	"slices"

	"github.com/cbegin/composer-go/internal/pitch"
)

// Song is the decoded content of one .nbs file. It is read-only once returned by Decode.
type Song struct {
	Format  Format
	Version int // 0 for legacy files

	// Vanilla instrument count declared by current-format files.
	InstrumentCount int

	LengthTicks         int
	Height              int // number of layers as declared by the file
	Name                string
	Author              string
	OriginalAuthor      string
	Description         string
	TempoTicksPerSecond float64
	AutoSave            bool
	AutoSaveDuration    int
	TimeSignature       int
	MinutesSpent        int
	LeftClicks          int
	RightClicks         int
	BlocksAdded         int
	BlocksRemoved       int
	ImportedFileName    string

	Loop          bool
	MaxLoopCount  int
	LoopStartTick int

	// NoteBlocks is indexed by layer. Each row lists that layer's blocks in
	// tick order and may be empty or missing; use At to read a grid cell.
	NoteBlocks [][]*NoteBlock

	// LayerInfo has Height+1 entries, parallel to NoteBlocks.
	LayerInfo []LayerInfo
}

// NoteBlock is one populated grid cell.
type NoteBlock struct {
	Tick       int
	Instrument int
	Key        int
	Velocity   int // 0-100; 100 for legacy files
	Panning    int // 0-200, 100 is centre
	FinePitch  int // cents
}

// LayerInfo carries per-layer display metadata.
type LayerInfo struct {
	Name   string
	Locked bool
	Volume int // percent
	Stereo int // 0-200, 100 is centre
}

// Sound resolves the note block's instrument code for the song's format.
func (s *Song) Sound(nb *NoteBlock) pitch.Instrument {
	if s.Format == FormatLegacy {
		return pitch.LegacyInstrument(nb.Instrument)
	}
	return pitch.CurrentInstrument(nb.Instrument, s.InstrumentCount)
}

// At returns the note block at (layer, tick), or nil for an empty cell.
func (s *Song) At(layer, tick int) *NoteBlock {
	if layer < 0 || layer >= len(s.NoteBlocks) {
		return nil
	}
	row := s.NoteBlocks[layer]
	if i, ok := slices.BinarySearchFunc(row, tick, byTick); ok {
		return row[i]
	}
	return nil
}

// Put stores nb at (layer, tick), replacing any block already there.
func (s *Song) Put(layer, tick int, nb *NoteBlock) {
	if layer >= len(s.NoteBlocks) {
		s.NoteBlocks = append(s.NoteBlocks, make([][]*NoteBlock, layer+1-len(s.NoteBlocks))...)
	}
	nb.Tick = tick
	row := s.NoteBlocks[layer]
	i, ok := slices.BinarySearchFunc(row, tick, byTick)
	if ok {
		row[i] = nb
		return
	}
	s.NoteBlocks[layer] = slices.Insert(row, i, nb)
}

func byTick(nb *NoteBlock, tick int) int {
	return cmp.Compare(nb.Tick, tick)
}

// NoteCount returns the number of populated grid cells.
func (s *Song) NoteCount() int {
	n := 0
	for _, row := range s.NoteBlocks {
		n += len(row)
	}
	return n
}

// Label reports "<name> by <author>", preferring the original author.
func (s *Song) Label() string {
	author := s.OriginalAuthor
	if author == "" {
		author = s.Author
	}
	return orUnknown(s.Name) + " by " + orUnknown(author)
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
