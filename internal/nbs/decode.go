package nbs

import (
	"errors"
	"fmt"
)

// Decode parses an .nbs buffer. On failure no partial Song is returned.
func Decode(data []byte) (*Song, error) {
	lay, err := detectLayout(data)
	if errors.Is(err, ErrUnsupportedVersion) && hasZeroMarker(data) {
		// A legacy song of length 0 also starts with two zero bytes.
		if legacy, lerr := decodeWith(data, legacyLayout); lerr == nil {
			return legacy, nil
		}
	}
	if err != nil {
		return nil, err
	}
	return decodeWith(data, lay)
}

// detectLayout resolves the header shape from the first bytes.
func detectLayout(data []byte) (layout, error) {
	r := newReader(data)
	r.section("header")
	first := r.u16()
	version := r.u8()
	if r.err != nil {
		return layout{}, r.err
	}
	if first != 0 {
		return legacyLayout, nil
	}
	lay, err := currentLayout(version)
	if err != nil {
		return layout{}, &DecodeError{Op: "header", Offset: 2, Err: err}
	}
	return lay, nil
}

func hasZeroMarker(data []byte) bool {
	return len(data) >= 2 && data[0] == 0 && data[1] == 0
}

func decodeWith(data []byte, lay layout) (*Song, error) {
	r := newReader(data)
	song := &Song{Format: lay.format, Version: lay.version}
	readHeader(r, lay, song)
	if r.err != nil {
		return nil, r.err
	}
	if err := readNoteBlocks(r, lay, song); err != nil {
		return nil, err
	}
	readLayerInfo(r, lay, song)
	if r.err != nil {
		return nil, r.err
	}
	return song, nil
}

func readHeader(r *reader, lay layout, s *Song) {
	r.section("header")
	if lay.versionPrefix {
		r.u16() // zero marker
		s.Version = r.u8()
		s.InstrumentCount = r.u8()
	}
	s.LengthTicks = r.u16()
	s.Height = r.u16()
	s.Name = r.str()
	s.Author = r.str()
	s.OriginalAuthor = r.str()
	s.Description = r.str()
	s.TempoTicksPerSecond = float64(r.u16()) / 100
	s.AutoSave = r.bool()
	s.AutoSaveDuration = r.u8()
	s.TimeSignature = r.u8()
	s.MinutesSpent = r.i32()
	s.LeftClicks = r.i32()
	s.RightClicks = r.i32()
	s.BlocksAdded = r.i32()
	s.BlocksRemoved = r.i32()
	s.ImportedFileName = r.str()
	if lay.loopFields {
		s.Loop = r.bool()
		s.MaxLoopCount = r.u8()
		s.LoopStartTick = r.u16()
	}
}

// readNoteBlocks reads the delta-encoded grid: tick jumps, each followed by
// layer jumps, each 0-terminated. Rows grow only as blocks arrive.
func readNoteBlocks(r *reader, lay layout, s *Song) error {
	r.section("noteblocks")
	tick := -1
	for {
		jump := r.u16()
		if r.err != nil {
			return r.err
		}
		if jump == 0 {
			return nil
		}
		tick += jump
		layer := -1
		for {
			jump = r.u16()
			if r.err != nil {
				return r.err
			}
			if jump == 0 {
				break
			}
			layer += jump
			if layer > s.Height || tick > s.LengthTicks {
				return &DecodeError{
					Op:     "noteblocks",
					Offset: r.pos - 2,
					Err:    fmt.Errorf("%w: layer %d tick %d outside %dx%d", ErrCorruptedGrid, layer, tick, s.Height+1, s.LengthTicks+1),
				}
			}
			nb := &NoteBlock{
				Instrument: r.u8(),
				Key:        r.u8(),
				Velocity:   100,
				Panning:    100,
			}
			if lay.noteBlockExtras {
				nb.Velocity = r.u8()
				nb.Panning = r.u8()
				nb.FinePitch = r.i16()
			}
			if r.err != nil {
				return r.err
			}
			s.Put(layer, tick, nb)
		}
	}
}

func readLayerInfo(r *reader, lay layout, s *Song) {
	r.section("layers")
	if lay.perLayerInfo {
		// Records are appended as read so a truncated file costs no more than its size.
		var infos []LayerInfo
		for i := 0; i < s.Height && r.err == nil; i++ {
			info := LayerInfo{Stereo: 100}
			info.Name = r.str()
			info.Volume = r.u8()
			infos = append(infos, info)
		}
		if r.err != nil {
			return
		}
		s.LayerInfo = append(infos, LayerInfo{Volume: 100, Stereo: 100})
		return
	}
	// Current files carry a single record that applies to every layer.
	info := LayerInfo{Stereo: 100}
	info.Name = r.str()
	if lay.layerLock {
		info.Locked = r.bool()
	}
	info.Volume = r.u8()
	if lay.layerStereo {
		info.Stereo = r.u8()
	}
	if r.err != nil {
		return
	}
	s.LayerInfo = make([]LayerInfo, s.Height+1)
	for i := range s.LayerInfo {
		s.LayerInfo[i] = info
	}
}
