package nbs

import "fmt"

// Format distinguishes the two header shapes.
type Format int

const (
	// FormatLegacy files start directly with the song length.
	FormatLegacy Format = iota
	// FormatCurrent files start with a zero marker and a version byte.
	FormatCurrent
)

func (f Format) String() string {
	switch f {
	case FormatLegacy:
		return "legacy"
	case FormatCurrent:
		return "current"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

const (
	minCurrentVersion = 3
	maxCurrentVersion = 5
)

// layout lists which optional fields a file carries. It is resolved once from
// the first header bytes and then drives every section reader.
type layout struct {
	format  Format
	version int

	versionPrefix   bool // zero marker, version byte, instrument count
	loopFields      bool // loop flag, max loop count, loop start tick
	noteBlockExtras bool // velocity, panning, fine pitch
	perLayerInfo    bool // one layer record per layer instead of one shared record
	layerLock       bool
	layerStereo     bool
}

var legacyLayout = layout{
	format:       FormatLegacy,
	perLayerInfo: true,
}

func currentLayout(version int) (layout, error) {
	if version < minCurrentVersion || version > maxCurrentVersion {
		return layout{}, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, version)
	}
	l := layout{
		format:        FormatCurrent,
		version:       version,
		versionPrefix: true,
		layerStereo:   true,
	}
	if version >= 4 {
		l.loopFields = true
		l.noteBlockExtras = true
		l.layerLock = true
	}
	return l, nil
}
