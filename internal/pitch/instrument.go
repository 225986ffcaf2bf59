package pitch

// Instrument identifies a note-block sound in the sound engine.
type Instrument string

// InstrumentNone marks a rest; it is never emitted.
const InstrumentNone Instrument = ""

const (
	Harp          Instrument = "block.note_block.harp"
	Bass          Instrument = "block.note_block.bass"
	BaseDrum      Instrument = "block.note_block.basedrum"
	Snare         Instrument = "block.note_block.snare"
	Hat           Instrument = "block.note_block.hat"
	Guitar        Instrument = "block.note_block.guitar"
	Flute         Instrument = "block.note_block.flute"
	Bell          Instrument = "block.note_block.bell"
	Chime         Instrument = "block.note_block.chime"
	Xylophone     Instrument = "block.note_block.xylophone"
	IronXylophone Instrument = "block.note_block.iron_xylophone"
	CowBell       Instrument = "block.note_block.cow_bell"
	Didgeridoo    Instrument = "block.note_block.didgeridoo"
	Bit           Instrument = "block.note_block.bit"
	Banjo         Instrument = "block.note_block.banjo"
	Pling         Instrument = "block.note_block.pling"
)

// Legacy files know five sounds; code 4 has always been played as pling.
var legacyInstruments = [...]Instrument{Harp, Bass, BaseDrum, Snare, Pling}

var vanillaInstruments = [...]Instrument{
	Harp, Bass, BaseDrum, Snare, Hat, Guitar, Flute, Bell,
	Chime, Xylophone, IronXylophone, CowBell, Didgeridoo, Bit, Banjo, Pling,
}

// VanillaCount is the number of built-in instruments in current-format files.
const VanillaCount = len(vanillaInstruments)

// LegacyInstrument maps a legacy-format instrument code. Unknown codes play as harp.
func LegacyInstrument(code int) Instrument {
	if code < 0 || code >= len(legacyInstruments) {
		return Harp
	}
	return legacyInstruments[code]
}

// CurrentInstrument maps a current-format instrument code. Codes at or above
// vanillaCount refer to custom instruments, which have no built-in sound and
// fall back to harp.
func CurrentInstrument(code int, vanillaCount int) Instrument {
	if vanillaCount <= 0 || vanillaCount > VanillaCount {
		vanillaCount = VanillaCount
	}
	if code < 0 || code >= vanillaCount {
		return Harp
	}
	return vanillaInstruments[code]
}

// Name returns the short sound name, e.g. "harp".
func (i Instrument) Name() string {
	const prefix = "block.note_block."
	s := string(i)
	if len(s) > len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):]
	}
	return s
}

// ByName resolves a short sound name such as "bass" or a full sound id.
// "piano" is accepted for harp.
func ByName(name string) (Instrument, bool) {
	if name == "piano" {
		return Harp, true
	}
	for _, inst := range vanillaInstruments {
		if name == inst.Name() || name == string(inst) {
			return inst, true
		}
	}
	return InstrumentNone, false
}
