package pitch

// Note-block pitch spans two octaves, F#0 through F#2, one entry per semitone.
// The multiplier doubles every 12 entries and is 1.0 at F#1.
const (
	TableSize = 25

	// MinKey and MaxKey bound the raw note-block keys that map directly onto the table.
	MinKey = 33
	MaxKey = MinKey + TableSize - 1
)

var table = [TableSize]float64{
	0.500000, // F#0
	0.529732, // G0
	0.561231, // G#0
	0.594604, // A0
	0.629961, // A#0
	0.667420, // B0
	0.707107, // C1
	0.749154, // C#1
	0.793701, // D1
	0.840896, // D#1
	0.890899, // E1
	0.943874, // F1
	1.000000, // F#1
	1.059463, // G1
	1.122462, // G#1
	1.189207, // A1
	1.259921, // A#1
	1.334840, // B1
	1.414214, // C2
	1.498307, // C#2
	1.587401, // D2
	1.681793, // D#2
	1.781797, // E2
	1.887749, // F2
	2.000000, // F#2
}

// Named pitches in table order.
var (
	FSharp0 = table[0]
	G0      = table[1]
	GSharp0 = table[2]
	A0      = table[3]
	ASharp0 = table[4]
	B0      = table[5]
	C1      = table[6]
	CSharp1 = table[7]
	D1      = table[8]
	DSharp1 = table[9]
	E1      = table[10]
	F1      = table[11]
	FSharp1 = table[12]
	G1      = table[13]
	GSharp1 = table[14]
	A1      = table[15]
	ASharp1 = table[16]
	B1      = table[17]
	C2      = table[18]
	CSharp2 = table[19]
	D2      = table[20]
	DSharp2 = table[21]
	E2      = table[22]
	F2      = table[23]
	FSharp2 = table[24]

	GFlat0 = FSharp0
	AFlat0 = GSharp0
	BFlat0 = ASharp0
	DFlat1 = CSharp1
	EFlat1 = DSharp1
	GFlat1 = FSharp1
	AFlat1 = GSharp1
	BFlat1 = ASharp1
	DFlat2 = CSharp2
	EFlat2 = DSharp2
	GFlat2 = FSharp2
)

// Table returns a copy of the pitch table.
func Table() [TableSize]float64 { return table }

// At returns the multiplier at table index i, clamped into range.
func At(i int) float64 {
	if i < 0 {
		i = 0
	}
	if i >= TableSize {
		i = TableSize - 1
	}
	return table[i]
}

// Normalize folds a raw key into [MinKey, MaxKey] by whole octaves.
func Normalize(key int) int {
	for key < MinKey {
		key += 12
	}
	for key > MaxKey {
		key -= 12
	}
	return key
}

// Index returns the table index for a raw note-block key.
func Index(key int) int {
	return Normalize(key) - MinKey
}

// ForKey returns the pitch multiplier for a raw note-block key.
func ForKey(key int) float64 {
	return table[Index(key)]
}
