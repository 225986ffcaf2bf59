package pitch

import (
	"math"
	"testing"
)

func TestNormalizeAlwaysLandsInTable(t *testing.T) {
	for key := -300; key <= 300; key++ {
		n := Normalize(key)
		if n < MinKey || n > MaxKey {
			t.Fatalf("Normalize(%d) = %d, outside [%d,%d]", key, n, MinKey, MaxKey)
		}
		if (n-key)%12 != 0 {
			t.Fatalf("Normalize(%d) = %d is not an octave shift", key, n)
		}
		idx := Index(key)
		if idx < 0 || idx >= TableSize {
			t.Fatalf("Index(%d) = %d, outside table", key, idx)
		}
	}
}

func TestIndexInRangeKeysAreUnchanged(t *testing.T) {
	if got := Index(45); got != 12 {
		t.Fatalf("Index(45) = %d, want 12", got)
	}
	if got := ForKey(45); got != 1.0 {
		t.Fatalf("ForKey(45) = %v, want 1.0", got)
	}
	if got := Index(33); got != 0 {
		t.Fatalf("Index(33) = %d, want 0", got)
	}
	if got := Index(57); got != 24 {
		t.Fatalf("Index(57) = %d, want 24", got)
	}
}

func TestIndexFoldsByOctave(t *testing.T) {
	cases := map[int]int{
		21: 0,  // 21+12 = 33
		32: 11, // 32+12 = 44
		58: 13, // 58-12 = 46
		69: 24, // 69-12 = 57
		0:  3,  // 0+36 = 36
	}
	for key, want := range cases {
		if got := Index(key); got != want {
			t.Fatalf("Index(%d) = %d, want %d", key, got, want)
		}
	}
}

func TestTableIsEqualTempered(t *testing.T) {
	for i, v := range Table() {
		want := math.Pow(2, float64(i-12)/12)
		if math.Abs(v-want) > 1e-5 {
			t.Fatalf("table[%d] = %v, want %v", i, v, want)
		}
	}
	if At(-1) != FSharp0 || At(99) != FSharp2 {
		t.Fatalf("At should clamp to table ends")
	}
}

func TestInstrumentMapping(t *testing.T) {
	if got := LegacyInstrument(4); got != Pling {
		t.Fatalf("legacy 4 = %q, want pling", got)
	}
	if got := LegacyInstrument(9); got != Harp {
		t.Fatalf("legacy unknown = %q, want harp", got)
	}
	if got := CurrentInstrument(4, VanillaCount); got != Hat {
		t.Fatalf("current 4 = %q, want hat", got)
	}
	if got := CurrentInstrument(15, VanillaCount); got != Pling {
		t.Fatalf("current 15 = %q, want pling", got)
	}
	if got := CurrentInstrument(10, 10); got != Harp {
		t.Fatalf("custom instrument = %q, want harp fallback", got)
	}
	if got := Banjo.Name(); got != "banjo" {
		t.Fatalf("Name() = %q", got)
	}
}

func TestByName(t *testing.T) {
	cases := map[string]Instrument{
		"piano":                     Harp,
		"bass":                      Bass,
		"iron_xylophone":            IronXylophone,
		"block.note_block.cow_bell": CowBell,
	}
	for name, want := range cases {
		if got, ok := ByName(name); !ok || got != want {
			t.Fatalf("ByName(%q) = %q, %v; want %q", name, got, ok, want)
		}
	}
	if _, ok := ByName("kazoo"); ok {
		t.Fatalf("unknown name should not resolve")
	}
}
