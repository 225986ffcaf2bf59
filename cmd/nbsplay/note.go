package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cbegin/composer-go/internal/pitch"
)

// parseNote reads an "instrument:key" argument such as "piano:45".
func parseNote(arg string) (pitch.Instrument, int, error) {
	name, keyText, ok := strings.Cut(arg, ":")
	if !ok {
		return pitch.InstrumentNone, 0, fmt.Errorf("note %q: want instrument:key", arg)
	}
	inst, ok := pitch.ByName(name)
	if !ok {
		return pitch.InstrumentNone, 0, fmt.Errorf("note %q: unknown instrument %q", arg, name)
	}
	key, err := strconv.Atoi(keyText)
	if err != nil {
		return pitch.InstrumentNone, 0, fmt.Errorf("note %q: key: %w", arg, err)
	}
	return inst, key, nil
}
