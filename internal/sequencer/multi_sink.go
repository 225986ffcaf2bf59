package sequencer

import (
	"sync"

	"github.com/cbegin/composer-go/internal/pitch"
)

// MultiSink routes emissions to sinks registered per instrument and fans every
// emission out to sinks registered with AddAll.
type MultiSink struct {
	mu       sync.Mutex
	routes   map[pitch.Instrument]Sink
	fallback Sink
	all      []Sink
}

// NewMultiSink creates a MultiSink. fallback receives instruments without a
// route and may be nil.
func NewMultiSink(fallback Sink) *MultiSink {
	return &MultiSink{
		routes:   make(map[pitch.Instrument]Sink),
		fallback: fallback,
	}
}

// Route registers sink for one instrument, replacing any earlier route.
func (m *MultiSink) Route(inst pitch.Instrument, sink Sink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[inst] = sink
}

// AddAll registers a sink that sees every emission, e.g. a logger.
func (m *MultiSink) AddAll(sink Sink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.all = append(m.all, sink)
}

func (m *MultiSink) sinks(inst pitch.Instrument) []Sink {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Sink, 0, len(m.all)+1)
	if s, ok := m.routes[inst]; ok {
		out = append(out, s)
	} else if m.fallback != nil {
		out = append(out, m.fallback)
	}
	return append(out, m.all...)
}

func (m *MultiSink) Emit(inst pitch.Instrument, p float64, volume float64, pos Position) {
	for _, s := range m.sinks(inst) {
		s.Emit(inst, p, volume, pos)
	}
}
