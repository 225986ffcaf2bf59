// Package nbstest builds raw .nbs buffers for tests.
package nbstest

import "encoding/binary"

// Buffer appends little-endian fields.
type Buffer struct {
	b []byte
}

func (w *Buffer) U8(v int) *Buffer {
	w.b = append(w.b, byte(v))
	return w
}

func (w *Buffer) U16(v int) *Buffer {
	w.b = binary.LittleEndian.AppendUint16(w.b, uint16(v))
	return w
}

func (w *Buffer) I32(v int) *Buffer {
	w.b = binary.LittleEndian.AppendUint32(w.b, uint32(int32(v)))
	return w
}

func (w *Buffer) Str(s string) *Buffer {
	w.I32(len(s))
	w.b = append(w.b, s...)
	return w
}

func (w *Buffer) Raw(p ...byte) *Buffer {
	w.b = append(w.b, p...)
	return w
}

func (w *Buffer) Bytes() []byte {
	return append([]byte(nil), w.b...)
}

// Header holds the scalar header fields shared by both shapes.
type Header struct {
	LengthTicks   int
	Height        int
	Name          string
	Author        string
	OrigAuthor    string
	Description   string
	Tempo         int // ticks per second x 100
	TimeSignature int
}

// Block is a grid entry positioned by absolute tick and layer.
type Block struct {
	Tick, Layer     int
	Instrument, Key int
	Velocity        int
	Panning         int
	Pitch           int
}

// Layer is a layer metadata record.
type Layer struct {
	Name   string
	Volume int
	Lock   bool
	Stereo int
}

func (w *Buffer) header(h Header) {
	w.U16(h.Height)
	w.Str(h.Name).Str(h.Author).Str(h.OrigAuthor).Str(h.Description)
	w.U16(h.Tempo)
	w.U8(0).U8(10).U8(h.TimeSignature)
	w.I32(0).I32(0).I32(0).I32(0).I32(0)
	w.Str("")
}

// grid writes blocks, which must be sorted by tick then layer.
func (w *Buffer) grid(blocks []Block, extras bool) {
	tick, i := -1, 0
	for i < len(blocks) {
		t := blocks[i].Tick
		w.U16(t - tick)
		tick = t
		layer := -1
		for ; i < len(blocks) && blocks[i].Tick == t; i++ {
			b := blocks[i]
			w.U16(b.Layer - layer)
			layer = b.Layer
			w.U8(b.Instrument).U8(b.Key)
			if extras {
				w.U8(b.Velocity).U8(b.Panning).U16(b.Pitch)
			}
		}
		w.U16(0)
	}
	w.U16(0)
}

// Legacy builds a legacy-shape file with one layer record per layer.
func Legacy(h Header, blocks []Block, layers []Layer) []byte {
	w := &Buffer{}
	w.U16(h.LengthTicks)
	w.header(h)
	w.grid(blocks, false)
	for _, l := range layers {
		w.Str(l.Name).U8(l.Volume)
	}
	return w.Bytes()
}

// Current builds a current-shape file (version 4 or 5) with a single layer record.
func Current(version int, h Header, blocks []Block, layer Layer) []byte {
	w := &Buffer{}
	w.U16(0).U8(version).U8(16)
	w.U16(h.LengthTicks)
	w.header(h)
	w.U8(1).U8(0).U16(0)
	w.grid(blocks, true)
	lock := 0
	if layer.Lock {
		lock = 1
	}
	w.Str(layer.Name).U8(lock).U8(layer.Volume).U8(layer.Stereo)
	return w.Bytes()
}
