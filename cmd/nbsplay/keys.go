package main

import (
	"bytes"
	"io"
	"os"

	"golang.org/x/term"
)

const ctrlC = 0x03

// keyReader delivers single key presses from stdin. When stdin is a
// terminal it is switched to raw mode until Stop.
type keyReader struct {
	keys     chan byte
	fd       int
	oldState *term.State
}

func newKeyReader() *keyReader {
	k := &keyReader{keys: make(chan byte, 16), fd: int(os.Stdin.Fd())}
	if !term.IsTerminal(k.fd) {
		return k
	}
	state, err := term.MakeRaw(k.fd)
	if err != nil {
		return k
	}
	k.oldState = state
	go k.read()
	return k
}

// Interactive reports whether keys will arrive.
func (k *keyReader) Interactive() bool {
	return k.oldState != nil
}

func (k *keyReader) Keys() <-chan byte {
	return k.keys
}

func (k *keyReader) read() {
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			k.keys <- buf[0]
		}
		if err != nil {
			return
		}
	}
}

func (k *keyReader) Stop() {
	if k.oldState != nil {
		_ = term.Restore(k.fd, k.oldState)
		k.oldState = nil
	}
}

// crlfWriter turns LF into CRLF, since raw mode stops the terminal from
// returning the carriage on its own.
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
