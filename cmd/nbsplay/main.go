package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/pflag"

	composer "github.com/cbegin/composer-go"
	"github.com/cbegin/composer-go/internal/audio"
	"github.com/cbegin/composer-go/internal/config"
	"github.com/cbegin/composer-go/internal/library"
	"github.com/cbegin/composer-go/internal/nbs"
	"github.com/cbegin/composer-go/internal/pitch"
	"github.com/cbegin/composer-go/internal/score"
	"github.com/cbegin/composer-go/internal/sequencer"
	"github.com/cbegin/composer-go/internal/synth"
)

const usage = `keys: space pause/resume  n next  p previous  s shuffle  l list  q quit`

func main() {
	var (
		dir          = pflag.StringP("dir", "d", ".", "data directory holding tracks/ and playlists/")
		configPath   = pflag.StringP("config", "c", "", "Lua config file (default <dir>/composer.lua)")
		usePlaylists = pflag.Bool("playlists", false, "load playlists/ instead of tracks/")
		playlist     = pflag.String("playlist", "", "playlist to start on")
		stopNoPause  = pflag.Bool("stop-not-pause", false, "pausing stops the track")
		debug        = pflag.Bool("debug", false, "enable debug tools and note logging")
		loopTrack    = pflag.Bool("loop-track", false, "repeat the current track")
		loopList     = pflag.Bool("loop-playlist", false, "wrap around at the end of the list")
		shuffle      = pflag.Bool("shuffle", false, "shuffle before playing")
		sampleRate   = pflag.Int("sample-rate", 48000, "output sample rate")
		volume       = pflag.Float64("volume", 1.0, "master volume scalar")
		listener     = pflag.String("listener", "console", "listener id")
		dump         = pflag.String("dump", "", "print the decoded song at this path and exit (debug)")
		demo         = pflag.Bool("demo", false, "play the built-in demo score and exit (debug)")
		note         = pflag.String("note", "", "play one note given as instrument:key, e.g. piano:45, and exit (debug)")
	)
	pflag.Parse()

	keys := newKeyReader()
	defer keys.Stop()
	out := os.Stdout
	logger := log.New(out, "", log.Ldate|log.Ltime)
	if keys.Interactive() {
		logger.SetOutput(crlfWriter{w: out})
	}

	if *configPath == "" {
		*configPath = filepath.Join(*dir, "composer.lua")
	}
	if err := config.WriteDefault(*configPath); err != nil {
		logger.Printf("could not create default config: %v", err)
	}
	store, err := config.LoadLua(*configPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		keys.Stop()
		logger.Fatalf("config: %v", err)
	}
	overrides := map[string]any{
		"playlists":      *usePlaylists,
		"stop-not-pause": *stopNoPause,
		"debug":          *debug,
		"playlist":       *playlist,
	}
	keyFor := map[string]string{
		"playlists":      config.UsePlaylists,
		"stop-not-pause": config.StopNotPause,
		"debug":          config.DebugMode,
		"playlist":       config.DefaultPlaylist,
	}
	for flagName, value := range overrides {
		if !pflag.CommandLine.Changed(flagName) {
			continue
		}
		if err := store.Set(keyFor[flagName], value); err != nil {
			keys.Stop()
			logger.Fatalf("--%s: %v", flagName, err)
		}
	}
	if pflag.CommandLine.Changed("playlist") {
		_ = store.Set(config.UsePlaylists, true)
	}

	if (*dump != "" || *demo || *note != "") && !store.Bool(config.DebugMode) {
		keys.Stop()
		logger.Fatalf("--dump, --demo and --note need debug mode (--debug or %s in the config)", config.DebugMode)
	}
	if *dump != "" {
		keys.Stop()
		dumpSong(logger, *dump)
		return
	}

	params := synth.DefaultParams()
	params.MasterGain *= *volume
	engine := synth.New(*sampleRate, params)
	output, err := audio.Open(*sampleRate, engine, 0)
	if err != nil {
		keys.Stop()
		logger.Fatalf("audio: %v", err)
	}
	defer output.Close()

	sink := sequencer.NewMultiSink(engine)
	if store.Bool(config.DebugMode) {
		sink.AddAll(noteLogger{logger: logger})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *demo {
		playDemo(ctx, logger, sink)
		return
	}
	if *note != "" {
		inst, key, err := parseNote(*note)
		if err != nil {
			keys.Stop()
			logger.Fatalf("%v", err)
		}
		sink.Emit(inst, pitch.ForKey(key), 1, sequencer.Position{})
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
		}
		return
	}

	lib, err := (&library.Loader{Root: *dir, Store: store, Logger: logger}).Load(ctx)
	if err != nil {
		keys.Stop()
		logger.Fatalf("load: %v", err)
	}
	box := composer.NewJukebox(lib, store, func(string) sequencer.Sink { return sink }, composer.WithLogger(logger))
	mp, err := box.Player(*listener)
	if err != nil {
		keys.Stop()
		logger.Fatalf("player: %v", err)
	}
	mp.SetLoopTrack(*loopTrack)
	mp.SetLoopPlaylist(*loopList)
	events := mp.Watch()

	page := 1
	printPage(logger, mp, page)
	if err := start(mp, *shuffle, pflag.Args()); err != nil {
		logger.Printf("%v", err)
		if !keys.Interactive() {
			return
		}
	}
	if keys.Interactive() {
		logger.Print(usage)
	}

	for {
		select {
		case <-ctx.Done():
			mp.Stop()
			return
		case ev := <-events:
			if ev.Kind == composer.EventPlaylistEnded {
				logger.Print("End of playlist.")
				if !keys.Interactive() {
					time.Sleep(time.Second)
					return
				}
			}
		case key := <-keys.Keys():
			var err error
			switch key {
			case ' ':
				if mp.IsPlaying() {
					err = mp.Pause()
				} else {
					err = mp.Resume()
				}
			case 'n':
				err = mp.Next()
			case 'p':
				err = mp.Previous()
			case 's':
				err = mp.Shuffle()
			case 'l':
				page++
				if page = printPage(logger, mp, page); page == 0 {
					page = 1
				}
			case 'q', ctrlC:
				mp.Stop()
				return
			}
			if err != nil {
				logger.Printf("%v", err)
			}
		}
	}
}

func start(mp *composer.MusicPlayer, shuffle bool, args []string) error {
	if shuffle {
		return mp.Shuffle()
	}
	index := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("track number %q: %w", args[0], err)
		}
		index = n - 1
	}
	return mp.Play(index)
}

// printPage logs one page of the track list and returns the page shown,
// wrapping back to the first after the last. It returns 0 when there is
// nothing to list.
func printPage(logger *log.Logger, mp *composer.MusicPlayer, page int) int {
	p, err := composer.TrackPage(mp.Tracks(), page, composer.DefaultPerPage)
	if err != nil {
		logger.Printf("%v", err)
		return 0
	}
	if page > p.Total {
		p, _ = composer.TrackPage(mp.Tracks(), 1, composer.DefaultPerPage)
	}
	logger.Printf("Tracks (page %d/%d)", p.Number, p.Total)
	for _, line := range p.Lines {
		logger.Print(line)
	}
	return p.Number
}

func dumpSong(logger *log.Logger, path string) {
	song, err := nbs.ReadFile(path)
	if err != nil {
		logger.Fatalf("dump: %v", err)
	}
	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, MaxDepth: 2}
	cfg.Dump(song)
	s := score.FromSong(song)
	timing, err := sequencer.ComputeTiming(s)
	if err != nil {
		logger.Printf("%s: %v", song.Label(), err)
		return
	}
	logger.Printf("%s: %d notes, %d layers, %d bpm, %s, step %v",
		song.Label(), s.NoteCount(), len(s.Layers), s.Tempo, s.Time, timing.Period)
}

func playDemo(ctx context.Context, logger *log.Logger, sink sequencer.Sink) {
	done := make(chan struct{})
	sched := sequencer.New(score.Mary(), sink, sequencer.Options{
		OnFinish: func() { close(done) },
		Logger:   logger,
	})
	if err := sched.Play(); err != nil {
		logger.Fatalf("demo: %v", err)
	}
	select {
	case <-done:
		time.Sleep(time.Second)
	case <-ctx.Done():
		_ = sched.Finish()
	}
}

// noteLogger prints every emitted note.
type noteLogger struct {
	logger *log.Logger
}

func (n noteLogger) Emit(inst pitch.Instrument, p float64, volume float64, pos sequencer.Position) {
	n.logger.Printf("note %s pitch %.3f volume %.2f at %.1f,%.1f,%.1f", inst.Name(), p, volume, pos.X, pos.Y, pos.Z)
}
