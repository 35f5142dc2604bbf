package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/hbarrett/cadence/internal/catalog"
	"github.com/hbarrett/cadence/internal/config"
	"github.com/hbarrett/cadence/internal/decode"
	"github.com/hbarrett/cadence/internal/device"
	"github.com/hbarrett/cadence/internal/playback"
	"github.com/hbarrett/cadence/internal/stream"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "cadence: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	dir := flag.String("dir", "", "music directory (overrides config)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := zerolog.InfoLevel
	if *verbose || cfg.Verbose {
		level = zerolog.DebugLevel
	}
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).Level(level)

	root := cfg.MusicDir
	if *dir != "" {
		root = *dir
	}
	if root == "" {
		root, err = os.Getwd()
		if err != nil {
			return err
		}
	}

	cat, err := catalog.Open(root)
	if err != nil {
		return err
	}
	if cat.Len() == 0 {
		return fmt.Errorf("no playable files in %s", cat.Root())
	}
	zlog.Info().Msgf("%d tracks in %s", cat.Len(), cat.Root())

	out := device.NewSpeaker(cfg.Buffer())
	defer out.Close()

	ctl := playback.New(playback.Config{
		Catalog:       cat,
		Opener:        decode.Opener{},
		Output:        out,
		Progress:      logProgress,
		ProgressEvery: cfg.ProgressEvery,
		Volume:        cfg.Volume,
		SeekFraction:  cfg.SeekFraction,
	})
	defer ctl.Close()

	sub := ctl.Subscribe()
	go printEvents(sub)

	if err := ctl.TogglePlayPause(); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	zlog.Info().Msg("shutting down")
	return nil
}

func printEvents(sub *playback.Subscription) {
	for {
		select {
		case e := <-sub.TrackChanged:
			zlog.Info().Msgf("playing %d: %s (%.1fs)", e.Index, e.Title, e.DurationSec)
		case e := <-sub.StateChanged:
			zlog.Debug().Msgf("state: %s -> %s", e.Previous, e.Current)
		case e := <-sub.PositionChanged:
			zlog.Info().Msgf("seek: frame %d/%d", e.Frame, e.Total)
		case e := <-sub.Error:
			zlog.Error().Err(e.Err).Msgf("%s failed: %s", e.Operation, e.Path)
		case <-sub.Done:
			return
		}
	}
}

func logProgress(t *stream.Track, frame int) {
	zlog.Debug().Msgf("progress: %s %d/%d", t.Title, frame, t.TotalFrames())
}
