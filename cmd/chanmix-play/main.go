// ABOUTME: Entry point for the chanmix command line player
// ABOUTME: Parses CLI flags, decodes a file and plays it through the mixer
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/chanmix/chanmix-go/pkg/audio"
	"github.com/chanmix/chanmix-go/pkg/audio/decode"
	"github.com/chanmix/chanmix-go/pkg/audio/output"
	"github.com/chanmix/chanmix-go/pkg/audio/resample"
	"github.com/chanmix/chanmix-go/pkg/mixer"
)

var (
	file     = flag.String("file", "", "Audio file to play (WAV, MP3, FLAC, OGG)")
	volume   = flag.Int("volume", mixer.MaxVolume, "Playback volume (0-128)")
	loops    = flag.Int("loops", 0, "Extra repeats (-1 = loop forever)")
	fadeIn   = flag.Int("fade-in", 0, "Fade-in duration in milliseconds")
	fadeOut  = flag.Int("fade-out", 0, "Fade-out duration on interrupt in milliseconds")
	duration = flag.Int("duration", -1, "Hard stop after this many milliseconds (-1 = play to the end)")
	rate     = flag.Int("rate", 44100, "Output sample rate in Hz")
	channels = flag.Int("channels", 2, "Output channels (1 = mono, 2 = stereo)")
	chunk    = flag.Int("chunk", 1024, "Mixing block size in sample frames")
	silent   = flag.Bool("silent", false, "Use the null output instead of the audio device")
)

func main() {
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	c, err := decode.LoadFile(*file)
	if err != nil {
		log.Fatalf("failed to load %s: %v", *file, err)
	}
	log.Printf("Loaded %s: %dHz, %d channels, %v",
		*file, c.Format.SampleRate, c.Format.Channels, c.Duration())

	out := output.NewOto()
	if *silent {
		out = output.NewDiscard()
	}

	m, err := mixer.NewWithOutput(*rate, 16, *channels, *chunk, out)
	if err != nil {
		log.Fatalf("failed to open mixer: %v", err)
	}
	defer m.Close()

	c, err = resample.Convert(c, m.Format())
	if err != nil {
		log.Fatalf("failed to convert to device format: %v", err)
	}

	done := make(chan int, 1)
	m.SetChannelFinishedHandler(func(ch int) { done <- ch })

	m.SetVolume(-1, *volume)

	var ch int
	if *fadeIn > 0 {
		ch, err = m.FadeInChannelTimed(-1, c, *loops, *fadeIn, *duration)
	} else {
		ch, err = m.PlayChannelTimed(-1, c, *loops, *duration)
	}
	if err != nil {
		log.Fatalf("playback failed: %v", err)
	}
	log.Printf("Playing on channel %d (Ctrl-C to stop)", ch)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-done:
		log.Printf("Playback finished")
	case sig := <-sigChan:
		log.Printf("Received %v signal", sig)
		if *fadeOut > 0 && m.GetChannelFading(ch) != audio.FadingOut {
			log.Printf("Fading out over %dms", *fadeOut)
			m.FadeOutChannel(ch, *fadeOut)
			<-done
		} else {
			m.HaltChannel(ch)
		}
	}
}
