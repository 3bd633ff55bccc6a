// ABOUTME: Oto-based audio output implementation
// ABOUTME: Default device backend using the oto library
package output

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"

	"github.com/chanmix/chanmix-go/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

// Oto output implementation using oto library
type Oto struct {
	otoCtx     *oto.Context
	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	sampleRate int
	channels   int
	ready      bool
}

// NewOto creates a new Oto output
func NewOto() Output {
	return &Oto{}
}

// Open initializes the output device
func (o *Oto) Open(sampleRate, channels, bitDepth int) error {
	// oto only supports 16-bit output
	if bitDepth != 16 {
		log.Printf("Warning: oto only supports 16-bit output, ignoring requested bitDepth=%d", bitDepth)
	}

	// If already initialized with same format, reuse the existing context
	if o.otoCtx != nil && o.sampleRate == sampleRate && o.channels == channels {
		return nil
	}

	// oto only allows one context per process and cannot reinitialize
	if o.otoCtx != nil {
		return fmt.Errorf("audio device already open with %dHz %dch", o.sampleRate, o.channels)
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	o.otoCtx = ctx
	o.sampleRate = sampleRate
	o.channels = channels

	// Pipe-fed persistent player for continuous streaming
	o.pipeReader, o.pipeWriter = io.Pipe()
	o.player = o.otoCtx.NewPlayer(o.pipeReader)
	o.player.Play()

	o.ready = true

	log.Printf("Audio output initialized: %dHz, %d channels", sampleRate, channels)

	return nil
}

// Write outputs audio samples (blocks until written)
func (o *Oto) Write(samples []int32) error {
	if !o.ready {
		return fmt.Errorf("output not initialized")
	}

	// Convert int32 samples to int16 bytes for oto (16-bit output)
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(audio.SampleToInt16(s)))
	}

	// Write to pipe (which feeds the persistent player)
	if _, err := o.pipeWriter.Write(buf); err != nil {
		return fmt.Errorf("pipe write failed: %w", err)
	}

	return nil
}

// Close releases output resources
func (o *Oto) Close() error {
	if o.pipeWriter != nil {
		o.pipeWriter.Close()
		o.pipeWriter = nil
	}
	if o.player != nil {
		o.player.Close()
		o.player = nil
	}
	if o.pipeReader != nil {
		o.pipeReader.Close()
		o.pipeReader = nil
	}
	if o.otoCtx != nil {
		// oto contexts cannot be destroyed, only suspended
		o.otoCtx.Suspend()
		o.ready = false
	}
	return nil
}
