//go:build portaudio

// ABOUTME: PortAudio-based audio output implementation
// ABOUTME: Alternative device backend using the portaudio library
package output

import (
	"fmt"
	"log"

	"github.com/chanmix/chanmix-go/pkg/audio"
	"github.com/gordonklaus/portaudio"
)

// PortAudio output implementation using the portaudio library
type PortAudio struct {
	stream     *portaudio.Stream
	buf        []int16
	sampleRate int
	channels   int
	ready      bool
}

// NewPortAudio creates a new PortAudio output
func NewPortAudio() Output {
	return &PortAudio{}
}

// Open initializes PortAudio
func (p *PortAudio) Open(sampleRate, channels, bitDepth int) error {
	if bitDepth != 16 {
		log.Printf("Warning: portaudio backend outputs 16-bit, ignoring requested bitDepth=%d", bitDepth)
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	p.sampleRate = sampleRate
	p.channels = channels
	p.ready = true

	log.Printf("PortAudio output initialized: %dHz, %d channels", sampleRate, channels)

	return nil
}

// Write outputs audio samples (blocks until written)
func (p *PortAudio) Write(samples []int32) error {
	if !p.ready {
		return fmt.Errorf("output not initialized")
	}

	// The stream is opened lazily on the first write, when the block size
	// is known. Blocking-mode portaudio writes a full buffer per call.
	if p.stream == nil {
		p.buf = make([]int16, len(samples))
		stream, err := portaudio.OpenDefaultStream(
			0, p.channels, float64(p.sampleRate), len(samples)/p.channels, &p.buf)
		if err != nil {
			return fmt.Errorf("failed to open portaudio stream: %w", err)
		}
		if err := stream.Start(); err != nil {
			stream.Close()
			return fmt.Errorf("failed to start portaudio stream: %w", err)
		}
		p.stream = stream
	}

	if len(samples) != len(p.buf) {
		return fmt.Errorf("block size changed: got %d samples, want %d", len(samples), len(p.buf))
	}

	for i, s := range samples {
		p.buf[i] = audio.SampleToInt16(s)
	}

	if err := p.stream.Write(); err != nil {
		return fmt.Errorf("portaudio write failed: %w", err)
	}

	return nil
}

// Close releases resources
func (p *PortAudio) Close() error {
	if p.stream != nil {
		p.stream.Stop()
		p.stream.Close()
		p.stream = nil
	}
	if p.ready {
		p.ready = false
		return portaudio.Terminate()
	}
	return nil
}
