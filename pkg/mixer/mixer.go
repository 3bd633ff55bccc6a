// ABOUTME: Mixer type owning the audio device and forwarding channel controls
// ABOUTME: Thin surface over the mixing engine with open/closed lifecycle
package mixer

import (
	"fmt"
	"sync"

	"github.com/chanmix/chanmix-go/internal/engine"
	"github.com/chanmix/chanmix-go/pkg/audio"
	"github.com/chanmix/chanmix-go/pkg/audio/output"
)

// MaxVolume is the maximum channel volume.
const MaxVolume = audio.MaxVolume

// ChannelFinishedHandler receives the index of a channel that finished
// playback. It is invoked from the engine's mixing goroutine (or from the
// goroutine calling HaltChannel), so it must not touch caller state without
// external synchronization.
type ChannelFinishedHandler func(channel int)

// Mixer owns an open audio output device and exposes channel playback
// controls. Construct with New or NewWithOutput; release with Close.
// A Mixer handle must not be used concurrently with its Close.
type Mixer struct {
	mu   sync.Mutex
	eng  *engine.Engine
	out  output.Output
	open bool
}

// New opens the default audio output device (oto) and starts the mixer.
//
// sampleRate is the output frequency in Hz, bitDepth the output sample
// format (16 or 24), channels the output channel count (1 = mono,
// 2 = stereo), and chunkFrames the number of sample frames mixed per block.
// Larger blocks lower CPU usage, smaller blocks reduce control latency;
// 1024 is a reasonable default at 44.1kHz.
func New(sampleRate, bitDepth, channels, chunkFrames int) (*Mixer, error) {
	return NewWithOutput(sampleRate, bitDepth, channels, chunkFrames, output.NewOto())
}

// NewWithOutput opens the mixer against a caller-supplied output backend.
func NewWithOutput(sampleRate, bitDepth, channels, chunkFrames int, out output.Output) (*Mixer, error) {
	format := audio.Format{SampleRate: sampleRate, Channels: channels, BitDepth: bitDepth}
	eng, err := engine.New(format, chunkFrames, out)
	if err != nil {
		return nil, fmt.Errorf("failed to open mixer: %w", err)
	}

	m := &Mixer{eng: eng, out: out, open: true}
	eng.Run()
	return m, nil
}

// Close stops mixing and closes the audio device. Close is idempotent: a
// second call is a no-op, so the device is never released twice.
func (m *Mixer) Close() error {
	m.mu.Lock()
	if !m.open {
		m.mu.Unlock()
		return nil
	}
	m.open = false
	m.mu.Unlock()

	m.eng.Stop()
	// Closing the output unblocks a render loop stuck in a device write
	err := m.out.Close()
	m.eng.Wait()
	return err
}

// IsOpen reports whether the mixer still owns the audio device.
func (m *Mixer) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Format returns the opened device format.
func (m *Mixer) Format() audio.Format {
	return m.eng.Format()
}

// engine returns the engine while open, nil after Close. The mixer lock is
// not held across engine calls so a finished handler may call back in.
func (m *Mixer) engine() *engine.Engine {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return nil
	}
	return m.eng
}

// AllocateChannels sets the number of mixing channels and returns the
// resulting count. A negative n reads the count without changing it.
// Shrinking halts any channel above the new count.
func (m *Mixer) AllocateChannels(n int) int {
	e := m.engine()
	if e == nil {
		return 0
	}
	return e.Allocate(n)
}

// GetNumChannels returns the number of allocated mixing channels.
func (m *Mixer) GetNumChannels() int {
	e := m.engine()
	if e == nil {
		return 0
	}
	return e.NumChannels()
}

// SetVolume sets the volume of a channel, from 0 to MaxVolume, and returns
// the resulting volume. Channel -1 sets all channels and returns their
// average.
func (m *Mixer) SetVolume(channel, volume int) int {
	e := m.engine()
	if e == nil {
		return 0
	}
	return e.Volume(channel, volume)
}

// GetVolume returns the volume of a channel, or the average across all
// channels for -1.
func (m *Mixer) GetVolume(channel int) int {
	e := m.engine()
	if e == nil {
		return 0
	}
	return e.Volume(channel, -1)
}

// PlayChannel plays a chunk on a channel, or the first free channel for -1.
// loops is the number of extra repeats: 0 plays the chunk once, -1 loops
// forever. Returns the channel the chunk is playing on.
func (m *Mixer) PlayChannel(channel int, chunk *audio.Chunk, loops int) (int, error) {
	return m.PlayChannelTimed(channel, chunk, loops, -1)
}

// PlayChannelTimed is PlayChannel with a hard stop after ticks
// milliseconds, regardless of remaining loops. ticks -1 means no limit.
func (m *Mixer) PlayChannelTimed(channel int, chunk *audio.Chunk, loops, ticks int) (int, error) {
	e := m.engine()
	if e == nil {
		return -1, ErrClosed
	}
	return e.Play(channel, chunk, loops, ticks)
}

// FadeInChannel is PlayChannel with a fade from silence to the channel
// volume over ms milliseconds.
func (m *Mixer) FadeInChannel(channel int, chunk *audio.Chunk, loops, ms int) (int, error) {
	return m.FadeInChannelTimed(channel, chunk, loops, ms, -1)
}

// FadeInChannelTimed is FadeInChannel with a hard stop after ticks
// milliseconds.
func (m *Mixer) FadeInChannelTimed(channel int, chunk *audio.Chunk, loops, ms, ticks int) (int, error) {
	e := m.engine()
	if e == nil {
		return -1, ErrClosed
	}
	return e.FadeIn(channel, chunk, loops, ms, ticks)
}

// PauseChannel pauses a channel, or all channels for -1. Pausing a channel
// that is not playing is a no-op.
func (m *Mixer) PauseChannel(channel int) {
	if e := m.engine(); e != nil {
		e.Pause(channel)
	}
}

// ResumeChannel resumes a paused channel, or all channels for -1.
func (m *Mixer) ResumeChannel(channel int) {
	if e := m.engine(); e != nil {
		e.Resume(channel)
	}
}

// HaltChannel stops a channel immediately and frees it for reuse, or stops
// all channels for -1. The finished handler fires for each halted channel.
func (m *Mixer) HaltChannel(channel int) {
	if e := m.engine(); e != nil {
		e.Halt(channel)
	}
}

// ExpireChannel halts a channel ticks milliseconds from now, or all
// channels for -1. ticks -1 cancels a pending expiration. Returns the
// number of channels scheduled, whether or not they are playing.
func (m *Mixer) ExpireChannel(channel, ticks int) int {
	e := m.engine()
	if e == nil {
		return 0
	}
	return e.Expire(channel, ticks)
}

// FadeOutChannel fades a playing channel to silence over ms milliseconds
// and then halts it, or all channels for -1. Returns the number of
// channels set to fade out.
func (m *Mixer) FadeOutChannel(channel, ms int) int {
	e := m.engine()
	if e == nil {
		return 0
	}
	return e.FadeOut(channel, ms)
}

// SetChannelFinishedHandler registers the handler invoked when any channel
// finishes playback, replacing any previous handler. A nil handler clears
// it.
func (m *Mixer) SetChannelFinishedHandler(fn ChannelFinishedHandler) {
	e := m.engine()
	if e == nil {
		return
	}
	if fn == nil {
		e.SetFinished(nil)
		return
	}
	e.SetFinished(engine.Finished(fn))
}

// IsChannelPlaying reports whether a channel is playing (1/0), or the
// number of playing channels for -1. Paused channels count as playing.
func (m *Mixer) IsChannelPlaying(channel int) int {
	e := m.engine()
	if e == nil {
		return 0
	}
	return e.Playing(channel)
}

// IsChannelPaused reports whether a channel is paused (1/0), or the number
// of paused channels for -1.
func (m *Mixer) IsChannelPaused(channel int) int {
	e := m.engine()
	if e == nil {
		return 0
	}
	return e.Paused(channel)
}

// GetChannelFading returns the fade state of a single channel.
func (m *Mixer) GetChannelFading(channel int) audio.Fading {
	e := m.engine()
	if e == nil {
		return audio.NoFading
	}
	return e.Fading(channel)
}
