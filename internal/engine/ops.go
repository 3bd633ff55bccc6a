// ABOUTME: Channel control operations of the mixing engine
// ABOUTME: Implements allocate, volume, play, fade, pause, halt and queries
package engine

import (
	"errors"
	"fmt"

	"github.com/chanmix/chanmix-go/pkg/audio"
)

var (
	ErrNoFreeChannels = errors.New("no free channels available")
	ErrInvalidChannel = errors.New("invalid channel")
	ErrNilChunk       = errors.New("tried to play a nil chunk")
	ErrFormatMismatch = errors.New("chunk format does not match device format")
)

// Allocate resizes the set of mixing channels and returns the new count.
// A negative n reads the count without changing it. Shrinking halts any
// channel above the new count, firing the finished callback for it.
func (e *Engine) Allocate(n int) int {
	e.mu.Lock()
	if n < 0 || n == len(e.channels) {
		n = len(e.channels)
		e.mu.Unlock()
		return n
	}

	var done []int
	for i := n; i < len(e.channels); i++ {
		if e.channels[i].playing {
			e.channels[i].halt()
			done = append(done, i)
		}
	}

	old := len(e.channels)
	if n < old {
		e.channels = e.channels[:n]
	} else {
		grown := make([]channel, n)
		copy(grown, e.channels)
		for i := old; i < n; i++ {
			grown[i].volume = audio.MaxVolume
		}
		e.channels = grown
	}
	fn := e.finished
	e.mu.Unlock()

	if fn != nil {
		for _, ch := range done {
			fn(ch)
		}
	}
	return n
}

// NumChannels returns the number of allocated mixing channels.
func (e *Engine) NumChannels() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.channels)
}

// Volume sets the volume of a channel and returns the resulting volume.
// Channel -1 addresses all channels and returns their average. A negative
// volume reads without changing. Values clamp to [0, audio.MaxVolume].
func (e *Engine) Volume(ch, volume int) int {
	if volume > audio.MaxVolume {
		volume = audio.MaxVolume
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if ch == -1 {
		sum := 0
		for i := range e.channels {
			if volume >= 0 {
				e.channels[i].volume = volume
			}
			sum += e.channels[i].volume
		}
		if len(e.channels) == 0 {
			return 0
		}
		return sum / len(e.channels)
	}

	if ch < 0 || ch >= len(e.channels) {
		return 0
	}
	if volume >= 0 {
		e.channels[ch].volume = volume
	}
	return e.channels[ch].volume
}

// Play starts a chunk on a channel. Channel -1 picks the first free channel.
// loops is the number of extra repeats (-1 = infinite). ticks is a hard stop
// in milliseconds (<= 0 = unlimited). Returns the channel used.
func (e *Engine) Play(ch int, chunk *audio.Chunk, loops, ticks int) (int, error) {
	return e.start(ch, chunk, loops, ticks, 0)
}

// FadeIn is Play with a volume ramp from silence over ms milliseconds.
func (e *Engine) FadeIn(ch int, chunk *audio.Chunk, loops, ms, ticks int) (int, error) {
	return e.start(ch, chunk, loops, ticks, ms)
}

func (e *Engine) start(ch int, chunk *audio.Chunk, loops, ticks, fadeMs int) (int, error) {
	if chunk == nil {
		return -1, ErrNilChunk
	}
	if chunk.Format.SampleRate != e.format.SampleRate || chunk.Format.Channels != e.format.Channels {
		return -1, fmt.Errorf("%w: chunk is %dHz %dch, device is %dHz %dch",
			ErrFormatMismatch,
			chunk.Format.SampleRate, chunk.Format.Channels,
			e.format.SampleRate, e.format.Channels)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if ch == -1 {
		for i := range e.channels {
			if !e.channels[i].playing {
				ch = i
				break
			}
		}
		if ch == -1 {
			return -1, ErrNoFreeChannels
		}
	} else if ch < 0 || ch >= len(e.channels) {
		return -1, fmt.Errorf("%w: %d", ErrInvalidChannel, ch)
	}

	c := &e.channels[ch]
	c.chunk = chunk
	c.pos = 0
	c.loops = loops
	c.playing = true
	c.paused = false
	c.fading = audio.NoFading
	c.expire = 0
	if ticks > 0 {
		c.expire = e.clock + e.msToFrames(ticks)
	}
	if fadeMs > 0 {
		c.fading = audio.FadingIn
		c.fadeStart = e.clock
		c.fadeFrames = e.msToFrames(fadeMs)
		c.fadeVolume = c.volume
		c.volume = 0
	}
	return ch, nil
}

// Pause pauses a channel, or all channels for -1. Paused channels keep
// their position and still count as playing. Channels that are not playing
// are unaffected.
func (e *Engine) Pause(ch int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ch == -1 {
		for i := range e.channels {
			if e.channels[i].playing {
				e.channels[i].paused = true
			}
		}
		return
	}
	if ch >= 0 && ch < len(e.channels) && e.channels[ch].playing {
		e.channels[ch].paused = true
	}
}

// Resume unpauses a channel, or all channels for -1.
func (e *Engine) Resume(ch int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ch == -1 {
		for i := range e.channels {
			e.channels[i].paused = false
		}
		return
	}
	if ch >= 0 && ch < len(e.channels) {
		e.channels[ch].paused = false
	}
}

// Halt stops a channel immediately, or all channels for -1, firing the
// finished callback for each channel that was playing.
func (e *Engine) Halt(ch int) {
	e.mu.Lock()
	var done []int
	if ch == -1 {
		for i := range e.channels {
			if e.channels[i].playing {
				e.channels[i].halt()
				done = append(done, i)
			}
		}
	} else if ch >= 0 && ch < len(e.channels) && e.channels[ch].playing {
		e.channels[ch].halt()
		done = append(done, ch)
	}
	fn := e.finished
	e.mu.Unlock()

	if fn != nil {
		for _, c := range done {
			fn(c)
		}
	}
}

// Expire schedules a channel to halt ticks milliseconds from now, or all
// channels for -1. ticks <= 0 cancels a pending expiration. Returns the
// number of channels touched, whether or not they are playing.
func (e *Engine) Expire(ch, ticks int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	set := func(i int) {
		if ticks > 0 {
			e.channels[i].expire = e.clock + e.msToFrames(ticks)
		} else {
			e.channels[i].expire = 0
		}
	}

	if ch == -1 {
		for i := range e.channels {
			set(i)
		}
		return len(e.channels)
	}
	if ch < 0 || ch >= len(e.channels) {
		return 0
	}
	set(ch)
	return 1
}

// FadeOut ramps a playing channel to silence over ms milliseconds and then
// halts it, or all channels for -1. Returns the number of channels set to
// fade. Channels already fading out, silent or not playing are skipped.
// ms <= 0 halts immediately.
func (e *Engine) FadeOut(ch, ms int) int {
	e.mu.Lock()
	var halted []int
	status := 0
	fade := func(i int) {
		c := &e.channels[i]
		if !c.playing || c.volume <= 0 || c.fading == audio.FadingOut {
			return
		}
		status++
		if ms <= 0 {
			c.halt()
			halted = append(halted, i)
			return
		}
		c.fading = audio.FadingOut
		c.fadeStart = e.clock
		c.fadeFrames = e.msToFrames(ms)
		c.fadeVolume = c.volume
	}

	if ch == -1 {
		for i := range e.channels {
			fade(i)
		}
	} else if ch >= 0 && ch < len(e.channels) {
		fade(ch)
	}
	fn := e.finished
	e.mu.Unlock()

	if fn != nil {
		for _, c := range halted {
			fn(c)
		}
	}
	return status
}

// SetFinished registers the channel-finished callback, replacing any
// previous one. A nil callback clears it. The callback runs on whichever
// goroutine triggers the finish: the render loop for natural ends, fades
// and expirations, the calling goroutine for explicit halts.
func (e *Engine) SetFinished(fn Finished) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.finished = fn
}

// Playing reports whether a channel is playing (1/0). Channel -1 returns
// the number of playing channels. Paused channels count as playing.
func (e *Engine) Playing(ch int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ch == -1 {
		n := 0
		for i := range e.channels {
			if e.channels[i].playing {
				n++
			}
		}
		return n
	}
	if ch < 0 || ch >= len(e.channels) {
		return 0
	}
	if e.channels[ch].playing {
		return 1
	}
	return 0
}

// Paused reports whether a channel is paused (1/0). Channel -1 returns the
// number of paused channels.
func (e *Engine) Paused(ch int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ch == -1 {
		n := 0
		for i := range e.channels {
			if e.channels[i].paused {
				n++
			}
		}
		return n
	}
	if ch < 0 || ch >= len(e.channels) {
		return 0
	}
	if e.channels[ch].paused {
		return 1
	}
	return 0
}

// Fading returns the fade state of a single channel.
func (e *Engine) Fading(ch int) audio.Fading {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ch < 0 || ch >= len(e.channels) {
		return audio.NoFading
	}
	return e.channels[ch].fading
}
