// ABOUTME: Software mixing engine with channel-based playback
// ABOUTME: Renders allocated channels into blocks and feeds an output device
package engine

import (
	"fmt"
	"sync"

	"github.com/chanmix/chanmix-go/pkg/audio"
	"github.com/chanmix/chanmix-go/pkg/audio/output"
)

// DefaultChannels is the number of mixing channels allocated on open.
const DefaultChannels = 8

// Finished is the channel-finished callback type. It receives the index of
// the channel that finished playback.
type Finished func(channel int)

// channel is the per-channel mixing state
type channel struct {
	chunk   *audio.Chunk
	pos     int // frame position within chunk
	loops   int // remaining extra repeats, -1 = infinite
	volume  int // 0..audio.MaxVolume
	playing bool
	paused  bool
	expire  int64 // engine clock frame at which to halt, 0 = never

	fading     audio.Fading
	fadeStart  int64 // engine clock frame at which the fade began
	fadeFrames int64 // fade length in frames
	fadeVolume int   // volume restored when the fade completes
}

// Engine mixes allocated channels into fixed-size blocks and writes them to
// an output device. All millisecond parameters are converted to frame counts
// against the engine clock, which advances only as blocks are rendered.
type Engine struct {
	mu       sync.Mutex
	format   audio.Format
	block    int // frames per render block
	out      output.Output
	channels []channel
	finished Finished
	clock    int64 // frames rendered since open

	done chan struct{}
	stop sync.Once
	wg   sync.WaitGroup
}

// New creates an engine and opens the output device.
func New(format audio.Format, blockFrames int, out output.Output) (*Engine, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("unsupported audio format %dHz %dch %dbit",
			format.SampleRate, format.Channels, format.BitDepth)
	}
	if blockFrames <= 0 {
		return nil, fmt.Errorf("invalid chunk size %d", blockFrames)
	}

	if err := out.Open(format.SampleRate, format.Channels, format.BitDepth); err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}

	e := &Engine{
		format:   format,
		block:    blockFrames,
		out:      out,
		channels: make([]channel, DefaultChannels),
		done:     make(chan struct{}),
	}
	for i := range e.channels {
		e.channels[i].volume = audio.MaxVolume
	}
	return e, nil
}

// Format returns the opened device format.
func (e *Engine) Format() audio.Format {
	return e.format
}

// Run starts the render loop. It returns immediately; rendering continues
// until Stop. The loop is paced by the blocking device write.
func (e *Engine) Run() {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		buf := make([]int32, e.block*e.format.Channels)
		for {
			select {
			case <-e.done:
				return
			default:
			}
			e.render(buf)
			if err := e.out.Write(buf); err != nil {
				return
			}
		}
	}()
}

// Stop signals the render loop to exit. It does not wait: a loop blocked in
// a device write only returns once the caller closes the output.
func (e *Engine) Stop() {
	e.stop.Do(func() { close(e.done) })
}

// Wait blocks until the render loop has exited.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// msToFrames converts a millisecond count to engine clock frames.
func (e *Engine) msToFrames(ms int) int64 {
	return int64(ms) * int64(e.format.SampleRate) / 1000
}

// render mixes one block of audio into buf. Channel volumes affected by
// fades update once per block, and expirations are checked at block
// granularity, matching the callback-driven behavior of hardware mixers.
func (e *Engine) render(buf []int32) {
	for i := range buf {
		buf[i] = 0
	}

	nch := e.format.Channels
	frames := len(buf) / nch

	e.mu.Lock()
	now := e.clock
	var done []int
	for i := range e.channels {
		c := &e.channels[i]
		if !c.playing || c.paused {
			continue
		}

		if c.expire > 0 && c.expire <= now {
			c.halt()
			done = append(done, i)
			continue
		}

		if c.fading != audio.NoFading {
			elapsed := now - c.fadeStart
			if elapsed >= c.fadeFrames {
				out := c.fading == audio.FadingOut
				c.volume = c.fadeVolume
				c.fading = audio.NoFading
				if out {
					c.halt()
					done = append(done, i)
					continue
				}
			} else if c.fading == audio.FadingOut {
				c.volume = int(int64(c.fadeVolume) * (c.fadeFrames - elapsed) / c.fadeFrames)
			} else {
				c.volume = int(int64(c.fadeVolume) * elapsed / c.fadeFrames)
			}
		}

		off := 0
		for off < frames && c.playing {
			total := c.chunk.Frames()
			if total == 0 {
				c.halt()
				done = append(done, i)
				break
			}
			n := frames - off
			if avail := total - c.pos; n > avail {
				n = avail
			}
			mixInto(buf[off*nch:(off+n)*nch], c.chunk.Samples[c.pos*nch:(c.pos+n)*nch], c.volume)
			c.pos += n
			off += n
			if c.pos >= total {
				if c.loops != 0 {
					if c.loops > 0 {
						c.loops--
					}
					c.pos = 0
				} else {
					c.halt()
					done = append(done, i)
				}
			}
		}
	}
	e.clock += int64(frames)
	fn := e.finished
	e.mu.Unlock()

	// Callbacks run outside the lock so a handler may call back into the
	// engine without deadlocking.
	if fn != nil {
		for _, ch := range done {
			fn(ch)
		}
	}
}

// halt resets a channel to the free state. Volume is preserved.
func (c *channel) halt() {
	c.playing = false
	c.paused = false
	c.pos = 0
	c.expire = 0
	c.fading = audio.NoFading
}

// mixInto adds src scaled by volume into dst, clamping to the sample range.
func mixInto(dst, src []int32, volume int) {
	for i, s := range src {
		v := int64(dst[i]) + int64(s)*int64(volume)/audio.MaxVolume
		dst[i] = audio.ClampSample(v)
	}
}
