// ABOUTME: In-memory and null output backends
// ABOUTME: Capture records rendered samples, Discard drops them at real-time pace
package output

import (
	"fmt"
	"sync"
	"time"
)

// Capture is an in-memory output that records every sample written to it.
// It is used by tests and for offline rendering. Writes never block.
type Capture struct {
	mu         sync.Mutex
	samples    []int32
	sampleRate int
	channels   int
	open       bool
}

// NewCapture creates a new capture output
func NewCapture() *Capture {
	return &Capture{}
}

// Open initializes the capture buffer
func (c *Capture) Open(sampleRate, channels, bitDepth int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sampleRate = sampleRate
	c.channels = channels
	c.samples = c.samples[:0]
	c.open = true
	return nil
}

// Write records the samples
func (c *Capture) Write(samples []int32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return fmt.Errorf("output not initialized")
	}
	c.samples = append(c.samples, samples...)
	return nil
}

// Close marks the output closed
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.open = false
	return nil
}

// Samples returns a copy of everything written so far
func (c *Capture) Samples() []int32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]int32, len(c.samples))
	copy(out, c.samples)
	return out
}

// Frames returns the number of sample frames written so far
func (c *Capture) Frames() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channels <= 0 {
		return 0
	}
	return len(c.samples) / c.channels
}

// Reset discards everything written so far
func (c *Capture) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.samples = c.samples[:0]
}

// Discard is a null output that drops samples while sleeping for the
// real-time duration of each block, so playback timing stays realistic on
// machines without audio hardware.
type Discard struct {
	sampleRate int
	channels   int
	open       bool
}

// NewDiscard creates a new discard output
func NewDiscard() Output {
	return &Discard{}
}

// Open initializes the output
func (d *Discard) Open(sampleRate, channels, bitDepth int) error {
	d.sampleRate = sampleRate
	d.channels = channels
	d.open = true
	return nil
}

// Write sleeps for the duration of the block and drops it
func (d *Discard) Write(samples []int32) error {
	if !d.open {
		return fmt.Errorf("output not initialized")
	}
	frames := len(samples) / d.channels
	time.Sleep(time.Duration(frames) * time.Second / time.Duration(d.sampleRate))
	return nil
}

// Close marks the output closed
func (d *Discard) Close() error {
	d.open = false
	return nil
}
