// ABOUTME: Tests for the mixing engine
// ABOUTME: Drives render directly for deterministic playback verification
package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/chanmix/chanmix-go/pkg/audio"
	"github.com/chanmix/chanmix-go/pkg/audio/output"
)

// Test format: 8kHz mono, 80-frame blocks, so one block is exactly 10ms.
const (
	testRate  = 8000
	testBlock = 80
)

func testFormat() audio.Format {
	return audio.Format{SampleRate: testRate, Channels: 1, BitDepth: 16}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(testFormat(), testBlock, output.NewCapture())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e
}

// makeChunk builds a mono chunk of the given length filled with value
func makeChunk(frames int, value int32) *audio.Chunk {
	samples := make([]int32, frames)
	for i := range samples {
		samples[i] = value
	}
	return &audio.Chunk{Samples: samples, Format: testFormat()}
}

// renderBlocks renders n blocks and returns the concatenated output
func renderBlocks(e *Engine, n int) []int32 {
	var out []int32
	buf := make([]int32, testBlock)
	for i := 0; i < n; i++ {
		e.render(buf)
		out = append(out, buf...)
	}
	return out
}

type failingOutput struct{}

func (failingOutput) Open(sampleRate, channels, bitDepth int) error {
	return fmt.Errorf("no audio hardware")
}
func (failingOutput) Write(samples []int32) error { return nil }
func (failingOutput) Close() error                { return nil }

func TestNewRejectsBadParameters(t *testing.T) {
	tests := []struct {
		name   string
		format audio.Format
		block  int
	}{
		{"zero rate", audio.Format{SampleRate: 0, Channels: 2, BitDepth: 16}, testBlock},
		{"bad channels", audio.Format{SampleRate: 44100, Channels: 5, BitDepth: 16}, testBlock},
		{"bad depth", audio.Format{SampleRate: 44100, Channels: 2, BitDepth: 12}, testBlock},
		{"zero block", testFormat(), 0},
		{"negative block", testFormat(), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.format, tt.block, output.NewCapture()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewPropagatesDeviceError(t *testing.T) {
	_, err := New(testFormat(), testBlock, failingOutput{})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestAllocate(t *testing.T) {
	e := newTestEngine(t)

	if n := e.NumChannels(); n != DefaultChannels {
		t.Fatalf("expected %d default channels, got %d", DefaultChannels, n)
	}
	if n := e.Allocate(16); n != 16 {
		t.Errorf("expected 16, got %d", n)
	}
	if n := e.Allocate(-1); n != 16 {
		t.Errorf("read should not change count, got %d", n)
	}
	if n := e.Allocate(4); n != 4 {
		t.Errorf("expected 4, got %d", n)
	}
	if n := e.NumChannels(); n != 4 {
		t.Errorf("expected 4, got %d", n)
	}
}

func TestAllocateShrinkHaltsChannels(t *testing.T) {
	e := newTestEngine(t)

	var finished []int
	e.SetFinished(func(ch int) { finished = append(finished, ch) })

	ch, err := e.Play(6, makeChunk(1000, 100), -1, -1)
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if ch != 6 {
		t.Fatalf("expected channel 6, got %d", ch)
	}

	e.Allocate(4)
	if len(finished) != 1 || finished[0] != 6 {
		t.Errorf("expected finished callback for channel 6, got %v", finished)
	}
	if n := e.Playing(-1); n != 0 {
		t.Errorf("expected no playing channels, got %d", n)
	}
}

func TestAllocateGrowDefaultsVolume(t *testing.T) {
	e := newTestEngine(t)
	e.Allocate(12)
	if v := e.Volume(11, -1); v != audio.MaxVolume {
		t.Errorf("expected new channel at max volume, got %d", v)
	}
}

func TestVolume(t *testing.T) {
	e := newTestEngine(t)

	if v := e.Volume(0, 64); v != 64 {
		t.Errorf("expected 64, got %d", v)
	}
	if v := e.Volume(0, -1); v != 64 {
		t.Errorf("read back expected 64, got %d", v)
	}
	if v := e.Volume(0, 1000); v != audio.MaxVolume {
		t.Errorf("expected clamp to %d, got %d", audio.MaxVolume, v)
	}
	if v := e.Volume(99, 64); v != 0 {
		t.Errorf("invalid channel should return 0, got %d", v)
	}
}

func TestVolumeAllChannels(t *testing.T) {
	e := newTestEngine(t)

	if v := e.Volume(-1, 32); v != 32 {
		t.Errorf("expected average 32, got %d", v)
	}
	for i := 0; i < e.NumChannels(); i++ {
		if v := e.Volume(i, -1); v != 32 {
			t.Errorf("channel %d: expected 32, got %d", i, v)
		}
	}

	// Average read with mixed volumes
	e.Volume(0, 128)
	want := (128 + 32*(DefaultChannels-1)) / DefaultChannels
	if v := e.Volume(-1, -1); v != want {
		t.Errorf("expected average %d, got %d", want, v)
	}
}

func TestPlayErrors(t *testing.T) {
	e := newTestEngine(t)

	if _, err := e.Play(0, nil, 0, -1); !errors.Is(err, ErrNilChunk) {
		t.Errorf("expected ErrNilChunk, got %v", err)
	}
	if _, err := e.Play(50, makeChunk(10, 1), 0, -1); !errors.Is(err, ErrInvalidChannel) {
		t.Errorf("expected ErrInvalidChannel, got %v", err)
	}

	mismatched := &audio.Chunk{
		Samples: make([]int32, 100),
		Format:  audio.Format{SampleRate: 44100, Channels: 2, BitDepth: 16},
	}
	if _, err := e.Play(0, mismatched, 0, -1); !errors.Is(err, ErrFormatMismatch) {
		t.Errorf("expected ErrFormatMismatch, got %v", err)
	}
}

func TestPlayNoFreeChannels(t *testing.T) {
	e := newTestEngine(t)
	e.Allocate(2)

	chunk := makeChunk(1000, 1)
	for i := 0; i < 2; i++ {
		if _, err := e.Play(-1, chunk, -1, -1); err != nil {
			t.Fatalf("Play failed: %v", err)
		}
	}
	if _, err := e.Play(-1, chunk, 0, -1); !errors.Is(err, ErrNoFreeChannels) {
		t.Errorf("expected ErrNoFreeChannels, got %v", err)
	}
}

func TestPlayPicksFirstFree(t *testing.T) {
	e := newTestEngine(t)

	chunk := makeChunk(1000, 1)
	ch0, err := e.Play(-1, chunk, -1, -1)
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if ch0 != 0 {
		t.Errorf("expected channel 0, got %d", ch0)
	}
	ch1, _ := e.Play(-1, chunk, -1, -1)
	if ch1 != 1 {
		t.Errorf("expected channel 1, got %d", ch1)
	}

	e.Halt(0)
	ch, _ := e.Play(-1, chunk, -1, -1)
	if ch != 0 {
		t.Errorf("expected freed channel 0, got %d", ch)
	}
}

func TestRenderMixesAtVolume(t *testing.T) {
	e := newTestEngine(t)

	e.Volume(0, audio.MaxVolume)
	if _, err := e.Play(0, makeChunk(testBlock, 1000), 0, -1); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	out := renderBlocks(e, 1)
	if out[0] != 1000 {
		t.Errorf("expected full volume sample 1000, got %d", out[0])
	}

	e.Volume(0, audio.MaxVolume/2)
	e.Play(0, makeChunk(testBlock, 1000), 0, -1)
	out = renderBlocks(e, 1)
	if out[0] != 500 {
		t.Errorf("expected half volume sample 500, got %d", out[0])
	}
}

func TestRenderMixesTwoChannelsAdditively(t *testing.T) {
	e := newTestEngine(t)

	e.Play(0, makeChunk(testBlock, 1000), 0, -1)
	e.Play(1, makeChunk(testBlock, 300), 0, -1)
	out := renderBlocks(e, 1)
	if out[0] != 1300 {
		t.Errorf("expected mixed sample 1300, got %d", out[0])
	}
}

func TestRenderClampsMix(t *testing.T) {
	e := newTestEngine(t)

	e.Play(0, makeChunk(testBlock, audio.Max24Bit), 0, -1)
	e.Play(1, makeChunk(testBlock, audio.Max24Bit), 0, -1)
	out := renderBlocks(e, 1)
	if out[0] != audio.Max24Bit {
		t.Errorf("expected clamp at %d, got %d", audio.Max24Bit, out[0])
	}
}

func TestNaturalFinishFiresCallbackOnce(t *testing.T) {
	e := newTestEngine(t)

	var finished []int
	e.SetFinished(func(ch int) { finished = append(finished, ch) })

	// A chunk of one and a half blocks
	ch, err := e.Play(-1, makeChunk(testBlock*3/2, 700), 0, -1)
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if n := e.Playing(ch); n != 1 {
		t.Fatalf("expected playing, got %d", n)
	}

	out := renderBlocks(e, 3)
	if len(finished) != 1 || finished[0] != ch {
		t.Fatalf("expected one finished callback for channel %d, got %v", ch, finished)
	}
	if n := e.Playing(ch); n != 0 {
		t.Errorf("expected stopped, got %d", n)
	}

	// Tail after the chunk end must be silence
	if out[testBlock*3/2-1] != 700 {
		t.Errorf("expected last chunk sample 700, got %d", out[testBlock*3/2-1])
	}
	if out[testBlock*3/2] != 0 {
		t.Errorf("expected silence after chunk end, got %d", out[testBlock*3/2])
	}
}

func TestLoopsPlayExtraRepeats(t *testing.T) {
	e := newTestEngine(t)

	var count int
	e.SetFinished(func(int) { count++ })

	// One block long, one extra repeat: exactly two blocks of sound
	e.Play(0, makeChunk(testBlock, 900), 1, -1)
	out := renderBlocks(e, 3)

	if out[0] != 900 || out[testBlock] != 900 {
		t.Error("expected two repeats of the chunk")
	}
	if out[2*testBlock] != 0 {
		t.Errorf("expected silence after repeats, got %d", out[2*testBlock])
	}
	if count != 1 {
		t.Errorf("expected one finished callback, got %d", count)
	}
}

func TestInfiniteLoopKeepsPlaying(t *testing.T) {
	e := newTestEngine(t)

	e.Play(0, makeChunk(10, 500), -1, -1)
	out := renderBlocks(e, 20)
	if out[len(out)-1] != 500 {
		t.Errorf("expected looping sound, got %d", out[len(out)-1])
	}
	if n := e.Playing(0); n != 1 {
		t.Errorf("expected still playing, got %d", n)
	}
}

func TestEmptyChunkFinishesImmediately(t *testing.T) {
	e := newTestEngine(t)

	var count int
	e.SetFinished(func(int) { count++ })

	e.Play(0, &audio.Chunk{Format: testFormat()}, -1, -1)
	renderBlocks(e, 1)
	if count != 1 {
		t.Errorf("expected finished callback, got %d", count)
	}
	if n := e.Playing(0); n != 0 {
		t.Errorf("expected stopped, got %d", n)
	}
}

func TestPauseResume(t *testing.T) {
	e := newTestEngine(t)

	e.Play(0, makeChunk(testBlock*4, 800), 0, -1)
	renderBlocks(e, 1)

	e.Pause(0)
	if n := e.Paused(0); n != 1 {
		t.Fatalf("expected paused, got %d", n)
	}
	// Paused channels still count as playing
	if n := e.Playing(0); n != 1 {
		t.Errorf("paused channel should count as playing, got %d", n)
	}

	out := renderBlocks(e, 2)
	if out[0] != 0 {
		t.Errorf("expected silence while paused, got %d", out[0])
	}

	e.Resume(0)
	if n := e.Paused(0); n != 0 {
		t.Fatalf("expected resumed, got %d", n)
	}
	out = renderBlocks(e, 1)
	if out[0] != 800 {
		t.Errorf("expected playback to continue, got %d", out[0])
	}
}

func TestPauseAllAndCounts(t *testing.T) {
	e := newTestEngine(t)

	chunk := makeChunk(1000, 1)
	e.Play(0, chunk, -1, -1)
	e.Play(1, chunk, -1, -1)
	e.Play(2, chunk, -1, -1)

	e.Pause(-1)
	if n := e.Paused(-1); n != 3 {
		t.Errorf("expected 3 paused, got %d", n)
	}

	e.Resume(1)
	if n := e.Paused(-1); n != 2 {
		t.Errorf("expected 2 paused, got %d", n)
	}

	e.Resume(-1)
	if n := e.Paused(-1); n != 0 {
		t.Errorf("expected 0 paused, got %d", n)
	}
}

func TestPauseIgnoresIdleChannels(t *testing.T) {
	e := newTestEngine(t)
	e.Pause(-1)
	if n := e.Paused(-1); n != 0 {
		t.Errorf("pausing idle channels should be a no-op, got %d", n)
	}
}

func TestHaltAll(t *testing.T) {
	e := newTestEngine(t)

	var finished []int
	e.SetFinished(func(ch int) { finished = append(finished, ch) })

	chunk := makeChunk(1000, 1)
	e.Play(0, chunk, -1, -1)
	e.Play(3, chunk, -1, -1)

	e.Halt(-1)
	if n := e.Playing(-1); n != 0 {
		t.Errorf("expected no playing channels, got %d", n)
	}
	if len(finished) != 2 {
		t.Errorf("expected 2 finished callbacks, got %v", finished)
	}

	// Halting idle channels fires nothing
	finished = nil
	e.Halt(-1)
	if len(finished) != 0 {
		t.Errorf("expected no callbacks, got %v", finished)
	}
}

func TestExpireHaltsAtTick(t *testing.T) {
	e := newTestEngine(t)

	var count int
	e.SetFinished(func(int) { count++ })

	e.Play(0, makeChunk(testBlock*10, 600), -1, -1)

	// 30ms expiry = 3 blocks at 10ms per block
	if n := e.Expire(0, 30); n != 1 {
		t.Fatalf("expected 1 channel touched, got %d", n)
	}

	out := renderBlocks(e, 5)
	if out[3*testBlock-1] != 600 {
		t.Errorf("expected sound up to expiry, got %d", out[3*testBlock-1])
	}
	if out[3*testBlock] != 0 {
		t.Errorf("expected silence after expiry, got %d", out[3*testBlock])
	}
	if count != 1 {
		t.Errorf("expected one finished callback, got %d", count)
	}
}

func TestExpireAllAndCancel(t *testing.T) {
	e := newTestEngine(t)

	if n := e.Expire(-1, 100); n != DefaultChannels {
		t.Errorf("expected %d channels touched, got %d", DefaultChannels, n)
	}

	e.Play(0, makeChunk(testBlock*10, 600), -1, -1)
	e.Expire(0, 10)
	if n := e.Expire(0, -1); n != 1 {
		t.Errorf("expected 1 channel touched, got %d", n)
	}

	// Expiry was cancelled: still playing well past the old deadline
	renderBlocks(e, 5)
	if n := e.Playing(0); n != 1 {
		t.Errorf("expected still playing after cancelled expiry, got %d", n)
	}
}

func TestPlayTimedTicks(t *testing.T) {
	e := newTestEngine(t)

	// Infinite loops but a 20ms hard stop
	if _, err := e.Play(0, makeChunk(10, 400), -1, 20); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	renderBlocks(e, 3)
	if n := e.Playing(0); n != 0 {
		t.Errorf("expected hard stop after ticks, got %d", n)
	}
}

func TestFadeInRampsToFullVolume(t *testing.T) {
	e := newTestEngine(t)

	// 40ms fade = 4 blocks
	if _, err := e.FadeIn(0, makeChunk(testBlock*10, 1000), 0, 40, -1); err != nil {
		t.Fatalf("FadeIn failed: %v", err)
	}
	if f := e.Fading(0); f != audio.FadingIn {
		t.Fatalf("expected fading in, got %v", f)
	}

	out := renderBlocks(e, 5)

	// First block renders at elapsed 0: silence
	if out[0] != 0 {
		t.Errorf("expected silence at fade start, got %d", out[0])
	}
	// Second block at 1/4 of the ramp
	if got := out[testBlock]; got != 250 {
		t.Errorf("expected quarter volume 250, got %d", got)
	}
	// After the ramp, full volume and fade cleared
	if got := out[4*testBlock]; got != 1000 {
		t.Errorf("expected full volume 1000, got %d", got)
	}
	if f := e.Fading(0); f != audio.NoFading {
		t.Errorf("expected no fading, got %v", f)
	}
	if v := e.Volume(0, -1); v != audio.MaxVolume {
		t.Errorf("expected volume restored to %d, got %d", audio.MaxVolume, v)
	}
}

func TestFadeOutRampsAndHalts(t *testing.T) {
	e := newTestEngine(t)

	var finished []int
	e.SetFinished(func(ch int) { finished = append(finished, ch) })

	e.Play(0, makeChunk(testBlock*10, 1000), -1, -1)
	renderBlocks(e, 1)

	// 40ms fade-out = 4 blocks
	if n := e.FadeOut(0, 40); n != 1 {
		t.Fatalf("expected 1 channel fading, got %d", n)
	}
	if f := e.Fading(0); f != audio.FadingOut {
		t.Fatalf("expected fading out, got %v", f)
	}

	out := renderBlocks(e, 5)

	// First faded block at elapsed 0: still full volume
	if out[0] != 1000 {
		t.Errorf("expected full volume at fade start, got %d", out[0])
	}
	// Second block at 3/4 volume
	if got := out[testBlock]; got != 750 {
		t.Errorf("expected 750, got %d", got)
	}
	// Ramp complete: halted, silent, callback fired, volume restored
	if got := out[4*testBlock]; got != 0 {
		t.Errorf("expected silence after fade out, got %d", got)
	}
	if len(finished) != 1 || finished[0] != 0 {
		t.Errorf("expected finished callback for channel 0, got %v", finished)
	}
	if n := e.Playing(0); n != 0 {
		t.Errorf("expected stopped, got %d", n)
	}
	if v := e.Volume(0, -1); v != audio.MaxVolume {
		t.Errorf("expected volume restored, got %d", v)
	}
	if f := e.Fading(0); f != audio.NoFading {
		t.Errorf("expected no fading, got %v", f)
	}
}

func TestFadeOutSkipsIneligibleChannels(t *testing.T) {
	e := newTestEngine(t)

	chunk := makeChunk(testBlock*10, 1000)
	e.Play(0, chunk, -1, -1)
	e.Play(1, chunk, -1, -1)
	e.Volume(1, 0) // silent channel is skipped

	if n := e.FadeOut(-1, 40); n != 1 {
		t.Errorf("expected 1 channel set to fade, got %d", n)
	}
	// Already fading out: second call is a no-op
	if n := e.FadeOut(-1, 40); n != 0 {
		t.Errorf("expected 0, got %d", n)
	}
}

func TestFadeOutZeroMsHaltsImmediately(t *testing.T) {
	e := newTestEngine(t)

	var count int
	e.SetFinished(func(int) { count++ })

	e.Play(0, makeChunk(testBlock*10, 1000), -1, -1)
	if n := e.FadeOut(0, 0); n != 1 {
		t.Errorf("expected 1, got %d", n)
	}
	if n := e.Playing(0); n != 0 {
		t.Errorf("expected halted, got %d", n)
	}
	if count != 1 {
		t.Errorf("expected finished callback, got %d", count)
	}
}

func TestSetFinishedReplacesAndClears(t *testing.T) {
	e := newTestEngine(t)

	var first, second int
	e.SetFinished(func(int) { first++ })
	e.SetFinished(func(int) { second++ })

	e.Play(0, makeChunk(10, 1), 0, -1)
	renderBlocks(e, 1)
	if first != 0 || second != 1 {
		t.Errorf("expected only the replacing handler to fire, got first=%d second=%d", first, second)
	}

	e.SetFinished(nil)
	e.Play(0, makeChunk(10, 1), 0, -1)
	renderBlocks(e, 1)
	if second != 1 {
		t.Errorf("cleared handler must not fire, got %d", second)
	}
}

func TestHandlerMayCallBackIntoEngine(t *testing.T) {
	e := newTestEngine(t)

	// Re-trigger playback from inside the callback
	replayed := make(chan int, 1)
	chunk := makeChunk(10, 1)
	e.SetFinished(func(ch int) {
		e.SetFinished(nil)
		next, err := e.Play(-1, chunk, -1, -1)
		if err != nil {
			t.Errorf("Play from handler failed: %v", err)
		}
		replayed <- next
	})

	e.Play(0, chunk, 0, -1)
	renderBlocks(e, 1)

	select {
	case ch := <-replayed:
		if n := e.Playing(ch); n != 1 {
			t.Errorf("expected replayed channel playing, got %d", n)
		}
	default:
		t.Fatal("handler did not run")
	}
}

func TestRunAndStop(t *testing.T) {
	e := newTestEngine(t)

	var count int
	e.SetFinished(func(int) { count++ })

	e.Run()
	if _, err := e.Play(-1, makeChunk(testBlock, 100), 0, -1); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	e.Stop()
	e.Wait()
}
