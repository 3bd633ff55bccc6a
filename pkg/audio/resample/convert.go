// ABOUTME: Whole-chunk format conversion
// ABOUTME: Combines channel remixing and rate conversion for decoded chunks
package resample

import (
	"fmt"

	"github.com/chanmix/chanmix-go/pkg/audio"
)

// Convert returns a chunk matching the target format. Channel layout is
// remixed first, then the rate is converted. The input chunk is not
// modified; if it already matches, it is returned as-is.
func Convert(chunk *audio.Chunk, target audio.Format) (*audio.Chunk, error) {
	if chunk == nil {
		return nil, fmt.Errorf("nil chunk")
	}
	if !target.Valid() {
		return nil, fmt.Errorf("unsupported target format %dHz %dch %dbit",
			target.SampleRate, target.Channels, target.BitDepth)
	}
	src := chunk.Format
	if src.SampleRate == target.SampleRate && src.Channels == target.Channels {
		return chunk, nil
	}

	samples := chunk.Samples
	channels := src.Channels

	switch {
	case channels == 1 && target.Channels == 2:
		samples = monoToStereo(samples)
		channels = 2
	case channels == 2 && target.Channels == 1:
		samples = stereoToMono(samples)
		channels = 1
	case channels != target.Channels:
		return nil, fmt.Errorf("cannot remix %d channels to %d", channels, target.Channels)
	}

	if src.SampleRate != target.SampleRate {
		r := New(src.SampleRate, target.SampleRate, channels)
		out := make([]int32, r.OutputSamplesNeeded(len(samples))+channels)
		n := r.Resample(samples, out)
		samples = out[:n]
	}

	return &audio.Chunk{
		Samples: samples,
		Format: audio.Format{
			SampleRate: target.SampleRate,
			Channels:   target.Channels,
			BitDepth:   target.BitDepth,
		},
	}, nil
}

// monoToStereo duplicates each frame into both channels
func monoToStereo(in []int32) []int32 {
	out := make([]int32, len(in)*2)
	for i, s := range in {
		out[i*2] = s
		out[i*2+1] = s
	}
	return out
}

// stereoToMono averages the two channels of each frame
func stereoToMono(in []int32) []int32 {
	frames := len(in) / 2
	out := make([]int32, frames)
	for i := 0; i < frames; i++ {
		out[i] = int32((int64(in[i*2]) + int64(in[i*2+1])) / 2)
	}
	return out
}
