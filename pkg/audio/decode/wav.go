// ABOUTME: WAV decoder
// ABOUTME: Decodes PCM WAV files to int32 chunks via go-audio
package decode

import (
	"fmt"
	"io"

	"github.com/chanmix/chanmix-go/pkg/audio"
	"github.com/go-audio/wav"
)

// LoadWAV decodes a PCM WAV stream into a chunk.
func LoadWAV(r io.ReadSeeker) (*audio.Chunk, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("not a valid WAV file")
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode WAV: %w", err)
	}

	bitDepth := int(d.BitDepth)
	samples := make([]int32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = scaleTo24Bit(v, bitDepth)
	}

	return &audio.Chunk{
		Samples: samples,
		Format: audio.Format{
			SampleRate: buf.Format.SampleRate,
			Channels:   buf.Format.NumChannels,
			BitDepth:   bitDepth,
		},
	}, nil
}

// scaleTo24Bit left-justifies a native-depth sample into the 24-bit range
func scaleTo24Bit(v, bitDepth int) int32 {
	switch bitDepth {
	case 8:
		// 8-bit WAV is unsigned
		return int32(v-128) << 16
	case 16:
		return int32(v) << 8
	case 24:
		return int32(v)
	case 32:
		return int32(v >> 8)
	default:
		return int32(v) << 8
	}
}
