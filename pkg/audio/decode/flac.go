// ABOUTME: FLAC decoder
// ABOUTME: Decodes FLAC streams frame by frame via mewkiz/flac
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/chanmix/chanmix-go/pkg/audio"
	"github.com/mewkiz/flac"
)

// LoadFLAC decodes a FLAC stream into a chunk.
func LoadFLAC(r io.Reader) (*audio.Chunk, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	channels := int(info.NChannels)
	bitDepth := int(info.BitsPerSample)

	var samples []int32
	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse FLAC frame: %w", err)
		}

		// Subframes are planar; interleave them
		n := len(frame.Subframes[0].Samples)
		for i := 0; i < n; i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, scaleFLACSample(frame.Subframes[ch].Samples[i], bitDepth))
			}
		}
	}

	return &audio.Chunk{
		Samples: samples,
		Format: audio.Format{
			SampleRate: int(info.SampleRate),
			Channels:   channels,
			BitDepth:   bitDepth,
		},
	}, nil
}

// scaleFLACSample left-justifies a native-depth sample into the 24-bit range
func scaleFLACSample(v int32, bitDepth int) int32 {
	switch bitDepth {
	case 8:
		return v << 16
	case 16:
		return v << 8
	case 24:
		return v
	default:
		return v << 8
	}
}
