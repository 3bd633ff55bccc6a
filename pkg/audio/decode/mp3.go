// ABOUTME: MP3 decoder
// ABOUTME: Decodes MP3 streams to int32 chunks via go-mp3
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/chanmix/chanmix-go/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// LoadMP3 decodes an MP3 stream into a chunk. The decoder always outputs
// 16-bit stereo at the stream's sample rate.
func LoadMP3(r io.Reader) (*audio.Chunk, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	pcm, err := io.ReadAll(d)
	if err != nil {
		return nil, fmt.Errorf("failed to read MP3 data: %w", err)
	}

	numSamples := len(pcm) / 2
	samples := make([]int32, numSamples)
	for i := 0; i < numSamples; i++ {
		s := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		samples[i] = audio.SampleFromInt16(s)
	}

	return &audio.Chunk{
		Samples: samples,
		Format: audio.Format{
			SampleRate: d.SampleRate(),
			Channels:   2,
			BitDepth:   16,
		},
	}, nil
}
