// ABOUTME: Ogg Vorbis decoder
// ABOUTME: Decodes vorbis streams to int32 chunks via jfreymuth/oggvorbis
package decode

import (
	"fmt"
	"io"

	"github.com/chanmix/chanmix-go/pkg/audio"
	"github.com/jfreymuth/oggvorbis"
)

// LoadOGG decodes an Ogg Vorbis stream into a chunk.
func LoadOGG(r io.Reader) (*audio.Chunk, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode Ogg Vorbis: %w", err)
	}

	samples := make([]int32, len(data))
	for i, f := range data {
		samples[i] = floatTo24Bit(f)
	}

	return &audio.Chunk{
		Samples: samples,
		Format: audio.Format{
			SampleRate: format.SampleRate,
			Channels:   format.Channels,
			BitDepth:   16,
		},
	}, nil
}

// floatTo24Bit converts a [-1,1] float sample to the 24-bit range
func floatTo24Bit(f float32) int32 {
	v := int64(float64(f) * float64(audio.Max24Bit))
	return audio.ClampSample(v)
}
