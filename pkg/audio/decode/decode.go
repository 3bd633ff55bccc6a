// ABOUTME: File loading entry point dispatching to per-format decoders
// ABOUTME: Picks a decoder by file extension
package decode

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chanmix/chanmix-go/pkg/audio"
)

// ErrUnsupportedFormat is returned for file types no decoder handles.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// LoadFile decodes an audio file into a chunk, picking the decoder from
// the file extension. Supported: .wav, .mp3, .flac, .ogg.
func LoadFile(path string) (*audio.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		return LoadWAV(f)
	case ".mp3":
		return LoadMP3(f)
	case ".flac":
		return LoadFLAC(f)
	case ".ogg":
		return LoadOGG(f)
	default:
		return nil, fmt.Errorf("%w: %s (supported: .wav, .mp3, .flac, .ogg)", ErrUnsupportedFormat, ext)
	}
}
