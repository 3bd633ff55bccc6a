// ABOUTME: Audio type definitions
// ABOUTME: Defines audio formats, volume range and sample conversions
package audio

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// MaxVolume is the maximum mixing volume of a channel. Channel volumes
// range from 0 (silence) to MaxVolume (full volume).
const MaxVolume = 128

// Format describes PCM audio
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// Valid reports whether the format is one the mixer can open:
// positive sample rate, mono or stereo, 16 or 24 bit.
func (f Format) Valid() bool {
	if f.SampleRate <= 0 {
		return false
	}
	if f.Channels != 1 && f.Channels != 2 {
		return false
	}
	return f.BitDepth == 16 || f.BitDepth == 24
}

// Fading describes the fade state of a mixing channel
type Fading int

const (
	NoFading Fading = iota
	FadingOut
	FadingIn
)

func (f Fading) String() string {
	switch f {
	case FadingIn:
		return "fading in"
	case FadingOut:
		return "fading out"
	default:
		return "no fading"
	}
}

// SampleToInt16 converts int32 sample to int16 (for 16-bit playback)
func SampleToInt16(sample int32) int16 {
	// Right-shift to convert 24-bit (or 16-bit) to 16-bit range
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	// Left-shift to position 16-bit value in upper bits
	return int32(sample) << 8
}

// SampleTo24Bit converts int32 to 24-bit packed bytes (little-endian)
func SampleTo24Bit(sample int32) [3]byte {
	return [3]byte{
		byte(sample),
		byte(sample >> 8),
		byte(sample >> 16),
	}
}

// SampleFrom24Bit converts 24-bit packed bytes to int32 (little-endian)
func SampleFrom24Bit(b [3]byte) int32 {
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	// Sign extend from 24-bit to 32-bit
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF
	}
	return val
}

// ClampSample clamps a mixed value to the 24-bit sample range
func ClampSample(v int64) int32 {
	if v > Max24Bit {
		return Max24Bit
	}
	if v < Min24Bit {
		return Min24Bit
	}
	return int32(v)
}
