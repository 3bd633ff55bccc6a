// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Used to convert between different sample rates using linear interpolation
package resample

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
	position   float64
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
	}
}

// Resample converts input samples to the output sample rate using linear
// interpolation. Both slices hold interleaved samples. Returns the number
// of output samples produced.
func (r *Resampler) Resample(input []int32, output []int32) int {
	if len(input) == 0 {
		return 0
	}

	inputFrames := len(input) / r.channels
	outputFrames := len(output) / r.channels

	outIdx := 0

	for outIdx < outputFrames {
		inputPos := r.position
		inputIdx := int(inputPos)

		if inputIdx >= inputFrames-1 {
			break
		}

		frac := inputPos - float64(inputIdx)

		for ch := 0; ch < r.channels; ch++ {
			sample1 := input[inputIdx*r.channels+ch]
			sample2 := input[(inputIdx+1)*r.channels+ch]

			interpolated := float64(sample1)*(1.0-frac) + float64(sample2)*frac
			output[outIdx*r.channels+ch] = int32(interpolated)
		}

		outIdx++
		r.position += r.ratio
	}

	// Keep the fractional part for the next block
	r.position -= float64(int(r.position))

	return outIdx * r.channels
}

// Reset resets the resampler state
func (r *Resampler) Reset() {
	r.position = 0.0
}

// OutputSamplesNeeded calculates how many output samples will be produced from input samples
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	inputFrames := inputSamples / r.channels
	outputFrames := int(float64(inputFrames) / r.ratio)
	return outputFrames * r.channels
}
