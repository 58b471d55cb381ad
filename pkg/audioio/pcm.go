package audioio

// AudioChunk is a block of interleaved PCM16 samples.
type AudioChunk struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Bytes returns the samples as little-endian PCM16.
func (c *AudioChunk) Bytes() []byte {
	return SamplesToBytes(c.Samples)
}

// Duration returns the playback length of the chunk in seconds.
func (c *AudioChunk) Duration() float64 {
	if c.SampleRate == 0 || c.Channels == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate*c.Channels)
}

// Chunks splits interleaved samples into chunks of at most frames frames.
func Chunks(samples []int16, sampleRate, channels, frames int) []AudioChunk {
	size := frames * channels
	if size <= 0 {
		size = len(samples)
	}
	var out []AudioChunk
	for len(samples) > 0 {
		n := min(size, len(samples))
		out = append(out, AudioChunk{Samples: samples[:n], SampleRate: sampleRate, Channels: channels})
		samples = samples[n:]
	}
	return out
}

// SamplesToBytes converts int16 samples to little-endian PCM16 bytes.
func SamplesToBytes(samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		data[i*2] = byte(s)
		data[i*2+1] = byte(s >> 8)
	}
	return data
}

// MonoToStereo duplicates mono samples to both channels.
func MonoToStereo(samples []int16) []int16 {
	stereo := make([]int16, len(samples)*2)
	for i, s := range samples {
		stereo[i*2] = s
		stereo[i*2+1] = s
	}
	return stereo
}

// CalculateRMS returns the mean power of samples, normalized to 0..1.
func CalculateRMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return sum / float64(len(samples)) / (32767 * 32767)
}
