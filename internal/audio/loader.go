// Package audio loads whole audio files into mono float64 PCM, the input
// shape the frame-pipeline engine consumes. It is adapted from the
// teacher's streaming, stereo-int16 player decoders into a single-shot,
// mono-float64 loader: an encode session needs the whole signal in memory
// once, not a seekable playback stream.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// LoadFile decodes path (wav/mp3/flac/ogg, detected by extension) into mono
// float64 samples in [-1,1] plus its sample rate.
func LoadFile(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("audio: opening %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return loadWAV(f)
	case ".mp3":
		return loadMP3(f)
	case ".flac":
		return loadFLAC(f)
	case ".ogg":
		return loadOGG(f)
	default:
		return nil, 0, fmt.Errorf("audio: unsupported format %q", filepath.Ext(path))
	}
}

// downmix averages interleaved multi-channel samples into mono.
func downmix(interleaved []float64, channels int) []float64 {
	if channels <= 1 {
		return interleaved
	}
	frames := len(interleaved) / channels
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			sum += interleaved[i*channels+ch]
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}

func loadWAV(f *os.File) ([]float64, int, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("audio: invalid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("audio: reading WAV PCM data: %w", err)
	}

	channels := buf.Format.NumChannels
	sampleRate := buf.Format.SampleRate
	maxVal := float64(int64(1) << uint(buf.SourceBitDepth-1))
	if buf.SourceBitDepth == 0 {
		maxVal = 32768
	}

	interleaved := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		interleaved[i] = float64(v) / maxVal
	}
	return downmix(interleaved, channels), sampleRate, nil
}

func loadMP3(f *os.File) ([]float64, int, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, 0, fmt.Errorf("audio: decoding MP3: %w", err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil && err != io.EOF {
		return nil, 0, fmt.Errorf("audio: reading MP3 PCM: %w", err)
	}

	// go-mp3 always produces 16-bit stereo LE PCM.
	const channels = 2
	numSamples := len(raw) / 2
	interleaved := make([]float64, numSamples)
	for i := 0; i < numSamples; i++ {
		s := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		interleaved[i] = float64(s) / 32768
	}
	return downmix(interleaved, channels), dec.SampleRate(), nil
}

func loadFLAC(f *os.File) ([]float64, int, error) {
	stream, err := flac.New(f)
	if err != nil {
		return nil, 0, fmt.Errorf("audio: decoding FLAC: %w", err)
	}

	channels := int(stream.Info.NChannels)
	bps := int(stream.Info.BitsPerSample)
	sampleRate := int(stream.Info.SampleRate)
	maxVal := float64(int64(1) << uint(bps-1))

	var interleaved []float64
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("audio: parsing FLAC frame: %w", err)
		}
		nSamples := int(frame.Subframes[0].NSamples)
		for i := 0; i < nSamples; i++ {
			for ch := 0; ch < channels; ch++ {
				interleaved = append(interleaved, float64(frame.Subframes[ch].Samples[i])/maxVal)
			}
		}
	}
	return downmix(interleaved, channels), sampleRate, nil
}

func loadOGG(f *os.File) ([]float64, int, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, 0, fmt.Errorf("audio: decoding OGG: %w", err)
	}
	channels := reader.Channels()
	sampleRate := reader.SampleRate()

	buf := make([]float32, 4096)
	var interleaved []float64
	for {
		n, err := reader.Read(buf)
		for i := 0; i < n; i++ {
			interleaved = append(interleaved, float64(buf[i]))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("audio: reading OGG samples: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return downmix(interleaved, channels), sampleRate, nil
}
