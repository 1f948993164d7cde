package subsynth

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
)

// renderBlockFrames is the block size used for offline rendering; parameter
// changes land on these boundaries just as they would on a device buffer.
const renderBlockFrames = 512

// RenderSeconds renders the synth's next `seconds` of output and returns the
// interleaved stereo samples. Notes must be triggered (or an arpeggiator
// armed) beforehand or mid-render via the parameter queue.
func RenderSeconds(s *Synth, seconds float64) []float32 {
	frames := int(seconds * float64(s.SampleRate()))
	if frames <= 0 {
		return nil
	}
	out := make([]float32, frames*2)
	for off := 0; off < frames; off += renderBlockFrames {
		n := frames - off
		if n > renderBlockFrames {
			n = renderBlockFrames
		}
		s.Process(out[off*2 : (off+n)*2])
	}
	return out
}

// EncodeWAVFloat32LE wraps samples in a WAV container (IEEE float, 32-bit
// little endian).
func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3) // IEEE float
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}

// DecodeWAVFloat32 parses a WAV container produced by EncodeWAVFloat32LE (or
// any 32-bit IEEE float WAV). On failure it returns nil samples and an error.
func DecodeWAVFloat32(data []byte) (samples []float32, sampleRate, channels int, err error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, 0, errors.New("not a RIFF/WAVE file")
	}
	var haveFmt bool
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(data) {
			return nil, 0, 0, errors.New("truncated chunk")
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, 0, errors.New("short fmt chunk")
			}
			format := binary.LittleEndian.Uint16(data[body:])
			bits := binary.LittleEndian.Uint16(data[body+14:])
			if format != 3 || bits != 32 {
				return nil, 0, 0, errors.New("unsupported sample format (want 32-bit float)")
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2:]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4:]))
			haveFmt = true
		case "data":
			if !haveFmt {
				return nil, 0, 0, errors.New("data chunk before fmt")
			}
			n := size / 4
			samples = make([]float32, n)
			for i := 0; i < n; i++ {
				bits := binary.LittleEndian.Uint32(data[body+i*4:])
				samples[i] = math.Float32frombits(bits)
			}
			return samples, sampleRate, channels, nil
		}
		pos = body + size
		if size%2 == 1 {
			pos++ // chunks are word aligned
		}
	}
	return nil, 0, 0, errors.New("no data chunk")
}

// WriteWAVFile renders nothing itself; it wraps already-rendered stereo
// samples and writes them to path.
func WriteWAVFile(path string, samples []float32, sampleRate int) error {
	return os.WriteFile(path, EncodeWAVFloat32LE(samples, sampleRate, 2), 0o644)
}
