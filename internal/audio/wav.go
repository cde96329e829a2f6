// Package audio provides utilities for WAV audio file handling.
package audio

import (
	"errors"
	"fmt"
)

// WAV format constants.
const (
	// HeaderSize is the size of a standard WAV file header in bytes.
	HeaderSize = 44

	// FormatPCM is the audio format code for uncompressed PCM.
	FormatPCM = 1
)

// Lyria output format constants (48 kHz stereo 16-bit PCM).
const (
	LyriaSampleRate    = 48000
	LyriaChannels      = 2
	LyriaBitsPerSample = 16
)

// ErrNotWAV means the bytes do not start with a RIFF/WAVE header.
var ErrNotWAV = errors.New("audio: not a WAV file")

// Header holds the decoded fields of a WAV file header.
type Header struct {
	AudioFormat   int
	Channels      int
	SampleRate    int
	BitsPerSample int
	DataSize      int
}

// IsWAV reports whether the bytes carry a RIFF/WAVE header.
func IsWAV(b []byte) bool {
	return len(b) >= HeaderSize &&
		string(b[0:4]) == "RIFF" &&
		string(b[8:12]) == "WAVE"
}

// ParseHeader decodes and validates a standard 44-byte WAV header.
func ParseHeader(b []byte) (*Header, error) {
	if !IsWAV(b) {
		return nil, ErrNotWAV
	}
	if string(b[12:16]) != "fmt " {
		return nil, fmt.Errorf("audio: missing fmt subchunk")
	}

	h := &Header{
		AudioFormat:   int(le16(b[20:22])),
		Channels:      int(le16(b[22:24])),
		SampleRate:    int(le32(b[24:28])),
		BitsPerSample: int(le16(b[34:36])),
		DataSize:      int(le32(b[40:44])),
	}

	if h.AudioFormat != FormatPCM {
		return nil, fmt.Errorf("audio: unsupported audio format %d", h.AudioFormat)
	}
	if h.Channels == 0 || h.SampleRate == 0 || h.BitsPerSample == 0 {
		return nil, fmt.Errorf("audio: invalid format fields in header")
	}

	return h, nil
}

// WrapRawPCM adds a WAV header to raw PCM data.
func WrapRawPCM(pcm []byte, sampleRate, channels, bitsPerSample int) []byte {
	dataSize := len(pcm)
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	header := make([]byte, HeaderSize)

	// RIFF header
	copy(header[0:4], "RIFF")
	PutLE32(header[4:8], uint32(36+dataSize))
	copy(header[8:12], "WAVE")

	// fmt subchunk
	copy(header[12:16], "fmt ")
	PutLE32(header[16:20], 16) // subchunk size
	PutLE16(header[20:22], FormatPCM)
	PutLE16(header[22:24], uint16(channels))
	PutLE32(header[24:28], uint32(sampleRate))
	PutLE32(header[28:32], uint32(byteRate))
	PutLE16(header[32:34], uint16(blockAlign))
	PutLE16(header[34:36], uint16(bitsPerSample))

	// data subchunk
	copy(header[36:40], "data")
	PutLE32(header[40:44], uint32(dataSize))

	return append(header, pcm...)
}

// EnsureWAV returns the bytes unchanged when they already carry a WAV
// header, otherwise wraps them as raw Lyria-format PCM.
func EnsureWAV(b []byte) []byte {
	if IsWAV(b) {
		return b
	}
	return WrapRawPCM(b, LyriaSampleRate, LyriaChannels, LyriaBitsPerSample)
}

// PutLE16 writes a uint16 value in little-endian format to a byte slice.
func PutLE16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

// PutLE32 writes a uint32 value in little-endian format to a byte slice.
func PutLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func le16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
