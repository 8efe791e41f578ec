package audio

import (
	"encoding/binary"
	"time"
)

const (
	WAVMIMEType   = "audio/wav"
	wavHeaderSize = 44
	bitsPerSample = 16
)

// EncodeWAV wraps signed 16-bit little-endian PCM in a canonical RIFF/WAVE header.
func EncodeWAV(pcm []byte, sampleRate int, channels int) []byte {
	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign

	out := make([]byte, wavHeaderSize+len(pcm))
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+len(pcm)))
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(out[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:36], bitsPerSample)
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(len(pcm)))
	copy(out[wavHeaderSize:], pcm)
	return out
}

// PCMDuration is the play time of n bytes of 16-bit PCM.
func PCMDuration(n int, sampleRate int, channels int) time.Duration {
	byteRate := sampleRate * channels * bitsPerSample / 8
	if byteRate <= 0 || n <= 0 {
		return 0
	}
	return time.Duration(int64(n) * int64(time.Second) / int64(byteRate))
}
