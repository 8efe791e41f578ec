// Package media inspects downloaded or captured clips to find their
// container and play time, which drives playback progress.
package media

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dhowden/tag"
	"github.com/tcolgate/mp3"
)

var ErrUnrecognized = errors.New("unrecognized audio container")

// Info describes a probed clip. Duration is zero when the container is
// known but its length cannot be computed.
type Info struct {
	Format   string
	Duration time.Duration
}

// ProbeFile opens path and probes it.
func ProbeFile(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()
	return Probe(f)
}

// Probe sniffs the container of r and computes its duration where possible.
func Probe(r io.ReadSeeker) (Info, error) {
	head := make([]byte, 12)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return Info{}, fmt.Errorf("read header: %w", err)
	}
	head = head[:n]
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Info{}, err
	}

	if len(head) >= 12 && string(head[0:4]) == "RIFF" && string(head[8:12]) == "WAVE" {
		duration, err := wavDuration(r)
		if err != nil {
			return Info{}, err
		}
		return Info{Format: "wav", Duration: duration}, nil
	}

	if len(head) >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0 {
		return mp3Info(r)
	}

	_, fileType, err := tag.Identify(r)
	if _, seekErr := r.Seek(0, io.SeekStart); seekErr != nil {
		return Info{}, seekErr
	}
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrUnrecognized, err)
	}
	switch fileType {
	case tag.MP3:
		return mp3Info(r)
	case tag.UnknownFileType:
		return Info{}, ErrUnrecognized
	default:
		return Info{Format: string(fileType)}, nil
	}
}

func mp3Info(r io.Reader) (Info, error) {
	duration, err := mp3Duration(r)
	if err != nil {
		return Info{}, err
	}
	return Info{Format: "mp3", Duration: duration}, nil
}

func mp3Duration(r io.Reader) (time.Duration, error) {
	decoder := mp3.NewDecoder(r)
	var frame mp3.Frame
	var skipped int
	var total time.Duration
	frames := 0

	for {
		err := decoder.Decode(&frame, &skipped)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return 0, err
		}
		frames++
		total += frame.Duration()
	}

	if frames == 0 {
		return 0, ErrUnrecognized
	}
	return total, nil
}

// maxFmtChunk bounds the fmt chunk; WAVE_FORMAT_EXTENSIBLE needs 40 bytes.
const maxFmtChunk = 1 << 16

// wavDuration walks the RIFF chunks for fmt and data.
func wavDuration(r io.Reader) (time.Duration, error) {
	if _, err := io.CopyN(io.Discard, r, 12); err != nil {
		return 0, err
	}

	var byteRate uint32
	header := make([]byte, 8)
	for {
		if _, err := io.ReadFull(r, header); err != nil {
			return 0, fmt.Errorf("wav: missing data chunk: %w", err)
		}
		id := string(header[0:4])
		size := binary.LittleEndian.Uint32(header[4:8])

		switch id {
		case "fmt ":
			if size < 16 {
				return 0, errors.New("wav: fmt chunk too small")
			}
			if size > maxFmtChunk {
				return 0, fmt.Errorf("wav: fmt chunk of %d bytes", size)
			}
			var body [16]byte
			if _, err := io.ReadFull(r, body[:]); err != nil {
				return 0, fmt.Errorf("wav: short fmt chunk: %w", err)
			}
			if _, err := io.CopyN(io.Discard, r, int64(size-16)+int64(size%2)); err != nil {
				return 0, fmt.Errorf("wav: short fmt chunk: %w", err)
			}
			byteRate = binary.LittleEndian.Uint32(body[8:12])
		case "data":
			if byteRate == 0 {
				return 0, errors.New("wav: data chunk before fmt chunk")
			}
			return time.Duration(int64(size) * int64(time.Second) / int64(byteRate)), nil
		default:
			skip := int64(size) + int64(size%2)
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return 0, fmt.Errorf("wav: truncated %q chunk: %w", id, err)
			}
		}
	}
}
