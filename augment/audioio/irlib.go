package audioio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// ErrIRNotFound is returned when an IRLB selector matches no response.
var ErrIRNotFound = errors.New("audioio: impulse response not found in library")

var (
	magicIRLB = [4]byte{'I', 'R', 'L', 'B'}
	magicINDX = [4]byte{'I', 'N', 'D', 'X'}
	magicIR   = [4]byte{'I', 'R', '-', '-'}
	magicMETA = [4]byte{'M', 'E', 'T', 'A'}
	magicAUDI = [4]byte{'A', 'U', 'D', 'I'}
)

type irlibHeader struct {
	Magic       [4]byte
	Version     uint16
	Count       uint32
	IndexOffset uint64
}

type irlibEntry struct {
	Offset     uint64
	SampleRate float64
	Channels   uint32
	Length     uint32
	name       string
}

// IRLibEntry describes one response in an IRLB library.
type IRLibEntry struct {
	Name       string
	SampleRate float64
	Channels   int
	Length     int
}

// ListIRLib returns the index of the IRLB library at path.
func ListIRLib(path string) ([]IRLibEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := readIRLibIndex(f)
	if err != nil {
		return nil, err
	}

	out := make([]IRLibEntry, len(entries))
	for i, e := range entries {
		out[i] = IRLibEntry{Name: e.name, SampleRate: e.SampleRate, Channels: int(e.Channels), Length: int(e.Length)}
	}
	return out, nil
}

// readIRLibFile decodes the response picked by selector, which is a name, a
// zero-based index or empty for the first entry.
func readIRLibFile(path, selector string) (Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return Signal{}, err
	}
	defer f.Close()

	entries, err := readIRLibIndex(f)
	if err != nil {
		return Signal{}, err
	}

	entry, err := selectEntry(entries, selector)
	if err != nil {
		return Signal{}, err
	}

	return readIRChunk(f, entry)
}

func selectEntry(entries []irlibEntry, selector string) (irlibEntry, error) {
	for _, e := range entries {
		if e.name == selector && selector != "" {
			return e, nil
		}
	}

	idx := 0
	if selector != "" {
		n, err := strconv.Atoi(selector)
		if err != nil {
			return irlibEntry{}, fmt.Errorf("%w: %q", ErrIRNotFound, selector)
		}
		idx = n
	}
	if idx < 0 || idx >= len(entries) {
		return irlibEntry{}, fmt.Errorf("%w: index %d of %d", ErrIRNotFound, idx, len(entries))
	}

	return entries[idx], nil
}

func readIRLibIndex(r io.ReadSeeker) ([]irlibEntry, error) {
	var hdr irlibHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("irlib: reading header: %w", err)
	}
	if hdr.Magic != magicIRLB {
		return nil, fmt.Errorf("irlib: invalid magic %q", hdr.Magic)
	}
	if hdr.Version != 1 {
		return nil, fmt.Errorf("irlib: unsupported version %d", hdr.Version)
	}

	if _, err := r.Seek(int64(hdr.IndexOffset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("irlib: seeking to index: %w", err)
	}

	var chunk struct {
		Magic [4]byte
		Size  uint64
	}
	if err := binary.Read(r, binary.LittleEndian, &chunk); err != nil {
		return nil, fmt.Errorf("irlib: reading INDX header: %w", err)
	}
	if chunk.Magic != magicINDX {
		return nil, fmt.Errorf("irlib: expected INDX chunk, got %q", chunk.Magic)
	}

	entries := make([]irlibEntry, 0, hdr.Count)
	for read := uint64(0); read < chunk.Size; {
		var fixed struct {
			Offset     uint64
			SampleRate float64
			Channels   uint32
			Length     uint32
		}
		if err := binary.Read(r, binary.LittleEndian, &fixed); err != nil {
			return nil, fmt.Errorf("irlib: reading index entry: %w", err)
		}

		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		category, err := readString(r)
		if err != nil {
			return nil, err
		}

		read += 24 + uint64(4+len(name)+len(category))
		entries = append(entries, irlibEntry{
			Offset:     fixed.Offset,
			SampleRate: fixed.SampleRate,
			Channels:   fixed.Channels,
			Length:     fixed.Length,
			name:       name,
		})
	}

	return entries, nil
}

func readIRChunk(r io.ReadSeeker, entry irlibEntry) (Signal, error) {
	if _, err := r.Seek(int64(entry.Offset), io.SeekStart); err != nil {
		return Signal{}, fmt.Errorf("irlib: seeking to %q: %w", entry.name, err)
	}

	var chunk struct {
		Magic [4]byte
		Size  uint64
	}
	if err := binary.Read(r, binary.LittleEndian, &chunk); err != nil {
		return Signal{}, fmt.Errorf("irlib: reading IR header: %w", err)
	}
	if chunk.Magic != magicIR {
		return Signal{}, fmt.Errorf("irlib: expected IR-- at offset %d, got %q", entry.Offset, chunk.Magic)
	}

	sampleRate := entry.SampleRate
	channels := int(entry.Channels)

	for read := uint64(0); read < chunk.Size; {
		var sub struct {
			Magic [4]byte
			Size  uint32
		}
		if err := binary.Read(r, binary.LittleEndian, &sub); err != nil {
			return Signal{}, fmt.Errorf("irlib: reading sub-chunk: %w", err)
		}
		read += 8 + uint64(sub.Size)

		switch sub.Magic {
		case magicMETA:
			var meta struct {
				SampleRate float64
				Channels   uint32
				Length     uint32
			}
			if err := binary.Read(r, binary.LittleEndian, &meta); err != nil {
				return Signal{}, fmt.Errorf("irlib: reading META: %w", err)
			}
			sampleRate, channels = meta.SampleRate, int(meta.Channels)

			// Name, description, category and tags follow.
			if _, err := r.Seek(int64(sub.Size)-16, io.SeekCurrent); err != nil {
				return Signal{}, fmt.Errorf("irlib: skipping META strings: %w", err)
			}

		case magicAUDI:
			raw := make([]byte, sub.Size)
			if _, err := io.ReadFull(r, raw); err != nil {
				return Signal{}, fmt.Errorf("irlib: reading AUDI data: %w", err)
			}
			if channels <= 0 || sampleRate <= 0 {
				return Signal{}, fmt.Errorf("irlib: %q has no valid format", entry.name)
			}

			halfs := make([]uint16, len(raw)/2)
			for i := range halfs {
				halfs[i] = binary.LittleEndian.Uint16(raw[2*i:])
			}

			mono := downmix(halfs, channels, func(h uint16) float64 { return float64(decodeF16(h)) })
			return Signal{Samples: mono, SampleRate: sampleRate}, nil

		default:
			if _, err := r.Seek(int64(sub.Size), io.SeekCurrent); err != nil {
				return Signal{}, fmt.Errorf("irlib: skipping sub-chunk %q: %w", sub.Magic, err)
			}
		}
	}

	return Signal{}, fmt.Errorf("irlib: no audio for %q", entry.name)
}

// readString reads a uint16-length-prefixed UTF-8 string.
func readString(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", fmt.Errorf("irlib: reading string length: %w", err)
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("irlib: reading string: %w", err)
	}
	return string(buf), nil
}

// decodeF16 converts an IEEE 754 half-precision value to float32.
func decodeF16(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := int((h >> 10) & 0x1F)
	frac := uint32(h & 0x3FF)

	var bits uint32
	switch exp {
	case 0:
		if frac == 0 {
			bits = sign
			break
		}
		// Subnormal: shift until the implicit bit appears.
		e, m := 0, frac
		for m&0x400 == 0 {
			m <<= 1
			e++
		}
		bits = sign | uint32(127-14-e)<<23 | (m&0x3FF)<<13
	case 31:
		bits = sign | 0x7F800000 | frac<<13
	default:
		bits = sign | uint32(exp+112)<<23 | frac<<13
	}

	return math.Float32frombits(bits)
}
