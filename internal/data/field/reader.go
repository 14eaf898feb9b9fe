// Package field reads and writes per-point scalar fields and color buffers.
package field

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// File names inside a field directory.
const (
	MetadataFile = "metadata.json"
	ValuesFile   = "values.bin"
)

// Supported dtypes and encodings.
const (
	DTypeFloat32 = "float32"
	DTypeUint32  = "uint32"

	EncodingRaw  = "raw"
	EncodingZstd = "zstd"
)

// ErrNotCategorical is returned by Labels for float fields.
var ErrNotCategorical = errors.New("field is not categorical")

// Metadata describes a stored field.
type Metadata struct {
	Name        string   `json:"name"`
	Count       int      `json:"count"`
	DType       string   `json:"dtype"`
	Encoding    string   `json:"encoding"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Categorical bool     `json:"categorical,omitempty"`
}

// Reader provides access to one field directory. Values are decoded once
// and kept in memory.
type Reader struct {
	basePath string
	metadata *Metadata
	decoder  *zstd.Decoder

	once sync.Once
	raw  []byte
	err  error
}

// NewReader opens a field directory and validates its metadata.
func NewReader(basePath string) (*Reader, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	r := &Reader{
		basePath: basePath,
		decoder:  decoder,
	}

	if err := r.loadMetadata(); err != nil {
		decoder.Close()
		return nil, fmt.Errorf("failed to load metadata: %w", err)
	}
	return r, nil
}

// Metadata returns the field metadata.
func (r *Reader) Metadata() *Metadata {
	return r.metadata
}

// Path returns the field directory.
func (r *Reader) Path() string {
	return r.basePath
}

func (r *Reader) loadMetadata() error {
	data, err := os.ReadFile(filepath.Join(r.basePath, MetadataFile))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", MetadataFile, err)
	}

	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return fmt.Errorf("failed to parse %s: %w", MetadataFile, err)
	}

	if md.DType == "" {
		md.DType = DTypeFloat32
	}
	if md.Encoding == "" {
		md.Encoding = EncodingRaw
	}
	if md.Name == "" {
		md.Name = filepath.Base(r.basePath)
	}
	switch md.DType {
	case DTypeFloat32, DTypeUint32:
	default:
		return fmt.Errorf("unsupported dtype: %s", md.DType)
	}
	switch md.Encoding {
	case EncodingRaw, EncodingZstd:
	default:
		return fmt.Errorf("unsupported encoding: %s", md.Encoding)
	}
	if md.Count < 0 {
		return fmt.Errorf("invalid count: %d", md.Count)
	}
	if md.DType == DTypeUint32 {
		md.Categorical = true
	}

	r.metadata = &md
	return nil
}

// readValues reads and, if needed, decompresses values.bin.
func (r *Reader) readValues() ([]byte, error) {
	r.once.Do(func() {
		data, err := os.ReadFile(filepath.Join(r.basePath, ValuesFile))
		if err != nil {
			r.err = err
			return
		}
		if r.metadata.Encoding == EncodingZstd {
			data, err = r.decoder.DecodeAll(data, nil)
			if err != nil {
				r.err = fmt.Errorf("zstd decompress failed: %w", err)
				return
			}
		}
		if want := r.metadata.Count * 4; len(data) != want {
			r.err = fmt.Errorf("values size mismatch: got %d bytes, expected %d", len(data), want)
			return
		}
		r.raw = data
	})
	return r.raw, r.err
}

// Values returns the field as float64 scalars. Label fields convert their
// integer ids.
func (r *Reader) Values() ([]float64, error) {
	raw, err := r.readValues()
	if err != nil {
		return nil, err
	}
	out := make([]float64, r.metadata.Count)
	for i := range out {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		if r.metadata.DType == DTypeUint32 {
			out[i] = float64(bits)
		} else {
			out[i] = float64(math.Float32frombits(bits))
		}
	}
	return out, nil
}

// Labels returns the integer ids of a categorical field.
func (r *Reader) Labels() ([]uint32, error) {
	if r.metadata.DType != DTypeUint32 {
		return nil, fmt.Errorf("%w: %s", ErrNotCategorical, r.metadata.Name)
	}
	raw, err := r.readValues()
	if err != nil {
		return nil, err
	}
	out := make([]uint32, r.metadata.Count)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return out, nil
}

// Close releases the decoder.
func (r *Reader) Close() {
	if r.decoder != nil {
		r.decoder.Close()
	}
}
