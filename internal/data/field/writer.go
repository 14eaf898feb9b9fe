package field

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// WriteFloat32Field stores a scalar field in dir.
func WriteFloat32Field(dir, name string, values []float32, compress bool) error {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return writeField(dir, Metadata{Name: name, Count: len(values), DType: DTypeFloat32}, buf, compress)
}

// WriteLabelField stores a categorical field in dir.
func WriteLabelField(dir, name string, labels []uint32, compress bool) error {
	buf := make([]byte, len(labels)*4)
	for i, v := range labels {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return writeField(dir, Metadata{Name: name, Count: len(labels), DType: DTypeUint32, Categorical: true}, buf, compress)
}

func writeField(dir string, md Metadata, payload []byte, compress bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	md.Encoding = EncodingRaw
	if compress {
		md.Encoding = EncodingZstd
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		payload = enc.EncodeAll(payload, nil)
		enc.Close()
	}

	meta, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, MetadataFile), meta, 0644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ValuesFile), payload, 0644)
}

// EncodeColors packs RGB triples as little-endian float32, the layout a
// vertex color buffer is uploaded in.
func EncodeColors(rgb []float32) []byte {
	buf := make([]byte, len(rgb)*4)
	for i, v := range rgb {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// DecodeColors is the inverse of EncodeColors.
func DecodeColors(data []byte) ([]float32, error) {
	if len(data)%12 != 0 {
		return nil, fmt.Errorf("color buffer length %d is not a multiple of 12", len(data))
	}
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out, nil
}

// WriteColors writes a packed color buffer, zstd-compressed when compress is
// set.
func WriteColors(w io.Writer, rgb []float32, compress bool) error {
	data := EncodeColors(rgb)
	if !compress {
		_, err := w.Write(data)
		return err
	}
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadText parses whitespace- or comma-separated scalars. Blank lines and
// lines starting with '#' are skipped; "nan" is accepted.
func ReadText(r io.Reader) ([]float64, error) {
	var out []float64
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.FieldsFunc(text, func(c rune) bool {
			return c == ',' || c == ' ' || c == '\t'
		})
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid value %q", line, f)
			}
			out = append(out, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
