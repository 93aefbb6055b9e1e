// Package persist stores history logs and project snapshots on disk,
// with pluggable codecs and optional LZ4 compression selected by file
// extension.
package persist

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// Default indentation for pretty-printed JSON.
const defaultIndent = "  "

// Codec defines how a value is serialized and deserialized. Which
// codec handles which file is decided by CodecFor from the path
// suffix; codecs themselves are extension-agnostic.
type Codec interface {
	// Encode writes the value to the writer.
	Encode(w io.Writer, value any) error
	// Decode reads the value from the reader.
	Decode(r io.Reader, value any) error
}

// JSONCodec implements Codec using JSON with optional indentation.
type JSONCodec struct {
	// Indent is the indentation string; empty means compact JSON.
	Indent string
}

// NewJSONCodec creates a JSON codec with 2-space pretty-printing.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: defaultIndent}
}

// Encode implements Codec.Encode.
func (c *JSONCodec) Encode(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	if c.Indent != "" {
		encoder.SetIndent("", c.Indent)
	}

	err := encoder.Encode(value)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode.
func (c *JSONCodec) Decode(r io.Reader, value any) error {
	err := json.NewDecoder(r).Decode(value)
	if err != nil {
		return fmt.Errorf("json decode: %w", err)
	}

	return nil
}

// GobCodec implements Codec using gob encoding.
type GobCodec struct{}

// NewGobCodec creates a gob codec.
func NewGobCodec() *GobCodec {
	return &GobCodec{}
}

// Encode implements Codec.Encode.
func (c *GobCodec) Encode(w io.Writer, value any) error {
	err := gob.NewEncoder(w).Encode(value)
	if err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode.
func (c *GobCodec) Decode(r io.Reader, value any) error {
	err := gob.NewDecoder(r).Decode(value)
	if err != nil {
		return fmt.Errorf("gob decode: %w", err)
	}

	return nil
}

// LZ4Codec wraps another codec in an LZ4 frame stream. History logs
// are highly repetitive (whole file contents inside added and removed
// changes), so frames compress them well.
type LZ4Codec struct {
	Inner Codec
}

// NewLZ4Codec wraps the inner codec with LZ4 framing.
func NewLZ4Codec(inner Codec) *LZ4Codec {
	return &LZ4Codec{Inner: inner}
}

// Encode implements Codec.Encode, compressing the inner encoding.
func (c *LZ4Codec) Encode(w io.Writer, value any) error {
	zw := lz4.NewWriter(w)

	err := c.Inner.Encode(zw, value)
	if err != nil {
		zw.Close()

		return err
	}

	err = zw.Close()
	if err != nil {
		return fmt.Errorf("lz4 close: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode, decompressing before the inner decode.
func (c *LZ4Codec) Decode(r io.Reader, value any) error {
	return c.Inner.Decode(lz4.NewReader(r), value)
}
