package persist

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"

	"github.com/Sumatoshi-tech/timefold/pkg/history"
)

// ErrUnknownFormat reports a path whose extension maps to no codec.
var ErrUnknownFormat = errors.New("unknown persistence format")

// File extensions recognized by CodecFor.
const (
	jsonExtension = ".json"
	gobExtension  = ".gob"
	lz4Extension  = ".lz4"
)

// CodecFor selects a codec from the path's extension. Supported:
// .json, .gob, .json.lz4, .gob.lz4.
func CodecFor(path string) (Codec, error) {
	switch {
	case strings.HasSuffix(path, jsonExtension+lz4Extension):
		return NewLZ4Codec(NewJSONCodec()), nil
	case strings.HasSuffix(path, gobExtension+lz4Extension):
		return NewLZ4Codec(NewGobCodec()), nil
	case strings.HasSuffix(path, jsonExtension):
		return NewJSONCodec(), nil
	case strings.HasSuffix(path, gobExtension):
		return NewGobCodec(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// SaveLog writes a history log to path atomically: the encoding goes to
// a temp file in the same directory which is then renamed over the
// target, so a crash never leaves a half-written log behind.
func SaveLog(path string, log history.Log) error {
	codec, err := CodecFor(path)
	if err != nil {
		return err
	}

	return writeAtomic(path, codec, log)
}

// LoadLog reads a history log from path. JSON documents are validated
// against the log schema before decoding, so a malformed or
// hand-damaged file is rejected up front.
func LoadLog(path string) (history.Log, error) {
	codec, err := CodecFor(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	if isJSON(path) {
		return decodeValidatedJSONLog(path, file)
	}

	var log history.Log

	err = codec.Decode(file, &log)
	if err != nil {
		return nil, fmt.Errorf("decode log: %w", err)
	}

	return log, nil
}

// SaveSnapshot writes a snapshot to path atomically.
func SaveSnapshot(path string, snap history.Snapshot) error {
	codec, err := CodecFor(path)
	if err != nil {
		return err
	}

	return writeAtomic(path, codec, snap)
}

// LoadSnapshot reads a snapshot from path.
func LoadSnapshot(path string) (history.Snapshot, error) {
	codec, err := CodecFor(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer file.Close()

	var snap history.Snapshot

	err = codec.Decode(file, &snap)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	return snap, nil
}

// isJSON reports whether the path carries a JSON payload, compressed or not.
func isJSON(path string) bool {
	return strings.HasSuffix(path, jsonExtension) ||
		strings.HasSuffix(path, jsonExtension+lz4Extension)
}

// decodeValidatedJSONLog recovers the raw JSON document (decompressing
// if needed), validates it against the schema, then unmarshals.
func decodeValidatedJSONLog(path string, file *os.File) (history.Log, error) {
	var reader io.Reader = file
	if strings.HasSuffix(path, lz4Extension) {
		reader = lz4.NewReader(file)
	}

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	err = history.ValidateLogJSON(raw)
	if err != nil {
		return nil, err
	}

	var log history.Log

	err = NewJSONCodec().Decode(bytes.NewReader(raw), &log)
	if err != nil {
		return nil, fmt.Errorf("decode log: %w", err)
	}

	return log, nil
}

// writeAtomic encodes the value to a temp file next to path and renames
// it into place.
func writeAtomic(path string, codec Codec, value any) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmpName := tmp.Name()

	err = codec.Encode(tmp, value)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return err
	}

	err = tmp.Close()
	if err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("close temp file: %w", err)
	}

	err = os.Rename(tmpName, path)
	if err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("rename into place: %w", err)
	}

	return nil
}
