package history

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidLogDocument reports a serialized log that does not conform
// to the history log JSON schema.
var ErrInvalidLogDocument = errors.New("invalid history log document")

//go:embed log-schema.json
var logSchema []byte

// ValidateLogJSON checks a serialized log against the embedded JSON
// schema before it is decoded. It returns ErrInvalidLogDocument with
// the collected violations, or the underlying error if the document is
// not JSON at all.
func ValidateLogJSON(data []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(logSchema)
	docLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("validate log: %w", err)
	}

	if result.Valid() {
		return nil
	}

	descs := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		descs = append(descs, verr.Field()+": "+verr.Description())
	}

	return fmt.Errorf("%w: %s", ErrInvalidLogDocument, strings.Join(descs, "; "))
}
