package document

import (
	"errors"
	"fmt"

	"github.com/usestring/json2gql/pkg/typesystem"
)

// ErrUnsupportedFormat is returned for inputs whose format cannot be decoded.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Decode decodes data in format f.
func Decode(data []byte, f Format) (typesystem.Value, error) {
	switch f {
	case JSON:
		return DecodeJSON(data)
	case NDJSON:
		return DecodeNDJSON(data)
	case YAML:
		return DecodeYAML(data)
	case CSV:
		return DecodeCSV(data, ',')
	case TSV:
		return DecodeCSV(data, '\t')
	default:
		return typesystem.Value{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
}

// DecodeAuto detects the format of data (see DetectFormat) and decodes it.
// It returns the detected format alongside the value.
func DecodeAuto(data []byte, contentType, name string) (typesystem.Value, Format, error) {
	f := DetectFormat(contentType, name, data)
	v, err := Decode(data, f)
	return v, f, err
}
