package artist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// Format identifies how a dataset document is encoded.
type Format string

const (
	// FormatJSON is a UTF-8 JSON document.
	FormatJSON Format = "json"
	// FormatCBOR is a CBOR document with the same shape as the JSON one.
	FormatCBOR Format = "cbor"
)

// FormatFromPath picks the dataset format from a file or object key extension.
// Anything other than .cbor is treated as JSON.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".cbor") {
		return FormatCBOR
	}
	return FormatJSON
}

// Dataset is the document shape shared by the file, Redis and S3 stores:
//
//	{"artists": [{"uuid": "...", "gender": "F", "age": 39,
//	              "latitude": "51.75", "longitude": "-0.09", "rate": 14.21}]}
type Dataset struct {
	Artists []Record `json:"artists" cbor:"artists"`
}

// Record is a stored artist. Numeric fields accept both numbers and numeric
// strings since older exports wrote coordinates as strings.
type Record struct {
	UUID      string    `json:"uuid" cbor:"uuid"`
	Gender    string    `json:"gender" cbor:"gender"`
	Age       flexFloat `json:"age" cbor:"age"`
	Latitude  flexFloat `json:"latitude" cbor:"latitude"`
	Longitude flexFloat `json:"longitude" cbor:"longitude"`
	Rate      flexFloat `json:"rate" cbor:"rate"`
}

// Artist converts the record. Records without an identity, with a
// fractional or out-of-range age, or failing Artist.Validate are rejected.
func (r Record) Artist() (Artist, error) {
	if strings.TrimSpace(r.UUID) == "" {
		return Artist{}, fmt.Errorf("%w: missing uuid", ErrInvalidRecord)
	}
	age := float64(r.Age)
	if age != math.Trunc(age) || math.Abs(age) > math.MaxInt32 {
		return Artist{}, fmt.Errorf("%w: %s: age %v is not a whole number", ErrInvalidRecord, r.UUID, age)
	}

	a := Artist{
		UUID:      r.UUID,
		Gender:    r.Gender,
		Age:       int(age),
		Latitude:  float64(r.Latitude),
		Longitude: float64(r.Longitude),
		Rate:      float64(r.Rate),
	}
	if err := a.Validate(); err != nil {
		return Artist{}, err
	}
	return a, nil
}

// Decode parses a dataset document in the given format.
func Decode(data []byte, format Format) ([]Artist, error) {
	var ds Dataset
	switch format {
	case FormatCBOR:
		if err := cbor.Unmarshal(data, &ds); err != nil {
			return nil, fmt.Errorf("failed to decode CBOR dataset: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&ds); err != nil {
			return nil, fmt.Errorf("failed to decode JSON dataset: %w", err)
		}
	}

	artists := make([]Artist, 0, len(ds.Artists))
	for i, rec := range ds.Artists {
		a, err := rec.Artist()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		artists = append(artists, a)
	}
	return artists, nil
}

// Encode writes artists as a dataset document in the given format.
func Encode(artists []Artist, format Format) ([]byte, error) {
	ds := Dataset{Artists: make([]Record, 0, len(artists))}
	for _, a := range artists {
		ds.Artists = append(ds.Artists, Record{
			UUID:      a.UUID,
			Gender:    a.Gender,
			Age:       flexFloat(a.Age),
			Latitude:  flexFloat(a.Latitude),
			Longitude: flexFloat(a.Longitude),
			Rate:      flexFloat(a.Rate),
		})
	}

	if format == FormatCBOR {
		data, err := cbor.Marshal(ds)
		if err != nil {
			return nil, fmt.Errorf("failed to encode CBOR dataset: %w", err)
		}
		return data, nil
	}

	data, err := json.Marshal(ds)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON dataset: %w", err)
	}
	return data, nil
}

// flexFloat decodes from a number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return f.set(v)
}

func (f *flexFloat) UnmarshalCBOR(b []byte) error {
	var v interface{}
	if err := cbor.Unmarshal(b, &v); err != nil {
		return err
	}
	return f.set(v)
}

func (f flexFloat) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(f))
}

func (f flexFloat) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(float64(f))
}

func (f *flexFloat) set(v interface{}) error {
	switch n := v.(type) {
	case float64:
		*f = flexFloat(n)
	case float32:
		*f = flexFloat(n)
	case int64:
		*f = flexFloat(n)
	case uint64:
		*f = flexFloat(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not numeric", ErrInvalidRecord, n)
		}
		*f = flexFloat(parsed)
	case nil:
		*f = 0
	default:
		return fmt.Errorf("%w: unexpected numeric type %T", ErrInvalidRecord, v)
	}
	return nil
}
