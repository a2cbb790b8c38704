package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/okian/scout/internal/domain/model"
)

// Decode reads one JSON object payload. Numbers are kept as json.Number so
// identifiers are never rounded through float64.
func Decode(r io.Reader) (model.RawSubmission, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw model.RawSubmission
	if err := dec.Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, ErrEmptyPayload
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if raw == nil {
		return nil, ErrEmptyPayload
	}
	return raw, nil
}

// DecodeBatch reads a JSON array of payloads. Each element is either an
// object or a string holding the scanned QR text of one.
func DecodeBatch(r io.Reader) ([]model.RawSubmission, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var items []json.RawMessage
	if err := dec.Decode(&items); err != nil {
		if err == io.EOF {
			return nil, ErrEmptyPayload
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	out := make([]model.RawSubmission, 0, len(items))
	for i, item := range items {
		raw, err := decodeItem(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, raw)
	}
	return out, nil
}

func decodeItem(item json.RawMessage) (model.RawSubmission, error) {
	trimmed := bytes.TrimSpace(item)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}
		return Decode(strings.NewReader(text))
	}
	return Decode(bytes.NewReader(trimmed))
}
