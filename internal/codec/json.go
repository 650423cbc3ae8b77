package codec

import (
	"bytes"
	"encoding/json"

	"github.com/xtxerr/siphon/internal/errors"
	"github.com/xtxerr/siphon/internal/record"
)

// encodeJSON serializes records as an indented JSON array.
func encodeJSON(records []record.LogRecord) ([]byte, error) {
	if records == nil {
		records = []record.LogRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode json")
	}
	return data, nil
}

// decodeJSON parses a JSON document back into records.
//
// UseNumber keeps numeric userId and metadata values in their literal
// form, so fingerprints stay stable across round trips.
func decodeJSON(data []byte) ([]record.LogRecord, error) {
	var records []record.LogRecord
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&records); err != nil {
		return nil, errors.Wrap(errors.ErrCorruptPartition, err.Error())
	}
	return records, nil
}
