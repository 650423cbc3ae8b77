package codec

import (
	"bytes"
	"encoding/csv"
	"encoding/json"

	"github.com/xtxerr/siphon/internal/errors"
	"github.com/xtxerr/siphon/internal/record"
)

// csvColumns is the fixed, ordered column set of the row format.
var csvColumns = []string{
	"recordId", "timestamp", "level", "service", "category",
	"message", "userId", "userName", "sessionId", "metadata",
}

// encodeCSV serializes records with one row per record.
func encodeCSV(records []record.LogRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvColumns); err != nil {
		return nil, errors.Wrap(err, "write csv header")
	}

	for i := range records {
		r := &records[i]
		metadata := ""
		if len(r.Metadata) > 0 {
			metadata = r.CanonicalMetadata()
		}
		row := []string{
			r.RecordID,
			r.Timestamp,
			r.Level,
			r.Service,
			r.Category,
			r.Message,
			r.UserIDString(),
			r.UserName,
			r.SessionID,
			metadata,
		}
		if err := w.Write(row); err != nil {
			return nil, errors.Wrap(err, "write csv row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "flush csv")
	}
	return buf.Bytes(), nil
}

// decodeCSV parses the row format back into records.
func decodeCSV(data []byte) ([]record.LogRecord, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(csvColumns)

	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCorruptPartition, err.Error())
	}
	if len(rows) == 0 {
		return nil, nil
	}

	// First row is the header.
	records := make([]record.LogRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, record.LogRecord{
			RecordID:  row[0],
			Timestamp: row[1],
			Level:     row[2],
			Service:   row[3],
			Category:  row[4],
			Message:   row[5],
			UserID:    decodeUserID(row[6]),
			UserName:  row[7],
			SessionID: row[8],
			Metadata:  decodeMetadataCell(row[9]),
		})
	}
	return records, nil
}

// decodeUserID applies the row format's digit heuristic: an all-digit
// cell was (probably) a number before flattening. Non-numeric values stay
// strings; the original type is unrecoverable for them.
func decodeUserID(cell string) any {
	if cell == "" {
		return nil
	}
	for _, c := range cell {
		if c < '0' || c > '9' {
			return cell
		}
	}
	return json.Number(cell)
}

// decodeMetadataCell parses the inlined metadata document. A cell that
// fails to parse downgrades to an empty mapping rather than failing the
// whole partition.
func decodeMetadataCell(cell string) map[string]any {
	if cell == "" {
		return nil
	}
	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader([]byte(cell)))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return map[string]any{}
	}
	return m
}
