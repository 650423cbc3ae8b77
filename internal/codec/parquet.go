package codec

import (
	"bytes"

	"github.com/parquet-go/parquet-go"

	"github.com/xtxerr/siphon/internal/errors"
	"github.com/xtxerr/siphon/internal/record"
)

// partitionRow is a record flattened to the row format's column set.
type partitionRow struct {
	RecordID  string `parquet:"recordId,zstd"`
	Timestamp string `parquet:"timestamp,zstd"`
	Level     string `parquet:"level,zstd"`
	Service   string `parquet:"service,zstd"`
	Category  string `parquet:"category,zstd"`
	Message   string `parquet:"message,zstd"`
	UserID    string `parquet:"userId,zstd"`
	UserName  string `parquet:"userName,zstd"`
	SessionID string `parquet:"sessionId,zstd"`
	Metadata  string `parquet:"metadata,optional,zstd"`
}

// encodeParquet serializes records in columnar form.
func encodeParquet(records []record.LogRecord) ([]byte, error) {
	rows := make([]partitionRow, len(records))
	for i := range records {
		r := &records[i]
		metadata := ""
		if len(r.Metadata) > 0 {
			metadata = r.CanonicalMetadata()
		}
		rows[i] = partitionRow{
			RecordID:  r.RecordID,
			Timestamp: r.Timestamp,
			Level:     r.Level,
			Service:   r.Service,
			Category:  r.Category,
			Message:   r.Message,
			UserID:    r.UserIDString(),
			UserName:  r.UserName,
			SessionID: r.SessionID,
			Metadata:  metadata,
		}
	}

	var buf bytes.Buffer
	w := parquet.NewGenericWriter[partitionRow](&buf, parquet.Compression(&parquet.Zstd))
	if len(rows) > 0 {
		if _, err := w.Write(rows); err != nil {
			return nil, errors.Wrap(err, "write parquet rows")
		}
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "close parquet writer")
	}
	return buf.Bytes(), nil
}

// decodeParquet parses a columnar partition object back into records.
// The userId digit heuristic and metadata downgrade mirror the csv codec.
func decodeParquet(data []byte) ([]record.LogRecord, error) {
	rows, err := parquet.Read[partitionRow](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCorruptPartition, err.Error())
	}

	records := make([]record.LogRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, record.LogRecord{
			RecordID:  row.RecordID,
			Timestamp: row.Timestamp,
			Level:     row.Level,
			Service:   row.Service,
			Category:  row.Category,
			Message:   row.Message,
			UserID:    decodeUserID(row.UserID),
			UserName:  row.UserName,
			SessionID: row.SessionID,
			Metadata:  decodeMetadataCell(row.Metadata),
		})
	}
	return records, nil
}
