package partition

import (
	"context"
	"log/slog"

	"github.com/xtxerr/siphon/internal/blob"
	"github.com/xtxerr/siphon/internal/codec"
	"github.com/xtxerr/siphon/internal/errors"
	"github.com/xtxerr/siphon/internal/logging"
	"github.com/xtxerr/siphon/internal/record"
)

// Store reads and writes day partition objects in one format.
type Store struct {
	blob   blob.Store
	prefix string
	format codec.Format
	log    *slog.Logger
}

// NewStore creates a partition store over a blob store.
func NewStore(b blob.Store, prefix string, format codec.Format) *Store {
	return &Store{
		blob:   b,
		prefix: prefix,
		format: format,
		log:    logging.Component("partition"),
	}
}

// Format returns the store's active format.
func (s *Store) Format() codec.Format {
	return s.format
}

// Read fetches and decodes a partition. found is false when no object
// exists for the key. A decode failure is a hard error: it indicates
// corruption, not a single bad field.
func (s *Store) Read(ctx context.Context, k Key) (records []record.LogRecord, found bool, err error) {
	key := k.ObjectKey(s.prefix, s.format)

	data, err := s.blob.Get(ctx, key)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(errors.ErrStorageRead, "read partition %s: %s", k.DateString(), err)
	}

	records, err = codec.Decode(data, s.format)
	if err != nil {
		return nil, false, errors.Wrapf(err, "decode partition %s", k.DateString())
	}
	return records, true, nil
}

// Write encodes and replaces the partition object wholesale, returning
// the object key. There is no partial or append write; every run rewrites
// the full record set.
func (s *Store) Write(ctx context.Context, k Key, records []record.LogRecord) (string, error) {
	key := k.ObjectKey(s.prefix, s.format)

	data, err := codec.Encode(records, s.format)
	if err != nil {
		return "", errors.Wrapf(err, "encode partition %s", k.DateString())
	}

	if err := s.blob.Put(ctx, key, data, s.format.ContentType()); err != nil {
		return "", errors.Wrap(errors.ErrStorageWrite, err.Error())
	}

	s.log.Info("partition written", "key", key, "records", len(records))
	return key, nil
}
