package store

import (
	"encoding/json"
	"time"

	"github.com/pagetalk/pagetalk/internal/chunk"
	"github.com/pagetalk/pagetalk/internal/errors"
)

// Record schema versions. The version is detected by field presence, not
// an explicit tag, because legacy records predate versioning.
const (
	// SchemaLegacyTexts is the oldest shape: a bare list of passage texts.
	// Sequence ids are synthesized from array position on load.
	SchemaLegacyTexts = 1

	// SchemaPassages is the current shape: passages with text and sequence
	// id plus a timestamp.
	SchemaPassages = 2
)

// IndexRecord is the persisted form of one document's index.
type IndexRecord struct {
	DocumentID string          `json:"documentId"`
	Passages   []chunk.Passage `json:"passages"`
	Timestamp  time.Time       `json:"timestamp"`

	// Schema records which on-disk shape the record was decoded from.
	// Not serialized; informational for status reporting.
	Schema int `json:"-"`
}

// recordWire covers every known on-disk shape in one struct. Shape is
// detected by which fields are populated.
type recordWire struct {
	DocumentID string          `json:"documentId"`
	Passages   []chunk.Passage `json:"passages,omitempty"`
	Texts      []string        `json:"texts,omitempty"`
	Timestamp  time.Time       `json:"timestamp,omitempty"`
}

// EncodeRecord serializes a record in the current schema.
func EncodeRecord(documentID string, passages []chunk.Passage) ([]byte, error) {
	rec := recordWire{
		DocumentID: documentID,
		Passages:   passages,
		Timestamp:  time.Now().UTC(),
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, errors.InternalError("failed to encode index record", err)
	}
	return data, nil
}

// DecodeRecord parses a persisted record, accepting every known schema and
// converting it to the canonical in-memory representation. Records with
// neither known shape are corrupt.
func DecodeRecord(data []byte) (*IndexRecord, error) {
	var wire recordWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, errors.CorruptRecord("unparseable index record", err)
	}

	switch {
	case wire.Passages != nil:
		return &IndexRecord{
			DocumentID: wire.DocumentID,
			Passages:   wire.Passages,
			Timestamp:  wire.Timestamp,
			Schema:     SchemaPassages,
		}, nil

	case wire.Texts != nil:
		passages := make([]chunk.Passage, len(wire.Texts))
		for i, text := range wire.Texts {
			passages[i] = chunk.Passage{SequenceID: i, Text: text}
		}
		return &IndexRecord{
			DocumentID: wire.DocumentID,
			Passages:   passages,
			Timestamp:  wire.Timestamp,
			Schema:     SchemaLegacyTexts,
		}, nil

	default:
		return nil, errors.CorruptRecord("index record has no recognizable passage data", nil)
	}
}

// Texts returns the record's passage texts in order.
func (r *IndexRecord) Texts() []string {
	texts := make([]string, len(r.Passages))
	for i, p := range r.Passages {
		texts[i] = p.Text
	}
	return texts
}
