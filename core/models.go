package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SchemeRow is one raw row of the government scheme reference table.
// Null cells are coerced to empty strings by the loader.
type SchemeRow struct {
	Name        string
	Description string
	Eligibility string
	Benefits    string
}

// SchemeRecord is a scheme row with its searchable context.
type SchemeRecord struct {
	Name        string
	Description string
	Eligibility string
	Benefits    string
	Context     string // Name, Description, Eligibility and Benefits joined by single spaces
}

// NewSchemeRecord builds a record and its context from a raw row.
func NewSchemeRecord(row SchemeRow) SchemeRecord {
	return SchemeRecord{
		Name:        row.Name,
		Description: row.Description,
		Eligibility: row.Eligibility,
		Benefits:    row.Benefits,
		Context:     strings.Join([]string{row.Name, row.Description, row.Eligibility, row.Benefits}, " "),
	}
}

// Corpus is the in-memory set of scheme records and their embeddings.
// Records and embeddings are index-aligned. A Corpus is never mutated after
// construction and is safe to share between goroutines.
type Corpus struct {
	records    []SchemeRecord
	embeddings [][]float32
	model      string
}

// NewCorpus creates a corpus from index-aligned records and embeddings.
// The slices are copied so later changes by the caller are not visible.
func NewCorpus(records []SchemeRecord, embeddings [][]float32, model string) (*Corpus, error) {
	if len(records) == 0 {
		return nil, ErrEmptyCorpus
	}
	if len(records) != len(embeddings) {
		return nil, ErrCorpusMisaligned
	}
	recs := make([]SchemeRecord, len(records))
	copy(recs, records)
	vecs := make([][]float32, len(embeddings))
	for i, v := range embeddings {
		vecs[i] = append([]float32(nil), v...)
	}
	return &Corpus{
		records:    recs,
		embeddings: vecs,
		model:      model,
	}, nil
}

// Len returns the number of records in the corpus.
func (c *Corpus) Len() int {
	return len(c.records)
}

// Record returns the record at index i.
func (c *Corpus) Record(i int) SchemeRecord {
	return c.records[i]
}

// Embedding returns the embedding at index i.
// The returned slice must not be modified.
func (c *Corpus) Embedding(i int) []float32 {
	return c.embeddings[i]
}

// Model returns the name of the embedding model that produced the vectors.
func (c *Corpus) Model() string {
	return c.model
}

// Fingerprint identifies the corpus content. It changes when any record's
// context changes or the record order changes.
func (c *Corpus) Fingerprint() ID {
	return FingerprintRecords(c.records)
}

// FingerprintRecords hashes the contexts of records in order.
func FingerprintRecords(records []SchemeRecord) ID {
	contexts := make([]string, len(records))
	for i, r := range records {
		contexts[i] = r.Context
	}
	return IDFromContent(strings.Join(contexts, "\n"))
}

// Manifest describes the corpus the embedding cache was last built for.
type Manifest struct {
	Model       string
	Fingerprint ID
	Records     int
	Source      string
	UpdatedAt   time.Time
}

// Match is the result of a scheme query.
type Match struct {
	Description string
	Index       int
	Score       float32 // raw cosine similarity
	Record      SchemeRecord
	Question    string // question text actually embedded (translated when available)
}
