/*
Package dataset reads the tabular recipe source and normalizes its
serialized ingredient fields into token sets.

The source is a CSV file with a header row. Two columns are required: a
stable recipe identifier and the serialized ingredient list. Display name
and review count columns are optional and only used for ranked output.
Rows are delivered in bounded chunks so peak memory stays independent of
the dataset size.
*/
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultChunkSize is how many rows a single ReadChunk call returns at most.
const DefaultChunkSize = 50000

var (
	// ErrSourceMissing means the dataset file does not exist. Fatal: no
	// index can be built and no query answered.
	ErrSourceMissing = errors.New("recipe source does not exist")

	// ErrSchema means a required column is absent from the header. Fatal.
	ErrSchema = errors.New("recipe source is missing a required column")
)

// Columns names the CSV columns the reader resolves against the header.
type Columns struct {
	ID          string
	Name        string
	Ingredients string
	Reviews     string
}

// DefaultColumns matches the processed recipe dump this project ships with.
func DefaultColumns() Columns {
	return Columns{
		ID:          "id",
		Name:        "name_clean",
		Ingredients: "ingredients_serialized",
		Reviews:     "review_count",
	}
}

// Document is one recipe row. Ingredients holds the raw serialized field;
// tokenization happens at the consumer via SplitTokens.
type Document struct {
	ID          string
	Name        string
	Ingredients string
	Reviews     int
}

// Reader streams Documents out of a recipe CSV in chunks.
type Reader struct {
	path      string
	file      *os.File
	csv       *csv.Reader
	chunkSize int

	idIdx   int
	nameIdx int
	ingIdx  int
	revIdx  int

	skipped int
}

// Open opens the source, reads the header and resolves column indices.
// A missing file yields ErrSourceMissing; a header without the id or
// ingredients column yields ErrSchema.
func Open(path string, cols Columns, chunkSize int) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceMissing, path)
		}
		return nil, fmt.Errorf("failed to open recipe source %s: %w", path, err)
	}

	cr := csv.NewReader(file)
	// Rows with missing trailing fields are handled per-row, not rejected wholesale.
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	r := &Reader{
		path:      path,
		file:      file,
		csv:       cr,
		chunkSize: chunkSize,
		idIdx:     columnIndex(header, cols.ID),
		nameIdx:   columnIndex(header, cols.Name),
		ingIdx:    columnIndex(header, cols.Ingredients),
		revIdx:    columnIndex(header, cols.Reviews),
	}

	if r.idIdx < 0 {
		file.Close()
		return nil, fmt.Errorf("%w: %q", ErrSchema, cols.ID)
	}
	if r.ingIdx < 0 {
		file.Close()
		return nil, fmt.Errorf("%w: %q", ErrSchema, cols.Ingredients)
	}
	return r, nil
}

// columnIndex finds name in the header, tolerating a UTF-8 BOM on the
// first column and surrounding whitespace.
func columnIndex(header []string, name string) int {
	if name == "" {
		return -1
	}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == name {
			return i
		}
	}
	return -1
}

// Path returns the source path the reader was opened with.
func (r *Reader) Path() string {
	return r.path
}

// Skipped reports how many malformed rows were silently dropped so far.
func (r *Reader) Skipped() int {
	return r.skipped
}

// ReadChunk returns up to chunkSize documents. It returns io.EOF once the
// source is exhausted and no documents remain. Rows missing the id or
// ingredient field are skipped and counted, never surfaced as errors.
func (r *Reader) ReadChunk() ([]Document, error) {
	docs := make([]Document, 0, r.chunkSize)
	for len(docs) < r.chunkSize {
		record, err := r.csv.Read()
		if err == io.EOF {
			if len(docs) == 0 {
				return nil, io.EOF
			}
			return docs, nil
		}
		if err != nil {
			// A ragged or unquotable row is a row problem, not a dataset problem.
			r.skipped++
			log.Debugf("Skipping unreadable row: %v", err)
			continue
		}

		doc, ok := r.row(record)
		if !ok {
			r.skipped++
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// row maps a raw record onto a Document. ok is false when the row lacks
// the identifier or the ingredient field.
func (r *Reader) row(record []string) (Document, bool) {
	id := fieldAt(record, r.idIdx)
	ingredients := fieldAt(record, r.ingIdx)
	if id == "" || ingredients == "" {
		return Document{}, false
	}
	return Document{
		ID:          id,
		Name:        fieldAt(record, r.nameIdx),
		Ingredients: ingredients,
		Reviews:     parseReviews(fieldAt(record, r.revIdx)),
	}, true
}

func fieldAt(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// parseReviews reads the popularity metric. Review counts sometimes come
// out of exports as floats ("42.0"), so parse loosely; anything else is 0.
func parseReviews(s string) int {
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// ReadAll is a convenience wrapper that drains the whole source into
// memory. Meant for small datasets and tests; the index builder and the
// ranking pipeline stream chunks instead.
func ReadAll(path string, cols Columns, chunkSize int) ([]Document, error) {
	r, err := Open(path, cols, chunkSize)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var all []Document
	for {
		docs, err := r.ReadChunk()
		if err == io.EOF {
			return all, nil
		}
		if err != nil {
			return nil, err
		}
		all = append(all, docs...)
	}
}
