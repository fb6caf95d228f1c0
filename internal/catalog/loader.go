// Package catalog loads the cleaned books CSV produced by the data
// preparation step. Row-level data quality problems are coerced, never
// fatal: a book with a garbled rating still belongs in the index.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/shelfdex/shelfdex/internal/domain"
)

// requiredColumns must all be present in the CSV header.
var requiredColumns = []string{"Book Id", "Title", "Author", "genres", "average_rating", "retrieval_text"}

// Entry pairs a catalog book with the text its embedding is built from.
type Entry struct {
	Book          domain.Book
	RetrievalText string
}

// Load reads and validates the catalog CSV. Rows without retrieval text
// are skipped; numeric fields that fail to parse are treated as absent.
func Load(path string, logger *zap.Logger) ([]Entry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows are skipped below, not fatal

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("catalog missing required column %q", name)
		}
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var entries []Entry
	skipped := 0
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("skipping malformed catalog row", zap.Int("line", line), zap.Error(err))
			skipped++
			continue
		}

		text := field(row, "retrieval_text")
		if text == "" {
			skipped++
			continue
		}

		book := domain.Book{
			ID:          field(row, "Book Id"),
			Title:       field(row, "Title"),
			Author:      field(row, "Author"),
			Genres:      splitGenres(field(row, "genres")),
			Rating:      parseFloat(field(row, "average_rating")),
			Year:        parseInt(field(row, "year")),
			Pages:       parseInt(field(row, "pages")),
			Publisher:   field(row, "publisher"),
			Description: field(row, "description"),
		}
		if book.Description == "" {
			book.Description = text
		}

		entries = append(entries, Entry{Book: book, RetrievalText: text})
	}

	logger.Info("catalog loaded",
		zap.String("path", path),
		zap.Int("books", len(entries)),
		zap.Int("skipped", skipped),
	)
	return entries, nil
}

func splitGenres(raw string) []string {
	if raw == "" {
		return nil
	}
	var genres []string
	for _, g := range strings.Split(raw, ",") {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseInt(s string) *int {
	if s == "" {
		return nil
	}
	// Page and year counts sometimes arrive as "352.0".
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		v := int(f)
		return &v
	}
	return nil
}
