package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clean_books.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const header = "Book Id,Title,Author,genres,average_rating,year,pages,publisher,description,retrieval_text\n"

func TestLoad(t *testing.T) {
	path := writeCatalog(t, header+
		`1,Dune,Frank Herbert,"Science Fiction, Classics",4.25,1965,412,Chilton,A desert planet.,Dune. A desert planet saga.`+"\n"+
		`2,Sparse,Someone,,,,,,,Sparse. Minimal metadata.`+"\n")

	entries, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}

	dune := entries[0].Book
	if dune.Title != "Dune" || dune.Author != "Frank Herbert" {
		t.Errorf("book = %+v", dune)
	}
	if len(dune.Genres) != 2 || dune.Genres[0] != "Science Fiction" {
		t.Errorf("genres = %v", dune.Genres)
	}
	if dune.Rating == nil || *dune.Rating != 4.25 {
		t.Errorf("rating = %v", dune.Rating)
	}
	if dune.Pages == nil || *dune.Pages != 412 {
		t.Errorf("pages = %v", dune.Pages)
	}

	sparse := entries[1].Book
	if sparse.Rating != nil || sparse.Pages != nil || sparse.Year != nil {
		t.Errorf("absent numerics must stay nil: %+v", sparse)
	}
	if sparse.Description != "Sparse. Minimal metadata." {
		t.Errorf("description must fall back to retrieval text, got %q", sparse.Description)
	}
}

func TestLoad_SkipsRowsWithoutRetrievalText(t *testing.T) {
	path := writeCatalog(t, header+
		"1,Kept,A,,4.0,,,,,Kept. Has text.\n"+
		"2,Dropped,B,,4.0,,,,,\n")

	entries, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 1 || entries[0].Book.Title != "Kept" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestLoad_CoercesBadNumerics(t *testing.T) {
	path := writeCatalog(t, header+
		"1,Odd,A,,not-a-number,nineteen,352.0,,,Odd. Text here.\n")

	entries, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	b := entries[0].Book
	if b.Rating != nil {
		t.Errorf("unparseable rating must become nil, got %v", *b.Rating)
	}
	if b.Year != nil {
		t.Errorf("unparseable year must become nil, got %v", *b.Year)
	}
	if b.Pages == nil || *b.Pages != 352 {
		t.Errorf("float page count must coerce to int, got %v", b.Pages)
	}
}

func TestLoad_MissingRequiredColumn(t *testing.T) {
	path := writeCatalog(t, "Book Id,Title,Author,genres,average_rating\n1,X,A,,4.0\n")

	if _, err := Load(path, nil); err == nil {
		t.Fatal("missing retrieval_text column must error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.csv"), nil); err == nil {
		t.Fatal("missing file must error")
	}
}
