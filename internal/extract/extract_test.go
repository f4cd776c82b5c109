package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"mathgen-backend/internal/shared/storage/object/local"
)

const worksheetText = "Evaluate the limit of x squared as x approaches 2\nFind the derivative of sin x"

func TestExtractTextFromBytes_PlainText(t *testing.T) {
	text, err := ExtractTextFromBytes(context.Background(), []byte("\\item $x^2$\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "\\item $x^2$\n" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractTextFromBytes_ZipRejected(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	_, err = ExtractTextFromBytes(context.Background(), buf.Bytes())
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestExtractTextFromBytes_BrokenPDF(t *testing.T) {
	if _, err := ExtractTextFromBytes(context.Background(), []byte("%PDF-1.4\nnot really a pdf")); err == nil {
		t.Fatal("expected error for truncated pdf")
	}
}

func TestExtractTextFromBytes_Empty(t *testing.T) {
	if _, err := ExtractTextFromBytes(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestExtractTextFromBytes_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ExtractTextFromBytes(ctx, []byte("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExtractTextFromBytes_PDF(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "worksheet.pdf"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	text, err := ExtractTextFromBytes(context.Background(), data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != worksheetText {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractTextCachesStoredPDF(t *testing.T) {
	ctx := context.Background()
	store := local.New(t.TempDir())
	f, err := os.Open(filepath.Join("testdata", "worksheet.pdf"))
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer f.Close()
	key, _, mimeType, err := store.Save(ctx, "user-1", "worksheet.pdf", f)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if mimeType != "application/pdf" {
		t.Fatalf("unexpected mime type %q", mimeType)
	}

	text, err := ExtractText(ctx, store, key)
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text != worksheetText {
		t.Fatalf("unexpected text: %q", text)
	}

	rc, err := store.Open(ctx, key+".extracted.txt")
	if err != nil {
		t.Fatalf("open cached text: %v", err)
	}
	defer rc.Close()
	cached, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read cached text: %v", err)
	}
	if string(cached) != worksheetText {
		t.Fatalf("unexpected cached text: %q", cached)
	}
}
