package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"mathgen-backend/internal/shared/storage/object"
)

const mimePDF = "application/pdf"

// ErrUnsupported reports a payload that is neither a PDF nor plain text.
var ErrUnsupported = errors.New("unsupported document type")

// ExtractText pulls text from a stored object and persists a derived .extracted.txt copy.
// Library used: github.com/ledongthuc/pdf.
func ExtractText(ctx context.Context, store object.ObjectStore, fileKey string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	body, err := store.Open(ctx, fileKey)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s: %w", fileKey, err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s: read: %w", fileKey, err)
	}

	text, err := ExtractTextFromBytes(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s: %w", fileKey, err)
	}

	if _, err := store.SaveWithKey(ctx, fileKey+".extracted.txt", "text/plain; charset=utf-8", strings.NewReader(text)); err != nil {
		return "", fmt.Errorf("extract text key=%s: save: %w", fileKey, err)
	}
	return text, nil
}

// ExtractTextFromBytes extracts text from an in-memory payload, sniffing its type.
func ExtractTextFromBytes(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("empty document")
	}
	detected := mimetype.Detect(data)
	switch {
	case detected.Is(mimePDF):
		return extractPDF(data)
	case strings.HasPrefix(detected.String(), "text/") && utf8.Valid(data):
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, detected.String())
	}
}

func extractPDF(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parse pdf: %v", r)
		}
	}()
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
