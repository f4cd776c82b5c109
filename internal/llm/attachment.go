package llm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Kind groups attachments by how a backend has to transmit them.
type Kind int

const (
	KindText Kind = iota
	KindDocument
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindImage:
		return "image"
	default:
		return "text"
	}
}

// Attachment is a local file read into memory and classified.
type Attachment struct {
	Path      string
	MediaType string
	Kind      Kind
	Data      []byte
}

// Name returns the attachment's base file name.
func (a Attachment) Name() string { return filepath.Base(a.Path) }

var imageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// Classify reads path and detects whether it is a PDF, a supported image or text.
// Unknown binary formats are rejected.
func Classify(path string) (Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("read attachment %s: %w", filepath.Base(path), err)
	}
	detected := mimetype.Detect(data)
	mediaType := strings.TrimSpace(strings.Split(detected.String(), ";")[0])

	att := Attachment{Path: path, MediaType: mediaType, Data: data}
	switch {
	case detected.Is("application/pdf"):
		att.Kind = KindDocument
	case imageTypes[mediaType]:
		att.Kind = KindImage
	case strings.HasPrefix(mediaType, "text/"), len(data) == 0:
		att.Kind = KindText
		att.MediaType = "text/plain"
	default:
		return Attachment{}, fmt.Errorf("unsupported attachment %s: %s", filepath.Base(path), mediaType)
	}
	return att, nil
}

// ClassifyAll classifies every path, wrapping the first failure as a provider error.
func ClassifyAll(name Name, paths []string) ([]Attachment, error) {
	out := make([]Attachment, 0, len(paths))
	for _, p := range paths {
		att, err := Classify(p)
		if err != nil {
			return nil, Wrap(name, err)
		}
		out = append(out, att)
	}
	return out, nil
}
