package util

import (
	"strings"
	"testing"
)

func TestOwnerSegmentIsStableHex(t *testing.T) {
	got := OwnerSegment("user-12345")
	if got != OwnerSegment("user-12345") {
		t.Fatalf("expected stable segment, got %s", got)
	}
	if got == OwnerSegment("user-12346") {
		t.Fatal("expected distinct users to get distinct segments")
	}
	if len(got) != 16 {
		t.Fatalf("expected 16 hex characters, got %d", len(got))
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("segment contains non-hex character: %c", ch)
		}
	}
}

func TestUploadKeyLayout(t *testing.T) {
	first := UploadKey("user-1", "limits.pdf")
	second := UploadKey("user-1", "limits.pdf")
	if first == second {
		t.Fatal("expected a fresh key per upload")
	}
	parts := strings.Split(first, "/")
	if len(parts) != 3 || parts[0] != UploadPrefix || parts[1] != OwnerSegment("user-1") {
		t.Fatalf("unexpected key layout: %s", first)
	}
	if !strings.HasSuffix(parts[2], "_limits.pdf") || strings.Contains(first, "user-1") {
		t.Fatalf("unexpected key: %s", first)
	}
}
