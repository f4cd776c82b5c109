package s3

import (
	"context"
	"strings"
	"testing"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "user/problems.pdf", want: "user/problems.pdf"},
		{name: "simple prefix", prefix: "root", key: "user/problems.pdf", want: "root/user/problems.pdf"},
		{name: "prefix trailing slash", prefix: "root/", key: "user/problems.pdf", want: "root/user/problems.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/user/problems.pdf", want: "root/user/problems.pdf"},
		{name: "nested prefix", prefix: "root/sub", key: "user/problems.pdf", want: "root/sub/user/problems.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestCountingReaderCountsBytes(t *testing.T) {
	counter := &countingReader{r: strings.NewReader("problems.pdf body")}
	buf := make([]byte, 4)
	for {
		if _, err := counter.Read(buf); err != nil {
			break
		}
	}
	if counter.n != int64(len("problems.pdf body")) {
		t.Fatalf("expected %d bytes counted, got %d", len("problems.pdf body"), counter.n)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), "us-east-1", "", "", ""); err == nil {
		t.Fatalf("expected error without bucket")
	}
}
