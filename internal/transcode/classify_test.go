package transcode

import (
	"bytes"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want Class
	}{
		{"FMT   L", DocumentFormat},
		{"FMT   LBK\nLDR   L-----nam", DocumentFormat},
		{"008   L", TagFormat},
		{"008   Ltag1", TagFormat},
		{"008   L" + string(make([]byte, 4096)), TagFormat},
		{"FMT   L008   L", DocumentFormat},
		{"008   LFMT   L", TagFormat},
		{"fmt   L", Unclassified},
		{"FMT  L", Unclassified},
		{"FMT   l", Unclassified},
		{" FMT   L", Unclassified},
		{"\r\nFMT   L", Unclassified},
		{"FMT", Unclassified},
		{"plain text", Unclassified},
		{"", Unclassified},
	}
	for _, tt := range tests {
		if got := Classify(tt.text); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestFormatName(t *testing.T) {
	if DocumentFormat.FormatName() != "ALEPH_DOC" || TagFormat.FormatName() != "ALEPH_TAG" || Unclassified.FormatName() != "" {
		t.Error("unexpected format names")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"bare LF", "FMT   Lhello\nworld", "FMT   Lhello\r\nworld\r\n"},
		{"already normalized", "FMT   Lhello\r\nworld\r\n", "FMT   Lhello\r\nworld\r\n"},
		{"single line", "008   Ltag1", "008   Ltag1\r\n"},
		{"trailing LF", "a\nb\n", "a\r\nb\r\n"},
		{"CRLF without trailing", "a\r\nb", "a\r\nb\r\n"},
		{"mixed endings kept", "a\r\nb\nc", "a\r\nb\nc\r\n"},
		{"lone CR", "a\r", "a\r\r\n"},
		{"empty", "", "\r\n"},
		{"blank lines", "a\n\nb", "a\r\n\r\nb\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := Normalize(got); again != got {
				t.Errorf("Normalize not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	if got := Encode("é\r\n"); !bytes.Equal(got, []byte{0xc3, 0xa9, '\r', '\n'}) {
		t.Errorf("Encode = % x", got)
	}
	if got := Encode("a\xffb"); string(got) != "a�b" {
		t.Errorf("Encode invalid = %q", got)
	}
}
