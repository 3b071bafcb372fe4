package lineindex

import "testing"

func TestFindLineRanges(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single terminated", "hello\n", []string{"hello"}},
		{"single unterminated", "hello", []string{"hello"}},
		{"multiple", "a\nbb\nccc\n", []string{"a", "bb", "ccc"}},
		{"final unterminated", "a\nbb", []string{"a", "bb"}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}},
		{"blank lines kept", "a\n\nb\n", []string{"a", "", "b"}},
		{"only newline", "\n", []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := []byte(tt.input)
			ranges := FindLineRanges(buf)
			if len(ranges) != len(tt.want) {
				t.Fatalf("got %d ranges, want %d", len(ranges), len(tt.want))
			}
			for i, r := range ranges {
				if got := string(r.Line(buf)); got != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, got, tt.want[i])
				}
			}
		})
	}
}

func TestFindLineRangesCoversBuffer(t *testing.T) {
	buf := []byte("first\nsecond\nthird")
	ranges := FindLineRanges(buf)

	if ranges[0].Start != 0 {
		t.Errorf("first range starts at %d, want 0", ranges[0].Start)
	}
	if ranges[len(ranges)-1].End != len(buf) {
		t.Errorf("last range ends at %d, want %d", ranges[len(ranges)-1].End, len(buf))
	}
	for i := 1; i < len(ranges); i++ {
		if ranges[i].Start <= ranges[i-1].End {
			continue
		}
		// Exactly one byte (the terminator) may separate consecutive ranges.
		if ranges[i].Start-ranges[i-1].End > 2 {
			t.Errorf("gap between range %d and %d too large", i-1, i)
		}
	}
}

func TestFindLineRangesNonUTF8(t *testing.T) {
	buf := []byte{0xff, 0xfe, '\n', 0x80, 0x81}
	ranges := FindLineRanges(buf)
	if len(ranges) != 2 {
		t.Fatalf("got %d ranges, want 2", len(ranges))
	}
}
