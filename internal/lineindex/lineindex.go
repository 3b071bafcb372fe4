// Package lineindex locates record boundaries in raw file buffers so callers
// can decode only the lines they need.
package lineindex

import "bytes"

// Range is one line's byte span within the buffer, terminator excluded.
type Range struct {
	Start int
	End   int
}

// FindLineRanges returns the span of every line in buf, including a final
// unterminated line. A trailing CR before the LF is excluded. The buffer is
// not required to be valid UTF-8; validity is the decoder's problem.
func FindLineRanges(buf []byte) []Range {
	if len(buf) == 0 {
		return nil
	}

	ranges := make([]Range, 0, bytes.Count(buf, []byte{'\n'})+1)
	start := 0
	for {
		idx := bytes.IndexByte(buf[start:], '\n')
		if idx < 0 {
			break
		}
		end := start + idx
		if end > start && buf[end-1] == '\r' {
			ranges = append(ranges, Range{Start: start, End: end - 1})
		} else {
			ranges = append(ranges, Range{Start: start, End: end})
		}
		start = end + 1
	}
	if start < len(buf) {
		ranges = append(ranges, Range{Start: start, End: len(buf)})
	}
	return ranges
}

// Line returns the bytes of r within buf.
func (r Range) Line(buf []byte) []byte {
	return buf[r.Start:r.End]
}
