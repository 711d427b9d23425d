package logging

import (
	"bytes"
	"io"
)

// PrefixWriter prepends a prefix to every complete line written through it.
// Partial lines are held back until their newline arrives.
type PrefixWriter struct {
	prefix string
	writer io.Writer
	buffer bytes.Buffer
}

// NewPrefixWriter wraps w.
func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{prefix: prefix, writer: w}
}

func (pw *PrefixWriter) Write(p []byte) (int, error) {
	n := len(p)
	pw.buffer.Write(p)

	for {
		i := bytes.IndexByte(pw.buffer.Bytes(), '\n')
		if i < 0 {
			return n, nil
		}
		line := pw.buffer.Next(i + 1)
		out := make([]byte, 0, len(pw.prefix)+len(line))
		out = append(out, pw.prefix...)
		out = append(out, line...)
		if _, err := pw.writer.Write(out); err != nil {
			return 0, err
		}
	}
}
