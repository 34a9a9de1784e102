package net

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MaxLineLen bounds a single console line on the wire.
const MaxLineLen = 4096

var ErrLineTooLong = errors.New("console line too long")

// ReadLine reads one newline-terminated console line from r.
// Wire format: UTF-8 text ending in "\n" (a trailing "\r" is dropped).
func ReadLine(r *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			if err == io.EOF && b.Len() > 0 {
				return b.String(), nil
			}
			return "", fmt.Errorf("read line: %w", err)
		}
		if b.Len()+len(chunk) > MaxLineLen {
			return "", ErrLineTooLong
		}
		b.Write(chunk)
		if !isPrefix {
			return b.String(), nil
		}
	}
}

// WriteLine writes text to w. Multi-line replies are sent as-is; a final
// newline is added when missing.
func WriteLine(w io.Writer, text string) error {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if _, err := io.WriteString(w, text); err != nil {
		return fmt.Errorf("write line: %w", err)
	}
	return nil
}
