package twpurge

import (
	"bufio"
	"bytes"
	"io"
)

// Tokenizer returns the next token from a markup file.
type Tokenizer interface {
	NextToken() ([]byte, error) // returns a token or error (not both), io.EOF indicates end of stream
}

// TokenizerFunc creates a Tokenizer for a stream.
type TokenizerFunc func(r io.Reader) Tokenizer

func isbr(c byte) bool {
	switch c {
	// NOTE: ASCII only, class names with icon names never need more.
	case '<', '>', '"', '\'', '`', '{', '}', '(', ')', ',', ';',
		'\t', '\n', '\v', '\f', '\r', ' ':
		return true
	}
	return false
}

// NewDefaultTokenizer returns a tokenizer which splits on markup and
// whitespace characters, so attribute values like class="a b" become the
// tokens "class=", "a" and "b".
func NewDefaultTokenizer(r io.Reader) *DefaultTokenizer {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxTokenSize)
	s.Split(func(data []byte, atEOF bool) (advance int, token []byte, err error) {

		// consume any break text
		for len(data) > 0 {
			if !isbr(data[0]) {
				break
			}
			data = data[1:]
			advance++
		}

		// now read through any non-break text
		var i int
		for i = 0; i < len(data); i++ {
			if isbr(data[i]) {
				if i > 0 {
					token = data[:i]
				}
				advance += i
				return
			}
		}

		// still in the middle of non-break text at the end of the buffer

		if atEOF {
			if i > 0 {
				token = data[:i]
			}
			advance += i
			return
		}

		// need more (advance may have been incremented above)
		return advance, nil, nil
	})
	return &DefaultTokenizer{
		s: s,
	}
}

const maxTokenSize = 1024 * 1024

// DefaultTokenizer implements Tokenizer with a sensible default tokenization.
type DefaultTokenizer struct {
	s *bufio.Scanner
}

// NextToken implements Tokenizer.  Slashes, backslashes, colons and equal
// signs are trimmed from both ends of a token.
func (t *DefaultTokenizer) NextToken() ([]byte, error) {
	for t.s.Scan() {
		b := bytes.Trim(t.s.Bytes(), `/\:=`)
		if len(b) == 0 {
			continue
		}
		return b, nil
	}
	if err := t.s.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
