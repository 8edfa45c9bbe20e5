package recognizer

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Charset is a recognition character set: an index-to-token mapping loaded
// from a dictionary file. Tokens can be single Unicode characters or
// multi-codepoint strings. A Charset is immutable after construction and is
// passed explicitly to decoding so decoders stay reentrant.
type Charset struct {
	tokens  []string
	toIndex map[string]int
}

// NewCharset builds a charset from an ordered token list. Duplicate tokens
// keep their first index.
func NewCharset(tokens []string) (*Charset, error) {
	if len(tokens) == 0 {
		return nil, errors.New("charset is empty")
	}
	toIdx := make(map[string]int, len(tokens))
	for i, t := range tokens {
		if _, ok := toIdx[t]; !ok {
			toIdx[t] = i
		}
	}
	return &Charset{tokens: append([]string(nil), tokens...), toIndex: toIdx}, nil
}

// LoadCharset loads a dictionary file where each non-empty line is a token.
// Leading/trailing whitespace is trimmed; a UTF-8 BOM on the first line is
// removed.
func LoadCharset(path string) (*Charset, error) {
	if path == "" {
		return nil, errors.New("dictionary path cannot be empty")
	}
	f, err := os.Open(path) //nolint:gosec // G304: user-provided dictionary path is expected
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "Error closing dictionary file: %v\n", cerr)
		}
	}()

	scanner := bufio.NewScanner(f)
	tokens := make([]string, 0, 512)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, "\uFEFF")
			first = false
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		tokens = append(tokens, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed reading dictionary: %w", err)
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("dictionary is empty: %s", path)
	}
	return NewCharset(tokens)
}

// Size returns the number of tokens in the charset.
func (c *Charset) Size() int { return len(c.tokens) }

// Token returns the token for an index, or empty string if out of range.
func (c *Charset) Token(index int) string {
	if c == nil || index < 0 || index >= len(c.tokens) {
		return ""
	}
	return c.tokens[index]
}

// Index returns the index of a token, or -1 if not present.
func (c *Charset) Index(token string) int {
	if c == nil {
		return -1
	}
	if idx, ok := c.toIndex[token]; ok {
		return idx
	}
	return -1
}
