package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/viking-sudo-rm/rusty-dawg/token"
)

// readDocuments reads whitespace-separated decimal token ids from r, one
// document per line. Tokenization itself stays out of scope (SPEC_FULL.md
// Non-goals); this only parses the simplest wire format a caller can
// produce with a one-line shell pipeline.
func readDocuments(r io.Reader) ([][]token.Token, error) {
	var docs [][]token.Token
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		doc := make([]token.Token, 0, len(fields))
		for _, f := range fields {
			v, err := strconv.ParseUint(f, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("dawgutil: invalid token %q: %w", f, err)
			}
			doc = append(doc, token.Token(v))
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dawgutil: read tokens: %w", err)
	}
	return docs, nil
}

// parsePattern parses a single whitespace-separated token list from args,
// or, if args is empty, reads one line from r.
func parsePattern(args []string, r io.Reader) ([]token.Token, error) {
	if len(args) > 0 {
		pattern := make([]token.Token, 0, len(args))
		for _, f := range args {
			v, err := strconv.ParseUint(f, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("dawgutil: invalid token %q: %w", f, err)
			}
			pattern = append(pattern, token.Token(v))
		}
		return pattern, nil
	}
	docs, err := readDocuments(r)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

func parseTokenWidth(s string) (token.Width, error) {
	switch s {
	case "16":
		return token.Width16, nil
	case "32", "":
		return token.Width32, nil
	default:
		return 0, fmt.Errorf("dawgutil: invalid --token-width %q (want 16 or 32)", s)
	}
}
