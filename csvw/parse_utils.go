package csvw

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// isValidLangTag performs a structural BCP47 check: a 1-8 letter primary
// subtag followed by alphanumeric subtags, with optional JSON-LD 1.1
// base-direction suffix ("--ltr"/"--rtl"). It does not validate against the
// IANA subtag registry, matching the value context's documented contract
// syntactic validity, not registry membership.
func isValidLangTag(tag string) bool {
	if tag == "" {
		return false
	}

	if strings.Contains(tag, "--") {
		if strings.Count(tag, "--") > 1 {
			return false
		}
		switch {
		case strings.HasSuffix(tag, "--ltr"):
			tag = strings.TrimSuffix(tag, "--ltr")
		case strings.HasSuffix(tag, "--rtl"):
			tag = strings.TrimSuffix(tag, "--rtl")
		default:
			return false
		}
	}

	parts := strings.Split(tag, "-")
	if len(parts[0]) < 1 || len(parts[0]) > 8 {
		return false
	}
	for i, part := range parts {
		if part == "" {
			return false
		}
		for j := 0; j < len(part); j++ {
			ch := part[j]
			if i == 0 {
				if !((ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')) {
					return false
				}
			} else if !((ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')) {
				return false
			}
		}
	}
	return true
}

// readLineWithLimit reads a single physical line, failing with
// ErrLineTooLong if it exceeds maxBytes. Nothing in the package calls it:
// the dialect extractor and row iterator read records through csvTokenizer,
// which enforces its own byte limit.
func readLineWithLimit(reader *bufio.Reader, maxBytes int) (string, error) {
	if maxBytes <= 0 {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF && len(line) > 0 {
				return line, nil
			}
			return "", err
		}
		return line, nil
	}

	var buffer []byte
	for {
		part, err := reader.ReadSlice('\n')
		buffer = append(buffer, part...)
		if len(buffer) > maxBytes {
			discardLine(reader)
			return "", ErrLineTooLong
		}
		switch err {
		case nil:
			return string(buffer), nil
		case bufio.ErrBufferFull:
			continue
		case io.EOF:
			if len(buffer) > 0 {
				return string(buffer), nil
			}
			return "", io.EOF
		default:
			return "", err
		}
	}
}

func discardLine(reader *bufio.Reader) {
	for {
		_, err := reader.ReadSlice('\n')
		if err == nil || err != bufio.ErrBufferFull {
			return
		}
	}
}

// checkDecodeContext reports ctx.Err() if the context has already been
// canceled, without blocking. RowIterator.Next polls this before each
// record, and the JSON-LD processor before each operation.
func checkDecodeContext(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
