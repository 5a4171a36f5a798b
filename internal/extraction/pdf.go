package extraction

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxTextBytes caps extracted text; a daily report is a few pages at most.
const maxTextBytes = 512 * 1024

// ExtractTextLines pulls the plain text out of a PDF and returns its
// non-empty, trimmed lines. The pdf library panics on some malformed inputs,
// so the call is wrapped in recover.
func ExtractTextLines(data []byte) (lines []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			lines = nil
			err = fmt.Errorf("panic during PDF text extraction: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open PDF reader: %w", err)
	}

	plainText, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract plain text: %w", err)
	}
	textBytes, err := io.ReadAll(io.LimitReader(plainText, maxTextBytes))
	if err != nil {
		return nil, fmt.Errorf("read plain text: %w", err)
	}

	for _, line := range strings.Split(string(textBytes), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines, nil
}
