package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxInputSize caps one line of input, in bytes. BARISTA_MAX_INPUT_SIZE
// overrides it.
const MaxInputSize = 1024

const envMaxInputSize = "BARISTA_MAX_INPUT_SIZE"

var (
	ErrInputTooLarge = errors.New("input too large")
	ErrInvalidUTF8   = errors.New("input is not valid UTF-8")
)

// SanitizeInput rejects oversized or malformed lines and drops every
// control character except tab, so terminal escapes never end up in a
// customer name, a log line or a stored order.
//
// Oversized input is rejected, not truncated: a cut name would be stored
// without anyone noticing.
func SanitizeInput(input string) (string, error) {
	if limit := inputLimit(); len(input) > limit {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}
	return strings.Map(func(r rune) rune {
		if r != '\t' && unicode.IsControl(r) {
			return -1
		}
		return r
	}, input), nil
}

func inputLimit() int {
	n, err := strconv.Atoi(os.Getenv(envMaxInputSize))
	if err != nil || n <= 0 {
		return MaxInputSize
	}
	return n
}
