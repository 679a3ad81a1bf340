// Package report renders a mailhealth.Report for people and programs.
//
// Three formats are supported:
//   - table: aligned two-column text, optionally coloured
//   - json: snake_case JSON document
//   - msgpack: the same document as MessagePack
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/synqronlabs/mailhealth"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("report: unknown format")

// Format selects the output encoding.
type Format string

const (
	FormatTable   Format = "table"
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// Formats lists the supported formats.
var Formats = []Format{FormatTable, FormatJSON, FormatMsgpack}

// ParseFormat converts a case-insensitive name into a Format.
// The empty string selects FormatTable.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FormatTable, nil
	}
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Options tune the output.
type Options struct {
	// Color enables ANSI colours in table output.
	Color bool
}

// Write encodes r to w in the given format.
func Write(w io.Writer, r *mailhealth.Report, format Format, opts Options) error {
	switch format {
	case FormatTable, "":
		return WriteTable(w, r, opts.Color)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatMsgpack:
		b, err := AppendMsgpack(nil, r)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
