// Package render is the single place where command results become output.
package render

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Render writes a command result to w, either as plain text or as indented
// JSON. Byte slices render as hex in text mode.
func Render(w io.Writer, result interface{}, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return errors.Wrap(encoder.Encode(jsonValue(result)), "failed to render result")
	}

	switch v := result.(type) {
	case nil:
		return nil
	case string:
		_, err := fmt.Fprintln(w, v)
		return err
	case []byte:
		_, err := fmt.Fprintln(w, hex.EncodeToString(v))
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(w, v.String())
		return err
	default:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return errors.Wrap(encoder.Encode(v), "failed to render result")
	}
}

func jsonValue(result interface{}) interface{} {
	if raw, ok := result.([]byte); ok {
		return hex.EncodeToString(raw)
	}

	return result
}
