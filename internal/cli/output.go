package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// escribir prints v as indented JSON, or the text line otherwise.
func escribir(w io.Writer, format string, v any, texto string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprint(w, texto)
	return err
}
