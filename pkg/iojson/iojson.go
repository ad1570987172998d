// Package iojson reads and writes JSON for command line tools.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
)

// Error is the document written to the error stream when a value cannot be
// encoded.
type Error struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func errorDocument(msg string, cause error) []byte {
	doc, _ := json.Marshal(Error{
		Message: msg,
		Data:    map[string]any{"json_error": cause.Error()},
	})
	return doc
}

// WriteWith writes obj to w as indented JSON. When obj cannot be marshaled
// an Error document goes to ew instead and w is left untouched.
func WriteWith(w io.Writer, ew io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		_, werr := fmt.Fprintf(ew, "%s\n", errorDocument("encode JSON output", err))
		return werr
	}

	_, err = fmt.Fprintf(w, "%s\n", bits)
	return err
}

// WriteLine writes obj as a single compact JSON document followed by a newline.
func WriteLine(w io.Writer, obj any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(obj)
}
