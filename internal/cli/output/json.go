package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter formats data as JSON.
type JSONFormatter struct{}

// Format formats data as indented JSON. A plain string is assumed to be
// a JSON document already (the conductor's state dump) and is
// re-indented; if it does not parse it is written as a JSON string.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	if s, ok := data.(string); ok && json.Valid([]byte(s)) {
		data = json.RawMessage(s)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
