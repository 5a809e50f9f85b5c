package report

import (
	"encoding/json"
	"io"

	"github.com/unbound-force/edareport/internal/fragment"
)

// JSONOutline is the top-level JSON output structure.
type JSONOutline struct {
	Version string `json:"version"`
	fragment.Outline
}

// WriteJSON writes a report outline as formatted JSON to the writer.
func WriteJSON(w io.Writer, o fragment.Outline, version string) error {
	if o.Entries == nil {
		o.Entries = []fragment.Entry{}
	}
	if o.Metadata.Version == "" {
		o.Metadata.Version = version
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(JSONOutline{Version: version, Outline: o})
}
