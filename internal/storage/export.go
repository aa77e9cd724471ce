package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Run       RunMetadata `json:"run"`
	Snapshots []Snapshot  `json:"snapshots"`
}

// ExportJSON writes a run and its snapshots as indented JSON.
func ExportJSON(w io.Writer, meta RunMetadata, snaps []Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: meta, Snapshots: snaps})
}
