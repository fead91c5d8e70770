package domain

import "time"

// Metadata describes the provenance of a prepared artifact. It is embedded
// into the GeoJSON output as a top-level "metadata" object so the frontend
// can display attribution and detect mock data.
type Metadata struct {
	Source      string `json:"source"`
	Version     string `json:"version"`
	Attribution string `json:"attribution"`
	License     string `json:"license,omitempty"`
	Processed   string `json:"processed,omitempty"`
	URL         string `json:"url,omitempty"`
	Note        string `json:"note,omitempty"`
}

// MockVersion marks placeholder artifacts in Metadata.Version.
const MockVersion = "MOCK"

// IsMock reports whether the metadata belongs to a placeholder artifact.
func (m Metadata) IsMock() bool {
	return m.Version == MockVersion
}

// NewMetadata stamps provenance metadata with the current processing time.
func NewMetadata(source, version, attribution, license, url string) Metadata {
	return Metadata{
		Source:      source,
		Version:     version,
		Attribution: attribution,
		License:     license,
		URL:         url,
		Processed:   Now().Format(time.RFC3339),
	}
}

// ArtifactEvent is the notification published when a pipeline run places a
// final artifact on disk.
type ArtifactEvent struct {
	Dataset    string    `json:"dataset"`
	Path       string    `json:"path"`
	Version    string    `json:"version"`
	Mock       bool      `json:"mock"`
	ProducedAt time.Time `json:"produced_at"`
}
