package report

import (
	"encoding/json"
	"fmt"
)

// ManifestEntry describes one diagram in machine-readable form.
type ManifestEntry struct {
	Index     int    `json:"index"`
	Source    string `json:"source"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Heading   string `json:"heading,omitempty"`
	Slug      string `json:"slug"`
	Filename  string `json:"filename"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Content   string `json:"content"`
}

// ManifestDoc is the JSON companion of the conversion report.
type ManifestDoc struct {
	Total    int             `json:"total"`
	Diagrams []ManifestEntry `json:"diagrams"`
}

// Manifest describes entries with the same numbering and filenames as Build.
func Manifest(entries []Entry) ManifestDoc {
	doc := ManifestDoc{
		Total:    len(entries),
		Diagrams: make([]ManifestEntry, 0, len(entries)),
	}

	for i, entry := range entries {
		n := i + 1
		record := entry.Record
		filename := SuggestedFilename(record.Heading, n)

		doc.Diagrams = append(doc.Diagrams, ManifestEntry{
			Index:     n,
			Source:    entry.Source,
			StartLine: record.StartLine,
			EndLine:   record.EndLine,
			Heading:   record.Heading,
			Slug:      filename[:len(filename)-len(imageExtension)],
			Filename:  filename,
			Width:     record.Width(),
			Height:    record.Height(),
			Content:   record.Content,
		})
	}

	return doc
}

// WriteManifest stores the JSON manifest for entries at path.
func WriteManifest(path string, entries []Entry) error {
	data, err := json.MarshalIndent(Manifest(entries), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return Write(path, string(data)+"\n")
}
