// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gingfrederik/docx"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/content-engine/pkg/types"
)

// Format names an export encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatDOCX Format = "docx"
)

const (
	exportDir   = "exports"
	exportLimit = 100000
)

// ParseFormat accepts yaml, yml, json and docx.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "docx":
		return FormatDOCX, nil
	}
	return "", fmt.Errorf("unknown export format %q (want yaml, json or docx)", s)
}

// Export writes the records matching q to path, or to
// {store dir}/exports/drafts.{format} when path is empty. It returns the
// path written. A zero q.Limit exports every matching record.
func (s *Store) Export(ctx context.Context, q Query, format Format, path string) (string, error) {
	if q.Limit <= 0 {
		q.Limit = exportLimit
	}
	records, err := s.List(ctx, q)
	if err != nil {
		return "", fmt.Errorf("querying for export: %w", err)
	}

	if path == "" {
		path = filepath.Join(s.dir, exportDir, "drafts."+string(format))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	switch format {
	case FormatYAML:
		err = writeYAML(path, records)
	case FormatJSON:
		err = writeJSON(path, records)
	case FormatDOCX:
		err = writeDOCX(path, records)
	default:
		err = fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

func writeYAML(path string, records []types.PersistedRecord) error {
	if records == nil {
		records = []types.PersistedRecord{}
	}
	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func writeJSON(path string, records []types.PersistedRecord) error {
	if records == nil {
		records = []types.PersistedRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// writeDOCX renders one section per record: a heading with status and
// author, the generated draft, then the source reference in grey.
func writeDOCX(path string, records []types.PersistedRecord) error {
	f := docx.NewFile()

	title := f.AddParagraph().AddText("Content drafts")
	title.Size(20)
	f.AddParagraph()

	for _, rec := range records {
		heading := fmt.Sprintf("[%s] %s", rec.Status, rec.CreatedAt.Format("2006-01-02 15:04"))
		if rec.Author != "" {
			heading += " | " + rec.Author
		}
		run := f.AddParagraph().AddText(heading)
		run.Size(14)

		body := rec.Draft.Rewritten
		if rec.Kind == types.KindResearch {
			body = rec.OriginalText
		}
		for _, para := range strings.Split(body, "\n\n") {
			if para = strings.TrimSpace(para); para != "" {
				f.AddParagraph().AddText(para)
			}
		}

		if rec.Locator != "" {
			ref := f.AddParagraph().AddText("Source: " + rec.Locator)
			ref.Size(10)
			ref.Color("808080")
		}
		f.AddParagraph().AddText("--------------------------------------------------")
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("saving DOCX: %w", err)
	}
	return nil
}
