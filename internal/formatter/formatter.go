// package formatter provides functions to export favorite libraries to various formats (CSV, Markdown, plain text)
// and to render members, items and reviews for the terminal
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

// ExportToCSV converts a Library to CSV format with columns: Type, ID, Title, Subtitle
func ExportToCSV(lib *models.Library) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Type", "ID", "Title", "Subtitle"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range lib.Items {
		record := []string{string(item.Ref.Type), item.Ref.ID, item.Title, item.Subtitle}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

func sectionTitle(t models.MediaType) string {
	switch t {
	case models.MediaMovie:
		return "Movies"
	case models.MediaSeries:
		return "Series"
	case models.MediaAlbum:
		return "Albums"
	default:
		return string(t)
	}
}

func itemLine(item models.MediaItem) string {
	title := item.Title
	if title == "" {
		title = item.Ref.String()
	}
	if item.Subtitle != "" {
		return fmt.Sprintf("%s (%s)", title, item.Subtitle)
	}
	return title
}

// ExportToMarkdown converts a Library to Markdown format, one section per media type
func ExportToMarkdown(lib *models.Library) ([]byte, error) {
	var buf bytes.Buffer

	if lib.Handle != "" {
		buf.WriteString(fmt.Sprintf("# @%s's favorites\n\n", lib.Handle))
	} else {
		buf.WriteString("# Favorites\n\n")
	}

	buf.WriteString(fmt.Sprintf("**Exported**: %s\n", lib.ExportedAt.Format("2006-01-02 15:04 MST")))
	buf.WriteString(fmt.Sprintf("**Items**: %d\n", len(lib.Items)))

	for _, t := range models.MediaTypes {
		items := lib.ByType(t)
		if len(items) == 0 {
			continue
		}
		buf.WriteString(fmt.Sprintf("\n## %s\n\n", sectionTitle(t)))
		for i, item := range items {
			buf.WriteString(fmt.Sprintf("%d. %s `%s`\n", i+1, itemLine(item), item.Ref.ID))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a Library to plain text format
func ExportToText(lib *models.Library) ([]byte, error) {
	var buf bytes.Buffer

	if lib.Handle != "" {
		buf.WriteString(fmt.Sprintf("Member: @%s\n", lib.Handle))
	}
	buf.WriteString(fmt.Sprintf("Items: %d\n", len(lib.Items)))

	for _, t := range models.MediaTypes {
		items := lib.ByType(t)
		if len(items) == 0 {
			continue
		}
		buf.WriteString(fmt.Sprintf("\n%s (%d)\n", sectionTitle(t), len(items)))
		for i, item := range items {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, itemLine(item)))
		}
	}

	return buf.Bytes(), nil
}

// LibraryMetadata is the summary written next to CSV exports.
type LibraryMetadata struct {
	Handle     string         `json:"handle"`
	ExportedAt string         `json:"exportedAt"`
	Counts     map[string]int `json:"counts"`
}

// ToMetadataJSON generates a JSON representation of library metadata (without items)
func ToMetadataJSON(lib *models.Library) ([]byte, error) {
	meta := LibraryMetadata{
		Handle:     lib.Handle,
		ExportedAt: lib.ExportedAt.Format("2006-01-02T15:04:05Z07:00"),
		Counts:     map[string]int{},
	}
	for _, t := range models.MediaTypes {
		meta.Counts[t.Plural()] = lib.Count(t)
	}
	return shared.MarshalJSON(meta, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	ItemsFile    string
	MetadataFile string
}

// WriteCSVExport exports a library to CSV format with accompanying metadata JSON file.
//
// Defaults to the member handle as the base filename & creates {base}_items.csv and {base}_metadata.json
func WriteCSVExport(lib *models.Library, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = lib.Handle
	}

	csvData, err := ExportToCSV(lib)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	itemsFile := baseFilepath + "_items.csv"
	if err := os.WriteFile(itemsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(lib)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		ItemsFile:    itemsFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
}

// WriteMarkdownExport exports a library to Markdown format in a dedicated directory.
//
// Directory name defaults to the member handle.
// Creates {dir}/README.md
func WriteMarkdownExport(lib *models.Library, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = lib.Handle
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(lib)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return &MarkdownExportResult{Directory: outputDir, Files: []string{mdFile}}, nil
}

// WriteTextExport exports a library to plain text format.
//
// Defaults to {handle}_favorites.txt as the filename.
func WriteTextExport(lib *models.Library, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_favorites.txt", lib.Handle)
	}

	textData, err := ExportToText(lib)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}
