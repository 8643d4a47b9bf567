package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/formatter"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

// FavoritesLister lists the favorite refs of the signed-in member.
type FavoritesLister interface {
	Favorites(ctx context.Context, t models.MediaType) ([]models.MediaRef, error)
}

// ItemResolver turns a ref into a displayable item.
type ItemResolver interface {
	Lookup(ctx context.Context, ref models.MediaRef) (models.MediaItem, error)
}

// LibraryEngine builds and exports favorite libraries.
type LibraryEngine struct {
	favorites FavoritesLister
	resolver  ItemResolver
	logger    *log.Logger
}

// NewLibraryEngine creates a [LibraryEngine]. Item lookups go through resolver, which should be an
// anonymous client since the media endpoints are public.
func NewLibraryEngine(favorites FavoritesLister, resolver ItemResolver, logger *log.Logger) *LibraryEngine {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &LibraryEngine{
		favorites: favorites,
		resolver:  resolver,
		logger:    shared.WithLogger(logger, "component", "library"),
	}
}

// LibraryOpts configures [LibraryEngine.Library].
type LibraryOpts struct {
	Handle  string // Recorded in the snapshot
	Resolve bool   // Look up titles; unresolved items keep an empty title
	Pool    PoolOpts
}

// FailedItem is a favorite whose title could not be resolved.
type FailedItem struct {
	Ref models.MediaRef
	Err error
}

// LibraryResult is returned by [LibraryEngine.Library].
type LibraryResult struct {
	Library *models.Library
	Failed  []FailedItem
}

// Library snapshots the member's favorites of the given types (all types when empty).
//
// Listing failures abort the operation. Resolve failures are collected in [LibraryResult.Failed]
// and the item is kept with its ref only.
func (e *LibraryEngine) Library(ctx context.Context, progress chan<- ProgressUpdate, types []models.MediaType, opts LibraryOpts) (*LibraryResult, error) {
	if len(types) == 0 {
		types = models.MediaTypes
	}

	var refs []models.MediaRef
	for i, t := range types {
		Send(progress, fetchFavoritesUpdate(i+1, len(types), t))
		found, err := e.favorites.Favorites(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("failed to list favorite %s: %w", t.Plural(), err)
		}
		Send(progress, foundFavoritesUpdate(i+1, len(types), t, len(found)))
		refs = append(refs, found...)
	}

	lib := &models.Library{Handle: opts.Handle, ExportedAt: time.Now().UTC()}
	result := &LibraryResult{Library: lib}

	if !opts.Resolve || e.resolver == nil {
		for _, ref := range refs {
			lib.Items = append(lib.Items, models.MediaItem{Ref: ref})
		}
		return result, nil
	}

	type resolved struct {
		item models.MediaItem
		err  error
	}

	items, err := RunPool(ctx, refs, opts.Pool,
		func(ctx context.Context, ref models.MediaRef) resolved {
			item, err := e.resolver.Lookup(ctx, ref)
			if err != nil {
				return resolved{item: models.MediaItem{Ref: ref}, err: err}
			}
			return resolved{item: item}
		},
		func(completed int, ref models.MediaRef, r resolved) {
			if r.err != nil {
				e.logger.Warn("failed to resolve favorite", "ref", ref.String(), "err", r.err)
				Send(progress, resolveFailedUpdate(completed, len(refs), ref, r.err))
				return
			}
			Send(progress, resolvedItemUpdate(completed, len(refs), r.item))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("library resolve aborted: %w", err)
	}

	for _, r := range items {
		lib.Items = append(lib.Items, r.item)
		if r.err != nil {
			result.Failed = append(result.Failed, FailedItem{Ref: r.item.Ref, Err: r.err})
		}
	}
	return result, nil
}

// Supported export formats
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// ExportOpts configures [LibraryEngine.Export].
type ExportOpts struct {
	Format    string // json, csv, markdown or txt (default: json)
	OutputDir string // Created when missing (default: "<handle>_library")
}

// ExportResult lists the files written by an export.
type ExportResult struct {
	Directory string
	Files     []string
	Manifest  string
}

// ExportManifest describes an export on disk.
type ExportManifest struct {
	Handle     string         `json:"handle"`
	ExportedAt time.Time      `json:"exportedAt"`
	Format     string         `json:"format"`
	Counts     map[string]int `json:"counts"`
	Files      []string       `json:"files"`
}

// Export writes lib to disk and records an export_manifest.json next to the files.
func (e *LibraryEngine) Export(ctx context.Context, progress chan<- ProgressUpdate, lib *models.Library, opts ExportOpts) (*ExportResult, error) {
	if lib == nil {
		return nil, fmt.Errorf("%w: no library to export", shared.ErrMissingArgument)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("export aborted: %w", err)
	}

	format := strings.ToLower(opts.Format)
	if format == "" {
		format = FormatJSON
	}
	dir := opts.OutputDir
	if dir == "" {
		dir = strings.TrimPrefix(lib.Handle, "@") + "_library"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	Send(progress, writeExportUpdate(format, dir))

	result := &ExportResult{Directory: dir}
	base := filepath.Join(dir, "favorites")
	switch format {
	case FormatJSON:
		data, err := shared.MarshalJSON(lib, true)
		if err != nil {
			return nil, fmt.Errorf("failed to encode library: %w", err)
		}
		path := base + ".json"
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write JSON file: %w", err)
		}
		result.Files = append(result.Files, path)
	case FormatCSV:
		res, err := formatter.WriteCSVExport(lib, base)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, res.ItemsFile, res.MetadataFile)
	case FormatMarkdown, "md":
		format = FormatMarkdown
		res, err := formatter.WriteMarkdownExport(lib, dir)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, res.Files...)
	case FormatText, "text":
		format = FormatText
		path, err := formatter.WriteTextExport(lib, base+".txt")
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, path)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, opts.Format)
	}

	manifest := ExportManifest{
		Handle:     lib.Handle,
		ExportedAt: lib.ExportedAt,
		Format:     format,
		Counts:     map[string]int{},
		Files:      result.Files,
	}
	for _, t := range models.MediaTypes {
		manifest.Counts[t.Plural()] = lib.Count(t)
	}
	data, err := shared.MarshalJSON(manifest, true)
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	result.Manifest = filepath.Join(dir, "export_manifest.json")
	if err := os.WriteFile(result.Manifest, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}

	e.logger.Info("library exported", "format", format, "dir", dir, "items", len(lib.Items))
	return result, nil
}
