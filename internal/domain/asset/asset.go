package asset

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Asset is a named, immutable payload with a fixed destination below a root directory.
type Asset struct {
	// Name identifies the asset, e.g. "wallpaper".
	Name string
	// Path is the slash-separated destination relative to the deployment root.
	Path string
	// Data is the payload written verbatim.
	Data []byte
}

// Table is an ordered list of assets. Order is the write order.
type Table []Asset

var (
	// ErrEmptyName is returned for an asset without a name.
	ErrEmptyName = errors.New("asset name is empty")
	// ErrInvalidPath is returned for destinations that are empty, absolute or leave the root.
	ErrInvalidPath = errors.New("asset path must be relative and stay inside the root")
	// ErrDuplicate is returned when two assets share a name or a destination.
	ErrDuplicate = errors.New("duplicate asset")
	// ErrNotFound is returned by Lookup for unknown names.
	ErrNotFound = errors.New("asset not found")
)

// Destination returns the absolute on-disk location of the asset below root.
func (a *Asset) Destination(root string) string {
	return filepath.Join(root, filepath.FromSlash(a.Path))
}

// Validate checks names and destinations for emptiness, escapes and duplicates.
func (t Table) Validate() error {
	names := make(map[string]struct{}, len(t))
	paths := make(map[string]struct{}, len(t))

	for i := range t {
		a := &t[i]

		if a.Name == "" {
			return fmt.Errorf("asset #%d: %w", i, ErrEmptyName)
		}

		if !validPath(a.Path) {
			return fmt.Errorf("asset %s (%q): %w", a.Name, a.Path, ErrInvalidPath)
		}

		if _, ok := names[a.Name]; ok {
			return fmt.Errorf("name %s: %w", a.Name, ErrDuplicate)
		}

		// Windows paths are case-insensitive.
		key := strings.ToLower(path.Clean(a.Path))
		if _, ok := paths[key]; ok {
			return fmt.Errorf("path %s: %w", a.Path, ErrDuplicate)
		}

		names[a.Name] = struct{}{}
		paths[key] = struct{}{}
	}

	return nil
}

// Lookup returns the asset with the given name.
func (t Table) Lookup(name string) (*Asset, error) {
	for i := range t {
		if t[i].Name == name {
			return &t[i], nil
		}
	}

	return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
}

// Size returns the total payload size in bytes.
func (t Table) Size() int64 {
	var total int64
	for i := range t {
		total += int64(len(t[i].Data))
	}

	return total
}

func validPath(p string) bool {
	if p == "" || strings.Contains(p, `\`) || path.IsAbs(p) || filepath.IsAbs(p) || filepath.VolumeName(p) != "" {
		return false
	}

	cleaned := path.Clean(p)

	return cleaned != "." && cleaned != ".." && !strings.HasPrefix(cleaned, "../")
}
