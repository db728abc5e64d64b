package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/stagegrid/internal/config"
	"github.com/specialistvlad/stagegrid/internal/ctxlog"
	"github.com/specialistvlad/stagegrid/internal/fsutil"
)

// Extensions lists the file extensions the loader understands.
var Extensions = []string{".json", ".yaml", ".yml", ".hcl"}

// Loader implements config.Loader for JSON, YAML and HCL files.
type Loader struct {
	schema *schema
}

var _ config.Loader = (*Loader)(nil)

// New creates a loader with the embedded arrangement schema compiled.
func New() *Loader {
	return &Loader{schema: mustCompileSchema()}
}

// Load reads the file at path, or every supported file below path when it is
// a directory. Arrangement names must be unique across all files read.
func (l *Loader) Load(ctx context.Context, path string) ([]*config.Arrangement, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loader started.", "path", path)

	info, err := os.Stat(path)
	if err != nil {
		return nil, config.ReadError(path, err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = fsutil.FindFilesByExtension(path, Extensions...)
		if err != nil {
			return nil, config.ReadError(path, err)
		}
		if len(files) == 0 {
			logger.Warn("No arrangement files found at the specified path.", "path", path)
		}
	}

	var all []*config.Arrangement
	seen := make(map[string]string)
	for _, file := range files {
		arrs, err := l.LoadFile(ctx, file)
		if err != nil {
			return nil, err
		}
		for _, a := range arrs {
			if prev, dup := seen[a.Name]; dup {
				return nil, config.Invalidf("arrangement %q is declared in both %s and %s", a.Name, prev, file)
			}
			seen[a.Name] = file
		}
		all = append(all, arrs...)
	}

	logger.Debug("Loading complete.", "files", len(files), "arrangements", len(all))
	return all, nil
}

// LoadFile reads a single file, choosing the format by extension.
func (l *Loader) LoadFile(ctx context.Context, file string) ([]*config.Arrangement, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, config.ReadError(file, err)
	}
	ctxlog.FromContext(ctx).Debug("Reading arrangement file.", "file", file, "bytes", len(data))

	switch ext := strings.ToLower(filepath.Ext(file)); ext {
	case ".json":
		return l.ReadJSON(file, data)
	case ".yaml", ".yml":
		return l.ReadYAML(file, data)
	case ".hcl":
		return l.ReadHCL(file, data)
	default:
		return nil, config.ReadError(file, fmt.Errorf("unsupported file extension %q", ext))
	}
}

// finish checks every arrangement and returns them.
func finish(source string, arrs []*config.Arrangement) ([]*config.Arrangement, error) {
	for _, a := range arrs {
		if err := a.Check(); err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
	}
	return arrs, nil
}

// Single picks the arrangement called name, or the only one when name is
// empty. Zero matches or an ambiguous choice is a configuration error.
func Single(arrs []*config.Arrangement, name string) (*config.Arrangement, error) {
	if name == "" {
		switch len(arrs) {
		case 0:
			return nil, config.Invalidf("no arrangement found")
		case 1:
			return arrs[0], nil
		default:
			names := make([]string, 0, len(arrs))
			for _, a := range arrs {
				names = append(names, a.Name)
			}
			return nil, config.Invalidf("found %d arrangements (%s), choose one by name", len(arrs), strings.Join(names, ", "))
		}
	}

	var match *config.Arrangement
	for _, a := range arrs {
		if a.Name != name {
			continue
		}
		if match != nil {
			return nil, config.Invalidf("arrangement %q is declared more than once", name)
		}
		match = a
	}
	if match == nil {
		return nil, config.Invalidf("arrangement %q not found", name)
	}
	return match, nil
}
