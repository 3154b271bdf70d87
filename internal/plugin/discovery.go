package plugin

import (
	"context"
	"os"
	"path/filepath"

	"github.com/vk/modgridgo/internal/ctxlog"
)

// DiscoveryResult is the outcome of attempting to load one discovered
// plugin directory.
type DiscoveryResult struct {
	Dir  string
	Name string
	Err  error
}

// DiscoverAll scans the plugin root sequentially, one directory at a time,
// and loads every directory that carries a manifest. Per-plugin failures
// are caught, logged, and reported in the results so discovery always
// continues. A missing plugin root yields no results and no error.
func (m *Manager) DiscoverAll(ctx context.Context) []DiscoveryResult {
	logger := ctxlog.FromContext(ctx)

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("Plugin directory does not exist; nothing to discover.", "dir", m.dir)
			return nil
		}
		logger.Error("Failed to read plugin directory.", "dir", m.dir, "error", err)
		return nil
	}

	var results []DiscoveryResult
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(m.dir, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, ManifestFile)); err != nil {
			logger.Debug("Skipping directory without a plugin manifest.", "dir", dir)
			continue
		}

		rec, err := m.Load(ctx, entry.Name())
		result := DiscoveryResult{Dir: dir, Err: err}
		if rec != nil {
			result.Name = rec.Manifest.Name
		}
		if err != nil {
			logger.Error("Plugin discovery failed for directory; continuing.",
				"dir", dir, "error", err)
		}
		results = append(results, result)
	}

	logger.Info("Plugin discovery complete.", "discovered", len(results))
	return results
}
