package plugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"resty.dev/v3"

	"github.com/vk/modgridgo/internal/ctxlog"
	"github.com/vk/modgridgo/internal/fsutil"
)

// Install places a plugin into the plugin root. A source starting with
// http(s) is fetched over the network and must serve the plugin's manifest
// document; any other source is a local directory that is copied
// recursively. The installed plugin is not loaded automatically.
func (m *Manager) Install(ctx context.Context, source string) (string, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return m.installRemote(ctx, source)
	}
	return m.installLocal(ctx, source)
}

// installRemote downloads the manifest into a uniquely named staging
// directory, then renames it to the plugin's declared name.
func (m *Manager) installRemote(ctx context.Context, url string) (string, error) {
	logger := ctxlog.FromContext(ctx)

	client := resty.New()
	defer client.Close()

	res, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch plugin from %s: %w", url, err)
	}
	if res.IsError() {
		return "", fmt.Errorf("failed to fetch plugin from %s: %s", url, res.Status())
	}

	staging := filepath.Join(m.dir, "install-"+uuid.NewString())
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(staging, ManifestFile), res.Bytes(), 0o644); err != nil {
		_ = os.RemoveAll(staging)
		return "", err
	}

	manifest, err := LoadManifest(filepath.Join(staging, ManifestFile))
	if err != nil {
		_ = os.RemoveAll(staging)
		return "", err
	}

	target := filepath.Join(m.dir, manifest.Name)
	if _, err := os.Stat(target); err == nil {
		_ = os.RemoveAll(staging)
		return "", fmt.Errorf("plugin '%s' is already installed", manifest.Name)
	}
	if err := os.Rename(staging, target); err != nil {
		_ = os.RemoveAll(staging)
		return "", err
	}

	logger.Info("Plugin installed from remote source.", "plugin", manifest.Name, "url", url)
	return manifest.Name, nil
}

// installLocal copies a plugin directory from the filesystem into the
// plugin root under the plugin's declared name.
func (m *Manager) installLocal(ctx context.Context, source string) (string, error) {
	logger := ctxlog.FromContext(ctx)

	manifest, err := LoadManifest(filepath.Join(source, ManifestFile))
	if err != nil {
		return "", err
	}

	target := filepath.Join(m.dir, manifest.Name)
	if _, err := os.Stat(target); err == nil {
		return "", fmt.Errorf("plugin '%s' is already installed", manifest.Name)
	}
	if err := fsutil.CopyDir(source, target); err != nil {
		_ = os.RemoveAll(target)
		return "", fmt.Errorf("failed to copy plugin from %s: %w", source, err)
	}

	logger.Info("Plugin installed from local source.", "plugin", manifest.Name, "source", source)
	return manifest.Name, nil
}

// Uninstall deactivates and unloads the named plugin, then deletes its
// on-disk directory.
func (m *Manager) Uninstall(ctx context.Context, name string) error {
	logger := ctxlog.FromContext(ctx)

	dir := filepath.Join(m.dir, name)
	if rec, ok := m.records[name]; ok {
		dir = rec.Dir
		if err := m.Deactivate(ctx, name); err != nil {
			logger.Error("Deactivation during uninstall failed; continuing.",
				"plugin", name, "error", err)
		}
		m.Unload(ctx, name)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to delete plugin directory %s: %w", dir, err)
	}
	logger.Info("Plugin uninstalled.", "plugin", name)
	return nil
}
