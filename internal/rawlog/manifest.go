package rawlog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestName is the file next to the raw logs that maps each log file
// back to its exact target, since Filename is lossy
const ManifestName = "targets.yaml"

type manifest struct {
	Files map[string]string `yaml:"files"`
}

// WriteManifest records the raw log file of every target in dir
func WriteManifest(dir string, targets []string) error {
	m := manifest{Files: make(map[string]string, len(targets))}
	for _, t := range targets {
		m.Files[Filename(t)] = t
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// readManifest returns file name → target for dir. A missing manifest yields
// an empty map.
func readManifest(dir string) (map[string]string, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest in %s: %w", dir, err)
	}
	if m.Files == nil {
		m.Files = map[string]string{}
	}
	return m.Files, nil
}

// TargetForFile resolves the target of a raw log path, preferring the
// manifest in the same directory over the file name
func TargetForFile(path string) (string, bool, error) {
	files, err := readManifest(filepath.Dir(path))
	if err != nil {
		return "", false, err
	}
	if t, ok := files[filepath.Base(path)]; ok {
		return t, true, nil
	}
	t, ok := TargetFromFilename(path)
	return t, ok, nil
}
