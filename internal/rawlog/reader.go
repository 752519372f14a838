package rawlog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"latency-monitor/internal/models"
)

// Read parses raw log lines from r. Blank lines are skipped.
func Read(r io.Reader) ([]models.Outcome, error) {
	var out []models.Outcome
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		out = append(out, models.ParseOutcome(line))
	}
	if err := scanner.Err(); err != nil {
		return out, err
	}
	return out, nil
}

// Load reads a raw log file
func Load(path string) ([]models.Outcome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raw log: %w", err)
	}
	defer f.Close()

	out, err := Read(f)
	if err != nil {
		return out, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return out, nil
}

// TargetFromFilename recovers the target name from a raw log file name. The
// result is the sanitized name; use the manifest for the exact target.
func TargetFromFilename(name string) (string, bool) {
	name = filepath.Base(name)
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return "", false
	}
	target := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	return target, target != ""
}

// LoadDir reads every raw log in dir, keyed by target
func LoadDir(dir string) (map[string][]models.Outcome, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	files, err := readManifest(dir)
	if err != nil {
		return nil, nil, err
	}

	logs := make(map[string][]models.Outcome)
	var targets []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		target, ok := files[e.Name()]
		if !ok {
			target, ok = TargetFromFilename(e.Name())
		}
		if !ok {
			continue
		}
		outcomes, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, nil, err
		}
		logs[target] = outcomes
		targets = append(targets, target)
	}
	sort.Strings(targets)
	return logs, targets, nil
}
