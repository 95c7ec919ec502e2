package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DatasetService lists detection result files in the data directory.
type DatasetService struct {
	dataDir string
	active  string
}

// NewDatasetService creates a dataset service. active is the file name of
// the dataset currently served by the store.
func NewDatasetService(dataDir, active string) *DatasetService {
	return &DatasetService{dataDir: dataDir, active: active}
}

// List returns all GeoJSON result files available in the data directory.
func (s *DatasetService) List() ([]DatasetFile, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []DatasetFile{}, nil
		}
		return nil, err
	}

	var files []DatasetFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".geojson" && ext != ".json" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, DatasetFile{
			Name:     entry.Name(),
			Size:     formatSize(info.Size()),
			Active:   entry.Name() == s.active,
			Modified: info.ModTime().UTC().Format(time.RFC3339),
		})
	}

	if files == nil {
		files = []DatasetFile{}
	}
	return files, nil
}

// Path resolves a dataset file name inside the data directory, rejecting
// anything that could escape it.
func (s *DatasetService) Path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid dataset name %q", name)
	}
	return filepath.Join(s.dataDir, name), nil
}

// Active returns the file name of the dataset currently served.
func (s *DatasetService) Active() string {
	return s.active
}

// formatSize returns a human-readable file size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
