package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/penwyp/go-health-dashboard/internal/util"
)

// FileScanner finds store export files under a directory. Exports are
// named after their table (insulin.jsonl, meals.json, ...) and may sit at
// the top level or in one directory per patient.
type FileScanner struct {
	baseDir string
}

// NewFileScanner creates a new FileScanner instance
func NewFileScanner(baseDir string) *FileScanner {
	return &FileScanner{baseDir: baseDir}
}

// BaseDir returns the scanned directory.
func (s *FileScanner) BaseDir() string {
	return s.baseDir
}

// IsExportFile reports whether path looks like a table export.
func IsExportFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".jsonl" || ext == ".json"
}

// TableName returns the table an export file holds, e.g. "meals".
func TableName(path string) string {
	base := filepath.Base(path)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

// Scan returns every export file under the base directory.
func (s *FileScanner) Scan() ([]string, error) {
	start := time.Now()
	var files []string
	dirCount := 0

	util.LogDebugf("Start scanning directory: %s", s.baseDir)

	err := filepath.Walk(s.baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			util.LogDebugf("Skip file (error): %s - %v", path, err)
			return nil
		}
		if info.IsDir() {
			dirCount++
			return nil
		}
		if IsExportFile(path) {
			files = append(files, path)
		}
		return nil
	})

	util.LogDebugf("File scan completed: duration %v, scanned %d directories, found %d export files",
		time.Since(start), dirCount, len(files))

	return files, err
}

// TableFiles returns the export files holding table.
func (s *FileScanner) TableFiles(table string) ([]string, error) {
	files, err := s.Scan()
	if err != nil {
		return nil, err
	}

	table = strings.ToLower(table)
	matched := files[:0]
	for _, f := range files {
		if TableName(f) == table {
			matched = append(matched, f)
		}
	}
	return matched, nil
}

// PatientDir returns the patient a per-patient export file belongs to, or ""
// for files at the top level.
func (s *FileScanner) PatientDir(path string) string {
	rel, err := filepath.Rel(s.baseDir, path)
	if err != nil {
		return ""
	}
	dir := filepath.Dir(rel)
	if dir == "." {
		return ""
	}
	return filepath.Base(dir)
}
