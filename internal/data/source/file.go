package source

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/samber/lo"

	"github.com/penwyp/go-health-dashboard/internal/core/model"
	"github.com/penwyp/go-health-dashboard/internal/data/parser"
	"github.com/penwyp/go-health-dashboard/internal/data/scanner"
	"github.com/penwyp/go-health-dashboard/internal/util"
)

// FileSource reads table exports from a directory.
type FileSource struct {
	scanner *scanner.FileScanner
	parser  *parser.Parser
}

// NewFileSource creates a FileSource over dir.
func NewFileSource(dir string, concurrency int) *FileSource {
	return &FileSource{
		scanner: scanner.NewFileScanner(dir),
		parser:  parser.NewParser(concurrency),
	}
}

// Dir returns the export directory.
func (s *FileSource) Dir() string {
	return s.scanner.BaseDir()
}

// FetchLogs collects rows of the category's table belonging to patientID.
// Rows without a patient_id belong to the patient directory they sit in.
func (s *FileSource) FetchLogs(ctx context.Context, patientID string, category model.Category) ([]model.RawLogRecord, error) {
	files, err := s.scanner.TableFiles(category.Table())
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.Dir(), err)
	}

	var records []model.RawLogRecord
	for result := range s.parser.ParseFiles(files) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if result.Error != nil {
			util.LogWarnf("Failed to parse file %s: %v", result.File, result.Error)
			continue
		}

		owner := s.scanner.PatientDir(result.File)
		for _, rec := range result.Records {
			if rec.PatientID == "" {
				rec.PatientID = owner
			}
			if patientID != "" && rec.PatientID != patientID {
				continue
			}
			rec.Category = category
			records = append(records, rec)
		}
	}
	return records, nil
}

// FetchDoctorNotes reads doctor_reports exports.
func (s *FileSource) FetchDoctorNotes(ctx context.Context, doctorID, patientID string) ([]model.DoctorNote, error) {
	notes, err := s.collectNotes(ctx, func(n model.DoctorNote) bool {
		return n.PatientID == patientID && (doctorID == "" || n.DoctorID == doctorID)
	})
	if err != nil {
		return nil, err
	}
	return VisibleNotes(notes), nil
}

// AllDoctorNotes returns every doctor note on patientID, or on every
// patient when patientID is empty, blank ones included.
func (s *FileSource) AllDoctorNotes(ctx context.Context, patientID string) ([]model.DoctorNote, error) {
	return s.collectNotes(ctx, func(n model.DoctorNote) bool {
		return patientID == "" || n.PatientID == patientID
	})
}

func (s *FileSource) collectNotes(ctx context.Context, keep func(model.DoctorNote) bool) ([]model.DoctorNote, error) {
	files, err := s.scanner.TableFiles(model.TableDoctorReports)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.Dir(), err)
	}

	var notes []model.DoctorNote
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fileNotes, err := s.parser.ParseDoctorReports(f)
		if err != nil {
			util.LogWarnf("Failed to parse doctor reports %s: %v", f, err)
			continue
		}
		owner := s.scanner.PatientDir(f)
		for _, n := range fileNotes {
			if n.PatientID == "" {
				n.PatientID = owner
			}
			if keep(n) {
				notes = append(notes, n)
			}
		}
	}
	return notes, nil
}

// Invalidate forgets cached parses of a changed file.
func (s *FileSource) Invalidate(path string) {
	s.parser.Forget(filepath.Clean(path))
}

func (s *FileSource) Close() error {
	return nil
}

// Patients lists every patient that has at least one log row, sorted.
func (s *FileSource) Patients(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	for _, c := range model.AllCategories {
		records, err := s.FetchLogs(ctx, "", c)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			if r.PatientID != "" {
				seen[r.PatientID] = struct{}{}
			}
		}
	}
	patients := lo.Keys(seen)
	sort.Strings(patients)
	return patients, nil
}
