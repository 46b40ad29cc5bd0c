// Package fixtures writes patient log exports for tests.
package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-health-dashboard/internal/core/model"
)

// Row is one flat store row.
type Row map[string]any

// TestDataGenerator writes per-patient table exports under a base directory.
type TestDataGenerator struct {
	baseDir string
}

// NewTestDataGenerator creates a new test data generator
func NewTestDataGenerator(baseDir string) *TestDataGenerator {
	return &TestDataGenerator{baseDir: baseDir}
}

// GetBaseDir returns the base directory for test data
func (g *TestDataGenerator) GetBaseDir() string {
	return g.baseDir
}

// PatientDir returns the directory of a patient's exports.
func (g *TestDataGenerator) PatientDir(patientID string) string {
	return filepath.Join(g.baseDir, patientID)
}

// WriteTable writes rows as <patient>/<table>.jsonl.
func (g *TestDataGenerator) WriteTable(patientID, table string, rows []Row) error {
	dir := g.PatientDir(patientID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	file, err := os.Create(filepath.Join(dir, table+".jsonl"))
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := sonic.ConfigDefault.NewEncoder(file)
	for _, row := range rows {
		if err := encoder.Encode(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteTableArray writes rows as a JSON array in <patient>/<table>.json.
func (g *TestDataGenerator) WriteTableArray(patientID, table string, rows []Row) error {
	dir := g.PatientDir(patientID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := sonic.Marshal(rows)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, table+".json"), data, 0644)
}

// GenerateTwoDayScenario writes a small, fully known data set starting on
// day (taken at UTC midnight):
//
//	day 1: CBG 100 and 120, breakfast, 30 min walk, 7h sleep, stress 4
//	day 2: CBG 90, lunch twice and dinner, 15 + 20 min, 6h then 8h sleep
//
// plus one malformed insulin row and one blank doctor note.
func (g *TestDataGenerator) GenerateTwoDayScenario(patientID string, day time.Time) error {
	d1 := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	at := func(d time.Time, hour int) string {
		return d.Add(time.Duration(hour) * time.Hour).Format(time.RFC3339)
	}

	tables := map[string][]Row{
		model.TableInsulin: {
			{"patient_id": patientID, "created_at": at(d1, 8), "cbg": 100, "dosage": 4, "notes": "fasting"},
			{"patient_id": patientID, "created_at": at(d1, 12), "cbg": 120, "cbg_pre_meal": 110},
			{"patient_id": patientID, "created_at": at(d2, 8), "cbg": 90, "cbg_post_meal": 140},
			{"patient_id": patientID, "created_at": "not-a-date", "cbg": 500},
		},
		model.TableMeals: {
			{"patient_id": patientID, "created_at": at(d1, 7), "meal_type": "breakfast", "dish": "champorado"},
			{"patient_id": patientID, "created_at": at(d2, 12), "meal_type": "lunch", "rice_cups": 1},
			{"patient_id": patientID, "created_at": at(d2, 13), "meal_type": "Lunch", "dish": "adobo"},
			{"patient_id": patientID, "created_at": at(d2, 19), "meal_type": "dinner", "drinks": "water"},
		},
		model.TableActivities: {
			{"patient_id": patientID, "created_at": at(d1, 17), "activity_type": "walk", "duration": 30},
			{"patient_id": patientID, "created_at": at(d2, 6), "activity_type": "yoga", "duration": "15"},
			{"patient_id": patientID, "created_at": at(d2, 18), "activity_type": "walk", "duration": 20},
		},
		model.TableSleep: {
			{"patient_id": patientID, "created_at": at(d1, 7), "sleep_hours": 7},
			{"patient_id": patientID, "created_at": at(d2, 6), "sleep_hours": 6},
			{"patient_id": patientID, "created_at": at(d2, 9), "sleep_hours": 8},
		},
		model.TableStress: {
			{"patient_id": patientID, "created_at": at(d1, 20), "stress_score": 4},
		},
	}
	for table, rows := range tables {
		if err := g.WriteTable(patientID, table, rows); err != nil {
			return fmt.Errorf("write %s: %w", table, err)
		}
	}

	return g.WriteDoctorReports(patientID, []Row{
		DoctorReport("doc-1", patientID, at(d2, 10), "Reduce evening dose"),
		DoctorReport("doc-1", patientID, at(d2, 11), "   "),
		DoctorReport("doc-2", patientID, at(d2, 12), "Other doctor's note"),
	})
}

// GenerateDays writes one insulin reading and one meal per day for n days.
func (g *TestDataGenerator) GenerateDays(patientID string, start time.Time, n int) error {
	var insulin, meals []Row
	for i := 0; i < n; i++ {
		ts := start.AddDate(0, 0, i).Format(time.RFC3339)
		insulin = append(insulin, Row{"patient_id": patientID, "created_at": ts, "cbg": 100 + i})
		meals = append(meals, Row{"patient_id": patientID, "created_at": ts, "meal_type": model.MealTypes[i%len(model.MealTypes)]})
	}
	if err := g.WriteTable(patientID, model.TableInsulin, insulin); err != nil {
		return err
	}
	return g.WriteTable(patientID, model.TableMeals, meals)
}

// DoctorReport builds a doctor_reports row.
func DoctorReport(doctorID, patientID, createdAt, note string) Row {
	return Row{
		"doctor_id":   doctorID,
		"patient_id":  patientID,
		"created_at":  createdAt,
		"report_data": map[string]any{"note": note},
	}
}

// WriteDoctorReports writes the doctor_reports export of a patient.
func (g *TestDataGenerator) WriteDoctorReports(patientID string, rows []Row) error {
	return g.WriteTable(patientID, model.TableDoctorReports, rows)
}

// CreateEmptyPatient creates a patient directory with empty exports.
func (g *TestDataGenerator) CreateEmptyPatient(patientID string) error {
	for _, c := range model.AllCategories {
		if err := g.WriteTable(patientID, c.Table(), nil); err != nil {
			return err
		}
	}
	return nil
}
