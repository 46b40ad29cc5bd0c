package source

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/penwyp/go-health-dashboard/internal/core/model"
)

// SQLiteSource reads a local copy of the store tables.
type SQLiteSource struct {
	db *sql.DB
}

// tableColumns mirrors the store schema. Every table also has id,
// patient_id and created_at.
var tableColumns = map[model.Category][]string{
	model.CategoryInsulin:  {model.FieldDosage, model.FieldCBG, model.FieldCBGPreMeal, model.FieldCBGPostMeal, model.FieldNotes},
	model.CategoryMeal:     {model.FieldMealType, model.FieldCalories, model.FieldRiceCups, model.FieldDish, model.FieldDrinks, model.FieldNotes},
	model.CategoryActivity: {model.FieldActivityType, model.FieldDuration, model.FieldStartTime, model.FieldEndTime, model.FieldNotes},
	model.CategorySleep:    {model.FieldSleepHours, model.FieldNotes},
	model.CategoryStress:   {model.FieldStressScore, model.FieldNotes},
}

// NewSQLiteSource opens or creates the database at dbPath.
func NewSQLiteSource(dbPath string) (*SQLiteSource, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteSource{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteSource) migrate() error {
	var schema strings.Builder
	for _, c := range model.AllCategories {
		fmt.Fprintf(&schema, "CREATE TABLE IF NOT EXISTS %s (\n\tid TEXT PRIMARY KEY,\n\tpatient_id TEXT NOT NULL,\n\tcreated_at", c.Table())
		for _, col := range tableColumns[c] {
			fmt.Fprintf(&schema, ",\n\t%s", strings.TrimSpace(col+" "+columnType(col)))
		}
		schema.WriteString("\n);\n")
		fmt.Fprintf(&schema, "CREATE INDEX IF NOT EXISTS idx_%s_patient ON %s(patient_id);\n", c.Table(), c.Table())
	}
	schema.WriteString(`
	CREATE TABLE IF NOT EXISTS doctor_reports (
		id          TEXT PRIMARY KEY,
		doctor_id   TEXT NOT NULL,
		patient_id  TEXT NOT NULL,
		title       TEXT,
		report_data TEXT,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_doctor_reports_pair ON doctor_reports(doctor_id, patient_id);
	`)

	_, err := s.db.Exec(schema.String())
	return err
}

// Numeric columns have no declared type, so no affinity: whatever the app
// wrote (numbers, numeric text, junk) comes back unchanged for the
// normalizer to judge.
func columnType(col string) string {
	switch col {
	case model.FieldDosage, model.FieldCBG, model.FieldCBGPreMeal, model.FieldCBGPostMeal,
		model.FieldCalories, model.FieldRiceCups, model.FieldDuration,
		model.FieldSleepHours, model.FieldStressScore:
		return ""
	}
	return "TEXT"
}

// FetchLogs is SELECT * FROM <table> WHERE patient_id = ?.
func (s *SQLiteSource) FetchLogs(ctx context.Context, patientID string, category model.Category) ([]model.RawLogRecord, error) {
	if _, ok := tableColumns[category]; !ok {
		return nil, fmt.Errorf("unknown category %q", category)
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT * FROM %s WHERE patient_id = ?`, category.Table()), patientID)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", category.Table(), err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records []model.RawLogRecord
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", category.Table(), err)
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			if col == "id" || values[i] == nil {
				continue
			}
			row[col] = columnValue(values[i])
		}
		rec := model.FromRow(row)
		rec.Category = category
		records = append(records, rec)
	}
	return records, rows.Err()
}

// columnValue turns driver values into the shapes JSON exports produce.
func columnValue(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case int64:
		return float64(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	}
	return v
}

// FetchDoctorNotes returns non-blank notes, newest first.
func (s *SQLiteSource) FetchDoctorNotes(ctx context.Context, doctorID, patientID string) ([]model.DoctorNote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doctor_id, patient_id, report_data, created_at
		FROM doctor_reports
		WHERE doctor_id = ? AND patient_id = ?
		ORDER BY created_at DESC`, doctorID, patientID)
	if err != nil {
		return nil, fmt.Errorf("query doctor_reports: %w", err)
	}
	defer rows.Close()

	var notes []model.DoctorNote
	for rows.Next() {
		var (
			n          model.DoctorNote
			reportData sql.NullString
		)
		if err := rows.Scan(&n.DoctorID, &n.PatientID, &reportData, &n.CreatedAt); err != nil {
			return nil, err
		}
		if reportData.Valid {
			var data struct {
				Note string `json:"note"`
			}
			if err := sonic.UnmarshalString(reportData.String, &data); err == nil {
				n.Note = data.Note
			}
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return VisibleNotes(notes), nil
}

// InsertLogs writes records into the category's table. Fields that are not
// columns of the table are ignored. Returns the number of rows written.
func (s *SQLiteSource) InsertLogs(ctx context.Context, category model.Category, records []model.RawLogRecord) (int, error) {
	extra, ok := tableColumns[category]
	if !ok {
		return 0, fmt.Errorf("unknown category %q", category)
	}

	cols := append([]string{"id", model.FieldPatientID, model.FieldCreatedAt}, extra...)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", category.Table(), strings.Join(cols, ", "), placeholders)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		row := rec.Row()
		args := make([]any, len(cols))
		args[0] = newID(rec.CreatedAt)
		for i, col := range cols[1:] {
			args[i+1] = sqlValue(row[col])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert into %s: %w", category.Table(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(records), nil
}

// InsertDoctorNote stores a note the way the dashboard's note form does.
func (s *SQLiteSource) InsertDoctorNote(ctx context.Context, n model.DoctorNote) error {
	if n.CreatedAt == "" {
		n.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	data, err := sonic.MarshalString(map[string]string{"note": n.Note})
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO doctor_reports (id, doctor_id, patient_id, title, report_data, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		newID(n.CreatedAt), n.DoctorID, n.PatientID,
		"Doctor Note for Patient "+n.PatientID, data, n.CreatedAt)
	return err
}

// Patients lists every patient id that has at least one log row.
func (s *SQLiteSource) Patients(ctx context.Context) ([]string, error) {
	parts := make([]string, 0, len(model.AllCategories))
	for _, c := range model.AllCategories {
		parts = append(parts, "SELECT patient_id FROM "+c.Table())
	}
	rows, err := s.db.QueryContext(ctx, strings.Join(parts, " UNION ")+" ORDER BY patient_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// newID returns a ULID, using the record's own timestamp when it has a
// readable one so ids sort like the rows.
func newID(createdAt any) string {
	ts := time.Now()
	if str, ok := createdAt.(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, str); err == nil && t.Unix() > 0 {
			ts = t
		}
	}
	return ulid.MustNew(ulid.Timestamp(ts), ulid.DefaultEntropy()).String()
}

func sqlValue(v any) any {
	switch x := v.(type) {
	case nil, string, float64, int64, int, bool:
		return x
	default:
		s, err := sonic.MarshalString(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return s
	}
}
