package parser

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-health-dashboard/internal/core/model"
)

// ParseDoctorReports reads a doctor_reports export. The note text lives in
// report_data.note; report_data may also arrive as a JSON string.
func (p *Parser) ParseDoctorReports(path string) ([]model.DoctorNote, error) {
	rows, err := p.ParseFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	notes := make([]model.DoctorNote, 0, len(rows))
	for _, row := range rows {
		notes = append(notes, DoctorNoteFromRow(row))
	}
	return notes, nil
}

// DoctorNoteFromRow extracts a DoctorNote from a generic report row.
func DoctorNoteFromRow(row model.RawLogRecord) model.DoctorNote {
	note := model.DoctorNote{
		PatientID: row.PatientID,
		CreatedAt: fmt.Sprint(row.CreatedAt),
		Note:      reportNote(row.Fields["report_data"]),
	}
	if id, ok := row.Fields["doctor_id"].(string); ok {
		note.DoctorID = id
	}
	if row.CreatedAt == nil {
		note.CreatedAt = ""
	}
	return note
}

func reportNote(v any) string {
	switch data := v.(type) {
	case map[string]any:
		if s, ok := data["note"].(string); ok {
			return s
		}
	case string:
		var decoded map[string]any
		if err := sonic.UnmarshalString(data, &decoded); err == nil {
			return reportNote(decoded)
		}
	}
	return ""
}
