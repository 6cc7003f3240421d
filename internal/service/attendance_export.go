package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/facultrack/attendance-backend/internal/model"
)

const summarySheet = "Summary"

// ExportCourseSummary renders a course's attendance summary as an XLSX
// workbook and returns it with a suggested file name.
func (s *AttendanceService) ExportCourseSummary(ctx context.Context, facultyID, courseID int) ([]byte, string, error) {
	course, summary, err := s.CourseSummary(ctx, facultyID, courseID)
	if err != nil {
		return nil, "", err
	}

	buf, err := RenderSummaryWorkbook(course, summary)
	if err != nil {
		return nil, "", fmt.Errorf("render workbook: %w", err)
	}

	name := fmt.Sprintf("%s-attendance-%s.xlsx", course.CourseCode, time.Now().UTC().Format(model.DateLayout))
	return buf.Bytes(), name, nil
}

// RenderSummaryWorkbook writes one row per student with totals and rate.
func RenderSummaryWorkbook(course *model.Course, summary *model.CourseAttendanceSummary) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}

	header := []interface{}{"Student", "Sessions Marked", "Present", "Absent", "Rate (%)"}
	rows := [][]interface{}{
		{"Course", course.CourseCode + " " + course.CourseName},
		{"Scheduled sessions per week", summary.TotalClasses},
		{},
		header,
	}
	for _, st := range summary.StudentAttendance {
		rows = append(rows, []interface{}{st.Name, st.Total, st.Present, st.Total - st.Present, attendanceRate(st.Present, st.Total)})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(summarySheet, "A4", "E4", bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 32); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}

// attendanceRate is the rounded share of present marks, 0 when nothing is marked.
func attendanceRate(present, total int) int {
	if total == 0 {
		return 0
	}
	return int(float64(present)/float64(total)*100 + 0.5)
}
