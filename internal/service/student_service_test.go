package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facultrack/attendance-backend/internal/model"
	"github.com/facultrack/attendance-backend/internal/repository"
)

// Faculty 1 owns courses 1 and 2, faculty 2 owns course 3.
func newRosterFixture() (*StudentService, *fakeStudents, *fakeAudit) {
	courses := newFakeCourses(
		model.Course{ID: 1, CourseCode: "CS101", FacultyID: 1},
		model.Course{ID: 2, CourseCode: "CS201", FacultyID: 1},
		model.Course{ID: 3, CourseCode: "MATH101", FacultyID: 2},
	)
	students := newFakeStudents(courses,
		model.Student{ID: 1, StudentID: "STU001", Name: "Alice Johnson", CourseID: 1},
		model.Student{ID: 2, StudentID: "STU002", Name: "Bob Wilson", CourseID: 1},
		model.Student{ID: 3, StudentID: "STU003", Name: "Charlie Brown", CourseID: 3},
	)
	audit := &fakeAudit{}
	return NewStudentService(students, courses, audit, testLog), students, audit
}

func TestStudentCreate(t *testing.T) {
	tests := []struct {
		name      string
		facultyID int
		req       model.CreateStudentRequest
		wantErr   error
	}{
		{
			name:      "enrolls into own course",
			facultyID: 1,
			req:       model.CreateStudentRequest{StudentID: " STU010 ", Name: " Dana White ", CourseID: 2},
		},
		{
			name:      "another faculty's course",
			facultyID: 1,
			req:       model.CreateStudentRequest{StudentID: "STU011", Name: "Eve", CourseID: 3},
			wantErr:   repository.ErrNotFound,
		},
		{
			name:      "duplicate registration number",
			facultyID: 1,
			req:       model.CreateStudentRequest{StudentID: "STU002", Name: "Bob Again", CourseID: 2},
			wantErr:   repository.ErrDuplicateStudentID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, audit := newRosterFixture()

			st, err := svc.Create(context.Background(), tt.facultyID, &tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, audit.entries)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "STU010", st.StudentID)
			assert.Equal(t, "Dana White", st.Name)
			assert.Equal(t, 2, st.CourseID)
			require.Len(t, audit.entries, 1)
			assert.Equal(t, model.AuditCreate, audit.entries[0].Action)
		})
	}
}

func TestStudentUpdate(t *testing.T) {
	tests := []struct {
		name      string
		id        int
		facultyID int
		req       model.UpdateStudentRequest
		wantErr   error
	}{
		{
			name:      "move into another faculty's course",
			id:        1,
			facultyID: 1,
			req:       model.UpdateStudentRequest{CourseID: intPtr(3)},
			wantErr:   repository.ErrNotFound,
		},
		{
			name:      "student of another faculty",
			id:        3,
			facultyID: 1,
			req:       model.UpdateStudentRequest{Name: strPtr("Stolen")},
			wantErr:   repository.ErrNotFound,
		},
		{
			name:      "duplicate registration number",
			id:        1,
			facultyID: 1,
			req:       model.UpdateStudentRequest{StudentID: strPtr("STU002")},
			wantErr:   repository.ErrDuplicateStudentID,
		},
		{
			name:      "move between own courses",
			id:        1,
			facultyID: 1,
			req:       model.UpdateStudentRequest{CourseID: intPtr(2), Name: strPtr(" Alice J. ")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, students, audit := newRosterFixture()
			before := students.students[tt.id]

			st, err := svc.Update(context.Background(), tt.id, tt.facultyID, &tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, before, students.students[tt.id], "failed update must not change the student")
				assert.Empty(t, audit.entries)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 2, st.CourseID)
			assert.Equal(t, "Alice J.", st.Name)
			assert.Equal(t, "STU001", st.StudentID, "omitted fields keep their values")
			require.Len(t, audit.entries, 1)
			assert.Equal(t, map[string]interface{}{"course_id": 2, "name": "Alice J."}, audit.entries[0].Changes)
		})
	}
}

func TestStudentDelete(t *testing.T) {
	t.Run("student of another faculty", func(t *testing.T) {
		svc, students, audit := newRosterFixture()

		err := svc.Delete(context.Background(), 3, 1)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Contains(t, students.students, 3)
		assert.Empty(t, audit.entries)
	})

	t.Run("unknown student", func(t *testing.T) {
		svc, _, _ := newRosterFixture()
		assert.ErrorIs(t, svc.Delete(context.Background(), 99, 1), repository.ErrNotFound)
	})

	t.Run("own student", func(t *testing.T) {
		svc, students, audit := newRosterFixture()

		require.NoError(t, svc.Delete(context.Background(), 2, 1))
		assert.NotContains(t, students.students, 2)
		require.Len(t, audit.entries, 1)
		assert.Equal(t, model.AuditDelete, audit.entries[0].Action)
	})
}

func TestStudentListByCourse(t *testing.T) {
	svc, _, _ := newRosterFixture()
	ctx := context.Background()

	roster, err := svc.ListByCourse(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "STU001", roster[0].StudentID)

	_, err = svc.ListByCourse(ctx, 3, 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
