package main

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/facultrack/attendance-backend/internal/config"
	"github.com/facultrack/attendance-backend/internal/database"
	"github.com/facultrack/attendance-backend/internal/logger"
	"github.com/facultrack/attendance-backend/internal/model"
	"github.com/facultrack/attendance-backend/internal/repository"
)

const demoPassword = "password123"

type seedCourse struct {
	code, name string
	faculty    int // index into faculties
}

type seedStudent struct {
	studentID, name, email string
	course                 int // index into courses
}

type seedSession struct {
	course          int
	day, start, end string
	venue           string
}

var (
	faculties = []model.Faculty{
		{Email: "john.doe@faculty.com", Name: "John Doe"},
		{Email: "jane.smith@faculty.com", Name: "Jane Smith"},
	}

	courses = []seedCourse{
		{"CS101", "Introduction to Computer Science", 0},
		{"CS201", "Data Structures", 0},
		{"MATH101", "Calculus I", 1},
	}

	students = []seedStudent{
		{"STU001", "Alice Johnson", "alice@student.com", 0},
		{"STU002", "Bob Wilson", "bob@student.com", 0},
		{"STU003", "Charlie Brown", "charlie@student.com", 1},
		{"STU004", "Diana Prince", "diana@student.com", 2},
	}

	sessions = []seedSession{
		{0, "Monday", "09:00", "10:30", "Room 101"},
		{1, "Wednesday", "11:00", "12:30", "Room 102"},
		{2, "Tuesday", "14:00", "15:30", "Room 201"},
	}
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	fmt.Println("=== Seeding demo data ===")

	// Wipe in one statement so foreign keys never block the reset.
	if _, err := pool.Exec(ctx,
		`TRUNCATE attendance, audit_logs, timetable_entries, students, courses, faculties RESTART IDENTITY CASCADE`,
	); err != nil {
		log.Fatal().Err(err).Msg("Failed to clear existing data")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	facultyRepo := repository.NewFacultyRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)

	for i := range faculties {
		faculties[i].PasswordHash = string(hash)
		if err := facultyRepo.Create(ctx, &faculties[i]); err != nil {
			log.Fatal().Err(err).Str("email", faculties[i].Email).Msg("Failed to create faculty")
		}
		fmt.Printf("Faculty %s (password %q)\n", faculties[i].Email, demoPassword)
	}

	courseIDs := make([]int, len(courses))
	for i, sc := range courses {
		c := &model.Course{CourseCode: sc.code, CourseName: sc.name, FacultyID: faculties[sc.faculty].ID}
		if err := courseRepo.Create(ctx, c); err != nil {
			log.Fatal().Err(err).Str("code", sc.code).Msg("Failed to create course")
		}
		courseIDs[i] = c.ID
	}

	roster := map[int][]int{} // course index -> student row IDs
	for _, ss := range students {
		email := ss.email
		s := &model.Student{StudentID: ss.studentID, Name: ss.name, Email: &email, CourseID: courseIDs[ss.course]}
		if err := studentRepo.Create(ctx, s); err != nil {
			log.Fatal().Err(err).Str("student_id", ss.studentID).Msg("Failed to create student")
		}
		roster[ss.course] = append(roster[ss.course], s.ID)
	}

	// Sessions and attendance go through the same transaction helpers the API uses.
	tx := repository.NewTxManager(pool)
	sessionIDs := make([]int, len(sessions))
	for i, ss := range sessions {
		facultyID := faculties[courses[ss.course].faculty].ID
		venue := ss.venue
		err := tx.WithScheduleLock(ctx, facultyID, func(ctx context.Context, store repository.TimetableStore) error {
			e := &model.TimetableEntry{
				FacultyID: facultyID,
				CourseID:  courseIDs[ss.course],
				DayOfWeek: ss.day,
				StartTime: ss.start,
				EndTime:   ss.end,
				Venue:     &venue,
			}
			if err := store.Create(ctx, e); err != nil {
				return err
			}
			sessionIDs[i] = e.ID
			return nil
		})
		if err != nil {
			log.Fatal().Err(err).Str("course", courses[ss.course].code).Msg("Failed to create timetable entry")
		}
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	marked := 0
	for i, day := range []time.Time{today, today.AddDate(0, 0, -1)} {
		marks := attendanceFor(roster[i])
		err := tx.WithAttendanceTx(ctx, func(ctx context.Context, store repository.AttendanceWriter) error {
			return store.UpsertBulk(ctx, sessionIDs[i], day, marks)
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to mark attendance")
		}
		marked += len(marks)
	}

	fmt.Printf("\nSeed completed! %d faculties, %d courses, %d students, %d sessions, %d attendance marks.\n",
		len(faculties), len(courses), len(students), len(sessions), marked)
}

// attendanceFor marks every third student absent so the demo shows both statuses.
func attendanceFor(studentIDs []int) []model.AttendanceMark {
	marks := make([]model.AttendanceMark, 0, len(studentIDs))
	for i, id := range studentIDs {
		status := model.AttendancePresent
		if i%3 == 2 {
			status = model.AttendanceAbsent
		}
		marks = append(marks, model.AttendanceMark{StudentID: id, Status: status})
	}
	return marks
}
