package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/facultrack/attendance-backend/internal/config"
	"github.com/facultrack/attendance-backend/internal/model"
	"github.com/facultrack/attendance-backend/internal/repository"
	"github.com/facultrack/attendance-backend/internal/schedule"
)

// ErrInvalidPeriod is returned for an out-of-range month or year.
var ErrInvalidPeriod = errors.New("month must be 1-12 and year must be positive")

const recentActivityLimit = 5

// DayLister lists a faculty's sessions on one weekday.
type DayLister interface {
	ListByDay(ctx context.Context, facultyID int, day string) ([]model.TodayEntry, error)
}

// DashboardService handles the faculty dashboard.
type DashboardService struct {
	repo       *repository.DashboardRepository
	timetables DayLister
	rdb        *redis.Client
	cacheTTL   time.Duration
	log        zerolog.Logger
	now        func() time.Time
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo *repository.DashboardRepository, timetables DayLister, rdb *redis.Client, cacheTTL time.Duration, log zerolog.Logger) *DashboardService {
	return &DashboardService{
		repo:       repo,
		timetables: timetables,
		rdb:        rdb,
		cacheTTL:   cacheTTL,
		log:        log.With().Str("component", "dashboard_service").Logger(),
		now:        time.Now,
	}
}

// TodaySchedule lists today's sessions flagged as current or upcoming
// relative to the server's local clock.
func (s *DashboardService) TodaySchedule(ctx context.Context, facultyID int) ([]model.TodayEntry, error) {
	now := s.now()
	entries, err := s.timetables.ListByDay(ctx, facultyID, now.Weekday().String())
	if err != nil {
		return nil, err
	}
	return annotateToday(entries, now.Hour()*60+now.Minute()), nil
}

// annotateToday marks each entry against the minute of day. An entry is
// current while minute is inside [start, end) and upcoming before it starts.
func annotateToday(entries []model.TodayEntry, minute int) []model.TodayEntry {
	for i := range entries {
		iv, err := schedule.NewTimeInterval(entries[i].DayOfWeek, entries[i].StartTime, entries[i].EndTime)
		if err != nil {
			continue
		}
		entries[i].IsCurrent = iv.Contains(minute)
		entries[i].IsUpcoming = minute < iv.StartMinute()
	}
	return entries
}

// Stats returns the headline numbers, served from Redis while fresh.
func (s *DashboardService) Stats(ctx context.Context, facultyID int) (*model.DashboardStats, error) {
	key := config.CacheKey.DashboardStatsKey(facultyID)

	if cached, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var stats model.DashboardStats
		if err := json.Unmarshal(cached, &stats); err == nil {
			return &stats, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Int("faculty_id", facultyID).Msg("Read stats cache failed")
	}

	stats := &model.DashboardStats{}
	var present, marked int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.CoursesCount, stats.TotalStudents, present, marked, err = s.repo.GetSummaryCounts(gctx, facultyID)
		return err
	})
	g.Go(func() error {
		var err error
		stats.RecentActivity, err = s.repo.GetRecentMarks(gctx, facultyID, recentActivityLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	stats.AverageAttendance = attendanceRate(present, marked)

	if payload, err := json.Marshal(stats); err == nil {
		if err := s.rdb.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Int("faculty_id", facultyID).Msg("Write stats cache failed")
		}
	}
	return stats, nil
}

// InvalidateStats drops the cached stats of a faculty.
func (s *DashboardService) InvalidateStats(ctx context.Context, facultyID int) {
	if err := s.rdb.Del(ctx, config.CacheKey.DashboardStatsKey(facultyID)).Err(); err != nil {
		s.log.Warn().Err(err).Int("faculty_id", facultyID).Msg("Invalidate stats cache failed")
	}
}

// AttendanceOverview compares attendance across courses. When month and year
// are both given it also returns per-day tallies for that month.
func (s *DashboardService) AttendanceOverview(ctx context.Context, facultyID int, month, year *int) (*model.AttendanceOverview, error) {
	from, to, monthly, err := monthRange(month, year)
	if err != nil {
		return nil, err
	}

	overview := &model.AttendanceOverview{CourseComparison: []model.CourseAttendanceRate{}}
	var tallies []repository.CourseTally

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tallies, err = s.repo.GetCourseTallies(gctx, facultyID)
		return err
	})
	if monthly {
		g.Go(func() error {
			var err error
			overview.MonthlyData, err = s.repo.GetDailyTallies(gctx, facultyID, from, to)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, t := range tallies {
		overview.CourseComparison = append(overview.CourseComparison, model.CourseAttendanceRate{
			CourseCode:     t.CourseCode,
			CourseName:     t.CourseName,
			AttendanceRate: attendanceRate(t.Present, t.Total),
		})
	}
	return overview, nil
}

// monthRange returns the first and last day of the requested month.
// monthly is false when either value is missing.
func monthRange(month, year *int) (from, to time.Time, monthly bool, err error) {
	if month == nil || year == nil {
		return time.Time{}, time.Time{}, false, nil
	}
	if *month < 1 || *month > 12 || *year < 1 {
		return time.Time{}, time.Time{}, false, ErrInvalidPeriod
	}
	from = time.Date(*year, time.Month(*month), 1, 0, 0, 0, 0, time.UTC)
	to = from.AddDate(0, 1, -1)
	return from, to, true, nil
}
