package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// FacultySessionKey returns the cache key for one issued faculty token.
func (r *CacheKeyStruct) FacultySessionKey(facultyID int, jti string) string {
	return fmt.Sprintf("faculty:%d:session:%s", facultyID, jti)
}

// DashboardStatsKey returns the cache key for a faculty's dashboard stats.
func (r *CacheKeyStruct) DashboardStatsKey(facultyID int) string {
	return fmt.Sprintf("faculty:%d:dashboard:stats", facultyID)
}

// FacultyEventsChannel returns the Redis PubSub channel for a faculty's live events.
func (r *CacheKeyStruct) FacultyEventsChannel(facultyID int) string {
	return fmt.Sprintf("faculty:%d:events", facultyID)
}

var CacheKey = NewCacheKeyStruct()
