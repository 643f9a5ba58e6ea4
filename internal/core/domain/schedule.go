package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

// Daily marks a schedule template that runs every day of the week.
const Daily time.Weekday = -1

type Route struct {
	ID            uuid.UUID
	Name          string
	StartLocation string
	EndLocation   string
	Stops         []string
	DistanceKM    float64
	BaseFare      float64
}

// ScheduleTemplate is a recurring bus run. DepartureTime and ArrivalTime are
// minutes after midnight in the operator's time zone.
type ScheduleTemplate struct {
	ID            uuid.UUID
	RouteID       uuid.UUID
	BusNumber     string
	DepartureTime int
	ArrivalTime   int
	DayOfWeek     time.Weekday
	TotalSeats    int
	Fare          float64
	Active        bool
}

func (s *ScheduleTemplate) RunsOn(date time.Time) bool {
	if !s.Active {
		return false
	}
	return s.DayOfWeek == Daily || s.DayOfWeek == date.Weekday()
}

// ScheduleInstance identifies one bus run on one calendar date. JourneyDate is
// always midnight UTC of that date.
type ScheduleInstance struct {
	ScheduleID  uuid.UUID
	JourneyDate time.Time
}

func NewScheduleInstance(scheduleID uuid.UUID, journeyDate time.Time) ScheduleInstance {
	return ScheduleInstance{ScheduleID: scheduleID, JourneyDate: DateOf(journeyDate)}
}

func (i ScheduleInstance) Key() string {
	return fmt.Sprintf("%s|%s", i.ScheduleID, i.JourneyDate.Format(DateLayout))
}

func (i ScheduleInstance) String() string { return i.Key() }

// ScheduleInstanceInfo is what the reference store reports about a run.
type ScheduleInstanceInfo struct {
	Instance      ScheduleInstance
	Exists        bool
	IsActive      bool
	TotalSeats    int
	Fare          float64
	DepartureTime int
}

// DepartureAt is the wall-clock departure of the run in loc.
func (i ScheduleInstanceInfo) DepartureAt(loc *time.Location) time.Time {
	d := i.Instance.JourneyDate
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc).
		Add(time.Duration(i.DepartureTime) * time.Minute)
}

// DateOf drops the clock part of t, keeping the calendar date t has in its own
// location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, NewError(KindInvalidDate, fmt.Sprintf("journey date %q is not YYYY-MM-DD", s))
	}
	return t, nil
}

// ParseTimeOfDay turns "HH:MM" into minutes after midnight.
func ParseTimeOfDay(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func FormatTimeOfDay(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
