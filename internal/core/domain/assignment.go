package domain

import (
	"time"

	"github.com/google/uuid"
)

type AssignmentStatus string

const (
	Unassigned AssignmentStatus = "UNASSIGNED"
	Assigned   AssignmentStatus = "ASSIGNED"
)

type DriverAssignment struct {
	ScheduleID uuid.UUID
	DriverID   *uuid.UUID
	Status     AssignmentStatus
	AssignedAt *time.Time
}

func (a *DriverAssignment) IsAssignedTo(driverID uuid.UUID) bool {
	return a != nil && a.Status == Assigned && a.DriverID != nil && *a.DriverID == driverID
}
