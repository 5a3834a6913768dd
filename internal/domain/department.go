package domain

import "time"

// Department represents a high-level organizational unit tickets are
// routed to.
type Department struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Reason categorizes tickets within a department and carries the SLA
// policy applied to tickets created under it.
type Reason struct {
	ID                string
	DepartmentID      string
	Name              string
	ResponseMinutes   int
	ResolutionMinutes int
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
