package domain

import "time"

// Department is an organizational unit that owns employees.
type Department struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
