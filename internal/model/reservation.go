package model

import "time"

// Reservation represents a stored booking of a room by a user for a date
// range. The range is half-open: StartDate is the first booked day, EndDate
// is the first day no longer booked. The ID is assigned by the store on
// insert and never changes afterwards.
type Reservation struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	UserID    int64  `gorm:"not null"`
	RoomID    int64  `gorm:"index;not null"`
	StartDate Date   `gorm:"not null"`
	EndDate   Date   `gorm:"not null"`
	Status    Status `gorm:"size:16;not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
