package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// VisitorStatus represents the state of a gate pass
type VisitorStatus string

const (
	StatusEntered   VisitorStatus = "ENTERED"
	StatusExited    VisitorStatus = "EXITED"
	StatusCancelled VisitorStatus = "CANCELLED"
)

// Visitor represents one vehicle entry at the facility
type Visitor struct {
	BaseModel
	PlateNumber  string         `gorm:"size:20;not null;index" json:"plateNumber"`
	VisitDate    time.Time      `gorm:"type:date;not null" json:"visitDate"`
	EntryTime    string         `gorm:"size:8;not null" json:"entryTime"`
	EntryGate    string         `gorm:"size:50;not null" json:"entryGate"`
	VisitorName  string         `gorm:"size:100;not null" json:"visitorName"`
	MobileNumber string         `gorm:"size:20;not null" json:"mobileNumber"`
	Purpose      string         `gorm:"size:255;not null" json:"purpose"`
	VehicleType  string         `gorm:"size:50" json:"vehicleType,omitempty"`
	Status       VisitorStatus  `gorm:"size:20;default:'ENTERED'" json:"status"`
	Notes        string         `gorm:"type:text" json:"notes,omitempty"`
	ExitTime     string         `gorm:"size:8" json:"exitTime,omitempty"`
	ExitGate     string         `gorm:"size:50" json:"exitGate,omitempty"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// NormalizePlate uppercases a plate number and strips all whitespace.
// Callers apply it before persisting; the model itself never mutates input.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.Join(strings.Fields(plate), ""))
}
