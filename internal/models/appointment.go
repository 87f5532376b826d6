// internal/models/appointment.go
package models

import "time"

// AppointmentProjection is the read-side view of an appointment.
type AppointmentProjection struct {
	ID           string    `json:"id" db:"id"`
	CustomerName string    `json:"customerName" db:"customer_name"`
	ServiceName  string    `json:"serviceName" db:"service_name"`
	StartTime    time.Time `json:"startTime" db:"start_time"`
	EndTime      time.Time `json:"endTime" db:"end_time"`
	Price        float64   `json:"price" db:"price"`
	Status       string    `json:"status" db:"status"`
}
