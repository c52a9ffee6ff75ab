package models

import "time"

// StatusClass groups response codes for reporting
type StatusClass string

const (
	ClassOK       StatusClass = "OK"
	ClassNotFound StatusClass = "NOT_FOUND"
	ClassError    StatusClass = "ERROR"
)

// RequestRecord represents one served request in the access log
type RequestRecord struct {
	ID         string        `json:"id"`
	Method     string        `json:"method"`
	Path       string        `json:"path"`
	Status     int           `json:"status"`
	Bytes      int64         `json:"bytes"`
	Duration   time.Duration `json:"duration_ns"`
	RemoteAddr string        `json:"remote_addr,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Class returns the status class of the record
func (r *RequestRecord) Class() StatusClass {
	switch {
	case r.Status == 404:
		return ClassNotFound
	case r.Status >= 400:
		return ClassError
	default:
		return ClassOK
	}
}
