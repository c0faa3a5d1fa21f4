package domain

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusOpen      JobStatus = "open"
	JobStatusAssigned  JobStatus = "assigned"
	JobStatusDone      JobStatus = "done"
	JobStatusCancelled JobStatus = "cancelled"
)

// Job is the read-only projection returned by the server. Field names mirror
// the backend's wire format exactly.
type Job struct {
	ID               uuid.UUID  `json:"id"`
	EmployerID       uuid.UUID  `json:"employer_id"`
	Employer         *User      `json:"employer,omitempty"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	HourlyRate       float64    `json:"hourly_rate"`
	TotalPayment     float64    `json:"total_payment"`
	Latitude         float64    `json:"latitude"`
	Longitude        float64    `json:"longitude"`
	Status           JobStatus  `json:"status"`
	AssignedWorkerID *uuid.UUID `json:"assigned_worker_id,omitempty"`
	AssignedWorker   *User      `json:"assigned_worker,omitempty"`
	EmployerRated    bool       `json:"employer_rated"`
	WorkerRated      bool       `json:"worker_rated"`
	CreatedAt        time.Time  `json:"created_at"`
}

// JobWithDistance is a Job annotated with its distance in kilometers from the
// reference position of a nearby search. Only nearby results carry it.
type JobWithDistance struct {
	Job
	Distance float64 `json:"distance"`
}

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// Application is a worker's application to an open job.
type Application struct {
	ID        uuid.UUID         `json:"id"`
	JobID     uuid.UUID         `json:"job_id"`
	Job       *Job              `json:"job,omitempty"`
	WorkerID  uuid.UUID         `json:"worker_id"`
	Worker    *User             `json:"worker,omitempty"`
	Status    ApplicationStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// Rating is a post-completion review between the two job participants.
type Rating struct {
	ID         uuid.UUID `json:"id"`
	JobID      uuid.UUID `json:"job_id"`
	FromUserID uuid.UUID `json:"from_user_id"`
	ToUserID   uuid.UUID `json:"to_user_id"`
	Score      int       `json:"score"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}
