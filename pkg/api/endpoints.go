package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/work-near-me/client/internal/domain"
)

// CreateJobInput mirrors the server's job creation contract.
type CreateJobInput struct {
	Title        string  `json:"title"`
	Description  string  `json:"description,omitempty"`
	HourlyRate   float64 `json:"hourly_rate"`
	TotalPayment float64 `json:"total_payment,omitempty"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

// CreateRatingInput mirrors the server's rating contract. Score is 1..5.
type CreateRatingInput struct {
	JobID    uuid.UUID `json:"job_id"`
	ToUserID uuid.UUID `json:"to_user_id"`
	Score    int       `json:"score"`
	Comment  string    `json:"comment,omitempty"`
}

type jobsEnvelope struct {
	Jobs []domain.Job `json:"jobs"`
}

type nearbyEnvelope struct {
	Jobs []domain.JobWithDistance `json:"jobs"`
}

type applicationsEnvelope struct {
	Applications []domain.Application `json:"applications"`
}

// Login exchanges credentials for a session. The server message for rejected
// credentials comes back verbatim as an *APIError.
func (c *Client) Login(ctx context.Context, phone, password string) (*domain.Session, error) {
	body := map[string]string{"phone": phone, "password": password}
	var sess domain.Session
	if err := c.doPublic(ctx, http.MethodPost, "/auth/login", body, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Register creates an account and returns its first session.
func (c *Client) Register(ctx context.Context, name, phone, password string, role domain.UserRole) (*domain.Session, error) {
	body := map[string]string{
		"name":     name,
		"phone":    phone,
		"password": password,
		"role":     string(role),
	}
	var sess domain.Session
	if err := c.doPublic(ctx, http.MethodPost, "/auth/register", body, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// NearbyJobs returns open jobs within radiusKm of pos, distance-annotated by
// the server.
func (c *Client) NearbyJobs(ctx context.Context, pos domain.Position, radiusKm float64) ([]domain.JobWithDistance, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(pos.Lat, 'f', -1, 64))
	query.Set("lng", strconv.FormatFloat(pos.Lng, 'f', -1, 64))
	query.Set("radius", strconv.FormatFloat(radiusKm, 'f', -1, 64))

	var envelope nearbyEnvelope
	if err := c.do(ctx, http.MethodGet, "/jobs/nearby", query, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Jobs, nil
}

// Job fetches one job by ID.
func (c *Client) Job(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	var job domain.Job
	if err := c.do(ctx, http.MethodGet, "/jobs/"+id.String(), nil, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// CreateJob posts a new job (employer only).
func (c *Client) CreateJob(ctx context.Context, input CreateJobInput) (*domain.Job, error) {
	var job domain.Job
	if err := c.do(ctx, http.MethodPost, "/jobs", nil, input, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Apply submits a worker application to a job.
func (c *Client) Apply(ctx context.Context, jobID uuid.UUID) (*domain.Application, error) {
	var app domain.Application
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/jobs/%s/apply", jobID), nil, nil, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// CompleteJob marks an assigned job done (employer only).
func (c *Client) CompleteJob(ctx context.Context, jobID uuid.UUID) (*domain.Job, error) {
	var job domain.Job
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/jobs/%s/complete", jobID), nil, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// AssignJob assigns a worker to a job (employer only).
func (c *Client) AssignJob(ctx context.Context, jobID, workerID uuid.UUID) (*domain.Job, error) {
	body := map[string]uuid.UUID{"worker_id": workerID}
	var job domain.Job
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/jobs/%s/assign", jobID), nil, body, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// MyJobs lists the jobs posted by the current employer.
func (c *Client) MyJobs(ctx context.Context) ([]domain.Job, error) {
	var envelope jobsEnvelope
	if err := c.do(ctx, http.MethodGet, "/jobs/my", nil, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Jobs, nil
}

// Assignments lists the jobs assigned to the current worker.
func (c *Client) Assignments(ctx context.Context) ([]domain.Job, error) {
	var envelope jobsEnvelope
	if err := c.do(ctx, http.MethodGet, "/jobs/assignments", nil, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Jobs, nil
}

// JobApplications lists applications for one of the employer's jobs.
func (c *Client) JobApplications(ctx context.Context, jobID uuid.UUID) ([]domain.Application, error) {
	var envelope applicationsEnvelope
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/jobs/%s/applications", jobID), nil, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Applications, nil
}

// AcceptApplication accepts a worker's application (employer only).
func (c *Client) AcceptApplication(ctx context.Context, appID uuid.UUID) (*domain.Application, error) {
	var app domain.Application
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/applications/%s/accept", appID), nil, nil, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// RejectApplication rejects a worker's application (employer only).
func (c *Client) RejectApplication(ctx context.Context, appID uuid.UUID) (*domain.Application, error) {
	var app domain.Application
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/applications/%s/reject", appID), nil, nil, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// CreateRating rates the other participant of a completed job.
func (c *Client) CreateRating(ctx context.Context, input CreateRatingInput) (*domain.Rating, error) {
	var rating domain.Rating
	if err := c.do(ctx, http.MethodPost, "/ratings", nil, input, &rating); err != nil {
		return nil, err
	}
	return &rating, nil
}
