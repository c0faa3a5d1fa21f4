package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/work-near-me/client/internal/domain"
	"github.com/work-near-me/client/pkg/api"
)

func newJobsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Post, inspect, and work on jobs",
	}
	cmd.AddCommand(
		newJobsShowCmd(a),
		newJobsPostCmd(a),
		newJobsApplyCmd(a),
		newJobsCompleteCmd(a),
		newJobsAssignCmd(a),
		newJobsMyCmd(a),
		newJobsAssignmentsCmd(a),
		newJobsApplicationsCmd(a),
	)
	return cmd
}

func parseID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func newJobsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			job, err := a.client.Job(cmd.Context(), id)
			if err != nil {
				return err
			}
			printJob(job)
			return nil
		},
	}
}

func newJobsPostCmd(a *app) *cobra.Command {
	var input api.CreateJobInput
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a new job (employer)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			job, err := a.client.CreateJob(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Printf("Posted job %s\n", job.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&input.Title, "title", "", "job title")
	cmd.Flags().StringVar(&input.Description, "description", "", "job description")
	cmd.Flags().Float64Var(&input.HourlyRate, "hourly-rate", 0, "hourly rate")
	cmd.Flags().Float64Var(&input.TotalPayment, "total-payment", 0, "total payment")
	cmd.Flags().Float64Var(&input.Latitude, "lat", 0, "job latitude")
	cmd.Flags().Float64Var(&input.Longitude, "lng", 0, "job longitude")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("hourly-rate")
	cmd.MarkFlagRequired("lat")
	cmd.MarkFlagRequired("lng")
	return cmd
}

func newJobsApplyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <job-id>",
		Short: "Apply to a job (worker)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			app, err := a.client.Apply(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Printf("Applied: application %s is %s\n", app.ID, app.Status)
			return nil
		},
	}
}

func newJobsCompleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <job-id>",
		Short: "Mark an assigned job done (employer)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			job, err := a.client.CompleteJob(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Printf("Job %s is now %s\n", job.ID, job.Status)
			return nil
		},
	}
}

func newJobsAssignCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <job-id> <worker-id>",
		Short: "Assign a worker to a job (employer)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			jobID, err := parseID(args[0])
			if err != nil {
				return err
			}
			workerID, err := parseID(args[1])
			if err != nil {
				return err
			}
			job, err := a.client.AssignJob(cmd.Context(), jobID, workerID)
			if err != nil {
				return err
			}
			fmt.Printf("Job %s assigned\n", job.ID)
			return nil
		},
	}
}

func newJobsMyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "my",
		Short: "List jobs you posted (employer)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			jobs, err := a.client.MyJobs(cmd.Context())
			if err != nil {
				return err
			}
			printJobList(jobs)
			return nil
		},
	}
}

func newJobsAssignmentsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "assignments",
		Short: "List jobs assigned to you (worker)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			jobs, err := a.client.Assignments(cmd.Context())
			if err != nil {
				return err
			}
			printJobList(jobs)
			return nil
		},
	}
}

func newJobsApplicationsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "applications <job-id>",
		Short: "List applications for your job (employer)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			apps, err := a.client.JobApplications(cmd.Context(), id)
			if err != nil {
				return err
			}
			for _, app := range apps {
				name := "unknown"
				if app.Worker != nil {
					name = app.Worker.Name
				}
				fmt.Printf("  %s  %-20s %s\n", app.ID, name, app.Status)
			}
			return nil
		},
	}
	cmd.AddCommand(newApplicationDecisionCmd(a, "accept"), newApplicationDecisionCmd(a, "reject"))
	return cmd
}

func newApplicationDecisionCmd(a *app, verb string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <application-id>",
		Short: verb + " an application (employer)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var app2 *domain.Application
			if verb == "accept" {
				app2, err = a.client.AcceptApplication(cmd.Context(), id)
			} else {
				app2, err = a.client.RejectApplication(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			fmt.Printf("Application %s is now %s\n", app2.ID, app2.Status)
			return nil
		},
	}
}

func printJob(job *domain.Job) {
	fmt.Printf("%s [%s]\n", job.Title, job.Status)
	fmt.Printf("  id:       %s\n", job.ID)
	fmt.Printf("  rate:     %.0f đ/h (total %.0f đ)\n", job.HourlyRate, job.TotalPayment)
	fmt.Printf("  location: (%.6f, %.6f)\n", job.Latitude, job.Longitude)
	if job.Employer != nil {
		fmt.Printf("  employer: %s (%.1f★)\n", job.Employer.Name, job.Employer.RatingAvg)
	}
	if job.Description != "" {
		fmt.Printf("  %s\n", job.Description)
	}
}

func printJobList(jobs []domain.Job) {
	if len(jobs) == 0 {
		fmt.Println("no jobs")
		return
	}
	for _, job := range jobs {
		fmt.Printf("  %s  %-36s %-10s %9.0f đ/h\n", job.ID, job.Title, job.Status, job.HourlyRate)
	}
}
