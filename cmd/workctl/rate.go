package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/work-near-me/client/pkg/api"
)

func newRateCmd(a *app) *cobra.Command {
	var comment string
	cmd := &cobra.Command{
		Use:   "rate <job-id> <user-id> <score>",
		Short: "Rate the other participant of a completed job (1–5)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			jobID, err := parseID(args[0])
			if err != nil {
				return err
			}
			toUserID, err := parseID(args[1])
			if err != nil {
				return err
			}
			score, err := strconv.Atoi(args[2])
			if err != nil || score < 1 || score > 5 {
				return fmt.Errorf("score must be an integer between 1 and 5")
			}

			rating, err := a.client.CreateRating(cmd.Context(), api.CreateRatingInput{
				JobID:    jobID,
				ToUserID: toUserID,
				Score:    score,
				Comment:  comment,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Rated %d/5 (rating %s)\n", rating.Score, rating.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&comment, "comment", "", "optional review comment")
	return cmd
}
