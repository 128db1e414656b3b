package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/studykit/internal/content"
	"github.com/at-ishikawa/studykit/internal/duequeue"
	"github.com/at-ishikawa/studykit/internal/interaction"
	"github.com/at-ishikawa/studykit/internal/response"
	"github.com/at-ishikawa/studykit/internal/schedule"
)

func newUpcomingCommand() *cobra.Command {
	var days int
	var limit int

	command := &cobra.Command{
		Use:   "upcoming <user-id>",
		Short: "Show a user's upcoming programmed reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := args[0]

			cfg, db, err := openDatabase()
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			logger, err := newLogger()
			if err != nil {
				return err
			}

			if days <= 0 {
				days = cfg.Review.UpcomingDays
			}
			contentClient := content.NewClient(cfg.Content)
			resolver := duequeue.NewResolver(
				interaction.NewService(interaction.NewDBRepository(db), logger),
				response.NewDBRepository(db),
				schedule.NewDBRepository(db),
				contentClient,
				contentClient.Questions(),
				logger,
				cfg.Content.BatchLookupLimit,
			)

			cursor := ""
			total := 0
			for {
				page, err := resolver.GetUpcomingProgrammedReviews(cmd.Context(), userID, days, limit, cursor)
				if err != nil {
					return fmt.Errorf("resolver.GetUpcomingProgrammedReviews() > %w", err)
				}
				for _, review := range page.Items {
					total++
					fmt.Printf("%d: %s\t%s\t%s (%s)\n",
						total, review.ScheduledDate.Format("2006-01-02"), review.Title,
						review.ContentID, review.ContentType)
				}
				if page.NextCursor == "" {
					break
				}
				cursor = page.NextCursor
			}

			if total == 0 {
				color.Green("No upcoming reviews for %s in the next %d days", userID, days)
			}
			return nil
		},
	}
	command.Flags().IntVar(&days, "days", 0, "window in days (defaults to the configured upcoming window)")
	command.Flags().IntVar(&limit, "limit", 50, "page size per query")

	return command
}
