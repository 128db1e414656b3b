package main

import (
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/studykit/internal/cli"
	"github.com/at-ishikawa/studykit/internal/content"
	"github.com/at-ishikawa/studykit/internal/duequeue"
	"github.com/at-ishikawa/studykit/internal/interaction"
	"github.com/at-ishikawa/studykit/internal/response"
	"github.com/at-ishikawa/studykit/internal/schedule"
)

func newReviewCommand() *cobra.Command {
	var deckID string

	command := &cobra.Command{
		Use:   "review <user-id>",
		Short: "Start an interactive flashcard review session",
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

			interactions := interaction.NewService(interaction.NewDBRepository(db), logger)
			contentClient := content.NewClient(cfg.Content)
			resolver := duequeue.NewResolver(
				interactions,
				response.NewDBRepository(db),
				schedule.NewDBRepository(db),
				contentClient,
				contentClient.Questions(),
				logger,
				cfg.Content.BatchLookupLimit,
			)

			var deck *string
			if deckID != "" {
				deck = &deckID
			}
			reviewCLI := cli.NewReviewCLI(resolver, interactions, userID, deck, cfg.Review.DuePageLimit)
			return reviewCLI.Run(cmd.Context())
		},
	}
	command.Flags().StringVar(&deckID, "deck", "", "restrict to one deck")

	return command
}
