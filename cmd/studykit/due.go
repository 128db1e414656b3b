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

func newDueCommand() *cobra.Command {
	var deckID string
	var limit int
	var leechesOnly bool

	command := &cobra.Command{
		Use:   "due <user-id>",
		Short: "Show a user's due flashcards",
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

			if limit <= 0 {
				limit = cfg.Review.DuePageLimit
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

			input := duequeue.DueFlashcardsInput{
				UserID:      userID,
				Limit:       limit,
				LeechesOnly: leechesOnly,
			}
			if deckID != "" {
				input.DeckID = &deckID
			}
			due, err := resolver.GetDueFlashcards(cmd.Context(), input)
			if err != nil {
				return fmt.Errorf("resolver.GetDueFlashcards() > %w", err)
			}

			if len(due) == 0 {
				color.Green("Nothing due for %s", userID)
				return nil
			}
			for i, item := range due {
				line := fmt.Sprintf("%d: %s\t(interval %dd, reviews %d, due %s)",
					i+1, item.Card.Front, item.Record.IntervalDays, item.Record.Repetitions,
					item.Record.NextReviewAt.Format("2006-01-02"))
				if item.Record.IsLeech {
					color.Red("%s [leech]", line)
					continue
				}
				fmt.Println(line)
			}
			return nil
		},
	}
	command.Flags().StringVar(&deckID, "deck", "", "restrict to one deck")
	command.Flags().IntVar(&limit, "limit", 0, "page size (defaults to the configured due page limit)")
	command.Flags().BoolVar(&leechesOnly, "leeches", false, "show only items flagged as leeches")

	return command
}
