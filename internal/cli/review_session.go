// Package cli implements the interactive review session for the terminal.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/at-ishikawa/studykit/internal/duequeue"
	"github.com/at-ishikawa/studykit/internal/interaction"
	"github.com/at-ishikawa/studykit/internal/srs"
)

var errEnd = errors.New("end of session")

// DueSource supplies the due flashcards for a session.
type DueSource interface {
	GetDueFlashcards(ctx context.Context, input duequeue.DueFlashcardsInput) ([]duequeue.DueFlashcard, error)
}

// Reviewer records one graded review against the scheduling state.
type Reviewer interface {
	RecordReview(ctx context.Context, input interaction.RecordReviewInput) (*interaction.Record, error)
}

// ReviewCLI drives an interactive flashcard review session: show the front,
// reveal the back, read a recall grade, record it, repeat until the due queue
// drains or the user quits.
type ReviewCLI struct {
	dueSource    DueSource
	reviewer     Reviewer
	userID       string
	deckID       *string
	pageLimit    int
	stdinReader  *bufio.Reader
	stdoutWriter io.Writer
	bold         *color.Color
	italic       *color.Color
}

// NewReviewCLI creates a new ReviewCLI reading from stdin and writing to
// stdout.
func NewReviewCLI(dueSource DueSource, reviewer Reviewer, userID string, deckID *string, pageLimit int) *ReviewCLI {
	return &ReviewCLI{
		dueSource:    dueSource,
		reviewer:     reviewer,
		userID:       userID,
		deckID:       deckID,
		pageLimit:    pageLimit,
		stdinReader:  bufio.NewReader(os.Stdin),
		stdoutWriter: os.Stdout,
		bold:         color.New(color.Bold),
		italic:       color.New(color.Italic),
	}
}

// Run loops review sessions until the due queue drains, the user quits, or an
// interrupt arrives.
func (cli *ReviewCLI) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	errCh := make(chan error)
	go func() {
		defer close(errCh)

	LOOP:
		for {
			select {
			case <-ctx.Done():
				break LOOP
			default:
			}

			if err := cli.session(ctx); err != nil {
				if errors.Is(err, errEnd) {
					break
				}
				errCh <- err
				break
			}
		}
	}()
	select {
	case <-ctx.Done():
		fmt.Fprintln(cli.stdoutWriter, "Received interrupt signal, exiting...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("cli.session() > %w", err)
		}
	}
	return nil
}

func (cli *ReviewCLI) session(ctx context.Context) error {
	due, err := cli.dueSource.GetDueFlashcards(ctx, duequeue.DueFlashcardsInput{
		UserID: cli.userID,
		DeckID: cli.deckID,
		Limit:  cli.pageLimit,
	})
	if err != nil {
		return fmt.Errorf("dueSource.GetDueFlashcards() > %w", err)
	}
	if len(due) == 0 {
		color.New(color.FgGreen).Fprintln(cli.stdoutWriter, "Nothing left to review. Well done!")
		return errEnd
	}

	for _, item := range due {
		if err := cli.reviewCard(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (cli *ReviewCLI) reviewCard(ctx context.Context, item duequeue.DueFlashcard) error {
	cli.bold.Fprintf(cli.stdoutWriter, "\n%s\n", item.Card.Front)
	if item.Record.IsLeech {
		color.New(color.FgRed).Fprintln(cli.stdoutWriter, "This card is a leech. Consider rewriting it.")
	}

	fmt.Fprint(cli.stdoutWriter, "Press enter to reveal the answer (q to quit): ")
	line, err := cli.readLine()
	if err != nil {
		return err
	}
	if line == "q" {
		return errEnd
	}

	cli.italic.Fprintf(cli.stdoutWriter, "%s\n", item.Card.Back)

	quality, err := cli.readQuality()
	if err != nil {
		return err
	}

	record, err := cli.reviewer.RecordReview(ctx, interaction.RecordReviewInput{
		UserID:  cli.userID,
		ItemID:  item.Card.ID,
		DeckID:  cli.deckID,
		Quality: quality,
	})
	if err != nil {
		return fmt.Errorf("reviewer.RecordReview() > %w", err)
	}

	if srs.Passed(quality) {
		color.New(color.FgGreen).Fprintf(cli.stdoutWriter, "Next review in %d day(s)\n", record.IntervalDays)
		return nil
	}
	color.New(color.FgRed).Fprintln(cli.stdoutWriter, "Back to the start. It comes up again tomorrow.")
	return nil
}

func (cli *ReviewCLI) readQuality() (int, error) {
	for {
		fmt.Fprintf(cli.stdoutWriter, "How well did you recall it? (%d-%d, q to quit): ",
			srs.MinQuality, srs.MaxQuality)
		line, err := cli.readLine()
		if err != nil {
			return 0, err
		}
		if line == "q" {
			return 0, errEnd
		}
		quality, err := strconv.Atoi(line)
		if err != nil || quality < srs.MinQuality || quality > srs.MaxQuality {
			fmt.Fprintln(cli.stdoutWriter, "Enter a number between 0 and 5.")
			continue
		}
		return quality, nil
	}
}

func (cli *ReviewCLI) readLine() (string, error) {
	line, err := cli.stdinReader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", errEnd
		}
		return "", fmt.Errorf("stdinReader.ReadString() > %w", err)
	}
	return strings.TrimSpace(line), nil
}
