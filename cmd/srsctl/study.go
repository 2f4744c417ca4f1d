package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/flashquest-backend/internal/client"
	"github.com/heartmarshall/flashquest-backend/internal/domain"
	"github.com/heartmarshall/flashquest-backend/internal/reviewsession"
)

var studyCmd = &cobra.Command{
	Use:   "study",
	Short: "Review flashcards in the terminal",
	Long: "Runs a review session against a flashquest server.\n" +
		"Press Enter to reveal the answer, then 1-4 (again, hard, good, easy). q quits.",
	RunE: func(cmd *cobra.Command, args []string) error {
		server, _ := cmd.Flags().GetString("server")
		token, _ := cmd.Flags().GetString("token")
		if token == "" {
			token = os.Getenv("SRSCTL_TOKEN")
		}
		if token == "" {
			return errors.New("--token or SRSCTL_TOKEN is required")
		}

		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
		c, err := client.New(server, token, client.WithLogger(logger))
		if err != nil {
			return err
		}

		source, err := studySource(cmd, c)
		if err != nil {
			return err
		}

		ctrl := reviewsession.New(source, c, reviewsession.DefaultConfig(), logger)
		return runStudy(cmd.Context(), ctrl, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	studyCmd.Flags().String("server", "http://localhost:8080", "Server base URL")
	studyCmd.Flags().String("token", "", "Access token (defaults to $SRSCTL_TOKEN)")
	studyCmd.Flags().String("deck", "", "Deck id")
	studyCmd.Flags().Bool("due", false, "Only cards that are due (deck optional)")
	studyCmd.Flags().Int("limit", 20, "Maximum cards with --due")
}

func studySource(cmd *cobra.Command, c *client.Client) (reviewsession.Source, error) {
	rawDeck, _ := cmd.Flags().GetString("deck")
	due, _ := cmd.Flags().GetBool("due")

	var deckID *uuid.UUID
	if rawDeck != "" {
		id, err := uuid.Parse(rawDeck)
		if err != nil {
			return nil, fmt.Errorf("--deck: %w", err)
		}
		deckID = &id
	}

	if due {
		limit, _ := cmd.Flags().GetInt("limit")
		return reviewsession.DueSource{Fetcher: c, DeckID: deckID, Limit: limit}, nil
	}
	if deckID == nil {
		return nil, errors.New("--deck is required unless --due is set")
	}
	return reviewsession.DeckSource{Lister: c, DeckID: *deckID}, nil
}

var ratingKeys = map[string]domain.Rating{
	"1": domain.RatingAgain,
	"2": domain.RatingHard,
	"3": domain.RatingGood,
	"4": domain.RatingEasy,
}

// runStudy drives ctrl from line-oriented input until the session ends or
// input runs out.
func runStudy(ctx context.Context, ctrl *reviewsession.Controller, in io.Reader, out io.Writer) error {
	if err := ctrl.Load(ctx); err != nil {
		return err
	}

	sc := bufio.NewScanner(in)
	for !ctrl.State().IsTerminal() {
		card, _ := ctrl.Current()
		state := ctrl.State()

		switch state {
		case reviewsession.StatePresenting:
			fmt.Fprintf(out, "\n[%d left] %s\n(Enter to reveal, q to quit) ", ctrl.Remaining(), card.Front)
		case reviewsession.StateAwaitingRating:
			fmt.Fprintf(out, "=> %s\n1 again  2 hard  3 good  4 easy > ", card.Back)
		}

		if !sc.Scan() {
			_ = ctrl.Abandon()
			break
		}
		line := strings.TrimSpace(sc.Text())
		if strings.EqualFold(line, "q") {
			_ = ctrl.Abandon()
			break
		}

		switch state {
		case reviewsession.StatePresenting:
			if line == "" {
				_ = ctrl.Reveal()
			}
		case reviewsession.StateAwaitingRating:
			rating, ok := ratingKeys[line]
			if !ok {
				fmt.Fprintln(out, "press 1, 2, 3 or 4")
				continue
			}
			if err := ctrl.Rate(ctx, rating); err != nil {
				if ctx.Err() != nil || ctrl.State() == reviewsession.StateFailed {
					return err
				}
				fmt.Fprintf(out, "not saved: %v (rate again to retry)\n", err)
			}
		}
	}

	printSummary(out, ctrl)
	if ctrl.State() == reviewsession.StateFailed {
		return ctrl.Err()
	}
	return nil
}

func printSummary(out io.Writer, ctrl *reviewsession.Controller) {
	stats := ctrl.Stats()
	if ctrl.State() == reviewsession.StateComplete && stats.Reviewed == 0 {
		fmt.Fprintln(out, "\nnothing to review")
		return
	}

	fmt.Fprintf(out, "\nsession %s: reviewed %d, best streak %d\n", ctrl.State(), stats.Reviewed, stats.BestStreak)
	for _, r := range domain.Ratings {
		if n := stats.PerRating[r]; n > 0 {
			fmt.Fprintf(out, "  %-5s %d\n", r, n)
		}
	}
}
