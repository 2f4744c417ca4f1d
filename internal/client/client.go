// Package client is the Go client for the review API. It implements the
// interfaces the review session controller consumes, so a session can be
// driven against a remote server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/heartmarshall/flashquest-backend/internal/domain"
	"github.com/heartmarshall/flashquest-backend/internal/transport/rest"
)

// Client talks to the review API on behalf of one learner.
type Client struct {
	baseURL    *url.URL
	token      string
	http       *http.Client
	log        *slog.Logger
	getRetries uint64
	backoff    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithReadRetry sets how often idempotent reads are retried on transient
// failures and the base backoff between attempts. A non-positive backoff
// keeps the default. Submissions are not retried here; the caller owns their
// idempotency key.
func WithReadRetry(retries int, backoff time.Duration) Option {
	return func(c *Client) {
		c.getRetries = uint64(max(0, retries))
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// New creates a client for the server at baseURL authenticating with token.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    u,
		token:      token,
		http:       &http.Client{Timeout: 15 * time.Second},
		log:        slog.New(slog.DiscardHandler),
		getRetries: 3,
		backoff:    200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SubmitReview posts one rating. submittedAt is sent as-is so that a
// repeated call with the same value is applied at most once by the server.
func (c *Client) SubmitReview(ctx context.Context, flashcardID uuid.UUID, rating domain.Rating, submittedAt time.Time) (*domain.CardReview, error) {
	body := map[string]any{
		"flashcard_id":      flashcardID.String(),
		"difficulty_rating": rating.String(),
	}
	if !submittedAt.IsZero() {
		body["submitted_at"] = submittedAt.UTC().Format(time.RFC3339Nano)
	}

	var resp rest.CardReviewResponse
	if err := c.do(ctx, http.MethodPost, "/card_reviews", nil, body, &resp); err != nil {
		return nil, fmt.Errorf("submit review: %w", err)
	}
	return fromCardReviewResponse(resp)
}

// GetCardReview fetches the learner's record for a flashcard.
func (c *Client) GetCardReview(ctx context.Context, flashcardID uuid.UUID) (*domain.CardReview, error) {
	var resp rest.CardReviewResponse
	if err := c.get(ctx, "/card_reviews/"+flashcardID.String(), nil, &resp); err != nil {
		return nil, fmt.Errorf("get card review: %w", err)
	}
	return fromCardReviewResponse(resp)
}

// DeckFlashcards lists a deck's flashcards in catalog order.
func (c *Client) DeckFlashcards(ctx context.Context, deckID uuid.UUID) ([]domain.Flashcard, error) {
	var resp []rest.FlashcardResponse
	if err := c.get(ctx, "/decks/"+deckID.String()+"/flashcards", nil, &resp); err != nil {
		return nil, fmt.Errorf("list deck flashcards: %w", err)
	}

	out := make([]domain.Flashcard, 0, len(resp))
	for _, f := range resp {
		fc, err := fromFlashcardResponse(f)
		if err != nil {
			return nil, err
		}
		out = append(out, fc)
	}
	return out, nil
}

// ReviewQueue fetches up to limit queue items, optionally for one deck.
func (c *Client) ReviewQueue(ctx context.Context, deckID *uuid.UUID, limit int) ([]domain.QueueItem, error) {
	q := url.Values{}
	if deckID != nil {
		q.Set("deck_id", deckID.String())
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}

	var resp []rest.QueueItemResponse
	if err := c.get(ctx, "/review_queue", q, &resp); err != nil {
		return nil, fmt.Errorf("review queue: %w", err)
	}

	out := make([]domain.QueueItem, 0, len(resp))
	for _, it := range resp {
		fc, err := fromFlashcardResponse(it.Flashcard)
		if err != nil {
			return nil, err
		}
		item := domain.QueueItem{Flashcard: fc}
		if it.Review != nil {
			if item.Review, err = fromCardReviewResponse(*it.Review); err != nil {
				return nil, err
			}
		}
		out = append(out, item)
	}
	return out, nil
}

// QueueSummary fetches due and new counts.
func (c *Client) QueueSummary(ctx context.Context, deckID *uuid.UUID) (domain.QueueSummary, error) {
	q := url.Values{}
	if deckID != nil {
		q.Set("deck_id", deckID.String())
	}

	var resp rest.QueueSummaryResponse
	if err := c.get(ctx, "/review_queue/summary", q, &resp); err != nil {
		return domain.QueueSummary{}, fmt.Errorf("queue summary: %w", err)
	}
	return domain.QueueSummary{DueCount: resp.DueCount, NewCount: resp.NewCount}, nil
}

// get performs a GET with bounded retries on retryable errors.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	attempt := 0
	backoff := retry.WithMaxRetries(c.getRetries, retry.NewExponential(c.backoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := c.do(ctx, http.MethodGet, path, query, nil, out)
		if err != nil && domain.IsRetryable(err) {
			c.log.DebugContext(ctx, "retrying request",
				slog.String("path", path),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()),
			)
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// transportError classifies failures that produced no HTTP response.
func transportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	}
	return err
}

type errorBody struct {
	Error  string `json:"error"`
	Fields []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"fields"`
}

// statusError maps an error response back to the domain error the server
// started from.
func statusError(resp *http.Response) error {
	var body errorBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)
	msg := body.Error
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		if len(body.Fields) > 0 {
			fields := make([]domain.FieldError, len(body.Fields))
			for i, f := range body.Fields {
				fields[i] = domain.FieldError{Field: f.Field, Message: f.Message}
			}
			return domain.NewValidationErrors(fields)
		}
		return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, msg)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s", domain.ErrConflict, msg)
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusBadGateway,
		resp.StatusCode == http.StatusServiceUnavailable,
		resp.StatusCode == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: status %d: %s", domain.ErrTransient, resp.StatusCode, msg)
	default:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg)
	}
}

func fromCardReviewResponse(r rest.CardReviewResponse) (*domain.CardReview, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("decode card review id: %w", err)
	}
	learnerID, err := uuid.Parse(r.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("decode learner id: %w", err)
	}
	flashcardID, err := uuid.Parse(r.FlashcardID)
	if err != nil {
		return nil, fmt.Errorf("decode flashcard id: %w", err)
	}
	return &domain.CardReview{
		ID:               id,
		LearnerID:        learnerID,
		FlashcardID:      flashcardID,
		DifficultyRating: domain.Rating(r.DifficultyRating),
		IntervalDays:     r.IntervalDays,
		EaseFactor:       r.EaseFactor,
		ReviewCount:      r.ReviewCount,
		NextReviewAt:     r.NextReviewAt,
		LastReviewedAt:   r.LastReviewedAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}, nil
}

func fromFlashcardResponse(f rest.FlashcardResponse) (domain.Flashcard, error) {
	id, err := uuid.Parse(f.ID)
	if err != nil {
		return domain.Flashcard{}, fmt.Errorf("decode flashcard id: %w", err)
	}
	deckID, err := uuid.Parse(f.DeckID)
	if err != nil {
		return domain.Flashcard{}, fmt.Errorf("decode deck id: %w", err)
	}
	return domain.Flashcard{ID: id, DeckID: deckID, Position: f.Position, Front: f.Front, Back: f.Back}, nil
}
