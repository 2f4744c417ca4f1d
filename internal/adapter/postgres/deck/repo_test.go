package deck

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/flashquest-backend/internal/domain"
)

var deckCols = []string{"id", "learner_id", "title", "created_at"}

func TestRepo_GetByID(t *testing.T) {
	t.Parallel()

	learnerID := uuid.New()
	want := domain.Deck{
		ID:        uuid.New(),
		LearnerID: learnerID,
		Title:     "Animals",
		CreatedAt: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name    string
		rows    *pgxmock.Rows
		wantErr error
	}{
		{name: "owned", rows: pgxmock.NewRows(deckCols).AddRow(want.ID, want.LearnerID, want.Title, want.CreatedAt)},
		{name: "not owned", rows: pgxmock.NewRows(deckCols), wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectQuery(`FROM decks`).WithArgs(want.ID, learnerID).WillReturnRows(tt.rows)

			got, err := New(mock).GetByID(context.Background(), learnerID, want.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, want, *got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepo_ListByLearner(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	learnerID := uuid.New()
	created := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`WHERE learner_id = \$1`).WithArgs(learnerID).WillReturnRows(
		pgxmock.NewRows(deckCols).
			AddRow(uuid.New(), learnerID, "Animals", created).
			AddRow(uuid.New(), learnerID, "Colours", created.Add(time.Hour)),
	)

	got, err := New(mock).ListByLearner(context.Background(), learnerID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Animals", got[0].Title)
	assert.Equal(t, "Colours", got[1].Title)
	require.NoError(t, mock.ExpectationsWereMet())
}
