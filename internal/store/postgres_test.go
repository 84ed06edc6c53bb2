package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/underwrite-cli/internal/model"
	"github.com/sells-group/underwrite-cli/internal/schedule"
)

func newMockPostgres(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func TestPostgresMigrate(t *testing.T) {
	t.Parallel()
	st, mock := newMockPostgres(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS basket_values").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, st.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLoadBasket(t *testing.T) {
	t.Parallel()

	t.Run("decodes stored document", func(t *testing.T) {
		t.Parallel()
		st, mock := newMockPostgres(t)

		want := model.ValueMap{"purchase_price": model.Number(1_000_000)}
		doc, err := json.Marshal(want)
		require.NoError(t, err)

		mock.ExpectQuery("SELECT doc FROM basket_values").
			WithArgs("p1", "the_deal").
			WillReturnRows(pgxmock.NewRows([]string{"doc"}).AddRow(doc))

		got, err := st.LoadBasket(context.Background(), "p1", "the_deal")
		require.NoError(t, err)
		assert.True(t, want.Equal(got))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows maps to ErrNotFound", func(t *testing.T) {
		t.Parallel()
		st, mock := newMockPostgres(t)

		mock.ExpectQuery("SELECT doc FROM basket_values").
			WithArgs("p1", "the_deal").
			WillReturnError(pgx.ErrNoRows)

		_, err := st.LoadBasket(context.Background(), "p1", "the_deal")
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("corrupt document is an error", func(t *testing.T) {
		t.Parallel()
		st, mock := newMockPostgres(t)

		mock.ExpectQuery("SELECT doc FROM basket_values").
			WithArgs("p1", "the_deal").
			WillReturnRows(pgxmock.NewRows([]string{"doc"}).AddRow([]byte("{not json")))

		_, err := st.LoadBasket(context.Background(), "p1", "the_deal")
		assert.Error(t, err)
	})
}

func TestPostgresSaveBasket(t *testing.T) {
	t.Parallel()
	st, mock := newMockPostgres(t)

	values := model.ValueMap{"purchase_price": model.Number(1_000_000)}
	doc, err := json.Marshal(values)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO basket_values").
		WithArgs(pgxmock.AnyArg(), "p1", "the_deal", doc, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, st.SaveBasket(context.Background(), "p1", "the_deal", values))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListProjects(t *testing.T) {
	t.Parallel()
	st, mock := newMockPostgres(t)

	mock.ExpectQuery("SELECT DISTINCT project_id FROM basket_values").
		WillReturnRows(pgxmock.NewRows([]string{"project_id"}).
			AddRow("alpha").
			AddRow("zeta"))

	projects, err := st.ListProjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, projects)
}

func TestPostgresTracks(t *testing.T) {
	t.Parallel()

	t.Run("load decodes steps", func(t *testing.T) {
		t.Parallel()
		st, mock := newMockPostgres(t)

		steps := []schedule.Step{
			{Rate: "3.0%", Periods: "12"},
			{Rate: "2.5%", Periods: "E"},
		}
		stepsJSON, err := json.Marshal(steps)
		require.NoError(t, err)

		mock.ExpectQuery("SELECT name, steps FROM rate_tracks").
			WithArgs("p1").
			WillReturnRows(pgxmock.NewRows([]string{"name", "steps"}).
				AddRow("Custom 1", stepsJSON))

		tracks, err := st.LoadTracks(context.Background(), "p1")
		require.NoError(t, err)
		require.Len(t, tracks, 1)
		assert.Equal(t, "Custom 1", tracks[0].Name)
		assert.Equal(t, steps, tracks[0].Steps)
	})

	t.Run("save upserts by name", func(t *testing.T) {
		t.Parallel()
		st, mock := newMockPostgres(t)

		track := schedule.Track{Name: "Custom 1", Steps: []schedule.Step{{Rate: "3%", Periods: "E"}}}
		stepsJSON, err := json.Marshal(track.Steps)
		require.NoError(t, err)

		mock.ExpectExec("INSERT INTO rate_tracks").
			WithArgs(pgxmock.AnyArg(), "p1", "Custom 1", stepsJSON, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, st.SaveTrack(context.Background(), "p1", track))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
