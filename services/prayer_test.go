package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OraComigo/models"
)

func TestAddPrayer(t *testing.T) {
	tests := []struct {
		name           string
		author         string
		input          models.PrayerCreate
		expectedErr    error
		expectedStatus string
		expectedTitle  string
	}{
		{
			name:           "editor publishes immediately",
			author:         "editor",
			input:          models.PrayerCreate{Title: "Oração da manhã", Text: "Senhor...", Category: models.CategoryDiarias},
			expectedStatus: models.PrayerStatusPublished,
			expectedTitle:  "Oração da manhã",
		},
		{
			name:           "user submission waits for review",
			author:         "u1",
			input:          models.PrayerCreate{Title: "Pela família", Text: "Senhor...", Category: models.CategoryMomentosDaVida},
			expectedStatus: models.PrayerStatusPending,
			expectedTitle:  "Pela família",
		},
		{
			name:           "missing title gets default",
			author:         "editor",
			input:          models.PrayerCreate{Text: "Senhor...", Category: models.CategorySantos},
			expectedStatus: models.PrayerStatusPublished,
			expectedTitle:  DefaultPrayerTitle,
		},
		{
			name:        "unknown category",
			author:      "editor",
			input:       models.PrayerCreate{Text: "Senhor...", Category: "Outros"},
			expectedErr: models.ErrValidation,
		},
		{
			name:        "empty text",
			author:      "editor",
			input:       models.PrayerCreate{Title: "Vazia", Category: models.CategoryDiarias},
			expectedErr: models.ErrValidation,
		},
		{
			name:        "unknown author",
			author:      "missing",
			input:       models.PrayerCreate{Text: "Senhor...", Category: models.CategoryDiarias},
			expectedErr: models.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestStore(t)
			ts.seedEditor("editor", "Frei Carlos")
			ts.seedUser("u1", "Maria")

			p, err := ts.AddPrayer(context.Background(), tt.author, tt.input)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, p.Status)
			assert.Equal(t, tt.expectedTitle, p.Title)
			assert.Equal(t, 0, p.Prayer_Count)
		})
	}
}

func TestListPrayersHidesPendingFromUsers(t *testing.T) {
	ts := newTestStore(t)
	ts.seedEditor("editor", "Frei Carlos")
	ts.seedUser("u1", "Maria")
	ts.seedPrayer("p1", "Pai Nosso")
	ctx := context.Background()

	pending, err := ts.AddPrayer(ctx, "u1", models.PrayerCreate{Text: "Senhor...", Category: models.CategoryDiarias})
	require.NoError(t, err)

	assert.Len(t, ts.ListPrayers("u1"), 1)

	all := ts.ListPrayers("editor")
	require.Len(t, all, 2)
	assert.Equal(t, pending.Prayer_ID, all[0].Prayer_ID, "newest first")

	_, err = ts.ApprovePrayer(ctx, "u1", pending.Prayer_ID)
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	approved, err := ts.ApprovePrayer(ctx, "editor", pending.Prayer_ID)
	require.NoError(t, err)
	assert.True(t, approved.IsPublished())
	assert.Len(t, ts.ListPrayers("u1"), 2)
}

func TestUpdatePrayer(t *testing.T) {
	ts := newTestStore(t)
	ts.seedEditor("editor", "Frei Carlos")
	ts.seedUser("u1", "Maria")
	p := ts.seedPrayer("p1", "Pai Nosso")
	p.Prayer_Count = 7
	ctx := context.Background()

	latin := "Pater noster"
	category := models.CategoryMarianas
	out, err := ts.UpdatePrayer(ctx, "editor", "p1", models.PrayerUpdate{Latin_Text: &latin, Category: &category})
	require.NoError(t, err)
	assert.Equal(t, "Pater noster", *out.Latin_Text)
	assert.Equal(t, models.CategoryMarianas, out.Category)
	assert.Equal(t, "Pai Nosso", out.Title)
	assert.Equal(t, 7, out.Prayer_Count)

	_, err = ts.UpdatePrayer(ctx, "u1", "p1", models.PrayerUpdate{Latin_Text: &latin})
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	_, err = ts.UpdatePrayer(ctx, "editor", "missing", models.PrayerUpdate{Latin_Text: &latin})
	assert.ErrorIs(t, err, models.ErrNotFound)

	self := "p1"
	_, err = ts.UpdatePrayer(ctx, "editor", "p1", models.PrayerUpdate{Parent_Prayer_ID: &self})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestToggleFavorite(t *testing.T) {
	ts := newTestStore(t)
	ts.seedUser("u1", "Maria")
	ts.seedPrayer("p1", "Pai Nosso")
	ts.seedPrayer("p2", "Ave Maria")
	ctx := context.Background()

	favorites, err := ts.ToggleFavorite(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, favorites)

	favorites, err = ts.ToggleFavorite(ctx, "u1", "p2")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, favorites)

	favorites, err = ts.ToggleFavorite(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, favorites)

	_, err = ts.ToggleFavorite(ctx, "u1", "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestReferencedPrayerIDs(t *testing.T) {
	text := "Comece com [prayer:p1], depois [prayer:p2] e reze [prayer:p1] novamente. [prayer: bad]"
	assert.Equal(t, []string{"p1", "p2"}, models.ReferencedPrayerIDs(text))
	assert.Empty(t, models.ReferencedPrayerIDs("sem referências"))
}
