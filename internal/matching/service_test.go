package matching_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/syndic/internal/matching"
	"github.com/MrJamesThe3rd/syndic/internal/matching/memstore"
)

func TestService_Suggest(t *testing.T) {
	ctx := context.Background()
	svc := matching.NewService(memstore.New())

	cafe := uuid.New()
	cafeDowntown := uuid.New()
	gym := uuid.New()

	for _, a := range []struct {
		pattern string
		id      uuid.UUID
	}{
		{"green cafe", cafe},
		{"GREEN CAFE DOWNTOWN", cafeDowntown},
		{"fastfit", uuid.New()},
		{"FASTFIT", gym},
	} {
		_, err := svc.Learn(ctx, a.pattern, a.id)
		require.NoError(t, err)
	}

	tests := []struct {
		name       string
		descriptor string
		want       uuid.UUID
	}{
		{name: "Contains", descriptor: "POS GREEN CAFE LLC #0412", want: cafe},
		{name: "LongestWins", descriptor: "green cafe downtown 7", want: cafeDowntown},
		{name: "NewestWinsTie", descriptor: "FastFit Gym", want: gym},
		{name: "NoMatch", descriptor: "Nobody Inc", want: uuid.Nil},
		{name: "Blank", descriptor: "  ", want: uuid.Nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Suggest(ctx, tt.descriptor)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Learn(t *testing.T) {
	ctx := context.Background()
	svc := matching.NewService(memstore.New())
	id := uuid.New()

	alias, err := svc.Learn(ctx, "  Green Cafe  ", id)
	require.NoError(t, err)
	assert.Equal(t, "Green Cafe", alias.Pattern)
	assert.False(t, alias.CreatedAt.IsZero())

	_, err = svc.Learn(ctx, "", id)
	assert.ErrorIs(t, err, matching.ErrInvalidAlias)

	_, err = svc.Learn(ctx, "Green", uuid.Nil)
	assert.ErrorIs(t, err, matching.ErrInvalidAlias)

	aliases, err := svc.Aliases(ctx, id)
	require.NoError(t, err)
	require.Len(t, aliases, 1)
	assert.Equal(t, id, aliases[0].DealID)

	aliases, err = svc.Aliases(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, aliases)
}
