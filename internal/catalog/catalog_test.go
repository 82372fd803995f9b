package catalog

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/Domenick1991/spacevoyager/internal/domain"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetCatalog(ctx context.Context) (*Catalog, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Catalog), args.Error(1)
}

func (m *MockCache) SetCatalog(ctx context.Context, c *Catalog) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func TestStore_LoadDefaults(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s := NewStore(DefaultFS(), nil, logger)

	require.NoError(t, s.Load(context.Background()))
	require.NoError(t, s.Wait(context.Background()))

	snap := s.Snapshot()
	assert.NotEmpty(t, snap.Destinations)
	assert.NotEmpty(t, snap.Craft)
	assert.Len(t, snap.Extras, 3)

	mars, ok := s.Destination("mars")
	require.True(t, ok)
	assert.Equal(t, "Mars", mars.Planet)

	zeroG, ok := s.Accommodation("zero-g")
	require.True(t, ok)
	assert.Equal(t, "zero-g", zeroG.Category)

	walk, ok := s.Extra(domain.ExtraSpacewalk)
	require.True(t, ok)
	assert.Equal(t, int64(5000), walk.Price)

	_, ok = s.Destination("pluto")
	assert.False(t, ok)
}

func TestStore_PriceExtras(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s := NewStore(DefaultFS(), nil, logger)
	require.NoError(t, s.Load(context.Background()))

	priced, unknown := s.PriceExtras([]domain.ExtraID{domain.ExtraVRTraining, "jetpack", domain.ExtraPhotoPackage})
	assert.Equal(t, []domain.SelectedExtra{
		{ID: domain.ExtraVRTraining, Price: 2000},
		{ID: domain.ExtraPhotoPackage, Price: 1500},
	}, priced)
	assert.Equal(t, []domain.ExtraID{"jetpack"}, unknown)
}

func TestStore_LoadFailureLeavesCatalogsEmpty(t *testing.T) {
	logger, hook := test.NewNullLogger()
	fsys := fstest.MapFS{
		"destinations.json": {Data: []byte(`{"destinations":[{"id":"moon","price":1}]}`)},
	}
	s := NewStore(fsys, nil, logger)

	err := s.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, s.Wait(context.Background()), err)

	assert.Empty(t, s.Snapshot().Destinations)
	_, ok := s.Destination("moon")
	assert.False(t, ok)
	assert.NotEmpty(t, hook.AllEntries())
}

func TestStore_WaitTimesOut(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s := NewStore(DefaultFS(), nil, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := s.Wait(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestStore_UsesCache(t *testing.T) {
	logger, _ := test.NewNullLogger()
	ctx := context.Background()

	cached := &Catalog{Destinations: []domain.Destination{{ID: "cached", Price: 1}}}
	hit := &MockCache{}
	hit.On("GetCatalog", ctx).Return(cached, nil).Once()

	s := NewStore(fstest.MapFS{}, hit, logger)
	require.NoError(t, s.Load(ctx))
	_, ok := s.Destination("cached")
	assert.True(t, ok)
	hit.AssertNotCalled(t, "SetCatalog", mock.Anything, mock.Anything)

	miss := &MockCache{}
	miss.On("GetCatalog", ctx).Return(nil, nil).Once()
	miss.On("SetCatalog", ctx, mock.AnythingOfType("*catalog.Catalog")).Return(nil).Once()

	s = NewStore(DefaultFS(), miss, logger)
	require.NoError(t, s.Load(ctx))
	miss.AssertExpectations(t)
}
