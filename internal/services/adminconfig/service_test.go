package adminconfig

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/Aaditya88888/netwin-user-sub001/internal/errors"
	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
	"github.com/Aaditya88888/netwin-user-sub001/internal/repositories"
	"github.com/Aaditya88888/netwin-user-sub001/internal/repositories/repotest"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockCache) SetIfAbsent(ctx context.Context, key string, value interface{}) (bool, error) {
	args := m.Called(ctx, key, value)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func upiConfig(active bool) *models.AdminWalletConfig {
	return &models.AdminWalletConfig{
		Currency: models.CurrencyINR,
		IsActive: active,
		Channel:  models.ChannelUPI,
		UPIID:    "netwin@okaxis",
	}
}

func TestService_ListCachesOnMiss(t *testing.T) {
	store := repotest.NewStore()
	require.NoError(t, store.Configs().Upsert(context.Background(), upiConfig(true)))

	cache := new(MockCache)
	cache.On("Get", mock.Anything, CacheKey, mock.Anything).Return(false, nil).Once()
	cache.On("SetIfAbsent", mock.Anything, CacheKey, mock.Anything).Return(true, nil).Once()

	svc := NewService(store.Configs(), cache, nil, nil)
	cfgs, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, cfgs, 1)

	cache.AssertExpectations(t)
}

func TestService_ListServesFromCache(t *testing.T) {
	store := repotest.NewStore()
	cache := new(MockCache)
	cache.On("Get", mock.Anything, CacheKey, mock.Anything).
		Run(func(args mock.Arguments) {
			dest := args.Get(2).(*[]models.AdminWalletConfig)
			*dest = []models.AdminWalletConfig{*upiConfig(true)}
		}).
		Return(true, nil).Once()

	svc := NewService(store.Configs(), cache, nil, nil)
	cfg, err := svc.GetForCurrency(context.Background(), models.CurrencyINR)
	require.NoError(t, err)
	assert.Equal(t, "netwin@okaxis", cfg.UPIID)

	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "SetIfAbsent", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_UpdateInvalidatesCache(t *testing.T) {
	store := repotest.NewStore()
	cache := new(MockCache)
	cache.On("Delete", mock.Anything, []string{CacheKey}).Return(nil).Once()
	cache.On("Set", mock.Anything, CacheKey, mock.MatchedBy(func(v []models.AdminWalletConfig) bool {
		return len(v) == 1 && v[0].IsActive && v[0].UpdatedBy == "admin-1"
	})).Return(nil).Once()

	svc := NewService(store.Configs(), cache, nil, nil)
	cfg := upiConfig(true)
	cfg.Channel = " UPI "

	saved, err := svc.Update(context.Background(), cfg, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "admin-1", saved.UpdatedBy)
	assert.Equal(t, models.ChannelUPI, saved.Channel)

	stored, err := store.Configs().Get(context.Background(), models.CurrencyINR)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)

	cache.AssertExpectations(t)
}

func TestService_UpdateSurvivesInvalidationFailure(t *testing.T) {
	store := repotest.NewStore()
	cache := new(MockCache)
	cache.On("Delete", mock.Anything, []string{CacheKey}).Return(errors.New("redis down")).Once()
	cache.On("Set", mock.Anything, CacheKey, mock.Anything).Return(errors.New("redis down")).Once()

	svc := NewService(store.Configs(), cache, nil, nil)
	_, err := svc.Update(context.Background(), upiConfig(false), "admin-1")
	assert.NoError(t, err)
	cache.AssertExpectations(t)
}

// memCache mirrors redis SET / SET NX semantics on JSON values.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memCache) Set(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *memCache) SetIfAbsent(_ context.Context, key string, value interface{}) (bool, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[key]; ok {
		return false, nil
	}
	c.data[key] = raw
	return true, nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

// slowFirstList holds the first List call after its read until resumed.
type slowFirstList struct {
	repositories.AdminWalletConfigRepository
	once   sync.Once
	loaded chan struct{}
	resume chan struct{}
}

func (r *slowFirstList) List(ctx context.Context) ([]models.AdminWalletConfig, error) {
	cfgs, err := r.AdminWalletConfigRepository.List(ctx)
	first := false
	r.once.Do(func() { first = true })
	if first {
		close(r.loaded)
		<-r.resume
	}
	return cfgs, err
}

func TestService_UpdateWinsOverSlowReaderFill(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewStore()
	require.NoError(t, store.Configs().Upsert(ctx, upiConfig(true)))

	repo := &slowFirstList{
		AdminWalletConfigRepository: store.Configs(),
		loaded:                      make(chan struct{}),
		resume:                      make(chan struct{}),
	}
	svc := NewService(repo, newMemCache(), nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.List(ctx)
		done <- err
	}()

	<-repo.loaded
	_, err := svc.Update(ctx, upiConfig(false), "admin-1")
	require.NoError(t, err)

	close(repo.resume)
	require.NoError(t, <-done)

	cfg, err := svc.GetForCurrency(ctx, models.CurrencyINR)
	require.NoError(t, err)
	assert.False(t, cfg.IsActive)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestService_ReaderFillAfterInvalidationIsOverwritten(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewStore()
	require.NoError(t, store.Configs().Upsert(ctx, upiConfig(true)))
	cache := newMemCache()
	svc := NewService(store.Configs(), cache, nil, nil)

	// A stale list lands in the empty key before the update writes its own.
	ok, err := cache.SetIfAbsent(ctx, CacheKey, []models.AdminWalletConfig{*upiConfig(true)})
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.Update(ctx, upiConfig(false), "admin-1")
	require.NoError(t, err)

	cfg, err := svc.GetForCurrency(ctx, models.CurrencyINR)
	require.NoError(t, err)
	assert.False(t, cfg.IsActive)
}

func TestService_UpdateRejectsInvalidConfig(t *testing.T) {
	store := repotest.NewStore()
	cache := new(MockCache)

	svc := NewService(store.Configs(), cache, nil, nil)
	_, err := svc.Update(context.Background(), &models.AdminWalletConfig{Currency: "INR", Channel: models.ChannelUPI}, "admin-1")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	cache.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	cfgs, _ := store.Configs().List(context.Background())
	assert.Empty(t, cfgs)
}

func TestService_ListActiveAndMissingCurrency(t *testing.T) {
	store := repotest.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Configs().Upsert(ctx, upiConfig(false)))
	require.NoError(t, store.Configs().Upsert(ctx, &models.AdminWalletConfig{
		Currency: models.CurrencyUSD, IsActive: true, Channel: models.ChannelPaymentLink, PaymentLink: "https://pay.example.com/netwin",
	}))

	svc := NewService(store.Configs(), nil, nil, nil)
	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, models.CurrencyUSD, active[0].Currency)

	_, err = svc.GetForCurrency(ctx, models.CurrencyNGN)
	assert.True(t, IsNotFound(err))
}
