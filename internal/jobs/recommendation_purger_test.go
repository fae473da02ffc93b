package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPurger struct {
	mock.Mock
}

func (m *MockPurger) PurgeStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(olderThan)
	return args.Get(0).(int64), args.Error(1)
}

func TestRecommendationPurgerRun(t *testing.T) {
	purger := new(MockPurger)
	purger.On("PurgeStale", 24*time.Hour).Return(int64(3), nil).Once()

	err := NewRecommendationPurger(purger, 24*time.Hour).Run(context.Background())
	assert.NoError(t, err)
	purger.AssertExpectations(t)
}

func TestRecommendationPurgerRunError(t *testing.T) {
	purger := new(MockPurger)
	boom := errors.New("store down")
	purger.On("PurgeStale", time.Hour).Return(int64(0), boom)

	err := NewRecommendationPurger(purger, time.Hour).Run(context.Background())
	assert.ErrorIs(t, err, boom)
}
