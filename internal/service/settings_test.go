package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tsvetelinpenkovv/obms-stocksync/internal/domain"
)

type mockSettingsRepo struct {
	mock.Mock
}

func (m *mockSettingsRepo) GetStockSettings(ctx context.Context) (domain.StockSettings, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.StockSettings), args.Error(1)
}

func (m *mockSettingsRepo) SaveStockSettings(ctx context.Context, settings domain.StockSettings) error {
	return m.Called(ctx, settings).Error(0)
}

func TestSettingsCurrent(t *testing.T) {
	repo := new(mockSettingsRepo)
	repo.On("GetStockSettings", mock.Anything).Return(domain.DefaultStockSettings(), nil)

	svc := NewSettings(repo, &fakeAudit{}, nil, time.Minute, testLogger())
	settings, err := svc.Current(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultReserveStatus, settings.ReserveStatus)
	repo.AssertExpectations(t)
}

func TestSettingsUpdate(t *testing.T) {
	repo := new(mockSettingsRepo)
	newSettings := domain.StockSettings{
		ReserveStatus:   "Обработва се",
		DeductionStatus: "Изпратена",
		RestoreStatus:   "Върната",
	}
	repo.On("GetStockSettings", mock.Anything).Return(domain.DefaultStockSettings(), nil)
	repo.On("SaveStockSettings", mock.Anything, newSettings).Return(nil)

	audit := &fakeAudit{}
	svc := NewSettings(repo, audit, nil, time.Minute, testLogger())

	require.NoError(t, svc.Update(context.Background(), newSettings))

	repo.AssertExpectations(t)
	require.Len(t, audit.events, 1)
	assert.Equal(t, "settings.stock_updated", audit.events[0].action)
}

func TestSettingsUpdateRejectsInvalidConfiguration(t *testing.T) {
	repo := new(mockSettingsRepo)
	svc := NewSettings(repo, &fakeAudit{}, nil, time.Minute, testLogger())

	err := svc.Update(context.Background(), domain.StockSettings{
		ReserveStatus:   "Изпратена",
		DeductionStatus: "Изпратена",
		RestoreStatus:   "Отказана",
	})

	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	repo.AssertNotCalled(t, "SaveStockSettings", mock.Anything, mock.Anything)
}
