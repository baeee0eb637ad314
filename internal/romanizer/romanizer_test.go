package romanizer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jusunglee/kyrlat/internal/db"
	"github.com/jusunglee/kyrlat/internal/db/sqlite"
	"github.com/jusunglee/kyrlat/internal/transliteration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) RecordRomanization(ctx context.Context, arg db.RecordRomanizationParams) (db.Romanization, error) {
	ret := m.Called(ctx, arg)
	return ret.Get(0).(db.Romanization), ret.Error(1)
}

func (m *MockRepository) GetRomanization(ctx context.Context, arg db.GetRomanizationParams) (db.Romanization, error) {
	ret := m.Called(ctx, arg)
	return ret.Get(0).(db.Romanization), ret.Error(1)
}

func (m *MockRepository) GetRomanizationByID(ctx context.Context, id int64) (db.Romanization, error) {
	ret := m.Called(ctx, id)
	return ret.Get(0).(db.Romanization), ret.Error(1)
}

func (m *MockRepository) ListRecentRomanizations(ctx context.Context, arg db.ListRecentParams) ([]db.Romanization, error) {
	ret := m.Called(ctx, arg)
	return ret.Get(0).([]db.Romanization), ret.Error(1)
}

func (m *MockRepository) CountRomanizations(ctx context.Context, language string) (int64, error) {
	ret := m.Called(ctx, language)
	return ret.Get(0).(int64), ret.Error(1)
}

func (m *MockRepository) DeleteRomanizationsOlderThan(ctx context.Context, before time.Time) (int64, error) {
	ret := m.Called(ctx, before)
	return ret.Get(0).(int64), ret.Error(1)
}

func (m *MockRepository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockRepository) Close() error {
	return m.Called().Error(0)
}

func TestRomanizeWithoutHistory(t *testing.T) {
	r := New(nil, nil)

	res, err := r.Romanize(context.Background(), Request{
		Language: transliteration.Russian,
		Text:     "Горбачёв",
		Source:   "cli",
	})
	require.NoError(t, err)
	assert.Equal(t, "Gorbatšov", res.Output)
	assert.Zero(t, res.HistoryID)
}

func TestRomanizeASCII(t *testing.T) {
	r := New(nil, nil)

	res, err := r.Romanize(context.Background(), Request{
		Language: transliteration.Bulgarian,
		Text:     "Тръстеник",
		ASCII:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Trastenik", res.Output)
	assert.True(t, res.ASCII)
}

func TestRomanizeRecordsHistory(t *testing.T) {
	repo := new(MockRepository)
	repo.On("RecordRomanization", mock.Anything, db.RecordRomanizationParams{
		Language: "mk",
		Input:    "Ѓорѓи",
		Output:   "Gʼorgʼi",
		Source:   "web",
	}).Return(db.Romanization{ID: 7, Hits: 3}, nil).Once()

	r := New(repo, nil)
	res, err := r.Romanize(context.Background(), Request{
		Language: transliteration.Macedonian,
		Text:     "Ѓорѓи",
		Source:   "web",
	})
	require.NoError(t, err)
	assert.Equal(t, "Gʼorgʼi", res.Output)
	assert.Equal(t, int64(7), res.HistoryID)
	assert.Equal(t, int64(3), res.Hits)
	repo.AssertExpectations(t)
}

func TestRomanizeHistoryFailureIsNotFatal(t *testing.T) {
	repo := new(MockRepository)
	repo.On("RecordRomanization", mock.Anything, mock.Anything).
		Return(db.Romanization{}, errors.New("disk full")).Once()

	r := New(repo, nil)
	res, err := r.Romanize(context.Background(), Request{Language: transliteration.Ukrainian, Text: "Умань"})
	require.NoError(t, err)
	assert.Equal(t, "Uman", res.Output)
	assert.Zero(t, res.HistoryID)
	repo.AssertExpectations(t)
}

func TestRomanizeEmptyTextSkipsHistory(t *testing.T) {
	repo := new(MockRepository)
	r := New(repo, nil)

	res, err := r.Romanize(context.Background(), Request{Language: transliteration.Russian})
	require.NoError(t, err)
	assert.Empty(t, res.Output)
	repo.AssertNotCalled(t, "RecordRomanization", mock.Anything, mock.Anything)
}

func TestRomanizeCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil, nil).Romanize(ctx, Request{Language: transliteration.Russian, Text: "Чита"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRomanizeBatchKeepsOrder(t *testing.T) {
	r := New(nil, nil).WithBatchConcurrency(2)

	texts := []string{"Анапа", "Бабаево", "", "Чита", "Ярославль"}
	results, err := r.RomanizeBatch(context.Background(), transliteration.Russian, texts, false, "web")
	require.NoError(t, err)
	require.Len(t, results, len(texts))

	want := []string{"Anapa", "Babajevo", "", "Tšita", "Jaroslavl"}
	for i, res := range results {
		assert.Equal(t, texts[i], res.Input)
		assert.Equal(t, want[i], res.Output)
	}
}

func TestRomanizeWithSQLiteHistory(t *testing.T) {
	ctx := context.Background()
	repo, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	r := New(repo, nil)
	for range 3 {
		_, err := r.Romanize(ctx, Request{Language: transliteration.Belarusian, Text: "Магілёў", Source: "bot"})
		require.NoError(t, err)
	}

	rom, err := repo.GetRomanization(ctx, db.GetRomanizationParams{Language: "be", Input: "Магілёў"})
	require.NoError(t, err)
	assert.Equal(t, "Mahiljou", rom.Output)
	assert.Equal(t, int64(3), rom.Hits)
	assert.Equal(t, "bot", rom.Source)
}
