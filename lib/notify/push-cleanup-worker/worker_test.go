package pushcleanupworker

import (
	"context"
	dbmodels "procurement-backend/models/db"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	before time.Time
	count  int64
	err    error
}

func (f *fakeStore) Create(rec dbmodels.PushData) error {
	return nil
}

func (f *fakeStore) List(userID string) ([]dbmodels.PushData, error) {
	return nil, nil
}

func (f *fakeStore) Delete(ids []string) error {
	return nil
}

func (f *fakeStore) DeleteBefore(before time.Time) (int64, error) {
	f.before = before
	return f.count, f.err
}

func TestHandle(t *testing.T) {
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{count: 3}
	i := impl{
		store:     store,
		retention: 30 * 24 * time.Hour,
		now:       func() time.Time { return now },
	}
	require.NoError(t, i.handle(context.Background()))
	require.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), store.before)

	store.err = errors.New("db down")
	require.Error(t, i.handle(context.Background()))
}
