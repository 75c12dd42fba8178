package params

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pryimakv14/StockOutPredict/pkg/logger"
)

// fakeBackend 内存配置存储
type fakeBackend struct {
	values  map[string]string
	getErr  error
	saveErr error
	saves   int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{values: make(map[string]string)}
}

func (f *fakeBackend) Get(ctx context.Context, path string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.values[path], nil
}

func (f *fakeBackend) Save(ctx context.Context, path string, value string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.values[path] = value
	return nil
}

func TestStoreMergeCreatesAndUpdates(t *testing.T) {
	backend := newFakeBackend()
	store := NewStore(backend, logger.NewNop())
	ctx := context.Background()

	err := store.Merge(ctx, "SKU-A", Patch{"alert_threshold": "7"})
	require.NoError(t, err)

	err = store.Merge(ctx, "SKU-A", Patch{"changepoint_prior_scale": "0.5"})
	require.NoError(t, err)

	row, ok := store.Get(ctx, "SKU-A")
	require.True(t, ok)
	// 浅合并：未出现的键保持原值
	assert.Equal(t, "7", row.AlertThreshold)
	assert.Equal(t, "0.5", row.ChangepointPriorScale)
}

func TestStoreMergePreservesOtherRows(t *testing.T) {
	backend := newFakeBackend()
	backend.values[ConfigPath] = `[{"sku":"SKU-A","alert_threshold":"5"},{"sku":"SKU-B","alert_threshold":"9"}]`
	store := NewStore(backend, logger.NewNop())
	ctx := context.Background()

	err := store.Merge(ctx, "SKU-B", Patch{"seasonality_mode": "multiplicative"})
	require.NoError(t, err)

	rowA, ok := store.Get(ctx, "SKU-A")
	require.True(t, ok)
	assert.Equal(t, "5", rowA.AlertThreshold)

	rowB, ok := store.Get(ctx, "SKU-B")
	require.True(t, ok)
	assert.Equal(t, "9", rowB.AlertThreshold)
	assert.Equal(t, "multiplicative", rowB.SeasonalityMode)
}

func TestStoreMergeIgnoresUnknownKeys(t *testing.T) {
	backend := newFakeBackend()
	store := NewStore(backend, logger.NewNop())
	ctx := context.Background()

	err := store.Merge(ctx, "SKU-A", Patch{"no_such_field": "x", "alert_threshold": "3"})
	require.NoError(t, err)

	row, ok := store.Get(ctx, "SKU-A")
	require.True(t, ok)
	assert.Equal(t, "3", row.AlertThreshold)
}

func TestStoreMergeRequiresSku(t *testing.T) {
	store := NewStore(newFakeBackend(), logger.NewNop())
	err := store.Merge(context.Background(), "", Patch{"alert_threshold": "3"})
	assert.Error(t, err)
}

func TestStoreBatchMergeSingleRewrite(t *testing.T) {
	backend := newFakeBackend()
	backend.values[ConfigPath] = `[{"sku":"SKU-A","alert_threshold":"5"}]`
	store := NewStore(backend, logger.NewNop())
	ctx := context.Background()

	updates := make(map[string]Patch)
	for i := 0; i < 10; i++ {
		updates[fmt.Sprintf("SKU-%03d", i)] = Patch{"changepoint_prior_scale": "0.1"}
	}

	err := store.BatchMerge(ctx, updates)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.saves)

	rows := store.List(ctx, true)
	assert.Len(t, rows, 11)

	rowA, ok := store.Get(ctx, "SKU-A")
	require.True(t, ok)
	assert.Equal(t, "5", rowA.AlertThreshold)
}

func TestStoreGetNotFound(t *testing.T) {
	store := NewStore(newFakeBackend(), logger.NewNop())
	_, ok := store.Get(context.Background(), "NOPE")
	assert.False(t, ok)
}

func TestStoreUnparseableBlobTreatedAsEmpty(t *testing.T) {
	backend := newFakeBackend()
	backend.values[ConfigPath] = `{not valid json`
	store := NewStore(backend, logger.NewNop())
	ctx := context.Background()

	assert.Empty(t, store.List(ctx, true))

	// 软失败后仍可写入
	err := store.Merge(ctx, "SKU-A", Patch{"alert_threshold": "2"})
	require.NoError(t, err)

	row, ok := store.Get(ctx, "SKU-A")
	require.True(t, ok)
	assert.Equal(t, "2", row.AlertThreshold)
}

func TestStoreListSkusSkipsEmpty(t *testing.T) {
	backend := newFakeBackend()
	backend.values[ConfigPath] = `[{"sku":"SKU-A"},{"sku":""},{"sku":"SKU-B"}]`
	store := NewStore(backend, logger.NewNop())

	skus := store.ListSkus(context.Background())
	assert.Equal(t, []string{"SKU-A", "SKU-B"}, skus)
}

func TestStoreForceRefreshSeesExternalWrite(t *testing.T) {
	backend := newFakeBackend()
	backend.values[ConfigPath] = `[{"sku":"SKU-A"}]`
	store := NewStore(backend, logger.NewNop())
	ctx := context.Background()

	require.Len(t, store.List(ctx, false), 1)

	// 模拟其他进程写入
	backend.values[ConfigPath] = `[{"sku":"SKU-A"},{"sku":"SKU-B"}]`

	assert.Len(t, store.List(ctx, false), 1)
	assert.Len(t, store.List(ctx, true), 2)
}
