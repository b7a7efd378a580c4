package fetcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optrader/optrader/internal/action"
	"github.com/optrader/optrader/internal/chain"
	"github.com/optrader/optrader/internal/ledger"
	"github.com/optrader/optrader/internal/portfolio"
	"github.com/optrader/optrader/internal/provider"
)

type nopStrategy struct{}

func (nopStrategy) Run(context.Context, *chain.Chain) error { return nil }

func testManagers(store ledger.Store) []*portfolio.Manager {
	return []*portfolio.Manager{
		portfolio.NewManager("test", nopStrategy{}, store, "positions"),
	}
}

func spyChain() *chain.Chain {
	return &chain.Chain{Symbol: "SPY", UnderlyingPrice: 450}
}

func drain(t *testing.T, q *action.Queue) []action.Action {
	t.Helper()
	var out []action.Action
	for q.Len() > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		a, err := q.Dequeue(ctx)
		cancel()
		require.NoError(t, err)
		out = append(out, a)
	}
	return out
}

func TestLive_FreshDayEnqueuesAndAdvancesSequence(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	mock := provider.NewMock()
	mock.Chains["SPY"] = spyChain()
	q := action.NewQueue()

	live := NewLive(mock, q, []string{"SPY"}, 10, testManagers(store), store,
		LiveConfig{BatchTimeout: time.Second}, false)
	require.NoError(t, live.Run(ctx))

	actions := drain(t, q)
	require.Len(t, actions, 3)
	assert.Equal(t, "update_positions", actions[0].Name())
	assert.Equal(t, "trading", actions[1].Name())
	assert.Equal(t, "record_chain", actions[2].Name())

	record := actions[2].(*action.RecordChain)
	assert.Equal(t, 1, record.Seq)
	assert.Equal(t, "data_"+chain.Date(0, false), record.Collection)

	seq, ok, err := store.Sequence(ctx, "data_"+chain.Date(0, false))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, seq)
}

func TestLive_RebalanceEnqueuedWhenEnabled(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	mock := provider.NewMock()
	mock.Chains["SPY"] = spyChain()
	q := action.NewQueue()

	live := NewLive(mock, q, []string{"SPY"}, 10, testManagers(store), store,
		LiveConfig{BatchTimeout: time.Second}, true)
	require.NoError(t, live.Run(ctx))

	actions := drain(t, q)
	require.Len(t, actions, 4)
	assert.Equal(t, "rebalance", actions[2].Name())
	assert.Equal(t, "record_chain", actions[3].Name())
}

func TestLive_ResumesStoredSequenceMidDay(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	collection := "data_" + chain.Date(0, false)
	require.NoError(t, store.SetSequence(ctx, collection, 27))

	mock := provider.NewMock()
	mock.Chains["SPY"] = spyChain()
	q := action.NewQueue()

	live := NewLive(mock, q, []string{"SPY"}, 10, testManagers(store), store,
		LiveConfig{BatchTimeout: time.Second}, false)
	require.NoError(t, live.Run(ctx))

	actions := drain(t, q)
	record := actions[2].(*action.RecordChain)
	assert.Equal(t, 27, record.Seq, "restart must not overwrite the morning's recordings")

	seq, _, err := store.Sequence(ctx, collection)
	require.NoError(t, err)
	assert.Equal(t, 28, seq)
}

func TestLive_TickerErrorSkipsOnlyThatTicker(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	mock := provider.NewMock()
	mock.Chains["SPY"] = spyChain()
	mock.Errs["QQQ"] = errors.New("vendor hiccup")
	q := action.NewQueue()

	live := NewLive(mock, q, []string{"SPY", "QQQ"}, 10, testManagers(store), store,
		LiveConfig{BatchTimeout: time.Second}, false)
	require.NoError(t, live.Run(ctx))

	actions := drain(t, q)
	require.Len(t, actions, 3, "only the healthy ticker's actions should be enqueued")

	seq, _, err := store.Sequence(ctx, "data_"+chain.Date(0, false))
	require.NoError(t, err)
	assert.Equal(t, 2, seq, "sequence still advances after per-ticker errors")
}

func TestLive_BatchTimeoutDiscardsWholeBatch(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	mock := provider.NewMock()
	mock.Chains["SPY"] = spyChain()
	mock.Chains["QQQ"] = &chain.Chain{Symbol: "QQQ"}
	mock.Delay = 200 * time.Millisecond
	q := action.NewQueue()

	live := NewLive(mock, q, []string{"SPY", "QQQ"}, 10, testManagers(store), store,
		LiveConfig{BatchTimeout: 20 * time.Millisecond}, false)
	require.NoError(t, live.Run(ctx))

	assert.Zero(t, q.Len(), "timed-out batch must contribute nothing")

	seq, _, err := store.Sequence(ctx, "data_"+chain.Date(0, false))
	require.NoError(t, err)
	assert.Equal(t, 2, seq)
}

func TestLive_BatchTimeoutDiscardsEarlyArrivalsToo(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	mock := provider.NewMock()
	mock.Chains["SPY"] = spyChain()
	mock.Chains["QQQ"] = &chain.Chain{Symbol: "QQQ"}
	// SPY answers instantly, QQQ stalls past the batch ceiling
	mock.Delays["QQQ"] = 500 * time.Millisecond
	q := action.NewQueue()

	live := NewLive(mock, q, []string{"SPY", "QQQ"}, 10, testManagers(store), store,
		LiveConfig{BatchTimeout: 50 * time.Millisecond}, false)
	require.NoError(t, live.Run(ctx))

	assert.Zero(t, q.Len(), "the fast ticker's snapshot must be discarded with the batch")

	seq, _, err := store.Sequence(ctx, "data_"+chain.Date(0, false))
	require.NoError(t, err)
	assert.Equal(t, 2, seq)
}
