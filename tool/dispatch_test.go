package tool

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextnine/agenthub/core"
)

func TestDispatchEmptyBatch(t *testing.T) {
	d := NewDispatcher(NewRegistry(nil), DispatcherConfig{}, nil)
	assert.Nil(t, d.Dispatch(context.Background(), "finance_agent", "session-1", nil))
}

func TestDispatchPreservesRequestOrder(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.RegisterCommon(stubTool("echo_index",
		func(inv *Invocation, args map[string]any) (map[string]any, error) {
			// Later calls finish first, order must still hold.
			idx := args["index"].(float64)
			time.Sleep(time.Duration(10-int(idx)) * time.Millisecond)
			return map[string]any{"index": idx}, nil
		})))

	d := NewDispatcher(r, DispatcherConfig{}, nil)

	requests := make([]core.ToolRequest, 5)
	for i := range requests {
		requests[i] = core.ToolRequest{
			ID:        fmt.Sprintf("call-%d", i),
			Name:      "echo_index",
			Arguments: map[string]any{"index": float64(i)},
		}
	}

	results := d.Dispatch(context.Background(), "finance_agent", "session-1", requests)
	require.Len(t, results, 5)
	for i, result := range results {
		require.Equal(t, core.StatusSuccess, result.Status)
		assert.Equal(t, float64(i), result.Payload["index"])
	}
}

func TestDispatchIsolatesFailures(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.RegisterCommon(stubTool("ok_tool",
		func(inv *Invocation, args map[string]any) (map[string]any, error) {
			return map[string]any{"ok": true}, nil
		})))
	require.NoError(t, r.RegisterCommon(stubTool("bad_tool",
		func(inv *Invocation, args map[string]any) (map[string]any, error) {
			panic("boom")
		})))

	d := NewDispatcher(r, DispatcherConfig{}, nil)
	results := d.Dispatch(context.Background(), "finance_agent", "session-1", []core.ToolRequest{
		{ID: "c1", Name: "ok_tool"},
		{ID: "c2", Name: "bad_tool"},
		{ID: "c3", Name: "unknown_tool"},
	})

	require.Len(t, results, 3)
	assert.Equal(t, core.StatusSuccess, results[0].Status)
	assert.Equal(t, core.StatusError, results[1].Status)
	assert.Equal(t, core.StatusNotImplemented, results[2].Status)
}

func TestDispatchRespectsMaxParallel(t *testing.T) {
	var active, peak int64

	r := NewRegistry(nil)
	require.NoError(t, r.RegisterCommon(stubTool("counting_tool",
		func(inv *Invocation, args map[string]any) (map[string]any, error) {
			cur := atomic.AddInt64(&active, 1)
			for {
				old := atomic.LoadInt64(&peak)
				if cur <= old || atomic.CompareAndSwapInt64(&peak, old, cur) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt64(&active, -1)
			return map[string]any{}, nil
		})))

	d := NewDispatcher(r, DispatcherConfig{MaxParallel: 2}, nil)

	requests := make([]core.ToolRequest, 6)
	for i := range requests {
		requests[i] = core.ToolRequest{ID: fmt.Sprintf("c%d", i), Name: "counting_tool"}
	}

	results := d.Dispatch(context.Background(), "finance_agent", "session-1", requests)
	require.Len(t, results, 6)
	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(2))
}

func TestDispatchPerCallTimeout(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.RegisterCommon(stubTool("slow_tool",
		func(inv *Invocation, args map[string]any) (map[string]any, error) {
			select {
			case <-inv.Context.Done():
				return nil, inv.Context.Err()
			case <-time.After(time.Second):
				return map[string]any{}, nil
			}
		})))
	require.NoError(t, r.RegisterCommon(stubTool("fast_tool",
		func(inv *Invocation, args map[string]any) (map[string]any, error) {
			return map[string]any{"ok": true}, nil
		})))

	d := NewDispatcher(r, DispatcherConfig{CallTimeout: 30 * time.Millisecond}, nil)
	results := d.Dispatch(context.Background(), "finance_agent", "session-1", []core.ToolRequest{
		{ID: "c1", Name: "slow_tool"},
		{ID: "c2", Name: "fast_tool"},
	})

	require.Len(t, results, 2)
	assert.Equal(t, core.StatusError, results[0].Status)
	assert.Equal(t, core.StatusSuccess, results[1].Status)
}
