package tool

import (
	"context"
	"sync"
	"time"

	"github.com/nextnine/agenthub/core"
	"github.com/nextnine/agenthub/logging"
)

// DispatcherConfig configures the parallel batch dispatcher.
type DispatcherConfig struct {
	MaxParallel int           // 0 or <1 => no explicit limit (len(requests))
	CallTimeout time.Duration // per-call deadline; 0 => no deadline
}

// Dispatcher executes every tool request of one turn round concurrently
// against a Registry and joins before returning. Results are indexed by the
// originating request, so the returned slice order equals the request order
// regardless of completion order. A slow or failing call never drops its
// sibling results; a per-call timeout converts into a status:error result.
type Dispatcher struct {
	registry *Registry
	cfg      DispatcherConfig
	logger   logging.Logger
}

// NewDispatcher constructs a dispatcher over a registry.
func NewDispatcher(registry *Registry, cfg DispatcherConfig, logger logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Dispatcher{registry: registry, cfg: cfg, logger: logger}
}

// Dispatch fans out all requests of one round and fans in their results.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	agentID, sessionID string,
	requests []core.ToolRequest,
) []core.ToolResult {
	n := len(requests)
	if n == 0 {
		return nil
	}

	results := make([]core.ToolResult, n)

	// Fast path: single call, execute inline.
	if n == 1 {
		results[0] = d.executeOne(ctx, agentID, sessionID, requests[0])
		return results
	}

	maxPar := d.cfg.MaxParallel
	if maxPar <= 0 || maxPar > n {
		maxPar = n
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxPar)

	batchStart := time.Now()
	for i := range requests {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, req core.ToolRequest) {
			defer wg.Done()
			defer func() { <-sem }()

			// Each goroutine writes only its own index.
			results[idx] = d.executeOne(ctx, agentID, sessionID, req)
		}(i, requests[i])
	}
	wg.Wait()

	d.logger.Debug(
		"tool.batch.complete",
		"agent", agentID,
		"count", n,
		"parallelism", maxPar,
		"duration_ms", time.Since(batchStart).Milliseconds(),
	)

	return results
}

func (d *Dispatcher) executeOne(
	ctx context.Context,
	agentID, sessionID string,
	req core.ToolRequest,
) core.ToolResult {
	callCtx := ctx
	var cancel context.CancelFunc
	if d.cfg.CallTimeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, d.cfg.CallTimeout)
		defer cancel()
	}

	inv := &Invocation{
		Context:   callCtx,
		AgentID:   agentID,
		SessionID: sessionID,
		CallID:    req.ID,
		Logger:    d.logger,
	}

	start := time.Now()
	result := d.registry.Execute(inv, req)

	if err := callCtx.Err(); err != nil && result.Status == core.StatusSuccess {
		// The handler finished but the deadline already passed; report the
		// timeout instead of a stale success.
		result = core.ErrorResult("tool call timed out: " + req.Name)
	}

	d.logger.Info(
		"tool.executed",
		"agent", agentID,
		"tool", req.Name,
		"status", result.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result
}
