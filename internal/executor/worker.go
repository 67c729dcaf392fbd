package executor

import (
	"context"
	"time"

	"github.com/specialistvlad/apsimgo/internal/apsimx"
	"github.com/specialistvlad/apsimgo/internal/ctxlog"
)

// worker is the processing loop for a single concurrent worker. Every job
// gets a fresh clone of base; workers never share a tree.
func (e *Executor) worker(ctx context.Context, base *apsimx.Node, source string, jobs <-chan int, out []*PointResult, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)
	total := len(out)

	for i := range jobs {
		p := e.wf.Points[i]
		workerLogger := logger.With("workerID", workerID, "point", p.Name)
		pointCtx := ctxlog.WithLogger(ctx, workerLogger)

		if err := ctx.Err(); err != nil {
			workerLogger.Warn("Context canceled, skipping point.")
			out[i] = &PointResult{Point: p, Err: err}
			e.observe(pointCtx, Event{Point: p.Name, Status: StatusSkipped, Err: err, Done: e.finish(), Total: total})
			e.wg.Done()
			continue
		}

		workerLogger.Debug("Worker picked up point.")
		e.observe(pointCtx, Event{Point: p.Name, Status: StatusStarted, Done: int(e.done.Load()), Total: total})
		start := time.Now()
		res := e.runPoint(pointCtx, base.Clone(), source, p)
		res.Duration = time.Since(start)
		out[i] = res

		if res.Err != nil {
			workerLogger.Error("Point failed.", "error", res.Err)
			e.observe(pointCtx, Event{Point: p.Name, Status: StatusFailed, Err: res.Err, Duration: res.Duration, Done: e.finish(), Total: total})
			e.wg.Done()
			continue
		}

		workerLogger.Info("Point succeeded.", "duration", res.Duration, "tables", len(res.Files))
		e.observe(pointCtx, Event{Point: p.Name, Status: StatusSucceeded, Duration: res.Duration, Done: e.finish(), Total: total})
		e.wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

func (e *Executor) finish() int {
	return int(e.done.Add(1))
}
