// Package progress pushes workflow point events to a socket.io endpoint so
// long batch runs can be followed from a dashboard.
package progress

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/apsimgo/internal/config"
	"github.com/specialistvlad/apsimgo/internal/ctxlog"
	"github.com/specialistvlad/apsimgo/internal/executor"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultConnectTimeout bounds the wait for the first connection.
const DefaultConnectTimeout = 15 * time.Second

// Emitter sends one socket.io event per executor event.
type Emitter struct {
	event string
	emit  func(ev string, args ...any) error
	close func()
}

// Dial connects to the endpoint described by cfg and waits until the
// connection is up, the timeout passes or ctx is done.
func Dial(ctx context.Context, cfg *config.Progress, timeout time.Duration) (*Emitter, error) {
	logger := ctxlog.FromContext(ctx).With("url", cfg.URL, "namespace", cfg.Namespace)
	logger.Info("Connecting progress endpoint...")

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse progress URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("progress URL %q needs a scheme and host", cfg.URL)
	}
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))
	opts.SetReconnection(false)
	opts.SetTimeout(timeout)

	connectChan := make(chan error, 1)
	report := func(err error) {
		select {
		case connectChan <- err:
		default:
		}
	}
	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Progress endpoint connected.", "sid", io.Id())
		report(nil)
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			} else {
				err = fmt.Errorf("%v", errs[0])
			}
		}
		report(err)
	})
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}

	return &Emitter{
		event: cfg.Event,
		emit:  io.Emit,
		close: func() { io.Disconnect() },
	}, nil
}

// Payload is the body of one progress event.
func Payload(ev executor.Event) map[string]any {
	p := map[string]any{
		"point":       ev.Point,
		"status":      string(ev.Status),
		"done":        ev.Done,
		"total":       ev.Total,
		"duration_ms": ev.Duration.Milliseconds(),
	}
	if ev.Err != nil {
		p["error"] = ev.Err.Error()
	}
	return p
}

// Observe implements executor.Observer. Send failures are logged and never
// interrupt the workflow.
func (e *Emitter) Observe(ctx context.Context, ev executor.Event) {
	if err := e.emit(e.event, Payload(ev)); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to send progress event.", "event", e.event, "error", err)
	}
}

// Close disconnects from the endpoint.
func (e *Emitter) Close() {
	if e.close != nil {
		e.close()
	}
}
