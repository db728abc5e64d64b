package socketio

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/stagegrid/internal/ctxlog"
	"github.com/specialistvlad/stagegrid/internal/registry"
	"github.com/specialistvlad/stagegrid/internal/task"
	"github.com/zishang520/engine.io/v2/types"
)

// Ref is the implementation reference of the socketio task.
const Ref = "socketio"

// DefaultWait bounds connecting plus waiting for the response event when
// the "wait" parameter is absent or malformed.
const DefaultWait = 10 * time.Second

// Module implements the registry.Module interface for this package.
type Module struct{}

// Task connects to a socket.io server, emits one event and waits for a
// response event. Parameters:
//
//	url                   required, e.g. "https://host/socket.io/"
//	namespace             defaults to "/"
//	emit_event            event sent once connected
//	emit_data             JSON parameter sent with emit_event
//	on_event              required, the awaited event
//	wait                  Go duration, defaults to DefaultWait
//	insecure_skip_verify  BOOLEAN parameter
type Task struct {
	task.Base
}

type opResult struct {
	data any
	err  error
}

// Invoke runs one emit-and-await exchange on a fresh connection.
func (t *Task) Invoke(ctx context.Context, call *task.Call) (*task.Result, error) {
	rawURL := call.StringParam("url")
	onEvent := call.StringParam("on_event")
	emitEvent := call.StringParam("emit_event")
	if rawURL == "" || onEvent == "" {
		return nil, fmt.Errorf("socketio %s: url and on_event are required", call.TaskID)
	}
	namespace := call.StringParam("namespace")
	if namespace == "" {
		namespace = "/"
	}
	insecure, _ := call.Param("insecure_skip_verify").(bool)

	logger := ctxlog.FromContext(ctx).With("taskID", call.TaskID, "url", rawURL, "onEvent", onEvent, "emitEvent", emitEvent)
	logger.Debug("Handler started.")
	defer logger.Debug("Handler finished.")

	wait, err := time.ParseDuration(call.StringParam("wait"))
	if err != nil {
		wait = DefaultWait
	}
	opCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	io, err := dial(logger, rawURL, namespace, insecure)
	if err != nil {
		return nil, err
	}
	defer func() {
		logger.Debug("Disconnecting socket client.")
		io.Disconnect()
	}()

	var isConnected atomic.Bool
	done := make(chan opResult, 2)
	emitData := call.Param("emit_data")

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Info("Successfully connected.", "namespace", namespace, "sid", io.Id())
		if emitEvent != "" {
			jsonData, _ := json.Marshal(emitData)
			logger.Debug("Emitting event.", "event", emitEvent, "data", string(jsonData))
			io.Emit(emitEvent, emitData)
		}
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("socket.io connection failed")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = fmt.Errorf("socket.io connection failed: %w", e)
			}
		}
		select {
		case done <- opResult{err: err}:
		default:
		}
	})
	io.Once(types.EventName(onEvent), func(data ...any) {
		var response any
		if len(data) > 0 {
			response = data[0]
		}
		select {
		case done <- opResult{data: response}:
		default:
		}
	})

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return nil, fmt.Errorf("timed out after connecting while waiting for event '%s'", onEvent)
		}
		return nil, fmt.Errorf("timed out while waiting for initial connection")
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		logger.Info("Successfully received response event.", "event", onEvent)
		return task.NewSuccess(map[string]any{"response_data": res.data}), nil
	}
}

// Register registers the task with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Ref, func() task.Task { return &Task{} })
}
