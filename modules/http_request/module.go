package http_request

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/specialistvlad/stagegrid/internal/ctxlog"
	"github.com/specialistvlad/stagegrid/internal/registry"
	"github.com/specialistvlad/stagegrid/internal/task"
	"github.com/specialistvlad/stagegrid/modules/http_client"
	"resty.dev/v3"
)

// Ref is the implementation reference of the http_request task.
const Ref = "http_request"

// Module implements the registry.Module interface for this package.
// A nil Client uses http_client.Shared.
type Module struct {
	Client *resty.Client
}

// Task performs one HTTP request. Parameters:
//
//	url      required
//	method   defaults to GET
//	body     request body
//	headers  MAP parameter of request headers
//
// The result code is the response status code, so a validation expression
// such as `result.code == "200"` retries on other statuses.
type Task struct {
	task.Base
	client *resty.Client
}

// Invoke sends the request and returns the status and body.
func (t *Task) Invoke(ctx context.Context, call *task.Call) (*task.Result, error) {
	url := call.StringParam("url")
	if url == "" {
		return nil, fmt.Errorf("http_request %s: url is required", call.TaskID)
	}
	method := strings.ToUpper(call.StringParam("method"))
	if method == "" {
		method = http.MethodGet
	}

	logger := ctxlog.FromContext(ctx)
	logger.Info("Making HTTP request.", "taskID", call.TaskID, "method", method, "url", url)

	req := t.client.R().SetContext(ctx)
	if headers, ok := call.Param("headers").(map[string]string); ok {
		req.SetHeaders(headers)
	}
	if body := call.StringParam("body"); body != "" {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	logger.Info("Received HTTP response.", "taskID", call.TaskID, "status", resp.Status())

	return &task.Result{
		Code:    strconv.Itoa(resp.StatusCode()),
		Message: resp.Status(),
		Data: map[string]any{
			"status_code": resp.StatusCode(),
			"body":        resp.String(),
		},
	}, nil
}

// Register registers the task with the registry.
func (m *Module) Register(r *registry.Registry) {
	client := m.Client
	if client == nil {
		client = http_client.Shared()
	}
	r.Register(Ref, func() task.Task { return &Task{client: client} })
}
