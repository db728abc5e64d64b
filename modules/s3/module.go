package s3

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/stagegrid/internal/ctxlog"
	"github.com/specialistvlad/stagegrid/internal/registry"
	"github.com/specialistvlad/stagegrid/internal/task"
	"github.com/specialistvlad/stagegrid/modules/http_client"
	"resty.dev/v3"
)

// Ref is the implementation reference of the s3 task.
const Ref = "s3"

// Module implements the registry.Module interface for this package.
// A nil Client uses http_client.Shared.
type Module struct {
	Client *resty.Client
}

// Task moves files through pre-signed S3 URLs. The "action" parameter
// selects "upload" (source_path, upload_url) or "download" (download_url,
// dest_path).
type Task struct {
	task.Base
	client *resty.Client
}

// Invoke dispatches on the action parameter.
func (t *Task) Invoke(ctx context.Context, call *task.Call) (*task.Result, error) {
	switch action := strings.ToLower(call.StringParam("action")); action {
	case "upload":
		return t.upload(ctx, call)
	case "download":
		return t.download(ctx, call)
	default:
		return nil, fmt.Errorf("unknown s3 action: '%s'", action)
	}
}

// upload PUTs a local file to a pre-signed URL.
func (t *Task) upload(ctx context.Context, call *task.Call) (*task.Result, error) {
	logger := ctxlog.FromContext(ctx).With("action", "upload", "taskID", call.TaskID)
	source := call.StringParam("source_path")
	uploadURL := call.StringParam("upload_url")

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file '%s': %w", source, err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(source))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	logger.Info("Uploading file to S3.", "source", source, "size", len(data), "contentType", contentType)

	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(data).
		Put(uploadURL)
	if err != nil {
		return nil, fmt.Errorf("failed to execute S3 upload request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("S3 upload failed with status: %s", resp.Status())
	}

	logger.Info("Successfully uploaded file.", "status", resp.Status())
	return task.NewSuccess(map[string]any{
		"success": true,
		"status":  resp.Status(),
		"bytes":   len(data),
	}), nil
}

// download GETs a pre-signed URL into a local file.
func (t *Task) download(ctx context.Context, call *task.Call) (*task.Result, error) {
	logger := ctxlog.FromContext(ctx).With("action", "download", "taskID", call.TaskID)
	downloadURL := call.StringParam("download_url")
	dest := call.StringParam("dest_path")
	if dest == "" {
		return nil, fmt.Errorf("s3 download requires dest_path")
	}

	resp, err := t.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(downloadURL)
	if err != nil {
		return nil, fmt.Errorf("failed to execute S3 download request: %w", err)
	}
	body := resp.RawResponse.Body
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("S3 download failed with status: %s", resp.Status())
	}

	f, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file '%s': %w", dest, err)
	}
	defer f.Close()

	n, err := io.Copy(f, body)
	if err != nil {
		return nil, fmt.Errorf("failed to write destination file '%s': %w", dest, err)
	}

	logger.Info("Successfully downloaded file.", "dest", dest, "size", n)
	return task.NewSuccess(map[string]any{
		"success": true,
		"status":  resp.Status(),
		"bytes":   n,
	}), nil
}

// Register registers the task with the registry.
func (m *Module) Register(r *registry.Registry) {
	client := m.Client
	if client == nil {
		client = http_client.Shared()
	}
	r.Register(Ref, func() task.Task { return &Task{client: client} })
}
