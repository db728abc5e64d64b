package loader

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/specialistvlad/stagegrid/internal/config"
)

type fileArrangement struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Stages      [][]string           `json:"stages"`
	Tasks       map[string]*fileTask `json:"tasks"`
}

type fileTask struct {
	ID       string      `json:"id"`
	Impl     string      `json:"impl"`
	Retries  *int        `json:"retries"`
	Timeout  *int64      `json:"timeout"`
	Validate string      `json:"validate"`
	Params   []fileParam `json:"params"`
}

type fileParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Value       any    `json:"value"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

// ReadJSON decodes a JSON array of arrangements read from source.
func (l *Loader) ReadJSON(source string, data []byte) ([]*config.Arrangement, error) {
	if err := l.schema.validate(source, data); err != nil {
		return nil, err
	}

	var doc []fileArrangement
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, config.ReadError(source, err)
	}

	arrs := make([]*config.Arrangement, 0, len(doc))
	for _, fa := range doc {
		a, err := fa.toModel()
		if err != nil {
			return nil, err
		}
		arrs = append(arrs, a)
	}
	return finish(source, arrs)
}

func (fa fileArrangement) toModel() (*config.Arrangement, error) {
	a := &config.Arrangement{
		Name:        fa.Name,
		Description: fa.Description,
		Stages:      fa.Stages,
		Tasks:       make(map[string]*config.TaskDescriptor, len(fa.Tasks)),
	}
	for id, ft := range fa.Tasks {
		if ft == nil {
			return nil, config.Invalidf("arrangement %q: task %q is empty", fa.Name, id)
		}
		if ft.ID != "" && ft.ID != id {
			return nil, config.Invalidf("arrangement %q: task key %q does not match id %q", fa.Name, id, ft.ID)
		}

		d := config.NewTask(id, ft.Impl)
		if ft.Retries != nil {
			d.Retries = *ft.Retries
		}
		if ft.Timeout != nil {
			d.Timeout = time.Duration(*ft.Timeout) * time.Millisecond
		}
		d.Validate = ft.Validate
		for _, fp := range ft.Params {
			d.Params = append(d.Params, config.Param{
				Name:        fp.Name,
				Type:        config.ParamType(fp.Type),
				Value:       stringify(fp.Value),
				Required:    fp.Required,
				Description: fp.Description,
			})
		}
		a.Tasks[id] = d
	}
	return a, nil
}

// stringify renders a decoded parameter value as the raw string the
// parameter resolver expects. Arrays and objects keep their JSON text.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
