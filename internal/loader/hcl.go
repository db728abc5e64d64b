package loader

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/stagegrid/internal/config"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// hclRoot is the schema of a whole HCL arrangement file.
type hclRoot struct {
	Arrangements []*hclArrangement `hcl:"arrangement,block"`
}

type hclArrangement struct {
	Name        string     `hcl:"name,label"`
	Description *string    `hcl:"description,optional"`
	Stages      [][]string `hcl:"stages"`
	Tasks       []*hclTask `hcl:"task,block"`
}

type hclTask struct {
	ID       string      `hcl:"id,label"`
	Impl     string      `hcl:"impl,optional"`
	Retries  *int        `hcl:"retries,optional"`
	Timeout  *int64      `hcl:"timeout,optional"`
	Validate *string     `hcl:"validate,optional"`
	Params   []*hclParam `hcl:"param,block"`
}

type hclParam struct {
	Name        string    `hcl:"name,label"`
	Type        string    `hcl:"type"`
	Value       cty.Value `hcl:"value,optional"`
	Required    *bool     `hcl:"required,optional"`
	Description *string   `hcl:"description,optional"`
}

// ReadHCL decodes the arrangement blocks of an HCL file read from source.
// Syntax errors are read errors; undeclared attributes, duplicate task ids
// and out-of-range budgets are configuration errors.
func (l *Loader) ReadHCL(source string, data []byte) ([]*config.Arrangement, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, source)
	if diags.HasErrors() {
		return nil, config.ReadError(source, fmt.Errorf("failed to parse HCL file: %w", diags))
	}

	var root hclRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, config.Invalidf("failed to decode HCL file %s: %v", source, diags)
	}

	arrs := make([]*config.Arrangement, 0, len(root.Arrangements))
	for _, ha := range root.Arrangements {
		a, err := ha.toModel()
		if err != nil {
			return nil, err
		}
		arrs = append(arrs, a)
	}
	return finish(source, arrs)
}

func (ha *hclArrangement) toModel() (*config.Arrangement, error) {
	a := &config.Arrangement{
		Name:   ha.Name,
		Stages: ha.Stages,
		Tasks:  make(map[string]*config.TaskDescriptor, len(ha.Tasks)),
	}
	if ha.Description != nil {
		a.Description = *ha.Description
	}

	for _, ht := range ha.Tasks {
		if _, dup := a.Tasks[ht.ID]; dup {
			return nil, config.Invalidf("arrangement %q: task %q is declared more than once", ha.Name, ht.ID)
		}
		d := config.NewTask(ht.ID, ht.Impl)
		if ht.Retries != nil {
			d.Retries = *ht.Retries
		}
		if ht.Timeout != nil {
			if ms := *ht.Timeout; ms < 0 || ms > config.MaxTimeout.Milliseconds() {
				return nil, config.Invalidf("arrangement %q: task %q: timeout must be between 0 and %dms, got %dms", ha.Name, ht.ID, config.MaxTimeout.Milliseconds(), ms)
			}
			d.Timeout = time.Duration(*ht.Timeout) * time.Millisecond
		}
		if ht.Validate != nil {
			d.Validate = *ht.Validate
		}
		for _, hp := range ht.Params {
			value, err := ctyString(hp.Value)
			if err != nil {
				return nil, config.Invalidf("arrangement %q: task %q: param %q: %v", ha.Name, ht.ID, hp.Name, err)
			}
			p := config.Param{Name: hp.Name, Type: config.ParamType(hp.Type), Value: value}
			if hp.Required != nil {
				p.Required = *hp.Required
			}
			if hp.Description != nil {
				p.Description = *hp.Description
			}
			d.Params = append(d.Params, p)
		}
		a.Tasks[ht.ID] = d
	}
	return a, nil
}

// ctyString renders an HCL value in the raw string form of a parameter.
// Lists and tuples are joined with ",", maps and objects become "k:v" pairs
// sorted by key.
func ctyString(v cty.Value) (string, error) {
	if v.IsNull() {
		return "", nil
	}
	if !v.IsWhollyKnown() {
		return "", fmt.Errorf("value is not known")
	}

	t := v.Type()
	switch {
	case t.IsListType() || t.IsTupleType() || t.IsSetType():
		parts := make([]string, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			s, err := primitiveString(ev)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), nil
	case t.IsMapType() || t.IsObjectType():
		entries := make([]string, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			s, err := primitiveString(ev)
			if err != nil {
				return "", err
			}
			entries = append(entries, k.AsString()+":"+s)
		}
		sort.Strings(entries)
		return strings.Join(entries, ","), nil
	default:
		return primitiveString(v)
	}
}

func primitiveString(v cty.Value) (string, error) {
	if v.IsNull() {
		return "", nil
	}
	sv, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", fmt.Errorf("cannot convert %s to string: %w", v.Type().FriendlyName(), err)
	}
	return sv.AsString(), nil
}
