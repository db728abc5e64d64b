// Package params turns the raw, string-valued parameters of a task
// descriptor into typed values, and performs the execution-time
// substitution of deferred #(key)# references.
package params

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/specialistvlad/stagegrid/internal/config"
)

const (
	refPrefix = "#("
	refSuffix = ")#"
)

// Resolve converts raw parameters into a typed mapping keyed by parameter
// name. Empty optional parameters and empty CONTEXT parameters are skipped.
// An empty required parameter, a malformed number or boolean, and a
// non-empty CONTEXT value that is not written as #(key)# are configuration
// errors. JSON and JSON_ARRAY values that do not
// parse are silently omitted.
func Resolve(raw []config.Param) (map[string]any, error) {
	resolved := make(map[string]any, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, p := range raw {
		if p.Name == "" {
			return nil, config.Invalidf("parameter name must not be empty")
		}
		if _, dup := seen[p.Name]; dup {
			return nil, config.Invalidf("parameter %q declared more than once", p.Name)
		}
		seen[p.Name] = struct{}{}

		if !p.Type.Known() {
			return nil, config.Invalidf("parameter %q has unknown type %q", p.Name, p.Type)
		}

		value := strings.TrimSpace(p.Value)
		if value == "" {
			if p.Required && p.Type != config.ParamContext {
				return nil, config.Invalidf("parameter %q is required but its value is empty", p.Name)
			}
			continue
		}

		v, ok, err := convert(p, value)
		if err != nil {
			return nil, err
		}
		if ok {
			resolved[p.Name] = v
		}
	}
	return resolved, nil
}

// convert returns the typed value of one parameter. ok is false when the
// parameter resolves to nothing.
func convert(p config.Param, value string) (v any, ok bool, err error) {
	switch p.Type {
	case config.ParamString:
		return value, true, nil
	case config.ParamInt:
		n, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return nil, false, config.Invalidf("parameter %q: %q is not an INT", p.Name, value)
		}
		return int(n), true, nil
	case config.ParamLong:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, false, config.Invalidf("parameter %q: %q is not a LONG", p.Name, value)
		}
		return n, true, nil
	case config.ParamDouble:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, false, config.Invalidf("parameter %q: %q is not a DOUBLE", p.Name, value)
		}
		return f, true, nil
	case config.ParamBoolean:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, false, config.Invalidf("parameter %q: %q is not a BOOLEAN", p.Name, value)
		}
		return b, true, nil
	case config.ParamList:
		return strings.Split(value, ","), true, nil
	case config.ParamMap:
		m := make(map[string]string)
		for _, pair := range strings.Split(value, ",") {
			k, val, found := strings.Cut(pair, ":")
			if !found {
				return nil, false, config.Invalidf("parameter %q: map entry %q is not key:value", p.Name, pair)
			}
			m[k] = val
		}
		return m, true, nil
	case config.ParamJSON:
		var doc any
		if err := json.Unmarshal([]byte(value), &doc); err != nil {
			return nil, false, nil
		}
		return doc, true, nil
	case config.ParamJSONArray:
		var doc []any
		if err := json.Unmarshal([]byte(value), &doc); err != nil {
			return nil, false, nil
		}
		return doc, true, nil
	case config.ParamCMS:
		return nil, false, nil
	case config.ParamContext:
		if _, isRef := Reference(value); !isRef {
			return nil, false, config.Invalidf("parameter %q: CONTEXT value must be written as #(key)#, got %q", p.Name, value)
		}
		return value, true, nil
	}
	return nil, false, nil
}

// Reference reports whether s is a deferred reference and returns its key.
func Reference(s string) (string, bool) {
	if len(s) < len(refPrefix)+len(refSuffix) {
		return "", false
	}
	if !strings.HasPrefix(s, refPrefix) || !strings.HasSuffix(s, refSuffix) {
		return "", false
	}
	return s[len(refPrefix) : len(s)-len(refSuffix)], true
}

// Substitute returns a new mapping where every string value written as
// #(key)# is replaced by lookup(key). A key unknown to lookup yields nil.
// The input mapping is never modified.
func Substitute(resolved map[string]any, lookup func(key string) (any, bool)) map[string]any {
	out := make(map[string]any, len(resolved))
	for name, v := range resolved {
		s, isString := v.(string)
		if !isString {
			out[name] = v
			continue
		}
		key, isRef := Reference(s)
		if !isRef {
			out[name] = v
			continue
		}
		if found, ok := lookup(key); ok {
			out[name] = found
		} else {
			out[name] = nil
		}
	}
	return out
}
