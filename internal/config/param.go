package config

// ParamType is the declared kind of a raw task parameter.
type ParamType string

const (
	ParamString    ParamType = "STRING"
	ParamInt       ParamType = "INT"
	ParamLong      ParamType = "LONG"
	ParamDouble    ParamType = "DOUBLE"
	ParamBoolean   ParamType = "BOOLEAN"
	ParamList      ParamType = "LIST"
	ParamMap       ParamType = "MAP"
	ParamJSON      ParamType = "JSON"
	ParamJSONArray ParamType = "JSON_ARRAY"
	// ParamCMS is reserved for an external content source and resolves to nothing.
	ParamCMS ParamType = "CMS"
	// ParamContext defers resolution to execution time: the value must be
	// written as #(key)# and is looked up in the session inputs.
	ParamContext ParamType = "CONTEXT"
)

// Param is one raw, string-valued task parameter as written in a file.
type Param struct {
	Name        string
	Type        ParamType
	Value       string
	Required    bool
	Description string
}

// Known reports whether t is a supported parameter kind.
func (t ParamType) Known() bool {
	switch t {
	case ParamString, ParamInt, ParamLong, ParamDouble, ParamBoolean,
		ParamList, ParamMap, ParamJSON, ParamJSONArray, ParamCMS, ParamContext:
		return true
	}
	return false
}
