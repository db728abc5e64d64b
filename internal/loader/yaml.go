package loader

import (
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/stagegrid/internal/config"
	"gopkg.in/yaml.v3"
)

// yamlKey is the top-level key holding the arrangement list.
const yamlKey = "arrangements"

// ReadYAML decodes the arrangements listed under the top-level
// "arrangements" key. A document without the key yields no arrangements.
func (l *Loader) ReadYAML(source string, data []byte) ([]*config.Arrangement, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, config.ReadError(source, err)
	}
	list, ok := doc[yamlKey]
	if !ok || list == nil {
		return nil, nil
	}

	// Re-encoded as JSON and read by ReadJSON.
	js, err := json.Marshal(list)
	if err != nil {
		return nil, config.ReadError(source, fmt.Errorf("cannot convert %q to JSON: %w", yamlKey, err))
	}
	return l.ReadJSON(source, js)
}
