package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"formfill-agent/internal/domain/entity"

	"sigs.k8s.io/yaml"
)

// LoadRequest reads a request from a JSON or YAML file. JSON is decoded as is
// so object-shaped fields keep their order; YAML mappings do not keep key
// order, so YAML files should list fields as {key, value} pairs.
func LoadRequest(path string) (entity.FormFillRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entity.FormFillRequest{}, fmt.Errorf("failed to read request file: %w", err)
	}
	return ParseRequest(data, filepath.Ext(path))
}

func ParseRequest(data []byte, ext string) (entity.FormFillRequest, error) {
	if !strings.EqualFold(ext, ".json") {
		converted, err := yaml.YAMLToJSON(data)
		if err != nil {
			return entity.FormFillRequest{}, fmt.Errorf("failed to parse yaml: %w", err)
		}
		data = converted
	}

	var req entity.FormFillRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return entity.FormFillRequest{}, fmt.Errorf("failed to decode request: %w", err)
	}
	return req, nil
}
