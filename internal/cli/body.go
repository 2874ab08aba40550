package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tansive/restdb/internal/common/envtmpl"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"sigs.k8s.io/yaml"
)

// loadBody builds a JSON request body from an optional YAML or JSON file and a list of
// path=value edits. Values that parse as JSON are set as JSON, anything else as a
// string.
func loadBody(filename string, sets []string) ([]byte, error) {
	body := []byte("{}")
	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		data = replaceTabsWithSpaces(data)
		data, err = envtmpl.Expand(data, filepath.Dir(filename))
		if err != nil {
			return nil, err
		}
		body, err = yaml.YAMLToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %v", filename, err)
		}
		if string(body) == "null" {
			body = []byte("{}")
		}
	}

	for _, kv := range sets {
		path, value, ok := strings.Cut(kv, "=")
		if !ok || path == "" {
			return nil, fmt.Errorf("invalid --set %q, expected path=value", kv)
		}
		var err error
		if gjson.Valid(value) {
			body, err = sjson.SetRawBytes(body, path, []byte(value))
		} else {
			body, err = sjson.SetBytes(body, path, value)
		}
		if err != nil {
			return nil, fmt.Errorf("unable to set %s: %v", path, err)
		}
	}
	return body, nil
}

func replaceTabsWithSpaces(data []byte) []byte {
	return bytes.ReplaceAll(data, []byte("\t"), []byte("  "))
}
