package cli

import (
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
	"sigs.k8s.io/yaml"
)

// selectPath narrows payload to the value at the gjson path. An empty path returns
// payload as is.
func selectPath(payload []byte, path string) ([]byte, error) {
	if path == "" {
		return payload, nil
	}
	if !gjson.ValidBytes(payload) {
		return nil, fmt.Errorf("response is not JSON, cannot select %s", path)
	}
	r := gjson.GetBytes(payload, path)
	if !r.Exists() {
		return nil, fmt.Errorf("no value at %s", path)
	}
	return []byte(r.Raw), nil
}

// printPayload writes a response body. JSON mode wraps it as {"result": 1, "value": ...};
// otherwise JSON bodies are shown as YAML and anything else verbatim.
func printPayload(w io.Writer, payload []byte) error {
	trimmed := strings.TrimSpace(string(payload))
	isJSON := trimmed != "" && gjson.Valid(trimmed)

	if jsonOutput {
		output := map[string]any{"result": 1}
		switch {
		case isJSON:
			output["value"] = jsoniter.RawMessage(trimmed)
		case trimmed != "":
			output["value"] = trimmed
		}
		printJSON(w, output)
		return nil
	}

	if trimmed == "" {
		return nil
	}
	if !isJSON {
		fmt.Fprintln(w, trimmed)
		return nil
	}
	yamlBytes, err := yaml.JSONToYAML([]byte(trimmed))
	if err != nil {
		return fmt.Errorf("failed to convert to YAML: %v", err)
	}
	fmt.Fprint(w, string(yamlBytes))
	return nil
}
