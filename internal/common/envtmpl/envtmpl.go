// Package envtmpl expands {{ .ENV.NAME }} placeholders in configuration and request body
// files. Values come from the process environment, falling back to a .env file.
package envtmpl

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/joho/godotenv"
)

// TemplateContext is the data passed to the template.
type TemplateContext struct {
	ENV map[string]string
}

var missingKeyRegex = regexp.MustCompile(`map has no entry for key "(.*?)"`)

// Expand replaces placeholders in input. The .env file is looked up in dir, or in the
// working directory when dir is empty; a missing .env file is not an error. Variables
// set in the environment take precedence over the .env file.
func Expand(input []byte, dir string) ([]byte, error) {
	if !bytes.Contains(input, []byte("{{")) {
		return input, nil
	}
	env, err := environment(dir)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New("envtmpl").Option("missingkey=error").Parse(string(input))
	if err != nil {
		return nil, fmt.Errorf("template error: %w", err)
	}

	var output bytes.Buffer
	if err := tmpl.Execute(&output, TemplateContext{ENV: env}); err != nil {
		matches := missingKeyRegex.FindStringSubmatch(err.Error())
		if len(matches) == 2 {
			return nil, fmt.Errorf("missing environment variable: %s (set it in your shell or .env file)", matches[1])
		}
		return nil, fmt.Errorf("template error: %w", err)
	}
	return output.Bytes(), nil
}

func environment(dir string) (map[string]string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = cwd
	}
	env, err := godotenv.Read(filepath.Join(dir, ".env"))
	if err != nil {
		env = map[string]string{}
	}
	for _, e := range os.Environ() {
		k, v, ok := strings.Cut(e, "=")
		if ok {
			env[k] = v
		}
	}
	return env, nil
}
