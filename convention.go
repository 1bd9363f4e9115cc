package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ConfigFileName is the config file looked up in the root (without extension).
const ConfigFileName = "hilt"

var errNoGoMod = errors.New("go.mod not found")

// findRoot walks up from dir to the directory containing go.mod. Outside a
// module, dir itself is the root.
func findRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}

	for cur := dir; ; {
		if _, err := os.Stat(filepath.Join(cur, "go.mod")); err == nil {
			return cur, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return dir, nil
		}
		cur = parent
	}
}

func parseModulePath(root string) (string, error) {
	f, err := os.Open(filepath.Join(root, "go.mod"))
	if errors.Is(err, os.ErrNotExist) {
		return "", errNoGoMod
	}
	if err != nil {
		return "", fmt.Errorf("open go.mod: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "module ") {
			return strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, "module ")), `"`), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read go.mod: %w", err)
	}
	return "", fmt.Errorf("module directive not found in go.mod")
}

// parseGenerateFile reads //hilt:option directives from generate.go:
//
//	//hilt:option share-test-components=true
//	//hilt:option dagger.hilt.disableCrossCompilationRootValidation=true
//	//hilt:option packages=./internal/hilt/...,./testing/...
//
// A missing generate.go yields no options.
func parseGenerateFile(root string) (map[string]string, error) {
	data, err := os.ReadFile(filepath.Join(root, "generate.go"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read generate.go: %w", err)
	}

	options := make(map[string]string)
	for n, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "//hilt:option") {
			continue
		}
		for _, field := range strings.Fields(strings.TrimPrefix(line, "//hilt:option")) {
			key, value, ok := strings.Cut(field, "=")
			if !ok || key == "" {
				return nil, fmt.Errorf("generate.go:%d: malformed option %q, want key=value", n+1, field)
			}
			if alias, ok := processorOptions[key]; ok {
				key = alias
			}
			if !slices.Contains(optionKeys, key) {
				return nil, fmt.Errorf("generate.go:%d: unknown option %q", n+1, key)
			}
			options[key] = value
		}
	}
	return options, nil
}
