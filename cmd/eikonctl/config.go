package main

import (
	"encoding/json"
	"fmt"
	"os"

	eikonapi "eikon/pkg/eikon"
)

// loadRunRequestFromConfig reads a permissive JSON map so configs written by
// hand or by other tools survive missing or extra keys.
func loadRunRequestFromConfig(path string) (eikonapi.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return eikonapi.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return eikonapi.RunRequest{}, err
	}

	var req eikonapi.RunRequest
	if v, ok := asString(raw["target_path"]); ok {
		req.TargetPath = v
	}
	if v, ok := asInt(raw["population"]); ok {
		req.Population = v
	}
	if v, ok := asInt(raw["generations"]); ok {
		req.Generations = v
	}
	if v, ok := asInt(raw["keep_n"]); ok {
		req.KeepN = v
	}
	if v, ok := asInt(raw["max_age"]); ok {
		req.MaxAge = v
	}
	if v, ok := asInt(raw["max_dim"]); ok {
		req.MaxDim = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	return req, nil
}

func loadOrDefaultRunRequest(configPath string) (eikonapi.RunRequest, error) {
	if configPath == "" {
		return eikonapi.RunRequest{}, nil
	}
	req, err := loadRunRequestFromConfig(configPath)
	if err != nil {
		return eikonapi.RunRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}
