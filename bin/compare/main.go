package main

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"baseline-cli/internal/compare"
	"baseline-cli/internal/imageio"
	"baseline-cli/internal/storage"
)

type CompareOutput struct {
	DiffPath string           `json:"diffPath"`
	Score    float64          `json:"score"`
	Regions  []compare.Region `json:"regions"`
}

type TemplateOutput struct {
	Found  bool            `json:"found"`
	Region *compare.Region `json:"region,omitempty"`
	Score  float64         `json:"score,omitempty"`
}

func envOrDefaultValue[T any](key string, defaultValue T) T {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	switch any(defaultValue).(type) {
	case string:
		return any(value).(T)
	case int:
		if intValue, err := strconv.Atoi(value); err == nil {
			return any(intValue).(T)
		}
	case int64:
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return any(intValue).(T)
		}
	case uint:
		if uintValue, err := strconv.ParseUint(value, 10, 0); err == nil {
			return any(uint(uintValue)).(T)
		}
	case uint64:
		if uintValue, err := strconv.ParseUint(value, 10, 64); err == nil {
			return any(uintValue).(T)
		}
	case float64:
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return any(floatValue).(T)
		}
	case bool:
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return any(boolValue).(T)
		}
	case time.Duration:
		if durationValue, err := time.ParseDuration(value); err == nil {
			return any(durationValue).(T)
		}
	}

	return defaultValue
}

func main() {
	var directory string
	var mode string
	var strict bool
	var templateThreshold float64
	flag.StringVar(&directory, "directory", envOrDefaultValue("DIRECTORY", "/tmp"), "Output directory")
	flag.StringVar(&mode, "mode", envOrDefaultValue("MODE", "compare"), "Operation mode (compare or template)")
	flag.BoolVar(&strict, "strict-dimensions", envOrDefaultValue("STRICT_DIMENSIONS", false), "Fail instead of resizing when dimensions differ")
	flag.Float64Var(&templateThreshold, "template-threshold", envOrDefaultValue("TEMPLATE_MATCH_THRESHOLD", compare.DefaultTemplateThreshold), "Correlation threshold for template matching")

	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		log.Fatalf("current, baseline not specified")
	}

	ctx := context.Background()
	s, err := storage.NewFileStorage(ctx, storage.FileConfig{
		Directory: directory,
	})
	if err != nil {
		log.Fatalf("Failed to create storage backend: %v", err)
	}

	currentPath := args[0]
	baselinePath := args[1]

	switch mode {
	case "compare":
		config := compare.DefaultConfig()
		if strict {
			config.Policy = compare.Strict
		}

		result, err := compare.NewSSIMComparator(config).CompareFiles(currentPath, baselinePath, "")
		if err != nil {
			log.Fatalf("Failed to compare images: %v", err)
		}

		data, err := imageio.EncodePNG(result.Image)
		if err != nil {
			log.Fatalf("Failed to encode diff image: %v", err)
		}

		timestamp := time.Now().Format("20060102150405")

		h := sha256.New()
		h.Write([]byte(currentPath + baselinePath))
		hash := fmt.Sprintf("%x", h.Sum(nil))[:16]

		key := fmt.Sprintf("Baseline/diff/%s/%s.png", hash, timestamp)
		diffPath, err := s.Put(ctx, key, data)
		if err != nil {
			log.Fatalf("Failed to save diff image: %v", err)
		}

		if err := json.NewEncoder(os.Stdout).Encode(CompareOutput{
			DiffPath: diffPath,
			Score:    result.Score,
			Regions:  result.Regions,
		}); err != nil {
			log.Fatalf("Failed to encode result: %v", err)
		}
	case "template":
		// args are (screenshot, template) in this mode
		match, err := compare.FindTemplateFiles(currentPath, baselinePath, templateThreshold)
		if err != nil {
			log.Fatalf("Failed to match template: %v", err)
		}

		output := TemplateOutput{}
		if match != nil {
			output.Found = true
			output.Region = &match.Region
			output.Score = match.Score
		}

		if err := json.NewEncoder(os.Stdout).Encode(output); err != nil {
			log.Fatalf("Failed to encode result: %v", err)
		}
	default:
		log.Fatalf("Unknown mode: %s", mode)
	}
}
