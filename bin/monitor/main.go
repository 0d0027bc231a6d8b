package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"baseline-cli/internal/baseline"
	"baseline-cli/internal/capture"
	"baseline-cli/internal/compare"
	"baseline-cli/internal/imageio"
	"baseline-cli/internal/retry"
	"baseline-cli/internal/storage"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// MonitorResult is what gets logged each run and posted to the callback URL
// when a regression is detected.
type MonitorResult struct {
	Name       string           `json:"name"`
	URL        string           `json:"url"`
	CurrentURL string           `json:"currentURL"`
	DiffURL    string           `json:"diffURL"`
	Score      float64          `json:"score"`
	Threshold  float64          `json:"threshold"`
	Regions    []compare.Region `json:"regions"`
	Timestamp  string           `json:"timestamp"`
}

type Monitor struct {
	Name        string
	URL         string
	Capturer    capture.Capturer
	Comparator  *compare.SSIMComparator
	Storage     storage.Storage
	Threshold   float64
	CallbackURL string
	RetryOn     *retry.On
	Logger      *slog.Logger
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
	var name string
	var schedule string
	var threshold float64
	var storageBackend string
	var directory string
	var callbackURL string
	var retryOn string
	var chromeDevtoolsProtocolURL string
	flag.StringVar(&name, "name", envOrDefaultValue("NAME", ""), "Name for the monitored baseline")
	flag.StringVar(&schedule, "schedule", envOrDefaultValue("SCHEDULE", "@every 5m"), "Cron schedule for comparisons")
	flag.Float64Var(&threshold, "threshold", envOrDefaultValue("SIMILARITY_THRESHOLD", 0.95), "Similarity threshold below which the callback fires")
	flag.StringVar(&storageBackend, "storage-backend", envOrDefaultValue("STORAGE_BACKEND", "file"), "Storage backend (file or s3)")
	flag.StringVar(&directory, "directory", envOrDefaultValue("DIRECTORY", "/tmp"), "Output directory for the file backend")
	flag.StringVar(&callbackURL, "callback-url", envOrDefaultValue("CALLBACK_URL", ""), "Callback URL to send regression results to")
	flag.StringVar(&retryOn, "retry-on", envOrDefaultValue("RETRY_ON", ""), "Comma-separated retry conditions for the callback (e.g. 5xx,connect-failure,429)")
	flag.StringVar(&chromeDevtoolsProtocolURL, "chrome-devtools-protocol-url", envOrDefaultValue("CHROME_DEVTOOLS_PROTOCOL_URL", ""), "Connect to existing browser via Chrome DevTools Protocol URL (e.g., http://localhost:9222)")

	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		log.Fatalf("url not specified")
	}
	url := args[0]

	if name == "" {
		log.Fatalf("name not specified")
	}

	ctx := context.Background()

	config := capture.DefaultPlaywrightConfig()
	if chromeDevtoolsProtocolURL != "" {
		config.ChromeDevtoolsProtocolURL = chromeDevtoolsProtocolURL
	}

	capturer, err := capture.NewPlaywrightCapturer(ctx, config)
	if err != nil {
		log.Fatalf("failed to initialize capturer: %v", err)
	}

	var s storage.Storage
	switch storageBackend {
	case "file":
		s, err = storage.NewFileStorage(ctx, storage.FileConfig{
			Directory: directory,
		})
		if err != nil {
			log.Fatalf("failed to create file storage backend: %v", err)
		}
	case "s3":
		s, err = storage.NewS3Storage(ctx, storage.S3Config{
			Bucket: os.Getenv("S3_BUCKET"),
		})
		if err != nil {
			log.Fatalf("failed to create S3 storage backend: %v", err)
		}
	default:
		log.Fatalf("unknown storage backend: %s", storageBackend)
	}

	var on *retry.On
	if retryOn != "" {
		on, err = retry.NewRetryOnFromString(retryOn)
		if err != nil {
			log.Fatalf("failed to parse retry-on: %v", err)
		}
	} else {
		on = retry.NewDefaultRetryOn()
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	monitor := &Monitor{
		Name:        name,
		URL:         url,
		Capturer:    capturer,
		Comparator:  compare.NewSSIMComparator(compare.DefaultConfig()),
		Storage:     s,
		Threshold:   threshold,
		CallbackURL: callbackURL,
		RetryOn:     on,
		Logger:      logger,
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if err := monitor.Run(ctx); err != nil {
			logger.Error("run failed", "error", err)
		}
	}); err != nil {
		log.Fatalf("failed to register schedule %q: %v", schedule, err)
	}

	logger.Info("monitor started", "url", url, "name", name, "schedule", schedule)
	c.Run()
}

// Run captures the page, compares it against the stored baseline, uploads the
// capture and the annotated diff, and fires the callback when similarity
// drops below the threshold. The first run seeds the baseline instead.
func (m *Monitor) Run(ctx context.Context) error {
	screenshot, err := m.Capturer.Capture(ctx, m.URL, capture.Options{})
	if err != nil {
		return xerrors.Errorf("failed to capture screenshot: %w", err)
	}

	baselineURL := m.Storage.URL(baseline.BaselineKey(m.Name))

	exists, err := m.Storage.Exists(ctx, baselineURL)
	if err != nil {
		return xerrors.Errorf("failed to check baseline: %w", err)
	}
	if !exists {
		seededURL, err := m.Storage.Put(ctx, baseline.BaselineKey(m.Name), screenshot)
		if err != nil {
			return xerrors.Errorf("failed to seed baseline: %w", err)
		}
		m.Logger.Info("baseline seeded", "name", m.Name, "url", seededURL)
		return nil
	}

	baselineData, err := m.Storage.Get(ctx, baselineURL)
	if err != nil {
		return xerrors.Errorf("failed to load baseline: %w", err)
	}

	baselineImage, err := imageio.Decode(baselineData)
	if err != nil {
		return xerrors.Errorf("failed to decode baseline: %w", err)
	}

	currentImage, err := imageio.Decode(screenshot)
	if err != nil {
		return xerrors.Errorf("failed to decode screenshot: %w", err)
	}

	result, err := m.Comparator.Calculate(currentImage, baselineImage)
	if err != nil {
		return xerrors.Errorf("failed to compare: %w", err)
	}

	diffData, err := imageio.EncodePNG(result.Image)
	if err != nil {
		return xerrors.Errorf("failed to encode diff image: %w", err)
	}

	timestamp := time.Now().Format("20060102150405")

	output := &MonitorResult{
		Name:      m.Name,
		URL:       m.URL,
		Score:     result.Score,
		Threshold: m.Threshold,
		Regions:   result.Regions,
		Timestamp: timestamp,
	}

	{
		eg, ctx := errgroup.WithContext(ctx)

		eg.Go(func() error {
			url, err := m.Storage.Put(ctx, "results/"+m.Name+"_"+timestamp+".png", screenshot)
			if err != nil {
				return xerrors.Errorf("failed to upload capture: %w", err)
			}
			output.CurrentURL = url
			return nil
		})

		eg.Go(func() error {
			url, err := m.Storage.Put(ctx, "diff/"+m.Name+"_"+timestamp+".png", diffData)
			if err != nil {
				return xerrors.Errorf("failed to upload diff image: %w", err)
			}
			output.DiffURL = url
			return nil
		})

		if err := eg.Wait(); err != nil {
			return err
		}
	}

	m.Logger.Info("comparison finished",
		"name", m.Name,
		"score", result.Score,
		"regions", len(result.Regions),
		"diff", output.DiffURL,
	)

	if result.Score < m.Threshold && m.CallbackURL != "" {
		data, err := json.Marshal(output)
		if err != nil {
			return xerrors.Errorf("failed to marshal result: %w", err)
		}
		if err := m.callback(ctx, data); err != nil {
			return xerrors.Errorf("failed to send callback: %w", err)
		}
	}

	return nil
}

func (m *Monitor) callback(ctx context.Context, data []byte) error {
	request, err := http.NewRequestWithContext(ctx, "POST", m.CallbackURL, bytes.NewReader(data))
	if err != nil {
		return xerrors.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	client := &http.Client{
		Timeout: 1 * time.Second, // retry.Transport does not have perTryTimeout
		Transport: &retry.Transport{
			Base:          http.DefaultTransport,
			RetryStrategy: retry.NewExponentialBackOff(10*time.Millisecond, 1*time.Second, 3, nil),
			RetryOn:       m.RetryOn,
		},
	}

	response, err := client.Do(request)
	if err != nil {
		return xerrors.Errorf("failed to send request: %w", err)
	}
	defer response.Body.Close()

	return nil
}
