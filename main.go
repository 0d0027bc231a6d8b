package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"baseline-cli/internal/baseline"
	"baseline-cli/internal/capture"
	"baseline-cli/internal/compare"
	"baseline-cli/internal/report"
	"baseline-cli/internal/storage"

	"github.com/joho/godotenv"
)

const (
	captureSummaryTitle = "Baseline Capture Summary"
	compareSummaryTitle = "Baseline Comparison Summary"
)

type headers []string

func (h *headers) String() string {
	return strings.Join(*h, ", ")
}

func (h *headers) Set(value string) error {
	*h = append(*h, value)
	return nil
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
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	sink := report.NewWriterSink(os.Stdout)

	switch os.Args[1] {
	case "capture":
		runCapture(os.Args[2:], sink)
	case "compare":
		runCompare(os.Args[2:], sink)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: baseline-cli <command> [flags]

Commands:
  capture   Capture baseline screenshots of a page or element
  compare   Compare the current state of a page against its baseline

Examples:
  baseline-cli capture -url http://localhost:3000 -name homepage -page
  baseline-cli capture -url http://localhost:3000 -name button -element -selector "button"
  baseline-cli compare -url http://localhost:3000 -name homepage -page
`)
}

type captureFlags struct {
	url            string
	name           string
	page           bool
	element        bool
	className      string
	cssSelector    string
	directory      string
	maskSelectors  string
	delay          time.Duration
	viewportWidth  int
	viewportHeight int
	userAgent      string
	cdpURL         string
	headers        headers
}

func bindCaptureFlags(fs *flag.FlagSet, f *captureFlags) {
	fs.StringVar(&f.url, "url", envOrDefaultValue("TARGET_URL", ""), "URL to navigate to")
	fs.StringVar(&f.name, "name", "", "Name for the baseline/template")
	fs.BoolVar(&f.page, "page", false, "Capture full page screenshot")
	fs.BoolVar(&f.element, "element", false, "Capture element screenshot")
	fs.StringVar(&f.className, "class", "", "Class name for the element (used with -element)")
	fs.StringVar(&f.cssSelector, "selector", "", "CSS selector for the element (used with -element)")
	fs.StringVar(&f.directory, "directory", envOrDefaultValue("SCREENSHOT_DIR", "screenshots"), "Screenshot directory root")
	fs.StringVar(&f.maskSelectors, "mask-selectors", envOrDefaultValue("MASK_SELECTORS", ""), "Comma-separated list of CSS selectors to mask during capture")
	fs.DurationVar(&f.delay, "delay", envOrDefaultValue("DELAY", 3*time.Second), "Delay before capturing")
	fs.IntVar(&f.viewportWidth, "viewport-width", envOrDefaultValue("VIEWPORT_WIDTH", 1920), "Viewport width in pixels")
	fs.IntVar(&f.viewportHeight, "viewport-height", envOrDefaultValue("VIEWPORT_HEIGHT", 1080), "Viewport height in pixels")
	fs.StringVar(&f.userAgent, "user-agent", envOrDefaultValue("USER_AGENT", ""), "User-Agent string to use for requests")
	fs.StringVar(&f.cdpURL, "chrome-devtools-protocol-url", envOrDefaultValue("CHROME_DEVTOOLS_PROTOCOL_URL", ""), "Connect to existing browser via Chrome DevTools Protocol URL (e.g., http://localhost:9222)")
	fs.Var(&f.headers, "H", "Add HTTP header (can be used multiple times)")
}

func (f *captureFlags) validate(sink report.Sink, title string, start time.Time) bool {
	ok := true
	if f.url == "" {
		sink.Error("The -url arg was not provided")
		ok = false
	}
	if f.name == "" {
		sink.Error("The -name arg was not provided")
		ok = false
	}
	if f.element && f.className == "" && f.cssSelector == "" {
		sink.Error("You must provide either -class or -selector for -element")
		ok = false
	}
	if !ok {
		sink.Summary(title, report.Summary{
			Result:   "Failed",
			Duration: time.Since(start),
		})
	}
	return ok
}

func (f *captureFlags) captureOptions() capture.Options {
	options := capture.Options{}
	if f.element {
		options.Selector = f.cssSelector
		options.ClassName = f.className
	}
	if f.maskSelectors != "" {
		options.MaskSelectors = strings.Split(f.maskSelectors, ",")
		for i := range options.MaskSelectors {
			options.MaskSelectors[i] = strings.TrimSpace(options.MaskSelectors[i])
		}
	}
	if len(f.headers) > 0 {
		options.Headers = make(map[string]string)
		for _, header := range f.headers {
			parts := strings.SplitN(header, ":", 2)
			if len(parts) == 2 {
				options.Headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
			}
		}
	}
	return options
}

func (f *captureFlags) capturerConfig() capture.PlaywrightConfig {
	config := capture.DefaultPlaywrightConfig()
	if f.delay > 0 {
		config.Delay = f.delay
	}
	if f.viewportWidth > 0 {
		config.ViewportWidth = f.viewportWidth
	}
	if f.viewportHeight > 0 {
		config.ViewportHeight = f.viewportHeight
	}
	if f.userAgent != "" {
		config.UserAgent = f.userAgent
	}
	if f.cdpURL != "" {
		config.ChromeDevtoolsProtocolURL = f.cdpURL
	}
	if display := os.Getenv("DISPLAY"); display != "" {
		config.Headless = false
	}
	return config
}

func runCapture(args []string, sink report.Sink) {
	fs := flag.NewFlagSet("capture", flag.ExitOnError)
	var f captureFlags
	bindCaptureFlags(fs, &f)
	_ = fs.Parse(args)

	start := time.Now()
	if !f.validate(sink, captureSummaryTitle, start) {
		os.Exit(1)
	}

	ctx := context.Background()

	layout := baseline.NewLayout(f.directory)
	if err := layout.EnsureDirs(); err != nil {
		fail(sink, captureSummaryTitle, start, err)
	}

	s, err := storage.NewFileStorage(ctx, storage.FileConfig{
		Directory: layout.Root,
	})
	if err != nil {
		fail(sink, captureSummaryTitle, start, err)
	}

	capturer, err := capture.NewPlaywrightCapturer(ctx, f.capturerConfig())
	if err != nil {
		fail(sink, captureSummaryTitle, start, err)
	}

	sink.Step(fmt.Sprintf("Visiting %s", f.url))
	screenshot, err := capturer.Capture(ctx, f.url, f.captureOptions())
	if err != nil {
		fail(sink, captureSummaryTitle, start, err)
	}
	sink.Step("Screenshot captured")

	key := baseline.BaselineKey(f.name)
	if f.element {
		key = baseline.TemplateKey(f.name)
	}

	path, err := s.Put(ctx, key, screenshot)
	if err != nil {
		fail(sink, captureSummaryTitle, start, err)
	}
	sink.Step(fmt.Sprintf("Saved %s", path))

	sink.Summary(captureSummaryTitle, report.Summary{
		Result:   "Success",
		Duration: time.Since(start),
	})
}

func runCompare(args []string, sink report.Sink) {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	var f captureFlags
	bindCaptureFlags(fs, &f)
	var threshold float64
	var strict bool
	fs.Float64Var(&threshold, "threshold", envOrDefaultValue("SIMILARITY_THRESHOLD", 0.95), "Similarity threshold for a passing comparison")
	fs.BoolVar(&strict, "strict-dimensions", envOrDefaultValue("STRICT_DIMENSIONS", false), "Fail instead of resizing when dimensions differ")
	_ = fs.Parse(args)

	start := time.Now()
	if !f.validate(sink, compareSummaryTitle, start) {
		os.Exit(1)
	}

	ctx := context.Background()

	layout := baseline.NewLayout(f.directory)
	if err := layout.EnsureDirs(); err != nil {
		fail(sink, compareSummaryTitle, start, err)
	}

	baselinePath := layout.BaselinePath(f.name)
	if f.element {
		baselinePath = layout.TemplatePath(f.name)
	}

	s, err := storage.NewFileStorage(ctx, storage.FileConfig{
		Directory: layout.Root,
	})
	if err != nil {
		fail(sink, compareSummaryTitle, start, err)
	}

	exists, err := s.Exists(ctx, baselinePath)
	if err != nil {
		fail(sink, compareSummaryTitle, start, err)
	}
	if !exists {
		sink.Error("Image not found")
		sink.Summary(compareSummaryTitle, report.Summary{
			Result:   "Failed",
			Duration: time.Since(start),
		})
		os.Exit(1)
	}

	capturer, err := capture.NewPlaywrightCapturer(ctx, f.capturerConfig())
	if err != nil {
		fail(sink, compareSummaryTitle, start, err)
	}

	sink.Step(fmt.Sprintf("Visiting %s", f.url))
	screenshot, err := capturer.Capture(ctx, f.url, f.captureOptions())
	if err != nil {
		fail(sink, compareSummaryTitle, start, err)
	}
	sink.Step("Screenshot captured")

	currentPath, err := s.Put(ctx, baseline.CurrentKey(), screenshot)
	if err != nil {
		fail(sink, compareSummaryTitle, start, err)
	}

	config := compare.DefaultConfig()
	if strict {
		config.Policy = compare.Strict
	}
	comparator := compare.NewSSIMComparator(config)

	result, err := comparator.CompareFiles(currentPath, baselinePath, layout.DiffPath())
	if err != nil {
		fail(sink, compareSummaryTitle, start, err)
	}
	sink.Step("Screenshots compared")

	outcome := "Failed"
	if result.Score >= threshold {
		outcome = "Success"
	}

	score := result.Score
	sink.Summary(compareSummaryTitle, report.Summary{
		Result:   outcome,
		Duration: time.Since(start),
		Score:    &score,
	})

	if outcome != "Success" {
		os.Exit(1)
	}
}

func fail(sink report.Sink, title string, start time.Time, err error) {
	sink.Error(err.Error())
	sink.Summary(title, report.Summary{
		Result:   "Error",
		Duration: time.Since(start),
	})
	os.Exit(1)
}
