package report

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestWriterSink_Summary(t *testing.T) {
	t.Run("WithScore", func(t *testing.T) {
		var buffer bytes.Buffer
		sink := NewWriterSink(&buffer)

		score := 0.987
		sink.Summary("Comparison Summary", Summary{
			Result:   "Success",
			Duration: 1500 * time.Millisecond,
			Score:    &score,
		})

		output := buffer.String()
		if !strings.Contains(output, "Comparison Summary") {
			t.Errorf("Expected title in output:\n%s", output)
		}
		if !strings.Contains(output, "Result    Success") {
			t.Errorf("Expected result in output:\n%s", output)
		}
		if !strings.Contains(output, "Duration  1.50 seconds") {
			t.Errorf("Expected duration in output:\n%s", output)
		}
		if !strings.Contains(output, "Similarity Score  98.70%") {
			t.Errorf("Expected score in output:\n%s", output)
		}
	})

	t.Run("WithoutScore", func(t *testing.T) {
		var buffer bytes.Buffer
		sink := NewWriterSink(&buffer)

		sink.Summary("Baseline Capture Summary", Summary{
			Result:   "Failed",
			Duration: 2 * time.Second,
		})

		output := buffer.String()
		if strings.Contains(output, "Similarity Score") {
			t.Errorf("Expected no score line in output:\n%s", output)
		}
	})
}

func TestWriterSink_Step(t *testing.T) {
	var buffer bytes.Buffer
	sink := NewWriterSink(&buffer)

	sink.Step("Capturing screenshot...")

	if buffer.String() != "Capturing screenshot...\n" {
		t.Errorf("Unexpected output: %q", buffer.String())
	}
}
