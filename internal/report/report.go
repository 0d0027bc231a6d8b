// Package report is the presentation layer for CLI runs. The comparator and
// capture cores never print; they return values, and callers feed them into a
// Sink so output stays testable and replaceable.
package report

import (
	"fmt"
	"io"
	"time"
)

// Summary is the end-of-run block shown to the user.
type Summary struct {
	Result   string
	Duration time.Duration
	// Score is the similarity score in [0, 1]; nil when the run never got
	// far enough to produce one.
	Score *float64
}

type Sink interface {
	// Step reports progress of one pipeline stage.
	Step(message string)
	Summary(title string, summary Summary)
	Error(message string)
}

type writerSink struct {
	w io.Writer
}

// NewWriterSink returns a Sink that renders plain text to w.
func NewWriterSink(w io.Writer) Sink {
	return &writerSink{w: w}
}

func (s *writerSink) Step(message string) {
	fmt.Fprintln(s.w, message)
}

func (s *writerSink) Error(message string) {
	fmt.Fprintf(s.w, "\n%s\n", message)
}

func (s *writerSink) Summary(title string, summary Summary) {
	fmt.Fprintf(s.w, "\n%s\n", title)
	fmt.Fprintf(s.w, "  Result    %s\n", summary.Result)
	fmt.Fprintf(s.w, "  Duration  %.2f seconds\n", summary.Duration.Seconds())
	if summary.Score != nil {
		fmt.Fprintf(s.w, "  Similarity Score  %.2f%%\n", *summary.Score*100)
	}
}
