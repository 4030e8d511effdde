package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// TerminalConfig selects between animated bars and plain status lines.
type TerminalConfig struct {
	Enabled bool
	Writer  io.Writer
	Label   string
}

// TerminalSink renders events on a terminal: a percentage bar while
// uploading, a spinner while transcribing.
type TerminalSink struct {
	writer io.Writer
	label  string

	mu          sync.Mutex
	container   *mpb.Progress
	uploadBar   *mpb.Bar
	spinner     *mpb.Bar
	lastPrinted int
}

// NewTerminalSink creates a terminal sink; with Enabled false it prints one
// line per phase and every 25% of upload.
func NewTerminalSink(config TerminalConfig) *TerminalSink {
	writer := config.Writer
	if writer == nil {
		writer = os.Stderr
	}
	sink := &TerminalSink{writer: writer, label: config.Label, lastPrinted: -1}
	if config.Enabled {
		sink.container = mpb.New(
			mpb.WithOutput(writer),
			mpb.WithRefreshRate(120*time.Millisecond),
			mpb.WithWaitGroup(&sync.WaitGroup{}),
		)
	}
	return sink
}

func (t *TerminalSink) Emit(ev Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.container == nil {
		t.printLine(ev)
		return
	}

	switch ev.Phase {
	case PhaseUploading:
		if t.uploadBar == nil {
			t.uploadBar = t.container.AddBar(100,
				mpb.PrependDecorators(
					decor.Name("reading "+t.label+" ", decor.WC{C: decor.DindentRight}),
				),
				mpb.AppendDecorators(decor.Percentage(decor.WCSyncSpace)),
			)
		}
		t.uploadBar.SetCurrent(int64(ev.Percent))
	case PhaseTranscribing:
		t.completeUpload()
		t.spinner = t.container.New(0, mpb.SpinnerStyle(),
			mpb.PrependDecorators(decor.Name("transcribing ", decor.WC{C: decor.DindentRight})),
			mpb.AppendDecorators(
				decor.OnComplete(decor.Elapsed(decor.ET_STYLE_GO, decor.WCSyncSpace), " ✓"),
			),
		)
	default:
		t.completeUpload()
		if t.spinner != nil {
			if ev.Phase == PhaseDone {
				t.spinner.SetTotal(-1, true)
			} else {
				t.spinner.Abort(false)
			}
		}
		t.container.Wait()
		if ev.Phase == PhaseError {
			fmt.Fprintf(t.writer, "error: %s\n", ev.Error.Message)
		}
	}
}

func (t *TerminalSink) completeUpload() {
	if t.uploadBar != nil && !t.uploadBar.Completed() {
		t.uploadBar.SetCurrent(100)
	}
}

func (t *TerminalSink) printLine(ev Event) {
	switch ev.Phase {
	case PhaseUploading:
		if ev.Percent/25 == t.lastPrinted/25 && t.lastPrinted >= 0 {
			return
		}
		t.lastPrinted = ev.Percent
		fmt.Fprintf(t.writer, "reading %s: %d%%\n", t.label, ev.Percent)
	case PhaseTranscribing:
		fmt.Fprintln(t.writer, "transcribing...")
	case PhaseDone:
		fmt.Fprintf(t.writer, "done in %s (language: %s)\n",
			ev.Result.ProcessingTime.Round(time.Millisecond), ev.Result.Language)
	case PhaseError:
		fmt.Fprintf(t.writer, "error: %s\n", ev.Error.Message)
	}
}

// IsTTY reports whether writer is a character device.
func IsTTY(writer io.Writer) bool {
	if writer == nil {
		return false
	}

	if file, ok := writer.(*os.File); ok {
		stat, err := file.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// ShouldShowProgress decides whether animated progress makes sense on writer.
func ShouldShowProgress(writer io.Writer, forced bool) bool {
	if forced {
		return true
	}
	return IsTTY(writer)
}
