package progress

import (
	"bytes"
	stderrors "errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	apperrors "whisper-transcriber/internal/app/errors"
	"whisper-transcriber/internal/app/model"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Emit(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) phases() []Phase {
	var out []Phase
	for _, ev := range r.events {
		out = append(out, ev.Phase)
	}
	return out
}

func assertWellFormed(t *testing.T, events []Event) {
	t.Helper()
	require.NotEmpty(t, events)

	terminals := 0
	last := -1
	sawTranscribing := false
	for i, ev := range events {
		assert.Equal(t, int64(i+1), ev.Seq)
		switch ev.Phase {
		case PhaseUploading:
			assert.False(t, sawTranscribing, "uploading after transcribing")
			assert.GreaterOrEqual(t, ev.Percent, last)
			assert.True(t, ev.Percent >= 0 && ev.Percent <= 100)
			last = ev.Percent
		case PhaseTranscribing:
			assert.False(t, sawTranscribing, "second transcribing event")
			sawTranscribing = true
		default:
			terminals++
		}
	}
	assert.Equal(t, 1, terminals)
	assert.True(t, events[len(events)-1].Terminal())
}

func TestReporterOrdering(t *testing.T) {
	rec := &recorder{}
	r := NewReporter(rec)

	r.Uploading(10)
	r.Uploading(5) // lower values are dropped
	r.Uploading(10)
	r.Uploading(150)
	r.Transcribing()
	r.Uploading(100) // after transcribing: ignored
	r.Transcribing()
	r.Done(model.TranscriptionResult{Text: "hi", Language: "en"})
	r.Fail(stderrors.New("late"))
	r.Close()

	assert.Equal(t, []Phase{PhaseUploading, PhaseUploading, PhaseTranscribing, PhaseDone}, rec.phases())
	assert.Equal(t, []int{10, 100}, []int{rec.events[0].Percent, rec.events[1].Percent})
	assert.Equal(t, "hi", rec.events[3].Result.Text)
	assertWellFormed(t, rec.events)
}

func TestReporterNegativePercentClamped(t *testing.T) {
	rec := &recorder{}
	r := NewReporter(rec)

	r.Uploading(-20)
	r.Close()

	assert.Equal(t, 0, rec.events[0].Percent)
	assertWellFormed(t, rec.events)
}

func TestReporterDoneImpliesTranscribing(t *testing.T) {
	rec := &recorder{}
	r := NewReporter(rec)

	r.Done(model.TranscriptionResult{Text: "x"})

	assert.Equal(t, []Phase{PhaseTranscribing, PhaseDone}, rec.phases())
}

func TestReporterFailDuringUpload(t *testing.T) {
	rec := &recorder{}
	r := NewReporter(rec)

	r.Uploading(40)
	r.Fail(apperrors.FileTooLarge(-1, 10))
	r.Transcribing()

	require.Equal(t, []Phase{PhaseUploading, PhaseError}, rec.phases())
	assert.Equal(t, apperrors.KindFileTooLarge, rec.events[1].Error.Kind)
	assert.True(t, r.Finished())
}

func TestReporterCloseGuaranteesTerminal(t *testing.T) {
	rec := &recorder{}
	r := NewReporter(rec)

	r.Uploading(30)
	r.Close()
	r.Close()

	require.Len(t, rec.events, 2)
	assert.Equal(t, apperrors.KindInternal, rec.events[1].Error.Kind)
	assert.Equal(t, "internal error", rec.events[1].Error.Message)
}

func TestReporterHidesInternalDetail(t *testing.T) {
	rec := &recorder{}
	r := NewReporter(rec)

	r.Fail(stderrors.New("open /var/secret: permission denied"))

	assert.Equal(t, "internal error", rec.events[0].Error.Message)
	err := rec.events[0].Err()
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
}

func TestReporterConcurrentCalls(t *testing.T) {
	rec := &recorder{}
	r := NewReporter(rec)

	var wg sync.WaitGroup
	for i := 0; i <= 100; i++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			r.Uploading(p)
		}(i)
	}
	wg.Wait()
	r.Transcribing()
	r.Done(model.TranscriptionResult{})

	assertWellFormed(t, rec.events)
}

func TestChanSink(t *testing.T) {
	sink := NewChanSink(1)
	r := NewReporter(sink)

	go func() {
		r.Uploading(10)
		r.Uploading(20) // buffer full, dropped
		r.Transcribing()
		r.Fail(apperrors.ErrDecodeFailed)
	}()

	time.Sleep(10 * time.Millisecond)
	var got []Event
	for ev := range sink.Events() {
		got = append(got, ev)
	}

	require.NotEmpty(t, got)
	assert.Equal(t, PhaseError, got[len(got)-1].Phase)
	assert.Equal(t, PhaseTranscribing, got[len(got)-2].Phase)
}

func TestMultiAndLogSink(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	rec := &recorder{}
	r := NewReporter(Multi(rec, NewLogSink(zap.New(core))))

	r.Uploading(50)
	r.Transcribing()
	r.Fail(apperrors.ErrTranscriptionFailed)

	assert.Len(t, rec.events, 3)
	assert.Equal(t, 3, logs.Len())
	assert.Equal(t, 1, logs.FilterField(zap.String("kind", "transcription_failed")).Len())
}

func TestCountingReader(t *testing.T) {
	rec := &recorder{}
	r := NewReporter(rec)
	data := strings.Repeat("a", 1000)

	cr := NewCountingReader(strings.NewReader(data), int64(len(data)), r)
	buf := make([]byte, 300)
	for {
		if _, err := cr.Read(buf); err != nil {
			break
		}
	}

	assert.Equal(t, int64(1000), cr.BytesRead())
	assert.Equal(t, []int{30, 60, 90, 100}, percents(rec.events))
}

func percents(events []Event) []int {
	var out []int
	for _, ev := range events {
		out = append(out, ev.Percent)
	}
	return out
}

func TestTerminalSinkPlain(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(NewTerminalSink(TerminalConfig{Writer: &buf, Label: "talk.mp3"}))

	for p := 0; p <= 100; p += 10 {
		r.Uploading(p)
	}
	r.Transcribing()
	r.Done(model.TranscriptionResult{Language: "en", ProcessingTime: 1500 * time.Millisecond})

	out := buf.String()
	assert.Equal(t, 5, strings.Count(out, "reading talk.mp3"))
	assert.Contains(t, out, "transcribing...")
	assert.Contains(t, out, "done in 1.5s (language: en)")
}

func TestTerminalSinkAnimated(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(NewTerminalSink(TerminalConfig{Enabled: true, Writer: &buf, Label: "talk.mp3"}))

	r.Uploading(50)
	r.Uploading(100)
	r.Transcribing()
	r.Fail(apperrors.Wrap(stderrors.New("exit 1"), apperrors.KindDecodeFailed, "ffmpeg could not decode talk.mp3"))

	assert.Contains(t, buf.String(), "error: ffmpeg could not decode talk.mp3\n")
	assert.NotContains(t, buf.String(), "exit 1")
}

func TestIsTTY(t *testing.T) {
	assert.False(t, IsTTY(nil))
	assert.False(t, IsTTY(&bytes.Buffer{}))
	assert.True(t, ShouldShowProgress(&bytes.Buffer{}, true))
	assert.False(t, ShouldShowProgress(&bytes.Buffer{}, false))
}
