package output

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"text/tabwriter"

	"github.com/codebuildervaibhav/asr-console/internal/queue"
	"github.com/codebuildervaibhav/asr-console/internal/storage"
	"github.com/codebuildervaibhav/asr-console/internal/types"
	"github.com/codebuildervaibhav/asr-console/internal/views"
)

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}

func (f *Formatter) AudioList(files []types.AudioFile) {
	if len(files) == 0 {
		f.Info("No audio files")
		return
	}
	tw := tabwriter.NewWriter(f.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILENAME\tUPLOADED\tDURATION")
	for _, a := range files {
		duration := "-"
		if a.Duration != nil {
			duration = fmt.Sprintf("%.1fs", *a.Duration)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", a.ID, a.Filename, a.UploadTime, duration)
	}
	tw.Flush()
}

func (f *Formatter) TaskList(tasks []views.TaskView) {
	if len(tasks) == 0 {
		f.Info("No tasks")
		return
	}
	tw := tabwriter.NewWriter(f.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tAUDIO\tMODEL\tSTATUS\tPROGRESS\tSUBMITTED")
	for _, t := range tasks {
		progress := fmt.Sprintf("%.0f%%", t.Percent)
		if t.Indeterminate {
			progress = "…"
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n", t.ID, t.AudioFileID, t.ModelName, statusIcon(t.Status), progress, t.SubmitTime)
	}
	tw.Flush()
}

func (f *Formatter) HistoryTasks(tasks []types.ASRTask) {
	if len(tasks) == 0 {
		f.Info("No tasks")
		return
	}
	tw := tabwriter.NewWriter(f.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tAUDIO\tMODEL\tSTATUS\tSUBMITTED\tFINISHED")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n", t.ID, t.AudioFileID, t.ModelName, statusIcon(t.Status), t.SubmitTime, t.FinishTime)
	}
	tw.Flush()
}

func (f *Formatter) HistoryResults(results []types.ASRResult) {
	if len(results) == 0 {
		f.Info("No results")
		return
	}
	tw := tabwriter.NewWriter(f.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTASK\tALGO\tTEXT\tCREATED")
	for _, r := range results {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", r.ID, r.TaskID, r.SummaryAlgo, clip(r.RecognizedText, 40), r.CreateTime)
	}
	tw.Flush()
}

func (f *Formatter) ModelList(models []types.ModelInfo) {
	if len(models) == 0 {
		f.Info("No models")
		return
	}
	tw := tabwriter.NewWriter(f.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDISPLAY\tTYPE\tSTATUS\tVERSION")
	for _, m := range models {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", m.ID, m.Name, m.DisplayName, m.Type, m.Status, m.Version)
	}
	tw.Flush()
}

func (f *Formatter) ExportList(records []storage.ExportRecord) {
	if len(records) == 0 {
		f.Info("No exports recorded")
		return
	}
	tw := tabwriter.NewWriter(f.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tFORMAT\tNAME\tSIZE\tCREATED\tLOCATIONS")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n", r.TaskID, r.Format, r.Name, r.Size,
			r.CreatedAt.Format("2006-01-02 15:04"), strings.Join(r.Locations, ", "))
	}
	tw.Flush()
}

func (f *Formatter) JobList(jobs []queue.Job) {
	if len(jobs) == 0 {
		f.Info("No imports")
		return
	}
	tw := tabwriter.NewWriter(f.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "JOB\tNAME\tSOURCE\tSTATUS\tERROR")
	for _, j := range jobs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", j.ID, j.Name, j.SourceType, j.Status, clip(j.Error, 40))
	}
	tw.Flush()
}

func (f *Formatter) Text(title, body string) {
	fmt.Fprintf(f.w, "📝 %s\n\n%s\n", title, body)
}

func (f *Formatter) Saved(path string) {
	fmt.Fprintf(f.w, "📁 Saved: %s\n", path)
}

func statusIcon(status string) string {
	switch status {
	case types.StatusFinished:
		return "✅ " + status
	case types.StatusFailed:
		return "❌ " + status
	case types.StatusRunning:
		return "⏳ " + status
	}
	return status
}

func clip(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

// Notifier prints view notifications and remembers whether an error was shown
type Notifier struct {
	out     *Formatter
	errOut  *Formatter
	errored atomic.Bool
}

func NewNotifier(out, errOut io.Writer) *Notifier {
	return &Notifier{out: NewFormatter(out), errOut: NewFormatter(errOut)}
}

func (n *Notifier) Success(msg string) {
	n.out.Success(msg)
}

func (n *Notifier) Error(msg string) {
	n.errored.Store(true)
	n.errOut.Error(msg)
}

// Errored reports whether an error notification was printed
func (n *Notifier) Errored() bool {
	return n.errored.Load()
}
