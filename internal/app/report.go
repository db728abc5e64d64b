package app

import (
	"io"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/specialistvlad/stagegrid/internal/config"
	"github.com/specialistvlad/stagegrid/internal/session"
	"github.com/specialistvlad/stagegrid/internal/task"
)

var (
	headColor = color.New(color.Bold)
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed)
	skipColor = color.New(color.FgYellow)
)

// Report summarizes one run of an arrangement.
type Report struct {
	RunID       string
	Arrangement string
	Elapsed     time.Duration
	// Tasks holds the sorted ids of every described task.
	Tasks   []string
	Results map[string]*task.Result
	Err     error
}

func newReport(arr *config.Arrangement, sess *session.Session, elapsed time.Duration, err error) *Report {
	ids := make([]string, 0, len(arr.Tasks))
	for id := range arr.Tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return &Report{
		RunID:       sess.ID(),
		Arrangement: arr.Name,
		Elapsed:     elapsed,
		Tasks:       ids,
		Results:     sess.Results(),
		Err:         err,
	}
}

// Succeeded reports whether every stage of the run completed.
func (r *Report) Succeeded() bool { return r.Err == nil }

// Write prints one line per task and a closing verdict.
func (r *Report) Write(w io.Writer) {
	headColor.Fprintf(w, "Arrangement %q (run %s)\n", r.Arrangement, r.RunID)
	for _, id := range r.Tasks {
		res, ok := r.Results[id]
		switch {
		case !ok:
			skipColor.Fprintf(w, "  - %-24s no result\n", id)
		case res.Success():
			okColor.Fprintf(w, "  ✔ %-24s %s %s\n", id, res.Code, res.Message)
		default:
			failColor.Fprintf(w, "  ✘ %-24s %s %s\n", id, res.Code, res.Message)
		}
	}

	elapsed := r.Elapsed.Round(time.Millisecond)
	if r.Err != nil {
		failColor.Fprintf(w, "✘ Run failed after %s: %v\n", elapsed, r.Err)
		return
	}
	okColor.Fprintf(w, "✔ Run succeeded in %s with %d results.\n", elapsed, len(r.Results))
}
