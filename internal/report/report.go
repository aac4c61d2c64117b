// Package report collects per-sample outcomes of a batch run. Batch drivers
// record failures here and keep going; only the outer walk aborts a run.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/samplekit/samplekit/internal/cli/ui"
)

// Status is the outcome of processing one sample
type Status string

const (
	StatusOK      Status = "ok"
	StatusChanged Status = "changed"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Entry records what happened to a single sample
type Entry struct {
	Platform string
	Sample   string
	Status   Status
	Reason   string
}

// Report accumulates entries in the order samples were visited
type Report struct {
	Entries []Entry
}

// Add appends an entry
func (r *Report) Add(platform, sample string, status Status, reason string) {
	r.Entries = append(r.Entries, Entry{Platform: platform, Sample: sample, Status: status, Reason: reason})
}

// Fail records a failed sample with err as the reason
func (r *Report) Fail(platform, sample string, err error) {
	r.Add(platform, sample, StatusFailed, err.Error())
}

// Merge appends all entries from other
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Entries = append(r.Entries, other.Entries...)
}

// Count returns how many entries have the given status
func (r *Report) Count(status Status) int {
	n := 0
	for _, e := range r.Entries {
		if e.Status == status {
			n++
		}
	}
	return n
}

// Failed returns the failed entries
func (r *Report) Failed() []Entry {
	var failed []Entry
	for _, e := range r.Entries {
		if e.Status == StatusFailed {
			failed = append(failed, e)
		}
	}
	return failed
}

// Summary is a one-line tally
func (r *Report) Summary() string {
	return fmt.Sprintf("%d processed, %d changed, %d skipped, %d failed",
		len(r.Entries), r.Count(StatusChanged), r.Count(StatusSkipped), r.Count(StatusFailed))
}

// Render writes skipped and failed entries as a table followed by the summary
func (r *Report) Render(w io.Writer, noColor bool) {
	var notable []Entry
	for _, e := range r.Entries {
		if e.Status == StatusSkipped || e.Status == StatusFailed {
			notable = append(notable, e)
		}
	}
	sort.SliceStable(notable, func(i, j int) bool {
		return notable[i].Status > notable[j].Status
	})

	if len(notable) > 0 {
		ui.Header(w, "Needs attention", noColor)
		table := ui.NewTable(w, []string{"PLATFORM", "SAMPLE", "STATUS", "REASON"}, &ui.TableOptions{NoColor: noColor})
		for _, e := range notable {
			table.AddRow(e.Platform, e.Sample, string(e.Status), e.Reason)
		}
		table.Render()
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, r.Summary())
}
