package pipeline

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Timing is the wall clock record of one stage
type Timing struct {
	Stage   Stage
	Start   time.Time
	End     time.Time
	Records int
}

func (t Timing) Duration() time.Duration {
	return t.End.Sub(t.Start)
}

func (p *Pipeline) elapsed() time.Duration {
	var total time.Duration
	for _, t := range p.timings {
		total += t.Duration()
	}
	return total
}

// RenderTimings writes the stage timings so far as a table
func (p *Pipeline) RenderTimings(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("run %s", p.runID)
	t.AppendHeader(table.Row{"Stage", "Start", "End", "Duration", "Records"})

	records := 0
	for _, timing := range p.timings {
		records += timing.Records
		t.AppendRow(table.Row{
			timing.Stage,
			timing.Start.Format(time.TimeOnly),
			timing.End.Format(time.TimeOnly),
			timing.Duration().Round(time.Millisecond),
			timing.Records,
		})
	}

	t.AppendFooter(table.Row{p.state, "", "", p.elapsed().Round(time.Millisecond), records})
	style := table.StyleRounded
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	t.SetStyle(style)
	t.Render()
}
