// Package ui renders schedules, reports and history for the terminal.
package ui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/papapumpkin/gantt/internal/dag"
	"github.com/papapumpkin/gantt/internal/journal"
	"github.com/papapumpkin/gantt/internal/project"
	"github.com/papapumpkin/gantt/internal/schedule"
	"github.com/papapumpkin/gantt/internal/store"
	"github.com/papapumpkin/gantt/internal/task"
	"github.com/papapumpkin/gantt/internal/tracker"
)

const (
	dateLayout = "2006-01-02"
	barWidth   = 10
)

// Printer writes styled output to a writer.
type Printer struct {
	w   io.Writer
	s   styles
	now func() time.Time
}

// New returns a Printer writing to w. Color adds lipgloss styling.
func New(w io.Writer, color bool) *Printer {
	return &Printer{w: w, s: newStyles(color), now: time.Now}
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

// Success prints a confirmation line.
func (p *Printer) Success(format string, args ...any) {
	p.printf("%s %s\n", p.s.done.Render(iconDone), fmt.Sprintf(format, args...))
}

// Info prints a de-emphasized line.
func (p *Printer) Info(format string, args ...any) {
	p.printf("%s\n", p.s.dim.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error line.
func (p *Printer) Error(msg string) {
	p.printf("%s %s\n", p.s.danger.Render("error:"), msg)
}

// Projects lists stored projects with their age.
func (p *Printer) Projects(projects []store.Project) {
	if len(projects) == 0 {
		p.Info("no projects; import one with `gantt import <project.toml>`")
		return
	}
	for _, pr := range projects {
		p.printf("%-24s %s  %s\n", pr.Name, p.s.dim.Render(pr.ID),
			p.s.dim.Render("created "+humanize.RelTime(pr.CreatedAt, p.now(), "ago", "from now")))
	}
}

// Tasks prints the task hierarchy with effective progress. Tasks on the
// critical path are starred; overdue open tasks are flagged.
func (p *Printer) Tasks(name string, s *task.Set, progress map[string]int, critical []*task.Task) {
	onPath := make(map[string]bool, len(critical))
	for _, t := range critical {
		onPath[t.ID] = true
	}

	p.printf("%s %s\n", p.s.title.Render(name), p.s.dim.Render(fmt.Sprintf("(%d tasks)", s.Len())))
	now := p.now()
	seen := make(map[string]bool, s.Len())
	var walk func(t *task.Task, depth int)
	walk = func(t *task.Task, depth int) {
		if seen[t.ID] {
			return
		}
		seen[t.ID] = true
		p.taskRow(t, depth, progress[t.ID], onPath[t.ID], now)
		for _, c := range s.Children(t.ID) {
			walk(c, depth+1)
		}
	}
	for _, t := range s.Roots() {
		walk(t, 0)
	}
	// Tasks only reachable through a parent loop.
	for _, t := range s.Tasks() {
		walk(t, 0)
	}
}

func (p *Printer) taskRow(t *task.Task, depth, pct int, critical bool, now time.Time) {
	icon, style := p.statusIcon(t.Status)
	mark := " "
	if critical {
		mark = p.s.critical.Render(iconCritical)
	}
	label := strings.Repeat("  ", depth) + t.ID
	if t.Title != "" && t.Title != t.ID {
		label += " " + p.s.dim.Render(t.Title)
	}

	var notes []string
	if len(t.Dependencies) > 0 {
		notes = append(notes, "after "+strings.Join(t.Dependencies, ", "))
	}
	if t.IsOverdue(now) {
		notes = append(notes, p.s.danger.Render("overdue, due "+humanize.RelTime(t.End, now, "ago", "from now")))
	}
	if t.Completed != nil {
		notes = append(notes, "done "+t.Completed.Format(dateLayout))
	}

	p.printf("%s %s %s  %s → %s  %s %3d%%  %s\n",
		mark,
		style.Render(icon),
		label,
		t.Start.Format(dateLayout),
		t.End.Format(dateLayout),
		p.bar(pct),
		pct,
		p.s.dim.Render(strings.Join(notes, "; ")),
	)
}

func (p *Printer) statusIcon(st task.Status) (string, lipgloss.Style) {
	switch st {
	case task.StatusCompleted:
		return iconDone, p.s.done
	case task.StatusInProgress:
		return iconWorking, p.s.working
	case task.StatusOnHold:
		return iconHold, p.s.accent
	case task.StatusCancelled:
		return iconCancelled, p.s.dim
	default:
		return iconWaiting, p.s.waiting
	}
}

func (p *Printer) bar(pct int) string {
	filled := int(math.Round(float64(pct) / 100 * barWidth))
	filled = max(0, min(barWidth, filled))
	return p.s.barFull.Render(strings.Repeat("█", filled)) +
		p.s.barEmpty.Render(strings.Repeat("░", barWidth-filled))
}

// CriticalPath prints the longest dependency chain and its length.
func (p *Printer) CriticalPath(path []*task.Task) {
	if len(path) == 0 {
		p.Info("no critical path: the project has no tasks without prerequisites")
		return
	}
	p.printf("%s %s\n", p.s.title.Render("critical path"),
		p.s.dim.Render(fmt.Sprintf("(%d tasks, %s)", len(path), days(schedule.PathDuration(path)))))
	for i, t := range path {
		p.printf("  %s %-16s %s → %s  %s\n",
			p.s.critical.Render(fmt.Sprintf("%d.", i+1)),
			t.ID,
			t.Start.Format(dateLayout),
			t.End.Format(dateLayout),
			p.s.dim.Render(days(t.Duration())),
		)
	}
}

// Slack prints earliest and latest start and the float of every task.
func (p *Printer) Slack(a *schedule.Analysis) {
	p.printf("%s %s\n", p.s.title.Render("slack"), p.s.dim.Render("(span "+days(a.Span)+")"))
	p.printf("  %-16s %8s %8s %8s\n", "task", "ES", "LS", "slack")
	for _, id := range a.Order {
		tm := a.Timings[id]
		row := fmt.Sprintf("  %-16s %8s %8s %8s", id, offset(tm.EarliestStart), offset(tm.LatestStart), days(tm.Slack))
		if tm.Critical {
			row = p.s.critical.Render(row + " " + iconCritical)
		}
		p.printf("%s\n", row)
	}
	if ids := a.CriticalIDs(); len(ids) > 0 {
		p.printf("  %s %s\n", p.s.dim.Render("critical:"), strings.Join(ids, ", "))
	}
}

// Streams prints the independent groups of tasks, largest first.
func (p *Printer) Streams(streams []dag.Stream) {
	p.printf("%s %s\n", p.s.title.Render("streams"), p.s.dim.Render("("+plural(len(streams), "independent group")+")"))
	for _, st := range streams {
		p.printf("  %s %s\n", p.s.accent.Render(fmt.Sprintf("%d.", st.ID+1)), strings.Join(st.TaskIDs, ", "))
	}
}

// Completion prints the completed task and every task the reschedule moved.
func (p *Printer) Completion(c *tracker.Completion) {
	t := c.Task
	variance := t.CompletionVarianceDays()
	var when string
	switch {
	case variance < 0:
		when = p.s.accent.Render(fmt.Sprintf("%.1f days late", -variance))
	case variance > 0:
		when = p.s.done.Render(fmt.Sprintf("%.1f days early", variance))
	default:
		when = "on time"
	}
	p.Success("%s completed %s (%s)", t.ID, t.Completed.Format(dateLayout), when)
	p.Shifts(c.Shifts)
}

// Shifts prints a reschedule report.
func (p *Printer) Shifts(shifts []schedule.Shift) {
	if len(shifts) == 0 {
		p.Info("no dependents rescheduled")
		return
	}
	p.printf("%s\n", p.s.accent.Render(fmt.Sprintf("rescheduled %s:", plural(len(shifts), "task"))))
	for _, sh := range shifts {
		p.printf("  %-16s %s → %s  %s  %s\n",
			sh.Task.ID,
			sh.FromStart.Format(dateLayout),
			sh.Task.Start.Format(dateLayout),
			p.s.accent.Render("+"+days(sh.Delta())),
			p.s.dim.Render("after "+sh.Cause),
		)
	}
}

// Validation prints the outcome of checking a project file.
func (p *Printer) Validation(name string, taskCount int, errs []project.ValidationError) {
	if len(errs) == 0 {
		p.Success("project %q: %s, no errors", name, plural(taskCount, "task"))
		return
	}
	p.printf("%s project %q: %s\n", p.s.danger.Render(iconError), name, plural(len(errs), "error"))
	for _, e := range errs {
		p.printf("  %s %s\n", p.s.danger.Render("•"), e.Error())
	}
}

// Audit prints an audit report.
func (p *Printer) Audit(r *tracker.AuditReport) {
	if r.OK() {
		p.Success("no integrity problems")
	}
	for _, err := range r.Problems {
		p.printf("  %s %v\n", p.s.danger.Render(iconError), err)
	}
	if len(r.Cycles) > 0 {
		p.printf("  %s dependency cycle reachable from: %s\n",
			p.s.danger.Render(iconError), strings.Join(r.Cycles, ", "))
	}
	for _, c := range r.Blocked {
		p.printf("  %s %s starts %s, before %s finishes\n",
			p.s.danger.Render(iconError), c.Task.ID, c.Task.Start.Format(dateLayout), c.Prerequisite.ID)
	}
	now := p.now()
	for _, t := range r.Overdue {
		p.printf("  %s %s overdue, due %s\n",
			p.s.accent.Render("!"), t.ID, humanize.RelTime(t.End, now, "ago", "from now"))
		if ids := r.AtRisk[t.ID]; len(ids) > 0 {
			p.printf("    %s %s\n", p.s.dim.Render("at risk:"), strings.Join(ids, ", "))
		}
	}
}

// History prints journal events, oldest first.
func (p *Printer) History(events []journal.Event) {
	if len(events) == 0 {
		p.Info("no history")
		return
	}
	now := p.now()
	for _, e := range events {
		p.printf("%-14s %-9s %-16s %s\n",
			p.s.dim.Render(humanize.RelTime(e.Timestamp, now, "ago", "from now")),
			p.s.title.Render(e.Kind),
			e.TaskID,
			describe(e),
		)
	}
}

func describe(e journal.Event) string {
	data, _ := e.Data.(map[string]any)
	str := func(key string) string {
		v, _ := data[key].(string)
		return v
	}
	num := func(key string) float64 {
		v, _ := data[key].(float64)
		return v
	}
	switch e.Kind {
	case journal.KindLink:
		return "now waits on " + str("prerequisite")
	case journal.KindUnlink:
		return "no longer waits on " + str("prerequisite")
	case journal.KindComplete:
		return fmt.Sprintf("variance %+.1f days, %s shifted", num("variance_days"), plural(int(num("shifted_tasks")), "task"))
	case journal.KindShift:
		return fmt.Sprintf("%s → %s after %s", short(str("from_start")), short(str("to_start")), str("cause"))
	case journal.KindProgress:
		return fmt.Sprintf("%d%% → %d%%", int(num("from")), int(num("to")))
	}
	return ""
}

// short trims an RFC 3339 timestamp to its date.
func short(ts string) string {
	if len(ts) >= len(dateLayout) {
		return ts[:len(dateLayout)]
	}
	return ts
}

func days(d time.Duration) string {
	n := float64(d) / float64(task.Day)
	if n == math.Trunc(n) {
		return plural(int(n), "day")
	}
	return fmt.Sprintf("%.1f days", n)
}

func offset(d time.Duration) string {
	return fmt.Sprintf("+%gd", math.Round(float64(d)/float64(task.Day)*10)/10)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return humanize.Comma(int64(n)) + " " + noun + "s"
}
