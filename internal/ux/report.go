package ux

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/getlumos/lumos-action/internal/drift"
)

const statusWidth = len("missing-committed") + 2

type reportWriter struct {
	w io.Writer

	title   lipgloss.Style
	label   lipgloss.Style
	pass    lipgloss.Style
	warn    lipgloss.Style
	fail    lipgloss.Style
	muted   lipgloss.Style
	changes lipgloss.Style
}

func newReportWriter(w io.Writer, noColor bool) *reportWriter {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return &reportWriter{
		w:       w,
		title:   r.NewStyle().Bold(true),
		label:   r.NewStyle().Foreground(lipgloss.Color("8")),
		pass:    r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		warn:    r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		fail:    r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("241")),
		changes: r.NewStyle().Foreground(lipgloss.Color("12")),
	}
}

func (rw *reportWriter) outcomeStyle(o drift.Outcome) lipgloss.Style {
	switch o {
	case drift.OutcomePass:
		return rw.pass
	case drift.OutcomeWarnPass:
		return rw.warn
	default:
		return rw.fail
	}
}

func (rw *reportWriter) statusStyle(s drift.Status) lipgloss.Style {
	switch s {
	case drift.StatusUnchanged:
		return rw.muted
	case drift.StatusGenerationError:
		return rw.fail
	default:
		return rw.warn
	}
}

func (rw *reportWriter) write(r *drift.Report) error {
	var b strings.Builder

	outcome := strings.ToUpper(string(r.Decision.Outcome))
	fmt.Fprintf(&b, "%s %s: %s\n",
		rw.title.Render("LUMOS drift check"),
		rw.outcomeStyle(r.Decision.Outcome).Render(outcome),
		r.Decision.Reason,
	)

	rw.field(&b, "run", r.RunID)
	rw.field(&b, "schemas validated", fmt.Sprint(r.SchemasValidated))
	rw.field(&b, "schemas generated", fmt.Sprint(r.SchemasGenerated))
	rw.field(&b, "drift detected", yesNo(r.DriftDetected))

	if len(r.Records) > 0 {
		b.WriteString("\n")
	}
	for _, rec := range r.Records {
		status := string(rec.Status)
		b.WriteString("  ")
		b.WriteString(rw.statusStyle(rec.Status).Render(status))
		b.WriteString(strings.Repeat(" ", statusWidth-len(status)))
		fmt.Fprintf(&b, "%-24s %s", rec.Label(), rec.Schema.Path)

		switch rec.Status {
		case drift.StatusModified:
			b.WriteString("  " + rw.changes.Render(fmt.Sprintf("+%d -%d", rec.Insertions, rec.Deletions)))
		case drift.StatusGenerationError:
			b.WriteString("  " + rw.fail.Render(firstLine(rec.Error)))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(rw.w, b.String())
	return err
}

func (rw *reportWriter) field(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "  %s %s\n", rw.label.Render(fmt.Sprintf("%-18s", name+":")), value)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
