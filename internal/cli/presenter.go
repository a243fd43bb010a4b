package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/eshaffer321/statement-reconciler/internal/application/reconcile"
	"github.com/eshaffer321/statement-reconciler/internal/domain/reconciler"
	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

const descriptionWidth = 32

// ConsolePresenter renders engine state as text. Colors follow
// fatih/color's terminal detection unless disabled.
type ConsolePresenter struct {
	out io.Writer

	index   *color.Color
	source  *color.Color
	exact   *color.Color
	inexact *color.Color
	muted   *color.Color
	warn    *color.Color
	heading *color.Color
}

var _ reconcile.Presenter = (*ConsolePresenter)(nil)

// NewConsolePresenter creates a presenter writing to out
func NewConsolePresenter(out io.Writer, noColor bool) *ConsolePresenter {
	p := &ConsolePresenter{
		out:     out,
		index:   color.New(color.BgBlue, color.FgWhite),
		source:  color.New(color.BgYellow, color.FgBlack),
		exact:   color.New(color.FgGreen),
		inexact: color.New(color.FgRed),
		muted:   color.New(color.FgHiBlack),
		warn:    color.New(color.FgYellow, color.Bold),
		heading: color.New(color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{p.index, p.source, p.exact, p.inexact, p.muted, p.warn, p.heading} {
			c.DisableColor()
		}
	}
	return p
}

// AutoMatches lists the automatic pass, including undone entries
func (p *ConsolePresenter) AutoMatches(matches []reconciler.AutoMatch) {
	p.heading.Fprintf(p.out, "Automatic matches (%d)\n", len(matches))
	if len(matches) == 0 {
		fmt.Fprintln(p.out, "  none")
		return
	}
	for _, m := range matches {
		p.index.Fprintf(p.out, " %3d ", m.Index)
		fmt.Fprintf(p.out, " %s", recordLine(m.Source))
		if m.Undone() {
			p.muted.Fprintln(p.out, "  (undone)")
			continue
		}
		fmt.Fprintf(p.out, "  =>  %s\n", recordLine(m.Candidate.Target()))
	}
}

// CandidateSet shows the source record under review and its candidates
func (p *ConsolePresenter) CandidateSet(phase reconciler.Phase, set *reconciler.CandidateSet) {
	if set == nil || set.Source == nil {
		return
	}
	fmt.Fprintln(p.out)
	p.muted.Fprintf(p.out, "[%s] ", phase)
	p.source.Fprintf(p.out, " %s ", recordLine(set.Source))
	if t := set.Source.TransactionType(); t != "" {
		p.muted.Fprintf(p.out, " %s", t)
	}
	fmt.Fprintln(p.out)

	for _, v := range set.Views() {
		c := v.Candidate
		p.index.Fprintf(p.out, " %3d ", v.Index)
		fmt.Fprintf(p.out, " %s  ", recordLine(c.Target()))

		amount := p.inexact
		if c.AmountExactMatch {
			amount = p.exact
		}
		amount.Fprintf(p.out, "Δ%.2f", c.Ranking.AmountScore)
		p.muted.Fprintf(p.out, " %gd", c.Ranking.DateScore)

		switch {
		case c.FullTextMatch:
			p.exact.Fprint(p.out, " text")
		case c.PartialTextMatch:
			p.muted.Fprint(p.out, " ~text")
		}
		p.muted.Fprintf(p.out, " %3.0f%%\n", c.Similarity*100)
	}
}

// FinalMatches lists matches confirmed by the user
func (p *ConsolePresenter) FinalMatches(matches []reconciler.FinalMatch) {
	fmt.Fprintln(p.out)
	p.heading.Fprintf(p.out, "Confirmed matches (%d)\n", len(matches))
	if len(matches) == 0 {
		fmt.Fprintln(p.out, "  none")
		return
	}
	for _, m := range matches {
		p.index.Fprintf(p.out, " %3d ", m.Index)
		fmt.Fprintf(p.out, " %s", recordLine(m.Source))
		if m.Undone() {
			p.muted.Fprintln(p.out, "  (undone)")
			continue
		}
		fmt.Fprintf(p.out, "  =>  %s", recordLine(m.Target))
		if m.Normalized {
			p.warn.Fprintf(p.out, "  was %s", m.OriginalAmount.StringFixed(2))
		}
		p.muted.Fprintf(p.out, "  %s\n", m.Phase)
	}
}

// Tally prints match counts and any integrity warnings
func (p *ConsolePresenter) Tally(r reconciler.TallyReport) {
	fmt.Fprintf(p.out, "Matched %d of %d statement records, %d of %d ledger entries\n",
		r.SourceMatched, r.SourceTotal, r.TargetMatched, r.TargetTotal)
	for _, w := range r.Warnings {
		p.warn.Fprintf(p.out, "warning: %s\n", w)
	}
}

// Finalized prints what was written
func (p *ConsolePresenter) Finalized(r reconciler.FinalizeResult) {
	fmt.Fprintln(p.out, strings.Repeat("-", 60))
	fmt.Fprintf(p.out, "Ledger written: %d entries (%d reconciled, %d added from statement)\n",
		r.Written, r.Reconciled, r.Added)
}

// Notice prints a one-line message
func (p *ConsolePresenter) Notice(message string) {
	p.warn.Fprintln(p.out, message)
}

// recordLine renders date, amount and a truncated description
func recordLine(r transaction.Record) string {
	if r == nil {
		return ""
	}
	desc := r.Description()
	if len(desc) > descriptionWidth {
		desc = desc[:descriptionWidth]
	}
	return fmt.Sprintf("%s %10s  %-*s", r.Date().Format("2006-01-02"), r.MainAmount().StringFixed(2), descriptionWidth, desc)
}
