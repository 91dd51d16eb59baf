package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/reflection"
	analysissvc "github.com/tejpal123456789/trading-agnetic-workflow/internal/services/analysis"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/tools"
)

func printRun(w io.Writer, out *analysissvc.Output) {
	s := out.State
	fmt.Fprintf(w, "Analysis of %s on %s (run %s)\n", s.Subject, s.AsOfDate, out.RunID)
	if out.Cached {
		fmt.Fprintln(w, "Served from the result cache")
	}
	if out.Trace != nil {
		fmt.Fprint(w, out.Trace.Summary())
	}
	fmt.Fprintf(w, "Investment debate: %d round(s), risk debate: %d round(s), audit log: %s entries\n",
		s.InvestmentDebate.RoundCount, s.RiskDebate.RoundCount, humanize.Comma(int64(len(s.AuditLog))))
	if out.Signal != "" {
		fmt.Fprintf(w, "Signal: %s\n", out.Signal)
	}
	fmt.Fprintf(w, "\nFinal decision:\n%s\n", orMissing(s.FinalDecision))
	if out.StatePath != "" {
		fmt.Fprintf(w, "\nState written to %s\n", out.StatePath)
	}
}

func printBundle(w io.Writer, b *reflection.Bundle) {
	fmt.Fprintf(w, "\nReflection for %s on %s\n", b.Company, b.TradeDate)
	fmt.Fprintf(w, "Signal: %s, result: %s\n", b.ExtractedSignal, reflection.FormatResult(b.ActualReturns))
	fmt.Fprintf(w, "Outcome: %s\n", b.OutcomeDescription)
	fmt.Fprintf(w, "Verdict: %s\n", b.DecisionCorrectness)

	roles := make([]string, 0, len(b.AgentReflections))
	for role := range b.AgentReflections {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	for _, role := range roles {
		fmt.Fprintf(w, "\n[%s]\n%s\n", role, b.AgentReflections[role])
	}
	fmt.Fprintf(w, "\n[system]\n%s\n", b.SystemReflection)
	fmt.Fprintf(w, "\n%d of %d lessons stored in memory\n", b.LessonsStored, len(b.AgentReflections))
	if b.SavedPath != "" {
		fmt.Fprintf(w, "Saved to %s\n", b.SavedPath)
	}
}

func printCatalog(w io.Writer, catalog tools.Catalog) {
	fmt.Fprintf(w, "%d tools\n", catalog.Len())
	for _, name := range catalog.Names() {
		t, _ := catalog.Lookup(name)
		fmt.Fprintf(w, "\n%s(%s)\n  %s\n", name, paramList(t), t.Description())
	}
}

func orMissing(text string) string {
	if strings.TrimSpace(text) == "" {
		return "(missing)"
	}
	return text
}
