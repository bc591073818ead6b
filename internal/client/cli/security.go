package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/codelife/internal/client/api"
	"github.com/dmitrijs2005/codelife/internal/output"
)

// Scan runs a pentesting tool on the backend against target.
func (a *App) Scan(ctx context.Context, tool, target, options string) error {
	t, err := api.ParseScanTool(tool)
	if err != nil {
		return err
	}

	a.printer.Info("Running %s against %s...", t, target)
	v, err := a.api.RunScan(ctx, t, api.ScanRequest{Target: target, Options: options})
	if err != nil {
		return err
	}

	res := asMap(v)
	if res == nil {
		a.printer.Print("%v", v)
		return nil
	}

	if out := firstOf(res, "output", "result", "raw_output"); out != "" {
		a.printer.Print("%s", out)
	}
	for _, k := range sortedKeys(res) {
		switch k {
		case "output", "result", "raw_output":
			continue
		}
		a.printer.Print("%-12s %s", k+":", str(res, k))
	}
	a.printer.Success("%s scan finished", t)
	return nil
}

// Threats lists the latest threat-intelligence entries.
func (a *App) Threats(ctx context.Context) error {
	v, err := a.api.LatestThreats(ctx)
	if err != nil {
		return err
	}

	threats := asList(asMap(v)["threats"])
	if len(threats) == 0 {
		a.printer.Info("No threats recorded yet. Try 'threat-refresh'.")
		return nil
	}

	t := output.NewTable(a.printer.Out(), []string{"type", "severity", "source", "description", "indicators", "seen"})
	for _, th := range threats {
		m := asMap(th)
		t.AddRow(
			str(m, "type"),
			a.printer.Severity(str(m, "severity")),
			str(m, "source"),
			truncate(str(m, "description"), 50),
			indicators(asList(m["indicators"])),
			str(m, "timestamp"),
		)
	}
	return t.Render()
}

// indicators shows the first two values and how many more there are.
func indicators(list []any) string {
	shown := make([]string, 0, 2)
	for _, v := range list[:min(len(list), 2)] {
		if s, ok := v.(string); ok {
			shown = append(shown, s)
		}
	}
	out := strings.Join(shown, ", ")
	if extra := len(list) - 2; extra > 0 {
		out += " +" + strconv.Itoa(extra)
	}
	return out
}

// ThreatStats prints totals by severity and by source.
func (a *App) ThreatStats(ctx context.Context) error {
	v, err := a.api.ThreatStats(ctx)
	if err != nil {
		return err
	}

	s := asMap(v)
	a.printer.Header("Threat statistics")
	a.printer.Print("Total: %d", num(s, "total"))

	sev := asMap(s["by_severity"])
	for _, level := range []string{"High", "Medium", "Low"} {
		a.printer.Print("  %-8s %d", a.printer.Severity(level), num(sev, level))
	}

	src := asMap(s["by_source"])
	if len(src) > 0 {
		t := output.NewTable(a.printer.Out(), []string{"source", "count"})
		for _, k := range sortedKeys(src) {
			t.AddRow(k, str(src, k))
		}
		return t.Render()
	}
	return nil
}

// ThreatRefresh asks the backend to pull fresh OSINT feeds.
func (a *App) ThreatRefresh(ctx context.Context) error {
	v, err := a.api.RefreshThreats(ctx)
	if err != nil {
		return err
	}

	m := asMap(v)
	msg := firstOf(m, "message")
	if msg == "" {
		msg = "Threat feeds refreshed"
	}
	if n, ok := m["count"]; ok && n != nil {
		msg += " (" + str(m, "count") + " new)"
	}
	a.printer.Success("%s", msg)
	return nil
}
