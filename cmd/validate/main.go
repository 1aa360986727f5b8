// Command validate performs a contract check against a running EcoLens
// backend. It calls every endpoint the dashboard consumes for one location
// and reports missing or out-of-range fields per endpoint.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -api-url http://localhost:8000 \
//	  -query London
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Sureka400/Ecolens-AI/internal/adapter/ecolens"
	"github.com/Sureka400/Ecolens-AI/internal/domain"
	"golang.org/x/sync/errgroup"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	apiURL := flag.String("api-url", "http://localhost:8000", "backend base URL")
	query := flag.String("query", "London", "location to geocode and validate")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request timeout")
	flag.Parse()

	client := ecolens.NewClient(*apiURL, *timeout, slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(run(context.Background(), client, *query, os.Stdout))
}

func run(ctx context.Context, c *ecolens.Client, query string, out io.Writer) int {
	fmt.Fprintf(out, "=== EcoLens Backend Contract Validation (%s) ===\n\n", c.BaseURL())

	geo := &phase{name: "Geocode"}
	loc, err := c.Geocode(ctx, query)
	if err != nil {
		fmt.Fprintf(out, "FATAL: geocode %q: %v\n", query, err)
		return 1
	}
	validateLocation(geo, loc)
	if !geo.passed() {
		report(out, []*phase{geo})
		return 1
	}
	fmt.Fprintf(out, "Location: %s\n\n", loc)

	checks := []struct {
		name string
		fn   func(*phase) error
	}{
		{"Overview", func(p *phase) error {
			v, err := c.Overview(ctx)
			if err == nil {
				validateOverview(p, v)
			}
			return err
		}},
		{"Map (all layers)", func(p *phase) error {
			for _, layer := range []string{domain.LayerAir, domain.LayerWater, domain.LayerWaste, domain.LayerNoise} {
				v, err := c.Map(ctx, loc.Lat, loc.Lon, layer)
				if err != nil {
					return err
				}
				validateMap(p, layer, v)
			}
			return nil
		}},
		{"Snapshot", func(p *phase) error {
			v, err := c.Snapshot(ctx, loc.Lat, loc.Lon)
			if err == nil {
				validateSnapshot(p, v)
			}
			return err
		}},
		{"Insights", func(p *phase) error {
			v, err := c.Insights(ctx, loc.Lat, loc.Lon)
			if err == nil {
				validateInsights(p, v)
			}
			return err
		}},
		{"Forecast", func(p *phase) error {
			v, err := c.Forecast(ctx, loc.Lat, loc.Lon)
			if err == nil {
				validateForecast(p, v)
			}
			return err
		}},
		{"Impact score", func(p *phase) error {
			v, err := c.ImpactScore(ctx, loc.Lat, loc.Lon)
			if err == nil {
				validateImpactScore(p, v)
			}
			return err
		}},
		{"Impact simulation", func(p *phase) error {
			v, err := c.ImpactSimulation(ctx, loc.Lat, loc.Lon)
			if err == nil {
				validateSimulation(p, v)
			}
			return err
		}},
		{"History", func(p *phase) error {
			v, err := c.History(ctx)
			if err == nil {
				validateHistory(p, v)
			}
			return err
		}},
		{"Report round trip", func(p *phase) error {
			return validateReportRoundTrip(ctx, p, c, loc)
		}},
	}

	// Endpoints are independent; each check writes only its own phase.
	phases := make([]*phase, len(checks))
	var g errgroup.Group
	g.SetLimit(4)
	for i, chk := range checks {
		phases[i] = &phase{name: chk.name}
		g.Go(func() error {
			if err := chk.fn(phases[i]); err != nil {
				phases[i].errorf("request failed: %v", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return report(out, append([]*phase{geo}, phases...))
}

func report(out io.Writer, phases []*phase) int {
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Field checks ──

func validateLocation(p *phase, loc domain.Location) {
	if err := domain.ValidateCoordinates(loc.Lat, loc.Lon); err != nil {
		p.errorf("coordinates: %v", err)
	}
	if loc.Name == "" {
		p.errorf("name is empty")
	}
}

func validateOverview(p *phase, v domain.Overview) {
	if v.Title == "" {
		p.errorf("title is empty")
	}
	if v.Subtitle == "" {
		p.errorf("subtitle is empty")
	}
}

func validRisk(level string) bool {
	return level == domain.RiskLow || level == domain.RiskModerate || level == domain.RiskHigh
}

func validateMap(p *phase, layer string, v domain.MapData) {
	if len(v.Layers) == 0 {
		p.errorf("%s: no layers", layer)
	}
	for i, l := range v.Layers {
		if _, ok := domain.LayerSymbol(l.ID); !ok {
			p.errorf("%s: layer %d: unknown id %q", layer, i, l.ID)
		}
		if l.Name == "" {
			p.errorf("%s: layer %d: name is empty", layer, i)
		}
	}
	for i, z := range v.PollutionZones {
		if err := domain.ValidateCoordinates(z.Lat, z.Lon); err != nil {
			p.errorf("%s: zone %d: %v", layer, i, err)
		}
		if !validRisk(z.Severity) {
			p.errorf("%s: zone %d: unknown severity %q", layer, i, z.Severity)
		}
	}
}

func validateSnapshot(p *phase, metrics []domain.Metric) {
	if len(metrics) == 0 {
		p.errorf("no metrics")
	}
	for i, m := range metrics {
		if m.Title == "" {
			p.errorf("metric %d: title is empty", i)
		}
		if !validRisk(m.Risk) {
			p.errorf("metric %d (%s): unknown risk %q", i, m.Title, m.Risk)
		}
		if m.Value < 0 || m.Value > 100 {
			p.errorf("metric %d (%s): value %d outside 0-100", i, m.Title, m.Value)
		}
	}
}

func validateInsights(p *phase, v domain.Insights) {
	if v.Summary == "" {
		p.errorf("summary is empty")
	}
	if v.ConfidenceScore < 0 || v.ConfidenceScore > 1 {
		p.errorf("confidence_score %v outside 0-1", v.ConfidenceScore)
	}
	if len(v.ActionPlan) == 0 {
		p.errorf("action_plan is empty")
	}
	for i, a := range v.ActionPlan {
		if a.Title == "" {
			p.errorf("action %d: title is empty", i)
		}
	}
}

func validateForecast(p *phase, v domain.Forecast) {
	if len(v.Forecast) == 0 {
		p.errorf("forecast is empty")
	}
	for i, pt := range v.Forecast {
		if pt.Day == "" {
			p.errorf("point %d: day is empty", i)
		}
		if pt.Current < 0 || pt.WithAction < 0 {
			p.errorf("point %d (%s): negative value", i, pt.Day)
		}
	}
}

func validateImpactScore(p *phase, v domain.ImpactScore) {
	if v.MaxScore <= 0 {
		p.errorf("maxScore %d is not positive", v.MaxScore)
	}
	if v.Score < 0 || v.Score > v.MaxScore {
		p.errorf("score %d outside 0-%d", v.Score, v.MaxScore)
	}
	for i, c := range v.Components {
		if c.Label == "" {
			p.errorf("component %d: label is empty", i)
		}
	}
}

func validateSimulation(p *phase, v domain.Simulation) {
	if len(v.CurrentData) != len(v.ImprovedData) {
		p.errorf("currentData has %d items, improvedData has %d", len(v.CurrentData), len(v.ImprovedData))
	}
	for _, item := range v.CurrentData {
		if _, ok := v.ReductionPercentages[item.Category]; !ok {
			p.errorf("no reduction percentage for %q", item.Category)
		}
	}
}

func validateHistory(p *phase, records []domain.SearchRecord) {
	if len(records) > 10 {
		p.errorf("history has %d records, expected at most 10", len(records))
	}
	for i, r := range records {
		if r.ID == 0 {
			p.errorf("record %d: id is missing", i)
		}
		if err := domain.ValidateCoordinates(r.Lat, r.Lon); err != nil {
			p.errorf("record %d: %v", i, err)
		}
	}
}

func validateReportRoundTrip(ctx context.Context, p *phase, c *ecolens.Client, loc domain.Location) error {
	report, err := c.CreateReport(ctx, loc)
	if err != nil {
		return err
	}
	if report.ID <= 0 {
		p.errorf("report id %d is not positive", report.ID)
		return nil
	}

	file, err := c.DownloadReport(ctx, report.ID, ecolens.ReportFilename(loc.Name, report.ID))
	if err != nil {
		return err
	}
	defer file.Body.Close()
	body, err := io.ReadAll(file.Body)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}
	if len(body) == 0 {
		p.errorf("report %d: download is empty", report.ID)
	}

	reports, err := c.Reports(ctx)
	if err != nil {
		return err
	}
	for _, r := range reports {
		if r.ID == report.ID {
			return nil
		}
	}
	p.errorf("report %d missing from /api/reports", report.ID)
	return nil
}
