package visualization

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/nvandessel/acsim/internal/analysis"
	"github.com/nvandessel/acsim/internal/config"
	"github.com/nvandessel/acsim/internal/models"
)

func testRecords() []models.TrajectoryRecord {
	return []models.TrajectoryRecord{
		{Time: 0, OriginalTemp: 31, AdjustedTemp: 30.5, Setting: models.SettingHigh, EnergyUsage: 2},
		{Time: 1, OriginalTemp: 26, AdjustedTemp: 25.7, Setting: models.SettingMedium, EnergyUsage: 2},
		{Time: 2, OriginalTemp: 23, AdjustedTemp: 22.9, Setting: models.SettingLow, EnergyUsage: 2},
	}
}

func TestRenderHTML(t *testing.T) {
	recs := testRecords()
	summary, err := analysis.Summarize(recs, config.Default())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := RenderHTML(&buf, summary, recs); err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}
	html := buf.String()

	if !strings.HasPrefix(html, "<!DOCTYPE html>") {
		t.Error("expected an HTML document")
	}
	if n := strings.Count(html, "<svg"); n != 2 {
		t.Errorf("expected 2 charts, got %d", n)
	}
	if n := strings.Count(html, "<circle"); n != 2*len(recs) {
		t.Errorf("expected %d points, got %d", 2*len(recs), n)
	}
	for _, want := range []string{"Energy usage vs adjusted temperature", "Adjusted temperature over time", "Medium", settingColors[models.SettingHigh]} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}
	for _, note := range summary.Notes {
		if !strings.Contains(html, strings.Split(note, " ")[0]) {
			t.Errorf("report missing note %q", note)
		}
	}
}

func TestRenderHTML_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, nil, nil); !errors.Is(err, analysis.ErrNoRecords) {
		t.Errorf("expected ErrNoRecords, got %v", err)
	}
}

func TestNewChart_ScalesIntoPlotArea(t *testing.T) {
	c := energyChart(testRecords())
	for _, p := range c.Points {
		if p.X < c.Left || p.X > c.Right || p.Y < c.Top || p.Y > c.Bottom {
			t.Errorf("point %+v outside plot area", p)
		}
	}
	if len(c.XTicks) != tickCount+1 || len(c.YTicks) != tickCount+1 {
		t.Errorf("unexpected tick counts %d/%d", len(c.XTicks), len(c.YTicks))
	}
}

func TestHeat(t *testing.T) {
	if got := heat(10, 10, 20); got != "#2850dc" {
		t.Errorf("cold end = %s", got)
	}
	if got := heat(20, 10, 20); got != "#dc5028" {
		t.Errorf("hot end = %s", got)
	}
}
