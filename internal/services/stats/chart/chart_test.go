package chart

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/louisbranch/lolworlds/internal/services/stats/report"
)

func render(t *testing.T, averages []report.ChampionAverage) string {
	t.Helper()
	var buf bytes.Buffer
	if err := ChampionAvgKills(averages).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render chart: %v", err)
	}
	return buf.String()
}

func TestChampionAvgKillsRendersSVG(t *testing.T) {
	out := render(t, []report.ChampionAverage{
		{Champion: "Ahri", AvgKills: 6},
		{Champion: "Azir", AvgKills: 2},
	})

	if !strings.HasPrefix(out, "<svg") || !strings.HasSuffix(strings.TrimSpace(out), "</svg>") {
		t.Fatalf("expected an svg document: %s", out)
	}
	for _, want := range []string{ChampionAvgKillsTitle, ChampionAvgKillsYLabel, "Ahri", "Azir"} {
		if !strings.Contains(out, want) {
			t.Fatalf("chart missing %q", want)
		}
	}
	if !strings.Contains(out, fmt.Sprintf("rotate(%0.2f,", float64(labelRotation))) {
		t.Fatal("expected rotated category labels")
	}
}

func TestChampionAvgKillsKeepsTopTen(t *testing.T) {
	var averages []report.ChampionAverage
	for i := 1; i <= 14; i++ {
		averages = append(averages, report.ChampionAverage{Champion: fmt.Sprintf("Champ%02d", i), AvgKills: float64(20 - i)})
	}
	out := render(t, averages)
	for i := 1; i <= 10; i++ {
		if label := fmt.Sprintf("Champ%02d", i); !strings.Contains(out, label) {
			t.Fatalf("missing bar %s", label)
		}
	}
	for i := 11; i <= 14; i++ {
		if label := fmt.Sprintf("Champ%02d", i); strings.Contains(out, label) {
			t.Fatalf("unexpected bar %s beyond the top ten", label)
		}
	}
}

func TestChampionAvgKillsEscapesLabels(t *testing.T) {
	out := render(t, []report.ChampionAverage{{Champion: "<script>", AvgKills: 1}})
	if strings.Contains(out, "<script>") {
		t.Fatalf("label was not escaped: %s", out)
	}
}

func TestChampionAvgKillsSingleOrZeroValues(t *testing.T) {
	out := render(t, []report.ChampionAverage{{Champion: "Ahri", AvgKills: 0}})
	if !strings.Contains(out, "Ahri") {
		t.Fatalf("expected the bar label: %s", out)
	}
}

func TestChampionAvgKillsEmpty(t *testing.T) {
	out := render(t, nil)
	if !strings.Contains(out, "No data") || !strings.Contains(out, ChampionAvgKillsTitle) {
		t.Fatalf("expected empty marker: %s", out)
	}
}

func TestBarsFromAverages(t *testing.T) {
	averages := []report.ChampionAverage{{Champion: "Ahri", AvgKills: 6}, {Champion: "Azir", AvgKills: 2}}
	if got := BarsFromAverages(averages, 1); len(got) != 1 || got[0].Label != "Ahri" {
		t.Fatalf("bars = %+v", got)
	}
	if got := BarsFromAverages(averages, 0); len(got) != 2 {
		t.Fatalf("bars = %+v", got)
	}
}
