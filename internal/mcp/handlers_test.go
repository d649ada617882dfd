package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/acsim/internal/classifier"
	"github.com/nvandessel/acsim/internal/config"
	"github.com/nvandessel/acsim/internal/constants"
	"github.com/nvandessel/acsim/internal/dataio"
	"github.com/nvandessel/acsim/internal/models"
	"github.com/nvandessel/acsim/internal/store"
)

func setupTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	tmpDir := t.TempDir()

	cfg := &Config{
		Name:    "test-server",
		Version: "v1.0.0",
		Root:    tmpDir,
	}

	server, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	t.Cleanup(func() { server.Close() })

	return server, tmpDir
}

// saveModel trains a tree on cleanly separated temperatures and writes it
// where the server expects it.
func saveModel(t *testing.T, root string) {
	t.Helper()
	var examples []models.TrainingExample
	for _, temp := range []float64{15, 18, 21, 23, 25, 27, 29, 32, 35, 38} {
		examples = append(examples, models.TrainingExample{
			Temperature: temp, Occupancy: 2, AirQuality: 800, TrueTemperature: temp,
		})
	}
	tree, err := classifier.Train(examples, config.Default().Comfort, classifier.Options{})
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if err := classifier.Save(filepath.Join(config.DataDir(root), constants.ModelFileName), tree); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
}

func saveResults(t *testing.T, path string) []models.TrajectoryRecord {
	t.Helper()
	records := []models.TrajectoryRecord{
		{Time: 0, OriginalTemp: 31, AdjustedTemp: 30.5, Setting: models.SettingHigh, EnergyUsage: 2},
		{Time: 1, OriginalTemp: 23, AdjustedTemp: 22.9, Setting: models.SettingLow, EnergyUsage: 2},
	}
	if err := dataio.SaveTrajectory(path, records); err != nil {
		t.Fatalf("SaveTrajectory failed: %v", err)
	}
	return records
}

func TestNewServer(t *testing.T) {
	server, tmpDir := setupTestServer(t)

	if server.server == nil {
		t.Error("Server.server is nil")
	}
	if server.cfg == nil {
		t.Error("Server.cfg is nil")
	}
	if server.root != tmpDir {
		t.Errorf("Server.root = %q, want %q", server.root, tmpDir)
	}
	if _, err := os.Stat(config.DataDir(tmpDir)); err != nil {
		t.Errorf("expected data directory to be created: %v", err)
	}
}

func TestNewServer_InvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("ACSIM_STORAGE_BACKEND", "postgres")

	_, err := NewServer(&Config{Name: "test", Version: "v0", Root: tmpDir})
	if err == nil {
		t.Fatal("expected error for invalid storage backend")
	}
}

func TestHandleAcsimPredict(t *testing.T) {
	server, tmpDir := setupTestServer(t)
	saveModel(t, tmpDir)
	ctx := context.Background()
	req := &sdk.CallToolRequest{}

	tests := []struct {
		temp        float64
		wantSetting string
		wantCost    float64
	}{
		{18, "Low", 1},
		{26, "Medium", 2},
		{36, "High", 3},
	}
	for _, tt := range tests {
		result, output, err := server.handleAcsimPredict(ctx, req, PredictInput{
			Temperature: tt.temp, Occupancy: 2, AirQuality: 800,
		})
		if err != nil {
			t.Fatalf("handleAcsimPredict(%g) error = %v", tt.temp, err)
		}
		if result != nil {
			t.Error("expected nil CallToolResult for structured output")
		}
		if output.Setting != tt.wantSetting || output.EnergyCost != tt.wantCost {
			t.Errorf("predict(%g) = %+v, want %s at cost %g", tt.temp, output, tt.wantSetting, tt.wantCost)
		}
		if math.Abs(output.AdjustedTemp-(tt.temp+output.TemperatureDelta)) > 1e-9 {
			t.Errorf("AdjustedTemp = %g, want temp + delta", output.AdjustedTemp)
		}
	}
}

func TestHandleAcsimPredict_NoModel(t *testing.T) {
	server, _ := setupTestServer(t)

	_, _, err := server.handleAcsimPredict(context.Background(), &sdk.CallToolRequest{}, PredictInput{Temperature: 25})
	if !errors.Is(err, classifier.ErrModelNotTrained) {
		t.Fatalf("expected ErrModelNotTrained, got %v", err)
	}
	if !strings.Contains(err.Error(), "acsim train") {
		t.Errorf("error should point at the train command: %v", err)
	}
}

func TestHandleAcsimPredict_NegativeOccupancy(t *testing.T) {
	server, tmpDir := setupTestServer(t)
	saveModel(t, tmpDir)

	_, _, err := server.handleAcsimPredict(context.Background(), &sdk.CallToolRequest{}, PredictInput{Temperature: 25, Occupancy: -1})
	if err == nil {
		t.Fatal("expected error for negative occupancy")
	}
}

func TestHandleAcsimRecommend(t *testing.T) {
	server, _ := setupTestServer(t)

	_, output, err := server.handleAcsimRecommend(context.Background(), &sdk.CallToolRequest{}, RecommendInput{
		Temperatures: []float64{30, 23, 20},
	})
	if err != nil {
		t.Fatalf("handleAcsimRecommend error = %v", err)
	}
	if len(output.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(output.Steps))
	}

	// 30 is too hot: 24 - 0.1*(30-24) = 23.4
	if output.Steps[0].Feedback != string(models.FeedbackTooHot) || math.Abs(output.Steps[0].Preferred-23.4) > 1e-9 {
		t.Errorf("step 0 = %+v, want too hot at 23.4", output.Steps[0])
	}
	if output.Steps[1].Feedback != string(models.FeedbackJustRight) || output.Steps[1].Preferred != output.Steps[0].Preferred {
		t.Errorf("step 1 = %+v, want just right with no change", output.Steps[1])
	}
	// 20 is too cold: 23.4 + 0.1*(20-23.4) = 23.06
	if output.Steps[2].Feedback != string(models.FeedbackTooCold) || math.Abs(output.Steps[2].Preferred-23.06) > 1e-9 {
		t.Errorf("step 2 = %+v, want too cold at 23.06", output.Steps[2])
	}
	if output.Preferred != output.Steps[2].Preferred {
		t.Errorf("final preferred %g does not match last step %g", output.Preferred, output.Steps[2].Preferred)
	}
}

func TestHandleAcsimRecommend_InitialPreference(t *testing.T) {
	server, _ := setupTestServer(t)
	initial := 22.0

	_, output, err := server.handleAcsimRecommend(context.Background(), &sdk.CallToolRequest{}, RecommendInput{
		Temperatures:      []float64{32},
		InitialPreference: &initial,
	})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(output.Preferred-21.0) > 1e-9 {
		t.Errorf("Preferred = %g, want 21", output.Preferred)
	}
}

func TestHandleAcsimRecommend_Empty(t *testing.T) {
	server, _ := setupTestServer(t)

	_, _, err := server.handleAcsimRecommend(context.Background(), &sdk.CallToolRequest{}, RecommendInput{})
	if err == nil {
		t.Fatal("expected error for empty temperatures")
	}
}

func TestHandleAcsimAnalyze_DefaultPath(t *testing.T) {
	server, tmpDir := setupTestServer(t)
	saveResults(t, filepath.Join(config.DataDir(tmpDir), constants.ResultsFileName))

	_, output, err := server.handleAcsimAnalyze(context.Background(), &sdk.CallToolRequest{}, AnalyzeInput{})
	if err != nil {
		t.Fatalf("handleAcsimAnalyze error = %v", err)
	}
	if output.Records != 2 || output.Dashboard {
		t.Errorf("unexpected output %+v", output)
	}
	// 2 records of 2.0 scaled to a day: 4 * 1440/2
	if output.Summary == nil || output.Summary.TotalEnergy != 2880 {
		t.Errorf("TotalEnergy = %+v, want 2880", output.Summary)
	}
}

func TestHandleAcsimAnalyze_Dashboard(t *testing.T) {
	server, tmpDir := setupTestServer(t)
	saveResults(t, filepath.Join(tmpDir, "out", "results.csv"))
	preferred := 24.0

	_, output, err := server.handleAcsimAnalyze(context.Background(), &sdk.CallToolRequest{}, AnalyzeInput{
		Results:   filepath.Join("out", "results.csv"),
		Preferred: &preferred,
		Hours:     2,
	})
	if err != nil {
		t.Fatalf("handleAcsimAnalyze error = %v", err)
	}
	if !output.Dashboard || output.Records != 120 {
		t.Errorf("expected 120 dashboard records, got %+v", output)
	}
	if output.Summary.MaxAdjustedTemp > config.Default().Analysis.ClampMax {
		t.Errorf("dashboard should clamp adjusted temps, max = %g", output.Summary.MaxAdjustedTemp)
	}
}

func TestHandleAcsimAnalyze_Errors(t *testing.T) {
	server, tmpDir := setupTestServer(t)
	saveResults(t, filepath.Join(tmpDir, "results.csv"))
	tooHot := 35.0

	tests := []struct {
		name string
		args AnalyzeInput
	}{
		{"missing file", AnalyzeInput{Results: "nope.csv"}},
		{"preferred outside clamp", AnalyzeInput{Results: "results.csv", Preferred: &tooHot}},
		{"hours too large", AnalyzeInput{Results: "results.csv", Hours: 1000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := server.handleAcsimAnalyze(context.Background(), &sdk.CallToolRequest{}, tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestHandleAcsimRuns(t *testing.T) {
	server, tmpDir := setupTestServer(t)
	ctx := context.Background()

	st, err := store.Open(config.DataDir(tmpDir), store.BackendFile)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for i := 0; i < 3; i++ {
		id, err := st.SaveRun(ctx, &store.Run{Source: "raw_data.csv", Readings: 2, CumulativeEnergy: float64(i)})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}
	st.Close()

	_, output, err := server.handleAcsimRuns(ctx, &sdk.CallToolRequest{}, RunsInput{Limit: 2})
	if err != nil {
		t.Fatalf("handleAcsimRuns error = %v", err)
	}
	if output.Count != 2 || len(output.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %+v", output)
	}

	_, one, err := server.handleAcsimRuns(ctx, &sdk.CallToolRequest{}, RunsInput{ID: ids[1]})
	if err != nil {
		t.Fatalf("handleAcsimRuns(id) error = %v", err)
	}
	if one.Count != 1 || one.Runs[0].ID != ids[1] || one.Runs[0].CumulativeEnergy != 1 {
		t.Errorf("unexpected run %+v", one)
	}

	_, _, err = server.handleAcsimRuns(ctx, &sdk.CallToolRequest{}, RunsInput{ID: "missing"})
	if !errors.Is(err, store.ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestHandlers_WriteAuditLog(t *testing.T) {
	server, tmpDir := setupTestServer(t)
	ctx := context.Background()

	server.handleAcsimRecommend(ctx, &sdk.CallToolRequest{}, RecommendInput{Temperatures: []float64{26}})
	server.handleAcsimAnalyze(ctx, &sdk.CallToolRequest{}, AnalyzeInput{Results: "secret/path.csv"})
	server.Close()

	data, err := os.ReadFile(filepath.Join(config.DataDir(tmpDir), constants.AuditFileName))
	if err != nil {
		t.Fatalf("reading audit log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 audit lines, got %d", len(lines))
	}

	var first, second AuditEntry
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatal(err)
	}
	if first.Tool != "acsim_recommend" || first.Status != "success" {
		t.Errorf("unexpected first entry %+v", first)
	}
	if second.Tool != "acsim_analyze" || second.Status != "error" || second.Error == "" {
		t.Errorf("unexpected second entry %+v", second)
	}
	if second.Params["results"] != "(set)" {
		t.Errorf("results path should be presence-only, got %q", second.Params["results"])
	}
}
