package mcp

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/acsim/internal/analysis"
	"github.com/nvandessel/acsim/internal/classifier"
	"github.com/nvandessel/acsim/internal/config"
	"github.com/nvandessel/acsim/internal/constants"
	"github.com/nvandessel/acsim/internal/dataio"
	"github.com/nvandessel/acsim/internal/preference"
	"github.com/nvandessel/acsim/internal/store"
)

// registerTools registers all acsim MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "acsim_predict",
		Description: "Classify one sensor reading into a cooling setting using the trained model",
	}, s.handleAcsimPredict)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "acsim_recommend",
		Description: "Simulate occupant feedback for a sequence of temperatures and track the learned preferred temperature",
	}, s.handleAcsimRecommend)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "acsim_analyze",
		Description: "Summarize a simulation results file (energy, savings, comfort, settings), optionally after the dashboard transform",
	}, s.handleAcsimAnalyze)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "acsim_runs",
		Description: "List archived simulation runs or show the summary of one run",
	}, s.handleAcsimRuns)
}

// handleAcsimPredict implements the acsim_predict tool.
func (s *Server) handleAcsimPredict(ctx context.Context, req *sdk.CallToolRequest, args PredictInput) (_ *sdk.CallToolResult, _ PredictOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("acsim_predict", start, retErr, toolParams(map[string]any{
			"temperature": args.Temperature, "occupancy": args.Occupancy, "air_quality": args.AirQuality,
		}))
	}()

	if args.Occupancy < 0 {
		return nil, PredictOutput{}, fmt.Errorf("occupancy must be non-negative, got %d", args.Occupancy)
	}

	tree, err := classifier.Load(filepath.Join(config.DataDir(s.root), constants.ModelFileName))
	if err != nil {
		if errors.Is(err, classifier.ErrModelNotTrained) {
			return nil, PredictOutput{}, fmt.Errorf("no trained model; run 'acsim train' first: %w", err)
		}
		return nil, PredictOutput{}, fmt.Errorf("failed to load model: %w", err)
	}

	setting, err := tree.Predict(args.Temperature, args.Occupancy, args.AirQuality)
	if err != nil {
		return nil, PredictOutput{}, fmt.Errorf("prediction failed: %w", err)
	}

	action, err := s.cfg.Policy.Action(setting)
	if err != nil {
		return nil, PredictOutput{}, err
	}

	return nil, PredictOutput{
		Setting:          string(setting),
		EnergyCost:       action.EnergyCost,
		TemperatureDelta: action.TemperatureDelta,
		AdjustedTemp:     args.Temperature + action.TemperatureDelta,
	}, nil
}

// handleAcsimRecommend implements the acsim_recommend tool.
func (s *Server) handleAcsimRecommend(ctx context.Context, req *sdk.CallToolRequest, args RecommendInput) (_ *sdk.CallToolResult, _ RecommendOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("acsim_recommend", start, retErr, toolParams(map[string]any{
			"temperatures": args.Temperatures, "initial_preference": args.InitialPreference,
		}))
	}()

	if len(args.Temperatures) == 0 {
		return nil, RecommendOutput{}, errors.New("'temperatures' must contain at least one value")
	}

	prefCfg := s.cfg.Preference
	if args.InitialPreference != nil {
		prefCfg.InitialTemperature = *args.InitialPreference
	}
	tracker := preference.New(prefCfg, s.cfg.Comfort, nil)

	steps := make([]RecommendStep, 0, len(args.Temperatures))
	for _, temp := range args.Temperatures {
		preferred, feedback := tracker.Recommend(temp)
		steps = append(steps, RecommendStep{
			Temperature: temp,
			Feedback:    string(feedback),
			Preferred:   preferred,
		})
	}

	return nil, RecommendOutput{
		Steps:     steps,
		Preferred: tracker.Preferred(),
	}, nil
}

// handleAcsimAnalyze implements the acsim_analyze tool.
func (s *Server) handleAcsimAnalyze(ctx context.Context, req *sdk.CallToolRequest, args AnalyzeInput) (_ *sdk.CallToolResult, _ AnalyzeOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("acsim_analyze", start, retErr, toolParams(map[string]any{
			"results": args.Results, "preferred": args.Preferred, "hours": args.Hours,
		}))
	}()

	path := s.resolvePath(args.Results, constants.ResultsFileName)
	records, err := dataio.LoadTrajectory(path)
	if err != nil {
		return nil, AnalyzeOutput{}, fmt.Errorf("failed to load results: %w", err)
	}

	dashboard := args.Preferred != nil || args.Hours != 0
	if dashboard {
		preferred := s.cfg.Preference.InitialTemperature
		if args.Preferred != nil {
			preferred = *args.Preferred
		}
		hours := args.Hours
		if hours == 0 {
			hours = constants.MinutesPerDay / 60
		}
		records, err = analysis.Dashboard(records, preferred, hours, s.cfg)
		if err != nil {
			return nil, AnalyzeOutput{}, err
		}
	}

	summary, err := analysis.Summarize(records, s.cfg)
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}

	return nil, AnalyzeOutput{
		Records:   len(records),
		Dashboard: dashboard,
		Summary:   summary,
	}, nil
}

// handleAcsimRuns implements the acsim_runs tool.
func (s *Server) handleAcsimRuns(ctx context.Context, req *sdk.CallToolRequest, args RunsInput) (_ *sdk.CallToolResult, _ RunsOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("acsim_runs", start, retErr, toolParams(map[string]any{
			"id": args.ID, "limit": args.Limit,
		}))
	}()

	if args.Limit < 0 {
		return nil, RunsOutput{}, fmt.Errorf("limit must be non-negative, got %d", args.Limit)
	}

	st, err := store.Open(config.DataDir(s.root), s.cfg.Storage.Backend)
	if err != nil {
		return nil, RunsOutput{}, fmt.Errorf("failed to open run archive: %w", err)
	}
	defer st.Close()

	if args.ID != "" {
		run, err := st.GetRun(ctx, args.ID)
		if err != nil {
			return nil, RunsOutput{}, err
		}
		return nil, RunsOutput{
			Runs:    []RunListItem{runListItem(*run)},
			Count:   1,
			Summary: run.Summary,
		}, nil
	}

	runs, err := st.ListRuns(ctx)
	if err != nil {
		return nil, RunsOutput{}, fmt.Errorf("failed to list runs: %w", err)
	}
	if args.Limit > 0 && len(runs) > args.Limit {
		runs = runs[:args.Limit]
	}

	items := make([]RunListItem, 0, len(runs))
	for _, r := range runs {
		items = append(items, runListItem(r))
	}
	return nil, RunsOutput{Runs: items, Count: len(items)}, nil
}

func runListItem(r store.Run) RunListItem {
	item := RunListItem{
		ID:               r.ID,
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
		Source:           r.Source,
		Readings:         r.Readings,
		CumulativeEnergy: r.CumulativeEnergy,
		AverageEnergy:    r.AverageEnergy,
	}
	if r.Summary != nil {
		item.TotalEnergy = r.Summary.TotalEnergy
		item.ComfortPercent = r.Summary.ComfortPercent
	}
	return item
}
