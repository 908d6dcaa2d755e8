// Command matchreport runs the event inference engine over an upstream
// tracking result: trajectory smoothing, team classification, possession
// segmentation, event derivation, cross-window deduplication and validation.
// Results are persisted to sqlite and optionally rendered as an HTML report.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fieldline-data/match.report/internal/config"
	"github.com/fieldline-data/match.report/internal/db"
	"github.com/fieldline-data/match.report/internal/match"
	"github.com/fieldline-data/match.report/internal/match/monitor"
	"github.com/fieldline-data/match.report/internal/security"
	"github.com/fieldline-data/match.report/internal/version"
)

var (
	inputPath     = flag.String("input", "", "tracking result JSON (required)")
	matchID       = flag.String("match-id", "", "match identifier (required)")
	configPath    = flag.String("config", "", "tuning config JSON (optional)")
	keypointsPath = flag.String("keypoints", "", "pitch keypoint correspondences JSON (optional)")
	colorsPath    = flag.String("colors", "", "jersey color samples JSON (optional)")
	dbPath        = flag.String("db", "match.db", "sqlite results database")
	migrationsDir = flag.String("migrations", "", "run versioned migrations from this directory instead of applying the schema directly")
	reportPath    = flag.String("report", "", "write HTML report to this path, or 'auto' to name it from the match id")
	windowLabel   = flag.String("window", "w0", "source window label for deduplication")
	windowOffset  = flag.Float64("window-offset", 0, "seconds to add to event timestamps")
	printJSON     = flag.Bool("json", false, "print the analysis bundle as JSON to stdout")
	showVersion   = flag.Bool("version", false, "print version and exit")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Printf("matchreport %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}
	if *inputPath == "" || *matchID == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(); err != nil {
		log.Fatalf("matchreport: %v", err)
	}
}

func run() error {
	params := match.DefaultRunParams()
	if *configPath != "" {
		tc, err := config.LoadTuningConfig(*configPath)
		if err != nil {
			return err
		}
		applyTuning(&params, tc)
	}

	input, err := match.LoadTrackingResult(*inputPath)
	if err != nil {
		return err
	}

	ctx := match.NewAnalysisContext(params)

	if *keypointsPath != "" {
		keypoints, err := loadKeypoints(*keypointsPath)
		if err != nil {
			return err
		}
		h, err := match.EstimateHomography(keypoints)
		if err != nil {
			return fmt.Errorf("estimate homography: %w", err)
		}
		ctx.Homography = h
	}

	var colorSamples []match.ColorSample
	if *colorsPath != "" {
		colorSamples, err = loadColorSamples(*colorsPath)
		if err != nil {
			return err
		}
	}

	analysis, err := ctx.Analyze(*matchID, input, colorSamples)
	if err != nil {
		return err
	}

	raw := analysis.RawEvents(*windowLabel, *windowOffset)
	deduped, err := match.Deduplicate(raw, params.Dedup)
	if err != nil {
		return fmt.Errorf("deduplicate events: %w", err)
	}
	summary := match.ValidateEvents(deduped)

	database, err := db.NewDB(*dbPath)
	if err != nil {
		return err
	}
	defer database.Close()
	if *migrationsDir != "" {
		err = database.MigrateUp(*migrationsDir)
	} else {
		err = database.ApplySchema()
	}
	if err != nil {
		return err
	}

	runs := match.NewRunStore(database.DB)
	if err := runs.InsertRun(&analysis.Run); err != nil {
		return err
	}
	events := match.NewEventStore(database.DB)
	if err := events.SaveAnalysis(analysis); err != nil {
		return err
	}
	if err := events.SaveDeduplicated(analysis.Run.RunID, deduped, &summary); err != nil {
		return err
	}

	if *reportPath != "" {
		target := *reportPath
		if target == "auto" {
			target = filepath.Join(".", security.SanitizeFilename(*matchID)+".html")
		}
		if err := security.ValidateExportPath(target); err != nil {
			return fmt.Errorf("report path: %w", err)
		}
		if err := monitor.WriteReportFile(target, analysis, deduped, &summary); err != nil {
			return err
		}
		log.Printf("report written to %s", target)
	}

	if *printJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(analysis); err != nil {
			return err
		}
	}

	log.Printf("run %s: %d segments, %d passes, %d carries, %d turnovers, %d deduplicated events (%d errors, %d warnings)",
		analysis.Run.RunID, len(analysis.Segments), len(analysis.Passes), len(analysis.Carries),
		len(analysis.Turnovers), len(deduped), summary.Errors, summary.Warnings)
	return nil
}

// applyTuning overlays set tuning fields onto the default parameter set.
func applyTuning(p *match.RunParams, tc *config.TuningConfig) {
	p.Event.PossessionDistanceThreshold = config.Float(tc.PossessionDistanceThreshold, p.Event.PossessionDistanceThreshold)
	p.Event.MinPossessionFrames = config.Int(tc.MinPossessionFrames, p.Event.MinPossessionFrames)
	p.Event.MinCarryDistance = config.Float(tc.MinCarryDistance, p.Event.MinCarryDistance)
	p.Event.ReviewConfidenceThreshold = config.Float(tc.ReviewConfidenceThreshold, p.Event.ReviewConfidenceThreshold)
	p.Event.FramesPerSecond = config.Float(tc.FramesPerSecond, p.Event.FramesPerSecond)
	p.Event.AttackDirection = match.AttackDirection(config.String(tc.AttackDirection, string(p.Event.AttackDirection)))

	p.Filter.MinConfidence = config.Float(tc.MinConfidence, p.Filter.MinConfidence)
	if tc.PlayersPerSide != nil {
		p.Filter.MaxPlayers = match.MaxPlayersForFormat(*tc.PlayersPerSide)
	}
	p.Filter.MinMovement = config.Float(tc.MinMovement, p.Filter.MinMovement)
	p.Filter.MotionWindowFrames = config.Int(tc.MotionWindowFrames, p.Filter.MotionWindowFrames)
	p.Filter.ColorSimilarityThreshold = config.Float(tc.ColorSimilarityThreshold, p.Filter.ColorSimilarityThreshold)
	p.Filter.EnablePitchFilter = config.Bool(tc.PitchFilter, p.Filter.EnablePitchFilter)

	p.KMeans.Clusters = config.Int(tc.ClusterCount, p.KMeans.Clusters)
	p.KMeans.MaxIterations = config.Int(tc.MaxIterations, p.KMeans.MaxIterations)
	p.KMeans.ConvergenceThreshold = config.Float(tc.ConvergenceThreshold, p.KMeans.ConvergenceThreshold)
	p.KMeans.ColorSpace = match.ColorSpace(config.String(tc.ColorSpace, string(p.KMeans.ColorSpace)))
	p.KMeans.MinSamples = config.Int(tc.MinColorSamples, p.KMeans.MinSamples)

	p.Kalman.ProcessNoise = config.Float(tc.ProcessNoise, p.Kalman.ProcessNoise)
	p.Kalman.MeasurementNoise = config.Float(tc.MeasurementNoise, p.Kalman.MeasurementNoise)
	p.Kalman.ConfidenceDecay = config.Float(tc.ConfidenceDecay, p.Kalman.ConfidenceDecay)
	p.Kalman.MaxPredictionTime = config.Float(tc.MaxPredictionTime, p.Kalman.MaxPredictionTime)

	p.Dedup.TemporalRadius = config.Float(tc.TemporalRadius, p.Dedup.TemporalRadius)
	p.Dedup.SourceBoost = config.Float(tc.SourceBoost, p.Dedup.SourceBoost)
}

func loadKeypoints(path string) ([]match.Keypoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keypoints: %w", err)
	}
	var keypoints []match.Keypoint
	if err := json.Unmarshal(data, &keypoints); err != nil {
		return nil, fmt.Errorf("parse keypoints %s: %w", path, err)
	}
	return keypoints, nil
}

func loadColorSamples(path string) ([]match.ColorSample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read color samples: %w", err)
	}
	var samples []match.ColorSample
	if err := json.Unmarshal(data, &samples); err != nil {
		return nil, fmt.Errorf("parse color samples %s: %w", path, err)
	}
	return samples, nil
}
