package waveheight

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"wave-stack/internal/models"
	"wave-stack/shared/config"
	"wave-stack/shared/scheduler"
	"wave-stack/shared/storage"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
)

// WaveMetrics represents the metrics collected during a wave height run
type WaveMetrics struct {
	RunID          string  `json:"run_id"`
	SamplesFetched int     `json:"samples_fetched"`
	SamplesKept    int     `json:"samples_kept"`
	HeightsDefined int     `json:"heights_defined"`
	ViewRows       int     `json:"view_rows"`
	MeanHeight     float64 `json:"mean_height"`
	StdDevHeight   float64 `json:"stddev_height"`
	MaxAbsHeight   float64 `json:"max_abs_height"`
	OutputPath     string  `json:"output_path"`
}

// GetSummary implements the scheduler.Metrics interface
func (m WaveMetrics) GetSummary() string {
	switch {
	case m.SamplesKept == 0:
		return fmt.Sprintf("no samples to process (fetched %d), wrote empty %s", m.SamplesFetched, m.OutputPath)
	case m.HeightsDefined == 0:
		return fmt.Sprintf("kept %d of %d samples, too few for a wave height, wrote %s",
			m.SamplesKept, m.SamplesFetched, m.OutputPath)
	default:
		return fmt.Sprintf("kept %d of %d samples, %d wave heights (mean %.3f, stddev %.3f, max |%.3f|), wrote %s",
			m.SamplesKept, m.SamplesFetched, m.HeightsDefined, m.MeanHeight, m.StdDevHeight, m.MaxAbsHeight, m.OutputPath)
	}
}

// WaveHeightAgent implements the scheduler.Agent interface
type WaveHeightAgent struct {
	config          *config.Config
	telemetryClient *TelemetryClient
	output          *storage.CSVFile
	view            *storage.CSVFile
	location        *time.Location
	now             func() time.Time
}

func NewWaveHeightAgent(cfg *config.Config) *WaveHeightAgent {
	return &WaveHeightAgent{
		config: cfg,
		now:    time.Now,
	}
}

func (d *WaveHeightAgent) Name() string {
	return "Wave Height Agent"
}

func (d *WaveHeightAgent) Initialize() error {
	log.Printf("Initializing %s...", d.Name())

	window, err := WindowSamples(d.config.Waves.WindowSec, d.config.Waves.SampleRateHz)
	if err != nil {
		return fmt.Errorf("invalid wave configuration: %w", err)
	}

	if d.config.Telemetry.ServerIP == "" {
		return fmt.Errorf("telemetry server must be configured (TAF_IP or telemetry.server_ip)")
	}

	d.location = d.config.Waves.Location()

	if d.telemetryClient == nil {
		d.telemetryClient = NewTelemetryClient(&d.config.Telemetry, d.location)
		log.Println("Telemetry client initialized")
	}

	d.output, err = storage.NewCSVFile(d.config.Output.Path)
	if err != nil {
		return fmt.Errorf("failed to prepare output file: %w", err)
	}

	if d.config.Output.ViewPath != "" {
		d.view, err = storage.NewCSVFile(d.config.Output.ViewPath)
		if err != nil {
			return fmt.Errorf("failed to prepare view file: %w", err)
		}
	}

	log.Printf("Configured for %s: window %gs at %g Hz (%d samples), output %s",
		d.telemetryClient.Endpoint(), d.config.Waves.WindowSec, d.config.Waves.SampleRateHz, window, d.output.Path())

	return nil
}

func (d *WaveHeightAgent) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	startTime := time.Now()
	runID := uuid.NewString()[:8]
	metrics := WaveMetrics{RunID: runID, OutputPath: d.output.Path()}

	fail := func(err error) error {
		if events != nil && events.OnCriticalFailure != nil {
			events.OnCriticalFailure(err, time.Since(startTime))
		}
		return err
	}

	log.Printf("[%s] Fetching telemetry...", runID)
	samples, err := d.telemetryClient.FetchSamples(ctx)
	if err != nil {
		return fail(fmt.Errorf("failed to fetch telemetry: %w", err))
	}
	metrics.SamplesFetched = len(samples)

	day := d.now().In(d.location)
	samples = d.selectSamples(samples, day)
	metrics.SamplesKept = len(samples)
	log.Printf("[%s] Kept %d of %d samples", runID, metrics.SamplesKept, metrics.SamplesFetched)

	estimates, err := Estimate(samples, d.config.Waves.WindowSec, d.config.Waves.SampleRateHz)
	if err != nil {
		return fail(fmt.Errorf("failed to estimate wave height: %w", err))
	}
	metrics.HeightsDefined, metrics.MeanHeight, metrics.StdDevHeight, metrics.MaxAbsHeight = summarize(estimates)

	// Resolve the view before anything is written so a bad bound fails the
	// whole run
	var view []models.WaveEstimate
	if d.view != nil {
		view, err = d.viewRange(estimates, day)
		if err != nil {
			return fail(err)
		}
		metrics.ViewRows = len(view)
	}

	rows := make([][]string, len(estimates))
	for i, e := range estimates {
		rows[i] = e.CSVRow()
	}
	if err := d.output.Replace(models.EstimateCSVHeader(), rows); err != nil {
		return fail(fmt.Errorf("failed to write %s: %w", d.output.Path(), err))
	}
	log.Printf("[%s] Saved %d rows to %s", runID, len(rows), d.output.Path())

	if d.view != nil {
		viewRows := make([][]string, len(view))
		for i, e := range view {
			viewRows[i] = e.ViewRow()
		}
		if err := d.view.Replace(models.ViewCSVHeader(), viewRows); err != nil {
			// The main file is already in place; the view is a convenience
			if events != nil && events.OnPartialFailure != nil {
				events.OnPartialFailure(fmt.Errorf("failed to write view %s: %w", d.view.Path(), err), time.Since(startTime))
			}
			log.Printf("[%s] Warning: failed to write view: %v", runID, err)
		} else {
			log.Printf("[%s] Saved %d view rows to %s", runID, len(viewRows), d.view.Path())
		}
	}

	duration := time.Since(startTime)
	if events != nil && events.OnSuccess != nil {
		events.OnSuccess(metrics, duration)
	}

	log.Printf("[%s] Wave height run complete: kept=%d, heights=%d", runID, metrics.SamplesKept, metrics.HeightsDefined)

	return nil
}

// selectSamples orders the fetched batch and applies the boat and day
// filters. The source returns rows in no particular order.
func (d *WaveHeightAgent) selectSamples(samples []models.Sample, day time.Time) []models.Sample {
	selected := SortByTimestamp(samples)
	selected = FilterBoat(selected, d.config.Waves.BoatID)
	if d.config.Waves.IsTodayOnly() {
		selected = FilterSince(selected, StartOfDay(day))
	}
	return selected
}

func (d *WaveHeightAgent) viewRange(estimates []models.WaveEstimate, day time.Time) ([]models.WaveEstimate, error) {
	start, err := ParseViewBound(d.config.Output.ViewStart, day)
	if err != nil {
		return nil, fmt.Errorf("failed to parse view start: %w", err)
	}
	end, err := ParseViewBound(d.config.Output.ViewEnd, day)
	if err != nil {
		return nil, fmt.Errorf("failed to parse view end: %w", err)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return nil, fmt.Errorf("view end %s is before view start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return ViewRange(estimates, start, end), nil
}

// summarize reports statistics over the defined wave heights.
func summarize(estimates []models.WaveEstimate) (defined int, mean, stddev, maxAbs float64) {
	heights := make([]float64, 0, len(estimates))
	for _, e := range estimates {
		if e.HeightValid {
			heights = append(heights, e.WaveHeight)
			maxAbs = math.Max(maxAbs, math.Abs(e.WaveHeight))
		}
	}

	switch len(heights) {
	case 0:
		return 0, 0, 0, 0
	case 1:
		return 1, heights[0], 0, maxAbs
	}

	mean, stddev = stat.MeanStdDev(heights, nil)
	return len(heights), mean, stddev, maxAbs
}
