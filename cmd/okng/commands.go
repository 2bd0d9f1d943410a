package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/linuxmatters/okng/internal/audio"
	"github.com/linuxmatters/okng/internal/cli"
	"github.com/linuxmatters/okng/internal/dataset"
	"github.com/linuxmatters/okng/internal/labels"
	"github.com/linuxmatters/okng/internal/logging"
	"github.com/linuxmatters/okng/internal/processor"
	"github.com/linuxmatters/okng/internal/ui"
	"go.uber.org/zap"
)

// synthBurstGain is how much louder a --synth-burst second is than the rest.
const synthBurstGain = 4.0

// errNoSource is returned when label is given neither --input nor --synth.
var errNoSource = errors.New("no audio source: pass --input FILE or --synth")

// LabelCmd captures a recording, labels it and saves the dataset.
type LabelCmd struct {
	Input      string `short:"i" type:"existingfile" xor:"source" help:"Mono PCM WAV file to label"`
	Synth      bool   `xor:"source" help:"Label a synthetic recording (mains hum plus noise)"`
	SynthBurst []int  `name:"synth-burst" placeholder:"SECOND" help:"Seconds of the synthetic recording to make louder"`

	SampleRate int    `name:"sample-rate" default:"0" help:"Sample rate in Hz, 8000-96000 (0: the WAV file's rate, 44100 for --synth)"`
	Duration   int    `short:"d" default:"10" help:"Recording length in seconds, 1-300"`
	Threshold  int    `short:"t" default:"20" help:"Label NG when the metric changes by at least this percent, 0-100"`
	Metric     string `short:"m" default:"rms" help:"Segment metric: rms, kurtosis or crest"`
	Output     string `short:"o" default:"dataset.okng" help:"Dataset file to write"`
	Review     bool   `short:"r" help:"Review labels interactively before saving"`
	Logs       bool   `help:"Save a labeling report next to the dataset"`

	stdout io.Writer `kong:"-"`
}

// params resolves the flags into validated pipeline parameters.
func (c *LabelCmd) params() (processor.Params, error) {
	metric, err := processor.ParseMetric(c.Metric)
	if err != nil {
		return processor.Params{}, err
	}
	p := processor.Params{
		SampleRate:       c.SampleRate,
		Duration:         c.Duration,
		ThresholdPercent: c.Threshold,
		Metric:           metric,
	}

	if p.SampleRate == 0 {
		switch {
		case c.Input != "":
			meta, err := audio.ProbeWAV(c.Input)
			if err != nil {
				return processor.Params{}, err
			}
			p.SampleRate = meta.SampleRate
		default:
			p.SampleRate = processor.DefaultParams().SampleRate
		}
	}
	return p, p.Validate()
}

// source picks the capture source named by the flags.
func (c *LabelCmd) source() (audio.Source, string, error) {
	switch {
	case c.Input != "":
		return audio.WAVSource{Path: c.Input}, c.Input, nil
	case c.Synth:
		s := audio.Synth{NoiseLevel: -60, Disturbances: map[int]float64{}}
		for _, sec := range c.SynthBurst {
			s.Disturbances[sec] = synthBurstGain
		}
		return s, "synth", nil
	default:
		return nil, "", errNoSource
	}
}

// capture blocks until the source delivers a full buffer, then runs the pipeline.
func capture(ctx context.Context, src audio.Source, p processor.Params) (*processor.Result, error) {
	buf, err := src.Capture(ctx, p.SampleRate, p.Duration)
	if err != nil {
		return nil, fmt.Errorf("capture failed: %w", err)
	}
	return processor.Run(buf.Samples, p)
}

func (c *LabelCmd) Run(ctx context.Context, log *zap.SugaredLogger) error {
	out := c.stdout
	if out == nil {
		out = os.Stdout
	}
	start := time.Now()

	p, err := c.params()
	if err != nil {
		return err
	}
	src, name, err := c.source()
	if err != nil {
		return err
	}
	log.Infow("labeling", "source", name, "fs", p.SampleRate, "duration", p.Duration,
		"metric", p.Metric.String(), "threshold", p.ThresholdPercent)

	var res *processor.Result
	var final []labels.Label
	if c.Review {
		model, err := runCaptureReview(ctx, src, name, p, log)
		if err != nil {
			return err
		}
		if !model.Accepted() {
			cli.PrintWarning("review aborted, nothing saved")
			return nil
		}
		res, final = model.Result, model.Final
	} else {
		if res, err = capture(ctx, src, p); err != nil {
			return err
		}
		if final, err = labels.Merge(res.Auto, nil); err != nil {
			return err
		}
	}

	if res.Missing > 0 {
		cli.PrintWarning(fmt.Sprintf("capture was %d samples short of %d s; trailing segments are truncated", res.Missing, p.Duration))
	}

	rec := &dataset.Record{
		Waveforms:  res.Segments,
		Labels:     final,
		AutoLabels: res.Auto,
		SampleRate: p.SampleRate,
		Metric:     p.Metric.String(),
		RunID:      uuid.New(),
		Created:    time.Now(),
	}
	info, err := dataset.SaveRecord(c.Output, rec)
	if err != nil {
		return fmt.Errorf("failed to save dataset: %w", err)
	}
	if info.PaddedValues > 0 {
		cli.PrintWarning(fmt.Sprintf("%d short segment(s) zero-padded by %d samples", info.PaddedRows, info.PaddedValues))
	}
	log.Infow("dataset saved", "path", c.Output, "run_id", rec.RunID.String(),
		"segments", len(final), "ng", labels.Count(final, labels.NG))

	logging.DisplayResults(out, name, res, final)
	cli.PrintKeyValue(out, "Saved", c.Output)

	if c.Logs {
		path, err := logging.GenerateReport(logging.ReportData{
			Source:     name,
			OutputPath: c.Output,
			RunID:      rec.RunID,
			StartTime:  start,
			EndTime:    time.Now(),
			Result:     res,
			Final:      final,
			Reviewed:   c.Review,
			Padded:     info.PaddedValues,
		})
		if err != nil {
			log.Warnw("failed to write report", "error", err)
			cli.PrintWarning(fmt.Sprintf("failed to write report: %v", err))
		} else {
			cli.PrintKeyValue(out, "Report", path)
		}
	}
	return nil
}

// runCaptureReview shows the capture spinner while the pipeline runs in the
// background, then hands over to the review list.
func runCaptureReview(ctx context.Context, src audio.Source, name string, p processor.Params, log *zap.SugaredLogger) (ui.Model, error) {
	prog := tea.NewProgram(ui.NewCaptureModel(name, log), tea.WithAltScreen(), tea.WithContext(ctx))

	go func() {
		prog.Send(ui.CaptureStartMsg{Source: name})
		res, err := capture(ctx, src, p)
		prog.Send(ui.CaptureCompleteMsg{Result: res, Err: err})
	}()

	final, err := prog.Run()
	if err != nil {
		return ui.Model{}, fmt.Errorf("UI error: %w", err)
	}
	m := final.(ui.Model)
	if m.State == ui.StateError {
		return m, m.Error
	}
	return m, nil
}

// ReviewCmd edits the labels of an existing dataset.
type ReviewCmd struct {
	Dataset string `arg:"" optional:"" default:"dataset.okng" type:"existingfile" help:"Dataset to review"`
	Output  string `short:"o" help:"Write the reviewed dataset here instead of overwriting"`
}

// reviewModel decodes a dataset into a review model. Values are recomputed
// from the stored waveforms with the stored metric.
func reviewModel(path string, log *zap.SugaredLogger) (ui.Model, *dataset.Record, error) {
	c, err := dataset.Open(path)
	if err != nil {
		return ui.Model{}, nil, err
	}
	rec, warnings, err := c.Record()
	if err != nil {
		return ui.Model{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, w := range warnings {
		cli.PrintWarning(w.String())
	}

	metric := processor.MetricRMS
	if rec.Metric != "" {
		if metric, err = processor.ParseMetric(rec.Metric); err != nil {
			return ui.Model{}, nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	auto := rec.AutoLabels
	if auto == nil {
		// Without auto labels the saved labels are the baseline.
		auto = rec.Labels
	}

	values := processor.Features(metric, rec.Waveforms)
	m, err := ui.NewReviewModel(path, metric.String(), values, auto, rec.Labels, log)
	if err != nil {
		return ui.Model{}, nil, err
	}
	return m, rec, nil
}

func (c *ReviewCmd) Run(ctx context.Context, log *zap.SugaredLogger) error {
	m, rec, err := reviewModel(c.Dataset, log)
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("UI error: %w", err)
	}
	m = final.(ui.Model)
	if !m.Accepted() {
		cli.PrintWarning("review aborted, nothing saved")
		return nil
	}

	out := c.Output
	if out == "" {
		out = c.Dataset
	}
	rec.Labels = m.Final
	if _, err := dataset.SaveRecord(out, rec); err != nil {
		return fmt.Errorf("failed to save dataset: %w", err)
	}
	log.Infow("review saved", "path", out, "changed", m.Diff.Count)
	fmt.Printf("%d label(s) differ from auto, saved %s\n", m.Diff.Count, out)
	return nil
}

// ConvertCmd re-encodes a dataset container as JSON.
type ConvertCmd struct {
	Input  string `arg:"" optional:"" default:"dataset.okng" help:"Dataset container to read"`
	Output string `arg:"" optional:"" default:"dataset.json" help:"JSON file to write"`

	stdout io.Writer `kong:"-"`
}

func (c *ConvertCmd) Run(log *zap.SugaredLogger) error {
	out := c.stdout
	if out == nil {
		out = os.Stdout
	}

	sum, err := dataset.ConvertFile(c.Input, c.Output)
	if err != nil {
		return err
	}
	for _, k := range sum.Keys {
		fmt.Fprintln(out, k.String())
	}
	for _, w := range sum.Warnings {
		cli.PrintWarning(w.String())
	}
	log.Infow("converted", "input", c.Input, "output", c.Output,
		"keys", len(sum.Keys), "warnings", len(sum.Warnings))
	cli.PrintKeyValue(out, "Saved", c.Output)
	return nil
}
