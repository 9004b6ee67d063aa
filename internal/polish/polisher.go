package polish

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/imamik/fittings/internal/config"
	"github.com/imamik/fittings/internal/logging"
	"github.com/imamik/fittings/internal/report"
)

// Polisher applies one node's declared settings.
type Polisher struct {
	updater Updater
	retry   RetryPolicy
	metrics *Metrics
	logger  zerolog.Logger
}

// Option is a functional option for configuring a Polisher.
type Option func(*Polisher)

// WithRetryPolicy sets the disk attachment retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(pl *Polisher) {
		pl.retry = p
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) Option {
	return func(pl *Polisher) {
		pl.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(pl *Polisher) {
		pl.logger = l
	}
}

// NewPolisher creates a Polisher. Without options it uses the environment's
// retry policy, fresh metrics and a no-op logger.
func NewPolisher(updater Updater, opts ...Option) *Polisher {
	p := &Polisher{
		updater: updater,
		retry:   DefaultRetryPolicy(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics = NewMetrics()
	}
	return p
}

// Metrics returns the metrics the polisher records into.
func (p *Polisher) Metrics() *Metrics {
	return p.metrics
}

// Shine validates the node's raw settings and applies them phase by phase.
// It returns the spits of every change that was applied, in phase order.
func (p *Polisher) Shine(ctx context.Context, node Node, raw config.NodeSettings) []report.Spit {
	start := time.Now()
	logger := logging.WithNode(p.logger, node.Name)

	settings := config.ValidateSettings(raw, logger)
	p.recordRejections(raw, settings)
	if settings.IsEmpty() {
		logger.Debug().Msg("nothing to apply")
		p.metrics.recordPolishDuration(time.Since(start).Seconds())
		return nil
	}

	var spits []report.Spit
	spits = append(spits, p.resize(ctx, node, settings, logger)...)
	spits = append(spits, p.addDisks(ctx, node, settings.Disks, logger)...)
	if s, ok := p.enableMonitoring(ctx, node, settings.Monitoring, logger); ok {
		spits = append(spits, s)
	}
	if s, ok := p.glue(ctx, node, settings.Glue, logger); ok {
		spits = append(spits, s)
	}

	p.metrics.recordPolishDuration(time.Since(start).Seconds())
	logger.Info().Int("changes", len(spits)).Dur("took", time.Since(start)).Msg("node polished")
	return spits
}

func (p *Polisher) recordRejections(raw config.NodeSettings, s config.Settings) {
	if raw.CPU != "" && s.CPU == nil {
		p.metrics.recordRejected(report.SettingCPU, 1)
	}
	if raw.Memory != "" && s.Memory == nil {
		p.metrics.recordRejected(report.SettingMemory, 1)
	}
	p.metrics.recordRejected(report.SettingDisk, len(raw.Disks)-len(s.Disks))
}

func (p *Polisher) resize(ctx context.Context, node Node, s config.Settings, logger zerolog.Logger) []report.Spit {
	if s.CPU == nil && s.Memory == nil {
		return nil
	}

	changed, err := p.updater.Resize(ctx, node, s.CPU, s.Memory)
	if err != nil {
		logger.Error().Err(err).Interface("cpu", s.CPU).Interface("memory", s.Memory).Msg("unable to resize")
		if s.CPU != nil {
			p.metrics.recordFailed(report.SettingCPU)
		}
		if s.Memory != nil {
			p.metrics.recordFailed(report.SettingMemory)
		}
		return nil
	}
	if !changed {
		logger.Debug().Interface("cpu", s.CPU).Interface("memory", s.Memory).Msg("size already matches")
		return nil
	}

	var spits []report.Spit
	if s.CPU != nil {
		spits = append(spits, report.Spit{Setting: report.SettingCPU, Value: strconv.Itoa(*s.CPU)})
		p.metrics.recordApplied(report.SettingCPU)
	}
	if s.Memory != nil {
		spits = append(spits, report.Spit{Setting: report.SettingMemory, Value: strconv.Itoa(*s.Memory)})
		p.metrics.recordApplied(report.SettingMemory)
	}
	logger.Info().Interface("cpu", s.CPU).Interface("memory", s.Memory).Msg("resized")
	return spits
}

// addDisks attaches the declared disks that are not attached yet. Existing
// disks are matched one-to-one by size and speed, so declaring the same disk
// twice still yields two disks.
func (p *Polisher) addDisks(ctx context.Context, node Node, disks []config.DiskSpec, logger zerolog.Logger) []report.Spit {
	if len(disks) == 0 {
		return nil
	}

	existing, err := p.updater.Disks(ctx, node)
	if err != nil {
		logger.Error().Err(err).Msg("unable to list attached disks, skipping disks")
		for range disks {
			p.metrics.recordFailed(report.SettingDisk)
		}
		return nil
	}
	attached := make(map[config.DiskSpec]int, len(existing))
	for _, d := range existing {
		attached[d]++
	}

	var spits []report.Spit
	for _, disk := range disks {
		if attached[disk] > 0 {
			attached[disk]--
			logger.Info().Int("size_gb", disk.SizeGB).Str("speed", string(disk.Speed)).Msg("disk already attached")
			continue
		}
		if p.addDisk(ctx, node, disk, logger) {
			spits = append(spits, report.Spit{Setting: report.SettingDisk, Value: disk.String()})
		}
	}
	return spits
}

func (p *Polisher) addDisk(ctx context.Context, node Node, disk config.DiskSpec, logger zerolog.Logger) bool {
	diskLogger := logger.With().Int("size_gb", disk.SizeGB).Str("speed", string(disk.Speed)).Logger()

	res, err := p.retry.Do(ctx, func(ctx context.Context) error {
		return p.updater.AddStorage(ctx, node, disk)
	}, func(attempt int, err error, wait time.Duration) {
		p.metrics.recordDiskRetry()
		diskLogger.Warn().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("node busy, retrying disk")
	})
	if err != nil {
		diskLogger.Error().Err(err).Int("attempts", res.Attempts).Msg("unable to add disk")
		p.metrics.recordFailed(report.SettingDisk)
		return false
	}

	p.metrics.recordApplied(report.SettingDisk)
	diskLogger.Info().Int("attempts", res.Attempts).Msg("disk added")
	return true
}

func (p *Polisher) enableMonitoring(ctx context.Context, node Node, level string, logger zerolog.Logger) (report.Spit, bool) {
	if level == "" {
		return report.Spit{}, false
	}

	changed, err := p.updater.EnableMonitoring(ctx, node, level)
	if err != nil {
		logger.Error().Err(err).Str("level", level).Msg("unable to enable monitoring")
		p.metrics.recordFailed(report.SettingMonitoring)
		return report.Spit{}, false
	}
	if !changed {
		logger.Debug().Str("level", level).Msg("monitoring already set")
		return report.Spit{}, false
	}

	p.metrics.recordApplied(report.SettingMonitoring)
	logger.Info().Str("level", level).Msg("monitoring enabled")
	return report.Spit{Setting: report.SettingMonitoring, Value: level}, true
}

func (p *Polisher) glue(ctx context.Context, node Node, domain string, logger zerolog.Logger) (report.Spit, bool) {
	if domain == "" {
		return report.Spit{}, false
	}

	attached, err := p.updater.AttachToDomain(ctx, node, domain)
	if err != nil {
		logger.Error().Err(err).Str("domain", domain).Msg("unable to glue node")
		p.metrics.recordFailed(report.SettingGlue)
		return report.Spit{}, false
	}
	if !attached {
		logger.Debug().Str("domain", domain).Msg("node already glued")
		return report.Spit{}, false
	}

	p.metrics.recordApplied(report.SettingGlue)
	logger.Info().Str("domain", domain).Msg("node glued")
	return report.Spit{Setting: report.SettingGlue, Value: domain}, true
}
