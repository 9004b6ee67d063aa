package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Bounds for declared node values.
const (
	MinCPU      = 1
	MaxCPU      = 32
	MinMemory   = 1
	MaxMemory   = 256
	MinDiskSize = 1
	MaxDiskSize = 1000
)

// DiskSpeed is the storage tier of an additional disk.
type DiskSpeed string

const (
	SpeedStandard        DiskSpeed = "STANDARD"
	SpeedHighPerformance DiskSpeed = "HIGHPERFORMANCE"
	SpeedEconomic        DiskSpeed = "ECONOMIC"
)

// ValidDiskSpeeds contains every accepted disk speed.
var ValidDiskSpeeds = map[DiskSpeed]bool{
	SpeedStandard:        true,
	SpeedHighPerformance: true,
	SpeedEconomic:        true,
}

// DiskSpec is a validated additional disk.
type DiskSpec struct {
	SizeGB int
	Speed  DiskSpeed
}

// String renders the disk the way it appears in plans and reports, e.g. "100 ECONOMIC".
func (d DiskSpec) String() string {
	return fmt.Sprintf("%d %s", d.SizeGB, d.Speed)
}

// Settings is the validated form of NodeSettings. Nil or empty fields mean
// "leave as-is".
type Settings struct {
	CPU        *int
	Memory     *int
	Disks      []DiskSpec
	Monitoring string
	Glue       string
}

// IsEmpty reports whether nothing is left to apply.
func (s Settings) IsEmpty() bool {
	return s.CPU == nil && s.Memory == nil && len(s.Disks) == 0 && s.Monitoring == "" && s.Glue == ""
}

// ParseDisk parses "<size> [<speed>]". Speed is case-insensitive and
// defaults to STANDARD.
func ParseDisk(spec string) (DiskSpec, error) {
	fields := strings.Fields(spec)
	if len(fields) == 0 || len(fields) > 2 {
		return DiskSpec{}, ValidationError.New("disk %q should be '<size> [<speed>]'", spec)
	}

	size, err := strconv.Atoi(fields[0])
	if err != nil {
		return DiskSpec{}, ValidationError.Wrap(err, "disk %q has no integer size", spec)
	}

	speed := SpeedStandard
	if len(fields) == 2 {
		speed = DiskSpeed(strings.ToUpper(fields[1]))
	}

	if size < MinDiskSize || size > MaxDiskSize {
		return DiskSpec{}, ValidationError.New("disk size should be between %d and %d, got %d", MinDiskSize, MaxDiskSize, size)
	}
	if !ValidDiskSpeeds[speed] {
		return DiskSpec{}, ValidationError.New("disk speed should be 'standard' or 'highperformance' or 'economic', got %q", fields[1])
	}

	return DiskSpec{SizeGB: size, Speed: speed}, nil
}

// ValidateSettings turns raw node settings into typed values. Rejected
// values are logged as warnings and treated as absent; no error escapes.
func ValidateSettings(raw NodeSettings, logger zerolog.Logger) Settings {
	var s Settings

	if raw.CPU != "" {
		if v, err := parseBounded("cpu", raw.CPU, MinCPU, MaxCPU); err != nil {
			logger.Warn().Err(err).Str("setting", "cpu").Msg("ignoring declared value")
		} else {
			s.CPU = &v
		}
	}

	if raw.Memory != "" {
		if v, err := parseBounded("memory", raw.Memory, MinMemory, MaxMemory); err != nil {
			logger.Warn().Err(err).Str("setting", "memory").Msg("ignoring declared value")
		} else {
			s.Memory = &v
		}
	}

	for _, item := range raw.Disks {
		disk, err := ParseDisk(item)
		if err != nil {
			logger.Warn().Err(err).Str("setting", "disk").Msg("ignoring declared value")
			continue
		}
		s.Disks = append(s.Disks, disk)
	}

	s.Monitoring = strings.ToUpper(strings.TrimSpace(raw.Monitoring))
	s.Glue = strings.TrimSpace(raw.Glue)

	return s
}

func parseBounded(name, raw string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, ValidationError.Wrap(err, "%s should be an integer, got %q", name, raw)
	}
	if v < lo || v > hi {
		return 0, ValidationError.New("%s should be between %d and %d, got %d", name, lo, hi, v)
	}
	return v, nil
}
