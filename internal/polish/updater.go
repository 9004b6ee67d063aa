package polish

import (
	"context"
	"strings"

	"github.com/imamik/fittings/internal/config"
	hcloud_internal "github.com/imamik/fittings/internal/platform/hcloud"
	"github.com/imamik/fittings/internal/util/labels"
)

// Updater applies settings to a live node. Every method returns an error
// classified as config.TransientProviderError or
// config.PermanentProviderError.
type Updater interface {
	// Resize changes cpu and/or memory in one call and reports whether the
	// node changed. Nil fields are left as-is.
	Resize(ctx context.Context, node Node, cpu, memory *int) (bool, error)
	// AddStorage attaches one additional disk.
	AddStorage(ctx context.Context, node Node, disk config.DiskSpec) error
	// EnableMonitoring sets the monitoring level and reports whether it changed.
	EnableMonitoring(ctx context.Context, node Node, level string) (bool, error)
	// AttachToDomain joins the node to a network and reports whether it was attached.
	AttachToDomain(ctx context.Context, node Node, domain string) (bool, error)
	// Disks lists the additional disks already attached to the node.
	Disks(ctx context.Context, node Node) ([]config.DiskSpec, error)
}

// CloudUpdater implements Updater on top of the HCloud API.
type CloudUpdater struct {
	api hcloud_internal.NodeAPI
}

var _ Updater = (*CloudUpdater)(nil)

// NewCloudUpdater creates a CloudUpdater.
func NewCloudUpdater(api hcloud_internal.NodeAPI) *CloudUpdater {
	return &CloudUpdater{api: api}
}

// Resize implements Updater.
func (u *CloudUpdater) Resize(ctx context.Context, node Node, cpu, memory *int) (bool, error) {
	changed, err := u.api.ResizeServer(ctx, node.Server, hcloud_internal.ResizeOpts{Cores: cpu, MemoryGB: memory})
	if err != nil {
		return false, classify(err, "failed to resize %s", node.Name)
	}
	return changed, nil
}

// AddStorage implements Updater.
func (u *CloudUpdater) AddStorage(ctx context.Context, node Node, disk config.DiskSpec) error {
	if _, err := u.api.AddVolume(ctx, node.Server, disk.SizeGB, string(disk.Speed)); err != nil {
		return classify(err, "failed to add %s disk to %s", disk, node.Name)
	}
	return nil
}

// EnableMonitoring implements Updater.
func (u *CloudUpdater) EnableMonitoring(ctx context.Context, node Node, level string) (bool, error) {
	changed, err := u.api.SetServerLabel(ctx, node.Server, labels.KeyMonitoring, strings.ToLower(level))
	if err != nil {
		return false, classify(err, "failed to enable %s monitoring on %s", level, node.Name)
	}
	return changed, nil
}

// AttachToDomain implements Updater.
func (u *CloudUpdater) AttachToDomain(ctx context.Context, node Node, domain string) (bool, error) {
	attached, err := u.api.AttachServerToNetwork(ctx, node.Server, domain)
	if err != nil {
		return false, classify(err, "failed to attach %s to %s", node.Name, domain)
	}
	return attached, nil
}

// Disks implements Updater. Volumes without a speed label count as STANDARD.
func (u *CloudUpdater) Disks(ctx context.Context, node Node) ([]config.DiskSpec, error) {
	volumes, err := u.api.ServerVolumes(ctx, node.Server)
	if err != nil {
		return nil, classify(err, "failed to list disks of %s", node.Name)
	}

	disks := make([]config.DiskSpec, 0, len(volumes))
	for _, v := range volumes {
		speed := config.DiskSpeed(strings.ToUpper(v.Labels[labels.KeySpeed]))
		if speed == "" {
			speed = config.SpeedStandard
		}
		disks = append(disks, config.DiskSpec{SizeGB: v.Size, Speed: speed})
	}
	return disks, nil
}

func classify(err error, format string, args ...interface{}) error {
	if hcloud_internal.IsResourceBusy(err) {
		return config.TransientProviderError.Wrap(err, format, args...)
	}
	return config.PermanentProviderError.Wrap(err, format, args...)
}
