package hcloud

import (
	"context"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// MockClient is a mock implementation of NodeAPI.
// Unset functions behave like a control plane where every call succeeds
// and nothing needs to change.
type MockClient struct {
	GetServerByNameFunc       func(ctx context.Context, name string) (*hcloud.Server, error)
	ResizeServerFunc          func(ctx context.Context, server *hcloud.Server, opts ResizeOpts) (bool, error)
	SetServerLabelFunc        func(ctx context.Context, server *hcloud.Server, key, value string) (bool, error)
	ServerVolumesFunc         func(ctx context.Context, server *hcloud.Server) ([]*hcloud.Volume, error)
	AddVolumeFunc             func(ctx context.Context, server *hcloud.Server, sizeGB int, speed string) (*hcloud.Volume, error)
	AttachServerToNetworkFunc func(ctx context.Context, server *hcloud.Server, networkName string) (bool, error)
}

var _ NodeAPI = (*MockClient)(nil)

// GetServerByName implements ServerManager.
func (m *MockClient) GetServerByName(ctx context.Context, name string) (*hcloud.Server, error) {
	if m.GetServerByNameFunc != nil {
		return m.GetServerByNameFunc(ctx, name)
	}
	return nil, nil
}

// ResizeServer implements ServerManager.
func (m *MockClient) ResizeServer(ctx context.Context, server *hcloud.Server, opts ResizeOpts) (bool, error) {
	if m.ResizeServerFunc != nil {
		return m.ResizeServerFunc(ctx, server, opts)
	}
	return false, nil
}

// SetServerLabel implements ServerManager.
func (m *MockClient) SetServerLabel(ctx context.Context, server *hcloud.Server, key, value string) (bool, error) {
	if m.SetServerLabelFunc != nil {
		return m.SetServerLabelFunc(ctx, server, key, value)
	}
	return false, nil
}

// ServerVolumes implements VolumeManager.
func (m *MockClient) ServerVolumes(ctx context.Context, server *hcloud.Server) ([]*hcloud.Volume, error) {
	if m.ServerVolumesFunc != nil {
		return m.ServerVolumesFunc(ctx, server)
	}
	return nil, nil
}

// AddVolume implements VolumeManager.
func (m *MockClient) AddVolume(ctx context.Context, server *hcloud.Server, sizeGB int, speed string) (*hcloud.Volume, error) {
	if m.AddVolumeFunc != nil {
		return m.AddVolumeFunc(ctx, server, sizeGB, speed)
	}
	return &hcloud.Volume{Size: sizeGB, Server: server}, nil
}

// AttachServerToNetwork implements NetworkManager.
func (m *MockClient) AttachServerToNetwork(ctx context.Context, server *hcloud.Server, networkName string) (bool, error) {
	if m.AttachServerToNetworkFunc != nil {
		return m.AttachServerToNetworkFunc(ctx, server, networkName)
	}
	return false, nil
}
