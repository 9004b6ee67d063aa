package hcloud

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/imamik/fittings/internal/config"
	"github.com/imamik/fittings/internal/util/labels"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/hetznercloud/hcloud-go/v2/hcloud/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testServer creates an httptest server that can be used to mock Hetzner Cloud API responses.
type testServer struct {
	server *httptest.Server
	mux    *http.ServeMux

	mu    sync.Mutex
	calls []string
}

// newTestServer creates a new test server for mocking the Hetzner Cloud API.
func newTestServer(t *testing.T) *testServer {
	ts := &testServer{mux: http.NewServeMux()}
	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.mu.Lock()
		ts.calls = append(ts.calls, r.Method+" "+r.URL.Path)
		ts.mu.Unlock()
		ts.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.server.Close)

	// action polling, in case the client decides to poll finished actions
	ts.mux.HandleFunc("/actions", func(w http.ResponseWriter, r *http.Request) {
		resp := schema.ActionListResponse{Actions: []schema.Action{}}
		for _, raw := range r.URL.Query()["id"] {
			id, _ := strconv.ParseInt(raw, 10, 64)
			resp.Actions = append(resp.Actions, schema.Action{ID: id, Status: "success", Progress: 100})
		}
		jsonResponse(w, http.StatusOK, resp)
	})
	return ts
}

// realClient returns a RealClient configured to use the test server.
func (ts *testServer) realClient() *RealClient {
	return NewRealClient("test-token",
		WithHCloudClient(hcloud.NewClient(
			hcloud.WithToken("test-token"),
			hcloud.WithEndpoint(ts.server.URL),
		)),
		WithTimeouts(&config.Timeouts{
			Action:        10 * time.Second,
			RetryInterval: 10 * time.Millisecond,
		}),
	)
}

// handleFunc registers a handler for a specific path.
func (ts *testServer) handleFunc(pattern string, handler http.HandlerFunc) {
	ts.mux.HandleFunc(pattern, handler)
}

// recorded returns the requests seen so far as "METHOD /path", without action polling.
func (ts *testServer) recorded() []string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	var out []string
	for _, c := range ts.calls {
		if !strings.HasPrefix(c, "GET /actions") {
			out = append(out, c)
		}
	}
	return out
}

// actionOK answers an action endpoint with an already finished action.
func (ts *testServer) actionOK(pattern string, id int64) {
	ts.handleFunc(pattern, func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusCreated, schema.ServerActionPoweronResponse{
			Action: schema.Action{ID: id, Status: "success", Progress: 100},
		})
	})
}

// jsonResponse writes a JSON response with the given status code and body.
func jsonResponse(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func apiError(w http.ResponseWriter, statusCode int, code, message string) {
	jsonResponse(w, statusCode, schema.ErrorResponse{
		Error: schema.Error{Code: code, Message: message},
	})
}

func serverType(id int64, name string, cores int, memory float32) schema.ServerType {
	return schema.ServerType{ID: id, Name: name, Cores: cores, Memory: memory, Architecture: "x86", CPUType: "shared"}
}

func testHCloudServer(status hcloud.ServerStatus) *hcloud.Server {
	return &hcloud.Server{
		ID:     42,
		Name:   "web-1",
		Status: status,
		ServerType: &hcloud.ServerType{
			ID: 1, Name: "cx22", Cores: 2, Memory: 4,
			Architecture: hcloud.ArchitectureX86, CPUType: hcloud.CPUTypeShared,
		},
		Labels: map[string]string{"env": "prod"},
	}
}

func TestRealClient_GetServerByName(t *testing.T) {
	ts := newTestServer(t)
	ts.handleFunc("/servers", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") == "web-1" {
			jsonResponse(w, http.StatusOK, schema.ServerListResponse{
				Servers: []schema.Server{{ID: 42, Name: "web-1", Status: "running"}},
			})
			return
		}
		jsonResponse(w, http.StatusOK, schema.ServerListResponse{Servers: []schema.Server{}})
	})

	client := ts.realClient()
	ctx := context.Background()

	t.Run("server found", func(t *testing.T) {
		server, err := client.GetServerByName(ctx, "web-1")
		require.NoError(t, err)
		require.NotNil(t, server)
		assert.Equal(t, int64(42), server.ID)
	})

	t.Run("server not found", func(t *testing.T) {
		server, err := client.GetServerByName(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, server)
	})
}

func TestRealClient_ResizeServer_RunningServer(t *testing.T) {
	ts := newTestServer(t)
	ts.handleFunc("/server_types", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, schema.ServerTypeListResponse{
			ServerTypes: []schema.ServerType{
				serverType(1, "cx22", 2, 4),
				serverType(2, "cx32", 4, 8),
				serverType(3, "cx42", 8, 16),
			},
		})
	})

	var changedTo interface{}
	ts.handleFunc("/servers/42/actions/change_type", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		changedTo = req["server_type"]
		jsonResponse(w, http.StatusCreated, schema.ServerActionChangeTypeResponse{
			Action: schema.Action{ID: 11, Status: "success", Progress: 100},
		})
	})
	ts.actionOK("/servers/42/actions/poweroff", 10)
	ts.actionOK("/servers/42/actions/poweron", 12)

	client := ts.realClient()
	changed, err := client.ResizeServer(context.Background(), testHCloudServer(hcloud.ServerStatusRunning), ResizeOpts{
		Cores:    hcloud.Ptr(4),
		MemoryGB: hcloud.Ptr(8),
	})

	require.NoError(t, err)
	assert.True(t, changed)
	// the client sends the server type by ID when it knows it
	assert.Contains(t, []interface{}{float64(2), "cx32"}, changedTo)
	assert.Equal(t, []string{
		"GET /server_types",
		"POST /servers/42/actions/poweroff",
		"POST /servers/42/actions/change_type",
		"POST /servers/42/actions/poweron",
	}, ts.recorded())
}

func TestRealClient_ResizeServer_PowersOnAfterFailedChange(t *testing.T) {
	ts := newTestServer(t)
	ts.handleFunc("/server_types", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, schema.ServerTypeListResponse{
			ServerTypes: []schema.ServerType{serverType(1, "cx22", 2, 4), serverType(2, "cx32", 4, 8)},
		})
	})
	ts.actionOK("/servers/42/actions/poweroff", 10)
	ts.handleFunc("/servers/42/actions/change_type", func(w http.ResponseWriter, _ *http.Request) {
		apiError(w, http.StatusLocked, "locked", "server is locked by another action")
	})
	ts.actionOK("/servers/42/actions/poweron", 12)

	client := ts.realClient()
	server := testHCloudServer(hcloud.ServerStatusRunning)
	changed, err := client.ResizeServer(context.Background(), server, ResizeOpts{
		Cores:    hcloud.Ptr(4),
		MemoryGB: hcloud.Ptr(8),
	})

	require.Error(t, err)
	assert.False(t, changed)
	assert.True(t, IsResourceBusy(err))
	assert.Equal(t, "cx22", server.ServerType.Name)
	assert.Equal(t, []string{
		"GET /server_types",
		"POST /servers/42/actions/poweroff",
		"POST /servers/42/actions/change_type",
		"POST /servers/42/actions/poweron",
	}, ts.recorded())
}

func TestRealClient_ResizeServer_PowerOnFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.handleFunc("/server_types", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, schema.ServerTypeListResponse{
			ServerTypes: []schema.ServerType{serverType(1, "cx22", 2, 4), serverType(2, "cx32", 4, 8)},
		})
	})
	ts.actionOK("/servers/42/actions/poweroff", 10)
	ts.actionOK("/servers/42/actions/change_type", 11)
	ts.handleFunc("/servers/42/actions/poweron", func(w http.ResponseWriter, _ *http.Request) {
		apiError(w, http.StatusServiceUnavailable, "unavailable", "service unavailable")
	})

	client := ts.realClient()
	changed, err := client.ResizeServer(context.Background(), testHCloudServer(hcloud.ServerStatusRunning), ResizeOpts{
		Cores:    hcloud.Ptr(4),
		MemoryGB: hcloud.Ptr(8),
	})

	require.Error(t, err)
	assert.False(t, changed)
	assert.Contains(t, err.Error(), "failed to power on server")
}

func TestRealClient_ResizeServer_StoppedServerStaysOff(t *testing.T) {
	ts := newTestServer(t)
	ts.handleFunc("/server_types", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, schema.ServerTypeListResponse{
			ServerTypes: []schema.ServerType{serverType(1, "cx22", 2, 4), serverType(4, "cx22-big", 2, 8)},
		})
	})
	ts.actionOK("/servers/42/actions/change_type", 11)

	client := ts.realClient()
	changed, err := client.ResizeServer(context.Background(), testHCloudServer(hcloud.ServerStatusOff), ResizeOpts{
		MemoryGB: hcloud.Ptr(8),
	})

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"GET /server_types", "POST /servers/42/actions/change_type"}, ts.recorded())
}

func TestRealClient_ResizeServer_AlreadyMatching(t *testing.T) {
	ts := newTestServer(t)
	client := ts.realClient()

	changed, err := client.ResizeServer(context.Background(), testHCloudServer(hcloud.ServerStatusRunning), ResizeOpts{
		Cores:    hcloud.Ptr(2),
		MemoryGB: hcloud.Ptr(4),
	})

	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, ts.recorded())

	changed, err = client.ResizeServer(context.Background(), testHCloudServer(hcloud.ServerStatusRunning), ResizeOpts{})
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestRealClient_ResizeServer_NoMatchingType(t *testing.T) {
	ts := newTestServer(t)
	ts.handleFunc("/server_types", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, schema.ServerTypeListResponse{
			ServerTypes: []schema.ServerType{serverType(1, "cx22", 2, 4)},
		})
	})

	client := ts.realClient()
	_, err := client.ResizeServer(context.Background(), testHCloudServer(hcloud.ServerStatusRunning), ResizeOpts{
		Cores: hcloud.Ptr(32),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 cores")
	assert.Equal(t, []string{"GET /server_types"}, ts.recorded())
}

func TestPickServerType_PrefersSameCPUType(t *testing.T) {
	current := &hcloud.ServerType{Architecture: hcloud.ArchitectureX86, CPUType: hcloud.CPUTypeDedicated}
	types := []*hcloud.ServerType{
		{Name: "a-shared", Cores: 4, Memory: 16, Architecture: hcloud.ArchitectureX86, CPUType: hcloud.CPUTypeShared},
		{Name: "b-dedicated", Cores: 4, Memory: 16, Architecture: hcloud.ArchitectureX86, CPUType: hcloud.CPUTypeDedicated},
		{Name: "c-arm", Cores: 4, Memory: 16, Architecture: hcloud.ArchitectureARM, CPUType: hcloud.CPUTypeDedicated},
	}

	got := pickServerType(types, current, 4, 16)
	require.NotNil(t, got)
	assert.Equal(t, "b-dedicated", got.Name)

	assert.Nil(t, pickServerType(types, current, 4, 32))
}

func TestRealClient_SetServerLabel(t *testing.T) {
	ts := newTestServer(t)
	var sent map[string]string
	ts.handleFunc("/servers/42", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		var req struct {
			Labels map[string]string `json:"labels"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		sent = req.Labels
		jsonResponse(w, http.StatusOK, schema.ServerUpdateResponse{
			Server: schema.Server{ID: 42, Name: "web-1", Labels: sent},
		})
	})

	client := ts.realClient()
	server := testHCloudServer(hcloud.ServerStatusRunning)

	changed, err := client.SetServerLabel(context.Background(), server, labels.KeyMonitoring, "ESSENTIALS")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, map[string]string{"env": "prod", labels.KeyMonitoring: "ESSENTIALS"}, sent)
	assert.Equal(t, "ESSENTIALS", server.Labels[labels.KeyMonitoring])

	// second call sees the label already in place
	changed, err = client.SetServerLabel(context.Background(), server, labels.KeyMonitoring, "ESSENTIALS")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, ts.recorded(), 1)
}

func TestRealClient_ServerVolumes(t *testing.T) {
	ts := newTestServer(t)
	ts.handleFunc("/volumes", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "fittings.io/node=web-1", r.URL.Query().Get("label_selector"))
		jsonResponse(w, http.StatusOK, schema.VolumeListResponse{
			Volumes: []schema.Volume{
				{ID: 1, Name: "web-1-disk-1", Size: 100, Server: hcloud.Ptr(int64(42)), Labels: map[string]string{labels.KeySpeed: "economic"}},
				{ID: 2, Name: "web-1-disk-2", Size: 50, Server: nil},
				{ID: 3, Name: "web-1-disk-3", Size: 20, Server: hcloud.Ptr(int64(7))},
			},
		})
	})

	client := ts.realClient()
	volumes, err := client.ServerVolumes(context.Background(), testHCloudServer(hcloud.ServerStatusRunning))

	require.NoError(t, err)
	require.Len(t, volumes, 1)
	assert.Equal(t, "web-1-disk-1", volumes[0].Name)
	assert.Equal(t, 100, volumes[0].Size)
}

// volumeCreateBody is the part of POST /volumes the tests look at.
type volumeCreateBody struct {
	Name      string            `json:"name"`
	Size      int               `json:"size"`
	Server    *int64            `json:"server"`
	Labels    map[string]string `json:"labels"`
	Automount *bool             `json:"automount"`
}

func TestRealClient_AddVolume(t *testing.T) {
	ts := newTestServer(t)
	var created volumeCreateBody
	ts.handleFunc("/volumes", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jsonResponse(w, http.StatusOK, schema.VolumeListResponse{
				Volumes: []schema.Volume{{ID: 1, Name: "web-1-disk-1", Size: 10}},
			})
			return
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
		jsonResponse(w, http.StatusCreated, schema.VolumeCreateResponse{
			Volume:      schema.Volume{ID: 9, Name: created.Name, Size: created.Size, Server: hcloud.Ptr(int64(42))},
			Action:      &schema.Action{ID: 20, Status: "success", Progress: 100},
			NextActions: []schema.Action{{ID: 21, Status: "success", Progress: 100}},
		})
	})

	client := ts.realClient()
	volume, err := client.AddVolume(context.Background(), testHCloudServer(hcloud.ServerStatusRunning), 100, "ECONOMIC")

	require.NoError(t, err)
	assert.Equal(t, int64(9), volume.ID)
	assert.Equal(t, "web-1-disk-2", created.Name)
	assert.Equal(t, 100, created.Size)
	require.NotNil(t, created.Server)
	assert.Equal(t, int64(42), *created.Server)
	require.NotNil(t, created.Automount)
	assert.False(t, *created.Automount)
	assert.Equal(t, "economic", created.Labels[labels.KeySpeed])
	assert.Equal(t, "web-1", created.Labels[labels.KeyNode])
}

func TestRealClient_AddVolume_LockedServerIsBusy(t *testing.T) {
	ts := newTestServer(t)
	ts.handleFunc("/volumes", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jsonResponse(w, http.StatusOK, schema.VolumeListResponse{Volumes: []schema.Volume{}})
			return
		}
		apiError(w, http.StatusLocked, "locked", "server is locked by another action")
	})

	client := ts.realClient()
	_, err := client.AddVolume(context.Background(), testHCloudServer(hcloud.ServerStatusRunning), 10, "STANDARD")

	require.Error(t, err)
	assert.True(t, IsResourceBusy(err))
}

func TestRealClient_AddVolume_RetryReusesDetachedVolume(t *testing.T) {
	ts := newTestServer(t)
	var (
		mu      sync.Mutex
		created *schema.Volume
	)
	ts.handleFunc("/volumes", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if r.Method == http.MethodGet {
			resp := schema.VolumeListResponse{Volumes: []schema.Volume{}}
			if created != nil {
				resp.Volumes = append(resp.Volumes, *created)
			}
			jsonResponse(w, http.StatusOK, resp)
			return
		}
		var req volumeCreateBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		// the volume exists, but its attach action fails on the locked server
		created = &schema.Volume{ID: 9, Name: req.Name, Size: req.Size, Labels: req.Labels}
		jsonResponse(w, http.StatusCreated, schema.VolumeCreateResponse{
			Volume: *created,
			Action: &schema.Action{ID: 20, Status: "success", Progress: 100},
			NextActions: []schema.Action{{
				ID:     21,
				Status: "error",
				Error:  &schema.ActionError{Code: "locked", Message: "server is locked by another action"},
			}},
		})
	})
	ts.actionOK("/volumes/9/actions/attach", 22)

	client := ts.realClient()
	server := testHCloudServer(hcloud.ServerStatusRunning)

	_, err := client.AddVolume(context.Background(), server, 100, "ECONOMIC")
	require.Error(t, err)
	assert.True(t, IsResourceBusy(err))

	volume, err := client.AddVolume(context.Background(), server, 100, "ECONOMIC")
	require.NoError(t, err)
	assert.Equal(t, int64(9), volume.ID)
	assert.Same(t, server, volume.Server)
	assert.Equal(t, []string{
		"GET /volumes",
		"POST /volumes",
		"GET /volumes",
		"POST /volumes/9/actions/attach",
	}, ts.recorded())
}

func TestDetachedVolume(t *testing.T) {
	volumes := []*hcloud.Volume{
		{ID: 1, Size: 100, Server: &hcloud.Server{ID: 42}, Labels: map[string]string{labels.KeySpeed: "economic"}},
		{ID: 2, Size: 100, Labels: map[string]string{labels.KeySpeed: "standard"}},
		{ID: 3, Size: 100, Labels: map[string]string{labels.KeySpeed: "economic"}},
	}

	got := detachedVolume(volumes, 100, "ECONOMIC")
	require.NotNil(t, got)
	assert.Equal(t, int64(3), got.ID)
	assert.Nil(t, detachedVolume(volumes, 50, "ECONOMIC"))
	assert.Nil(t, detachedVolume(volumes, 100, "HIGHPERFORMANCE"))
}

func TestRealClient_AddVolume_InvalidInputIsPermanent(t *testing.T) {
	ts := newTestServer(t)
	ts.handleFunc("/volumes", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jsonResponse(w, http.StatusOK, schema.VolumeListResponse{Volumes: []schema.Volume{}})
			return
		}
		apiError(w, http.StatusBadRequest, "invalid_input", "size is too large")
	})

	client := ts.realClient()
	_, err := client.AddVolume(context.Background(), testHCloudServer(hcloud.ServerStatusRunning), 10, "STANDARD")

	require.Error(t, err)
	assert.False(t, IsResourceBusy(err))
	assert.Contains(t, err.Error(), "size is too large")
}

func TestRealClient_AttachServerToNetwork(t *testing.T) {
	ts := newTestServer(t)
	ts.handleFunc("/networks", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") == "backend-net" {
			jsonResponse(w, http.StatusOK, schema.NetworkListResponse{
				Networks: []schema.Network{{ID: 5, Name: "backend-net", IPRange: "10.0.0.0/16"}},
			})
			return
		}
		jsonResponse(w, http.StatusOK, schema.NetworkListResponse{Networks: []schema.Network{}})
	})
	ts.actionOK("/servers/42/actions/attach_to_network", 30)

	client := ts.realClient()
	ctx := context.Background()

	t.Run("attaches once", func(t *testing.T) {
		server := testHCloudServer(hcloud.ServerStatusRunning)

		attached, err := client.AttachServerToNetwork(ctx, server, "backend-net")
		require.NoError(t, err)
		assert.True(t, attached)

		attached, err = client.AttachServerToNetwork(ctx, server, "backend-net")
		require.NoError(t, err)
		assert.False(t, attached)
	})

	t.Run("unknown network", func(t *testing.T) {
		_, err := client.AttachServerToNetwork(ctx, testHCloudServer(hcloud.ServerStatusRunning), "nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "network not found")
	})
}
