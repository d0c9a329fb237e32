package piphub

import (
	"context"
	"net/http"
	"time"

	"github.com/open-control-systems/miniboot-hub/components/boot/bootcfg"
	"github.com/open-control-systems/miniboot-hub/components/core"
	"github.com/open-control-systems/miniboot-hub/components/eeprom/eepcore"
	"github.com/open-control-systems/miniboot-hub/components/http/htcore"
	"github.com/open-control-systems/miniboot-hub/components/system/syssched"
)

// PipelineParams provides various configuration options for Pipeline.
type PipelineParams struct {
	// BaseOffset - start of the configuration region within the device.
	BaseOffset uint32

	// RestoreInterval - how often to retry the timestamp restoring until it
	// succeeds.
	RestoreInterval time.Duration

	// ServerParams - HTTP server configuration.
	ServerParams htcore.ServerParams
}

// Pipeline assembles an opened EEPROM device into a running hub: the
// timestamp store, the boot-time restoring task and the HTTP API.
type Pipeline struct {
	store    *bootcfg.TimestampStore
	restorer *bootcfg.TimestampRestorer
	runner   *syssched.AsyncTaskRunner
	server   *htcore.Server
}

// NewPipeline initializes all components associated with the hub.
//
// Parameters:
//   - ctx - parent context.
//   - closer - to register handlers for the underlying resource deallocation.
//   - device - opened non-volatile storage device.
//   - params - various configuration options.
func NewPipeline(
	ctx context.Context,
	closer *core.FanoutCloser,
	device eepcore.Device,
	params PipelineParams,
) (*Pipeline, error) {
	if params.RestoreInterval == 0 {
		params.RestoreInterval = time.Second * 5
	}

	store, err := bootcfg.NewTimestampStore(device, params.BaseOffset)
	if err != nil {
		return nil, err
	}

	restorer := bootcfg.NewTimestampRestorer(ctx, store)

	runner := syssched.NewAsyncTaskRunner(
		ctx,
		restorer,
		restorer,
		syssched.AsyncTaskRunnerParams{
			UpdateInterval: params.RestoreInterval,
			ExitOnSuccess:  true,
		},
	)
	closer.Add("bootcfg-restore-task", runner)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/timestamp",
		htcore.NewTimestampHandler(bootcfg.NewWriteThroughTimestamp(ctx, store, restorer)))

	server, err := htcore.NewServer(mux, params.ServerParams)
	if err != nil {
		return nil, err
	}
	closer.Add("http-server", server)

	return &Pipeline{
		store:    store,
		restorer: restorer,
		runner:   runner,
		server:   server,
	}, nil
}

// GetTimestamper returns the component to access the restored timestamp.
func (p *Pipeline) GetTimestamper() bootcfg.Timestamper {
	return p.restorer
}

// URL returns base URL of the hub HTTP API.
func (p *Pipeline) URL() string {
	return p.server.URL()
}

// Start starts the timestamp restoring and the HTTP API serving.
func (p *Pipeline) Start() error {
	if err := p.runner.Start(); err != nil {
		return err
	}

	p.server.Start()

	core.LogInf.Printf("piphub: serving HTTP API: URL=%s\n", p.server.URL())

	return nil
}
