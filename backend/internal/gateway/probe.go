package gateway

import (
	"context"
	"log"
	"time"

	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// BackendHealthService is the gRPC health service name tracking the backend.
const BackendHealthService = "scheduleweb.Backend"

// Pinger is satisfied by backendapi.Client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Probe mirrors backend reachability into a gRPC health server.
type Probe struct {
	backend Pinger
	health  *health.Server
	timeout time.Duration
	healthy bool
}

func NewProbe(backend Pinger, hs *health.Server, timeout time.Duration) *Probe {
	return &Probe{backend: backend, health: hs, timeout: timeout}
}

// Check pings once and updates the status. A nil backend (offline mode)
// reports NOT_SERVING.
func (p *Probe) Check(ctx context.Context) bool {
	ok := false
	if p.backend != nil {
		pingCtx, cancel := context.WithTimeout(ctx, p.timeout)
		err := p.backend.Ping(pingCtx)
		cancel()
		if err != nil {
			log.Printf("WARN: backend probe failed: %v", err)
		}
		ok = err == nil
	}

	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if ok {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	if ok != p.healthy {
		log.Printf("INFO: backend health is now %s", status)
	}
	p.healthy = ok
	p.health.SetServingStatus(BackendHealthService, status)
	return ok
}

// Run checks immediately and then on every tick until ctx is done.
func (p *Probe) Run(ctx context.Context, interval time.Duration) {
	p.Check(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Check(ctx)
		}
	}
}
