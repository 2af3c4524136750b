// Package scenario produces host and VM records for placement runs and
// demos, either randomized within the calibrated ranges or as the fixed
// reference scenario.
package scenario

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/vmplace/vmplace/internal/domain"
)

// Generator produces host/VM scenario data. Seeded generators are
// deterministic, which the tests rely on.
type Generator struct {
	rng *rand.Rand
}

// New creates a generator. Seed 0 means time-seeded.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Hosts returns n random hosts within the calibrated ranges.
func (g *Generator) Hosts(n int) []domain.Host {
	hosts := make([]domain.Host, 0, n)
	for i := 0; i < n; i++ {
		hosts = append(hosts, domain.Host{
			ID:          fmt.Sprintf("H%d", i+1),
			CPUCapacity: float64(50 + g.rng.Intn(71)),  // 50..120
			RAMCapacity: float64(64 + g.rng.Intn(65)),  // 64..128
			Energy:      round4(0.3 + g.rng.Float64()*1.2), // 0.3..1.5
			Cost:        round4(0.2 + g.rng.Float64()*0.6), // 0.2..0.8
		})
	}
	return hosts
}

// VMs returns n random VM demands.
func (g *Generator) VMs(n int) []domain.VMDemand {
	vms := make([]domain.VMDemand, 0, n)
	for i := 0; i < n; i++ {
		vms = append(vms, domain.VMDemand{
			ID:        fmt.Sprintf("VM%d", i+1),
			CPUDemand: float64(4 + g.rng.Intn(17)), // 4..20
			RAMDemand: float64(8 + g.rng.Intn(25)), // 8..32
		})
	}
	return vms
}

// TelemetrySample returns one random telemetry measurement, shaped like
// the simulated VM feed.
func (g *Generator) TelemetrySample() domain.TelemetrySample {
	return domain.TelemetrySample{
		VM:        fmt.Sprintf("VM%d", 1+g.rng.Intn(10)),
		CPU:       float64(4 + g.rng.Intn(17)),
		Memory:    float64(8 + g.rng.Intn(25)),
		NetworkIO: g.rng.Float64() * 20,
		Power:     5 + g.rng.Float64()*115,
	}
}

// FixedHosts returns the fixed five-host reference scenario.
func FixedHosts() []domain.Host {
	return []domain.Host{
		{ID: "H1", CPUCapacity: 92, RAMCapacity: 114, Energy: 0.5986, Cost: 0.3664},
		{ID: "H2", CPUCapacity: 63, RAMCapacity: 102, Energy: 0.635, Cost: 0.3325},
		{ID: "H3", CPUCapacity: 79, RAMCapacity: 116, Energy: 0.532, Cost: 0.7336},
		{ID: "H4", CPUCapacity: 78, RAMCapacity: 100, Energy: 1.0421, Cost: 0.3826},
		{ID: "H5", CPUCapacity: 98, RAMCapacity: 116, Energy: 1.4076, Cost: 0.2744},
	}
}

// FixedVMs returns the fixed three-VM reference scenario.
func FixedVMs() []domain.VMDemand {
	return []domain.VMDemand{
		{ID: "VM1", CPUDemand: 8, RAMDemand: 24},
		{ID: "VM2", CPUDemand: 16, RAMDemand: 20},
		{ID: "VM3", CPUDemand: 15, RAMDemand: 22},
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
