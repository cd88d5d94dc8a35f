package status

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

const probeTimeout = 2 * time.Second

// Probe checks one dependency. A nil error means the component is healthy.
type Probe func(ctx context.Context) error

// Report is the GET /status payload.
type Report struct {
	Status     string            `json:"status"` // ok | degraded
	Uptime     string            `json:"uptime"`
	Goroutines int               `json:"goroutines"`
	CPUPercent float64           `json:"cpu_percent"`
	MemPercent float64           `json:"mem_percent"`
	Components map[string]string `json:"components"`
}

type Service struct {
	started time.Time
	order   []string
	probes  map[string]Probe
}

func NewService() *Service {
	return &Service{
		started: time.Now(),
		probes:  make(map[string]Probe),
	}
}

// Register adds a named dependency probe. Not safe for concurrent use,
// call it during wiring only.
func (s *Service) Register(name string, probe Probe) {
	if _, dup := s.probes[name]; !dup {
		s.order = append(s.order, name)
	}
	s.probes[name] = probe
}

func (s *Service) Check(ctx context.Context) Report {
	r := Report{
		Status:     "ok",
		Uptime:     time.Since(s.started).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		Components: make(map[string]string, len(s.probes)),
	}

	if pct, err := cpuUsage(); err == nil {
		r.CPUPercent = pct
	}
	if pct, err := memoryUsage(); err == nil {
		r.MemPercent = pct
	}

	for _, name := range s.order {
		pctx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := s.probes[name](pctx)
		cancel()

		if err != nil {
			r.Components[name] = err.Error()
			r.Status = "degraded"
			continue
		}
		r.Components[name] = "ok"
	}
	return r
}

// cpuUsage returns the current CPU usage as a percentage.
func cpuUsage() (float64, error) {
	percentages, err := cpu.Percent(0, false)
	if err != nil {
		return 0, err
	}
	if len(percentages) == 0 {
		return 0, fmt.Errorf("could not get CPU usage")
	}
	return percentages[0], nil
}

// memoryUsage returns the current memory usage as a percentage.
func memoryUsage() (float64, error) {
	virtualMem, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return virtualMem.UsedPercent, nil
}
