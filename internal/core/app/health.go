package app

import (
	"context"
	"dts2as/internal/shared/util"
	"fmt"
	"os"
	"time"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

// HealthService reports whether a run could start: grammar, baseline,
// inputs and output directory.
type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}
	degrade := func(component, detail string) {
		status.Status = "degraded"
		status.Components[component] = detail
	}

	if s.app.Parser != nil && len(s.app.Parser.SupportedSuffixes()) > 0 {
		status.Components["parser"] = fmt.Sprintf("ok (%v)", s.app.Parser.SupportedSuffixes())
	} else {
		degrade("parser", "missing")
	}

	cfg := s.app.CurrentConfig()
	if cfg.Baseline == "" {
		status.Components["baseline"] = "none"
	} else if prog, err := s.app.program(ctx); err != nil {
		degrade("baseline", err.Error())
	} else {
		status.Components["baseline"] = fmt.Sprintf("ok (%d definitions)", prog.World.Len())
	}

	if files, err := s.app.Discover(); err != nil {
		degrade("inputs", err.Error())
	} else if len(files) == 0 {
		degrade("inputs", "no declaration files found")
	} else {
		status.Components["inputs"] = fmt.Sprintf("ok (%d files)", len(files))
	}

	if info, err := os.Stat(cfg.Output.Dir); err == nil && !info.IsDir() {
		degrade("output", "not a directory")
	} else {
		status.Components["output"] = cfg.Output.Dir
	}

	status.Components["memory"] = fmt.Sprintf("%d MB heap", util.HeapAllocMB())
	return status
}
