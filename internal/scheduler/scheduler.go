package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"munitask/internal/services"
)

// Scheduler lanza el escaneo periódico de vencimientos.
type Scheduler struct {
	engine   *services.NotificationEngine
	cron     *cron.Cron
	job      cron.Job
	interval time.Duration
	timeout  time.Duration
}

func New(engine *services.NotificationEngine, interval, timeout time.Duration) *Scheduler {
	s := &Scheduler{
		engine:   engine,
		cron:     cron.New(),
		interval: interval,
		timeout:  timeout,
	}
	// si un escaneo sigue en marcha cuando toca el siguiente, el tick se
	// salta y queda registrado; el mismo guard cubre el escaneo de arranque
	logger := cron.VerbosePrintfLogger(log.Default())
	s.job = cron.NewChain(cron.SkipIfStillRunning(logger)).Then(cron.FuncJob(s.runScan))
	return s
}

func (s *Scheduler) Start() error {
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddJob(spec, s.job); err != nil {
		return fmt.Errorf("schedule scan: %w", err)
	}
	s.cron.Start()
	log.Printf("[scheduler] started, scan every %s", s.interval)

	// primer escaneo inmediato, sin esperar al primer tick
	go s.job.Run()
	return nil
}

func (s *Scheduler) runScan() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.engine.Scan(ctx); err != nil {
		log.Printf("[scheduler] scan failed: %v", err)
	}
}

// Stop detiene el cron y espera a que termine el escaneo en curso.
func (s *Scheduler) Stop(ctx context.Context) error {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		log.Printf("[scheduler] stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
