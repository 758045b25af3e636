package monitor

import (
	"context"
	"staffping/internal/monitor/interfaces"
	"staffping/internal/providers"
	"staffping/internal/structures"
	"sync"

	"github.com/roylee0704/gron"
)

// Scheduler drives the polling loop. opsMu guarantees cycles never overlap:
// an overlapping cycle would double-apply deadzone timer updates and
// duplicate notifications, so a slow cycle simply delays the next one.
type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	monitor MonitorInterface
	cron    *gron.Cron
	opsMu   sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	interval := s.config.Monitor.Interval

	s.cron.AddFunc(gron.Every(interval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		// The interval doubles as the cycle deadline so a hung upstream
		// cannot stall the loop past one period.
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()

		if err := s.monitor.RunCycle(ctx); err != nil {
			s.logger.Errorf(providers.TypeMonitor, "Cycle error: %s", err)
			return
		}
		s.logger.Debugf(providers.TypeMonitor, "Cycle completed")
	})

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Monitor.Interval)
	defer cancel()

	return s.monitor.Restore(ctx)
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeMonitor, "Persisting documents...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Monitor.Interval)
	defer cancel()

	if err := s.monitor.Persist(ctx); err != nil {
		s.logger.Errorf(providers.TypeMonitor, "Error while persisting documents: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, monitor MonitorInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:  config,
		logger:  logger,
		monitor: monitor,
	}
}
