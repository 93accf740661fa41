package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// jobTimeout ограничение на один запуск задачи
const jobTimeout = time.Minute

// Job фоновая задача; возвращает число обработанных записей
type Job interface {
	Run(ctx context.Context) (int, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Scheduler запускает задачи по cron расписанию в UTC
type Scheduler struct {
	cron   *cron.Cron
	logger Logger
}

func New(logger Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		logger: logger,
	}
}

// Register добавляет задачу; spec в формате из 5 полей
func (s *Scheduler) Register(name, spec string, job Job) error {
	if _, err := s.cron.AddFunc(spec, func() { s.run(name, job) }); err != nil {
		return fmt.Errorf("scheduler: register %s (%q): %w", name, spec, err)
	}
	s.logger.Info("Scheduler: job %s registered (%s)", name, spec)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop останавливает расписание и ждет завершения уже запущенных задач
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Error("Scheduler: stop timed out, running jobs abandoned")
	}
}

func (s *Scheduler) run(name string, job Job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Scheduler: job %s panicked: %v", name, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	processed, err := job.Run(ctx)
	if err != nil {
		s.logger.Error("Scheduler: job %s failed: %v", name, err)
		return
	}
	s.logger.Info("Scheduler: job %s completed, processed=%d", name, processed)
}
