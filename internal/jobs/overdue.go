package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MATTHEWPURBA/management-system/internal/model"
	"github.com/MATTHEWPURBA/management-system/internal/service"
)

// OverdueSweeper periodically scans for tasks past their due date and
// appends a system-level task_overdue entry per hit. There is no
// watermark: an unchanged overdue task is re-reported on every run.
type OverdueSweeper struct {
	repo     service.Repository
	logger   *zap.Logger
	interval time.Duration
	timeout  time.Duration
}

func NewOverdueSweeper(repo service.Repository, logger *zap.Logger, interval, timeout time.Duration) *OverdueSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OverdueSweeper{repo: repo, logger: logger, interval: interval, timeout: timeout}
}

func (s *OverdueSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tickCtx, cancel := context.WithTimeout(ctx, s.timeout)
				processed, err := s.Run(tickCtx)
				cancel()
				if err != nil {
					s.logger.Warn("overdue sweep failed", zap.Error(err))
					continue
				}
				if processed > 0 {
					s.logger.Info("overdue sweep finished", zap.Int("tasks", processed))
				}
			}
		}
	}()
}

// Run executes one sweep and returns the number of tasks it logged.
// A failed entry does not stop the rest of the batch.
func (s *OverdueSweeper) Run(ctx context.Context) (int, error) {
	tasks, err := s.repo.OverdueTasks(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, task := range tasks {
		entry := model.ActivityLogEntry{
			ID:          uuid.New(),
			UserID:      nil,
			Action:      model.ActionTaskOverdue,
			Description: describeOverdue(task),
			LoggedAt:    time.Now().UTC(),
		}
		if err := s.repo.AppendLog(ctx, entry); err != nil {
			s.logger.Warn("overdue entry not recorded",
				zap.String("task_id", task.ID.String()),
				zap.Error(err))
			continue
		}
		processed++
	}
	return processed, nil
}

func describeOverdue(task model.Task) string {
	return fmt.Sprintf("Task %q (%s) is overdue since %s", task.Title, task.ID, task.DueDate.Format("2006-01-02"))
}
