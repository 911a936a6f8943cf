package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/MATTHEWPURBA/management-system/internal/authz"
	"github.com/MATTHEWPURBA/management-system/internal/model"
)

// LogPageSize is the fixed activity-log page size.
const LogPageSize = 15

type LogService struct {
	repo   Repository
	logger *zap.Logger
}

func NewLogService(repo Repository, logger *zap.Logger) *LogService {
	return &LogService{repo: repo, logger: logger}
}

type LogPage struct {
	Entries  []model.ActivityLogEntry
	Page     int
	PerPage  int
	Total    int64
	LastPage int
}

func (s *LogService) List(ctx context.Context, actor model.User, filter LogFilter, page int) (LogPage, error) {
	if decision := authz.CanViewLogs(actorOf(actor)); !decision.Allowed {
		return LogPage{}, NewAuthorization(decision.Reason)
	}
	if page < 1 {
		page = 1
	}
	entries, total, err := s.repo.ListLogs(ctx, filter, LogPageSize, (page-1)*LogPageSize)
	if err != nil {
		return LogPage{}, NewPersistence(err)
	}
	lastPage := int((total + LogPageSize - 1) / LogPageSize)
	if lastPage < 1 {
		lastPage = 1
	}
	return LogPage{
		Entries:  entries,
		Page:     page,
		PerPage:  LogPageSize,
		Total:    total,
		LastPage: lastPage,
	}, nil
}
