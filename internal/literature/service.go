package literature

import (
	"context"
	"log/slog"
)

// Service is the validated write path used by the JSON API.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (service *Service) ListWorks(context context.Context) ([]Work, error) {
	return service.repo.ListWorks(context)
}

func (service *Service) GetWork(context context.Context, id string) (*Work, error) {
	return service.repo.GetWork(context, id)
}

func (service *Service) CreateWork(context context.Context, draft Draft) (*Work, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	works, err := service.repo.CreateWork(context, draft)
	if err != nil {
		return nil, err
	}

	service.logger.Info("work_created", slog.String("title", draft.Title))
	if len(works) == 0 {
		return nil, nil
	}
	return &works[0], nil
}

func (service *Service) UpdateWork(context context.Context, id string, patch Patch) (*Work, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	if err := service.repo.UpdateWork(context, id, patch); err != nil {
		return nil, err
	}

	service.logger.Info("work_updated", slog.String("work_id", id))
	return service.repo.GetWork(context, id)
}

func (service *Service) DeleteWork(context context.Context, id string) error {
	if err := service.repo.DeleteWork(context, id); err != nil {
		return err
	}

	service.logger.Warn("work_deleted", slog.String("work_id", id))
	return nil
}
