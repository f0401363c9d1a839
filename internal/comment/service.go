package comment

import (
	"context"
	"log/slog"
)

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

func (service *Service) ListComments(context context.Context, literatureID string) ([]Comment, error) {
	return service.repo.ListComments(context, literatureID)
}

func (service *Service) CreateComment(context context.Context, literatureID string, input Input) ([]Comment, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	comments, err := service.repo.CreateComment(context, literatureID, input)
	if err != nil {
		return nil, err
	}

	service.logger.Info("comment_created", slog.String("literature_id", literatureID))
	return comments, nil
}
