package comment

import (
	"context"

	"github.com/taibuivan/narratives/internal/gateway"
	"github.com/taibuivan/narratives/internal/platform/database/schema"
)

type GatewayRepository struct {
	client *gateway.Client
}

func NewGatewayRepository(client *gateway.Client) *GatewayRepository {
	return &GatewayRepository{client: client}
}

func (repository *GatewayRepository) ListComments(context context.Context, literatureID string) ([]Comment, error) {
	query := repository.client.From(schema.Comments.Table).
		Eq(schema.Comments.LiteratureID, literatureID).
		Order(schema.Comments.CreatedAt, true).
		Order(schema.Comments.ID, true)

	return gateway.Select[Comment](context, query)
}

func (repository *GatewayRepository) CreateComment(context context.Context, literatureID string, input Input) ([]Comment, error) {
	return gateway.Insert[Comment](context, repository.client.From(schema.Comments.Table), input.Values(literatureID))
}
