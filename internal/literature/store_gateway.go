package literature

import (
	"context"

	"github.com/taibuivan/narratives/internal/gateway"
	"github.com/taibuivan/narratives/internal/platform/database/schema"
)

// GatewayRepository implements [Repository] on the backend gateway.
type GatewayRepository struct {
	client *gateway.Client
}

func NewGatewayRepository(client *gateway.Client) *GatewayRepository {
	return &GatewayRepository{client: client}
}

func (repository *GatewayRepository) table() gateway.Query {
	return repository.client.From(schema.Literature.Table)
}

func (repository *GatewayRepository) ListWorks(context context.Context) ([]Work, error) {
	query := repository.table().
		Order(schema.Literature.PublishedDate, false).
		Order(schema.Literature.CreatedAt, false).
		Order(schema.Literature.ID, true)

	works, err := gateway.Select[Work](context, query)
	if err != nil {
		return nil, err
	}
	return works, nil
}

func (repository *GatewayRepository) GetWork(context context.Context, id string) (*Work, error) {
	work, err := gateway.Single[Work](context, repository.table().Eq(schema.Literature.ID, id))
	if err != nil {
		return nil, err
	}
	return &work, nil
}

func (repository *GatewayRepository) CreateWork(context context.Context, draft Draft) ([]Work, error) {
	return gateway.Insert[Work](context, repository.table(), draft.Values())
}

func (repository *GatewayRepository) UpdateWork(context context.Context, id string, patch Patch) error {
	_, err := gateway.Update(context, repository.table().Eq(schema.Literature.ID, id), patch.Values())
	return err
}

func (repository *GatewayRepository) DeleteWork(context context.Context, id string) error {
	_, err := gateway.Delete(context, repository.table().Eq(schema.Literature.ID, id))
	return err
}
