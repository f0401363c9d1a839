/*
Package gateway is the single handle to the backend: a data API over
PostgreSQL, a realtime API fed by the database change feed, and an auth
API backed by GitHub OAuth and Redis sessions.

One [Client] is built at startup and passed explicitly to every component
that needs the backend. Every failure it reports is a [*Error] whose Message
is the backend's own text.
*/
package gateway

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool the data API needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Client bundles the three backend APIs.
type Client struct {
	db       Querier
	realtime *Hub
	auth     *Auth
}

// New creates a client. Any API may be nil when the caller does not use it.
func New(db Querier, realtime *Hub, auth *Auth) *Client {
	return &Client{db: db, realtime: realtime, auth: auth}
}

// From starts a query against table.
func (c *Client) From(table string) Query {
	return Query{db: c.db, table: table}
}

// Realtime returns the change-feed hub.
func (c *Client) Realtime() *Hub {
	return c.realtime
}

// Auth returns the auth API.
func (c *Client) Auth() *Auth {
	return c.auth
}
