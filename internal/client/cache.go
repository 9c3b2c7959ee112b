package client

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type Lister interface {
	List(ctx context.Context, params ListParams) (ListPage, error)
}

// Cache holds the most recent listing page. Every fetch takes a generation
// token and its response is applied only while that token is still the
// latest, so a slow response can never overwrite a newer one.
type Cache struct {
	mu         sync.Mutex
	lister     Lister
	generation uint64
	query      ListParams
	page       ListPage
	loaded     bool
	logger     *zap.Logger
}

func NewCache(lister Lister, logger ...*zap.Logger) *Cache {
	l := zap.L().Named("client.cache")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("client.cache")
	}
	return &Cache{
		lister: lister,
		query:  ListParams{Page: 1, Limit: 10},
		page:   ListPage{Employees: []Employee{}},
		logger: l,
	}
}

// Fetch issues a listing request for params and applies the answer when it
// is still current. It reports whether the answer was applied. On error the
// held page is left untouched.
func (c *Cache) Fetch(ctx context.Context, params ListParams) (bool, error) {
	c.mu.Lock()
	c.generation++
	token := c.generation
	c.query = params
	c.mu.Unlock()

	page, err := c.lister.List(ctx, params)

	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.generation {
		c.logger.Debug("discarding stale listing response",
			zap.Uint64("token", token),
			zap.Uint64("latest", c.generation),
		)
		return false, err
	}
	if err != nil {
		return false, err
	}

	if page.Employees == nil {
		page.Employees = []Employee{}
	}
	c.page = page
	c.loaded = true
	return true, nil
}

// Refresh re-issues the last query.
func (c *Cache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	params := c.query
	c.mu.Unlock()

	_, err := c.Fetch(ctx, params)
	return err
}

// Snapshot returns a copy of the held page.
func (c *Cache) Snapshot() ListPage {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.page
	out.Employees = append([]Employee(nil), c.page.Employees...)
	return out
}

func (c *Cache) Query() ListParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

func (c *Cache) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}
