package offline

import (
	"context"
	"sync"

	"github.com/han8909227/avatax-go/internal/model"
	"github.com/han8909227/avatax-go/internal/remote"
)

// CompanyCache remembers the account's default company after the first successful
// lookup. Failures are not cached.
type CompanyCache struct {
	mu      sync.Mutex
	company *model.Company
}

// Get returns the cached default company, fetching it on first use.
func (c *CompanyCache) Get(ctx context.Context, svc remote.Service) (*model.Company, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.company == nil {
		company, err := remote.DefaultCompany(ctx, svc)
		if err != nil {
			return nil, err
		}
		c.company = company
	}

	company := *c.company
	return &company, nil
}
