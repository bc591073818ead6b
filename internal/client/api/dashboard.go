package api

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Dashboard is the joined profile and progress view.
type Dashboard struct {
	Profile  any
	Progress any
}

// LoadDashboard fetches profile and progress concurrently. The first
// failure cancels the other fetch and is the only error returned.
func (c *Client) LoadDashboard(ctx context.Context) (*Dashboard, error) {
	g, gctx := errgroup.WithContext(ctx)

	var d Dashboard
	g.Go(func() error {
		v, err := c.GetUserProfile(gctx)
		d.Profile = v
		return err
	})
	g.Go(func() error {
		v, err := c.GetUserProgress(gctx)
		d.Progress = v
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}
