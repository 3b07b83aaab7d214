package transform

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"class-migrator/internal/helper"
)

// Result is the outcome of transforming one resource of a batch.
type Result struct {
	Name string
	// Outputs is empty when the resource is unchanged.
	Outputs []Resource
	// Err is a *ResourceError when the resource could not be migrated.
	Err error
}

// Changed reports whether the resource was replaced.
func (r Result) Changed() bool {
	return len(r.Outputs) > 0
}

// TransformAll migrates resources with at most Workers transforms running
// at once. Results are in input order. Per-resource failures are recorded
// in the results and do not stop the batch; a broken helper template or a
// cancelled context does, and is returned as the error.
func (s *Session) TransformAll(ctx context.Context, resources []Resource) ([]Result, error) {
	results := make([]Result, len(resources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, res := range resources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			out, err := s.Transform(res)

			var tplErr *helper.TemplateError
			if errors.As(err, &tplErr) {
				return err
			}

			results[i] = Result{Name: res.Name, Outputs: out, Err: err}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
