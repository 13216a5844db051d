package reconcile

import "context"

// BatchWithFallback implements a uniform write pattern for create/update/
// delete: try one bulk call first, and on failure fall back to the
// per-item call so a single bad record in the batch doesn't sink the rest
// of it. In dry-run mode neither call is issued; every item is reported as
// if the bulk call had succeeded.
func BatchWithFallback[T any](
	ctx context.Context,
	items []T,
	dryRun bool,
	bulk func(ctx context.Context, items []T) error,
	single func(ctx context.Context, item T) error,
	onSuccess func(item T),
	onFailure func(item T, err error),
) {
	if len(items) == 0 {
		return
	}
	if dryRun {
		for _, item := range items {
			onSuccess(item)
		}
		return
	}
	if err := bulk(ctx, items); err == nil {
		for _, item := range items {
			onSuccess(item)
		}
		return
	}
	for _, item := range items {
		if err := single(ctx, item); err != nil {
			onFailure(item, err)
			continue
		}
		onSuccess(item)
	}
}
