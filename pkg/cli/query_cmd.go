package cli

import (
	"context"
	"fmt"
	"time"

	"athenaq/internal/format"
	"athenaq/internal/storage"
)

type queryOptions struct {
	header  bool
	saveURI string
	presign string
}

// saveTarget is a parsed --save destination.
type saveTarget struct {
	scheme storage.Scheme
	bucket string
	key    string
	expiry time.Duration // zero when no presigned URL was requested
}

func parseSaveTarget(opts queryOptions) (*saveTarget, error) {
	if opts.saveURI == "" {
		if opts.presign != "" {
			return nil, fmt.Errorf("--presign requires --save")
		}
		return nil, nil
	}
	scheme, bucket, key, err := storage.ParseURI(opts.saveURI)
	if err != nil {
		return nil, err
	}
	t := &saveTarget{scheme: scheme, bucket: bucket, key: key}
	if opts.presign != "" {
		d, err := time.ParseDuration(opts.presign)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid --presign duration %q", opts.presign)
		}
		t.expiry = d
	}
	return t, nil
}

// runQuery submits sql, waits for it and writes the rows to stdout. With
// --save the rows are also uploaded, following the --header choice.
func (a *app) runQuery(ctx context.Context, sql string, opts queryOptions) error {
	target, err := parseSaveTarget(opts)
	if err != nil {
		return err
	}

	session, awsCfg, err := a.session(ctx)
	if err != nil {
		return err
	}
	var store storage.ObjectStore
	if target != nil {
		if store, err = a.deps.openStore(ctx, target.scheme, awsCfg, &a.cfg.Storage); err != nil {
			return fmt.Errorf("open %s storage: %w", target.scheme, err)
		}
		session.SetStore(store)
	}

	handle, err := session.Submit(ctx, sql)
	if err != nil {
		return err
	}
	stop := a.startSpinner(fmt.Sprintf("Waiting for query %s", handle.ExecutionID))
	err = session.Wait(ctx, handle)
	stop()
	if err != nil {
		return err
	}
	result := session.Result(handle)

	// Table and JSON need the header for their column names.
	rows, err := result.FetchRows(ctx, opts.header || a.format != format.TSV)
	if err != nil {
		return err
	}
	if err := format.Write(a.deps.stdout, a.format, rows); err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	if target == nil {
		return nil
	}
	if a.format != format.TSV {
		// Memoized; selects the view that gets uploaded.
		if _, err := result.FetchRows(ctx, opts.header); err != nil {
			return err
		}
	}
	if err := result.PersistToStorage(ctx, target.bucket, target.key); err != nil {
		return err
	}
	if target.expiry > 0 {
		url, err := store.PresignGet(ctx, target.bucket, target.key, target.expiry)
		if err != nil {
			return fmt.Errorf("presign %s: %w", opts.saveURI, err)
		}
		_, _ = fmt.Fprintln(a.deps.stderr, url)
	}
	return nil
}
