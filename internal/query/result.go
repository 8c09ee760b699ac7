package query

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"

	"athenaq/internal/domain"
)

// DefaultDelimiter separates fields in ToDelimitedString output.
const DefaultDelimiter = "\t"

type renderedText struct {
	delim  string
	header bool
	value  string
}

// PendingResult holds the results of one finished query. Rows are fetched
// once and reused; the slices it returns are shared and must be treated as
// read-only.
type PendingResult struct {
	session *Session
	handle  domain.ExecutionHandle

	rows    domain.ResultSet // every row including the header
	fetched bool
	header  bool // view rendered by ToDelimitedString
	text    *renderedText
}

func newPendingResult(s *Session, handle domain.ExecutionHandle) *PendingResult {
	return &PendingResult{session: s, handle: handle, header: true}
}

// Handle returns the execution this result belongs to.
func (r *PendingResult) Handle() domain.ExecutionHandle { return r.handle }

// ResultLocation returns the CSV object the service staged for this query.
func (r *PendingResult) ResultLocation() string { return r.handle.ResultLocation() }

// FetchRows returns every result row. With includeHeader false the first
// row is left out of the returned view; the cached rows are never modified.
// Only the first call talks to the service.
func (r *PendingResult) FetchRows(ctx context.Context, includeHeader bool) (domain.ResultSet, error) {
	if !r.fetched {
		rows, err := r.fetch(ctx)
		if err != nil {
			return nil, err
		}
		r.rows = rows
		r.fetched = true
	}
	r.header = includeHeader

	if !includeHeader {
		return r.rows.WithoutHeader(), nil
	}
	n := len(r.rows)
	return r.rows[:n:n], nil
}

func (r *PendingResult) fetch(ctx context.Context) (domain.ResultSet, error) {
	id := r.handle.ExecutionID

	// Fails fast if the results are not readable yet.
	if _, err := r.session.client.GetQueryResults(ctx, &athena.GetQueryResultsInput{
		QueryExecutionId: aws.String(id),
		MaxResults:       aws.Int32(1),
	}); err != nil {
		return nil, &domain.FetchError{ExecutionID: id, Err: err}
	}

	var pages []*athena.GetQueryResultsOutput
	p := r.session.Paginator(id)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, &domain.FetchError{ExecutionID: id, Err: err}
		}
		pages = append(pages, page)
	}

	rows := DecodePages(pages)
	r.session.logger.Debug("results fetched", "execution_id", id, "pages", len(pages), "rows", len(rows))
	return rows, nil
}

// ToDelimitedString renders the rows of the most recent FetchRows view
// (header included if FetchRows was never called), one line per row with a
// trailing newline. The text is kept until the delimiter or view changes.
func (r *PendingResult) ToDelimitedString(ctx context.Context, delim string) (string, error) {
	if r.text != nil && r.text.delim == delim && r.text.header == r.header {
		return r.text.value, nil
	}
	rows, err := r.FetchRows(ctx, r.header)
	if err != nil {
		return "", err
	}
	r.text = &renderedText{delim: delim, header: r.header, value: JoinRows(rows, delim)}
	return r.text.value, nil
}

// PersistToStorage uploads the rendered result text to bucket/key through
// the session's object store, rendering it with DefaultDelimiter first if
// nothing has been rendered yet.
func (r *PendingResult) PersistToStorage(ctx context.Context, bucket, key string) error {
	store := r.session.store
	if store == nil {
		return &domain.StorageError{Bucket: bucket, Key: key, Err: errors.New("no object store configured")}
	}

	var body string
	if r.text != nil && r.text.header == r.header {
		body = r.text.value
	} else {
		var err error
		if body, err = r.ToDelimitedString(ctx, DefaultDelimiter); err != nil {
			return err
		}
	}

	if err := store.Put(ctx, bucket, key, body); err != nil {
		return &domain.StorageError{Bucket: bucket, Key: key, Err: err}
	}
	r.session.logger.Info("results stored", "execution_id", r.handle.ExecutionID, "bucket", bucket, "key", key, "bytes", len(body))
	return nil
}
