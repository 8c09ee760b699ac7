package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/google/uuid"

	"athenaq/internal/config"
	"athenaq/internal/domain"
	"athenaq/internal/storage"
)

// PaginatorFactory builds the result paginator for one execution.
type PaginatorFactory func(executionID string) ResultPaginator

// Options configures a Session.
type Options struct {
	Database       string
	OutputLocation string
	WorkGroup      string
	Catalog        string
	PageSize       int32 // rows per results page; 0 lets the service choose

	// Poll is the wait policy. The zero value means DefaultPollPolicy.
	Poll PollPolicy

	// Store receives results passed to PendingResult.PersistToStorage.
	Store storage.ObjectStore

	// Paginator overrides the default SDK paginator.
	Paginator PaginatorFactory

	Logger *slog.Logger
}

// OptionsFromConfig maps loaded configuration onto session options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Database:       cfg.Database,
		OutputLocation: cfg.OutputLocation,
		WorkGroup:      cfg.WorkGroup,
		Catalog:        cfg.Catalog,
		PageSize:       cfg.PageSize,
		Poll: PollPolicy{
			InitialDelay:  cfg.Poll.InitialDelay,
			RetryDelay:    cfg.Poll.RetryDelay,
			MaxAttempts:   cfg.Poll.MaxAttempts,
			DetectFailure: cfg.Poll.DetectFailure,
		},
	}
}

// Session holds connection settings for one database and result location.
// It is not safe for concurrent use.
type Session struct {
	client    API
	database  string
	output    string
	workGroup string
	catalog   string
	pageSize  int32
	poll      PollPolicy
	store     storage.ObjectStore
	paginator PaginatorFactory
	logger    *slog.Logger
}

// NewSession creates a session around an explicit Athena client.
func NewSession(client API, opts Options) *Session {
	s := &Session{
		client:    client,
		database:  opts.Database,
		output:    opts.OutputLocation,
		workGroup: opts.WorkGroup,
		catalog:   opts.Catalog,
		pageSize:  opts.PageSize,
		poll:      opts.Poll,
		store:     opts.Store,
		paginator: opts.Paginator,
		logger:    opts.Logger,
	}
	if s.poll == (PollPolicy{}) {
		s.poll = DefaultPollPolicy()
	}
	s.poll = s.poll.withDefaults()
	if s.database == "" {
		s.database = config.DefaultDatabase
	}
	if s.output == "" {
		s.output = config.DefaultOutputLocation
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.paginator == nil {
		s.paginator = s.sdkPaginator
	}
	return s
}

// Database returns the database queries run against.
func (s *Session) Database() string { return s.database }

// SetStore replaces the object store used for persisting results.
func (s *Session) SetStore(store storage.ObjectStore) { s.store = store }

// Spec builds the request Submit would send for queryText.
func (s *Session) Spec(queryText string) domain.QuerySpec {
	return domain.QuerySpec{
		QueryText:      queryText,
		Database:       s.database,
		OutputLocation: s.output,
		WorkGroup:      s.workGroup,
		Catalog:        s.catalog,
	}
}

// Submit starts queryText on the service and returns its handle without
// waiting. SQL is not validated locally; a rejected request surfaces as a
// *domain.SubmissionError.
func (s *Session) Submit(ctx context.Context, queryText string) (domain.ExecutionHandle, error) {
	if strings.TrimSpace(queryText) == "" {
		return domain.ExecutionHandle{}, domain.ErrValidation("query text is required")
	}
	spec := s.Spec(queryText)

	in := &athena.StartQueryExecutionInput{
		QueryString:        aws.String(spec.QueryText),
		ClientRequestToken: aws.String(uuid.NewString()),
		QueryExecutionContext: &types.QueryExecutionContext{
			Database: aws.String(spec.Database),
		},
		ResultConfiguration: &types.ResultConfiguration{
			OutputLocation: aws.String(spec.OutputLocation),
		},
	}
	if spec.Catalog != "" {
		in.QueryExecutionContext.Catalog = aws.String(spec.Catalog)
	}
	if spec.WorkGroup != "" {
		in.WorkGroup = aws.String(spec.WorkGroup)
	}

	out, err := s.client.StartQueryExecution(ctx, in)
	if err != nil {
		return domain.ExecutionHandle{}, &domain.SubmissionError{Database: spec.Database, Err: err}
	}
	id := aws.ToString(out.QueryExecutionId)
	if id == "" {
		return domain.ExecutionHandle{}, &domain.SubmissionError{
			Database: spec.Database,
			Err:      errors.New("service returned no execution id"),
		}
	}

	s.logger.Info("query submitted", "execution_id", id, "database", spec.Database)
	return domain.ExecutionHandle{
		ExecutionID:    id,
		Database:       spec.Database,
		OutputLocation: spec.OutputLocation,
	}, nil
}

// Query submits queryText, blocks until its results are readable and
// returns them as a PendingResult.
func (s *Session) Query(ctx context.Context, queryText string) (*PendingResult, error) {
	handle, err := s.Submit(ctx, queryText)
	if err != nil {
		return nil, err
	}
	if err := s.Wait(ctx, handle); err != nil {
		return nil, err
	}
	return s.Result(handle), nil
}

var tableNamePattern = regexp.MustCompile("^[A-Za-z0-9_`.\"-]+$")

// RepairTable runs MSCK REPAIR TABLE for table and waits for it to finish.
func (s *Session) RepairTable(ctx context.Context, table string) error {
	if !tableNamePattern.MatchString(table) {
		return domain.ErrValidation("invalid table name %q", table)
	}
	if _, err := s.Query(ctx, fmt.Sprintf("MSCK REPAIR TABLE %s", table)); err != nil {
		return fmt.Errorf("repair table %s: %w", table, err)
	}
	s.logger.Info("table repaired", "table", table, "database", s.database)
	return nil
}

// Result wraps an already finished execution.
func (s *Session) Result(handle domain.ExecutionHandle) *PendingResult {
	return newPendingResult(s, handle)
}

// Paginator returns a fresh result paginator for executionID.
func (s *Session) Paginator(executionID string) ResultPaginator {
	return s.paginator(executionID)
}

func (s *Session) sdkPaginator(executionID string) ResultPaginator {
	in := &athena.GetQueryResultsInput{QueryExecutionId: aws.String(executionID)}
	if s.pageSize > 0 {
		in.MaxResults = aws.Int32(s.pageSize)
	}
	return athena.NewGetQueryResultsPaginator(s.client, in)
}
