// Package testutil provides shared mock implementations of the service
// clients and stores for use in tests across the codebase.
package testutil

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
)

// === Athena API Mock ===

// MockAthenaAPI implements query.API for testing. Calls are recorded for
// assertions.
type MockAthenaAPI struct {
	StartQueryExecutionFn func(ctx context.Context, in *athena.StartQueryExecutionInput) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecutionFn   func(ctx context.Context, in *athena.GetQueryExecutionInput) (*athena.GetQueryExecutionOutput, error)
	GetQueryResultsFn     func(ctx context.Context, in *athena.GetQueryResultsInput) (*athena.GetQueryResultsOutput, error)

	StartCalls     []*athena.StartQueryExecutionInput
	ExecutionCalls []*athena.GetQueryExecutionInput
	ResultsCalls   []*athena.GetQueryResultsInput
}

// StartQueryExecution implements the interface method for testing.
func (m *MockAthenaAPI) StartQueryExecution(ctx context.Context, in *athena.StartQueryExecutionInput, _ ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error) {
	m.StartCalls = append(m.StartCalls, in)
	if m.StartQueryExecutionFn != nil {
		return m.StartQueryExecutionFn(ctx, in)
	}
	return &athena.StartQueryExecutionOutput{QueryExecutionId: aws.String("exec-1")}, nil
}

// GetQueryExecution implements the interface method for testing.
func (m *MockAthenaAPI) GetQueryExecution(ctx context.Context, in *athena.GetQueryExecutionInput, _ ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error) {
	m.ExecutionCalls = append(m.ExecutionCalls, in)
	if m.GetQueryExecutionFn != nil {
		return m.GetQueryExecutionFn(ctx, in)
	}
	panic("unexpected call to MockAthenaAPI.GetQueryExecution")
}

// GetQueryResults implements the interface method for testing.
func (m *MockAthenaAPI) GetQueryResults(ctx context.Context, in *athena.GetQueryResultsInput, _ ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error) {
	// Copy: the SDK paginator reuses its input struct between pages.
	copyIn := *in
	m.ResultsCalls = append(m.ResultsCalls, &copyIn)
	if m.GetQueryResultsFn != nil {
		return m.GetQueryResultsFn(ctx, in)
	}
	return &athena.GetQueryResultsOutput{ResultSet: &types.ResultSet{}}, nil
}

// PageCalls returns the recorded GetQueryResults calls that asked for more
// than a single row, i.e. the paginated fetches.
func (m *MockAthenaAPI) PageCalls() []*athena.GetQueryResultsInput {
	var out []*athena.GetQueryResultsInput
	for _, in := range m.ResultsCalls {
		if in.MaxResults == nil || *in.MaxResults != 1 {
			out = append(out, in)
		}
	}
	return out
}

// ExecutionState returns a GetQueryExecutionFn that reports the given states
// in order, repeating the last one.
func ExecutionState(states ...types.QueryExecutionState) func(context.Context, *athena.GetQueryExecutionInput) (*athena.GetQueryExecutionOutput, error) {
	i := 0
	return func(_ context.Context, in *athena.GetQueryExecutionInput) (*athena.GetQueryExecutionOutput, error) {
		state := states[len(states)-1]
		if i < len(states) {
			state = states[i]
		}
		i++
		return &athena.GetQueryExecutionOutput{QueryExecution: &types.QueryExecution{
			QueryExecutionId: in.QueryExecutionId,
			Status: &types.QueryExecutionStatus{
				State:             state,
				StateChangeReason: aws.String("reason: " + string(state)),
			},
		}}, nil
	}
}

// Cells builds a service row; nil entries become cells without a value.
func Cells(values ...*string) types.Row {
	data := make([]types.Datum, len(values))
	for i, v := range values {
		data[i] = types.Datum{VarCharValue: v}
	}
	return types.Row{Data: data}
}

// TextRow builds a service row where every cell has a value.
func TextRow(values ...string) types.Row {
	ptrs := make([]*string, len(values))
	for i := range values {
		ptrs[i] = aws.String(values[i])
	}
	return Cells(ptrs...)
}

// PagedResults returns a GetQueryResultsFn that serves pages by NextToken.
// Requests without a token get the first page.
func PagedResults(pages ...[]types.Row) func(context.Context, *athena.GetQueryResultsInput) (*athena.GetQueryResultsOutput, error) {
	return func(_ context.Context, in *athena.GetQueryResultsInput) (*athena.GetQueryResultsOutput, error) {
		idx := 0
		if in.NextToken != nil {
			for i := range pages {
				if pageToken(i) == *in.NextToken {
					idx = i
				}
			}
		}
		out := &athena.GetQueryResultsOutput{ResultSet: &types.ResultSet{}}
		if idx < len(pages) {
			out.ResultSet.Rows = pages[idx]
		}
		if idx+1 < len(pages) {
			out.NextToken = aws.String(pageToken(idx + 1))
		}
		return out, nil
	}
}

func pageToken(i int) string {
	return "page-" + string(rune('0'+i))
}

// === Object Store Mock ===

// MockObjectStore implements storage.ObjectStore for testing.
type MockObjectStore struct {
	PutFn        func(ctx context.Context, bucket, key, body string) error
	PresignGetFn func(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
	Objects      map[string]string // "bucket/key" -> body, collected on successful Put
	PutCount     int
}

// Put implements the interface method for testing.
func (m *MockObjectStore) Put(ctx context.Context, bucket, key, body string) error {
	m.PutCount++
	if m.PutFn != nil {
		if err := m.PutFn(ctx, bucket, key, body); err != nil {
			return err
		}
	}
	if m.Objects == nil {
		m.Objects = map[string]string{}
	}
	m.Objects[bucket+"/"+key] = body
	return nil
}

// PresignGet implements the interface method for testing.
func (m *MockObjectStore) PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	if m.PresignGetFn != nil {
		return m.PresignGetFn(ctx, bucket, key, expiry)
	}
	return "https://signed.example.com/" + bucket + "/" + key, nil
}
