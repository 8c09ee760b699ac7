package domain

import "strings"

// ExecutionState represents the lifecycle state the service reports for a query.
type ExecutionState string

// Query execution states as reported by the service.
const (
	ExecutionStateQueued    ExecutionState = "QUEUED"
	ExecutionStateRunning   ExecutionState = "RUNNING"
	ExecutionStateSucceeded ExecutionState = "SUCCEEDED"
	ExecutionStateFailed    ExecutionState = "FAILED"
	ExecutionStateCancelled ExecutionState = "CANCELLED"
)

// Terminal reports whether the query will not change state again.
func (s ExecutionState) Terminal() bool {
	return s == ExecutionStateSucceeded || s == ExecutionStateFailed || s == ExecutionStateCancelled
}

// QuerySpec is the request sent to the service. Immutable once submitted.
type QuerySpec struct {
	QueryText      string
	Database       string
	OutputLocation string
	WorkGroup      string
	Catalog        string
}

// ExecutionHandle identifies a submitted query on the service.
type ExecutionHandle struct {
	ExecutionID    string
	Database       string
	OutputLocation string
}

// ResultLocation returns the path of the CSV the service stages for the query.
func (h ExecutionHandle) ResultLocation() string {
	loc := h.OutputLocation
	if !strings.HasSuffix(loc, "/") {
		loc += "/"
	}
	return loc + h.ExecutionID + ".csv"
}

// Row is one result row as an ordered tuple of cell values.
type Row []string

// ResultSet is the concatenation of all result pages, in service order.
// The first row is conventionally the header.
type ResultSet []Row

// Header returns the first row, or nil for an empty set.
func (rs ResultSet) Header() Row {
	if len(rs) == 0 {
		return nil
	}
	return rs[0]
}

// WithoutHeader returns a view of the set without the first row. The view
// is capacity-capped so appending to it never writes into rs.
func (rs ResultSet) WithoutHeader() ResultSet {
	if len(rs) == 0 {
		return ResultSet{}
	}
	return rs[1:len(rs):len(rs)]
}
