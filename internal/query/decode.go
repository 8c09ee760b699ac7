package query

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"

	"athenaq/internal/domain"
)

// DecodePages flattens result pages into rows, keeping page order and then
// row order. A cell without a value decodes to "", so rows keep the width
// the service reported.
func DecodePages(pages []*athena.GetQueryResultsOutput) domain.ResultSet {
	rows := domain.ResultSet{}
	for _, page := range pages {
		if page == nil || page.ResultSet == nil {
			continue
		}
		rows = append(rows, DecodeRows(page.ResultSet.Rows)...)
	}
	return rows
}

// DecodeRows converts one page of service rows.
func DecodeRows(in []types.Row) domain.ResultSet {
	out := make(domain.ResultSet, 0, len(in))
	for _, r := range in {
		row := make(domain.Row, len(r.Data))
		for i, cell := range r.Data {
			row[i] = aws.ToString(cell.VarCharValue)
		}
		out = append(out, row)
	}
	return out
}

// JoinRows renders rows as delim-separated fields with one "\n"-terminated
// line per row. Fields are not escaped. The text always ends with exactly
// one newline, so an empty set renders as "\n".
func JoinRows(rows domain.ResultSet, delim string) string {
	if len(rows) == 0 {
		return "\n"
	}
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(strings.Join(row, delim))
		b.WriteByte('\n')
	}
	return b.String()
}
