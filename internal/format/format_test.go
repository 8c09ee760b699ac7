package format

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"athenaq/internal/domain"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Name
		wantErr bool
	}{
		{"tsv", TSV, false},
		{"TABLE", Table, false},
		{" json ", JSON, false},
		{"", TSV, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unsupported output format")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteTSV(t *testing.T) {
	tests := []struct {
		name string
		rows domain.ResultSet
		want string
	}{
		{"empty", nil, ""},
		{"plain", domain.ResultSet{{"a", "b"}, {"1", "2"}}, "a\tb\n1\t2\n"},
		{"empty_cells", domain.ResultSet{{"", "x", ""}}, "\tx\t\n"},
		{"tab_in_cell", domain.ResultSet{{"a\tb"}}, "a\\\tb\n"},
		{"newline_in_cell", domain.ResultSet{{"a\nb"}}, "a\\\nb\n"},
		{"backslash_and_quote", domain.ResultSet{{`c:\tmp`, `say "hi"`}}, "c:\\\\tmp\tsay \\\"hi\\\"\n"},
		{"carriage_return", domain.ResultSet{{"a\rb"}}, "a\\\rb\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteTSV(&buf, tt.rows))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, domain.ResultSet{{"id", "name"}, {"1", "ann"}, {"2", "bob"}}))

	out := buf.String()
	assert.Contains(t, out, "id")
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "ann")
	assert.Contains(t, out, "bob")
	assert.True(t, strings.HasSuffix(out, "(2 rows)\n"))

	buf.Reset()
	require.NoError(t, WriteTable(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestWriteJSON(t *testing.T) {
	t.Run("rows", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteJSON(&buf, domain.ResultSet{{"id", "name"}, {"1", "ann"}, {"2", ""}}))
		assert.JSONEq(t, `{"columns":["id","name"],"rows":[["1","ann"],["2",""]],"row_count":2}`, buf.String())
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteJSON(&buf, nil))
		assert.JSONEq(t, `{"columns":[],"rows":[],"row_count":0}`, buf.String())
	})

	t.Run("header_only", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteJSON(&buf, domain.ResultSet{{"id"}}))
		assert.JSONEq(t, `{"columns":["id"],"rows":[],"row_count":0}`, buf.String())
	})
}

func TestWrite_Dispatch(t *testing.T) {
	rows := domain.ResultSet{{"a"}, {"1"}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, TSV, rows))
	assert.Equal(t, "a\n1\n", buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, JSON, rows))
	assert.Contains(t, buf.String(), `"row_count": 1`)

	assert.Error(t, Write(&buf, Name("xml"), rows))
}
