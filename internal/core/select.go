package core

import (
	"fmt"
	"strings"

	"github.com/coregx/sqlstage/internal/dialects"
	"github.com/coregx/sqlstage/internal/schema"
)

// SelectQuery describes a SELECT used as an insert source or a subquery.
// Builder methods may be called in any order; clauses are always rendered in
// the canonical order projection, source, filter, grouping, having,
// ordering, pagination.
type SelectQuery struct {
	from     *schema.Table
	columns  []Expression
	distinct bool
	where    []Expression
	groupBy  []Expression
	having   []Expression
	orderBy  []orderItem
	limit    *int64
	offset   *int64
	err      error
}

type orderItem struct {
	column string
	mode   dialects.OrderMode
}

// Select starts a query over a table or view. A nil source selects without
// a FROM clause.
//
// Example:
//
//	sqlstage.Select(staging).
//	    Columns(sqlstage.TableCol(staging, "name"), sqlstage.As(sqlstage.Col("mail"), "email")).
//	    Where(sqlstage.IsNotNull(sqlstage.Col("mail"))).
//	    OrderBy("name", sqlstage.AscNullsLast).
//	    Limit(100)
func Select(from *schema.Table) *SelectQuery {
	return &SelectQuery{from: from}
}

// Columns appends projected expressions. Use As to name computed columns.
func (q *SelectQuery) Columns(cols ...Expression) *SelectQuery {
	q.columns = append(q.columns, cols...)
	return q
}

// ColumnNames appends unqualified column references.
func (q *SelectQuery) ColumnNames(names ...string) *SelectQuery {
	for _, name := range names {
		q.columns = append(q.columns, q.column(name))
	}
	return q
}

// column resolves name against the source table so literals keep their type.
func (q *SelectQuery) column(name string) *ColumnExp {
	if q.from != nil {
		if c, ok := q.from.Column(name); ok {
			return &ColumnExp{Name: c.Name, Type: c.Type, Adapter: c.Adapter}
		}
	}
	return Col(name)
}

// Distinct removes duplicate rows.
func (q *SelectQuery) Distinct() *SelectQuery {
	q.distinct = true
	return q
}

// Where adds conditions, combined with AND with any existing ones.
func (q *SelectQuery) Where(conds ...Expression) *SelectQuery {
	q.where = append(q.where, conds...)
	return q
}

// GroupBy appends grouping expressions.
func (q *SelectQuery) GroupBy(exps ...Expression) *SelectQuery {
	q.groupBy = append(q.groupBy, exps...)
	return q
}

// Having adds group conditions, combined with AND with any existing ones.
func (q *SelectQuery) Having(conds ...Expression) *SelectQuery {
	q.having = append(q.having, conds...)
	return q
}

// OrderBy appends an ordering on a column or projection alias. NULLS FIRST
// and NULLS LAST are emulated on backends without native syntax.
func (q *SelectQuery) OrderBy(column string, mode dialects.OrderMode) *SelectQuery {
	q.orderBy = append(q.orderBy, orderItem{column: column, mode: mode})
	return q
}

// OrderByMode is OrderBy with the mode spelled as in SQL, e.g. "asc nulls last".
// An unknown mode is reported when the query is compiled.
func (q *SelectQuery) OrderByMode(column, mode string) *SelectQuery {
	m, err := dialects.ParseOrderMode(mode)
	if err != nil {
		if q.err == nil {
			q.err = &UsageError{Op: "order by", Detail: err.Error(), Err: ErrInvalidState}
		}
		return q
	}
	return q.OrderBy(column, m)
}

// Limit sets the maximum number of rows.
func (q *SelectQuery) Limit(n int64) *SelectQuery {
	q.limit = &n
	return q
}

// Offset sets the number of rows to skip.
func (q *SelectQuery) Offset(n int64) *SelectQuery {
	q.offset = &n
	return q
}

// exposedColumns returns the names of the result columns.
func (q *SelectQuery) exposedColumns() ([]string, error) {
	if len(q.columns) == 0 {
		if q.from == nil {
			return nil, fmt.Errorf("select without source or columns exposes nothing")
		}
		cols := q.from.Columns()
		names := make([]string, len(cols))
		for i, c := range cols {
			names[i] = c.Name
		}
		return names, nil
	}

	names := make([]string, len(q.columns))
	for i, exp := range q.columns {
		switch e := exp.(type) {
		case *AliasExp:
			names[i] = e.Alias
		case *ColumnExp:
			names[i] = e.Name
		default:
			return nil, fmt.Errorf("select column %d is computed and has no name; use As", i+1)
		}
	}
	return names, nil
}

// WriteSQL renders the query without surrounding parentheses.
func (q *SelectQuery) WriteSQL(r dialects.Renderer) string {
	if q.err != nil {
		r.Fail(q.err)
	}

	var sb strings.Builder
	sb.WriteString("select ")
	if q.distinct {
		sb.WriteString("distinct ")
	}
	if len(q.columns) == 0 {
		sb.WriteString("*")
	} else {
		for i, col := range q.columns {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(r.SQL(col))
		}
	}

	if q.from != nil {
		sb.WriteString(" from ")
		sb.WriteString(r.Escape(q.from.Name()))
	}

	if len(q.where) > 0 {
		sb.WriteString(" where ")
		sb.WriteString(r.SQL(And(q.where...)))
	}

	if len(q.groupBy) > 0 {
		sb.WriteString(" group by ")
		for i, exp := range q.groupBy {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(r.SQL(exp))
		}
	}

	if len(q.having) > 0 {
		sb.WriteString(" having ")
		sb.WriteString(r.SQL(And(q.having...)))
	}

	// Order entries are identifiers only: null-ordering emulation repeats the
	// column, which must not repeat bound parameters.
	if len(q.orderBy) > 0 {
		sb.WriteString(" order by ")
		for i, item := range q.orderBy {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(r.Dialect().OrderByItem(r, r.Escape(item.column), item.mode))
		}
	}

	sb.WriteString(r.Dialect().LimitOffset(r, q.limit, q.offset, len(q.orderBy) > 0))
	return sb.String()
}
