package repository

import (
	"fmt"
	"strings"

	"github.com/deppfellow/articles-api/internal/model"
)

// assignment is one "column = value" pair of an UPDATE statement.
type assignment struct {
	column string
	value  any
}

// articleAssignments lists the supplied fields of a patch in the fixed
// order title, content, author. Column names come from this list only,
// never from the request.
func articleAssignments(patch model.ArticlePatch) []assignment {
	fields := []struct {
		column string
		value  *string
	}{
		{"title", patch.Title},
		{"content", patch.Content},
		{"author", patch.Author},
	}

	out := make([]assignment, 0, len(fields))
	for _, f := range fields {
		if f.value != nil {
			out = append(out, assignment{column: f.column, value: *f.value})
		}
	}
	return out
}

// buildUpdate renders a parameterized UPDATE for the given assignments.
//
// The SET clause and the argument list are produced from the same loop, so
// placeholder $n always refers to args[n-1]. The id is bound last.
func buildUpdate(table string, id int64, assignments []assignment, returning string) (string, []any) {
	clauses := make([]string, 0, len(assignments))
	args := make([]any, 0, len(assignments)+1)

	for _, a := range assignments {
		args = append(args, a.value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", a.column, len(args)))
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		table, strings.Join(clauses, ", "), len(args), returning)

	return query, args
}
