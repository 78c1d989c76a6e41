package catalog

import (
	"fmt"
	"strings"
)

const bookColumns = `id, filename, title, author, year, isbn, publisher, keywords, ocr_text,
	ocr_engine, api_enriched, enrichment_source, processing_date`

// dialect captures the few places where the SQL of the two backends differs.
type dialect struct {
	placeholder func(n int) string
	like        string
}

var (
	postgresDialect = dialect{
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		like:        "ILIKE",
	}
	sqliteDialect = dialect{
		placeholder: func(int) string { return "?" },
		like:        "LIKE",
	}
)

// where builds the WHERE clause for q. It returns the clause, its args and
// the next free placeholder number.
func (d dialect) where(q Query) (string, []any, int) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	add := func(format string, arg any) {
		clauses = append(clauses, fmt.Sprintf(format, d.placeholder(argn)))
		args = append(args, arg)
		argn++
	}

	if q.Q != "" {
		pattern := "%" + q.Q + "%"
		p1, p2, p3 := d.placeholder(argn), d.placeholder(argn+1), d.placeholder(argn+2)
		clauses = append(clauses, fmt.Sprintf("(title %[1]s %[2]s OR author %[1]s %[3]s OR keywords %[1]s %[4]s)", d.like, p1, p2, p3))
		args = append(args, pattern, pattern, pattern)
		argn += 3
	}
	if q.Author != "" {
		add("author "+d.like+" %s", "%"+q.Author+"%")
	}
	if q.YearFrom != nil {
		add("year >= %s", *q.YearFrom)
	}
	if q.YearTo != nil {
		add("year <= %s", *q.YearTo)
	}
	if q.Enriched != nil {
		add("api_enriched = %s", *q.Enriched)
	}
	if q.ISBN != "" {
		add("isbn = %s", q.ISBN)
	}

	return "WHERE " + strings.Join(clauses, " AND "), args, argn
}
