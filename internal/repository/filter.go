package repository

import (
	"fmt"
	"strings"

	"ledger-service/internal/domain"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching value as a literal substring.
func containsPattern(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}

// whereTransactions renders the WHERE clause shared by listings and sums.
// It expects transactions aliased as t and parties as p.
func whereTransactions(f domain.TransactionFilter) (string, []interface{}) {
	clause := ` WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if f.PartyFilter != "" {
		clause += fmt.Sprintf(` AND p.name ILIKE $%d`, argPos)
		args = append(args, containsPattern(f.PartyFilter))
		argPos++
	}
	if f.DateStart != nil {
		clause += fmt.Sprintf(` AND t.date >= $%d`, argPos)
		args = append(args, f.DateStart.Time)
		argPos++
	}
	if f.DateEnd != nil {
		clause += fmt.Sprintf(` AND t.date <= $%d`, argPos)
		args = append(args, f.DateEnd.Time)
		argPos++
	}

	return clause, args
}
