package model

import (
	"strings"

	"gorm.io/gorm/schema"
)

// Naming keeps gorm's snake_case plural table names but stores columns under
// the same camelCase names the JSON payloads use, so the ORM and the REST
// endpoint address one schema.
type Naming struct {
	schema.NamingStrategy
}

func (n Naming) ColumnName(table, column string) string {
	return camelCase(n.NamingStrategy.ColumnName(table, column))
}

func camelCase(snake string) string {
	parts := strings.Split(snake, "_")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	return b.String()
}
