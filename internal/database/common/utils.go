package common

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Pre-compiled regex patterns for SQL parsing
var (
	commentRegex    = regexp.MustCompile(`(?m)^\s*--.*$`)
	stringRegex     = regexp.MustCompile(`'(?:[^']|'')*'|"(?:[^"]|"")*"|` + "`(?:[^`]|``)*`")
	validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// ParseSQLStatements splits a script into statements on semicolons that are not inside string literals.
func ParseSQLStatements(sql string) []string {
	sql = commentRegex.ReplaceAllString(sql, "")

	stringPositions := make(map[int]bool)
	for _, match := range stringRegex.FindAllStringIndex(sql, -1) {
		for i := match[0]; i < match[1]; i++ {
			stringPositions[i] = true
		}
	}

	estimatedStmts := strings.Count(sql, ";") + 1
	statements := make([]string, 0, estimatedStmts)

	var currentStatement strings.Builder
	currentStatement.Grow(len(sql) / estimatedStmts)

	for i, char := range sql {
		if char == ';' && !stringPositions[i] {
			if stmt := strings.TrimSpace(currentStatement.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			currentStatement.Reset()
		} else {
			currentStatement.WriteRune(char)
		}
	}

	if stmt := strings.TrimSpace(currentStatement.String()); stmt != "" {
		statements = append(statements, stmt)
	}

	return statements
}

// SplitName splits a namespaced "schema.table" name. A bare name has an empty schema.
func SplitName(name string) (schema, table string, err error) {
	parts := strings.Split(name, ".")
	switch len(parts) {
	case 1:
		table = parts[0]
	case 2:
		schema, table = parts[0], parts[1]
	default:
		return "", "", fmt.Errorf("invalid table name: %s", name)
	}
	if schema != "" && !validIdentifier.MatchString(schema) {
		return "", "", fmt.Errorf("invalid schema name: %s", schema)
	}
	if !validIdentifier.MatchString(table) {
		return "", "", fmt.Errorf("invalid table name: %s", table)
	}
	return schema, table, nil
}

// FlattenName maps "schema.table" to "schema_table" for engines without schemas.
func FlattenName(name string) (string, error) {
	schema, table, err := SplitName(name)
	if err != nil {
		return "", err
	}
	if schema == "" {
		return table, nil
	}
	return schema + "_" + table, nil
}

// ValidateColumns rejects anything that is not a plain SQL identifier.
func ValidateColumns(columns []string) error {
	if len(columns) == 0 {
		return fmt.Errorf("no columns given")
	}
	for _, col := range columns {
		if !validIdentifier.MatchString(col) {
			return fmt.Errorf("invalid column name: %s", col)
		}
	}
	return nil
}

// BindValue converts values that database/sql drivers cannot bind natively.
// String slices (item recipes) are stored as JSON text.
func BindValue(v any) (any, error) {
	switch val := v.(type) {
	case []string:
		if val == nil {
			return nil, nil
		}
		data, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	default:
		return v, nil
	}
}
