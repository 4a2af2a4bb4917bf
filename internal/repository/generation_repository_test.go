package repository

import (
	"strings"
	"testing"
)

func TestSchemaStatementsQualifiedTable(t *testing.T) {
	stmts := schemaStatements("stockscribe.script_generations")
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want database + table", len(stmts))
	}
	if stmts[0] != "CREATE DATABASE IF NOT EXISTS stockscribe" {
		t.Errorf("database stmt = %q", stmts[0])
	}
	ddl := stmts[1]
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS stockscribe.script_generations",
		"id UUID",
		"symbol LowCardinality(String)",
		"created_at DateTime",
		"ENGINE = MergeTree",
		"ORDER BY (symbol, created_at)",
	} {
		if !strings.Contains(ddl, want) {
			t.Errorf("table ddl missing %q:\n%s", want, ddl)
		}
	}
}

func TestSchemaStatementsBareTable(t *testing.T) {
	stmts := schemaStatements("script_generations")
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want table only: %v", len(stmts), stmts)
	}
	if strings.Contains(stmts[0], "CREATE DATABASE") {
		t.Errorf("bare table produced a database stmt: %q", stmts[0])
	}
}
