// Package schema renders the YAML table definitions of the listing store into
// driver specific DDL.
package schema

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gotrs-io/gotrs-desk/internal/database"
)

//go:embed listing.yaml
var listingYAML string

// YAMLTable represents a single table definition in YAML.
type YAMLTable struct {
	PK      string            `yaml:"pk"`
	Columns map[string]string `yaml:"columns"`
	Indexes []string          `yaml:"indexes"`
}

// Column is a parsed column definition.
type Column struct {
	Name     string
	Type     string // serial, int, bool, text, timestamp, varchar(n)
	Required bool
	Default  string
}

// Table is a parsed table definition.
type Table struct {
	Name    string
	PK      []string
	Columns []Column
	Indexes []string
}

// Load parses the embedded listing schema.
func Load() ([]Table, error) {
	return Parse(listingYAML)
}

// Parse converts YAML content into tables sorted by name.
func Parse(content string) ([]Table, error) {
	var raw map[string]YAMLTable
	if err := yaml.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	tables := make([]Table, 0, len(raw))
	for name, def := range raw {
		table, err := convertTable(name, def)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		tables = append(tables, table)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
	return tables, nil
}

func convertTable(name string, def YAMLTable) (Table, error) {
	if len(def.Columns) == 0 {
		return Table{}, fmt.Errorf("no columns")
	}
	pk := def.PK
	if pk == "" {
		pk = "id"
	}
	table := Table{Name: name, Indexes: def.Indexes}
	for _, col := range strings.Split(pk, ",") {
		col = strings.TrimSpace(col)
		if _, ok := def.Columns[col]; !ok {
			return Table{}, fmt.Errorf("primary key column %q not defined", col)
		}
		table.PK = append(table.PK, col)
	}

	names := make([]string, 0, len(def.Columns))
	for colName := range def.Columns {
		names = append(names, colName)
	}
	// Primary key columns first, the rest alphabetically.
	sort.Slice(names, func(i, j int) bool {
		pi, pj := table.isPK(names[i]), table.isPK(names[j])
		if pi != pj {
			return pi
		}
		return names[i] < names[j]
	})

	for _, colName := range names {
		table.Columns = append(table.Columns, parseColumn(colName, def.Columns[colName]))
	}
	return table, nil
}

// parseColumn understands the "type", "type!", "type?" and
// "type default(value)" shorthands.
func parseColumn(name, spec string) Column {
	col := Column{Name: name}
	spec = strings.TrimSpace(spec)

	if start := strings.Index(spec, " default("); start >= 0 {
		end := strings.Index(spec[start:], ")") + start
		if end > start {
			col.Default = spec[start+len(" default(") : end]
			spec = strings.TrimSpace(spec[:start] + spec[end+1:])
		}
	}
	switch {
	case strings.HasSuffix(spec, "!"):
		spec = strings.TrimSuffix(spec, "!")
		col.Required = true
	case strings.HasSuffix(spec, "?"):
		spec = strings.TrimSuffix(spec, "?")
	}
	col.Type = strings.ToLower(spec)
	return col
}

func (t Table) isPK(column string) bool {
	for _, pk := range t.PK {
		if pk == column {
			return true
		}
	}
	return false
}

// CreateStatements renders CREATE TABLE and CREATE INDEX statements for driver.
func CreateStatements(tables []Table, driver string) ([]string, error) {
	name := database.NormalizeDriver(driver)
	if name == "" {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	var stmts []string
	for _, table := range tables {
		parts := make([]string, 0, len(table.Columns)+1)
		inlinePK := false
		for _, col := range table.Columns {
			colSQL := col.Name + " " + mapType(name, col.Type)
			if col.Type == "serial" && len(table.PK) == 1 && table.PK[0] == col.Name {
				colSQL = col.Name + " " + serialPK(name)
				inlinePK = true
			} else {
				if col.Required || table.isPK(col.Name) {
					colSQL += " NOT NULL"
				}
				if col.Default != "" {
					colSQL += " DEFAULT " + mapDefault(name, col.Type, col.Default)
				}
			}
			parts = append(parts, colSQL)
		}
		if !inlinePK {
			parts = append(parts, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(table.PK, ", ")))
		}
		stmts = append(stmts, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s\n)",
			table.Name, strings.Join(parts, ",\n    ")))

		for _, idx := range table.Indexes {
			idxName := fmt.Sprintf("idx_%s_%s", table.Name, idx)
			if database.IsMySQL(name) {
				// MySQL has no IF NOT EXISTS for indexes.
				stmts = append(stmts, fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idxName, table.Name, idx))
				continue
			}
			stmts = append(stmts, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", idxName, table.Name, idx))
		}
	}
	return stmts, nil
}

// Apply creates the listing tables on db.
func Apply(ctx context.Context, db *sql.DB, driver string) error {
	tables, err := Load()
	if err != nil {
		return err
	}
	stmts, err := CreateStatements(tables, driver)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

func serialPK(driver string) string {
	switch {
	case database.IsPostgreSQL(driver):
		return "SERIAL PRIMARY KEY"
	case database.IsMySQL(driver):
		return "INT AUTO_INCREMENT PRIMARY KEY"
	default:
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
}

func mapType(driver, typ string) string {
	switch {
	case typ == "int":
		if database.IsMySQL(driver) {
			return "INT"
		}
		return "INTEGER"
	case typ == "bool":
		if database.IsMySQL(driver) {
			return "TINYINT(1)"
		}
		return "BOOLEAN"
	case typ == "timestamp":
		if database.IsPostgreSQL(driver) {
			return "TIMESTAMP"
		}
		return "DATETIME"
	case typ == "text":
		return "TEXT"
	case strings.HasPrefix(typ, "varchar"):
		if database.IsSQLite(driver) {
			return "TEXT"
		}
		return strings.ToUpper(typ)
	}
	return strings.ToUpper(typ)
}

func mapDefault(driver, typ, value string) string {
	if typ == "bool" {
		truthy := value == "true" || value == "1"
		if database.IsPostgreSQL(driver) {
			if truthy {
				return "TRUE"
			}
			return "FALSE"
		}
		if truthy {
			return "1"
		}
		return "0"
	}
	return value
}
