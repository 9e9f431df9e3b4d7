package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gotrs-io/gotrs-desk/internal/database"
	"github.com/gotrs-io/gotrs-desk/internal/database/schema"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database utilities",
}

var (
	schemaDriver string
	schemaApply  bool
)

var dbSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print or apply the DDL of the tables the listing reads",
	RunE:  runDBSchema,
}

func init() {
	dbSchemaCmd.Flags().StringVar(&schemaDriver, "driver", "", "Render for this driver instead of the configured one")
	dbSchemaCmd.Flags().BoolVar(&schemaApply, "apply", false, "Execute the statements against the configured database")
	dbCmd.AddCommand(dbSchemaCmd)
}

func runDBSchema(cmd *cobra.Command, args []string) error {
	if !schemaApply && schemaDriver != "" {
		return printSchema(cmd, schemaDriver)
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if !schemaApply {
		return printSchema(cmd, a.cfg.Database.Driver)
	}
	if schemaDriver != "" && database.NormalizeDriver(schemaDriver) != database.NormalizeDriver(a.cfg.Database.Driver) {
		return fmt.Errorf("--driver %s does not match the configured %s database", schemaDriver, a.cfg.Database.Driver)
	}

	if err := a.openDatabase(cmd.Context()); err != nil {
		return err
	}
	if err := schema.Apply(cmd.Context(), a.qb.DB().DB, a.qb.Driver()); err != nil {
		return err
	}
	a.logger.Info("schema applied", "driver", a.qb.Driver())
	return nil
}

func printSchema(cmd *cobra.Command, driver string) error {
	tables, err := schema.Load()
	if err != nil {
		return err
	}
	stmts, err := schema.CreateStatements(tables, driver)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		fmt.Fprintf(cmd.OutOrStdout(), "%s;\n\n", stmt)
	}
	return nil
}
