// migrations.go - Versioned schema migrations

package database

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"go-blog-backend/models"
)

// migrations is append-only. Each entry must stay runnable against a
// database created by the entries before it.
func migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "20251127_initial_schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&models.User{}, &models.Category{}, &models.Tag{},
					&models.Article{}, &models.ArticleLike{},
					&models.Comment{}, &models.CommentLike{}, &models.Message{},
				)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(
					&models.Message{}, &models.CommentLike{}, &models.Comment{},
					&models.ArticleLike{}, "article_tags", &models.Article{},
					&models.Tag{}, &models.Category{}, &models.User{},
				)
			},
		},
		{
			ID: "20251215_site_and_changelogs",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.SiteInfo{}, &models.Changelog{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&models.Changelog{}, &models.SiteInfo{})
			},
		},
		{
			ID: "20260105_article_protection",
			Migrate: addColumns(&models.Article{},
				"IsProtected", "ProtectionQuestion", "ProtectionAnswer"),
			Rollback: dropColumns(&models.Article{},
				"IsProtected", "ProtectionQuestion", "ProtectionAnswer"),
		},
		{
			ID:       "20260107_article_hidden",
			Migrate:  addColumns(&models.Article{}, "IsHidden"),
			Rollback: dropColumns(&models.Article{}, "IsHidden"),
		},
		{
			ID: "20260120_resources",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Resource{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&models.Resource{})
			},
		},
	}
}

// The initial AutoMigrate already creates columns added later, so column
// migrations only act on databases that predate them.
func addColumns(model any, fields ...string) gormigrate.MigrateFunc {
	return func(tx *gorm.DB) error {
		for _, f := range fields {
			if tx.Migrator().HasColumn(model, f) {
				continue
			}
			if err := tx.Migrator().AddColumn(model, f); err != nil {
				return fmt.Errorf("add column %s: %w", f, err)
			}
		}
		return nil
	}
}

func dropColumns(model any, fields ...string) gormigrate.RollbackFunc {
	return func(tx *gorm.DB) error {
		for _, f := range fields {
			if !tx.Migrator().HasColumn(model, f) {
				continue
			}
			if err := tx.Migrator().DropColumn(model, f); err != nil {
				return fmt.Errorf("drop column %s: %w", f, err)
			}
		}
		return nil
	}
}

func newMigrator(db *gorm.DB) *gormigrate.Gormigrate {
	return gormigrate.New(db, gormigrate.DefaultOptions, migrations())
}

// Migrate applies every pending migration.
func Migrate(db *gorm.DB) error {
	if err := newMigrator(db).Migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Rollback reverts the most recent migration.
func Rollback(db *gorm.DB) error {
	if err := newMigrator(db).RollbackLast(); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// MigrationState is one row of "migrate status".
type MigrationState struct {
	ID      string
	Applied bool
}

// Status lists all known migrations in order and whether each is applied.
func Status(db *gorm.DB) ([]MigrationState, error) {
	applied := map[string]bool{}
	table := gormigrate.DefaultOptions.TableName
	if db.Migrator().HasTable(table) {
		var ids []string
		if err := db.Table(table).Pluck(gormigrate.DefaultOptions.IDColumnName, &ids).Error; err != nil {
			return nil, fmt.Errorf("read %s: %w", table, err)
		}
		for _, id := range ids {
			applied[id] = true
		}
	}

	var states []MigrationState
	for _, m := range migrations() {
		states = append(states, MigrationState{ID: m.ID, Applied: applied[m.ID]})
	}
	return states, nil
}

// Diff lists the tables and columns the models define that the live
// database lacks. An empty result means the schema is current.
func Diff(db *gorm.DB) ([]string, error) {
	var missing []string
	m := db.Migrator()
	for _, model := range models.All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model: %w", err)
		}
		table := stmt.Schema.Table
		if !m.HasTable(model) {
			missing = append(missing, "table "+table)
		} else {
			for _, field := range stmt.Schema.Fields {
				if field.DBName == "" {
					continue
				}
				if !m.HasColumn(model, field.DBName) {
					missing = append(missing, fmt.Sprintf("column %s.%s", table, field.DBName))
				}
			}
		}
		// join tables have no model of their own in models.All
		for _, rel := range stmt.Schema.Relationships.Many2Many {
			if rel.JoinTable != nil && !m.HasTable(rel.JoinTable.Table) {
				missing = append(missing, "table "+rel.JoinTable.Table)
			}
		}
	}
	return missing, nil
}
