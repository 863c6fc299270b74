package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/content-optimizer/internal/models"
	"github.com/content-optimizer/internal/storage"
)

// tabRecord stores a tab and its header row
type tabRecord struct {
	ID     uint               `gorm:"primaryKey"`
	Name   string             `gorm:"uniqueIndex;not null"`
	Header models.StringSlice `gorm:"type:text"`
}

func (tabRecord) TableName() string { return "tabs" }

// rowRecord stores one data row; Position is the sheet row number (>= 2)
type rowRecord struct {
	ID       uint               `gorm:"primaryKey"`
	Tab      string             `gorm:"index:idx_tab_position,priority:1;not null"`
	Position int                `gorm:"index:idx_tab_position,priority:2;not null"`
	Values   models.StringSlice `gorm:"type:text"`
}

func (rowRecord) TableName() string { return "tab_rows" }

// Repository implements storage.RowStore using SQLite
type Repository struct {
	db *gorm.DB
}

var _ storage.RowStore = (*Repository)(nil)

// New opens (creating if needed) the database at dsn and migrates it
func New(dsn string) (*Repository, error) {
	// Ensure directory exists
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return repo, nil
}

// Migrate runs database migrations
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&tabRecord{}, &rowRecord{})
}

// Close closes the database connection
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *Repository) EnsureTab(ctx context.Context, tab string, header []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := findTab(tx, tab)
		if errors.Is(err, storage.ErrTabNotFound) {
			return tx.Create(&tabRecord{Name: tab, Header: models.StringSlice(header)}).Error
		}
		if err != nil {
			return err
		}

		missing := storage.MissingColumns(rec.Header, header)
		if len(missing) == 0 {
			return nil
		}
		rec.Header = append(rec.Header, missing...)
		return tx.Save(rec).Error
	})
}

func (r *Repository) ReadAll(ctx context.Context, tab string) (*models.Table, error) {
	db := r.db.WithContext(ctx)

	rec, err := findTab(db, tab)
	if err != nil {
		return nil, err
	}

	var rows []rowRecord
	if err := db.Where("tab = ?", tab).Order("position").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", tab, err)
	}

	table := &models.Table{Name: tab, Header: rec.Header}
	for _, row := range rows {
		table.Rows = append(table.Rows, models.NewRow(row.Position, rec.Header, row.Values))
	}
	return table, nil
}

func (r *Repository) AppendRow(ctx context.Context, tab string, values []interface{}) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findTab(tx, tab); err != nil {
			return err
		}

		var last int
		if err := tx.Model(&rowRecord{}).Where("tab = ?", tab).
			Select("COALESCE(MAX(position), 1)").Scan(&last).Error; err != nil {
			return fmt.Errorf("failed to find last row of %s: %w", tab, err)
		}

		return tx.Create(&rowRecord{Tab: tab, Position: last + 1, Values: toStrings(values)}).Error
	})
}

func (r *Repository) UpdateCell(ctx context.Context, tab string, row int, column string, value interface{}) error {
	if row < 2 {
		return fmt.Errorf("%w: %d", storage.ErrRowOutOfRange, row)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := findTab(tx, tab)
		if err != nil {
			return err
		}

		col := -1
		for i, h := range rec.Header {
			if h == column {
				col = i
				break
			}
		}
		if col < 0 {
			return fmt.Errorf("%w: %s in %s", storage.ErrColumnNotFound, column, tab)
		}

		var target rowRecord
		err = tx.Where("tab = ? AND position = ?", tab, row).First(&target).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %d in %s", storage.ErrRowOutOfRange, row, tab)
		}
		if err != nil {
			return err
		}

		for len(target.Values) <= col {
			target.Values = append(target.Values, "")
		}
		target.Values[col] = fmt.Sprintf("%v", value)
		return tx.Save(&target).Error
	})
}

func (r *Repository) ResetTab(ctx context.Context, tab string, header []string, rows [][]interface{}) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tab = ?", tab).Delete(&rowRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", tab, err)
		}

		rec, err := findTab(tx, tab)
		switch {
		case errors.Is(err, storage.ErrTabNotFound):
			err = tx.Create(&tabRecord{Name: tab, Header: models.StringSlice(header)}).Error
		case err == nil:
			rec.Header = models.StringSlice(header)
			err = tx.Save(rec).Error
		}
		if err != nil {
			return err
		}

		if len(rows) == 0 {
			return nil
		}
		records := make([]rowRecord, len(rows))
		for i, values := range rows {
			records[i] = rowRecord{Tab: tab, Position: i + 2, Values: toStrings(values)}
		}
		if err := tx.Create(&records).Error; err != nil {
			return fmt.Errorf("failed to write rows of %s: %w", tab, err)
		}
		return nil
	})
}

func findTab(db *gorm.DB, tab string) (*tabRecord, error) {
	var rec tabRecord
	err := db.Where("name = ?", tab).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", storage.ErrTabNotFound, tab)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func toStrings(values []interface{}) models.StringSlice {
	out := make(models.StringSlice, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		out[i] = fmt.Sprintf("%v", v)
	}
	return out
}
