package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// row is the SQL shape of a table entity. Every logical table shares this
// layout; properties are a JSON object in a single text column.
type row struct {
	PartitionKey string `gorm:"primaryKey;size:255;column:partition_key"`
	RowKey       string `gorm:"primaryKey;size:255;column:row_key"`
	ETag         string `gorm:"size:36;column:etag"`
	Properties   string `gorm:"type:text;column:properties"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Client owns the database handle and hands out Table views.
type Client struct {
	db *gorm.DB
}

// OpenMySQL connects to a MySQL-backed store.
func OpenMySQL(dsn string, maxConns int) (*Client, error) {
	db, err := gorm.Open(mysql.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open mysql store: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	return &Client{db: db}, nil
}

// OpenSQLite opens a file-backed store, used for local development, seeding
// and tests.
func OpenSQLite(path string) (*Client, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	return &Client{db: db}, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
}

// EnsureTables creates any missing logical tables.
func (c *Client) EnsureTables(names ...string) error {
	for _, name := range names {
		if err := c.db.Table(name).AutoMigrate(&row{}); err != nil {
			return fmt.Errorf("migrate table %s: %w", name, err)
		}
	}
	return nil
}

// Table returns a view over one logical table.
func (c *Client) Table(name string) Table {
	return &gormTable{db: c.db, name: name}
}

type gormTable struct {
	db   *gorm.DB
	name string
}

func (t *gormTable) scope(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx).Table(t.name)
}

func (t *gormTable) Get(ctx context.Context, partitionKey, rowKey string) (*Entity, error) {
	var r row
	err := t.scope(ctx).
		Where("partition_key = ? AND row_key = ?", partitionKey, rowKey).
		Take(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", partitionKey, rowKey, err)
	}
	return decodeRow(&r)
}

func (t *gormTable) Insert(ctx context.Context, e *Entity) error {
	r, err := encodeRow(e, uuid.NewString())
	if err != nil {
		return err
	}
	if err := t.scope(ctx).Create(r).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return fmt.Errorf("insert %s/%s: %w", e.PartitionKey, e.RowKey, err)
	}
	e.ETag = r.ETag
	return nil
}

func (t *gormTable) Update(ctx context.Context, e *Entity, etag string) error {
	r, err := encodeRow(e, uuid.NewString())
	if err != nil {
		return err
	}
	res := t.scope(ctx).
		Where("partition_key = ? AND row_key = ? AND etag = ?", e.PartitionKey, e.RowKey, etag).
		Updates(map[string]any{
			"etag":       r.ETag,
			"properties": r.Properties,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("update %s/%s: %w", e.PartitionKey, e.RowKey, res.Error)
	}
	if res.RowsAffected == 0 {
		// Distinguish a stale token from a missing row.
		var count int64
		if err := t.scope(ctx).
			Where("partition_key = ? AND row_key = ?", e.PartitionKey, e.RowKey).
			Count(&count).Error; err != nil {
			return fmt.Errorf("update %s/%s: %w", e.PartitionKey, e.RowKey, err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	e.ETag = r.ETag
	return nil
}

func (t *gormTable) Upsert(ctx context.Context, e *Entity) error {
	r, err := encodeRow(e, uuid.NewString())
	if err != nil {
		return err
	}
	err = t.scope(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "partition_key"}, {Name: "row_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"etag", "properties", "updated_at"}),
	}).Create(r).Error
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", e.PartitionKey, e.RowKey, err)
	}
	e.ETag = r.ETag
	return nil
}

func (t *gormTable) Delete(ctx context.Context, partitionKey, rowKey string) error {
	res := t.scope(ctx).
		Where("partition_key = ? AND row_key = ?", partitionKey, rowKey).
		Delete(&row{})
	if res.Error != nil {
		return fmt.Errorf("delete %s/%s: %w", partitionKey, rowKey, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *gormTable) Query(ctx context.Context, q Query) ([]*Entity, error) {
	scope := t.scope(ctx)
	if q.PartitionKey != "" {
		scope = scope.Where("partition_key = ?", q.PartitionKey)
	}

	var rows []row
	if err := scope.Order("partition_key, row_key").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query table %s: %w", t.name, err)
	}

	var out []*Entity
	for i := range rows {
		e, err := decodeRow(&rows[i])
		if err != nil {
			return nil, err
		}
		if q.Filter != nil && !q.Filter(e) {
			continue
		}
		out = append(out, e)
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}

func encodeRow(e *Entity, etag string) (*row, error) {
	props, err := json.Marshal(e.Properties)
	if err != nil {
		return nil, fmt.Errorf("encode properties %s/%s: %w", e.PartitionKey, e.RowKey, err)
	}
	return &row{
		PartitionKey: e.PartitionKey,
		RowKey:       e.RowKey,
		ETag:         etag,
		Properties:   string(props),
	}, nil
}

func decodeRow(r *row) (*Entity, error) {
	props := map[string]string{}
	if r.Properties != "" {
		if err := json.Unmarshal([]byte(r.Properties), &props); err != nil {
			return nil, fmt.Errorf("decode properties %s/%s: %w", r.PartitionKey, r.RowKey, err)
		}
	}
	return &Entity{
		PartitionKey: r.PartitionKey,
		RowKey:       r.RowKey,
		ETag:         r.ETag,
		Properties:   props,
	}, nil
}
