package kvstore

import (
	"context"
	"errors"
	"fmt"

	"earnings-ledger/internal/models"
	"earnings-ledger/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists values in the kv_entries table. With a cipher every
// value is sealed before it reaches disk.
type GormStore struct {
	db     *gorm.DB
	cipher *util.Cipher
}

// NewGormStore wraps db; cipher may be nil to store plaintext.
func NewGormStore(db *gorm.DB, cipher *util.Cipher) *GormStore {
	return &GormStore{db: db, cipher: cipher}
}

func (s *GormStore) Get(ctx context.Context, key string) (string, bool, error) {
	var row models.KVEntry
	err := s.db.WithContext(ctx).Where("kv_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}

	value, err := s.open(row)
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *GormStore) Apply(ctx context.Context, b Batch) error {
	if b.Len() == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, o := range b.ops {
			row, err := s.seal(o.key, o.value)
			if err != nil {
				return err
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "kv_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "sealed", "updated_at"}),
			}).Create(&row).Error; err != nil {
				return fmt.Errorf("set %q: %w", o.key, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("apply batch: %w", err)
	}
	return nil
}

func (s *GormStore) Snapshot(ctx context.Context) (map[string]string, error) {
	var rows []models.KVEntry
	if err := s.db.WithContext(ctx).Order("kv_key ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		value, err := s.open(row)
		if err != nil {
			return nil, err
		}
		out[row.Key] = value
	}
	return out, nil
}

func (s *GormStore) seal(key, value string) (models.KVEntry, error) {
	row := models.KVEntry{Key: key, Value: value}
	if s.cipher == nil {
		return row, nil
	}
	sealed, err := s.cipher.SealString(value)
	if err != nil {
		return row, fmt.Errorf("seal %q: %w", key, err)
	}
	row.Value = sealed
	row.Sealed = true
	return row, nil
}

func (s *GormStore) open(row models.KVEntry) (string, error) {
	if !row.Sealed {
		return row.Value, nil
	}
	if s.cipher == nil {
		return "", fmt.Errorf("%q is encrypted but no encryption key is configured", row.Key)
	}
	plain, err := s.cipher.OpenString(row.Value)
	if err != nil {
		return "", fmt.Errorf("%w: key %q: %v", ErrCorrupt, row.Key, err)
	}
	return plain, nil
}

var _ Store = (*GormStore)(nil)
