package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/gamebot/internal/store/schema"
)

// runLease is the value stored under a run lock key
type runLease struct {
	Holder    string    `json:"holder"`
	ExpiresAt time.Time `json:"expires_at"`
}

func runLockKey(group string) string {
	return fmt.Sprintf("run_lock:%s", group)
}

// AcquireRunLock takes the single-writer lease of a run group.
// The current holder may renew its lease; an expired lease is taken over.
func (s *pgStore) AcquireRunLock(ctx context.Context, group string, holder string, ttl time.Duration, now time.Time) (bool, error) {
	value, err := json.Marshal(runLease{Holder: holder, ExpiresAt: now.Add(ttl).UTC()})
	if err != nil {
		return false, fmt.Errorf("failed to marshal run lease: %w", err)
	}

	acquired := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		kv := schema.KeyValueStore{
			Key:   runLockKey(group),
			Value: string(value),
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).Create(&kv)
		if res.Error != nil {
			return fmt.Errorf("failed to insert run lock: %w", res.Error)
		}
		if res.RowsAffected == 1 {
			acquired = true
			return nil
		}

		var current schema.KeyValueStore
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("key = ?", runLockKey(group)).
			First(&current).Error; err != nil {
			return fmt.Errorf("failed to read run lock: %w", err)
		}

		var lease runLease
		if err := json.Unmarshal([]byte(current.Value), &lease); err != nil {
			return fmt.Errorf("failed to parse run lease: %w", err)
		}
		if lease.Holder != holder && now.Before(lease.ExpiresAt) {
			return nil
		}

		if err := tx.Model(&schema.KeyValueStore{}).
			Where("key = ?", runLockKey(group)).
			Update("value", string(value)).Error; err != nil {
			return fmt.Errorf("failed to take over run lock: %w", err)
		}
		acquired = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return acquired, nil
}

// ReleaseRunLock releases the lease if holder still owns it
func (s *pgStore) ReleaseRunLock(ctx context.Context, group string, holder string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current schema.KeyValueStore
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("key = ?", runLockKey(group)).
			First(&current).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("failed to read run lock: %w", err)
		}

		var lease runLease
		if err := json.Unmarshal([]byte(current.Value), &lease); err != nil {
			return fmt.Errorf("failed to parse run lease: %w", err)
		}
		if lease.Holder != holder {
			return nil
		}

		if err := tx.Where("key = ?", runLockKey(group)).Delete(&schema.KeyValueStore{}).Error; err != nil {
			return fmt.Errorf("failed to release run lock: %w", err)
		}
		return nil
	})
}
