// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/pkg/database"
)

type IUploadHistoryRepository interface {
	Create(ctx context.Context, h *model.UploadHistory) error
	ListNewestFirst(ctx context.Context) ([]model.UploadHistory, error)
	FindByPresignedURL(ctx context.Context, url string) (*model.UploadHistory, error)
	UploadedBefore(ctx context.Context, t time.Time) ([]model.UploadHistory, error)
	DeleteByKeys(ctx context.Context, keys []string) (int64, error)
	CountBefore(ctx context.Context, t time.Time) (int64, error)
	DeleteBatchBefore(ctx context.Context, t time.Time, limit int) (int64, error)
}

type UploadHistoryRepo struct {
	database.IDatabase
}

func NewUploadHistoryRepo(db database.IDatabase) IUploadHistoryRepository {
	return &UploadHistoryRepo{IDatabase: db}
}

// AutoMigrate creates the upload history table.
func AutoMigrate(db database.IDatabase) error {
	return db.Database().AutoMigrate(&model.UploadHistory{})
}

func (ur *UploadHistoryRepo) Create(ctx context.Context, h *model.UploadHistory) error {
	return ur.Database().WithContext(ctx).Create(h).Error
}

func (ur *UploadHistoryRepo) ListNewestFirst(ctx context.Context) ([]model.UploadHistory, error) {
	var rows []model.UploadHistory
	err := ur.Database().WithContext(ctx).
		Order("upload_time DESC").Order("id DESC").
		Find(&rows).Error
	return rows, err
}

func (ur *UploadHistoryRepo) FindByPresignedURL(ctx context.Context, url string) (*model.UploadHistory, error) {
	var row model.UploadHistory
	err := ur.Database().WithContext(ctx).
		Where("presigned_url = ?", url).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (ur *UploadHistoryRepo) UploadedBefore(ctx context.Context, t time.Time) ([]model.UploadHistory, error) {
	var rows []model.UploadHistory
	err := ur.Database().WithContext(ctx).
		Select("id", "s3_key", "upload_time").
		Where("upload_time <= ?", t).
		Find(&rows).Error
	return rows, err
}

func (ur *UploadHistoryRepo) DeleteByKeys(ctx context.Context, keys []string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	res := ur.Database().WithContext(ctx).
		Where("s3_key IN ?", keys).
		Delete(&model.UploadHistory{})
	return res.RowsAffected, res.Error
}

func (ur *UploadHistoryRepo) CountBefore(ctx context.Context, t time.Time) (int64, error) {
	var n int64
	err := ur.Database().WithContext(ctx).
		Model(&model.UploadHistory{}).
		Where("upload_time <= ?", t).
		Count(&n).Error
	return n, err
}

// DeleteBatchBefore deletes at most limit rows uploaded at or before t.
// Ids are selected first so the statement works on both mysql and sqlite.
func (ur *UploadHistoryRepo) DeleteBatchBefore(ctx context.Context, t time.Time, limit int) (int64, error) {
	var ids []uint64
	err := ur.Database().WithContext(ctx).
		Model(&model.UploadHistory{}).
		Where("upload_time <= ?", t).
		Order("id").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil || len(ids) == 0 {
		return 0, err
	}
	res := ur.Database().WithContext(ctx).Delete(&model.UploadHistory{}, ids)
	return res.RowsAffected, res.Error
}
