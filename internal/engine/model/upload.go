package model

import (
	"time"

	"gorm.io/datatypes"
)

/**
 * @file: upload.go
 * @description: private plugin upload history
 */

type UploadHistory struct {
	BaseModel
	FileName     string            `gorm:"column:file_name;type:varchar(255);not null" json:"file_name"`
	S3Key        string            `gorm:"column:s3_key;type:varchar(512);not null;uniqueIndex" json:"s3_key"`
	PresignedURL string            `gorm:"column:presigned_url;type:text;not null" json:"presigned_url"`
	UploadTime   time.Time         `gorm:"column:upload_time;not null;index" json:"upload_time"`
	Action       string            `gorm:"column:action;type:varchar(64);not null" json:"action"`
	Meta         datatypes.JSONMap `gorm:"column:meta" json:"meta,omitempty"`
}

const UploadActionUploaded = "Uploaded"

// ExpiresAt is when the presigned url stops being valid.
func (u UploadHistory) ExpiresAt(ttl time.Duration) time.Time {
	return u.UploadTime.Add(ttl)
}

// UploadResult is returned after a successful upload.
type UploadResult struct {
	Message      string    `json:"message"`
	PresignedURL string    `json:"presigned_url"`
	S3Key        string    `json:"s3_key"`
	ExpiresAt    time.Time `json:"expires_at"`
}
