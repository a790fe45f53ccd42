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
	"github.com/go-arcade/oneupdate/pkg/cache"
	"github.com/go-arcade/oneupdate/pkg/database"
)

// Repositories 统一管理所有 repository
type Repositories struct {
	Sites    ISiteRegistry
	Settings ISettingsRepository
	Uploads  IUploadHistoryRepository
	Tokens   *TokenRepo
}

// NewRepositories 初始化所有 repository
func NewRepositories(db database.IDatabase, store cache.ICache) *Repositories {
	return &Repositories{
		Sites:    NewSiteRepo(store),
		Settings: NewSettingsRepo(store),
		Uploads:  NewUploadHistoryRepo(db),
		Tokens:   NewTokenRepo(store),
	}
}
