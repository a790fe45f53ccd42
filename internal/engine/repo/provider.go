package repo

import (
	"github.com/google/wire"

	"github.com/go-arcade/oneupdate/pkg/cache"
	"github.com/go-arcade/oneupdate/pkg/database"
)

// ProviderSet 提供仓储层相关的依赖
var ProviderSet = wire.NewSet(ProvideRepositories)

// ProvideRepositories migrates the schema and builds every repository.
func ProvideRepositories(db database.IDatabase, store cache.ICache) (*Repositories, error) {
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return NewRepositories(db, store), nil
}
