package database

import (
	"github.com/go-arcade/oneupdate/pkg/log"
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(ProvideIDatabase)

func ProvideIDatabase(conf Database) (IDatabase, func(), error) {
	db, err := NewDatabase(conf)
	if err != nil {
		return nil, nil, err
	}
	log.Infow("database connected", "driver", conf.Driver)
	return NewGormDB(db), func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}, nil
}
