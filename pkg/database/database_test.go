package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase_SQLiteMemory(t *testing.T) {
	db, err := NewDatabase(Database{Driver: DriverSQLite, SQLitePath: "file::memory:"})
	require.NoError(t, err)

	type scratch struct {
		ID   uint
		Name string
	}
	require.NoError(t, db.AutoMigrate(&scratch{}))
	assert.True(t, db.Migrator().HasTable("t_scratch"))
}

func TestNewDatabase_UnknownDriver(t *testing.T) {
	_, err := NewDatabase(Database{Driver: "oracle"})
	assert.Error(t, err)
}
