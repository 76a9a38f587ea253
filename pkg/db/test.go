package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewTest opens a private in-memory sqlite database. Each call returns an
// isolated database; callers migrate the models they need with AutoMigrate.
func NewTest() (*gorm.DB, error) {
	// A named in-memory database with a shared cache survives gorm's
	// connection pooling; the random name isolates tests from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
}
