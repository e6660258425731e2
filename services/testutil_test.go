package services

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tracklie/models"
)

// newTestDB opens an isolated in-memory SQLite database and migrates the
// schema. Each test gets its own database, named after the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Lead{},
		&models.LeadStatusHistory{},
	))
	return db
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func createTestUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()

	user := models.User{
		Email:        email,
		PasswordHash: "x",
		Name:         "Test User",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestLead(t *testing.T, db *gorm.DB, name string, mutate ...func(*models.Lead)) *models.Lead {
	t.Helper()

	lead := models.Lead{
		Name:     name,
		Phone:    "9876543210",
		Status:   models.StatusNew,
		Priority: models.PriorityMedium,
		Language: "English",
		Country:  "India",
	}
	for _, m := range mutate {
		m(&lead)
	}
	require.NoError(t, db.Create(&lead).Error)
	return &lead
}

func historyCount(t *testing.T, db *gorm.DB, leadID uint) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&models.LeadStatusHistory{}).Where("lead_id = ?", leadID).Count(&n).Error)
	return n
}
