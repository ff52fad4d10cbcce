// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"strings"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sammiepius/homelink-backend/auth"
	"github.com/sammiepius/homelink-backend/internal/models"
)

// Password is the plain-text password of every user created by CreateUser.
const Password = "Sunny-Harbor-Lantern-42"

var (
	hashOnce sync.Once
	hash     string
)

// OpenDB returns a migrated in-memory SQLite database private to t.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CreateUser inserts a user with Password.
func CreateUser(t testing.TB, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	hashOnce.Do(func() {
		var err error
		hash, err = auth.HashPassword(Password)
		if err != nil {
			panic(err)
		}
	})
	u := &models.User{Name: strings.Split(email, "@")[0], Email: email, Password: hash, Role: role}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

// CreateProperty inserts a listing for landlord in the given flags.
func CreateProperty(t testing.TB, db *gorm.DB, landlord *models.User, title string, approved, rejected, active bool, images ...string) *models.Property {
	t.Helper()
	if images == nil {
		images = []string{}
	}
	p := &models.Property{
		Title:      title,
		Price:      1200,
		Location:   "Lagos",
		Type:       "apartment",
		Images:     images,
		LandlordID: landlord.ID,
		Approved:   approved,
		Rejected:   rejected,
		IsActive:   active,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create property %s: %v", title, err)
	}
	return p
}
