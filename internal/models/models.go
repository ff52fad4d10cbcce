// Package models holds the gorm entities of the listing domain.
package models

// All returns every model managed by AutoMigrate, in dependency order.
func All() []any {
	return []any{&User{}, &Property{}, &Favorite{}, &ContactMessage{}, &AuditLog{}}
}
