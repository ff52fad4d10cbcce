package services_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/sammiepius/homelink-backend/auth"
	"github.com/sammiepius/homelink-backend/internal/blob"
	"github.com/sammiepius/homelink-backend/internal/models"
	"github.com/sammiepius/homelink-backend/internal/services"
	"github.com/sammiepius/homelink-backend/internal/testutil"
)

var testTTL = services.SessionTTL{Token: 720 * time.Hour, AdminToken: 8 * time.Hour}

func newUserService(t *testing.T) (*services.UserService, *gorm.DB, *auth.Issuer, *blob.MemoryStore) {
	t.Helper()
	db := testutil.OpenDB(t)
	issuer := auth.NewIssuer("test-secret", "homelink")
	blobs := blob.NewMemoryStore("https://blob.test")
	svc := services.NewUserService(db, issuer, testTTL, blobs, services.NewAuditService(db, nil), nil)
	return svc, db, issuer, blobs
}

func TestUserService_Signup(t *testing.T) {
	svc, db, issuer, _ := newUserService(t)
	ctx := context.Background()

	sess, err := svc.Signup(ctx, services.SignupInput{
		Name:     "Ada",
		Email:    "  Ada@Example.COM ",
		Password: testutil.Password,
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if sess.User.Email != "ada@example.com" || sess.User.Role != models.RoleTenant {
		t.Fatalf("unexpected summary %+v", sess.User)
	}
	claims, err := issuer.Parse(sess.Token)
	if err != nil || claims.UserID != sess.User.ID || claims.IsAdminSession() {
		t.Fatalf("bad token: %+v %v", claims, err)
	}

	var stored models.User
	db.First(&stored, sess.User.ID)
	if stored.Password == testutil.Password || !auth.CheckPassword(stored.Password, testutil.Password) {
		t.Fatal("password must be stored hashed")
	}

	_, err = svc.Signup(ctx, services.SignupInput{Name: "Ada", Email: "ADA@example.com", Password: testutil.Password})
	if !errors.Is(err, services.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestUserService_SignupValidation(t *testing.T) {
	svc, _, _, _ := newUserService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    services.SignupInput
		field string
	}{
		{"missing name", services.SignupInput{Email: "a@b.co", Password: testutil.Password}, "name"},
		{"bad email", services.SignupInput{Name: "A", Email: "nope", Password: testutil.Password}, "email"},
		{"short password", services.SignupInput{Name: "A", Email: "a@b.co", Password: "short"}, "password"},
		{"weak password", services.SignupInput{Name: "A", Email: "a@b.co", Password: "password"}, "password"},
		{"self-assigned admin", services.SignupInput{Name: "A", Email: "a@b.co", Password: testutil.Password, Role: "admin"}, "role"},
		{"unknown role", services.SignupInput{Name: "A", Email: "a@b.co", Password: testutil.Password, Role: "owner"}, "role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tt.in)
			var se *services.Error
			if !errors.As(err, &se) || se.Kind != services.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := se.Violations[tt.field]; !ok {
				t.Fatalf("expected violation on %s, got %v", tt.field, se.Violations)
			}
		})
	}
}

func TestUserService_OverlongPassword(t *testing.T) {
	svc, db, _, _ := newUserService(t)
	ctx := context.Background()

	for _, pw := range []string{
		testutil.Password + strings.Repeat("x", auth.MaxPasswordLength),
		strings.Repeat("aB3$kd9Qw", 2000),
	} {
		_, err := svc.Signup(ctx, services.SignupInput{Name: "A", Email: "long@example.com", Password: pw})
		var se *services.Error
		if !errors.As(err, &se) || se.StatusCode() != http.StatusBadRequest {
			t.Fatalf("len %d: expected 400 validation error, got %v", len(pw), err)
		}
		if se.Violations["password"] != "max_length" {
			t.Fatalf("len %d: violations = %v", len(pw), se.Violations)
		}
	}
	var count int64
	db.Model(&models.User{}).Where("email = ?", "long@example.com").Count(&count)
	if count != 0 {
		t.Fatalf("rejected signup created %d rows", count)
	}

	u := testutil.CreateUser(t, db, "sam@example.com", models.RoleTenant)
	before := u.Password
	err := svc.ChangePassword(ctx, u, testutil.Password, testutil.Password+strings.Repeat("x", 80))
	var se *services.Error
	if !errors.As(err, &se) || se.Violations["newPassword"] != "max_length" {
		t.Fatalf("expected newPassword max_length, got %v", err)
	}
	var stored models.User
	db.First(&stored, u.ID)
	if stored.Password != before {
		t.Fatal("rejected change must not touch the stored hash")
	}
}

func TestUserService_SignupLandlord(t *testing.T) {
	svc, _, _, _ := newUserService(t)
	sess, err := svc.Signup(context.Background(), services.SignupInput{
		Name: "Lara", Email: "lara@example.com", Password: testutil.Password, Role: "landlord",
	})
	if err != nil {
		t.Fatal(err)
	}
	if sess.User.Role != models.RoleLandlord {
		t.Fatalf("role = %s", sess.User.Role)
	}
}

func TestUserService_Login(t *testing.T) {
	svc, db, _, _ := newUserService(t)
	ctx := context.Background()
	testutil.CreateUser(t, db, "sam@example.com", models.RoleTenant)

	if _, err := svc.Login(ctx, "SAM@example.com", testutil.Password); err != nil {
		t.Fatalf("login: %v", err)
	}
	_, wrongPass := svc.Login(ctx, "sam@example.com", "nope-nope-nope")
	_, unknown := svc.Login(ctx, "ghost@example.com", testutil.Password)
	if !errors.Is(wrongPass, services.ErrInvalidCredentials) || !errors.Is(unknown, services.ErrInvalidCredentials) {
		t.Fatalf("expected identical invalid-credentials errors, got %v / %v", wrongPass, unknown)
	}
	if wrongPass.Error() != unknown.Error() {
		t.Fatal("unknown email and wrong password must be indistinguishable")
	}
}

func TestUserService_AdminLogin(t *testing.T) {
	svc, db, issuer, _ := newUserService(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, db, "admin@homelink.com", models.RoleAdmin)
	testutil.CreateUser(t, db, "tenant@example.com", models.RoleTenant)

	if _, err := svc.AdminLogin(ctx, "tenant@example.com", testutil.Password, ""); !errors.Is(err, services.ErrForbidden) {
		t.Fatalf("non-admin: expected ErrForbidden, got %v", err)
	}

	sess, err := svc.AdminLogin(ctx, "admin@homelink.com", testutil.Password, "198.51.100.4")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	claims, err := issuer.Parse(sess.Token)
	if err != nil || !claims.IsAdminSession() {
		t.Fatalf("expected admin session token: %+v %v", claims, err)
	}
	if ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time); ttl != testTTL.AdminToken {
		t.Fatalf("admin ttl = %v", ttl)
	}

	var rows []models.AuditLog
	db.Where("action = ?", models.ActionAdminLogin).Find(&rows)
	if len(rows) != 1 || rows[0].EntityID != admin.ID || rows[0].Entity != models.EntityUser {
		t.Fatalf("expected one ADMIN_LOGIN row, got %+v", rows)
	}
}

func TestUserService_GetByID(t *testing.T) {
	svc, db, _, _ := newUserService(t)
	u := testutil.CreateUser(t, db, "sam@example.com", models.RoleTenant)

	got, err := svc.GetByID(context.Background(), u.ID)
	if err != nil || got.Email != u.Email {
		t.Fatalf("GetByID() = %+v, %v", got, err)
	}
	if _, err := svc.GetByID(context.Background(), 999); !errors.Is(err, services.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_ChangePassword(t *testing.T) {
	svc, db, _, _ := newUserService(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "sam@example.com", models.RoleTenant)

	if err := svc.ChangePassword(ctx, u, "wrong-current-pass", "Quiet-Meadow-Falcon-77"); !errors.Is(err, services.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.ChangePassword(ctx, u, testutil.Password, "abc"); services.KindOf(err) != services.KindValidation {
		t.Fatalf("expected validation error for weak password, got %v", err)
	}
	if err := svc.ChangePassword(ctx, u, testutil.Password, "Quiet-Meadow-Falcon-77"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := svc.Login(ctx, "sam@example.com", "Quiet-Meadow-Falcon-77"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	svc, db, _, blobs := newUserService(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "sam@example.com", models.RoleLandlord)

	old := "https://blob.test/upload/v1/old.jpg"
	blobs.Put(old, nil)
	db.Model(u).Update("profile_photo", old)
	u.ProfilePhoto = &old

	photo := filepath.Join(t.TempDir(), "me.jpg")
	if err := os.WriteFile(photo, []byte("jpeg"), 0o600); err != nil {
		t.Fatal(err)
	}

	updated, err := svc.UpdateProfile(ctx, u, services.ProfileInput{
		Name:      ptr("Samuel"),
		Phone:     ptr("+2348000000000"),
		PhotoPath: photo,
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Name != "Samuel" || updated.ProfilePhoto == nil || *updated.ProfilePhoto == old {
		t.Fatalf("unexpected user %+v", updated)
	}
	if blobs.Has(old) || !blobs.Has(*updated.ProfilePhoto) {
		t.Fatal("expected old photo replaced")
	}

	var stored models.User
	db.First(&stored, u.ID)
	if stored.Name != "Samuel" || stored.Phone == nil || *stored.Phone != "+2348000000000" {
		t.Fatalf("profile not persisted: %+v", stored)
	}

	if _, err := svc.UpdateProfile(ctx, u, services.ProfileInput{Name: ptr("  ")}); services.KindOf(err) != services.KindValidation {
		t.Fatalf("blank name: expected validation error, got %v", err)
	}
}
