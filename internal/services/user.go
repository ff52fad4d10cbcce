package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sammiepius/homelink-backend/auth"
	"github.com/sammiepius/homelink-backend/internal/blob"
	"github.com/sammiepius/homelink-backend/internal/logger"
	"github.com/sammiepius/homelink-backend/internal/models"
	"github.com/sammiepius/homelink-backend/validation"
)

// SessionTTL holds token lifetimes for general and admin sessions.
type SessionTTL struct {
	Token      time.Duration
	AdminToken time.Duration
}

// Session is returned by signup and login.
type Session struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expiresAt"`
	User      models.UserSummary `json:"user"`
}

type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
}

// ProfileInput carries optional profile changes. PhotoPath is a local file
// to upload as the new profile photo.
type ProfileInput struct {
	Name      *string
	Phone     *string
	PhotoPath string
}

// UserService handles accounts and sessions.
type UserService struct {
	db     *gorm.DB
	issuer *auth.Issuer
	ttl    SessionTTL
	blobs  blob.Store
	audit  *AuditService
	log    *zap.Logger
}

func NewUserService(db *gorm.DB, issuer *auth.Issuer, ttl SessionTTL, blobs blob.Store, audit *AuditService, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{db: db, issuer: issuer, ttl: ttl, blobs: blobs, audit: audit, log: log}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func passwordViolation(err error, v validation.Violations) {
	var pe *auth.PasswordError
	if errors.As(err, &pe) {
		v["password"] = pe.Code
	}
}

// Signup creates an account and returns a general session. The admin role
// cannot be self-assigned.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)

	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.MaxLen("name", in.Name, 255, v)
	validation.Required("email", email, v)
	validation.Email("email", email, v)
	validation.Required("password", in.Password, v)

	role := models.RoleTenant
	if strings.TrimSpace(in.Role) != "" {
		r, ok := models.ParseRole(in.Role)
		switch {
		case !ok:
			v["role"] = "invalid_value"
		case r == models.RoleAdmin:
			v["role"] = "not_allowed"
		default:
			role = r
		}
	}
	if _, ok := v["password"]; !ok {
		passwordViolation(auth.ValidatePassword(in.Password, in.Name, email), v)
	}
	if !v.Empty() {
		return nil, Invalid(v)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, Upstream("check email", err)
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, Upstream("hash password", err)
	}
	user := models.User{Name: in.Name, Email: email, Password: hash, Role: role}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		user.Phone = &phone
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrUserExists
		}
		return nil, Upstream("create user", err)
	}

	logger.WithContext(ctx, s.log).Info("user signed up", zap.Uint("user_id", user.ID), zap.String("role", string(role)))
	return s.session(&user, "", s.ttl.Token)
}

// Login verifies credentials. Unknown email and wrong password produce the
// same error.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.checkCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.session(user, "", s.ttl.Token)
}

// AdminLogin verifies credentials of an admin account and issues a short
// lived admin session. Successful logins are audited.
func (s *UserService) AdminLogin(ctx context.Context, email, password, ip string) (*Session, error) {
	user, err := s.checkCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, ErrForbidden
	}
	sess, err := s.session(user, auth.RoleAdmin, s.ttl.AdminToken)
	if err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.Record(ctx, AuditEntry{
			ActorID:   &user.ID,
			ActorRole: string(user.Role),
			Action:    models.ActionAdminLogin,
			Entity:    models.EntityUser,
			EntityID:  user.ID,
			IP:        ip,
		})
	}
	return sess, nil
}

func (s *UserService) checkCredentials(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, Upstream("load user", err)
	}
	if !auth.CheckPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *UserService) session(user *models.User, role string, ttl time.Duration) (*Session, error) {
	token, exp, err := s.issuer.Issue(user.ID, role, ttl)
	if err != nil {
		return nil, Upstream("issue token", err)
	}
	return &Session{Token: token, ExpiresAt: exp, User: user.Summary()}, nil
}

// GetByID loads the caller for a verified token. A missing row is reported
// as an authentication failure.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, Upstream("load user", err)
	}
	return &user, nil
}

// UpdateProfile applies name, phone and photo changes. The previous photo
// is deleted best-effort after the row is saved.
func (s *UserService) UpdateProfile(ctx context.Context, user *models.User, in ProfileInput) (*models.User, error) {
	v := make(validation.Violations)
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		validation.Required("name", name, v)
		validation.MaxLen("name", name, 255, v)
		in.Name = &name
	}
	if in.Phone != nil {
		validation.MaxLen("phone", *in.Phone, 50, v)
	}
	if !v.Empty() {
		return nil, Invalid(v)
	}

	updated := *user
	if in.Name != nil {
		updated.Name = *in.Name
	}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if phone == "" {
			updated.Phone = nil
		} else {
			updated.Phone = &phone
		}
	}

	var oldPhoto string
	if in.PhotoPath != "" {
		url, err := s.blobs.Upload(ctx, in.PhotoPath)
		if err != nil {
			return nil, Upstream("upload profile photo", err)
		}
		if user.ProfilePhoto != nil {
			oldPhoto = *user.ProfilePhoto
		}
		updated.ProfilePhoto = &url
	}

	err := s.db.WithContext(ctx).Model(&models.User{ID: user.ID}).
		Select("name", "phone", "profile_photo").
		Updates(&updated).Error
	if err != nil {
		return nil, Upstream("update profile", err)
	}

	if oldPhoto != "" {
		if err := s.blobs.Delete(ctx, oldPhoto); err != nil {
			logger.WithContext(ctx, s.log).Warn("delete old profile photo", zap.String("url", oldPhoto), zap.Error(err))
		}
	}
	return &updated, nil
}

// ChangePassword verifies the current password and stores a new one.
func (s *UserService) ChangePassword(ctx context.Context, user *models.User, current, next string) error {
	v := make(validation.Violations)
	validation.Required("currentPassword", current, v)
	validation.Required("newPassword", next, v)
	if !v.Empty() {
		return Invalid(v)
	}
	if !auth.CheckPassword(user.Password, current) {
		return ErrInvalidCredentials
	}
	if err := auth.ValidatePassword(next, user.Name, user.Email); err != nil {
		var pe *auth.PasswordError
		if errors.As(err, &pe) {
			return InvalidField("newPassword", pe.Code)
		}
		return Upstream("validate password", err)
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return Upstream("hash password", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.User{ID: user.ID}).Update("password", hash).Error; err != nil {
		return Upstream("update password", err)
	}
	user.Password = hash
	return nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}
