package models

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sammiepius/homelink-backend/validation"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"tenant", RoleTenant, true},
		{" Landlord ", RoleLandlord, true},
		{"ADMIN", RoleAdmin, true},
		{"owner", Role("OWNER"), false},
		{"", Role(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseRole(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseRole(%q) = %q,%v want %q,%v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestProperty_GetOwnerID(t *testing.T) {
	p := &Property{LandlordID: 42}
	if got := p.GetOwnerID(); got != 42 {
		t.Errorf("GetOwnerID() = %d, want 42", got)
	}
}

func assertActiveInvariant(t *testing.T, p *Property) {
	t.Helper()
	if p.IsActive && (!p.Approved || p.Rejected) {
		t.Fatalf("invariant broken: %+v", *p)
	}
}

func TestProperty_Approve(t *testing.T) {
	p := &Property{}
	if err := p.Approve(); err != nil {
		t.Fatalf("approve pending: %v", err)
	}
	if p.State() != StateApproved || p.IsActive {
		t.Fatalf("unexpected state after approve: %+v", *p)
	}
	assertActiveInvariant(t, p)

	p.IsActive = true
	before := *p
	if err := p.Approve(); !errors.Is(err, ErrAlreadyApproved) {
		t.Fatalf("expected ErrAlreadyApproved, got %v", err)
	}
	if p.Approved != before.Approved || p.Rejected != before.Rejected || p.IsActive != before.IsActive {
		t.Fatalf("state changed on failed approve: %+v", *p)
	}
}

func TestProperty_Reject(t *testing.T) {
	tests := []struct {
		name    string
		start   Property
		wantErr error
	}{
		{"pending", Property{}, nil},
		{"approved inactive", Property{Approved: true}, nil},
		{"approved active", Property{Approved: true, IsActive: true}, nil},
		{"already rejected", Property{Rejected: true}, ErrAlreadyRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.start
			err := p.Reject()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Reject() error = %v, want %v", err, tt.wantErr)
			}
			if p.Approved || !p.Rejected || p.IsActive {
				t.Fatalf("expected rejected inactive, got %+v", p)
			}
			assertActiveInvariant(t, &p)
		})
	}
}

func TestProperty_RejectedIsTerminal(t *testing.T) {
	p := &Property{}
	_ = p.Reject()
	if err := p.ToggleActive(); !errors.Is(err, ErrNotApproved) {
		t.Fatalf("expected ErrNotApproved, got %v", err)
	}
	if p.State() != StateRejected {
		t.Fatalf("expected rejected, got %s", p.State())
	}
}

func TestProperty_SetActive(t *testing.T) {
	tests := []struct {
		name    string
		start   Property
		wantErr error
	}{
		{"pending", Property{}, ErrNotApproved},
		{"approved", Property{Approved: true}, nil},
		// not reachable through transitions but guarded anyway
		{"approved and rejected", Property{Approved: true, Rejected: true}, ErrRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.start
			err := p.SetActive(true)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SetActive() error = %v, want %v", err, tt.wantErr)
			}
			assertActiveInvariant(t, &p)
		})
	}
}

func TestProperty_ToggleActive(t *testing.T) {
	p := &Property{Approved: true}
	for i, want := range []bool{true, false, true} {
		if err := p.ToggleActive(); err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		if p.IsActive != want {
			t.Fatalf("toggle %d: isActive = %v, want %v", i, p.IsActive, want)
		}
	}
}

func TestProperty_Images(t *testing.T) {
	p := &Property{Images: []string{"https://a/1.jpg", "https://a/2.jpg", "https://a/3.jpg"}}
	if !p.HasImage("https://a/2.jpg") || p.HasImage("https://a/9.jpg") {
		t.Fatal("HasImage mismatch")
	}
	got := p.WithoutImage("https://a/2.jpg")
	if len(got) != 2 || got[0] != "https://a/1.jpg" || got[1] != "https://a/3.jpg" {
		t.Fatalf("WithoutImage() = %v", got)
	}
}

func TestValidateImages(t *testing.T) {
	tooMany := make([]string, MaxPropertyImages+1)
	for i := range tooMany {
		tooMany[i] = "https://img.example.com/" + string(rune('a'+i)) + ".jpg"
	}
	tests := []struct {
		name   string
		images []string
		field  string
	}{
		{"empty list ok", nil, ""},
		{"valid", []string{"https://res.cloudinary.com/x/a.jpg", "http://cdn.example.com/b.png"}, ""},
		{"relative", []string{"/uploads/a.jpg"}, "images[0]"},
		{"blank", []string{"https://a/x.jpg", ""}, "images[1]"},
		{"bad scheme", []string{"ftp://a/x.jpg"}, "images[0]"},
		{"duplicate", []string{"https://a/x.jpg", "https://a/x.jpg"}, "images[1]"},
		{"too many", tooMany, "images"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validation.Violations{}
			ValidateImages(tt.images, v)
			if tt.field == "" {
				if !v.Empty() {
					t.Fatalf("unexpected violations: %v", v)
				}
				return
			}
			if _, ok := v[tt.field]; !ok {
				t.Fatalf("expected violation on %s, got %v", tt.field, v)
			}
		})
	}
}

func TestAuditLog_Immutable(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	row := AuditLog{ActorRole: "ADMIN", Action: ActionApproveProperty, Entity: EntityProperty, EntityID: 1}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := db.Model(&row).Update("action", "TAMPERED").Error; !errors.Is(err, ErrAuditImmutable) {
		t.Fatalf("expected ErrAuditImmutable on update, got %v", err)
	}
	if err := db.Delete(&row).Error; !errors.Is(err, ErrAuditImmutable) {
		t.Fatalf("expected ErrAuditImmutable on delete, got %v", err)
	}
	var got AuditLog
	db.First(&got, row.ID)
	if got.Action != ActionApproveProperty {
		t.Fatalf("row changed: %+v", got)
	}
}

func TestFavorite_UniquePair(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Create(&Favorite{UserID: 1, PropertyID: 2}).Error; err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := db.Create(&Favorite{UserID: 1, PropertyID: 2}).Error; err == nil {
		t.Fatal("expected unique violation on duplicate pair")
	}
}
