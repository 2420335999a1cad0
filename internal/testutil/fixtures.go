package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"edupay-service/internal/model"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CodeRecorder is a notify.Sender that keeps the last code per phone
type CodeRecorder struct {
	mu    sync.Mutex
	codes map[string]string
}

func NewCodeRecorder() *CodeRecorder {
	return &CodeRecorder{codes: make(map[string]string)}
}

func (r *CodeRecorder) Send(_ context.Context, phone, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes[phone] = code
	return nil
}

func (r *CodeRecorder) Last(phone string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.codes[phone]
}

// Clock is a settable time source
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func mustHash(t testing.TB, secret string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return string(hashed)
}

func mustCreate(t testing.TB, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("create %T: %v", value, err)
	}
}

func CreateSchool(t testing.TB, db *gorm.DB, name, email, password string, approved bool) *model.School {
	t.Helper()
	school := &model.School{Name: name, Email: email, Password: mustHash(t, password), IsApproved: approved}
	mustCreate(t, db, school)
	return school
}

func CreateParent(t testing.TB, db *gorm.DB, phone, name string) *model.Parent {
	t.Helper()
	parent := &model.Parent{Phone: phone, Name: name}
	mustCreate(t, db, parent)
	return parent
}

func CreateChild(t testing.TB, db *gorm.DB, name string, school *model.School, parent *model.Parent) *model.Child {
	t.Helper()
	child := &model.Child{Name: name, ClassGrade: "CM1", SchoolID: school.ID, ParentID: parent.ID}
	mustCreate(t, db, child)
	return child
}

func CreateFee(t testing.TB, db *gorm.DB, child *model.Child, amount string, due time.Time) *model.Fee {
	t.Helper()
	fee := &model.Fee{
		ChildID:  child.ID,
		SchoolID: child.SchoolID,
		FeeType:  "Scolarité",
		Amount:   decimal.RequireFromString(amount),
		Currency: "XOF",
		DueDate:  due,
	}
	mustCreate(t, db, fee)
	return fee
}

func CreateAdmin(t testing.TB, db *gorm.DB, email, password string) *model.SuperUser {
	t.Helper()
	admin := &model.SuperUser{Email: email, Password: mustHash(t, password)}
	mustCreate(t, db, admin)
	return admin
}
