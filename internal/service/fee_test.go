package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"edupay-service/internal/model"
	"edupay-service/internal/testutil"
	"edupay-service/pkg/jwtutil"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestChildCreateAndList(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := NewChildService(db, zap.NewNop())
	ctx := context.Background()

	school := testutil.CreateSchool(t, db, "EPP Cocody", "cocody@ecole.ci", "pw", true)
	parent := testutil.CreateParent(t, db, "+2250700000400", "Parent")

	if _, err := svc.Create(ctx, parent.ID, ChildInput{Name: "Zoé", SchoolID: "missing"}); !errors.Is(err, ErrSchoolNotFound) {
		t.Fatalf("expected ErrSchoolNotFound, got %v", err)
	}
	if _, err := svc.Create(ctx, parent.ID, ChildInput{Name: "", SchoolID: school.ID}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	zoe, err := svc.Create(ctx, parent.ID, ChildInput{Name: "Zoé", ClassGrade: "CE2", SchoolID: school.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	adam, err := svc.Create(ctx, parent.ID, ChildInput{Name: "Adam", ClassGrade: "CP", SchoolID: school.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	later := testutil.CreateFee(t, db, zoe, "1000", time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))
	sooner := testutil.CreateFee(t, db, zoe, "2000", time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC))
	paid := testutil.CreateFee(t, db, zoe, "3000", time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC))
	if err := db.Model(paid).Update("status", model.FeePaid).Error; err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	children, err := svc.ListForParent(ctx, parent.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(children) != 2 || children[0].ID != adam.ID || children[1].ID != zoe.ID {
		t.Fatalf("children not ordered by name: %+v", children)
	}
	if children[1].School == nil || children[1].School.Name != "EPP Cocody" {
		t.Fatalf("school not loaded: %+v", children[1].School)
	}
	fees := children[1].Fees
	if len(fees) != 2 || fees[0].ID != sooner.ID || fees[1].ID != later.ID {
		t.Fatalf("expected unpaid fees by due date, got %+v", fees)
	}

	others, err := svc.ListForParent(ctx, "someone-else")
	if err != nil || len(others) != 0 {
		t.Fatalf("expected no children for another parent: %v %d", err, len(others))
	}
}

func TestFeeCreate(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := NewFeeService(db, zap.NewNop())
	ctx := context.Background()

	school := testutil.CreateSchool(t, db, "Issuer", "issuer@ecole.ci", "pw", true)
	other := testutil.CreateSchool(t, db, "Other", "other@ecole.ci", "pw", true)
	parent := testutil.CreateParent(t, db, "+2250700000500", "Parent")
	child := testutil.CreateChild(t, db, "Kader", school, parent)

	fee, err := svc.Create(ctx, school.ID, FeeInput{
		ChildID: child.ID, FeeType: "Cantine", Amount: amount("12500.50"), DueDate: "2025-11-30",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if fee.Status != model.FeePending || fee.SchoolID != school.ID || fee.Currency != DefaultCurrency {
		t.Fatalf("unexpected fee %+v", fee)
	}
	if !fee.DueDate.Equal(time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected due date %s", fee.DueDate)
	}

	if _, err := svc.Create(ctx, school.ID, FeeInput{
		ChildID: child.ID, FeeType: "Transport", Amount: amount("100"), Currency: "eur", DueDate: "2025-11-30T10:00:00+01:00",
	}); err != nil {
		t.Fatalf("create with RFC3339 date: %v", err)
	}

	invalid := []FeeInput{
		{FeeType: "Cantine", Amount: amount("1"), DueDate: "2025-11-30"},
		{ChildID: child.ID, Amount: amount("1"), DueDate: "2025-11-30"},
		{ChildID: child.ID, FeeType: "Cantine", DueDate: "2025-11-30"},
		{ChildID: child.ID, FeeType: "Cantine", Amount: amount("-1"), DueDate: "2025-11-30"},
		{ChildID: child.ID, FeeType: "Cantine", Amount: amount("12.345"), DueDate: "2025-11-30"},
		{ChildID: child.ID, FeeType: "Cantine", Amount: amount("1e11"), DueDate: "2025-11-30"},
		{ChildID: child.ID, FeeType: "Cantine", Amount: amount("1"), DueDate: "30/11/2025"},
		{ChildID: child.ID, FeeType: "Cantine", Amount: amount("1"), DueDate: "2025-11-30", Currency: "EURO"},
	}
	for i, in := range invalid {
		if _, err := svc.Create(ctx, school.ID, in); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}

	if _, err := svc.Create(ctx, school.ID, FeeInput{
		ChildID: "missing", FeeType: "Cantine", Amount: amount("1"), DueDate: "2025-11-30",
	}); !errors.Is(err, ErrChildNotFound) {
		t.Fatalf("expected ErrChildNotFound, got %v", err)
	}
	if _, err := svc.Create(ctx, other.ID, FeeInput{
		ChildID: child.ID, FeeType: "Cantine", Amount: amount("1"), DueDate: "2025-11-30",
	}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for a school the child is not enrolled in, got %v", err)
	}
}

func TestCheckAmountFitsColumn(t *testing.T) {
	accepted := []string{"0", "12.5", "12.50", "12.500", "9999999999.99"}
	for _, v := range accepted {
		if err := checkAmount(amount(v)); err != nil {
			t.Fatalf("expected %s to be accepted, got %v", v, err)
		}
	}

	rejected := []string{"12.345", "0.001", "10000000000", "1e11", "-0.01"}
	for _, v := range rejected {
		if err := checkAmount(amount(v)); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected %s to be rejected, got %v", v, err)
		}
	}
}

func TestFeeListForChildOwnership(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := NewFeeService(db, zap.NewNop())
	ctx := context.Background()

	school := testutil.CreateSchool(t, db, "Issuer", "issuer@ecole.ci", "pw", true)
	other := testutil.CreateSchool(t, db, "Other", "other@ecole.ci", "pw", true)
	parent := testutil.CreateParent(t, db, "+2250700000600", "Owner")
	stranger := testutil.CreateParent(t, db, "+2250700000601", "Stranger")
	child := testutil.CreateChild(t, db, "Awa", school, parent)
	testutil.CreateFee(t, db, child, "500", time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))
	first := testutil.CreateFee(t, db, child, "700", time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))

	for _, caller := range []jwtutil.Identity{
		{SubjectID: parent.ID, Role: jwtutil.RoleParent},
		{SubjectID: school.ID, Role: jwtutil.RoleSchool},
	} {
		fees, err := svc.ListForChild(ctx, caller, child.ID)
		if err != nil {
			t.Fatalf("%s: %v", caller.Role, err)
		}
		if len(fees) != 2 || fees[0].ID != first.ID {
			t.Fatalf("%s: expected fees by due date, got %+v", caller.Role, fees)
		}
	}

	for _, caller := range []jwtutil.Identity{
		{SubjectID: stranger.ID, Role: jwtutil.RoleParent},
		{SubjectID: other.ID, Role: jwtutil.RoleSchool},
		{SubjectID: school.ID, Role: jwtutil.RoleParent},
	} {
		if _, err := svc.ListForChild(ctx, caller, child.ID); !errors.Is(err, ErrForbidden) {
			t.Fatalf("%+v: expected forbidden, got %v", caller, err)
		}
	}

	if _, err := svc.ListForChild(ctx, jwtutil.Identity{SubjectID: parent.ID, Role: jwtutil.RoleParent}, "missing"); !errors.Is(err, ErrChildNotFound) {
		t.Fatalf("expected ErrChildNotFound, got %v", err)
	}
}
