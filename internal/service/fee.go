package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"edupay-service/internal/model"
	"edupay-service/pkg/jwtutil"
	"edupay-service/prometheus"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultCurrency applies when a fee is issued without one
const DefaultCurrency = "XOF"

type FeeInput struct {
	ChildID     string
	FeeType     string
	Amount      *decimal.Decimal
	Currency    string
	DueDate     string
	Description string
}

type FeeService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewFeeService(db *gorm.DB, log *zap.Logger) *FeeService {
	return &FeeService{db: db, log: log}
}

// Create issues a fee from schoolID against one of its enrolled children
func (s *FeeService) Create(ctx context.Context, schoolID string, in FeeInput) (*model.Fee, error) {
	in.ChildID = strings.TrimSpace(in.ChildID)
	in.FeeType = strings.TrimSpace(in.FeeType)
	if in.ChildID == "" || in.FeeType == "" {
		return nil, validationError("childId et feeType requis")
	}
	if err := checkAmount(in.Amount); err != nil {
		return nil, err
	}
	currency, err := normalizeCurrency(in.Currency, DefaultCurrency)
	if err != nil {
		return nil, err
	}
	dueDate, err := parseDueDate(in.DueDate)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	defer prometheus.TrackDBOperation("insert")(time.Now())

	var child model.Child
	if err := db.First(&child, "id = ?", in.ChildID).Error; err != nil {
		return nil, notFound(err, ErrChildNotFound)
	}
	if child.SchoolID != schoolID {
		return nil, ErrChildNotEnrolled
	}

	fee := &model.Fee{
		ChildID:     child.ID,
		SchoolID:    schoolID,
		FeeType:     in.FeeType,
		Amount:      *in.Amount,
		Currency:    currency,
		DueDate:     dueDate,
		Description: strings.TrimSpace(in.Description),
		Status:      model.FeePending,
	}
	if err := db.Create(fee).Error; err != nil {
		return nil, fmt.Errorf("create fee: %w", err)
	}

	prometheus.RecordFeeOperation("create")
	s.log.Info("Fee issued",
		zap.String("fee_id", fee.ID),
		zap.String("school_id", schoolID),
		zap.String("child_id", child.ID),
		zap.String("amount", fee.Amount.String()))
	return fee, nil
}

// ListForChild returns the child's fees by due date. Parents see their own children, schools their students.
func (s *FeeService) ListForChild(ctx context.Context, caller jwtutil.Identity, childID string) ([]model.Fee, error) {
	db := s.db.WithContext(ctx)
	defer prometheus.TrackDBOperation("query")(time.Now())

	var child model.Child
	if err := db.First(&child, "id = ?", childID).Error; err != nil {
		return nil, notFound(err, ErrChildNotFound)
	}

	allowed := (caller.Role == jwtutil.RoleParent && child.ParentID == caller.SubjectID) ||
		(caller.Role == jwtutil.RoleSchool && child.SchoolID == caller.SubjectID)
	if !allowed {
		return nil, ErrFeeAccessDenied
	}

	fees := make([]model.Fee, 0)
	err := db.
		Preload("School", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }).
		Where("child_id = ?", child.ID).
		Order("due_date ASC").
		Find(&fees).Error
	if err != nil {
		return nil, err
	}
	return fees, nil
}

// maxAmount is the first value that no longer fits a numeric(12,2) column
var maxAmount = decimal.New(1, 10)

func checkAmount(amount *decimal.Decimal) error {
	if amount == nil {
		return validationError("amount requis")
	}
	if amount.IsNegative() {
		return validationError("amount doit être positif ou nul")
	}
	if !amount.Equal(amount.Round(2)) {
		return validationError("amount ne peut pas avoir plus de 2 décimales")
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return validationError("amount trop élevé")
	}
	return nil
}

func normalizeCurrency(currency, fallback string) (string, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return fallback, nil
	}
	if len(currency) != 3 {
		return "", validationError("currency doit être un code ISO à 3 lettres")
	}
	return currency, nil
}

// parseDueDate accepts a calendar date or an RFC 3339 timestamp
func parseDueDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, validationError("dueDate requis")
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, validationError("dueDate invalide")
}
