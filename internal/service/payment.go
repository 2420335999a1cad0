package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"edupay-service/internal/model"
	"edupay-service/internal/storage"
	"edupay-service/prometheus"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PaymentInput struct {
	FeeID         string
	Amount        *decimal.Decimal
	Currency      string
	PaymentMethod string
	TransactionID string
}

// ReceiptStore persists uploaded payment proofs
type ReceiptStore interface {
	Save(src io.Reader) (string, error)
	Remove(path string) error
	MaxBytes() int64
}

type PaymentService struct {
	db       *gorm.DB
	receipts ReceiptStore
	log      *zap.Logger
}

func NewPaymentService(db *gorm.DB, receipts ReceiptStore, log *zap.Logger) *PaymentService {
	return &PaymentService{db: db, receipts: receipts, log: log}
}

// ReceiptLimit is the largest proof file AttachReceipt accepts
func (s *PaymentService) ReceiptLimit() int64 {
	return s.receipts.MaxBytes()
}

// ParsePaymentStatus accepts the settlement outcomes a school may record. "rejected" means failed.
func ParsePaymentStatus(value string) (model.PaymentStatus, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(model.PaymentCompleted):
		return model.PaymentCompleted, nil
	case string(model.PaymentFailed), "rejected":
		return model.PaymentFailed, nil
	default:
		return "", validationError("status doit être 'completed' ou 'failed'")
	}
}

// Create records a pending payment and moves the fee to payment_pending_validation, atomically
func (s *PaymentService) Create(ctx context.Context, parentID string, in PaymentInput) (*model.Payment, error) {
	in.FeeID = strings.TrimSpace(in.FeeID)
	if in.FeeID == "" {
		return nil, validationError("feeId requis")
	}
	if err := checkAmount(in.Amount); err != nil {
		return nil, err
	}

	defer prometheus.TrackDBOperation("transaction")(time.Now())
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	var fee model.Fee
	if err := forUpdate(tx).Preload("Child").First(&fee, "id = ?", in.FeeID).Error; err != nil {
		return nil, notFound(err, ErrFeeNotFound)
	}
	if fee.Child == nil || fee.Child.ParentID != parentID {
		return nil, ErrFeeNotOwned
	}
	if fee.Status != model.FeePending {
		return nil, ErrFeeSettled
	}

	currency, err := normalizeCurrency(in.Currency, fee.Currency)
	if err != nil {
		return nil, err
	}

	payment := &model.Payment{
		FeeID:         fee.ID,
		ParentID:      parentID,
		Amount:        *in.Amount,
		Currency:      currency,
		PaymentMethod: strings.TrimSpace(in.PaymentMethod),
		TransactionID: strings.TrimSpace(in.TransactionID),
		Status:        model.PaymentPending,
	}
	if err := tx.Create(payment).Error; err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	result := tx.Model(&model.Fee{}).
		Where("id = ? AND status = ?", fee.ID, model.FeePending).
		Update("status", model.FeePaymentPendingValidation)
	if result.Error != nil {
		return nil, fmt.Errorf("update fee status: %w", result.Error)
	}
	if result.RowsAffected != 1 {
		return nil, ErrFeeSettled
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("commit payment: %w", err)
	}

	prometheus.RecordPaymentTransition(string(model.PaymentPending))
	s.log.Info("Payment recorded",
		zap.String("payment_id", payment.ID),
		zap.String("fee_id", fee.ID),
		zap.String("parent_id", parentID))
	return payment, nil
}

// ListForParent returns the parent's payments, newest first, with fee and child
func (s *PaymentService) ListForParent(ctx context.Context, parentID string) ([]model.Payment, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	payments := make([]model.Payment, 0)
	err := s.db.WithContext(ctx).
		Preload("Fee").
		Preload("Fee.Child", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "class_grade")
		}).
		Where("parent_id = ?", parentID).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// UpdateStatus settles a pending payment on behalf of the school that issued its fee.
// The payment and fee change together or not at all.
func (s *PaymentService) UpdateStatus(ctx context.Context, schoolID, paymentID string, status model.PaymentStatus) (*model.Payment, error) {
	var feeStatus model.FeeStatus
	switch status {
	case model.PaymentCompleted:
		feeStatus = model.FeePaid
	case model.PaymentFailed:
		feeStatus = model.FeePending
	default:
		return nil, validationError("status doit être 'completed' ou 'failed'")
	}

	defer prometheus.TrackDBOperation("transaction")(time.Now())
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	var payment model.Payment
	if err := forUpdate(tx).First(&payment, "id = ?", paymentID).Error; err != nil {
		return nil, notFound(err, ErrPaymentNotFound)
	}
	var fee model.Fee
	if err := forUpdate(tx).First(&fee, "id = ?", payment.FeeID).Error; err != nil {
		return nil, notFound(err, ErrPaymentNotFound)
	}
	if fee.SchoolID != schoolID {
		return nil, ErrPaymentOtherSchool
	}
	if payment.Status != model.PaymentPending {
		return nil, ErrPaymentSettled
	}

	if err := tx.Model(&payment).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("update payment status: %w", err)
	}
	if err := tx.Model(&fee).Update("status", feeStatus).Error; err != nil {
		return nil, fmt.Errorf("update fee status: %w", err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("commit payment status: %w", err)
	}
	payment.Status = status

	prometheus.RecordPaymentTransition(string(status))
	s.log.Info("Payment settled",
		zap.String("payment_id", payment.ID),
		zap.String("school_id", schoolID),
		zap.String("status", string(status)),
		zap.String("fee_status", string(feeStatus)))
	return &payment, nil
}

// AttachReceipt stores a proof file for the parent's own payment and records its path
func (s *PaymentService) AttachReceipt(ctx context.Context, parentID, paymentID string, file io.Reader) (*model.Payment, error) {
	if file == nil {
		return nil, ErrReceiptMissing
	}

	db := s.db.WithContext(ctx)
	var payment model.Payment
	if err := db.First(&payment, "id = ?", paymentID).Error; err != nil {
		return nil, notFound(err, ErrPaymentNotFound)
	}
	if payment.ParentID != parentID {
		return nil, ErrPaymentNotYours
	}

	path, err := s.receipts.Save(file)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrEmpty):
			return nil, ErrReceiptMissing
		case errors.Is(err, storage.ErrTooLarge):
			return nil, ErrReceiptTooLarge
		case errors.Is(err, storage.ErrUnsupportedType):
			return nil, ErrReceiptType
		}
		return nil, fmt.Errorf("store receipt: %w", err)
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	previous := payment.ReceiptData
	if err := db.Model(&payment).Update("receipt_data", path).Error; err != nil {
		if rmErr := s.receipts.Remove(path); rmErr != nil {
			s.log.Warn("Failed to remove orphaned receipt", zap.String("path", path), zap.Error(rmErr))
		}
		return nil, fmt.Errorf("save receipt path: %w", err)
	}
	payment.ReceiptData = &path

	if previous != nil && *previous != path {
		if err := s.receipts.Remove(*previous); err != nil {
			s.log.Warn("Failed to remove replaced receipt", zap.String("path", *previous), zap.Error(err))
		}
	}

	s.log.Info("Receipt attached", zap.String("payment_id", payment.ID), zap.String("path", path))
	return &payment, nil
}
