package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"edupay-service/internal/model"
	"edupay-service/internal/notify"
	"edupay-service/pkg/crypto"
	"edupay-service/pkg/jwtutil"
	"edupay-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenIssuer mints bearer tokens for authenticated subjects
type TokenIssuer interface {
	IssueDefault(subjectID, role string) (string, error)
}

// OTPService authenticates parents with one-time codes sent to their phone
type OTPService struct {
	db     *gorm.DB
	hasher *crypto.Hasher
	tokens TokenIssuer
	sender notify.Sender
	ttl    time.Duration
	log    *zap.Logger
	now    func() time.Time
}

func NewOTPService(db *gorm.DB, hasher *crypto.Hasher, tokens TokenIssuer, sender notify.Sender, ttl time.Duration, log *zap.Logger) *OTPService {
	return &OTPService{
		db:     db,
		hasher: hasher,
		tokens: tokens,
		sender: sender,
		ttl:    ttl,
		log:    log,
		now:    time.Now,
	}
}

// SetClock replaces the time source
func (s *OTPService) SetClock(now func() time.Time) {
	s.now = now
}

// RequestCode stores a fresh code for phone, creating the parent on first contact, and hands the plaintext to the sender
func (s *OTPService) RequestCode(ctx context.Context, phone, name string) error {
	phone = strings.TrimSpace(phone)
	name = strings.TrimSpace(name)
	if phone == "" {
		return validationError("phone requis")
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	hash, err := s.hasher.Hash(code)
	if err != nil {
		return fmt.Errorf("hash otp: %w", err)
	}
	expiry := s.now().Add(s.ttl).UTC()

	defer prometheus.TrackDBOperation("otp_upsert")(time.Now())
	// single statement so concurrent first contacts for one phone converge on one row
	parent := model.Parent{
		Phone:     phone,
		Name:      name,
		OTPHash:   &hash,
		OTPExpiry: &expiry,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "phone"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"otp":        hash,
			"otp_expiry": expiry,
			"name":       gorm.Expr("CASE WHEN parents.name = '' OR parents.name IS NULL THEN ? ELSE parents.name END", name),
			"updated_at": s.now().UTC(),
		}),
	}).Create(&parent).Error
	if err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	if err := s.sender.Send(ctx, phone, code); err != nil {
		return fmt.Errorf("deliver otp: %w", err)
	}

	prometheus.RecordOTP("requested")
	s.log.Info("OTP issued", zap.String("phone", phone), zap.Time("expires_at", expiry))
	return nil
}

// VerifyCode consumes the pending code for phone. Success marks the parent verified and returns a parent token.
// An expired code is cleared even though verification fails.
func (s *OTPService) VerifyCode(ctx context.Context, phone, code string) (string, *model.Parent, error) {
	phone = strings.TrimSpace(phone)
	code = strings.TrimSpace(code)
	if phone == "" || code == "" {
		return "", nil, validationError("phone et code requis")
	}

	var (
		parent  model.Parent
		expired bool
	)
	defer prometheus.TrackDBOperation("otp_verify")(time.Now())
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).Where("phone = ?", phone).First(&parent).Error; err != nil {
			return notFound(err, ErrParentNotFound)
		}
		if !parent.HasPendingCode() {
			return ErrNoPendingCode
		}

		reset := map[string]interface{}{"otp": nil, "otp_expiry": nil}
		if s.now().After(*parent.OTPExpiry) {
			expired = true
			return tx.Model(&parent).Updates(reset).Error
		}
		if err := s.hasher.Check(*parent.OTPHash, code); err != nil {
			return ErrCodeMismatch
		}

		reset["verified"] = true
		return tx.Model(&parent).Updates(reset).Error
	})
	if err != nil {
		if errors.Is(err, ErrCodeMismatch) {
			prometheus.RecordOTP("mismatch")
		}
		return "", nil, err
	}
	parent.OTPHash = nil
	parent.OTPExpiry = nil

	if expired {
		prometheus.RecordOTP("expired")
		return "", nil, ErrCodeExpired
	}
	parent.Verified = true

	token, err := s.tokens.IssueDefault(parent.ID, jwtutil.RoleParent)
	if err != nil {
		return "", nil, fmt.Errorf("issue parent token: %w", err)
	}

	prometheus.RecordOTP("verified")
	s.log.Info("Parent verified", zap.String("parent_id", parent.ID))
	return token, &parent, nil
}

// SweepExpired clears codes whose expiry passed more than olderThan ago
func (s *OTPService) SweepExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.now().Add(-olderThan).UTC()

	defer prometheus.TrackDBOperation("otp_sweep")(time.Now())
	result := s.db.WithContext(ctx).
		Model(&model.Parent{}).
		Where("otp_expiry IS NOT NULL AND otp_expiry < ?", cutoff).
		Updates(map[string]interface{}{"otp": nil, "otp_expiry": nil})
	if result.Error != nil {
		return 0, fmt.Errorf("sweep expired otp: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		prometheus.OTPCounter.WithLabelValues("swept").Add(float64(result.RowsAffected))
	}
	return result.RowsAffected, nil
}

// generateCode returns a uniformly random code in [100000, 999999]
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
