package service

import (
	"context"
	"fmt"
	"time"

	"edupay-service/internal/model"
	"edupay-service/pkg/crypto"
	"edupay-service/pkg/jwtutil"
	"edupay-service/prometheus"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Stats is the platform-wide dashboard summary
type Stats struct {
	Schools         int64           `json:"schools"`
	ApprovedSchools int64           `json:"approvedSchools"`
	Parents         int64           `json:"parents"`
	Payments        int64           `json:"payments"`
	TotalPaidAmount decimal.Decimal `json:"totalPaidAmount"`
}

type ParentSummary struct {
	ID         string    `json:"id"`
	Phone      string    `json:"phone"`
	Name       string    `json:"name"`
	Verified   bool      `json:"verified"`
	ChildCount int64     `json:"childCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

type PaymentSummary struct {
	ID         string              `json:"id"`
	Amount     decimal.Decimal     `json:"amount"`
	Currency   string              `json:"currency"`
	Status     model.PaymentStatus `json:"status"`
	CreatedAt  time.Time           `json:"createdAt"`
	ParentName string              `json:"parentName"`
	FeeType    string              `json:"feeType"`
	SchoolName string              `json:"schoolName"`
}

type AdminService struct {
	db     *gorm.DB
	hasher *crypto.Hasher
	tokens TokenIssuer
	log    *zap.Logger
}

func NewAdminService(db *gorm.DB, hasher *crypto.Hasher, tokens TokenIssuer, log *zap.Logger) *AdminService {
	return &AdminService{db: db, hasher: hasher, tokens: tokens, log: log}
}

func (s *AdminService) Login(ctx context.Context, email, password string) (string, *model.SuperUser, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, validationError("email + password requis")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var admin model.SuperUser
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&admin).Error; err != nil {
		return "", nil, notFound(err, ErrAdminNotFound)
	}
	if err := s.hasher.Check(admin.Password, password); err != nil {
		return "", nil, ErrWrongPassword
	}

	token, err := s.tokens.IssueDefault(admin.ID, jwtutil.RoleAdmin)
	if err != nil {
		return "", nil, fmt.Errorf("issue admin token: %w", err)
	}
	return token, &admin, nil
}

// CreateSuperUser provisions an administrator account
func (s *AdminService) CreateSuperUser(ctx context.Context, email, password string) (*model.SuperUser, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, validationError("email + password requis")
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	admin := &model.SuperUser{Email: email, Password: hashed, Role: jwtutil.RoleAdmin}
	if err := s.db.WithContext(ctx).Create(admin).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create super user: %w", err)
	}
	s.log.Info("Super user created", zap.String("admin_id", admin.ID), zap.String("email", admin.Email))
	return admin, nil
}

func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	db := s.db.WithContext(ctx)
	defer prometheus.TrackDBOperation("aggregate")(time.Now())

	var stats Stats
	if err := db.Model(&model.School{}).Count(&stats.Schools).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.School{}).Where("is_approved = ?", true).Count(&stats.ApprovedSchools).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Parent{}).Count(&stats.Parents).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Payment{}).Count(&stats.Payments).Error; err != nil {
		return nil, err
	}

	var paid struct {
		Total decimal.Decimal
	}
	err := db.Model(&model.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("status = ?", model.PaymentCompleted).
		Scan(&paid).Error
	if err != nil {
		return nil, fmt.Errorf("sum completed payments: %w", err)
	}
	stats.TotalPaidAmount = paid.Total
	return &stats, nil
}

func (s *AdminService) ListSchools(ctx context.Context) ([]model.School, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	schools := make([]model.School, 0)
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&schools).Error
	return schools, err
}

func (s *AdminService) ListParents(ctx context.Context) ([]ParentSummary, error) {
	db := s.db.WithContext(ctx)
	defer prometheus.TrackDBOperation("query")(time.Now())

	var parents []model.Parent
	if err := db.Order("created_at DESC").Find(&parents).Error; err != nil {
		return nil, err
	}

	var counts []struct {
		ParentID string
		Total    int64
	}
	err := db.Model(&model.Child{}).
		Select("parent_id, COUNT(*) AS total").
		Group("parent_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	byParent := make(map[string]int64, len(counts))
	for _, c := range counts {
		byParent[c.ParentID] = c.Total
	}

	summaries := make([]ParentSummary, 0, len(parents))
	for _, p := range parents {
		summaries = append(summaries, ParentSummary{
			ID:         p.ID,
			Phone:      p.Phone,
			Name:       p.Name,
			Verified:   p.Verified,
			ChildCount: byParent[p.ID],
			CreatedAt:  p.CreatedAt,
		})
	}
	return summaries, nil
}

// SetParentVerified lets an admin vouch for (or revoke) a parent account
func (s *AdminService) SetParentVerified(ctx context.Context, parentID string, verify bool) (*model.Parent, error) {
	db := s.db.WithContext(ctx)

	defer prometheus.TrackDBOperation("update")(time.Now())
	var parent model.Parent
	if err := db.First(&parent, "id = ?", parentID).Error; err != nil {
		return nil, notFound(err, ErrParentNotFound)
	}
	if err := db.Model(&parent).Update("verified", verify).Error; err != nil {
		return nil, fmt.Errorf("update parent verification: %w", err)
	}
	parent.Verified = verify

	s.log.Info("Parent verification updated", zap.String("parent_id", parent.ID), zap.Bool("verified", verify))
	return &parent, nil
}

func (s *AdminService) ListPayments(ctx context.Context) ([]PaymentSummary, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var payments []model.Payment
	err := s.db.WithContext(ctx).
		Preload("Parent").
		Preload("Fee.School").
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]PaymentSummary, 0, len(payments))
	for _, p := range payments {
		summary := PaymentSummary{
			ID:        p.ID,
			Amount:    p.Amount,
			Currency:  p.Currency,
			Status:    p.Status,
			CreatedAt: p.CreatedAt,
		}
		if p.Parent != nil {
			summary.ParentName = p.Parent.Name
			if summary.ParentName == "" {
				summary.ParentName = p.Parent.Phone
			}
		}
		if p.Fee != nil {
			summary.FeeType = p.Fee.FeeType
			if p.Fee.School != nil {
				summary.SchoolName = p.Fee.School.Name
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
