package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"edupay-service/internal/model"
	"edupay-service/pkg/crypto"
	"edupay-service/pkg/jwtutil"
	"edupay-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	searchMinLength = 3
	searchLimit     = 20
)

type SchoolService struct {
	db     *gorm.DB
	hasher *crypto.Hasher
	tokens TokenIssuer
	log    *zap.Logger
}

func NewSchoolService(db *gorm.DB, hasher *crypto.Hasher, tokens TokenIssuer, log *zap.Logger) *SchoolService {
	return &SchoolService{db: db, hasher: hasher, tokens: tokens, log: log}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a school awaiting admin approval
func (s *SchoolService) Register(ctx context.Context, name, email, password string) (*model.School, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, validationError("email + password requis")
	}

	db := s.db.WithContext(ctx)
	defer prometheus.TrackDBOperation("query")(time.Now())
	var count int64
	if err := db.Model(&model.School{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	school := &model.School{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: hashed,
	}
	if err := db.Create(school).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create school: %w", err)
	}

	s.log.Info("School registered", zap.String("school_id", school.ID), zap.String("email", email))
	return school, nil
}

// Login authenticates an approved school. Approval is checked before the password.
func (s *SchoolService) Login(ctx context.Context, email, password string) (string, *model.School, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, validationError("email + password requis")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var school model.School
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&school).Error; err != nil {
		return "", nil, notFound(err, ErrSchoolNotFound)
	}
	if !school.IsApproved {
		return "", nil, ErrPendingApproval
	}
	if err := s.hasher.Check(school.Password, password); err != nil {
		return "", nil, ErrWrongPassword
	}

	token, err := s.tokens.IssueDefault(school.ID, jwtutil.RoleSchool)
	if err != nil {
		return "", nil, fmt.Errorf("issue school token: %w", err)
	}
	return token, &school, nil
}

// SetApproval sets the approval flag; repeating the same value is a no-op
func (s *SchoolService) SetApproval(ctx context.Context, schoolID string, approve bool) (*model.School, error) {
	db := s.db.WithContext(ctx)

	defer prometheus.TrackDBOperation("update")(time.Now())
	var school model.School
	if err := db.First(&school, "id = ?", schoolID).Error; err != nil {
		return nil, notFound(err, ErrSchoolNotFound)
	}
	if err := db.Model(&school).Update("is_approved", approve).Error; err != nil {
		return nil, fmt.Errorf("update approval: %w", err)
	}
	school.IsApproved = approve

	s.log.Info("School approval updated", zap.String("school_id", school.ID), zap.Bool("approved", approve))
	return &school, nil
}

// Me loads the school with its students and issued fees
func (s *SchoolService) Me(ctx context.Context, schoolID string) (*model.School, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var school model.School
	err := s.db.WithContext(ctx).
		Preload("Students", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("Fees", func(db *gorm.DB) *gorm.DB { return db.Order("due_date ASC") }).
		First(&school, "id = ?", schoolID).Error
	if err != nil {
		return nil, notFound(err, ErrSchoolNotFound)
	}
	return &school, nil
}

// Search matches name or email case-insensitively
func (s *SchoolService) Search(ctx context.Context, q string) ([]model.School, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, validationError("Query manquante")
	}
	if len([]rune(q)) < searchMinLength {
		return nil, validationError(fmt.Sprintf("La recherche doit contenir au moins %d caractères", searchMinLength))
	}

	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
	defer prometheus.TrackDBOperation("query")(time.Now())
	schools := make([]model.School, 0)
	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\'", pattern, pattern).
		Order("name ASC").
		Limit(searchLimit).
		Find(&schools).Error
	if err != nil {
		return nil, fmt.Errorf("search schools: %w", err)
	}
	return schools, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
