package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"edupay-service/internal/model"
	"edupay-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ChildInput struct {
	Name       string
	ClassGrade string
	SchoolID   string
}

type ChildService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewChildService(db *gorm.DB, log *zap.Logger) *ChildService {
	return &ChildService{db: db, log: log}
}

// Create links a new child of parentID to an existing school
func (s *ChildService) Create(ctx context.Context, parentID string, in ChildInput) (*model.Child, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.SchoolID = strings.TrimSpace(in.SchoolID)
	if in.Name == "" || in.SchoolID == "" {
		return nil, validationError("name et schoolId requis")
	}

	db := s.db.WithContext(ctx)
	defer prometheus.TrackDBOperation("insert")(time.Now())

	var school model.School
	if err := db.Select("id").First(&school, "id = ?", in.SchoolID).Error; err != nil {
		return nil, notFound(err, ErrSchoolNotFound)
	}

	child := &model.Child{
		Name:       in.Name,
		ClassGrade: strings.TrimSpace(in.ClassGrade),
		SchoolID:   school.ID,
		ParentID:   parentID,
	}
	if err := db.Create(child).Error; err != nil {
		return nil, fmt.Errorf("create child: %w", err)
	}

	s.log.Info("Child registered",
		zap.String("child_id", child.ID),
		zap.String("parent_id", parentID),
		zap.String("school_id", school.ID))
	return child, nil
}

// ListForParent returns the parent's children by name, each with its school and outstanding fees by due date
func (s *ChildService) ListForParent(ctx context.Context, parentID string) ([]model.Child, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	children := make([]model.Child, 0)
	err := s.db.WithContext(ctx).
		Preload("School", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email")
		}).
		Preload("Fees", func(db *gorm.DB) *gorm.DB {
			return db.Where("status <> ?", model.FeePaid).Order("due_date ASC")
		}).
		Where("parent_id = ?", parentID).
		Order("name ASC").
		Find(&children).Error
	if err != nil {
		return nil, err
	}
	return children, nil
}
