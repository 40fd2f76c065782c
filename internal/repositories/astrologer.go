package repositories

import (
	"context"
	"errors"
	"fmt"

	"talkastro/internal/models"

	"gorm.io/gorm"
)

var ErrAstrologerNotFound = errors.New("astrologer not found")

// AstrologerFilter narrows the public directory listing.
type AstrologerFilter struct {
	Specialty string
	Language  string
	MaxPrice  string // decimal string; empty means no cap
}

type AstrologerRepository interface {
	Create(ctx context.Context, astrologer *models.Astrologer) error
	GetByID(ctx context.Context, id uint) (*models.Astrologer, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Astrologer, error)
	Update(ctx context.Context, astrologer *models.Astrologer) error
	Approve(ctx context.Context, id uint) error

	ListApproved(ctx context.Context, filter AstrologerFilter, limit, offset int) ([]models.Astrologer, int64, error)
	ListPending(ctx context.Context, limit int) ([]models.Astrologer, error)
	CountApproved(ctx context.Context) (int64, error)
	CountPending(ctx context.Context) (int64, error)
	AverageRating(ctx context.Context) (float64, error)
	RecentApplications(ctx context.Context, limit int) ([]models.Astrologer, error)
}

type astrologerRepository struct {
	db *gorm.DB
}

func NewAstrologerRepository(db *gorm.DB) AstrologerRepository {
	return &astrologerRepository{db: db}
}

func (r *astrologerRepository) Create(ctx context.Context, astrologer *models.Astrologer) error {
	if err := r.db.WithContext(ctx).Create(astrologer).Error; err != nil {
		return fmt.Errorf("failed to create astrologer profile: %w", err)
	}
	return nil
}

func (r *astrologerRepository) GetByID(ctx context.Context, id uint) (*models.Astrologer, error) {
	var astrologer models.Astrologer
	if err := r.db.WithContext(ctx).First(&astrologer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAstrologerNotFound
		}
		return nil, fmt.Errorf("failed to get astrologer: %w", err)
	}
	return &astrologer, nil
}

func (r *astrologerRepository) GetByUserID(ctx context.Context, userID uint) (*models.Astrologer, error) {
	var astrologer models.Astrologer
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&astrologer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAstrologerNotFound
		}
		return nil, fmt.Errorf("failed to get astrologer by user: %w", err)
	}
	return &astrologer, nil
}

func (r *astrologerRepository) Update(ctx context.Context, astrologer *models.Astrologer) error {
	if err := r.db.WithContext(ctx).Save(astrologer).Error; err != nil {
		return fmt.Errorf("failed to update astrologer: %w", err)
	}
	return nil
}

func (r *astrologerRepository) Approve(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.Astrologer{}).
		Where("id = ?", id).
		Update("approved", true)
	if result.Error != nil {
		return fmt.Errorf("failed to approve astrologer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAstrologerNotFound
	}
	return nil
}

func (r *astrologerRepository) ListApproved(ctx context.Context, filter AstrologerFilter, limit, offset int) ([]models.Astrologer, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Astrologer{}).Where("approved = ?", true)

	if filter.Specialty != "" {
		query = query.Where("specialties LIKE ?", "%"+filter.Specialty+"%")
	}
	if filter.Language != "" {
		query = query.Where("languages LIKE ?", "%"+filter.Language+"%")
	}
	if filter.MaxPrice != "" {
		query = query.Where("session_price <= ?", filter.MaxPrice)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count astrologers: %w", err)
	}

	var astrologers []models.Astrologer
	err := query.
		Order("rating DESC, id").
		Limit(limit).
		Offset(offset).
		Find(&astrologers).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list astrologers: %w", err)
	}
	return astrologers, total, nil
}

func (r *astrologerRepository) ListPending(ctx context.Context, limit int) ([]models.Astrologer, error) {
	var astrologers []models.Astrologer
	err := r.db.WithContext(ctx).
		Where("approved = ?", false).
		Order("created_at").
		Limit(limit).
		Find(&astrologers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending astrologers: %w", err)
	}
	return astrologers, nil
}

func (r *astrologerRepository) CountApproved(ctx context.Context) (int64, error) {
	return r.countWhere(ctx, "approved = ?", true)
}

func (r *astrologerRepository) CountPending(ctx context.Context) (int64, error) {
	return r.countWhere(ctx, "approved = ?", false)
}

func (r *astrologerRepository) countWhere(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Astrologer{}).
		Where(query, args...).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count astrologers: %w", err)
	}
	return count, nil
}

func (r *astrologerRepository) AverageRating(ctx context.Context) (float64, error) {
	var avg float64
	err := r.db.WithContext(ctx).Model(&models.Astrologer{}).
		Where("approved = ? AND rating_count > 0", true).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&avg).Error
	if err != nil {
		return 0, fmt.Errorf("failed to average ratings: %w", err)
	}
	return avg, nil
}

func (r *astrologerRepository) RecentApplications(ctx context.Context, limit int) ([]models.Astrologer, error) {
	var astrologers []models.Astrologer
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&astrologers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get recent applications: %w", err)
	}
	return astrologers, nil
}
