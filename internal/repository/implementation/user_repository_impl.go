package implementation

import (
	"context"
	"errors"

	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/mapper"
	"ai-canvas-be/internal/model"
	"ai-canvas-be/internal/repository/contract"
	"ai-canvas-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewUserRepository(db *gorm.DB) contract.UserRepository {
	return &UserRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *UserRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entity.User) error {
	m := r.mapper.ToModel(user)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*user = *r.mapper.ToEntity(m)
	return nil
}

func (r *UserRepositoryImpl) Update(ctx context.Context, user *entity.User) error {
	m := r.mapper.ToModel(user)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*user = *r.mapper.ToEntity(m)
	return nil
}

func (r *UserRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	var m model.User
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *UserRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	var models []*model.User
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *UserRepositoryImpl) DecrementCredits(ctx context.Context, userId uuid.UUID, amount int) (int, bool, error) {
	// Guarded update so two concurrent requests cannot overdraw
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND ai_credits >= ?", userId, amount).
		UpdateColumn("ai_credits", gorm.Expr("ai_credits - ?", amount))
	if res.Error != nil {
		return 0, false, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, false, nil
	}

	var balance int
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Select("ai_credits").Where("id = ?", userId).Scan(&balance).Error; err != nil {
		return 0, true, err
	}
	return balance, true, nil
}

func (r *UserRepositoryImpl) IncrementCredits(ctx context.Context, userId uuid.UUID, amount int) (int, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userId).
		UpdateColumn("ai_credits", gorm.Expr("ai_credits + ?", amount))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var balance int
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Select("ai_credits").Where("id = ?", userId).Scan(&balance).Error; err != nil {
		return 0, err
	}
	return balance, nil
}
