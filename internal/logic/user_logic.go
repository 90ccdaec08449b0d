package logic

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"gorm.io/gorm"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/logger"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/model"
)

// DefaultCampaignChances 新用户可创建活动的次数
const DefaultCampaignChances = 3

// UserLogic 用户业务逻辑
type UserLogic struct {
	db *gorm.DB
}

// NewUserLogic 创建用户业务逻辑
func NewUserLogic(db *gorm.DB) *UserLogic {
	return &UserLogic{db: db}
}

// CreateUserInput 创建用户参数
type CreateUserInput struct {
	Email     string
	FirstName string
	LastName  string
	IsAdmin   bool
	IsSupport bool
}

// CreateUser 创建用户，邮箱唯一
func (l *UserLogic) CreateUser(ctx context.Context, in CreateUserInput) (*model.UserModel, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, newError(KindInvalidInput, "invalid email %q", in.Email)
	}

	user := &model.UserModel{
		Email:                    email,
		FirstName:                strings.TrimSpace(in.FirstName),
		LastName:                 strings.TrimSpace(in.LastName),
		IsAdmin:                  in.IsAdmin,
		IsSupport:                in.IsSupport,
		AccountStatus:            model.AccountStatusActive,
		KycStatus:                model.KycStatusPending,
		RemainingCampaignChances: DefaultCampaignChances,
	}
	db := l.db.WithContext(ctx)
	var count int64
	if err := db.Model(&model.UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, newError(KindInvalidInput, "email %s is already registered", email)
	}
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newError(KindInvalidInput, "email %s is already registered", email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.Info("User %d (%s) created, admin=%t support=%t", user.Id, email, user.IsAdmin, user.IsSupport)
	return user, nil
}

// GetUser 获取用户
func (l *UserLogic) GetUser(ctx context.Context, id int64) (*model.UserModel, error) {
	return loadUser(l.db.WithContext(ctx), id)
}

// GetUserByEmail 按邮箱获取用户
func (l *UserLogic) GetUserByEmail(ctx context.Context, email string) (*model.UserModel, error) {
	var user model.UserModel
	err := l.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(KindNotFound, "user %s not found", email)
	}
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", email, err)
	}
	return &user, nil
}
