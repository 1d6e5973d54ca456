package service

import (
	"context"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"tasktracker/internal/core/domain"
	"tasktracker/internal/core/port"
	"tasktracker/internal/core/telemetry"
	ct "tasktracker/pkg/context"
	"tasktracker/pkg/tracing"
)

type CategoryService struct {
	repo    port.CategoryRepository
	lists   *ListCache[domain.Category]
	metrics *telemetry.AppMetrics
	logger  *otelzap.Logger
}

func NewCategoryService(repo port.CategoryRepository, lists *ListCache[domain.Category], metrics *telemetry.AppMetrics, logger *otelzap.Logger) *CategoryService {
	return &CategoryService{
		repo:    repo,
		lists:   lists,
		metrics: metrics,
		logger:  logger,
	}
}

func (cs *CategoryService) GetCategories(ctx context.Context, userId int) ([]domain.Category, error) {
	var categories []domain.Category

	err := tracing.ServiceSpanWrapper(ctx, "category", "GetCategories", userId, func(ctx context.Context) error {
		var err error
		categories, err = cs.lists.Load(ctx, userId, func(ctx context.Context) ([]domain.Category, error) {
			return cs.repo.GetCategories(ctx, userId)
		})
		return err
	})

	cs.metrics.RecordCategoryOperation(ctx, "list", err)

	if err != nil {
		cs.logger.Ctx(ctx).Error("category list failed", zap.Int("user_id", userId), zap.Error(err))
		return nil, err
	}

	return categories, nil
}

func (cs *CategoryService) CreateCategory(ctx context.Context, userId int, category domain.Category) (domain.Category, error) {
	category.UserId = userId

	var created domain.Category

	err := tracing.ServiceSpanWrapper(ctx, "category", "CreateCategory", userId, func(ctx context.Context) error {
		var err error
		created, err = cs.repo.CreateCategory(ctx, userId, category)
		return err
	})

	return created, cs.afterWrite(ctx, "create", userId, created.ID, err)
}

// DeleteCategory leaves todos that reference the category untouched.
func (cs *CategoryService) DeleteCategory(ctx context.Context, id int, userId int) error {
	err := tracing.ServiceSpanWrapper(ctx, "category", "DeleteCategory", userId, func(ctx context.Context) error {
		return cs.repo.DeleteCategory(ctx, id, userId)
	})

	return cs.afterWrite(ctx, "delete", userId, id, err)
}

func (cs *CategoryService) afterWrite(ctx context.Context, operation string, userId int, id int, err error) error {
	cs.metrics.RecordCategoryOperation(ctx, operation, err)

	if err != nil {
		cs.logger.Ctx(ctx).Warn("category "+operation+" failed",
			zap.Int("user_id", userId),
			zap.Int("category_id", id),
			zap.String("request_id", ct.RequestIDFrom(ctx)),
			zap.Error(err))
		return err
	}

	cs.lists.Invalidate(ctx, userId)

	cs.logger.Ctx(ctx).Info("category "+operation,
		zap.Int("user_id", userId),
		zap.Int("category_id", id))

	return nil
}
