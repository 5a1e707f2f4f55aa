// Package store persists named plan inputs (settings, adjustment and
// objectives) so they can be listed and re-solved later. The solver itself
// keeps no state; this is the persistence collaborator the server uses.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/factory-planner/internal/graph"
	"github.com/iwvelando/factory-planner/internal/objective"
	apperrors "github.com/iwvelando/factory-planner/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config selects the database backing the store.
type Config struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`
	// DSN is a file path or ":memory:" for sqlite, a connection string for
	// postgres.
	DSN string `yaml:"dsn"`
}

// SavedPlan is a stored set of solver inputs.
type SavedPlan struct {
	ID         string                          `json:"id"`
	Name       string                          `json:"name"`
	DatasetID  string                          `json:"datasetId"`
	Settings   map[string]graph.RecipeSettings `json:"settings,omitempty"`
	Adjustment graph.AdjustmentData            `json:"adjustment"`
	Objectives []objective.Objective           `json:"objectives"`
	CreatedAt  time.Time                       `json:"createdAt"`
	UpdatedAt  time.Time                       `json:"updatedAt"`
}

// Store implements saved plan persistence using GORM
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open connects to the configured database and migrates the schema.
func Open(cfg Config, logger *zap.Logger) (*Store, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite", "":
		path := cfg.DSN
		if path == "" {
			path = ":memory:"
		}
		dialector = sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Each sqlite connection to :memory: is a separate database.
	if cfg.Driver != "postgres" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying db: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return New(db, logger)
}

// New wraps an open connection and migrates the schema.
func New(db *gorm.DB, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := db.AutoMigrate(&SavedPlanModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate saved plans: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save inserts or replaces a plan. A plan without an ID is assigned a new
// one. The stored plan is returned with its ID and timestamps set.
func (s *Store) Save(ctx context.Context, plan SavedPlan) (*SavedPlan, error) {
	if plan.Name == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "saved plan requires a name")
	}
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	} else if _, err := uuid.Parse(plan.ID); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "saved plan id must be a UUID", err)
	}

	data, err := encodePayload(&plan)
	if err != nil {
		return nil, err
	}
	model := SavedPlanModel{
		ID:        plan.ID,
		Name:      plan.Name,
		DatasetID: plan.DatasetID,
		Payload:   data,
	}

	var existing SavedPlanModel
	err = s.db.WithContext(ctx).Where("id = ?", plan.ID).First(&existing).Error
	switch {
	case err == nil:
		model.CreatedAt = existing.CreatedAt
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to find saved plan: %w", err)
	}

	// Upsert: create or update
	if err := s.db.WithContext(ctx).Save(&model).Error; err != nil {
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}
	s.logger.Debug("saved plan",
		zap.String("op", "store.Save"),
		zap.String("id", model.ID),
		zap.String("name", model.Name),
	)

	plan.CreatedAt = model.CreatedAt
	plan.UpdatedAt = model.UpdatedAt
	return &plan, nil
}

// Get retrieves a plan by ID
func (s *Store) Get(ctx context.Context, id string) (*SavedPlan, error) {
	var model SavedPlanModel
	result := s.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewWithContext(apperrors.ErrCodeNotFound,
				fmt.Sprintf("saved plan %s not found", id), map[string]any{"id": id})
		}
		return nil, fmt.Errorf("failed to find saved plan: %w", result.Error)
	}
	return modelToPlan(&model)
}

// List returns every plan, most recently updated first.
func (s *Store) List(ctx context.Context) ([]SavedPlan, error) {
	var models []SavedPlanModel
	result := s.db.WithContext(ctx).Order("updated_at DESC").Order("id").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list saved plans: %w", result.Error)
	}

	plans := make([]SavedPlan, 0, len(models))
	for i := range models {
		plan, err := modelToPlan(&models[i])
		if err != nil {
			s.logger.Warn("skipping unreadable saved plan",
				zap.String("op", "store.List"),
				zap.String("id", models[i].ID),
				zap.Error(err),
			)
			continue
		}
		plans = append(plans, *plan)
	}
	return plans, nil
}

// Delete removes a plan by ID
func (s *Store) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&SavedPlanModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete saved plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewWithContext(apperrors.ErrCodeNotFound,
			fmt.Sprintf("saved plan %s not found", id), map[string]any{"id": id})
	}
	return nil
}

func modelToPlan(model *SavedPlanModel) (*SavedPlan, error) {
	plan := &SavedPlan{
		ID:        model.ID,
		Name:      model.Name,
		DatasetID: model.DatasetID,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	if err := decodePayload(model.Payload, plan); err != nil {
		return nil, fmt.Errorf("saved plan %s: %w", model.ID, err)
	}
	return plan, nil
}
