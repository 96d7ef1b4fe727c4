//go:build integration

package integration_test

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"gorm.io/gorm"

	"github.com/santhoseks/openmrs-core/internal/config"
	"github.com/santhoseks/openmrs-core/internal/model"
	"github.com/santhoseks/openmrs-core/internal/repository/sql"
)

func loadConfig() (*config.Config, error) {
	cfg := &config.Config{}
	err := commoncfg.LoadConfig(cfg,
		map[string]any{},
		"..",
	)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func startDB() (*gorm.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	return sql.StartDB(context.Background(), cfg.Database)
}

// validRandName returns a field type name that fits the name column
// and does not collide with other tests sharing the database.
func validRandName() string {
	return "ft-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
}

func createFieldTypeInDB(ctx context.Context, db *gorm.DB, ft *model.FieldType) error {
	return sql.NewRepository(db).Create(ctx, ft)
}

func getFieldTypeFromDB(ctx context.Context, db *gorm.DB, uuid string) (*model.FieldType, error) {
	ft := &model.FieldType{UUID: uuid}

	found, err := sql.NewRepository(db).Find(ctx, ft)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	return ft, nil
}

func deleteFieldTypeInDB(ctx context.Context, db *gorm.DB, uuid string) error {
	return db.WithContext(ctx).Where("uuid = ?", uuid).Delete(&model.FieldType{}).Error
}
