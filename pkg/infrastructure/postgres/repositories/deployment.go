package repositories

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wolfhost/botpanel-backend/pkg/domain/entities"
	"github.com/wolfhost/botpanel-backend/pkg/infrastructure/postgres/schemas"
)

// DeploymentRepository mirrors registry state into postgres. Writes are
// best-effort: the caller logs failures and the in-memory registry stays
// authoritative.
type DeploymentRepository struct {
	db *gorm.DB
}

func NewDeploymentRepository(db *gorm.DB) *DeploymentRepository {
	return &DeploymentRepository{db: db}
}

func (r *DeploymentRepository) SaveDeployment(record *entities.DeploymentRecord) error {
	row, err := toRow(record)
	if err != nil {
		return err
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(row).Error
}

func (r *DeploymentRepository) DeleteDeployment(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&schemas.Deployment{}).Error
}

// LoadDeployments returns all persisted rows, for serving history after a
// restart. Live process handles do not survive a restart, so handles are
// dropped and non-terminal rows come back as Failed.
func (r *DeploymentRepository) LoadDeployments() ([]*entities.DeploymentRecord, error) {
	var rows []schemas.Deployment
	if err := r.db.Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]*entities.DeploymentRecord, 0, len(rows))
	for i := range rows {
		record, err := fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		record.Handle = nil
		if !record.Status.Terminal() {
			record.Status = entities.StatusFailed
		}
		records = append(records, record)
	}
	return records, nil
}

func toRow(record *entities.DeploymentRecord) (*schemas.Deployment, error) {
	config, err := json.Marshal(record.Config)
	if err != nil {
		return nil, err
	}
	logs, err := json.Marshal(record.Logs)
	if err != nil {
		return nil, err
	}
	metrics, err := json.Marshal(record.Metrics)
	if err != nil {
		return nil, err
	}
	var handle []byte
	if record.Handle != nil {
		handle, err = json.Marshal(record.Handle)
		if err != nil {
			return nil, err
		}
	}
	return &schemas.Deployment{
		ID:        record.ID,
		CatalogID: record.CatalogID,
		Name:      record.Name,
		UserID:    record.UserID,
		Status:    record.Status,
		Config:    config,
		Logs:      logs,
		Metrics:   metrics,
		Handle:    handle,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}, nil
}

func fromRow(row *schemas.Deployment) (*entities.DeploymentRecord, error) {
	record := &entities.DeploymentRecord{
		ID:        row.ID,
		CatalogID: row.CatalogID,
		Name:      row.Name,
		UserID:    row.UserID,
		Status:    row.Status,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if len(row.Config) > 0 {
		if err := json.Unmarshal(row.Config, &record.Config); err != nil {
			return nil, err
		}
	}
	if len(row.Logs) > 0 {
		if err := json.Unmarshal(row.Logs, &record.Logs); err != nil {
			return nil, err
		}
	}
	if len(row.Metrics) > 0 {
		if err := json.Unmarshal(row.Metrics, &record.Metrics); err != nil {
			return nil, err
		}
	}
	if len(row.Handle) > 0 {
		if err := json.Unmarshal(row.Handle, &record.Handle); err != nil {
			return nil, err
		}
	}
	return record, nil
}
