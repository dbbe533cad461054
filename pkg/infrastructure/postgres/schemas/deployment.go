package schemas

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/wolfhost/botpanel-backend/pkg/domain/entities"
)

type Deployment struct {
	ID        uuid.UUID                 `gorm:"type:uuid;primaryKey;column:id"`
	CatalogID string                    `gorm:"column:catalog_id;not null"`
	Name      string                    `gorm:"column:name"`
	UserID    string                    `gorm:"column:user_id"`
	Status    entities.DeploymentStatus `gorm:"column:status;not null"`
	Config    datatypes.JSON            `gorm:"type:jsonb;column:config"`
	Logs      datatypes.JSON            `gorm:"type:jsonb;column:logs"`
	Metrics   datatypes.JSON            `gorm:"type:jsonb;column:metrics"`
	Handle    datatypes.JSON            `gorm:"type:jsonb;column:handle"`
	CreatedAt time.Time                 `gorm:"column:created_at"`
	UpdatedAt time.Time                 `gorm:"column:updated_at"`
}

func (Deployment) TableName() string {
	return "deployments"
}
