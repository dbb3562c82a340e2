package internal

import (
	"bitwise74/dashboard-api/internal/service"
	"bitwise74/dashboard-api/pkg/security"
	"bitwise74/dashboard-api/pkg/validators"

	"gorm.io/gorm"
)

type Deps struct {
	DB         *gorm.DB
	Tokens     *security.TokenCodec
	Validator  *validators.Validator
	Users      *service.Users
	Sources    *service.Sources
	Dashboards *service.Dashboards
	Prober     *service.Prober
	// Snapshots is nil when object storage is disabled
	Snapshots service.SnapshotStore
}
