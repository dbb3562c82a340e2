package service

import (
	"bitwise74/dashboard-api/internal/model"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PurgeResetTickets deletes tickets created before now-ttl and returns how many
// were removed
func PurgeResetTickets(db *gorm.DB, ttl time.Duration) (int64, error) {
	r := db.
		Where("created_at < ?", time.Now().Add(-ttl)).
		Delete(&model.ResetTicket{})

	return r.RowsAffected, r.Error
}

// TicketCleanup periodically removes password reset tickets nobody used
// in time
func TicketCleanup(every, ttl time.Duration, db *gorm.DB) {
	ticker := time.NewTicker(every)

	zap.L().Debug("Reset ticket cleanup attached", zap.Duration("tick_every", every), zap.Duration("ttl", ttl))

	go func() {
		for range ticker.C {
			n, err := PurgeResetTickets(db, ttl)
			if err != nil {
				zap.L().Error("Failed to clean up reset tickets", zap.Error(err))
				continue
			}

			if n > 0 {
				zap.L().Debug("Cleaned up expired reset tickets", zap.Int64("count", n))
			}
		}
	}()
}
