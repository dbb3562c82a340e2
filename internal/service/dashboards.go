package service

import (
	"bitwise74/dashboard-api/internal/model"
	"bitwise74/dashboard-api/pkg/apperr"
	"bitwise74/dashboard-api/pkg/security"
	"bitwise74/dashboard-api/pkg/util"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

const (
	MsgDashboardExists    = "A dashboard with that name already exists."
	MsgDashboardNotFound  = "The selected dashboard has not been found."
	MsgDashboardUnknownID = "The specified dashboard has not been found."
)

// Dashboards wraps every dashboard query. Lookups made on behalf of a user
// always filter by owner as well, so someone else's dashboard reads as
// missing rather than forbidden.
type Dashboards struct {
	DB     *gorm.DB
	Hasher *security.Hasher
}

func NewDashboards(db *gorm.DB, h *security.Hasher) *Dashboards {
	return &Dashboards{DB: db, Hasher: h}
}

// public selects every column but the password hash
func (s *Dashboards) public(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).Model(&model.Dashboard{}).Select(model.DashboardPublicColumns)
}

func (s *Dashboards) List(ctx context.Context, owner string) ([]model.Dashboard, error) {
	dashboards := []model.Dashboard{}

	err := s.public(ctx).
		Where("owner = ?", owner).
		Order("created_at asc").
		Find(&dashboards).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list dashboards, %w", err)
	}

	return dashboards, nil
}

// FindOwned returns the dashboard with the given id if owner owns it
func (s *Dashboards) FindOwned(ctx context.Context, id, owner string) (*model.Dashboard, error) {
	var d model.Dashboard

	err := s.public(ctx).
		Where("id = ? AND owner = ?", id, owner).
		First(&d).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Conflict(MsgDashboardNotFound)
		}

		return nil, fmt.Errorf("failed to fetch dashboard, %w", err)
	}

	return &d, nil
}

// findWithPassword is the privileged lookup used by the access checks. It
// doesn't filter by owner and includes the password hash.
func (s *Dashboards) findWithPassword(ctx context.Context, id string) (*model.Dashboard, error) {
	var d model.Dashboard

	err := s.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&d).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Conflict(MsgDashboardUnknownID)
		}

		return nil, fmt.Errorf("failed to fetch dashboard, %w", err)
	}

	return &d, nil
}

func (s *Dashboards) nameTaken(ctx context.Context, owner, name string) (bool, error) {
	var count int64

	err := s.DB.WithContext(ctx).
		Model(&model.Dashboard{}).
		Where("owner = ? AND name = ?", owner, name).
		Count(&count).
		Error
	if err != nil {
		return false, fmt.Errorf("failed to check dashboard name, %w", err)
	}

	return count > 0, nil
}

// insert stores d with a fresh id. The unique (owner, name) index catches
// the case where a concurrent request took the name after nameTaken.
func (s *Dashboards) insert(ctx context.Context, d *model.Dashboard) error {
	id, err := util.NewID()
	if err != nil {
		return fmt.Errorf("failed to generate dashboard ID, %w", err)
	}
	d.ID = id

	if err := s.DB.WithContext(ctx).Create(d).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict(MsgDashboardExists)
		}

		return fmt.Errorf("failed to create dashboard, %w", err)
	}

	return nil
}

// Create makes an empty dashboard
func (s *Dashboards) Create(ctx context.Context, owner, name string) (*model.Dashboard, error) {
	taken, err := s.nameTaken(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	if taken {
		return nil, apperr.Conflict(MsgDashboardExists)
	}

	d := &model.Dashboard{
		Owner:  owner,
		Name:   name,
		Layout: model.JSONDoc("[]"),
		Items:  model.JSONDoc("{}"),
		NextID: 1,
	}

	if err := s.insert(ctx, d); err != nil {
		return nil, err
	}

	return d, nil
}

// Clone copies the layout, items and nextId of one of owner's dashboards into
// a new dashboard. Sharing, password and views start from scratch.
func (s *Dashboards) Clone(ctx context.Context, sourceID, owner, name string) (*model.Dashboard, error) {
	taken, err := s.nameTaken(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	if taken {
		return nil, apperr.Conflict(MsgDashboardExists)
	}

	src, err := s.FindOwned(ctx, sourceID, owner)
	if err != nil {
		return nil, err
	}

	d := &model.Dashboard{
		Owner:  owner,
		Name:   name,
		Layout: append(model.JSONDoc(nil), src.Layout...),
		Items:  append(model.JSONDoc(nil), src.Items...),
		NextID: src.NextID,
	}

	if err := s.insert(ctx, d); err != nil {
		return nil, err
	}

	return d, nil
}

func (s *Dashboards) Delete(ctx context.Context, id, owner string) error {
	r := s.DB.WithContext(ctx).
		Where("id = ? AND owner = ?", id, owner).
		Delete(&model.Dashboard{})
	if r.Error != nil {
		return fmt.Errorf("failed to delete dashboard, %w", r.Error)
	}

	if r.RowsAffected == 0 {
		return apperr.Conflict(MsgDashboardNotFound)
	}

	return nil
}

// Save replaces the layout, items and nextId of a dashboard
func (s *Dashboards) Save(ctx context.Context, id, owner string, layout, items model.JSONDoc, nextID int) error {
	r := s.DB.WithContext(ctx).
		Model(&model.Dashboard{}).
		Where("id = ? AND owner = ?", id, owner).
		Updates(map[string]any{
			"layout":  layout,
			"items":   items,
			"next_id": nextID,
		})
	if r.Error != nil {
		return fmt.Errorf("failed to save dashboard, %w", r.Error)
	}

	if r.RowsAffected == 0 {
		return apperr.Conflict(MsgDashboardNotFound)
	}

	return nil
}

// ToggleShared flips the shared flag and returns the new value
func (s *Dashboards) ToggleShared(ctx context.Context, id, owner string) (bool, error) {
	var shared bool

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := tx.Model(&model.Dashboard{}).
			Where("id = ? AND owner = ?", id, owner).
			Update("shared", gorm.Expr("NOT shared"))
		if r.Error != nil {
			return r.Error
		}

		if r.RowsAffected == 0 {
			return apperr.Conflict(MsgDashboardUnknownID)
		}

		return tx.Model(&model.Dashboard{}).
			Where("id = ?", id).
			Select("shared").
			Scan(&shared).
			Error
	})
	if err != nil {
		var e *apperr.Error
		if errors.As(err, &e) {
			return false, e
		}

		return false, fmt.Errorf("failed to toggle sharing, %w", err)
	}

	return shared, nil
}

// SetPassword replaces the dashboard password. An empty password removes it.
func (s *Dashboards) SetPassword(ctx context.Context, id, owner, password string) error {
	var value any

	if password != "" {
		hash, err := s.Hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("failed to hash dashboard password, %w", err)
		}
		value = hash
	}

	r := s.DB.WithContext(ctx).
		Model(&model.Dashboard{}).
		Where("id = ? AND owner = ?", id, owner).
		Update("password", value)
	if r.Error != nil {
		return fmt.Errorf("failed to change dashboard password, %w", r.Error)
	}

	if r.RowsAffected == 0 {
		return apperr.Conflict(MsgDashboardUnknownID)
	}

	return nil
}

// incrementViews bumps the counter in the database instead of writing back
// a value computed in memory
func (s *Dashboards) incrementViews(ctx context.Context, id string) error {
	err := s.DB.WithContext(ctx).
		Model(&model.Dashboard{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).
		Error
	if err != nil {
		return fmt.Errorf("failed to count dashboard view, %w", err)
	}

	return nil
}

// Stats holds the totals shown on the landing page
type Stats struct {
	Users      int64 `json:"users"`
	Dashboards int64 `json:"dashboards"`
	Views      int64 `json:"views"`
	Sources    int64 `json:"sources"`
}

func CollectStats(ctx context.Context, db *gorm.DB) (*Stats, error) {
	var st Stats
	db = db.WithContext(ctx)

	if err := db.Model(&model.User{}).Count(&st.Users).Error; err != nil {
		return nil, fmt.Errorf("failed to count users, %w", err)
	}

	if err := db.Model(&model.Dashboard{}).Count(&st.Dashboards).Error; err != nil {
		return nil, fmt.Errorf("failed to count dashboards, %w", err)
	}

	if err := db.Model(&model.Dashboard{}).Select("COALESCE(SUM(views), 0)").Scan(&st.Views).Error; err != nil {
		return nil, fmt.Errorf("failed to sum views, %w", err)
	}

	if err := db.Model(&model.Source{}).Count(&st.Sources).Error; err != nil {
		return nil, fmt.Errorf("failed to count sources, %w", err)
	}

	return &st, nil
}
