package service

import (
	"bitwise74/dashboard-api/internal/model"
	"bitwise74/dashboard-api/pkg/apperr"
	"bitwise74/dashboard-api/pkg/util"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

const (
	MsgSourceExists   = "A source with that name already exists."
	MsgSourceNotFound = "The selected source has not been found."
)

// Sources stores the broker endpoints dashboards read from. Every query is
// scoped to one owner.
type Sources struct {
	DB *gorm.DB
}

func (s *Sources) List(ctx context.Context, owner string) ([]model.Source, error) {
	sources := []model.Source{}

	err := s.DB.WithContext(ctx).
		Where("owner = ?", owner).
		Order("name asc").
		Find(&sources).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sources, %w", err)
	}

	return sources, nil
}

// Names returns the names of every source owner has
func (s *Sources) Names(ctx context.Context, owner string) ([]string, error) {
	names := []string{}

	err := s.DB.WithContext(ctx).
		Model(&model.Source{}).
		Where("owner = ?", owner).
		Order("name asc").
		Pluck("name", &names).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list source names, %w", err)
	}

	return names, nil
}

func (s *Sources) FindByName(ctx context.Context, owner, name string) (*model.Source, error) {
	var src model.Source

	err := s.DB.WithContext(ctx).
		Where("owner = ? AND name = ?", owner, name).
		First(&src).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Conflict(MsgSourceNotFound)
		}

		return nil, fmt.Errorf("failed to fetch source, %w", err)
	}

	return &src, nil
}

func (s *Sources) nameTaken(ctx context.Context, owner, name, exceptID string) (bool, error) {
	var count int64

	err := s.DB.WithContext(ctx).
		Model(&model.Source{}).
		Where("owner = ? AND name = ? AND id <> ?", owner, name, exceptID).
		Count(&count).
		Error
	if err != nil {
		return false, fmt.Errorf("failed to check source name, %w", err)
	}

	return count > 0, nil
}

// Create stores src under owner and returns the new ID
func (s *Sources) Create(ctx context.Context, owner string, src model.Source) (string, error) {
	taken, err := s.nameTaken(ctx, owner, src.Name, "")
	if err != nil {
		return "", err
	}

	if taken {
		return "", apperr.Conflict(MsgSourceExists)
	}

	id, err := util.NewID()
	if err != nil {
		return "", fmt.Errorf("failed to generate source ID, %w", err)
	}

	src.ID = id
	src.Owner = owner

	if err := s.DB.WithContext(ctx).Create(&src).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", apperr.Conflict(MsgSourceExists)
		}

		return "", fmt.Errorf("failed to create source, %w", err)
	}

	return id, nil
}

// Change overwrites every field of the source with src.ID
func (s *Sources) Change(ctx context.Context, owner string, src model.Source) error {
	taken, err := s.nameTaken(ctx, owner, src.Name, src.ID)
	if err != nil {
		return err
	}

	if taken {
		return apperr.Conflict(MsgSourceExists)
	}

	r := s.DB.WithContext(ctx).
		Model(&model.Source{}).
		Where("id = ? AND owner = ?", src.ID, owner).
		Updates(map[string]any{
			"name":     src.Name,
			"type":     src.Type,
			"url":      src.URL,
			"login":    src.Login,
			"passcode": src.Passcode,
			"vhost":    src.Vhost,
		})
	if r.Error != nil {
		if errors.Is(r.Error, gorm.ErrDuplicatedKey) {
			return apperr.Conflict(MsgSourceExists)
		}

		return fmt.Errorf("failed to change source, %w", r.Error)
	}

	if r.RowsAffected == 0 {
		return apperr.Conflict(MsgSourceNotFound)
	}

	return nil
}

func (s *Sources) Delete(ctx context.Context, id, owner string) error {
	r := s.DB.WithContext(ctx).
		Where("id = ? AND owner = ?", id, owner).
		Delete(&model.Source{})
	if r.Error != nil {
		return fmt.Errorf("failed to delete source, %w", r.Error)
	}

	if r.RowsAffected == 0 {
		return apperr.Conflict(MsgSourceNotFound)
	}

	return nil
}

// Ensure creates an empty source for every name owner doesn't have yet and
// returns the names it created
func (s *Sources) Ensure(ctx context.Context, owner string, names []string) ([]string, error) {
	created := []string{}

	existing, err := s.Names(ctx, owner)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(existing)+len(names))
	for _, n := range existing {
		seen[n] = true
	}

	var missing []model.Source
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true

		id, err := util.NewID()
		if err != nil {
			return nil, fmt.Errorf("failed to generate source ID, %w", err)
		}

		missing = append(missing, model.Source{ID: id, Owner: owner, Name: n})
		created = append(created, n)
	}

	if len(missing) == 0 {
		return created, nil
	}

	if err := s.DB.WithContext(ctx).Create(&missing).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict(MsgSourceExists)
		}

		return nil, fmt.Errorf("failed to create sources, %w", err)
	}

	return created, nil
}
