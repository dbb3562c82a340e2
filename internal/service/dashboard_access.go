package service

import (
	"bitwise74/dashboard-api/internal/model"
	"bitwise74/dashboard-api/pkg/security"
	"context"
	"errors"
	"fmt"
)

// DashboardContent is what a viewer gets to see of a dashboard
type DashboardContent struct {
	Name   string        `json:"name"`
	Layout model.JSONDoc `json:"layout"`
	Items  model.JSONDoc `json:"items"`
}

func contentOf(d *model.Dashboard) *DashboardContent {
	return &DashboardContent{
		Name:   d.Name,
		Layout: d.Layout,
		Items:  d.Items,
	}
}

// AccessState answers "can this viewer see the dashboard, and do they need
// a password first". Fields that don't apply to the state are omitted.
type AccessState struct {
	Success        bool              `json:"success"`
	Owner          string            `json:"owner"`
	Shared         bool              `json:"shared"`
	HasPassword    *bool             `json:"hasPassword,omitempty"`
	PasswordNeeded *bool             `json:"passwordNeeded,omitempty"`
	Dashboard      *DashboardContent `json:"dashboard,omitempty"`
}

// PasswordCheck is the result of presenting a dashboard password
type PasswordCheck struct {
	Success         bool              `json:"success"`
	CorrectPassword bool              `json:"correctPassword"`
	Owner           string            `json:"owner,omitempty"`
	Dashboard       *DashboardContent `json:"dashboard,omitempty"`
}

const OwnerSelf = "self"

// CheckPasswordNeeded resolves the access state of dashboard id for viewer
// userID, which is empty for anonymous viewers. Every state that discloses
// the content counts a view.
//
//	owner                    -> content, hasPassword, view
//	not shared               -> nothing
//	shared, no password      -> content, view
//	shared, password set     -> passwordNeeded
func (s *Dashboards) CheckPasswordNeeded(ctx context.Context, id, userID string) (*AccessState, error) {
	d, err := s.findWithPassword(ctx, id)
	if err != nil {
		return nil, err
	}

	if userID != "" && d.Owner == userID {
		if err := s.incrementViews(ctx, d.ID); err != nil {
			return nil, err
		}

		return &AccessState{
			Success:     true,
			Owner:       OwnerSelf,
			Shared:      d.Shared,
			HasPassword: ptr(d.Password != nil),
			Dashboard:   contentOf(d),
		}, nil
	}

	if !d.Shared {
		return &AccessState{Success: true, Owner: "", Shared: false}, nil
	}

	if d.Password == nil {
		if err := s.incrementViews(ctx, d.ID); err != nil {
			return nil, err
		}

		return &AccessState{
			Success:        true,
			Owner:          d.Owner,
			Shared:         true,
			PasswordNeeded: ptr(false),
			Dashboard:      contentOf(d),
		}, nil
	}

	return &AccessState{
		Success:        true,
		Owner:          "",
		Shared:         true,
		PasswordNeeded: ptr(true),
	}, nil
}

// CheckPassword compares password with the one stored on dashboard id. A
// dashboard without a password never matches.
func (s *Dashboards) CheckPassword(ctx context.Context, id, password string) (*PasswordCheck, error) {
	d, err := s.findWithPassword(ctx, id)
	if err != nil {
		return nil, err
	}

	if d.Password == nil {
		return &PasswordCheck{Success: true, CorrectPassword: false}, nil
	}

	ok, err := s.Hasher.Verify(password, *d.Password)
	if err != nil {
		if errors.Is(err, security.ErrInvalidHash) {
			return nil, fmt.Errorf("stored password of dashboard %s is corrupt, %w", d.ID, err)
		}

		return nil, err
	}

	if !ok {
		return &PasswordCheck{Success: true, CorrectPassword: false}, nil
	}

	if err := s.incrementViews(ctx, d.ID); err != nil {
		return nil, err
	}

	return &PasswordCheck{
		Success:         true,
		CorrectPassword: true,
		Owner:           d.Owner,
		Dashboard:       contentOf(d),
	}, nil
}

func ptr[T any](v T) *T {
	return &v
}
