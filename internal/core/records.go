package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/csvport/internal/models"
	"github.com/JonMunkholm/csvport/internal/store"
)

// CreateProject validates and stores a single project. Presence and length
// problems and a taken name come back together as *models.ValidationError.
func (s *Service) CreateProject(ctx context.Context, p *models.Project) error {
	verr := models.NewValidationError("project")
	if err := collect(verr, models.Validate("project", p)); err != nil {
		return err
	}
	if p.Name != "" {
		taken, err := store.ProjectNameTaken(ctx, s.store.DB, p.Name, p.ID)
		if err != nil {
			return fmt.Errorf("check project name: %w", err)
		}
		if taken {
			verr.Add("name", "has already been taken")
		}
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	p.Touch(s.now())
	return store.InsertProject(ctx, s.store.DB, p)
}

// CreateUser validates and stores a single user. Email uniqueness ignores case.
func (s *Service) CreateUser(ctx context.Context, u *models.User) error {
	verr := models.NewValidationError("user")
	if err := collect(verr, models.Validate("user", u)); err != nil {
		return err
	}
	if u.Name != "" {
		taken, err := store.UserNameTaken(ctx, s.store.DB, u.Name, u.ID)
		if err != nil {
			return fmt.Errorf("check user name: %w", err)
		}
		if taken {
			verr.Add("name", "has already been taken")
		}
	}
	if u.Email != "" {
		taken, err := store.UserEmailTaken(ctx, s.store.DB, u.Email, u.ID)
		if err != nil {
			return fmt.Errorf("check user email: %w", err)
		}
		if taken {
			verr.Add("email", "has already been taken")
		}
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	u.Touch(s.now())
	return store.InsertUser(ctx, s.store.DB, u)
}

// AddMembership links an existing user to an existing project. The same
// pair may be added more than once.
func (s *Service) AddMembership(ctx context.Context, projectID, userID int64) (*models.Membership, error) {
	m := &models.Membership{ProjectID: projectID, UserID: userID}

	verr := models.NewValidationError("membership")
	if err := collect(verr, models.Validate("membership", m)); err != nil {
		return nil, err
	}
	if projectID != 0 {
		ok, err := store.ProjectExists(ctx, s.store.DB, projectID)
		if err != nil {
			return nil, fmt.Errorf("check project: %w", err)
		}
		if !ok {
			verr.Add("project", "must exist")
		}
	}
	if userID != 0 {
		ok, err := store.UserExists(ctx, s.store.DB, userID)
		if err != nil {
			return nil, fmt.Errorf("check user: %w", err)
		}
		if !ok {
			verr.Add("user", "must exist")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	m.Touch(s.now())
	if err := store.InsertMembership(ctx, s.store.DB, m); err != nil {
		return nil, err
	}
	return m, nil
}

// collect merges the field messages of a validation error into verr and
// returns any other error unchanged.
func collect(verr *models.ValidationError, err error) error {
	if err == nil {
		return nil
	}
	var fields *models.ValidationError
	if !errors.As(err, &fields) {
		return err
	}
	for f, msgs := range fields.Fields {
		for _, m := range msgs {
			verr.Add(f, m)
		}
	}
	return nil
}
