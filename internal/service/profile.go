package service

import (
	"context"
	"strings"

	"lifelog-coach/internal/model"
	"lifelog-coach/internal/store"
)

func validateProfile(p model.UserProfile) error {
	if strings.TrimSpace(p.Name) == "" {
		return invalid("name", "a name is required")
	}
	if p.Age < 0 || p.Age > 150 {
		return invalid("age", "must be between 0 and 150")
	}
	switch p.Gender {
	case "", model.GenderMale, model.GenderFemale, model.GenderOther:
	default:
		return invalid("gender", "must be male, female or other")
	}
	if p.Height < 0 || p.TargetWeight < 0 {
		return invalid("height", "measurements cannot be negative")
	}
	return nil
}

func (s *Service) Profile() (model.UserProfile, error) {
	p, ok := s.store.Profile()
	if !ok {
		return model.UserProfile{}, store.ErrNoProfile
	}
	return p, nil
}

func (s *Service) SetProfile(ctx context.Context, p model.UserProfile) (model.UserProfile, error) {
	if err := validateProfile(p); err != nil {
		return model.UserProfile{}, err
	}
	if p.ID == "" {
		p.ID = s.opts.UserID
	}
	return s.store.SetProfile(ctx, p), nil
}

func (s *Service) UpdateProfile(ctx context.Context, patch model.ProfilePatch) (model.UserProfile, error) {
	current, ok := s.store.Profile()
	if !ok {
		return model.UserProfile{}, store.ErrNoProfile
	}
	if err := validateProfile(patch.Apply(current)); err != nil {
		return model.UserProfile{}, err
	}
	return s.store.UpdateProfile(ctx, patch)
}
