package models

import (
	"errors"
	"strings"
)

type ProfileResponse struct {
	User UserView `json:"user"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (r UpdateProfileRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, "name is required")
	}
	if !isPlausibleEmail(r.Email) {
		errs = append(errs, "email must be a valid address")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r ChangePasswordRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.CurrentPassword) == "" {
		errs = append(errs, "currentPassword is required")
	}
	if len(r.NewPassword) < 8 {
		errs = append(errs, "newPassword must be at least 8 characters")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type ChangePasswordResponse struct {
	Updated bool `json:"updated"`
}
