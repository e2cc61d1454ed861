package converter

import (
	"github.com/yashdave182/medinote/internal/delivery/dto"
	"github.com/yashdave182/medinote/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO.
// Includes the profile if it is loaded.
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	return &dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Profile:   ProfileToResponse(user.Profile),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func ProfileToResponse(profile *entity.Profile) *dto.ProfileResponse {
	if profile == nil {
		return nil
	}

	return &dto.ProfileResponse{
		UserID:        profile.UserID,
		FullName:      profile.FullName,
		LicenseNumber: profile.LicenseNumber,
		Specialty:     profile.Specialty,
		UpdatedAt:     profile.UpdatedAt,
	}
}
