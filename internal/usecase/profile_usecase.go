package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/yashdave182/medinote/internal/converter"
	"github.com/yashdave182/medinote/internal/delivery/dto"
	"github.com/yashdave182/medinote/internal/delivery/http/middleware"
	"github.com/yashdave182/medinote/internal/domain/entity"
	"github.com/yashdave182/medinote/internal/domain/repository"
	"github.com/yashdave182/medinote/internal/service"

	"github.com/sirupsen/logrus"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileUsecase interface {
	GetMyProfile(ctx context.Context) (*dto.ProfileResponse, error)
	UpdateMyProfile(ctx context.Context, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
}

type profileUsecase struct {
	log          *logrus.Logger
	profileRepo  repository.ProfileRepository
	auditService service.AuditService
}

func NewProfileUsecase(log *logrus.Logger, profileRepo repository.ProfileRepository, auditService service.AuditService) ProfileUsecase {
	return &profileUsecase{
		log:          log,
		profileRepo:  profileRepo,
		auditService: auditService,
	}
}

func (u *profileUsecase) GetMyProfile(ctx context.Context) (*dto.ProfileResponse, error) {
	profile, err := u.myProfile(ctx)
	if err != nil {
		return nil, err
	}
	return converter.ProfileToResponse(profile), nil
}

func (u *profileUsecase) UpdateMyProfile(ctx context.Context, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	profile, err := u.myProfile(ctx)
	if err != nil {
		return nil, err
	}

	old := converter.ProfileToResponse(profile)
	profile.FullName = strings.TrimSpace(req.FullName)
	profile.LicenseNumber = strings.TrimSpace(req.LicenseNumber)
	profile.Specialty = strings.TrimSpace(req.Specialty)

	if err := u.profileRepo.Update(ctx, profile); err != nil {
		if isDuplicateKeyError(err, "license_number") {
			return nil, ErrLicenseAlreadyExists
		}
		u.log.Warnf("Failed to update profile %s: %+v", profile.UserID, err)
		return nil, err
	}

	updated := converter.ProfileToResponse(profile)
	u.auditService.LogUpdate(ctx, profile.UserID, entity.AuditActionProfileUpdate, "profile", profile.UserID.String(), old, updated)

	return updated, nil
}

func (u *profileUsecase) myProfile(ctx context.Context) (*entity.Profile, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	profile, err := u.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to find profile %s: %+v", userID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}
