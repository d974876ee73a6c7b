package service

import (
	"context"
	"errors"
	"strings"

	craftsmenerrors "hirfa/internal/craftsmen/errors"
	"hirfa/internal/craftsmen/repository"
	"hirfa/internal/craftsmen/validator"
	"hirfa/pkg/config"
	apperrors "hirfa/pkg/errors"
	"hirfa/pkg/model"
	"hirfa/pkg/sanitizer"
	"hirfa/pkg/validation"

	"golang.org/x/sync/errgroup"
)

const detailReviewLimit = 10

// ReviewLister reads the reviews shown on a craftsman's page.
type ReviewLister interface {
	List(ctx context.Context, filter model.ReviewFilter) ([]model.ReviewView, error)
}

type CraftsmanService interface {
	List(ctx context.Context, filter model.CraftsmanFilter) (*model.CraftsmanSearchResult, error)
	Search(ctx context.Context, filter model.CraftsmanFilter) (*model.CraftsmanSearchResult, error)
	GetDetail(ctx context.Context, id string) (*model.CraftsmanDetail, error)
	UpdateMine(ctx context.Context, userID string, update *model.CraftsmanUpdate) (*model.Craftsman, error)

	ListPending(ctx context.Context, limit int, offset int64) ([]model.CraftsmanProfile, int64, error)
	SetVerified(ctx context.Context, id string, verified bool) (*model.Craftsman, error)
}

type craftsmanService struct {
	repo      repository.CraftsmanRepository
	reviews   ReviewLister
	validator *validator.CraftsmanValidator
	cfg       *config.Config
}

func NewCraftsmanService(
	repo repository.CraftsmanRepository,
	reviews ReviewLister,
	validator *validator.CraftsmanValidator,
	cfg *config.Config,
) CraftsmanService {
	return &craftsmanService{
		repo:      repo,
		reviews:   reviews,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *craftsmanService) List(ctx context.Context, filter model.CraftsmanFilter) (*model.CraftsmanSearchResult, error) {
	filter.CityExact = true
	filter.SortBy = model.SortByRating
	return s.find(ctx, filter, false)
}

// Search only ever shows verified craftsmen and also returns the city facet.
func (s *craftsmanService) Search(ctx context.Context, filter model.CraftsmanFilter) (*model.CraftsmanSearchResult, error) {
	verified := true
	filter.Verified = &verified
	filter.CityExact = false
	if strings.EqualFold(strings.TrimSpace(filter.Specialty), "all") {
		filter.Specialty = ""
	}
	if strings.EqualFold(strings.TrimSpace(filter.City), "all") {
		filter.City = ""
	}
	return s.find(ctx, filter, true)
}

func (s *craftsmanService) find(ctx context.Context, filter model.CraftsmanFilter, withCities bool) (*model.CraftsmanSearchResult, error) {
	filter.Query = sanitizer.TrimAndNormalize(filter.Query)
	filter.Specialty = sanitizer.NormalizeLabel(filter.Specialty)
	filter.City = sanitizer.TrimAndNormalize(filter.City)
	filter.Limit = s.cfg.NormalizePaginationLimit(filter.Limit)
	filter.Offset = config.NormalizeOffset(filter.Offset)

	if err := s.validator.ValidateFilter(&filter); err != nil {
		return nil, validation.Failed("Invalid search filters", err)
	}

	result := &model.CraftsmanSearchResult{Limit: filter.Limit, Offset: filter.Offset}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		craftsmen, err := s.repo.Search(gctx, filter)
		result.Craftsmen = craftsmen
		return err
	})
	g.Go(func() error {
		total, err := s.repo.Count(gctx, filter)
		result.TotalCount = total
		return err
	})
	if withCities {
		g.Go(func() error {
			cities, err := s.repo.Cities(gctx)
			result.Cities = cities
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, s.mapError("Search", err)
	}

	return result, nil
}

func (s *craftsmanService) GetDetail(ctx context.Context, id string) (*model.CraftsmanDetail, error) {
	detail := &model.CraftsmanDetail{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile, err := s.repo.FindProfile(gctx, id)
		if err != nil {
			return err
		}
		detail.Craftsman = *profile
		return nil
	})
	g.Go(func() error {
		reviews, err := s.reviews.List(gctx, model.ReviewFilter{CraftsmanID: id, Limit: detailReviewLimit})
		detail.Reviews = reviews
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.mapError("GetDetail", err)
	}

	if detail.Reviews == nil {
		detail.Reviews = []model.ReviewView{}
	}
	return detail, nil
}

func (s *craftsmanService) UpdateMine(ctx context.Context, userID string, update *model.CraftsmanUpdate) (*model.Craftsman, error) {
	sanitizeUpdate(update)
	if err := s.validator.ValidateUpdate(update); err != nil {
		return nil, validation.Failed("Profile validation failed", err)
	}

	current, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, craftsmenerrors.ErrNotFound) {
			return nil, apperrors.NotFound("Craftsman profile")
		}
		return nil, s.mapError("UpdateMine", err)
	}

	updated, err := s.repo.Update(ctx, current.ID, update)
	if err != nil {
		return nil, s.mapError("UpdateMine", err)
	}

	s.cfg.Log.Info("Craftsman profile updated", "craftsman_id", updated.ID, "user_id", userID)
	return updated, nil
}

func (s *craftsmanService) ListPending(ctx context.Context, limit int, offset int64) ([]model.CraftsmanProfile, int64, error) {
	verified := false
	filter := model.CraftsmanFilter{
		Verified: &verified,
		SortBy:   model.SortByNewest,
		Limit:    s.cfg.NormalizePaginationLimit(limit),
		Offset:   config.NormalizeOffset(offset),
	}

	var (
		craftsmen []model.CraftsmanProfile
		total     int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		craftsmen, err = s.repo.Search(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		total, err = s.repo.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, s.mapError("ListPending", err)
	}
	return craftsmen, total, nil
}

func (s *craftsmanService) SetVerified(ctx context.Context, id string, verified bool) (*model.Craftsman, error) {
	c, err := s.repo.SetVerified(ctx, id, verified)
	if err != nil {
		return nil, s.mapError("SetVerified", err)
	}
	s.cfg.Log.Info("Craftsman verification changed", "craftsman_id", id, "verified", verified)
	return c, nil
}

func (s *craftsmanService) mapError(op string, err error) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, craftsmenerrors.ErrNotFound), errors.Is(err, craftsmenerrors.ErrInvalidID):
		return apperrors.NotFound("Craftsman")
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout("Craftsman query timed out")
	}
	s.cfg.Log.Error("Craftsman operation failed", "operation", op, "error", err)
	return apperrors.Internal("Failed to process request", err)
}

func sanitizeUpdate(update *model.CraftsmanUpdate) {
	if update.Bio != nil {
		bio := sanitizer.NormalizeText(*update.Bio)
		update.Bio = &bio
	}
	if update.Certifications != nil {
		certs := sanitizer.NormalizeCertifications(*update.Certifications)
		update.Certifications = &certs
	}
	if update.Location != nil {
		update.Location.City = sanitizer.NormalizeCity(update.Location.City)
		update.Location.Address = sanitizer.TrimAndNormalize(update.Location.Address)
	}
	if update.Portfolio != nil {
		for i := range *update.Portfolio {
			item := &(*update.Portfolio)[i]
			item.Title = sanitizer.TrimAndNormalize(item.Title)
			item.Description = sanitizer.NormalizeText(item.Description)
			for j, img := range item.Images {
				item.Images[j] = sanitizer.NormalizeURL(img)
			}
		}
	}
	if update.Availability != nil {
		for i := range *update.Availability {
			slot := &(*update.Availability)[i]
			slot.Day = strings.ToLower(strings.TrimSpace(slot.Day))
		}
	}
}
