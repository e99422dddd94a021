package service

import (
	"context"
	"errors"
	"time"

	"github.com/prperemyshlev/siteauth/internal/domain"
	"github.com/prperemyshlev/siteauth/internal/repository"
)

// siteService implements SiteService.
type siteService struct {
	siteRepo repository.SiteRepository
	nowFunc  func() time.Time
}

// NewSiteService creates a new tenant management service.
func NewSiteService(siteRepo repository.SiteRepository) SiteService {
	return &siteService{
		siteRepo: siteRepo,
		nowFunc:  time.Now,
	}
}

// CreateSite registers a new tenant. The domain must be globally unique.
func (s *siteService) CreateSite(ctx context.Context, in SiteInput) (*domain.Site, error) {
	now := s.nowFunc().Unix()
	site := &domain.Site{
		Name:                    in.Name,
		Domain:                  in.Domain,
		FrontendURL:             in.FrontendURL,
		VerificationRedirectURL: in.VerificationRedirectURL,
		EmailFrom:               in.EmailFrom,
		EmailFromName:           in.EmailFromName,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	if err := s.siteRepo.Create(ctx, site); err != nil {
		if errors.Is(err, repository.ErrDuplicateDomain) {
			return nil, ErrDuplicateDomain
		}
		return nil, err
	}

	return site, nil
}

// GetSite retrieves a tenant by id.
func (s *siteService) GetSite(ctx context.Context, id int64) (*domain.Site, error) {
	site, err := s.siteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSiteNotFound
		}
		return nil, err
	}
	return site, nil
}

// GetSiteByDomain retrieves a tenant by its domain.
func (s *siteService) GetSiteByDomain(ctx context.Context, siteDomain string) (*domain.Site, error) {
	site, err := s.siteRepo.GetByDomain(ctx, siteDomain)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSiteNotFound
		}
		return nil, err
	}
	return site, nil
}

// UpdateSite rewrites a tenant's mutable fields.
func (s *siteService) UpdateSite(ctx context.Context, id int64, in SiteInput) (*domain.Site, error) {
	site, err := s.siteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSiteNotFound
		}
		return nil, err
	}

	site.Name = in.Name
	site.Domain = in.Domain
	site.FrontendURL = in.FrontendURL
	site.VerificationRedirectURL = in.VerificationRedirectURL
	site.EmailFrom = in.EmailFrom
	site.EmailFromName = in.EmailFromName
	site.UpdatedAt = s.nowFunc().Unix()

	if err := s.siteRepo.Update(ctx, site); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrSiteNotFound
		case errors.Is(err, repository.ErrDuplicateDomain):
			return nil, ErrDuplicateDomain
		}
		return nil, err
	}

	return site, nil
}

// ListSites retrieves all tenants.
func (s *siteService) ListSites(ctx context.Context) ([]*domain.Site, error) {
	return s.siteRepo.List(ctx)
}
