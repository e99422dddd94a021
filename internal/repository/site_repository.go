package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prperemyshlev/siteauth/internal/domain"
	"github.com/prperemyshlev/siteauth/pkg/database"
)

// siteRepository implements SiteRepository.
type siteRepository struct {
	db *database.Postgres
}

// NewSiteRepository creates a new site repository.
func NewSiteRepository(db *database.Postgres) SiteRepository {
	return &siteRepository{db: db}
}

const siteColumns = `id, name, domain, frontend_url, verification_redirect_url, email_from, email_from_name, created_at, updated_at`

func scanSite(row interface{ Scan(...any) error }) (*domain.Site, error) {
	site := &domain.Site{}
	var redirectURL sql.NullString

	err := row.Scan(
		&site.ID,
		&site.Name,
		&site.Domain,
		&site.FrontendURL,
		&redirectURL,
		&site.EmailFrom,
		&site.EmailFromName,
		&site.CreatedAt,
		&site.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if redirectURL.Valid {
		site.VerificationRedirectURL = &redirectURL.String
	}

	return site, nil
}

// Create creates a new site. The store assigns the id.
func (r *siteRepository) Create(ctx context.Context, site *domain.Site) error {
	query := `
		INSERT INTO sites (name, domain, frontend_url, verification_redirect_url, email_from, email_from_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.db.DB.QueryRowContext(ctx, query,
		site.Name,
		site.Domain,
		site.FrontendURL,
		site.VerificationRedirectURL,
		site.EmailFrom,
		site.EmailFromName,
		site.CreatedAt,
		site.UpdatedAt,
	).Scan(&site.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("site with domain %s already exists: %w", site.Domain, ErrDuplicateDomain)
		}
		return fmt.Errorf("failed to create site: %w", err)
	}

	return nil
}

// GetByID retrieves a site by ID.
func (r *siteRepository) GetByID(ctx context.Context, id int64) (*domain.Site, error) {
	query := `SELECT ` + siteColumns + ` FROM sites WHERE id = $1`

	site, err := scanSite(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("site with id %d not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get site by id: %w: %v", ErrMalformedRow, err)
	}

	return site, nil
}

// GetByDomain retrieves a site by its globally unique domain.
func (r *siteRepository) GetByDomain(ctx context.Context, siteDomain string) (*domain.Site, error) {
	query := `SELECT ` + siteColumns + ` FROM sites WHERE domain = $1`

	site, err := scanSite(r.db.DB.QueryRowContext(ctx, query, siteDomain))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("site with domain %s not found: %w", siteDomain, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get site by domain: %w: %v", ErrMalformedRow, err)
	}

	return site, nil
}

// Update updates an existing site.
func (r *siteRepository) Update(ctx context.Context, site *domain.Site) error {
	query := `
		UPDATE sites
		SET name = $2, domain = $3, frontend_url = $4, verification_redirect_url = $5, email_from = $6, email_from_name = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query,
		site.ID,
		site.Name,
		site.Domain,
		site.FrontendURL,
		site.VerificationRedirectURL,
		site.EmailFrom,
		site.EmailFromName,
		site.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("site with domain %s already exists: %w", site.Domain, ErrDuplicateDomain)
		}
		return fmt.Errorf("failed to update site: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("site with id %d not found: %w", site.ID, ErrNotFound)
	}

	return nil
}

// List retrieves all sites ordered by creation time.
func (r *siteRepository) List(ctx context.Context) ([]*domain.Site, error) {
	query := `SELECT ` + siteColumns + ` FROM sites ORDER BY created_at`

	rows, err := r.db.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []*domain.Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan site: %w: %v", ErrMalformedRow, err)
		}
		sites = append(sites, site)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sites: %w", err)
	}

	return sites, nil
}
