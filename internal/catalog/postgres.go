// Package catalog is the read side of the storefront (products, digital
// services, service lines, packages, SEO) plus quote creation, backed by
// PostgreSQL.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"kilowatt-backend/internal/domain"
)

// PostgresStore implements the catalog accessors using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const productColumns = `id, slug, name, category, price_day, COALESCE(image_url, ''), COALESCE(specs, '{}'::jsonb), COALESCE(description, '')`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	var category string
	var specs []byte
	if err := row.Scan(&p.ID, &p.Slug, &p.Name, &category, &p.PriceDay, &p.Image, &specs, &p.Description); err != nil {
		return domain.Product{}, err
	}
	p.Category = domain.ProductCategory(category)
	p.Specs = map[string]string{}
	if len(specs) > 0 {
		if err := json.Unmarshal(specs, &p.Specs); err != nil {
			return domain.Product{}, fmt.Errorf("product %s specs: %w", p.ID, err)
		}
	}
	return p, nil
}

// ListProducts returns active products ordered by name.
func (s *PostgresStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE is_active = TRUE ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProductBySlug returns nil, nil when no product has that slug.
func (s *PostgresStore) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE slug = $1`, slug)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", slug, err)
	}
	return &p, nil
}

const serviceColumns = `id, slug, name, category, price, COALESCE(details, ''), COALESCE(audience, ''), COALESCE(deliverables, '[]'::jsonb), COALESCE(steps, '[]'::jsonb)`

func scanDigitalService(row rowScanner) (domain.DigitalService, error) {
	var d domain.DigitalService
	var category string
	var deliverables, steps []byte
	if err := row.Scan(&d.ID, &d.Slug, &d.Name, &category, &d.Price, &d.Details, &d.Audience, &deliverables, &steps); err != nil {
		return domain.DigitalService{}, err
	}
	d.Category = domain.ServiceCategory(category)
	d.Deliverables = normalizeJSONList(deliverables)
	d.Steps = normalizeJSONList(steps)
	return d, nil
}

// normalizeJSONList accepts a JSON array or a bare JSON string; garbage is
// an empty list.
func normalizeJSONList(raw []byte) []string {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return []string{}
	}
	return domain.NormalizeList(v)
}

// ListDigitalServices returns active digital services ordered by name.
func (s *PostgresStore) ListDigitalServices(ctx context.Context) ([]domain.DigitalService, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE is_active = TRUE ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list digital services: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DigitalService, 0)
	for rows.Next() {
		d, err := scanDigitalService(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan digital service: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDigitalServiceBySlug returns nil, nil when missing.
func (s *PostgresStore) GetDigitalServiceBySlug(ctx context.Context, slug string) (*domain.DigitalService, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE slug = $1`, slug)
	d, err := scanDigitalService(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get digital service %s: %w", slug, err)
	}
	return &d, nil
}

const serviceCatalogColumns = `id, slug, title, COALESCE(description, ''), COALESCE(long_description, ''), COALESCE(image_url, ''), COALESCE(icon_key, '')`

func scanServiceCatalogEntry(row rowScanner) (domain.ServiceCatalogEntry, error) {
	var e domain.ServiceCatalogEntry
	if err := row.Scan(&e.ID, &e.Slug, &e.Title, &e.Description, &e.LongDescription, &e.Image, &e.IconKey); err != nil {
		return domain.ServiceCatalogEntry{}, err
	}
	if e.IconKey == "" {
		e.IconKey = domain.DefaultIconKey
	}
	return e, nil
}

// ListServiceCatalog returns the active service lines ordered by title.
func (s *PostgresStore) ListServiceCatalog(ctx context.Context) ([]domain.ServiceCatalogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+serviceCatalogColumns+` FROM service_catalog WHERE is_active = TRUE ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("failed to list service catalog: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ServiceCatalogEntry, 0)
	for rows.Next() {
		e, err := scanServiceCatalogEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service catalog entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetServiceCatalogBySlug returns nil, nil when missing.
func (s *PostgresStore) GetServiceCatalogBySlug(ctx context.Context, slug string) (*domain.ServiceCatalogEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+serviceCatalogColumns+` FROM service_catalog WHERE slug = $1`, slug)
	e, err := scanServiceCatalogEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service catalog entry %s: %w", slug, err)
	}
	return &e, nil
}

// ListPackagePresets returns packages ordered by base price with their
// product and service IDs taken from the join tables.
func (s *PostgresStore) ListPackagePresets(ctx context.Context) ([]domain.PackagePreset, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT p.id, p.slug, p.name, COALESCE(p.description, ''), COALESCE(p.audience, ''), p.base_price, COALESCE(p.badge, ''),
       ARRAY(SELECT pp.product_id FROM package_products pp WHERE pp.package_id = p.id ORDER BY pp.position, pp.product_id),
       ARRAY(SELECT ps.service_id FROM package_services ps WHERE ps.package_id = p.id ORDER BY ps.position, ps.service_id)
FROM packages p
ORDER BY p.base_price`)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	defer rows.Close()

	out := make([]domain.PackagePreset, 0)
	for rows.Next() {
		var p domain.PackagePreset
		var productIDs, serviceIDs pq.StringArray
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.Audience, &p.BasePrice, &p.Badge, &productIDs, &serviceIDs); err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		p.ProductIDs = append([]string{}, productIDs...)
		p.ServiceIDs = append([]string{}, serviceIDs...)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSeoSettings returns nil, nil when the page has no settings.
func (s *PostgresStore) GetSeoSettings(ctx context.Context, page string) (*domain.SeoSettings, error) {
	var seo domain.SeoSettings
	err := s.db.QueryRowContext(ctx,
		`SELECT page, title, COALESCE(description, ''), COALESCE(keywords, '') FROM seo_config WHERE page = $1`,
		page).Scan(&seo.Page, &seo.Title, &seo.Description, &seo.Keywords)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get seo settings for %s: %w", page, err)
	}
	return &seo, nil
}
