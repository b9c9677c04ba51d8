package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const defaultSeoPage = "home"

func (e *Env) requireCatalog(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if e.Catalog == nil {
		http.Error(w, "database is not configured", http.StatusInternalServerError)
		return false
	}
	return true
}

// slugFrom returns the single path segment after prefix, or "" when the
// path has none or more than one.
func slugFrom(path, prefix string) string {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" || strings.Contains(rest, "/") {
		return ""
	}
	return rest
}

func (e *Env) catalogError(w http.ResponseWriter, what string, err error) {
	e.logger().Error("catalog read failed", zap.String("what", what), zap.Error(err))
	http.Error(w, "failed to load "+what+": "+err.Error(), http.StatusInternalServerError)
}

// GET /api/products
func (e *Env) HandleProducts(w http.ResponseWriter, r *http.Request) {
	if !e.requireCatalog(w, r) {
		return
	}
	products, err := e.Catalog.ListProducts(r.Context())
	if err != nil {
		e.catalogError(w, "products", err)
		return
	}
	e.writeJSON(w, products)
}

// GET /api/products/{slug}
func (e *Env) HandleProductDetail(w http.ResponseWriter, r *http.Request) {
	if !e.requireCatalog(w, r) {
		return
	}
	slug := slugFrom(r.URL.Path, "/api/products/")
	if slug == "" {
		http.NotFound(w, r)
		return
	}
	p, err := e.Catalog.GetProductBySlug(r.Context(), slug)
	if err != nil {
		e.catalogError(w, "product", err)
		return
	}
	if p == nil {
		http.NotFound(w, r)
		return
	}
	e.writeJSON(w, p)
}

// GET /api/digital-services
func (e *Env) HandleDigitalServices(w http.ResponseWriter, r *http.Request) {
	if !e.requireCatalog(w, r) {
		return
	}
	services, err := e.Catalog.ListDigitalServices(r.Context())
	if err != nil {
		e.catalogError(w, "digital services", err)
		return
	}
	e.writeJSON(w, services)
}

// GET /api/digital-services/{slug}
func (e *Env) HandleDigitalServiceDetail(w http.ResponseWriter, r *http.Request) {
	if !e.requireCatalog(w, r) {
		return
	}
	slug := slugFrom(r.URL.Path, "/api/digital-services/")
	if slug == "" {
		http.NotFound(w, r)
		return
	}
	d, err := e.Catalog.GetDigitalServiceBySlug(r.Context(), slug)
	if err != nil {
		e.catalogError(w, "digital service", err)
		return
	}
	if d == nil {
		http.NotFound(w, r)
		return
	}
	e.writeJSON(w, d)
}

// GET /api/service-catalog
func (e *Env) HandleServiceCatalog(w http.ResponseWriter, r *http.Request) {
	if !e.requireCatalog(w, r) {
		return
	}
	entries, err := e.Catalog.ListServiceCatalog(r.Context())
	if err != nil {
		e.catalogError(w, "service catalog", err)
		return
	}
	e.writeJSON(w, entries)
}

// GET /api/service-catalog/{slug}
func (e *Env) HandleServiceCatalogDetail(w http.ResponseWriter, r *http.Request) {
	if !e.requireCatalog(w, r) {
		return
	}
	slug := slugFrom(r.URL.Path, "/api/service-catalog/")
	if slug == "" {
		http.NotFound(w, r)
		return
	}
	entry, err := e.Catalog.GetServiceCatalogBySlug(r.Context(), slug)
	if err != nil {
		e.catalogError(w, "service catalog entry", err)
		return
	}
	if entry == nil {
		http.NotFound(w, r)
		return
	}
	e.writeJSON(w, entry)
}

// GET /api/packages
func (e *Env) HandlePackages(w http.ResponseWriter, r *http.Request) {
	if !e.requireCatalog(w, r) {
		return
	}
	packages, err := e.Catalog.ListPackagePresets(r.Context())
	if err != nil {
		e.catalogError(w, "packages", err)
		return
	}
	e.writeJSON(w, packages)
}

// GET /api/seo?page=home
func (e *Env) HandleSeo(w http.ResponseWriter, r *http.Request) {
	if !e.requireCatalog(w, r) {
		return
	}
	page := strings.TrimSpace(r.URL.Query().Get("page"))
	if page == "" {
		page = defaultSeoPage
	}
	seo, err := e.Catalog.GetSeoSettings(r.Context(), page)
	if err != nil {
		e.catalogError(w, "seo settings", err)
		return
	}
	if seo == nil {
		http.NotFound(w, r)
		return
	}
	e.writeJSON(w, seo)
}
