package handlers

import (
	"github.com/gofiber/fiber/v3"

	"ukbol/internal/config"
	"ukbol/internal/pages"
)

// BrandingData contains site branding information for templates.
type BrandingData struct {
	SiteTitle   string
	SiteTagline string
	SiteFooter  string
	SiteLogoURL string
}

// GetBrandingData returns branding data from config for template rendering.
func GetBrandingData(cfg *config.Config) BrandingData {
	return BrandingData{
		SiteTitle:   cfg.SiteTitle,
		SiteTagline: cfg.SiteTagline,
		SiteFooter:  cfg.SiteFooter,
		SiteLogoURL: cfg.SiteLogoURL,
	}
}

// MergeBranding adds branding data to a fiber.Map for template rendering.
func MergeBranding(data fiber.Map, cfg *config.Config) fiber.Map {
	branding := GetBrandingData(cfg)
	data["SiteTitle"] = branding.SiteTitle
	data["SiteTagline"] = branding.SiteTagline
	data["SiteFooter"] = branding.SiteFooter
	data["SiteLogoURL"] = branding.SiteLogoURL
	return data
}

// pageData merges branding and the document title set by the page router's
// after-each hook. The navigation entries are always included so the layout
// can render the menu.
func pageData(c fiber.Ctx, cfg *config.Config, route pages.Route, data fiber.Map) fiber.Map {
	data = MergeBranding(data, cfg)
	data["Title"] = pages.Title(c, pages.FormatTitle(route.Title, cfg.SiteTitle))
	data["Route"] = route
	data["Nav"] = pages.Default
	return data
}
