package handlers

import (
	"github.com/gofiber/fiber/v3"

	"ukbol/internal/config"
	"ukbol/internal/pages"
)

// PageHandler renders the content pages of the site.
type PageHandler struct {
	cfg     *config.Config
	content *config.Content
}

// NewPageHandler creates a new page handler. A nil content is treated as empty.
func NewPageHandler(cfg *config.Config, content *config.Content) *PageHandler {
	if content == nil {
		content = &config.Content{}
	}
	return &PageHandler{cfg: cfg, content: content}
}

// Static renders the route's view with branding only. Used for the home,
// about and DNA barcoding pages.
func (h *PageHandler) Static(c fiber.Ctx, route pages.Route) error {
	return c.Render(route.View, pageData(c, h.cfg, route, fiber.Map{}))
}

// PrioritySpecies renders the priority species list grouped by taxonomic group.
func (h *PageHandler) PrioritySpecies(c fiber.Ctx, route pages.Route) error {
	return c.Render(route.View, pageData(c, h.cfg, route, fiber.Map{
		"Groups": h.content.SpeciesGroups(),
	}))
}

// RelatedProjects renders the list of partner projects.
func (h *PageHandler) RelatedProjects(c fiber.Ctx, route pages.Route) error {
	return c.Render(route.View, pageData(c, h.cfg, route, fiber.Map{
		"Projects": h.content.RelatedProjects,
	}))
}
