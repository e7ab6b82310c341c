package pages

import "github.com/gofiber/fiber/v3"

// titleKey is the request local holding the document title.
const titleKey = "pageTitle"

// TitleHook returns an AfterEachHook that sets the document title to
// "<route title> | <site title>".
func TitleHook(siteTitle string) AfterEachHook {
	return func(c fiber.Ctx, route Route) {
		c.Locals(titleKey, FormatTitle(route.Title, siteTitle))
	}
}

// FormatTitle joins a page title and the site title.
func FormatTitle(pageTitle, siteTitle string) string {
	if siteTitle == "" {
		return pageTitle
	}
	if pageTitle == "" {
		return siteTitle
	}
	return pageTitle + " | " + siteTitle
}

// Title returns the document title set by TitleHook, or fallback if none was
// set for this request.
func Title(c fiber.Ctx, fallback string) string {
	if t, ok := c.Locals(titleKey).(string); ok && t != "" {
		return t
	}
	return fallback
}
