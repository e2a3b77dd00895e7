package utils

import "github.com/gosimple/slug"

// Slugify derives the URL-safe identifier used for categories and products
func Slugify(name string) string {
	return slug.Make(name)
}
