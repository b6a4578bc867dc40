package images

import (
	"path/filepath"
	"slices"
	"strings"
)

// AllowedExtensions lists accepted picture extensions in resolution preference order.
var AllowedExtensions = []string{"jpg", "jpeg", "png", "gif", "webp"}

// IsAllowedExtension reports whether ext (with or without a leading dot, any case) is accepted.
func IsAllowedExtension(ext string) bool {
	return slices.Contains(AllowedExtensions, normalizeExt(ext))
}

// ExtensionOf returns the lower-cased extension of filename without the dot.
func ExtensionOf(filename string) string {
	return normalizeExt(filepath.Ext(filename))
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// FileName builds the stored name for a slug and extension.
func FileName(slug, ext string) string {
	return slug + "." + normalizeExt(ext)
}

// splitName separates a stored name into its slug and lower-cased extension.
func splitName(name string) (slug, ext string) {
	dot := strings.LastIndexByte(name, '.')
	if dot < 0 {
		return name, ""
	}
	return name[:dot], normalizeExt(name[dot+1:])
}
