// Package naming converts class names into the underscored, pluralized and
// path-shaped forms used by association lookups, cluster identifiers and
// source links.
//
// Word-level inflection is delegated to [github.com/go-openapi/inflect]; this
// package adds awareness of namespaced constants ("Admin::User"), which map
// to path segments ("admin/user") the same way a Rails autoloader lays out
// files.
package naming

import (
	"strings"

	"github.com/go-openapi/inflect"
)

// NamespaceSeparator separates namespaces in a class name.
const NamespaceSeparator = "::"

// Underscore converts a class name to its underscored path form.
//
//	Underscore("LineItem")    // "line_item"
//	Underscore("Admin::User") // "admin/user"
func Underscore(className string) string {
	parts := Segments(className)
	for i, p := range parts {
		parts[i] = inflect.Underscore(p)
	}
	return strings.Join(parts, "/")
}

// Pluralize pluralizes the last path segment of an underscored name.
//
//	Pluralize("comment")    // "comments"
//	Pluralize("admin/user") // "admin/users"
func Pluralize(word string) string {
	i := strings.LastIndex(word, "/")
	return word[:i+1] + inflect.Pluralize(word[i+1:])
}

// Singularize singularizes the last path segment of an underscored name.
func Singularize(word string) string {
	i := strings.LastIndex(word, "/")
	return word[:i+1] + inflect.Singularize(word[i+1:])
}

// Demodulize strips every namespace from a class name.
func Demodulize(className string) string {
	if i := strings.LastIndex(className, NamespaceSeparator); i >= 0 {
		return className[i+len(NamespaceSeparator):]
	}
	return className
}

// Segments splits a class name on its namespace separators. Leading
// separators ("::Post") are dropped.
func Segments(className string) []string {
	className = strings.TrimPrefix(className, NamespaceSeparator)
	if className == "" {
		return nil
	}
	return strings.Split(className, NamespaceSeparator)
}

// CollectionName is the has_many association name a class is expected to be
// reached by from the other side of a belongs_to.
//
//	CollectionName("Comment")   // "comments"
//	CollectionName("LineItem")  // "line_items"
func CollectionName(className string) string {
	return Pluralize(Underscore(className))
}

// IsStandardAssociation reports whether an association name is the one a
// reader would infer from the target class alone, in which case diagrams
// omit the label.
func IsStandardAssociation(name, targetClass string) bool {
	base := inflect.Underscore(Demodulize(targetClass))
	return name == base || name == inflect.Pluralize(base)
}
