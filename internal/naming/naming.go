// Package naming derives file names and identifiers for generated modules.
package naming

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var segmentPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// Pluralize is a small deterministic REST-style pluralizer. It knows no
// irregular forms.
func Pluralize(word string) string {
	lower := strings.ToLower(word)
	switch {
	case strings.HasSuffix(word, "y") && !endsWithVowelY(lower):
		return word[:len(word)-1] + "ies"
	case strings.HasSuffix(word, "s"), strings.HasSuffix(word, "x"), strings.HasSuffix(word, "z"):
		return word + "es"
	case strings.HasSuffix(word, "ch"), strings.HasSuffix(word, "sh"):
		return word + "es"
	default:
		return word + "s"
	}
}

func endsWithVowelY(lower string) bool {
	if len(lower) < 2 {
		return false
	}
	return strings.ContainsRune("aeiou", rune(lower[len(lower)-2])) && lower[len(lower)-1] == 'y'
}

// Capitalize upper-cases the first letter of word and leaves the rest alone.
func Capitalize(word string) string {
	if word == "" {
		return word
	}
	_, size := utf8.DecodeRuneInString(word)
	return cases.Upper(language.Und).String(word[:size]) + word[size:]
}

// RouteFile turns a route path into a flat file name: "admin/users" becomes
// "admin-users".
func RouteFile(route string) string {
	return strings.ReplaceAll(strings.Trim(route, "/"), "/", "-")
}

// RouteIdentifier returns the exported variable name for a route file:
// "users" becomes "usersRoute", "admin-users" becomes "adminUsersRoute".
func RouteIdentifier(routeFile string) string {
	parts := strings.Split(routeFile, "-")
	var b strings.Builder
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i == 0 {
			b.WriteString(part)
		} else {
			b.WriteString(Capitalize(part))
		}
	}
	b.WriteString("Route")
	return b.String()
}

// ValidateModulePath checks a slash separated module path such as
// "shop/product".
func ValidateModulePath(modulePath string) error {
	return validateSegments("module path", modulePath)
}

// ValidateRoute checks a custom route such as "people" or "admin/users".
func ValidateRoute(route string) error {
	return validateSegments("route", strings.TrimPrefix(route, "/"))
}

func validateSegments(kind, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", kind)
	}
	for _, segment := range strings.Split(value, "/") {
		if !segmentPattern.MatchString(segment) {
			return fmt.Errorf("invalid %s %q: segment %q must start with a letter and contain only letters, digits, '-' or '_'", kind, value, segment)
		}
	}
	return nil
}

// ModuleName returns the last segment of a module path.
func ModuleName(modulePath string) string {
	parts := strings.Split(modulePath, "/")
	return parts[len(parts)-1]
}

// TypeName returns the PascalCase type name for a module name:
// "user" becomes "User", "user-role" becomes "UserRole".
func TypeName(name string) string {
	var b strings.Builder
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' }) {
		b.WriteString(Capitalize(part))
	}
	return b.String()
}

// ConstantName returns the SCREAMING_SNAKE form used in error codes.
func ConstantName(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
