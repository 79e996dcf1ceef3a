// Package entities registers the exportable entities with the core registry.
// Import it for its side effects:
//
//	import _ "github.com/JonMunkholm/csvport/internal/core/entities"
package entities

func init() {
	registerProjects()
	registerUsers()
	registerMemberships()
}
