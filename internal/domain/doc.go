// Package domain holds the provisioning data model: distros, profiles,
// systems, images, menus and the smaller supporting item types, together
// with the machinery that makes them useful: attribute inheritance
// resolution, the parent/dependency graph, and the per-item dict cache.
//
// Items never hold object references to each other. Every relationship is
// a name that is resolved through the owning Registry at read time, which
// keeps the graph free of ownership cycles and tolerant of renames done
// through the collection.
package domain
