// Package param models parameter declarations and the layered, immutable
// scopes that parameter references are resolved against.
//
// A [Scope] is a persistent stack of layers. Pushing a layer returns a new
// Scope and never changes the receiver, so one scope can be shared by many
// concurrent resolutions, each extending it independently. Lookup scans the
// layers from the most recently pushed to the oldest, so later layers shadow
// earlier ones.
package param
