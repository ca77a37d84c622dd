package catalog

import (
	"iter"
	"log/slog"
	"strings"
)

// Kind is the kind of entity a catalog holds.
type Kind uint8

const (
	// KindAny marks a search directory that may hold catalogs of any kind.
	KindAny Kind = iota
	KindVehicle
	KindPedestrian
	KindController
	KindEnvironment
	KindManeuver
	KindMiscObject
	KindRoute
	KindTrajectory
)

var kindInfo = [...]struct {
	name     string // short name
	location string // CatalogLocations child
	entry    string // catalog entry element
}{
	KindAny:         {"any", "", ""},
	KindVehicle:     {"vehicle", "VehicleCatalog", "Vehicle"},
	KindPedestrian:  {"pedestrian", "PedestrianCatalog", "Pedestrian"},
	KindController:  {"controller", "ControllerCatalog", "Controller"},
	KindEnvironment: {"environment", "EnvironmentCatalog", "Environment"},
	KindManeuver:    {"maneuver", "ManeuverCatalog", "Maneuver"},
	KindMiscObject:  {"miscObject", "MiscObjectCatalog", "MiscObject"},
	KindRoute:       {"route", "RouteCatalog", "Route"},
	KindTrajectory:  {"trajectory", "TrajectoryCatalog", "Trajectory"},
}

func (k Kind) String() string {
	if int(k) < len(kindInfo) {
		return kindInfo[k].name
	}

	return "unknown"
}

// Kinds returns an iterator over the names of all kinds.
func Kinds() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, info := range kindInfo {
			if !yield(info.name) {
				return
			}
		}
	}
}

// ParseKind parses a kind by its short name or location element name,
// ignoring case.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)

	for k, info := range kindInfo {
		if strings.EqualFold(s, info.name) || (info.location != "" && strings.EqualFold(s, info.location)) {
			return Kind(k), nil
		}
	}

	return KindAny, ErrUnknownKind.With(slog.String("kind", s))
}

func kindOfLocation(name string) (Kind, bool) {
	for k, info := range kindInfo {
		if info.location != "" && info.location == name {
			return Kind(k), true
		}
	}

	return KindAny, false
}

func kindOfEntry(name string) (Kind, bool) {
	for k, info := range kindInfo {
		if info.entry != "" && info.entry == name {
			return Kind(k), true
		}
	}

	return KindAny, false
}

// accepts maps the element containing a catalog reference to the entry kinds
// it may hold.
var accepts = map[string][]Kind{
	"ScenarioObject":         {KindVehicle, KindPedestrian, KindMiscObject},
	"EntityObject":           {KindVehicle, KindPedestrian, KindMiscObject},
	"ObjectController":       {KindController},
	"AssignControllerAction": {KindController},
	"EnvironmentAction":      {KindEnvironment},
	"ManeuverGroup":          {KindManeuver},
	"AssignRouteAction":      {KindRoute},
	"RouteRef":               {KindRoute},
	"FollowTrajectoryAction": {KindTrajectory},
	"TrajectoryRef":          {KindTrajectory},
}
