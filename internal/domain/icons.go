package domain

import "strings"

// Symbol names a renderable icon. Renderers map symbols to glyphs.
type Symbol string

// Symbols used across panels.
const (
	SymbolWind        Symbol = "wind"
	SymbolDroplets    Symbol = "droplets"
	SymbolTrash       Symbol = "trash"
	SymbolVolume      Symbol = "volume"
	SymbolShield      Symbol = "shield"
	SymbolCar         Symbol = "car"
	SymbolThermometer Symbol = "thermometer"
	SymbolRecycle     Symbol = "recycle"
	SymbolLightbulb   Symbol = "lightbulb"
	SymbolTree        Symbol = "tree"
	SymbolHeart       Symbol = "heart"
	SymbolLeaf        Symbol = "leaf"
	SymbolUsers       Symbol = "users"
	SymbolAward       Symbol = "award"
	SymbolBook        Symbol = "book"
	SymbolBrain       Symbol = "brain"
)

var glyphs = map[Symbol]string{
	SymbolWind:        "💨",
	SymbolDroplets:    "💧",
	SymbolTrash:       "🗑",
	SymbolVolume:      "🔊",
	SymbolShield:      "🛡",
	SymbolCar:         "🚗",
	SymbolThermometer: "🌡",
	SymbolRecycle:     "♻",
	SymbolLightbulb:   "💡",
	SymbolTree:        "🌳",
	SymbolHeart:       "❤",
	SymbolLeaf:        "🍃",
	SymbolUsers:       "👥",
	SymbolAward:       "🏅",
	SymbolBook:        "📖",
	SymbolBrain:       "🧠",
}

// Glyph returns the text glyph for the symbol.
func (s Symbol) Glyph() string {
	if g, ok := glyphs[s]; ok {
		return g
	}
	return "•"
}

// ActionKind is a stable identifier for a recommended action.
type ActionKind string

// Known action kinds.
const (
	ActionMask         ActionKind = "mask"
	ActionAirPurifier  ActionKind = "air_purifier"
	ActionAvoidTraffic ActionKind = "avoid_traffic"
	ActionFilterWater  ActionKind = "filter_water"
	ActionHeatSafety   ActionKind = "heat_safety"
	ActionCleanup      ActionKind = "cleanup"
	ActionLEDLighting  ActionKind = "led_lighting"
	ActionRecycle      ActionKind = "recycle"
	ActionGreenSpaces  ActionKind = "green_spaces"
	ActionKindUnknown  ActionKind = ""
)

const defaultActionSymbol = SymbolLightbulb

var actionSymbols = map[ActionKind]Symbol{
	ActionMask:         SymbolWind,
	ActionAirPurifier:  SymbolShield,
	ActionAvoidTraffic: SymbolCar,
	ActionFilterWater:  SymbolDroplets,
	ActionHeatSafety:   SymbolThermometer,
	ActionCleanup:      SymbolRecycle,
	ActionLEDLighting:  SymbolLightbulb,
	ActionRecycle:      SymbolRecycle,
	ActionGreenSpaces:  SymbolTree,
}

// actionTitles maps the backend's current action titles to kinds, for
// payloads that do not carry a kind.
var actionTitles = map[string]ActionKind{
	"wear n95 masks outdoors":      ActionMask,
	"use hepa air purifiers":       ActionAirPurifier,
	"avoid heavy traffic areas":    ActionAvoidTraffic,
	"use water filtration":         ActionFilterWater,
	"stay hydrated and seek shade": ActionHeatSafety,
	"join local cleanup drives":    ActionCleanup,
	"install led lighting":         ActionLEDLighting,
	"separate recyclables":         ActionRecycle,
	"support green spaces":         ActionGreenSpaces,
}

// ResolveKind returns the action's kind, deriving it from the title when the
// payload carried none. ActionKindUnknown means no mapping exists.
func (a Action) ResolveKind() ActionKind {
	if a.Kind != ActionKindUnknown {
		return a.Kind
	}
	return actionTitles[normalizeLabel(a.Title)]
}

// ActionSymbol returns the symbol for an action kind. ok is false when the
// kind is unknown and the default symbol was used.
func ActionSymbol(kind ActionKind) (sym Symbol, ok bool) {
	if s, found := actionSymbols[kind]; found {
		return s, true
	}
	return defaultActionSymbol, false
}

// ComponentKind is a stable identifier for an impact score component.
type ComponentKind string

// Known score component kinds.
const (
	ComponentHealth      ComponentKind = "health"
	ComponentEnvironment ComponentKind = "environment"
	ComponentCommunity   ComponentKind = "community"
	ComponentUnknown     ComponentKind = ""
)

var componentSymbols = map[ComponentKind]Symbol{
	ComponentHealth:      SymbolHeart,
	ComponentEnvironment: SymbolLeaf,
	ComponentCommunity:   SymbolUsers,
}

var componentLabels = map[string]ComponentKind{
	"health impact":          ComponentHealth,
	"environmental recovery": ComponentEnvironment,
	"community benefit":      ComponentCommunity,
}

// ResolveKind returns the component's kind, deriving it from the label when
// the payload carried none.
func (c ScoreComponent) ResolveKind() ComponentKind {
	if c.Kind != ComponentUnknown {
		return c.Kind
	}
	return componentLabels[normalizeLabel(c.Label)]
}

// ComponentSymbol returns the symbol for a score component kind. ok is false
// when the default symbol was used.
func ComponentSymbol(kind ComponentKind) (sym Symbol, ok bool) {
	if s, found := componentSymbols[kind]; found {
		return s, true
	}
	return SymbolAward, false
}

var layerSymbols = map[string]Symbol{
	LayerAir:   SymbolWind,
	LayerWater: SymbolDroplets,
	LayerWaste: SymbolTrash,
	LayerNoise: SymbolVolume,
}

// LayerSymbol returns the symbol for a map layer id. ok is false when the
// default symbol was used.
func LayerSymbol(layerID string) (sym Symbol, ok bool) {
	if s, found := layerSymbols[layerID]; found {
		return s, true
	}
	return SymbolWind, false
}

var metricSymbols = map[string]Symbol{
	"air quality":    SymbolWind,
	"water safety":   SymbolDroplets,
	"climate stress": SymbolThermometer,
	"waste pressure": SymbolTrash,
}

// MetricSymbol returns the symbol for a snapshot metric title.
func MetricSymbol(title string) (sym Symbol, ok bool) {
	if s, found := metricSymbols[normalizeLabel(title)]; found {
		return s, true
	}
	return SymbolWind, false
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
