// Package domain models the EcoLens environmental dashboard: the selected
// location, the per-panel view models returned by the EcoLens backend, and
// the small pieces of presentation logic shared by every renderer.
//
// # Backend Conventions
//
// The backend is an external JSON API. Every location-keyed endpoint takes
// "lat" and "lon" query parameters as decimal degrees (WGS-84). Field names
// are passed through verbatim, which is why the JSON tags mix styles:
//
//	/api/insights        → "action_plan", "confidence_score" (snake_case)
//	/api/impact-score    → "maxScore" (camelCase)
//	/api/impact-simulation → "currentData", "improvedData", "reductionPercentages"
//
// No schema validation is applied. A missing field decodes to its zero value
// and renders as empty.
//
// Risk levels:
//
//	"low" | "moderate" | "high". Unknown values render with the neutral colour.
//
// Map layers:
//
//	"air" | "water" | "waste" | "noise". "air" is the default layer.
//
// # Presentation Logic
//
// Ring charts ([Ring]) draw a partial circle whose visible arc is
// proportional to a percentage:
//
//	circumference = 2πr
//	dashoffset    = 2πr · (1 − v/100)
//
// Values outside [0, 100] are not clamped and overshoot or undershoot.
//
// The actions carousel ([Carousel]) shows three cards at a time and pages
// over max(1, N−2) positions, wrapping in both directions.
//
// Symbols ([Symbol]) are resolved from stable identifiers (layer ids,
// action kinds, score component kinds), never from display labels alone.
package domain
