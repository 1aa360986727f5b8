package domain

import (
	"fmt"
	"sort"
)

// SimulationCard is one of the metric cards shown under the simulation chart.
type SimulationCard struct {
	Label   string
	Value   string
	Caption string
	Color   string
}

var currentTrajectoryCards = []SimulationCard{
	{Label: "Current Status", Value: "High Risk", Caption: "Without intervention", Color: ColorRed},
	{Label: "Health Impact", Value: "Moderate", Caption: "Vulnerable groups affected", Color: ColorAmber},
	{Label: "Trend", Value: "Worsening", Caption: "Next 7 days", Color: ColorRed},
}

// Simulation toggle messages.
const (
	SimulationCurrentMessage = "Toggle to see how recommended actions can transform environmental health"
	SimulationActionMessage  = "Small actions, collective impact. Together we can make a difference"
)

// SimulationToggle switches the simulation panel between the current
// trajectory and the with-actions projection. The zero value shows the
// current trajectory.
type SimulationToggle struct {
	withActions bool
}

// Toggle flips the selection and returns the new state.
func (t *SimulationToggle) Toggle() bool {
	t.withActions = !t.withActions
	return t.withActions
}

// WithActions reports whether the with-actions projection is selected.
func (t *SimulationToggle) WithActions() bool {
	return t.withActions
}

// Series returns the dataset that drives the chart. The returned slice is
// the one supplied by the backend and must not be modified.
func (t *SimulationToggle) Series(sim Simulation) []SimulationItem {
	if t.withActions {
		return sim.ImprovedData
	}
	return sim.CurrentData
}

// Cards returns the metric cards for the current selection: the fixed
// current-trajectory set, or one reduction card per category sorted by name.
func (t *SimulationToggle) Cards(sim Simulation) []SimulationCard {
	if !t.withActions {
		cards := make([]SimulationCard, len(currentTrajectoryCards))
		copy(cards, currentTrajectoryCards)
		return cards
	}

	categories := make([]string, 0, len(sim.ReductionPercentages))
	for category := range sim.ReductionPercentages {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	cards := make([]SimulationCard, 0, len(categories))
	for _, category := range categories {
		cards = append(cards, SimulationCard{
			Label:   category,
			Value:   fmt.Sprintf("-%d%%", sim.ReductionPercentages[category]),
			Caption: "Risk reduction",
			Color:   ColorGreen,
		})
	}
	return cards
}

// Message returns the caption under the simulation cards.
func (t *SimulationToggle) Message() string {
	if t.withActions {
		return SimulationActionMessage
	}
	return SimulationCurrentMessage
}

// BarColor is the fill colour of the chart bars.
func (t *SimulationToggle) BarColor() string {
	if t.withActions {
		return ColorGreen
	}
	return ColorRed
}
