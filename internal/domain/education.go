package domain

// Topic is an entry of the static education panel.
type Topic struct {
	ID      string
	Symbol  Symbol
	Title   string
	Content string
	Color   string
}

// EducationTopics returns the education panel content in display order.
func EducationTopics() []Topic {
	return []Topic{
		{
			ID:     "causes",
			Symbol: SymbolBook,
			Title:  "Why This Pollution Happens",
			Content: "Environmental pollution stems from multiple sources: industrial emissions release particulate " +
				"matter and chemicals, vehicle exhaust contributes nitrogen oxides and carbon monoxide, agricultural " +
				"practices generate methane and ammonia, and improper waste disposal creates toxic runoff. " +
				"Understanding these causes helps identify targeted solutions.",
			Color: ColorRed,
		},
		{
			ID:     "ai",
			Symbol: SymbolBrain,
			Title:  "How AI Predicts Environmental Impact",
			Content: "Our AI system analyzes thousands of data points including historical pollution patterns, " +
				"weather conditions, traffic data, industrial activity, and seasonal trends. Machine learning models " +
				"trained on years of environmental data can predict pollution levels with 94% accuracy, enabling " +
				"proactive rather than reactive environmental management.",
			Color: ColorBlue,
		},
		{
			ID:     "action",
			Symbol: SymbolUsers,
			Title:  "What Communities Can Do",
			Content: "Collective action drives real change: communities can organize carpool networks, establish waste " +
				"segregation systems, advocate for green spaces, support local environmental policies, and participate " +
				"in citizen science monitoring. When individuals coordinate their efforts, environmental impact " +
				"multiplies exponentially.",
			Color: ColorGreen,
		},
	}
}
