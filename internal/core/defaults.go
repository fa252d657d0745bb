package core

// Jar ids used by the sweep workflow and the consumption rules.
const (
	JarNecessities     = "necessities"
	JarInvestments     = "investments"
	JarLongTermSavings = "long_term_savings"
	JarEducation       = "education"
	JarPlay            = "play"
	JarGive            = "give"
	JarBuffer          = "buffer"
)

// Category ids referenced directly by code.
const (
	CategoryBuffer      = "buffer"
	CategoryInvestments = "investments"
	CategorySavings     = "savings"
	CategoryFun         = "fun"
	CategoryIncome      = "income"
)

// DefaultCategories is the built-in category reference set.
func DefaultCategories() []Category {
	return []Category{
		{ID: "housing", Name: "Housing", Color: "#3b82f6"},
		{ID: "food", Name: "Food", Color: "#10b981"},
		{ID: "transport", Name: "Transport", Color: "#f59e0b"},
		{ID: CategoryFun, Name: "Fun", Color: "#f43f5e"},
		{ID: "utilities", Name: "Utilities", Color: "#06b6d4"},
		{ID: "education", Name: "Education", Color: "#a855f7"},
		{ID: CategorySavings, Name: "Savings", Color: "#22c55e"},
		{ID: CategoryInvestments, Name: "Investments", Color: "#6366f1"},
		{ID: "giving", Name: "Giving", Color: "#ec4899"},
		{ID: CategoryBuffer, Name: "Buffer", Color: "#f59e0b"},
		{ID: CategoryIncome, Name: "Income", Color: "#64748b"},
	}
}

// DefaultJars is the built-in 7-jar configuration. The percentages sum to
// 1.00 but no code relies on that; the set is configuration, not a law.
func DefaultJars() []Jar {
	return []Jar{
		{ID: JarNecessities, Name: "Necessities", Percentage: 0.40, Color: "#3b82f6"},
		{ID: JarInvestments, Name: "Investments (INV)", Percentage: 0.22, Color: "#6366f1"},
		{ID: JarLongTermSavings, Name: "Long-Term Savings (LTSS)", Percentage: 0.11, Color: "#22c55e"},
		{ID: JarEducation, Name: "Education (EDU)", Percentage: 0.13, Color: "#a855f7"},
		{ID: JarPlay, Name: "Play (FUN)", Percentage: 0.05, Color: "#f43f5e"},
		{ID: JarGive, Name: "Give", Percentage: 0.03, Color: "#ec4899"},
		{ID: JarBuffer, Name: "Buffer", Percentage: 0.06, Color: "#f59e0b"},
	}
}

// DefaultMapping assigns each spending category to its jar. The income
// category is deliberately unmapped: income rows never land in a jar.
func DefaultMapping() CategoryMapping {
	return CategoryMapping{
		"housing":           JarNecessities,
		"food":              JarNecessities,
		"transport":         JarNecessities,
		"utilities":         JarNecessities,
		CategoryFun:         JarPlay,
		"education":         JarEducation,
		CategorySavings:     JarLongTermSavings,
		CategoryInvestments: JarInvestments,
		"giving":            JarGive,
		CategoryBuffer:      JarBuffer,
	}
}
