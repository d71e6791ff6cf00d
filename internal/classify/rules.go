package classify

// Rule maps a refreshment category to the keyword phrases that signal it.
// Keywords may be multi-word; matching is case- and accent-insensitive.
type Rule struct {
	ID       string
	Label    string
	Keywords []string
}

// displayPriority fixes the category order in results and summaries:
// most substantial offering first. Categories outside this list are
// appended in discovery order.
var displayPriority = []string{"food", "drinks", "snacks", "sweets", "coffee"}

// DefaultRules is the production rule table. Tests may pass their own.
var DefaultRules = []Rule{
	{
		ID:    "food",
		Label: "Food",
		Keywords: []string{
			"pizza", "grill", "bbq", "barbecue", "raclette", "fondue",
			"pasta", "burger", "apero riche", "dinner", "lunch",
			"essen", "abendessen", "mittagessen", "znacht",
		},
	},
	{
		ID:    "drinks",
		Label: "Drinks",
		Keywords: []string{
			"beer", "bier", "wine", "wein", "prosecco", "punch", "punsch",
			"glühwein", "drinks", "getränke", "cocktail", "spritz",
		},
	},
	{
		ID:    "snacks",
		Label: "Snacks",
		Keywords: []string{
			"snacks", "finger food", "chips", "popcorn", "pretzel", "brezel",
		},
	},
	{
		ID:    "sweets",
		Label: "Sweets",
		Keywords: []string{
			"cake", "kuchen", "dessert", "ice cream", "glace", "cookies",
			"guetzli", "schoggi", "chocolate",
		},
	},
	{
		ID:    "coffee",
		Label: "Coffee",
		Keywords: []string{
			"coffee", "kaffee", "espresso", "cappuccino", "züri kafi",
		},
	},
}
