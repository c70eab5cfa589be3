package core

// Rule maps one category to the lowercase keyword substrings that select it.
type Rule struct {
	Category Category
	Keywords []string
}

// defaultRules is the process-wide rule table. Order is precedence: when a
// description contains keywords from several rules, the earliest rule wins.
// Keyword sets overlap (gas, bar, subway, netflix, deposit, ...).
var defaultRules = []Rule{
	{FoodDining, []string{
		"restaurant", "cafe", "coffee", "starbucks", "mcdonald", "burger", "pizza",
		"food", "dining", "lunch", "dinner", "breakfast", "snack", "grocery",
		"supermarket", "walmart", "target", "costco", "whole foods", "trader joe",
		"domino", "subway", "kfc", "taco bell", "chipotle", "panera", "dunkin",
		"bakery", "deli", "bistro", "grill", "bar", "pub", "kitchen", "eatery",
	}},
	{Transportation, []string{
		"uber", "lyft", "taxi", "gas", "fuel", "parking", "metro", "bus",
		"train", "airline", "flight", "car", "vehicle", "auto", "transport",
		"toll", "subway", "transit", "rental", "hertz", "enterprise", "avis",
		"shell", "exxon", "chevron", "bp", "mobil", "citgo", "speedway",
	}},
	{Utilities, []string{
		"electric", "electricity", "gas", "water", "internet", "phone", "cable",
		"utility", "bill", "energy", "power", "heating", "cooling", "trash",
		"waste", "sewer", "telecom", "verizon", "att", "comcast", "spectrum",
		"xfinity", "cox", "dish", "directv", "netflix", "hulu", "spotify",
	}},
	// "store" is left out: it turns every generic merchant string into
	// Shopping.
	{Shopping, []string{
		"amazon", "ebay", "shop", "retail", "mall", "outlet", "purchase",
		"buy", "clothing", "clothes", "shoes", "electronics", "home depot",
		"lowes", "best buy", "apple", "microsoft", "nike", "adidas", "zara",
		"h&m", "gap", "old navy", "macys", "nordstrom", "sears", "kohl",
		"tj maxx", "marshall", "ross", "department", "boutique",
	}},
	{Entertainment, []string{
		"movie", "cinema", "theater", "concert", "music", "game", "gaming",
		"entertainment", "fun", "leisure", "hobby", "sport", "gym", "fitness",
		"club", "bar", "nightclub", "casino", "lottery", "ticket", "event",
		"amusement", "park", "zoo", "museum", "gallery", "show", "performance",
		"netflix", "hulu", "disney", "spotify", "youtube", "twitch", "steam",
	}},
	{Healthcare, []string{
		"doctor", "hospital", "medical", "health", "pharmacy", "medicine",
		"dental", "dentist", "clinic", "urgent care", "emergency", "prescription",
		"drug", "cvs", "walgreens", "rite aid", "insurance", "copay", "deductible",
		"therapy", "physical therapy", "mental health", "counseling", "wellness",
	}},
	{Income, []string{
		"salary", "wage", "payroll", "income", "deposit", "payment", "refund",
		"cashback", "bonus", "commission", "dividend", "interest", "transfer",
		"reimbursement", "tax refund", "social security", "pension", "unemployment",
		"freelance", "consulting", "contract", "gig", "tip", "gratuity",
	}},
	{Education, []string{
		"school", "university", "college", "education", "tuition", "book",
		"textbook", "course", "class", "training", "workshop", "seminar",
		"certification", "degree", "diploma", "student", "academic", "learning",
		"library", "research", "study", "exam", "test", "scholarship",
	}},
	{Banking, []string{
		"bank", "atm", "fee", "charge", "overdraft", "maintenance", "service",
		"transfer", "wire", "check", "deposit", "withdrawal", "balance",
		"account", "credit", "debit", "loan", "mortgage", "interest",
		"finance", "investment", "savings", "checking", "penalty",
	}},
}

// Rules returns a copy of the default rule table in precedence order.
func Rules() []Rule {
	return cloneRules(defaultRules)
}

func cloneRules(in []Rule) []Rule {
	out := make([]Rule, len(in))
	for i, r := range in {
		out[i] = Rule{Category: r.Category, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}
