package brandvoice

// Word lists driving the rule-based scorers. Multi-word entries match as whole-word phrases.

var domainTerms = []string{
	"strategy", "roi", "engagement", "conversion", "pipeline", "analytics", "insight", "insights",
	"audience", "brand", "campaign", "campaigns", "customer", "customers", "revenue", "growth",
	"performance", "optimization", "segmentation", "retention", "framework", "benchmark",
	"stakeholders", "lifecycle", "attribution", "funnel", "metrics", "personalization",
	"automation", "demand", "prospects", "leads", "marketing", "content",
}

var casualMarkers = []string{
	"awesome", "gonna", "wanna", "gotta", "lol", "super cool", "stuff", "kinda", "sorta",
	"totally", "omg", "yeah", "yep", "hey guys", "crazy good", "no brainer", "btw", "literally",
	"epic", "cool",
}

var jargonTerms = []string{
	"synergy", "synergies", "leverage", "paradigm", "disruptive", "holistic", "bandwidth",
	"move the needle", "circle back", "low-hanging fruit", "best-of-breed", "game-changer",
	"game changer", "deep dive", "boil the ocean", "thought shower", "value-add", "ideate",
}

var technicalTerms = []string{
	"api", "saas", "crm", "kpi", "kpis", "seo", "cdp", "martech", "machine learning", "ai",
	"llm", "etl", "webhook", "sdk", "omnichannel", "ctr", "mql", "sql", "cac",
	"ltv", "utm",
}

// Markers that signal a technical term is explained in the same sentence.
var explanationMarkers = []string{
	"which means", "that is", "i.e.", "in other words", "(", "refers to", "defined as",
	"meaning", "stands for", "short for", "such as", "for example", "known as", " - ", ":",
}

var outcomeTerms = []string{
	"increase", "increases", "reduce", "reduces", "improve", "improves", "save", "saves",
	"revenue", "growth", "roi", "results", "efficiency", "value", "benefit", "benefits",
	"outcome", "outcomes", "cost", "costs", "profit", "conversion", "conversions", "faster",
	"boost", "accelerate", "drive",
}

var excludingTerms = []string{
	"guys", "manpower", "chairman", "blacklist", "whitelist", "master", "slave", "crazy",
	"insane", "lame", "dumb", "man-hours", "salesman", "salesmen", "handicapped", "sanity check",
	"grandfathered", "normal people",
}

var ctaPhrases = []string{
	"learn more", "get started", "sign up", "download", "register", "contact us", "book a demo",
	"request a demo", "try it", "try it free", "subscribe", "join", "discover", "read more",
	"start your", "talk to", "schedule a", "see how",
}

var imperativeVerbs = []string{
	"start", "discover", "learn", "build", "create", "explore", "download", "join", "unlock",
	"boost", "drive", "grow", "transform", "see", "try", "get", "make", "take", "use", "find",
	"register", "subscribe", "book", "request", "contact", "read", "watch", "sign", "plan",
	"measure", "launch", "scale",
}

var secondPerson = []string{"you", "your", "you're", "yours"}

var stopWords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "from": {}, "your": {}, "have": {}, "will": {},
	"they": {}, "their": {}, "about": {}, "there": {}, "which": {}, "what": {}, "when": {},
	"into": {}, "more": {}, "than": {}, "them": {}, "these": {}, "those": {}, "were": {},
	"been": {}, "also": {}, "just": {}, "only": {}, "over": {}, "such": {}, "very": {},
	"each": {}, "most": {}, "some": {}, "like": {}, "make": {}, "does": {}, "here": {},
	"across": {}, "while": {}, "where": {}, "every": {}, "other": {},
}
