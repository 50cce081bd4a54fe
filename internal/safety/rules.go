package safety

// Rule maps a forbidden phrase to its handling. Phrases are lower case and
// matched against a case-folded copy of the text.
type Rule struct {
	Phrase      string
	Replacement string
	Category    string
}

// Rule categories.
const (
	CategoryDirective = "directive"
	CategoryPressure  = "pressure"
	CategoryGuarantee = "guarantee"
	CategorySexual    = "sexual_suggestion"
	CategoryRanking   = "attractiveness_ranking"
	CategoryCoercive  = "coercive_push"
)

// Disclaimer replaces any string the ethics guard flags.
const Disclaimer = "Some thoughts about dating are very personal. " +
	"Please focus on comfort, consent, and your own boundaries. " +
	"If you feel unsure, you may pause and reflect or talk to someone you trust."

const neutralReplacement = "you may consider"

// ToneRules are applied in order; each phrase is rewritten at most once per string.
var ToneRules = []Rule{
	{Phrase: "you should", Replacement: neutralReplacement, Category: CategoryDirective},
	{Phrase: "you must", Replacement: neutralReplacement, Category: CategoryDirective},
	{Phrase: "act now", Replacement: neutralReplacement, Category: CategoryPressure},
	{Phrase: "don’t miss", Replacement: neutralReplacement, Category: CategoryPressure},
	{Phrase: "last chance", Replacement: neutralReplacement, Category: CategoryPressure},
	{Phrase: "guaranteed", Replacement: neutralReplacement, Category: CategoryGuarantee},
	{Phrase: "fix this", Replacement: neutralReplacement, Category: CategoryDirective},
	{Phrase: "this will work", Replacement: neutralReplacement, Category: CategoryGuarantee},
}

// EthicsRules trigger a whole-string replacement with the disclaimer.
var EthicsRules = []Rule{
	{Phrase: "kiss them", Category: CategorySexual},
	{Phrase: "kiss her", Category: CategorySexual},
	{Phrase: "kiss him", Category: CategorySexual},
	{Phrase: "sleep with", Category: CategorySexual},
	{Phrase: "have sex", Category: CategorySexual},
	{Phrase: "be intimate with", Category: CategorySexual},
	{Phrase: "try being more intimate", Category: CategorySexual},
	{Phrase: "touch their", Category: CategorySexual},
	{Phrase: "touch her", Category: CategorySexual},
	{Phrase: "touch him", Category: CategorySexual},

	{Phrase: "out of 10", Category: CategoryRanking},
	{Phrase: "/10", Category: CategoryRanking},
	{Phrase: "hotter than", Category: CategoryRanking},
	{Phrase: "more beautiful than", Category: CategoryRanking},
	{Phrase: "more attractive than", Category: CategoryRanking},
	{Phrase: "less attractive than", Category: CategoryRanking},
	{Phrase: "too ugly", Category: CategoryRanking},
	{Phrase: "too fat", Category: CategoryRanking},
	{Phrase: "too short", Category: CategoryRanking},

	{Phrase: "you can't miss this", Category: CategoryCoercive},
	{Phrase: "you will regret it", Category: CategoryCoercive},
	{Phrase: "this is your only chance", Category: CategoryCoercive},
	{Phrase: "prove yourself", Category: CategoryCoercive},
	{Phrase: "if you don't do this", Category: CategoryCoercive},
	{Phrase: "you have to do this", Category: CategoryCoercive},
}
