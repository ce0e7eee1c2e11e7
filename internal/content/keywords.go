package content

// Keyword categories matched case-insensitively as substrings of a report
// description. Each category carries a fixed point value per match.
//
// Phrases are kept multi-word or distinctive enough that substring matching
// does not fire inside unrelated words.

// highRiskPhrases capture persuasion and urgency language (15 points each).
var highRiskPhrases = []string{
	"urgent",
	"act now",
	"limited time",
	"click this link",
	"guaranteed profit",
	"guaranteed return",
	"double your money",
	"risk-free",
	"verify your account",
	"account suspended",
	"you have won",
	"claim your prize",
	"last chance",
	"do not tell anyone",
}

// impersonationPhrases capture claimed authority (10 points each).
var impersonationPhrases = []string{
	"internal revenue service",
	"social security administration",
	"tech support",
	"microsoft support",
	"amazon security",
	"bank security team",
	"law enforcement",
	"federal agent",
	"government official",
	"customs office",
	"lottery commission",
	"your bank manager",
}

// financialTriggerPhrases capture payment rails commonly abused for scams
// (12 points each).
var financialTriggerPhrases = []string{
	"western union",
	"moneygram",
	"gift card",
	"gift cards",
	"itunes card",
	"bitcoin",
	"cryptocurrency",
	"crypto wallet",
	"prepaid card",
	"cash app",
	"zelle",
	"venmo",
}
