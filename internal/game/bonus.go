package game

// Score values of the game rules.
const (
	BaseScore = 100

	BonusSpeedyGonzales = 3
	BonusZonaCesarini   = 5
	BonusClub27         = 27
	BonusHappyBirthday  = 10
	BonusFirstDeath     = 5

	GlobetrotterMult    = 2
	InclusivityMult     = 5
	JackOfAllTradesMult = 2
	CaptainMult         = 2
)
