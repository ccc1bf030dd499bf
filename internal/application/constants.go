package application

const (
	// Google Sheets configuration
	sheetsTitlePrefix = "Fantamorto "
	sheetsClearRange  = "A1:Z1000"
	sheetsStartCell   = "A1"
	sheetsOwnerRole   = "writer"

	// Excel report configuration
	excelRankingSheet = "Ranking"
	excelTeamsSheet   = "Teams"

	dateLayout = "2006-01-02"
)

var (
	csvHeader     = []string{"Owner ID", "Team", "Athlet ID", "Athlet", "Captain"}
	rankingHeader = []string{"Position", "Team", "Owner", "Score"}
	teamsHeader   = []string{"Team", "Athlet ID", "Athlet", "Born", "Died", "Captain", "Score"}
)
