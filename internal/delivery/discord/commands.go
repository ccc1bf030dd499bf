package discord

import "github.com/bwmarrin/discordgo"

func (b *Bot) addCommands(commands ...*discordgo.ApplicationCommand) {
	b.commands = append(b.commands, commands...)
}

func (b *Bot) registerCommands() {
	b.addCommands(
		simpleCommand("help", "How to play"),
		simpleCommand("start", "Start a new game in this channel"),
		simpleCommand("stop", "End the game (creator only)"),
		newJoinCommand(),
		simpleCommand("draft", "Open the draft (creator only)"),
		simpleCommand("cancel_draft", "Go back to the lobby and release every pick (creator only)"),
		simpleCommand("draft_order", "Show the draft order"),
		queryCommand("info", "Look a person up without drafting"),
		queryCommand("add", "Draft a person by name or Wikidata ID"),
		indexCommand("drop", "Release one of your picks"),
		indexCommand("captain", "Choose your captain"),
		simpleCommand("ranking", "Show the ranking"),
		simpleCommand("team", "Show your team"),
		simpleCommand("all_teams", "List the teams in game"),
		newRenameCommand(),
		newExportCommand(),
		newKillCommand(),
	)
}

func simpleCommand(name, description string) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: name, Description: description}
}

func queryCommand(name, description string) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        name,
		Description: description,
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "query", Description: "Name or Wikidata ID, e.g. Q11860", Required: true},
		},
	}
}

func indexCommand(name, description string) *discordgo.ApplicationCommand {
	minIndex := 0.0
	return &discordgo.ApplicationCommand{
		Name:        name,
		Description: description,
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionInteger, Name: "index", Description: "Index shown by /team", Required: true, MinValue: &minIndex},
		},
	}
}

func newJoinCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "join",
		Description: "Join the game",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "team_name", Description: "Name of your team", Required: false},
		},
	}
}

func newRenameCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "rename",
		Description: "Rename your team",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "team_name", Description: "New name", Required: true},
		},
	}
}

func newExportCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "export",
		Description: "Export the game",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "format",
				Description: "Export format",
				Required:    false,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "CSV", Value: "csv"},
					{Name: "Excel", Value: "xlsx"},
					{Name: "Google Sheet", Value: "sheet"},
				},
			},
		},
	}
}

func newKillCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "kill",
		Description: "Record a death by hand (admins only)",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "wid", Description: "Wikidata ID", Required: true},
		},
	}
}
