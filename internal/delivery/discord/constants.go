package discord

import "time"

const (
	chatPrefix = "dc:"

	// Display limits
	maxTitleLength       = 256
	maxDescriptionLength = 4096
	maxFieldLength       = 1024
	truncationSuffix     = "…"

	commandTimeout = 30 * time.Second

	// Embed colors
	colorGold  = 0xFFD700 // Ranking
	colorGreen = 0x2ECC71 // Alive, success
	colorRed   = 0xE74C3C // Deaths
	colorGray  = 0x95A5A6 // Neutral
	colorBlue  = 0x3498DB // Info

	footerText = "Fantamorto"

	emojiCaptain    = "🎖"
	emojiAlive      = "💓"
	emojiDead       = "💀"
	emojiFirstDeath = "🩸"
	emojiGonzales   = "🐭"
	emojiCesarini   = "⏱"
	emojiClub27     = "🎸"
	emojiBirthday   = "🎂"
)
