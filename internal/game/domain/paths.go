package domain

import "github.com/louisbranch/assassin/internal/store"

// Store path layout. All game state lives under games/{name}, per-player
// mailboxes and stats under users/{id}, and the email lookup index under
// emails/{normalized}.

// GamePath returns the root path for a game.
func GamePath(name string) string {
	return store.Join("games", name)
}

// GameTypePath holds the visibility label.
func GameTypePath(name string) string {
	return store.Join("games", name, "type")
}

// GameCreatorPath holds the creator's player id.
func GameCreatorPath(name string) string {
	return store.Join("games", name, "creator")
}

// GameStatusPath holds the lifecycle status label.
func GameStatusPath(name string) string {
	return store.Join("games", name, "status")
}

// GameAlivePath holds the alive-civilian counter.
func GameAlivePath(name string) string {
	return store.Join("games", name, "alive")
}

// GameResultPath holds the finalized outcome string.
func GameResultPath(name string) string {
	return store.Join("games", name, "result")
}

// GamePlayersPath is the parent of all roster entries.
func GamePlayersPath(name string) string {
	return store.Join("games", name, "players")
}

// PlayerCharacterPath holds a roster member's assigned role label.
func PlayerCharacterPath(name, player string) string {
	return store.Join("games", name, "players", player, "character")
}

// PlayerStatusPath holds a roster member's alive/dead/left label.
func PlayerStatusPath(name, player string) string {
	return store.Join("games", name, "players", player, "status")
}

// PlayerInvitationPath holds a roster member's invitation record.
func PlayerInvitationPath(name, player string) string {
	return store.Join("games", name, "players", player, "invitation")
}

// GameInvitesPath is the append log of invite responses for a player.
func GameInvitesPath(name, player string) string {
	return store.Join("games", name, "invites", player)
}

// UserInvitesPath is a player's invite mailbox.
func UserInvitesPath(player string) string {
	return store.Join("users", player, "invites")
}

// UserMessagesPath is a player's informational message mailbox.
func UserMessagesPath(player string) string {
	return store.Join("users", player, "messages")
}

// UserEmailPath holds the email a player registered with.
func UserEmailPath(player string) string {
	return store.Join("users", player, "email")
}

// UserStatsPath is the parent of a player's win/loss counters.
func UserStatsPath(player string) string {
	return store.Join("users", player, "stats")
}

// UserStatPath holds a single stat counter ("wins" or "losses").
func UserStatPath(player, stat string) string {
	return store.Join("users", player, "stats", stat)
}

// UsersPath is the parent of all user records.
func UsersPath() string {
	return "users"
}

// GamesPath is the parent of all game records.
func GamesPath() string {
	return "games"
}

// EmailPath is the email-to-player lookup entry. The key must already be
// normalized with store.NormalizeKey.
func EmailPath(normalizedEmail string) string {
	return store.Join("emails", normalizedEmail)
}
