// Package domain defines the assassin game data model: games, players,
// roles, lifecycle statuses, and the store path layout they persist under.
package domain
