package domain

import "strings"

// Role is a character secretly assigned to a roster member at game start.
type Role int

const (
	// RoleUnspecified represents an unassigned role.
	RoleUnspecified Role = iota
	// RoleAssassin hunts the civilians. Exactly one per game.
	RoleAssassin
	// RoleDetective hunts the assassin. At most one per game.
	RoleDetective
	// RoleDoctor may revive players. At most one per game.
	RoleDoctor
	// RoleCivilian is every remaining roster member.
	RoleCivilian
)

// RoleLabel returns the store label for a role.
func RoleLabel(role Role) string {
	switch role {
	case RoleAssassin:
		return "assassin"
	case RoleDetective:
		return "detective"
	case RoleDoctor:
		return "doctor"
	case RoleCivilian:
		return "civilian"
	default:
		return "unspecified"
	}
}

// RoleFromLabel converts a store label to a Role value.
func RoleFromLabel(label string) Role {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "assassin":
		return RoleAssassin
	case "detective":
		return RoleDetective
	case "doctor":
		return RoleDoctor
	case "civilian":
		return RoleCivilian
	default:
		return RoleUnspecified
	}
}

// PlayerStatus describes a roster member's state during play.
type PlayerStatus int

const (
	// PlayerStatusUnspecified represents an invalid player status value.
	PlayerStatusUnspecified PlayerStatus = iota
	// PlayerStatusAlive indicates the player is still in the game.
	PlayerStatusAlive
	// PlayerStatusDead indicates the player was eliminated.
	PlayerStatusDead
	// PlayerStatusLeft indicates the player quit the game.
	PlayerStatusLeft
)

// PlayerStatusLabel returns the store label for a player status.
func PlayerStatusLabel(status PlayerStatus) string {
	switch status {
	case PlayerStatusAlive:
		return "alive"
	case PlayerStatusDead:
		return "dead"
	case PlayerStatusLeft:
		return "left"
	default:
		return "unspecified"
	}
}

// PlayerStatusFromLabel converts a store label to a PlayerStatus value.
func PlayerStatusFromLabel(label string) PlayerStatus {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "alive":
		return PlayerStatusAlive
	case "dead":
		return PlayerStatusDead
	case "left":
		return PlayerStatusLeft
	default:
		return PlayerStatusUnspecified
	}
}

// InvitationStatus tracks a roster member's response to their game invite.
type InvitationStatus int

const (
	// InvitationUndefined indicates no invite has been sent.
	InvitationUndefined InvitationStatus = iota
	// InvitationInvited indicates an invite was sent with no response yet.
	InvitationInvited
	// InvitationAccepted indicates the player accepted.
	InvitationAccepted
	// InvitationDeclined indicates the player declined.
	InvitationDeclined
)

// InvitationStatusLabel returns the store label for an invitation status.
func InvitationStatusLabel(status InvitationStatus) string {
	switch status {
	case InvitationInvited:
		return "invited"
	case InvitationAccepted:
		return "accepted"
	case InvitationDeclined:
		return "declined"
	default:
		return "undefined"
	}
}

// InvitationStatusFromLabel converts a store label to an InvitationStatus.
func InvitationStatusFromLabel(label string) InvitationStatus {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "invited":
		return InvitationInvited
	case "accepted":
		return InvitationAccepted
	case "declined":
		return InvitationDeclined
	default:
		return InvitationUndefined
	}
}

// Player is a read-model projection of a player, constructed on demand from
// lookups. The authoritative roster and role data live under the game record.
type Player struct {
	Name             string
	EmailID          string
	Character        Role
	Status           PlayerStatus
	InvitationStatus InvitationStatus
}

// IsAlive reports whether the player is still in the game.
func (p Player) IsAlive() bool {
	return p.Status == PlayerStatusAlive
}
