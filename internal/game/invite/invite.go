// Package invite manages game invitations, responses, and player mailboxes.
package invite

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "github.com/louisbranch/assassin/internal/errors"
	"github.com/louisbranch/assassin/internal/game/domain"
	"github.com/louisbranch/assassin/internal/id"
	"github.com/louisbranch/assassin/internal/store"
)

// MailboxInvite is a single record in a player's invite mailbox. The
// mailbox is append-only and never deduplicated; re-inviting simply
// appends another record.
type MailboxInvite struct {
	Game   string    `json:"game"`
	From   string    `json:"from"`
	SentAt time.Time `json:"sentAt"`
}

// Message is an informational record in a player's message mailbox.
type Message struct {
	From   string    `json:"from"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sentAt"`
}

// response is a single invite response in the game's invite log.
type response struct {
	Status      string    `json:"status"`
	RespondedAt time.Time `json:"respondedAt"`
}

// invitationRecord is the roster-side invitation status with the timestamp
// that last-write-wins resolution compares.
type invitationRecord struct {
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Flow implements the invitation workflow.
type Flow struct {
	store       store.Store
	clock       func() time.Time
	idGenerator func() (string, error)
}

// New creates a Flow with default dependencies.
func New(st store.Store) *Flow {
	return &Flow{store: st, clock: time.Now, idGenerator: id.NewID}
}

func validateIDs(game, player string) error {
	if strings.TrimSpace(game) == "" {
		return apperrors.New(apperrors.CodeInviteGameEmpty, "game name is required")
	}
	if strings.TrimSpace(player) == "" {
		return apperrors.New(apperrors.CodeInvitePlayerEmpty, "player id is required")
	}
	return nil
}

// Invite appends a timestamped invite to the invitee's mailbox and marks the
// roster-side invitation status as invited. The mark is only applied when no
// invitation record exists yet: re-inviting never flaps a recorded response.
func (f *Flow) Invite(ctx context.Context, game, invitee, admin string) error {
	if err := validateIDs(game, invitee); err != nil {
		return err
	}

	recordID, err := f.idGenerator()
	if err != nil {
		return fmt.Errorf("generate invite id: %w", err)
	}
	payload, err := json.Marshal(MailboxInvite{Game: game, From: admin, SentAt: f.clock().UTC()})
	if err != nil {
		return fmt.Errorf("encode invite: %w", err)
	}
	if err := f.store.Set(ctx, store.Join(domain.UserInvitesPath(invitee), recordID), string(payload)); err != nil {
		return fmt.Errorf("append invite: %w", err)
	}

	mark, err := json.Marshal(invitationRecord{
		Status:    domain.InvitationStatusLabel(domain.InvitationInvited),
		UpdatedAt: f.clock().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode invitation mark: %w", err)
	}
	_, err = f.store.Update(ctx, domain.PlayerInvitationPath(game, invitee), func(current string, exists bool) (string, error) {
		if exists {
			return current, nil
		}
		return string(mark), nil
	})
	if err != nil {
		return fmt.Errorf("mark invitation: %w", err)
	}
	return nil
}

// Respond records an accepted/declined response at the current time.
func (f *Flow) Respond(ctx context.Context, game, player string, accepted bool) error {
	return f.RespondAt(ctx, game, player, accepted, f.clock())
}

// RespondAt records a response with an explicit timestamp. The response is
// appended to the game's invite log for the player, and the roster-side
// invitation status is resolved last-write-wins by this timestamp, not by
// arrival order, so racing responses cannot flap the visible status.
func (f *Flow) RespondAt(ctx context.Context, game, player string, accepted bool, at time.Time) error {
	if err := validateIDs(game, player); err != nil {
		return err
	}

	status := domain.InvitationDeclined
	if accepted {
		status = domain.InvitationAccepted
	}
	at = at.UTC()

	recordID, err := f.idGenerator()
	if err != nil {
		return fmt.Errorf("generate response id: %w", err)
	}
	payload, err := json.Marshal(response{Status: domain.InvitationStatusLabel(status), RespondedAt: at})
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	if err := f.store.Set(ctx, store.Join(domain.GameInvitesPath(game, player), recordID), string(payload)); err != nil {
		return fmt.Errorf("append response: %w", err)
	}

	next, err := json.Marshal(invitationRecord{
		Status:    domain.InvitationStatusLabel(status),
		UpdatedAt: at,
	})
	if err != nil {
		return fmt.Errorf("encode invitation record: %w", err)
	}
	resolved := status
	_, err = f.store.Update(ctx, domain.PlayerInvitationPath(game, player), func(current string, exists bool) (string, error) {
		if exists {
			var record invitationRecord
			if err := json.Unmarshal([]byte(current), &record); err == nil && record.UpdatedAt.After(at) {
				resolved = domain.InvitationStatusFromLabel(record.Status)
				return current, nil
			}
		}
		resolved = status
		return string(next), nil
	})
	if err != nil {
		return fmt.Errorf("resolve invitation status: %w", err)
	}

	// An accepted invitation joins the roster: the player gets a status
	// entry, which is what marks actual game membership.
	if resolved == domain.InvitationAccepted {
		_, err = f.store.Update(ctx, domain.PlayerStatusPath(game, player), func(current string, exists bool) (string, error) {
			if exists {
				return current, nil
			}
			return domain.PlayerStatusLabel(domain.PlayerStatusAlive), nil
		})
		if err != nil {
			return fmt.Errorf("join roster: %w", err)
		}
	}
	return nil
}

// InvitationStatus returns a roster member's visible invitation status.
func (f *Flow) InvitationStatus(ctx context.Context, game, player string) (domain.InvitationStatus, error) {
	if err := validateIDs(game, player); err != nil {
		return domain.InvitationUndefined, err
	}

	raw, err := f.store.Get(ctx, domain.PlayerInvitationPath(game, player))
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return domain.InvitationUndefined, nil
		}
		return domain.InvitationUndefined, err
	}

	var record invitationRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return domain.InvitationUndefined, fmt.Errorf("decode invitation record: %w", err)
	}
	return domain.InvitationStatusFromLabel(record.Status), nil
}

// NotifyNotLoggedIn appends an informational message to the admin's mailbox.
// It never mutates roster or invite state.
func (f *Flow) NotifyNotLoggedIn(ctx context.Context, fromPlayer, toAdmin string) error {
	if strings.TrimSpace(fromPlayer) == "" || strings.TrimSpace(toAdmin) == "" {
		return apperrors.New(apperrors.CodeInvitePlayerEmpty, "player id is required")
	}

	recordID, err := f.idGenerator()
	if err != nil {
		return fmt.Errorf("generate message id: %w", err)
	}
	payload, err := json.Marshal(Message{
		From:   fromPlayer,
		Text:   fromPlayer + " not logged in",
		SentAt: f.clock().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	return f.store.Set(ctx, store.Join(domain.UserMessagesPath(toAdmin), recordID), string(payload))
}

// Mailbox returns a player's invite mailbox ordered by send time.
func (f *Flow) Mailbox(ctx context.Context, player string) ([]MailboxInvite, error) {
	keys, err := f.store.Children(ctx, domain.UserInvitesPath(player))
	if err != nil {
		return nil, fmt.Errorf("list mailbox: %w", err)
	}

	invites := make([]MailboxInvite, 0, len(keys))
	for _, key := range keys {
		raw, err := f.store.Get(ctx, store.Join(domain.UserInvitesPath(player), key))
		if err != nil {
			continue
		}
		var record MailboxInvite
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			continue
		}
		invites = append(invites, record)
	}
	sort.Slice(invites, func(i, j int) bool { return invites[i].SentAt.Before(invites[j].SentAt) })
	return invites, nil
}

// Messages returns a player's informational messages ordered by send time.
func (f *Flow) Messages(ctx context.Context, player string) ([]Message, error) {
	keys, err := f.store.Children(ctx, domain.UserMessagesPath(player))
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	messages := make([]Message, 0, len(keys))
	for _, key := range keys {
		raw, err := f.store.Get(ctx, store.Join(domain.UserMessagesPath(player), key))
		if err != nil {
			continue
		}
		var record Message
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			continue
		}
		messages = append(messages, record)
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].SentAt.Before(messages[j].SentAt) })
	return messages, nil
}
