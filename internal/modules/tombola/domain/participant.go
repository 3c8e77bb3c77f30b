package domain

import (
	"time"

	"github.com/google/uuid"
)

type ParticipantStatus string

const (
	StatusOnline  ParticipantStatus = "online"
	StatusOffline ParticipantStatus = "offline"
)

// Participant is one joined entrant. Timestamps are unix seconds - that is
// the shape the browser clients already consume from the realtime channel.
type Participant struct {
	ID            string            `json:"id"`
	FirstName     string            `json:"firstName"`
	LastName      string            `json:"lastName"`
	Email         string            `json:"email"`
	GravatarURL   string            `json:"gravatarUrl"`
	JoinedAt      int64             `json:"joinedAt"`
	LastHeartbeat int64             `json:"lastHeartbeat"`
	Status        ParticipantStatus `json:"status"`
}

func NewParticipant(firstName, lastName, email string, now time.Time) Participant {
	return Participant{
		ID:            uuid.NewString(),
		FirstName:     firstName,
		LastName:      lastName,
		Email:         email,
		GravatarURL:   GravatarURL(email, GravatarDefaultSize),
		JoinedAt:      now.Unix(),
		LastHeartbeat: now.Unix(),
		Status:        StatusOnline,
	}
}

func (p Participant) FullName() string {
	return p.FirstName + " " + p.LastName
}

// WinnerRecord is the append-only history entry written when a round's
// winner is drawn. It embeds a full copy of the participant as it was at
// selection time, so later roster mutations cannot rewrite history.
type WinnerRecord struct {
	Round      int         `json:"round"`
	PlayerID   string      `json:"playerId"`
	PlayerName string      `json:"playerName"`
	Player     Participant `json:"player"`
}
