package domain

import (
	"time"

	"github.com/samber/lo"
)

type State string

const (
	StateWaiting       State = "waiting"
	StateInRound       State = "in_round"
	StateShowingWinner State = "showing_winner"
)

// Session is the full per-tombola record. It is stored as one serialized
// value per code, so a reader never observes a state written without its
// roster. There is no terminal state: the waiting -> in_round ->
// showing_winner cycle repeats until the record expires.
type Session struct {
	Code  string `json:"code"`
	State State  `json:"state"`
	Round int    `json:"round"`

	// Roster is newest-first; participants are never removed, only flagged
	// offline when their heartbeat lapses.
	Roster []Participant `json:"roster"`

	// FrozenRoster is the eligibility snapshot taken when a round starts.
	// It is only replaced by Freeze or trimmed by PruneInactive.
	FrozenRoster []Participant `json:"frozenRoster"`

	Winners []WinnerRecord `json:"winners"`
}

func NewSession(code string) Session {
	return Session{
		Code:   code,
		State:  StateWaiting,
		Round:  1,
		Roster: []Participant{},
	}
}

// Join prepends a new participant, or treats the submission as a reconnect
// when playerID matches an existing roster entry. The returned bool reports
// whether the participant was newly created.
func (s *Session) Join(firstName, lastName, email, playerID string, now time.Time) (Participant, bool) {
	if playerID != "" {
		for i := range s.Roster {
			if s.Roster[i].ID == playerID {
				s.Roster[i].LastHeartbeat = now.Unix()
				s.Roster[i].Status = StatusOnline
				return s.Roster[i], false
			}
		}
	}

	participant := NewParticipant(firstName, lastName, email, now)
	s.Roster = append([]Participant{participant}, s.Roster...)

	return participant, true
}

// Heartbeat refreshes the liveness timestamp for playerID and reports
// whether the participant is known.
func (s *Session) Heartbeat(playerID string, now time.Time) bool {
	for i := range s.Roster {
		if s.Roster[i].ID == playerID {
			s.Roster[i].LastHeartbeat = now.Unix()
			s.Roster[i].Status = StatusOnline
			return true
		}
	}

	return false
}

// PruneInactive flags participants whose last heartbeat is older than
// timeout as offline and returns the ids that flipped on this call. Already
// offline participants are not re-reported, which makes repeated sweeps
// idempotent from the notifier's point of view. Newly offline ids are also
// dropped from the frozen roster so a mid-round disconnect loses eligibility.
func (s *Session) PruneInactive(now time.Time, timeout time.Duration) []string {
	var newlyOffline []string

	deadline := now.Add(-timeout).Unix()
	for i := range s.Roster {
		if s.Roster[i].Status != StatusOnline {
			continue
		}
		if s.Roster[i].LastHeartbeat < deadline {
			s.Roster[i].Status = StatusOffline
			newlyOffline = append(newlyOffline, s.Roster[i].ID)
		}
	}

	if len(newlyOffline) > 0 && s.FrozenRoster != nil {
		s.FrozenRoster = lo.Filter(s.FrozenRoster, func(p Participant, _ int) bool {
			return !lo.Contains(newlyOffline, p.ID)
		})
	}

	return newlyOffline
}

// Freeze snapshots the online roster as the round's eligibility list and
// enters the round.
func (s *Session) Freeze() {
	online := s.OnlineRoster()
	s.FrozenRoster = make([]Participant, len(online))
	copy(s.FrozenRoster, online)
	s.State = StateInRound
}

// SelectWinner draws one participant from the frozen roster and appends the
// winner record for the current round. An empty frozen roster yields no
// winner and leaves the session untouched. The winner stays in the roster;
// nothing stops a participant winning twice across rounds.
func (s *Session) SelectWinner(picker Picker) (Participant, bool) {
	if len(s.FrozenRoster) == 0 {
		return Participant{}, false
	}

	winner := s.FrozenRoster[picker.Pick(len(s.FrozenRoster))]

	s.Winners = append(s.Winners, WinnerRecord{
		Round:      s.Round,
		PlayerID:   winner.ID,
		PlayerName: winner.FullName(),
		Player:     winner,
	})
	s.State = StateShowingWinner

	return winner, true
}

// AdvanceRound increments the round counter and re-opens the session for
// joins. The frozen roster is left behind for the next Freeze to overwrite
// and the winners history is never cleared.
func (s *Session) AdvanceRound() {
	s.Round++
	s.State = StateWaiting
}

func (s *Session) OnlineRoster() []Participant {
	return lo.Filter(s.Roster, func(p Participant, _ int) bool {
		return p.Status == StatusOnline
	})
}

func (s *Session) FindParticipant(playerID string) (Participant, bool) {
	return lo.Find(s.Roster, func(p Participant) bool {
		return p.ID == playerID
	})
}

func (s *Session) InFrozenRoster(playerID string) bool {
	return lo.ContainsBy(s.FrozenRoster, func(p Participant) bool {
		return p.ID == playerID
	})
}

// IsEligible reports whether playerID would be part of a draw right now.
// Before the first Freeze the whole online roster is eligible; afterwards
// eligibility follows the frozen snapshot.
func (s *Session) IsEligible(playerID string) bool {
	if s.FrozenRoster == nil {
		return lo.ContainsBy(s.OnlineRoster(), func(p Participant) bool {
			return p.ID == playerID
		})
	}

	return s.InFrozenRoster(playerID)
}

// DisplayRoster is what the board shows: the eligibility snapshot while a
// round is running, the online roster otherwise.
func (s *Session) DisplayRoster() []Participant {
	if s.State == StateInRound || s.State == StateShowingWinner {
		return s.FrozenRoster
	}
	return s.OnlineRoster()
}
