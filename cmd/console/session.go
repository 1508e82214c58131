package main

import (
	"github.com/jwebster45206/npc-dialogue/pkg/chat"
)

// World state keys sent with every request.
const (
	WorldTimeOfDay   = "time_of_day"
	WorldQuestStatus = "quest_status"
)

var (
	timesOfDay    = []string{"morning", "afternoon", "evening", "late night"}
	questStatuses = []string{"not_started", "started", "completed"}
)

// maxHistory bounds the history carried in each request.
const maxHistory = 20

// Session owns the conversation history and world state. The API is
// stateless, so everything here is resent on each turn.
type Session struct {
	PlayerName string
	NPCID      string
	History    []chat.ConversationTurn
	World      map[string]string
}

func NewSession(playerName, npcID string) *Session {
	return &Session{
		PlayerName: playerName,
		NPCID:      npcID,
		World: map[string]string{
			WorldTimeOfDay:   "evening",
			WorldQuestStatus: "not_started",
		},
	}
}

// Request builds the dialogue request for message.
func (s *Session) Request(message string) *chat.DialogueRequest {
	history := s.History
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	world := make(map[string]string, len(s.World))
	for k, v := range s.World {
		world[k] = v
	}
	return &chat.DialogueRequest{
		PlayerMessage: message,
		PlayerName:    s.PlayerName,
		NPCID:         s.NPCID,
		WorldState:    world,
		RecentHistory: append([]chat.ConversationTurn(nil), history...),
	}
}

// Record appends a completed exchange. Failed turns are never recorded.
func (s *Session) Record(message, reply string) {
	s.History = append(s.History,
		chat.ConversationTurn{Speaker: chat.SpeakerPlayer, Text: message},
		chat.ConversationTurn{Speaker: chat.SpeakerNPC, Text: reply},
	)
}

// LastReply returns the most recent NPC line, if any.
func (s *Session) LastReply() (string, bool) {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Speaker == chat.SpeakerNPC {
			return s.History[i].Text, true
		}
	}
	return "", false
}

func (s *Session) CycleTimeOfDay() string {
	return s.cycle(WorldTimeOfDay, timesOfDay)
}

func (s *Session) CycleQuestStatus() string {
	return s.cycle(WorldQuestStatus, questStatuses)
}

func (s *Session) cycle(key string, values []string) string {
	next := values[0]
	for i, v := range values {
		if v == s.World[key] {
			next = values[(i+1)%len(values)]
			break
		}
	}
	s.World[key] = next
	return next
}

func (s *Session) Reset() {
	s.History = nil
}
