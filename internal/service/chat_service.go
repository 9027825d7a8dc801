package service

import (
	"context"
	"errors"
	"fmt"

	"ai-persona-advisors/backend/ai"
	"ai-persona-advisors/backend/internal/models"
	"ai-persona-advisors/backend/internal/repository"
	"ai-persona-advisors/backend/pkg/cache"
	"ai-persona-advisors/backend/pkg/logger"
)

var ErrNothingToSynthesize = errors.New("no persona replies to synthesize")

// moderatorName labels synthesis summaries in the message log.
const moderatorName = "Moderator"

// Responder produces one persona's reply to one user turn.
type Responder interface {
	Respond(ctx context.Context, history []ai.ChatMessage, persona ai.PersonaProfile, userMessage string) (string, error)
}

// Debater drives one debate round across a set of personas.
type Debater interface {
	Debate(ctx context.Context, userMessage string, personas []ai.PersonaProfile, history []ai.ChatMessage) []ai.PersonaReply
}

// Synthesizer summarizes one round of persona replies.
type Synthesizer interface {
	Synthesize(ctx context.Context, question string, replies []ai.PersonaReply) (string, error)
}

// MessageBroadcaster pushes fresh message snapshots to live subscribers.
type MessageBroadcaster interface {
	Broadcast(conversationID string, messages []models.Message)
}

// ChatService is the entry point for the conversation pipeline: it loads
// conversation state, drives the responder or the debate orchestrator, and
// appends the results to the message log in dispatch order.
type ChatService struct {
	conversations *ConversationService
	personas      repository.PersonaRepository
	messages      repository.MessageRepository
	responder     Responder
	orchestrator  Debater
	synthesizer   Synthesizer
	personaCache  *cache.Cache
	hub           MessageBroadcaster
	log           *logger.Logger
}

// NewChatService creates the pipeline facade. personaCache and hub may be
// nil; both are optional accelerations.
func NewChatService(
	conversations *ConversationService,
	personas repository.PersonaRepository,
	messages repository.MessageRepository,
	responder Responder,
	orchestrator Debater,
	synthesizer Synthesizer,
	personaCache *cache.Cache,
	hub MessageBroadcaster,
	log *logger.Logger,
) *ChatService {
	return &ChatService{
		conversations: conversations,
		personas:      personas,
		messages:      messages,
		responder:     responder,
		orchestrator:  orchestrator,
		synthesizer:   synthesizer,
		personaCache:  personaCache,
		hub:           hub,
		log:           log,
	}
}

// SendMessage handles one user turn. In single mode the user message is only
// persisted once the persona's reply succeeded, so a failed send leaves the
// conversation unchanged. In debate mode the user message is persisted first
// and every persona's outcome is appended in dispatch order, placeholders
// included, so one failing persona never blocks the round.
func (s *ChatService) SendMessage(ctx context.Context, userID uint, conversationID, content string) ([]models.Message, error) {
	conversation, err := s.conversations.GetConversation(userID, conversationID)
	if err != nil {
		return nil, err
	}

	personas, err := s.loadPersonas(conversation)
	if err != nil {
		return nil, err
	}

	existing, err := s.messages.ListByConversation(conversationID)
	if err != nil {
		return nil, err
	}
	history := toChatMessages(existing)
	firstMessage := len(existing) == 0

	var appended []models.Message
	if conversation.Mode == models.ModeDebate {
		appended, err = s.sendDebate(ctx, conversation, personas, history, content, firstMessage)
	} else {
		appended, err = s.sendSingle(ctx, conversation, personas[0], history, content, firstMessage)
	}
	if err != nil {
		return nil, err
	}

	if err := s.conversations.Touch(conversationID); err != nil {
		s.log.Warn("failed to bump conversation activity", "conversation", conversationID, "error", err.Error())
	}
	s.broadcast(conversationID)

	return appended, nil
}

func (s *ChatService) sendSingle(ctx context.Context, conversation *models.Conversation, persona models.Persona, history []ai.ChatMessage, content string, firstMessage bool) ([]models.Message, error) {
	reply, err := s.responder.Respond(ctx, history, toProfile(persona), content)
	if err != nil {
		return nil, err
	}

	userMsg := &models.Message{
		ConversationID: conversation.ID,
		Role:           models.RoleUser,
		Content:        content,
	}
	if err := s.messages.Append(userMsg); err != nil {
		return nil, err
	}
	if firstMessage {
		s.setTitle(conversation.ID, content)
	}

	assistantMsg := &models.Message{
		ConversationID: conversation.ID,
		Role:           models.RoleAssistant,
		Content:        reply,
		PersonaID:      persona.ID,
		PersonaName:    persona.Name,
		Succeeded:      true,
	}
	if err := s.messages.Append(assistantMsg); err != nil {
		return nil, err
	}

	return []models.Message{*userMsg, *assistantMsg}, nil
}

func (s *ChatService) sendDebate(ctx context.Context, conversation *models.Conversation, personas []models.Persona, history []ai.ChatMessage, content string, firstMessage bool) ([]models.Message, error) {
	userMsg := &models.Message{
		ConversationID: conversation.ID,
		Role:           models.RoleUser,
		Content:        content,
	}
	if err := s.messages.Append(userMsg); err != nil {
		return nil, err
	}
	if firstMessage {
		s.setTitle(conversation.ID, content)
	}

	profiles := make([]ai.PersonaProfile, 0, len(personas))
	for _, p := range personas {
		profiles = append(profiles, toProfile(p))
	}

	replies := s.orchestrator.Debate(ctx, content, profiles, history)

	appended := []models.Message{*userMsg}
	for _, reply := range replies {
		msg := &models.Message{
			ConversationID: conversation.ID,
			Role:           models.RoleAssistant,
			Content:        reply.Content,
			PersonaID:      reply.PersonaID,
			PersonaName:    reply.PersonaName,
			Succeeded:      reply.Succeeded,
		}
		if err := s.messages.Append(msg); err != nil {
			return nil, err
		}
		appended = append(appended, *msg)
	}

	return appended, nil
}

// Synthesize summarizes the most recent debate round: every assistant
// message after the latest user message, in conversation order. Returns
// ErrNothingToSynthesize when there is no round to summarize; the completion
// endpoint is not called in that case.
func (s *ChatService) Synthesize(ctx context.Context, userID uint, conversationID string) (*models.Message, error) {
	if _, err := s.conversations.GetConversation(userID, conversationID); err != nil {
		return nil, err
	}

	existing, err := s.messages.ListByConversation(conversationID)
	if err != nil {
		return nil, err
	}

	question, replies := lastRound(existing)
	if len(replies) == 0 {
		return nil, ErrNothingToSynthesize
	}

	summary, err := s.synthesizer.Synthesize(ctx, question, replies)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ConversationID: conversationID,
		Role:           models.RoleAssistant,
		Content:        summary,
		PersonaName:    moderatorName,
		Succeeded:      true,
	}
	if err := s.messages.Append(msg); err != nil {
		return nil, err
	}

	if err := s.conversations.Touch(conversationID); err != nil {
		s.log.Warn("failed to bump conversation activity", "conversation", conversationID, "error", err.Error())
	}
	s.broadcast(conversationID)

	return msg, nil
}

// lastRound extracts the latest user question and the assistant replies that
// followed it.
func lastRound(messages []models.Message) (string, []ai.PersonaReply) {
	lastUser := -1
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == models.RoleUser {
			lastUser = i
			break
		}
	}
	if lastUser == -1 {
		return "", nil
	}

	var replies []ai.PersonaReply
	for _, msg := range messages[lastUser+1:] {
		if msg.Role != models.RoleAssistant {
			continue
		}
		name := msg.PersonaName
		if name == "" {
			name = "Unknown"
		}
		replies = append(replies, ai.PersonaReply{
			PersonaID:   msg.PersonaID,
			PersonaName: name,
			Content:     msg.Content,
			Succeeded:   msg.Succeeded,
		})
	}
	return messages[lastUser].Content, replies
}

// loadPersonas resolves the conversation's ordered persona list, with a
// short-lived cache in front of the store for busy threads.
func (s *ChatService) loadPersonas(conversation *models.Conversation) ([]models.Persona, error) {
	ids, err := conversation.PersonaIDList()
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("conversation-personas:%s", conversation.ID)
	if s.personaCache != nil {
		if cached, ok := s.personaCache.Get(cacheKey); ok {
			if personas, ok := cached.([]models.Persona); ok && len(personas) > 0 {
				return personas, nil
			}
		}
	}

	personas, err := s.personas.GetByIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(personas) == 0 {
		return nil, ErrPersonaNotFound
	}

	if s.personaCache != nil {
		s.personaCache.Set(cacheKey, personas)
	}
	return personas, nil
}

func (s *ChatService) setTitle(conversationID, firstMessage string) {
	title := GenerateConversationTitle(firstMessage)
	if err := s.conversations.conversations.UpdateTitle(conversationID, title); err != nil {
		s.log.Warn("failed to set conversation title", "conversation", conversationID, "error", err.Error())
	}
}

func (s *ChatService) broadcast(conversationID string) {
	if s.hub == nil {
		return
	}
	messages, err := s.messages.ListByConversation(conversationID)
	if err != nil {
		s.log.Warn("failed to load messages for broadcast", "conversation", conversationID, "error", err.Error())
		return
	}
	s.hub.Broadcast(conversationID, messages)
}

func toProfile(p models.Persona) ai.PersonaProfile {
	return ai.PersonaProfile{
		ID:                 p.ID,
		Name:               p.Name,
		Description:        p.Description,
		CommunicationStyle: p.CommunicationStyle,
		Expertise:          p.Expertise,
		Traits:             p.Traits,
	}
}

func toChatMessages(messages []models.Message) []ai.ChatMessage {
	history := make([]ai.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		history = append(history, ai.ChatMessage{
			Role:        ai.Role(msg.Role),
			Content:     msg.Content,
			PersonaID:   msg.PersonaID,
			PersonaName: msg.PersonaName,
			Timestamp:   msg.Timestamp,
		})
	}
	return history
}
