package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskmaster/internal/ai"
	"taskmaster/internal/domain"
	"taskmaster/internal/logger"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// ChatContextSize is how many recent tasks are sent along with a chat message.
const ChatContextSize = 20

const busyReply = "Üzgünüm, asistan şu anda çok yoğun. Birkaç dakika sonra tekrar dener misiniz?"

// Fallback reasons, used as metric labels.
const (
	FallbackNotConfigured = "not_configured"
	FallbackRateLimited   = "rate_limited"
	FallbackTimeout       = "timeout"
	FallbackProviderError = "provider_error"
)

type RecentTasks interface {
	Recent(ctx context.Context, owner uuid.UUID, limit int) ([]domain.Task, error)
}

type Completer interface {
	Complete(ctx context.Context, messages []ai.Message) (string, error)
}

type ChatService struct {
	tasks      RecentTasks
	completer  Completer
	onFallback func(reason string)
}

func NewChatService(tasks RecentTasks, completer Completer) *ChatService {
	return &ChatService{tasks: tasks, completer: completer}
}

// OnFallback registers fn to be called with the reason each time a canned reply is used.
func (s *ChatService) OnFallback(fn func(reason string)) {
	s.onFallback = fn
}

// Reply answers message in the context of the user's recent tasks. Provider
// failures never surface: a canned reply is returned instead. An empty
// message is answered like any other.
func (s *ChatService) Reply(ctx context.Context, userID uuid.UUID, message string) (string, error) {
	message = strings.TrimSpace(message)

	log := logger.FromContext(ctx)

	tasks, err := s.tasks.Recent(ctx, userID, ChatContextSize)
	if err != nil {
		log.Warn("chat: failed to load recent tasks", "user_id", userID, "error", err)
		tasks = nil
	}

	reply, err := s.completer.Complete(ctx, []ai.Message{
		{Role: "system", Content: systemPrompt(tasks)},
		{Role: "user", Content: message},
	})
	if err == nil {
		return reply, nil
	}

	reason := fallbackReason(ctx, err)
	log.Warn("chat: provider unavailable, using fallback reply", "user_id", userID, "reason", reason, "error", err)
	if s.onFallback != nil {
		s.onFallback(reason)
	}

	if reason == FallbackRateLimited {
		return busyReply, nil
	}
	return FallbackReply(message, tasks), nil
}

func fallbackReason(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		return FallbackNotConfigured
	case errors.Is(err, ai.ErrRateLimited):
		return FallbackRateLimited
	case errors.Is(err, context.DeadlineExceeded), ctx.Err() != nil, isTimeout(err):
		return FallbackTimeout
	default:
		return FallbackProviderError
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

type taskSummary struct {
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	Status               string   `json:"status"`
	Priority             string   `json:"priority"`
	CompletionPercentage int      `json:"completion_percentage"`
	Category             string   `json:"category"`
	Tags                 []string `json:"tags"`
}

func systemPrompt(tasks []domain.Task) string {
	summary := make([]taskSummary, 0, len(tasks))
	for _, t := range tasks {
		category := "Genel"
		if t.CategoryName != nil {
			category = *t.CategoryName
		}
		summary = append(summary, taskSummary{
			Title:                t.Title,
			Description:          t.Description,
			Status:               t.Status,
			Priority:             t.Priority,
			CompletionPercentage: t.CompletionPercentage,
			Category:             category,
			Tags:                 t.Tags,
		})
	}

	raw, err := sonic.Marshal(summary)
	if err != nil {
		raw = []byte("[]")
	}

	return "Sen TaskMaster görev yönetimi uygulamasının asistanısın. " +
		"Kullanıcının görevlerini biliyorsun ve onları yönetmesine yardım ediyorsun.\n\n" +
		"Kullanıcının mevcut görevleri:\n" + string(raw) + "\n\n" +
		"Kurallar:\n" +
		"- Selamlaşmaya samimi bir selamla karşılık ver, sonra nasıl yardım edebileceğini sor.\n" +
		"- Önceliklendirme ve zaman yönetimi konusunda görevlere dayanan somut öneriler ver.\n" +
		"- Her zaman Türkçe, kısa ve öz cevap ver."
}

type taskCounts struct {
	total, done, inProgress, todo int
}

func countTasks(tasks []domain.Task) taskCounts {
	c := taskCounts{total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case domain.StatusDone:
			c.done++
		case domain.StatusInProgress:
			c.inProgress++
		case domain.StatusTodo:
			c.todo++
		}
	}
	return c
}

var (
	greetingWords = []string{"merhaba", "selam", "hey", "hi", "hello"}
	priorityWords = []string{"öncelik", "hangi"}
	doneWords     = []string{"tamamlan", "bitir", "yapıldı"}
	helpWords     = []string{"yardım", "nasıl", "ne yapmalı"}
)

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// FallbackReply picks a canned reply by keyword, filled in with task counts.
func FallbackReply(message string, tasks []domain.Task) string {
	msg := strings.ToLower(message)
	c := countTasks(tasks)

	switch {
	case containsAny(msg, greetingWords):
		return fmt.Sprintf("Merhaba! Ben TaskMaster asistanınım. %d göreviniz var: %d tamamlandı, %d devam ediyor, %d yapılacak. Size nasıl yardımcı olabilirim?",
			c.total, c.done, c.inProgress, c.todo)

	case containsAny(msg, priorityWords):
		var urgent []string
		for _, t := range tasks {
			if t.Priority == domain.PriorityHigh || t.Priority == domain.PriorityUrgent {
				urgent = append(urgent, t.Title)
				if len(urgent) == 3 {
					break
				}
			}
		}
		if len(urgent) == 0 {
			return "Şu anda yüksek öncelikli bir göreviniz görünmüyor. Görev detaylarından öncelik seviyesini ayarlayabilirsiniz."
		}
		return fmt.Sprintf("Öncelikli görevleriniz: %s. Önce bunlara odaklanmanızı öneririm.", strings.Join(urgent, ", "))

	case containsAny(msg, doneWords):
		return fmt.Sprintf("Harika! %d göreviniz tamamlanmış, %d görev hâlâ yapılacak durumda.", c.done, c.todo)

	case containsAny(msg, helpWords):
		return fmt.Sprintf("Yardımcı olabilirim! %d göreviniz var. Önceliklendirme, düzenleme veya yeni görev ekleme konusunda destek verebilirim.", c.total)

	case c.total == 0:
		return "Henüz göreviniz yok. Yeni bir görev ekleyerek başlayabilirsiniz."

	default:
		return fmt.Sprintf("%d göreviniz var: %d tamamlandı, %d devam ediyor. Daha ayrıntılı bir soru sorarsanız daha iyi yardımcı olabilirim.",
			c.total, c.done, c.inProgress)
	}
}

// Suggestions is the fixed list served by the legacy suggestions endpoint.
func Suggestions() []string {
	return []string{"Markete git", "Projeyi bitir", "E-postaları kontrol et"}
}
