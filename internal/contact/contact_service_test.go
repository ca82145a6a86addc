package contact

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/geovoyage/backend/internal/repository"
	"github.com/geovoyage/backend/internal/sanitizer"
)

// mockContactRepository implements repository.ContactRepository for testing
type mockContactRepository struct {
	messages      map[uuid.UUID]*repository.ContactMessage
	subscriptions map[uuid.UUID]*repository.NewsletterSubscription
}

func newMockContactRepository() *mockContactRepository {
	return &mockContactRepository{
		messages:      make(map[uuid.UUID]*repository.ContactMessage),
		subscriptions: make(map[uuid.UUID]*repository.NewsletterSubscription),
	}
}

func (m *mockContactRepository) CreateMessage(ctx context.Context, msg *repository.ContactMessage) error {
	msg.ID = uuid.New()
	msg.CreatedAt = time.Now().UTC()
	m.messages[msg.ID] = msg
	return nil
}

func (m *mockContactRepository) ListMessages(ctx context.Context) ([]repository.ContactMessage, error) {
	var result []repository.ContactMessage
	for _, msg := range m.messages {
		result = append(result, *msg)
	}
	return result, nil
}

func (m *mockContactRepository) MarkMessageRead(ctx context.Context, id uuid.UUID) error {
	msg, ok := m.messages[id]
	if !ok {
		return repository.ErrMessageNotFound
	}
	msg.IsRead = true
	return nil
}

func (m *mockContactRepository) GetSubscriptionByEmail(ctx context.Context, email string) (*repository.NewsletterSubscription, error) {
	email = strings.ToLower(email)
	for _, sub := range m.subscriptions {
		if strings.ToLower(sub.Email) == email {
			return sub, nil
		}
	}
	return nil, repository.ErrSubscriptionNotFound
}

func (m *mockContactRepository) CreateSubscription(ctx context.Context, sub *repository.NewsletterSubscription) error {
	email := strings.ToLower(sub.Email)
	for _, existing := range m.subscriptions {
		if strings.ToLower(existing.Email) == email {
			return repository.ErrAlreadySubscribed
		}
	}
	sub.ID = uuid.New()
	sub.Email = email
	sub.IsActive = true
	sub.SubscribedAt = time.Now().UTC()
	m.subscriptions[sub.ID] = sub
	return nil
}

func (m *mockContactRepository) ReactivateSubscription(ctx context.Context, id uuid.UUID) error {
	sub, ok := m.subscriptions[id]
	if !ok {
		return repository.ErrSubscriptionNotFound
	}
	sub.IsActive = true
	sub.SubscribedAt = time.Now().UTC()
	return nil
}

func newTestService() (*Service, *mockContactRepository) {
	repo := newMockContactRepository()
	return NewService(repo, sanitizer.New(), nil), repo
}

func strPtr(s string) *string { return &s }

func TestSubmitMessage(t *testing.T) {
	service, repo := newTestService()

	msg, err := service.SubmitMessage(context.Background(), MessageRequest{
		Name:    "Nanna Berg",
		Email:   "nanna@example.com",
		Subject: strPtr("Group discount"),
		Message: "Do you offer discounts for groups of ten?",
	})
	if err != nil {
		t.Fatalf("SubmitMessage failed: %v", err)
	}

	if msg.IsRead {
		t.Error("new messages should be unread")
	}
	if _, ok := repo.messages[msg.ID]; !ok {
		t.Error("message should be stored")
	}
}

func TestSubmitMessage_SanitizesFields(t *testing.T) {
	service, _ := newTestService()

	msg, err := service.SubmitMessage(context.Background(), MessageRequest{
		Name:    `Nanna <script>alert("x")</script>Berg`,
		Email:   "nanna@example.com",
		Message: "Hello <img src=x onerror=alert(1)> there",
	})
	if err != nil {
		t.Fatalf("SubmitMessage failed: %v", err)
	}

	if strings.Contains(msg.Name, "<script>") {
		t.Errorf("name not sanitized: %q", msg.Name)
	}
	if strings.Contains(msg.Message, "<img") {
		t.Errorf("message not sanitized: %q", msg.Message)
	}
}

func TestSubmitMessage_InvalidEmail(t *testing.T) {
	service, _ := newTestService()

	_, err := service.SubmitMessage(context.Background(), MessageRequest{
		Name:    "Nanna Berg",
		Email:   "not-an-email",
		Message: "Hello",
	})
	if !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestMarkMessageRead(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()

	msg, err := service.SubmitMessage(ctx, MessageRequest{
		Name:    "Nanna Berg",
		Email:   "nanna@example.com",
		Message: "Hello",
	})
	if err != nil {
		t.Fatalf("SubmitMessage failed: %v", err)
	}

	if err := service.MarkMessageRead(ctx, msg.ID.String()); err != nil {
		t.Fatalf("MarkMessageRead failed: %v", err)
	}
	if !repo.messages[msg.ID].IsRead {
		t.Error("message should be marked read")
	}

	if err := service.MarkMessageRead(ctx, uuid.New().String()); !errors.Is(err, ErrMessageNotFound) {
		t.Errorf("expected ErrMessageNotFound, got %v", err)
	}
	if err := service.MarkMessageRead(ctx, "not-a-uuid"); !errors.Is(err, ErrMessageNotFound) {
		t.Errorf("expected ErrMessageNotFound for malformed ID, got %v", err)
	}
}

func TestSubscribe(t *testing.T) {
	service, _ := newTestService()

	sub, err := service.Subscribe(context.Background(), SubscribeRequest{Email: "Nanna@Example.com"})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if sub.Email != "nanna@example.com" {
		t.Errorf("email should be lowercased, got %s", sub.Email)
	}
	if !sub.IsActive {
		t.Error("new subscriptions should be active")
	}
}

func TestSubscribe_DuplicateRejected(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	if _, err := service.Subscribe(ctx, SubscribeRequest{Email: "nanna@example.com"}); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	// Same address, different case
	_, err := service.Subscribe(ctx, SubscribeRequest{Email: "NANNA@example.com"})
	if !errors.Is(err, ErrAlreadySubscribed) {
		t.Errorf("expected ErrAlreadySubscribed, got %v", err)
	}
}

// Re-subscribing after unsubscription reactivates the existing record
// instead of failing or creating a duplicate.
func TestSubscribe_ReactivatesInactiveSubscription(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()

	sub, err := service.Subscribe(ctx, SubscribeRequest{Email: "nanna@example.com"})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	repo.subscriptions[sub.ID].IsActive = false

	resub, err := service.Subscribe(ctx, SubscribeRequest{Email: "nanna@example.com"})
	if err != nil {
		t.Fatalf("re-subscribe failed: %v", err)
	}
	if resub.ID != sub.ID {
		t.Error("re-subscribing should reuse the existing record")
	}
	if !resub.IsActive {
		t.Error("subscription should be active again")
	}

	if len(repo.subscriptions) != 1 {
		t.Errorf("expected a single subscription record, got %d", len(repo.subscriptions))
	}
}
