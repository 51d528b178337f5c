package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/redis/go-redis/v9"

	"sportbeacon/internal/logger"
	"sportbeacon/internal/metrics"
	"sportbeacon/internal/user"
)

const (
	queueKey       = "notifications"
	failedQueueKey = "notifications:failed"
	maxTries       = 3
)

type Job struct {
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Type    string    `json:"type"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// Service queues notification emails on Redis and drains them in a worker
// goroutine. Delivery is at-least-once with a bounded retry; jobs that keep
// failing land on a failed queue for inspection.
type Service struct {
	redis    *redis.Client
	users    user.Service
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
}

func New(users user.Service, fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		users:    users,
		from:     fromEmail,
		fromName: fromName,
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		smtpUser: smtpUser,
		smtpPass: smtpPass,
	}
}

// NewWithClient is used by tests to inject a mock Redis client.
func NewWithClient(client *redis.Client, users user.Service) *Service {
	return &Service{redis: client, users: users}
}

func (s *Service) enqueue(ctx context.Context, userID int, notifType, subject, bodyFormat string, args ...interface{}) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("notify lookup user %d: %w", userID, err)
	}

	job := Job{
		To:      u.Email,
		Name:    u.Name,
		Type:    notifType,
		Subject: subject,
		Body:    fmt.Sprintf(bodyFormat, append([]interface{}{u.Name}, args...)...),
		Tries:   0,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal notification job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Errorf("Failed to queue notification to %s: %v", job.To, err)
		metrics.RecordNotification(notifType, "queue_failed")
		return err
	}

	metrics.RecordNotification(notifType, "queued")
	logger.Infof("Notification queued: %s to %s", subject, job.To)
	return nil
}

func (s *Service) SendTipReceived(ctx context.Context, creatorID int, tipperName string, amountCents int64) error {
	return s.enqueue(ctx, creatorID, "tip_received", "You received a tip!", `Hi %s,

%s just tipped you %.2f.

Keep creating!

- SportBeacon Team`, tipperName, float64(amountCents)/100)
}

func (s *Service) SendBadgeUnlocked(ctx context.Context, userID int, title, rarity string) error {
	return s.enqueue(ctx, userID, "badge_unlocked", "New badge unlocked: "+title, `Hi %s,

You unlocked a %s badge: %s.

Check your profile to see it!

- SportBeacon Team`, rarity, title)
}

func (s *Service) SendPayoutRequested(ctx context.Context, creatorID int, amountCents int64) error {
	return s.enqueue(ctx, creatorID, "payout_requested", "Your payout is on its way", `Hi %s,

We received your payout request for %.2f. You will get a confirmation once it settles.

- SportBeacon Team`, float64(amountCents)/100)
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("Notification service started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification service stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}
	metrics.NotifyQueueLength.Set(float64(s.QueueLength(ctx)))

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad notification data: %v", err)
		return
	}

	job.Tries++
	if err := s.sendNow(job); err != nil {
		logger.Errorf("Failed to send notification to %s: %v", job.To, err)

		if job.Tries < maxTries {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
			logger.Infof("Retrying notification to %s (attempt %d)", job.To, job.Tries+1)
		} else {
			metrics.RecordNotification(job.Type, "failed")
			s.saveFailed(job, err)
		}
		return
	}

	metrics.RecordNotification(job.Type, "sent")
	logger.Infof("Notification sent to %s", job.To)
}

func (s *Service) sendNow(job Job) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job Job, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, data)
	logger.Errorf("Notification moved to failed queue: %s", job.To)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}
