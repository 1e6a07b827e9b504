package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"ocelo_loyalty_backend/internal/models"
	"ocelo_loyalty_backend/pkg/utils"
)

// VerificationTTL is how long an issued registration code stays valid.
const VerificationTTL = 10 * time.Minute

// MaxVerificationAttempts is how many wrong codes a pending registration survives.
const MaxVerificationAttempts = 5

// CodeIssuer produces one-time verification codes.
type CodeIssuer interface {
	Issue() (string, error)
}

// RandomCodeIssuer issues uniformly random six-digit codes.
type RandomCodeIssuer struct{}

// Issue returns a zero-padded six-digit code.
func (RandomCodeIssuer) Issue() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("could not generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// CodeSender delivers a verification code to the address being registered.
type CodeSender interface {
	SendVerificationCode(ctx context.Context, to, name, code string) error
}

// LogCodeSender writes codes to the application log. Used when no mail API is configured.
type LogCodeSender struct{}

func (LogCodeSender) SendVerificationCode(_ context.Context, to, _ string, code string) error {
	utils.LogInfo("Verification code issued", map[string]interface{}{"to": to, "code": code})
	return nil
}

// ResendCodeSender delivers codes through a Resend-compatible email API.
type ResendCodeSender struct {
	apiKey  string
	baseURL string
	from    string
	client  *http.Client
}

// NewResendCodeSender creates a sender posting to {baseURL}/emails.
func NewResendCodeSender(apiKey, baseURL, from string) *ResendCodeSender {
	if baseURL == "" {
		baseURL = "https://api.resend.com"
	}
	return &ResendCodeSender{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		from:    from,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

func (s *ResendCodeSender) SendVerificationCode(ctx context.Context, to, name, code string) error {
	body, err := json.Marshal(resendEmail{
		From:    s.from,
		To:      []string{to},
		Subject: "Tu código de verificación Ocelo Vision",
		HTML:    fmt.Sprintf("<p>Hola %s,</p><p>Tu código de verificación es <strong>%s</strong>. Vence en 10 minutos.</p>", name, code),
		Text:    fmt.Sprintf("Hola %s, tu código de verificación es %s. Vence en 10 minutos.", name, code),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending verification email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sending verification email: unexpected status code %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

// pendingRegistrations holds submitted forms keyed by normalized email until verified or expired.
type pendingRegistrations struct {
	mu      sync.Mutex
	entries map[string]models.PendingRegistration
}

func newPendingRegistrations() *pendingRegistrations {
	return &pendingRegistrations{entries: map[string]models.PendingRegistration{}}
}

func (p *pendingRegistrations) put(email string, pending models.PendingRegistration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[email] = pending
}

func (p *pendingRegistrations) get(email string) (models.PendingRegistration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pending, ok := p.entries[email]
	return pending, ok
}

func (p *pendingRegistrations) remove(email string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.entries, email)
}

// miss records a wrong code for email and reports how many tries remain. The entry is
// dropped once none do.
func (p *pendingRegistrations) miss(email string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	pending, ok := p.entries[email]
	if !ok {
		return 0
	}
	pending.Attempts++
	left := MaxVerificationAttempts - pending.Attempts
	if left <= 0 {
		delete(p.entries, email)
		return 0
	}
	p.entries[email] = pending
	return left
}

// sweep drops entries that expired before now.
func (p *pendingRegistrations) sweep(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for email, pending := range p.entries {
		if now.After(pending.ExpiresAt) {
			delete(p.entries, email)
		}
	}
}
