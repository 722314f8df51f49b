package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"phoneshop_back_end/internal/models"
	"phoneshop_back_end/internal/services"
)

// ResetTokenRepository stocke les jetons de réinitialisation. Ils expirent
// aussi côté Scylla (TTL) une journée après leur date limite.
type ResetTokenRepository struct {
	session *gocql.Session
}

func NewResetTokenRepository(session *gocql.Session) *ResetTokenRepository {
	return &ResetTokenRepository{session: session}
}

func (r *ResetTokenRepository) Create(ctx context.Context, t *models.PasswordResetToken) error {
	userID, err := parseID("utilisateur", t.UserID)
	if err != nil {
		return err
	}
	ttl := int(time.Until(t.ExpiresAt.Add(24 * time.Hour)).Seconds())
	if ttl < 1 {
		ttl = 1
	}
	return r.session.Query(`INSERT INTO password_reset_tokens (token, user_id, expires_at, used) VALUES (?, ?, ?, ?) USING TTL ?`,
		t.Token, userID, t.ExpiresAt, t.Used, ttl).WithContext(ctx).Exec()
}

func (r *ResetTokenRepository) Get(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	var (
		userID gocql.UUID
		t      = models.PasswordResetToken{Token: token}
	)
	err := r.session.Query(`SELECT user_id, expires_at, used FROM password_reset_tokens WHERE token = ?`, token).
		WithContext(ctx).Scan(&userID, &t.ExpiresAt, &t.Used)
	if err != nil {
		return nil, notFound("jeton", "***", err)
	}
	t.UserID = userID.String()
	return &t, nil
}

// MarkUsed bascule used à true une seule fois (LWT).
func (r *ResetTokenRepository) MarkUsed(ctx context.Context, token string) error {
	var used bool
	applied, err := r.session.Query(`UPDATE password_reset_tokens SET used = true WHERE token = ? IF used = false`, token).
		WithContext(ctx).ScanCAS(&used)
	if err != nil {
		return err
	}
	if !applied {
		return fmt.Errorf("jeton déjà utilisé: %w", services.ErrConflict)
	}
	return nil
}
