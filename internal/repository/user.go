package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gocql/gocql"

	"phoneshop_back_end/internal/models"
	"phoneshop_back_end/internal/services"
)

// UserRepository maintient users et l'index d'unicité users_by_email.
type UserRepository struct {
	session *gocql.Session
}

func NewUserRepository(session *gocql.Session) *UserRepository {
	return &UserRepository{session: session}
}

const userColumns = `user_id, name, email, phone_number, password, role, created_at`

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// claimEmail réserve l'e-mail pour userID (LWT).
func (r *UserRepository) claimEmail(ctx context.Context, email string, userID gocql.UUID) error {
	var existingEmail string
	var existingUser gocql.UUID
	applied, err := r.session.Query(`INSERT INTO users_by_email (email, user_id) VALUES (?, ?) IF NOT EXISTS`,
		email, userID).WithContext(ctx).ScanCAS(&existingEmail, &existingUser)
	if err != nil {
		return err
	}
	if !applied && existingUser != userID {
		return fmt.Errorf("e-mail %s: %w", email, services.ErrConflict)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = newID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.Email = normalizeEmail(u.Email)
	id, err := parseID("utilisateur", u.ID)
	if err != nil {
		return err
	}

	if err := r.claimEmail(ctx, u.Email, id); err != nil {
		return err
	}
	if err := r.insert(ctx, id, u); err != nil {
		_ = r.session.Query(`DELETE FROM users_by_email WHERE email = ?`, u.Email).WithContext(ctx).Exec()
		return err
	}
	return nil
}

func (r *UserRepository) insert(ctx context.Context, id gocql.UUID, u *models.User) error {
	return r.session.Query(`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, u.Name, u.Email, u.PhoneNumber, u.Password, string(u.Role), u.CreatedAt).
		WithContext(ctx).Exec()
}

// Update réécrit l'utilisateur. Si l'e-mail change, le nouveau est réservé
// avant de libérer l'ancien.
func (r *UserRepository) Update(ctx context.Context, u *models.User, previousEmail string) error {
	id, err := parseID("utilisateur", u.ID)
	if err != nil {
		return err
	}
	u.Email = normalizeEmail(u.Email)
	previousEmail = normalizeEmail(previousEmail)

	if previousEmail != "" && previousEmail != u.Email {
		if err := r.claimEmail(ctx, u.Email, id); err != nil {
			return err
		}
	}
	if err := r.insert(ctx, id, u); err != nil {
		return err
	}
	if previousEmail != "" && previousEmail != u.Email {
		return r.session.Query(`DELETE FROM users_by_email WHERE email = ?`, previousEmail).
			WithContext(ctx).Exec()
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, u *models.User) error {
	id, err := parseID("utilisateur", u.ID)
	if err != nil {
		return err
	}
	batch := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`DELETE FROM users WHERE user_id = ?`, id)
	batch.Query(`DELETE FROM users_by_email WHERE email = ?`, normalizeEmail(u.Email))
	batch.Query(`DELETE FROM addresses WHERE user_id = ?`, id)
	return r.session.ExecuteBatch(batch)
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	id, err := parseID("utilisateur", userID)
	if err != nil {
		return nil, err
	}
	var row userRow
	err = r.session.Query(`SELECT `+userColumns+` FROM users WHERE user_id = ?`, id).
		WithContext(ctx).Scan(row.dest()...)
	if err != nil {
		return nil, notFound("utilisateur", userID, err)
	}
	u := row.model()
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = normalizeEmail(email)
	var id gocql.UUID
	err := r.session.Query(`SELECT user_id FROM users_by_email WHERE email = ?`, email).
		WithContext(ctx).Scan(&id)
	if err != nil {
		return nil, notFound("e-mail", email, err)
	}
	return r.GetByID(ctx, id.String())
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	iter := r.session.Query(`SELECT ` + userColumns + ` FROM users`).WithContext(ctx).Iter()
	var (
		out []models.User
		row userRow
	)
	for iter.Scan(row.dest()...) {
		out = append(out, row.model())
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type userRow struct {
	id                                 gocql.UUID
	name, email, phone, password, role string
	createdAt                          time.Time
}

func (r *userRow) dest() []interface{} {
	return []interface{}{&r.id, &r.name, &r.email, &r.phone, &r.password, &r.role, &r.createdAt}
}

func (r *userRow) model() models.User {
	return models.User{
		ID:          r.id.String(),
		Name:        r.name,
		Email:       r.email,
		PhoneNumber: r.phone,
		Password:    r.password,
		Role:        models.Role(r.role),
		CreatedAt:   r.createdAt,
	}
}
