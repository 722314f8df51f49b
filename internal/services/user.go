package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"phoneshop_back_end/internal/models"
	"phoneshop_back_end/internal/utils"
)

const ResetTokenTTL = 15 * time.Minute

type UserService struct {
	users       UserRepository
	addresses   AddressRepository
	tokens      ResetTokenRepository
	orders      OrderRepository
	jwt         *utils.JWTManager
	mailer      Mailer
	frontendURL string
	log         *slog.Logger
	now         func() time.Time
}

type UserDeps struct {
	Users       UserRepository
	Addresses   AddressRepository
	Tokens      ResetTokenRepository
	Orders      OrderRepository
	JWT         *utils.JWTManager
	Mailer      Mailer
	FrontendURL string
	Log         *slog.Logger
}

func NewUserService(d UserDeps) *UserService {
	return &UserService{
		users:       d.Users,
		addresses:   d.Addresses,
		tokens:      d.Tokens,
		orders:      d.Orders,
		jwt:         d.JWT,
		mailer:      d.Mailer,
		frontendURL: strings.TrimRight(d.FrontendURL, "/"),
		log:         d.Log,
		now:         time.Now,
	}
}

type RegisterRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token     string
	Role      models.Role
	ExpiresAt time.Time
}

func validateAccount(name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("nom requis: %w", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("e-mail invalide: %w", ErrInvalidInput)
	}
	if err := utils.ValidatePasswordStrength(password); err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}
	return nil
}

func (s *UserService) createAccount(ctx context.Context, req RegisterRequest, role models.Role) (*models.User, error) {
	if err := validateAccount(req.Name, req.Email, req.Password); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Password:    hash,
		Role:        role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, fmt.Errorf("cet e-mail est déjà utilisé: %w", ErrConflict)
		}
		return nil, err
	}
	return u, nil
}

// Register crée un compte client.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	u, err := s.createAccount(ctx, req, models.RoleUser)
	if err != nil {
		return nil, err
	}
	s.log.Info("✅ Utilisateur inscrit", "user_id", u.ID)
	return u, nil
}

// Login vérifie les identifiants et émet un JWT.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("e-mail ou mot de passe incorrect: %w", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	ok, err := utils.VerifyPassword(password, u.Password)
	if err != nil || !ok {
		return nil, fmt.Errorf("e-mail ou mot de passe incorrect: %w", ErrUnauthorized)
	}
	if utils.NeedsRehash(u.Password) {
		if err := s.setPassword(ctx, u, password); err != nil {
			s.log.Warn("⚠️ Mise à jour du hash impossible", "user_id", u.ID, "error", err)
		} else {
			s.log.Info("🔐 Hash du mot de passe mis à jour", "user_id", u.ID)
		}
	}

	token, exp, err := s.jwt.Generate(*u)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Role: u.Role, ExpiresAt: exp}, nil
}

// ForgotPassword envoie un lien de réinitialisation. Pour un e-mail inconnu
// la réponse reste un succès invitant à s'inscrire.
func (s *UserService) ForgotPassword(ctx context.Context, email string) (string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return "Aucun compte n'est associé à cet e-mail, vous pouvez vous inscrire", nil
	}
	if err != nil {
		return "", err
	}

	t := &models.PasswordResetToken{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		ExpiresAt: s.now().Add(ResetTokenTTL),
	}
	if err := s.tokens.Create(ctx, t); err != nil {
		return "", err
	}

	link := s.frontendURL + "/reset-password?token=" + t.Token
	body, err := utils.PasswordResetHTML(u.Name, link, int(ResetTokenTTL.Minutes()))
	if err != nil {
		return "", err
	}
	if err := s.mailer.Send(ctx, u.Email, "Réinitialisation de votre mot de passe", body); err != nil {
		s.log.Error("❌ Envoi de l'e-mail de réinitialisation impossible", "user_id", u.ID, "error", err)
		return "", err
	}
	return "Un lien de réinitialisation a été envoyé à votre adresse e-mail", nil
}

// ResetPassword consomme un jeton valide et change le mot de passe.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	t, err := s.tokens.Get(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("jeton invalide: %w", ErrInvalidInput)
	}
	if err != nil {
		return err
	}
	if t.Used {
		return fmt.Errorf("ce jeton a déjà été utilisé: %w", ErrInvalidInput)
	}
	if t.Expired(s.now()) {
		return fmt.Errorf("ce jeton a expiré: %w", ErrInvalidInput)
	}
	if err := utils.ValidatePasswordStrength(newPassword); err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}

	u, err := s.users.GetByID(ctx, t.UserID)
	if err != nil {
		return err
	}
	if err := s.tokens.MarkUsed(ctx, token); err != nil {
		if errors.Is(err, ErrConflict) {
			return fmt.Errorf("ce jeton a déjà été utilisé: %w", ErrInvalidInput)
		}
		return err
	}
	return s.setPassword(ctx, u, newPassword)
}

func (s *UserService) setPassword(ctx context.Context, u *models.User, password string) error {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hash
	return s.users.Update(ctx, u, u.Email)
}

// MyInfo renvoie l'utilisateur avec son adresse et l'historique de ses lignes de commande.
func (s *UserService) MyInfo(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.attachDetails(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) attachDetails(ctx context.Context, u *models.User) error {
	addr, err := s.addresses.Get(ctx, u.ID)
	switch {
	case err == nil:
		u.Address = addr
	case !errors.Is(err, ErrNotFound):
		return err
	}

	orders, err := s.orders.ListByUser(ctx, u.ID)
	if err != nil {
		return err
	}
	u.OrderItems = nil
	for _, o := range orders {
		u.OrderItems = append(u.OrderItems, o.Flatten()...)
	}
	return nil
}

func (s *UserService) listByRole(ctx context.Context, match func(models.Role) bool) ([]models.User, error) {
	all, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.User, 0, len(all))
	for _, u := range all {
		if match(u.Role) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *UserService) GetAllCustomers(ctx context.Context) ([]models.User, error) {
	return s.listByRole(ctx, func(r models.Role) bool { return r == models.RoleUser })
}

func (s *UserService) GetAllAdmins(ctx context.Context) ([]models.User, error) {
	return s.listByRole(ctx, models.Role.IsAdmin)
}

// GetCustomerByID renvoie un client avec son adresse et ses commandes.
func (s *UserService) GetCustomerByID(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role != models.RoleUser {
		return nil, fmt.Errorf("client %s: %w", id, ErrNotFound)
	}
	if err := s.attachDetails(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// --- Gestion des administrateurs (réservée au super admin) ---

func requireSuperAdmin(actor Actor) error {
	if actor.Role != models.RoleAdmin {
		return fmt.Errorf("réservé au super administrateur: %w", ErrForbidden)
	}
	return nil
}

func (s *UserService) normalAdmin(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch u.Role {
	case models.RoleNormalAdmin:
		return u, nil
	case models.RoleAdmin:
		return nil, fmt.Errorf("le super administrateur ne peut pas être modifié: %w", ErrForbidden)
	default:
		return nil, fmt.Errorf("administrateur %s: %w", id, ErrNotFound)
	}
}

func (s *UserService) CreateAdmin(ctx context.Context, actor Actor, req RegisterRequest) (*models.User, error) {
	if err := requireSuperAdmin(actor); err != nil {
		return nil, err
	}
	u, err := s.createAccount(ctx, req, models.RoleNormalAdmin)
	if err != nil {
		return nil, err
	}
	s.log.Info("✅ Administrateur créé", "user_id", u.ID, "by", actor.UserID)
	return u, nil
}

type AdminUpdate struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

func (s *UserService) UpdateAdmin(ctx context.Context, actor Actor, id string, in AdminUpdate) (*models.User, error) {
	if err := requireSuperAdmin(actor); err != nil {
		return nil, err
	}
	u, err := s.normalAdmin(ctx, id)
	if err != nil {
		return nil, err
	}
	previousEmail := u.Email

	if name := strings.TrimSpace(in.Name); name != "" {
		u.Name = name
	}
	if email := strings.TrimSpace(in.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, fmt.Errorf("e-mail invalide: %w", ErrInvalidInput)
		}
		u.Email = strings.ToLower(email)
	}
	if phone := strings.TrimSpace(in.PhoneNumber); phone != "" {
		u.PhoneNumber = phone
	}

	if err := s.users.Update(ctx, u, previousEmail); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, fmt.Errorf("cet e-mail est déjà utilisé: %w", ErrConflict)
		}
		return nil, err
	}
	return u, nil
}

func (s *UserService) DeleteAdmin(ctx context.Context, actor Actor, id string) error {
	if err := requireSuperAdmin(actor); err != nil {
		return err
	}
	u, err := s.normalAdmin(ctx, id)
	if err != nil {
		return err
	}
	return s.users.Delete(ctx, u)
}

// ChangeAdminPassword change le mot de passe d'un NORMAL_ADMIN après
// vérification de l'ancien.
func (s *UserService) ChangeAdminPassword(ctx context.Context, actor Actor, id, oldPassword, newPassword string) error {
	if err := requireSuperAdmin(actor); err != nil {
		return err
	}
	u, err := s.normalAdmin(ctx, id)
	if err != nil {
		return err
	}
	ok, err := utils.VerifyPassword(oldPassword, u.Password)
	if err != nil || !ok {
		return fmt.Errorf("l'ancien mot de passe est incorrect: %w", ErrInvalidInput)
	}
	if err := utils.ValidatePasswordStrength(newPassword); err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}
	return s.setPassword(ctx, u, newPassword)
}

// SaveAddress crée ou complète l'adresse de l'utilisateur. created indique
// si l'adresse vient d'être créée.
func (s *UserService) SaveAddress(ctx context.Context, userID string, patch models.Address) (addr *models.Address, created bool, err error) {
	current, err := s.addresses.Get(ctx, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		current = &models.Address{UserID: userID}
		created = true
	case err != nil:
		return nil, false, err
	}
	current.Merge(patch)
	if err := s.addresses.Save(ctx, current); err != nil {
		return nil, false, err
	}
	return current, created, nil
}

// Bootstrap crée le super administrateur configuré s'il n'en existe aucun.
func (s *UserService) Bootstrap(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		s.log.Warn("⚠️ ADMIN_EMAIL/ADMIN_PASSWORD absents, aucun super administrateur créé")
		return nil
	}
	admins, err := s.listByRole(ctx, func(r models.Role) bool { return r == models.RoleAdmin })
	if err != nil {
		return err
	}
	if len(admins) > 0 {
		return nil
	}
	u, err := s.createAccount(ctx, RegisterRequest{Name: "Administrateur", Email: email, Password: password}, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("création du super administrateur: %w", err)
	}
	s.log.Info("✅ Super administrateur créé", "user_id", u.ID)
	return nil
}
