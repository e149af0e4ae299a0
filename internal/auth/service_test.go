package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/serviqo/serviqo-backend/internal/accounts"
	pkgauth "github.com/serviqo/serviqo-backend/pkg/auth"
	"github.com/serviqo/serviqo-backend/pkg/auth/session"
	"github.com/serviqo/serviqo-backend/pkg/config"
	"github.com/serviqo/serviqo-backend/pkg/db/models"
	"github.com/serviqo/serviqo-backend/pkg/enums"
	pkgerrors "github.com/serviqo/serviqo-backend/pkg/errors"
	"github.com/serviqo/serviqo-backend/pkg/security"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeAccountRepo struct {
	accounts map[uuid.UUID]*models.Account
}

func newFakeAccountRepo(existing ...*models.Account) *fakeAccountRepo {
	repo := &fakeAccountRepo{accounts: map[uuid.UUID]*models.Account{}}
	for _, a := range existing {
		repo.accounts[a.ID] = a
	}
	return repo
}

func (f *fakeAccountRepo) WithTx(tx *gorm.DB) accounts.Repository { return f }

func (f *fakeAccountRepo) Create(_ context.Context, account *models.Account) error {
	account.CreatedAt = time.Now()
	f.accounts[account.ID] = account
	return nil
}

func (f *fakeAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	if a, ok := f.accounts[id]; ok {
		return a, nil
	}
	return nil, nil
}

func (f *fakeAccountRepo) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	for _, a := range f.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountRepo) FindForUpdate(_ context.Context, ids ...uuid.UUID) ([]models.Account, error) {
	out := []models.Account{}
	for _, id := range ids {
		if a, ok := f.accounts[id]; ok {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAccountRepo) AdjustBalance(_ context.Context, id uuid.UUID, deltaCents int64) error {
	if a, ok := f.accounts[id]; ok {
		a.BalanceCents += deltaCents
	}
	return nil
}

func (f *fakeAccountRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if a, ok := f.accounts[id]; ok {
		a.LastLoginAt = &at
	}
	return nil
}

type fakeSessionManager struct {
	sessions map[string]string
	counter  int
}

func newFakeSessionManager() *fakeSessionManager {
	return &fakeSessionManager{sessions: map[string]string{}}
}

func (f *fakeSessionManager) Generate(_ context.Context, accessID string) (string, error) {
	f.counter++
	token := uuid.NewString()
	f.sessions[accessID] = token
	return token, nil
}

func (f *fakeSessionManager) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := f.sessions[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(f.sessions, oldAccessID)
	newID := uuid.NewString()
	newToken := uuid.NewString()
	f.sessions[newID] = newToken
	return newID, newToken, nil
}

func (f *fakeSessionManager) Revoke(_ context.Context, accessID string) error {
	delete(f.sessions, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "unit-test-secret",
		Issuer:            "serviqo-test",
		ExpirationMinutes: 15,
	}
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newTestService(t *testing.T, repo *fakeAccountRepo) (Service, *fakeSessionManager) {
	t.Helper()
	sessions := newFakeSessionManager()
	svc, err := NewService(ServiceParams{
		TxRunner:       stubTxRunner{},
		AccountRepo:    repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: testPasswordConfig(),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, sessions
}

func registeredAccount(t *testing.T, password string) *models.Account {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig())
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return &models.Account{
		ID:           uuid.New(),
		Email:        "casey@example.com",
		PasswordHash: hash,
		Name:         "Casey Client",
		Role:         enums.AccountRoleClient,
		IsActive:     true,
	}
}

func TestRegisterCreatesAccount(t *testing.T) {
	repo := newFakeAccountRepo()
	svc, _ := newTestService(t, repo)

	dto, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "  NEW@Example.Com ",
		Password: "super-secret",
		Name:     "New Provider",
		Role:     "provider",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if dto.Email != "new@example.com" {
		t.Fatalf("email = %s", dto.Email)
	}
	if dto.Role != enums.AccountRoleProvider {
		t.Fatalf("role = %s", dto.Role)
	}
	if dto.BalanceCents != 0 {
		t.Fatalf("new accounts must start at zero balance, got %d", dto.BalanceCents)
	}

	stored, _ := repo.FindByEmail(context.Background(), "new@example.com")
	if stored == nil {
		t.Fatal("account not persisted")
	}
	if stored.PasswordHash == "super-secret" || stored.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	existing := registeredAccount(t, "first-password")
	svc, _ := newTestService(t, newFakeAccountRepo(existing))

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    existing.Email,
		Password: "another-password",
		Name:     "Dup",
		Role:     "client",
	})
	if !pkgerrors.Is(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t, newFakeAccountRepo())

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"bad role", RegisterRequest{Email: "a@b.com", Password: "long-enough", Name: "A", Role: "admin"}},
		{"short password", RegisterRequest{Email: "a@b.com", Password: "short", Name: "A", Role: "client"}},
		{"empty name", RegisterRequest{Email: "a@b.com", Password: "long-enough", Name: " ", Role: "client"}},
		{"empty email", RegisterRequest{Email: "  ", Password: "long-enough", Name: "A", Role: "client"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tc.req); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

func TestLoginIssuesTokens(t *testing.T) {
	account := registeredAccount(t, "correct-horse")
	svc, sessions := newTestService(t, newFakeAccountRepo(account))

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "casey@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if resp.Account.LastLoginAt == nil {
		t.Fatal("last login not recorded")
	}
	if len(sessions.sessions) != 1 {
		t.Fatalf("sessions = %d", len(sessions.sessions))
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.AccountID != account.ID || claims.Role != enums.AccountRoleClient {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	account := registeredAccount(t, "correct-horse")
	svc, _ := newTestService(t, newFakeAccountRepo(account))

	cases := []LoginRequest{
		{Email: "casey@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "correct-horse"},
		{Email: "", Password: "correct-horse"},
	}
	for _, req := range cases {
		if _, err := svc.Login(context.Background(), req); !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
			t.Fatalf("expected UNAUTHORIZED for %+v, got %v", req, err)
		}
	}
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	account := registeredAccount(t, "correct-horse")
	account.IsActive = false
	svc, _ := newTestService(t, newFakeAccountRepo(account))

	if _, err := svc.Login(context.Background(), LoginRequest{
		Email:    account.Email,
		Password: "correct-horse",
	}); !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	account := registeredAccount(t, "correct-horse")
	svc, sessions := newTestService(t, newFakeAccountRepo(account))

	login, err := svc.Login(context.Background(), LoginRequest{
		Email:    account.Email,
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	pair, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if pair.AccessToken == login.AccessToken || pair.RefreshToken == login.RefreshToken {
		t.Fatal("refresh must issue a fresh pair")
	}
	if len(sessions.sessions) != 1 {
		t.Fatalf("old session not replaced, sessions = %d", len(sessions.sessions))
	}

	// The old pair is now dead.
	if _, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	}); !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED for reused pair, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	account := registeredAccount(t, "correct-horse")
	svc, sessions := newTestService(t, newFakeAccountRepo(account))

	login, err := svc.Login(context.Background(), LoginRequest{
		Email:    account.Email,
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), login.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if err := svc.Logout(context.Background(), claims.ID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(sessions.sessions) != 0 {
		t.Fatal("session not revoked")
	}
}
