// internal/services/license_service_test.go
package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r2certify/r2v3-backend/internal/models"
)

type fakeLicenseRepo struct {
	mu        sync.Mutex
	bySession map[string]*models.License
	byTenant  map[uuid.UUID]*models.License
	createErr error
	creates   int

	// hideOnce makes the named session invisible to the first lookup, so a
	// concurrent activation landing between check and insert can be staged.
	hideOnce map[string]bool
}

func newFakeLicenseRepo() *fakeLicenseRepo {
	return &fakeLicenseRepo{
		bySession: make(map[string]*models.License),
		byTenant:  make(map[uuid.UUID]*models.License),
		hideOnce:  make(map[string]bool),
	}
}

func (r *fakeLicenseRepo) FindBySessionID(sessionID string) (*models.License, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hideOnce[sessionID] {
		delete(r.hideOnce, sessionID)
		return nil, ErrLicenseNotFound
	}
	if l, ok := r.bySession[sessionID]; ok {
		return l, nil
	}
	return nil, ErrLicenseNotFound
}

func (r *fakeLicenseRepo) FindActiveByTenant(tenantID uuid.UUID) (*models.License, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.byTenant[tenantID]; ok && l.Status == models.LicenseStatusActive {
		return l, nil
	}
	return nil, ErrLicenseNotFound
}

func (r *fakeLicenseRepo) ListByTenant(tenantID uuid.UUID) ([]models.License, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var licenses []models.License
	if l, ok := r.byTenant[tenantID]; ok {
		licenses = append(licenses, *l)
	}
	return licenses, nil
}

func (r *fakeLicenseRepo) Create(license *models.License) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil {
		return r.createErr
	}
	if license.StripeSessionID != nil {
		if _, exists := r.bySession[*license.StripeSessionID]; exists {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	license.ID = uuid.New()
	if license.StripeSessionID != nil {
		r.bySession[*license.StripeSessionID] = license
	}
	r.byTenant[license.TenantID] = license
	return nil
}

type stubVerifier struct {
	verification *SessionVerification
	err          error
}

func (v *stubVerifier) VerifySession(string) (*SessionVerification, error) {
	return v.verification, v.err
}

func paidVerifier(planID string) *stubVerifier {
	return &stubVerifier{verification: &SessionVerification{
		Paid:     true,
		PlanID:   planID,
		Amount:   499,
		Currency: "usd",
	}}
}

func TestActivateBySessionCreatesLicense(t *testing.T) {
	repo := newFakeLicenseRepo()
	svc := NewLicenseService(repo, paidVerifier("plan_starter"))
	tenantID := uuid.New()

	result, err := svc.ActivateBySession(tenantID, "cs_test_123")
	require.NoError(t, err)
	assert.False(t, result.AlreadyActivated)
	assert.Equal(t, "/intake", result.NextRoute)
	require.NotNil(t, result.License)
	assert.Equal(t, models.LicenseStatusActive, result.License.Status)
	assert.Equal(t, models.LicenseTierStarter, result.License.Tier)
	assert.Equal(t, tenantID, result.License.TenantID)
	require.NotNil(t, result.License.StripeSessionID)
	assert.Equal(t, "cs_test_123", *result.License.StripeSessionID)
	assert.NotNil(t, result.License.ActivatedAt)
}

func TestActivateBySessionIsIdempotent(t *testing.T) {
	repo := newFakeLicenseRepo()
	svc := NewLicenseService(repo, paidVerifier("plan_starter"))
	tenantID := uuid.New()

	first, err := svc.ActivateBySession(tenantID, "cs_test_repeat")
	require.NoError(t, err)

	// Page refresh replays the same session id.
	second, err := svc.ActivateBySession(tenantID, "cs_test_repeat")
	require.NoError(t, err)
	assert.True(t, second.AlreadyActivated)
	assert.Equal(t, first.License.ID, second.License.ID)
	assert.Equal(t, "/intake", second.NextRoute)
	assert.Equal(t, 1, repo.creates)
}

func TestActivateBySessionOtherTenantsSession(t *testing.T) {
	repo := newFakeLicenseRepo()
	svc := NewLicenseService(repo, paidVerifier("plan_starter"))
	owner := uuid.New()

	_, err := svc.ActivateBySession(owner, "cs_test_shared")
	require.NoError(t, err)

	// A different tenant replaying the owner's session id gets nothing back.
	result, err := svc.ActivateBySession(uuid.New(), "cs_test_shared")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrSessionTenantMismatch)
	assert.Equal(t, 1, repo.creates)
}

func TestActivateBySessionRaceLossAgainstOtherTenant(t *testing.T) {
	repo := newFakeLicenseRepo()
	svc := NewLicenseService(repo, paidVerifier("plan_starter"))

	// The insert race is lost to a license held by a different tenant; the
	// fallback must not hand that license over.
	sessionID := "cs_test_cross_race"
	winner := &models.License{
		BaseModel:       models.BaseModel{ID: uuid.New()},
		TenantID:        uuid.New(),
		Status:          models.LicenseStatusActive,
		StripeSessionID: &sessionID,
	}
	repo.createErr = errors.New("duplicate key value violates unique constraint")
	repo.bySession[sessionID] = winner
	repo.hideOnce[sessionID] = true

	result, err := svc.ActivateBySession(uuid.New(), sessionID)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrSessionTenantMismatch)
}

func TestActivateBySessionUnpaid(t *testing.T) {
	repo := newFakeLicenseRepo()
	svc := NewLicenseService(repo, &stubVerifier{verification: &SessionVerification{Paid: false}})

	_, err := svc.ActivateBySession(uuid.New(), "cs_test_unpaid")
	assert.ErrorIs(t, err, ErrPaymentNotConfirmed)
	assert.Equal(t, 0, repo.creates)
}

func TestActivateBySessionVerifierFailure(t *testing.T) {
	repo := newFakeLicenseRepo()
	svc := NewLicenseService(repo, &stubVerifier{err: errors.New("stripe unreachable")})

	_, err := svc.ActivateBySession(uuid.New(), "cs_test_down")
	assert.ErrorIs(t, err, ErrPaymentNotConfirmed)
}

func TestActivateBySessionUnknownPlanIsActivationFailure(t *testing.T) {
	repo := newFakeLicenseRepo()
	svc := NewLicenseService(repo, paidVerifier("plan_missing"))

	_, err := svc.ActivateBySession(uuid.New(), "cs_test_badplan")
	assert.ErrorIs(t, err, ErrActivationFailed)
	assert.NotErrorIs(t, err, ErrPaymentNotConfirmed)
}

func TestActivateBySessionEmptySession(t *testing.T) {
	svc := NewLicenseService(newFakeLicenseRepo(), paidVerifier("plan_starter"))

	_, err := svc.ActivateBySession(uuid.New(), "")
	assert.ErrorIs(t, err, ErrPaymentNotConfirmed)
}

func TestActivateBySessionLosingInsertRace(t *testing.T) {
	repo := newFakeLicenseRepo()
	svc := NewLicenseService(repo, paidVerifier("plan_starter"))
	tenantID := uuid.New()

	// Simulate losing the insert race: the winner's row exists but is not
	// visible to our existence check, so our insert hits the unique session
	// index and the service must fall back to the winner's license.
	sessionID := "cs_test_race"
	winner := &models.License{
		BaseModel:       models.BaseModel{ID: uuid.New()},
		TenantID:        tenantID,
		Status:          models.LicenseStatusActive,
		StripeSessionID: &sessionID,
	}
	repo.createErr = errors.New("duplicate key value violates unique constraint")
	repo.bySession[sessionID] = winner
	repo.hideOnce[sessionID] = true

	result, err := svc.ActivateBySession(tenantID, sessionID)
	require.NoError(t, err)
	assert.True(t, result.AlreadyActivated)
	assert.Equal(t, winner.ID, result.License.ID)
}

func TestAutoProvisionCreatesStarter(t *testing.T) {
	repo := newFakeLicenseRepo()
	svc := NewLicenseService(repo, paidVerifier("plan_starter"))
	tenantID := uuid.New()

	license, err := svc.AutoProvision(tenantID)
	require.NoError(t, err)
	assert.True(t, license.AutoProvisioned)
	assert.Equal(t, models.LicenseTierStarter, license.Tier)
	assert.Nil(t, license.StripeSessionID)

	// Re-provisioning returns the existing license.
	again, err := svc.AutoProvision(tenantID)
	require.NoError(t, err)
	assert.Equal(t, license.ID, again.ID)
	assert.Equal(t, 1, repo.creates)
}

func TestStatusExpiredLicense(t *testing.T) {
	repo := newFakeLicenseRepo()
	svc := NewLicenseService(repo, paidVerifier("plan_starter"))
	tenantID := uuid.New()

	expired := time.Now().Add(-time.Hour)
	repo.byTenant[tenantID] = &models.License{
		BaseModel: models.BaseModel{ID: uuid.New()},
		TenantID:  tenantID,
		Status:    models.LicenseStatusActive,
		ExpiresAt: &expired,
	}

	_, err := svc.Status(tenantID)
	assert.ErrorIs(t, err, ErrLicenseNotFound)
}

func TestFindPlan(t *testing.T) {
	plan, err := FindPlan("plan_professional")
	require.NoError(t, err)
	assert.Equal(t, models.LicenseTierProfessional, plan.Tier)

	_, err = FindPlan("plan_nope")
	assert.ErrorIs(t, err, ErrUnknownPlan)
}
