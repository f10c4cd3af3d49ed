// internal/services/payment_service.go
package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"
	"gorm.io/gorm"

	"github.com/r2certify/r2v3-backend/internal/config"
	"github.com/r2certify/r2v3-backend/internal/models"
	"github.com/r2certify/r2v3-backend/internal/utils"
)

type PaymentService struct {
	db     *gorm.DB
	config *config.Config

	// Mock-mode checkout sessions, keyed by session id. Demo tenants never
	// reach Stripe; their sessions live here for the duration of the process.
	mockMtx      sync.Mutex
	mockSessions map[string]*mockSession
}

type mockSession struct {
	TenantID uuid.UUID
	PlanID   string
	Amount   float64
	Currency string
	Paid     bool
}

type CreateCheckoutRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
}

type CheckoutSessionResponse struct {
	SessionID      string `json:"session_id"`
	URL            string `json:"url"`
	PublishableKey string `json:"publishable_key"`
	MockMode       bool   `json:"mock_mode"`
}

// SessionVerification is the payment outcome the activation flow depends on.
type SessionVerification struct {
	Paid     bool
	PlanID   string
	Amount   float64
	Currency string
}

// SessionVerifier is implemented by PaymentService; the license service
// depends on the interface so activation can be tested with a stub.
type SessionVerifier interface {
	VerifySession(sessionID string) (*SessionVerification, error)
}

func NewPaymentService(db *gorm.DB, config *config.Config) *PaymentService {
	// Initialize Stripe
	stripe.Key = config.Payment.StripeSecretKey

	return &PaymentService{
		db:           db,
		config:       config,
		mockSessions: make(map[string]*mockSession),
	}
}

// CreateCheckout looks up the tenant's demo flag and starts a checkout.
func (s *PaymentService) CreateCheckout(tenantID uuid.UUID, req *CreateCheckoutRequest) (*CheckoutSessionResponse, error) {
	var tenant models.Tenant
	if err := s.db.First(&tenant, tenantID).Error; err != nil {
		return nil, fmt.Errorf("tenant not found: %w", err)
	}
	return s.CreateCheckoutSession(tenantID, tenant.IsDemo, req)
}

// CreateCheckoutSession starts a checkout for a plan. Demo tenants and
// mock-mode deployments get a local session; everything else goes to Stripe.
func (s *PaymentService) CreateCheckoutSession(tenantID uuid.UUID, isDemo bool, req *CreateCheckoutRequest) (*CheckoutSessionResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	plan, err := FindPlan(req.PlanID)
	if err != nil {
		return nil, err
	}

	if s.config.Payment.MockMode || isDemo {
		return s.createMockSession(tenantID, plan)
	}

	successURL := s.config.Frontend.BaseURL + s.config.Payment.SuccessPath + "?session_id={CHECKOUT_SESSION_ID}"
	cancelURL := s.config.Frontend.BaseURL + s.config.Payment.CancelPath

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(plan.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(plan.Name),
					},
					UnitAmount: stripe.Int64(int64(plan.Amount * 100)),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.AddMetadata("tenant_id", tenantID.String())
	params.AddMetadata("plan_id", plan.ID)

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &CheckoutSessionResponse{
		SessionID:      sess.ID,
		URL:            sess.URL,
		PublishableKey: s.config.Payment.StripePublishableKey,
	}, nil
}

func (s *PaymentService) createMockSession(tenantID uuid.UUID, plan *models.LicensePlan) (*CheckoutSessionResponse, error) {
	sessionID, err := utils.GenerateMockSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate mock session id: %w", err)
	}

	s.mockMtx.Lock()
	s.mockSessions[sessionID] = &mockSession{
		TenantID: tenantID,
		PlanID:   plan.ID,
		Amount:   plan.Amount,
		Currency: plan.Currency,
	}
	s.mockMtx.Unlock()

	// The mock checkout "page" is just the success route; completing it is
	// the webhook simulation endpoint.
	url := s.config.Frontend.BaseURL + s.config.Payment.SuccessPath + "?session_id=" + sessionID

	return &CheckoutSessionResponse{
		SessionID:      sessionID,
		URL:            url,
		PublishableKey: s.config.Payment.StripePublishableKey,
		MockMode:       true,
	}, nil
}

// CompleteMockSession marks a mock session paid, standing in for the Stripe
// webhook in demo flows.
func (s *PaymentService) CompleteMockSession(sessionID string) error {
	s.mockMtx.Lock()
	defer s.mockMtx.Unlock()

	sess, ok := s.mockSessions[sessionID]
	if !ok {
		return errors.New("mock session not found")
	}
	sess.Paid = true
	return nil
}

// VerifySession reports whether a checkout session has been paid.
func (s *PaymentService) VerifySession(sessionID string) (*SessionVerification, error) {
	s.mockMtx.Lock()
	if sess, ok := s.mockSessions[sessionID]; ok {
		v := &SessionVerification{
			Paid:     sess.Paid,
			PlanID:   sess.PlanID,
			Amount:   sess.Amount,
			Currency: sess.Currency,
		}
		s.mockMtx.Unlock()
		return v, nil
	}
	s.mockMtx.Unlock()

	sess, err := session.Get(sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get checkout session: %w", err)
	}

	planID := ""
	if sess.Metadata != nil {
		planID = sess.Metadata["plan_id"]
	}

	return &SessionVerification{
		Paid:     sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		PlanID:   planID,
		Amount:   float64(sess.AmountTotal) / 100,
		Currency: string(sess.Currency),
	}, nil
}
