package service

import (
	"context"
	"regexp"
	"time"

	"youbet/internal/middleware"
	"youbet/internal/models"
	"youbet/internal/repository"
	"youbet/internal/sms"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// SendRequestResult is what the sender gets back from SendRequest.
type SendRequestResult struct {
	RequestID  uint                        `json:"requestId"`
	Status     models.ContactRequestStatus `json:"status"`
	UserExists bool                        `json:"userExists"`
}

// SentRequestView is a sent request annotated with whether the target phone
// belongs to a registered user.
type SentRequestView struct {
	models.ContactRequest
	UserExists bool `json:"userExists"`
}

// ContactView is a contact edge seen from one user's side.
type ContactView struct {
	ContactID  uint        `json:"contactId"`
	User       models.User `json:"user"`
	IsFavorite bool        `json:"isFavorite"`
	Since      time.Time   `json:"since"`
}

// ContactService owns the contact-request lifecycle and the contact graph.
type ContactService struct {
	requestRepo     repository.ContactRequestRepository
	contactRepo     repository.ContactRepository
	userRepo        repository.UserRepository
	notificationSvc *NotificationService
	smsGateway      sms.Gateway

	requestTTL    time.Duration
	sweepInterval time.Duration
	inviteBaseURL string
}

// NewContactService returns a new ContactService.
func NewContactService(
	requestRepo repository.ContactRequestRepository,
	contactRepo repository.ContactRepository,
	userRepo repository.UserRepository,
	notificationSvc *NotificationService,
	smsGateway sms.Gateway,
	requestTTL, sweepInterval time.Duration,
	inviteBaseURL string,
) *ContactService {
	return &ContactService{
		requestRepo:     requestRepo,
		contactRepo:     contactRepo,
		userRepo:        userRepo,
		notificationSvc: notificationSvc,
		smsGateway:      smsGateway,
		requestTTL:      requestTTL,
		sweepInterval:   sweepInterval,
		inviteBaseURL:   inviteBaseURL,
	}
}

// SendRequest creates a pending contact request from userID to a phone
// number. When the phone belongs to a registered user the request is linked
// to them and they get an in-app notification; otherwise the phone gets an
// SMS invite.
func (s *ContactService) SendRequest(ctx context.Context, userID uint, toPhone, message string) (*SendRequestResult, error) {
	if !phonePattern.MatchString(toPhone) {
		return nil, models.NewInvalidRequestError("Invalid phone number")
	}
	if len(message) > 280 {
		return nil, models.NewInvalidRequestError("Message must be at most 280 characters")
	}

	sender, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sender.Phone == toPhone {
		return nil, models.NewInvalidRequestError("Cannot send a contact request to yourself")
	}

	target, err := s.userRepo.GetByPhone(ctx, toPhone)
	if err != nil {
		return nil, err
	}
	if target != nil {
		existing, err := s.contactRepo.GetBetweenUsers(ctx, userID, target.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, models.NewInvalidRequestError("You are already contacts with this user")
		}
	}

	// Friendly duplicate check; the partial unique index still catches two
	// submissions racing past this read.
	pending, err := s.requestRepo.GetPendingBySenderAndPhone(ctx, userID, toPhone)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, models.NewDuplicateRequestError("A pending request to this phone already exists")
	}

	request := &models.ContactRequest{
		FromID:    userID,
		ToPhone:   toPhone,
		Message:   message,
		Status:    models.ContactRequestStatusPending,
		ExpiresAt: time.Now().Add(s.requestTTL),
	}
	if target != nil {
		request.ToUserID = &target.ID
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}
	middleware.ContactRequestOutcomes.WithLabelValues("sent").Inc()

	if target != nil {
		if _, err := s.notificationSvc.Dispatch(ctx, models.NotificationTypeContactRequest, target.ID, userID, request.ID); err != nil {
			middleware.Logger.WarnContext(ctx, "dispatch contact request notification",
				"request_id", request.ID, "error", err)
		}
	} else {
		body := sms.InviteBody(sender.Name, s.inviteBaseURL, request.ID)
		if err := s.smsGateway.SendText(ctx, toPhone, body); err != nil {
			middleware.Logger.WarnContext(ctx, "send invite sms",
				"request_id", request.ID, "error", err)
		}
	}

	return &SendRequestResult{
		RequestID:  request.ID,
		Status:     request.Status,
		UserExists: target != nil,
	}, nil
}

// ListSent returns the caller's live pending requests, newest first.
func (s *ContactService) ListSent(ctx context.Context, userID uint) ([]SentRequestView, error) {
	requests, err := s.requestRepo.ListSent(ctx, userID, time.Now())
	if err != nil {
		return nil, err
	}
	views := make([]SentRequestView, 0, len(requests))
	for _, r := range requests {
		views = append(views, SentRequestView{
			ContactRequest: r,
			UserExists:     r.ToUserID != nil,
		})
	}
	return views, nil
}

// ListReceived returns live pending requests addressed to the caller,
// newest first.
func (s *ContactService) ListReceived(ctx context.Context, userID uint) ([]models.ContactRequest, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.requestRepo.ListReceived(ctx, userID, user.Phone, time.Now())
}

// Approve accepts a pending request addressed to userID. The status change
// and the contact edge are written in one transaction; whichever of two
// racing responders commits first wins and the loser gets an invalid-state
// error.
func (s *ContactService) Approve(ctx context.Context, userID, requestID uint) (*models.Contact, error) {
	request, err := s.loadAddressedRequest(ctx, userID, requestID)
	if err != nil {
		return nil, err
	}
	if request.Expired(time.Now()) {
		return nil, models.NewInvalidStateError("Contact request has expired")
	}
	if request.ToUserID == nil {
		request.ToUserID = &userID
	}

	contact, err := s.requestRepo.ApproveAndLink(ctx, request, time.Now())
	if err != nil {
		return nil, err
	}
	middleware.ContactRequestOutcomes.WithLabelValues("approved").Inc()

	if _, err := s.notificationSvc.Dispatch(ctx, models.NotificationTypeContactApproved, request.FromID, userID, request.ID); err != nil {
		middleware.Logger.WarnContext(ctx, "dispatch approval notification",
			"request_id", request.ID, "error", err)
	}
	return contact, nil
}

// Decline rejects a pending request addressed to userID.
func (s *ContactService) Decline(ctx context.Context, userID, requestID uint) error {
	request, err := s.loadAddressedRequest(ctx, userID, requestID)
	if err != nil {
		return err
	}
	if request.Expired(time.Now()) {
		return models.NewInvalidStateError("Contact request has expired")
	}

	if err := s.requestRepo.Respond(ctx, request.ID, models.ContactRequestStatusDeclined, time.Now()); err != nil {
		return err
	}
	middleware.ContactRequestOutcomes.WithLabelValues("declined").Inc()

	if _, err := s.notificationSvc.Dispatch(ctx, models.NotificationTypeContactDeclined, request.FromID, userID, request.ID); err != nil {
		middleware.Logger.WarnContext(ctx, "dispatch decline notification",
			"request_id", request.ID, "error", err)
	}
	return nil
}

// Cancel withdraws a pending request the caller sent. No notification goes
// out; the target simply stops seeing it.
func (s *ContactService) Cancel(ctx context.Context, userID, requestID uint) error {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.FromID != userID {
		return models.NewForbiddenError("You can only cancel requests you sent")
	}
	if request.Status != models.ContactRequestStatusPending {
		return models.NewInvalidStateError("Contact request is not pending")
	}

	if err := s.requestRepo.Delete(ctx, request.ID); err != nil {
		return err
	}
	middleware.ContactRequestOutcomes.WithLabelValues("cancelled").Inc()
	return nil
}

// loadAddressedRequest fetches a pending request and verifies userID is its
// recipient. Requests sent to a phone before the recipient registered match
// by phone number.
func (s *ContactService) loadAddressedRequest(ctx context.Context, userID, requestID uint) (*models.ContactRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	addressed := request.ToUserID != nil && *request.ToUserID == userID
	if !addressed {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		addressed = user.Phone == request.ToPhone
	}
	if !addressed {
		return nil, models.NewForbiddenError("You can only respond to requests sent to you")
	}
	if request.Status != models.ContactRequestStatusPending {
		return nil, models.NewInvalidStateError("Contact request is not pending")
	}
	return request, nil
}

// ListContacts returns the caller's unblocked contacts with counterpart
// profiles resolved.
func (s *ContactService) ListContacts(ctx context.Context, userID uint, search string, limit, offset int) ([]ContactView, error) {
	contacts, err := s.contactRepo.List(ctx, userID, search, limit, offset)
	if err != nil {
		return nil, err
	}
	views := make([]ContactView, 0, len(contacts))
	for _, c := range contacts {
		counterpart := c.ContactUser
		if c.ContactID == userID {
			counterpart = c.User
		}
		views = append(views, ContactView{
			ContactID:  c.ID,
			User:       counterpart,
			IsFavorite: c.IsFavorite,
			Since:      c.CreatedAt,
		})
	}
	return views, nil
}

// RemoveContact deletes a contact edge the caller belongs to.
func (s *ContactService) RemoveContact(ctx context.Context, userID, contactID uint) error {
	contact, err := s.ownedContact(ctx, userID, contactID)
	if err != nil {
		return err
	}
	return s.contactRepo.Delete(ctx, contact.ID)
}

// SetBlocked updates the blocked flag on a contact edge the caller belongs
// to. A blocked edge disappears from both users' contact lists.
func (s *ContactService) SetBlocked(ctx context.Context, userID, contactID uint, blocked bool) error {
	contact, err := s.ownedContact(ctx, userID, contactID)
	if err != nil {
		return err
	}
	return s.contactRepo.SetBlocked(ctx, contact.ID, blocked)
}

// SetFavorite updates the favorite flag on a contact edge the caller
// belongs to.
func (s *ContactService) SetFavorite(ctx context.Context, userID, contactID uint, favorite bool) error {
	contact, err := s.ownedContact(ctx, userID, contactID)
	if err != nil {
		return err
	}
	return s.contactRepo.SetFavorite(ctx, contact.ID, favorite)
}

func (s *ContactService) ownedContact(ctx context.Context, userID, contactID uint) (*models.Contact, error) {
	contact, err := s.contactRepo.GetByID(ctx, contactID)
	if err != nil {
		return nil, err
	}
	// An edge the caller is not part of is indistinguishable from a
	// missing one.
	if !contact.HasEndpoint(userID) {
		return nil, models.NewNotFoundError("Contact", contactID)
	}
	return contact, nil
}

// StartSweeper periodically marks overdue pending requests as expired. It is
// a no-op when the interval is zero; list and respond paths already treat
// overdue rows as dead, the sweeper just settles their stored status.
func (s *ContactService) StartSweeper(ctx context.Context) {
	if s.sweepInterval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				count, err := s.requestRepo.ExpireBefore(ctx, time.Now())
				if err != nil {
					middleware.Logger.ErrorContext(ctx, "expire contact requests", "error", err)
					continue
				}
				if count > 0 {
					middleware.ContactRequestOutcomes.WithLabelValues("expired").Add(float64(count))
					middleware.Logger.InfoContext(ctx, "expired contact requests", "count", count)
				}
			}
		}
	}()
}
