package service

import (
	"context"
	"sync"

	"github.com/prperemyshlev/siteauth/internal/domain"
	"github.com/prperemyshlev/siteauth/internal/repository"
)

// memStore is a single in-memory backing store shared by all fake
// repositories, mirroring how the real ones share one database.
type memStore struct {
	mu     sync.Mutex
	nextID int64

	sites              map[int64]*domain.Site
	users              map[int64]*domain.User
	authTokens         map[string]*domain.AuthToken
	verificationTokens map[string]*domain.EmailVerificationToken
	resetTokens        map[string]*domain.PasswordResetToken
	changeRequests     map[string]*domain.EmailChangeRequest
}

func newMemStore() *memStore {
	return &memStore{
		sites:              make(map[int64]*domain.Site),
		users:              make(map[int64]*domain.User),
		authTokens:         make(map[string]*domain.AuthToken),
		verificationTokens: make(map[string]*domain.EmailVerificationToken),
		resetTokens:        make(map[string]*domain.PasswordResetToken),
		changeRequests:     make(map[string]*domain.EmailChangeRequest),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

type memSiteRepo struct{ store *memStore }

func (r *memSiteRepo) Create(_ context.Context, site *domain.Site) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.sites {
		if existing.Domain == site.Domain {
			return repository.ErrDuplicateDomain
		}
	}
	site.ID = r.store.id()
	copied := *site
	r.store.sites[site.ID] = &copied
	return nil
}

func (r *memSiteRepo) GetByID(_ context.Context, id int64) (*domain.Site, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	site, ok := r.store.sites[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *site
	return &copied, nil
}

func (r *memSiteRepo) GetByDomain(_ context.Context, domainName string) (*domain.Site, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, site := range r.store.sites {
		if site.Domain == domainName {
			copied := *site
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memSiteRepo) Update(_ context.Context, site *domain.Site) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.sites[site.ID]; !ok {
		return repository.ErrNotFound
	}
	for _, existing := range r.store.sites {
		if existing.ID != site.ID && existing.Domain == site.Domain {
			return repository.ErrDuplicateDomain
		}
	}
	copied := *site
	r.store.sites[site.ID] = &copied
	return nil
}

func (r *memSiteRepo) List(_ context.Context) ([]*domain.Site, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	sites := make([]*domain.Site, 0, len(r.store.sites))
	for _, site := range r.store.sites {
		copied := *site
		sites = append(sites, &copied)
	}
	return sites, nil
}

type memUserRepo struct{ store *memStore }

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if existing.SiteID == user.SiteID && existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	user.ID = r.store.id()
	copied := *user
	r.store.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, siteID int64, email string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, user := range r.store.users {
		if user.SiteID == siteID && user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *user
	r.store.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) ListBySite(_ context.Context, siteID int64) ([]*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var users []*domain.User
	for _, user := range r.store.users {
		if user.SiteID == siteID {
			copied := *user
			users = append(users, &copied)
		}
	}
	return users, nil
}

func (r *memUserRepo) Delete(_ context.Context, userID int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.users[userID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.users, userID)
	for token, t := range r.store.authTokens {
		if t.UserID == userID {
			delete(r.store.authTokens, token)
		}
	}
	for token, t := range r.store.verificationTokens {
		if t.UserID == userID {
			delete(r.store.verificationTokens, token)
		}
	}
	for token, t := range r.store.resetTokens {
		if t.UserID == userID {
			delete(r.store.resetTokens, token)
		}
	}
	for token, t := range r.store.changeRequests {
		if t.UserID == userID {
			delete(r.store.changeRequests, token)
		}
	}
	return nil
}

type memAuthTokenRepo struct{ store *memStore }

func (r *memAuthTokenRepo) Create(_ context.Context, token *domain.AuthToken) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *token
	r.store.authTokens[token.Token] = &copied
	return nil
}

func (r *memAuthTokenRepo) GetByToken(_ context.Context, token string) (*domain.AuthToken, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.authTokens[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *memAuthTokenRepo) Delete(_ context.Context, token string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.authTokens[token]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.authTokens, token)
	return nil
}

func (r *memAuthTokenRepo) DeleteByUser(_ context.Context, userID int64) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	for token, t := range r.store.authTokens {
		if t.UserID == userID {
			delete(r.store.authTokens, token)
			count++
		}
	}
	return count, nil
}

func (r *memAuthTokenRepo) DeleteExpired(_ context.Context, now int64) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	for token, t := range r.store.authTokens {
		if t.ExpiresAt < now {
			delete(r.store.authTokens, token)
			count++
		}
	}
	return count, nil
}

type memVerificationTokenRepo struct{ store *memStore }

func (r *memVerificationTokenRepo) Create(_ context.Context, token *domain.EmailVerificationToken) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *token
	r.store.verificationTokens[token.Token] = &copied
	return nil
}

func (r *memVerificationTokenRepo) GetByToken(_ context.Context, token string) (*domain.EmailVerificationToken, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.verificationTokens[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *memVerificationTokenRepo) Consume(_ context.Context, token string, now int64) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.verificationTokens[token]
	if !ok || t.ExpiresAt < now {
		return 0, repository.ErrNotFound
	}
	delete(r.store.verificationTokens, token)
	return t.UserID, nil
}

func (r *memVerificationTokenRepo) DeleteExpired(_ context.Context, now int64) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	for token, t := range r.store.verificationTokens {
		if t.ExpiresAt < now {
			delete(r.store.verificationTokens, token)
			count++
		}
	}
	return count, nil
}

type memResetTokenRepo struct{ store *memStore }

func (r *memResetTokenRepo) Create(_ context.Context, token *domain.PasswordResetToken) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *token
	r.store.resetTokens[token.Token] = &copied
	return nil
}

func (r *memResetTokenRepo) Consume(_ context.Context, token string, now int64) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.resetTokens[token]
	if !ok || t.Used || t.ExpiresAt < now {
		return 0, repository.ErrNotFound
	}
	t.Used = true
	return t.UserID, nil
}

func (r *memResetTokenRepo) DeleteExpired(_ context.Context, now int64) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	for token, t := range r.store.resetTokens {
		if t.ExpiresAt < now {
			delete(r.store.resetTokens, token)
			count++
		}
	}
	return count, nil
}

type memEmailChangeRepo struct{ store *memStore }

func (r *memEmailChangeRepo) Create(_ context.Context, req *domain.EmailChangeRequest) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *req
	r.store.changeRequests[req.Token] = &copied
	return nil
}

func (r *memEmailChangeRepo) Confirm(_ context.Context, token string, now int64) (*domain.EmailChangeRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	req, ok := r.store.changeRequests[token]
	if !ok || req.ExpiresAt < now {
		return nil, repository.ErrNotFound
	}
	for _, user := range r.store.users {
		if user.SiteID == req.SiteID && user.Email == req.NewEmail && user.ID != req.UserID {
			// Conflict rolls back with the request left in place.
			return nil, repository.ErrDuplicateEmail
		}
	}
	user, ok := r.store.users[req.UserID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user.Email = req.NewEmail
	user.UpdatedAt = now
	delete(r.store.changeRequests, token)
	copied := *req
	return &copied, nil
}

func (r *memEmailChangeRepo) DeleteExpired(_ context.Context, now int64) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	for token, t := range r.store.changeRequests {
		if t.ExpiresAt < now {
			delete(r.store.changeRequests, token)
			count++
		}
	}
	return count, nil
}

// sentMail records one notifier call.
type sentMail struct {
	Kind  string
	To    string
	Token string
}

// fakeNotifier records sends instead of delivering them. FailWith makes
// every send fail.
type fakeNotifier struct {
	mu       sync.Mutex
	Sent     []sentMail
	FailWith error
}

func (n *fakeNotifier) record(kind, to, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.FailWith != nil {
		return n.FailWith
	}
	n.Sent = append(n.Sent, sentMail{Kind: kind, To: to, Token: token})
	return nil
}

func (n *fakeNotifier) SendVerificationEmail(_ context.Context, _ *domain.Site, toEmail, token string) error {
	return n.record("verification", toEmail, token)
}

func (n *fakeNotifier) SendPasswordResetEmail(_ context.Context, _ *domain.Site, toEmail, token string) error {
	return n.record("password_reset", toEmail, token)
}

func (n *fakeNotifier) SendEmailChangeEmail(_ context.Context, _ *domain.Site, toEmail, token string) error {
	return n.record("email_change", toEmail, token)
}

func (n *fakeNotifier) lastSent() sentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Sent) == 0 {
		return sentMail{}
	}
	return n.Sent[len(n.Sent)-1]
}
