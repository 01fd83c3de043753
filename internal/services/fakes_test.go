package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"logingate/internal/logging"
	"logingate/internal/models"
	"logingate/internal/repositories"
	"logingate/internal/utils"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

type fakeGateway struct {
	mu    sync.Mutex
	sent  []string
	err   error
	panic bool
}

func (g *fakeGateway) SendCode(ctx context.Context, mobile, code string) error {
	if g.panic {
		panic("gateway exploded")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return g.err
	}
	g.sent = append(g.sent, mobile+":"+code)
	return nil
}

func (g *fakeGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sent)
}

// fakeIdentity is an in-memory Identity keyed by name.
type fakeIdentity struct {
	mu        sync.Mutex
	users     map[string]*models.User
	passwords map[string]string
	forbidden map[string]bool
	nextID    int

	getErr    error
	createErr error
	tokenErr  error
	checkErr  error
	panicOn   string
	// racerID, when set, makes CreateUser lose to a concurrent create that
	// stored the user under this id.
	racerID string
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{
		users:     map[string]*models.User{},
		passwords: map[string]string{},
		forbidden: map[string]bool{},
	}
}

func (f *fakeIdentity) add(id, name, password string) {
	f.users[name] = &models.User{ID: id, Name: name, DisplayName: name}
	f.passwords[id] = password
}

func (f *fakeIdentity) CheckPasswordLogin(ctx context.Context, name, password string) error {
	if f.panicOn == "check" {
		panic("identity exploded")
	}
	if f.checkErr != nil {
		return f.checkErr
	}
	u, ok := f.users[name]
	if !ok {
		return models.ErrUserNotExist
	}
	if f.forbidden[name] {
		return models.ErrUserForbidden
	}
	if f.passwords[u.ID] != password {
		return models.ErrPasswordIncorrect
	}
	return nil
}

func (f *fakeIdentity) GetUserByName(ctx context.Context, name string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[name]
	if !ok {
		return nil, models.ErrUserNotExist
	}
	cp := *u
	return &cp, nil
}

func (f *fakeIdentity) CreateUser(ctx context.Context, user *models.User, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	if f.racerID != "" {
		f.users[user.Name] = &models.User{ID: f.racerID, Name: user.Name, DisplayName: user.Name}
		return "", models.ErrUserAlreadyExists
	}
	f.nextID++
	id := fmt.Sprintf("uid-%d", f.nextID)
	cp := *user
	cp.ID = id
	f.users[user.Name] = &cp
	f.passwords[id] = password
	return id, nil
}

func (f *fakeIdentity) GetUserToken(ctx context.Context, userID, clientID string) (string, error) {
	if f.panicOn == "token" {
		panic("identity exploded")
	}
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return "tok:" + userID + ":" + clientID, nil
}

func (f *fakeIdentity) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.passwords[userID]
	if !ok {
		return models.ErrUserNotExist
	}
	if cur != oldPassword {
		return models.ErrPasswordIncorrect
	}
	f.passwords[userID] = newPassword
	return nil
}

type sentMessage struct {
	from, to, text string
}

type fakeMessenger struct {
	mu   sync.Mutex
	msgs []sentMessage
	err  error
}

func (m *fakeMessenger) SendMessage(ctx context.Context, from, to, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, sentMessage{from, to, text})
	return m.err
}

type fakeUsers struct {
	users map[string]*models.User
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return u, nil
}

func newSMSService(clock utils.Clock, gw SMSGateway, cfg SMSConfig) *SMSService {
	mobiles, _ := utils.NewMobileValidator("")
	return NewSMSService(
		repositories.NewCodeRecordRepository(0),
		repositories.NewQuotaRepository(0),
		gw,
		mobiles,
		clock,
		logging.Discard(),
		cfg,
	)
}

func newWelcome(m Messenger) *WelcomeNotifier {
	return NewWelcomeNotifier(m, logging.Discard(), WelcomeConfig{
		SystemAccount: "admin",
		NewUserText:   "welcome",
		BackUserText:  "welcome back",
		Timeout:       time.Second,
	})
}
