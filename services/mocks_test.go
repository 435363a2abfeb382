package services

import (
	"context"
	"sync"

	"elsahm-admin/apperr"
	"elsahm-admin/imagehost"
	"elsahm-admin/models"
	"elsahm-admin/push"
	"elsahm-admin/relational"

	"github.com/stretchr/testify/mock"
)

type MockComplaintStore struct {
	mock.Mock
}

func (m *MockComplaintStore) List(ctx context.Context, f models.ComplaintFilter) ([]models.Complaint, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockComplaintStore) Get(ctx context.Context, id string) (*models.Complaint, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*models.Complaint)
	return c, args.Error(1)
}

func (m *MockComplaintStore) Create(ctx context.Context, complaint *models.Complaint) error {
	args := m.Called(ctx, complaint)
	return args.Error(0)
}

func (m *MockComplaintStore) AppendResponse(ctx context.Context, id string, resp models.Response, adminReply bool) (*models.Complaint, error) {
	args := m.Called(ctx, id, resp, adminReply)
	c, _ := args.Get(0).(*models.Complaint)
	return c, args.Error(1)
}

func (m *MockComplaintStore) SetStatus(ctx context.Context, id string, status models.ComplaintStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockComplaintStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockComplaintStore) Count(ctx context.Context, status models.ComplaintStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

type MockHost struct {
	mock.Mock
}

func (m *MockHost) Upload(ctx context.Context, img imagehost.Upload) (string, error) {
	args := m.Called(ctx, img)
	return args.String(0), args.Error(1)
}

type MockNotificationStore struct {
	mock.Mock
}

func (m *MockNotificationStore) Insert(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type MockPushSender struct {
	mock.Mock
}

func (m *MockPushSender) Send(ctx context.Context, req push.Request) (*push.Result, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*push.Result)
	return r, args.Error(1)
}

type MockDispatchLogger struct {
	mock.Mock
}

func (m *MockDispatchLogger) Insert(ctx context.Context, entry *relational.DispatchLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Dispatch(ctx context.Context, msg Message, mode Mode) (DispatchReport, error) {
	args := m.Called(ctx, msg, mode)
	return args.Get(0).(DispatchReport), args.Error(1)
}

type recordingSink struct {
	mu    sync.Mutex
	calls []models.Response
}

func (s *recordingSink) Optimistic(complaintID string, resp models.Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, resp)
}

// memoryComplaintStore applies appends the way the document store does:
// closed complaints refuse, operator replies move open to in-progress.
type memoryComplaintStore struct {
	mu         sync.Mutex
	complaints map[string]*models.Complaint
}

func newMemoryComplaintStore(cs ...*models.Complaint) *memoryComplaintStore {
	s := &memoryComplaintStore{complaints: map[string]*models.Complaint{}}
	for _, c := range cs {
		s.complaints[c.ID.Hex()] = c
	}
	return s
}

func (s *memoryComplaintStore) List(ctx context.Context, f models.ComplaintFilter) ([]models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Complaint
	for _, c := range s.complaints {
		if f.Status == "" || c.Status == f.Status {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *memoryComplaintStore) Get(ctx context.Context, id string) (*models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.complaints[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	copied := *c
	copied.Responses = append([]models.Response(nil), c.Responses...)
	return &copied, nil
}

func (s *memoryComplaintStore) Create(ctx context.Context, complaint *models.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.complaints[complaint.ID.Hex()] = complaint
	return nil
}

func (s *memoryComplaintStore) AppendResponse(ctx context.Context, id string, resp models.Response, adminReply bool) (*models.Complaint, error) {
	s.mu.Lock()
	c, ok := s.complaints[id]
	if !ok {
		s.mu.Unlock()
		return nil, apperr.ErrNotFound
	}
	if c.Status == models.StatusClosed {
		s.mu.Unlock()
		return nil, apperr.ErrComplaintClosed
	}
	c.Responses = append(c.Responses, resp)
	if adminReply {
		c.Status = models.StatusAfterAdminReply(c.Status)
	}
	s.mu.Unlock()
	return s.Get(ctx, id)
}

func (s *memoryComplaintStore) SetStatus(ctx context.Context, id string, status models.ComplaintStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.complaints[id]
	if !ok {
		return apperr.ErrNotFound
	}
	c.Status = status
	return nil
}

func (s *memoryComplaintStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.complaints[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(s.complaints, id)
	return nil
}

func (s *memoryComplaintStore) Count(ctx context.Context, status models.ComplaintStatus) (int64, error) {
	list, _ := s.List(ctx, models.ComplaintFilter{Status: status})
	return int64(len(list)), nil
}

// memoryBalanceStore commits a credit all-or-nothing under one lock.
type memoryBalanceStore struct {
	mu           sync.Mutex
	users        map[string]*models.User
	transactions []models.BalanceTransaction
}

func newMemoryBalanceStore(users ...models.User) *memoryBalanceStore {
	s := &memoryBalanceStore{users: map[string]*models.User{}}
	for i := range users {
		u := users[i]
		s.users[u.ID] = &u
	}
	return s
}

func (s *memoryBalanceStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *memoryBalanceStore) CreditBalance(ctx context.Context, userID string, amount float64, notes, performedBy string) (*models.BalanceTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, apperr.ErrUserNotFound
	}
	tx := models.NewBalanceTransaction(userID, u.Balance, amount, notes, performedBy, u.LastUpdated)
	u.Balance = tx.NewBalance
	s.transactions = append(s.transactions, tx)
	return &tx, nil
}

func (s *memoryBalanceStore) ListTransactions(ctx context.Context, userID string) ([]models.BalanceTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.BalanceTransaction
	for _, tx := range s.transactions {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}
