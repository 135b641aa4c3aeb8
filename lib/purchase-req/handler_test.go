package purchasereqhandler

import (
	"context"
	"fmt"
	"maps"
	"math/rand"
	"procurement-backend/lib/notify"
	"procurement-backend/models"
	purchaseapimodels "procurement-backend/models/api/purchase"
	vendorapimodels "procurement-backend/models/api/vendor"
	dbmodels "procurement-backend/models/db"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	requester = models.Actor{ID: "u-1", Name: "Иванов", Email: "ivanov@example.com", Department: "IT", Role: models.EmployeeRole}
	colleague = models.Actor{ID: "u-2", Name: "Сидоров", Role: models.EmployeeRole}
	approver  = models.Actor{ID: "a-1", Name: "Петров", Role: models.ApproverRole}
	admin     = models.Actor{ID: "adm-1", Name: "Админ", Role: models.AdminRole}
	testNow   = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
)

// fakeDB хранилище в памяти, транзакция откатывается при ошибке
type fakeDB struct {
	mu          sync.Mutex
	seq         int
	requests    map[string]dbmodels.PurchaseRequest
	history     []dbmodels.RequestHistory
	attachments []dbmodels.Attachment
	// beforeTx вызывается между чтением заявки и транзакцией, имитирует конкурентную запись
	beforeTx   func()
	historyErr error
}

func newFakeDB() *fakeDB {
	return &fakeDB{requests: map[string]dbmodels.PurchaseRequest{}}
}

func (f *fakeDB) runInTx(fn func(s txStores) error) error {
	if f.beforeTx != nil {
		f.beforeTx()
	}
	f.mu.Lock()
	requests := maps.Clone(f.requests)
	history := slices.Clone(f.history)
	attachments := slices.Clone(f.attachments)
	f.mu.Unlock()

	err := fn(txStores{
		store:           fakeStore{f},
		historyStore:    fakeHistoryStore{f},
		attachmentStore: fakeAttachmentStore{f},
	})
	if err != nil {
		f.mu.Lock()
		f.requests = requests
		f.history = history
		f.attachments = attachments
		f.mu.Unlock()
	}
	return err
}

func (f *fakeDB) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeDB) status(id string) models.PRStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[id].Status
}

func (f *fakeDB) historyFor(id string) []dbmodels.RequestHistory {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []dbmodels.RequestHistory{}
	for _, rec := range f.history {
		if rec.RequestID == id {
			result = append(result, rec)
		}
	}
	return result
}

type fakeStore struct {
	db *fakeDB
}

func (s fakeStore) Create(rec dbmodels.PurchaseRequest) (string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	rec.ID = s.db.nextID("req")
	rec.CreatedAt = testNow
	s.db.requests[rec.ID] = rec
	return rec.ID, nil
}

func (s fakeStore) GetByID(id string) (*dbmodels.PurchaseRequest, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	rec, ok := s.db.requests[id]
	if !ok {
		return nil, nil
	}
	rec.Attachments = nil
	for _, att := range s.db.attachments {
		if att.RequestID == id {
			rec.Attachments = append(rec.Attachments, att)
		}
	}
	return &rec, nil
}

func (s fakeStore) CompareAndUpdate(id string, expected models.PRStatus, updMap map[string]interface{}) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	rec, ok := s.db.requests[id]
	if !ok || rec.Status != expected {
		return false, nil
	}
	for key, value := range updMap {
		switch key {
		case "status":
			rec.Status = value.(models.PRStatus)
		case "reviewer_id":
			rec.ReviewerID = value.(*string)
		case "reviewer_name":
			rec.ReviewerName = value.(string)
		case "approval_date":
			date := value.(time.Time)
			rec.ApprovalDate = &date
		case "reviewer_notes":
			rec.ReviewerNotes = value.(string)
		case "requester_reply":
			rec.RequesterReply = value.(string)
		case "title":
			rec.Title = value.(string)
		case "department":
			rec.Department = value.(string)
		case "description":
			rec.Description = value.(string)
		case "cost":
			rec.Cost = value.(decimal.Decimal)
		case "cost_per_license":
			rec.CostPerLicense = value.(decimal.NullDecimal)
		case "num_licenses":
			rec.NumLicenses = value.(*int)
		case "vendor_ref_type":
			rec.VendorRefType = value.(models.VendorRefType)
		case "vendor_id":
			rec.VendorID = value.(*string)
		case "proposed_vendor_vendor_name":
			rec.ProposedVendor.VendorName = value.(string)
		case "proposed_vendor_website":
			rec.ProposedVendor.Website = value.(string)
		case "proposed_vendor_contact_email":
			rec.ProposedVendor.ContactEmail = value.(string)
		default:
			return false, errors.Errorf("неизвестное поле %v", key)
		}
	}
	s.db.requests[id] = rec
	return true, nil
}

func (s fakeStore) filtered(filter purchaseapimodels.PrFilter) []dbmodels.PurchaseRequest {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	result := []dbmodels.PurchaseRequest{}
	for _, rec := range s.db.requests {
		if filter.RequesterID != "" && rec.RequesterID != filter.RequesterID {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		result = append(result, rec)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (s fakeStore) ListCount(filter purchaseapimodels.PrFilter) (int64, error) {
	return int64(len(s.filtered(filter))), nil
}

func (s fakeStore) List(filter purchaseapimodels.PrFilter) ([]dbmodels.PurchaseRequest, error) {
	return s.filtered(filter), nil
}

func (s fakeStore) ListAll(filter purchaseapimodels.PrFilter, maxRows int) ([]dbmodels.PurchaseRequest, error) {
	list := s.filtered(filter)
	if maxRows > 0 && len(list) > maxRows {
		list = list[:maxRows]
	}
	return list, nil
}

type fakeHistoryStore struct {
	db *fakeDB
}

func (s fakeHistoryStore) Create(rec dbmodels.RequestHistory) (string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.historyErr != nil {
		return "", s.db.historyErr
	}
	rec.ID = s.db.nextID("hist")
	s.db.history = append(s.db.history, rec)
	return rec.ID, nil
}

func (s fakeHistoryStore) List(requestID string) ([]dbmodels.RequestHistory, error) {
	return s.db.historyFor(requestID), nil
}

type fakeAttachmentStore struct {
	db *fakeDB
}

func (s fakeAttachmentStore) Create(rec dbmodels.Attachment) (string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	rec.ID = s.db.nextID("att")
	s.db.attachments = append(s.db.attachments, rec)
	return rec.ID, nil
}

func (s fakeAttachmentStore) GetByID(requestID, id string) (*dbmodels.Attachment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, att := range s.db.attachments {
		if att.RequestID == requestID && att.ID == id {
			return &att, nil
		}
	}
	return nil, nil
}

func (s fakeAttachmentStore) List(requestID string) ([]dbmodels.Attachment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	result := []dbmodels.Attachment{}
	for _, att := range s.db.attachments {
		if att.RequestID == requestID {
			result = append(result, att)
		}
	}
	return result, nil
}

type fakeVendors struct {
	items map[string]vendorapimodels.VendorView
}

func (f fakeVendors) Create(actor models.Actor, data vendorapimodels.VendorData) (string, error) {
	return "", nil
}

func (f fakeVendors) GetByID(id string) (vendorapimodels.VendorView, error) {
	item, ok := f.items[id]
	if !ok {
		return vendorapimodels.VendorView{}, models.NotFound("поставщик не найден")
	}
	return item, nil
}

func (f fakeVendors) List(filter vendorapimodels.VendorFilter) ([]vendorapimodels.VendorView, int64, error) {
	return nil, 0, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (f *fakeNotifier) SendTransition(ctx context.Context, event notify.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeNotifier) actions() []models.PRAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []models.PRAction{}
	for _, event := range f.events {
		result = append(result, event.Action)
	}
	return result
}

type testEnv struct {
	handler  impl
	db       *fakeDB
	notifier *fakeNotifier
}

func newTestEnv() testEnv {
	fdb := newFakeDB()
	notifier := &fakeNotifier{}
	vendors := fakeVendors{items: map[string]vendorapimodels.VendorView{
		"v-1": {ID: "v-1", VendorData: vendorapimodels.VendorData{Name: "Dell"}},
	}}
	return testEnv{
		handler: impl{
			store:          fakeStore{fdb},
			historyStore:   fakeHistoryStore{fdb},
			vendorProvider: vendors,
			notifier:       notifier,
			runInTx:        fdb.runInTx,
			now:            func() time.Time { return testNow },
		},
		db:       fdb,
		notifier: notifier,
	}
}

func laptops() purchaseapimodels.PurchaseRequestData {
	return purchaseapimodels.PurchaseRequestData{
		Title:       "Laptops",
		Department:  "IT",
		Description: "Замена ноутбуков",
		Cost:        decimal.NewFromInt(5000),
	}
}

func (e testEnv) create(t *testing.T) string {
	t.Helper()
	id, err := e.handler.Create(context.Background(), requester, laptops())
	require.NoError(t, err)
	return id
}

// moveTo переводит новую заявку в нужный статус допустимыми действиями
func (e testEnv) moveTo(t *testing.T, status models.PRStatus) string {
	t.Helper()
	ctx := context.Background()
	id := e.create(t)
	switch status {
	case models.PRStatusInReview:
		require.NoError(t, transitionErr(e.handler.RequestClarification(ctx, approver, id, "вопрос")))
		require.NoError(t, transitionErr(e.handler.Reply(ctx, requester, id, "ответ")))
	case models.PRStatusClarificationNeeded:
		require.NoError(t, transitionErr(e.handler.RequestClarification(ctx, approver, id, "вопрос")))
	case models.PRStatusApproved:
		require.NoError(t, transitionErr(e.handler.Approve(ctx, approver, id)))
	case models.PRStatusRejected:
		require.NoError(t, transitionErr(e.handler.Reject(ctx, approver, id, "")))
	case models.PRStatusWithdrawn:
		require.NoError(t, transitionErr(e.handler.Withdraw(ctx, requester, id)))
	}
	require.Equal(t, status, e.db.status(id))
	return id
}

func requireValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	require.True(t, models.IsValidationError(err), err.Error())
}

// transitionErr результат перехода в тестах, где важна только ошибка
func transitionErr(_ purchaseapimodels.PurchaseRequestView, err error) error {
	return err
}

func TestClarificationScenario(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	id := env.create(t)
	item, err := env.handler.GetByID(requester, id)
	require.NoError(t, err)
	require.Equal(t, models.PRStatusPending, item.Status)

	require.NoError(t, transitionErr(env.handler.RequestClarification(ctx, approver, id, "Need vendor quote")))
	item, err = env.handler.GetByID(requester, id)
	require.NoError(t, err)
	require.Equal(t, models.PRStatusClarificationNeeded, item.Status)
	require.Equal(t, "Need vendor quote", item.ReviewerNotes)

	require.NoError(t, transitionErr(env.handler.Reply(ctx, requester, id, "Quote attached")))
	item, err = env.handler.GetByID(requester, id)
	require.NoError(t, err)
	require.Equal(t, models.PRStatusInReview, item.Status)
	require.Equal(t, "Quote attached", item.RequesterReply)
	require.Equal(t, "Need vendor quote", item.ReviewerNotes)

	require.NoError(t, transitionErr(env.handler.Approve(ctx, approver, id)))
	item, err = env.handler.GetByID(requester, id)
	require.NoError(t, err)
	require.Equal(t, models.PRStatusApproved, item.Status)
	require.NotNil(t, item.ApprovalDate)
	require.Equal(t, testNow, *item.ApprovalDate)
	require.Equal(t, approver.Name, item.ReviewerName)
	require.Empty(t, item.AllowedActions)

	history, err := env.handler.History(requester, id)
	require.NoError(t, err)
	actions := []models.PRAction{}
	for _, rec := range history {
		actions = append(actions, rec.Action)
	}
	require.Equal(t, []models.PRAction{models.PRActionSubmit, models.PRActionClarification, models.PRActionReply, models.PRActionApprove}, actions)
	require.Equal(t, models.PRStatus(""), history[0].FromStatus)
	require.Equal(t, models.PRStatusInReview, history[3].FromStatus)
	require.Equal(t, models.PRStatusApproved, history[3].ToStatus)

	require.Equal(t, []models.PRAction{models.PRActionClarification, models.PRActionReply, models.PRActionApprove}, env.notifier.actions())
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("requester snapshot and history", func(t *testing.T) {
		env := newTestEnv()
		id := env.create(t)
		rec := env.db.requests[id]
		require.Equal(t, models.PRStatusPending, rec.Status)
		require.Equal(t, requester.ID, rec.RequesterID)
		require.Equal(t, requester.Email, rec.RequesterEmail)
		require.Equal(t, requester.Department, rec.RequesterDepartment)
		require.Equal(t, models.VendorRefNone, rec.VendorRefType)
		require.Nil(t, rec.ApprovalDate)
		history := env.db.historyFor(id)
		require.Len(t, history, 1)
		require.Equal(t, models.PRActionSubmit, history[0].Action)
		require.Equal(t, models.PRStatusPending, history[0].ToStatus)
	})

	t.Run("invalid data is not stored", func(t *testing.T) {
		env := newTestEnv()
		data := laptops()
		data.Cost = decimal.Zero
		_, err := env.handler.Create(ctx, requester, data)
		requireValidationError(t, err)

		data = laptops()
		data.Title = "   "
		_, err = env.handler.Create(ctx, requester, data)
		requireValidationError(t, err)
		require.Empty(t, env.db.requests)
		require.Empty(t, env.db.history)
	})

	t.Run("empty actor", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.handler.Create(ctx, models.Actor{}, laptops())
		require.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("existing vendor", func(t *testing.T) {
		env := newTestEnv()
		data := laptops()
		data.Vendor = purchaseapimodels.VendorRef{VendorID: "v-1"}
		id, err := env.handler.Create(ctx, requester, data)
		require.NoError(t, err)
		rec := env.db.requests[id]
		require.Equal(t, models.VendorRefExisting, rec.VendorRefType)
		require.Equal(t, "v-1", *rec.VendorID)
		require.Empty(t, rec.ProposedVendor.VendorName)

		data.Vendor = purchaseapimodels.VendorRef{VendorID: "unknown"}
		_, err = env.handler.Create(ctx, requester, data)
		var vErr *models.ValidationError
		require.ErrorAs(t, err, &vErr)
		require.Equal(t, "vendor.vendor_id", vErr.Field)
	})

	t.Run("proposed vendor", func(t *testing.T) {
		env := newTestEnv()
		data := laptops()
		data.Vendor = purchaseapimodels.VendorRef{Proposed: &purchaseapimodels.ProposedVendorData{
			VendorName:   "Lenovo",
			ContactEmail: "sales@lenovo.com",
		}}
		id, err := env.handler.Create(ctx, requester, data)
		require.NoError(t, err)
		rec := env.db.requests[id]
		require.Equal(t, models.VendorRefProposed, rec.VendorRefType)
		require.Nil(t, rec.VendorID)
		require.Equal(t, "Lenovo", rec.ProposedVendor.VendorName)

		item, err := env.handler.GetByID(requester, id)
		require.NoError(t, err)
		require.Equal(t, models.VendorRefProposed, item.Vendor.Type)
		require.Equal(t, "sales@lenovo.com", item.Vendor.Proposed.ContactEmail)
	})
}

func TestApproveReject(t *testing.T) {
	ctx := context.Background()

	for _, from := range []models.PRStatus{models.PRStatusPending, models.PRStatusInReview} {
		t.Run("approve from "+string(from), func(t *testing.T) {
			env := newTestEnv()
			id := env.moveTo(t, from)
			item, err := env.handler.Approve(ctx, admin, id)
			require.NoError(t, err)
			require.Equal(t, models.PRStatusApproved, env.db.status(id))
			require.NotNil(t, env.db.requests[id].ApprovalDate)
			// ответ содержит зафиксированное состояние заявки
			require.Equal(t, id, item.ID)
			require.Equal(t, models.PRStatusApproved, item.Status)
			require.NotNil(t, item.ApprovalDate)
		})
		t.Run("reject from "+string(from), func(t *testing.T) {
			env := newTestEnv()
			id := env.moveTo(t, from)
			require.NoError(t, transitionErr(env.handler.Reject(ctx, approver, id, "  нет бюджета  ")))
			require.Equal(t, models.PRStatusRejected, env.db.status(id))
			require.Nil(t, env.db.requests[id].ApprovalDate)
			history := env.db.historyFor(id)
			require.Equal(t, "нет бюджета", history[len(history)-1].Comment)
		})
	}

	for _, from := range []models.PRStatus{models.PRStatusClarificationNeeded, models.PRStatusApproved, models.PRStatusRejected, models.PRStatusWithdrawn} {
		t.Run("invalid from "+string(from), func(t *testing.T) {
			env := newTestEnv()
			id := env.moveTo(t, from)
			historyLen := len(env.db.historyFor(id))
			require.ErrorIs(t, transitionErr(env.handler.Approve(ctx, approver, id)), models.ErrInvalidTransition)
			require.ErrorIs(t, transitionErr(env.handler.Reject(ctx, approver, id, "")), models.ErrInvalidTransition)
			require.Equal(t, from, env.db.status(id))
			require.Len(t, env.db.historyFor(id), historyLen)
		})
	}

	t.Run("non approver is forbidden", func(t *testing.T) {
		env := newTestEnv()
		id := env.create(t)
		require.ErrorIs(t, transitionErr(env.handler.Approve(ctx, requester, id)), models.ErrForbidden)
		require.ErrorIs(t, transitionErr(env.handler.Reject(ctx, colleague, id, "")), models.ErrForbidden)
		require.Equal(t, models.PRStatusPending, env.db.status(id))
		require.Empty(t, env.notifier.actions())
	})

	t.Run("approve with open clarification", func(t *testing.T) {
		env := newTestEnv()
		id := env.create(t)
		require.NoError(t, transitionErr(env.handler.RequestClarification(ctx, approver, id, "вопрос")))
		// ответ не получен, но согласовать из Clarification Needed нельзя
		require.ErrorIs(t, transitionErr(env.handler.Approve(ctx, approver, id)), models.ErrInvalidTransition)
	})
}

func TestRequestClarification(t *testing.T) {
	ctx := context.Background()

	t.Run("empty notes", func(t *testing.T) {
		env := newTestEnv()
		id := env.create(t)
		for _, notes := range []string{"", "   ", "\n\t"} {
			requireValidationError(t, transitionErr(env.handler.RequestClarification(ctx, approver, id, notes)))
			require.Equal(t, models.PRStatusPending, env.db.status(id))
		}
	})

	t.Run("terminal states", func(t *testing.T) {
		for _, from := range []models.PRStatus{models.PRStatusApproved, models.PRStatusRejected, models.PRStatusWithdrawn} {
			env := newTestEnv()
			id := env.moveTo(t, from)
			require.ErrorIs(t, transitionErr(env.handler.RequestClarification(ctx, approver, id, "вопрос")), models.ErrInvalidTransition)
		}
	})

	t.Run("new round overwrites notes and clears reply", func(t *testing.T) {
		env := newTestEnv()
		id := env.moveTo(t, models.PRStatusInReview)
		require.NoError(t, transitionErr(env.handler.RequestClarification(ctx, approver, id, "второй вопрос")))
		rec := env.db.requests[id]
		require.Equal(t, models.PRStatusClarificationNeeded, rec.Status)
		require.Equal(t, "второй вопрос", rec.ReviewerNotes)
		require.Empty(t, rec.RequesterReply)
		// прошлый ответ остался в истории
		history := env.db.historyFor(id)
		require.Equal(t, "ответ", history[2].Comment)
	})

	t.Run("forbidden for requester", func(t *testing.T) {
		env := newTestEnv()
		id := env.create(t)
		require.ErrorIs(t, transitionErr(env.handler.RequestClarification(ctx, requester, id, "вопрос")), models.ErrForbidden)
	})
}

func TestReply(t *testing.T) {
	ctx := context.Background()

	t.Run("only from clarification needed", func(t *testing.T) {
		for _, from := range []models.PRStatus{models.PRStatusPending, models.PRStatusInReview, models.PRStatusApproved, models.PRStatusRejected, models.PRStatusWithdrawn} {
			env := newTestEnv()
			id := env.moveTo(t, from)
			require.ErrorIs(t, transitionErr(env.handler.Reply(ctx, requester, id, "ответ")), models.ErrInvalidTransition, from)
			require.Equal(t, from, env.db.status(id))
		}
	})

	t.Run("empty reply", func(t *testing.T) {
		env := newTestEnv()
		id := env.moveTo(t, models.PRStatusClarificationNeeded)
		requireValidationError(t, transitionErr(env.handler.Reply(ctx, requester, id, " ")))
		require.Equal(t, models.PRStatusClarificationNeeded, env.db.status(id))
	})

	t.Run("empty reply on closed request", func(t *testing.T) {
		for _, from := range []models.PRStatus{models.PRStatusApproved, models.PRStatusRejected, models.PRStatusWithdrawn} {
			env := newTestEnv()
			id := env.moveTo(t, from)
			err := transitionErr(env.handler.Reply(ctx, requester, id, "   "))
			require.ErrorIs(t, err, models.ErrInvalidTransition, from)
			require.False(t, models.IsValidationError(err), from)
			require.Equal(t, from, env.db.status(id))
		}
	})

	t.Run("only requester", func(t *testing.T) {
		env := newTestEnv()
		id := env.moveTo(t, models.PRStatusClarificationNeeded)
		require.ErrorIs(t, transitionErr(env.handler.Reply(ctx, approver, id, "ответ")), models.ErrForbidden)
		require.ErrorIs(t, transitionErr(env.handler.Reply(ctx, colleague, id, "ответ")), models.ErrForbidden)
	})

	t.Run("reply keeps notes and lands in review", func(t *testing.T) {
		env := newTestEnv()
		id := env.moveTo(t, models.PRStatusClarificationNeeded)
		require.NoError(t, transitionErr(env.handler.Reply(ctx, requester, id, "ответ")))
		rec := env.db.requests[id]
		require.Equal(t, models.PRStatusInReview, rec.Status)
		require.NotEmpty(t, rec.ReviewerNotes)
		require.NotEmpty(t, rec.RequesterReply)
		require.Nil(t, rec.ApprovalDate)
	})
}

func TestWithdraw(t *testing.T) {
	ctx := context.Background()

	for _, from := range []models.PRStatus{models.PRStatusPending, models.PRStatusInReview, models.PRStatusClarificationNeeded} {
		t.Run("withdraw from "+string(from), func(t *testing.T) {
			env := newTestEnv()
			id := env.moveTo(t, from)
			require.NoError(t, transitionErr(env.handler.Withdraw(ctx, requester, id)))
			require.Equal(t, models.PRStatusWithdrawn, env.db.status(id))
		})
	}

	t.Run("second withdraw", func(t *testing.T) {
		env := newTestEnv()
		id := env.create(t)
		require.NoError(t, transitionErr(env.handler.Withdraw(ctx, requester, id)))
		require.ErrorIs(t, transitionErr(env.handler.Withdraw(ctx, requester, id)), models.ErrInvalidTransition)
		require.Equal(t, models.PRStatusWithdrawn, env.db.status(id))
	})

	t.Run("approved cannot be withdrawn", func(t *testing.T) {
		env := newTestEnv()
		id := env.moveTo(t, models.PRStatusApproved)
		require.ErrorIs(t, transitionErr(env.handler.Withdraw(ctx, requester, id)), models.ErrInvalidTransition)
		require.Equal(t, models.PRStatusApproved, env.db.status(id))
	})

	t.Run("only requester", func(t *testing.T) {
		env := newTestEnv()
		id := env.create(t)
		require.ErrorIs(t, transitionErr(env.handler.Withdraw(ctx, approver, id)), models.ErrForbidden)
		require.ErrorIs(t, transitionErr(env.handler.Withdraw(ctx, colleague, id)), models.ErrForbidden)
		require.Equal(t, models.PRStatusPending, env.db.status(id))
	})
}

func TestEdit(t *testing.T) {
	ctx := context.Background()

	t.Run("pending request changes are recorded", func(t *testing.T) {
		env := newTestEnv()
		id := env.create(t)
		data := laptops()
		data.Title = "Laptops x10"
		data.Cost = decimal.NewFromInt(6000)
		data.Vendor = purchaseapimodels.VendorRef{VendorID: "v-1"}
		item, err := env.handler.Edit(ctx, requester, id, data)
		require.NoError(t, err)
		require.Equal(t, "Laptops x10", item.Title)

		rec := env.db.requests[id]
		require.Equal(t, models.PRStatusPending, rec.Status)
		require.Equal(t, "Laptops x10", rec.Title)
		require.True(t, rec.Cost.Equal(decimal.NewFromInt(6000)))
		require.Equal(t, "v-1", *rec.VendorID)

		history := env.db.historyFor(id)
		last := history[len(history)-1]
		require.Equal(t, models.PRActionEdit, last.Action)
		fields := []string{}
		for _, change := range last.Changes.Data().Data {
			fields = append(fields, change.Field)
		}
		require.ElementsMatch(t, []string{"title", "cost", "vendor"}, fields)
		require.Empty(t, env.notifier.actions())
	})

	t.Run("switch vendor form clears the other", func(t *testing.T) {
		env := newTestEnv()
		data := laptops()
		data.Vendor = purchaseapimodels.VendorRef{VendorID: "v-1"}
		id, err := env.handler.Create(ctx, requester, data)
		require.NoError(t, err)
		data.Vendor = purchaseapimodels.VendorRef{Proposed: &purchaseapimodels.ProposedVendorData{VendorName: "Lenovo"}}
		require.NoError(t, transitionErr(env.handler.Edit(ctx, requester, id, data)))
		rec := env.db.requests[id]
		require.Nil(t, rec.VendorID)
		require.Equal(t, models.VendorRefProposed, rec.VendorRefType)
		require.Equal(t, "Lenovo", rec.ProposedVendor.VendorName)
	})

	t.Run("not pending", func(t *testing.T) {
		for _, from := range []models.PRStatus{models.PRStatusInReview, models.PRStatusClarificationNeeded, models.PRStatusApproved, models.PRStatusWithdrawn} {
			env := newTestEnv()
			id := env.moveTo(t, from)
			require.ErrorIs(t, transitionErr(env.handler.Edit(ctx, requester, id, laptops())), models.ErrInvalidTransition, from)
		}
	})

	t.Run("foreign request", func(t *testing.T) {
		env := newTestEnv()
		id := env.create(t)
		require.ErrorIs(t, transitionErr(env.handler.Edit(ctx, approver, id, laptops())), models.ErrForbidden)
	})

	t.Run("invalid data", func(t *testing.T) {
		env := newTestEnv()
		id := env.create(t)
		data := laptops()
		data.Department = ""
		requireValidationError(t, transitionErr(env.handler.Edit(ctx, requester, id, data)))
		require.Equal(t, "IT", env.db.requests[id].Department)
	})
}

func TestCheckOrder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	t.Run("not found first", func(t *testing.T) {
		require.ErrorIs(t, transitionErr(env.handler.Approve(ctx, requester, "unknown")), models.ErrNotFound)
		require.ErrorIs(t, transitionErr(env.handler.Reply(ctx, approver, "unknown", "")), models.ErrNotFound)
		_, err := env.handler.GetByID(requester, "unknown")
		require.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("forbidden before validation", func(t *testing.T) {
		id := env.create(t)
		require.ErrorIs(t, transitionErr(env.handler.RequestClarification(ctx, requester, id, "")), models.ErrForbidden)
	})

	t.Run("validation before transition", func(t *testing.T) {
		id := env.moveTo(t, models.PRStatusApproved)
		requireValidationError(t, transitionErr(env.handler.RequestClarification(ctx, approver, id, "")))
	})

	t.Run("reply and edit check status before input", func(t *testing.T) {
		id := env.moveTo(t, models.PRStatusApproved)
		require.ErrorIs(t, transitionErr(env.handler.Reply(ctx, requester, id, "")), models.ErrInvalidTransition)
		data := laptops()
		data.Title = ""
		require.ErrorIs(t, transitionErr(env.handler.Edit(ctx, requester, id, data)), models.ErrInvalidTransition)
	})
}

func TestConcurrentApproveWithdraw(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	for n := 0; n < 20; n++ {
		id := env.create(t)
		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			errs[0] = transitionErr(env.handler.Approve(ctx, approver, id))
		}()
		go func() {
			defer wg.Done()
			errs[1] = transitionErr(env.handler.Withdraw(ctx, requester, id))
		}()
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			require.ErrorIs(t, err, models.ErrInvalidTransition)
		}
		require.Equal(t, 1, succeeded)
		status := env.db.status(id)
		require.Contains(t, []models.PRStatus{models.PRStatusApproved, models.PRStatusWithdrawn}, status)
		require.Len(t, env.db.historyFor(id), 2)
	}
}

func TestStaleStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("status changed between read and write", func(t *testing.T) {
		env := newTestEnv()
		id := env.create(t)
		env.db.beforeTx = func() {
			env.db.mu.Lock()
			defer env.db.mu.Unlock()
			rec := env.db.requests[id]
			rec.Status = models.PRStatusWithdrawn
			env.db.requests[id] = rec
		}
		err := transitionErr(env.handler.Approve(ctx, approver, id))
		require.ErrorIs(t, err, models.ErrInvalidTransition)
		require.Equal(t, models.PRStatusWithdrawn, env.db.status(id))
		require.Nil(t, env.db.requests[id].ApprovalDate)
		require.Len(t, env.db.historyFor(id), 1)
		require.Empty(t, env.notifier.actions())
	})

	t.Run("history failure rolls back status", func(t *testing.T) {
		env := newTestEnv()
		id := env.create(t)
		env.db.historyErr = errors.New("db is down")
		err := transitionErr(env.handler.Approve(ctx, approver, id))
		require.Error(t, err)
		require.False(t, errors.Is(err, models.ErrInvalidTransition))
		require.Equal(t, models.PRStatusPending, env.db.status(id))
		require.Nil(t, env.db.requests[id].ApprovalDate)
	})
}

func TestVisibility(t *testing.T) {
	env := newTestEnv()
	own := env.create(t)
	foreign, err := env.handler.Create(context.Background(), colleague, laptops())
	require.NoError(t, err)

	t.Run("employee sees only own requests", func(t *testing.T) {
		list, rowCount, err := env.handler.List(requester, purchaseapimodels.PrFilter{})
		require.NoError(t, err)
		require.EqualValues(t, 1, rowCount)
		require.Equal(t, own, list[0].ID)

		// чужой фильтр по автору игнорируется
		list, _, err = env.handler.List(requester, purchaseapimodels.PrFilter{RequesterID: colleague.ID})
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, own, list[0].ID)

		_, err = env.handler.GetByID(requester, foreign)
		require.ErrorIs(t, err, models.ErrForbidden)
		_, err = env.handler.History(requester, foreign)
		require.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("approver sees all", func(t *testing.T) {
		_, rowCount, err := env.handler.List(approver, purchaseapimodels.PrFilter{})
		require.NoError(t, err)
		require.EqualValues(t, 2, rowCount)

		list, err := env.handler.ListForExport(admin, purchaseapimodels.PrFilter{RequesterID: colleague.ID}, 10)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, foreign, list[0].ID)
	})

	t.Run("invalid filter", func(t *testing.T) {
		_, _, err := env.handler.List(approver, purchaseapimodels.PrFilter{Status: "Draft"})
		requireValidationError(t, err)
		from := decimal.NewFromInt(10)
		to := decimal.NewFromInt(1)
		_, _, err = env.handler.List(approver, purchaseapimodels.PrFilter{CostFrom: &from, CostTo: &to})
		requireValidationError(t, err)
	})

	t.Run("page out of range", func(t *testing.T) {
		filter := purchaseapimodels.PrFilter{}
		filter.Page = 5
		list, rowCount, err := env.handler.List(approver, filter)
		require.NoError(t, err)
		require.EqualValues(t, 2, rowCount)
		require.Empty(t, list)
	})
}

func TestAttach(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	id := env.create(t)

	require.NoError(t, env.handler.CheckAttach(requester, id))
	require.ErrorIs(t, env.handler.CheckAttach(approver, id), models.ErrForbidden)
	require.ErrorIs(t, env.handler.CheckAttach(requester, "unknown"), models.ErrNotFound)

	attachmentID, err := env.handler.Attach(ctx, requester, id, dbmodels.Attachment{Name: "quote.pdf", Size: 100})
	require.NoError(t, err)
	item, err := env.handler.GetByID(requester, id)
	require.NoError(t, err)
	require.Len(t, item.Attachments, 1)
	require.Equal(t, attachmentID, item.Attachments[0].ID)
	require.Equal(t, requester.Name, item.Attachments[0].UploaderName)
	require.Equal(t, models.PRStatusPending, item.Status)

	require.NoError(t, transitionErr(env.handler.RequestClarification(ctx, approver, id, "вопрос")))
	require.ErrorIs(t, env.handler.CheckAttach(requester, id), models.ErrInvalidTransition)
	_, err = env.handler.Attach(ctx, requester, id, dbmodels.Attachment{Name: "late.pdf"})
	require.ErrorIs(t, err, models.ErrInvalidTransition)
	require.Len(t, env.db.attachments, 1)
}

func TestStatusAlwaysDefined(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	rnd := rand.New(rand.NewSource(1))
	actors := []models.Actor{requester, colleague, approver, admin}
	texts := []string{"", "  ", "текст"}
	for n := 0; n < 10; n++ {
		id := env.create(t)
		for step := 0; step < 30; step++ {
			actor := actors[rnd.Intn(len(actors))]
			text := texts[rnd.Intn(len(texts))]
			var err error
			switch rnd.Intn(6) {
			case 0:
				err = transitionErr(env.handler.Approve(ctx, actor, id))
			case 1:
				err = transitionErr(env.handler.Reject(ctx, actor, id, text))
			case 2:
				err = transitionErr(env.handler.RequestClarification(ctx, actor, id, text))
			case 3:
				err = transitionErr(env.handler.Reply(ctx, actor, id, text))
			case 4:
				err = transitionErr(env.handler.Withdraw(ctx, actor, id))
			case 5:
				err = transitionErr(env.handler.Edit(ctx, actor, id, laptops()))
			}
			if err != nil {
				require.True(t,
					errors.Is(err, models.ErrForbidden) || errors.Is(err, models.ErrInvalidTransition) || models.IsValidationError(err),
					err.Error())
			}
			status := env.db.status(id)
			require.NoError(t, status.Validate())
			if status.IsTerminal() {
				require.Empty(t, status.AllowedActions())
			}
		}
	}
}
