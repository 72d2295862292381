package controllers_test

import (
	"context"
	"errors"
	"net/http"

	"curator/internal/config"
	"curator/internal/models"
	"curator/internal/routes"
	"curator/internal/store"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) EnsureSchema(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockStore) TableExists(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) Stats(ctx context.Context) (*store.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Stats), args.Error(1)
}

func (m *MockStore) List(ctx context.Context, filter store.ListFilter) ([]models.CurationRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CurationRecord), args.Error(1)
}

func (m *MockStore) InsertBatch(ctx context.Context, records []models.CurationRecord) error {
	return m.Called(ctx, records).Error(0)
}

func (m *MockStore) UpdateStatus(ctx context.Context, id uint, status models.Status) (int64, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) UpdateData(ctx context.Context, id uint, data datatypes.JSON) (int64, error) {
	args := m.Called(ctx, id, data)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) SyncImageStatus(ctx context.Context, id uint, status models.Status) store.SyncResult {
	return m.Called(ctx, id, status).Get(0).(store.SyncResult)
}

var _ = Describe("CurationController with a failing store", func() {
	var (
		st     *MockStore
		router *gin.Engine
	)

	BeforeEach(func() {
		st = new(MockStore)
		router = routes.SetupRouter(st, config.DefaultConfig(), zap.NewNop())
	})

	AfterEach(func() {
		st.AssertExpectations(GinkgoT())
	})

	It("returns the schema error from setup", func() {
		st.On("EnsureSchema", mock.Anything).Return(errors.New("disk I/O error")).Once()

		resp := serve(router, http.MethodPost, "/api/setup", "")

		Expect(resp.Code).To(Equal(http.StatusInternalServerError))
		Expect(resp.Body.String()).To(MatchJSON(`{"error":"disk I/O error"}`))
	})

	It("fails status when the connection is unusable", func() {
		st.On("TableExists", mock.Anything).Return(false, errors.New("database unreachable")).Once()

		resp := serve(router, http.MethodGet, "/api/status", "")

		Expect(resp.Code).To(Equal(http.StatusInternalServerError))
	})

	It("fails status when counting fails", func() {
		st.On("TableExists", mock.Anything).Return(true, nil).Once()
		st.On("Stats", mock.Anything).Return(nil, errors.New("count failed")).Once()

		resp := serve(router, http.MethodGet, "/api/status", "")

		Expect(resp.Code).To(Equal(http.StatusInternalServerError))
		Expect(resp.Body.String()).To(MatchJSON(`{"error":"count failed"}`))
	})

	It("passes the parsed filter to the store", func() {
		limit := 5
		expected := store.ListFilter{Status: "approved", Search: "haru", Limit: &limit}
		st.On("List", mock.Anything, expected).Return([]models.CurationRecord{}, nil).Once()

		resp := serve(router, http.MethodGet, "/api/images?status=approved&search=haru&limit=5", "")

		Expect(resp.Code).To(Equal(http.StatusOK))
		Expect(resp.Body.String()).To(MatchJSON(`[]`))
	})

	It("fails the list when the query fails", func() {
		st.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("no such table: curation_pool")).Once()

		resp := serve(router, http.MethodGet, "/api/images", "")

		Expect(resp.Code).To(Equal(http.StatusInternalServerError))
		Expect(resp.Body.String()).To(MatchJSON(`{"error":"no such table: curation_pool"}`))
	})

	It("fails the upload when the batch fails", func() {
		st.On("InsertBatch", mock.Anything, mock.MatchedBy(func(records []models.CurationRecord) bool {
			return len(records) == 2
		})).Return(errors.New("batch aborted")).Once()

		resp := serve(router, http.MethodPost, "/api/upload", `[{"original_filename":"a.png"},{"new_filename":"b.png"}]`)

		Expect(resp.Code).To(Equal(http.StatusInternalServerError))
		Expect(resp.Body.String()).To(MatchJSON(`{"error":"batch aborted"}`))
	})

	It("does not sync when the status update fails", func() {
		st.On("UpdateStatus", mock.Anything, uint(7), models.StatusApproved).Return(int64(0), errors.New("locked")).Once()

		resp := serve(router, http.MethodPut, "/api/images/7", `{"status":"approved"}`)

		Expect(resp.Code).To(Equal(http.StatusInternalServerError))
		st.AssertNotCalled(GinkgoT(), "SyncImageStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	It("swallows a failed sync", func() {
		st.On("UpdateStatus", mock.Anything, uint(7), models.StatusRejected).Return(int64(1), nil).Once()
		st.On("SyncImageStatus", mock.Anything, uint(7), models.StatusRejected).
			Return(store.SyncResult{Err: errors.New("no such column: status")}).Once()

		resp := serve(router, http.MethodPut, "/api/images/7", `{"status":"rejected"}`)

		Expect(resp.Code).To(Equal(http.StatusOK))
		Expect(resp.Body.String()).To(MatchJSON(`{"success":true,"message":"updated image 7"}`))
	})

	It("fails the data update when the store fails", func() {
		st.On("UpdateData", mock.Anything, uint(7), datatypes.JSON(`{"caption":"x"}`)).Return(int64(0), errors.New("readonly database")).Once()

		resp := serve(router, http.MethodPut, "/api/images/7", `{"data": {"caption": "x"}}`)

		Expect(resp.Code).To(Equal(http.StatusInternalServerError))
		st.AssertNotCalled(GinkgoT(), "SyncImageStatus", mock.Anything, mock.Anything, mock.Anything)
	})
})
