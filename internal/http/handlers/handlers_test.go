package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrkot/internal/domain"
	"qrkot/internal/middleware"
	"qrkot/internal/service"
)

type fakeCharity struct {
	projects  []domain.Project
	donations []domain.Donation
	err       error

	gotProjectCreate service.ProjectCreate
	gotUpdateID      string
	gotUpdate        service.ProjectUpdate
	gotDeleteID      string
	gotUserID        string
	gotDonation      service.DonationCreate
}

func (f *fakeCharity) ListProjects(context.Context) ([]domain.Project, error) {
	return f.projects, f.err
}

func (f *fakeCharity) CreateProject(_ context.Context, in service.ProjectCreate) (domain.Project, error) {
	f.gotProjectCreate = in
	if f.err != nil {
		return domain.Project{}, f.err
	}
	return f.projects[0], nil
}

func (f *fakeCharity) UpdateProject(_ context.Context, id string, in service.ProjectUpdate) (domain.Project, error) {
	f.gotUpdateID, f.gotUpdate = id, in
	if f.err != nil {
		return domain.Project{}, f.err
	}
	return f.projects[0], nil
}

func (f *fakeCharity) DeleteProject(_ context.Context, id string) (domain.Project, error) {
	f.gotDeleteID = id
	if f.err != nil {
		return domain.Project{}, f.err
	}
	return f.projects[0], nil
}

func (f *fakeCharity) CreateDonation(_ context.Context, userID string, in service.DonationCreate) (domain.Donation, error) {
	f.gotUserID, f.gotDonation = userID, in
	if f.err != nil {
		return domain.Donation{}, f.err
	}
	return f.donations[0], nil
}

func (f *fakeCharity) ListDonations(context.Context) ([]domain.Donation, error) {
	return f.donations, f.err
}

func (f *fakeCharity) ListUserDonations(_ context.Context, userID string) ([]domain.Donation, error) {
	f.gotUserID = userID
	return f.donations, f.err
}

var created = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleProject() domain.Project {
	p := domain.Project{Allocatable: domain.NewAllocatable("0190f3a1-7c1e-7000-8000-000000000001", 1000, created), Name: "Shelter", Description: "Roof repair"}
	p.AllocatedAmount = 250
	return p
}

func sampleDonation() domain.Donation {
	closedAt := created.Add(time.Hour)
	d := domain.Donation{Allocatable: domain.NewAllocatable("0190f3a1-7c1e-7000-8000-000000000002", 300, created), UserID: "user-1", Comment: "for the cats"}
	d.AllocatedAmount = 300
	d.Closed = true
	d.ClosedAt = &closedAt
	return d
}

func newRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req
}

func withUser(req *http.Request, userID string, superuser bool) *http.Request {
	return req.WithContext(middleware.ContextWithUserID(req.Context(), userID, superuser))
}

func withID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestProjectsList(t *testing.T) {
	fake := &fakeCharity{projects: []domain.Project{sampleProject()}}
	app := NewApp(fake, zerolog.Nop())

	rec := httptest.NewRecorder()
	app.ProjectsList(rec, newRequest(http.MethodGet, "/charity_project/", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]map[string]any](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "Shelter", items[0]["name"])
	assert.EqualValues(t, 1000, items[0]["full_amount"])
	assert.EqualValues(t, 250, items[0]["invested_amount"])
	assert.Equal(t, false, items[0]["fully_invested"])
	assert.Equal(t, "2024-03-01T12:00:00Z", items[0]["create_date"])
	assert.NotContains(t, items[0], "close_date")
}

func TestProjectsListEmptyIsArray(t *testing.T) {
	app := NewApp(&fakeCharity{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	app.ProjectsList(rec, newRequest(http.MethodGet, "/charity_project/", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestProjectsCreate(t *testing.T) {
	fake := &fakeCharity{projects: []domain.Project{sampleProject()}}
	app := NewApp(fake, zerolog.Nop())

	rec := httptest.NewRecorder()
	app.ProjectsCreate(rec, newRequest(http.MethodPost, "/charity_project/", `{"name":"Shelter","description":"Roof repair","full_amount":1000}`))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, service.ProjectCreate{Name: "Shelter", Description: "Roof repair", FullAmount: 1000}, fake.gotProjectCreate)
}

func TestProjectsCreateErrors(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		err    error
		status int
		code   string
	}{
		{name: "malformed", body: `{"name":`, status: http.StatusBadRequest, code: codeBadRequest},
		{name: "validation", body: `{}`, err: fmt.Errorf("%w: full_amount must be positive", domain.ErrValidation), status: http.StatusBadRequest, code: codeValidation},
		{name: "duplicate", body: `{}`, err: domain.ErrDuplicateName, status: http.StatusBadRequest, code: codeDuplicateName},
		{name: "internal", body: `{}`, err: fmt.Errorf("insert project: %w", domain.ErrInvalidState), status: http.StatusInternalServerError, code: codeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := NewApp(&fakeCharity{err: tc.err}, zerolog.Nop())

			rec := httptest.NewRecorder()
			app.ProjectsCreate(rec, newRequest(http.MethodPost, "/charity_project/", tc.body))

			assert.Equal(t, tc.status, rec.Code)
			body := decode[errorBody](t, rec)
			assert.Equal(t, tc.code, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestProjectsUpdate(t *testing.T) {
	fake := &fakeCharity{projects: []domain.Project{sampleProject()}}
	app := NewApp(fake, zerolog.Nop())

	rec := httptest.NewRecorder()
	req := withID(newRequest(http.MethodPatch, "/charity_project/abc", `{"full_amount":1200,"description":"New roof"}`), "abc")
	app.ProjectsUpdate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", fake.gotUpdateID)
	assert.Nil(t, fake.gotUpdate.Name)
	require.NotNil(t, fake.gotUpdate.Description)
	assert.Equal(t, "New roof", *fake.gotUpdate.Description)
	require.NotNil(t, fake.gotUpdate.FullAmount)
	assert.EqualValues(t, 1200, *fake.gotUpdate.FullAmount)
}

func TestProjectsUpdateNullNameIsForwardedAsEmpty(t *testing.T) {
	fake := &fakeCharity{err: fmt.Errorf("%w: name must not be empty", domain.ErrValidation)}
	app := NewApp(fake, zerolog.Nop())

	rec := httptest.NewRecorder()
	app.ProjectsUpdate(rec, withID(newRequest(http.MethodPatch, "/charity_project/abc", `{"name":null}`), "abc"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, fake.gotUpdate.Name)
	assert.Empty(t, *fake.gotUpdate.Name)
}

func TestProjectsUpdateRejects(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		err    error
		status int
		code   string
	}{
		{name: "unknown field", body: `{"invested_amount":5}`, status: http.StatusBadRequest, code: codeBadRequest},
		{name: "null amount", body: `{"full_amount":null}`, status: http.StatusBadRequest, code: codeValidation},
		{name: "closed", body: `{}`, err: domain.ErrProjectClosed, status: http.StatusBadRequest, code: codeProjectClosed},
		{name: "below invested", body: `{"full_amount":1}`, err: domain.ErrAmountBelowInvested, status: http.StatusBadRequest, code: codeBelowInvested},
		{name: "missing", body: `{}`, err: domain.ErrNotFound, status: http.StatusNotFound, code: codeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := NewApp(&fakeCharity{err: tc.err}, zerolog.Nop())

			rec := httptest.NewRecorder()
			app.ProjectsUpdate(rec, withID(newRequest(http.MethodPatch, "/charity_project/abc", tc.body), "abc"))

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, decode[errorBody](t, rec).Error.Code)
		})
	}
}

func TestProjectsDelete(t *testing.T) {
	fake := &fakeCharity{projects: []domain.Project{sampleProject()}}
	app := NewApp(fake, zerolog.Nop())

	rec := httptest.NewRecorder()
	app.ProjectsDelete(rec, withID(newRequest(http.MethodDelete, "/charity_project/abc", ""), "abc"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", fake.gotDeleteID)

	fake.err = domain.ErrAlreadyInvested
	rec = httptest.NewRecorder()
	app.ProjectsDelete(rec, withID(newRequest(http.MethodDelete, "/charity_project/abc", ""), "abc"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, codeAlreadyInvested, decode[errorBody](t, rec).Error.Code)
}

func TestDonationsCreate(t *testing.T) {
	fake := &fakeCharity{donations: []domain.Donation{sampleDonation()}}
	app := NewApp(fake, zerolog.Nop())

	rec := httptest.NewRecorder()
	req := withUser(newRequest(http.MethodPost, "/donation/", `{"full_amount":300,"comment":"for the cats"}`), "user-1", false)
	app.DonationsCreate(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "user-1", fake.gotUserID)
	assert.Equal(t, service.DonationCreate{FullAmount: 300, Comment: "for the cats"}, fake.gotDonation)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "for the cats", body["comment"])
	assert.NotContains(t, body, "invested_amount")
	assert.NotContains(t, body, "user_id")
}

func TestDonationsCreateRejectsUnknownField(t *testing.T) {
	app := NewApp(&fakeCharity{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	app.DonationsCreate(rec, withUser(newRequest(http.MethodPost, "/donation/", `{"full_amount":10,"user_id":"x"}`), "user-1", false))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDonationsListShowsAllocation(t *testing.T) {
	app := NewApp(&fakeCharity{donations: []domain.Donation{sampleDonation()}}, zerolog.Nop())

	rec := httptest.NewRecorder()
	app.DonationsList(rec, withUser(newRequest(http.MethodGet, "/donation/", ""), "admin", true))

	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]map[string]any](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "user-1", items[0]["user_id"])
	assert.EqualValues(t, 300, items[0]["invested_amount"])
	assert.Equal(t, true, items[0]["fully_invested"])
	assert.Equal(t, "2024-03-01T13:00:00Z", items[0]["close_date"])
}

func TestDonationsMine(t *testing.T) {
	fake := &fakeCharity{donations: []domain.Donation{sampleDonation()}}
	app := NewApp(fake, zerolog.Nop())

	rec := httptest.NewRecorder()
	app.DonationsMine(rec, withUser(newRequest(http.MethodGet, "/donation/my", ""), "user-1", false))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", fake.gotUserID)
	items := decode[[]map[string]any](t, rec)
	require.Len(t, items, 1)
	assert.ElementsMatch(t, []string{"id", "full_amount", "comment", "create_date"}, keys(items[0]))
}

func TestErrorMessagesAreLocalized(t *testing.T) {
	app := NewApp(&fakeCharity{err: domain.ErrNotFound}, zerolog.Nop())

	req := withID(newRequest(http.MethodDelete, "/charity_project/abc", ""), "abc")
	req = req.WithContext(context.WithValue(req.Context(), middleware.LocaleKey, middleware.LocaleRussian))
	rec := httptest.NewRecorder()
	app.ProjectsDelete(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, message(middleware.LocaleRussian, codeNotFound), decode[errorBody](t, rec).Error.Message)
	assert.NotEqual(t, message(middleware.LocaleEnglish, codeNotFound), message(middleware.LocaleRussian, codeNotFound))
}

func TestHealth(t *testing.T) {
	app := NewApp(&fakeCharity{}, zerolog.Nop())
	app.AppTitle = "QRKot"

	rec := httptest.NewRecorder()
	app.Health(rec, newRequest(http.MethodGet, "/v1/healthz", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","app":"QRKot"}`, rec.Body.String())
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
