package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldquest/engine/api"
	"github.com/fieldquest/engine/app"
	"github.com/fieldquest/engine/jobs"
	"github.com/fieldquest/engine/persist/memory"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	engine := app.New(memory.New(), nil)
	srv := httptest.NewServer(api.NewRouter(api.NewHandler(engine)))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func createJob(t *testing.T, srv *httptest.Server, req map[string]any) jobs.Job {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/jobs", req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var job jobs.Job
	decode(t, resp, &job)
	return job
}

func jobPayload() map[string]any {
	return map[string]any{
		"title":     "Replace condenser fan",
		"client":    "Hilltop Dental",
		"laborCost": "100",
		"partsCost": "50",
	}
}

// =============================================================================
// JOBS
// =============================================================================

func TestCreateJob_ReturnsDerivedFields(t *testing.T) {
	// GIVEN: a job payload with string-encoded money
	// WHEN: POSTing it
	// THEN: 201 with server-derived number, status, reward, totalCost

	srv := newServer(t)
	job := createJob(t, srv, jobPayload())

	assert.Equal(t, "JOB-0001", job.JobNumber)
	assert.Equal(t, "pending", string(job.Status))
	assert.Equal(t, int64(75), job.XPReward)
	assert.Equal(t, "150", job.TotalCost.String())
	assert.NotNil(t, job.Photos)
}

func TestCreateJob_ValidationIs400(t *testing.T) {
	srv := newServer(t)
	payload := jobPayload()
	payload["laborCost"] = "0"

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/jobs", payload)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListJobs_FilterAndCounts(t *testing.T) {
	srv := newServer(t)
	createJob(t, srv, jobPayload())
	done := createJob(t, srv, jobPayload())

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/jobs/"+string(done.ID)+"/complete", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var list api.JobListDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/jobs?status=completed", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &list)

	assert.Len(t, list.Jobs, 1)
	assert.Equal(t, 2, list.Counts.All)
	assert.Equal(t, 1, list.Counts.Completed)
}

func TestGetJob_UnknownIs404(t *testing.T) {
	srv := newServer(t)
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/jobs/nope", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateJob_PatchRecomputesTotal(t *testing.T) {
	srv := newServer(t)
	job := createJob(t, srv, jobPayload())

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/jobs/"+string(job.ID),
		map[string]any{"laborCost": "300"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated jobs.Job
	decode(t, resp, &updated)
	assert.Equal(t, "350", updated.TotalCost.String())
}

func TestDeleteJob_Is204(t *testing.T) {
	srv := newServer(t)
	job := createJob(t, srv, jobPayload())

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/jobs/"+string(job.ID), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/jobs/"+string(job.ID), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCompleteJob_TwiceIs409(t *testing.T) {
	srv := newServer(t)
	job := createJob(t, srv, jobPayload())
	url := srv.URL + "/api/jobs/" + string(job.ID) + "/complete"

	resp := doJSON(t, http.MethodPost, url, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, url, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

// =============================================================================
// TIMER
// =============================================================================

func TestTimer_StartConflictIs409(t *testing.T) {
	// GIVEN: job A's timer running
	// WHEN: Starting job B's timer
	// THEN: 409; the timer still belongs to A

	srv := newServer(t)
	a := createJob(t, srv, jobPayload())
	b := createJob(t, srv, jobPayload())

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/timer/start",
		api.StartTimerRequest{JobID: a.ID})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/timer/start",
		api.StartTimerRequest{JobID: b.ID})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var dto api.TimerDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/timer", nil)
	decode(t, resp, &dto)
	require.NotNil(t, dto.JobID)
	assert.Equal(t, a.ID, *dto.JobID)
	assert.Equal(t, "running", dto.State)
}

func TestTimer_PauseAndStop(t *testing.T) {
	srv := newServer(t)
	job := createJob(t, srv, jobPayload())

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/timer/start",
		api.StartTimerRequest{JobID: job.ID})
	resp.Body.Close()

	var dto api.TimerDTO
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/timer/pause", nil)
	decode(t, resp, &dto)
	assert.Equal(t, "paused", dto.State)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/timer/stop", nil)
	decode(t, resp, &dto)
	assert.Equal(t, "idle", dto.State)
	assert.Nil(t, dto.JobID)
}

func TestTimer_StopWithoutTimerIsOK(t *testing.T) {
	srv := newServer(t)
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/timer/stop", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// =============================================================================
// SETUP AND EARNINGS
// =============================================================================

func completeSetup(t *testing.T, srv *httptest.Server) {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/user", api.CreateUserRequest{
		Name: "Alex", Email: "alex@example.com",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/setup", map[string]any{
		"tradeId":  "hvac",
		"planType": "commission",
		"goals": map[string]any{
			"jobsPerDay":    4,
			"hoursPerDay":   "8",
			"revenuePerDay": "600",
			"xpPerDay":      300,
		},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSetup_TradePresetFlow(t *testing.T) {
	// GIVEN: a fresh profile
	// WHEN: Completing setup from the hvac preset
	// THEN: company settings exist with the preset's numbers

	srv := newServer(t)
	completeSetup(t, srv)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/settings/company", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var company map[string]any
	decode(t, resp, &company)
	assert.Equal(t, "commission", company["type"])
	assert.Equal(t, "48", fmt.Sprint(company["baseHourlyRate"]))
}

func TestSetup_WithoutProfileIs404(t *testing.T) {
	srv := newServer(t)
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/setup", map[string]any{
		"tradeId": "hvac", "planType": "hourly",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSetup_UnknownTradeIs400(t *testing.T) {
	srv := newServer(t)
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/user", api.CreateUserRequest{Name: "Alex"})
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/setup", map[string]any{"tradeId": "locksmith"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEarnings_ReflectsCompletions(t *testing.T) {
	// GIVEN: a commission plan (hvac preset: serviceCalls 15%, parts 12%)
	//        and one completed emergency job (labor 100, raw parts 50,
	//        35% markup → stored parts 67.5)
	// WHEN: Reading earnings
	// THEN: 15 + 8.10 + 50 = 73.10

	srv := newServer(t)
	completeSetup(t, srv)

	payload := jobPayload()
	payload["callType"] = "emergency"
	job := createJob(t, srv, payload)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/jobs/"+string(job.ID)+"/complete", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dto api.EarningsDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/earnings", nil)
	decode(t, resp, &dto)

	assert.Equal(t, "73.1", dto.Amount.String())
	assert.Equal(t, "Commission Earned", dto.Label)
	assert.Equal(t, int64(1), dto.Data.EmergencyJobs)
	assert.Equal(t, 1, dto.Today.JobsCompleted)
}

func TestGoalProgress_Endpoint(t *testing.T) {
	srv := newServer(t)
	completeSetup(t, srv)

	job := createJob(t, srv, jobPayload())
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/jobs/"+string(job.ID)+"/complete", nil)
	resp.Body.Close()

	var dto api.GoalProgressDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/goals/progress", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &dto)

	assert.Equal(t, 1, dto.Today.JobsCompleted)
	assert.Equal(t, "0.25", dto.Ratios.Jobs.String())
}

func TestUser_XPAfterCompletion(t *testing.T) {
	srv := newServer(t)
	completeSetup(t, srv)

	job := createJob(t, srv, jobPayload())
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/jobs/"+string(job.ID)+"/complete", nil)
	resp.Body.Close()

	var user api.UserDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/user", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &user)

	assert.Equal(t, int64(75), user.TotalXP)
	assert.Equal(t, int64(925), user.XPToNextLevel)
}

func TestUser_MissingIs404(t *testing.T) {
	srv := newServer(t)
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/user", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// TRADES, SETTINGS, RESET
// =============================================================================

func TestListTrades_ReturnsCatalog(t *testing.T) {
	srv := newServer(t)
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/trades", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var trades []map[string]any
	decode(t, resp, &trades)
	assert.Len(t, trades, 4)
}

func TestSettings_RoundTrip(t *testing.T) {
	srv := newServer(t)

	var settings map[string]any
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/settings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &settings)

	notif := settings["notifications"].(map[string]any)
	notif["enabled"] = false

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/settings", settings)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/settings", nil)
	decode(t, resp, &settings)
	assert.Equal(t, false, settings["notifications"].(map[string]any)["enabled"])
}

func TestReset_WipesEverything(t *testing.T) {
	srv := newServer(t)
	completeSetup(t, srv)
	createJob(t, srv, jobPayload())

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/reset", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/user", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var list api.JobListDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/jobs", nil)
	decode(t, resp, &list)
	assert.Empty(t, list.Jobs)
}
