package hotel

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vcto/hotel-mcp/internal/api"
	"github.com/vcto/hotel-mcp/internal/auth"
	"github.com/vcto/hotel-mcp/internal/testutil"
)

func newTestService(t *testing.T, fake *testutil.FakeAPI, opts ...api.Option) (*Service, *auth.MemoryStore) {
	t.Helper()
	store := auth.NewMemoryStore()
	c := api.New(fake.URL(), append([]api.Option{api.WithStore(store)}, opts...)...)
	return NewService(c), store
}

func TestLogin(t *testing.T) {
	testutil.RunScenarios(t, []testutil.Scenario{
		{
			Name:     "StoresPairAndAuthenticatesLaterCalls",
			Behavior: "A successful login stores both tokens and later calls carry the access token",
			Test: func(t *testing.T) {
				fake := testutil.NewFakeAPI(t)
				svc, store := newTestService(t, fake)
				ctx := context.Background()

				testutil.When(t, "logging in with valid credentials")
				resp, err := svc.Login(ctx, LoginRequest{Email: testutil.FakeEmail, Password: testutil.FakePassword})
				require.NoError(t, err)
				assert.Nil(t, resp.User, "the login endpoint answers with a bare pair")

				testutil.Then(t, "the pair is stored")
				stored, err := store.Get(ctx)
				require.NoError(t, err)
				assert.True(t, stored.Complete())
				assert.Equal(t, resp.Tokens.AccessToken, stored.AccessToken)

				testutil.Then(t, "the profile request is authenticated")
				user, err := svc.CurrentUser(ctx)
				require.NoError(t, err)
				assert.Equal(t, "OWNER", user.Role)

				reqs := fake.RequestsTo(http.MethodGet, "/users/me")
				require.Len(t, reqs, 1)
				assert.Equal(t, "Bearer "+stored.AccessToken, reqs[0].Authorization)
			},
		},
		{
			Name:     "RejectsWrongPassword",
			Behavior: "Bad credentials surface the API detail and store nothing",
			Test: func(t *testing.T) {
				fake := testutil.NewFakeAPI(t)
				svc, store := newTestService(t, fake)
				ctx := context.Background()

				_, err := svc.Login(ctx, LoginRequest{Email: testutil.FakeEmail, Password: "wrong"})
				require.Error(t, err)

				var apiErr *api.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
				assert.Equal(t, "Incorrect email or password", apiErr.Detail)

				stored, err := store.Get(ctx)
				require.NoError(t, err)
				assert.True(t, stored.Empty())
			},
		},
		{
			Name:     "RejectsIncompletePair",
			Behavior: "A response missing the refresh token is an error and is not stored",
			Test: func(t *testing.T) {
				fake := testutil.NewFakeAPI(t)
				fake.Handle(http.MethodPost, "/auth/login", func(w http.ResponseWriter, r *http.Request) {
					testutil.WriteJSON(w, http.StatusOK, map[string]string{"access_token": "only-access"})
				})
				svc, store := newTestService(t, fake)
				ctx := context.Background()

				_, err := svc.Login(ctx, LoginRequest{Email: testutil.FakeEmail, Password: testutil.FakePassword})
				assert.ErrorIs(t, err, auth.ErrIncompletePair)

				stored, err := store.Get(ctx)
				require.NoError(t, err)
				assert.True(t, stored.Empty())
			},
		},
	})
}

func TestSignup_StoresNestedTokens(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	svc, store := newTestService(t, fake)
	ctx := context.Background()

	resp, err := svc.Signup(ctx, SignupRequest{
		Email:     "owner@harbour.test",
		Password:  "s3cret-pass",
		Name:      "Harbour Owner",
		HotelName: "Harbour Inn",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.Equal(t, "owner@harbour.test", resp.User.Email)

	stored, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, resp.Tokens.AccessToken, stored.AccessToken)
	assert.Equal(t, resp.Tokens.RefreshToken, stored.RefreshToken)

	var body map[string]string
	reqs := fake.RequestsTo(http.MethodPost, "/auth/signup")
	require.Len(t, reqs, 1)
	require.NoError(t, json.Unmarshal(reqs[0].Body, &body))
	assert.Equal(t, "Harbour Inn", body["hotel_name"])
}

func TestSignup_SurfacesFieldErrors(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	svc, _ := newTestService(t, fake)

	_, err := svc.Signup(context.Background(), SignupRequest{Email: testutil.FakeEmail, Password: "x"})

	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "email_taken", apiErr.Code)
	assert.Equal(t, "email", apiErr.Field)
}

func TestLogout_ClearsTokens_Even_When_APICallFails(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.Handle(http.MethodPost, "/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteDetail(w, http.StatusInternalServerError, "boom")
	})
	svc, store := newTestService(t, fake)
	ctx := context.Background()

	access, refresh := fake.IssuePair()
	require.NoError(t, store.SetPair(ctx, auth.Pair{AccessToken: access, RefreshToken: refresh}))

	err := svc.Logout(ctx)
	assert.Error(t, err)

	stored, err := store.Get(ctx)
	require.NoError(t, err)
	assert.True(t, stored.Empty())
}

func TestPasswordFlows(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	svc, store := newTestService(t, fake)
	ctx := context.Background()

	msg, err := svc.ForgotPassword(ctx, testutil.FakeEmail)
	require.NoError(t, err)
	assert.NotEmpty(t, msg.Message)

	_, err = svc.ResetPassword(ctx, "reset-token", "n3w-password")
	require.NoError(t, err)

	var body map[string]string
	reqs := fake.RequestsTo(http.MethodPost, "/auth/reset-password")
	require.Len(t, reqs, 1)
	require.NoError(t, json.Unmarshal(reqs[0].Body, &body))
	assert.Equal(t, map[string]string{"token": "reset-token", "new_password": "n3w-password"}, body)

	access, refresh := fake.IssuePair()
	require.NoError(t, store.SetPair(ctx, auth.Pair{AccessToken: access, RefreshToken: refresh}))
	msg, err = svc.ChangePassword(ctx, testutil.FakePassword, "n3w-password")
	require.NoError(t, err)
	assert.Equal(t, "Password changed", msg.Message)
}

func TestDecodeAuthResponse_PrefersNestedTokens(t *testing.T) {
	raw := json.RawMessage(`{
		"access_token": "flat-a", "refresh_token": "flat-r",
		"user": {"id": "u1", "email": "a@b.test"},
		"tokens": {"access_token": "nested-a", "refresh_token": "nested-r"}
	}`)

	resp, err := decodeAuthResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "nested-a", resp.Tokens.AccessToken)
	assert.Equal(t, "u1", resp.User.ID)
}
