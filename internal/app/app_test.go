package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carrent/rental-backend/internal/app"
	"github.com/carrent/rental-backend/internal/auth"
	bookingHttp "github.com/carrent/rental-backend/internal/booking/http"
	carHttp "github.com/carrent/rental-backend/internal/car/http"
	"github.com/carrent/rental-backend/internal/config"
	"github.com/carrent/rental-backend/internal/notify"
	paymentHttp "github.com/carrent/rental-backend/internal/payment/http"
	"github.com/carrent/rental-backend/internal/pkg/storage"
	"github.com/carrent/rental-backend/internal/user"
	userHttp "github.com/carrent/rental-backend/internal/user/http"
)

type testEnv struct {
	router *gin.Engine
	pool   *pgxpool.Pool
	jwt    *auth.JWTManager
}

// newTestEnv wires the full container against TEST_DB_DSN. The schema in migrations/ must already be applied.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	_ = godotenv.Load("../../.env")
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	for _, q := range []string{
		"TRUNCATE TABLE public.refunds, public.payments, public.bookings, public.cars, public.files CASCADE",
		"TRUNCATE TABLE public.users CASCADE",
	} {
		_, err := pool.Exec(ctx, q)
		require.NoError(t, err)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	log, _ := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	gin.SetMode(gin.TestMode)
	c := app.NewContainer(app.Config{
		DBPool:                 pool,
		Redis:                  rdb,
		Notifier:               notify.NewLogNotifier(log),
		Storage:                store,
		Logger:                 log,
		JWTSecret:              "integration-secret",
		JWTTTL:                 30 * time.Minute,
		BcryptCost:             4,
		ExtensionPaymentWindow: 24 * time.Hour,
		Reset:                  config.DevelopmentResetProfile(),
	})

	return &testEnv{router: c.Router, pool: pool, jwt: c.JWTManager}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// seedUser inserts a user directly so back-office roles exist without going through the admin API.
func (e *testEnv) seedUser(t *testing.T, email string, role user.Role) (*user.User, string) {
	t.Helper()

	hash, err := auth.NewBcryptPasswordHasherWithCost(4).Hash("password123")
	require.NoError(t, err)

	repo := user.NewPgxRepository(e.pool)
	u := &user.User{Email: email, PasswordHash: hash, DisplayName: &email, Role: role, IsActive: true}
	require.NoError(t, repo.Create(context.Background(), u))

	saved, err := repo.GetByEmail(context.Background(), email)
	require.NoError(t, err)

	token, err := e.jwt.GenerateAccessToken(saved.ID)
	require.NoError(t, err)
	return saved, token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRentalFlow(t *testing.T) {
	env := newTestEnv(t)

	_, staffToken := env.seedUser(t, "staff@carrent.test", user.RoleStaff)

	// Customer signs up through the public API.
	w := env.do(t, http.MethodPost, "/v1/auth/register", map[string]string{
		"email":        "jane@carrent.test",
		"password":     "password123",
		"display_name": "Jane",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/v1/auth/login", map[string]string{
		"identifier": "jane@carrent.test",
		"password":   "password123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[userHttp.LoginResponse](t, w)
	customerToken := login.AccessToken

	var carID string
	t.Run("Staff adds a car", func(t *testing.T) {
		body := carHttp.CreateRequest{
			PlateNumber:  "ABC-1234",
			Brand:        "Toyota",
			Model:        "Vios",
			Year:         2022,
			Seats:        5,
			Transmission: "automatic",
			DailyRate:    1000,
		}

		wFail := env.do(t, http.MethodPost, "/v1/cars", body, customerToken)
		assert.Equal(t, http.StatusForbidden, wFail.Code)

		w := env.do(t, http.MethodPost, "/v1/cars", body, staffToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		carID = decode[carHttp.CarResponse](t, w).ID
	})

	start := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Hour)
	trip := func(from, to time.Time) map[string]any {
		return map[string]any{
			"car_id":          carID,
			"start_date":      from,
			"end_date":        to,
			"pickup_location": "Main branch",
		}
	}

	var bookingID string
	t.Run("Customer books for five days", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/v1/bookings", trip(start, start.Add(5*24*time.Hour)), customerToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		b := decode[bookingHttp.BookingResponse](t, w)
		assert.Equal(t, int64(5000), b.TotalAmount)
		assert.Equal(t, "pending", b.Status)
		bookingID = b.ID
	})

	t.Run("Overlapping booking is rejected", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/v1/bookings", trip(start.Add(24*time.Hour), start.Add(72*time.Hour)), customerToken)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Payment settles the balance", func(t *testing.T) {
		over := env.do(t, http.MethodPost, "/v1/payments", map[string]any{
			"booking_id":     bookingID,
			"amount":         6000,
			"payment_method": "cash",
		}, staffToken)
		assert.Equal(t, http.StatusBadRequest, over.Code)

		w := env.do(t, http.MethodPost, "/v1/payments", map[string]any{
			"booking_id":     bookingID,
			"amount":         5000,
			"payment_method": "cash",
		}, staffToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		resp := decode[paymentHttp.RecordPaymentResponse](t, w)
		assert.Equal(t, int64(0), resp.Ledger.Balance)
		assert.Equal(t, "Paid", resp.Ledger.PaymentStatus)
	})

	t.Run("Customer reads the ledger", func(t *testing.T) {
		w := env.do(t, http.MethodGet, fmt.Sprintf("/v1/bookings/%s/ledger", bookingID), nil, customerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		ledger := decode[paymentHttp.LedgerResponse](t, w)
		assert.Equal(t, int64(5000), ledger.TotalPaid)
		assert.Len(t, ledger.Payments, 1)
	})

	t.Run("Staff confirms and releases", func(t *testing.T) {
		w := env.do(t, http.MethodPost, fmt.Sprintf("/v1/bookings/%s/confirm", bookingID), nil, staffToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = env.do(t, http.MethodPost, fmt.Sprintf("/v1/bookings/%s/release", bookingID), nil, staffToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.True(t, decode[bookingHttp.BookingResponse](t, w).IsReleased)
	})
}
