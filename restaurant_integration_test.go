package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/dineflow/config"
	"github.com/yeremiapane/dineflow/database"
	"github.com/yeremiapane/dineflow/kds"
	"github.com/yeremiapane/dineflow/models"
	"github.com/yeremiapane/dineflow/repository"
	"github.com/yeremiapane/dineflow/router"
	"github.com/yeremiapane/dineflow/services"
	"github.com/yeremiapane/dineflow/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type apiClient struct {
	t     *testing.T
	base  string
	token string
}

func (a *apiClient) call(method, path string, body interface{}, out interface{}) int {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.base+path, &buf)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	var env apiResponse
	require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&env))
	if out != nil && len(env.Data) > 0 {
		require.NoError(a.t, json.Unmarshal(env.Data, out))
	}
	return resp.StatusCode
}

func readEvent(t *testing.T, conn *websocket.Conn) kds.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var msg kds.Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// TestEndToEndOrderFlow covers the main path:
// admin logs in and builds the menu, a guest orders, the kitchen display
// sees the order and every status change, finance picks up the revenue and
// a reconnecting display gets what it missed.
func TestEndToEndOrderFlow(t *testing.T) {
	cfg := &config.Config{
		JWTSecret:      "integration-secret",
		JWTTTL:         time.Hour,
		ReplayLimit:    500,
		QRBaseURL:      "https://order.example.com",
		QRSize:         128,
		CORSOrigins:    []string{"*"},
		AdminEmail:     "Admin@Example.com",
		AdminPassword:  "admin-password",
		RestaurantName: "DineFlow",
		Currency:       "Rp",
	}

	db, err := database.OpenMemory()
	require.NoError(t, err)
	require.NoError(t, database.Seed(db, database.SeedOptions{
		AdminEmail:     cfg.AdminEmail,
		AdminPassword:  cfg.AdminPassword,
		RestaurantName: cfg.RestaurantName,
		Currency:       cfg.Currency,
		QRBaseURL:      cfg.QRBaseURL,
	}))

	eventLog, err := kds.OpenEventLog("")
	require.NoError(t, err)
	defer eventLog.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := kds.NewHub(eventLog, cfg.ReplayLimit)
	go hub.Run(ctx)

	r := router.SetupRouter(router.Deps{
		Config:    cfg,
		DB:        db,
		Orders:    repository.NewGormOrderRepository(db),
		Hub:       hub,
		Tokens:    utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		Blacklist: utils.NewTokenBlacklist(),
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	guest := &apiClient{t: t, base: srv.URL}
	admin := &apiClient{t: t, base: srv.URL}

	// 1. login with the seeded admin
	var login struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	code := guest.call(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "admin@example.com",
		"password": "admin-password",
	}, &login)
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, models.RoleAdmin, login.User.Role)
	admin.token = login.Token

	// 2. build a small menu
	var category models.Category
	require.Equal(t, http.StatusCreated, admin.call(http.MethodPost, "/api/admin/categories",
		map[string]interface{}{"name": "Mains"}, &category))
	var rendang, teh models.Dish
	require.Equal(t, http.StatusCreated, admin.call(http.MethodPost, "/api/admin/dishes",
		map[string]interface{}{"category_id": category.ID, "name": "Rendang", "price": 32}, &rendang))
	require.Equal(t, http.StatusCreated, admin.call(http.MethodPost, "/api/admin/dishes",
		map[string]interface{}{"category_id": category.ID, "name": "Es Teh", "price": 15}, &teh))
	var table models.DiningTable
	require.Equal(t, http.StatusCreated, admin.call(http.MethodPost, "/api/admin/tables",
		map[string]interface{}{"code": "A1", "seats": 4, "active": true}, &table))
	assert.True(t, table.Active)

	// 3. kitchen display connects
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/kitchen?token=" + url.QueryEscape(admin.token)
	display, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer display.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	// 4. a guest orders from table A1; the client total is ignored
	var order models.Order
	code = guest.call(http.MethodPost, "/api/orders", map[string]interface{}{
		"table_id":     "A1",
		"total_amount": 5,
		"items": []map[string]interface{}{
			{"dish_id": rendang.ID, "quantity": 2},
			{"dish_id": teh.ID, "quantity": 1},
		},
	}, &order)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, 79.0, order.TotalAmount)
	assert.Equal(t, models.StatusPending, order.Status)

	created := readEvent(t, display)
	assert.Equal(t, kds.EventNewOrder, created.Type)
	assert.Equal(t, uint64(1), created.Seq)
	var payload models.Order
	require.NoError(t, json.Unmarshal(created.Payload, &payload))
	assert.Equal(t, order.ID, payload.ID)
	assert.Equal(t, 79.0, payload.TotalAmount)

	// 5. guests cannot move orders along
	statusPath := "/api/orders/" + strconv.FormatUint(uint64(order.ID), 10) + "/status"
	assert.Equal(t, http.StatusUnauthorized, guest.call(http.MethodPatch, statusPath, map[string]string{"status": "confirmed"}, nil))

	// 6. the kitchen walks the order to delivered
	for i, status := range []models.OrderStatus{
		models.StatusConfirmed,
		models.StatusPreparing,
		models.StatusReady,
		models.StatusDelivered,
	} {
		var updated models.Order
		require.Equal(t, http.StatusOK, admin.call(http.MethodPatch, statusPath, map[string]string{"status": string(status)}, &updated))
		assert.Equal(t, status, updated.Status)
		assert.Equal(t, uint(i+2), updated.Version)

		event := readEvent(t, display)
		assert.Equal(t, kds.EventOrderStatusUpdate, event.Type)
		assert.Equal(t, uint64(i+2), event.Seq)
		var change services.StatusChange
		require.NoError(t, json.Unmarshal(event.Payload, &change))
		assert.Equal(t, order.ID, change.OrderID)
		assert.Equal(t, status, change.Status)
	}

	// delivered is terminal
	assert.Equal(t, http.StatusBadRequest, admin.call(http.MethodPatch, statusPath, map[string]string{"status": "cancelled"}, nil))

	var delivered models.Order
	require.Equal(t, http.StatusOK, guest.call(http.MethodGet, "/api/orders/"+strconv.FormatUint(uint64(order.ID), 10), nil, &delivered))
	require.NotNil(t, delivered.PreparingAt)
	require.NotNil(t, delivered.ReadyAt)
	require.NotNil(t, delivered.DeliveredAt)
	assert.False(t, delivered.DeliveredAt.Before(*delivered.ReadyAt))
	assert.False(t, delivered.ReadyAt.Before(*delivered.PreparingAt))

	// 7. finance counts the delivered order
	from := url.QueryEscape(time.Now().Add(-time.Hour).Format(time.RFC3339))
	to := url.QueryEscape(time.Now().Add(time.Hour).Format(time.RFC3339))
	var summary services.FinanceSummary
	require.Equal(t, http.StatusOK, admin.call(http.MethodGet, "/api/admin/finance/summary?from="+from+"&to="+to, nil, &summary))
	assert.Equal(t, 79.0, summary.Revenue)
	assert.Equal(t, 1, summary.DeliveredCount)

	// 8. a display that saw seq 1 reconnects and gets the rest
	display.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)

	again, _, err := websocket.DefaultDialer.Dial(wsURL+"&since=1", nil)
	require.NoError(t, err)
	defer again.Close()
	var replayed []uint64
	for i := 0; i < 4; i++ {
		replayed = append(replayed, readEvent(t, again).Seq)
	}
	assert.Equal(t, []uint64{2, 3, 4, 5}, replayed)

	// polling clients see the same log
	var events []kds.Message
	require.Equal(t, http.StatusOK, admin.call(http.MethodGet, "/api/kitchen/events?since=3", nil, &events))
	require.Len(t, events, 2)
	assert.Equal(t, uint64(4), events[0].Seq)
	assert.Equal(t, uint64(5), events[1].Seq)
}

func TestServeReturnsListenError(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	srv := &http.Server{Addr: taken.Addr().String(), Handler: http.NotFoundHandler()}
	done := make(chan error, 1)
	go func() { done <- serve(context.Background(), srv, time.Second) }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "listen on "+taken.Addr().String())
	case <-time.After(3 * time.Second):
		t.Fatal("serve kept running after the listener failed")
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	srv := &http.Server{Addr: addr, Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, time.Second) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusNoContent
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}
