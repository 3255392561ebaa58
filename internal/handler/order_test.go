package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sliceworks/pizza-backend/internal/auth"
	"github.com/sliceworks/pizza-backend/internal/config"
	"github.com/sliceworks/pizza-backend/internal/factory"
	"github.com/sliceworks/pizza-backend/internal/handler"
	"github.com/sliceworks/pizza-backend/internal/middleware"
	"github.com/sliceworks/pizza-backend/internal/queue"
	"github.com/sliceworks/pizza-backend/internal/repository"
	"github.com/sliceworks/pizza-backend/internal/testutil"
)

type orderServer struct {
	e       *echo.Echo
	factory *httptest.Server
}

// newOrderServer wires the menu and order routes against an in-memory
// database and a stub fulfillment factory, and registers two accounts:
// a diner and an admin.  It returns their session tokens.
func newOrderServer(t *testing.T, name string) (*orderServer, string, string) {
	t.Helper()
	db := testutil.OpenDB(t, name)
	users := repository.NewUserRepo(db)
	sessions := auth.NewSessions("test-secret", repository.NewTokenRepo(db))

	fsrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(factory.Report{JWT: "factory-token", ReportURL: "https://factory/report/1"})
	}))
	t.Cleanup(fsrv.Close)

	cfg := config.Config{BcryptCost: bcrypt.MinCost}
	ah := handler.NewAuthHandler(cfg, users, sessions, zap.NewNop())
	oh := handler.NewOrderHandler(
		repository.NewMenuRepo(db),
		repository.NewOrderRepo(db),
		factory.New(fsrv.URL),
		queue.NewPublisher("", zap.NewNop()),
		zap.NewNop(), 10)

	e := echo.New()
	e.POST("/api/auth", ah.Register)
	authed := e.Group("", middleware.SessionAuth(sessions))
	e.GET("/api/order/menu", oh.GetMenu)
	authed.PUT("/api/order/menu", oh.AddMenuItem, middleware.RequireAdmin())
	authed.GET("/api/order", oh.GetOrders)
	authed.POST("/api/order", oh.Create)

	dinerTok := registerVia(t, e, `{"name":"Dee","email":"dee@test.com","password":"pw"}`)

	admin, err := users.Add(context.Background(), "Root", "root@test.com", "pw",
		nil, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("add admin: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO user_roles (user_id, role, object_id) VALUES (?,?,0)`,
		admin.ID, "admin"); err != nil {
		t.Fatalf("grant admin role: %v", err)
	}
	adminUser, err := users.GetByID(context.Background(), admin.ID)
	if err != nil {
		t.Fatalf("reload admin: %v", err)
	}
	adminTok, err := sessions.Issue(context.Background(), adminUser)
	if err != nil {
		t.Fatalf("issue admin token: %v", err)
	}

	return &orderServer{e: e, factory: fsrv}, dinerTok, adminTok
}

func registerVia(t *testing.T, e *echo.Echo, body string) string {
	t.Helper()
	rec := postJSON(e, http.MethodPost, "/api/auth", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: got %d, body %s", rec.Code, rec.Body)
	}
	var resp sessionResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return resp.Token
}

func TestMenuRoutes(t *testing.T) {
	srv, dinerTok, adminTok := newOrderServer(t, "h_menu")

	rec := postJSON(srv.e, http.MethodGet, "/api/order/menu", "", "")
	if rec.Code != http.StatusOK || rec.Body.String() == "" {
		t.Fatalf("public menu: got %d", rec.Code)
	}

	body := `{"title":"Student","description":"No topping, no sauce","image":"pizza9.png","price":0.0001}`
	if rec := postJSON(srv.e, http.MethodPut, "/api/order/menu", body, dinerTok); rec.Code != http.StatusForbidden {
		t.Fatalf("diner adding menu item: got %d, want 403", rec.Code)
	}
	rec = postJSON(srv.e, http.MethodPut, "/api/order/menu", body, adminTok)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin adding menu item: got %d, body %s", rec.Code, rec.Body)
	}
	var menu []struct {
		ID    uint64 `json:"id"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &menu); err != nil {
		t.Fatalf("decode menu: %v", err)
	}
	if len(menu) != 1 || menu[0].Title != "Student" {
		t.Fatalf("unexpected menu after add: %+v", menu)
	}

	bad := `{"title":"","price":1}`
	if rec := postJSON(srv.e, http.MethodPut, "/api/order/menu", bad, adminTok); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty title: got %d, want 400", rec.Code)
	}
}

func TestCreateAndListOrders(t *testing.T) {
	srv, dinerTok, adminTok := newOrderServer(t, "h_orders")

	rec := postJSON(srv.e, http.MethodPut, "/api/order/menu",
		`{"title":"Veggie","description":"d","image":"i","price":0.05}`, adminTok)
	if rec.Code != http.StatusOK {
		t.Fatalf("seed menu: got %d", rec.Code)
	}
	var menu []struct {
		ID uint64 `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &menu); err != nil {
		t.Fatalf("decode menu: %v", err)
	}

	order := `{"franchiseId":1,"storeId":1,"items":[{"menuId":1,"description":"Veggie","price":0.05}]}`
	rec = postJSON(srv.e, http.MethodPost, "/api/order", order, dinerTok)
	if rec.Code != http.StatusOK {
		t.Fatalf("create order: got %d, body %s", rec.Code, rec.Body)
	}
	var created struct {
		JWT       string `json:"jwt"`
		ReportURL string `json:"reportUrl"`
		Order     struct {
			ID    uint64 `json:"id"`
			Items []struct {
				Description string `json:"description"`
			} `json:"items"`
		} `json:"order"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.JWT != "factory-token" || created.Order.ID == 0 || len(created.Order.Items) != 1 {
		t.Fatalf("incomplete create response: %s", rec.Body)
	}

	rec = postJSON(srv.e, http.MethodGet, "/api/order", "", dinerTok)
	if rec.Code != http.StatusOK {
		t.Fatalf("list orders: got %d", rec.Code)
	}
	var listed struct {
		Orders []struct {
			ID uint64 `json:"id"`
		} `json:"orders"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listed.Orders) != 1 || listed.Orders[0].ID != created.Order.ID {
		t.Fatalf("listed orders mismatch: %s", rec.Body)
	}

	ghost := `{"franchiseId":1,"storeId":1,"items":[{"menuId":99,"description":"x","price":1}]}`
	if rec := postJSON(srv.e, http.MethodPost, "/api/order", ghost, dinerTok); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown menu item: got %d, want 404", rec.Code)
	}

	empty := `{"franchiseId":1,"storeId":1,"items":[]}`
	if rec := postJSON(srv.e, http.MethodPost, "/api/order", empty, dinerTok); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty items: got %d, want 400", rec.Code)
	}
}

func TestCreateOrderSurfacesFactoryFailure(t *testing.T) {
	db := testutil.OpenDB(t, "h_factory_down")
	users := repository.NewUserRepo(db)
	sessions := auth.NewSessions("test-secret", repository.NewTokenRepo(db))
	menu := repository.NewMenuRepo(db)

	fsrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(factory.Report{ReportURL: "https://factory/failure/1"})
	}))
	t.Cleanup(fsrv.Close)

	oh := handler.NewOrderHandler(menu, repository.NewOrderRepo(db),
		factory.New(fsrv.URL), queue.NewPublisher("", zap.NewNop()), zap.NewNop(), 10)

	e := echo.New()
	authed := e.Group("", middleware.SessionAuth(sessions))
	authed.POST("/api/order", oh.Create)
	authed.GET("/api/order", oh.GetOrders)

	diner, err := users.Add(context.Background(), "Dee", "dee2@test.com", "pw", nil, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("add diner: %v", err)
	}
	tok, err := sessions.Issue(context.Background(), diner)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO menu_items (title, description, image, price) VALUES ('Veggie','d','i',0.05)`); err != nil {
		t.Fatalf("seed menu: %v", err)
	}

	order := `{"franchiseId":1,"storeId":1,"items":[{"menuId":1,"description":"Veggie","price":0.05}]}`
	rec := postJSON(e, http.MethodPost, "/api/order", order, tok)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("factory failure: got %d, want 500", rec.Code)
	}
	var resp struct {
		Error     string `json:"error"`
		ReportURL string `json:"reportUrl"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode failure response: %v", err)
	}
	if resp.Error == "" || resp.ReportURL != "https://factory/failure/1" {
		t.Fatalf("failure payload incomplete: %s", rec.Body)
	}

	// The order survives the failed fulfillment call.
	rec = postJSON(e, http.MethodGet, "/api/order", "", tok)
	var listed struct {
		Orders []struct {
			ID uint64 `json:"id"`
		} `json:"orders"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listed.Orders) != 1 {
		t.Fatalf("order not persisted through factory failure: %s", rec.Body)
	}
}
