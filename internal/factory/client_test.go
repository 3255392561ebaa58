package factory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sliceworks/pizza-backend/internal/model"
)

func sampleOrder() (*model.User, *model.Order) {
	diner := &model.User{ID: 3, Name: "Kai", Email: "kai@test.com"}
	order := &model.Order{
		ID:          12,
		DinerID:     3,
		FranchiseID: 1,
		StoreID:     1,
		Date:        time.Now().UTC(),
		Items:       []model.OrderItem{{ID: 1, MenuID: 1, Description: "Veggie", Price: 0.05}},
	}
	return diner, order
}

func TestFulfillSuccess(t *testing.T) {
	var got fulfillRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(Report{JWT: "factory-token", ReportURL: "https://factory/report/12"})
	}))
	defer srv.Close()

	diner, order := sampleOrder()
	report, err := New(srv.URL).Fulfill(context.Background(), diner, order)
	if err != nil {
		t.Fatalf("fulfill: %v", err)
	}
	if report.JWT != "factory-token" || report.ReportURL != "https://factory/report/12" {
		t.Fatalf("unexpected report: %+v", report)
	}
	if got.Diner.Email != "kai@test.com" || got.Order == nil || got.Order.ID != 12 {
		t.Fatalf("request payload incomplete: %+v", got)
	}
}

func TestFulfillFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(Report{ReportURL: "https://factory/failure/12"})
	}))
	defer srv.Close()

	diner, order := sampleOrder()
	report, err := New(srv.URL).Fulfill(context.Background(), diner, order)
	if !errors.Is(err, ErrFulfillment) {
		t.Fatalf("expected ErrFulfillment, got %v", err)
	}
	if report == nil || report.ReportURL != "https://factory/failure/12" {
		t.Fatalf("failure report should be preserved: %+v", report)
	}
}

func TestFulfillMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Report{ReportURL: "https://factory/report/12"})
	}))
	defer srv.Close()

	diner, order := sampleOrder()
	if _, err := New(srv.URL).Fulfill(context.Background(), diner, order); !errors.Is(err, ErrFulfillment) {
		t.Fatalf("expected ErrFulfillment without token, got %v", err)
	}
}

func TestFulfillUnreachable(t *testing.T) {
	diner, order := sampleOrder()
	c := New("http://127.0.0.1:1/fulfill")
	if _, err := c.Fulfill(context.Background(), diner, order); !errors.Is(err, ErrFulfillment) {
		t.Fatalf("expected ErrFulfillment on transport error, got %v", err)
	}
}
