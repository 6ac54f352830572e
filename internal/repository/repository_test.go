package repository

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/kleanly/kleanly-api/internal/database"
	"github.com/kleanly/kleanly-api/internal/model"
	"github.com/kleanly/kleanly-api/internal/utils"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func strp(s string) *string { return &s }

func TestUserCreateAndDuplicate(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepo(openDB(t))

	u := model.User{Username: "alice", Email: "a@x.com", PushToken: strp("tok")}
	if err := users.Create(ctx, u, "pw", bcrypt.MinCost); err != nil {
		t.Fatal(err)
	}
	if err := users.Create(ctx, u, "pw", bcrypt.MinCost); !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("second create = %v", err)
	}

	got, err := users.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "alice" || got.Email != "a@x.com" || got.PushToken == nil || *got.PushToken != "tok" {
		t.Fatalf("user = %+v", got)
	}
	if !utils.VerifyPassword(got.PasswordHash, "pw") {
		t.Fatal("stored hash does not verify")
	}
	if _, err := users.GetByUsername(ctx, "bob"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user = %v", err)
	}
}

func TestUserUpdate(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepo(openDB(t))
	for _, name := range []string{"alice", "bob"} {
		if err := users.Create(ctx, model.User{Username: name, Email: name + "@x.com"}, "pw", bcrypt.MinCost); err != nil {
			t.Fatal(err)
		}
	}

	yes := true
	if err := users.Update(ctx, "alice", model.UserPatch{IsDriver: &yes, PushToken: strp("t1")}); err != nil {
		t.Fatal(err)
	}
	got, _ := users.GetByUsername(ctx, "alice")
	if !got.IsDriver || got.IsAdmin || *got.PushToken != "t1" || got.Email != "alice@x.com" {
		t.Fatalf("after patch = %+v", got)
	}

	if err := users.Update(ctx, "alice", model.UserPatch{Username: strp("bob")}); !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("rename onto taken name = %v", err)
	}
	if err := users.Update(ctx, "ghost", model.UserPatch{Email: strp("g@x.com")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing user = %v", err)
	}
	if err := users.Update(ctx, "alice", model.UserPatch{}); err != nil {
		t.Fatalf("empty patch = %v", err)
	}

	if err := users.Update(ctx, "alice", model.UserPatch{Username: strp("alicia")}); err != nil {
		t.Fatal(err)
	}
	got, err := users.GetByUsername(ctx, "alicia")
	if err != nil || got.ID != "alice" {
		t.Fatalf("renamed user = %+v, %v", got, err)
	}
}

func TestOrderPersistence(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	orders, drivers := NewOrderRepo(db), NewDriverRepo(db)

	if err := drivers.Create(ctx, model.Driver{ID: "d1", Name: "Dan", Phone: "555"}); err != nil {
		t.Fatal(err)
	}
	o := model.Order{ID: "o1", UserID: "alice", Status: "created", Scent: []string{"lavender", "mint"}}
	if err := orders.Create(ctx, o); err != nil {
		t.Fatal(err)
	}
	if err := orders.Create(ctx, o); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate order = %v", err)
	}

	got, err := orders.GetByID(ctx, "o1")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Scent, o.Scent) || got.DriverID != nil || got.CancelReason != nil {
		t.Fatalf("order = %+v", got)
	}

	if err := orders.AssignDriver(ctx, "o1", "d1"); err != nil {
		t.Fatal(err)
	}
	if err := orders.UpdateStatus(ctx, "o1", model.OrderStatusCancelled, strp("late")); err != nil {
		t.Fatal(err)
	}
	got, _ = orders.GetByID(ctx, "o1")
	if got.Status != "cancelled" || *got.DriverID != "d1" || *got.CancelReason != "late" {
		t.Fatalf("order = %+v", got)
	}

	if _, err := orders.GetByID(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing order = %v", err)
	}
	list, err := orders.ListByUser(ctx, "nobody")
	if err != nil || list == nil || len(list) != 0 {
		t.Fatalf("ListByUser = %v, %v", list, err)
	}
}

func TestRecipientsSkipDeliveredAndUnknownOwners(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	users, orders, drivers := NewUserRepo(db), NewOrderRepo(db), NewDriverRepo(db)

	if err := users.Create(ctx, model.User{Username: "u1", Email: "u1@x.com"}, "pw", bcrypt.MinCost); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"d1", "d2"} {
		if err := drivers.Create(ctx, model.Driver{ID: id, Name: id, Phone: "1"}); err != nil {
			t.Fatal(err)
		}
	}
	for _, o := range []model.Order{
		{ID: "a", UserID: "u1", Status: "created", DriverID: strp("d1")},
		{ID: "b", UserID: "u1", Status: model.OrderStatusDelivered, DriverID: strp("d1")},
		{ID: "c", UserID: "ghost", Status: "created", DriverID: strp("d1")},
		{ID: "d", UserID: "u1", Status: "created", DriverID: strp("d2")},
		{ID: "e", UserID: "u1", Status: "in_progress", DriverID: strp("d1")},
	} {
		if err := orders.Create(ctx, o); err != nil {
			t.Fatal(err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := drivers.UpdateLocationTx(ctx, tx, "d1", 10.5, -3); err != nil {
		t.Fatal(err)
	}
	d, err := drivers.GetByIDTx(ctx, tx, "d1")
	if err != nil || d.Lat == nil || *d.Lat != 10.5 || *d.Lng != -3 {
		t.Fatalf("driver = %+v, %v", d, err)
	}
	got, err := orders.ListRecipientsByDriverTx(ctx, tx, "d1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].OrderID != "a" || got[1].OrderID != "e" || got[0].Email != "u1@x.com" {
		t.Fatalf("recipients = %+v", got)
	}
}

func TestDriverStatusAndDuplicate(t *testing.T) {
	ctx := context.Background()
	drivers := NewDriverRepo(openDB(t))
	d := model.Driver{ID: "d1", Name: "Dan", Phone: "555"}
	if err := drivers.Create(ctx, d); err != nil {
		t.Fatal(err)
	}
	if err := drivers.Create(ctx, d); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate driver = %v", err)
	}
	if err := drivers.UpdateStatus(ctx, "d1", "available"); err != nil {
		t.Fatal(err)
	}
	got, err := drivers.GetByID(ctx, "d1")
	if err != nil || got.Status != "available" || got.Lat != nil {
		t.Fatalf("driver = %+v, %v", got, err)
	}
	if _, err := drivers.GetByID(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing driver = %v", err)
	}
}
