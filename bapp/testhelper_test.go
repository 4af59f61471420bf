package bapp_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/advdv/bmsg"
	"github.com/advdv/bmsg/bapp"
	"github.com/advdv/bmsg/bapp/bapptest"
	"github.com/carlmjohnson/requests"
	"github.com/cockroachdb/errors"
)

// TestEnv is a test environment with app-specific fields beyond BaseEnvironment.
type TestEnv struct {
	bapp.BaseEnvironment
	CatalogName string `env:"CATALOG_NAME,required"`
}

// setTestEnvForTestEnv calls SetBaseEnv and sets the TestEnv specific vars.
func setTestEnvForTestEnv(t *testing.T, port int) *bapptest.Env {
	t.Helper()
	env := bapptest.SetBaseEnv(t, port)
	t.Setenv("CATALOG_NAME", "test-catalog")
	return env
}

type item struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Handlers receives the runtime through fx.
type Handlers struct {
	rt *bapp.Runtime[TestEnv]
}

func NewHandlers(rt *bapp.Runtime[TestEnv]) *Handlers {
	return &Handlers{rt: rt}
}

func (h *Handlers) GetItem(ctx context.Context, res *bmsg.Response, req *bmsg.Request) error {
	id, err := req.Param("id")
	if err != nil {
		return err
	}

	n, err := id.Int()
	if err != nil {
		return err
	}

	self, err := h.rt.Reverse("get-item", id.StringOr(""))
	if err != nil {
		return err
	}

	bapp.Span(ctx).AddEvent("get-item")
	bapp.Log(ctx).Info("getting item")

	if err := res.Header("Link", self); err != nil {
		return err
	}

	return res.Send(item{ID: n, Name: h.rt.Env().CatalogName})
}

func (h *Handlers) CreateItem(ctx context.Context, res *bmsg.Response, req *bmsg.Request) error {
	it, err := bmsg.BodyAs[item](req)
	if err != nil {
		return err
	}

	bapp.Log(ctx).Info("creating item")

	it.ID = 99

	return res.Status(http.StatusCreated).Send(it)
}

func (h *Handlers) Visits(ctx context.Context, res *bmsg.Response, req *bmsg.Request) error {
	s, err := req.Session(ctx)
	if err != nil {
		return err
	}

	n, _ := s.Get("visits")
	s.Set("visits", n+"|")

	if err := s.Save(ctx); err != nil {
		return err
	}

	return res.Send(n + "|")
}

// secretReader serves secrets from a map.
type secretReader map[string]string

func (m secretReader) GetSecretString(_ context.Context, secretID string) (string, error) {
	s, ok := m[secretID]
	if !ok {
		return "", errors.Newf("secret %q not found", secretID)
	}

	return s, nil
}

// waitReady polls the health endpoint until the server accepts connections.
func waitReady(t *testing.T, url string) {
	t.Helper()

	ctx := context.Background()
	for range 100 {
		if err := requests.URL(url).Fetch(ctx); err == nil {
			return
		}

		time.Sleep(20 * time.Millisecond)
	}

	t.Fatalf("server at %s did not become ready", url)
}
