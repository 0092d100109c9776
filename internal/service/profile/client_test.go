package profile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aura-plataforma/chatbot-service/internal/model/risk"
)

const highRiskPayload = `{
	"users": [
		{
			"user_id": "user-42",
			"risk_level": "ALTO_RIESGO",
			"severity_index": 0.82,
			"factors": {
				"inactivity": 80,
				"night_activity": 30,
				"negativity": 70,
				"community_engagement": 20
			}
		},
		{
			"user_id": "user-7",
			"risk_level": "RIESGO_MODERADO",
			"severity_index": 0.41,
			"factors": {}
		}
	]
}`

func newClusteringServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchListedUser(t *testing.T) {
	srv := newClusteringServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/clustering/data/high-risk-users" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(highRiskPayload))
	})

	client := NewClient(srv.URL, time.Second)
	profile := client.Fetch(context.Background(), "user-42")

	if profile == nil {
		t.Fatal("expected a profile for a listed user")
	}
	if profile.PriorLevel != risk.LevelAlto {
		t.Fatalf("expected ALTO prior level, got %s", profile.PriorLevel)
	}
	if len(profile.RiskFactors) == 0 {
		t.Fatal("expected derived risk factors for the listed user")
	}
}

func TestFetchDerivesFactorsFromKPIs(t *testing.T) {
	srv := newClusteringServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(highRiskPayload))
	})

	client := NewClient(srv.URL, time.Second)
	profile := client.Fetch(context.Background(), "user-42")
	if profile == nil {
		t.Fatal("expected a profile")
	}

	// inactivity 0.8 > 0.6, negativity 0.7 > 0.5, engagement 0.2 < 0.3;
	// night activity stays below its threshold.
	if len(profile.RiskFactors) != 3 {
		t.Fatalf("expected 3 derived factors, got %d: %v", len(profile.RiskFactors), profile.RiskFactors)
	}
}

func TestFetchUnlistedUserDefaultsToBajo(t *testing.T) {
	srv := newClusteringServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(highRiskPayload))
	})

	client := NewClient(srv.URL, time.Second)
	profile := client.Fetch(context.Background(), "user-unknown")

	if profile == nil {
		t.Fatal("an unlisted user still carries a low-risk prior")
	}
	if profile.PriorLevel != risk.LevelBajo {
		t.Fatalf("expected BAJO prior level, got %s", profile.PriorLevel)
	}
	if len(profile.RiskFactors) != 0 {
		t.Fatalf("unlisted user must have no factors, got %v", profile.RiskFactors)
	}
}

func TestFetchServerErrorReturnsNil(t *testing.T) {
	srv := newClusteringServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	client := NewClient(srv.URL, time.Second)
	if profile := client.Fetch(context.Background(), "user-42"); profile != nil {
		t.Fatalf("expected nil profile on server error, got %+v", profile)
	}
}

func TestFetchMalformedBodyReturnsNil(t *testing.T) {
	srv := newClusteringServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	client := NewClient(srv.URL, time.Second)
	if profile := client.Fetch(context.Background(), "user-42"); profile != nil {
		t.Fatalf("expected nil profile on malformed body, got %+v", profile)
	}
}

func TestFetchTimeoutReturnsNil(t *testing.T) {
	srv := newClusteringServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(highRiskPayload))
	})

	client := NewClient(srv.URL, time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if profile := client.Fetch(ctx, "user-42"); profile != nil {
		t.Fatalf("expected nil profile on timeout, got %+v", profile)
	}
}

func TestFetchUnreachableServiceReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, time.Second)
	if profile := client.Fetch(context.Background(), "user-42"); profile != nil {
		t.Fatalf("expected nil profile when service is down, got %+v", profile)
	}
}

func TestCheckHealth(t *testing.T) {
	srv := newClusteringServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	client := NewClient(srv.URL, time.Second)
	if !client.CheckHealth(context.Background()) {
		t.Fatal("expected healthy clustering service")
	}

	srv.Close()
	if client.CheckHealth(context.Background()) {
		t.Fatal("expected unhealthy report after shutdown")
	}
}

func TestNoopFetcher(t *testing.T) {
	var fetcher Fetcher = Noop{}

	if profile := fetcher.Fetch(context.Background(), "user-42"); profile != nil {
		t.Fatalf("noop fetcher must report no profile, got %+v", profile)
	}
	if fetcher.CheckHealth(context.Background()) {
		t.Fatal("noop fetcher must report unavailable")
	}
}
