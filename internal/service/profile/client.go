package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/aura-plataforma/chatbot-service/internal/model/risk"
)

// Fetcher exposes the historical risk profile of a user. Absence of a
// profile is an expected, frequent state: Fetch returns nil instead of an
// error so upstream triage never fails on a missing collaborator.
type Fetcher interface {
	Fetch(ctx context.Context, userID string) *risk.ProfileContext
	CheckHealth(ctx context.Context) bool
}

// Client queries the clustering service over HTTP. A single bounded attempt
// per request, no retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a clustering service client with the given base address
// and per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// 聚类服务 v2 high-risk-users 响应体中的单个用户条目。
type highRiskUser struct {
	UserID        string             `json:"user_id"`
	RiskLevel     string             `json:"risk_level"`
	SeverityIndex float64            `json:"severity_index"`
	Factors       map[string]float64 `json:"factors"`
}

type highRiskResponse struct {
	Users []highRiskUser `json:"users"`
}

// Fetch obtains the user's risk profile. On timeout, connection failure or a
// non-success response it returns nil; the caller degrades to a
// sentiment-only assessment.
func (c *Client) Fetch(ctx context.Context, userID string) *risk.ProfileContext {
	url := fmt.Sprintf("%s/api/v2/clustering/data/high-risk-users?limit=50", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Printf("[profile] failed to build clustering request: %v", err)
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[profile] clustering service unreachable: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[profile] clustering service returned status %d", resp.StatusCode)
		return nil
	}

	var payload highRiskResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Printf("[profile] failed to decode clustering response: %v", err)
		return nil
	}

	for _, user := range payload.Users {
		if user.UserID == userID {
			return &risk.ProfileContext{
				UserID:      userID,
				PriorLevel:  mapRiskLevel(user.RiskLevel),
				RiskFactors: deriveRiskFactors(user.Factors),
			}
		}
	}

	// 不在高风险名单中的用户按历史低风险处理。
	return &risk.ProfileContext{UserID: userID, PriorLevel: risk.LevelBajo}
}

// CheckHealth reports whether the clustering service responds on /health.
func (c *Client) CheckHealth(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func mapRiskLevel(raw string) risk.Level {
	switch raw {
	case "ALTO_RIESGO":
		return risk.LevelAlto
	case "RIESGO_MODERADO":
		return risk.LevelModerado
	case "BAJO_RIESGO":
		return risk.LevelBajo
	default:
		return ""
	}
}

// deriveRiskFactors 将聚类 KPI 转换为可读的风险因素描述,阈值与聚类服务
// 的画像口径保持一致。KPI 以 0-100 传输。
func deriveRiskFactors(factors map[string]float64) []string {
	if len(factors) == 0 {
		return nil
	}

	var derived []string
	if factors["inactivity"]/100 > 0.6 {
		derived = append(derived, "Inactividad prolongada en la plataforma")
	}
	if factors["night_activity"]/100 > 0.5 {
		derived = append(derived, "Patrón de actividad nocturna elevado")
	}
	if factors["negativity"]/100 > 0.5 {
		derived = append(derived, "Contenido con tono emocional negativo")
	}
	if engagement, ok := factors["community_engagement"]; ok && engagement/100 < 0.3 {
		derived = append(derived, "Baja participación en comunidades")
	}
	return derived
}

// Noop is the fetcher used when no clustering service is deployed.
type Noop struct{}

// Fetch always reports an absent profile.
func (Noop) Fetch(context.Context, string) *risk.ProfileContext { return nil }

// CheckHealth always reports the collaborator as unavailable.
func (Noop) CheckHealth(context.Context) bool { return false }
