package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/logan-wrld/austin-port-to-rail/services"
)

const chatSystemPrompt = `You are an AI assistant specialized in port-to-rail logistics analysis for the Port of Houston.
You analyze shipping data, rail network capacity, and freight flow patterns.

When asked about metrics, provide specific numbers and classifications based on realistic port operations:
- TEU (Twenty-foot Equivalent Units) is the standard container measurement
- Surge risk levels: LOW (0-30% above baseline), MEDIUM (30-60% above baseline), HIGH (60%+ above baseline)
- Use the 30-day rolling baseline for deviation calculations
- Consider time of day patterns (peak hours: 6AM-10AM and 2PM-6PM)

Always provide structured, actionable insights for port operators and logistics planners.
Format numerical data clearly and include risk classifications when relevant.`

type ChatHandler struct {
	engine      *services.MetricsEngine
	oracle      services.Oracle
	chatTimeout time.Duration
}

func NewChatHandler(engine *services.MetricsEngine, oracle services.Oracle, chatTimeout time.Duration) *ChatHandler {
	return &ChatHandler{engine: engine, oracle: oracle, chatTimeout: chatTimeout}
}

type ChatRequest struct {
	Message string `json:"message"`
}

// Chat forwards an operator question to the model with the live
// snapshot and the next six forecast hours as grounding context.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No message provided"})
		return
	}

	now := time.Now()
	metrics := h.engine.CurrentSnapshot(now)
	forecast := h.engine.ForecastSeries(now, 24)[:6]

	var ctxB strings.Builder
	fmt.Fprintf(&ctxB, "Current Port Metrics (as of %s):\n", metrics.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&ctxB, "- Current TEU volume: %d TEU/hour\n", metrics.CurrentTEUPerHour)
	fmt.Fprintf(&ctxB, "- 30-day baseline: %d TEU/hour\n", metrics.Baseline30DayAvg)
	fmt.Fprintf(&ctxB, "- Deviation from baseline: %.1f%%\n", metrics.PercentDeviation)
	fmt.Fprintf(&ctxB, "- Surge Risk Level: %s\n", metrics.SurgeRisk)
	fmt.Fprintf(&ctxB, "- Vessels in channel: %d\n", metrics.VesselsInChannel)
	fmt.Fprintf(&ctxB, "- Vessels at berth: %d\n", metrics.VesselsAtBerth)
	fmt.Fprintf(&ctxB, "- Rail cars waiting: %d\n", metrics.RailCarsWaiting)
	fmt.Fprintf(&ctxB, "- Avg dwell time: %.1f hours\n", metrics.AvgDwellTimeHours)
	ctxB.WriteString("\nNext 6-Hour Forecast:\n")
	for _, f := range forecast {
		fmt.Fprintf(&ctxB, "  %s: %d TEU, %s risk\n", f.Time, f.ExpectedTEU, f.SurgeRisk)
	}

	prompt := fmt.Sprintf("%s\n\nCurrent Data:\n%s\n\nUser Question: %s\n\nResponse:",
		chatSystemPrompt, ctxB.String(), req.Message)

	response, err := h.oracle.Generate(c.Request.Context(), prompt, services.GenerateOptions{
		Temperature: 0.7,
		MaxTokens:   500,
		Timeout:     h.chatTimeout,
	})
	if err != nil {
		if errors.Is(err, services.ErrOracleUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "Cannot connect to Ollama. Make sure it's running.",
				"hint":  "Run 'ollama serve' to start the Ollama server",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response": response,
		"metrics":  metrics,
		"model":    h.oracle.Model(),
	})
}
