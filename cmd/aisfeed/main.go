package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/logan-wrld/austin-port-to-rail/models"
	"github.com/logan-wrld/austin-port-to-rail/services"
)

// AISPayload is one position/status report from an AIS relay.
type AISPayload struct {
	TS       string `json:"ts"`
	MMSI     string `json:"mmsi"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Terminal string `json:"terminal"`
}

var (
	positionsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portrail_aisfeed_positions_received_total",
		Help: "Total number of AIS messages received.",
	})
	positionsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portrail_aisfeed_positions_applied_total",
		Help: "Total number of AIS messages merged into the tracker.",
	})
	positionsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portrail_aisfeed_positions_failed_total",
		Help: "Total number of AIS messages rejected or failed to persist.",
	})
)

var redisClient *redis.Client

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mqttURL := getEnv("MQTT_URL", "tcp://localhost:1883")
	mqttTopic := getEnv("MQTT_TOPIC", "portrail/ais/+")
	metricsAddr := getEnv("METRICS_ADDR", ":8081")
	redisURL := getEnv("REDIS_URL", "")
	trackerPath := filepath.Join(getEnv("DATA_DIR", "data"), getEnv("SHIP_TRACKER_FILE", "ship_tracker.json"))

	tracker := services.NewTrackerService(trackerPath)

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Printf("invalid REDIS_URL, skipping Redis: %v", err)
		} else {
			redisClient = redis.NewClient(opts)
			if err := redisClient.Ping(ctx).Err(); err != nil {
				log.Printf("redis ping failed, skipping Redis: %v", err)
				redisClient = nil
			} else {
				log.Printf("redis connected: %s", redisURL)
			}
		}
	}

	go serveHTTP(metricsAddr)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(mqttURL)
	opts.SetClientID("aisfeed-" + time.Now().Format("20060102150405"))
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetDefaultPublishHandler(func(client mqtt.Client, message mqtt.Message) {
		processMessage(ctx, tracker, message.Payload())
	})
	opts.OnConnect = func(client mqtt.Client) {
		token := client.Subscribe(mqttTopic, 0, nil)
		token.Wait()
		if token.Error() != nil {
			log.Printf("mqtt subscribe error: %v", token.Error())
			return
		}
		log.Printf("aisfeed subscribed to topic=%s", mqttTopic)
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Printf("mqtt connection lost: %v", err)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if token.Error() != nil {
		log.Fatalf("mqtt connection failed: %v", token.Error())
	}

	log.Printf("aisfeed running, mqtt=%s tracker=%s metrics=%s", mqttURL, trackerPath, metricsAddr)

	<-ctx.Done()
	log.Printf("aisfeed shutting down")
	client.Disconnect(250)
	if redisClient != nil {
		redisClient.Close()
	}
}

func serveHTTP(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("metrics server listening on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("metrics server failed: %v", err)
	}
}

func processMessage(ctx context.Context, tracker *services.TrackerService, payloadRaw []byte) {
	positionsReceived.Inc()

	var payload AISPayload
	if err := json.Unmarshal(payloadRaw, &payload); err != nil {
		positionsFailed.Inc()
		log.Printf("invalid payload: %v", err)
		return
	}
	if payload.MMSI == "" {
		positionsFailed.Inc()
		log.Printf("missing mmsi in payload")
		return
	}

	ts := time.Now().UTC().Format(time.RFC3339)
	if payload.TS != "" {
		if parsed, err := time.Parse(time.RFC3339, payload.TS); err == nil {
			ts = parsed.UTC().Format(time.RFC3339)
		}
	}

	update := models.TrackerUpdate{
		Merge: true,
		Vessels: map[string]models.Vessel{
			payload.MMSI: {
				MMSI:     payload.MMSI,
				Name:     payload.Name,
				Status:   payload.Status,
				Terminal: payload.Terminal,
			},
		},
	}

	// Record a history entry only on an actual status transition.
	prior, known := tracker.Load().Vessels[payload.MMSI]
	if payload.Status != "" && (!known || prior.Status != payload.Status) {
		entry := models.HistoryEntry{
			MMSI:      payload.MMSI,
			Name:      payload.Name,
			ToStatus:  payload.Status,
			Timestamp: ts,
		}
		if known {
			entry.FromStatus = prior.Status
		}
		update.History = []models.HistoryEntry{entry}
	}

	if _, err := tracker.Update(update); err != nil {
		positionsFailed.Inc()
		log.Printf("tracker update failed for mmsi=%s: %v", payload.MMSI, err)
		return
	}

	positionsApplied.Inc()

	if redisClient != nil {
		_ = redisClient.Publish(ctx, "portrail:vessels", payloadRaw).Err()
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
