package jobs

import (
	"log"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jewelify/jewelify-server/internal/config"
)

const (
	retryAttempts  = 3
	retryDelay     = 30 * time.Second
	requestTimeout = 10 * time.Second
)

// KeepAliveJob periodically pings the service's own health endpoint so
// free-tier hosting does not idle the instance out
type KeepAliveJob struct {
	url       string
	interval  time.Duration
	client    *resty.Client
	stopCh    chan struct{}
	isRunning bool
}

// NewKeepAliveJob creates a keep-alive pinger from config
func NewKeepAliveJob(cfg *config.KeepAliveConfig) *KeepAliveJob {
	return &KeepAliveJob{
		url:      cfg.URL,
		interval: cfg.Interval,
		client:   resty.New().SetTimeout(requestTimeout),
		stopCh:   make(chan struct{}),
	}
}

// Start begins the keep-alive loop; a no-op when no URL is configured
func (k *KeepAliveJob) Start() {
	if k.url == "" {
		log.Println("⚠️  KEEP_ALIVE_URL not set - keep-alive pings disabled")
		return
	}
	if k.isRunning {
		log.Println("Keep-alive job already running")
		return
	}

	k.isRunning = true
	go k.run()
	log.Printf("✅ Keep-alive job started, pinging %s every %v", k.url, k.interval)
}

// Stop halts the keep-alive loop
func (k *KeepAliveJob) Stop() {
	if !k.isRunning {
		return
	}
	k.isRunning = false
	close(k.stopCh)
	log.Println("Stopping keep-alive job...")
}

// IsRunning reports whether the job loop is active
func (k *KeepAliveJob) IsRunning() bool {
	return k.isRunning
}

func (k *KeepAliveJob) run() {
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	for {
		select {
		case <-k.stopCh:
			return
		case <-ticker.C:
			k.ping()
		}
	}
}

// ping tries the health endpoint, retrying a few times before giving up
// until the next interval
func (k *KeepAliveJob) ping() {
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		resp, err := k.client.R().Get(k.url)
		if err == nil && resp.StatusCode() == 200 {
			log.Printf("Keep-alive ping successful to %s", k.url)
			return
		}

		if err != nil {
			log.Printf("Error in keep-alive ping: %v (Attempt %d/%d)", err, attempt, retryAttempts)
		} else {
			log.Printf("Keep-alive ping failed with status: %d (Attempt %d/%d)", resp.StatusCode(), attempt, retryAttempts)
		}

		if attempt < retryAttempts {
			select {
			case <-k.stopCh:
				return
			case <-time.After(retryDelay):
			}
		}
	}

	log.Printf("❌ Keep-alive ping failed after %d attempts, will retry next interval", retryAttempts)
}
