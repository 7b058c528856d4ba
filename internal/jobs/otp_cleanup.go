package jobs

import (
	"log"
	"time"

	"github.com/jewelify/jewelify-server/internal/storage"
)

const defaultCleanupInterval = 1 * time.Hour

// OTPCleanupJob periodically purges expired OTP rows so abandoned
// verification attempts do not accumulate in storage
type OTPCleanupJob struct {
	store     storage.Store
	interval  time.Duration
	stopCh    chan struct{}
	isRunning bool
}

// NewOTPCleanupJob creates an expired-OTP sweeper; a zero interval
// falls back to the default hourly sweep
func NewOTPCleanupJob(store storage.Store, interval time.Duration) *OTPCleanupJob {
	if interval <= 0 {
		interval = defaultCleanupInterval
	}
	return &OTPCleanupJob{
		store:    store,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the cleanup loop
func (j *OTPCleanupJob) Start() {
	if j.isRunning {
		log.Println("OTP cleanup job already running")
		return
	}

	j.isRunning = true
	go j.run()
	log.Printf("✅ OTP cleanup job started, sweeping every %v", j.interval)
}

// Stop halts the cleanup loop
func (j *OTPCleanupJob) Stop() {
	if !j.isRunning {
		return
	}
	j.isRunning = false
	close(j.stopCh)
	log.Println("Stopping OTP cleanup job...")
}

// IsRunning reports whether the job loop is active
func (j *OTPCleanupJob) IsRunning() bool {
	return j.isRunning
}

func (j *OTPCleanupJob) run() {
	// Sweep once up front so a restart clears anything that expired
	// while the service was down
	j.sweep()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stopCh:
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *OTPCleanupJob) sweep() {
	if err := j.store.DeleteExpiredOTPs(); err != nil {
		log.Printf("❌ OTP cleanup sweep failed: %v", err)
	}
}
