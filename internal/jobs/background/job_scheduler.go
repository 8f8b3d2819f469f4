package background

import (
	"context"
	"log"
	"sync"
	"time"

	"genzip/internal/jobs"
	"genzip/internal/repositories"
	"genzip/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler runs the periodic maintenance jobs.
type JobScheduler struct {
	scheduler        gocron.Scheduler
	dashboardRefresh *jobs.DashboardRefreshService
	interviewRepo    repositories.InterviewRepository
	subscriptionSvc  services.SubscriptionService
	reservationTTL   time.Duration
	jobs             map[string]gocron.Job
	mu               sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(dashboardRefresh *jobs.DashboardRefreshService, interviewRepo repositories.InterviewRepository,
	subscriptionSvc services.SubscriptionService, reservationTTL time.Duration) (*JobScheduler, error) {

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:        scheduler,
		dashboardRefresh: dashboardRefresh,
		interviewRepo:    interviewRepo,
		subscriptionSvc:  subscriptionSvc,
		reservationTTL:   reservationTTL,
		jobs:             make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	// Reservations that were never accepted go back to the pool - every 5 minutes
	js.add("release-reservations", 5*time.Minute, js.releaseStaleReservations)

	// Subscription expiry - every hour
	js.add("expire-subscriptions", time.Hour, js.expireSubscriptions)

	// Dashboard refresh - every 10 minutes
	js.add("dashboard-refresh", 10*time.Minute, js.refreshDashboards)

	log.Printf("Registered %d background jobs", len(js.jobs))
}

func (js *JobScheduler) add(name string, interval time.Duration, fn func(ctx context.Context) error) {
	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(fn, context.Background()),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create %s job: %v", name, err)
		return
	}

	js.mu.Lock()
	js.jobs[name] = job
	js.mu.Unlock()
}

func (js *JobScheduler) releaseStaleReservations(ctx context.Context) error {
	cutoff := time.Now().Add(-js.reservationTTL)
	released, err := js.interviewRepo.ReleaseStaleReservations(ctx, cutoff)
	if err != nil {
		log.Printf("Failed to release stale reservations: %v", err)
		return err
	}
	if released > 0 {
		log.Printf("Released %d reservations older than %v", released, js.reservationTTL)
	}
	return nil
}

func (js *JobScheduler) expireSubscriptions(ctx context.Context) error {
	expired, err := js.subscriptionSvc.ExpireEnded(ctx)
	if err != nil {
		log.Printf("Failed to expire subscriptions: %v", err)
		return err
	}
	if expired > 0 {
		log.Printf("Expired %d subscriptions", expired)
	}
	return nil
}

func (js *JobScheduler) refreshDashboards(ctx context.Context) error {
	_, err := js.dashboardRefresh.RefreshAll(ctx)
	return err
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	status := make(map[string]interface{})
	status["total_jobs"] = len(js.jobs)
	names := make([]string, 0, len(js.jobs))

	for name, job := range js.jobs {
		names = append(names, name)
		if next, err := job.NextRun(); err == nil {
			status[name+"_next_run"] = next
		}
	}

	status["jobs"] = names

	return status
}
