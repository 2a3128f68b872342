package worker

import (
	"context"
	"errors"
	"time"

	"github.com/hostdesk/internal/config"
	"github.com/hostdesk/internal/logger"
	"github.com/hostdesk/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	commissionApproveInterval  = time.Minute
	subscriptionExpireInterval = 10 * time.Minute
	orderExpireSweepInterval   = 5 * time.Minute
	orderExpireSweepBatchSize  = 200
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	for _, job := range s.consumer.periodicJobs() {
		go runPeriodic(ctx, job)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// Scheduler 仅运行定时任务（队列未启用时使用）
type Scheduler struct {
	consumer *Consumer
}

// NewScheduler 创建定时任务服务
func NewScheduler(consumer *Consumer) (*Scheduler, error) {
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	return &Scheduler{consumer: consumer}, nil
}

// Name 服务名称
func (s *Scheduler) Name() string {
	return "scheduler"
}

// Start 启动定时任务并阻塞至 ctx 结束
func (s *Scheduler) Start(ctx context.Context) error {
	if s == nil || s.consumer == nil {
		return errors.New("scheduler not initialized")
	}
	jobs := s.consumer.periodicJobs()
	done := make(chan struct{}, len(jobs))
	for _, job := range jobs {
		job := job
		go func() {
			runPeriodic(ctx, job)
			done <- struct{}{}
		}()
	}
	<-ctx.Done()
	for range jobs {
		<-done
	}
	return nil
}

// Stop 停止服务（由 ctx 取消驱动）
func (s *Scheduler) Stop(ctx context.Context) error {
	return nil
}

// periodicJob 定时任务
type periodicJob struct {
	name     string
	interval time.Duration
	run      func(now time.Time) (int64, error)
}

// periodicJobs 佣金到期审核、推广资格过期、过期订单兜底清理
func (c *Consumer) periodicJobs() []periodicJob {
	if c == nil || c.Container == nil {
		return nil
	}
	jobs := make([]periodicJob, 0, 3)
	if c.CommissionService != nil {
		jobs = append(jobs, periodicJob{
			name:     "commission_approve_due",
			interval: commissionApproveInterval,
			run:      c.CommissionService.ApproveDue,
		})
	}
	if c.AffiliateService != nil {
		jobs = append(jobs, periodicJob{
			name:     "subscription_expire",
			interval: subscriptionExpireInterval,
			run:      c.AffiliateService.DeactivateExpired,
		})
	}
	if c.OrderService != nil {
		jobs = append(jobs, periodicJob{
			name:     "order_expire_sweep",
			interval: orderExpireSweepInterval,
			run: func(now time.Time) (int64, error) {
				count, err := c.OrderService.CancelExpired(now, orderExpireSweepBatchSize)
				return int64(count), err
			},
		})
	}
	return jobs
}

func runPeriodic(ctx context.Context, job periodicJob) {
	runOnce := func() {
		affected, err := job.run(time.Now())
		if err != nil {
			logger.Warnw("worker_periodic_job_failed", "job", job.name, "error", err)
			return
		}
		if affected > 0 {
			logger.Infow("worker_periodic_job_done", "job", job.name, "affected", affected)
		}
	}
	runOnce()

	ticker := time.NewTicker(job.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
