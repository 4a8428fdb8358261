package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"coin-server/internal/infrastructure/config"
	otelinfra "coin-server/internal/infrastructure/observability/otel"
)

// SweepFunc スケジューラーが毎日実行する処理
type SweepFunc func(ctx context.Context) error

// SweepScheduler デイリースイープのスケジューラー
// 設定されたタイムゾーンの指定時刻に1日1回スイープを実行する
type SweepScheduler struct {
	sweep    SweepFunc
	hour     int
	minute   int
	location *time.Location
	logger   *otelinfra.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewSweepScheduler 新しいSweepSchedulerを作成
func NewSweepScheduler(cfg *config.SchedulerConfig, sweep SweepFunc, logger *otelinfra.Logger) (*SweepScheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}

	var hour, minute int
	if _, err := fmt.Sscanf(cfg.SweepTime, "%d:%d", &hour, &minute); err != nil {
		return nil, fmt.Errorf("invalid sweep time %q: %w", cfg.SweepTime, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("invalid sweep time %q", cfg.SweepTime)
	}

	return &SweepScheduler{
		sweep:    sweep,
		hour:     hour,
		minute:   minute,
		location: loc,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start スケジューラーを起動
func (s *SweepScheduler) Start() {
	s.wg.Add(1)
	go s.run()

	s.logger.Info(context.Background(), "Sweep scheduler started", map[string]interface{}{
		"sweep_time": fmt.Sprintf("%02d:%02d", s.hour, s.minute),
		"timezone":   s.location.String(),
	})
}

// Stop スケジューラーを停止し、実行中のスイープが終わるまで待つ
func (s *SweepScheduler) Stop() {
	s.once.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
}

// run 次回実行時刻まで待機と実行を繰り返す
func (s *SweepScheduler) run() {
	defer s.wg.Done()

	for {
		next := s.nextRun(time.Now().In(s.location))
		timer := time.NewTimer(time.Until(next))

		select {
		case <-s.stopCh:
			timer.Stop()
			return
		case <-timer.C:
		}

		ctx := context.Background()
		s.logger.Info(ctx, "Running scheduled sweep", map[string]interface{}{
			"scheduled_at": next.Format(time.RFC3339),
		})

		if err := s.sweep(ctx); err != nil {
			s.logger.Error(ctx, "Scheduled sweep failed", err, nil)
		}
	}
}

// nextRun 基準時刻の次の実行時刻を返す
func (s *SweepScheduler) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, s.location)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
