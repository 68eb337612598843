package scheduler

import (
	"context"
	"sync"
	"time"

	"canteen/internal/domain/model"
	repo "canteen/internal/repository"

	"github.com/sirupsen/logrus"
)

type Clock interface {
	Now() time.Time
}

// Scheduler は営業時間から店舗のactive/inactiveを定期的に付け直す。
type Scheduler struct {
	canteens repo.CanteenRepository
	clock    Clock
	loc      *time.Location
	interval time.Duration
	log      logrus.FieldLogger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(canteens repo.CanteenRepository, clock Clock, loc *time.Location, interval time.Duration, log logrus.FieldLogger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		canteens: canteens,
		clock:    clock,
		loc:      loc,
		interval: interval,
		log:      log.WithField("component", "availability_scheduler"),
	}
}

// IsOpen は "HH:MM" 同士で営業中かを判定する。
// open >= close のときは日をまたぐ営業とみなす。
func IsOpen(open, close, now string) bool {
	if open < close {
		return now >= open && now < close
	}
	return now >= open || now < close
}

// Start は即時に1回評価してから、interval毎に評価を続ける。
// 二重に呼ばれた場合は何もしない。
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
	s.log.WithField("interval", s.interval.String()).Info("scheduler started")
}

// Stop はループを止めて、実行中のTickが終わるまで待つ。
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	s.Tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick は1回分の評価を行い、書き換えた店舗数を返す。
// 失敗はログだけ残して次回に任せる。
func (s *Scheduler) Tick(ctx context.Context) int {
	canteens, err := s.canteens.ListWithOperatingHours(ctx)
	if err != nil {
		s.log.WithError(err).Error("list canteens with operating hours failed")
		return 0
	}

	now := s.clock.Now().In(s.loc).Format("15:04")
	updated := 0

	for _, c := range canteens {
		if !c.OperatingHours.Enabled {
			continue
		}
		open, ok1 := model.NormalizeClock(c.OperatingHours.OpenTime)
		closeAt, ok2 := model.NormalizeClock(c.OperatingHours.CloseTime)
		if !ok1 || !ok2 {
			s.log.WithFields(logrus.Fields{
				"canteen_id": c.Code,
				"open_time":  c.OperatingHours.OpenTime,
				"close_time": c.OperatingHours.CloseTime,
			}).Warn("invalid operating hours, skipped")
			continue
		}

		want := model.CanteenStatusInactive
		if IsOpen(open, closeAt, now) {
			want = model.CanteenStatusActive
		}
		// 変化があるときだけ書く
		if c.Status == want {
			continue
		}

		if err := s.canteens.UpdateStatus(ctx, c.ID, want); err != nil {
			s.log.WithError(err).WithField("canteen_id", c.Code).Error("update canteen status failed")
			continue
		}
		updated++
		s.log.WithFields(logrus.Fields{
			"canteen_id": c.Code,
			"status":     string(want),
			"now":        now,
		}).Info("canteen availability changed")
	}
	return updated
}
